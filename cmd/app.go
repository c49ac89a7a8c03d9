package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"MenuScout/config/database"
	"MenuScout/config/environment"
	"MenuScout/services"

	"github.com/rs/zerolog/log"
)

// app is everything a command needs, wired from the loaded config.
type app struct {
	fetcher  *services.FetchService
	sessions *services.SessionPool
	sink     services.Sink
	batch    *services.BatchService
}

type appOptions struct {
	noBrowser bool
	// placeSearch is false for commands that never search.
	placeSearch bool
	stdout      io.Writer
}

func newApp(ctx context.Context, c environment.Config, opts appOptions) (*app, error) {
	fetcher := services.NewFetchService(services.FetchOptions{
		Timeout:           c.Fetch.Timeout,
		MaxAttempts:       c.Fetch.MaxAttempts,
		RetryWait:         c.Fetch.RetryWait,
		RetryMaxWait:      c.Fetch.RetryMaxWait,
		RequestsPerSecond: c.Fetch.RequestsPerSec,
		Burst:             c.Fetch.Burst,
		UserAgent:         c.Fetch.UserAgent,
		CloudflareBypass:  c.Fetch.CloudflareBypass,
	})

	classifierOpts := services.DefaultClassifierOptions()
	classifierOpts.PlatformASignature = c.Menu.PlatformASignature
	classifierOpts.PlatformBSignature = c.Menu.PlatformBSignature

	processor := services.NewPlaceProcessor(
		services.NewSourceClassifier(fetcher, classifierOpts),
		services.NewStrategySet(
			services.NewPlatformAStrategy(fetcher),
			services.NewPlatformBStrategy(fetcher),
			services.NewGenericStrategy(fetcher),
		),
	)
	processor.Dedup = services.ParseDedupMode(c.Menu.DedupMode)
	processor.Matcher = services.PhotoMatcher{
		Threshold: c.Menu.PhotoThreshold,
		Policy:    services.ParsePhotoPolicy(c.Menu.PhotoPolicy),
	}
	processor.Photos = services.NewYelpPhotoService(fetcher)
	processor.Nutrition = nutritionChain(c, fetcher)

	a := &app{fetcher: fetcher}

	sink, err := openSink(ctx, c, opts.stdout)
	if err != nil {
		return nil, err
	}
	a.sink = sink

	workers := c.Batch.Workers
	if workers < 1 {
		workers = 1
	}
	a.sessions, err = services.NewSessionPool(workers, func() (services.RenderSession, error) {
		if opts.noBrowser {
			return &services.FetchSession{Fetcher: fetcher}, nil
		}
		return services.NewChromeSession(services.RenderOptions{
			ReadyTimeout: c.Render.ReadyTimeout,
			PollInterval: c.Render.PollInterval,
			NavTimeout:   c.Render.NavTimeout,
			Headless:     c.Render.Headless,
			ChromePath:   c.Render.ChromePath,
		})
	})
	if err != nil {
		sink.Close()
		return nil, err
	}

	var search services.PlaceSearch
	if opts.placeSearch {
		if c.PlacesAPIKey == "" {
			a.close()
			return nil, errors.New("PLACES_API_KEY is required for place search")
		}
		places := services.NewGooglePlacesService(fetcher.Client(), c.PlacesAPIKey, "")
		places.Throttle = fetcher
		search = places
	}

	a.batch = services.NewBatchService(search, processor, a.sessions, sink, services.BatchOptions{
		Query:     c.Batch.Query,
		Locations: c.Batch.Locations,
		Workers:   workers,
	})
	return a, nil
}

func nutritionChain(c environment.Config, fetcher services.Fetcher) services.NutritionLookup {
	var chain services.NutritionChain
	for _, name := range c.Nutrition.Backends {
		switch strings.ToLower(name) {
		case "openfoodfacts", "off":
			chain = append(chain, services.NewOpenFoodFactsNutrition(fetcher, c.Nutrition.SearchURL))
		case "openai":
			if c.OpenAIKey == "" {
				log.Warn().Msg("openai nutrition backend configured without OPENAI_API_KEY, skipping")
				continue
			}
			chain = append(chain, services.NewOpenAINutrition(c.OpenAIKey, "", c.Nutrition.Model))
		case "none", "":
		default:
			log.Warn().Str("backend", name).Msg("unknown nutrition backend")
		}
	}
	if len(chain) == 0 {
		return nil
	}
	return chain
}

func openSink(ctx context.Context, c environment.Config, stdout io.Writer) (services.Sink, error) {
	if stdout == nil {
		stdout = os.Stdout
	}
	switch strings.ToLower(c.Sink.Kind) {
	case "", "json":
		return services.NewJSONSink(stdout), nil
	case "table":
		return services.NewTableSink(stdout), nil
	case "sqlite":
		dsn := c.Sink.DSN
		if dsn == "" {
			dsn = "menuscout.db"
		}
		return services.OpenSQLiteSink(dsn)
	case "firestore":
		client, err := database.InitFirebase(ctx)
		if err != nil {
			return nil, err
		}
		return services.NewRestaurantService(client), nil
	default:
		return nil, fmt.Errorf("unknown sink kind %q", c.Sink.Kind)
	}
}

func (a *app) close() {
	if a.sessions != nil {
		if err := a.sessions.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close render sessions")
		}
	}
	if a.sink != nil {
		if err := a.sink.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close sink")
		}
	}
}

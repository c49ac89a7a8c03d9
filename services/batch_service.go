package services

import (
	"context"
	"errors"
	"fmt"

	"MenuScout/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// SeenChecker is implemented by sinks that remember earlier runs.
type SeenChecker interface {
	Seen(ctx context.Context, place models.PlaceRecord) (bool, error)
}

type BatchOptions struct {
	Query     string
	Locations []string
	Workers   int
	// MaxPages caps pagination per location. Zero means no cap.
	MaxPages int
}

type BatchStats struct {
	Places int
	Dishes int
	Saved  int
}

// BatchService drives place search and fans places out to a worker pool.
// Each worker leases one render session per place.
type BatchService struct {
	Search    PlaceSearch
	Processor *PlaceProcessor
	Sessions  *SessionPool
	Sink      Sink
	Options   BatchOptions
}

func NewBatchService(search PlaceSearch, processor *PlaceProcessor, sessions *SessionPool, sink Sink, opts BatchOptions) *BatchService {
	return &BatchService{Search: search, Processor: processor, Sessions: sessions, Sink: sink, Options: opts}
}

// Run scrapes every configured location and hands each result to the sink.
// Sink failures are logged only.
func (b *BatchService) Run(ctx context.Context) (BatchStats, error) {
	var stats BatchStats
	for _, location := range b.Options.Locations {
		results := make(chan *models.Restaurant)
		errc := make(chan error, 1)
		go func() {
			errc <- b.Scrape(ctx, b.Options.Query, location, results)
		}()
		for r := range results {
			stats.Places++
			stats.Dishes += len(r.Menu)
			if b.Store(ctx, r) {
				stats.Saved++
			}
		}
		if err := <-errc; err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return stats, err
			}
			log.Error().Err(err).Str("location", location).Msg("location scrape failed")
		}
	}
	return stats, nil
}

// Store hands r to the sink, if any, and reports whether it was saved.
func (b *BatchService) Store(ctx context.Context, r *models.Restaurant) bool {
	if b.Sink == nil {
		return false
	}
	if err := b.Sink.Save(ctx, r); err != nil {
		log.Error().Err(err).Str("place", r.Name).Msg("failed to save restaurant")
		return false
	}
	return true
}

// ProcessOne runs a single place outside of any search.
func (b *BatchService) ProcessOne(ctx context.Context, place models.PlaceRecord, location string) (*ProcessResult, error) {
	var res *ProcessResult
	err := b.withSession(ctx, func(s RenderSession) error {
		res = b.Processor.Process(ctx, place, location, s)
		return nil
	})
	return res, err
}

// Scrape searches query in location, follows pagination, processes every
// place and sends each result to results. results is closed on return.
func (b *BatchService) Scrape(ctx context.Context, query, location string, results chan<- *models.Restaurant) error {
	defer close(results)

	workers := b.Options.Workers
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	places := make(chan models.PlaceRecord)

	g.Go(func() error {
		defer close(places)
		return b.produce(gctx, query, location, places)
	})

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for place := range places {
				if b.seen(gctx, place) {
					continue
				}
				res, err := b.ProcessOne(gctx, place, location)
				if err != nil {
					return err
				}
				select {
				case results <- res.Restaurant:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func (b *BatchService) produce(ctx context.Context, query, location string, places chan<- models.PlaceRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Info().Str("query", query).Str("location", location).Msg("searching places")
	page, err := b.Search.Search(ctx, query, location)
	if err != nil {
		return fmt.Errorf("search %q in %q: %w", query, location, err)
	}
	for n := 1; ; n++ {
		for _, p := range page.Places {
			select {
			case places <- p:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if page.NextPageToken == "" || (b.Options.MaxPages > 0 && n >= b.Options.MaxPages) {
			return nil
		}
		next, err := b.Search.ContinueSearch(ctx, page.NextPageToken)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Str("location", location).Int("page", n+1).Msg("pagination stopped")
			return nil
		}
		page = next
	}
}

func (b *BatchService) seen(ctx context.Context, place models.PlaceRecord) bool {
	checker, ok := b.Sink.(SeenChecker)
	if !ok {
		return false
	}
	seen, err := checker.Seen(ctx, place)
	if err != nil {
		log.Warn().Err(err).Str("place", place.Name).Msg("failed to check for earlier result")
		return false
	}
	if seen {
		log.Info().Str("place", place.Name).Msg("already scraped, skipping")
	}
	return seen
}

func (b *BatchService) withSession(ctx context.Context, fn func(RenderSession) error) error {
	if b.Sessions == nil {
		return fn(nil)
	}
	return b.Sessions.WithSession(ctx, fn)
}

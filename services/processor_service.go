package services

import (
	"context"
	"strings"
	"time"

	"MenuScout/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ProcessState is a stage of one place's pass. Stages only move forward.
type ProcessState int

const (
	StateCreated ProcessState = iota
	StateSourceResolved
	StateMenuExtracted
	StateContactsAugmented
	StatePhotosAttached
	StateComplete
)

func (s ProcessState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateSourceResolved:
		return "source_resolved"
	case StateMenuExtracted:
		return "menu_extracted"
	case StateContactsAugmented:
		return "contacts_augmented"
	case StatePhotosAttached:
		return "photos_attached"
	case StateComplete:
		return "complete"
	default:
		return "invalid"
	}
}

type DedupMode int

const (
	// DedupFilter drops every later record whose name was already seen.
	DedupFilter DedupMode = iota
	// DedupTruncate stops at the first repeated name and discards the rest.
	DedupTruncate
)

func ParseDedupMode(name string) DedupMode {
	if strings.EqualFold(strings.TrimSpace(name), "truncate") {
		return DedupTruncate
	}
	return DedupFilter
}

// DedupByName keeps at most one record per trimmed name, in extraction order.
// Records with an empty name are dropped.
func DedupByName(menu []models.DishRecord, mode DedupMode) []models.DishRecord {
	seen := make(map[string]struct{}, len(menu))
	out := make([]models.DishRecord, 0, len(menu))
	for _, d := range menu {
		d.Name = strings.TrimSpace(d.Name)
		if d.Name == "" {
			continue
		}
		if _, dup := seen[d.Name]; dup {
			if mode == DedupTruncate {
				break
			}
			continue
		}
		seen[d.Name] = struct{}{}
		out = append(out, d)
	}
	return out
}

// ProcessResult is a finished pass plus the stages it went through.
type ProcessResult struct {
	Restaurant *models.Restaurant
	Trace      []ProcessState
}

func (r *ProcessResult) advance(s ProcessState) {
	r.Trace = append(r.Trace, s)
}

// PlaceProcessor runs one place through classification, extraction,
// contact scraping and photo matching. Photos and Nutrition are optional.
type PlaceProcessor struct {
	Classifier *SourceClassifier
	Strategies StrategySet
	Contacts   ContactScraper
	Photos     PhotoSearch
	Matcher    PhotoMatcher
	Nutrition  NutritionLookup
	Dedup      DedupMode
	now        func() time.Time
}

func NewPlaceProcessor(classifier *SourceClassifier, strategies StrategySet) *PlaceProcessor {
	return &PlaceProcessor{
		Classifier: classifier,
		Strategies: strategies,
		Matcher:    PhotoMatcher{Threshold: 0.6, Policy: PhotoBestScore},
		Dedup:      DedupFilter,
		now:        time.Now,
	}
}

// Process never fails: every collaborator error is logged and leaves the
// result partial. location keys the photo search; the place address is used
// when it is empty. session may be nil, which disables the rendered fallback.
func (p *PlaceProcessor) Process(ctx context.Context, place models.PlaceRecord, location string, session RenderSession) *ProcessResult {
	now := p.now
	if now == nil {
		now = time.Now
	}
	r := &models.Restaurant{
		ID:       uuid.NewString(),
		PlaceID:  place.PlaceID,
		Name:     strings.TrimSpace(place.Name),
		URL:      place.Website,
		Hours:    place.Hours,
		Location: place.Location,
		Menu:     []models.DishRecord{},
	}
	if place.LocalPhoneNumber != "" {
		r.PhoneNumbers = append(r.PhoneNumbers, place.LocalPhoneNumber)
	}
	res := &ProcessResult{Restaurant: r}
	res.advance(StateCreated)

	logger := log.With().Str("place", r.Name).Logger()

	cls := p.Classifier.Classify(ctx, place, session)
	r.MenuSource = cls.Source
	res.advance(StateSourceResolved)

	if cls.Source.Strategy == models.StrategyUnknown {
		logger.Info().Msg("no menu source found")
		if cls.SiteVisited {
			p.Contacts.Augment(r, cls.SiteText)
		}
		r.ScrapedAt = now().UTC()
		res.advance(StateComplete)
		return res
	}

	menu, err := p.Strategies.Extract(ctx, cls.Source)
	if err != nil {
		logger.Warn().Err(err).Stringer("strategy", cls.Source.Strategy).Str("url", cls.Source.URL).Msg("menu extraction failed")
	}
	menu = DedupByName(menu, p.Dedup)
	if p.Nutrition != nil && len(menu) > 0 {
		FillCalories(ctx, p.Nutrition, menu)
	}
	r.Menu = menu
	logger.Info().Stringer("strategy", cls.Source.Strategy).Int("dishes", len(menu)).Msg("menu extracted")
	res.advance(StateMenuExtracted)

	if cls.SiteVisited {
		p.Contacts.Augment(r, cls.SiteText)
	}
	res.advance(StateContactsAugmented)

	if p.Photos != nil && len(r.Menu) > 0 {
		if location == "" {
			location = place.Address
		}
		photos, err := p.Photos.PhotosFor(ctx, r.Name, location)
		if err != nil {
			logger.Debug().Err(err).Msg("no photos found")
		}
		if n := p.Matcher.Attach(r.Menu, photos); n > 0 {
			logger.Info().Int("photos", n).Msg("photos attached")
		}
	}
	res.advance(StatePhotosAttached)

	r.ScrapedAt = now().UTC()
	res.advance(StateComplete)
	return res
}

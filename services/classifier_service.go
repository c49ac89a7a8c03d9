package services

import (
	"context"
	"regexp"
	"strings"

	"MenuScout/models"

	"github.com/rs/zerolog/log"
)

type ClassifierOptions struct {
	// PlatformASignature and PlatformBSignature are substrings that identify
	// links into the two known menu-hosting platforms.
	PlatformASignature string
	PlatformBSignature string
	// PlatformAFragment is appended to PlatformA links; it selects the
	// regular menu tab on the listing page.
	PlatformAFragment string
	// MenuToken marks an anchor as a menu link on the place's own site.
	MenuToken string
}

func DefaultClassifierOptions() ClassifierOptions {
	return ClassifierOptions{
		PlatformASignature: "urbanspoon",
		PlatformBSignature: "singleplatform",
		PlatformAFragment:  "#regular",
		MenuToken:          "menu",
	}
}

// Classification is the outcome of source discovery for one place.
type Classification struct {
	Source models.MenuSource
	// SiteText is the rendered text of the place's website when the
	// fallback had to visit it.
	SiteText string
	// SiteVisited reports whether the rendered fallback ran.
	SiteVisited bool
}

// SourceClassifier decides which extraction strategy applies to a place.
type SourceClassifier struct {
	Fetcher Fetcher
	Options ClassifierOptions
}

func NewSourceClassifier(f Fetcher, opts ClassifierOptions) *SourceClassifier {
	return &SourceClassifier{Fetcher: f, Options: opts}
}

var outboundLinkRegex = regexp.MustCompile(`(https?:[^"\s]*?)"`)

// Classify tries the cheap path first (outbound links on the public profile
// page) and falls back to rendering the place's own website.
func (c *SourceClassifier) Classify(ctx context.Context, place models.PlaceRecord, session RenderSession) Classification {
	if place.ProfileURL != "" {
		links, err := c.ProfileLinks(ctx, place.ProfileURL)
		if err != nil {
			log.Warn().Err(err).Str("place", place.Name).Msg("failed to read profile page")
		} else if src, ok := c.FromLinks(links); ok {
			log.Info().Str("place", place.Name).Stringer("strategy", src.Strategy).Str("url", src.URL).Msg("menu link located from profile")
			return Classification{Source: src}
		}
	}

	if place.Website == "" || session == nil {
		return Classification{Source: models.MenuSource{Strategy: models.StrategyUnknown}}
	}

	log.Info().Str("place", place.Name).Msg("falling back to menu search on site")
	cls := Classification{Source: models.MenuSource{Strategy: models.StrategyUnknown}}
	if err := session.Navigate(ctx, place.Website); err != nil {
		log.Warn().Err(err).Str("place", place.Name).Str("url", place.Website).Msg("failed to render site")
		return cls
	}
	cls.SiteVisited = true

	text, err := session.CurrentPageText(ctx)
	if err != nil {
		log.Warn().Err(err).Str("place", place.Name).Msg("failed to read rendered text")
	}
	cls.SiteText = text

	anchors, err := session.FindAnchors(ctx)
	if err != nil {
		log.Warn().Err(err).Str("place", place.Name).Msg("failed to list anchors")
		return cls
	}
	if src, ok := c.FromAnchors(anchors); ok {
		cls.Source = src
	}
	return cls
}

// ProfileLinks fetches the profile page and pulls every quoted outbound
// address out of the raw markup, dropping the host platform's own links.
func (c *SourceClassifier) ProfileLinks(ctx context.Context, profileURL string) ([]string, error) {
	page, err := c.Fetcher.Get(ctx, profileURL)
	if err != nil {
		return nil, err
	}
	var links []string
	for _, m := range outboundLinkRegex.FindAllStringSubmatch(string(page.Body), -1) {
		if strings.Contains(m[1], "google.com") {
			continue
		}
		links = append(links, m[1])
	}
	return links, nil
}

// FromLinks applies the platform signatures. The first PlatformA link wins
// outright; otherwise the last PlatformB link seen is kept.
func (c *SourceClassifier) FromLinks(links []string) (models.MenuSource, bool) {
	sigA := strings.ToLower(c.Options.PlatformASignature)
	sigB := strings.ToLower(c.Options.PlatformBSignature)

	var found models.MenuSource
	ok := false
	for _, link := range links {
		lower := strings.ToLower(link)
		if sigA != "" && strings.Contains(lower, sigA) {
			return models.MenuSource{URL: link + c.Options.PlatformAFragment, Strategy: models.StrategyPlatformA}, true
		}
		if sigB != "" && strings.Contains(lower, sigB) {
			found = models.MenuSource{URL: link, Strategy: models.StrategyPlatformB}
			ok = true
		}
	}
	return found, ok
}

// FromAnchors picks the first anchor, in document order, whose href or text
// mentions the menu token.
func (c *SourceClassifier) FromAnchors(anchors []models.Anchor) (models.MenuSource, bool) {
	token := strings.ToLower(c.Options.MenuToken)
	if token == "" {
		return models.MenuSource{}, false
	}
	for _, a := range anchors {
		if a.Href == "" {
			continue
		}
		if strings.Contains(strings.ToLower(a.Href), token) || strings.Contains(strings.ToLower(a.Text), token) {
			return models.MenuSource{URL: a.Href, Strategy: models.StrategyGeneric}, true
		}
	}
	return models.MenuSource{}, false
}

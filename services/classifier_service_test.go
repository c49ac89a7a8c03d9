package services

import (
	"context"
	"testing"

	"MenuScout/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClassifier(f Fetcher) *SourceClassifier {
	return NewSourceClassifier(f, DefaultClassifierOptions())
}

func TestFromLinksPlatformAWins(t *testing.T) {
	c := testClassifier(nil)
	src, ok := c.FromLinks([]string{
		"https://www.singleplatform.com/joes/menu",
		"http://www.urbanspoon.com/r/1/2/joes",
		"http://www.urbanspoon.com/r/1/3/other",
	})
	require.True(t, ok)
	assert.Equal(t, models.StrategyPlatformA, src.Strategy)
	assert.Equal(t, "http://www.urbanspoon.com/r/1/2/joes#regular", src.URL)
}

func TestFromLinksLastPlatformBKept(t *testing.T) {
	c := testClassifier(nil)
	src, ok := c.FromLinks([]string{
		"https://places.singleplatform.com/first/menu",
		"https://joes.example/",
		"https://places.SinglePlatform.com/second/menu",
	})
	require.True(t, ok)
	assert.Equal(t, models.MenuSource{URL: "https://places.SinglePlatform.com/second/menu", Strategy: models.StrategyPlatformB}, src)
}

func TestFromLinksNoSignature(t *testing.T) {
	_, ok := testClassifier(nil).FromLinks([]string{"https://joes.example/", "https://facebook.com/joes"})
	assert.False(t, ok)
}

func TestFromAnchorsFirstMenuMatch(t *testing.T) {
	src, ok := testClassifier(nil).FromAnchors([]models.Anchor{
		{Href: "https://joes.example/about", Text: "About us"},
		{Href: "", Text: "Menu"},
		{Href: "https://joes.example/food", Text: "Our MENU"},
		{Href: "https://joes.example/menu", Text: "Menu"},
	})
	require.True(t, ok)
	assert.Equal(t, models.MenuSource{URL: "https://joes.example/food", Strategy: models.StrategyGeneric}, src)
}

func TestProfileLinksSkipsHostLinks(t *testing.T) {
	f := newFakeFetcher(map[string]string{
		"https://maps.example/place/1": `<a href="https://www.google.com/maps">maps</a>
<a href="http://www.urbanspoon.com/r/1/2/joes">menu</a> <script>var u = "https://joes.example/";</script>`,
	})
	links, err := testClassifier(f).ProfileLinks(context.Background(), "https://maps.example/place/1")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://www.urbanspoon.com/r/1/2/joes", "https://joes.example/"}, links)
}

func TestClassifyUsesProfileFirst(t *testing.T) {
	f := newFakeFetcher(map[string]string{
		"https://maps.example/place/1": `<a href="https://places.singleplatform.com/joes/menu">menu</a>`,
	})
	session := &FetchSession{Fetcher: f}
	place := models.PlaceRecord{Name: "Joe's", ProfileURL: "https://maps.example/place/1", Website: "https://joes.example/"}

	cls := testClassifier(f).Classify(context.Background(), place, session)
	assert.Equal(t, models.StrategyPlatformB, cls.Source.Strategy)
	assert.False(t, cls.SiteVisited)
	assert.NotContains(t, f.called(), "https://joes.example/")
}

func TestClassifyFallsBackToRenderedSite(t *testing.T) {
	f := newFakeFetcher(map[string]string{
		"https://maps.example/place/1": `<a href="https://facebook.com/joes">fb</a>`,
		"https://joes.example/":        `<body><a href="/about">About</a><a href="/eat">See our Menu</a><p>Call 617-555-0123</p></body>`,
	})
	place := models.PlaceRecord{Name: "Joe's", ProfileURL: "https://maps.example/place/1", Website: "https://joes.example/"}

	cls := testClassifier(f).Classify(context.Background(), place, &FetchSession{Fetcher: f})
	assert.Equal(t, models.MenuSource{URL: "https://joes.example/eat", Strategy: models.StrategyGeneric}, cls.Source)
	assert.True(t, cls.SiteVisited)
	assert.Contains(t, cls.SiteText, "617-555-0123")
}

func TestClassifyUnknown(t *testing.T) {
	f := newFakeFetcher(map[string]string{
		"https://joes.example/": `<body><a href="/about">About</a></body>`,
	})
	c := testClassifier(f)

	withSite := c.Classify(context.Background(), models.PlaceRecord{Name: "Joe's", Website: "https://joes.example/"}, &FetchSession{Fetcher: f})
	assert.Equal(t, models.StrategyUnknown, withSite.Source.Strategy)
	assert.True(t, withSite.SiteVisited)

	noSession := c.Classify(context.Background(), models.PlaceRecord{Name: "Joe's", Website: "https://joes.example/"}, nil)
	assert.Equal(t, models.StrategyUnknown, noSession.Source.Strategy)
	assert.False(t, noSession.SiteVisited)

	unreachable := c.Classify(context.Background(), models.PlaceRecord{Name: "Joe's", Website: "https://gone.example/"}, &FetchSession{Fetcher: f})
	assert.Equal(t, models.StrategyUnknown, unreachable.Source.Strategy)
}

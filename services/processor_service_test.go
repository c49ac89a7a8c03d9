package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"MenuScout/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dishes(names ...string) []models.DishRecord {
	out := make([]models.DishRecord, 0, len(names))
	for _, n := range names {
		out = append(out, models.DishRecord{Name: n, Price: models.NotAvailable})
	}
	return out
}

func names(menu []models.DishRecord) []string {
	var out []string
	for _, d := range menu {
		out = append(out, d.Name)
	}
	return out
}

func TestDedupByName(t *testing.T) {
	in := dishes("Tacos", " Burrito ", "Tacos", "", "Chips", "Burrito")

	assert.Equal(t, []string{"Tacos", "Burrito", "Chips"}, names(DedupByName(in, DedupFilter)))
	assert.Equal(t, []string{"Tacos", "Burrito"}, names(DedupByName(in, DedupTruncate)))
	assert.Equal(t, " Burrito ", in[1].Name, "input must not be modified")
	assert.Empty(t, DedupByName(nil, DedupFilter))
}

func TestDedupLeavesUniqueNames(t *testing.T) {
	in := dishes("a", "b", "a", "c", "b", "b", "d", "a", "e")
	for _, mode := range []DedupMode{DedupFilter, DedupTruncate} {
		seen := map[string]int{}
		for _, d := range DedupByName(in, mode) {
			seen[d.Name]++
		}
		for name, n := range seen {
			assert.Equalf(t, 1, n, "mode %d name %q", mode, name)
		}
	}
}

func TestParseDedupMode(t *testing.T) {
	assert.Equal(t, DedupTruncate, ParseDedupMode(" Truncate"))
	assert.Equal(t, DedupFilter, ParseDedupMode("filter"))
	assert.Equal(t, DedupFilter, ParseDedupMode("whatever"))
}

func testProcessor(f Fetcher) *PlaceProcessor {
	p := NewPlaceProcessor(
		testClassifier(f),
		NewStrategySet(NewPlatformAStrategy(f), NewPlatformBStrategy(f), NewGenericStrategy(f)),
	)
	p.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("EDT", -4*3600)) }
	return p
}

var fullTrace = []ProcessState{StateCreated, StateSourceResolved, StateMenuExtracted, StateContactsAugmented, StatePhotosAttached, StateComplete}

func TestProcessUnknownSource(t *testing.T) {
	f := newFakeFetcher(map[string]string{
		"https://joes.example/": `<body><a href="/about">About</a> Reach us at hello@joes.com</body>`,
	})
	p := testProcessor(f)
	photos := &fakePhotos{}
	p.Photos = photos

	place := models.PlaceRecord{PlaceID: "p1", Name: " Joe's ", Website: "https://joes.example/", LocalPhoneNumber: "(617) 555-0123"}
	res := p.Process(context.Background(), place, "Boston, MA", &FetchSession{Fetcher: f})

	r := res.Restaurant
	assert.Equal(t, []ProcessState{StateCreated, StateSourceResolved, StateComplete}, res.Trace)
	assert.Equal(t, models.StrategyUnknown, r.MenuSource.Strategy)
	assert.NotNil(t, r.Menu)
	assert.Empty(t, r.Menu)
	assert.Equal(t, "Joe's", r.Name)
	assert.Equal(t, []string{"(617) 555-0123"}, r.PhoneNumbers)
	assert.Equal(t, []string{"hello@joes.com"}, r.Emails)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, time.UTC, r.ScrapedAt.Location())
	assert.Empty(t, photos.asked)
}

func TestProcessGenericPass(t *testing.T) {
	f := newFakeFetcher(map[string]string{
		"https://joes.example/": `<body><a href="/menu">Menu</a><p>Call (617) 555-0199 or mail info@joes.com</p></body>`,
		"https://joes.example/menu": `<ul>
<li class="menu-item">Grilled Salmon $20</li>
<li class="menu-item">Tacos $9</li>
<li class="menu-item">Grilled Salmon $22</li>
<li class="menu-item">Flan $5</li>
</ul>`,
	})
	p := testProcessor(f)
	photos := &fakePhotos{photos: []models.Photo{
		{Caption: "Grilled Salmon Special", ImageURL: "https://img.example/salmon.jpg"},
		{Caption: "Pasta", ImageURL: "https://img.example/pasta.jpg"},
	}}
	p.Photos = photos
	p.Nutrition = fakeNutrition{"Tacos": "450"}

	place := models.PlaceRecord{Name: "Joe's", Website: "https://joes.example/", LocalPhoneNumber: "(617) 555-0123", Address: "1 Main St"}
	res := p.Process(context.Background(), place, "", &FetchSession{Fetcher: f})
	r := res.Restaurant

	assert.Equal(t, fullTrace, res.Trace)
	assert.Equal(t, models.MenuSource{URL: "https://joes.example/menu", Strategy: models.StrategyGeneric}, r.MenuSource)
	want := []models.DishRecord{
		{Name: "Grilled Salmon", Price: "20", Calories: models.StringPtr(models.NotAvailable), PhotoURL: models.StringPtr("https://img.example/salmon.jpg")},
		{Name: "Tacos", Price: "9", Calories: models.StringPtr("450")},
		{Name: "Flan", Price: "5", Calories: models.StringPtr(models.NotAvailable)},
	}
	if diff := cmp.Diff(want, r.Menu); diff != "" {
		t.Errorf("menu mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"(617) 555-0123", "(617) 555-0199"}, r.PhoneNumbers)
	assert.Equal(t, []string{"info@joes.com"}, r.Emails)
	assert.Equal(t, []string{"Joe's|1 Main St"}, photos.asked)
}

func TestProcessContainsFailures(t *testing.T) {
	f := newFakeFetcher(map[string]string{
		"https://maps.example/place/1": `<a href="https://places.singleplatform.com/joes/menu">menu</a>`,
	})
	p := testProcessor(f)
	p.Photos = &fakePhotos{err: errors.New("photo search down")}

	place := models.PlaceRecord{Name: "Joe's", ProfileURL: "https://maps.example/place/1"}
	res := p.Process(context.Background(), place, "Boston, MA", nil)

	assert.Equal(t, fullTrace, res.Trace)
	assert.Equal(t, models.StrategyPlatformB, res.Restaurant.MenuSource.Strategy)
	assert.Empty(t, res.Restaurant.Menu)
	assert.Nil(t, res.Restaurant.PhoneNumbers)
}

func TestProcessStateString(t *testing.T) {
	assert.Equal(t, "menu_extracted", StateMenuExtracted.String())
	assert.Equal(t, "invalid", ProcessState(42).String())
}

func TestProcessKeepsPlatformAOrder(t *testing.T) {
	f := platformAFetcher()
	f.pages["https://maps.example/place/2"] = `<a href="http://www.urbanspoon.com/r/1/2/joes">x</a>`
	p := testProcessor(f)

	res := p.Process(context.Background(), models.PlaceRecord{Name: "Joe's", ProfileURL: "https://maps.example/place/2"}, "", nil)
	require.Len(t, res.Restaurant.Menu, 3)
	assert.Equal(t, []string{"Cheeseburger", "Milkshake", "Onion Rings"}, names(res.Restaurant.Menu))
	assert.Nil(t, res.Restaurant.Menu[0].Calories)
}

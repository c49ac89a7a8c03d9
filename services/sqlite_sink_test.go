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

func openTestSQLite(t *testing.T) *SQLiteSink {
	t.Helper()
	s, err := OpenSQLiteSink(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRestaurant() *models.Restaurant {
	return &models.Restaurant{
		ID:           "r-1",
		PlaceID:      "p-1",
		Name:         "Joe's Diner",
		URL:          "https://joes.example/",
		Hours:        &models.OpeningHours{OpenNow: true, WeekdayText: []string{"Monday: 9AM-5PM"}},
		Location:     models.GeoLocation{Latitude: 42.36, Longitude: -71.06},
		PhoneNumbers: []string{"(617) 555-0123", "(617) 555-0123"},
		Emails:       []string{},
		Menu: []models.DishRecord{
			{Name: "Cheeseburger", Price: "$12", Description: models.StringPtr("With fries"), Calories: models.StringPtr("N/A")},
			{Name: "Tacos", Price: "9", PhotoURL: models.StringPtr("https://img.example/t.jpg")},
		},
		MenuSource: models.MenuSource{URL: "https://joes.example/menu", Strategy: models.StrategyGeneric},
		ScrapedAt:  time.UnixMilli(1714564800123).UTC(),
	}
}

func TestSQLiteSinkRoundTrip(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()
	in := sampleRestaurant()
	require.NoError(t, s.Save(ctx, in))

	got, err := s.Restaurant(ctx, "r-1")
	require.NoError(t, err)
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("restaurant mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteSinkReplaces(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()
	in := sampleRestaurant()
	require.NoError(t, s.Save(ctx, in))

	in.Menu = in.Menu[:1]
	in.Hours = nil
	require.NoError(t, s.Save(ctx, in))

	got, err := s.Restaurant(ctx, "r-1")
	require.NoError(t, err)
	assert.Len(t, got.Menu, 1)
	assert.Nil(t, got.Hours)
}

func TestSQLiteSinkSeenAndMissing(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sampleRestaurant()))

	seen, err := s.Seen(ctx, models.PlaceRecord{PlaceID: "p-1"})
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = s.Seen(ctx, models.PlaceRecord{PlaceID: "p-2"})
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = s.Seen(ctx, models.PlaceRecord{Name: "No id"})
	require.NoError(t, err)
	assert.False(t, seen)

	_, err = s.Restaurant(ctx, "nope")
	assert.True(t, errors.Is(err, ErrRestaurantNotFound))
}

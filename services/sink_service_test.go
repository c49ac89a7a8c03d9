package services

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"MenuScout/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSinkWritesLines(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSONSink(&buf)
	require.NoError(t, s.Save(context.Background(), sampleRestaurant()))
	require.NoError(t, s.Save(context.Background(), &models.Restaurant{Name: "Second"}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "Joe's Diner", first["name"])
	assert.Equal(t, "generic", first["menu_source"].(map[string]any)["strategy"])
}

func TestTableSinkRendersMenu(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableSink(&buf).Save(context.Background(), sampleRestaurant()))

	out := buf.String()
	assert.Contains(t, out, "Joe's Diner (generic)")
	assert.Contains(t, out, "Cheeseburger")
	assert.Contains(t, out, "https://img.example/t.jpg")
	assert.Contains(t, strings.ToLower(out), "2 dishes")
}

func TestRestaurantFromData(t *testing.T) {
	in := sampleRestaurant()
	got, err := restaurantFromData(restaurantDocForTest(in))
	require.NoError(t, err)
	assert.Equal(t, in.Name, got.Name)
	assert.Equal(t, in.Location, got.Location)
	assert.Equal(t, in.PhoneNumbers, got.PhoneNumbers)
	assert.Equal(t, in.Hours, got.Hours)
	assert.Equal(t, models.StrategyGeneric, got.MenuSource.Strategy)
	require.Len(t, got.Menu, 2)
	assert.Equal(t, "With fries", *got.Menu[0].Description)
	assert.Nil(t, got.Menu[1].Description)

	_, err = restaurantFromData(map[string]interface{}{"title": "no location"})
	assert.Error(t, err)
}

// restaurantDocForTest mimics what Firestore hands back for a stored
// document: slices become []interface{}, nil pointers become nil.
func restaurantDocForTest(r *models.Restaurant) map[string]interface{} {
	data := restaurantDoc(r)
	toAny := func(ss []string) []interface{} {
		out := make([]interface{}, 0, len(ss))
		for _, s := range ss {
			out = append(out, s)
		}
		return out
	}
	data["phone_numbers"] = toAny(r.PhoneNumbers)
	data["emails"] = toAny(r.Emails)
	data["hours"] = map[string]interface{}{"open_now": r.Hours.OpenNow, "weekday_text": toAny(r.Hours.WeekdayText)}
	var menu []interface{}
	for _, d := range r.Menu {
		m := map[string]interface{}{"name": d.Name, "price": d.Price}
		for k, v := range map[string]*string{"size": d.Size, "calories": d.Calories, "description": d.Description, "photo_url": d.PhotoURL} {
			if v != nil {
				m[k] = *v
			} else {
				m[k] = nil
			}
		}
		menu = append(menu, m)
	}
	data["menu"] = menu
	return data
}

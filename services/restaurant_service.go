package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"MenuScout/models"

	"cloud.google.com/go/firestore"
	"github.com/mmcloughlin/geohash"
	"google.golang.org/api/iterator"
	"google.golang.org/genproto/googleapis/type/latlng"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const restaurantsCollection = "restaurants"

// RestaurantService is the Firestore sink. Documents carry a geohash so a
// later run can tell a place was already scraped.
type RestaurantService struct {
	FirestoreClient *firestore.Client
}

func NewRestaurantService(client *firestore.Client) *RestaurantService {
	return &RestaurantService{FirestoreClient: client}
}

func restaurantDoc(r *models.Restaurant) map[string]interface{} {
	menu := make([]map[string]interface{}, 0, len(r.Menu))
	for _, d := range r.Menu {
		menu = append(menu, map[string]interface{}{
			"name":        d.Name,
			"size":        d.Size,
			"price":       d.Price,
			"calories":    d.Calories,
			"description": d.Description,
			"photo_url":   d.PhotoURL,
		})
	}
	data := map[string]interface{}{
		"id":            r.ID,
		"place_id":      r.PlaceID,
		"title":         r.Name,
		"url":           r.URL,
		"location":      &latlng.LatLng{Latitude: r.Location.Latitude, Longitude: r.Location.Longitude},
		"geohash":       geohash.Encode(r.Location.Latitude, r.Location.Longitude),
		"phone_numbers": nonNil(r.PhoneNumbers),
		"emails":        nonNil(r.Emails),
		"menu":          menu,
		"menu_url":      r.MenuSource.URL,
		"strategy":      r.MenuSource.Strategy.String(),
		"scraped_at":    r.ScrapedAt,
	}
	if r.Hours != nil {
		data["hours"] = map[string]interface{}{
			"open_now":     r.Hours.OpenNow,
			"weekday_text": r.Hours.WeekdayText,
		}
	}
	return data
}

// Save stores r under its own id.
func (s *RestaurantService) Save(ctx context.Context, r *models.Restaurant) error {
	_, err := s.FirestoreClient.Collection(restaurantsCollection).Doc(r.ID).Set(ctx, restaurantDoc(r))
	return err
}

// Seen checks for a stored place with the same title within the same
// 5 character geohash cell.
func (s *RestaurantService) Seen(ctx context.Context, place models.PlaceRecord) (bool, error) {
	return s.CheckRestaurantExists(ctx, place.Location.Latitude, place.Location.Longitude, strings.TrimSpace(place.Name))
}

func (s *RestaurantService) CheckRestaurantExists(ctx context.Context, latitude, longitude float64, title string) (bool, error) {
	geohashPrefix := geohash.Encode(latitude, longitude)[:5]

	iter := s.FirestoreClient.Collection(restaurantsCollection).
		Where("geohash", ">=", geohashPrefix).
		Where("geohash", "<=", geohashPrefix+"~").
		Where("title", "==", title).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Restaurant reads one stored result back.
func (s *RestaurantService) Restaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	doc, err := s.FirestoreClient.Collection(restaurantsCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrRestaurantNotFound
	}
	if err != nil {
		return nil, err
	}
	return restaurantFromData(doc.Data())
}

func restaurantFromData(data map[string]interface{}) (*models.Restaurant, error) {
	r := &models.Restaurant{Menu: []models.DishRecord{}}
	r.ID, _ = data["id"].(string)
	r.PlaceID, _ = data["place_id"].(string)
	r.Name, _ = data["title"].(string)
	r.URL, _ = data["url"].(string)
	r.MenuSource.URL, _ = data["menu_url"].(string)
	if st, ok := data["strategy"].(string); ok {
		r.MenuSource.Strategy = models.ParseStrategy(st)
	}
	if geo, ok := data["location"].(*latlng.LatLng); ok {
		r.Location = models.GeoLocation{Latitude: geo.Latitude, Longitude: geo.Longitude}
	} else {
		return nil, fmt.Errorf("error getting location data")
	}
	if t, ok := data["scraped_at"].(time.Time); ok {
		r.ScrapedAt = t.UTC()
	}
	r.PhoneNumbers = stringSlice(data["phone_numbers"])
	r.Emails = stringSlice(data["emails"])
	if h, ok := data["hours"].(map[string]interface{}); ok {
		open, _ := h["open_now"].(bool)
		r.Hours = &models.OpeningHours{OpenNow: open, WeekdayText: stringSlice(h["weekday_text"])}
	}
	if items, ok := data["menu"].([]interface{}); ok {
		for _, it := range items {
			m, ok := it.(map[string]interface{})
			if !ok {
				continue
			}
			d := models.DishRecord{}
			d.Name, _ = m["name"].(string)
			d.Price, _ = m["price"].(string)
			d.Size = optString(m["size"])
			d.Calories = optString(m["calories"])
			d.Description = optString(m["description"])
			d.PhotoURL = optString(m["photo_url"])
			r.Menu = append(r.Menu, d)
		}
	}
	return r, nil
}

func stringSlice(v interface{}) []string {
	items, _ := v.([]interface{})
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func optString(v interface{}) *string {
	if s, ok := v.(string); ok {
		return models.StringPtr(s)
	}
	return nil
}

func (s *RestaurantService) Close() error {
	return s.FirestoreClient.Close()
}

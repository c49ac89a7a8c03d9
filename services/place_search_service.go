package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"MenuScout/models"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// PlaceSearch supplies place candidates page by page.
type PlaceSearch interface {
	Search(ctx context.Context, query, location string) (*models.SearchPage, error)
	ContinueSearch(ctx context.Context, token string) (*models.SearchPage, error)
}

const (
	placesStatusOK             = "OK"
	placesStatusZeroResults    = "ZERO_RESULTS"
	placesStatusInvalidRequest = "INVALID_REQUEST"

	detailFields = "place_id,name,formatted_address,website,url,formatted_phone_number,opening_hours,geometry"
)

// GooglePlacesService talks to the Places web service: one text search per
// page and one details call per place.
type GooglePlacesService struct {
	client  *resty.Client
	BaseURL string
	APIKey  string
	// Throttle, when set, is waited on before every request.
	Throttle interface {
		Wait(ctx context.Context) error
	}
	// A fresh page token is rejected with INVALID_REQUEST for a few seconds.
	TokenWait     time.Duration
	TokenAttempts int
}

// NewGooglePlacesService uses client for every call, so a client taken from
// FetchService.Client carries its timeout and transient retry policy. A nil
// client gets a bare resty client.
func NewGooglePlacesService(client *resty.Client, apiKey, baseURL string) *GooglePlacesService {
	if client == nil {
		client = resty.New()
	}
	if baseURL == "" {
		baseURL = "https://maps.googleapis.com/maps/api/place"
	}
	return &GooglePlacesService{
		client:        client,
		BaseURL:       strings.TrimRight(baseURL, "/"),
		APIKey:        apiKey,
		TokenWait:     2 * time.Second,
		TokenAttempts: 5,
	}
}

func (s *GooglePlacesService) wait(ctx context.Context) error {
	if s.Throttle == nil {
		return nil
	}
	return s.Throttle.Wait(ctx)
}

type placesGeometry struct {
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
}

type placesResult struct {
	PlaceID              string         `json:"place_id"`
	Name                 string         `json:"name"`
	FormattedAddress     string         `json:"formatted_address"`
	Website              string         `json:"website"`
	URL                  string         `json:"url"`
	FormattedPhoneNumber string         `json:"formatted_phone_number"`
	Geometry             placesGeometry `json:"geometry"`
	OpeningHours         *struct {
		OpenNow     bool     `json:"open_now"`
		WeekdayText []string `json:"weekday_text"`
	} `json:"opening_hours"`
}

type textSearchResponse struct {
	Results       []placesResult `json:"results"`
	NextPageToken string         `json:"next_page_token"`
	Status        string         `json:"status"`
	ErrorMessage  string         `json:"error_message"`
}

type detailsResponse struct {
	Result       placesResult `json:"result"`
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message"`
}

func (s *GooglePlacesService) Search(ctx context.Context, query, location string) (*models.SearchPage, error) {
	q := strings.TrimSpace(query + " in " + location)
	if location == "" {
		q = query
	}
	resp, err := s.textSearch(ctx, map[string]string{"query": q})
	if err != nil {
		return nil, err
	}
	return s.toPage(ctx, resp), nil
}

func (s *GooglePlacesService) ContinueSearch(ctx context.Context, token string) (*models.SearchPage, error) {
	attempts := s.TokenAttempts
	if attempts < 1 {
		attempts = 1
	}
	var last error
	for i := 0; i < attempts; i++ {
		resp, err := s.textSearch(ctx, map[string]string{"pagetoken": token})
		if err == nil {
			return s.toPage(ctx, resp), nil
		}
		last = err
		if !strings.Contains(err.Error(), placesStatusInvalidRequest) {
			return nil, err
		}
		log.Debug().Int("attempt", i+1).Msg("page token not ready")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.TokenWait):
		}
	}
	return nil, last
}

func (s *GooglePlacesService) textSearch(ctx context.Context, params map[string]string) (*textSearchResponse, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	var out textSearchResponse
	res, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("key", s.APIKey).
		SetResult(&out).
		ForceContentType("application/json").
		Get(s.BaseURL + "/textsearch/json")
	if err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("text search: status %d", res.StatusCode())
	}
	if out.Status != placesStatusOK && out.Status != placesStatusZeroResults {
		return nil, fmt.Errorf("text search: %s %s", out.Status, out.ErrorMessage)
	}
	return &out, nil
}

func (s *GooglePlacesService) details(ctx context.Context, placeID string) (*placesResult, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	var out detailsResponse
	res, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("place_id", placeID).
		SetQueryParam("fields", detailFields).
		SetQueryParam("key", s.APIKey).
		SetResult(&out).
		ForceContentType("application/json").
		Get(s.BaseURL + "/details/json")
	if err != nil {
		return nil, fmt.Errorf("details: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("details: status %d", res.StatusCode())
	}
	if out.Status != placesStatusOK {
		return nil, fmt.Errorf("details: %s %s", out.Status, out.ErrorMessage)
	}
	return &out.Result, nil
}

// toPage enriches every search hit with its details. A failed details call
// keeps the bare hit.
func (s *GooglePlacesService) toPage(ctx context.Context, resp *textSearchResponse) *models.SearchPage {
	page := &models.SearchPage{NextPageToken: resp.NextPageToken}
	for _, hit := range resp.Results {
		r := hit
		if d, err := s.details(ctx, hit.PlaceID); err != nil {
			log.Warn().Err(err).Str("place", hit.Name).Msg("place details unavailable")
		} else {
			r = *d
			if r.PlaceID == "" {
				r.PlaceID = hit.PlaceID
			}
		}
		page.Places = append(page.Places, toPlaceRecord(r))
	}
	return page
}

func toPlaceRecord(r placesResult) models.PlaceRecord {
	rec := models.PlaceRecord{
		PlaceID:          r.PlaceID,
		Name:             strings.TrimSpace(r.Name),
		Address:          r.FormattedAddress,
		Website:          r.Website,
		ProfileURL:       r.URL,
		LocalPhoneNumber: r.FormattedPhoneNumber,
		Location: models.GeoLocation{
			Latitude:  r.Geometry.Location.Lat,
			Longitude: r.Geometry.Location.Lng,
		},
	}
	if r.OpeningHours != nil {
		rec.Hours = &models.OpeningHours{
			OpenNow:     r.OpeningHours.OpenNow,
			WeekdayText: r.OpeningHours.WeekdayText,
		}
	}
	return rec
}

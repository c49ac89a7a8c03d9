package services

import (
	"context"
	"fmt"
	"sync"

	"MenuScout/models"
)

// fakeFetcher serves canned bodies keyed by exact URL.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func newFakeFetcher(pages map[string]string) *fakeFetcher {
	return &fakeFetcher{pages: pages}
}

func (f *fakeFetcher) Get(_ context.Context, rawURL string) (*Page, error) {
	if _, err := ParseFetchURL(rawURL); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, rawURL)
	body, ok := f.pages[rawURL]
	if !ok {
		return nil, fmt.Errorf("unexpected status 404 for %s", rawURL)
	}
	return &Page{URL: rawURL, StatusCode: 200, Body: []byte(body)}, nil
}

func (f *fakeFetcher) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakePhotos struct {
	photos []models.Photo
	err    error
	asked  []string
}

func (f *fakePhotos) PhotosFor(_ context.Context, name, location string) ([]models.Photo, error) {
	f.asked = append(f.asked, name+"|"+location)
	return f.photos, f.err
}

type fakeNutrition map[string]string

func (f fakeNutrition) CaloriesFor(_ context.Context, dish string) (string, error) {
	if cal, ok := f[dish]; ok {
		return cal, nil
	}
	return models.NotAvailable, fmt.Errorf("no calories for %q", dish)
}

// fakeSearch hands out pre-built pages; page i+1 is reached with token "page-<i+1>".
type fakeSearch struct {
	pages     [][]models.PlaceRecord
	searchErr error
}

func (f *fakeSearch) page(i int) *models.SearchPage {
	p := &models.SearchPage{}
	if i < len(f.pages) {
		p.Places = f.pages[i]
	}
	if i+1 < len(f.pages) {
		p.NextPageToken = fmt.Sprintf("page-%d", i+1)
	}
	return p
}

func (f *fakeSearch) Search(_ context.Context, _, _ string) (*models.SearchPage, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.page(0), nil
}

func (f *fakeSearch) ContinueSearch(_ context.Context, token string) (*models.SearchPage, error) {
	var i int
	if _, err := fmt.Sscanf(token, "page-%d", &i); err != nil {
		return nil, err
	}
	return f.page(i), nil
}

// memorySink keeps everything it is given.
type memorySink struct {
	mu    sync.Mutex
	saved []*models.Restaurant
	seen  map[string]bool
}

func (s *memorySink) Save(_ context.Context, r *models.Restaurant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, r)
	return nil
}

func (s *memorySink) Close() error { return nil }

func (s *memorySink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, r := range s.saved {
		out = append(out, r.Name)
	}
	return out
}

type seenSink struct {
	memorySink
}

func (s *seenSink) Seen(_ context.Context, place models.PlaceRecord) (bool, error) {
	return s.seen[place.Name], nil
}

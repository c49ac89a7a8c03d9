package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"MenuScout/models"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Sink receives completed restaurants. Implementations must be safe for
// concurrent Save calls.
type Sink interface {
	Save(ctx context.Context, r *models.Restaurant) error
	Close() error
}

// RestaurantReader is implemented by sinks that can serve stored results back.
type RestaurantReader interface {
	Restaurant(ctx context.Context, id string) (*models.Restaurant, error)
}

var ErrRestaurantNotFound = errors.New("restaurant not found")

// JSONSink writes one JSON document per line.
type JSONSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{enc: json.NewEncoder(w)}
}

func (s *JSONSink) Save(_ context.Context, r *models.Restaurant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(r)
}

func (s *JSONSink) Close() error { return nil }

// TableSink renders each restaurant's menu as a console table.
type TableSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTableSink(w io.Writer) *TableSink {
	return &TableSink{w: w}
}

func (s *TableSink) Save(_ context.Context, r *models.Restaurant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := table.NewWriter()
	t.SetOutputMirror(s.w)
	t.SetTitle(fmt.Sprintf("%s (%s)", r.Name, r.MenuSource.Strategy))
	t.AppendHeader(table.Row{"Dish", "Price", "Calories", "Photo"})
	for _, d := range r.Menu {
		t.AppendRow(table.Row{d.Name, d.Price, deref(d.Calories), deref(d.PhotoURL)})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d dishes", len(r.Menu)), "", "", ""})
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

func (s *TableSink) Close() error { return nil }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

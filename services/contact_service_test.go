package services

import (
	"testing"

	"MenuScout/models"

	"github.com/stretchr/testify/assert"
)

func TestContactScrape(t *testing.T) {
	text := `Joe's Diner. Call us at (617) 555-0123 or +1 617-555-0199 ext. 12.
Open 11-22 daily, burgers from 12.99.
Email info@joes.com, or write to <bookings@joes.co.uk>.
Not an email: joe@localhost and @joes.`

	phones, emails := ContactScraper{}.Scrape(text)
	assert.Equal(t, []string{"(617) 555-0123", "+1 617-555-0199 ext. 12"}, phones)
	assert.Equal(t, []string{"info@joes.com", "bookings@joes.co.uk"}, emails)
}

func TestContactScrapeInternational(t *testing.T) {
	phones, _ := ContactScraper{}.Scrape("Tel: 0044 20 7946 0958 / fax 020.7946.0959")
	assert.Equal(t, []string{"0044 20 7946 0958", "020.7946.0959"}, phones)
}

func TestContactScrapeAdjacentNumbers(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"Call (617) 555-1234 (617) 555-9999 today", []string{"(617) 555-1234", "(617) 555-9999"}},
		{"617-555-1234 617-555-9999", []string{"617-555-1234", "617-555-9999"}},
		{"020 7946 0958 / 020 7946 0959", []string{"020 7946 0958", "020 7946 0959"}},
		{"0044 20 7946 0958 0044 20 7946 0959", []string{"0044 20 7946 0958", "0044 20 7946 0959"}},
		{"617 555 1234 617 555 9999 x12", []string{"617 555 1234", "617 555 9999 x12"}},
		{"Order 1234567890123456789", nil},
	}
	for _, tt := range tests {
		phones, _ := ContactScraper{}.Scrape(tt.text)
		assert.Equal(t, tt.want, phones, tt.text)
	}
}

func TestContactAugmentAppends(t *testing.T) {
	r := &models.Restaurant{PhoneNumbers: []string{"(617) 555-0123"}}
	c := ContactScraper{}
	c.Augment(r, "Call (617) 555-0123, mail mailto:hi@joes.com")
	c.Augment(r, "Call (617) 555-0123")
	c.Augment(r, "   ")

	assert.Equal(t, []string{"(617) 555-0123", "(617) 555-0123", "(617) 555-0123"}, r.PhoneNumbers)
	assert.Equal(t, []string{"hi@joes.com"}, r.Emails)
}

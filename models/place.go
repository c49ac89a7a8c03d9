package models

// PlaceRecord is one place candidate handed over by the place search.
// It is never mutated after it is received.
type PlaceRecord struct {
	PlaceID          string        `json:"place_id"`
	Name             string        `json:"name"`
	Address          string        `json:"address"`
	Website          string        `json:"website,omitempty"`
	ProfileURL       string        `json:"profile_url,omitempty"` // public listing page, scanned for outbound menu links
	LocalPhoneNumber string        `json:"local_phone_number,omitempty"`
	Hours            *OpeningHours `json:"hours,omitempty"`
	Location         GeoLocation   `json:"location"`
}

type GeoLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type OpeningHours struct {
	OpenNow     bool     `json:"open_now"`
	WeekdayText []string `json:"weekday_text"`
}

// SearchPage is one page of place search results.
type SearchPage struct {
	Places        []PlaceRecord `json:"places"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}

// Anchor is a link element seen on a page.
type Anchor struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// Photo is a captioned image found by the photo search.
type Photo struct {
	Caption  string `json:"caption"`
	ImageURL string `json:"image_url"`
}

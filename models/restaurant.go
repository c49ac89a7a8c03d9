package models

import "time"

// NotAvailable marks a field that was looked for and not found.
const NotAvailable = "N/A"

// Strategy is the closed set of menu extraction strategies.
type Strategy int

const (
	StrategyUnknown Strategy = iota
	StrategyPlatformA
	StrategyPlatformB
	StrategyGeneric
)

func (s Strategy) String() string {
	switch s {
	case StrategyPlatformA:
		return "platform_a"
	case StrategyPlatformB:
		return "platform_b"
	case StrategyGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(b []byte) error {
	*s = ParseStrategy(string(b))
	return nil
}

// ParseStrategy is the inverse of String. Unrecognised names map to StrategyUnknown.
func ParseStrategy(name string) Strategy {
	switch name {
	case "platform_a":
		return StrategyPlatformA
	case "platform_b":
		return StrategyPlatformB
	case "generic":
		return StrategyGeneric
	default:
		return StrategyUnknown
	}
}

// MenuSource is the page and strategy chosen for one restaurant.
type MenuSource struct {
	URL      string   `json:"url"`
	Strategy Strategy `json:"strategy"`
}

// DishRecord is one extracted menu entry. Optional fields are nil when the
// source never exposes them; Price is always set.
type DishRecord struct {
	Name        string  `json:"name"`
	Size        *string `json:"size"`
	Price       string  `json:"price"`
	Calories    *string `json:"calories"`
	Description *string `json:"description"`
	PhotoURL    *string `json:"photo_url"`
}

// Restaurant is the completed result for one place.
type Restaurant struct {
	ID           string        `json:"id"`
	PlaceID      string        `json:"place_id"`
	Name         string        `json:"name"`
	URL          string        `json:"url"`
	Hours        *OpeningHours `json:"hours"`
	Location     GeoLocation   `json:"location"`
	PhoneNumbers []string      `json:"phone_numbers"`
	Emails       []string      `json:"emails"`
	Menu         []DishRecord  `json:"menu"`
	MenuSource   MenuSource    `json:"menu_source"`
	ScrapedAt    time.Time     `json:"scraped_at"`
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}

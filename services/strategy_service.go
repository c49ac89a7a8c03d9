package services

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"MenuScout/models"
	"MenuScout/utils"

	"github.com/PuerkitoBio/goquery"
)

// ExtractionStrategy turns a menu source URL into dish records.
type ExtractionStrategy interface {
	Kind() models.Strategy
	Extract(ctx context.Context, sourceURL string) ([]models.DishRecord, error)
}

// StrategySet dispatches on the closed strategy enum.
type StrategySet map[models.Strategy]ExtractionStrategy

func NewStrategySet(strategies ...ExtractionStrategy) StrategySet {
	set := StrategySet{}
	for _, s := range strategies {
		set[s.Kind()] = s
	}
	return set
}

// Extract runs the strategy registered for src. Unknown sources and
// unregistered strategies yield no records.
func (set StrategySet) Extract(ctx context.Context, src models.MenuSource) ([]models.DishRecord, error) {
	if src.Strategy == models.StrategyUnknown {
		return nil, nil
	}
	s, ok := set[src.Strategy]
	if !ok {
		return nil, fmt.Errorf("no extractor registered for %s", src.Strategy)
	}
	return s.Extract(ctx, src.URL)
}

func resolveHref(base, href string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: %q", utils.ErrMalformedURL, base)
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("%w: %q", utils.ErrMalformedURL, href)
	}
	return b.ResolveReference(ref).String(), nil
}

// PlatformAStrategy reads listing pages that link out to a full menu page
// made of item containers.
type PlatformAStrategy struct {
	Fetcher Fetcher
	// FullMenuSelector finds the link from the listing page to the full menu.
	FullMenuSelector string
	// ItemSelector finds one container per dish on the full menu page.
	ItemSelector string
	// NameClass is matched as a substring of a sub-element's class attribute.
	NameClass string
	// MinLineLength drops text lines of this many runes or fewer.
	MinLineLength int
}

func NewPlatformAStrategy(f Fetcher) *PlatformAStrategy {
	return &PlatformAStrategy{
		Fetcher:          f,
		FullMenuSelector: "a.pt5.ttl.zred",
		ItemSelector:     "div.tmi",
		NameClass:        "name",
		MinLineLength:    1,
	}
}

func (s *PlatformAStrategy) Kind() models.Strategy { return models.StrategyPlatformA }

func (s *PlatformAStrategy) Extract(ctx context.Context, sourceURL string) ([]models.DishRecord, error) {
	doc, page, err := FetchDocument(ctx, s.Fetcher, sourceURL)
	if err != nil {
		return nil, err
	}

	href, ok := doc.Find(s.FullMenuSelector).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return nil, fmt.Errorf("%w: full menu link %q on %s", utils.ErrMissingElement, s.FullMenuSelector, sourceURL)
	}
	fullMenuURL, err := resolveHref(page.URL, href)
	if err != nil {
		return nil, err
	}

	menuDoc, _, err := FetchDocument(ctx, s.Fetcher, fullMenuURL)
	if err != nil {
		return nil, err
	}

	var dishes []models.DishRecord
	menuDoc.Find(s.ItemSelector).Each(func(_ int, container *goquery.Selection) {
		dishes = append(dishes, s.parseContainer(container)...)
	})
	return dishes, nil
}

// parseContainer emits one dish per sub-element whose class mentions
// NameClass. The name element's own lines are name, price and description in
// that order. A single-line name element takes price and description from the
// container text that follows it.
func (s *PlatformAStrategy) parseContainer(container *goquery.Selection) []models.DishRecord {
	var dishes []models.DishRecord
	container.Find("div").Each(func(_ int, div *goquery.Selection) {
		if !strings.Contains(div.AttrOr("class", ""), s.NameClass) {
			return
		}
		lines := textLines(lineText(div), s.MinLineLength)
		if len(lines) == 0 {
			return
		}
		fields := lines[1:]
		if len(fields) == 0 {
			fields = s.followingFields(container, lines[0])
		}

		dish := models.DishRecord{Name: lines[0], Price: models.NotAvailable}
		if len(fields) > 0 {
			dish.Price = fields[0]
		}
		if len(fields) > 1 {
			dish.Description = models.StringPtr(fields[1])
		}
		dishes = append(dishes, dish)
	})
	return dishes
}

func (s *PlatformAStrategy) followingFields(container *goquery.Selection, name string) []string {
	fields := textLines(lineText(container), s.MinLineLength)
	for i, f := range fields {
		if f == name {
			return fields[i+1:]
		}
	}
	return nil
}

// PlatformBStrategy reads single-page menus with an items container.
type PlatformBStrategy struct {
	Fetcher             Fetcher
	ContainerSelector   string
	ItemClass           string
	DescriptionSelector string
	PriceSelector       string
	TitleSelector       string
	MinLineLength       int
	// MultiLineName keeps every title line in the dish name, joined by
	// newlines, instead of only the first one.
	MultiLineName bool
}

func NewPlatformBStrategy(f Fetcher) *PlatformBStrategy {
	return &PlatformBStrategy{
		Fetcher:             f,
		ContainerSelector:   "div.items",
		ItemClass:           "item",
		DescriptionSelector: "div.description.text",
		PriceSelector:       "span.price",
		TitleSelector:       "h4.item-title",
		MinLineLength:       1,
		MultiLineName:       true,
	}
}

func (s *PlatformBStrategy) Kind() models.Strategy { return models.StrategyPlatformB }

func (s *PlatformBStrategy) Extract(ctx context.Context, sourceURL string) ([]models.DishRecord, error) {
	doc, _, err := FetchDocument(ctx, s.Fetcher, sourceURL)
	if err != nil {
		return nil, err
	}

	container := doc.Find(s.ContainerSelector).First()
	if container.Length() == 0 {
		return nil, fmt.Errorf("%w: items container %q on %s", utils.ErrMissingElement, s.ContainerSelector, sourceURL)
	}

	var dishes []models.DishRecord
	container.Find("div").Each(func(_ int, item *goquery.Selection) {
		if !hasClassToken(item, s.ItemClass) {
			return
		}
		title := item.Find(s.TitleSelector).First()
		if title.Length() == 0 {
			return
		}
		lines := textLines(lineText(title), s.MinLineLength)
		if len(lines) == 0 {
			return
		}

		dish := models.DishRecord{Name: lines[0], Price: models.NotAvailable}
		if s.MultiLineName {
			dish.Name = strings.Join(lines, "\n")
		}
		if desc := item.Find(s.DescriptionSelector).First(); desc.Length() > 0 {
			dish.Description = models.StringPtr(strings.TrimSpace(desc.Text()))
		}
		if price := item.Find(s.PriceSelector).First(); price.Length() > 0 {
			if p := strings.TrimSpace(price.Text()); p != "" {
				dish.Price = p
			}
		}
		dishes = append(dishes, dish)
	})
	return dishes, nil
}

var priceRegex = regexp.MustCompile(`\$?(\d+(?:[.,]\d{1,2})?)`)

// GenericStrategy scrapes arbitrary pages that mark dishes with a
// "menu-item" class.
type GenericStrategy struct {
	Fetcher   Fetcher
	ItemClass string
}

func NewGenericStrategy(f Fetcher) *GenericStrategy {
	return &GenericStrategy{Fetcher: f, ItemClass: "menu-item"}
}

func (s *GenericStrategy) Kind() models.Strategy { return models.StrategyGeneric }

func (s *GenericStrategy) Extract(ctx context.Context, sourceURL string) ([]models.DishRecord, error) {
	if _, err := ParseFetchURL(sourceURL); err != nil {
		return nil, err
	}
	doc, _, err := FetchDocument(ctx, s.Fetcher, sourceURL)
	if err != nil {
		return nil, err
	}

	var dishes []models.DishRecord
	doc.Find("*").Each(func(_ int, el *goquery.Selection) {
		if !hasClassToken(el, s.ItemClass) {
			return
		}
		if dish, ok := parseGenericItem(lineText(el)); ok {
			dishes = append(dishes, dish)
		}
	})
	return dishes, nil
}

// parseGenericItem splits free text into a name and a price token.
func parseGenericItem(text string) (models.DishRecord, bool) {
	// Some sites double-escape the dollar entity, leaving it literal in the text.
	text = strings.ReplaceAll(text, "&dollar;", "$")

	dish := models.DishRecord{Price: models.NotAvailable}
	name := text
	if m := priceRegex.FindStringSubmatch(text); m != nil {
		dish.Price = m[1]
		name = strings.ReplaceAll(text, m[0], "")
	}
	dish.Name = firstLine(name)
	if dish.Name == "" {
		return models.DishRecord{}, false
	}
	return dish, true
}

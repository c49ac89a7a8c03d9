package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"MenuScout/models"
	"MenuScout/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
	"github.com/rs/zerolog/log"
)

type PhotoPolicy int

const (
	// PhotoBestScore assigns the caption with the highest ratio.
	PhotoBestScore PhotoPolicy = iota
	// PhotoLastMatch assigns the last caption over the threshold.
	PhotoLastMatch
)

func ParsePhotoPolicy(name string) PhotoPolicy {
	if strings.EqualFold(name, "last") {
		return PhotoLastMatch
	}
	return PhotoBestScore
}

// PhotoMatcher attaches captioned photos to dishes with similar names.
type PhotoMatcher struct {
	Threshold float64
	Policy    PhotoPolicy
}

// Attach sets PhotoURL on every dish that some caption clears the threshold
// for, and returns how many dishes got a photo.
func (m PhotoMatcher) Attach(menu []models.DishRecord, photos []models.Photo) int {
	attached := 0
	for i := range menu {
		best := -1.0
		var chosen string
		for _, p := range photos {
			ratio := utils.SimilarityRatio(menu[i].Name, p.Caption)
			if ratio < m.Threshold {
				continue
			}
			if m.Policy == PhotoLastMatch || ratio > best {
				best = ratio
				chosen = p.ImageURL
			}
		}
		if chosen != "" {
			menu[i].PhotoURL = models.StringPtr(chosen)
			attached++
		}
	}
	return attached
}

// PhotoSearch finds captioned food photos for a place.
type PhotoSearch interface {
	PhotosFor(ctx context.Context, name, location string) ([]models.Photo, error)
}

// YelpPhotoService scrapes food photos from a review site's public pages.
type YelpPhotoService struct {
	Fetcher Fetcher
	BaseURL string
	// MinNameSimilarity is the JaroWinkler score the first search hit must
	// reach to count as the same place.
	MinNameSimilarity float64
}

func NewYelpPhotoService(f Fetcher) *YelpPhotoService {
	return &YelpPhotoService{Fetcher: f, BaseURL: "https://www.yelp.com", MinNameSimilarity: 0.75}
}

func (s *YelpPhotoService) PhotosFor(ctx context.Context, name, location string) ([]models.Photo, error) {
	q := url.Values{}
	q.Set("find_desc", name)
	q.Set("find_loc", location)
	searchURL := strings.TrimRight(s.BaseURL, "/") + "/search?" + q.Encode()

	doc, page, err := FetchDocument(ctx, s.Fetcher, searchURL)
	if err != nil {
		return nil, err
	}
	title := doc.Find("li.regular-search-result").First().Find("h3.search-result-title").First()
	if title.Length() == 0 {
		return nil, fmt.Errorf("%w: no search result for %q", utils.ErrLookupMiss, name)
	}

	// The title starts with the result's rank, e.g. "1. Joe's Diner".
	fields := strings.Fields(title.Text())
	resultName := ""
	if len(fields) > 1 {
		resultName = strings.Join(fields[1:], " ")
	}
	similarity := matchr.JaroWinkler(strings.ToLower(resultName), strings.ToLower(name), false)
	if similarity < s.MinNameSimilarity {
		return nil, fmt.Errorf("%w: first result %q does not match %q (%.2f)", utils.ErrLookupMiss, resultName, name, similarity)
	}
	log.Debug().Str("place", name).Str("match", resultName).Float64("similarity", similarity).Msg("photo search match found")

	href, ok := title.Find("a").First().Attr("href")
	if !ok {
		return nil, fmt.Errorf("%w: result link for %q", utils.ErrMissingElement, name)
	}
	bizURL, err := resolveHref(page.URL, href)
	if err != nil {
		return nil, err
	}
	bizPage, err := s.Fetcher.Get(ctx, bizURL)
	if err != nil {
		return nil, err
	}

	photosURL := strings.Replace(bizPage.URL, "/biz/", "/biz_photos/", 1) + "?start=0&tab=food"
	photosDoc, photosPage, err := FetchDocument(ctx, s.Fetcher, photosURL)
	if err != nil {
		return nil, err
	}

	var links []string
	photosDoc.Find(`a[data-analytics-label="biz-photo"]`).Each(func(_ int, a *goquery.Selection) {
		if h, ok := a.Attr("href"); ok {
			if abs, err := resolveHref(photosPage.URL, h); err == nil {
				links = append(links, abs)
			}
		}
	})

	var photos []models.Photo
	// the first link is the listing's cover photo
	for i, link := range links {
		if i == 0 {
			continue
		}
		pic, _, err := FetchDocument(ctx, s.Fetcher, link)
		if err != nil {
			if ctx.Err() != nil {
				return photos, ctx.Err()
			}
			log.Debug().Err(err).Str("url", link).Msg("skipping photo page")
			continue
		}
		caption := strings.TrimSpace(pic.Find("div.caption.selected-photo-caption-text").First().Text())
		if len([]rune(caption)) <= 1 {
			continue
		}
		src, ok := pic.Find("img.photo-box-img").First().Attr("src")
		if !ok || src == "" {
			continue
		}
		photos = append(photos, models.Photo{Caption: caption, ImageURL: src})
	}
	return photos, nil
}

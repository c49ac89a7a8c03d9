package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"MenuScout/models"
	"MenuScout/utils"

	"github.com/openfoodfacts/openfoodfacts-go"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// NutritionLookup resolves a calorie count for a dish name.
type NutritionLookup interface {
	CaloriesFor(ctx context.Context, dish string) (string, error)
}

// FillCalories sets Calories on every dish. Misses and failures become "N/A".
func FillCalories(ctx context.Context, lookup NutritionLookup, menu []models.DishRecord) {
	for i := range menu {
		if ctx.Err() != nil {
			return
		}
		cal, err := lookup.CaloriesFor(ctx, menu[i].Name)
		if err != nil || strings.TrimSpace(cal) == "" {
			if err != nil && !errors.Is(err, utils.ErrLookupMiss) {
				log.Debug().Err(err).Str("dish", menu[i].Name).Msg("nutrition lookup failed")
			}
			cal = models.NotAvailable
		}
		menu[i].Calories = models.StringPtr(cal)
	}
}

// NutritionChain asks each lookup in turn and keeps the first hit.
type NutritionChain []NutritionLookup

func (c NutritionChain) CaloriesFor(ctx context.Context, dish string) (string, error) {
	var errs []error
	for _, l := range c {
		cal, err := l.CaloriesFor(ctx, dish)
		if err == nil && cal != "" && cal != models.NotAvailable {
			return cal, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return models.NotAvailable, fmt.Errorf("%w: calories for %q", utils.ErrLookupMiss, dish)
	}
	return models.NotAvailable, errors.Join(errs...)
}

// ProductNutriments returns the nutriment table of one product as loose JSON.
type ProductNutriments interface {
	Nutriments(code string) (map[string]any, error)
}

type offProducts struct {
	client *openfoodfacts.Client
}

func (o offProducts) Nutriments(code string) (map[string]any, error) {
	product, err := o.client.Product(code)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(product.Nutriments)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OpenFoodFactsNutrition searches the product database by dish name and reads
// the energy of the first hit.
type OpenFoodFactsNutrition struct {
	Fetcher   Fetcher
	SearchURL string
	Products  ProductNutriments
}

func NewOpenFoodFactsNutrition(f Fetcher, searchURL string) *OpenFoodFactsNutrition {
	client := openfoodfacts.NewClient("world", "", "")
	return &OpenFoodFactsNutrition{
		Fetcher:   f,
		SearchURL: searchURL,
		Products:  offProducts{client: &client},
	}
}

type offSearchResult struct {
	Products []struct {
		Code string `json:"code"`
	} `json:"products"`
}

func (n *OpenFoodFactsNutrition) CaloriesFor(ctx context.Context, dish string) (string, error) {
	q := url.Values{}
	q.Set("search_terms", dish)
	q.Set("search_simple", "1")
	q.Set("action", "process")
	q.Set("json", "1")
	q.Set("page_size", "1")

	page, err := n.Fetcher.Get(ctx, n.SearchURL+"?"+q.Encode())
	if err != nil {
		return models.NotAvailable, err
	}
	var res offSearchResult
	if err := json.Unmarshal(page.Body, &res); err != nil {
		return models.NotAvailable, fmt.Errorf("decode product search: %w", err)
	}
	if len(res.Products) == 0 || res.Products[0].Code == "" {
		return models.NotAvailable, fmt.Errorf("%w: no product for %q", utils.ErrLookupMiss, dish)
	}

	nutriments, err := n.Products.Nutriments(res.Products[0].Code)
	if err != nil {
		return models.NotAvailable, err
	}
	kcal, ok := energyKcal(nutriments)
	if !ok {
		return models.NotAvailable, fmt.Errorf("%w: no energy value for %q", utils.ErrLookupMiss, dish)
	}
	return strconv.Itoa(int(math.Round(kcal))), nil
}

const kjPerKcal = 4.184

func energyKcal(n map[string]any) (float64, bool) {
	if v, ok := number(n["energy-kcal_100g"]); ok {
		return v, true
	}
	if v, ok := number(n["energy_100g"]); ok {
		return v / kjPerKcal, true
	}
	return 0, false
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, t > 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil && f > 0
	}
	return 0, false
}

// ChatCompleter is the part of the OpenAI client the estimator needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

var integerRegex = regexp.MustCompile(`\d+`)

// OpenAINutrition asks a chat model for a rough per-serving estimate.
type OpenAINutrition struct {
	Client ChatCompleter
	Model  string
}

// NewOpenAINutrition builds the estimator. An empty baseURL keeps the
// default endpoint.
func NewOpenAINutrition(apiKey, baseURL, model string) *OpenAINutrition {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAINutrition{Client: openai.NewClientWithConfig(cfg), Model: model}
}

func (n *OpenAINutrition) CaloriesFor(ctx context.Context, dish string) (string, error) {
	resp, err := n.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: n.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You estimate calories of restaurant dishes. Answer with one integer number of kcal per serving, or N/A if the text is not a dish."},
			{Role: openai.ChatMessageRoleUser, Content: dish},
		},
		Temperature: 0,
	})
	if err != nil {
		return models.NotAvailable, err
	}
	if len(resp.Choices) == 0 {
		return models.NotAvailable, fmt.Errorf("%w: empty completion for %q", utils.ErrLookupMiss, dish)
	}
	m := integerRegex.FindString(resp.Choices[0].Message.Content)
	if m == "" {
		return models.NotAvailable, fmt.Errorf("%w: no estimate for %q", utils.ErrLookupMiss, dish)
	}
	return m, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"MenuScout/utils"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Page is the raw result of a fetch. URL is the address after redirects.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Fetcher performs plain HTTP GETs. It knows nothing about menus.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) (*Page, error)
}

type FetchOptions struct {
	Timeout      time.Duration
	MaxAttempts  int // includes the initial attempt
	RetryWait    time.Duration
	RetryMaxWait time.Duration
	// RequestsPerSecond throttles outgoing requests. Zero disables throttling.
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
	CloudflareBypass  bool
}

// FetchService is the resty-backed Fetcher. Only transient failures
// (connection errors, timeouts, 429 and 5xx) are retried, with backoff.
type FetchService struct {
	client  *resty.Client
	limiter *rate.Limiter
}

func NewFetchService(opts FetchOptions) *FetchService {
	client := resty.New()
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.MaxAttempts > 1 {
		client.SetRetryCount(opts.MaxAttempts - 1)
	}
	if opts.RetryWait > 0 {
		client.SetRetryWaitTime(opts.RetryWait)
	}
	if opts.RetryMaxWait > 0 {
		client.SetRetryMaxWaitTime(opts.RetryMaxWait)
	}
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return isTransient(err)
		}
		return r.StatusCode() == 429 || r.StatusCode() >= 500
	})

	s := &FetchService{client: client}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return s
}

// Client exposes the underlying resty client for JSON APIs that share the
// same transport and retry policy.
func (s *FetchService) Client() *resty.Client {
	return s.client
}

// Wait blocks until the limiter admits one more request.
func (s *FetchService) Wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}

func (s *FetchService) Get(ctx context.Context, rawURL string) (*Page, error) {
	if _, err := ParseFetchURL(rawURL); err != nil {
		return nil, err
	}
	if err := s.Wait(ctx); err != nil {
		return nil, err
	}

	res, err := s.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/html,application/xhtml+xml").
		Get(rawURL)
	if err != nil {
		if isTransient(err) {
			return nil, fmt.Errorf("%w: %s: %v", utils.ErrTransientFetch, rawURL, err)
		}
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	if res.StatusCode() == 429 || res.StatusCode() >= 500 {
		return nil, fmt.Errorf("%w: %s: status %d", utils.ErrTransientFetch, rawURL, res.StatusCode())
	}
	if res.IsError() {
		return nil, fmt.Errorf("unexpected status %d for %s", res.StatusCode(), rawURL)
	}

	finalURL := rawURL
	if res.RawResponse != nil && res.RawResponse.Request != nil && res.RawResponse.Request.URL != nil {
		finalURL = res.RawResponse.Request.URL.String()
	}
	return &Page{URL: finalURL, StatusCode: res.StatusCode(), Body: res.Body()}, nil
}

// ParseFetchURL accepts only absolute http(s) addresses.
func ParseFetchURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", utils.ErrMalformedURL, rawURL, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", utils.ErrMalformedURL, rawURL)
	}
	return u, nil
}

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

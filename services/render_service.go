package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MenuScout/models"
	"MenuScout/utils"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// RenderSession is one browser tab. It is not safe for concurrent use:
// callers lease it from a SessionPool for the length of one pass.
type RenderSession interface {
	Navigate(ctx context.Context, rawURL string) error
	CurrentPageText(ctx context.Context) (string, error)
	FindAnchors(ctx context.Context) ([]models.Anchor, error)
	Close() error
}

type RenderOptions struct {
	// ReadyTimeout bounds the wait for document.readyState to reach "complete".
	ReadyTimeout time.Duration
	PollInterval time.Duration
	NavTimeout   time.Duration
	Headless     bool
	ChromePath   string
}

// renderedPage is the snapshot taken after the last navigation.
type renderedPage struct {
	url  string
	html string
}

func (p renderedPage) text() (string, error) {
	if p.html == "" {
		return "", nil
	}
	doc, err := ParseDocument([]byte(p.html))
	if err != nil {
		return "", err
	}
	return lineText(doc.Find("body")), nil
}

func (p renderedPage) anchors() ([]models.Anchor, error) {
	if p.html == "" {
		return nil, nil
	}
	doc, err := ParseDocument([]byte(p.html))
	if err != nil {
		return nil, err
	}
	return anchorsFromDocument(doc, p.url), nil
}

// ChromeSession drives a single chromedp tab.
type ChromeSession struct {
	opts          RenderOptions
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	page          renderedPage
}

// NewChromeSession starts a browser immediately so a missing or broken
// Chrome install is reported at startup.
func NewChromeSession(opts RenderOptions) (*ChromeSession, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
	)
	if opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("%w: %v", utils.ErrSessionUnavailable, err)
	}

	return &ChromeSession{
		opts:          opts,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
	}, nil
}

// runCtx derives a context from the tab that is also cancelled with ctx.
func (s *ChromeSession) runCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	var runCtx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(s.browserCtx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(s.browserCtx)
	}
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (s *ChromeSession) Navigate(ctx context.Context, rawURL string) error {
	if _, err := ParseFetchURL(rawURL); err != nil {
		return err
	}
	s.page = renderedPage{}

	runCtx, cancel := s.runCtx(ctx, s.opts.NavTimeout)
	defer cancel()

	log.Debug().Str("url", rawURL).Msg("navigating")
	if err := chromedp.Run(runCtx, chromedp.Navigate(rawURL)); err != nil {
		return fmt.Errorf("navigate %s: %w", rawURL, err)
	}

	// Wait for dynamic content, bounded. A page that never settles is still
	// captured as-is.
	var ready bool
	err := chromedp.Run(runCtx, chromedp.Poll(`document.readyState === "complete"`, &ready,
		chromedp.WithPollingInterval(s.opts.PollInterval),
		chromedp.WithPollingTimeout(s.opts.ReadyTimeout),
	))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn().Err(err).Str("url", rawURL).Msg("page did not report ready, capturing anyway")
	}

	var location, html string
	if err := chromedp.Run(runCtx,
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("capture %s: %w", rawURL, err)
	}
	s.page = renderedPage{url: location, html: html}
	return nil
}

func (s *ChromeSession) CurrentPageText(_ context.Context) (string, error) {
	return s.page.text()
}

func (s *ChromeSession) FindAnchors(_ context.Context) ([]models.Anchor, error) {
	return s.page.anchors()
}

// Close shuts the tab and the browser process.
func (s *ChromeSession) Close() error {
	s.browserCancel()
	s.allocCancel()
	return nil
}

// FetchSession satisfies RenderSession with plain HTTP. It sees no
// JavaScript-built content and is used when no browser is available.
type FetchSession struct {
	Fetcher Fetcher
	page    renderedPage
}

func (s *FetchSession) Navigate(ctx context.Context, rawURL string) error {
	s.page = renderedPage{}
	page, err := s.Fetcher.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	s.page = renderedPage{url: page.URL, html: string(page.Body)}
	return nil
}

func (s *FetchSession) CurrentPageText(_ context.Context) (string, error) {
	return s.page.text()
}

func (s *FetchSession) FindAnchors(_ context.Context) ([]models.Anchor, error) {
	return s.page.anchors()
}

func (s *FetchSession) Close() error { return nil }

// SessionPool hands out exclusive RenderSessions, one per in-flight pass.
type SessionPool struct {
	idle chan RenderSession
	all  []RenderSession
}

// NewSessionPool opens size sessions up front. Any failure closes what was
// opened and is reported as ErrSessionUnavailable.
func NewSessionPool(size int, open func() (RenderSession, error)) (*SessionPool, error) {
	if size <= 0 {
		size = 1
	}
	p := &SessionPool{idle: make(chan RenderSession, size)}
	for i := 0; i < size; i++ {
		s, err := open()
		if err != nil {
			p.Close()
			if errors.Is(err, utils.ErrSessionUnavailable) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", utils.ErrSessionUnavailable, err)
		}
		p.all = append(p.all, s)
		p.idle <- s
	}
	return p, nil
}

func (p *SessionPool) Size() int {
	return len(p.all)
}

// Acquire blocks until a session is free or ctx is done.
func (p *SessionPool) Acquire(ctx context.Context) (RenderSession, error) {
	select {
	case s := <-p.idle:
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *SessionPool) Release(s RenderSession) {
	p.idle <- s
}

// WithSession runs fn while holding one session.
func (p *SessionPool) WithSession(ctx context.Context, fn func(RenderSession) error) error {
	s, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer p.Release(s)
	return fn(s)
}

// Close releases every session the pool opened.
func (p *SessionPool) Close() error {
	var errs []error
	for _, s := range p.all {
		errs = append(errs, s.Close())
	}
	p.all = nil
	return errors.Join(errs...)
}

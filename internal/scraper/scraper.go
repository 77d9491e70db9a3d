package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cheesemate/internal/catalog"
)

// ErrRenderSession reports a failure to start or drive the rendering
// session. Unlike per-record extraction problems this aborts the run.
var ErrRenderSession = errors.New("render session failed")

// Driver is the rendering session behind the scraper. The chromedp
// implementation lives in chrome.go; tests substitute a fake.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string) error
	PageHeight(ctx context.Context) (int64, error)
	ScrollToBottom(ctx context.Context) error
	Products(ctx context.Context) ([]catalog.ProductRecord, error)
	Close() error
}

type Config struct {
	URL string

	// ElementTimeout bounds each wait for an expected element.
	ElementTimeout time.Duration
	// InitialSettle and PostScrollSettle are the two intentional fixed
	// delays: one after navigation, one after each scroll.
	InitialSettle    time.Duration
	PostScrollSettle time.Duration

	// DefaultCategory fills records whose category the page doesn't render.
	DefaultCategory string
}

// Scraper walks the catalog page, exhausts its infinite scroll, and
// extracts validated product records.
type Scraper struct {
	driver Driver
	cfg    Config
}

func New(driver Driver, cfg Config) *Scraper {
	if cfg.ElementTimeout <= 0 {
		cfg.ElementTimeout = 10 * time.Second
	}
	if cfg.DefaultCategory == "" {
		cfg.DefaultCategory = "Cheese"
	}
	return &Scraper{driver: driver, cfg: cfg}
}

// productGridSelector marks the rendered product list; until it is visible
// the client-side app hasn't painted anything worth extracting.
const productGridSelector = `div.css-0 a[role='link']`

// Scrape runs the full extraction. The driver is closed on every exit path.
func (s *Scraper) Scrape(ctx context.Context) ([]catalog.ProductRecord, error) {
	defer func() {
		if err := s.driver.Close(); err != nil {
			slog.Warn("closing render session", "error", err)
		}
	}()

	slog.Info("starting scrape", "url", s.cfg.URL)
	if err := s.driver.Navigate(ctx, s.cfg.URL); err != nil {
		return nil, fmt.Errorf("%w: navigate %s: %v", ErrRenderSession, s.cfg.URL, err)
	}

	if err := settle(ctx, s.cfg.InitialSettle); err != nil {
		return nil, err
	}

	scrolls, err := s.scrollUntilSettled(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: pagination: %v", ErrRenderSession, err)
	}
	slog.Info("page fully loaded", "scrolls", scrolls)

	if err := s.waitVisible(ctx, productGridSelector); err != nil {
		return nil, fmt.Errorf("%w: product grid never appeared: %v", ErrRenderSession, err)
	}

	raw, err := s.driver.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: extract products: %v", ErrRenderSession, err)
	}

	products := make([]catalog.ProductRecord, 0, len(raw))
	for _, rec := range raw {
		if rec.Category == "" {
			rec.Category = s.cfg.DefaultCategory
		}
		if err := rec.Validate(); err != nil {
			slog.Warn("dropping product record", "title", rec.Title, "url", rec.ProductURL, "error", err)
			continue
		}
		products = append(products, rec)
	}

	slog.Info("scrape complete", "found", len(raw), "valid", len(products))
	return products, nil
}

// scrollUntilSettled scrolls to the bottom until the page height stops
// growing: two consecutive equal heights end the loop, so rendering jitter
// can't keep it alive forever. Returns the number of scrolls issued.
func (s *Scraper) scrollUntilSettled(ctx context.Context) (int, error) {
	last, err := s.driver.PageHeight(ctx)
	if err != nil {
		return 0, err
	}

	scrolls := 0
	for {
		if err := s.driver.ScrollToBottom(ctx); err != nil {
			return scrolls, err
		}
		scrolls++

		if err := settle(ctx, s.cfg.PostScrollSettle); err != nil {
			return scrolls, err
		}

		h, err := s.driver.PageHeight(ctx)
		if err != nil {
			return scrolls, err
		}
		if h == last {
			return scrolls, nil
		}
		last = h
	}
}

func (s *Scraper) waitVisible(ctx context.Context, selector string) error {
	wctx, cancel := context.WithTimeout(ctx, s.cfg.ElementTimeout)
	defer cancel()
	return s.driver.WaitVisible(wctx, selector)
}

func settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

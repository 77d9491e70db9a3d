package scraper

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"

	"cheesemate/internal/catalog"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ChromeDriver drives a headless Chrome through the DevTools protocol.
type ChromeDriver struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewChromeDriver launches the browser. A failure here is the fatal
// session-init case: the caller aborts the whole scrape.
func NewChromeDriver(parent context.Context, headless bool) (*ChromeDriver, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(userAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	cancel := func() {
		cancelBrowser()
		cancelAlloc()
	}

	// Force the browser process to start now so init failures surface here
	// rather than mid-scrape.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	return &ChromeDriver{ctx: browserCtx, cancel: cancel}, nil
}

func (d *ChromeDriver) Navigate(ctx context.Context, url string) error {
	return d.run(ctx, chromedp.Navigate(url))
}

func (d *ChromeDriver) WaitVisible(ctx context.Context, selector string) error {
	return d.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (d *ChromeDriver) PageHeight(ctx context.Context) (int64, error) {
	var height int64
	err := d.run(ctx, chromedp.Evaluate(`document.body.scrollHeight`, &height))
	return height, err
}

func (d *ChromeDriver) ScrollToBottom(ctx context.Context) error {
	return d.run(ctx, chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil))
}

// extractJS pulls the raw fields from every product card in one pass.
// Selectors match the storefront's rendered markup.
const extractJS = `
Array.from(document.querySelectorAll("div.css-0 a[role='link']")).map((card) => {
	const text = (sel) => {
		const el = card.querySelector(sel);
		return el ? el.textContent.trim() : "";
	};
	const img = card.querySelector("img.object-contain");
	return {
		title: text("p.chakra-text.css-pbtft"),
		price: text("b.chakra-text.css-1vhzs63"),
		price_per_unit: text("span.chakra-badge.css-ff7g47"),
		brand: text("p.chakra-text.css-w6ttxb"),
		image_url: img ? (img.src || "") : "",
		product_url: card.href || "",
	};
})`

func (d *ChromeDriver) Products(ctx context.Context) ([]catalog.ProductRecord, error) {
	var records []catalog.ProductRecord
	if err := d.run(ctx, chromedp.Evaluate(extractJS, &records)); err != nil {
		return nil, err
	}
	return records, nil
}

func (d *ChromeDriver) Close() error {
	d.cancel()
	return nil
}

// run executes actions on the browser tab while honoring the caller's
// deadline, which chromedp ties to its own context tree.
func (d *ChromeDriver) run(ctx context.Context, actions ...chromedp.Action) error {
	done := make(chan error, 1)
	go func() {
		done <- chromedp.Run(d.ctx, actions...)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

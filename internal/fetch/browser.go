// Package fetch - browser.go renders script-heavy pages in headless Chrome.
package fetch

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jonathan/novel-lexicon/internal/logger"
)

// MinContentLength is the minimum extracted text length to consider HTTP fetch successful.
// If content is shorter, we should fall back to browser rendering.
const MinContentLength = 500

// DefaultBrowserTimeout bounds one browser render.
const DefaultBrowserTimeout = 30 * time.Second

// ShouldUseBrowser returns true if the extracted text is too short,
// indicating the page is likely rendered by JavaScript.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// WithBrowser renders a page in a headless browser and returns the rendered HTML.
// Requires Chrome/Chromium to be installed on the system.
func WithBrowser(ctx context.Context, url string, timeout time.Duration, log *logger.Logger) (string, error) {
	if log == nil {
		log = logger.Nop()
	}
	if timeout <= 0 {
		timeout = DefaultBrowserTimeout
	}
	log.Debug("starting headless browser", "url", url)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(DefaultUserAgent),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// review widgets load after the initial document
		chromedp.Sleep(2*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// cookie banners hide the review text on some sites; a missing button is fine
			_ = chromedp.Click(`button[id*="accept"], button[class*="accept"]`, chromedp.ByQuery, chromedp.AtLeast(0)).Do(ctx)
			return nil
		}),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &Error{URL: url, Message: "browser rendering failed", Cause: err}
	}

	log.Debug("rendered page", "url", url, "bytes", len(html))
	return html, nil
}

// PageOptions configures Page.
type PageOptions struct {
	Fetch      *Options
	Selectors  []string
	UseBrowser bool
	Logger     *logger.Logger
}

// Page fetches url and returns its main text. When the static HTML yields
// too little text and UseBrowser is set, the page is rendered in a browser
// and extracted again.
func Page(ctx context.Context, url string, opts PageOptions) (string, error) {
	selectors := opts.Selectors
	if len(selectors) == 0 {
		selectors = DefaultTextSelectors()
	}

	result, err := URL(ctx, url, opts.Fetch)
	if err != nil {
		return "", err
	}

	text, err := ExtractMainText(result.HTML, selectors)
	if err != nil {
		return "", &Error{URL: url, Message: "failed to extract text", Cause: err}
	}
	if !opts.UseBrowser || !ShouldUseBrowser(text) {
		return text, nil
	}

	html, err := WithBrowser(ctx, url, 0, opts.Logger)
	if err != nil {
		// the static text is still better than nothing
		if opts.Logger != nil {
			opts.Logger.Warn("browser fallback failed", "url", url, "error", err.Error())
		}
		return text, nil
	}

	rendered, err := ExtractMainText(html, selectors)
	if err != nil {
		return text, nil
	}
	if len(rendered) > len(text) {
		return rendered, nil
	}
	return text, nil
}

package fetch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/deepfetch/deepfetch/internal/config"
)

// Renderer fetches pages through a headless Chrome instance so that
// client-side rendered content is present in the returned HTML. It
// implements Source; callers that only need static HTML should prefer
// the plain Fetcher, which is far cheaper.
//
// The browser process is started lazily on first use and shared across
// fetches. Each fetch runs in its own tab with an independent timeout.
type Renderer struct {
	timeout time.Duration
	settle  time.Duration
	logger  *slog.Logger

	once       sync.Once
	browserCtx context.Context
	cancel     context.CancelFunc
	startErr   error
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithRenderTimeout sets the wall-clock budget for one rendered fetch.
func WithRenderTimeout(d time.Duration) RendererOption {
	return func(r *Renderer) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithSettleDelay sets the fixed delay after the document is ready,
// giving client-side frameworks time to populate the DOM.
func WithSettleDelay(d time.Duration) RendererOption {
	return func(r *Renderer) {
		if d >= 0 {
			r.settle = d
		}
	}
}

// WithRendererLogger sets a custom logger.
func WithRendererLogger(logger *slog.Logger) RendererOption {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRenderer creates a Renderer. No browser is started until the first
// Fetch call, so constructing one is free when rendering is never used.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		timeout: config.DefaultFetchTimeout,
		settle:  config.DefaultRenderSettle,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// start launches the shared headless browser.
func (r *Renderer) start() {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
	)

	allocCtx, _ := chromedp.NewExecAllocator(context.Background(), opts...)
	r.browserCtx, r.cancel = chromedp.NewContext(allocCtx)

	// Surface a missing Chrome binary as a fetch error instead of a hang.
	r.startErr = chromedp.Run(r.browserCtx)
}

// Fetch navigates to the URL in a fresh tab, waits for the body plus the
// settle delay, and returns the rendered outer HTML.
func (r *Renderer) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	r.once.Do(r.start)
	if r.startErr != nil {
		return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: r.startErr}
	}

	tabCtx, cancelTab := chromedp.NewContext(r.browserCtx)
	defer cancelTab()

	timeoutCtx, cancelTimeout := context.WithTimeout(tabCtx, r.timeout)
	defer cancelTimeout()

	// Stop rendering when the caller's context ends first.
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	var pageHTML string
	tasks := []chromedp.Action{
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
	}
	if r.settle > 0 {
		tasks = append(tasks, chromedp.Sleep(r.settle))
	}
	tasks = append(tasks, chromedp.OuterHTML("html", &pageHTML))

	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		if timeoutCtx.Err() != nil {
			return nil, &Error{Kind: KindTimeout, URL: rawURL, Err: err}
		}
		return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: err}
	}

	r.logger.Debug("rendered page", "url", rawURL, "bytes", len(pageHTML))

	return &Result{
		URL:         rawURL,
		StatusCode:  200,
		ContentType: "text/html",
		HTML:        pageHTML,
	}, nil
}

// Close shuts down the shared browser process. Safe to call when the
// browser was never started.
func (r *Renderer) Close() {
	if r.cancel != nil {
		r.cancel()
	}
}

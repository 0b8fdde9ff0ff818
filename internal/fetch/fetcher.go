package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/deepfetch/deepfetch/internal/config"
)

// Result is the outcome of one successful fetch. It is consumed
// immediately by the extraction layer and not retained.
type Result struct {
	// URL is the fetched address.
	URL string

	// StatusCode is the HTTP response status.
	StatusCode int

	// ContentType is the media type from the Content-Type header,
	// without parameters.
	ContentType string

	// HTML is the UTF-8 decoded document body for HTML responses.
	HTML string

	// JSON is the decoded payload for application/json responses,
	// which short-circuit HTML extraction.
	JSON any
}

// IsJSON reports whether the response carried a JSON payload.
func (r *Result) IsJSON() bool { return r.JSON != nil }

// Source produces a page for a URL. The static Fetcher and the headless
// Renderer both implement it, so the extractor never cares which path
// produced the HTML.
type Source interface {
	Fetch(ctx context.Context, rawURL string) (*Result, error)
}

// Fetcher performs bounded single-page HTTP GETs with browser-like
// headers and classifies responses by content type.
type Fetcher struct {
	client      *http.Client
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
	headers     map[string]string
	cookie      string
	logger      *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the wall-clock budget for one fetch.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithHeaders sets custom headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) { f.headers = headers }
}

// WithCookie sets a Cookie header sent with every request.
func WithCookie(cookie string) Option {
	return func(f *Fetcher) { f.cookie = cookie }
}

// WithHTTPClient sets a custom HTTP client, used by tests.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New creates a Fetcher with sensible defaults.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:     config.DefaultFetchTimeout,
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{Timeout: f.timeout}
	}

	return f
}

// Fetch performs one GET and classifies the response.
//
// Classification:
//   - non-2xx status            → *Error{Kind: KindHTTP}
//   - application/json          → Result with decoded JSON payload
//   - HTML / XHTML              → Result with UTF-8 document body
//   - anything else             → *Error{Kind: KindUnsupportedContent}
//
// Context expiry is converted to KindTimeout rather than surfacing a raw
// cancellation error, so callers can record it as a page-level timeout.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: errors.New("unsupported scheme " + u.Scheme)}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: err}
	}

	// Sites that block non-browser clients reject requests without these.
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.classifyTransportError(ctx, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindHTTP, URL: rawURL, Status: resp.StatusCode}
	}

	contentType := mediaType(resp.Header.Get("Content-Type"))

	bodyReader := io.LimitReader(resp.Body, f.maxBodySize)

	switch {
	case strings.Contains(contentType, "application/json"):
		var payload any
		if err := json.NewDecoder(bodyReader).Decode(&payload); err != nil {
			return nil, &Error{Kind: KindUnsupportedContent, URL: rawURL, Err: err}
		}
		return &Result{
			URL:         rawURL,
			StatusCode:  resp.StatusCode,
			ContentType: contentType,
			JSON:        payload,
		}, nil

	case isHTML(contentType):
		// Decode to UTF-8 based on the declared charset; plenty of pages
		// still ship ISO-8859-1 or windows-1252.
		decoded, err := charset.NewReader(bodyReader, resp.Header.Get("Content-Type"))
		if err != nil {
			decoded = bodyReader
		}
		body, err := io.ReadAll(decoded)
		if err != nil {
			return nil, f.classifyTransportError(ctx, rawURL, err)
		}
		f.logger.Debug("fetched page", "url", rawURL, "status", resp.StatusCode, "bytes", len(body))
		return &Result{
			URL:         rawURL,
			StatusCode:  resp.StatusCode,
			ContentType: contentType,
			HTML:        string(body),
		}, nil

	default:
		return nil, &Error{Kind: KindUnsupportedContent, URL: rawURL}
	}
}

// classifyTransportError distinguishes timeouts from other network failures.
func (f *Fetcher) classifyTransportError(ctx context.Context, rawURL string, err error) *Error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, URL: rawURL, Err: err}
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return &Error{Kind: KindTimeout, URL: rawURL, Err: err}
	}
	return &Error{Kind: KindNetwork, URL: rawURL, Err: err}
}

// isHTML reports whether the media type denotes an HTML document.
func isHTML(contentType string) bool {
	return strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "application/xhtml+xml")
}

// mediaType strips parameters (charset etc.) from a Content-Type value.
func mediaType(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

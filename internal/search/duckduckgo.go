package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// engineName identifies this client in result records.
const engineName = "duckduckgo"

// htmlEndpoint is DuckDuckGo's no-JavaScript HTML endpoint. It serves
// plain markup that can be parsed without rendering.
const htmlEndpoint = "https://html.duckduckgo.com/html/"

// Result markup patterns. The endpoint's markup has been stable for
// years; class names are part of its de-facto contract.
var (
	resultLinkRe    = regexp.MustCompile(`<a[^>]*class="result__a"[^>]*href="([^"]+)"[^>]*>(.*?)</a>`)
	resultSnippetRe = regexp.MustCompile(`<a[^>]*class="result__snippet"[^>]*>(.*?)</a>`)
	tagRe           = regexp.MustCompile(`<[^>]+>`)
)

// regionOverrides maps language bases to engine regions where the
// default "<lang>-<lang>" guess is wrong.
var regionOverrides = map[string]string{
	"en": "us-en",
	"es": "es-es",
	"ja": "jp-jp",
	"zh": "cn-zh",
	"sv": "se-sv",
	"da": "dk-da",
}

// DuckDuckGoClient queries the DuckDuckGo HTML endpoint.
type DuckDuckGoClient struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// DuckDuckGoOption configures a DuckDuckGoClient.
type DuckDuckGoOption func(*DuckDuckGoClient)

// WithHTTPClient sets a custom HTTP client, used by tests to point the
// client at a fixture server.
func WithHTTPClient(client *http.Client) DuckDuckGoOption {
	return func(c *DuckDuckGoClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) DuckDuckGoOption {
	return func(c *DuckDuckGoClient) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) DuckDuckGoOption {
	return func(c *DuckDuckGoClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// baseURL allows tests to redirect queries to a fixture server.
type baseURLKey struct{}

// WithBaseURL returns a context that redirects this client's queries to
// the given base URL. Test hook only.
func WithBaseURL(ctx context.Context, base string) context.Context {
	return context.WithValue(ctx, baseURLKey{}, base)
}

// NewDuckDuckGoClient creates a client with a 30 second request timeout.
func NewDuckDuckGoClient(opts ...DuckDuckGoOption) *DuckDuckGoClient {
	c := &DuckDuckGoClient{
		client:    &http.Client{Timeout: 30 * time.Second},
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search issues one query and parses the ranked results out of the HTML
// endpoint's markup.
func (c *DuckDuckGoClient) Search(ctx context.Context, query string, opts Options) (*Response, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 10
	}

	endpoint := htmlEndpoint
	if base, ok := ctx.Value(baseURLKey{}).(string); ok {
		endpoint = base
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("kl", regionFor(opts.Language))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	results := c.parseResults(string(body), opts.MaxResults)
	c.logger.Debug("search completed", "query", query, "results", len(results))

	return &Response{Results: results}, nil
}

// regionFor maps a BCP 47 language tag to an engine region code.
// Unparseable tags fall back to the US English region.
func regionFor(tag string) string {
	if tag == "" {
		return "us-en"
	}

	parsed, err := language.Parse(tag)
	if err != nil {
		return "us-en"
	}

	base, _ := parsed.Base()
	lang := base.String()

	// An explicit region in the tag ("es-EC") wins over the overrides.
	if region, conf := parsed.Region(); conf == language.Exact && region.IsCountry() {
		return strings.ToLower(region.String()) + "-" + lang
	}

	if r, ok := regionOverrides[lang]; ok {
		return r
	}
	return lang + "-" + lang
}

// parseResults extracts up to maxResults ranked results from the markup.
func (c *DuckDuckGoClient) parseResults(html string, maxResults int) []Result {
	links := resultLinkRe.FindAllStringSubmatch(html, -1)
	snippets := resultSnippetRe.FindAllStringSubmatch(html, -1)

	var results []Result
	for i, link := range links {
		if len(results) >= maxResults {
			break
		}

		r := Result{
			URL:    unwrapRedirect(link[1]),
			Title:  strings.TrimSpace(stripTags(link[2])),
			Engine: engineName,
		}
		if i < len(snippets) {
			r.Content = strings.TrimSpace(stripTags(snippets[i][1]))
		}

		if r.URL != "" && r.Title != "" {
			results = append(results, r)
		}
	}

	return results
}

// unwrapRedirect recovers the target URL from DuckDuckGo's redirect
// wrapper (the uddg query parameter).
func unwrapRedirect(raw string) string {
	if idx := strings.Index(raw, "uddg="); idx >= 0 {
		encoded := raw[idx+len("uddg="):]
		if amp := strings.Index(encoded, "&"); amp >= 0 {
			encoded = encoded[:amp]
		}
		if decoded, err := url.QueryUnescape(encoded); err == nil {
			return decoded
		}
		return raw
	}

	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}
	return raw
}

// stripTags removes markup and decodes the handful of entities the
// endpoint emits.
func stripTags(s string) string {
	s = tagRe.ReplaceAllString(s, "")
	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	return replacer.Replace(s)
}

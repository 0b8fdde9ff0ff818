package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/purell"
	"golang.org/x/sync/errgroup"

	"github.com/deepfetch/deepfetch/internal/config"
	"github.com/deepfetch/deepfetch/internal/extract"
	"github.com/deepfetch/deepfetch/internal/fetch"
	"github.com/deepfetch/deepfetch/internal/model"
	"github.com/deepfetch/deepfetch/internal/search"
)

// ErrSearchFailed wraps failures of the search collaborator. It is the
// only error class that aborts a deep-search request; every per-page
// failure is recorded and skipped instead.
var ErrSearchFailed = errors.New("upstream search failed")

// minQueryTermLen is the relevance-filter threshold: only query words
// strictly longer than this participate in link matching. Short words
// ("de", "the", "los") match everything and carry no signal.
const minQueryTermLen = 3

// normalizeFlags are the purell flags used for visited-set keys. Case,
// default ports, dot segments, and fragments never distinguish pages.
const normalizeFlags = purell.FlagLowercaseScheme |
	purell.FlagLowercaseHost |
	purell.FlagRemoveDefaultPort |
	purell.FlagRemoveFragment |
	purell.FlagDecodeUnnecessaryEscapes |
	purell.FlagSortQuery |
	purell.FlagRemoveDuplicateSlashes |
	purell.FlagRemoveDotSegments

// Controller orchestrates deep-search requests. It is safe for
// concurrent use; each request builds its own state.
type Controller struct {
	searcher    search.Client
	source      fetch.Source
	extractor   *extract.Extractor
	timeout     time.Duration
	concurrency int
	siteConfigs *config.File
	logger      *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithFetchTimeout sets the per-page fetch budget.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithConcurrency bounds how many depth-0 results are visited in
// parallel. 1 (the default) visits strictly sequentially.
func WithConcurrency(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithSiteConfigs supplies per-host crawl overrides.
func WithSiteConfigs(cf *config.File) Option {
	return func(c *Controller) { c.siteConfigs = cf }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Controller using the given collaborators.
func New(searcher search.Client, source fetch.Source, extractor *extract.Extractor, opts ...Option) *Controller {
	c := &Controller{
		searcher:    searcher,
		source:      source,
		extractor:   extractor,
		timeout:     config.DefaultFetchTimeout,
		concurrency: config.DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request is one deep-search request. Zero values for MaxResults,
// MaxPagesPerSite, and Language take the configured defaults; MaxDepth 0
// is a valid setting (visit results only, follow nothing).
type Request struct {
	// Query is the natural-language search query.
	Query string

	// MaxResults is how many ranked results to visit at depth 0.
	MaxResults int

	// MaxDepth is 0 (results only) or 1 (follow internal links).
	MaxDepth int

	// MaxPagesPerSite caps followed links per depth-0 page.
	MaxPagesPerSite int

	// Language is the BCP 47 tag passed to the search collaborator.
	Language string
}

// state is the per-request crawl bookkeeping. The mutex guards the
// visited set when depth-0 visits run in parallel; branch results are
// kept per-rank so consolidation preserves result order.
type state struct {
	mu      sync.Mutex
	visited map[string]bool
}

// visit marks a URL visited, reporting whether it was new. URLs are
// normalized so representation differences don't defeat deduplication.
func (s *state) visit(rawURL string) bool {
	key := normalizeURL(rawURL)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.visited[key] {
		return false
	}
	s.visited[key] = true
	return true
}

func (s *state) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visited)
}

// branch holds everything produced under one depth-0 result.
type branch struct {
	pages []model.PageVisitRecord
	errs  []model.PageError
}

// DeepSearch runs one query-to-digest crawl. A search failure returns an
// error wrapping ErrSearchFailed; page failures are recorded in the
// result's Errors list and never abort the request.
func (c *Controller) DeepSearch(ctx context.Context, req Request) (*model.CrawlResult, error) {
	if req.MaxResults <= 0 {
		req.MaxResults = config.DefaultMaxResults
	}
	if req.MaxPagesPerSite <= 0 {
		req.MaxPagesPerSite = config.DefaultMaxPagesPerSite
	}
	if req.Language == "" {
		req.Language = config.DefaultLanguage
	}

	start := time.Now()

	resp, err := c.searcher.Search(ctx, req.Query, search.Options{
		MaxResults: req.MaxResults,
		Language:   req.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	results := resp.Results
	if len(results) > req.MaxResults {
		results = results[:req.MaxResults]
	}

	c.logger.Debug("search done",
		"query", req.Query,
		"results", len(results),
	)

	st := &state{visited: make(map[string]bool)}
	terms := queryTerms(req.Query)
	branches := make([]branch, len(results))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, result := range results {
		i, result := i, result
		g.Go(func() error {
			branches[i] = c.visitBranch(gctx, st, result, req, terms)
			return nil
		})
	}
	// Goroutines only write their own branch slot and never return errors.
	_ = g.Wait() //nolint:errcheck

	// Flatten in result-rank order so parallelism never reorders output.
	var pages []model.PageVisitRecord
	var pageErrs []model.PageError
	for _, b := range branches {
		pages = append(pages, b.pages...)
		pageErrs = append(pageErrs, b.errs...)
	}

	return &model.CrawlResult{
		Success:               true,
		Query:                 req.Query,
		TotalPagesVisited:     st.count(),
		TotalContentExtracted: len(pages),
		ElapsedTime:           time.Since(start),
		Pages:                 pages,
		ConsolidatedText:      Consolidate(req.Query, pages),
		Errors:                pageErrs,
		SearchSuggestions:     resp.Suggestions,
	}, nil
}

// visitBranch visits one depth-0 result and, on success, expands its
// internal links one level deep.
func (c *Controller) visitBranch(ctx context.Context, st *state, result search.Result, req Request, terms []string) branch {
	var b branch

	if !st.visit(result.URL) {
		return b
	}

	page, err := c.fetchAndExtract(ctx, result.URL)
	if err != nil {
		b.errs = append(b.errs, model.PageError{URL: result.URL, Error: err.Error()})
		return b
	}

	b.pages = append(b.pages, model.PageVisitRecord{
		URL:        result.URL,
		Title:      pageTitle(page, result.Title),
		Content:    page.MainText,
		Paragraphs: page.Paragraphs,
		Engine:     result.Engine,
		Snippet:    result.Content,
		Depth:      0,
	})

	if req.MaxDepth < 1 {
		return b
	}

	c.expandLinks(ctx, st, &b, page, result.URL, req, terms)
	return b
}

// expandLinks follows relevant internal links of a depth-0 page. The
// per-parent counter increments on every followed link, success or not,
// so the cap bounds fetch attempts rather than successes.
func (c *Controller) expandLinks(ctx context.Context, st *state, b *branch, page *model.ExtractedPage, parentURL string, req Request, terms []string) {
	maxPages := req.MaxPagesPerSite
	var ignore []string

	if c.siteConfigs != nil {
		if u, err := url.Parse(parentURL); err == nil {
			sc := c.siteConfigs.GetSiteConfig(u.Hostname())
			if sc.MaxPagesPerSite > 0 {
				maxPages = sc.MaxPagesPerSite
			}
			ignore = sc.IgnorePatterns
		}
	}

	followed := 0
	for _, link := range page.InternalLinks {
		if followed >= maxPages {
			break
		}
		if ctx.Err() != nil {
			return
		}

		if !textMatchesTerms(link.Text, terms) {
			continue
		}
		if matchesIgnore(link.URL, ignore) {
			continue
		}
		if !st.visit(link.URL) {
			continue
		}

		followed++

		child, err := c.fetchAndExtract(ctx, link.URL)
		if err != nil {
			b.errs = append(b.errs, model.PageError{URL: link.URL, Error: err.Error()})
			continue
		}

		b.pages = append(b.pages, model.PageVisitRecord{
			URL:        link.URL,
			Title:      pageTitle(child, link.Text),
			Content:    child.MainText,
			Paragraphs: child.Paragraphs,
			ParentURL:  parentURL,
			Depth:      1,
		})
	}
}

// fetchAndExtract runs one page through the fetch+extract pipeline with
// the per-page timeout. JSON responses are skipped: deep search only
// follows HTML.
func (c *Controller) fetchAndExtract(ctx context.Context, pageURL string) (*model.ExtractedPage, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.source.Fetch(fetchCtx, pageURL)
	if err != nil {
		return nil, err
	}
	if res.IsJSON() {
		return nil, &fetch.Error{Kind: fetch.KindUnsupportedContent, URL: pageURL}
	}

	return c.extractor.ExtractCrawl(res.HTML, pageURL)
}

// pageTitle falls back to the link or result title when the page itself
// had none.
func pageTitle(page *model.ExtractedPage, fallback string) string {
	if page.Title != "" {
		return page.Title
	}
	return fallback
}

// queryTerms lowercases the query and keeps words longer than
// minQueryTermLen runes.
func queryTerms(query string) []string {
	var terms []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if utf8.RuneCountInString(w) > minQueryTermLen {
			terms = append(terms, w)
		}
	}
	return terms
}

// textMatchesTerms is the binary relevance filter: the link text must
// contain at least one query term, case-insensitively. Coarse on
// purpose; precision is traded for simplicity.
func textMatchesTerms(text string, terms []string) bool {
	lower := strings.ToLower(text)
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// matchesIgnore reports whether the URL path contains any of the
// configured ignore patterns.
func matchesIgnore(rawURL string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	for _, p := range patterns {
		if strings.Contains(u.Path, p) {
			return true
		}
	}
	return false
}

// normalizeURL produces the canonical visited-set key for a URL.
func normalizeURL(rawURL string) string {
	normalized, err := purell.NormalizeURLString(rawURL, normalizeFlags)
	if err != nil {
		return rawURL
	}
	return normalized
}

package model

import "time"

// Digest and per-page content limits for consolidation.
// The digest feeds a language model downstream, so its total size must be
// bounded regardless of how many pages were visited.
const (
	// MaxPageContentChars is the per-page content budget inside the digest.
	MaxPageContentChars = 2000

	// MaxDigestChars is the hard cap on the consolidated digest.
	MaxDigestChars = 30000
)

// PageVisitRecord is one visited page inside a deep-search crawl.
type PageVisitRecord struct {
	// URL is the visited address.
	URL string `json:"url"`

	// Title is the extracted page title.
	Title string `json:"title"`

	// Content is the page's main content text.
	Content string `json:"content"`

	// Paragraphs holds the page's extracted paragraphs.
	Paragraphs []string `json:"paragraphs,omitempty"`

	// Engine is the search engine that produced this result.
	// Empty for depth-1 pages.
	Engine string `json:"engine,omitempty"`

	// Snippet is the search-result snippet. Only set at depth 0.
	Snippet string `json:"snippet,omitempty"`

	// ParentURL is the depth-0 page this page was discovered on.
	// Only set for depth-1 pages.
	ParentURL string `json:"parent_url,omitempty"`

	// Depth is 0 for direct search results, 1 for followed internal links.
	Depth int `json:"depth"`
}

// PageError records a page that failed during a crawl. Per-page failures
// never abort the request; they accumulate here instead.
type PageError struct {
	// URL is the page that failed.
	URL string `json:"url"`

	// Error is a human-readable description of the failure.
	Error string `json:"error"`
}

// CrawlResult is the caller-facing result of one deep-search request.
type CrawlResult struct {
	// Success is true unless the search collaborator itself failed.
	// Individual page failures do not clear it.
	Success bool `json:"success"`

	// Query is the original search query.
	Query string `json:"query"`

	// TotalPagesVisited is the number of distinct URLs visited.
	TotalPagesVisited int `json:"total_pages_visited"`

	// TotalContentExtracted is the number of successfully extracted pages.
	TotalContentExtracted int `json:"total_content_extracted"`

	// ElapsedTime is the wall-clock duration of the crawl.
	ElapsedTime time.Duration `json:"elapsed_time_ms"`

	// Pages holds every successfully visited page in visit order.
	Pages []PageVisitRecord `json:"pages"`

	// ConsolidatedText is the bounded digest of all visited pages.
	ConsolidatedText string `json:"consolidated_text"`

	// Errors enumerates pages that failed, omitted when empty.
	Errors []PageError `json:"errors,omitempty"`

	// SearchSuggestions carries suggestion metadata from the search
	// collaborator, if any.
	SearchSuggestions []string `json:"search_suggestions,omitempty"`
}

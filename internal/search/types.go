package search

import "context"

// Result is one ranked search result.
type Result struct {
	// URL is the result's target address.
	URL string `json:"url"`

	// Title is the result's title text.
	Title string `json:"title"`

	// Content is the result snippet.
	Content string `json:"content"`

	// Engine names the engine that produced the result.
	Engine string `json:"engine"`
}

// Response is the outcome of one search call.
type Response struct {
	// Results holds the ranked results, best first.
	Results []Result `json:"results"`

	// Suggestions carries query suggestions, if the engine offered any.
	// The DuckDuckGo HTML endpoint returns none, so this stays empty for
	// the built-in client; it exists for engines that do provide them.
	Suggestions []string `json:"suggestions,omitempty"`
}

// Options tune a search call.
type Options struct {
	// MaxResults limits how many results to return.
	MaxResults int

	// Language is a BCP 47 language tag used to pick the engine region.
	Language string
}

// Client issues search queries. Implementations must be safe for
// concurrent use.
type Client interface {
	Search(ctx context.Context, query string, opts Options) (*Response, error)
}

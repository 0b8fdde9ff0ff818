package model

import "time"

// Limits applied during extraction. Pages on the open web are adversarially
// messy; every list we mine from markup is capped so a single pathological
// page cannot blow up a crawl result.
const (
	// MaxParagraphs is the maximum number of paragraphs kept per page.
	MaxParagraphs = 10

	// MaxTables is the maximum number of tables kept per page.
	MaxTables = 10

	// MaxDownloadLinks is the maximum number of classified download links
	// kept per page.
	MaxDownloadLinks = 20

	// MaxInternalLinks is the maximum number of same-domain links kept per
	// page for depth-1 expansion.
	MaxInternalLinks = 10

	// MaxTextBlocks is the maximum number of generic text blocks kept on
	// the single-page extraction path.
	MaxTextBlocks = 50
)

// ExtractedPage is the Markup Extractor's output for one HTML document.
// It is immutable once produced and owned by the caller that requested
// the extraction.
type ExtractedPage struct {
	// URL is the address the page was fetched from.
	URL string `json:"url"`

	// Title is the page <title>, falling back to the first <h1>.
	Title string `json:"title"`

	// MainText is the whitespace-collapsed main content text.
	MainText string `json:"main_text"`

	// Paragraphs holds <p> texts between 50 and 2000 characters,
	// in document order, capped at MaxParagraphs.
	Paragraphs []string `json:"paragraphs,omitempty"`

	// TextBlocks holds generic text blocks (paragraphs, list items,
	// headings, table cells) collected on the single-page path.
	TextBlocks []string `json:"text_blocks,omitempty"`

	// Tables holds extracted tables, capped at MaxTables.
	Tables []Table `json:"tables,omitempty"`

	// DownloadLinks holds classified document links, deduplicated by
	// resolved URL, capped at MaxDownloadLinks.
	DownloadLinks []DownloadLink `json:"download_links,omitempty"`

	// InternalLinks holds same-domain links that survived the boilerplate
	// stoplist, capped at MaxInternalLinks. Only populated on the crawl path.
	InternalLinks []InternalLink `json:"internal_links,omitempty"`

	// EmbeddedData is the best-effort script-mining output.
	// Nil when the heuristics did not run (crawl path).
	EmbeddedData *EmbeddedData `json:"embedded_data,omitempty"`
}

// Table is one HTML table reduced to text cells.
// Invariant: every row has at least one non-empty cell.
type Table struct {
	// Headers are the column headers, from <thead> cells or the promoted
	// first row.
	Headers []string `json:"headers"`

	// Rows are the data rows in document order.
	Rows [][]string `json:"rows"`
}

// DownloadLink is an anchor classified as pointing at a document.
type DownloadLink struct {
	// Text is the anchor's visible text, trimmed.
	Text string `json:"text"`

	// URL is the absolute resolved target.
	URL string `json:"url"`

	// Kind is the document type: "pdf", "xlsx", "xls", or "csv".
	Kind string `json:"kind"`
}

// InternalLink is a same-domain anchor eligible for depth-1 expansion.
type InternalLink struct {
	// URL is the absolute resolved target.
	URL string `json:"url"`

	// Text is the anchor's visible text, trimmed.
	Text string `json:"text"`
}

// EmbeddedData aggregates the outputs of the four independent script-mining
// heuristics. This is a recall-oriented contract: false positives and missed
// non-conforming sites are expected.
type EmbeddedData struct {
	// Stores holds records mined from JSON array literals whose keys match
	// the store/location keyword set.
	Stores []map[string]any `json:"stores,omitempty"`

	// Markers holds map-marker coordinates mined from marker constructor calls.
	Markers []Marker `json:"markers,omitempty"`

	// JSONObjects holds records parsed from data-* attributes.
	JSONObjects []map[string]any `json:"json_objects,omitempty"`

	// APIURLs holds deduplicated absolute URLs that look like data endpoints.
	APIURLs []string `json:"api_urls,omitempty"`

	// Found is true if any of the lists above is non-empty.
	Found bool `json:"found"`

	// TotalItems is the combined item count across all lists.
	TotalItems int `json:"total_items"`
}

// Marker is one mined map marker.
type Marker struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Title string  `json:"title,omitempty"`
}

// PageExtract is the caller-facing result of a single-page extraction.
type PageExtract struct {
	// Type is "html" for extracted markup, "json" for a JSON response
	// returned as-is.
	Type string `json:"type"`

	// URL is the fetched address.
	URL string `json:"url"`

	// Title is the page title. Empty for JSON responses.
	Title string `json:"title,omitempty"`

	// TextContent holds the page's text blocks.
	TextContent []string `json:"text_content,omitempty"`

	// Tables holds the page's extracted tables.
	Tables []Table `json:"tables,omitempty"`

	// DownloadLinks holds the page's classified document links.
	DownloadLinks []DownloadLink `json:"download_links,omitempty"`

	// EmbeddedData is the script-mining output, if any heuristic fired.
	EmbeddedData *EmbeddedData `json:"embedded_data,omitempty"`

	// JSON holds the decoded payload for application/json responses.
	JSON any `json:"json,omitempty"`

	// FetchedAt is when the page was retrieved.
	FetchedAt time.Time `json:"fetched_at"`
}

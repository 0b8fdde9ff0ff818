package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. The crawl-shape defaults (results, depth,
// pages per site) follow the deep-search contract; the network defaults are
// sized for public web servers that answer within a few seconds.
const (
	// DefaultMaxResults is the number of ranked search results visited
	// at depth 0.
	DefaultMaxResults = 5

	// DefaultMaxDepth is the maximum link-following depth. Depth 0 visits
	// only the search results themselves; depth 1 additionally follows
	// relevant internal links found on them. Values above 1 are rejected:
	// the crawl is bounded by design.
	DefaultMaxDepth = 1

	// DefaultMaxPagesPerSite caps how many internal links are followed
	// from a single depth-0 page.
	DefaultMaxPagesPerSite = 3

	// DefaultFetchTimeout is the wall-clock budget for a single page fetch.
	// A slow page burns its own budget only; the crawl moves on.
	DefaultFetchTimeout = 15 * time.Second

	// DefaultRenderSettle is the fixed delay after network idleness on the
	// headless-rendering path, giving client-side frameworks time to paint.
	DefaultRenderSettle = 2 * time.Second

	// DefaultMaxBodySize limits how much of a response body is read.
	// 10MB covers any realistic HTML document while bounding memory.
	DefaultMaxBodySize = 10 * 1024 * 1024

	// DefaultConcurrency is the number of depth-0 pages visited in
	// parallel within one crawl request. 1 means strictly sequential.
	DefaultConcurrency = 1

	// DefaultLanguage is the BCP 47 language tag passed to the search
	// collaborator when the caller does not specify one.
	DefaultLanguage = "en"

	// DefaultUserAgent is a browser-like User-Agent. Many sites reject
	// requests that do not look like they come from a browser.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// AppName is the application name used for XDG directory paths.
	AppName = "deepfetch"
)

// Config holds all configuration options for deepfetch.
// It is populated from CLI flags and passed through the application via
// dependency injection rather than global state.
type Config struct {
	// MaxResults is the number of search results to visit at depth 0.
	MaxResults int

	// MaxDepth is the link-following depth, 0 or 1.
	MaxDepth int

	// MaxPagesPerSite caps followed internal links per depth-0 page.
	MaxPagesPerSite int

	// FetchTimeout is the per-page fetch budget.
	FetchTimeout time.Duration

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// Concurrency bounds parallel depth-0 visits within one request.
	Concurrency int

	// Language is the BCP 47 language tag for search queries.
	Language string

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// Render selects the headless-browser page source for single-page
	// extraction. The static fetch path is unaffected by its absence.
	Render bool

	// RenderSettle is the settle delay used by the rendering path.
	RenderSettle time.Duration

	// Verbose enables debug-level log output.
	Verbose bool

	// JSONReport enables JSON output instead of the human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown output instead of the human-readable
	// format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report. When set, output
	// goes to this file instead of stdout.
	ReportFile string

	// ConfigFilePath is an explicit path to the .deepfetch.yaml file.
	// If empty, the file is searched for in the current directory and
	// then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-site overrides loaded from the config file.
	SiteConfigs *File

	// DBDir is the directory for the SQLite crawl-history database.
	// When empty, results are not persisted.
	DBDir string

	// SaveToDB indicates whether crawl results are saved to the database.
	SaveToDB bool
}

// NewConfig creates a Config with default values. Many defaults are
// non-zero, so relying on zero values would produce a broken config.
func NewConfig() *Config {
	return &Config{
		MaxResults:      DefaultMaxResults,
		MaxDepth:        DefaultMaxDepth,
		MaxPagesPerSite: DefaultMaxPagesPerSite,
		FetchTimeout:    DefaultFetchTimeout,
		MaxBodySize:     DefaultMaxBodySize,
		Concurrency:     DefaultConcurrency,
		Language:        DefaultLanguage,
		UserAgent:       DefaultUserAgent,
		RenderSettle:    DefaultRenderSettle,
	}
}

// XDGDataDir returns the XDG data directory for deepfetch.
// On Linux: ~/.local/share/deepfetch
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for deepfetch.
// On Linux: ~/.config/deepfetch
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It is called once after CLI parsing, before any network activity.
func (c *Config) Validate() error {
	if c.MaxResults <= 0 {
		return ErrInvalidMaxResults
	}
	if c.MaxDepth < 0 || c.MaxDepth > 1 {
		return ErrInvalidMaxDepth
	}
	if c.MaxPagesPerSite < 0 {
		return ErrInvalidMaxPagesPerSite
	}
	if c.FetchTimeout <= 0 {
		return ErrInvalidFetchTimeout
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

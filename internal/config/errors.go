package config

import "errors"

// Configuration validation errors returned by Config.Validate().
// Package-level sentinel errors allow callers to use errors.Is() while
// still carrying human-readable messages.
var (
	// ErrInvalidMaxResults is returned when the result count is not positive.
	ErrInvalidMaxResults = errors.New("invalid max results: must be positive")

	// ErrInvalidMaxDepth is returned when the crawl depth is outside {0, 1}.
	// Deeper crawls are out of scope by design; the traversal is bounded.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be 0 or 1")

	// ErrInvalidMaxPagesPerSite is returned when the per-site page cap
	// is negative. Zero disables depth-1 expansion entirely.
	ErrInvalidMaxPagesPerSite = errors.New("invalid max pages per site: must be non-negative")

	// ErrInvalidFetchTimeout is returned when the fetch timeout is not
	// positive. A zero timeout would fail every request immediately.
	ErrInvalidFetchTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the body-size cap is negative.
	// Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidConcurrency is returned when the depth-0 concurrency is
	// not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)

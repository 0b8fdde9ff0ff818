// Package model defines the data structures shared across the deepfetch
// application: fetch results, extracted page content, and deep-search
// crawl results. It has no dependencies on other internal packages so
// that every layer can import it freely.
package model

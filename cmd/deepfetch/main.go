// Package main provides the entry point for the deepfetch CLI.
//
// Deepfetch is a content-acquisition tool for the public web. It fetches
// pages, mines structured content out of markup (text, tables, download
// links, embedded JSON), and runs bounded deep-search crawls that turn a
// query into a consolidated text digest.
//
// Usage:
//
//	deepfetch search "municipal budget report 2025"
//	deepfetch extract https://example.com/page
//
// See --help for all available options.
package main

// main is the entry point for deepfetch.
func main() {
	Execute()
}

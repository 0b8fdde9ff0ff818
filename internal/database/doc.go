// Package database provides SQLite-backed persistence for deep-search
// results. Every completed crawl is stored with its digest and a JSON
// dump of the visited pages, so past searches can be listed and
// re-rendered without refetching anything.
package database

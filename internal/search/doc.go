// Package search provides the client for the external search collaborator.
// The engine is a black box that turns a query into ranked result URLs;
// this package ships a DuckDuckGo HTML-endpoint implementation and the
// Client interface the crawl controller depends on.
package search

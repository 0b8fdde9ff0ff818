// Package fetch retrieves web pages over HTTP. It provides a static
// Fetcher with browser-like headers, bounded timeouts and body limits,
// and a chromedp-backed Renderer for JavaScript-heavy pages. Both
// implement the Source interface so the extraction layer is agnostic
// to how the HTML was produced.
package fetch

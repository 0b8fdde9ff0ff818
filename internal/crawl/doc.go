// Package crawl implements the deep-search controller: one search call,
// a bounded visit of the top results, selective one-level expansion of
// same-domain links, and consolidation of everything into a bounded text
// digest for downstream language-model consumption.
//
// Each request owns its own state; nothing is shared across requests.
// Termination is structural: depth is 0 or 1, the per-parent page count
// is capped, and the result count is capped, so the visited set is
// bounded by maxResults * (1 + maxPagesPerSite).
package crawl

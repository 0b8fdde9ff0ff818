// Package extract mines structured content out of HTML that was never
// designed to be machine-read. It produces titles, prose, tables,
// classified download links, same-domain links for crawling, and
// best-effort structured data recovered from inline scripts.
//
// Everything here is heuristic. The goal is recall on real-world pages,
// not a guaranteed schema; callers must treat the output accordingly.
package extract

package extract

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/deepfetch/deepfetch/internal/model"
)

// Internal-link text bounds. Anchors shorter than 5 characters are icons
// and arrows; longer than 100 characters they are paragraphs wrapped in
// links, not navigation.
const (
	minLinkTextLen = 5
	maxLinkTextLen = 100
)

// docExtensions maps file extensions to download-link kinds.
var docExtensions = map[string]string{
	".pdf":  "pdf",
	".xlsx": "xlsx",
	".xls":  "xls",
	".csv":  "csv",
}

// downloadMarkers are URL path fragments produced by common document
// managers and download endpoints.
var downloadMarkers = []string{
	"/download",
	"descarga",
	"getfile",
	"wpdmdl",
	"docman",
	"attachment",
	"force-download",
}

// docKeywords maps document-type keywords found in link text or URL path
// to a kind. Spanish-language portals are a primary target, hence the
// localized entries; ambiguous document words default to pdf.
var docKeywords = []struct {
	word string
	kind string
}{
	{"excel", "xlsx"},
	{"xlsx", "xlsx"},
	{"csv", "csv"},
	{"pdf", "pdf"},
	{"boletín", "pdf"},
	{"boletin", "pdf"},
	{"informe", "pdf"},
	{"reporte", "pdf"},
}

// navStoplist marks navigation and boilerplate links that are never worth
// crawling. Matched against both the URL path and the visible text.
var navStoplist = []string{
	"login", "signin", "sign-in", "register", "signup",
	"cart", "carrito", "checkout",
	"search", "buscar",
	"privacy", "privacidad", "policy", "politica",
	"terms", "terminos", "condiciones",
	"cookie", "legal", "sitemap", "rss",
	"contact", "contacto", "about",
	"facebook", "twitter", "instagram", "youtube", "linkedin", "whatsapp",
}

// downloadLinks classifies anchors pointing at documents, deduplicated by
// resolved URL and capped at model.MaxDownloadLinks.
//
// Classification priority: file extension, then download-intent URL
// markers, then link text combined with URL path ("download"/"descargar"
// plus a document-type keyword).
func (e *Extractor) downloadLinks(doc *goquery.Document, sourceURL string) []model.DownloadLink {
	base, err := url.Parse(sourceURL)
	if err != nil {
		return nil
	}

	var out []model.DownloadLink
	seen := make(map[string]bool)

	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		resolved := resolveURL(base, href)
		if resolved == "" || seen[resolved] {
			return true
		}

		text := collapseWhitespace(a.Text())
		kind := classifyDownload(resolved, text)
		if kind == "" {
			return true
		}

		seen[resolved] = true
		out = append(out, model.DownloadLink{Text: text, URL: resolved, Kind: kind})
		return len(out) < model.MaxDownloadLinks
	})

	return out
}

// classifyDownload returns the document kind for an anchor, or empty when
// the anchor does not look like a document link.
func classifyDownload(resolved, text string) string {
	u, err := url.Parse(resolved)
	if err != nil {
		return ""
	}
	path := strings.ToLower(u.Path)
	lowerText := strings.ToLower(text)

	// 1. File extension.
	for ext, kind := range docExtensions {
		if strings.HasSuffix(path, ext) {
			return kind
		}
	}

	// 2. Download-intent URL markers: the endpoint promises a document
	// even though the path carries no extension.
	for _, marker := range downloadMarkers {
		if strings.Contains(path, marker) {
			if kind := keywordKind(lowerText + " " + path); kind != "" {
				return kind
			}
			return "pdf"
		}
	}

	// 3. Download wording in the text or path plus a document keyword.
	if strings.Contains(lowerText, "download") || strings.Contains(lowerText, "descargar") ||
		strings.Contains(path, "download") || strings.Contains(path, "descargar") {
		if kind := keywordKind(lowerText); kind != "" {
			return kind
		}
	}

	return ""
}

// keywordKind returns the kind for the first document keyword found in s.
func keywordKind(s string) string {
	for _, kw := range docKeywords {
		if strings.Contains(s, kw.word) {
			return kw.kind
		}
	}
	return ""
}

// internalLinks discovers same-domain anchors eligible for depth-1
// expansion, capped at model.MaxInternalLinks. Links whose path or text
// matches the navigation stoplist are discarded, as are anchors with
// implausibly short or long text.
func (e *Extractor) internalLinks(doc *goquery.Document, sourceURL string) []model.InternalLink {
	base, err := url.Parse(sourceURL)
	if err != nil {
		return nil
	}

	var out []model.InternalLink
	seen := make(map[string]bool)

	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		resolved := resolveURL(base, href)
		if resolved == "" || seen[resolved] {
			return true
		}

		u, err := url.Parse(resolved)
		if err != nil || !strings.EqualFold(u.Hostname(), base.Hostname()) {
			return true
		}

		text := collapseWhitespace(a.Text())
		n := utf8.RuneCountInString(text)
		if n <= minLinkTextLen || n >= maxLinkTextLen {
			return true
		}

		if matchesStoplist(strings.ToLower(u.Path)) || matchesStoplist(strings.ToLower(text)) {
			return true
		}

		seen[resolved] = true
		out = append(out, model.InternalLink{URL: resolved, Text: text})
		return len(out) < model.MaxInternalLinks
	})

	return out
}

// matchesStoplist reports whether s contains any stoplist entry.
func matchesStoplist(s string) bool {
	for _, stop := range navStoplist {
		if strings.Contains(s, stop) {
			return true
		}
	}
	return false
}

// resolveURL resolves href against base, discarding non-navigational
// schemes and bare fragments.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(u)
	resolved.Fragment = ""
	return resolved.String()
}

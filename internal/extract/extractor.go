package extract

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/deepfetch/deepfetch/internal/model"
)

// Paragraph and text-block length bounds. Short fragments are navigation
// boilerplate; very long ones are walls of unstructured text.
const (
	minParagraphLen = 50
	maxParagraphLen = 2000
	minTextBlockLen = 10

	// minMainContentLen is the threshold below which a content-container
	// candidate is rejected in favor of the full body text.
	minMainContentLen = 200
)

// noiseSelector matches elements that dilute signal and must never
// contribute to extracted text.
const noiseSelector = "script, style, nav, footer, header, aside, iframe, noscript"

// crawlNoiseSelector additionally strips ad and navigation containers on
// the crawl path, where only main prose matters.
const crawlNoiseSelector = noiseSelector + ", .ad, .ads, .advertisement, .sidebar, .menu"

// contentSelectors is the priority list of main-content containers tried
// on the crawl path before falling back to the full body.
var contentSelectors = []string{
	"article",
	"main",
	"[role='main']",
	"#content",
	".content",
	".main-content",
	".post-content",
	".entry-content",
	".article-body",
}

// Extractor parses HTML into an ExtractedPage. It is stateless and safe
// for concurrent use.
type Extractor struct {
	logger *slog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Extractor.
func New(opts ...ExtractorOption) *Extractor {
	e := &Extractor{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractCrawl parses a page for the deep-search path: title, main
// content, paragraphs, and same-domain links for depth-1 expansion.
func (e *Extractor) ExtractCrawl(html, sourceURL string) (*model.ExtractedPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	// Link discovery runs before noise removal: menus are boilerplate for
	// prose purposes but still contain crawlable, sometimes relevant links.
	internalLinks := e.internalLinks(doc, sourceURL)
	downloadLinks := e.downloadLinks(doc, sourceURL)

	doc.Find(crawlNoiseSelector).Remove()

	page := &model.ExtractedPage{
		URL:           sourceURL,
		Title:         e.title(doc),
		MainText:      e.mainContent(doc),
		Paragraphs:    e.paragraphs(doc),
		InternalLinks: internalLinks,
		DownloadLinks: downloadLinks,
	}

	e.logger.Debug("extracted crawl page",
		"url", sourceURL,
		"paragraphs", len(page.Paragraphs),
		"internal_links", len(page.InternalLinks),
	)

	return page, nil
}

// ExtractSingle parses a page for the single-page path: generic text
// blocks, tables, download links, and embedded-data heuristics. When
// rendered is true the text-block pass collapses to own text only and
// deduplicates, countering the duplicated nesting JS frameworks produce.
func (e *Extractor) ExtractSingle(html, sourceURL string, rendered bool) (*model.ExtractedPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	// Script mining must happen before noise removal strips the scripts.
	embedded := e.MineEmbeddedData(doc)

	downloadLinks := e.downloadLinks(doc, sourceURL)

	doc.Find(noiseSelector).Remove()

	page := &model.ExtractedPage{
		URL:           sourceURL,
		Title:         e.title(doc),
		TextBlocks:    e.textBlocks(doc, rendered),
		Tables:        e.tables(doc),
		DownloadLinks: downloadLinks,
	}
	if embedded.Found {
		page.EmbeddedData = embedded
	}

	e.logger.Debug("extracted page",
		"url", sourceURL,
		"text_blocks", len(page.TextBlocks),
		"tables", len(page.Tables),
		"embedded_found", embedded.Found,
	)

	return page, nil
}

// title resolves the page title: <title>, falling back to the first <h1>.
func (e *Extractor) title(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

// mainContent tries the content-container selectors in priority order and
// keeps the longest candidate text. Candidates shorter than
// minMainContentLen lose to the full body text.
func (e *Extractor) mainContent(doc *goquery.Document) string {
	var best string
	for _, sel := range contentSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			text := collapseWhitespace(s.Text())
			if utf8.RuneCountInString(text) > utf8.RuneCountInString(best) {
				best = text
			}
		})
	}

	if utf8.RuneCountInString(best) >= minMainContentLen {
		return best
	}

	return collapseWhitespace(doc.Find("body").Text())
}

// paragraphs collects <p> texts with length strictly between the bounds,
// capped at model.MaxParagraphs.
func (e *Extractor) paragraphs(doc *goquery.Document) []string {
	var out []string
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := collapseWhitespace(s.Text())
		n := utf8.RuneCountInString(text)
		if n > minParagraphLen && n < maxParagraphLen {
			out = append(out, text)
		}
		return len(out) < model.MaxParagraphs
	})
	return out
}

// textBlocks collects text from prose, list, heading, and table-cell
// elements in document order, capped at model.MaxTextBlocks.
func (e *Extractor) textBlocks(doc *goquery.Document, rendered bool) []string {
	var out []string
	seen := make(map[string]bool)

	doc.Find("p, li, h1, h2, h3, h4, h5, h6, td, th").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var text string
		if rendered {
			// Rendered DOMs repeat text through nested wrappers; own text
			// plus exact-repeat dedup keeps each block once.
			text = collapseWhitespace(ownText(s))
		} else {
			text = collapseWhitespace(s.Text())
		}

		if utf8.RuneCountInString(text) <= minTextBlockLen {
			return true
		}
		if rendered {
			if seen[text] {
				return true
			}
			seen[text] = true
		}

		out = append(out, text)
		return len(out) < model.MaxTextBlocks
	})

	return out
}

// ownText returns the element's direct text nodes, excluding descendant
// element text.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	for _, node := range s.Nodes {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
	}
	return b.String()
}

// collapseWhitespace trims and collapses runs of whitespace to single
// spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

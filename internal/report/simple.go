package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/deepfetch/deepfetch/internal/model"
)

// SimpleWriter outputs human-readable text results.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no content are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with per-page content previews.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteCrawl outputs the crawl result in human-readable format.
func (w *SimpleWriter) WriteCrawl(result *model.CrawlResult) (int, error) {
	var sb strings.Builder

	w.writeCrawlHeader(&sb, result)
	w.writePages(&sb, result)
	w.writeErrors(&sb, result)
	w.writeSuggestions(&sb, result)
	w.writeDigest(&sb, result)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeCrawlHeader writes the result header with crawl statistics.
func (w *SimpleWriter) writeCrawlHeader(sb *strings.Builder, result *model.CrawlResult) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       DEEPFETCH SEARCH RESULT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Query:             %s\n", result.Query))
	sb.WriteString(fmt.Sprintf("Pages Visited:     %d\n", result.TotalPagesVisited))
	sb.WriteString(fmt.Sprintf("Content Extracted: %d chars\n", result.TotalContentExtracted))
	sb.WriteString(fmt.Sprintf("Elapsed:           %s\n", result.ElapsedTime.Round(time.Millisecond)))

	if result.Success {
		sb.WriteString("Status:            Complete\n")
	} else {
		sb.WriteString("Status:            Failed\n")
	}

	sb.WriteString("\n")
}

// writePages writes the per-page summary section.
func (w *SimpleWriter) writePages(sb *strings.Builder, result *model.CrawlResult) {
	if len(result.Pages) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(result.Pages) == 0 {
		sb.WriteString("  No pages visited\n")
	}

	for i, page := range result.Pages {
		title := page.Title
		if title == "" {
			title = "(untitled)"
		}
		sb.WriteString(fmt.Sprintf("  [%d] %s\n", i+1, title))
		sb.WriteString(fmt.Sprintf("      URL:   %s\n", page.URL))
		sb.WriteString(fmt.Sprintf("      Depth: %d\n", page.Depth))
		if page.ParentURL != "" {
			sb.WriteString(fmt.Sprintf("      From:  %s\n", page.ParentURL))
		}
		if w.verbose && page.Content != "" {
			sb.WriteString(fmt.Sprintf("      Text:  %s\n", preview(page.Content, 200)))
		}
	}
	sb.WriteString("\n")
}

// writeErrors writes failed page visits.
func (w *SimpleWriter) writeErrors(sb *strings.Builder, result *model.CrawlResult) {
	if len(result.Errors) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("ERRORS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(result.Errors) == 0 {
		sb.WriteString("  No errors\n")
	}

	for _, pageErr := range result.Errors {
		sb.WriteString(fmt.Sprintf("  [!] %s\n", pageErr.URL))
		sb.WriteString(fmt.Sprintf("      %s\n", pageErr.Error))
	}
	sb.WriteString("\n")
}

// writeSuggestions writes search engine suggestions, if any.
func (w *SimpleWriter) writeSuggestions(sb *strings.Builder, result *model.CrawlResult) {
	if len(result.SearchSuggestions) == 0 {
		return
	}

	sb.WriteString("Suggestions:\n")
	for _, s := range result.SearchSuggestions {
		sb.WriteString(fmt.Sprintf("  - %s\n", s))
	}
	sb.WriteString("\n")
}

// writeDigest writes the consolidated text digest.
func (w *SimpleWriter) writeDigest(sb *strings.Builder, result *model.CrawlResult) {
	if result.ConsolidatedText == "" && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("DIGEST\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(result.ConsolidatedText)
	sb.WriteString("\n")
}

// WritePage outputs a single-page extract in human-readable format.
func (w *SimpleWriter) WritePage(page *model.PageExtract) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       DEEPFETCH PAGE EXTRACT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("URL:     %s\n", page.URL))
	sb.WriteString(fmt.Sprintf("Type:    %s\n", page.Type))
	if page.Title != "" {
		sb.WriteString(fmt.Sprintf("Title:   %s\n", page.Title))
	}
	sb.WriteString(fmt.Sprintf("Fetched: %s\n", page.FetchedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString("\n")

	if page.Type == "json" {
		sb.WriteString("JSON payload captured; use --json to print it.\n")
		w.writeFooter(&sb)
		return w.output.Write([]byte(sb.String()))
	}

	w.writePageText(&sb, page)
	w.writePageTables(&sb, page)
	w.writePageDownloads(&sb, page)
	w.writePageEmbedded(&sb, page)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writePageText writes extracted text blocks.
func (w *SimpleWriter) writePageText(sb *strings.Builder, page *model.PageExtract) {
	if len(page.TextContent) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("TEXT\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, block := range page.TextContent {
		sb.WriteString("  ")
		sb.WriteString(preview(block, 500))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// writePageTables writes extracted tables as aligned text.
func (w *SimpleWriter) writePageTables(sb *strings.Builder, page *model.PageExtract) {
	if len(page.Tables) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("TABLES (%d)\n", len(page.Tables)))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for i, table := range page.Tables {
		sb.WriteString(fmt.Sprintf("  Table %d:\n", i+1))
		if len(table.Headers) > 0 {
			sb.WriteString("    " + strings.Join(table.Headers, " | ") + "\n")
		}
		for _, row := range table.Rows {
			sb.WriteString("    " + strings.Join(row, " | ") + "\n")
		}
		sb.WriteString("\n")
	}
}

// writePageDownloads writes classified download links.
func (w *SimpleWriter) writePageDownloads(sb *strings.Builder, page *model.PageExtract) {
	if len(page.DownloadLinks) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("DOWNLOAD LINKS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, link := range page.DownloadLinks {
		sb.WriteString(fmt.Sprintf("  [%s] %s\n", link.Kind, link.Text))
		sb.WriteString(fmt.Sprintf("        %s\n", link.URL))
	}
	sb.WriteString("\n")
}

// writePageEmbedded writes the embedded-data mining summary.
func (w *SimpleWriter) writePageEmbedded(sb *strings.Builder, page *model.PageExtract) {
	data := page.EmbeddedData
	if data == nil || (!data.Found && !w.showEmpty) {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("EMBEDDED DATA\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Store records: %d\n", len(data.Stores)))
	sb.WriteString(fmt.Sprintf("  Map markers:   %d\n", len(data.Markers)))
	sb.WriteString(fmt.Sprintf("  JSON objects:  %d\n", len(data.JSONObjects)))
	sb.WriteString(fmt.Sprintf("  API URLs:      %d\n", len(data.APIURLs)))
	for _, u := range data.APIURLs {
		sb.WriteString(fmt.Sprintf("    - %s\n", u))
	}
	sb.WriteString("\n")
}

// writeFooter writes the result footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Generated by deepfetch\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// preview returns s truncated to max runes with an ellipsis.
func preview(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

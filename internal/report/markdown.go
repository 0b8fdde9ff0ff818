package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/deepfetch/deepfetch/internal/model"
)

// MarkdownWriter outputs results in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteCrawl outputs the crawl result in Markdown format.
func (w *MarkdownWriter) WriteCrawl(result *model.CrawlResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeCrawlHeader(md, result)
	w.writeCrawlPages(md, result)
	w.writeCrawlErrors(md, result)
	w.writeCrawlDigest(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeCrawlHeader writes the result header with crawl statistics.
func (w *MarkdownWriter) writeCrawlHeader(md *markdown.Markdown, result *model.CrawlResult) {
	md.H1("Deepfetch Search Result")
	md.PlainText("")

	status := "✅ Complete"
	if !result.Success {
		status = "❌ Failed"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Query", "`" + result.Query + "`"},
			{"Pages Visited", strconv.Itoa(result.TotalPagesVisited)},
			{"Content Extracted", strconv.Itoa(result.TotalContentExtracted) + " chars"},
			{"Elapsed", result.ElapsedTime.Round(time.Millisecond).String()},
			{"Status", status},
		},
	})
	md.PlainText("")
}

// writeCrawlPages writes the visited page list.
func (w *MarkdownWriter) writeCrawlPages(md *markdown.Markdown, result *model.CrawlResult) {
	if len(result.Pages) == 0 {
		return
	}

	md.H2("Pages")
	md.PlainText("")

	rows := make([][]string, 0, len(result.Pages))
	for i, page := range result.Pages {
		title := page.Title
		if title == "" {
			title = "(untitled)"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			title,
			page.URL,
			strconv.Itoa(page.Depth),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"#", "Title", "URL", "Depth"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeCrawlErrors writes failed page visits as a warning alert.
func (w *MarkdownWriter) writeCrawlErrors(md *markdown.Markdown, result *model.CrawlResult) {
	if len(result.Errors) == 0 {
		return
	}

	md.H2("Errors")
	md.PlainText("")
	md.Warningf("%d page(s) could not be visited.", len(result.Errors))
	md.PlainText("")

	items := make([]string, 0, len(result.Errors))
	for _, pageErr := range result.Errors {
		items = append(items, fmt.Sprintf("`%s` - %s", pageErr.URL, pageErr.Error))
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeCrawlDigest writes the consolidated digest as a code block.
func (w *MarkdownWriter) writeCrawlDigest(md *markdown.Markdown, result *model.CrawlResult) {
	if result.ConsolidatedText == "" {
		return
	}

	md.H2("Digest")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightText, result.ConsolidatedText)
	md.PlainText("")
}

// WritePage outputs a single-page extract in Markdown format.
func (w *MarkdownWriter) WritePage(page *model.PageExtract) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Deepfetch Page Extract")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URL", page.URL},
			{"Type", page.Type},
			{"Title", page.Title},
			{"Fetched", page.FetchedAt.Format("2006-01-02 15:04:05 MST")},
		},
	})
	md.PlainText("")

	w.writePageText(md, page)
	w.writePageTables(md, page)
	w.writePageDownloads(md, page)
	w.writePageEmbedded(md, page)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writePageText writes extracted text blocks as a bullet list.
func (w *MarkdownWriter) writePageText(md *markdown.Markdown, page *model.PageExtract) {
	if len(page.TextContent) == 0 {
		return
	}

	md.H2("Text")
	md.PlainText("")
	items := make([]string, 0, len(page.TextContent))
	for _, block := range page.TextContent {
		items = append(items, preview(block, 500))
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writePageTables renders each extracted HTML table as a markdown table.
func (w *MarkdownWriter) writePageTables(md *markdown.Markdown, page *model.PageExtract) {
	if len(page.Tables) == 0 {
		return
	}

	md.H2("Tables")
	md.PlainText("")
	for _, table := range page.Tables {
		headers := table.Headers
		if len(headers) == 0 && len(table.Rows) > 0 {
			headers = make([]string, len(table.Rows[0]))
		}
		md.Table(markdown.TableSet{
			Header: headers,
			Rows:   table.Rows,
		})
		md.PlainText("")
	}
}

// writePageDownloads writes classified download links.
func (w *MarkdownWriter) writePageDownloads(md *markdown.Markdown, page *model.PageExtract) {
	if len(page.DownloadLinks) == 0 {
		return
	}

	md.H2("Download Links")
	md.PlainText("")

	rows := make([][]string, 0, len(page.DownloadLinks))
	for _, link := range page.DownloadLinks {
		rows = append(rows, []string{link.Kind, link.Text, link.URL})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Kind", "Text", "URL"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writePageEmbedded summarizes mined embedded data.
func (w *MarkdownWriter) writePageEmbedded(md *markdown.Markdown, page *model.PageExtract) {
	data := page.EmbeddedData
	if data == nil || !data.Found {
		return
	}

	md.H2("Embedded Data")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Kind", "Count"},
		Rows: [][]string{
			{"Store records", strconv.Itoa(len(data.Stores))},
			{"Map markers", strconv.Itoa(len(data.Markers))},
			{"JSON objects", strconv.Itoa(len(data.JSONObjects))},
			{"API URLs", strconv.Itoa(len(data.APIURLs))},
		},
	})
	md.PlainText("")

	if len(data.APIURLs) > 0 {
		md.BulletList(data.APIURLs...)
		md.PlainText("")
	}
}

// writeFooter writes the result footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("Generated by deepfetch")
}

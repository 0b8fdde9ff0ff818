package report

import (
	"io"

	"github.com/deepfetch/deepfetch/internal/model"
)

// Writer defines the interface for result output.
// Implementations write crawl and extraction results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// WriteCrawl outputs a deep-search crawl result to the configured
	// destination. Returns the number of bytes written and any error.
	WriteCrawl(result *model.CrawlResult) (int, error)

	// WritePage outputs a single-page extraction result.
	// This is used by the extract command.
	WritePage(page *model.PageExtract) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write results, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteCrawl outputs the crawl result to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) WriteCrawl(result *model.CrawlResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteCrawl(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WritePage outputs the page extract to all configured Writers.
func (m *MultiWriter) WritePage(page *model.PageExtract) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WritePage(page)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for result writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

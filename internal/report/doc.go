// Package report renders crawl and extraction results in multiple
// output formats.
//
// Three writers implement the Writer interface: SimpleWriter produces
// human-readable text for terminal display, JSONWriter produces
// machine-readable JSON, and MarkdownWriter produces GitHub-flavored
// markdown for documentation. MultiWriter fans results out to several
// destinations at once.
package report

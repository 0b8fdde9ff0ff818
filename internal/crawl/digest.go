package crawl

import (
	"fmt"
	"strings"

	"github.com/deepfetch/deepfetch/internal/model"
)

// ellipsis marks truncated page content inside the digest.
const ellipsis = "..."

// Consolidate builds the bounded text digest of a crawl: a header line
// naming the query, then each visited page's title, URL, source engine,
// and up to model.MaxPageContentChars of content, in visit order. The
// whole digest is truncated to model.MaxDigestChars to respect
// downstream context limits.
func Consolidate(query string, pages []model.PageVisitRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Deep search results for: %s\n", query)

	for i, page := range pages {
		fmt.Fprintf(&b, "\n[%d] %s\n", i+1, page.Title)
		fmt.Fprintf(&b, "URL: %s\n", page.URL)
		if page.Engine != "" {
			fmt.Fprintf(&b, "Source: %s\n", page.Engine)
		}
		b.WriteString(truncate(page.Content, model.MaxPageContentChars))
		b.WriteString("\n")
	}

	return truncate(b.String(), model.MaxDigestChars)
}

// truncate cuts s to max characters, appending an ellipsis marker when
// anything was dropped. Counting is in runes so multibyte text is never
// split mid-character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-len(ellipsis)]) + ellipsis
}

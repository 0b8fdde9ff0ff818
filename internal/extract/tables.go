package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/deepfetch/deepfetch/internal/model"
)

// tables extracts every <table> as text cells, capped at model.MaxTables.
//
// Headers come from <thead> cells, or the first-row cells when no <thead>
// exists. In the latter case a body row whose cell texts exactly match the
// promoted headers is dropped, so a markup-only header row is not counted
// twice. A row is kept only if at least one cell is non-empty.
func (e *Extractor) tables(doc *goquery.Document) []model.Table {
	var out []model.Table

	doc.Find("table").EachWithBreak(func(_ int, tbl *goquery.Selection) bool {
		var headers []string
		headerPromoted := false

		thead := tbl.Find("thead")
		if thead.Length() > 0 {
			thead.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				headers = append(headers, collapseWhitespace(cell.Text()))
			})
		} else if first := tbl.Find("tr").First(); first.Length() > 0 {
			first.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				headers = append(headers, collapseWhitespace(cell.Text()))
			})
			headerPromoted = true
		}

		rowSel := tbl.Find("tbody tr")
		if rowSel.Length() == 0 {
			rowSel = tbl.Find("tr")
		}

		var rows [][]string
		rowSel.Each(func(i int, tr *goquery.Selection) {
			cells := rowCells(tr)

			// Skip a leading row that duplicates the promoted header,
			// whether it was the promoted row itself or a <tbody> copy.
			if i == 0 && (headerPromoted || thead.Length() > 0) && equalCells(cells, headers) {
				return
			}

			if hasNonEmptyCell(cells) {
				rows = append(rows, cells)
			}
		})

		if len(headers) > 0 || len(rows) > 0 {
			out = append(out, model.Table{Headers: headers, Rows: rows})
		}

		return len(out) < model.MaxTables
	})

	return out
}

// rowCells returns the trimmed cell texts of one row.
func rowCells(tr *goquery.Selection) []string {
	var cells []string
	tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, collapseWhitespace(cell.Text()))
	})
	return cells
}

// equalCells reports whether two cell slices hold identical texts.
func equalCells(a, b []string) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// hasNonEmptyCell reports whether at least one cell holds text.
func hasNonEmptyCell(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}

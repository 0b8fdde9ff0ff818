package extract

import (
	"strings"
	"testing"

	"github.com/deepfetch/deepfetch/internal/model"
)

// TestTablesWithThead verifies header extraction from an explicit <thead>.
func TestTablesWithThead(t *testing.T) {
	t.Parallel()

	html := `<html><body><table>
		<thead><tr><th>Name</th><th>City</th></tr></thead>
		<tbody>
			<tr><td>Store A</td><td>Quito</td></tr>
			<tr><td>Store B</td><td>Guayaquil</td></tr>
		</tbody>
	</table></body></html>`

	page, err := New().ExtractSingle(html, "https://example.com", false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(page.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(page.Tables))
	}

	table := page.Tables[0]
	if len(table.Headers) != 2 || table.Headers[0] != "Name" || table.Headers[1] != "City" {
		t.Errorf("unexpected headers: %v", table.Headers)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[0][0] != "Store A" || table.Rows[1][1] != "Guayaquil" {
		t.Errorf("unexpected rows: %v", table.Rows)
	}
}

// TestTablesHeaderPromotion verifies that without a <thead> the first row
// becomes the header and is not double-counted as a data row.
func TestTablesHeaderPromotion(t *testing.T) {
	t.Parallel()

	html := `<html><body><table>
		<tr><th>Name</th><th>City</th></tr>
		<tr><td>Store A</td><td>Quito</td></tr>
	</table></body></html>`

	page, err := New().ExtractSingle(html, "https://example.com", false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(page.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(page.Tables))
	}

	table := page.Tables[0]
	if len(table.Headers) != 2 || table.Headers[0] != "Name" {
		t.Errorf("expected promoted headers, got %v", table.Headers)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("expected header row excluded from data rows, got %d rows: %v", len(table.Rows), table.Rows)
	}
	if table.Rows[0][0] != "Store A" {
		t.Errorf("unexpected data row: %v", table.Rows[0])
	}
}

// TestTablesEmptyRowsDropped verifies rows with only empty cells are
// discarded.
func TestTablesEmptyRowsDropped(t *testing.T) {
	t.Parallel()

	html := `<html><body><table>
		<thead><tr><th>Col</th></tr></thead>
		<tbody>
			<tr><td>value</td></tr>
			<tr><td>  </td></tr>
			<tr><td></td></tr>
		</tbody>
	</table></body></html>`

	page, err := New().ExtractSingle(html, "https://example.com", false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(page.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(page.Tables))
	}
	if len(page.Tables[0].Rows) != 1 {
		t.Errorf("expected empty rows dropped, got %v", page.Tables[0].Rows)
	}
}

// TestTablesCap verifies the table count cap.
func TestTablesCap(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < model.MaxTables+5; i++ {
		sb.WriteString("<table><tr><td>cell</td></tr></table>")
	}
	sb.WriteString("</body></html>")

	page, err := New().ExtractSingle(sb.String(), "https://example.com", false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(page.Tables) != model.MaxTables {
		t.Errorf("expected %d tables, got %d", model.MaxTables, len(page.Tables))
	}
}

// TestTablesNoTables verifies a page without tables yields none.
func TestTablesNoTables(t *testing.T) {
	t.Parallel()

	page, err := New().ExtractSingle("<html><body><p>just prose here</p></body></html>", "https://example.com", false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(page.Tables) != 0 {
		t.Errorf("expected no tables, got %d", len(page.Tables))
	}
}

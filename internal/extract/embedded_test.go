package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// parseDoc is a test helper building a goquery document from HTML.
func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return doc
}

// TestMineEmbeddedDataStoreArray verifies a store-locator JSON array in a
// script tag is recognized and its records extracted.
func TestMineEmbeddedDataStoreArray(t *testing.T) {
	t.Parallel()

	html := `<html><body><script>
		var stores = [{"name":"A","lat":1,"lng":2},{"name":"B","lat":3,"lng":4}];
	</script></body></html>`

	data := New().MineEmbeddedData(parseDoc(t, html))

	if !data.Found {
		t.Fatal("expected Found to be true")
	}
	if len(data.Stores) != 2 {
		t.Fatalf("expected exactly 2 store records, got %d", len(data.Stores))
	}
	if data.Stores[0]["name"] != "A" {
		t.Errorf("unexpected first record: %v", data.Stores[0])
	}
	if lat, ok := data.Stores[1]["lat"].(float64); !ok || lat != 3 {
		t.Errorf("unexpected lat in second record: %v", data.Stores[1]["lat"])
	}
}

// TestMineEmbeddedDataIgnoresUnrelatedArrays verifies arrays without
// location keywords are skipped.
func TestMineEmbeddedDataIgnoresUnrelatedArrays(t *testing.T) {
	t.Parallel()

	html := `<html><body><script>
		var config = [{"theme":"dark","cols":3},{"theme":"light","cols":4}];
	</script></body></html>`

	data := New().MineEmbeddedData(parseDoc(t, html))

	if len(data.Stores) != 0 {
		t.Errorf("expected unrelated array ignored, got %v", data.Stores)
	}
	if data.Found {
		t.Error("expected Found to be false")
	}
}

// TestMineEmbeddedDataMalformedJSON verifies malformed fragments are
// silently discarded without affecting valid ones.
func TestMineEmbeddedDataMalformedJSON(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<script>var broken = [{name: noQuotes, lat: }];</script>
		<script>var good = [{"name":"A","lat":1.5,"lng":-78.5}];</script>
	</body></html>`

	data := New().MineEmbeddedData(parseDoc(t, html))

	if len(data.Stores) != 1 {
		t.Fatalf("expected 1 record from the valid script, got %d", len(data.Stores))
	}
	if data.Stores[0]["name"] != "A" {
		t.Errorf("unexpected record: %v", data.Stores[0])
	}
}

// TestMineMarkers verifies coordinate extraction from map-marker
// constructor calls.
func TestMineMarkers(t *testing.T) {
	t.Parallel()

	t.Run("google maps marker", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><script>
			var m = new google.maps.Marker({position: {lat: -0.1807, lng: -78.4678}, title: "Quito Office"});
		</script></body></html>`

		data := New().MineEmbeddedData(parseDoc(t, html))

		if len(data.Markers) != 1 {
			t.Fatalf("expected 1 marker, got %d", len(data.Markers))
		}
		m := data.Markers[0]
		if m.Lat != -0.1807 || m.Lng != -78.4678 {
			t.Errorf("unexpected coordinates: %v", m)
		}
		if m.Title != "Quito Office" {
			t.Errorf("unexpected title: %q", m.Title)
		}
	})

	t.Run("leaflet marker", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><script>
			L.marker([0, 0]); var opts = {lat: 10.5, lng: 20.25};
		</script></body></html>`

		data := New().MineEmbeddedData(parseDoc(t, html))

		if len(data.Markers) != 1 {
			t.Fatalf("expected 1 marker, got %d", len(data.Markers))
		}
		if data.Markers[0].Lat != 10.5 {
			t.Errorf("unexpected lat: %v", data.Markers[0].Lat)
		}
	})

	t.Run("marker without coordinates skipped", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><script>
			var m = new Marker({title: "No coords here"});
		</script></body></html>`

		data := New().MineEmbeddedData(parseDoc(t, html))

		if len(data.Markers) != 0 {
			t.Errorf("expected no markers, got %v", data.Markers)
		}
	})
}

// TestMineAPIURLs verifies endpoint URL discovery and deduplication.
func TestMineAPIURLs(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<script>fetch("https://example.com/api/stores");</script>
		<script>var u = "https://example.com/api/stores"; var s = "https://cdn.example.com/logo.png";</script>
	</body></html>`

	data := New().MineEmbeddedData(parseDoc(t, html))

	if len(data.APIURLs) != 1 {
		t.Fatalf("expected 1 deduplicated API URL, got %d: %v", len(data.APIURLs), data.APIURLs)
	}
	if data.APIURLs[0] != "https://example.com/api/stores" {
		t.Errorf("unexpected URL: %s", data.APIURLs[0])
	}
}

// TestMineDataAttributes verifies JSON payloads in data-* attributes are
// extracted, object and array forms both.
func TestMineDataAttributes(t *testing.T) {
	t.Parallel()

	t.Run("single object", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><div data-stores='{"name":"A","city":"Quito"}'></div></body></html>`
		data := New().MineEmbeddedData(parseDoc(t, html))

		if len(data.JSONObjects) != 1 {
			t.Fatalf("expected 1 object, got %d", len(data.JSONObjects))
		}
		if data.JSONObjects[0]["city"] != "Quito" {
			t.Errorf("unexpected object: %v", data.JSONObjects[0])
		}
	})

	t.Run("array of objects", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><div data-locations='[{"name":"A"},{"name":"B"}]'></div></body></html>`
		data := New().MineEmbeddedData(parseDoc(t, html))

		if len(data.JSONObjects) != 2 {
			t.Fatalf("expected 2 objects, got %d", len(data.JSONObjects))
		}
	})
}

// TestMineEmbeddedDataTotals verifies Found and TotalItems aggregation.
func TestMineEmbeddedDataTotals(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<script>var stores = [{"name":"A","lat":1,"lng":2}];</script>
		<script>fetch("https://example.com/api/locations");</script>
		<div data-json='{"key":"value"}'></div>
	</body></html>`

	data := New().MineEmbeddedData(parseDoc(t, html))

	if !data.Found {
		t.Fatal("expected Found to be true")
	}
	want := len(data.Stores) + len(data.Markers) + len(data.JSONObjects) + len(data.APIURLs)
	if data.TotalItems != want {
		t.Errorf("expected TotalItems %d, got %d", want, data.TotalItems)
	}
	if data.TotalItems != 3 {
		t.Errorf("expected 3 total items, got %d", data.TotalItems)
	}
}

// TestExtractSingleAttachesEmbeddedData verifies the single-page path
// surfaces mined data only when something was found.
func TestExtractSingleAttachesEmbeddedData(t *testing.T) {
	t.Parallel()

	t.Run("attached when found", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><script>var stores = [{"name":"A","lat":1,"lng":2}];</script></body></html>`
		page, err := New().ExtractSingle(html, "https://example.com", false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if page.EmbeddedData == nil || !page.EmbeddedData.Found {
			t.Error("expected embedded data attached")
		}
	})

	t.Run("nil when nothing found", func(t *testing.T) {
		t.Parallel()

		page, err := New().ExtractSingle("<html><body><p>plain content page</p></body></html>", "https://example.com", false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if page.EmbeddedData != nil {
			t.Errorf("expected nil embedded data, got %+v", page.EmbeddedData)
		}
	})
}

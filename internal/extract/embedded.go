package extract

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/deepfetch/deepfetch/internal/model"
)

// dataKeywords is the keyword set used to recognize store/location records
// inside script-embedded JSON. A candidate array is kept only when both
// its raw text and the keys of its first object hit this set.
var dataKeywords = []string{
	"lat", "lng", "latitude", "longitude",
	"address", "direccion",
	"name", "nombre",
	"store", "tienda", "sucursal",
	"city", "ciudad",
	"phone", "telefono",
	"location",
}

// apiKeywords marks URLs that look like data endpoints.
var apiKeywords = []string{
	"api", "json", "stores", "locations", "sucursales", "branches", "ajax", "rest",
}

// dataAttrSelector matches markup elements carrying JSON payloads in
// data-* attributes.
const dataAttrSelector = "[data-stores], [data-locations], [data-markers], [data-json]"

var dataAttrNames = []string{"data-stores", "data-locations", "data-markers", "data-json"}

// jsonArrayRe finds JSON array-of-object literals in script text. This is
// deliberately a shallow match: nested arrays inside objects defeat it,
// and that is acceptable for a recall-oriented heuristic.
var jsonArrayRe = regexp.MustCompile(`(?s)\[\s*\{.*?\}\s*\]`)

// markerCallRe finds map-marker constructor calls (Google Maps, Leaflet,
// and generic Marker constructors).
var markerCallRe = regexp.MustCompile(`(?:new\s+(?:google\.maps\.)?Marker|L\.marker)\s*\(`)

// Field regexes applied to the argument text of a marker call.
var (
	markerLatRe   = regexp.MustCompile(`(?i)\blat(?:itude)?\s*[:=]\s*(-?\d+(?:\.\d+)?)`)
	markerLngRe   = regexp.MustCompile(`(?i)\blo?ng(?:itude)?\s*[:=]\s*(-?\d+(?:\.\d+)?)`)
	markerTitleRe = regexp.MustCompile(`(?i)\b(?:title|name)\s*[:=]\s*["']([^"']+)["']`)
)

// embeddedURLRe finds absolute and protocol-relative URLs in script text.
var embeddedURLRe = regexp.MustCompile(`(?:https?:)?//[^\s"'<>\\)]+`)

// markerWindow is how many characters of argument text after a marker
// call the field regexes inspect.
const markerWindow = 300

// MineEmbeddedData runs the four script-mining heuristics over a parsed
// document and aggregates their outputs. Each matcher is independent: a
// malformed fragment in one never affects another, and malformed JSON is
// silently discarded. Must run before noise removal strips the scripts.
func (e *Extractor) MineEmbeddedData(doc *goquery.Document) *model.EmbeddedData {
	data := &model.EmbeddedData{}

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		if text == "" {
			return
		}
		data.Stores = append(data.Stores, mineJSONArrays(text)...)
		data.Markers = append(data.Markers, mineMarkers(text)...)
		data.APIURLs = append(data.APIURLs, mineAPIURLs(text)...)
	})

	data.JSONObjects = mineDataAttributes(doc)
	data.APIURLs = dedupe(data.APIURLs)

	data.TotalItems = len(data.Stores) + len(data.Markers) + len(data.JSONObjects) + len(data.APIURLs)
	data.Found = data.TotalItems > 0

	return data
}

// mineJSONArrays extracts arrays of objects whose content matches the
// store/location keyword set.
func mineJSONArrays(script string) []map[string]any {
	var out []map[string]any

	for _, candidate := range jsonArrayRe.FindAllString(script, -1) {
		if !containsKeyword(strings.ToLower(candidate), dataKeywords) {
			continue
		}

		var records []map[string]any
		if err := json.Unmarshal([]byte(candidate), &records); err != nil {
			// Parse errors are expected and frequent: the regex matches
			// plenty of JS that is not valid JSON.
			continue
		}
		if len(records) == 0 || !keysMatchKeywords(records[0]) {
			continue
		}

		out = append(out, records...)
	}

	return out
}

// keysMatchKeywords reports whether any key of the record hits the
// keyword set.
func keysMatchKeywords(record map[string]any) bool {
	for key := range record {
		if containsKeyword(strings.ToLower(key), dataKeywords) {
			return true
		}
	}
	return false
}

// mineMarkers extracts coordinates from map-marker constructor calls via
// regex on the argument object literal.
func mineMarkers(script string) []model.Marker {
	var out []model.Marker

	for _, loc := range markerCallRe.FindAllStringIndex(script, -1) {
		end := loc[1] + markerWindow
		if end > len(script) {
			end = len(script)
		}
		args := script[loc[1]:end]

		latMatch := markerLatRe.FindStringSubmatch(args)
		lngMatch := markerLngRe.FindStringSubmatch(args)
		if latMatch == nil || lngMatch == nil {
			continue
		}

		lat, err1 := strconv.ParseFloat(latMatch[1], 64)
		lng, err2 := strconv.ParseFloat(lngMatch[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}

		marker := model.Marker{Lat: lat, Lng: lng}
		if titleMatch := markerTitleRe.FindStringSubmatch(args); titleMatch != nil {
			marker.Title = titleMatch[1]
		}
		out = append(out, marker)
	}

	return out
}

// mineAPIURLs extracts URLs that look like data endpoints.
func mineAPIURLs(script string) []string {
	var out []string
	for _, raw := range embeddedURLRe.FindAllString(script, -1) {
		if containsKeyword(strings.ToLower(raw), apiKeywords) {
			out = append(out, raw)
		}
	}
	return out
}

// mineDataAttributes extracts JSON payloads from data-* attributes on
// markup elements. Both single objects and arrays of objects count.
func mineDataAttributes(doc *goquery.Document) []map[string]any {
	var out []map[string]any

	doc.Find(dataAttrSelector).Each(func(_ int, s *goquery.Selection) {
		for _, attr := range dataAttrNames {
			val, ok := s.Attr(attr)
			if !ok || val == "" {
				continue
			}

			var obj map[string]any
			if err := json.Unmarshal([]byte(val), &obj); err == nil {
				out = append(out, obj)
				continue
			}

			var arr []map[string]any
			if err := json.Unmarshal([]byte(val), &arr); err == nil {
				out = append(out, arr...)
			}
		}
	})

	return out
}

// containsKeyword reports whether s contains any of the keywords.
func containsKeyword(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// dedupe removes duplicates preserving first-seen order.
func dedupe(in []string) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/charmap"
)

// TestFetchHTML verifies a plain HTML page is fetched and returned intact.
func TestFetchHTML(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><h1>hello</h1></body></html>"))
	}))
	defer srv.Close()

	f := New()
	result, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", result.StatusCode)
	}
	if result.ContentType != "text/html" {
		t.Errorf("expected content type text/html, got %q", result.ContentType)
	}
	if !strings.Contains(result.HTML, "<h1>hello</h1>") {
		t.Errorf("expected body in result, got %q", result.HTML)
	}
	if result.IsJSON() {
		t.Error("expected IsJSON to be false for HTML response")
	}
}

// TestFetchSendsBrowserHeaders verifies the browser-like request headers
// and configured overrides reach the server.
func TestFetchSendsBrowserHeaders(t *testing.T) {
	t.Parallel()

	var gotUA, gotAccept, gotCookie, gotCustom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotCookie = r.Header.Get("Cookie")
		gotCustom = r.Header.Get("X-Custom")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	f := New(
		WithUserAgent("test-agent/1.0"),
		WithCookie("session=abc"),
		WithHeaders(map[string]string{"X-Custom": "yes"}),
	)
	if _, err := f.Fetch(context.Background(), srv.URL); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if gotUA != "test-agent/1.0" {
		t.Errorf("expected custom user agent, got %q", gotUA)
	}
	if !strings.Contains(gotAccept, "text/html") {
		t.Errorf("expected Accept header to include text/html, got %q", gotAccept)
	}
	if gotCookie != "session=abc" {
		t.Errorf("expected cookie header, got %q", gotCookie)
	}
	if gotCustom != "yes" {
		t.Errorf("expected custom header, got %q", gotCustom)
	}
}

// TestFetchJSONShortCircuit verifies application/json responses return a
// decoded payload instead of HTML.
func TestFetchJSONShortCircuit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"stores": [{"name": "A"}, {"name": "B"}]}`))
	}))
	defer srv.Close()

	f := New()
	result, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !result.IsJSON() {
		t.Fatal("expected IsJSON to be true")
	}
	if result.HTML != "" {
		t.Errorf("expected empty HTML for JSON response, got %q", result.HTML)
	}

	payload, ok := result.JSON.(map[string]any)
	if !ok {
		t.Fatalf("expected decoded object, got %T", result.JSON)
	}
	stores, ok := payload["stores"].([]any)
	if !ok || len(stores) != 2 {
		t.Errorf("expected 2 stores in decoded payload, got %v", payload["stores"])
	}
}

// TestFetchHTTPError verifies non-2xx responses surface as KindHTTP with
// the status code in the message.
func TestFetchHTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
	}{
		{name: "not found", status: http.StatusNotFound},
		{name: "server error", status: http.StatusInternalServerError},
		{name: "forbidden", status: http.StatusForbidden},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			f := New()
			_, err := f.Fetch(context.Background(), srv.URL)
			if err == nil {
				t.Fatal("expected error")
			}

			if KindOf(err) != KindHTTP {
				t.Errorf("expected KindHTTP, got %v", KindOf(err))
			}

			var fe *Error
			if !errors.As(err, &fe) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if fe.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, fe.Status)
			}
			if !strings.Contains(err.Error(), "HTTP") {
				t.Errorf("expected HTTP in error message, got %q", err.Error())
			}
		})
	}
}

// TestFetchUnsupportedContent verifies non-HTML, non-JSON responses are
// rejected with KindUnsupportedContent.
func TestFetchUnsupportedContent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	f := New()
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error")
	}
	if KindOf(err) != KindUnsupportedContent {
		t.Errorf("expected KindUnsupportedContent, got %v", KindOf(err))
	}
	if err.Error() != "Not HTML content" {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

// TestFetchTimeout verifies a slow server produces KindTimeout within the
// configured budget.
func TestFetchTimeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(5 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	f := New(
		WithTimeout(50*time.Millisecond),
		WithHTTPClient(&http.Client{}),
	)

	start := time.Now()
	_, err := f.Fetch(context.Background(), srv.URL)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected timeout error")
	}
	if KindOf(err) != KindTimeout {
		t.Errorf("expected KindTimeout, got %v", KindOf(err))
	}
	if elapsed > 2*time.Second {
		t.Errorf("fetch did not respect timeout budget, took %v", elapsed)
	}
}

// TestFetchInvalidScheme verifies non-HTTP schemes are rejected before
// any network activity.
func TestFetchInvalidScheme(t *testing.T) {
	t.Parallel()

	f := New()
	_, err := f.Fetch(context.Background(), "ftp://example.com/file")
	if err == nil {
		t.Fatal("expected error")
	}
	if KindOf(err) != KindNetwork {
		t.Errorf("expected KindNetwork, got %v", KindOf(err))
	}
}

// TestFetchCharsetDecoding verifies non-UTF-8 pages are transcoded.
func TestFetchCharsetDecoding(t *testing.T) {
	t.Parallel()

	// "año" encoded as ISO-8859-1
	latin1, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte("<html><body>año</body></html>"))
	if err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write(latin1)
	}))
	defer srv.Close()

	f := New()
	result, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !strings.Contains(result.HTML, "año") {
		t.Errorf("expected decoded UTF-8 text, got %q", result.HTML)
	}
}

// TestFetchBodySizeCap verifies the body read is bounded.
func TestFetchBodySizeCap(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(strings.Repeat("a", 4096)))
	}))
	defer srv.Close()

	f := New(WithMaxBodySize(1024))
	result, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(result.HTML) > 1024 {
		t.Errorf("expected body capped at 1024 bytes, got %d", len(result.HTML))
	}
}

// TestErrorMessages verifies the error taxonomy renders stable messages.
func TestErrorMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "http error includes status",
			err:  &Error{Kind: KindHTTP, URL: "https://example.com", Status: 404},
			want: "HTTP 404",
		},
		{
			name: "unsupported content",
			err:  &Error{Kind: KindUnsupportedContent, URL: "https://example.com"},
			want: "Not HTML content",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestKindOf verifies kind extraction from wrapped errors.
func TestKindOf(t *testing.T) {
	t.Parallel()

	t.Run("fetch error yields its kind", func(t *testing.T) {
		t.Parallel()
		err := &Error{Kind: KindTimeout, URL: "https://example.com"}
		if KindOf(err) != KindTimeout {
			t.Errorf("expected KindTimeout, got %v", KindOf(err))
		}
	})

	t.Run("unrelated error yields network kind", func(t *testing.T) {
		t.Parallel()
		if KindOf(errors.New("boom")) != KindNetwork {
			t.Errorf("expected KindNetwork fallback, got %v", KindOf(errors.New("boom")))
		}
	})
}

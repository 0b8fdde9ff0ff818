package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestHandlerRedactsSensitiveKeys verifies that attribute values with
// sensitive keys never reach the log output.
func TestHandlerRedactsSensitiveKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "cookie", key: "cookie", value: "session=topsecret"},
		{name: "authorization", key: "Authorization", value: "Bearer abc123"},
		{name: "api key", key: "x-api-key", value: "key-value"},
		{name: "password", key: "password", value: "hunter2"},
		{name: "token", key: "token", value: "tok_live_123"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(NewHandler(slog.NewTextHandler(&buf, nil)))

			logger.Info("request", tt.key, tt.value)

			out := buf.String()
			if strings.Contains(out, tt.value) {
				t.Errorf("sensitive value %q leaked into log output: %s", tt.value, out)
			}
			if !strings.Contains(out, MaskValue) {
				t.Errorf("expected mask %q in output: %s", MaskValue, out)
			}
		})
	}
}

// TestHandlerRedactsKeysCaseInsensitively verifies key matching ignores case.
func TestHandlerRedactsKeysCaseInsensitively(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewHandler(slog.NewTextHandler(&buf, nil)))

	logger.Info("request", "COOKIE", "session=abc")

	if strings.Contains(buf.String(), "session=abc") {
		t.Errorf("uppercase sensitive key leaked value: %s", buf.String())
	}
}

// TestHandlerTruncatesLongValues verifies oversized string attributes are
// cut to MaxAttrLen with a truncation marker.
func TestHandlerTruncatesLongValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewHandler(slog.NewTextHandler(&buf, nil)))

	long := strings.Repeat("x", MaxAttrLen*2)
	logger.Info("fetched", "body", long)

	out := buf.String()
	if strings.Contains(out, long) {
		t.Error("expected long value to be truncated")
	}
	if !strings.Contains(out, "...(truncated)") {
		t.Errorf("expected truncation marker in output: %s", out)
	}
}

// TestHandlerPreservesNormalAttrs verifies ordinary attributes pass through.
func TestHandlerPreservesNormalAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewHandler(slog.NewTextHandler(&buf, nil)))

	logger.Info("fetched", "url", "https://example.com", "status", 200)

	out := buf.String()
	if !strings.Contains(out, "https://example.com") {
		t.Errorf("expected url attribute in output: %s", out)
	}
	if !strings.Contains(out, "200") {
		t.Errorf("expected status attribute in output: %s", out)
	}
}

// TestHandlerSanitizesGroups verifies sensitive keys inside groups are
// also redacted.
func TestHandlerSanitizesGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewHandler(slog.NewTextHandler(&buf, nil)))

	logger.Info("request", slog.Group("headers",
		slog.String("cookie", "session=abc"),
		slog.String("accept", "text/html"),
	))

	out := buf.String()
	if strings.Contains(out, "session=abc") {
		t.Errorf("grouped sensitive value leaked: %s", out)
	}
	if !strings.Contains(out, "text/html") {
		t.Errorf("expected non-sensitive group attribute in output: %s", out)
	}
}

// TestHandlerWithAttrs verifies attributes added via With are sanitized.
func TestHandlerWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewHandler(slog.NewTextHandler(&buf, nil)))

	logger.With("token", "tok_123").Info("request")

	if strings.Contains(buf.String(), "tok_123") {
		t.Errorf("With-attached sensitive value leaked: %s", buf.String())
	}
}

// TestNewLoggerLevels verifies verbosity controls the log level.
func TestNewLoggerLevels(t *testing.T) {
	t.Parallel()

	t.Run("verbose logger emits debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)
		logger.Debug("debug line")

		if !strings.Contains(buf.String(), "debug line") {
			t.Error("expected debug output in verbose mode")
		}
	})

	t.Run("quiet logger suppresses info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)
		logger.Info("info line")

		if buf.Len() != 0 {
			t.Errorf("expected no output below warn level, got: %s", buf.String())
		}
	})

	t.Run("quiet logger emits warnings", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)
		logger.Warn("warn line")

		if !strings.Contains(buf.String(), "warn line") {
			t.Error("expected warning output")
		}
	})
}

// TestNewJSONLogger verifies the JSON logger also sanitizes.
func TestNewJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, true)
	logger.Warn("request", "cookie", "session=abc")

	out := buf.String()
	if strings.Contains(out, "session=abc") {
		t.Errorf("sensitive value leaked in JSON output: %s", out)
	}
	if !strings.Contains(out, `"msg":"request"`) {
		t.Errorf("expected JSON-formatted output: %s", out)
	}
}

package log

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// sensitiveKeys contains attribute keys whose values are always redacted.
// Site-override configs can carry cookies and auth headers, and those end
// up as log attributes when request construction is logged.
var sensitiveKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"api_key":             true,
	"apikey":              true,
	"api-key":             true,
	"token":               true,
	"access_token":        true,
	"password":            true,
	"secret":              true,
}

// MaskValue is the string used to replace redacted values.
const MaskValue = "***REDACTED***"

// MaxAttrLen is the maximum length of a logged string attribute.
// Fetch and extraction code logs page-derived values; a full HTML body
// attached to a debug line would make the log unreadable.
const MaxAttrLen = 512

// Handler wraps an slog.Handler to redact sensitive attributes and
// truncate oversized string values before passing records on.
// It works with any underlying handler (text, JSON).
type Handler struct {
	handler slog.Handler
}

// NewHandler creates a Handler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewHandler(handler slog.Handler) *Handler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &Handler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's attributes and delegates to the
// underlying handler.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})

	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the given attributes added,
// sanitized first.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitizedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitizedAttrs[i] = h.sanitizeAttr(a)
	}
	return &Handler{handler: h.handler.WithAttrs(sanitizedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{handler: h.handler.WithGroup(name)}
}

// sanitizeAttr redacts or truncates a single attribute, recursively
// handling groups.
func (h *Handler) sanitizeAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitizedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			sanitizedAttrs[i] = h.sanitizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitizedAttrs...)}
	}

	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		if s := a.Value.String(); len(s) > MaxAttrLen {
			return slog.String(a.Key, s[:MaxAttrLen]+"...(truncated)")
		}
	}

	return a
}

// NewLogger creates a text-format slog.Logger with sanitized output.
// Level is Debug when verbose, Warn otherwise.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	return slog.New(NewHandler(slog.NewTextHandler(w, opts)))
}

// NewJSONLogger creates a JSON-format slog.Logger with sanitized output.
// Useful for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	return slog.New(NewHandler(slog.NewJSONHandler(w, opts)))
}

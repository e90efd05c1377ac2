package log

import (
	"context"
	"log/slog"
	"unicode/utf8"
)

// DefaultMaxAttrLen is the number of characters kept from a string attribute.
const DefaultMaxAttrLen = 256

// TrimSuffix marks a trimmed attribute value.
const TrimSuffix = "…"

// TrimHandler wraps an slog.Handler and shortens string attribute values
// longer than a fixed number of characters. Groups are trimmed recursively.
type TrimHandler struct {
	handler slog.Handler
	maxLen  int
}

// NewTrimHandler creates a TrimHandler around handler. A maxLen below 1 uses
// DefaultMaxAttrLen. If handler is nil, slog.Default().Handler() is used.
func NewTrimHandler(handler slog.Handler, maxLen int) *TrimHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	if maxLen < 1 {
		maxLen = DefaultMaxAttrLen
	}
	return &TrimHandler{handler: handler, maxLen: maxLen}
}

// Enabled delegates to the underlying handler.
func (h *TrimHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle trims the record's attributes and passes it on.
func (h *TrimHandler) Handle(ctx context.Context, r slog.Record) error {
	trimmed := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		trimmed.AddAttrs(h.trimAttr(a))
		return true
	})
	return h.handler.Handle(ctx, trimmed)
}

// WithAttrs returns a new handler with the given attributes trimmed and added.
func (h *TrimHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	trimmed := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		trimmed[i] = h.trimAttr(a)
	}
	return &TrimHandler{handler: h.handler.WithAttrs(trimmed), maxLen: h.maxLen}
}

// WithGroup returns a new handler with the given group name.
func (h *TrimHandler) WithGroup(name string) slog.Handler {
	return &TrimHandler{handler: h.handler.WithGroup(name), maxLen: h.maxLen}
}

func (h *TrimHandler) trimAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		trimmed := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			trimmed[i] = h.trimAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(trimmed...)}
	case slog.KindString:
		return slog.String(a.Key, trimString(a.Value.String(), h.maxLen))
	default:
		return a
	}
}

// trimString cuts s to maxLen characters, appending TrimSuffix when cut.
func trimString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	n := 0
	for i := range s {
		if n == maxLen {
			return s[:i] + TrimSuffix
		}
		n++
	}
	return s
}

// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package logging provides the slog.Handler shared by every package
// which logs settings.
package logging

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Mask replaces the value of every masked attribute.
const Mask = "****"

var sensitive = []string{
	"secret",
	"password",
	"sessiontoken",
	"accesskey",
}

// Sensitive reports whether name looks like it holds a credential.
func Sensitive(name string) bool {
	name = strings.ToLower(name)
	for _, s := range sensitive {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}

// Handler adds the Trace ID and Span ID of the active span, if any,
// to every record and masks the value of any attribute whose key
// is Sensitive.
type Handler struct {
	slog slog.Handler
}

// NewHandler wraps h. A nil h discards everything.
func NewHandler(h slog.Handler) *Handler {
	if h == nil {
		h = NoopHandler{}
	}
	if lh, ok := h.(*Handler); ok {
		return lh
	}
	return &Handler{slog: h}
}

// New provides a simple wrapper for slog.New(NewHandler(h)).
func New(h slog.Handler) *slog.Logger {
	return slog.New(NewHandler(h))
}

// Enabled implements the slog.Handler interface.
func (h *Handler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.slog.Enabled(ctx, lvl)
}

// Handle implements the slog.Handler interface.
func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	r := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(a slog.Attr) bool {
		r.AddAttrs(mask(a))
		return true
	})

	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		r.AddAttrs(
			slog.Group(
				"otel",
				slog.String("trace_id", spanCtx.TraceID().String()),
				slog.String("span_id", spanCtx.SpanID().String()),
			),
		)
	}
	return h.slog.Handle(ctx, r)
}

// WithAttrs implements the slog.Handler interface.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = mask(a)
	}
	return &Handler{slog: h.slog.WithAttrs(masked)}
}

// WithGroup implements the slog.Handler interface.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{slog: h.slog.WithGroup(name)}
}

func mask(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		masked := make([]any, len(group))
		for i, ga := range group {
			masked[i] = mask(ga)
		}
		return slog.Group(a.Key, masked...)
	}
	if Sensitive(a.Key) {
		return slog.String(a.Key, Mask)
	}
	return a
}

// NoopHandler discards every record.
type NoopHandler struct{}

func (NoopHandler) Enabled(_ context.Context, _ slog.Level) bool  { return false }
func (NoopHandler) Handle(_ context.Context, _ slog.Record) error { return nil }
func (h NoopHandler) WithAttrs(_ []slog.Attr) slog.Handler        { return h }
func (h NoopHandler) WithGroup(name string) slog.Handler          { return h }

// Error returns an slog.Attr for a error.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

package tracing

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// logHandler оборачивает slog.Handler: добавляет идентификаторы трассировки
// и помечает активный спан ошибочным при записи уровня Error.
type logHandler struct {
	handler slog.Handler
}

// NewLogHandler оборачивает обработчик логов трассировкой.
func NewLogHandler(handler slog.Handler) slog.Handler {
	return &logHandler{handler: handler}
}

// Handle добавляет контекст трассировки к записи.
func (h *logHandler) Handle(ctx context.Context, r slog.Record) error {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.HasTraceID() {
		r.AddAttrs(slog.String("trace_id", spanCtx.TraceID().String()))
	}
	if spanCtx.HasSpanID() {
		r.AddAttrs(slog.String("span_id", spanCtx.SpanID().String()))
	}

	if r.Level >= slog.LevelError {
		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			attrs := []attribute.KeyValue{
				attribute.String("level", r.Level.String()),
				attribute.String("message", r.Message),
			}
			r.Attrs(func(a slog.Attr) bool {
				attrs = append(attrs, attribute.String(a.Key, a.Value.String()))
				return true
			})
			span.SetAttributes(attribute.Bool("error", true))
			span.AddEvent("log", trace.WithAttributes(attrs...))
		}
	}

	return h.handler.Handle(ctx, r)
}

// Enabled returns true if the level is enabled.
func (h *logHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// WithAttrs returns a new handler with the given attributes.
func (h *logHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &logHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a new handler with the given group.
func (h *logHandler) WithGroup(name string) slog.Handler {
	return &logHandler{handler: h.handler.WithGroup(name)}
}

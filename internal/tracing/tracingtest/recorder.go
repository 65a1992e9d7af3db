// Package tracingtest предоставляет Tracer с записью спанов для тестов.
package tracingtest

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/magabrotheeeer/storefront/internal/tracing"
)

// Recorder записывает начатые и завершённые спаны и считает вызовы Flush.
type Recorder struct {
	*tracetest.SpanRecorder
	flushes atomic.Int32
}

// ForceFlush считает отправки спанов в бэкенд.
func (r *Recorder) ForceFlush(ctx context.Context) error {
	r.flushes.Add(1)
	return r.SpanRecorder.ForceFlush(ctx)
}

// Flushes возвращает число отправок.
func (r *Recorder) Flushes() int {
	return int(r.flushes.Load())
}

// New создаёт Tracer, все спаны которого попадают в Recorder.
func New() (*tracing.Tracer, *Recorder) {
	rec := &Recorder{SpanRecorder: tracetest.NewSpanRecorder()}
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return tracing.NewWithProvider(provider, log), rec
}

// EndedByName возвращает первый завершённый спан с указанным именем.
func (r *Recorder) EndedByName(name string) sdktrace.ReadOnlySpan {
	for _, s := range r.Ended() {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// Attr возвращает значение атрибута спана.
func Attr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

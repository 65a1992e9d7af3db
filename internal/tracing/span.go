package tracing

import (
	"fmt"
	"sort"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span обёртка над спаном OpenTelemetry, гарантирующая однократное завершение.
type Span struct {
	span     trace.Span
	finished atomic.Bool
}

// SetName перезаписывает имя операции спана.
func (s *Span) SetName(name string) {
	s.span.SetName(name)
}

// SetTag устанавливает тег спана, приводя значение к типу атрибута.
func (s *Span) SetTag(key string, value any) {
	s.span.SetAttributes(attr(key, value))
}

// SetError помечает спан как ошибочный.
func (s *Span) SetError(err error) {
	s.span.SetAttributes(attribute.Bool("error", true))
	if err != nil {
		s.span.SetStatus(codes.Error, err.Error())
	}
}

// Log добавляет к спану событие с переданными полями.
func (s *Span) Log(fields map[string]any) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]attribute.KeyValue, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, attr(k, fields[k]))
	}
	s.span.AddEvent("log", trace.WithAttributes(attrs...))
}

// Finish завершает спан. Повторный вызов ничего не делает и возвращает false.
func (s *Span) Finish() bool {
	if !s.finished.CompareAndSwap(false, true) {
		return false
	}
	s.span.End()
	return true
}

// Finished сообщает, был ли спан завершён.
func (s *Span) Finished() bool {
	return s.finished.Load()
}

// SpanContext возвращает контекст спана, пригодный для внедрения в carrier.
func (s *Span) SpanContext() trace.SpanContext {
	return s.span.SpanContext()
}

func attr(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int32:
		return attribute.Int64(key, int64(v))
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}

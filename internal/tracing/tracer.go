// Package tracing реализует распространение контекста трассировки поверх OpenTelemetry.
//
// Tracer создаёт и завершает спаны, извлекает и внедряет контекст в carrier
// (HTTP-заголовки, переменные окружения, заголовки сообщений очереди).
// Unit описывает единицу работы (HTTP-запрос, CLI-команда, воркер очереди)
// с корневым спаном, а Job это спан одной задачи очереди.
package tracing

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/magabrotheeeer/storefront/internal/config"
)

const (
	// ProtocolVersion значение baggage-элемента "version", которым помечается каждая единица работы.
	ProtocolVersion = "2.0.0"

	instrumentationName = "github.com/magabrotheeeer/storefront"
)

// Tracer фабрика спанов с привязанным пропагатором контекста.
type Tracer struct {
	provider   *sdktrace.TracerProvider
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	log        *slog.Logger
}

// New создаёт Tracer, экспортирующий спаны по OTLP/HTTP на адрес агента.
//
// Если адрес агента не задан, спаны создаются, но никуда не отправляются.
func New(ctx context.Context, cfg config.Tracing, log *slog.Logger) (*Tracer, error) {
	const op = "tracing.New"

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.ServiceName),
		)),
	}
	if cfg.AgentAddress != "" {
		exporter, err := otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(cfg.AgentAddress),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	return NewWithProvider(sdktrace.NewTracerProvider(opts...), log), nil
}

// NewWithProvider создаёт Tracer поверх готового провайдера (используется в тестах).
func NewWithProvider(provider *sdktrace.TracerProvider, log *slog.Logger) *Tracer {
	return &Tracer{
		provider: provider,
		tracer:   provider.Tracer(instrumentationName),
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
		log: log,
	}
}

// NewNoop создаёт Tracer без экспорта, на который мы откатываемся при ошибке инициализации.
func NewNoop(log *slog.Logger) *Tracer {
	return NewWithProvider(sdktrace.NewTracerProvider(), log)
}

// Start открывает спан, дочерний по отношению к спану из ctx (если он есть).
func (t *Tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, *Span) {
	ctx, span := t.tracer.Start(ctx, name, opts...)
	return ctx, &Span{span: span}
}

// Extract извлекает контекст трассировки из carrier.
func (t *Tracer) Extract(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	if carrier == nil {
		return ctx
	}
	return t.propagator.Extract(ctx, carrier)
}

// Inject внедряет контекст трассировки из ctx в carrier.
func (t *Tracer) Inject(ctx context.Context, carrier propagation.TextMapCarrier) {
	if carrier == nil {
		return
	}
	t.propagator.Inject(ctx, carrier)
}

// Flush отправляет накопленные спаны в бэкенд.
func (t *Tracer) Flush(ctx context.Context) error {
	return t.provider.ForceFlush(ctx)
}

// Shutdown отправляет оставшиеся спаны и останавливает экспорт.
func (t *Tracer) Shutdown(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}

package tracing

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/magabrotheeeer/storefront/internal/lib/sl"
)

// Mode режим выполнения единицы работы.
type Mode string

const (
	// ModeServer HTTP-запрос.
	ModeServer Mode = "server"
	// ModeCLI консольная команда или воркер очереди.
	ModeCLI Mode = "cli"
)

// Unit единица работы с корневым спаном.
type Unit struct {
	tracer  *Tracer
	ctx     context.Context
	span    *Span
	flushed atomic.Bool
}

// Begin открывает корневой спан единицы работы.
//
// Если carrier содержит валидный входящий контекст, спан становится его дочерним,
// иначе создаётся новый корневой спан. Контекст нового спана сразу же
// внедряется обратно в carrier.
func (t *Tracer) Begin(ctx context.Context, mode Mode, operation string, carrier propagation.TextMapCarrier) *Unit {
	parent := t.Extract(ctx, carrier)
	if !trace.SpanContextFromContext(parent).IsValid() && carrier != nil && carrier.Get("traceparent") != "" {
		t.log.WarnContext(ctx, "start span with context failed, starting root span",
			"traceparent", carrier.Get("traceparent"))
	}

	attrs := []attribute.KeyValue{
		attribute.String("span.kind", "server"),
		attribute.String("type", string(mode)),
	}
	if mode == ModeServer {
		attrs = append(attrs, attribute.String("http.url", operation))
	}

	parent = t.withVersionBaggage(parent)

	ctx, span := t.Start(parent, operation,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...),
	)
	t.Inject(ctx, carrier)

	return &Unit{tracer: t, ctx: ctx, span: span}
}

func (t *Tracer) withVersionBaggage(ctx context.Context) context.Context {
	member, err := baggage.NewMember("version", ProtocolVersion)
	if err != nil {
		t.log.Warn("failed to build baggage member", sl.Err(err))
		return ctx
	}
	bag, err := baggage.FromContext(ctx).SetMember(member)
	if err != nil {
		t.log.Warn("failed to set baggage member", sl.Err(err))
		return ctx
	}
	return baggage.ContextWithBaggage(ctx, bag)
}

// Context возвращает контекст с корневым спаном единицы работы.
func (u *Unit) Context() context.Context {
	return u.ctx
}

// Span возвращает корневой спан.
func (u *Unit) Span() *Span {
	return u.span
}

// SetOperationName перезаписывает имя корневого спана (например, шаблоном маршрута).
func (u *Unit) SetOperationName(name string) {
	if name == "" {
		return
	}
	u.span.SetName(name)
}

// SetCommand перезаписывает имя спана именем консольной команды.
func (u *Unit) SetCommand(name string) {
	u.SetOperationName(name)
	u.span.SetTag("command.name", name)
}

// SetStatus помечает спан итоговым HTTP-статусом.
func (u *Unit) SetStatus(code int) {
	u.span.SetTag("http.status_code", code)
}

// Terminate завершает корневой спан и отправляет спаны в бэкенд.
//
// Вызывается и при штатном завершении, и при аварийной остановке процесса;
// отправка выполняется только один раз, повторный вызов возвращает false.
func (u *Unit) Terminate(ctx context.Context) bool {
	if !u.flushed.CompareAndSwap(false, true) {
		return false
	}
	u.span.Finish()
	if err := u.tracer.Flush(ctx); err != nil {
		u.tracer.log.Warn("failed to flush tracer", sl.Err(err))
	}
	return true
}

// Flushed сообщает, была ли уже выполнена отправка.
func (u *Unit) Flushed() bool {
	return u.flushed.Load()
}

// Job спан одной задачи очереди.
type Job struct {
	tracer *Tracer
	ctx    context.Context
	span   *Span
}

// StartJob открывает спан задачи, дочерний по отношению к корневому спану единицы работы.
//
// links связывают спан задачи с контекстом публикатора сообщения.
func (u *Unit) StartJob(ctx context.Context, name, id string, links ...trace.Link) *Job {
	parent := trace.ContextWithSpan(ctx, u.span.span)
	jobCtx, span := u.tracer.Start(parent, "job."+name,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithLinks(links...),
		trace.WithAttributes(
			attribute.String("span.kind", "server"),
			attribute.String("type", string(ModeCLI)),
			attribute.String("job.name", name),
			attribute.String("job.id", id),
		),
	)
	return &Job{tracer: u.tracer, ctx: jobCtx, span: span}
}

// Context возвращает контекст со спаном задачи.
func (j *Job) Context() context.Context {
	return j.ctx
}

// Span возвращает спан задачи.
func (j *Job) Span() *Span {
	return j.span
}

// Done завершает спан задачи и сразу отправляет его, не дожидаясь конца процесса.
func (j *Job) Done(ctx context.Context, err error) {
	if err != nil {
		j.span.SetError(err)
		j.span.Log(map[string]any{"exception": err.Error()})
	}
	j.span.Finish()
	if ferr := j.tracer.Flush(ctx); ferr != nil {
		j.tracer.log.Warn("failed to flush tracer after job", sl.Err(ferr))
	}
}

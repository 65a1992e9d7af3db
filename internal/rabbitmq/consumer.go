package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel/trace"

	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/tracing"
)

// Handler обрабатывает тело одной задачи. ctx содержит спан задачи.
type Handler func(ctx context.Context, body []byte) error

// Consumer обрабатывает задачи очереди внутри корневой единицы работы воркера.
type Consumer struct {
	unit    *tracing.Unit
	tracer  *tracing.Tracer
	log     *slog.Logger
	workers int
	loop    sync.WaitGroup
	jobs    sync.WaitGroup
}

// NewConsumer создаёт Consumer. workers ограничивает число одновременно обрабатываемых задач.
func NewConsumer(unit *tracing.Unit, tracer *tracing.Tracer, log *slog.Logger, workers int) *Consumer {
	if workers < 1 {
		workers = 1
	}
	return &Consumer{unit: unit, tracer: tracer, log: log, workers: workers}
}

// Consume подписывается на очередь и обрабатывает задачи до отмены ctx или закрытия канала.
// После отмены ctx вызовите Wait, прежде чем завершать корневой спан и закрывать канал.
func (c *Consumer) Consume(ctx context.Context, ch *amqp.Channel, queueName string, handler Handler) error {
	const op = "rabbitmq.Consume"

	deliveries, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.start(ctx, queueName, deliveries, handler)
	return nil
}

func (c *Consumer) start(ctx context.Context, jobName string, deliveries <-chan amqp.Delivery, handler Handler) {
	c.loop.Add(1)
	go func() {
		defer c.loop.Done()
		c.Run(ctx, jobName, deliveries, handler)
	}()
}

// Run читает deliveries и запускает обработку не более чем в workers горутинах.
// Возвращается после того, как все начатые задачи завершены.
// Доставка, полученная после отмены ctx, возвращается в очередь без обработки.
func (c *Consumer) Run(ctx context.Context, jobName string, deliveries <-chan amqp.Delivery, handler Handler) {
	sem := make(chan struct{}, c.workers)
	defer c.jobs.Wait()

	for {
		select {
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				c.requeue(d)
				return
			}
			if ctx.Err() != nil {
				<-sem
				c.requeue(d)
				return
			}
			c.jobs.Add(1)
			go func(d amqp.Delivery) {
				defer func() {
					<-sem
					c.jobs.Done()
				}()
				c.process(ctx, jobName, d, handler)
			}(d)
		case <-ctx.Done():
			return
		}
	}
}

// Wait ждёт выхода из цикла чтения и завершения всех начатых задач.
func (c *Consumer) Wait() {
	c.loop.Wait()
	c.jobs.Wait()
}

func (c *Consumer) requeue(d amqp.Delivery) {
	if err := d.Nack(false, true); err != nil {
		c.log.Error("failed to requeue message", slog.String("message_id", d.MessageId), sl.Err(err))
	}
}

func (c *Consumer) process(ctx context.Context, jobName string, d amqp.Delivery, handler Handler) {
	var links []trace.Link
	if d.Headers != nil {
		published := trace.SpanContextFromContext(c.tracer.Extract(context.Background(), TableCarrier(d.Headers)))
		if published.IsValid() {
			links = append(links, trace.Link{SpanContext: published})
		}
	}

	// начатая задача доводится до конца и при остановке воркера
	ctx = context.WithoutCancel(ctx)
	job := c.unit.StartJob(ctx, jobName, d.MessageId, links...)
	err := handler(job.Context(), d.Body)
	job.Done(ctx, err)

	if err != nil {
		c.log.Error("job failed",
			slog.String("job", jobName), slog.String("message_id", d.MessageId), sl.Err(err))
		// повторная доставка только один раз
		if nackErr := d.Nack(false, !d.Redelivered); nackErr != nil {
			c.log.Error("failed to nack message", sl.Err(nackErr))
		}
		return
	}
	if ackErr := d.Ack(false); ackErr != nil {
		c.log.Error("failed to ack message", sl.Err(ackErr))
	}
}

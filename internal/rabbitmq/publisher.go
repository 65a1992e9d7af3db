package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/storefront/internal/tracing"
)

// Channel часть *amqp.Channel, нужная для публикации.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher публикует задачи в Exchange.
type Publisher struct {
	ch       Channel
	exchange string
	tracer   *tracing.Tracer
}

// NewPublisher создаёт Publisher.
func NewPublisher(ch Channel, tracer *tracing.Tracer) *Publisher {
	return &Publisher{ch: ch, exchange: Exchange, tracer: tracer}
}

// Publish сериализует message в JSON и публикует с контекстом трассировки из ctx в заголовках.
func (p *Publisher) Publish(ctx context.Context, routingKey string, message any) error {
	const op = "rabbitmq.Publish"

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	headers := amqp.Table{}
	p.tracer.Inject(ctx, TableCarrier(headers))

	err = p.ch.Publish(
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			Headers:      headers,
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now().UTC(),
			Type:         routingKey,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

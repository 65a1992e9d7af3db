// Package worker собирает воркер очереди, отправляющий письма сброса пароля.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/storefront/internal/config"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/lib/smtp"
	"github.com/magabrotheeeer/storefront/internal/rabbitmq"
	"github.com/magabrotheeeer/storefront/internal/services/mailer"
	"github.com/magabrotheeeer/storefront/internal/tracing"
)

const concurrency = 4

type App struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	mailer *mailer.Service
	tracer *tracing.Tracer
	logger *slog.Logger
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "worker.New"

	tracer, err := tracing.New(ctx, cfg.Tracing, logger)
	if err != nil {
		logger.Warn("failed to init tracer, spans will not be exported", sl.Err(err))
		tracer = tracing.NewNoop(logger)
	}

	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetJobQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &App{
		conn:   conn,
		ch:     ch,
		mailer: mailer.New(smtp.NewTransport(cfg.SMTP, logger), logger),
		tracer: tracer,
		logger: logger,
	}, nil
}

// Run обрабатывает задачи до отмены ctx.
//
// Весь запуск воркера является одной единицей работы: спаны задач дочерние
// к её корневому спану, а корневой спан завершается при остановке.
func (a *App) Run(ctx context.Context) error {
	unit := a.tracer.Begin(ctx, tracing.ModeCLI, "worker", tracing.EnvCarrier{})
	unit.SetCommand("worker:" + rabbitmq.PasswordResetMailQueue)
	// на случай паники в обработчике; повторный Terminate ничего не делает
	defer unit.Terminate(context.WithoutCancel(ctx))

	consumer := rabbitmq.NewConsumer(unit, a.tracer, a.logger, concurrency)
	err := consumer.Consume(ctx, a.ch, rabbitmq.PasswordResetMailQueue, a.mailer.SendPasswordResetLink)
	if err != nil {
		a.logger.Error("failed to start password_reset_mail consumer", sl.Err(err))
		unit.Terminate(context.WithoutCancel(ctx))
		a.close(context.WithoutCancel(ctx))
		return err
	}

	<-ctx.Done()
	a.logger.Info("worker shutting down gracefully")
	consumer.Wait()
	unit.Terminate(context.WithoutCancel(ctx))
	a.close(context.WithoutCancel(ctx))
	return nil
}

func (a *App) close(ctx context.Context) {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Warn("failed to shutdown tracer", sl.Err(err))
	}
}

package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/storefront/internal/auth"
	"github.com/magabrotheeeer/storefront/internal/config"
	"github.com/magabrotheeeer/storefront/internal/lib/jwt"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/microapi"
	"github.com/magabrotheeeer/storefront/internal/rabbitmq"
	"github.com/magabrotheeeer/storefront/internal/rpc"
	"github.com/magabrotheeeer/storefront/internal/services/passwordreset"
	"github.com/magabrotheeeer/storefront/internal/tracing"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	tracer *tracing.Tracer
	conn   *amqp.Connection
	ch     *amqp.Channel
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "storefront.New"

	tracer, err := tracing.New(ctx, cfg.Tracing, logger)
	if err != nil {
		logger.Warn("failed to init tracer, spans will not be exported", sl.Err(err))
		tracer = tracing.NewNoop(logger)
	}

	client, err := rpc.New(cfg.Micro, tracer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rpc.RegisterMetrics(prometheus.DefaultRegisterer)
	users := microapi.NewUserService(client, logger)

	decoder, err := jwt.NewDecoder(cfg.JWTKey, cfg.JWTAlgorithms)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	provider := auth.NewMicroUserProvider(users, decoder, logger)

	tokens, err := auth.NewServiceTokenRepository(users, cfg.AppKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
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
	broker := passwordreset.NewBroker(provider, tokens, users, rabbitmq.NewPublisher(ch, tracer), cfg.LinkBase, logger)

	router := NewRouter(Deps{
		Log:      logger,
		Tracer:   tracer,
		Provider: provider,
		Users:    users,
		Broker:   broker,
		Auth:     cfg.Auth,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		tracer: tracer,
		conn:   conn,
		ch:     ch,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close(context.Background())
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close(timeoutCtx)
		return err
	}
}

func (a *App) close(ctx context.Context) {
	if err := a.ch.Close(); err != nil {
		a.logger.Warn("failed to close rabbitmq channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Warn("failed to close rabbitmq connection", sl.Err(err))
	}
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Warn("failed to shutdown tracer", sl.Err(err))
	}
}

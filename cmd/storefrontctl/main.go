// Package main консольные команды storefront.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/storefront/internal/config"
	"github.com/magabrotheeeer/storefront/internal/lib/logger"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/microapi"
	"github.com/magabrotheeeer/storefront/internal/rpc"
	"github.com/magabrotheeeer/storefront/internal/tracing"
)

// Version information set at build time.
var version = "dev"

func main() {
	var tracer *tracing.Tracer

	factory := func(cmd *cobra.Command) (*deps, error) {
		path := configFile
		if path == "" {
			path = os.Getenv("CONFIG_PATH")
		}
		cfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		log := logger.Setup(cfg.Env, cmd.ErrOrStderr())

		d, err := newDeps(cmd.Context(), cfg, log, tracing.New)
		if err != nil {
			return nil, err
		}
		tracer = d.tracer
		return d, nil
	}

	cmd := NewRootCmd(factory)
	cmd.Version = version

	err := cmd.Execute()
	if tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = tracer.Shutdown(ctx)
		cancel()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type tracerFactory func(ctx context.Context, cfg config.Tracing, log *slog.Logger) (*tracing.Tracer, error)

// newDeps собирает зависимости команды. Ошибка трейсера не прерывает команду:
// спаны в этом случае не экспортируются.
func newDeps(ctx context.Context, cfg *config.Config, log *slog.Logger, newTracer tracerFactory) (*deps, error) {
	tracer, err := newTracer(ctx, cfg.Tracing, log)
	if err != nil {
		log.Warn("failed to init tracer, spans will not be exported", sl.Err(err))
		tracer = tracing.NewNoop(log)
	}
	client, err := rpc.New(cfg.Micro, tracer)
	if err != nil {
		return nil, err
	}
	return &deps{tracer: tracer, users: microapi.NewUserService(client, log)}, nil
}

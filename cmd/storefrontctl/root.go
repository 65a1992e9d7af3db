package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/tracing"
)

// userService операции сервиса пользователей, доступные из консоли.
type userService interface {
	GetAll(ctx context.Context) ([]*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ValidatePasswordResetToken(ctx context.Context, token string) (bool, error)
}

// deps зависимости команд.
type deps struct {
	tracer *tracing.Tracer
	users  userService
}

// depsFactory создаёт зависимости при запуске команды.
type depsFactory func(cmd *cobra.Command) (*deps, error)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the storefront CLI.
func NewRootCmd(factory depsFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "storefrontctl",
		Short:         "Storefront console commands",
		Long:          `Console commands that talk to the remote user service. Every command runs inside its own trace.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (defaults to CONFIG_PATH)")

	cmd.AddCommand(newUsersListCmd(factory))
	cmd.AddCommand(newUsersShowCmd(factory))
	cmd.AddCommand(newPasswordResetCheckCmd(factory))

	return cmd
}

// runInUnit выполняет fn внутри корневого спана консольной команды.
//
// Входящий контекст берётся из TRACEPARENT, имя спана заменяется именем команды,
// спан завершается и отправляется при любом исходе.
func runInUnit(cmd *cobra.Command, factory depsFactory, fn func(ctx context.Context, d *deps) error) error {
	d, err := factory(cmd)
	if err != nil {
		return fmt.Errorf("failed to init command: %w", err)
	}

	unit := d.tracer.Begin(cmd.Context(), tracing.ModeCLI, cmd.CommandPath(), tracing.EnvCarrier{})
	unit.SetCommand(cmd.Name())
	defer unit.Terminate(context.WithoutCancel(cmd.Context()))

	if err := fn(unit.Context(), d); err != nil {
		unit.Span().SetError(err)
		return err
	}
	return nil
}

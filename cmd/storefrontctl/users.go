package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newUsersListCmd(factory depsFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "users:list",
		Short: "List users of the remote user service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInUnit(cmd, factory, func(ctx context.Context, d *deps) error {
				users, err := d.users.GetAll(ctx)
				if err != nil {
					return fmt.Errorf("failed to list users: %w", err)
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSTATUS")
				for _, u := range users {
					fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", u.ID, u.Name, u.Email, u.Status)
				}
				return w.Flush()
			})
		},
	}
}

// usersShowConfig holds configuration for the users:show command.
type usersShowConfig struct {
	id int64
}

func newUsersShowCmd(factory depsFactory) *cobra.Command {
	cfg := &usersShowConfig{}

	cmd := &cobra.Command{
		Use:   "users:show",
		Short: "Show a single user as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.id <= 0 {
				return errors.New("--id must be positive")
			}
			return runInUnit(cmd, factory, func(ctx context.Context, d *deps) error {
				user, err := d.users.GetByID(ctx, cfg.id)
				if err != nil {
					return fmt.Errorf("failed to get user: %w", err)
				}
				if user == nil {
					return fmt.Errorf("user %d not found", cfg.id)
				}

				out, err := json.MarshalIndent(user, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to format JSON: %w", err)
				}
				cmd.Println(string(out))
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&cfg.id, "id", 0, "user id")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

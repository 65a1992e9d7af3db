package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errTokenInvalid = errors.New("password reset token is invalid")

func newPasswordResetCheckCmd(factory depsFactory) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "password-reset:check",
		Short: "Check a password reset token on the remote user service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInUnit(cmd, factory, func(ctx context.Context, d *deps) error {
				valid, err := d.users.ValidatePasswordResetToken(ctx, token)
				if err != nil {
					return fmt.Errorf("failed to check token: %w", err)
				}
				if !valid {
					return errTokenInvalid
				}
				cmd.Println("token is valid")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "password reset token")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

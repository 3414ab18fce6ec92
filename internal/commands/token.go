package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/spendboard/internal/auth"
)

func newTokenCommand(a *app) *cobra.Command {
	var userID, name string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			token, err := auth.NewJWTManager(a.cfg.JWTSecret, a.cfg.TokenTTL).Generate(userID, name)
			if err != nil {
				return fmt.Errorf("generating token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID to embed in the token")
	cmd.Flags().StringVar(&name, "name", "", "display name to embed in the token")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

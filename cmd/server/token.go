package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/saransh1220/snaplabel/internal/modules/auth/infrastructure/jwt"
	"github.com/saransh1220/snaplabel/internal/shared/infrastructure/config"
)

// ErrNoSecret is returned when a token is requested but JWT_SECRET is unset.
var ErrNoSecret = errors.New("JWT_SECRET is not set; the API is unauthenticated and needs no token")

// NewTokenCmd creates the token command.
func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the snaplabel CLI",
		Long: `Token signs an HS256 token with JWT_SECRET that grants access to the
upload-url, analyze and result routes.

Examples:
  snaplabel-server token --subject ci --ttl 720h`,
		Args: cobra.NoArgs,
		RunE: runTokenCmd,
	}

	cmd.Flags().StringP("subject", "s", "snaplabel-cli", "Token subject")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")

	return cmd
}

func runTokenCmd(cmd *cobra.Command, _ []string) error {
	secret := config.Load().JWT.Secret
	if secret == "" {
		return ErrNoSecret
	}

	subject, err := cmd.Flags().GetString("subject")
	if err != nil {
		return err
	}
	ttl, err := cmd.Flags().GetDuration("ttl")
	if err != nil {
		return err
	}

	token, err := jwt.GenerateToken(secret, ttl, subject, jwt.ScopeAnalyze)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

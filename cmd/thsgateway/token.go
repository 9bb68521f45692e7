package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/nerrad567/ths-gateway/internal/auth"
	"github.com/nerrad567/ths-gateway/internal/infrastructure/config"
)

// runToken prints a bearer token signed with the configured JWT secret.
//
//	thsgateway token -subject quant-bot -role trader -ttl 1440
func runToken(cfg *config.Config, args []string, stdout io.Writer) error {
	fsFlags := flag.NewFlagSet("token", flag.ContinueOnError)
	fsFlags.SetOutput(stdout)
	subject := fsFlags.String("subject", "", "token subject, e.g. the client program's name (required)")
	role := fsFlags.String("role", string(auth.RoleViewer), "viewer or trader")
	ttl := fsFlags.Int("ttl", cfg.Security.JWT.AccessTokenTTL, "lifetime in minutes")
	if err := fsFlags.Parse(args); err != nil {
		return err
	}

	if *subject == "" {
		return errors.New("token: -subject is required")
	}
	if cfg.Security.JWT.Secret == "" {
		return errors.New("token: security.jwt.secret is not set (THSGATEWAY_JWT_SECRET)")
	}

	token, err := auth.GenerateAccessToken(*subject, auth.Role(*role), cfg.Security.JWT.Secret, *ttl)
	if err != nil {
		return fmt.Errorf("token: %w", err)
	}
	fmt.Fprintln(stdout, token)
	return nil
}

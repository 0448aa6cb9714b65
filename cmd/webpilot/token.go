package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/webpilot-ai/webpilot/config"
	srv "github.com/webpilot-ai/webpilot/internal/server"
)

func tokenCMD() *cobra.Command {
	var cfgPath string
	var subject string
	var ttl time.Duration
	token := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token using the configured secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			if cfg.Server.JWTSecret == "" {
				return errors.New("server.jwt_secret not configured")
			}
			signed, err := srv.SignJWT(subject, []byte(cfg.Server.JWTSecret), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	token.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config)")
	token.Flags().StringVar(&subject, "subject", "webpilot-client", "token subject")
	token.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return token
}

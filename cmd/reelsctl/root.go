package main

import (
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// cliContext carries the persistent flags shared by every command.
type cliContext struct {
	server string
	token  string
	json   bool
}

func (c *cliContext) client() *apiClient {
	return &apiClient{
		base:  c.server,
		token: c.token,
		http:  &http.Client{Timeout: 2 * time.Minute},
	}
}

func newRootCommand() *cobra.Command {
	ctx := &cliContext{}

	rootCmd := &cobra.Command{
		Use:           "reelsctl",
		Short:         "Plan and compose short-form reels against a reelsmaker API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.server, "server", envOr("REELS_SERVER", "http://localhost:8080"), "Base URL of the reelsmaker API")
	rootCmd.PersistentFlags().StringVar(&ctx.token, "token", os.Getenv("REELS_TOKEN"), "Bearer token for identified requests")
	rootCmd.PersistentFlags().BoolVar(&ctx.json, "json", false, "Print machine-readable JSON")

	rootCmd.AddCommand(newPlanCommand(ctx))
	rootCmd.AddCommand(newComposeCommand(ctx))
	rootCmd.AddCommand(newTemplatesCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newCheckoutCommand(ctx))
	rootCmd.AddCommand(newTokenCommand(ctx))

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

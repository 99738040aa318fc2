package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"reelsmaker/internal/domain"
	"reelsmaker/internal/middleware"
)

func newTokenCommand(ctx *cliContext) *cobra.Command {
	var (
		secret  string
		subject string
		tier    string
		locale  string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development bearer token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("a signing secret is required (--secret or JWT_SECRET)")
			}
			if subject == "" {
				return errors.New("--user is required")
			}
			claims := middleware.TokenClaims{
				Sub:    subject,
				Tier:   domain.ParseTier(tier),
				Locale: locale,
				Issuer: middleware.Issuer,
			}
			if ttl > 0 {
				claims.Exp = time.Now().Add(ttl).Unix()
			}
			token, err := middleware.SignJWT(secret, claims)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ctx.json {
				return printJSON(out, map[string]any{"token": token, "claims": claims})
			}
			fmt.Fprintln(out, token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HMAC secret shared with the API")
	cmd.Flags().StringVar(&subject, "user", "", "User id placed in the sub claim")
	cmd.Flags().StringVar(&tier, "tier", string(domain.TierFree), "Tier claim (free or premium)")
	cmd.Flags().StringVar(&locale, "locale", "", "Preferred narration language")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime, 0 for no expiry")
	return cmd
}

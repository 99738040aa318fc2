package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelsmaker/internal/billing"
	"reelsmaker/internal/domain"
)

func newTemplatesCommand(ctx *cliContext) *cobra.Command {
	var (
		trending bool
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the template catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/v1/templates"
			if trending {
				path = "/v1/templates/trending?limit=" + strconv.Itoa(limit)
			}
			var resp struct {
				Items []domain.Template `json:"items"`
			}
			if err := ctx.client().do(cmd.Context(), http.MethodGet, path, nil, &resp); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ctx.json {
				return printJSON(out, resp.Items)
			}
			fmt.Fprintln(out, renderTemplates(resp.Items))
			return nil
		},
	}
	cmd.Flags().BoolVar(&trending, "trending", false, "Only trending templates, best first")
	cmd.Flags().IntVar(&limit, "limit", 3, "Number of trending templates")
	return cmd
}

func renderTemplates(items []domain.Template) string {
	rows := make([][]string, 0, len(items))
	for _, tpl := range items {
		mark := ""
		if tpl.Trending {
			mark = "yes"
		}
		platforms := make([]string, len(tpl.Platforms))
		for i, p := range tpl.Platforms {
			platforms[i] = string(p)
		}
		rows = append(rows, []string{
			tpl.ID,
			tpl.Name,
			strings.Join(platforms, ","),
			strconv.FormatFloat(tpl.Beat(), 'f', 1, 64),
			strconv.Itoa(tpl.TrendScore),
			mark,
		})
	}
	return renderTable(
		[]string{"ID", "Name", "Platforms", "Beat", "Score", "Trending"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
}

func newHistoryCommand(ctx *cliContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List reels saved for the token's user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ctx.token == "" {
				return fmt.Errorf("history needs --token or REELS_TOKEN")
			}
			var resp struct {
				Items []domain.GenerationRecord `json:"items"`
			}
			path := "/v1/history?limit=" + strconv.Itoa(limit)
			if err := ctx.client().do(cmd.Context(), http.MethodGet, path, nil, &resp); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ctx.json {
				return printJSON(out, resp.Items)
			}
			rows := make([][]string, 0, len(resp.Items))
			for _, rec := range resp.Items {
				rows = append(rows, []string{
					rec.CreatedAt.Local().Format(time.DateTime),
					rec.TemplateID,
					string(rec.Platform),
					fmt.Sprintf("%.1f s", rec.DurationMs/1000),
					rec.Properties.VideoURL,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Created", "Template", "Platform", "Length", "Video"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum records to show")
	return cmd
}

func newCheckoutCommand(ctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Create a premium checkout link",
		RunE: func(cmd *cobra.Command, args []string) error {
			var session billing.Session
			if err := ctx.client().do(cmd.Context(), http.MethodPost, "/v1/billing/create-session", struct{}{}, &session); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ctx.json {
				return printJSON(out, session)
			}
			if session.URL == "" {
				fmt.Fprintln(out, session.Message)
				return nil
			}
			fmt.Fprintln(out, session.URL)
			return nil
		},
	}
}

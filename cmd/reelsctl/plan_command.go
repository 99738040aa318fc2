package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"reelsmaker/internal/composer"
	"reelsmaker/internal/domain"
)

// planFlags are shared by plan and compose.
type planFlags struct {
	script     string
	scriptFile string
	platform   string
	template   string
	music      string
	voice      string
	tone       string
	tier       string
	locale     string
}

func (f *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.script, "script", "s", "", "Script text to narrate")
	cmd.Flags().StringVarP(&f.scriptFile, "file", "f", "", "Read the script from a file (- for stdin)")
	cmd.Flags().StringVar(&f.platform, "platform", "tiktok", "Target platform (tiktok, instagram, youtube)")
	cmd.Flags().StringVar(&f.template, "template", "", "Template id (defaults to the top trending template)")
	cmd.Flags().StringVar(&f.music, "music", "", "Music style")
	cmd.Flags().StringVar(&f.voice, "voice", "", "Voice style")
	cmd.Flags().StringVar(&f.tone, "tone", "", "Tone hint used for hashtags")
	cmd.Flags().StringVar(&f.tier, "tier", "free", "Tier for anonymous requests (free or premium)")
	cmd.Flags().StringVar(&f.locale, "locale", "", "Narration language, e.g. en or id")
}

func (f *planFlags) request(stdin io.Reader) (domain.PlanRequest, error) {
	script := f.script
	switch {
	case f.scriptFile == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return domain.PlanRequest{}, fmt.Errorf("read stdin: %w", err)
		}
		script = string(data)
	case f.scriptFile != "":
		data, err := os.ReadFile(f.scriptFile)
		if err != nil {
			return domain.PlanRequest{}, fmt.Errorf("read script: %w", err)
		}
		script = string(data)
	}
	if strings.TrimSpace(script) == "" {
		return domain.PlanRequest{}, errors.New("a script is required (--script or --file)")
	}
	return domain.PlanRequest{
		Script:     script,
		Platform:   domain.Platform(f.platform),
		TemplateID: f.template,
		MusicStyle: domain.MusicStyle(f.music),
		VoiceStyle: domain.VoiceStyle(f.voice),
		Tone:       f.tone,
		Tier:       domain.ParseTier(f.tier),
		Locale:     f.locale,
	}, nil
}

func newPlanCommand(ctx *cliContext) *cobra.Command {
	flags := &planFlags{}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Request a generation plan and print its timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(cmd.InOrStdin())
			if err != nil {
				return err
			}
			c := ctx.client()
			planner := &composer.HTTPPlanner{BaseURL: c.base, Token: c.token, Client: c.http}
			plan, err := planner.Plan(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ctx.json {
				return printJSON(out, plan)
			}
			fmt.Fprintln(out, renderPlan(plan))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func renderPlan(plan *domain.GenerationPlan) string {
	rows := make([][]string, 0, len(plan.Timeline.Scenes))
	var total float64
	for i, scene := range plan.Timeline.Scenes {
		total += scene.DurationMs
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%.0f ms", scene.DurationMs),
			scene.Highlight,
			scene.Caption,
		})
	}
	scenes := renderTable([]string{"#", "Duration", "Highlight", "Caption"}, rows, []columnAlignment{alignRight, alignRight, alignLeft, alignLeft})
	summary := renderPairs([][2]string{
		{"Template", plan.Template.ID},
		{"Total", fmt.Sprintf("%.1f s", total/1000)},
		{"Music", fmt.Sprintf("%s (energy %.2f)", plan.Music.Style, plan.Music.Energy)},
		{"Watermark", fmt.Sprintf("%t", plan.Watermark.Required)},
		{"Hashtags", strings.Join(plan.Timeline.Hashtags, " ")},
		{"Call to action", plan.Timeline.CallToAction},
		{"Post at", plan.Guidance.PostingTime},
	})
	return scenes + "\n" + summary
}

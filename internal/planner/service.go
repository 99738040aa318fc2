package planner

import (
	"context"
	"errors"
	"fmt"

	"reelsmaker/internal/domain"
	"reelsmaker/internal/infra"
	"reelsmaker/internal/providers/voice"
)

// Service assembles a GenerationPlan from a request: template resolution,
// scene segmentation, narration and publishing metadata.
type Service struct {
	templates domain.TemplateRepository
	voice     voice.Synthesizer
	logger    infra.Logger
}

// NewService wires the planner to its collaborators.
func NewService(templates domain.TemplateRepository, synth voice.Synthesizer, logger infra.Logger) *Service {
	return &Service{templates: templates, voice: synth, logger: logger}
}

// ResolveTemplate returns the requested template, or the top trending one
// when the id is unknown or empty.
func (s *Service) ResolveTemplate(id string) (domain.Template, error) {
	if s.templates == nil {
		return domain.Template{}, domain.ErrTemplateNotFound
	}
	if tpl, ok := s.templates.Get(id); ok {
		return tpl, nil
	}
	trending := s.templates.Trending(1)
	if len(trending) == 0 {
		return domain.Template{}, domain.ErrTemplateNotFound
	}
	return trending[0], nil
}

// Plan builds the full generation plan. The voice engine is called once and
// its failure aborts the plan.
func (s *Service) Plan(ctx context.Context, req domain.PlanRequest) (*domain.GenerationPlan, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	script := SanitizeScript(req.Script)
	if script == "" {
		return nil, domain.ErrEmptyScript
	}

	tpl, err := s.ResolveTemplate(req.TemplateID)
	if err != nil {
		return nil, err
	}

	scenes, err := SplitIntoScenes(script, tpl.Beat())
	if err != nil {
		if errors.Is(err, domain.ErrEmptyScript) {
			return nil, domain.ErrNoScenes
		}
		return nil, err
	}
	if len(scenes) == 0 {
		return nil, domain.ErrNoScenes
	}
	AssignVisuals(scenes, tpl.Backdrop)

	if s.voice == nil {
		return nil, fmt.Errorf("%w: no voice engine configured", domain.ErrSynthesis)
	}
	audio, err := s.voice.Synthesize(ctx, voice.Request{Text: script, Style: req.VoiceStyle, Locale: req.Locale})
	if err != nil {
		s.logger.Error().Err(err).Str("voice_style", string(req.VoiceStyle)).Msg("planner: voice synthesis failed")
		if errors.Is(err, domain.ErrSynthesis) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSynthesis, err)
	}
	format := audio.Format
	if format == "" {
		format = voice.FormatMPEG
	}

	transcript := make([]string, len(scenes))
	for i, scene := range scenes {
		transcript[i] = scene.Caption
	}
	hook := scenes[0].Caption
	hashtags := CraftHashtags(req.Platform, req.Tone)

	plan := &domain.GenerationPlan{
		Template: tpl,
		Timeline: domain.Timeline{
			Scenes:       scenes,
			Hashtags:     hashtags,
			CallToAction: CraftCallToAction(req.Platform, req.Tier),
			Hook:         hook,
		},
		Voiceover: domain.VoiceAsset{
			Audio:      voice.EncodeDataURL(format, audio.Data),
			Format:     format,
			Transcript: transcript,
		},
		Music: domain.MusicCue{
			Style:  req.MusicStyle,
			Energy: MusicEnergy(len(scenes)),
		},
		Watermark: WatermarkFor(req.Tier),
		Guidance:  CraftGuidance(req.Platform, hook, hashtags),
	}

	s.logger.Info().
		Str("template_id", tpl.ID).
		Int("scenes", len(scenes)).
		Str("platform", string(req.Platform)).
		Str("tier", string(req.Tier)).
		Msg("planner: plan ready")
	return plan, nil
}

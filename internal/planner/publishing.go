package planner

import (
	"regexp"

	"github.com/samber/lo"

	"reelsmaker/internal/domain"
)

const (
	maxHashtags   = 6
	watermarkText = "AI Reels Maker"
)

// FallbackVisuals back up the template backdrop when a plan has more scenes
// than distinct imagery.
var FallbackVisuals = []string{
	"/assets/neon-city.jpg",
	"/assets/workflow.jpg",
	"/assets/futuristic-lights.jpg",
	"/assets/creative-team.jpg",
}

var (
	baseHashtags     = []string{"#AIReelsMaker", "#shortform", "#aivideo", "#viralvideo"}
	platformHashtags = map[domain.Platform][]string{
		domain.PlatformInstagram: {"#reels", "#InstagramGrowth"},
		domain.PlatformTikTok:    {"#tiktokmademebuyit", "#fyp"},
		domain.PlatformYouTube:   {"#youtubeshorts", "#creatorcommunity"},
	}
	toneHashtags = []struct {
		pattern *regexp.Regexp
		tags    []string
	}{
		{regexp.MustCompile(`(?i)motivation|inspire|mindset`), []string{"#motivationdaily", "#levelup"}},
		{regexp.MustCompile(`(?i)tech|product|launch`), []string{"#buildinpublic", "#futureofcontent"}},
	}
)

type ctaKey struct {
	platform domain.Platform
	tier     domain.Tier
}

var callsToAction = map[ctaKey]string{
	{domain.PlatformTikTok, domain.TierFree}:       "Follow for the next drop in this series.",
	{domain.PlatformTikTok, domain.TierPremium}:    "Follow for the next drop in this series.",
	{domain.PlatformInstagram, domain.TierFree}:    "Save & remix this sound for your audience.",
	{domain.PlatformInstagram, domain.TierPremium}: "Add this to your story and tag us for a repost.",
}

const defaultCallToAction = "Pin this Short to your featured playlist to boost discoverability."

// AssignVisuals gives scene i the image pool[i mod len(pool)] where the pool
// is the template backdrop followed by FallbackVisuals.
func AssignVisuals(scenes []domain.Scene, backdrop string) {
	pool := make([]string, 0, len(FallbackVisuals)+1)
	if backdrop != "" {
		pool = append(pool, backdrop)
	}
	pool = append(pool, FallbackVisuals...)
	for i := range scenes {
		scenes[i].Visual = pool[i%len(pool)]
	}
}

// CraftHashtags builds the deduplicated hashtag set, capped at six.
func CraftHashtags(platform domain.Platform, tone string) []string {
	tags := append([]string(nil), baseHashtags...)
	tags = append(tags, platformHashtags[platform]...)
	for _, rule := range toneHashtags {
		if rule.pattern.MatchString(tone) {
			tags = append(tags, rule.tags...)
		}
	}
	tags = lo.Uniq(tags)
	if len(tags) > maxHashtags {
		tags = tags[:maxHashtags]
	}
	return tags
}

// CraftCallToAction looks up the closing line for a platform and tier.
func CraftCallToAction(platform domain.Platform, tier domain.Tier) string {
	if cta, ok := callsToAction[ctaKey{platform, tier}]; ok {
		return cta
	}
	return defaultCallToAction
}

// MusicEnergy rises for longer plans.
func MusicEnergy(sceneCount int) float64 {
	if sceneCount > 4 {
		return 0.8
	}
	return 0.6
}

// WatermarkFor returns the overlay settings of a tier.
func WatermarkFor(tier domain.Tier) domain.Watermark {
	if tier.IsFree() {
		return domain.Watermark{Required: true, Text: watermarkText}
	}
	return domain.Watermark{}
}

// CraftGuidance returns the posting advice for the plan.
func CraftGuidance(platform domain.Platform, hook string, hashtags []string) domain.Guidance {
	postingTime := "Post within 90 minutes of trending audio updates for maximum push."
	if platform == domain.PlatformTikTok {
		postingTime = "Post between 4-7pm local time when FYP scroll spikes."
	}
	caption := hook
	for _, tag := range hashtags {
		caption += " " + tag
	}
	return domain.Guidance{
		PostingTime: postingTime,
		Caption:     caption,
		Description: "Reuse the hook in your comment to double the keyword density. Pin the comment for retention.",
	}
}

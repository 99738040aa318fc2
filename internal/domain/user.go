package domain

import "strings"

// Tier enumerates service levels.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// ParseTier normalizes a free-form tier value. Anything that is not premium is free.
func ParseTier(v string) Tier {
	if strings.EqualFold(strings.TrimSpace(v), string(TierPremium)) {
		return TierPremium
	}
	return TierFree
}

// IsFree reports whether the tier carries the free-plan restrictions.
func (t Tier) IsFree() bool {
	return t != TierPremium
}

// Platform identifies the publishing destination of a reel.
type Platform string

const (
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
)

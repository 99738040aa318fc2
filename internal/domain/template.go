package domain

// WatermarkPosition names one of the four corner anchors for the free-tier watermark.
type WatermarkPosition string

const (
	WatermarkTopLeft     WatermarkPosition = "top-left"
	WatermarkTopRight    WatermarkPosition = "top-right"
	WatermarkBottomLeft  WatermarkPosition = "bottom-left"
	WatermarkBottomRight WatermarkPosition = "bottom-right"
)

// Valid reports whether p is one of the supported anchors.
func (p WatermarkPosition) Valid() bool {
	switch p {
	case WatermarkTopLeft, WatermarkTopRight, WatermarkBottomLeft, WatermarkBottomRight:
		return true
	}
	return false
}

// DefaultBeatTiming is the pacing multiplier used when a template omits one.
const DefaultBeatTiming = 1.6

// Template is a visual preset served by the template catalog.
type Template struct {
	ID                string            `json:"id" toml:"id"`
	Name              string            `json:"name" toml:"name"`
	Description       string            `json:"description" toml:"description"`
	Platforms         []Platform        `json:"platform" toml:"platforms"`
	CoverImage        string            `json:"coverImage" toml:"cover_image"`
	Backdrop          string            `json:"backdrop" toml:"backdrop"`
	BeatTiming        float64           `json:"beatTiming" toml:"beat_timing"`
	Accent            string            `json:"accent" toml:"accent"`
	FontFamily        string            `json:"fontFamily" toml:"font_family"`
	WatermarkPosition WatermarkPosition `json:"watermarkPosition" toml:"watermark_position"`
	Trending          bool              `json:"trending" toml:"trending"`
	TrendScore        int               `json:"trendScore" toml:"trend_score"`
}

// Beat returns the template pacing multiplier, falling back to DefaultBeatTiming.
func (t Template) Beat() float64 {
	if t.BeatTiming > 0 {
		return t.BeatTiming
	}
	return DefaultBeatTiming
}

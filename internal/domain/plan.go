package domain

// Scene is one timed caption and visual unit of a reel.
type Scene struct {
	ID         string  `json:"id"`
	Caption    string  `json:"caption"`
	Highlight  string  `json:"highlight"`
	Visual     string  `json:"visual"`
	DurationMs float64 `json:"durationMs"`
	Beat       float64 `json:"beat"`
}

// Timeline is the ordered scene sequence plus publishing metadata.
type Timeline struct {
	Scenes       []Scene  `json:"scenes"`
	Hashtags     []string `json:"hashtags"`
	CallToAction string   `json:"callToAction"`
	Hook         string   `json:"hook"`
}

// TotalDurationMs is the logical length of the reel.
func (t Timeline) TotalDurationMs() float64 {
	var total float64
	for _, s := range t.Scenes {
		total += s.DurationMs
	}
	return total
}

// VoiceAsset carries the narrated script. Audio is a base64 data URL.
type VoiceAsset struct {
	Audio      string   `json:"audio"`
	Format     string   `json:"format"`
	Transcript []string `json:"transcript"`
}

// MusicCue tells the composer which bed to synthesize.
type MusicCue struct {
	Style  MusicStyle `json:"style"`
	Energy float64    `json:"energy"`
}

// Watermark describes the free-tier overlay.
type Watermark struct {
	Required bool   `json:"required"`
	Text     string `json:"text"`
}

// Guidance is the publishing advice returned with a plan.
type Guidance struct {
	PostingTime string `json:"postingTime"`
	Caption     string `json:"caption"`
	Description string `json:"description"`
}

// GenerationPlan is everything a composer needs to render one reel.
type GenerationPlan struct {
	Template  Template   `json:"template"`
	Timeline  Timeline   `json:"timeline"`
	Voiceover VoiceAsset `json:"voiceover"`
	Music     MusicCue   `json:"music"`
	Watermark Watermark  `json:"watermark"`
	Guidance  Guidance   `json:"guidance"`
}

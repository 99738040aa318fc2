package jsoncfg

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultPropertiesVersion is the schema version persisted with generation records.
const DefaultPropertiesVersion = "2025-01"

// GenerationProperties is the free-form JSON stored next to a generation record.
type GenerationProperties struct {
	Version      string   `json:"version"`
	Tone         string   `json:"tone,omitempty"`
	Hashtags     []string `json:"hashtags,omitempty"`
	CallToAction string   `json:"call_to_action,omitempty"`
	SceneCount   int      `json:"scene_count"`
	Watermarked  bool     `json:"watermarked"`
	VideoURL     string   `json:"video_url,omitempty"`
}

// Normalize applies defaults and trims string fields.
func (p *GenerationProperties) Normalize() {
	if p == nil {
		return
	}
	if p.Version == "" {
		p.Version = DefaultPropertiesVersion
	}
	p.Tone = strings.TrimSpace(p.Tone)
	p.CallToAction = strings.TrimSpace(p.CallToAction)
	if p.SceneCount < 0 {
		p.SceneCount = 0
	}
}

// Decode parses stored properties, tolerating empty input.
func Decode(b []byte) (GenerationProperties, error) {
	var p GenerationProperties
	if len(b) == 0 {
		p.Normalize()
		return p, nil
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return GenerationProperties{}, fmt.Errorf("decode properties: %w", err)
	}
	p.Normalize()
	return p, nil
}

func MustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("json marshal: %w", err))
	}
	return b
}

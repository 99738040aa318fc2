package voice

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"reelsmaker/internal/domain"
)

const (
	// MaxScriptRunes bounds the text sent to the engine for a single reel.
	MaxScriptRunes = 4000
	// FormatMPEG is the only format produced by the adapters.
	FormatMPEG = "audio/mpeg"
)

// Request describes one narration.
type Request struct {
	Text   string
	Style  domain.VoiceStyle
	Locale string
}

// Audio is an encoded narration track.
type Audio struct {
	Data   []byte
	Format string
}

// Synthesizer is the contract implemented by text-to-speech engines.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (*Audio, error)
}

// TruncateScript keeps at most MaxScriptRunes runes of text.
func TruncateScript(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxScriptRunes {
		return text
	}
	return string(runes[:MaxScriptRunes])
}

// EncodeDataURL embeds audio bytes as a base64 data URL.
func EncodeDataURL(format string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", format, base64.StdEncoding.EncodeToString(data))
}

// DecodeDataURL accepts either a full data URL or a bare base64 payload.
func DecodeDataURL(input string) ([]byte, error) {
	payload := strings.TrimSpace(input)
	if payload == "" {
		return nil, errors.New("voice: empty audio payload")
	}
	if idx := strings.Index(payload, ","); idx >= 0 {
		payload = payload[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("voice: decode audio payload: %w", err)
	}
	return data, nil
}

package planner

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"reelsmaker/internal/domain"
)

const (
	minScenes         = 3
	maxScenes         = 5
	charsPerScene     = 160
	minSceneMs        = 2600
	msPerWord         = 180
	highlightWordsCap = 4
)

// SanitizeScript collapses whitespace runs into single spaces and trims the ends.
func SanitizeScript(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

// SplitSentences cuts a sanitized script after '.', '!' or '?' when the
// punctuation is followed by whitespace. Empty fragments are dropped.
func SplitSentences(script string) []string {
	var sentences []string
	start := 0
	prevTerminal := false
	for i, r := range script {
		if prevTerminal && unicode.IsSpace(r) {
			if s := strings.TrimSpace(script[start:i]); s != "" {
				sentences = append(sentences, s)
			}
			start = i
		}
		prevTerminal = r == '.' || r == '!' || r == '?'
	}
	if s := strings.TrimSpace(script[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// TargetSceneCount is ceil(length/160) clamped to [3, 5].
func TargetSceneCount(script string) int {
	n := int(math.Ceil(float64(utf8.RuneCountInString(script)) / charsPerScene))
	if n < minScenes {
		return minScenes
	}
	if n > maxScenes {
		return maxScenes
	}
	return n
}

// SceneDurationMs returns the on-screen time of a chunk with the given word count.
func SceneDurationMs(words int, beatTiming float64) float64 {
	if beatTiming <= 0 {
		beatTiming = domain.DefaultBeatTiming
	}
	return math.Max(minSceneMs, float64(words)*msPerWord*beatTiming)
}

// SplitIntoScenes turns a raw script into timed scenes. Visuals are left
// empty; AssignVisuals fills them in.
func SplitIntoScenes(script string, beatTiming float64) ([]domain.Scene, error) {
	return splitIntoScenes(script, beatTiming, uuid.NewString)
}

func splitIntoScenes(script string, beatTiming float64, newID func() string) ([]domain.Scene, error) {
	script = SanitizeScript(script)
	sentences := SplitSentences(script)
	if len(sentences) == 0 {
		return nil, domain.ErrEmptyScript
	}
	if beatTiming <= 0 {
		beatTiming = domain.DefaultBeatTiming
	}

	target := TargetSceneCount(script)
	chunkSize := int(math.Ceil(float64(len(sentences)) / float64(target)))

	scenes := make([]domain.Scene, 0, target)
	for i := 0; i < len(sentences); i += chunkSize {
		end := min(i+chunkSize, len(sentences))
		chunk := strings.Join(sentences[i:end], " ")
		words := strings.Fields(chunk)
		highlight := words[:min(highlightWordsCap, len(words))]
		scenes = append(scenes, domain.Scene{
			ID:         newID(),
			Caption:    chunk,
			Highlight:  strings.Join(highlight, " "),
			DurationMs: SceneDurationMs(len(words), beatTiming),
			Beat:       beatTiming,
		})
	}
	return scenes, nil
}

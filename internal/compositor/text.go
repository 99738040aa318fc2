package compositor

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// typeface bundles the faces used on every frame. Faces cache glyphs and are
// not safe for concurrent use.
type typeface struct {
	caption   font.Face
	highlight font.Face
	watermark font.Face
}

func newTypeface() (*typeface, error) {
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("compositor: parse bold font: %w", err)
	}
	medium, err := opentype.Parse(gomedium.TTF)
	if err != nil {
		return nil, fmt.Errorf("compositor: parse medium font: %w", err)
	}
	face := func(f *opentype.Font, size float64) (font.Face, error) {
		return opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	}
	tf := &typeface{}
	if tf.caption, err = face(bold, captionSize); err != nil {
		return nil, fmt.Errorf("compositor: caption face: %w", err)
	}
	if tf.highlight, err = face(medium, highlightSize); err != nil {
		return nil, fmt.Errorf("compositor: highlight face: %w", err)
	}
	if tf.watermark, err = face(bold, watermarkSize); err != nil {
		return nil, fmt.Errorf("compositor: watermark face: %w", err)
	}
	return tf, nil
}

var upper = cases.Upper(language.Und)

// Upper upper-cases display text the way captions and watermarks are shown.
func Upper(s string) string {
	return upper.String(s)
}

// Measurer reports the advance width of a string in pixels.
type Measurer func(s string) int

func faceMeasurer(face font.Face) Measurer {
	return func(s string) int {
		return font.MeasureString(face, s).Ceil()
	}
}

// WrapLines breaks text greedily: words are appended to the current line
// while the line still fits maxWidth, otherwise a new line starts. A single
// word wider than maxWidth is split across lines so no line overflows.
func WrapLines(text string, maxWidth int, measure Measurer) []string {
	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		candidate := strings.TrimSpace(current + " " + word)
		if measure(candidate) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = ""
		for _, piece := range splitWord(word, maxWidth, measure) {
			if current != "" {
				lines = append(lines, current)
			}
			current = piece
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

func splitWord(word string, maxWidth int, measure Measurer) []string {
	if measure(word) <= maxWidth {
		return []string{word}
	}
	var pieces []string
	var b strings.Builder
	for _, r := range word {
		if b.Len() > 0 && measure(b.String()+string(r)) > maxWidth {
			pieces = append(pieces, b.String())
			b.Reset()
		}
		b.WriteRune(r)
	}
	if b.Len() > 0 {
		pieces = append(pieces, b.String())
	}
	return pieces
}

// drawText draws s with its em box top at (x, y).
func drawText(dst *image.RGBA, face font.Face, c color.NRGBA, x, y int, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + face.Metrics().Ascent},
	}
	d.DrawString(s)
}

package compositor

import (
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// Canvas dimensions of every rendered reel.
const (
	Width  = 720
	Height = 1280
)

const (
	backdropAlpha   = 230 // 0.9
	panelRadius     = 22
	panelLineWidth  = 2
	panelPadding    = 24
	captionSize     = 54
	captionLeading  = 64
	highlightSize   = 28
	highlightOffset = 58
	watermarkSize   = 28
	watermarkInset  = 32
	watermarkBottom = 54
)

var (
	gradientStart = color.NRGBA{R: 5, G: 5, B: 14, A: 184}
	gradientEnd   = color.NRGBA{R: 15, G: 15, B: 35, A: 153}
	panelFill     = color.NRGBA{R: 12, G: 12, B: 24, A: 115}
	captionColor  = color.NRGBA{R: 255, G: 255, B: 255, A: 235}
	watermarkTint = color.NRGBA{R: 255, G: 255, B: 255, A: 115}
	defaultAccent = color.NRGBA{R: 56, G: 189, B: 248, A: 255}
)

// Panel is the translucent caption card: 84% by 28% of the canvas, anchored
// at 8% from the left and 58% from the top.
func Panel() image.Rectangle {
	x := int(math.Round(Width * 0.08))
	y := int(math.Round(Height * 0.58))
	w := int(math.Round(Width * 0.84))
	h := int(math.Round(Height * 0.28))
	return image.Rect(x, y, x+w, y+h)
}

// CaptionWidth is the widest a caption line may be.
func CaptionWidth() int {
	return Panel().Dx() - 2*panelPadding
}

func newCanvas() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, xdraw.Src)
	return img
}

// coverFit returns where src must be drawn so it fills the canvas while
// keeping its aspect ratio, cropping the overflow evenly on both sides.
func coverFit(src image.Rectangle) image.Rectangle {
	iw, ih := float64(src.Dx()), float64(src.Dy())
	if iw <= 0 || ih <= 0 {
		return image.Rect(0, 0, Width, Height)
	}
	scale := math.Max(Width/iw, Height/ih)
	dw, dh := iw*scale, ih*scale
	dx, dy := (Width-dw)/2, (Height-dh)/2
	return image.Rect(int(math.Floor(dx)), int(math.Floor(dy)), int(math.Ceil(dx+dw)), int(math.Ceil(dy+dh)))
}

func drawBackdrop(dst *image.RGBA, src image.Image) {
	if src == nil {
		return
	}
	scaled := image.NewRGBA(dst.Bounds())
	xdraw.ApproxBiLinear.Scale(scaled, coverFit(src.Bounds()), src, src.Bounds(), xdraw.Src, nil)
	xdraw.DrawMask(dst, dst.Bounds(), scaled, image.Point{}, image.NewUniform(color.Alpha{A: backdropAlpha}), image.Point{}, xdraw.Over)
}

// drawGradient overlays the diagonal legibility gradient running from the
// top-left corner to the bottom-right corner.
func drawGradient(dst *image.RGBA) {
	const norm = Width*Width + Height*Height
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			t := float64(x*Width+y*Height) / norm
			blend(dst, x, y, lerpColor(gradientStart, gradientEnd, t), 1)
		}
	}
}

// drawPanel fills and strokes the rounded caption card with anti-aliased edges.
func drawPanel(dst *image.RGBA, stroke color.NRGBA) {
	r := Panel()
	cx := float64(r.Min.X) + float64(r.Dx())/2
	cy := float64(r.Min.Y) + float64(r.Dy())/2
	hw, hh := float64(r.Dx())/2, float64(r.Dy())/2
	bounds := r.Inset(-panelLineWidth).Intersect(dst.Bounds())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			d := roundedRectDistance(float64(x)+0.5-cx, float64(y)+0.5-cy, hw, hh, panelRadius)
			if fill := clamp01(0.5 - d); fill > 0 {
				blend(dst, x, y, panelFill, fill)
			}
			if edge := clamp01(panelLineWidth/2.0 + 0.5 - math.Abs(d)); edge > 0 {
				blend(dst, x, y, stroke, edge)
			}
		}
	}
}

// roundedRectDistance is the signed distance from (px, py), relative to the
// rectangle centre, to the outline; negative inside.
func roundedRectDistance(px, py, hw, hh, radius float64) float64 {
	qx := math.Abs(px) - (hw - radius)
	qy := math.Abs(py) - (hh - radius)
	outside := math.Hypot(math.Max(qx, 0), math.Max(qy, 0))
	inside := math.Min(math.Max(qx, qy), 0)
	return outside + inside - radius
}

// blend composites c over the pixel with the given coverage. The canvas is
// kept opaque so premultiplied and straight alpha coincide.
func blend(dst *image.RGBA, x, y int, c color.NRGBA, coverage float64) {
	a := float64(c.A) / 255 * coverage
	if a <= 0 {
		return
	}
	i := dst.PixOffset(x, y)
	p := dst.Pix[i : i+4 : i+4]
	inv := 1 - a
	p[0] = uint8(float64(c.R)*a + float64(p[0])*inv + 0.5)
	p[1] = uint8(float64(c.G)*a + float64(p[1])*inv + 0.5)
	p[2] = uint8(float64(c.B)*a + float64(p[2])*inv + 0.5)
	p[3] = uint8(255*a + float64(p[3])*inv + 0.5)
}

func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	t = clamp01(t)
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// ParseAccent reads a CSS hex colour (#rgb or #rrggbb). Anything else yields
// the default cyan accent.
func ParseAccent(s string) color.NRGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return defaultAccent
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return defaultAccent
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

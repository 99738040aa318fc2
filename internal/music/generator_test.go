package music

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"reelsmaker/internal/domain"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestGenerateExactLength(t *testing.T) {
	durations := []float64{0.001, 0.5, 1, 2.345, 18}
	rates := []int{8000, 44100, 48000}
	for _, style := range domain.MusicStyles {
		for _, d := range durations {
			for _, sr := range rates {
				buf, err := Generate(style, d, sr, seeded(1))
				if err != nil {
					t.Fatalf("%s d=%v sr=%d: %v", style, d, sr, err)
				}
				want := int(math.Ceil(d * float64(sr)))
				if len(buf.Channels) != 2 {
					t.Fatalf("%s: %d channels", style, len(buf.Channels))
				}
				for ch, samples := range buf.Channels {
					if len(samples) != want {
						t.Fatalf("%s d=%v sr=%d ch=%d: %d samples, want %d", style, d, sr, ch, len(samples), want)
					}
				}
			}
		}
	}
}

func TestGenerateDeterministicForSeed(t *testing.T) {
	a, err := Generate(domain.MusicHyperwave, 0.25, 8000, seeded(42))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	b, err := Generate(domain.MusicHyperwave, 0.25, 8000, seeded(42))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	for ch := range a.Channels {
		for i := range a.Channels[ch] {
			if a.Channels[ch][i] != b.Channels[ch][i] {
				t.Fatalf("channel %d sample %d differs", ch, i)
			}
		}
	}
	same := true
	for i := range a.Channels[0] {
		if a.Channels[0][i] != a.Channels[1][i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("channels should start at independent phases")
	}
}

func TestGenerateAmplitudeBounded(t *testing.T) {
	for _, style := range domain.MusicStyles {
		params, _ := style.Params()
		limit := float32(0.25*(1+0.7) + 0.5*params.NoiseLevel + 1e-6)
		buf, err := Generate(style, 1, 8000, seeded(7))
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		for _, samples := range buf.Channels {
			for i, v := range samples {
				if v > limit || v < -limit {
					t.Fatalf("%s sample %d = %v exceeds %v", style, i, v, limit)
				}
			}
		}
	}
}

func TestGenerateRejectsInvalidInput(t *testing.T) {
	if _, err := Generate("polka", 1, 8000, seeded(1)); !errors.Is(err, domain.ErrInvalidStyle) {
		t.Fatalf("error = %v, want ErrInvalidStyle", err)
	}
	if _, err := Generate(domain.MusicUpliftPop, 0, 8000, seeded(1)); err == nil {
		t.Fatalf("expected error for zero duration")
	}
	if _, err := Generate(domain.MusicUpliftPop, 1, 0, seeded(1)); err == nil {
		t.Fatalf("expected error for zero sample rate")
	}
}

func TestBedSeconds(t *testing.T) {
	if BedSeconds(4) != 18 {
		t.Fatalf("short voice should get an 18s bed")
	}
	if BedSeconds(30) != 31.5 {
		t.Fatalf("long voice bed = %v", BedSeconds(30))
	}
}

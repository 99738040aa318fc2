package jsoncfg

import "testing"

func TestGenerationPropertiesNormalizeDefaults(t *testing.T) {
	p := &GenerationProperties{Tone: "  upbeat ", SceneCount: -2}
	p.Normalize()

	if p.Version != DefaultPropertiesVersion {
		t.Fatalf("Version = %q, want %q", p.Version, DefaultPropertiesVersion)
	}
	if p.Tone != "upbeat" {
		t.Fatalf("Tone = %q, want %q", p.Tone, "upbeat")
	}
	if p.SceneCount != 0 {
		t.Fatalf("SceneCount = %d, want 0", p.SceneCount)
	}
}

func TestDecodeEmptyInput(t *testing.T) {
	p, err := Decode(nil)
	if err != nil {
		t.Fatalf("Decode(nil) error: %v", err)
	}
	if p.Version != DefaultPropertiesVersion {
		t.Fatalf("Version = %q, want %q", p.Version, DefaultPropertiesVersion)
	}
}

func TestDecodeKeepsStoredValues(t *testing.T) {
	raw := MustMarshal(GenerationProperties{Version: "2024-01", SceneCount: 4, Watermarked: true})
	p, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if p.Version != "2024-01" || p.SceneCount != 4 || !p.Watermarked {
		t.Fatalf("unexpected properties: %#v", p)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("{not json")); err == nil {
		t.Fatalf("expected error for malformed json")
	}
}

package planner

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"reelsmaker/internal/domain"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("scene-%d", n)
	}
}

func TestSplitIntoScenesThreeSentences(t *testing.T) {
	scenes, err := splitIntoScenes("Unlock a workflow. Hook viewers fast. Deliver a CTA.", 1.6, sequentialIDs())
	if err != nil {
		t.Fatalf("splitIntoScenes returned error: %v", err)
	}
	want := []string{"Unlock a workflow.", "Hook viewers fast.", "Deliver a CTA."}
	if len(scenes) != len(want) {
		t.Fatalf("expected %d scenes, got %d", len(want), len(scenes))
	}
	for i, scene := range scenes {
		if scene.Caption != want[i] {
			t.Fatalf("scene %d caption = %q, want %q", i, scene.Caption, want[i])
		}
		if scene.DurationMs != 2600 {
			t.Fatalf("scene %d duration = %v, want 2600", i, scene.DurationMs)
		}
		if scene.ID != fmt.Sprintf("scene-%d", i+1) {
			t.Fatalf("scene %d id = %q", i, scene.ID)
		}
		if scene.Beat != 1.6 {
			t.Fatalf("scene %d beat = %v", i, scene.Beat)
		}
	}
	if scenes[0].Highlight != "Unlock a workflow." {
		t.Fatalf("highlight = %q", scenes[0].Highlight)
	}
}

func TestSplitIntoScenesEmptyScript(t *testing.T) {
	for _, script := range []string{"", "   ", "\n\t"} {
		if _, err := SplitIntoScenes(script, 1.6); !errors.Is(err, domain.ErrEmptyScript) {
			t.Fatalf("SplitIntoScenes(%q) error = %v, want ErrEmptyScript", script, err)
		}
	}
}

func TestSplitIntoScenesBounds(t *testing.T) {
	sentence := "Creators ship faster when the workflow carries the heavy lifting today."
	cases := []int{1, 2, 4, 7, 12, 20, 40}
	for _, n := range cases {
		script := strings.TrimSpace(strings.Repeat(sentence+" ", n))
		scenes, err := SplitIntoScenes(script, 1.6)
		if err != nil {
			t.Fatalf("n=%d: unexpected error %v", n, err)
		}
		if len(scenes) < 1 || len(scenes) > 5 {
			t.Fatalf("n=%d: scene count %d out of range", n, len(scenes))
		}
		for _, scene := range scenes {
			if scene.DurationMs < 2600 {
				t.Fatalf("n=%d: duration %v below minimum", n, scene.DurationMs)
			}
		}
		var joined []string
		for _, scene := range scenes {
			joined = append(joined, scene.Caption)
		}
		if strings.Join(joined, " ") != script {
			t.Fatalf("n=%d: scenes do not cover the script in order", n)
		}
	}
}

func TestSplitIntoScenesLongChunkDuration(t *testing.T) {
	script := "one two three four five six seven eight nine ten eleven twelve."
	scenes, err := SplitIntoScenes(script, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scenes) != 1 {
		t.Fatalf("expected 1 scene, got %d", len(scenes))
	}
	if scenes[0].DurationMs != 12*180*2 {
		t.Fatalf("duration = %v, want %v", scenes[0].DurationMs, 12*180*2)
	}
	if scenes[0].Highlight != "one two three four" {
		t.Fatalf("highlight = %q", scenes[0].Highlight)
	}
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("Wait... what? Yes!Really. v1.2 ships now")
	want := []string{"Wait...", "what?", "Yes!Really.", "v1.2 ships now"}
	if len(got) != len(want) {
		t.Fatalf("SplitSentences = %#v, want %#v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sentence %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTargetSceneCount(t *testing.T) {
	cases := map[int]int{10: 3, 480: 3, 481: 4, 640: 4, 641: 5, 5000: 5}
	for length, want := range cases {
		if got := TargetSceneCount(strings.Repeat("a", length)); got != want {
			t.Fatalf("TargetSceneCount(len=%d) = %d, want %d", length, got, want)
		}
	}
}

func TestSanitizeScript(t *testing.T) {
	if got := SanitizeScript("  Hello \n\n world\t again  "); got != "Hello world again" {
		t.Fatalf("SanitizeScript = %q", got)
	}
}

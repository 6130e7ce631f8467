package subtitles

import (
	"strings"
	"testing"
	"time"

	"github.com/clipforge/clipforge/internal/types"
)

func TestRender_WordByWordHighlightsActiveWord(t *testing.T) {
	entries := []types.SubtitleEntry{
		{
			StartMs: 0, EndMs: 800, Text: "Hello world",
			Words: []types.WordTiming{
				{StartMs: 0, EndMs: 300, Text: "Hello"},
				{StartMs: 300, EndMs: 800, Text: "world"},
			},
		},
	}
	ass := Render(entries, Presets["tiktok"])
	if !strings.Contains(ass, `\c&H0000D7FF&`) {
		t.Fatalf("expected highlight color override, got:\n%s", ass)
	}
	if strings.Count(ass, "Dialogue:") != 2 {
		t.Fatalf("expected one dialogue line per word, got:\n%s", ass)
	}
}

func TestRender_PlainEmitsOneLinePerEntry(t *testing.T) {
	entries := []types.SubtitleEntry{{StartMs: 0, EndMs: 1000, Text: "hi there"}}
	ass := Render(entries, Presets["classic"])
	if strings.Count(ass, "Dialogue:") != 1 {
		t.Fatalf("expected one dialogue line, got:\n%s", ass)
	}
}

func TestRender_PopUsesScaleOverride(t *testing.T) {
	entries := []types.SubtitleEntry{
		{StartMs: 0, EndMs: 300, Text: "wow", Words: []types.WordTiming{{StartMs: 0, EndMs: 300, Text: "wow"}}},
	}
	ass := Render(entries, Presets["bold_pop"])
	if !strings.Contains(ass, `\fscx120`) {
		t.Fatalf("expected pop scale override, got:\n%s", ass)
	}
}

func TestAssTime_Format(t *testing.T) {
	got := assTime(61*time.Second + 234*time.Millisecond)
	if got != "0:01:01.23" {
		t.Fatalf("unexpected assTime: %s", got)
	}
}

func TestLookup_FallsBackToClassic(t *testing.T) {
	style := Lookup("nonexistent")
	if style.FontName != Presets["classic"].FontName {
		t.Fatalf("expected classic fallback, got %+v", style)
	}
}

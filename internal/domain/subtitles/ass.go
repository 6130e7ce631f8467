// Package subtitles renders clip-local caption cues into the ASS
// (Advanced SubStation Alpha) format ffmpeg burns into a clip. The
// original single fixed TikTok stylesheet is generalized into the
// preset-driven CaptionStyle table and the none/wordByWord/pop
// animation modes.
package subtitles

import (
	"fmt"
	"strings"
	"time"

	"github.com/clipforge/clipforge/internal/types"
)

// Render builds a complete .ass document for entries under style. An
// empty entries slice still yields a valid (eventless) document so
// callers never need a special case for "nothing to caption".
func Render(entries []types.SubtitleEntry, style types.CaptionStyle) string {
	var b strings.Builder
	b.WriteString(header(style))
	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, e := range entries {
		switch style.Animation {
		case types.AnimWordByWord, types.AnimPop:
			writeWordByWord(&b, e, style.Animation)
		default:
			writeLine(&b, msDur(e.StartMs), msDur(e.EndMs), sanitizeASS(e.Text))
		}
	}
	return b.String()
}

// writeWordByWord emits one dialogue line per word timing, the active
// word highlighted with a color override (AnimWordByWord) or a brief
// scale-up override (AnimPop). Entries without word timing fall back
// to a single plain line for the full cue.
func writeWordByWord(b *strings.Builder, e types.SubtitleEntry, anim types.CaptionAnimation) {
	if len(e.Words) == 0 {
		writeLine(b, msDur(e.StartMs), msDur(e.EndMs), sanitizeASS(e.Text))
		return
	}
	for i, w := range e.Words {
		var parts []string
		for j, other := range e.Words {
			text := sanitizeASS(other.Text)
			if j == i {
				parts = append(parts, highlight(text, anim))
			} else {
				parts = append(parts, text)
			}
		}
		writeLine(b, msDur(w.StartMs), msDur(w.EndMs), strings.Join(parts, " "))
	}
}

func highlight(text string, anim types.CaptionAnimation) string {
	if anim == types.AnimPop {
		return fmt.Sprintf(`{\t(0,100,\fscx120\fscy120)\t(100,200,\fscx100\fscy100)}%s{\r}`, text)
	}
	return fmt.Sprintf(`{\c&H0000D7FF&}%s{\r}`, text)
}

func writeLine(b *strings.Builder, start, end time.Duration, text string) {
	b.WriteString("Dialogue: 0,")
	b.WriteString(assTime(start))
	b.WriteString(",")
	b.WriteString(assTime(end))
	b.WriteString(",Caption,,0,0,0,,")
	b.WriteString(text)
	b.WriteString("\n")
}

func header(style types.CaptionStyle) string {
	bold := 0
	if style.Bold {
		bold = 1
	}
	alignment := alignmentFor(style.Position)
	return strings.TrimSpace(fmt.Sprintf(`
[Script Info]
ScriptType: v4.00+
PlayResX: 1920
PlayResY: 1080
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Caption, %s, %d, %s, &H00FFD200, %s, %s, %d,0,0,0,100,100,0,0,1,%d,%d,%d, 80,80,85,1
`, style.FontName, style.FontSize, style.PrimaryColor, style.OutlineColor, style.BackgroundColor, bold, style.Outline, style.Shadow, alignment))
}

// alignmentFor maps a caption position to the ASS v4+ numpad alignment
// value (2=bottom-center, 5=middle-center, 8=top-center).
func alignmentFor(pos types.CaptionPosition) int {
	switch pos {
	case types.PositionTop:
		return 8
	case types.PositionCenter:
		return 5
	default:
		return 2
	}
}

func assTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	cs := int(d / (10 * time.Millisecond))
	return fmt.Sprintf("%d:%02d:%02d.%02d", hs, ms, s, cs)
}

func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return strings.TrimSpace(s)
}

func msDur(ms int64) time.Duration { return time.Duration(ms) * time.Millisecond }

package subtitles

import (
	"strings"

	"github.com/clipforge/clipforge/internal/types"
)

// charBudget and wordBudget are the hard per-cue limits
// packWordsToEntries uses to group ASR words into readable caption
// lines (trades exact transcript grouping for consistently sized
// chunks on vertical-video layouts).
const (
	charBudget = 42
	wordBudget = 9
)

// FromTranscript converts ASR output covering [startS, endS] into
// clip-local SubtitleEntry cues, rebasing every timestamp to 0 at
// startS. Falls back to one entry per overlapping segment's plain text
// when no word-level timing survived transcription.
func FromTranscript(tr types.Transcript, startS, endS float64) []types.SubtitleEntry {
	words := collectWords(tr, startS, endS)
	if len(words) == 0 {
		return segmentFallback(tr, startS, endS)
	}
	return packWordsToEntries(words)
}

type word struct {
	startMs int64
	endMs   int64
	text    string
}

func collectWords(tr types.Transcript, startS, endS float64) []word {
	var out []word
	for _, s := range tr.Segments {
		for _, w := range s.Words {
			if w.End <= startS || w.Start >= endS {
				continue
			}
			text := strings.TrimSpace(w.Word)
			if text == "" {
				continue
			}
			ws, we := w.Start, w.End
			if ws < startS {
				ws = startS
			}
			if we > endS {
				we = endS
			}
			out = append(out, word{
				startMs: int64((ws - startS) * 1000),
				endMs:   int64((we - startS) * 1000),
				text:    text,
			})
		}
	}
	return out
}

func segmentFallback(tr types.Transcript, startS, endS float64) []types.SubtitleEntry {
	var out []types.SubtitleEntry
	for _, s := range tr.Segments {
		if s.End <= startS || s.Start >= endS {
			continue
		}
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		ss, se := s.Start, s.End
		if ss < startS {
			ss = startS
		}
		if se > endS {
			se = endS
		}
		out = append(out, types.SubtitleEntry{
			StartMs: int64((ss - startS) * 1000),
			EndMs:   int64((se - startS) * 1000),
			Text:    text,
		})
	}
	return out
}

func packWordsToEntries(words []word) []types.SubtitleEntry {
	var out []types.SubtitleEntry
	cur := types.SubtitleEntry{StartMs: words[0].startMs}
	curLen := 0
	for i, w := range words {
		wl := len([]rune(w.text))
		nextLen := curLen
		if curLen > 0 {
			nextLen++
		}
		nextLen += wl
		if len(cur.Words) >= wordBudget || nextLen > charBudget {
			cur.EndMs = cur.Words[len(cur.Words)-1].EndMs
			cur.Text = joinWords(cur.Words)
			out = append(out, cur)
			cur = types.SubtitleEntry{StartMs: w.startMs}
			curLen = 0
		}
		cur.Words = append(cur.Words, types.WordTiming{StartMs: w.startMs, EndMs: w.endMs, Text: w.text})
		if curLen > 0 {
			curLen++
		}
		curLen += wl
		if i == len(words)-1 {
			cur.EndMs = w.endMs
			cur.Text = joinWords(cur.Words)
			out = append(out, cur)
		}
	}
	return out
}

func joinWords(words []types.WordTiming) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

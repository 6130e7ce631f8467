package ytdlp

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/clipforge/clipforge/internal/types"
)

var (
	vttHeaderRe    = regexp.MustCompile(`^WEBVTT\b.*$`)
	timingLineRe   = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2}\.\d{3})\s*-->\s*(\d{2}:\d{2}:\d{2}\.\d{3})`)
	htmlTagRe      = regexp.MustCompile(`<[^>]+>`)
	cueIDRe        = regexp.MustCompile(`^\d+$`)
	metadataLineRe = regexp.MustCompile(`^(Kind|Language|NOTE)\b`)
)

// Subtitles fetches the full-video auto-generated (or author-provided)
// subtitle track via a --write-subs/--write-auto-subs pass converted
// to VTT, and parses it into per-cue entries at clip-independent,
// whole-video timing. ok=false with a nil error means the extractor
// has no subtitle track for this video.
func (a *Adapter) Subtitles(ctx context.Context, url string) ([]types.SubtitleEntry, bool, error) {
	outTemplate := filepath.Join(a.workDir, "subs_%(id)s.%(ext)s")
	args := []string{
		"--write-subs", "--write-auto-subs",
		"--sub-lang", "en.*,en",
		"--sub-format", "vtt",
		"--convert-subs", "vtt",
		"--skip-download",
		"--no-warnings",
		"-o", outTemplate,
		url,
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, false, fmt.Errorf("yt-dlp fetch subtitles: %w\n%s", err, string(out))
	}

	path, ok := findVTTFile(a.workDir)
	if !ok {
		return nil, false, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read subtitle file: %w", err)
	}
	entries := parseVTT(string(raw))
	if len(entries) == 0 {
		return nil, false, nil
	}
	return entries, true, nil
}

func findVTTFile(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "subs_") && strings.HasSuffix(e.Name(), ".vtt") {
			return filepath.Join(dir, e.Name()), true
		}
	}
	return "", false
}

// parseVTT walks a WEBVTT file and emits one SubtitleEntry per timed
// cue, stripping HTML markup and skipping header/metadata/cue-id
// lines, deduplicating a cue whose text exactly repeats the previous
// one (auto-generated tracks often roll the same line across
// overlapping cues).
func parseVTT(raw string) []types.SubtitleEntry {
	lines := strings.Split(raw, "\n")
	var entries []types.SubtitleEntry
	var startMs, endMs int64
	inCue := false
	var textLines []string
	prevText := ""

	flush := func() {
		if !inCue {
			return
		}
		text := strings.TrimSpace(strings.Join(textLines, " "))
		if text != "" && text != prevText {
			entries = append(entries, types.SubtitleEntry{StartMs: startMs, EndMs: endMs, Text: text})
			prevText = text
		}
		inCue = false
		textLines = nil
	}

	for _, line := range lines {
		line = strings.TrimRight(line, "\r")

		if m := timingLineRe.FindStringSubmatch(line); m != nil {
			flush()
			startMs = parseVTTTimestampMs(m[1])
			endMs = parseVTTTimestampMs(m[2])
			inCue = true
			continue
		}
		if vttHeaderRe.MatchString(line) || metadataLineRe.MatchString(line) {
			continue
		}
		if cueIDRe.MatchString(strings.TrimSpace(line)) {
			continue
		}
		if inCue {
			clean := strings.TrimSpace(htmlTagRe.ReplaceAllString(line, ""))
			if clean != "" {
				textLines = append(textLines, clean)
			}
		}
	}
	flush()
	return entries
}

func parseVTTTimestampMs(ts string) int64 {
	parts := strings.SplitN(ts, ":", 3)
	if len(parts) != 3 {
		return 0
	}
	h, _ := strconv.ParseInt(parts[0], 10, 64)
	m, _ := strconv.ParseInt(parts[1], 10, 64)
	secParts := strings.SplitN(parts[2], ".", 2)
	s, _ := strconv.ParseInt(secParts[0], 10, 64)
	var ms int64
	if len(secParts) == 2 {
		ms, _ = strconv.ParseInt(secParts[1], 10, 64)
	}
	return h*3600000 + m*60000 + s*1000 + ms
}

// Package ytdlp implements the Downloader port against the yt-dlp
// binary: metadata/heatmap/comment probing via -J dump-json passes,
// and partial/full media fetch via format selectors and
// --download-sections. Every pass follows the same
// exec.CommandContext + CombinedOutput error-wrapping style as the
// project's ffmpeg adapter.
package ytdlp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/clipforge/clipforge/internal/ports"
	"github.com/clipforge/clipforge/internal/types"
)

type Adapter struct {
	bin     string
	workDir string
}

func New(binPath, workDir string) *Adapter {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	return &Adapter{bin: binPath, workDir: workDir}
}

type infoJSON struct {
	Duration float64 `json:"duration"`
	Title    string  `json:"title"`
	Heatmap  []struct {
		StartTime float64 `json:"start_time"`
		EndTime   float64 `json:"end_time"`
		Value     float64 `json:"value"`
	} `json:"heatmap"`
}

func (a *Adapter) dumpInfo(ctx context.Context, url string) (infoJSON, error) {
	cmd := exec.CommandContext(ctx, a.bin, "-J", "--no-warnings", "--skip-download", url)
	out, err := cmd.Output()
	if err != nil {
		return infoJSON{}, fmt.Errorf("yt-dlp dump-json: %w", err)
	}
	var info infoJSON
	if err := json.Unmarshal(out, &info); err != nil {
		return infoJSON{}, fmt.Errorf("yt-dlp parse info json: %w", err)
	}
	return info, nil
}

func (a *Adapter) Probe(ctx context.Context, url string) (ports.VideoInfo, error) {
	info, err := a.dumpInfo(ctx, url)
	if err != nil {
		return ports.VideoInfo{}, err
	}
	return ports.VideoInfo{DurationS: info.Duration, Title: info.Title}, nil
}

// Heatmap returns the YouTube "most replayed" points exposed in the
// info json. Not every video carries one; ok=false with a nil error
// tells the caller to fall back to another signal source rather than
// treat a missing heatmap as failure.
func (a *Adapter) Heatmap(ctx context.Context, url string) ([]ports.HeatmapPoint, bool, error) {
	info, err := a.dumpInfo(ctx, url)
	if err != nil {
		return nil, false, err
	}
	if len(info.Heatmap) == 0 {
		return nil, false, nil
	}
	points := make([]ports.HeatmapPoint, len(info.Heatmap))
	for i, h := range info.Heatmap {
		points[i] = ports.HeatmapPoint{StartS: h.StartTime, EndS: h.EndTime, Value: h.Value}
	}
	return points, true, nil
}

type commentJSON struct {
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	LikeCount int    `json:"like_count"`
}

// Comments fetches up to max top-level comments via a dedicated
// --write-comments pass, sorted by like count descending. The
// comment-probe signal source looks for embedded "MM:SS" timestamps in
// the text itself, so TimeStamp here is only the post time, kept for
// display/debugging.
func (a *Adapter) Comments(ctx context.Context, url string, max int) ([]ports.Comment, error) {
	cmd := exec.CommandContext(ctx, a.bin, "-J", "--no-warnings", "--skip-download", "--write-comments", url)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("yt-dlp fetch comments: %w", err)
	}
	var payload struct {
		Comments []commentJSON `json:"comments"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		return nil, fmt.Errorf("yt-dlp parse comments json: %w", err)
	}

	sorted := make([]commentJSON, len(payload.Comments))
	copy(sorted, payload.Comments)
	sortCommentsByLikes(sorted)

	if max > 0 && len(sorted) > max {
		sorted = sorted[:max]
	}
	out2 := make([]ports.Comment, len(sorted))
	for i, c := range sorted {
		out2[i] = ports.Comment{Text: c.Text, TimeStamp: formatUnix(c.Timestamp)}
	}
	return out2, nil
}

func sortCommentsByLikes(cs []commentJSON) {
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j].LikeCount > cs[j-1].LikeCount; j-- {
			cs[j], cs[j-1] = cs[j-1], cs[j]
		}
	}
}

// FetchPartial downloads only the [startS, endS] section using
// --download-sections with --force-keyframes-at-cuts, so the returned
// file starts exactly at startS, which is returned as the buffered
// start on success. If
// the extractor doesn't support section downloads, the caller is
// expected to fall back to FetchFull and seek in the transcode step.
func (a *Adapter) FetchPartial(ctx context.Context, url string, startS, endS float64, quality types.Quality) (string, float64, error) {
	outTemplate := filepath.Join(a.workDir, "partial_%(id)s.%(ext)s")
	section := fmt.Sprintf("*%s-%s", fmtSeconds(startS), fmtSeconds(endS))
	args := []string{
		"-f", formatForQuality(quality),
		"--download-sections", section,
		"--force-keyframes-at-cuts",
		"--no-warnings",
		"-o", outTemplate,
		"--print", "after_move:filepath",
		url,
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", 0, fmt.Errorf("yt-dlp fetch partial: %w\n%s", err, string(out))
	}
	path := lastNonEmptyLine(string(out))
	if path == "" || !fileExists(path) {
		return "", 0, fmt.Errorf("yt-dlp fetch partial: could not resolve output path")
	}
	return path, startS, nil
}

func (a *Adapter) FetchFull(ctx context.Context, url string, quality types.Quality) (string, error) {
	outTemplate := filepath.Join(a.workDir, "full_%(id)s.%(ext)s")
	args := []string{
		"-f", formatForQuality(quality),
		"--no-warnings",
		"-o", outTemplate,
		"--print", "after_move:filepath",
		url,
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("yt-dlp fetch full: %w\n%s", err, string(out))
	}
	path := lastNonEmptyLine(string(out))
	if path == "" || !fileExists(path) {
		return "", fmt.Errorf("yt-dlp fetch full: could not resolve output path")
	}
	return path, nil
}

func formatForQuality(q types.Quality) string {
	h := int(q)
	if h <= 0 {
		h = 1080
	}
	return fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best[height<=%d]", h, h)
}

func fmtSeconds(sec float64) string {
	return fmt.Sprintf("%.3f", sec)
}

func lastNonEmptyLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func formatUnix(ts int64) string {
	if ts <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", ts)
}

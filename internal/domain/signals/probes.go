// Package signals implements the acquisition probes and the
// fusion combiner: four independent sources of "where does this video
// get interesting" are sampled, each fails soft to an empty
// types.SignalSource, and the combiner merges whichever came back.
package signals

import (
	"context"
	"math"
	"regexp"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clipforge/clipforge/internal/ports"
	"github.com/clipforge/clipforge/internal/types"
)

const (
	audioWindowS = 2.0
	sceneWindowS = 2.0

	commentWindowS     = 5.0
	commentMaxLateness = 5.0

	sceneThreshold = 0.3
	sceneScaleW    = 640

	longVideoS     = 30 * 60
	veryLongVideoS = 2 * 60 * 60

	audioClampLoDB  = -60.0
	audioClampHiDB  = -10.0
	silenceNoiseDB  = -35.0
	silenceMinDurS  = 0.3
	silenceFallback = 0.9
)

// HeatmapProbe turns the platform's published viewer-retention curve
// into a SignalSource. Returns an empty source, not an error, when the
// platform has none (not a fatal condition).
func HeatmapProbe(ctx context.Context, dl ports.Downloader, url string) types.SignalSource {
	points, ok, err := dl.Heatmap(ctx, url)
	if err != nil || !ok || len(points) == 0 {
		return types.SignalSource{Method: types.MethodHeatmap}
	}
	out := make([]types.IntensityPoint, 0, len(points))
	for _, p := range points {
		if p.EndS <= p.StartS {
			continue
		}
		out = append(out, types.IntensityPoint{
			StartMs:   secToMs(p.StartS),
			EndMs:     secToMs(p.EndS),
			Intensity: p.Value,
		})
	}
	return types.SignalSource{Method: types.MethodHeatmap, Points: out}
}

// AudioProbe runs one RMS pass, windowed at audioWindowS, clamps each
// dB figure and maps it linearly to 0..1. If the RMS pass fails it
// falls back to a single silence-detection pass and derives intensity
// from how much of each window overlaps silence. Both paths finish
// with a full-sequence min-max renormalize.
func AudioProbe(ctx context.Context, tc ports.Transcoder, path string, durationS float64) types.SignalSource {
	has, err := tc.HasAudioTrack(ctx, path)
	if err != nil || !has {
		return types.SignalSource{Method: types.MethodAudio}
	}

	if windows, err := tc.AudioRMSWindows(ctx, path, audioWindowS); err == nil && len(windows) > 0 {
		mapped := make([]float64, len(windows))
		for i, db := range windows {
			clamped := clamp(db, audioClampLoDB, audioClampHiDB)
			mapped[i] = (clamped - audioClampLoDB) / (audioClampHiDB - audioClampLoDB)
		}
		return buildWindowedSource(types.MethodAudio, minMaxNormalize(mapped), audioWindowS, durationS)
	}

	silences, err := tc.SilenceDetect(ctx, path, silenceNoiseDB, silenceMinDurS)
	if err != nil {
		return types.SignalSource{Method: types.MethodAudio}
	}
	if durationS <= 0 {
		return types.SignalSource{Method: types.MethodAudio}
	}
	nWindows := int(math.Ceil(durationS / audioWindowS))
	vals := make([]float64, nWindows)
	for i := range vals {
		winStart := float64(i) * audioWindowS
		winEnd := math.Min(winStart+audioWindowS, durationS)
		overlap := silenceOverlap(silences, winStart, winEnd)
		ratio := 0.0
		if span := winEnd - winStart; span > 0 {
			ratio = overlap / span
		}
		vals[i] = 1 - ratio*silenceFallback
	}
	return buildWindowedSource(types.MethodAudio, minMaxNormalize(vals), audioWindowS, durationS)
}

func silenceOverlap(intervals []ports.SilenceInterval, a, b float64) float64 {
	var sum float64
	for _, iv := range intervals {
		lo := math.Max(a, iv.StartS)
		hi := math.Min(b, iv.EndS)
		if hi > lo {
			sum += hi - lo
		}
	}
	return sum
}

// SceneProbe runs one scene-change detection pass, downsampled for
// long inputs to bound ffmpeg cost, then buckets event counts into
// fixed windows and normalizes.
func SceneProbe(ctx context.Context, tc ports.Transcoder, path string, durationS float64) types.SignalSource {
	fps, timeout := 0.0, 90*time.Second
	switch {
	case durationS > veryLongVideoS:
		fps, timeout = 1.0, 180*time.Second
	case durationS > longVideoS:
		fps, timeout = 2.0, 120*time.Second
	}
	events, err := tc.SceneDetect(ctx, path, sceneThreshold, fps, sceneScaleW, timeout)
	if err != nil || len(events) == 0 || durationS <= 0 {
		return types.SignalSource{Method: types.MethodScene}
	}

	nWindows := int(math.Ceil(durationS / sceneWindowS))
	if nWindows < 1 {
		nWindows = 1
	}
	counts := make([]float64, nWindows)
	for _, e := range events {
		idx := bucketIndex(e.TimeS, sceneWindowS, nWindows)
		counts[idx]++
	}
	return buildWindowedSource(types.MethodScene, normalizeCounts(counts), sceneWindowS, durationS)
}

// reTimestamp is a package-level compiled regexp, cheap and
// deterministic, applied to comment timestamp mining.
var reTimestamp = regexp.MustCompile(`\b(\d{1,2}):(\d{2})(?::(\d{2}))?\b`)

// CommentsProbe mines fetched comments for "HH:MM:SS" or "MM:SS" style
// timestamp mentions, buckets the mention counts over fixed windows,
// normalizes, and also returns a ranked list of raw hits for
// explainability.
func CommentsProbe(ctx context.Context, dl ports.Downloader, url string, maxComments int, durationS float64) (types.SignalSource, []types.CommentHit) {
	comments, err := dl.Comments(ctx, url, maxComments)
	if err != nil || len(comments) == 0 || durationS <= 0 {
		return types.SignalSource{Method: types.MethodComments}, nil
	}

	nWindows := int(math.Ceil(durationS / commentWindowS))
	if nWindows < 1 {
		nWindows = 1
	}
	counts := make([]float64, nWindows)
	hits := map[int64]*types.CommentHit{}
	any := false
	for _, c := range comments {
		for _, m := range reTimestamp.FindAllStringSubmatch(c.Text, -1) {
			t := parseTimestamp(m)
			if t < 0 || t > durationS+commentMaxLateness {
				continue
			}
			idx := bucketIndex(t, commentWindowS, nWindows)
			counts[idx]++
			any = true
			key := int64(t)
			if h, ok := hits[key]; ok {
				h.Count++
			} else {
				hits[key] = &types.CommentHit{TimeS: t, Count: 1, SampleText: c.Text}
			}
		}
	}
	if !any {
		return types.SignalSource{Method: types.MethodComments}, nil
	}

	ranked := make([]types.CommentHit, 0, len(hits))
	for _, h := range hits {
		ranked = append(ranked, *h)
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })

	return buildWindowedSource(types.MethodComments, normalizeCounts(counts), commentWindowS, durationS), ranked
}

// strongCommentBuckets is how many distinct non-zero buckets count as
// a "strong" comment signal, the threshold the orchestrator uses to
// decide whether audio+scene probing is worth the extra download/pass.
const strongCommentBuckets = 5

func isStrongCommentSignal(src types.SignalSource) bool {
	n := 0
	for _, p := range src.Points {
		if p.Intensity > 0 {
			n++
		}
	}
	return n >= strongCommentBuckets
}

func normalizeCounts(counts []float64) []float64 {
	maxCount := 0.0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	if maxCount <= 0 {
		return counts
	}
	out := make([]float64, len(counts))
	for i, c := range counts {
		out[i] = c / maxCount
	}
	return out
}

func buildWindowedSource(method types.SignalMethod, vals []float64, windowS, durationS float64) types.SignalSource {
	points := make([]types.IntensityPoint, len(vals))
	for i, v := range vals {
		start := float64(i) * windowS
		end := math.Min(start+windowS, durationS)
		points[i] = types.IntensityPoint{StartMs: secToMs(start), EndMs: secToMs(end), Intensity: v}
	}
	return types.SignalSource{Method: method, Points: points}
}

func bucketIndex(t, windowS float64, nWindows int) int {
	idx := int(t / windowS)
	if idx < 0 {
		idx = 0
	}
	if idx >= nWindows {
		idx = nWindows - 1
	}
	return idx
}

func parseTimestamp(m []string) float64 {
	mm, ss, hh := m[1], m[2], m[3]
	min := atoiSafe(mm)
	sec := atoiSafe(ss)
	if hh != "" {
		hour := min
		min = sec
		sec = atoiSafe(hh)
		return float64(hour*3600 + min*60 + sec)
	}
	return float64(min*60 + sec)
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return n
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func secToMs(s float64) int64 { return int64(s * 1000) }

// Collect runs the four probes in a cost-ordered sequence: comments
// first (no download required), then heatmap; if
// the heatmap is unavailable or the comment signal is weak, audio and
// scene run concurrently against the already-fetched media. The more
// expensive local passes are skipped only when a heatmap is present and
// the comment signal is strong.
func Collect(ctx context.Context, dl ports.Downloader, tc ports.Transcoder, url, mediaPath string, durationS float64, maxComments int) ([]types.SignalSource, []types.CommentHit) {
	comments, hits := CommentsProbe(ctx, dl, url, maxComments, durationS)
	heat := HeatmapProbe(ctx, dl, url)
	return CollectLocal(ctx, tc, mediaPath, durationS, heat, comments), hits
}

// CollectLocal runs the audio and scene probes against already-
// downloaded media and assembles the combined source list, given heat
// and comments signals the caller already fetched. Exported so a
// caller that fetched the comment/heatmap probes itself to decide
// whether a full download was needed (the analyze handler's fallback
// path) doesn't pay for them twice.
func CollectLocal(ctx context.Context, tc ports.Transcoder, mediaPath string, durationS float64, heat, comments types.SignalSource) []types.SignalSource {
	var audio, scene types.SignalSource
	if heat.Empty() || !isStrongCommentSignal(comments) {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			audio = AudioProbe(gctx, tc, mediaPath, durationS)
			return nil
		})
		g.Go(func() error {
			scene = SceneProbe(gctx, tc, mediaPath, durationS)
			return nil
		})
		_ = g.Wait()
	} else {
		audio = types.SignalSource{Method: types.MethodAudio}
		scene = types.SignalSource{Method: types.MethodScene}
	}

	return []types.SignalSource{heat, audio, scene, comments}
}

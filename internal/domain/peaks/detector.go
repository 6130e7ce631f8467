// Package peaks implements the peak detector: it turns a combined
// heatmap into a bounded set of non-overlapping highlight segments
// through adaptive thresholding, zone merging, candidate sizing,
// scoring, and greedy gap-constrained selection.
package peaks

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/clipforge/clipforge/internal/types"
)

const (
	defaultTopN               = 5
	defaultMinDurationS       = 15.0
	defaultMaxDurationS       = 60.0
	defaultMinGapS            = 30.0
	defaultIntensityThreshold = 0.6

	minThreshold      = 0.2
	thresholdStep     = 0.1
	minSurvivors      = 5
	zoneMergeGapMs    = 3000
	minRelaxedGapS    = 10.0
	relaxedGapDivisor = 2.0
)

// withDefaults fills zero-valued fields of opts with package defaults.
func withDefaults(opts types.DetectOptions) types.DetectOptions {
	if opts.TopN <= 0 {
		opts.TopN = defaultTopN
	}
	if opts.MinDurationS <= 0 {
		opts.MinDurationS = defaultMinDurationS
	}
	if opts.MaxDurationS <= 0 {
		opts.MaxDurationS = defaultMaxDurationS
	}
	if opts.MinGapS <= 0 {
		opts.MinGapS = defaultMinGapS
	}
	if opts.IntensityThreshold <= 0 {
		opts.IntensityThreshold = defaultIntensityThreshold
	}
	return opts
}

type zone struct {
	startMs       int64
	endMs         int64
	peakIntensity float64
	peakTimeMs    int64
	intensities   []float64
}

// Detect runs the full detection pipeline and returns the selected
// highlight segments plus the detection metadata (methods used,
// threshold survived, whether relaxation fired).
func Detect(heatmap types.CombinedHeatmap, durationS float64, opts types.DetectOptions) ([]types.Segment, types.DetectionMeta) {
	opts = withDefaults(opts)

	threshold, survivors := adaptiveThreshold(heatmap.Points, opts.IntensityThreshold)
	meta := types.DetectionMeta{MethodsUsed: heatmap.MethodsUsed, ThresholdUsed: threshold}
	if len(heatmap.MethodsUsed) > 0 {
		meta.Primary = heatmap.MethodsUsed[0]
	}
	if len(survivors) == 0 {
		return nil, meta
	}

	zones := mergeZones(survivors)
	candidates := sizeCandidates(zones, durationS, opts.MinDurationS, opts.MaxDurationS)
	scoreCandidates(candidates, opts.MaxDurationS)

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })

	selected := greedySelect(candidates, opts.TopN, opts.MinGapS)
	if !opts.DisableRelax && len(selected) < opts.TopN && len(candidates) > len(selected) {
		relaxedGap := math.Max(opts.MinGapS/relaxedGapDivisor, minRelaxedGapS)
		relaxedSelection := greedySelect(candidates, opts.TopN, relaxedGap)
		if len(relaxedSelection) > len(selected) {
			selected = relaxedSelection
			meta.Relaxed = true
		}
	}

	sort.Slice(selected, func(i, j int) bool { return selected[i].StartS < selected[j].StartS })

	out := make([]types.Segment, len(selected))
	for i, c := range selected {
		out[i] = types.Segment{
			ID:            uuid.NewString(),
			StartS:        round1(c.StartS),
			EndS:          round1(c.EndS),
			DurationS:     round1(c.DurationS),
			AvgIntensity:  round3(c.AvgIntensity),
			PeakIntensity: round3(c.PeakIntensity),
		}
	}
	return out, meta
}

// adaptiveThreshold implements step 1: decrement the threshold by 0.1
// while fewer than minSurvivors points survive, stopping once the
// threshold would drop to or below minThreshold.
func adaptiveThreshold(points []types.IntensityPoint, start float64) (float64, []types.IntensityPoint) {
	threshold := start
	for {
		survivors := filterAbove(points, threshold)
		// The epsilon absorbs float drift from repeated subtraction
		// (0.6 - 4*0.1 is 0.20000000000000004, not 0.2).
		if len(survivors) >= minSurvivors || threshold <= minThreshold+1e-9 {
			return threshold, survivors
		}
		threshold -= thresholdStep
	}
}

func filterAbove(points []types.IntensityPoint, threshold float64) []types.IntensityPoint {
	var out []types.IntensityPoint
	for _, p := range points {
		if p.Intensity >= threshold {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartMs < out[j].StartMs })
	return out
}

// mergeZones implements step 2: consecutive survivors whose time gap
// is <= zoneMergeGapMs collapse into one zone.
func mergeZones(survivors []types.IntensityPoint) []zone {
	var zones []zone
	for _, p := range survivors {
		if len(zones) > 0 {
			last := &zones[len(zones)-1]
			if p.StartMs-last.endMs <= zoneMergeGapMs {
				last.endMs = p.EndMs
				last.intensities = append(last.intensities, p.Intensity)
				if p.Intensity > last.peakIntensity {
					last.peakIntensity = p.Intensity
					last.peakTimeMs = (p.StartMs + p.EndMs) / 2
				}
				continue
			}
		}
		mid := (p.StartMs + p.EndMs) / 2
		zones = append(zones, zone{
			startMs:       p.StartMs,
			endMs:         p.EndMs,
			peakIntensity: p.Intensity,
			peakTimeMs:    mid,
			intensities:   []float64{p.Intensity},
		})
	}
	return zones
}

// sizeCandidates implements step 3: widen or shrink each zone to land
// within [minDurationS, maxDurationS], centered on the zone's peak, and
// clamped to the video's bounds with opposite-edge compensation.
func sizeCandidates(zones []zone, durationS, minDurationS, maxDurationS float64) []types.Candidate {
	out := make([]types.Candidate, 0, len(zones))
	for _, z := range zones {
		startS := float64(z.startMs) / 1000
		endS := float64(z.endMs) / 1000
		peakTimeS := float64(z.peakTimeMs) / 1000
		dur := endS - startS

		switch {
		case dur < minDurationS:
			startS, endS = resize(peakTimeS, minDurationS, durationS)
		case dur > maxDurationS:
			startS, endS = resize(peakTimeS, maxDurationS, durationS)
		}

		avg := average(z.intensities)
		out = append(out, types.Candidate{
			StartS:        startS,
			EndS:          endS,
			DurationS:     endS - startS,
			AvgIntensity:  avg,
			PeakIntensity: z.peakIntensity,
			PeakTimeS:     peakTimeS,
		})
	}
	return out
}

// resize centers a window of length target on pivot, then clamps to
// [0, durationS], shifting the opposite edge to preserve the target
// length when one side is clipped by a video boundary.
func resize(pivot, target, durationS float64) (float64, float64) {
	half := target / 2
	start := pivot - half
	end := pivot + half
	if start < 0 {
		end += -start
		start = 0
	}
	if durationS > 0 && end > durationS {
		start -= end - durationS
		end = durationS
		if start < 0 {
			start = 0
		}
	}
	return start, end
}

func average(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// scoreCandidates implements step 4's weighted composite.
func scoreCandidates(candidates []types.Candidate, maxDurationS float64) {
	for i := range candidates {
		c := &candidates[i]
		durationFit := c.DurationS / maxDurationS
		if durationFit > 1 {
			durationFit = 1
		}
		c.Score = 1.0*c.AvgIntensity + 0.3*c.PeakIntensity + 0.1*durationFit
	}
}

// greedySelect implements steps 5-6: admit candidates in score order
// as long as every already-selected segment is at least gapS away.
func greedySelect(candidates []types.Candidate, topN int, gapS float64) []types.Candidate {
	var selected []types.Candidate
	for _, c := range candidates {
		if len(selected) >= topN {
			break
		}
		if fitsGap(c, selected, gapS) {
			selected = append(selected, c)
		}
	}
	return selected
}

func fitsGap(c types.Candidate, selected []types.Candidate, gapS float64) bool {
	for _, s := range selected {
		gap := math.Max(c.StartS-s.EndS, s.StartS-c.EndS)
		if gap < gapS {
			return false
		}
	}
	return true
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

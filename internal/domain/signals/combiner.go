package signals

import (
	"math"

	"github.com/clipforge/clipforge/internal/types"
)

// fallbackWeights apply when no heatmap source is present: audio and
// scene corroborate each other, comments lean in heaviest since a
// timestamp mention is a strong, if sparse, explicit signal.
var fallbackWeights = map[types.SignalMethod]float64{
	types.MethodAudio:    1.0,
	types.MethodScene:    0.6,
	types.MethodComments: 1.2,
}

// gridWindowMs is the uniform bucket width the combiner resamples every
// source onto before fusing.
const gridWindowMs = 2000

// smoothingWindow is how many buckets (centered, fewer at the edges)
// the moving-average smoothing pass considers.
const smoothingWindow = 3

// resolveWeights implements the default weighting rule: the heatmap is
// authoritative and used alone whenever present, otherwise the
// fallback weights apply to whichever of audio/scene/comments came
// back non-empty.
func resolveWeights(sources []types.SignalSource) map[types.SignalMethod]float64 {
	for _, s := range sources {
		if s.Method == types.MethodHeatmap && !s.Empty() {
			return map[types.SignalMethod]float64{types.MethodHeatmap: 1.0}
		}
	}
	return fallbackWeights
}

// Combine drops empty sources, returns a lone survivor unchanged, and
// otherwise resamples every source onto a uniform grid, fuses by
// weight, re-normalizes to 0..1, and applies centered moving-average
// smoothing. A nil weights map uses the default rule.
func Combine(sources []types.SignalSource, durationS float64, weights map[types.SignalMethod]float64) types.CombinedHeatmap {
	var nonEmpty []types.SignalSource
	for _, s := range sources {
		if !s.Empty() {
			nonEmpty = append(nonEmpty, s)
		}
	}
	if len(nonEmpty) == 0 {
		return types.CombinedHeatmap{WindowMs: gridWindowMs}
	}
	if len(nonEmpty) == 1 {
		return types.CombinedHeatmap{
			WindowMs:    gridWindowMs,
			Points:      nonEmpty[0].Points,
			MethodsUsed: []types.SignalMethod{nonEmpty[0].Method},
		}
	}

	if weights == nil {
		weights = resolveWeights(nonEmpty)
	}

	nBuckets := int(math.Ceil(durationS * 1000 / gridWindowMs))
	if nBuckets < 1 {
		nBuckets = 1
	}

	fused := make([]float64, nBuckets)
	totalWeight := make([]float64, nBuckets)
	var used []types.SignalMethod

	for _, src := range nonEmpty {
		w := weights[src.Method]
		if w <= 0 {
			continue
		}
		used = append(used, src.Method)
		resampled := resampleMax(src.Points, nBuckets, gridWindowMs)
		normalized := minMaxNormalize(resampled)
		for i, v := range normalized {
			fused[i] += v * w
			totalWeight[i] += w
		}
	}

	for i := range fused {
		if totalWeight[i] > 0 {
			fused[i] /= totalWeight[i]
		}
	}

	normalized := minMaxNormalize(fused)
	smoothed := movingAverage(normalized, smoothingWindow)

	points := make([]types.IntensityPoint, nBuckets)
	for i := range points {
		startMs := int64(i) * gridWindowMs
		endMs := startMs + gridWindowMs
		if float64(endMs) > durationS*1000 {
			endMs = int64(durationS * 1000)
		}
		points[i] = types.IntensityPoint{StartMs: startMs, EndMs: endMs, Intensity: smoothed[i]}
	}

	if len(used) > 1 {
		used = append(used, types.MethodCombined)
	}

	return types.CombinedHeatmap{
		WindowMs:    gridWindowMs,
		Points:      points,
		MethodsUsed: used,
	}
}

// resampleMax maps a source's (possibly unevenly-windowed) points onto
// nBuckets fixed-width buckets by taking, for each bucket, the max
// intensity among any source point overlapping it. Max rather than
// average so a brief spike inside a coarser source window isn't
// diluted away by the resample.
func resampleMax(points []types.IntensityPoint, nBuckets int, windowMs int64) []float64 {
	out := make([]float64, nBuckets)
	for _, p := range points {
		startIdx := int(p.StartMs / windowMs)
		endIdx := int((p.EndMs - 1) / windowMs)
		if endIdx < startIdx {
			endIdx = startIdx
		}
		for i := startIdx; i <= endIdx && i < nBuckets; i++ {
			if i < 0 {
				continue
			}
			if p.Intensity > out[i] {
				out[i] = p.Intensity
			}
		}
	}
	return out
}

func minMaxNormalize(vals []float64) []float64 {
	if len(vals) == 0 {
		return vals
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	out := make([]float64, len(vals))
	if span <= 0 {
		copy(out, vals)
		return out
	}
	for i, v := range vals {
		out[i] = (v - lo) / span
	}
	return out
}

// movingAverage applies a centered window of w buckets total (fewer at
// the edges, where the window is truncated rather than padded).
func movingAverage(vals []float64, w int) []float64 {
	if w < 1 {
		w = 1
	}
	radius := (w - 1) / 2
	out := make([]float64, len(vals))
	for i := range vals {
		lo := i - radius
		if lo < 0 {
			lo = 0
		}
		hi := i + radius
		if hi >= len(vals) {
			hi = len(vals) - 1
		}
		sum, n := 0.0, 0
		for j := lo; j <= hi; j++ {
			sum += vals[j]
			n++
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Package boundary nudges each detected segment's start and end toward
// a natural sentence or energy boundary: an energy/silence search over
// the combined heatmap, analogous to searching a transcript window for
// the best sentence end.
package boundary

import (
	"math"
	"sort"

	"github.com/clipforge/clipforge/internal/ports"
	"github.com/clipforge/clipforge/internal/types"
)

const (
	startWindowBeforeS = 5.0
	startWindowAfterS  = 2.0
	sentenceScoreBonus = 20.0
	energyScoreBonus   = 10.0
	energyThreshold    = 0.5
	scanWindowS        = 3.0
	dropRatio          = 0.5
	minPrevIntensity   = 0.4
)

// Optimize adjusts every segment's boundaries independently, then
// verifies the adjusted set is still non-overlapping and ordered.
// Segments that would conflict after adjustment revert to their
// original bounds.
func Optimize(segments []types.Segment, heatmap types.CombinedHeatmap, silences []ports.SilenceInterval, durationS, minDurationS, maxDurationS float64) []types.Segment {
	points := append([]types.IntensityPoint(nil), heatmap.Points...)
	sort.Slice(points, func(i, j int) bool { return points[i].StartMs < points[j].StartMs })

	adjusted := make([]types.Segment, len(segments))
	for i, seg := range segments {
		adjusted[i] = optimizeOne(seg, points, silences, durationS, minDurationS, maxDurationS)
	}

	for i := range adjusted {
		if conflicts(adjusted, i) {
			adjusted[i] = fallbackOriginal(segments[i])
		}
	}
	return adjusted
}

func optimizeOne(orig types.Segment, points []types.IntensityPoint, silences []ports.SilenceInterval, durationS, minDurationS, maxDurationS float64) types.Segment {
	startLo := math.Max(0, orig.StartS-startWindowBeforeS)
	startHi := math.Min(durationS, orig.StartS+startWindowAfterS)

	bestStart, boundaryType := chooseStart(startLo, startHi, orig.StartS, points, silences)

	endLo := bestStart + minDurationS
	endHi := math.Min(bestStart+maxDurationS, durationS)
	if endHi < endLo {
		endHi = endLo
	}
	bestEnd := chooseEnd(endLo, endHi, points, silences)

	duration := bestEnd - bestStart
	if duration < minDurationS {
		bestEnd = bestStart + minDurationS
	}
	if duration > maxDurationS {
		bestEnd = bestStart + maxDurationS
	}
	if durationS > 0 && bestEnd > durationS {
		bestEnd = durationS
	}

	hookScore := math.Round(100 * energy(points, bestStart, bestStart+scanWindowS))
	hookShiftS := math.Round((bestStart-orig.StartS)*10) / 10

	out := orig
	out.StartS = round1(bestStart)
	out.EndS = round1(bestEnd)
	out.DurationS = round1(bestEnd - bestStart)
	out.BoundaryType = boundaryType
	out.HookScore = hookScore
	out.HookShiftS = hookShiftS
	return out
}

// chooseStart scores every silence-interval-end and high-energy
// candidate inside [lo, hi] and keeps the highest scorer. An empty
// window falls back to the original start.
func chooseStart(lo, hi, origStart float64, points []types.IntensityPoint, silences []ports.SilenceInterval) (float64, string) {
	bestScore := -1.0
	bestTime := origStart
	bestType := "original"

	for _, s := range silences {
		if s.EndS < lo || s.EndS > hi {
			continue
		}
		score := 100*energy(points, s.EndS, s.EndS+scanWindowS) + sentenceScoreBonus
		if score > bestScore {
			bestScore, bestTime, bestType = score, s.EndS, "sentence_start"
		}
	}

	for _, p := range points {
		t := float64(p.StartMs) / 1000
		if t < lo || t > hi {
			continue
		}
		if p.Intensity <= energyThreshold {
			continue
		}
		score := 100*((p.Intensity+energy(points, t, t+scanWindowS))/2) + energyScoreBonus
		if score > bestScore {
			bestScore, bestTime, bestType = score, t, "energy_peak"
		}
	}

	return bestTime, bestType
}

// chooseEnd prefers the first silence-interval start inside the window
// that keeps the duration in bounds, otherwise the first significant
// energy drop, otherwise the window's upper bound.
func chooseEnd(lo, hi float64, points []types.IntensityPoint, silences []ports.SilenceInterval) float64 {
	type candidate struct {
		startS float64
	}
	var silenceCandidates []candidate
	for _, s := range silences {
		if s.StartS >= lo && s.StartS <= hi {
			silenceCandidates = append(silenceCandidates, candidate{s.StartS})
		}
	}
	sort.Slice(silenceCandidates, func(i, j int) bool { return silenceCandidates[i].startS < silenceCandidates[j].startS })
	if len(silenceCandidates) > 0 {
		return silenceCandidates[0].startS
	}

	var inWindow []types.IntensityPoint
	var before *types.IntensityPoint
	for _, p := range points {
		t := float64(p.StartMs) / 1000
		if t >= lo && t <= hi {
			inWindow = append(inWindow, p)
			continue
		}
		if t < lo && (before == nil || p.StartMs > before.StartMs) {
			point := p
			before = &point
		}
	}
	sort.Slice(inWindow, func(i, j int) bool { return inWindow[i].StartMs < inWindow[j].StartMs })

	// Compare against the bucket immediately preceding the window too,
	// so a drop that lands exactly on the window boundary isn't missed.
	prev := before
	for i := range inWindow {
		if prev != nil && prev.Intensity > minPrevIntensity && inWindow[i].Intensity < dropRatio*prev.Intensity {
			return float64(inWindow[i].StartMs) / 1000
		}
		prev = &inWindow[i]
	}

	return hi
}

// energy averages the intensity of the heatmap points whose start lies
// in [a, b).
func energy(points []types.IntensityPoint, a, b float64) float64 {
	var sum float64
	var n int
	for _, p := range points {
		t := float64(p.StartMs) / 1000
		if t >= a && t < b {
			sum += p.Intensity
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func conflicts(segments []types.Segment, idx int) bool {
	cur := segments[idx]
	for i, other := range segments {
		if i == idx {
			continue
		}
		if cur.StartS < other.EndS && other.StartS < cur.EndS {
			return true
		}
	}
	return false
}

func fallbackOriginal(orig types.Segment) types.Segment {
	out := orig
	out.BoundaryType = "original"
	out.HookScore = 0
	out.HookShiftS = 0
	return out
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

// Package virality scores clips: six weighted sub-scores combined
// into one 0..100 "how shareable is this clip" number, generalized
// from a two-term composite into six terms with label/color buckets.
package virality

import (
	"math"

	"github.com/clipforge/clipforge/internal/types"
)

const (
	weightPeak     = 0.30
	weightHook     = 0.25
	weightPacing   = 0.15
	weightAudio    = 0.15
	weightPosition = 0.10
	weightDuration = 0.05

	hookWindowS = 3.0
)

// Score computes the ViralityBreakdown for one segment against the
// combined heatmap it was detected from.
func Score(seg types.Segment, heatmap types.CombinedHeatmap, durationS float64) types.ViralityBreakdown {
	inSegment := pointsIn(heatmap.Points, seg.StartS, seg.EndS)

	peak := clamp0to100(100 * seg.PeakIntensity)
	hook := hookStrength(heatmap.Points, seg.StartS, seg.AvgIntensity)
	pacing := pacingScore(inSegment)
	audio := clamp0to100(100 * seg.AvgIntensity)
	position := positionBonus(seg.StartS, durationS)
	duration := durationFit(seg.DurationS)

	overall := weightPeak*peak + weightHook*hook + weightPacing*pacing +
		weightAudio*audio + weightPosition*position + weightDuration*duration

	out := types.ViralityBreakdown{
		Overall:       roundInt(overall),
		PeakIntensity: roundInt(peak),
		HookStrength:  roundInt(hook),
		Pacing:        roundInt(pacing),
		AudioEnergy:   roundInt(audio),
		PositionBonus: roundInt(position),
		DurationFit:   roundInt(duration),
	}
	out.Label, out.Color = bucket(out.Overall)
	return out
}

func hookStrength(points []types.IntensityPoint, startS, avgIntensity float64) float64 {
	window := pointsIn(points, startS, startS+hookWindowS)
	if len(window) == 0 {
		return clamp0to100(100 * 0.50 * avgIntensity)
	}
	h := mean(intensitiesOf(window))
	score := 85 * h
	if h > avgIntensity {
		score += 15
	}
	return math.Min(100, score)
}

func pacingScore(inSegment []types.IntensityPoint) float64 {
	if len(inSegment) < 3 {
		return 50
	}
	sd := stddev(intensitiesOf(inSegment))
	return math.Min(100, 400*sd)
}

func positionBonus(startS, durationS float64) float64 {
	if durationS <= 0 {
		return 50
	}
	pos := startS / durationS
	switch {
	case pos < 1.0/3:
		return lerp(100, 80, pos/(1.0/3))
	case pos < 2.0/3:
		return lerp(80, 50, (pos-1.0/3)/(1.0/3))
	default:
		return lerp(50, 30, math.Min(1, (pos-2.0/3)/(1.0/3)))
	}
}

func durationFit(durationS float64) float64 {
	switch {
	case durationS >= 30 && durationS <= 45:
		return 100
	case durationS >= 20 && durationS < 30:
		return lerp(70, 100, (durationS-20)/10)
	case durationS > 45 && durationS <= 60:
		return lerp(100, 30, (durationS-45)/15)
	case durationS >= 15 && durationS < 20:
		return 50
	default:
		return 30
	}
}

func bucket(overall int) (label, color string) {
	switch {
	case overall >= 80:
		return "Viral", "red"
	case overall >= 60:
		return "Strong", "green"
	case overall >= 40:
		return "Good", "amber"
	default:
		return "Fair", "gray"
	}
}

func pointsIn(points []types.IntensityPoint, startS, endS float64) []types.IntensityPoint {
	var out []types.IntensityPoint
	for _, p := range points {
		ps := float64(p.StartMs) / 1000
		pe := float64(p.EndMs) / 1000
		if ps < endS && pe > startS {
			out = append(out, p)
		}
	}
	return out
}

func intensitiesOf(points []types.IntensityPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Intensity
	}
	return out
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func stddev(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := mean(vals)
	var sumSq float64
	for _, v := range vals {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(vals)))
}

func lerp(a, b, t float64) float64 {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return a + (b-a)*t
}

func clamp0to100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func roundInt(v float64) int { return int(math.Round(v)) }

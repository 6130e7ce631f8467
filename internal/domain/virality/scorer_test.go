package virality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipforge/clipforge/internal/types"
)

func flatHeatmap(vals []float64) types.CombinedHeatmap {
	points := make([]types.IntensityPoint, len(vals))
	for i, v := range vals {
		points[i] = types.IntensityPoint{StartMs: int64(i) * 1000, EndMs: int64(i+1) * 1000, Intensity: v}
	}
	return types.CombinedHeatmap{Points: points}
}

func TestScore_HighIntensityEarlySegmentScoresViral(t *testing.T) {
	vals := make([]float64, 120)
	for i := 5; i < 40; i++ {
		vals[i] = 1.0
	}
	hm := flatHeatmap(vals)
	seg := types.Segment{StartS: 5, EndS: 40, DurationS: 35, AvgIntensity: 0.85, PeakIntensity: 0.95}

	out := Score(seg, hm, 120)
	require.Equal(t, "Viral", out.Label)
	assert.Equal(t, "red", out.Color)
	assert.GreaterOrEqual(t, out.Overall, 80)
}

func TestScore_LateLowIntensitySegmentScoresLow(t *testing.T) {
	vals := make([]float64, 120)
	hm := flatHeatmap(vals)
	seg := types.Segment{StartS: 110, EndS: 118, DurationS: 8, AvgIntensity: 0.05, PeakIntensity: 0.1}

	out := Score(seg, hm, 120)
	assert.Less(t, out.Overall, 40)
	assert.Equal(t, "Fair", out.Label)
}

func TestDurationFit_PeaksInIdealRange(t *testing.T) {
	assert.Equal(t, 100.0, durationFit(35))
	assert.Less(t, durationFit(15), 100.0)
	assert.Less(t, durationFit(60), durationFit(45))
}

func TestPositionBonus_EarlierScoresHigher(t *testing.T) {
	early := positionBonus(0, 100)
	late := positionBonus(90, 100)
	assert.Greater(t, early, late)
}

func TestHookStrength_FallsBackWithoutWindowPoints(t *testing.T) {
	score := hookStrength(nil, 10, 0.4)
	assert.InDelta(t, 20.0, score, 1e-9)
}

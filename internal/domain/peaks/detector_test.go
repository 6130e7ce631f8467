package peaks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipforge/clipforge/internal/types"
)

func gridHeatmap(vals []float64) types.CombinedHeatmap {
	points := make([]types.IntensityPoint, len(vals))
	for i, v := range vals {
		points[i] = types.IntensityPoint{StartMs: int64(i) * 2000, EndMs: int64(i+1) * 2000, Intensity: v}
	}
	return types.CombinedHeatmap{WindowMs: 2000, Points: points, MethodsUsed: []types.SignalMethod{types.MethodHeatmap}}
}

func TestDetect_EmptyWhenNothingSurvivesThreshold(t *testing.T) {
	vals := make([]float64, 30)
	hm := gridHeatmap(vals)
	segs, meta := Detect(hm, 60, types.DetectOptions{})
	assert.Empty(t, segs)
	assert.False(t, meta.Relaxed)
}

func TestDetect_SelectsNonOverlappingSegmentsRespectingGap(t *testing.T) {
	vals := make([]float64, 60)
	for _, peak := range []int{5, 25, 45} {
		for d := -1; d <= 1; d++ {
			vals[peak+d] = 0.95
		}
	}
	hm := gridHeatmap(vals)
	segs, _ := Detect(hm, 120, types.DetectOptions{MinGapS: 10, MinDurationS: 5, MaxDurationS: 20, TopN: 5})
	require.NotEmpty(t, segs)
	for i := 1; i < len(segs); i++ {
		assert.GreaterOrEqual(t, segs[i].StartS, segs[i-1].EndS)
	}
	for i := range segs {
		if i == 0 {
			continue
		}
		assert.True(t, segs[i].StartS >= segs[i-1].StartS)
	}
}

func TestDetect_RelaxesGapWhenUnderTopN(t *testing.T) {
	vals := make([]float64, 40)
	for _, peak := range []int{2, 8, 14, 20, 26} {
		vals[peak] = 0.9
	}
	hm := gridHeatmap(vals)
	segs, meta := Detect(hm, 80, types.DetectOptions{MinGapS: 40, MinDurationS: 4, MaxDurationS: 10, TopN: 5})
	assert.True(t, meta.Relaxed || len(segs) < 5)
	for i := 1; i < len(segs); i++ {
		assert.GreaterOrEqual(t, segs[i].StartS, segs[i-1].EndS)
	}
}

func TestResize_ExpandsAndClampsAtBoundary(t *testing.T) {
	start, end := resize(1.0, 10.0, 100.0)
	assert.InDelta(t, 0.0, start, 1e-9)
	assert.InDelta(t, 10.0, end, 1e-9)
}

func TestResize_ShiftsOppositeEdgeNearEnd(t *testing.T) {
	start, end := resize(99.0, 10.0, 100.0)
	assert.InDelta(t, 100.0, end, 1e-9)
	assert.InDelta(t, 90.0, start, 1e-9)
}

func TestGreedySelect_RejectsOverlap(t *testing.T) {
	candidates := []types.Candidate{
		{StartS: 0, EndS: 10, Score: 2},
		{StartS: 5, EndS: 15, Score: 1},
	}
	selected := greedySelect(candidates, 5, 1)
	assert.Len(t, selected, 1)
}

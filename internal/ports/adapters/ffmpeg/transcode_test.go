package ffmpeg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clipforge/clipforge/internal/types"
)

func TestCrfForQuality_MapsEachTier(t *testing.T) {
	crf, scale := crfForQuality(types.Quality1080)
	assert.Equal(t, 18, crf)
	assert.Equal(t, "", scale)

	crf, scale = crfForQuality(types.Quality720)
	assert.Equal(t, 20, crf)
	assert.Equal(t, "-2:720", scale)

	crf, scale = crfForQuality(types.Quality480)
	assert.Equal(t, 22, crf)
	assert.Equal(t, "-2:480", scale)
}

func TestCropModeFilter_CenterUsesStaticCrop(t *testing.T) {
	f := cropModeFilter(types.CropCenter, nil, 0, "")
	assert.Contains(t, f, "crop=ih*9/16:ih")
}

func TestCropModeFilter_SmartReframeFallsBackWhenNoCrops(t *testing.T) {
	f := cropModeFilter(types.CropSmartReframe, nil, 0, "")
	assert.Contains(t, f, "crop=ih*9/16:ih")
}

func TestCropModeFilter_SmartReframeEmbedsExpression(t *testing.T) {
	crops := []types.CropKeyframe{
		{TimeS: 0, X: 100},
		{TimeS: 2, X: 300},
	}
	f := cropModeFilter(types.CropSmartReframe, crops, 0, "")
	assert.True(t, strings.Contains(f, "between(t,0,2)"))
}

func TestSmartCropExpr_SingleKeyframeIsConstant(t *testing.T) {
	expr := smartCropExpr([]types.CropKeyframe{{TimeS: 5, X: 42}}, 0)
	assert.Equal(t, "42", expr)
}

func TestSmartCropExpr_RebasesAbsoluteTimeBySeek(t *testing.T) {
	crops := []types.CropKeyframe{
		{TimeS: 10, X: 0},
		{TimeS: 12, X: 200},
	}
	expr := smartCropExpr(crops, 10)
	assert.True(t, strings.Contains(expr, "between(t,0,2)"), expr)
}

func TestSmartCropExpr_EmptyReturnsEmptyString(t *testing.T) {
	assert.Equal(t, "", smartCropExpr(nil, 0))
}

func TestOutputScale_DefaultsToVerticalNineBySixteen(t *testing.T) {
	assert.Equal(t, "ih*9/16:ih", outputScale(""))
	assert.Equal(t, "-2:720", outputScale("-2:720"))
}

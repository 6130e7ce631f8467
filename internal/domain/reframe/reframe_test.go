package reframe

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brightStripImage builds a w x h frame whose columns [stripStart,
// stripEnd) are white and the rest black, so the best-window picker
// has an unambiguous answer.
func brightStripImage(w, h, stripStart, stripEnd int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x >= stripStart && x < stripEnd {
				img.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			} else {
				img.Set(x, y, color.RGBA{R: 0, G: 0, B: 0, A: 255})
			}
		}
	}
	return img
}

func TestAnalyze_PicksBrightRegion(t *testing.T) {
	w, h := 1000, 500
	frame := brightStripImage(w, h, 800, 1000)
	keyframes := Analyze([]image.Image{frame}, 0, 300, 533)
	require.Len(t, keyframes, 1)
	assert.Greater(t, keyframes[0].X, w/2)
}

func TestAnalyze_StaticCenterCropWhenAlreadyTall(t *testing.T) {
	frame := brightStripImage(400, 900, 0, 400)
	keyframes := Analyze([]image.Image{frame}, 5, 300, 533)
	require.Len(t, keyframes, 1)
	assert.Equal(t, 5.0, keyframes[0].TimeS)
}

func TestAnalyze_EmptyFramesReturnsNil(t *testing.T) {
	keyframes := Analyze(nil, 0, 300, 533)
	assert.Nil(t, keyframes)
}

func TestSmooth_AveragesNeighbors(t *testing.T) {
	xs := []int{0, 0, 100, 0, 0}
	out := smooth(xs, 5)
	assert.Equal(t, 20, out[2])
}

// Package reframe implements the smart-reframe crop analysis step of
// the job orchestrator: per-frame five-strip brightness+saturation
// scoring, best-window selection, and centered temporal smoothing into
// a piecewise-linear dynamic crop.
package reframe

import (
	"image"
	"math"

	"github.com/clipforge/clipforge/internal/types"
)

const (
	numStrips    = 5
	windowStrips = 3
	centralBias  = 0.15
	smoothWindow = 5
	sampleFPS    = 2.0
	targetAspect = 9.0 / 16.0
)

// Analyze scores every sampled frame and returns the smoothed,
// piecewise-linear dynamic crop keyframes, one per frame, each naming
// the left-edge X of the outputWidth-wide crop window at that frame's
// timestamp. If the source frame is already at or taller than the
// target 9:16 aspect ratio, a single static center-crop keyframe is
// returned.
func Analyze(frames []image.Image, startS float64, outputWidth, outputHeight int) []types.CropKeyframe {
	if len(frames) == 0 {
		return nil
	}
	bounds := frames[0].Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcH == 0 {
		return nil
	}
	if float64(srcW)/float64(srcH) <= targetAspect {
		return []types.CropKeyframe{{TimeS: startS, X: centerX(srcW, outputWidth)}}
	}

	rawX := make([]int, len(frames))
	for i, f := range frames {
		rawX[i] = bestWindowX(f, outputWidth)
	}
	smoothedX := smooth(rawX, smoothWindow)

	keyframes := make([]types.CropKeyframe, len(frames))
	for i, x := range smoothedX {
		t := startS + float64(i)/sampleFPS
		keyframes[i] = types.CropKeyframe{TimeS: t, X: x}
	}
	return keyframes
}

// bestWindowX scores numStrips equal-width vertical strips of the
// frame by brightness+saturation (with a slight bias toward the
// center strips), then picks the contiguous windowStrips-wide run with
// the highest summed score and returns the left edge of an
// outputWidth-wide crop centered on that window.
func bestWindowX(img image.Image, outputWidth int) int {
	bounds := img.Bounds()
	w := bounds.Dx()
	stripW := w / numStrips
	if stripW == 0 {
		return centerX(w, outputWidth)
	}

	scores := make([]float64, numStrips)
	mid := float64(numStrips-1) / 2
	for s := 0; s < numStrips; s++ {
		x0 := bounds.Min.X + s*stripW
		x1 := x0 + stripW
		if s == numStrips-1 {
			x1 = bounds.Max.X
		}
		score := stripScore(img, x0, x1, bounds.Min.Y, bounds.Max.Y)
		bias := 1 - centralBias*math.Abs(float64(s)-mid)/mid
		scores[s] = score * bias
	}

	bestStart, bestScore := 0, -1.0
	for s := 0; s+windowStrips <= numStrips; s++ {
		sum := 0.0
		for k := s; k < s+windowStrips; k++ {
			sum += scores[k]
		}
		if sum > bestScore {
			bestScore, bestStart = sum, s
		}
	}

	windowCenterX := bounds.Min.X + bestStart*stripW + (windowStrips*stripW)/2
	x := windowCenterX - outputWidth/2
	if x < bounds.Min.X {
		x = bounds.Min.X
	}
	if x+outputWidth > bounds.Max.X {
		x = bounds.Max.X - outputWidth
	}
	if x < bounds.Min.X {
		x = bounds.Min.X
	}
	return x
}

// stripScore averages normalized brightness and saturation over every
// pixel in [x0,x1)x[y0,y1), sampled on a coarse grid to keep the cost
// bounded for high-resolution source frames.
func stripScore(img image.Image, x0, x1, y0, y1 int) float64 {
	const stepMax = 64
	stepX := 1
	if dx := x1 - x0; dx > stepMax {
		stepX = dx / stepMax
	}
	stepY := 1
	if dy := y1 - y0; dy > stepMax {
		stepY = dy / stepMax
	}

	var sum float64
	var n int
	for y := y0; y < y1; y += stepY {
		for x := x0; x < x1; x += stepX {
			r, g, b, _ := img.At(x, y).RGBA()
			nr, ng, nb := float64(r)/65535, float64(g)/65535, float64(b)/65535
			sum += brightness(nr, ng, nb) + saturation(nr, ng, nb)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func brightness(r, g, b float64) float64 {
	return 0.299*r + 0.587*g + 0.114*b
}

func saturation(r, g, b float64) float64 {
	maxV := math.Max(r, math.Max(g, b))
	minV := math.Min(r, math.Min(g, b))
	if maxV == 0 {
		return 0
	}
	return (maxV - minV) / maxV
}

// smooth applies a centered moving average over w frames (fewer at the
// edges) to the per-frame crop X sequence, rounding back to int.
func smooth(xs []int, w int) []int {
	radius := (w - 1) / 2
	out := make([]int, len(xs))
	for i := range xs {
		lo := i - radius
		if lo < 0 {
			lo = 0
		}
		hi := i + radius
		if hi >= len(xs) {
			hi = len(xs) - 1
		}
		sum, n := 0, 0
		for j := lo; j <= hi; j++ {
			sum += xs[j]
			n++
		}
		out[i] = int(math.Round(float64(sum) / float64(n)))
	}
	return out
}

func centerX(srcW, outputWidth int) int {
	x := (srcW - outputWidth) / 2
	if x < 0 {
		x = 0
	}
	return x
}

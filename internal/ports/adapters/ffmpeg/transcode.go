package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/clipforge/clipforge/internal/types"
)

// crfForQuality maps the output quality tier to an encode CRF, lower
// meaning higher quality. 1080p keeps the veryfast/18 settings; the
// lower tiers trade a little quality for smaller files.
func crfForQuality(q types.Quality) (crf int, scale string) {
	switch q {
	case types.Quality720:
		return 20, "-2:720"
	case types.Quality480:
		return 22, "-2:480"
	default:
		return 18, ""
	}
}

// Transcode renders one output clip: it seeks to seekS for durationS
// seconds, applies the crop-mode filter for mode, optionally burns in
// an ASS subtitle track, and encodes to H.264/AAC with a veryfast
// preset.
func (a *Adapter) Transcode(ctx context.Context, in string, seekS, durationS float64, mode types.CropMode, crops []types.CropKeyframe, quality types.Quality, burnASS string, outMP4 string) error {
	args := []string{
		"-y",
		"-ss", fmtSeconds(seekS),
		"-t", fmtSeconds(durationS),
		"-i", in,
	}

	crf, scale := crfForQuality(quality)
	var filters []string
	if cropFilter := cropModeFilter(mode, crops, seekS, scale); cropFilter != "" {
		filters = append(filters, cropFilter)
	} else if scale != "" {
		filters = append(filters, "scale="+scale)
	}
	if burnASS != "" {
		filters = append(filters, "subtitles="+escapeFilterPath(burnASS))
	}
	if len(filters) > 0 {
		args = append(args, "-vf", strings.Join(filters, ","))
	}

	args = append(args,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-profile:v", "high",
		"-pix_fmt", "yuv420p",
		"-crf", fmt.Sprintf("%d", crf),
		"-c:a", "aac",
		"-b:a", "192k",
		"-ar", "44100",
		"-movflags", "+faststart",
		outMP4,
	)

	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg transcode: %w\n%s", err, string(b))
	}
	return nil
}

// cropModeFilter builds the -vf fragment for the given crop strategy.
// For center/blur_pad/letterbox the crop geometry is static per clip;
// for smart_reframe it walks the crop keyframes and emits a piecewise
// linear crop-x expression clamped to the source bounds, rebasing each
// keyframe's absolute timestamp to be relative to seekS.
func cropModeFilter(mode types.CropMode, crops []types.CropKeyframe, seekS float64, scale string) string {
	targetH := "ih"
	targetW := "ih*9/16"

	switch mode {
	case types.CropCenter:
		return fmt.Sprintf("crop=%s:%s,scale=%s", targetW, targetH, outputScale(scale))
	case types.CropBlurPad:
		return fmt.Sprintf(
			"split[main][bg];[bg]scale=-2:%s,boxblur=20:5,crop=%s:%s[bg];[main]scale=%s:-2[fg];[bg][fg]overlay=(W-w)/2:(H-h)/2,scale=%s",
			targetH, targetW, targetH, targetW, outputScale(scale),
		)
	case types.CropLetterbox:
		return fmt.Sprintf(
			"scale=%s:-2,pad=%s:ih*16/9:(ow-iw)/2:(oh-ih)/2:black,scale=%s",
			targetW, targetW, outputScale(scale),
		)
	case types.CropSmartReframe:
		expr := smartCropExpr(crops, seekS)
		if expr == "" {
			return fmt.Sprintf("crop=%s:%s,scale=%s", targetW, targetH, outputScale(scale))
		}
		return fmt.Sprintf("crop=%s:%s:%s:0,scale=%s", targetW, targetH, expr, outputScale(scale))
	default:
		return ""
	}
}

func outputScale(scale string) string {
	if scale == "" {
		return "ih*9/16:ih"
	}
	return scale
}

// smartCropExpr builds an ffmpeg between()-chained expression
// selecting the piecewise-linear interpolation between consecutive
// crop keyframes at the current output timestamp t.
func smartCropExpr(crops []types.CropKeyframe, seekS float64) string {
	if len(crops) == 0 {
		return ""
	}
	if len(crops) == 1 {
		return fmt.Sprintf("%d", crops[0].X)
	}

	var b strings.Builder
	for i := 0; i < len(crops)-1; i++ {
		t0 := crops[i].TimeS - seekS
		t1 := crops[i+1].TimeS - seekS
		x0, x1 := crops[i].X, crops[i+1].X
		if t1 <= t0 {
			continue
		}
		fmt.Fprintf(&b, "if(between(t,%g,%g),%d+(%d-%d)*(t-%g)/%g,",
			t0, t1, x0, x1, x0, t0, t1-t0)
	}
	fmt.Fprintf(&b, "%d", crops[len(crops)-1].X)
	for range crops[:len(crops)-1] {
		b.WriteString(")")
	}
	return b.String()
}

package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os/exec"
)

// ExtractFrames samples frames starting at startS at fps frames per
// second, scaled to scaleWidth wide (height kept proportional), and
// decodes the resulting PNG stream into in-memory images for the
// reframe analyzer to score.
func (a *Adapter) ExtractFrames(ctx context.Context, path string, startS, fps float64, scaleWidth int) ([]image.Image, error) {
	args := []string{"-ss", fmtSeconds(startS), "-i", path,
		"-vf", fmt.Sprintf("fps=%g,scale=%d:-2", fps, scaleWidth),
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	}
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg extract frames stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg extract frames start: %w", err)
	}

	r := bufio.NewReader(stdout)
	var frames []image.Image
	for {
		img, err := png.Decode(r)
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			_ = cmd.Wait()
			return frames, fmt.Errorf("ffmpeg extract frames decode: %w", err)
		}
		frames = append(frames, img)
	}
	_ = cmd.Wait()
	return frames, nil
}

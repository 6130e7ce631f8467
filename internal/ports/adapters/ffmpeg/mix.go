package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// MixAudio re-encodes clipPath's audio as a mix of its own track
// (unity gain) and every dubWavs stream (each already delayed to its
// own start offset, summed at dubGain), keeping the video stream as a
// stream copy since only audio changes.
func (a *Adapter) MixAudio(ctx context.Context, clipPath string, dubWavs []string, dubGain float64, outMP4 string) error {
	if len(dubWavs) == 0 {
		return nil
	}

	args := []string{"-y", "-i", clipPath}
	for _, w := range dubWavs {
		args = append(args, "-i", w)
	}

	var inputs []string
	inputs = append(inputs, "[0:a]volume=1.0[a0]")
	var mixLabels []string
	mixLabels = append(mixLabels, "[a0]")
	for i := range dubWavs {
		label := fmt.Sprintf("[d%d]", i)
		inputs = append(inputs, fmt.Sprintf("[%d:a]volume=%g%s", i+1, dubGain, label))
		mixLabels = append(mixLabels, label)
	}
	filter := strings.Join(inputs, ";") + ";" +
		strings.Join(mixLabels, "") + fmt.Sprintf("amix=inputs=%d:duration=first:dropout_transition=0[aout]", len(mixLabels))

	args = append(args,
		"-filter_complex", filter,
		"-map", "0:v",
		"-map", "[aout]",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-movflags", "+faststart",
		outMP4,
	)

	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg mix dub audio: %w\n%s", err, string(b))
	}
	return nil
}

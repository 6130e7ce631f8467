// Package ttscli implements the Synthesizer port against a
// command-line text-to-speech binary (espeak-ng by default, the same
// tool the original project's own integration test fixtures use to
// generate synthetic speech audio), then rewrites the raw utterance
// into a silence-padded WAV starting at startOffsetS so the dubbing
// step in the job orchestrator can mix it directly onto the original
// audio track without further timing math.
package ttscli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

type Adapter struct {
	bin     string
	ffmpeg  string
	voice   string
	workDir string
}

func New(binPath, ffmpegPath, voice, workDir string) *Adapter {
	if binPath == "" {
		binPath = "espeak-ng"
	}
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Adapter{bin: binPath, ffmpeg: ffmpegPath, voice: voice, workDir: workDir}
}

// Synthesize renders text to speech and writes a WAV to outWav whose
// first startOffsetS seconds are silence, so the result can be mixed
// directly onto a clip's original audio at the entry's timestamp.
func (a *Adapter) Synthesize(ctx context.Context, text string, startOffsetS float64, outWav string) error {
	if text == "" {
		return fmt.Errorf("ttscli: empty text")
	}

	raw, err := os.CreateTemp(a.workDir, "tts_raw_*.wav")
	if err != nil {
		return fmt.Errorf("ttscli: create temp file: %w", err)
	}
	rawPath := raw.Name()
	raw.Close()
	defer os.Remove(rawPath)

	args := []string{"-w", rawPath}
	if a.voice != "" {
		args = append(args, "-v", a.voice)
	}
	args = append(args, text)

	cmd := exec.CommandContext(ctx, a.bin, args...)
	if b, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("espeak-ng synthesize: %w\n%s", err, string(b))
	}

	return a.padSilence(ctx, rawPath, startOffsetS, outWav)
}

// padSilence prepends startOffsetS seconds of silence to rawPath using
// ffmpeg's adelay filter so sample rate and channel layout carry over
// from the source utterance unchanged.
func (a *Adapter) padSilence(ctx context.Context, rawPath string, startOffsetS float64, outWav string) error {
	if err := os.MkdirAll(filepath.Dir(outWav), 0o755); err != nil {
		return fmt.Errorf("ttscli: create output dir: %w", err)
	}
	delayMs := int64(startOffsetS * 1000)
	if delayMs < 0 {
		delayMs = 0
	}
	filter := fmt.Sprintf("adelay=%d:all=1", delayMs)

	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", rawPath,
		"-af", filter,
		outWav,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg pad silence: %w\n%s", err, string(b))
	}
	return nil
}

package api

import (
	"context"
	"image"
	"os"
	"time"

	"github.com/clipforge/clipforge/internal/ports"
	"github.com/clipforge/clipforge/internal/types"
)

type fakeDownloader struct {
	info        ports.VideoInfo
	probeErr    error
	heatmap     []ports.HeatmapPoint
	heatmapOK   bool
	subtitles   []types.SubtitleEntry
	subtitlesOK bool
}

func (f *fakeDownloader) Probe(ctx context.Context, url string) (ports.VideoInfo, error) {
	return f.info, f.probeErr
}
func (f *fakeDownloader) Heatmap(ctx context.Context, url string) ([]ports.HeatmapPoint, bool, error) {
	return f.heatmap, f.heatmapOK, nil
}
func (f *fakeDownloader) Comments(ctx context.Context, url string, max int) ([]ports.Comment, error) {
	return nil, nil
}
func (f *fakeDownloader) FetchPartial(ctx context.Context, url string, startS, endS float64, q types.Quality) (string, float64, error) {
	return "/tmp/partial.mp4", startS, nil
}
func (f *fakeDownloader) FetchFull(ctx context.Context, url string, q types.Quality) (string, error) {
	return "/tmp/full.mp4", nil
}
func (f *fakeDownloader) Subtitles(ctx context.Context, url string) ([]types.SubtitleEntry, bool, error) {
	return f.subtitles, f.subtitlesOK, nil
}

type fakeTranscoder struct{}

func (f *fakeTranscoder) ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	return 0, nil
}
func (f *fakeTranscoder) HasAudioTrack(ctx context.Context, path string) (bool, error) {
	return true, nil
}
func (f *fakeTranscoder) AudioRMSWindows(ctx context.Context, path string, windowS float64) ([]float64, error) {
	return nil, nil
}
func (f *fakeTranscoder) SilenceDetect(ctx context.Context, path string, noiseDB, minDurS float64) ([]ports.SilenceInterval, error) {
	return nil, nil
}
func (f *fakeTranscoder) SceneDetect(ctx context.Context, path string, threshold, fps float64, scaleWidth int, timeout time.Duration) ([]ports.SceneEvent, error) {
	return nil, nil
}
func (f *fakeTranscoder) ExtractFrames(ctx context.Context, path string, startS, fps float64, scaleWidth int) ([]image.Image, error) {
	return nil, nil
}
func (f *fakeTranscoder) ExtractAudioMono16k(ctx context.Context, in string, startS, endS float64, outWav string) error {
	return os.WriteFile(outWav, []byte("wav"), 0o644)
}
func (f *fakeTranscoder) Transcode(ctx context.Context, in string, seekS, durationS float64, mode types.CropMode, crops []types.CropKeyframe, q types.Quality, burnASS, outMP4 string) error {
	return os.WriteFile(outMP4, []byte("mp4"), 0o644)
}
func (f *fakeTranscoder) MixAudio(ctx context.Context, clipPath string, dubWavs []string, dubGain float64, outMP4 string) error {
	return os.WriteFile(outMP4, []byte("dubbed"), 0o644)
}

type fakeTranscriber struct{}

func (f *fakeTranscriber) Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error) {
	return types.Transcript{}, nil
}

type fakeTranslator struct{}

func (f *fakeTranslator) Translate(ctx context.Context, entries []types.SubtitleEntry, targetLang, mode string) ([]types.SubtitleEntry, error) {
	return entries, nil
}

type fakeSynthesizer struct{}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text string, startOffsetS float64, outWav string) error {
	return os.WriteFile(outWav, []byte("wav"), 0o644)
}

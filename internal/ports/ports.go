// Package ports declares the external-collaborator contracts the core
// pipeline depends on: one interface per external tool or service
// (Downloader, Transcoder, Transcriber, Translator, Synthesizer). Every
// adapter under
// internal/ports/adapters implements one of these against a real
// binary; tests implement them with fakes.
package ports

import (
	"context"
	"image"
	"time"

	"github.com/clipforge/clipforge/internal/types"
)

// VideoInfo is what the downloader can tell us about a URL before any
// bytes are fetched.
type VideoInfo struct {
	DurationS float64
	Title     string
}

// HeatmapPoint is one raw viewer-engagement sample as reported by the
// downloader, before mapping into types.IntensityPoint.
type HeatmapPoint struct {
	StartS float64
	EndS   float64
	Value  float64
}

// Comment is a single fetched comment; the comment probe scans Text
// for timestamp tokens, and TimeStamp carries the comment's post time.
type Comment struct {
	Text      string
	TimeStamp string
}

// SilenceInterval is a detected low-energy span.
type SilenceInterval struct {
	StartS float64
	EndS   float64
}

// SceneEvent is a single detected scene-change timestamp.
type SceneEvent struct {
	TimeS float64
}

// Downloader abstracts the external tool that resolves a public video
// URL into engagement data, comments, subtitles, and media bytes.
// Every method must be safe to call concurrently for distinct jobs.
type Downloader interface {
	Probe(ctx context.Context, url string) (VideoInfo, error)

	// Heatmap returns the viewer-engagement curve if the platform
	// publishes one; ok is false when the data is unavailable (not an
	// not an error condition).
	Heatmap(ctx context.Context, url string) (points []HeatmapPoint, ok bool, err error)

	// Comments fetches up to max comments for timestamp mining.
	Comments(ctx context.Context, url string, max int) ([]Comment, error)

	// FetchPartial retrieves [startS, endS] at the resolution implied
	// by quality. offsetS is the actual buffered start (<= startS) the
	// caller must subtract when seeking into the artifact.
	FetchPartial(ctx context.Context, url string, startS, endS float64, quality types.Quality) (path string, offsetS float64, err error)

	// FetchFull retrieves the entire video; used as the job-scoped
	// fallback when partial fetch is unsupported.
	FetchFull(ctx context.Context, url string, quality types.Quality) (path string, err error)

	// Subtitles returns cached full-video subtitles if the platform has
	// them; ok is false otherwise.
	Subtitles(ctx context.Context, url string) (entries []types.SubtitleEntry, ok bool, err error)
}

// Transcoder abstracts the external media tool (ffmpeg-shaped) used
// for probing, signal extraction, frame sampling, and final transcode.
type Transcoder interface {
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
	HasAudioTrack(ctx context.Context, path string) (bool, error)

	// AudioRMSWindows runs one pass producing a mean loudness in dB for
	// each windowS-second window.
	AudioRMSWindows(ctx context.Context, path string, windowS float64) ([]float64, error)

	SilenceDetect(ctx context.Context, path string, noiseDB float64, minDurS float64) ([]SilenceInterval, error)

	// SceneDetect reports scene-change timestamps at the given
	// threshold, downsampled per the caller's length-class choice of
	// fps/scale.
	SceneDetect(ctx context.Context, path string, threshold float64, fps float64, scaleWidth int, timeout time.Duration) ([]SceneEvent, error)

	// ExtractFrames samples frames at fps starting at startS, scaled to
	// scaleWidth, for the smart-reframe analysis.
	ExtractFrames(ctx context.Context, path string, startS float64, fps float64, scaleWidth int) ([]image.Image, error)

	ExtractAudioMono16k(ctx context.Context, in string, startS, endS float64, outWav string) error

	// Transcode renders a single MP4 clip. seekS is the offset into in
	// (already adjusted for a partial-fetch buffer by the caller).
	// crops is only consulted when mode is types.CropSmartReframe.
	Transcode(ctx context.Context, in string, seekS, durationS float64, mode types.CropMode, crops []types.CropKeyframe, quality types.Quality, burnASS string, outMP4 string) error

	// MixAudio overlays dubWavs (each already silence-padded to its own
	// start offset) onto clipPath's existing audio at dubGain, keeping
	// the video stream untouched, for the dubbing enhancement.
	MixAudio(ctx context.Context, clipPath string, dubWavs []string, dubGain float64, outMP4 string) error
}

// Transcriber abstracts the speech-recognition capability.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error)
}

// Translator abstracts the machine-translation capability over caption
// cues.
type Translator interface {
	Translate(ctx context.Context, entries []types.SubtitleEntry, targetLang, mode string) ([]types.SubtitleEntry, error)
}

// Synthesizer abstracts text-to-speech for dubbing.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, startOffsetS float64, outWav string) error
}

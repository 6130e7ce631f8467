// Package config holds the server's full dependency surface as a
// typed struct, generalizing the original one-shot pipeline
// config/validate pattern from a single-invocation CLI to a
// long-running API server.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/clipforge/clipforge/internal/ports/adapters/openrouter"
)

// Config is the full set of knobs the server needs. Populated by the
// cobra root command from flags and .env-backed environment variables.
type Config struct {
	Addr string

	OutDir  string
	TempDir string

	DownloaderPath string
	FFmpegPath     string
	FFprobePath    string

	WhisperBin   string
	WhisperModel string

	TTSBin   string
	TTSVoice string

	OpenRouterAPIKey       string
	OpenRouterModel        string
	OpenRouterBaseURL      string
	OpenRouterAllowedHosts []string

	MaxBatchURLs int

	// ListenerBufferSize bounds how many undelivered progress events a
	// slow SSE listener may queue before the hub detaches it.
	ListenerBufferSize int

	JobTimeout time.Duration
}

// Default returns a Config with every non-secret field filled in.
func Default() Config {
	return Config{
		Addr:               ":8080",
		OutDir:             "output",
		TempDir:            "temp",
		DownloaderPath:     "yt-dlp",
		FFmpegPath:         "ffmpeg",
		FFprobePath:        "ffprobe",
		WhisperBin:         ".cache/bin/whisper.cpp",
		WhisperModel:       ".cache/models/ggml-base.bin",
		TTSBin:             "espeak-ng",
		TTSVoice:           "en-us",
		OpenRouterModel:    "anthropic/claude-3.5-sonnet",
		OpenRouterBaseURL:  "https://openrouter.ai",
		MaxBatchURLs:       20,
		ListenerBufferSize: 8,
		JobTimeout:         3 * time.Hour,
	}
}

// Validate fails fast on anything that would make every job fail the
// same way.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("listen address is empty")
	}
	if c.OutDir == "" {
		return errors.New("output dir is empty")
	}
	if c.TempDir == "" {
		return errors.New("temp dir is empty")
	}
	if c.WhisperModel == "" {
		return fmt.Errorf("whisper model path is required")
	}
	if c.MaxBatchURLs <= 0 {
		return fmt.Errorf("max batch urls must be > 0")
	}
	if c.OpenRouterAPIKey != "" {
		if err := openrouter.ValidateBaseURL(c.OpenRouterBaseURL, c.OpenRouterAllowedHosts); err != nil {
			return err
		}
	}
	return nil
}

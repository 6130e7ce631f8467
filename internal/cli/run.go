package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clipforge/clipforge/internal/api"
	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/job"
	"github.com/clipforge/clipforge/internal/logging"
	"github.com/clipforge/clipforge/internal/ports/adapters/ffmpeg"
	"github.com/clipforge/clipforge/internal/ports/adapters/openrouter"
	"github.com/clipforge/clipforge/internal/ports/adapters/ttscli"
	"github.com/clipforge/clipforge/internal/ports/adapters/whispercpp"
	"github.com/clipforge/clipforge/internal/ports/adapters/ytdlp"
)

func serve(cmd *cobra.Command) error {
	cfg := config.Default()
	bindFlags(cmd, &cfg)
	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}

	pretty := os.Getenv("LOG_PRETTY") != "false"
	logger := logging.New(pretty, zerolog.InfoLevel)

	deps := job.Deps{
		Downloader:  ytdlp.New(cfg.DownloaderPath, cfg.TempDir),
		Transcoder:  ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath),
		Transcriber: whispercpp.New(cfg.WhisperBin, cfg.WhisperModel),
		Translator:  openrouter.New(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL),
		Synthesizer: ttscli.New(cfg.TTSBin, cfg.FFmpegPath, cfg.TTSVoice, cfg.TempDir),
	}

	hub := job.NewHub(cfg.ListenerBufferSize, logger)
	orch := job.NewOrchestrator(deps, cfg.OutDir, cfg.TempDir, logger)
	srv := api.NewServer(deps, hub, orch, cfg.OutDir, cfg.TempDir, cfg.MaxBatchURLs, logger)

	httpServer := &http.Server{
		Addr:               cfg.Addr,
		Handler:            srv.Router(),
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("listening")
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-sigCh:
		logger.Info().Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(ctx)
	}
	return nil
}

func bindFlags(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		cfg.Addr = v
	}
	if v, _ := cmd.Flags().GetString("out"); v != "" {
		cfg.OutDir = v
	}
	if v, _ := cmd.Flags().GetString("temp"); v != "" {
		cfg.TempDir = v
	}
	if v, _ := cmd.Flags().GetInt("max-batch"); v > 0 {
		cfg.MaxBatchURLs = v
	}
}

func applyEnvOverrides(cfg *config.Config) {
	cfg.OpenRouterAPIKey = os.Getenv("OPENROUTER_API_KEY")
	if v := os.Getenv("OPENROUTER_MODEL"); v != "" {
		cfg.OpenRouterModel = v
	}
	if v := os.Getenv("OPENROUTER_BASE_URL"); v != "" {
		cfg.OpenRouterBaseURL = v
	}
	if v := os.Getenv("FFMPEG_PATH"); v != "" {
		cfg.FFmpegPath = v
	}
	if v := os.Getenv("FFPROBE_PATH"); v != "" {
		cfg.FFprobePath = v
	}
	if v := os.Getenv("YTDLP_PATH"); v != "" {
		cfg.DownloaderPath = v
	}
	if v := os.Getenv("WHISPER_BIN"); v != "" {
		cfg.WhisperBin = v
	}
	if v := os.Getenv("WHISPER_MODEL"); v != "" {
		cfg.WhisperModel = v
	}
	if v := os.Getenv("TTS_BIN"); v != "" {
		cfg.TTSBin = v
	}
}

// Package job implements the job orchestrator and progress hub: the
// per-clip state machine, its per-job caches, and the pub-sub
// fan-out of JobProgress events to attached listeners.
package job

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/clipforge/clipforge/internal/apierr"
	"github.com/clipforge/clipforge/internal/logging"
	"github.com/clipforge/clipforge/internal/ports"
	"github.com/clipforge/clipforge/internal/types"
)

// Deps is the orchestrator's external-collaborator surface, one
// adapter per port.
type Deps struct {
	Downloader  ports.Downloader
	Transcoder  ports.Transcoder
	Transcriber ports.Transcriber
	Translator  ports.Translator
	Synthesizer ports.Synthesizer
}

// Orchestrator runs the per-clip pipeline for every segment in a
// CutSpec, publishing progress through the Job the Hub handed it.
type Orchestrator struct {
	deps    Deps
	outDir  string
	tempDir string
	log     zerolog.Logger
}

func NewOrchestrator(deps Deps, outDir, tempDir string, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		deps:    deps,
		outDir:  outDir,
		tempDir: tempDir,
		log:     logging.Component(logger, "orchestrator"),
	}
}

// RunJob steps every segment in spec through download, analysis,
// transcode, and captioning, sequentially. A per-clip failure in fetch
// or transcode is non-fatal to the job: the clip is skipped and the
// remaining segments still run. Cancellation observed between clips
// stops the loop and reports the job as errored with message
// "cancelled".
func (o *Orchestrator) RunJob(ctx context.Context, j *Job, spec types.CutSpec) {
	caches := NewCaches()

	log := o.log.With().Str("jobId", j.ID).Str("url", spec.URL).Logger()

	jobTempDir := filepath.Join(o.tempDir, j.ID)
	if err := os.MkdirAll(jobTempDir, 0o755); err != nil {
		j.Publish(types.JobProgress{Status: types.StatusError, Error: fmt.Sprintf("prepare temp dir: %v", err)})
		return
	}
	defer os.RemoveAll(jobTempDir)

	if err := os.MkdirAll(o.outDir, 0o755); err != nil {
		j.Publish(types.JobProgress{Status: types.StatusError, Error: fmt.Sprintf("prepare output dir: %v", err)})
		return
	}

	total := len(spec.Segments)
	var files []string
	var clipWarnings []string

	for i, seg := range spec.Segments {
		if ctx.Err() != nil {
			kind, msg := apierr.Cancelled, "cancelled"
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				kind, msg = apierr.Timeout, "timed out"
			}
			j.Publish(types.JobProgress{Status: types.StatusError, CurrentClip: i, TotalClips: total, Error: apierr.New(kind, msg).Error()})
			return
		}

		j.Publish(types.JobProgress{
			Status:      types.StatusProcessing,
			CurrentClip: i + 1,
			TotalClips:  total,
			Message:     fmt.Sprintf("Processing clip %d/%d", i+1, total),
		})

		res, err := o.processClip(ctx, j, spec, seg, i, total, jobTempDir, caches, log)
		if err != nil {
			log.Warn().Err(err).Int("clip", i+1).Msg("clip failed, continuing with remaining segments")
			continue
		}
		files = append(files, filepath.Base(res.file))
		clipWarnings = append(clipWarnings, res.warnings...)
	}

	msg := fmt.Sprintf("done, %d/%d clips produced", len(files), total)
	if len(clipWarnings) > 0 {
		msg += fmt.Sprintf(" (%d warnings)", len(clipWarnings))
	}
	j.Publish(types.JobProgress{
		Status:      types.StatusDone,
		CurrentClip: total,
		TotalClips:  total,
		Message:     msg,
		Files:       files,
	})
}

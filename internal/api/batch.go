package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/clipforge/clipforge/internal/apierr"
	"github.com/clipforge/clipforge/internal/domain/boundary"
	"github.com/clipforge/clipforge/internal/domain/peaks"
	"github.com/clipforge/clipforge/internal/domain/signals"
	"github.com/clipforge/clipforge/internal/job"
	"github.com/clipforge/clipforge/internal/types"
)

const batchConcurrency = 4

type batchRequest struct {
	URLs     []string              `json:"urls"`
	Settings types.AnalyzeSettings `json:"settings,omitempty"`
	CropMode types.CropMode        `json:"cropMode,omitempty"`
	Captions string                `json:"captions,omitempty"`
}

type batchResponse struct {
	BatchID   string `json:"batchId"`
	TotalUrls int    `json:"totalUrls"`
}

// handleBatch analyzes and cuts up to maxBatch URLs with bounded
// concurrency, reporting aggregate progress on the returned batch id's
// stream (served by the same hub as a per-job stream).
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.URLs) == 0 {
		writeAPIError(w, apierr.New(apierr.InputError, "urls are required"))
		return
	}
	if len(req.URLs) > s.maxBatch {
		writeAPIError(w, apierr.New(apierr.InputError, fmt.Sprintf("at most %d urls per batch", s.maxBatch)))
		return
	}

	total := len(req.URLs)
	batchID := s.hub.Submit(func(ctx context.Context, j *job.Job) {
		s.runBatch(ctx, j, req)
	})

	writeJSON(w, http.StatusAccepted, batchResponse{BatchID: batchID, TotalUrls: total})
}

func (s *Server) handleBatchProgress(w http.ResponseWriter, r *http.Request) {
	s.handleJobProgress(w, r)
}

func (s *Server) runBatch(ctx context.Context, batchJob *job.Job, req batchRequest) {
	total := len(req.URLs)
	sem := semaphore.NewWeighted(batchConcurrency)
	g, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	var jobIDs []string
	var completed int

	batchJob.Publish(types.JobProgress{
		Status:     types.StatusAnalyzing,
		TotalClips: total,
		Message:    fmt.Sprintf("starting batch of %d urls", total),
	})

	for _, url := range req.URLs {
		url := url
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			subID := s.runBatchURL(ctx, url, req)

			mu.Lock()
			jobIDs = append(jobIDs, subID)
			completed++
			snapshot := append([]string(nil), jobIDs...)
			done := completed
			mu.Unlock()

			batchJob.Publish(types.JobProgress{
				Status:      types.StatusAnalyzing,
				CurrentClip: done,
				TotalClips:  total,
				Message:     fmt.Sprintf("processed %d/%d urls", done, total),
				Files:       snapshot,
			})
			return nil
		})
	}
	_ = g.Wait()

	mu.Lock()
	finalIDs := append([]string(nil), jobIDs...)
	finalDone := completed
	mu.Unlock()

	batchJob.Publish(types.JobProgress{
		Status:      types.StatusDone,
		CurrentClip: finalDone,
		TotalClips:  total,
		Message:     "batch complete",
		Files:       finalIDs,
	})
}

// runBatchURL analyzes one URL with default top-scoring segments and
// submits a cut job for it, returning the sub-job id. A failure at any
// stage yields an empty sub-job id rather than aborting the batch.
func (s *Server) runBatchURL(ctx context.Context, url string, req batchRequest) string {
	info, err := s.deps.Downloader.Probe(ctx, url)
	if err != nil {
		return ""
	}

	sources, silences := s.gatherSignals(ctx, url, info.DurationS)
	heatmap := signals.Combine(sources, info.DurationS, nil)
	segments, _ := peaks.Detect(heatmap, info.DurationS, req.Settings.ToOptions())
	segments = boundary.Optimize(segments, heatmap, silences, info.DurationS, req.Settings.MinDurationS, req.Settings.MaxDurationS)
	if len(segments) == 0 {
		return ""
	}

	spec := types.CutSpec{
		URL:        url,
		Segments:   segments,
		CropMode:   req.CropMode,
		Captions:   req.Captions,
		VideoTitle: info.Title,
	}

	return s.hub.Submit(func(ctx context.Context, j *job.Job) {
		s.orch.RunJob(ctx, j, spec)
	})
}

package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/clipforge/clipforge/internal/apierr"
	"github.com/clipforge/clipforge/internal/job"
	"github.com/clipforge/clipforge/internal/types"
)

type cutResponse struct {
	JobID string `json:"jobId"`
}

// handleCut submits a cut spec as a background job and returns its id
// immediately; progress is available at /api/jobs/{id}/progress.
func (s *Server) handleCut(w http.ResponseWriter, r *http.Request) {
	var spec types.CutSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil || spec.URL == "" || len(spec.Segments) == 0 {
		writeAPIError(w, apierr.New(apierr.InputError, "url and segments are required"))
		return
	}

	jobID := s.hub.Submit(func(ctx context.Context, j *job.Job) {
		s.orch.RunJob(ctx, j, spec)
	})

	writeJSON(w, http.StatusAccepted, cutResponse{JobID: jobID})
}

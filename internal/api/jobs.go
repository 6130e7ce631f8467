package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clipforge/clipforge/internal/types"
)

type jobResponse struct {
	ID       string            `json:"id"`
	Progress types.JobProgress `json:"progress"`
}

func (s *Server) handleJobGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	progress, ok := s.hub.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, jobResponse{ID: id, Progress: progress})
}

// handleJobProgress streams a job's progress as Server-Sent Events,
// replaying the latest known snapshot on attach, and closing the
// stream once a terminal status arrives.
func (s *Server) handleJobProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ch, detach, ok := s.hub.Attach(id)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	defer detach()

	flusher, canFlush := w.(http.Flusher)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for {
		select {
		case <-r.Context().Done():
			return
		case p, open := <-ch:
			if !open {
				return
			}
			body, err := json.Marshal(p)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", body)
			if canFlush {
				flusher.Flush()
			}
			if p.Status.IsTerminal() {
				return
			}
		}
	}
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipforge/clipforge/internal/job"
	"github.com/clipforge/clipforge/internal/types"
)

func withChiParam(r *http.Request, key, val string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, val)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestHandleJobGet_UnknownIDReturnsNotFound(t *testing.T) {
	s, _ := newTestServer(t, &fakeDownloader{})

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/nope", nil)
	req = withChiParam(req, "id", "nope")
	w := httptest.NewRecorder()

	s.handleJobGet(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleJobGet_ReturnsLatestProgress(t *testing.T) {
	s, _ := newTestServer(t, &fakeDownloader{})
	spec := types.CutSpec{
		URL:        "https://example.com/v",
		Segments:   []types.Segment{{ID: "s1", StartS: 0, EndS: 5}},
		CropMode:   types.CropCenter,
		Captions:   "off",
		VideoTitle: "Job Get Test",
	}
	id := s.hub.Submit(func(ctx context.Context, j *job.Job) {
		s.orch.RunJob(ctx, j, spec)
	})

	require.Eventually(t, func() bool {
		p, ok := s.hub.Get(id)
		return ok && p.Status.IsTerminal()
	}, 2*time.Second, time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/"+id, nil)
	req = withChiParam(req, "id", id)
	w := httptest.NewRecorder()

	s.handleJobGet(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp jobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.ID)
	assert.Equal(t, types.StatusDone, resp.Progress.Status)
}

func TestHandleJobProgress_StreamsAndClosesOnTerminal(t *testing.T) {
	s, _ := newTestServer(t, &fakeDownloader{})
	spec := types.CutSpec{
		URL:        "https://example.com/v",
		Segments:   []types.Segment{{ID: "s1", StartS: 0, EndS: 5}},
		CropMode:   types.CropCenter,
		Captions:   "off",
		VideoTitle: "Stream Test",
	}
	id := s.hub.Submit(func(ctx context.Context, j *job.Job) {
		s.orch.RunJob(ctx, j, spec)
	})

	require.Eventually(t, func() bool {
		p, ok := s.hub.Get(id)
		return ok && p.Status.IsTerminal()
	}, 2*time.Second, time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/"+id+"/progress", nil)
	req = withChiParam(req, "id", id)
	w := httptest.NewRecorder()

	s.handleJobProgress(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.True(t, strings.Contains(w.Body.String(), `"status":"done"`))
}

func TestHandleJobProgress_UnknownIDReturnsNotFound(t *testing.T) {
	s, _ := newTestServer(t, &fakeDownloader{})

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/nope/progress", nil)
	req = withChiParam(req, "id", "nope")
	w := httptest.NewRecorder()

	s.handleJobProgress(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

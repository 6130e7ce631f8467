package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipforge/clipforge/internal/job"
	"github.com/clipforge/clipforge/internal/ports"
)

func newTestServer(t *testing.T, dl *fakeDownloader) (*Server, *fakeTranscoder) {
	t.Helper()
	tc := &fakeTranscoder{}
	deps := job.Deps{
		Downloader:  dl,
		Transcoder:  tc,
		Transcriber: &fakeTranscriber{},
		Translator:  &fakeTranslator{},
		Synthesizer: &fakeSynthesizer{},
	}
	hub := job.NewHub(8, zerolog.Nop())
	orch := job.NewOrchestrator(deps, t.TempDir(), t.TempDir(), zerolog.Nop())
	s := NewServer(deps, hub, orch, t.TempDir(), t.TempDir(), 20, zerolog.Nop())
	return s, tc
}

func TestHandleAnalyze_UsesHeatmapWhenAvailable(t *testing.T) {
	dl := &fakeDownloader{
		info:      ports.VideoInfo{DurationS: 120, Title: "My Video"},
		heatmap:   []ports.HeatmapPoint{{StartS: 0, EndS: 10, Value: 0.9}, {StartS: 10, EndS: 20, Value: 0.2}},
		heatmapOK: true,
	}
	s, _ := newTestServer(t, dl)

	body, _ := json.Marshal(analyzeRequest{URL: "https://example.com/v"})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader(body))
	w := httptest.NewRecorder()

	s.handleAnalyze(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "My Video", resp.Video.Title)
	assert.Equal(t, 120.0, resp.Video.DurationS)
}

func TestHandleAnalyze_RejectsMissingURL(t *testing.T) {
	s, _ := newTestServer(t, &fakeDownloader{})

	body, _ := json.Marshal(analyzeRequest{})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader(body))
	w := httptest.NewRecorder()

	s.handleAnalyze(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleAnalyze_ProbeFailureReturnsBadGateway(t *testing.T) {
	s, _ := newTestServer(t, &fakeDownloader{probeErr: assertErr("unreachable")})

	body, _ := json.Marshal(analyzeRequest{URL: "https://example.com/v"})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader(body))
	w := httptest.NewRecorder()

	s.handleAnalyze(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

type stringErr string

func (e stringErr) Error() string { return string(e) }

func assertErr(msg string) error { return stringErr(msg) }

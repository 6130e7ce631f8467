package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/clipforge/clipforge/internal/apierr"
	"github.com/clipforge/clipforge/internal/domain/subtitles"
	"github.com/clipforge/clipforge/internal/job"
	"github.com/clipforge/clipforge/internal/types"
)

type subtitlesRequest struct {
	URL      string          `json:"url"`
	Segments []types.Segment `json:"segments"`
}

type subtitlesResponse struct {
	Subtitles map[string][]types.SubtitleEntry `json:"subtitles"`
}

// handleSubtitles previews caption cues per segment without running a
// cut job: full-video subtitles sliced to each segment when available,
// a one-off local transcription of the segment's own audio otherwise.
func (s *Server) handleSubtitles(w http.ResponseWriter, r *http.Request) {
	var req subtitlesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" || len(req.Segments) == 0 {
		writeAPIError(w, apierr.New(apierr.InputError, "url and segments are required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	full, fetchOK, err := s.deps.Downloader.Subtitles(ctx, req.URL)
	haveFull := err == nil && fetchOK

	tempDir, mkErr := os.MkdirTemp(s.tempDir(), "subs-preview-*")
	if mkErr == nil {
		defer os.RemoveAll(tempDir)
	}

	out := make(map[string][]types.SubtitleEntry, len(req.Segments))
	for i, seg := range req.Segments {
		if haveFull {
			sliced := job.SliceSubtitles(full, seg.StartS, seg.EndS)
			if len(sliced) > 0 {
				out[seg.ID] = sliced
				continue
			}
		}
		entries := s.transcribeSegmentPreview(ctx, req.URL, seg, tempDir, i)
		out[seg.ID] = entries
	}

	writeJSON(w, http.StatusOK, subtitlesResponse{Subtitles: out})
}

// transcribeSegmentPreview downloads just the segment's window and
// transcribes it locally; any failure yields an empty cue list rather
// than failing the whole preview request.
func (s *Server) transcribeSegmentPreview(ctx context.Context, url string, seg types.Segment, tempDir string, idx int) []types.SubtitleEntry {
	bufStart := seg.StartS - 3
	if bufStart < 0 {
		bufStart = 0
	}
	path, bufferedStart, err := s.deps.Downloader.FetchPartial(ctx, url, bufStart, seg.EndS+3, types.Quality480)
	if err != nil {
		return nil
	}
	defer os.Remove(path)

	offsetS := seg.StartS - bufferedStart
	durationS := seg.EndS - seg.StartS
	wav := filepath.Join(tempDir, fmt.Sprintf("preview_audio_%d.wav", idx))
	if err := s.deps.Transcoder.ExtractAudioMono16k(ctx, path, offsetS, offsetS+durationS, wav); err != nil {
		return nil
	}
	tr, err := s.deps.Transcriber.Transcribe(ctx, wav, tempDir)
	if err != nil {
		return nil
	}
	return subtitles.FromTranscript(tr, 0, durationS)
}

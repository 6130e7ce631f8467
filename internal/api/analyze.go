package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/clipforge/clipforge/internal/apierr"
	"github.com/clipforge/clipforge/internal/domain/boundary"
	"github.com/clipforge/clipforge/internal/domain/peaks"
	"github.com/clipforge/clipforge/internal/domain/signals"
	"github.com/clipforge/clipforge/internal/domain/virality"
	"github.com/clipforge/clipforge/internal/ports"
	"github.com/clipforge/clipforge/internal/types"
)

type analyzeRequest struct {
	URL      string                `json:"url"`
	Settings types.AnalyzeSettings `json:"settings,omitempty"`
}

type videoSummary struct {
	URL       string  `json:"url"`
	Title     string  `json:"title"`
	DurationS float64 `json:"durationS"`
}

type analyzeResponse struct {
	Video          videoSummary                       `json:"video"`
	Heatmap        types.CombinedHeatmap              `json:"heatmap"`
	Segments       []types.Segment                    `json:"segments"`
	Detection      types.DetectionMeta                `json:"detection"`
	ViralityScores map[string]types.ViralityBreakdown `json:"viralityScores"`
}

const analyzeMaxComments = 200

// handleAnalyze runs the full acquisition-probe/fusion/peak-detection/
// boundary-optimization/virality-scoring pipeline for a URL and
// returns every intermediate artifact the client's editor view needs.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeAPIError(w, apierr.New(apierr.InputError, "url is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
	defer cancel()

	info, err := s.deps.Downloader.Probe(ctx, req.URL)
	if err != nil {
		s.log.Warn().Err(err).Str("url", req.URL).Msg("probe failed")
		writeAPIError(w, apierr.Wrap(apierr.UpstreamUnavailable, "probe failed", err))
		return
	}

	sources, silences := s.gatherSignals(ctx, req.URL, info.DurationS)

	heatmap := signals.Combine(sources, info.DurationS, nil)
	segments, meta := peaks.Detect(heatmap, info.DurationS, req.Settings.ToOptions())
	segments = boundary.Optimize(segments, heatmap, silences, info.DurationS, req.Settings.MinDurationS, req.Settings.MaxDurationS)

	scores := make(map[string]types.ViralityBreakdown, len(segments))
	for i := range segments {
		scores[segments[i].ID] = virality.Score(segments[i], heatmap, info.DurationS)
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		Video:          videoSummary{URL: req.URL, Title: info.Title, DurationS: info.DurationS},
		Heatmap:        heatmap,
		Segments:       segments,
		Detection:      meta,
		ViralityScores: scores,
	})
}

// gatherSignals runs the comment probe and the platform heatmap first
// (no download needed). When the heatmap has data it returns those two
// sources as they are: no media is downloaded, so the audio and scene
// probes and the silence pass do not run, whatever the strength of the
// comment signal. Only when the heatmap is empty does it download the
// full video once, run the audio and scene probes against it, and run
// a silence pass that feeds the boundary optimizer.
func (s *Server) gatherSignals(ctx context.Context, url string, durationS float64) ([]types.SignalSource, []ports.SilenceInterval) {
	heat := signals.HeatmapProbe(ctx, s.deps.Downloader, url)
	comments, _ := signals.CommentsProbe(ctx, s.deps.Downloader, url, analyzeMaxComments, durationS)
	if !heat.Empty() {
		return []types.SignalSource{heat, comments}, nil
	}

	mediaPath, err := s.deps.Downloader.FetchFull(ctx, url, types.Quality720)
	if err != nil {
		return []types.SignalSource{heat, comments}, nil
	}
	defer os.Remove(mediaPath)

	sources := signals.CollectLocal(ctx, s.deps.Transcoder, mediaPath, durationS, heat, comments)
	silences, _ := s.deps.Transcoder.SilenceDetect(ctx, mediaPath, -35, 0.3)
	return sources, silences
}

package job

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/clipforge/clipforge/internal/apierr"
	"github.com/clipforge/clipforge/internal/domain/reframe"
	"github.com/clipforge/clipforge/internal/domain/subtitles"
	"github.com/clipforge/clipforge/internal/types"
)

const (
	reframeFPS        = 2.0
	reframeScaleWidth = 640
	defaultDubGain    = 0.15
	outputWidth       = 1080
	outputHeight      = 1920
)

// clipResult is what one segment's pipeline produces: the final output
// file plus any non-fatal warnings recorded along the way.
type clipResult struct {
	file     string
	warnings []string
}

// processClip runs a single segment through fetch, optional analysis,
// transcode, and optional captioning/translation/dubbing. A returned
// error means the caller skips this clip and continues with the rest
// of the job.
func (o *Orchestrator) processClip(ctx context.Context, j *Job, spec types.CutSpec, seg types.Segment, idx, total int, tempDir string, caches *Caches, log zerolog.Logger) (clipResult, error) {
	quality := spec.Quality
	if quality == 0 {
		quality = types.Quality1080
	}

	mediaPath, offsetS, err := o.fetchClipMedia(ctx, spec.URL, seg, quality, idx, total, j, caches)
	if err != nil {
		return clipResult{}, apierr.Wrap(apierr.ClipFailure, "fetch clip media", err)
	}

	var warnings []string
	durationS := seg.EndS - seg.StartS

	mode := spec.CropMode
	var crops []types.CropKeyframe
	if mode == types.CropSmartReframe {
		j.Publish(types.JobProgress{
			Status:      types.StatusAnalyzing,
			CurrentClip: idx + 1,
			TotalClips:  total,
			Message:     fmt.Sprintf("Analyzing framing for clip %d/%d", idx+1, total),
		})
		frames, err := o.deps.Transcoder.ExtractFrames(ctx, mediaPath, offsetS, reframeFPS, reframeScaleWidth)
		if err != nil {
			log.Warn().Err(err).Str("kind", string(apierr.EnhancementFailure)).Msg("reframe analysis failed, falling back to center crop")
			warnings = append(warnings, "reframe analysis failed, used center crop")
			mode = types.CropCenter
		} else {
			crops = reframe.Analyze(frames, offsetS, outputWidth, outputHeight)
		}
	}

	var burnASS string
	var dubEntries []types.SubtitleEntry
	wantCaptions := spec.Captions != "" && spec.Captions != "off"
	wantTranslate := spec.TranslateTo != ""
	if wantCaptions || wantTranslate || spec.Dub {
		j.Publish(types.JobProgress{
			Status:      types.StatusCaptioning,
			CurrentClip: idx + 1,
			TotalClips:  total,
			Message:     fmt.Sprintf("Captioning clip %d/%d", idx+1, total),
		})
		entries, capWarn := o.resolveSubtitles(ctx, spec, seg, mediaPath, offsetS, durationS, idx, tempDir, caches)
		if capWarn != "" {
			warnings = append(warnings, capWarn)
		}
		if wantTranslate && len(entries) > 0 {
			translated, err := o.deps.Translator.Translate(ctx, entries, spec.TranslateTo, spec.TranslateMode)
			if err != nil {
				log.Warn().Err(err).Str("kind", string(apierr.EnhancementFailure)).Msg("translation failed, captions kept in source language")
				warnings = append(warnings, "translation failed")
			} else {
				entries = translated
			}
		}
		dubEntries = entries

		if wantCaptions && len(entries) > 0 {
			style := subtitles.Lookup(spec.Captions)
			assPath := filepath.Join(tempDir, fmt.Sprintf("captions_%d.ass", idx))
			if err := os.WriteFile(assPath, []byte(subtitles.Render(entries, style)), 0o644); err != nil {
				log.Warn().Err(err).Str("kind", string(apierr.EnhancementFailure)).Msg("writing caption file failed")
				warnings = append(warnings, "caption overlay failed")
			} else {
				burnASS = assPath
			}
		}
	}

	outFile := filepath.Join(o.outDir, outputFilename(spec.VideoTitle, idx, seg.StartS))
	if err := o.deps.Transcoder.Transcode(ctx, mediaPath, offsetS, durationS, mode, crops, quality, burnASS, outFile); err != nil {
		return clipResult{}, apierr.Wrap(apierr.ClipFailure, "transcode", err)
	}

	if spec.Dub && len(dubEntries) > 0 {
		dubbed, dubWarn := o.renderDub(ctx, dubEntries, outFile, tempDir, idx)
		if dubWarn != "" {
			warnings = append(warnings, dubWarn)
		} else if dubbed != "" {
			outFile = dubbed
		}
	}

	return clipResult{file: outFile, warnings: warnings}, nil
}

// fetchClipMedia fetches the clip's media: a partial fetch with a buffered window,
// falling back to a job-cached full download when the downloader
// rejects the section request or the fetched artifact has no audio
// track.
func (o *Orchestrator) fetchClipMedia(ctx context.Context, url string, seg types.Segment, quality types.Quality, idx, total int, j *Job, caches *Caches) (string, float64, error) {
	j.Publish(types.JobProgress{
		Status:      types.StatusDownloading,
		CurrentClip: idx + 1,
		TotalClips:  total,
		Message:     fmt.Sprintf("Downloading clip %d/%d: %s -> %s", idx+1, total, fmtClock(seg.StartS), fmtClock(seg.EndS)),
	})

	bufStart := seg.StartS - 3
	if bufStart < 0 {
		bufStart = 0
	}
	bufEnd := seg.EndS + 3

	path, bufferedStart, err := o.deps.Downloader.FetchPartial(ctx, url, bufStart, bufEnd, quality)
	if err == nil {
		if ok, audioErr := o.deps.Transcoder.HasAudioTrack(ctx, path); audioErr == nil && ok {
			return path, seg.StartS - bufferedStart, nil
		}
		_ = os.Remove(path)
	}

	full, ok := caches.FullVideo(url)
	if !ok {
		full, err = o.deps.Downloader.FetchFull(ctx, url, quality)
		if err != nil {
			return "", 0, apierr.Wrap(apierr.UpstreamUnavailable, "full fallback fetch", err)
		}
		caches.SetFullVideo(url, full)
	}
	return full, seg.StartS, nil
}

// resolveSubtitles resolves caption cues in preference order: the
// request's edited subtitles for the segment first, then cached
// full-video subtitles sliced to the segment, then local transcription
// of the clip's own audio.
func (o *Orchestrator) resolveSubtitles(ctx context.Context, spec types.CutSpec, seg types.Segment, mediaPath string, offsetS, durationS float64, idx int, tempDir string, caches *Caches) ([]types.SubtitleEntry, string) {
	if edited, ok := spec.EditedSubtitles[seg.ID]; ok && len(edited) > 0 {
		return edited, ""
	}

	full, ok := caches.Subtitles(spec.URL)
	if !ok {
		entries, fetchOK, err := o.deps.Downloader.Subtitles(ctx, spec.URL)
		if err == nil && fetchOK {
			full = entries
			ok = true
			caches.SetSubtitles(spec.URL, entries)
		}
	}
	if ok {
		sliced := SliceSubtitles(full, seg.StartS, seg.EndS)
		if len(sliced) > 0 {
			return sliced, ""
		}
	}

	wav := filepath.Join(tempDir, fmt.Sprintf("clip_audio_%d.wav", idx))
	if err := o.deps.Transcoder.ExtractAudioMono16k(ctx, mediaPath, offsetS, offsetS+durationS, wav); err != nil {
		return nil, "caption source unavailable, no audio to transcribe"
	}
	tr, err := o.deps.Transcriber.Transcribe(ctx, wav, tempDir)
	if err != nil {
		return nil, "local transcription failed"
	}
	return subtitles.FromTranscript(tr, 0, durationS), ""
}

// SliceSubtitles rebases full-video subtitle entries overlapping
// [startS, endS] to clip-local time starting at 0.
func SliceSubtitles(full []types.SubtitleEntry, startS, endS float64) []types.SubtitleEntry {
	startMs := int64(startS * 1000)
	endMs := int64(endS * 1000)
	var out []types.SubtitleEntry
	for _, e := range full {
		if e.EndMs <= startMs || e.StartMs >= endMs {
			continue
		}
		rebased := e
		rebased.StartMs = maxInt64(0, e.StartMs-startMs)
		rebased.EndMs = e.EndMs - startMs
		rebased.Words = append([]types.WordTiming(nil), e.Words...)
		for i := range rebased.Words {
			rebased.Words[i].StartMs -= startMs
			rebased.Words[i].EndMs -= startMs
		}
		out = append(out, rebased)
	}
	return out
}

// renderDub synthesizes one WAV per cue and mixes them onto the
// rendered clip at defaultDubGain, preserving the original audio.
func (o *Orchestrator) renderDub(ctx context.Context, entries []types.SubtitleEntry, clipFile, tempDir string, idx int) (string, string) {
	var wavs []string
	for i, e := range entries {
		if e.Text == "" {
			continue
		}
		wavPath := filepath.Join(tempDir, fmt.Sprintf("dub_%d_%d.wav", idx, i))
		if err := o.deps.Synthesizer.Synthesize(ctx, e.Text, float64(e.StartMs)/1000.0, wavPath); err != nil {
			continue
		}
		wavs = append(wavs, wavPath)
	}
	if len(wavs) == 0 {
		return "", "dubbing failed, no voice lines synthesized"
	}

	dubbed := filepath.Join(o.outDir, fmt.Sprintf("dub_%s", filepath.Base(clipFile)))
	if err := o.deps.Transcoder.MixAudio(ctx, clipFile, wavs, defaultDubGain, dubbed); err != nil {
		return "", "dubbing mix failed"
	}
	return dubbed, ""
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func fmtClock(sec float64) string {
	s := int(sec)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

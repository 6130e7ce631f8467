package signals

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipforge/clipforge/internal/ports"
	"github.com/clipforge/clipforge/internal/types"
)

type fakeDownloader struct {
	heatmap     []ports.HeatmapPoint
	heatmapOK   bool
	heatmapErr  error
	comments    []ports.Comment
	commentsErr error
}

func (f *fakeDownloader) Probe(ctx context.Context, url string) (ports.VideoInfo, error) {
	return ports.VideoInfo{}, nil
}
func (f *fakeDownloader) Heatmap(ctx context.Context, url string) ([]ports.HeatmapPoint, bool, error) {
	return f.heatmap, f.heatmapOK, f.heatmapErr
}
func (f *fakeDownloader) Comments(ctx context.Context, url string, max int) ([]ports.Comment, error) {
	return f.comments, f.commentsErr
}
func (f *fakeDownloader) FetchPartial(ctx context.Context, url string, startS, endS float64, q types.Quality) (string, float64, error) {
	return "", 0, nil
}
func (f *fakeDownloader) FetchFull(ctx context.Context, url string, q types.Quality) (string, error) {
	return "", nil
}
func (f *fakeDownloader) Subtitles(ctx context.Context, url string) ([]types.SubtitleEntry, bool, error) {
	return nil, false, nil
}

type fakeTranscoder struct {
	hasAudio   bool
	hasAudioE  error
	rmsWindows []float64
	rmsErr     error
	silences   []ports.SilenceInterval
	sceneEvts  []ports.SceneEvent
	sceneErr   error
}

func (f *fakeTranscoder) ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	return 0, nil
}
func (f *fakeTranscoder) HasAudioTrack(ctx context.Context, path string) (bool, error) {
	return f.hasAudio, f.hasAudioE
}
func (f *fakeTranscoder) AudioRMSWindows(ctx context.Context, path string, windowS float64) ([]float64, error) {
	return f.rmsWindows, f.rmsErr
}
func (f *fakeTranscoder) SilenceDetect(ctx context.Context, path string, noiseDB, minDurS float64) ([]ports.SilenceInterval, error) {
	return f.silences, nil
}
func (f *fakeTranscoder) SceneDetect(ctx context.Context, path string, threshold, fps float64, scale int, timeout time.Duration) ([]ports.SceneEvent, error) {
	return f.sceneEvts, f.sceneErr
}
func (f *fakeTranscoder) ExtractFrames(ctx context.Context, path string, startS, fps float64, scale int) ([]image.Image, error) {
	return nil, nil
}
func (f *fakeTranscoder) ExtractAudioMono16k(ctx context.Context, in string, startS, endS float64, outWav string) error {
	return nil
}
func (f *fakeTranscoder) Transcode(ctx context.Context, in string, seekS, durationS float64, mode types.CropMode, crops []types.CropKeyframe, q types.Quality, burnASS, outMP4 string) error {
	return nil
}
func (f *fakeTranscoder) MixAudio(ctx context.Context, clipPath string, dubWavs []string, dubGain float64, outMP4 string) error {
	return nil
}

func TestHeatmapProbe_EmptyWhenUnavailable(t *testing.T) {
	dl := &fakeDownloader{heatmapOK: false}
	src := HeatmapProbe(context.Background(), dl, "u")
	assert.True(t, src.Empty())
	assert.Equal(t, types.MethodHeatmap, src.Method)
}

func TestHeatmapProbe_EmptyOnError(t *testing.T) {
	dl := &fakeDownloader{heatmapOK: true, heatmapErr: errors.New("boom")}
	src := HeatmapProbe(context.Background(), dl, "u")
	assert.True(t, src.Empty())
}

func TestHeatmapProbe_MapsPoints(t *testing.T) {
	dl := &fakeDownloader{
		heatmapOK: true,
		heatmap: []ports.HeatmapPoint{
			{StartS: 0, EndS: 2, Value: 0.1},
			{StartS: 2, EndS: 4, Value: 0.9},
		},
	}
	src := HeatmapProbe(context.Background(), dl, "u")
	require.Len(t, src.Points, 2)
	assert.Equal(t, int64(2000), src.Points[0].EndMs)
	assert.Equal(t, 0.9, src.Points[1].Intensity)
}

func TestAudioProbe_NoAudioTrackIsEmpty(t *testing.T) {
	tc := &fakeTranscoder{hasAudio: false}
	src := AudioProbe(context.Background(), tc, "p", 6)
	assert.True(t, src.Empty())
}

func TestAudioProbe_NormalizesToUnitRange(t *testing.T) {
	tc := &fakeTranscoder{hasAudio: true, rmsWindows: []float64{-40, -20, -10}}
	src := AudioProbe(context.Background(), tc, "p", 6)
	require.Len(t, src.Points, 3)
	assert.InDelta(t, 0.0, src.Points[0].Intensity, 1e-9)
	assert.InDelta(t, 1.0, src.Points[2].Intensity, 1e-9)
}

func TestAudioProbe_FallsBackToSilenceDetect(t *testing.T) {
	tc := &fakeTranscoder{hasAudio: true, rmsErr: errors.New("pass failed"), silences: []ports.SilenceInterval{{StartS: 0, EndS: 2}}}
	src := AudioProbe(context.Background(), tc, "p", 4)
	require.NotEmpty(t, src.Points)
	assert.InDelta(t, 0.0, src.Points[0].Intensity, 1e-9)
	assert.InDelta(t, 1.0, src.Points[1].Intensity, 1e-9)
}

func TestSceneProbe_BucketsEventCounts(t *testing.T) {
	tc := &fakeTranscoder{sceneEvts: []ports.SceneEvent{{TimeS: 0.5}, {TimeS: 0.6}, {TimeS: 6.0}}}
	src := SceneProbe(context.Background(), tc, "p", 8)
	require.NotEmpty(t, src.Points)
	assert.Equal(t, 1.0, src.Points[0].Intensity)
}

func TestSceneProbe_DownsamplesLongVideos(t *testing.T) {
	tc := &fakeTranscoder{sceneEvts: []ports.SceneEvent{{TimeS: 100}}}
	src := SceneProbe(context.Background(), tc, "p", longVideoS+1)
	assert.NotEmpty(t, src.Points)
}

func TestCommentsProbe_MinesTimestamps(t *testing.T) {
	dl := &fakeDownloader{comments: []ports.Comment{
		{Text: "lol dead at 1:23"},
		{Text: "wait for 1:23 again"},
		{Text: "nothing here"},
	}}
	src, hits := CommentsProbe(context.Background(), dl, "u", 100, 120)
	require.NotEmpty(t, src.Points)
	idx := 83 / int(commentWindowS)
	assert.Equal(t, 1.0, src.Points[idx].Intensity)
	require.Len(t, hits, 1)
	assert.Equal(t, 2, hits[0].Count)
}

func TestCommentsProbe_EmptyWithNoTimestamps(t *testing.T) {
	dl := &fakeDownloader{comments: []ports.Comment{{Text: "great video"}}}
	src, hits := CommentsProbe(context.Background(), dl, "u", 100, 120)
	assert.True(t, src.Empty())
	assert.Empty(t, hits)
}

func TestCommentsProbe_RejectsTimestampsBeyondDuration(t *testing.T) {
	dl := &fakeDownloader{comments: []ports.Comment{{Text: "huh 9:00"}}}
	src, _ := CommentsProbe(context.Background(), dl, "u", 100, 60)
	assert.True(t, src.Empty())
}

func TestCollect_RunsAllFourProbes(t *testing.T) {
	dl := &fakeDownloader{heatmapOK: true, heatmap: []ports.HeatmapPoint{{StartS: 0, EndS: 2, Value: 1}}}
	tc := &fakeTranscoder{hasAudio: true, rmsWindows: []float64{-20, -10}}
	got, _ := Collect(context.Background(), dl, tc, "u", "p", 10, 50)
	require.Len(t, got, 4)
	assert.Equal(t, types.MethodHeatmap, got[0].Method)
	assert.Equal(t, types.MethodAudio, got[1].Method)
	assert.Equal(t, types.MethodScene, got[2].Method)
	assert.Equal(t, types.MethodComments, got[3].Method)
}

func TestCollect_SkipsLocalPassesWhenHeatmapAndCommentsStrong(t *testing.T) {
	dl := &fakeDownloader{
		heatmapOK: true,
		heatmap:   []ports.HeatmapPoint{{StartS: 0, EndS: 2, Value: 1}},
		comments: []ports.Comment{
			{Text: "0:01"}, {Text: "0:06"}, {Text: "0:11"}, {Text: "0:16"}, {Text: "0:21"},
		},
	}
	tc := &fakeTranscoder{hasAudio: true, rmsWindows: []float64{-20, -10}}
	got, _ := Collect(context.Background(), dl, tc, "u", "p", 30, 50)
	assert.True(t, got[1].Empty())
	assert.True(t, got[2].Empty())
}

// CollectLocal takes heat/comments as already-fetched inputs instead of
// re-deriving them, for callers that probed the download decision
// themselves before fetching the media.
func TestCollectLocal_UsesGivenHeatAndComments(t *testing.T) {
	tc := &fakeTranscoder{hasAudio: true, rmsWindows: []float64{-20, -10}}
	heat := types.SignalSource{Method: types.MethodHeatmap}
	comments := types.SignalSource{Method: types.MethodComments}

	got := CollectLocal(context.Background(), tc, "p", 10, heat, comments)

	require.Len(t, got, 4)
	assert.Equal(t, types.MethodHeatmap, got[0].Method)
	assert.Equal(t, types.MethodAudio, got[1].Method)
	assert.False(t, got[1].Empty())
	assert.Equal(t, types.MethodScene, got[2].Method)
	assert.Equal(t, types.MethodComments, got[3].Method)
}

func TestCollectLocal_SkipsLocalPassesWhenHeatAndCommentsStrong(t *testing.T) {
	tc := &fakeTranscoder{hasAudio: true, rmsWindows: []float64{-20, -10}}
	heat := types.SignalSource{
		Method: types.MethodHeatmap,
		Points: []types.IntensityPoint{{StartMs: 0, EndMs: 2000, Intensity: 1}},
	}
	comments := types.SignalSource{
		Method: types.MethodComments,
		Points: make([]types.IntensityPoint, strongCommentBuckets),
	}
	for i := range comments.Points {
		comments.Points[i].Intensity = 1
	}

	got := CollectLocal(context.Background(), tc, "p", 10, heat, comments)

	assert.True(t, got[1].Empty())
	assert.True(t, got[2].Empty())
}

// Package types holds the value objects shared across the analysis and
// job-orchestration pipelines. Nothing in this package owns behavior;
// it is the common vocabulary the domain packages and the API surface
// pass around.
package types

import "time"

// Transcript is ASR output for a clip's audio, used to render captions
// and optionally to feed the translator.
type Transcript struct {
	Segments []TranscriptSegment `json:"segments"`
}

// TranscriptSegment is one ASR segment, optionally with word timing.
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

// Word is one word-level ASR timing.
type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}

// IntensityPoint is one time-bucketed sample of a signal. Start must be
// strictly before End.
type IntensityPoint struct {
	StartMs   int64   `json:"startMs"`
	EndMs     int64   `json:"endMs"`
	Intensity float64 `json:"intensity"`
}

// SignalMethod names an acquisition probe or the fusion sentinel.
type SignalMethod string

const (
	MethodHeatmap  SignalMethod = "heatmap"
	MethodAudio    SignalMethod = "audio"
	MethodScene    SignalMethod = "scene"
	MethodComments SignalMethod = "comments"
	MethodCombined SignalMethod = "combined"
)

// SignalSource is one probe's raw output plus the weight the combiner
// will apply to it. Built per analysis request and discarded after
// fusion.
type SignalSource struct {
	Method SignalMethod     `json:"method"`
	Weight float64          `json:"weight"`
	Points []IntensityPoint `json:"points"`
}

// Empty reports whether the probe produced no usable data.
func (s SignalSource) Empty() bool { return len(s.Points) == 0 }

// CommentHit is a single ranked comment timestamp mention, kept for
// explainability alongside the comment probe's bucketed intensities.
type CommentHit struct {
	TimeS      float64 `json:"timeS"`
	Count      int     `json:"count"`
	SampleText string  `json:"sampleText"`
}

// CombinedHeatmap is the uniform-grid fusion of one or more signal
// sources. Every point shares WindowMs (End-Start), except possibly the
// final point which may be shorter when duration doesn't divide evenly.
type CombinedHeatmap struct {
	WindowMs    int64            `json:"windowMs"`
	Points      []IntensityPoint `json:"points"`
	MethodsUsed []SignalMethod   `json:"methodsUsed"`
}

// Candidate is an internal, not-yet-selected sized time range produced
// by the peak detector before greedy selection.
type Candidate struct {
	StartS        float64
	EndS          float64
	DurationS     float64
	AvgIntensity  float64
	PeakIntensity float64
	PeakTimeS     float64
	Score         float64
}

// Segment is a public, selected, non-overlapping highlight window.
type Segment struct {
	ID            string  `json:"id"`
	StartS        float64 `json:"startS"`
	EndS          float64 `json:"endS"`
	DurationS     float64 `json:"durationS"`
	AvgIntensity  float64 `json:"avgIntensity"`
	PeakIntensity float64 `json:"peakIntensity"`

	// Populated by the boundary optimizer; zero-valued until then.
	BoundaryType string  `json:"boundaryType,omitempty"`
	HookScore    float64 `json:"hookScore,omitempty"`
	HookShiftS   float64 `json:"hookShiftS,omitempty"`
}

// DurationOf returns StartS/EndS as a time.Duration pair, a convenience
// used when crossing into ports that speak time.Duration (ffmpeg args).
func (s Segment) DurationOf() (time.Duration, time.Duration) {
	return secToDur(s.StartS), secToDur(s.EndS)
}

func secToDur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }

// ViralityBreakdown is the composite virality score for one segment.
type ViralityBreakdown struct {
	Overall       int    `json:"overall"`
	PeakIntensity int    `json:"peakIntensity"`
	HookStrength  int    `json:"hookStrength"`
	Pacing        int    `json:"pacing"`
	AudioEnergy   int    `json:"audioEnergy"`
	PositionBonus int    `json:"positionBonus"`
	DurationFit   int    `json:"durationFit"`
	Label         string `json:"label"`
	Color         string `json:"color"`
}

// DetectionMeta accompanies the segment list returned from analyze,
// naming which probes actually contributed and what threshold survived
// adaptive relaxation.
type DetectionMeta struct {
	Primary       SignalMethod   `json:"primary"`
	MethodsUsed   []SignalMethod `json:"methodsUsed"`
	ThresholdUsed float64        `json:"thresholdUsed"`
	Relaxed       bool           `json:"relaxed"`
}

// WordTiming is one word-level timing inside a SubtitleEntry, used for
// word-by-word caption animation.
type WordTiming struct {
	StartMs int64  `json:"startMs"`
	EndMs   int64  `json:"endMs"`
	Text    string `json:"text"`
}

// SubtitleEntry is one caption cue. Entries of the downloader's
// full-video track carry whole-video timing; once sliced to a clip or
// built from a clip's transcript, Start/End are clip-local (rebased to
// 0 at the clip's own start).
type SubtitleEntry struct {
	StartMs int64        `json:"startMs"`
	EndMs   int64        `json:"endMs"`
	Text    string       `json:"text"`
	Words   []WordTiming `json:"words,omitempty"`
}

// CropMode tags which reframe strategy a clip's transcode uses.
type CropMode string

const (
	CropCenter       CropMode = "center"
	CropBlurPad      CropMode = "blur_pad"
	CropLetterbox    CropMode = "letterbox"
	CropSmartReframe CropMode = "smart_reframe"
)

// CropKeyframe is one dynamic-crop anchor point produced by the smart
// reframe analysis; the transcoder interpolates X linearly between
// consecutive keyframes.
type CropKeyframe struct {
	TimeS float64 `json:"timeS"`
	X     int     `json:"x"`
}

// Quality selects the output resolution/CRF tier.
type Quality int

const (
	Quality1080 Quality = 1080
	Quality720  Quality = 720
	Quality480  Quality = 480
)

// CaptionAnimation is a word-reveal style for the caption overlay.
type CaptionAnimation string

const (
	AnimNone       CaptionAnimation = "none"
	AnimWordByWord CaptionAnimation = "wordByWord"
	AnimPop        CaptionAnimation = "pop"
)

// CaptionPosition anchors the caption block vertically.
type CaptionPosition string

const (
	PositionBottom CaptionPosition = "bottom"
	PositionCenter CaptionPosition = "center"
	PositionTop    CaptionPosition = "top"
)

// CaptionStyle is the stylesheet the caption overlay renders with; see
// the presets in internal/domain/subtitles.
type CaptionStyle struct {
	FontName        string           `json:"fontName"`
	FontSize        int              `json:"fontSize"`
	PrimaryColor    string           `json:"primaryColor"`
	OutlineColor    string           `json:"outlineColor"`
	BackgroundColor string           `json:"backgroundColor"`
	Bold            bool             `json:"bold"`
	Outline         int              `json:"outline"`
	Shadow          int              `json:"shadow"`
	Position        CaptionPosition  `json:"position"`
	Animation       CaptionAnimation `json:"animation"`
}

// JobStatus is a JobProgress.Status value.
type JobStatus string

const (
	StatusDownloading JobStatus = "downloading"
	StatusAnalyzing   JobStatus = "analyzing"
	StatusProcessing  JobStatus = "processing"
	StatusCaptioning  JobStatus = "captioning"
	StatusDone        JobStatus = "done"
	StatusError       JobStatus = "error"
)

// IsTerminal reports whether the status ends the job state machine.
func (s JobStatus) IsTerminal() bool { return s == StatusDone || s == StatusError }

// JobProgress is a point-in-time snapshot pushed to listeners.
type JobProgress struct {
	Status      JobStatus `json:"status"`
	CurrentClip int       `json:"currentClip"`
	TotalClips  int       `json:"totalClips"`
	Message     string    `json:"message"`
	Files       []string  `json:"files,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// CutSpec is the request body behind POST /api/cut.
type CutSpec struct {
	URL             string                     `json:"url"`
	Segments        []Segment                  `json:"segments"`
	CropMode        CropMode                   `json:"cropMode"`
	Captions        string                     `json:"captions"` // preset name, or "off"
	VideoTitle      string                     `json:"videoTitle"`
	Quality         Quality                    `json:"quality,omitempty"`
	TranslateTo     string                     `json:"translateTo,omitempty"`
	TranslateMode   string                     `json:"translateMode,omitempty"`
	EditedSubtitles map[string][]SubtitleEntry `json:"editedSubtitles,omitempty"`
	Dub             bool                       `json:"dub,omitempty"`
}

// ManifestClip is one produced artifact, recorded in JobProgress.Files
// by reference and in the job's manifest for API responses.
type ManifestClip struct {
	SegmentID string   `json:"segmentId"`
	File      string   `json:"file"`
	Warnings  []string `json:"warnings,omitempty"`
}

// DetectOptions configures the peak detector; zero-valued fields are
// replaced by defaults in internal/domain/peaks.
type DetectOptions struct {
	TopN               int
	MinDurationS       float64
	MaxDurationS       float64
	MinGapS            float64
	IntensityThreshold float64
	DisableRelax       bool
}

// AnalyzeSettings is the optional settings object on POST /api/analyze.
type AnalyzeSettings struct {
	TopN               int     `json:"topN,omitempty"`
	MinDurationS       float64 `json:"minDurationS,omitempty"`
	MaxDurationS       float64 `json:"maxDurationS,omitempty"`
	MinGapS            float64 `json:"minGapS,omitempty"`
	IntensityThreshold float64 `json:"intensityThreshold,omitempty"`
}

// ToOptions converts request-level settings into DetectOptions; zero
// fields are filled with defaults by the peaks package.
func (s AnalyzeSettings) ToOptions() DetectOptions {
	return DetectOptions{
		TopN:               s.TopN,
		MinDurationS:       s.MinDurationS,
		MaxDurationS:       s.MaxDurationS,
		MinGapS:            s.MinGapS,
		IntensityThreshold: s.IntensityThreshold,
	}
}

package job

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clipforge/clipforge/internal/types"
)

func TestCaches_FullVideoRoundTrip(t *testing.T) {
	c := NewCaches()

	_, ok := c.FullVideo("https://x/video")
	assert.False(t, ok)

	c.SetFullVideo("https://x/video", "/tmp/video.mp4")
	path, ok := c.FullVideo("https://x/video")
	assert.True(t, ok)
	assert.Equal(t, "/tmp/video.mp4", path)
}

func TestCaches_SubtitlesRoundTrip(t *testing.T) {
	c := NewCaches()
	entries := []types.SubtitleEntry{{StartMs: 0, EndMs: 1000, Text: "hi"}}

	c.SetSubtitles("https://x/video", entries)
	got, ok := c.Subtitles("https://x/video")
	assert.True(t, ok)
	assert.Equal(t, entries, got)
}

func TestCaches_ResetClearsBothMaps(t *testing.T) {
	c := NewCaches()
	c.SetFullVideo("u", "/tmp/f.mp4")
	c.SetSubtitles("u", []types.SubtitleEntry{{Text: "hi"}})

	c.Reset()

	_, ok := c.FullVideo("u")
	assert.False(t, ok)
	_, ok = c.Subtitles("u")
	assert.False(t, ok)
}

package job

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTitle_CollapsesAndTrims(t *testing.T) {
	assert.Equal(t, "how-to-cook-rice", sanitizeTitle("  How To Cook: Rice!!  "))
	assert.Equal(t, "a-b-c", sanitizeTitle("a___b---c"))
	assert.Equal(t, "", sanitizeTitle("***"))
}

func TestOutputFilename_MatchesNamingConvention(t *testing.T) {
	name := outputFilename("My Great Video", 0, 125)
	assert.Equal(t, "my-great-video_clip1_2m05s.mp4", name)
}

func TestOutputFilename_TruncatesLongTitlesAndFallsBackWhenEmpty(t *testing.T) {
	long := strings.Repeat("a", 80)
	name := outputFilename(long, 2, 5)
	assert.True(t, strings.HasPrefix(name, strings.Repeat("a", 50)+"_clip3_"))

	name = outputFilename("!!!", 0, 0)
	assert.Equal(t, "clip_clip1_0m00s.mp4", name)
}

func TestHash_IsStableAndTwelveHexChars(t *testing.T) {
	h1 := hash("https://example.com/watch?v=abc")
	h2 := hash("https://example.com/watch?v=abc")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 12)
}

func TestNewID_ProducesDistinctValues(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
}

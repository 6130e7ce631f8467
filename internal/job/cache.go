package job

import (
	"sync"

	"github.com/clipforge/clipforge/internal/types"
)

// Caches holds the cross-clip caches one job's run of the orchestrator
// consults: the full-video fallback download, and the downloader's
// full-video subtitle track. RunJob constructs a fresh Caches per job
// so concurrent jobs never share state.
type Caches struct {
	mu        sync.Mutex
	fullVideo map[string]string
	subtitles map[string][]types.SubtitleEntry
}

func NewCaches() *Caches {
	return &Caches{
		fullVideo: make(map[string]string),
		subtitles: make(map[string][]types.SubtitleEntry),
	}
}

// Reset clears every cached entry.
func (c *Caches) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fullVideo = make(map[string]string)
	c.subtitles = make(map[string][]types.SubtitleEntry)
}

func (c *Caches) FullVideo(url string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.fullVideo[hash(url)]
	return p, ok
}

func (c *Caches) SetFullVideo(url, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fullVideo[hash(url)] = path
}

func (c *Caches) Subtitles(url string) ([]types.SubtitleEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.subtitles[hash(url)]
	return s, ok
}

func (c *Caches) SetSubtitles(url string, entries []types.SubtitleEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subtitles[hash(url)] = entries
}

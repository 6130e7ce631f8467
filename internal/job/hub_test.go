package job

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipforge/clipforge/internal/types"
)

func TestHub_AttachReplaysLatestProgress(t *testing.T) {
	h := NewHub(8, zerolog.Nop())
	start := make(chan struct{})
	id := h.Submit(func(ctx context.Context, j *Job) {
		j.Publish(types.JobProgress{Status: types.StatusDownloading, Message: "go"})
		<-start
	})

	require.Eventually(t, func() bool {
		p, ok := h.Get(id)
		return ok && p.Status == types.StatusDownloading
	}, time.Second, time.Millisecond)

	ch, detach, ok := h.Attach(id)
	require.True(t, ok)
	defer detach()

	select {
	case p := <-ch:
		assert.Equal(t, types.StatusDownloading, p.Status)
	case <-time.After(time.Second):
		t.Fatal("expected replayed progress")
	}
	close(start)
}

func TestHub_TerminalEventClosesListener(t *testing.T) {
	h := NewHub(8, zerolog.Nop())
	id := h.Submit(func(ctx context.Context, j *Job) {
		j.Publish(types.JobProgress{Status: types.StatusDone})
	})

	require.Eventually(t, func() bool {
		p, ok := h.Get(id)
		return ok && p.Status.IsTerminal()
	}, time.Second, time.Millisecond)

	ch, _, ok := h.Attach(id)
	require.True(t, ok)

	select {
	case p, open := <-ch:
		assert.Equal(t, types.StatusDone, p.Status)
		assert.True(t, open)
	case <-time.After(time.Second):
		t.Fatal("expected terminal event")
	}

	_, open := <-ch
	assert.False(t, open, "channel should be closed after terminal event")
}

func TestHub_AttachUnknownJobFails(t *testing.T) {
	h := NewHub(8, zerolog.Nop())
	_, _, ok := h.Attach("missing")
	assert.False(t, ok)
}

func TestJob_PublishDetachesFullListenerInsteadOfBlocking(t *testing.T) {
	j := newJob("j1", func() {}, zerolog.Nop())
	slow := make(chan types.JobProgress) // unbuffered and never drained
	j.mu.Lock()
	j.listeners["slow"] = slow
	j.mu.Unlock()

	j.Publish(types.JobProgress{Status: types.StatusProcessing})

	j.mu.Lock()
	_, stillAttached := j.listeners["slow"]
	j.mu.Unlock()
	assert.False(t, stillAttached)
}

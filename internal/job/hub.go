package job

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/clipforge/clipforge/internal/logging"
	"github.com/clipforge/clipforge/internal/types"
)

// Job is one submitted unit of work: its latest known progress, and
// the set of listeners currently attached to its event stream.
type Job struct {
	ID string

	mu        sync.Mutex
	latest    types.JobProgress
	listeners map[string]chan types.JobProgress
	cancel    context.CancelFunc
	log       zerolog.Logger
}

func newJob(id string, cancel context.CancelFunc, logger zerolog.Logger) *Job {
	return &Job{
		ID:        id,
		listeners: make(map[string]chan types.JobProgress),
		cancel:    cancel,
		log:       logging.Component(logger, "job").With().Str("jobId", id).Logger(),
	}
}

// Publish updates the job's latest snapshot and pushes it to every
// attached listener. A listener whose buffered channel is full is
// detached rather than allowed to block the others (back-pressure
// isolation); on a terminal status every remaining listener's channel
// is closed after the final send.
func (j *Job) Publish(p types.JobProgress) {
	j.mu.Lock()
	j.latest = p
	terminal := p.Status.IsTerminal()
	handles := make([]string, 0, len(j.listeners))
	for h := range j.listeners {
		handles = append(handles, h)
	}
	chans := make(map[string]chan types.JobProgress, len(handles))
	for _, h := range handles {
		chans[h] = j.listeners[h]
	}
	j.mu.Unlock()

	for h, ch := range chans {
		select {
		case ch <- p:
		default:
			j.log.Warn().Str("listener", h).Msg("progress listener full, detaching")
			j.detach(h)
			continue
		}
		if terminal {
			j.detach(h)
		}
	}
}

func (j *Job) detach(handle string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if ch, ok := j.listeners[handle]; ok {
		close(ch)
		delete(j.listeners, handle)
	}
}

// Cancel requests cooperative cancellation of the job's run context.
func (j *Job) Cancel() {
	j.mu.Lock()
	cancel := j.cancel
	j.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Hub is the progress hub: it owns every live Job, allocates ids
// synchronously at submit, and multiplexes each job's progress stream
// to any number of attached listeners.
type Hub struct {
	mu      sync.Mutex
	jobs    map[string]*Job
	bufSize int
	log     zerolog.Logger
}

func NewHub(bufSize int, logger zerolog.Logger) *Hub {
	if bufSize <= 0 {
		bufSize = 8
	}
	return &Hub{jobs: make(map[string]*Job), bufSize: bufSize, log: logger}
}

// Submit allocates a Job and starts run in its own goroutine with a
// cancellable context, returning the job id before any work begins.
func (h *Hub) Submit(run func(ctx context.Context, job *Job)) string {
	id := NewID()
	ctx, cancel := context.WithCancel(context.Background())
	j := newJob(id, cancel, h.log)

	h.mu.Lock()
	h.jobs[id] = j
	h.mu.Unlock()

	go run(ctx, j)
	return id
}

// Attach registers a new listener handle on jobID and returns its
// channel plus a detach func. The handle is replayed the job's latest
// known progress before any subsequent event.
func (h *Hub) Attach(jobID string) (<-chan types.JobProgress, func(), bool) {
	h.mu.Lock()
	j, ok := h.jobs[jobID]
	h.mu.Unlock()
	if !ok {
		return nil, nil, false
	}

	handle := NewID()
	ch := make(chan types.JobProgress, h.bufSize)

	j.mu.Lock()
	latest := j.latest
	hasLatest := latest.Status != ""
	j.listeners[handle] = ch
	// The replay send happens in this same critical section, not after
	// unlocking: Publish also locks j.mu before snapshotting listeners,
	// so without this a concurrent Publish could register after us,
	// send its newer progress first, and have our stale replay land
	// second, reordering the stream out of FIFO. The channel is
	// freshly made and buffered, so this send cannot block.
	if hasLatest {
		ch <- latest
		if latest.Status.IsTerminal() {
			close(ch)
			delete(j.listeners, handle)
		}
	}
	j.mu.Unlock()

	detach := func() { j.detach(handle) }
	return ch, detach, true
}

// Get returns the job's latest known progress snapshot.
func (h *Hub) Get(jobID string) (types.JobProgress, bool) {
	h.mu.Lock()
	j, ok := h.jobs[jobID]
	h.mu.Unlock()
	if !ok {
		return types.JobProgress{}, false
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.latest, true
}

// Cancel requests cancellation of a running job, returning false if
// the id is unknown.
func (h *Hub) Cancel(jobID string) bool {
	h.mu.Lock()
	j, ok := h.jobs[jobID]
	h.mu.Unlock()
	if !ok {
		return false
	}
	j.Cancel()
	return true
}

package focus

import (
	"sync"

	"github.com/glasshouse-ar/reticle/internal/monitoring"
)

// Queue schedules work without blocking the caller. The controller uses two
// of them: a serial work queue that owns all engine state, and a UI
// dispatcher for observer callbacks and view-geometry reads. Embedders can
// supply their own implementations to integrate with a host run loop.
type Queue interface {
	Async(fn func())
}

// SerialQueue runs submitted functions one at a time, in submission order,
// on a dedicated goroutine. It is the default work queue for a controller.
type SerialQueue struct {
	name  string
	tasks chan func()

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// serialQueueDepth bounds how many ticks can pile up before submissions are
// dropped. Ticks are per-frame snapshots; a dropped one is superseded by the
// next frame anyway.
const serialQueueDepth = 64

// NewSerialQueue creates and starts a serial queue. The name appears in
// diagnostic log lines.
func NewSerialQueue(name string) *SerialQueue {
	q := &SerialQueue{
		name:  name,
		tasks: make(chan func(), serialQueueDepth),
		done:  make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *SerialQueue) run() {
	defer close(q.done)
	for fn := range q.tasks {
		fn()
	}
}

// Async submits fn for execution. It never blocks: if the queue is full or
// closed the submission is dropped and logged.
func (q *SerialQueue) Async(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		monitoring.Logf("focus: queue %q closed, dropping task", q.name)
		return
	}
	select {
	case q.tasks <- fn:
	default:
		monitoring.Logf("focus: queue %q full, dropping task", q.name)
	}
}

// Close stops the queue after draining already submitted work. It blocks
// until the worker goroutine exits. Subsequent Async calls are dropped.
func (q *SerialQueue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mu.Unlock()
	<-q.done
}

// immediateQueue runs functions inline on the caller's goroutine. Used as
// the default UI dispatcher when the embedder does not provide one, and by
// tests and the simulator for deterministic execution.
type immediateQueue struct{}

func (immediateQueue) Async(fn func()) { fn() }

// Immediate returns a queue that runs submissions synchronously on the
// calling goroutine.
func Immediate() Queue { return immediateQueue{} }

// Package worker owns the event pipeline between the OS hook layer and
// the user-facing dispatcher: a FIFO message queue drained by a single
// consumer that translates raw notifications into portable events while
// maintaining the keyboard aggregate.
package worker

import (
	"sync"
	"sync/atomic"

	"github.com/pzyyll/kmhook-go/internal/logging"
	"github.com/pzyyll/kmhook-go/types"
)

// queueSize bounds the message channel. The hook callback must never
// block, so posts that would exceed it are dropped instead.
const queueSize = 4096

// Options tune a worker.
type Options struct {
	// MaxKeys sizes the keyboard aggregate; zero selects the default.
	MaxKeys int
	// AsyncDispatch hands every translated event to a fresh goroutine.
	// The spawned goroutine owns the event by value and never touches
	// the aggregate.
	AsyncDispatch bool
}

// Handler consumes translated events.
type Handler func(types.EventType)

// Worker is the single consumer of the raw-event queue.
type Worker struct {
	mu      sync.Mutex
	tx      chan Msg
	opts    Options
	stopped atomic.Bool
}

// New creates an idle worker. Run starts consumption.
func New(opts Options) *Worker {
	return &Worker{opts: opts}
}

// Run creates the queue and starts the consumer loop. When threaded it
// runs on its own goroutine and the returned channel closes when the
// loop exits; otherwise the loop runs inline and the return is nil.
func (w *Worker) Run(handler Handler, threaded bool) <-chan struct{} {
	w.mu.Lock()
	if w.tx != nil && !w.stopped.Load() {
		w.mu.Unlock()
		logging.L().Warn("worker", "Run called on a running worker, ignoring")
		return nil
	}
	ch := make(chan Msg, queueSize)
	w.tx = ch
	w.stopped.Store(false)
	w.mu.Unlock()

	loop := func() {
		defer w.stopped.Store(true)
		tr := newTranslator(w.opts.MaxKeys)
		for msg := range ch {
			if _, ok := msg.(StopMsg); ok {
				break
			}
			ev := tr.translate(msg)
			if ev == nil {
				logging.L().Debug("worker", "message dropped by translation: %#v", msg)
				continue
			}
			if w.opts.AsyncDispatch {
				go handler(*ev)
			} else {
				handler(*ev)
			}
		}
	}

	if threaded {
		done := make(chan struct{})
		go func() {
			defer close(done)
			loop()
		}()
		return done
	}
	loop()
	return nil
}

// PostMsg enqueues a raw message. It never blocks: after shutdown the
// message is discarded, and a full queue drops the message with a debug
// log rather than stalling the hook thread.
func (w *Worker) PostMsg(msg Msg) {
	if w.stopped.Load() {
		return
	}
	w.mu.Lock()
	ch := w.tx
	w.mu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- msg:
	default:
		logging.L().Debug("worker", "queue full, dropping message")
	}
}

// Package hookloop owns the OS message-pump threads that install the
// low-level input hooks, and the process-wide registry that routes hook
// callbacks to the workers of the listeners that want them.
//
// The registry is process-wide because the OS hook procedures have no
// user context. It holds only loop IDs and weak owner references: it is
// lazily initialized, never torn down, and never keeps a listener
// alive.
package hookloop

import (
	"runtime"
	"sync"
	"weak"

	"github.com/pzyyll/kmhook-go/internal/logging"
	"github.com/pzyyll/kmhook-go/internal/worker"
	"github.com/pzyyll/kmhook-go/types"
)

// Owner is the loop's view of the listener that created it.
type Owner interface {
	// HasKeyboardEvent reports whether any registration needs the
	// keyboard hook.
	HasKeyboardEvent() bool
	// HasMouseEvent reports whether any registration needs the mouse
	// hook.
	HasMouseEvent() bool
	// Worker returns the queue raw events are posted to.
	Worker() *worker.Worker
}

// OwnerRef is the strong anchor of the weak back-reference chain. The
// listener holds the only strong *OwnerRef; the loop and the registry
// hold weak pointers to it, so a dropped listener stops receiving
// events instead of being kept alive by the hook layer.
type OwnerRef struct {
	Owner Owner
}

// Registry indexes live loops by whether they currently want keyboard
// or mouse events.
type Registry struct {
	mu       sync.Mutex
	owners   map[types.ID]weak.Pointer[OwnerRef]
	keyboard map[types.ID]bool
	mouse    map[types.ID]bool
}

var (
	registryOnce sync.Once
	registry     *Registry
)

// Default returns the process-wide registry.
func Default() *Registry {
	registryOnce.Do(func() {
		registry = &Registry{
			owners:   make(map[types.ID]weak.Pointer[OwnerRef]),
			keyboard: make(map[types.ID]bool),
			mouse:    make(map[types.ID]bool),
		}
	})
	return registry
}

// Register adds a loop's owner. Idempotent per ID. The entry is
// dropped automatically once the anchoring listener becomes
// unreachable.
func (r *Registry) Register(id types.ID, ref *OwnerRef) {
	r.mu.Lock()
	r.owners[id] = weak.Make(ref)
	r.mu.Unlock()
	runtime.AddCleanup(ref, func(id types.ID) { r.Unregister(id) }, id)
}

// Unregister removes a loop and its event flags.
func (r *Registry) Unregister(id types.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.owners, id)
	delete(r.keyboard, id)
	delete(r.mouse, id)
}

// SetKeyboard records whether the loop currently has a keyboard hook.
func (r *Registry) SetKeyboard(id types.ID, want bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if want {
		r.keyboard[id] = true
	} else {
		delete(r.keyboard, id)
	}
}

// HasKeyboard reports whether the loop is registered for keyboard
// events.
func (r *Registry) HasKeyboard(id types.ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keyboard[id]
}

// SetMouse records whether the loop currently has a mouse hook.
func (r *Registry) SetMouse(id types.ID, want bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if want {
		r.mouse[id] = true
	} else {
		delete(r.mouse, id)
	}
}

// HasMouse reports whether the loop is registered for mouse events.
func (r *Registry) HasMouse(id types.ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mouse[id]
}

// KeyboardWorkers snapshots the workers of every loop registered for
// keyboard events. The lock is held only for the duration of the clone;
// owners whose listener is gone are skipped.
func (r *Registry) KeyboardWorkers() []*worker.Worker {
	return r.workers(r.keyboard)
}

// MouseWorkers snapshots the workers of every loop registered for mouse
// events.
func (r *Registry) MouseWorkers() []*worker.Worker {
	return r.workers(r.mouse)
}

func (r *Registry) workers(index map[types.ID]bool) []*worker.Worker {
	r.mu.Lock()
	refs := make([]weak.Pointer[OwnerRef], 0, len(index))
	for id := range index {
		if p, ok := r.owners[id]; ok {
			refs = append(refs, p)
		}
	}
	r.mu.Unlock()

	out := make([]*worker.Worker, 0, len(refs))
	for _, p := range refs {
		if ref := p.Value(); ref != nil && ref.Owner != nil {
			if w := ref.Owner.Worker(); w != nil {
				out = append(out, w)
			}
		} else {
			logging.L().Debug("hookloop", "registered loop has no live owner, skipping")
		}
	}
	return out
}

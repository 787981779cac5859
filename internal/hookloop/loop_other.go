//go:build !windows

package hookloop

import (
	"sync/atomic"
	"weak"

	"github.com/pzyyll/kmhook-go/internal/logging"
	"github.com/pzyyll/kmhook-go/types"
)

// Loop is a stub on platforms without a hook backend: the pump runs and
// honors recheck and stop so the facade behaves uniformly, but no
// events are produced.
type Loop struct {
	id       types.ID
	owner    weak.Pointer[OwnerRef]
	rawInput bool

	running atomic.Bool
	cmds    chan int
}

const (
	cmdRecheck = iota
	cmdQuit
)

// NewLoop creates a loop for the listener anchored by ref and adds it
// to the process registry.
func NewLoop(id types.ID, ref *OwnerRef, rawInput bool) *Loop {
	l := &Loop{
		id:       id,
		owner:    weak.Make(ref),
		rawInput: rawInput,
	}
	Default().Register(id, ref)
	return l
}

func (l *Loop) upgradeOwner() Owner {
	if ref := l.owner.Value(); ref != nil {
		return ref.Owner
	}
	return nil
}

func (l *Loop) recheck() {
	owner := l.upgradeOwner()
	if owner == nil {
		return
	}
	Default().SetKeyboard(l.id, owner.HasKeyboardEvent())
	Default().SetMouse(l.id, owner.HasMouseEvent())
}

// RunWithThread starts the pump goroutine and returns once it accepts
// commands. Starting a running loop is a no-op.
func (l *Loop) RunWithThread() {
	if !l.running.CompareAndSwap(false, true) {
		return
	}
	logging.L().Debug("hookloop", "no hook backend on this platform, running stub pump")
	l.cmds = make(chan int, 16)
	l.recheck()
	go func() {
		defer l.running.Store(false)
		for cmd := range l.cmds {
			if cmd == cmdQuit {
				break
			}
			l.recheck()
		}
		Default().SetKeyboard(l.id, false)
		Default().SetMouse(l.id, false)
	}()
}

// Stop asks the pump goroutine to exit.
func (l *Loop) Stop() {
	if !l.running.Load() {
		return
	}
	select {
	case l.cmds <- cmdQuit:
	default:
	}
}

// PostRecheck asks the pump to recompute the wanted-event flags.
func (l *Loop) PostRecheck() {
	if !l.running.Load() {
		return
	}
	select {
	case l.cmds <- cmdRecheck:
	default:
	}
}

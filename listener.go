package kmhook

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pzyyll/kmhook-go/internal/config"
	"github.com/pzyyll/kmhook-go/internal/hookloop"
	"github.com/pzyyll/kmhook-go/internal/logging"
	"github.com/pzyyll/kmhook-go/internal/worker"
	"github.com/pzyyll/kmhook-go/types"
)

// EventCallback receives every event selected by its subscription.
type EventCallback func(types.EventType)

// ShortcutCallback fires when its chord matches.
type ShortcutCallback func()

var idCounter atomic.Uint64

func genID() types.ID {
	return types.ID(idCounter.Add(1))
}

type subscription struct {
	selector types.EventType
	cb       EventCallback
}

type shortcutBinding struct {
	shortcut types.Shortcut
	cb       ShortcutCallback
}

// triggerGate is the per-binding multi-press state machine: a press
// counter and the instant of the previous press. It is a plain counter
// rather than a waiting task because it runs on the worker goroutine
// and must return promptly.
type triggerGate struct {
	mu    sync.Mutex
	count uint32
	last  time.Time
}

// fire records one press and reports whether the sequence completed.
func (g *triggerGate) fire(required uint32, window time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	if g.count == 0 || now.Sub(g.last) < window {
		g.count++
	} else {
		g.count = 1
	}
	g.last = now

	if g.count >= required {
		g.count = 0
		return true
	}
	return false
}

// Listener is the top-level facade: it owns a hook loop and a worker,
// stores the registered subscriptions and shortcuts, and tells the loop
// when hooks are needed.
type Listener struct {
	cfg *config.Config

	loop   *hookloop.Loop
	worker *worker.Worker
	// ownerRef anchors the weak back-references held by the loop and
	// the process registry. Dropping the listener drops the anchor.
	ownerRef *hookloop.OwnerRef

	eventMu  sync.Mutex
	eventMap map[types.ID]subscription

	shortcutMu  sync.Mutex
	shortcutMap map[types.ID]shortcutBinding

	shortcutExMu  sync.Mutex
	shortcutExMap map[types.ID][]types.ID
}

// New creates an idle listener. Startup installs the threads; hooks are
// installed only once something is registered.
func New() *Listener {
	cfg := engineConfig()
	l := &Listener{
		cfg:           cfg,
		eventMap:      make(map[types.ID]subscription),
		shortcutMap:   make(map[types.ID]shortcutBinding),
		shortcutExMap: make(map[types.ID][]types.ID),
	}
	l.worker = worker.New(worker.Options{
		MaxKeys:       cfg.MaxKeys,
		AsyncDispatch: cfg.AsyncDispatch,
	})
	l.ownerRef = &hookloop.OwnerRef{Owner: l}
	l.loop = hookloop.NewLoop(genID(), l.ownerRef, cfg.RawInput)
	return l
}

// Worker returns the queue the hook layer posts raw events to.
func (l *Listener) Worker() *worker.Worker {
	return l.worker
}

// HasKeyboardEvent reports whether any registration needs the keyboard
// hook: any shortcut, or any subscription selecting keyboard or all
// events.
func (l *Listener) HasKeyboardEvent() bool {
	l.shortcutMu.Lock()
	n := len(l.shortcutMap)
	l.shortcutMu.Unlock()
	if n > 0 {
		return true
	}

	l.eventMu.Lock()
	defer l.eventMu.Unlock()
	for _, sub := range l.eventMap {
		if sub.selector.Kind == types.KindKeyboard || sub.selector.Kind == types.KindAll {
			return true
		}
	}
	return false
}

// HasMouseEvent reports whether any subscription selects mouse or all
// events.
func (l *Listener) HasMouseEvent() bool {
	l.eventMu.Lock()
	defer l.eventMu.Unlock()
	for _, sub := range l.eventMap {
		if sub.selector.Kind == types.KindMouse || sub.selector.Kind == types.KindAll {
			return true
		}
	}
	return false
}

// AddEventListener subscribes cb to events. A nil selector subscribes
// to everything; a kind-only selector narrows to that kind.
func (l *Listener) AddEventListener(cb EventCallback, selector *types.EventType) (types.ID, error) {
	if cb == nil {
		return 0, ErrNilCallback
	}
	sel := types.AllEvents()
	if selector != nil {
		sel = *selector
	}

	id := genID()
	l.eventMu.Lock()
	l.eventMap[id] = subscription{selector: sel, cb: cb}
	l.eventMu.Unlock()

	l.loop.PostRecheck()
	return id, nil
}

// AddGlobalShortcut binds cb to a chord like "Ctrl+Shift+A". Binding a
// chord equal to an existing one fails with ErrShortcutExists.
func (l *Listener) AddGlobalShortcut(spec string, cb ShortcutCallback) (types.ID, error) {
	if cb == nil {
		return 0, ErrNilCallback
	}
	id, err := l.registerShortcut(spec, cb)
	if err != nil {
		return 0, err
	}
	l.loop.PostRecheck()
	return id, nil
}

// AddGlobalShortcutTrigger binds cb behind a multi-press gate: it fires
// once per count consecutive matches whose presses land within the
// window. windowMs defaults to the configured trigger interval.
func (l *Listener) AddGlobalShortcutTrigger(spec string, cb ShortcutCallback, count uint32, windowMs ...uint32) (types.ID, error) {
	if cb == nil {
		return 0, ErrNilCallback
	}
	interval := l.cfg.TriggerIntervalMs
	if len(windowMs) > 0 {
		interval = windowMs[0]
	}
	window := time.Duration(interval) * time.Millisecond

	gate := &triggerGate{}
	return l.AddGlobalShortcut(spec, func() {
		if gate.fire(count, window) {
			cb()
		}
	})
}

func (l *Listener) registerShortcut(spec string, cb ShortcutCallback) (types.ID, error) {
	shortcut, err := types.ParseShortcut(spec)
	if err != nil {
		return 0, err
	}

	id := genID()
	l.shortcutMu.Lock()
	defer l.shortcutMu.Unlock()
	for _, binding := range l.shortcutMap {
		if binding.shortcut.Equal(shortcut) {
			return 0, ErrShortcutExists
		}
	}
	l.shortcutMap[id] = shortcutBinding{shortcut: shortcut, cb: cb}
	return id, nil
}

// DelEventByID removes a subscription or shortcut, including any
// bindings the handle expanded to.
func (l *Listener) DelEventByID(id types.ID) {
	l.shortcutExMu.Lock()
	expanded := l.shortcutExMap[id]
	delete(l.shortcutExMap, id)
	l.shortcutExMu.Unlock()

	l.shortcutMu.Lock()
	for _, sub := range expanded {
		delete(l.shortcutMap, sub)
	}
	delete(l.shortcutMap, id)
	l.shortcutMu.Unlock()

	l.eventMu.Lock()
	delete(l.eventMap, id)
	l.eventMu.Unlock()

	l.loop.PostRecheck()
}

// DelAllEvents clears every subscription and shortcut.
func (l *Listener) DelAllEvents() {
	l.eventMu.Lock()
	clear(l.eventMap)
	l.eventMu.Unlock()

	l.shortcutMu.Lock()
	clear(l.shortcutMap)
	l.shortcutMu.Unlock()

	l.shortcutExMu.Lock()
	clear(l.shortcutExMap)
	l.shortcutExMu.Unlock()

	l.loop.PostRecheck()
}

// Startup starts the hook loop thread and runs the worker. With
// workThread (the default) the worker runs on its own goroutine and the
// returned channel closes when it exits; otherwise Startup blocks until
// shutdown and returns nil.
func (l *Listener) Startup(workThread ...bool) <-chan struct{} {
	threaded := true
	if len(workThread) > 0 {
		threaded = workThread[0]
	}

	l.loop.RunWithThread()
	return l.worker.Run(l.onEvent, threaded)
}

// Shutdown clears all registrations, stops the worker and the hook
// loop. It does not join the worker; callers hold the channel returned
// by Startup. Idempotent.
func (l *Listener) Shutdown() {
	l.DelAllEvents()
	l.worker.PostMsg(worker.StopMsg{})
	l.loop.Stop()
}

// onEvent runs on the worker goroutine for every translated event.
// Tables are snapshotted and released before any callback runs, so
// callbacks may re-enter the listener API.
func (l *Listener) onEvent(et types.EventType) {
	l.eventMu.Lock()
	subs := make([]subscription, 0, len(l.eventMap))
	for _, sub := range l.eventMap {
		if sub.selector.Selects(et) {
			subs = append(subs, sub)
		}
	}
	l.eventMu.Unlock()

	for _, sub := range subs {
		invoke(func() { sub.cb(et) })
	}

	for _, cb := range l.matchShortcuts(et) {
		invoke(cb)
	}
}

// matchShortcuts collects the shortcut callbacks triggered by a pressed
// keyboard transition.
func (l *Listener) matchShortcuts(et types.EventType) []ShortcutCallback {
	if et.Kind != types.KindKeyboard || et.Key == nil {
		return nil
	}
	info := et.Key
	if info.State != types.Pressed || info.Keyboard == nil {
		return nil
	}

	l.shortcutMu.Lock()
	bindings := make([]shortcutBinding, 0, len(l.shortcutMap))
	for _, b := range l.shortcutMap {
		bindings = append(bindings, b)
	}
	l.shortcutMu.Unlock()

	var cbs []ShortcutCallback
	for _, b := range bindings {
		if !b.shortcut.MatchState(info.Keyboard) {
			continue
		}
		// A modifier+key chord must complete on the normal key: the
		// chord also matches when the modifier arrives last (A then
		// Ctrl), and that press must not fire it.
		if b.shortcut.HasModifier() && b.shortcut.HasNormalKey() && info.Key.IsModifier() {
			continue
		}
		cbs = append(cbs, b.cb)
	}
	return cbs
}

// invoke guards a user callback: a panic is logged and dispatch
// continues.
func invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.L().Error("listener", "callback panic: %v", r)
		}
	}()
	fn()
}

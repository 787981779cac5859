//go:build windows

package hookloop

import (
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"unsafe"
	"weak"

	"golang.org/x/sys/windows"

	"github.com/pzyyll/kmhook-go/internal/logging"
	"github.com/pzyyll/kmhook-go/internal/worker"
	"github.com/pzyyll/kmhook-go/types"
)

// Win32 API
var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	kernel32                = windows.NewLazySystemDLL("kernel32.dll")
	procSetWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessage          = user32.NewProc("GetMessageW")
	procTranslateMessage    = user32.NewProc("TranslateMessage")
	procDispatchMessage     = user32.NewProc("DispatchMessageW")
	procPostThreadMessage   = user32.NewProc("PostThreadMessageW")
	procSetThreadPriority   = kernel32.NewProc("SetThreadPriority")
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14

	hcAction = 0

	wmQuit = 0x0012
	wmUser = 0x0400

	// WM_USER discriminator asking the pump to recompute which hooks
	// should be installed.
	recheckHook = 1

	threadPriorityTimeCritical = 15
)

// kbdllHookStruct is the Windows low-level keyboard hook payload.
type kbdllHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

// msllHookStruct is the Windows low-level mouse hook payload.
type msllHookStruct struct {
	Pt          point
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type point struct {
	X int32
	Y int32
}

// winMsg mirrors the Windows MSG structure.
type winMsg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

// Loop owns one dedicated message-pump thread. Hook handles and the
// duplicate-timestamp cell are touched only from that thread: the OS
// requires teardown from the installing thread, and hook procedures run
// on it as well, so no locking is needed.
type Loop struct {
	id       types.ID
	owner    weak.Pointer[OwnerRef]
	rawInput bool

	threadID atomic.Uint32
	running  atomic.Bool

	// pump-thread confined state
	keyboardHook uintptr
	mouseHook    uintptr
	lastKeyTime  uint32
	hwnd         uintptr
}

// pumpLoops resolves the loop owning the current pump thread inside the
// shared hook procedures, which receive no user context from the OS.
var pumpLoops sync.Map // thread id (uint32) -> *Loop

var (
	hookProcOnce      sync.Once
	keyboardProcPtr   uintptr
	mouseProcPtr      uintptr
	rawInputWndProcPtr uintptr
)

func hookProcs() (kb, mouse uintptr) {
	hookProcOnce.Do(func() {
		keyboardProcPtr = syscall.NewCallback(keyboardHookProc)
		mouseProcPtr = syscall.NewCallback(mouseHookProc)
		rawInputWndProcPtr = syscall.NewCallback(rawInputWndProc)
	})
	return keyboardProcPtr, mouseProcPtr
}

// NewLoop creates a loop for the listener anchored by ref and adds it
// to the process registry. The loop keeps only a weak reference back.
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

func currentLoop() *Loop {
	if v, ok := pumpLoops.Load(windows.GetCurrentThreadId()); ok {
		return v.(*Loop)
	}
	return nil
}

// keyboardHookProc runs on the pump thread of the loop that installed
// the hook. It must never block: it snapshots the registry, posts, and
// chains.
func keyboardHookProc(nCode, wParam, lParam uintptr) uintptr {
	if int32(nCode) != hcAction {
		return callNextHook(nCode, wParam, lParam)
	}

	kb := (*kbdllHookStruct)(unsafe.Pointer(lParam))
	if l := currentLoop(); l != nil {
		// Some Windows versions redeliver the same event with an
		// identical timestamp.
		if kb.Time == l.lastKeyTime {
			logging.L().Debug("hookloop", "dropping keyboard event with repeated timestamp %d", kb.Time)
			return callNextHook(nCode, wParam, lParam)
		}
		l.lastKeyTime = kb.Time
	}

	msg := &worker.KeyboardSysMsg{
		WMCode:   uint32(wParam),
		VkCode:   kb.VkCode,
		ScanCode: kb.ScanCode,
		Flags:    kb.Flags,
		Time:     kb.Time,
	}
	for _, w := range Default().KeyboardWorkers() {
		w.PostMsg(msg)
	}

	return callNextHook(nCode, wParam, lParam)
}

func mouseHookProc(nCode, wParam, lParam uintptr) uintptr {
	if int32(nCode) != hcAction {
		return callNextHook(nCode, wParam, lParam)
	}

	ms := (*msllHookStruct)(unsafe.Pointer(lParam))
	msg := &worker.MouseSysMsg{
		WMCode:    uint32(wParam),
		Pt:        types.Pos{X: ms.Pt.X, Y: ms.Pt.Y},
		MouseData: ms.MouseData,
		Flags:     ms.Flags,
		Time:      ms.Time,
	}
	for _, w := range Default().MouseWorkers() {
		w.PostMsg(msg)
	}

	return callNextHook(nCode, wParam, lParam)
}

func callNextHook(nCode, wParam, lParam uintptr) uintptr {
	ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
	return ret
}

func (l *Loop) installKeyboardHook() {
	if l.keyboardHook != 0 {
		return
	}
	kb, _ := hookProcs()
	h, _, err := procSetWindowsHookEx.Call(whKeyboardLL, kb, 0, 0)
	if h == 0 {
		// Transient failures are retried on the next recheck.
		logging.L().Debug("hookloop", "SetWindowsHookEx(keyboard) failed: %v", err)
		return
	}
	l.keyboardHook = h
	Default().SetKeyboard(l.id, true)
}

func (l *Loop) installMouseHook() {
	if l.mouseHook != 0 {
		return
	}
	_, mouse := hookProcs()
	h, _, err := procSetWindowsHookEx.Call(whMouseLL, mouse, 0, 0)
	if h == 0 {
		logging.L().Debug("hookloop", "SetWindowsHookEx(mouse) failed: %v", err)
		return
	}
	l.mouseHook = h
	Default().SetMouse(l.id, true)
}

func (l *Loop) uninstallKeyboardHook() {
	if l.keyboardHook == 0 {
		return
	}
	procUnhookWindowsHookEx.Call(l.keyboardHook)
	l.keyboardHook = 0
	Default().SetKeyboard(l.id, false)
}

func (l *Loop) uninstallMouseHook() {
	if l.mouseHook == 0 {
		return
	}
	procUnhookWindowsHookEx.Call(l.mouseHook)
	l.mouseHook = 0
	Default().SetMouse(l.id, false)
}

// recheck recomputes the installed-hook set from the owner's current
// registrations. Runs on the pump thread.
func (l *Loop) recheck() {
	owner := l.upgradeOwner()
	if owner == nil {
		return
	}

	if l.rawInput {
		// Raw input delivery is gated by registry membership alone;
		// the devices stay registered for the window's lifetime.
		Default().SetKeyboard(l.id, owner.HasKeyboardEvent())
		Default().SetMouse(l.id, owner.HasMouseEvent())
		return
	}

	if owner.HasKeyboardEvent() {
		l.installKeyboardHook()
	} else {
		l.uninstallKeyboardHook()
	}
	if owner.HasMouseEvent() {
		l.installMouseHook()
	} else {
		l.uninstallMouseHook()
	}
}

func (l *Loop) run(started chan<- struct{}) {
	// Hooks are thread-bound; the pump goroutine must stay on one OS
	// thread for its whole life.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	tid := windows.GetCurrentThreadId()
	l.threadID.Store(tid)
	pumpLoops.Store(tid, l)
	hookProcs()

	if ret, _, err := procSetThreadPriority.Call(uintptr(windows.CurrentThread()), threadPriorityTimeCritical); ret == 0 {
		logging.L().Debug("hookloop", "SetThreadPriority failed: %v", err)
	}

	if l.rawInput {
		if err := l.initRawInput(); err != nil {
			logging.L().Error("hookloop", "raw input init failed: %v", err)
			l.threadID.Store(0)
			pumpLoops.Delete(tid)
			close(started)
			return
		}
	}

	l.recheck()
	close(started)

	var msg winMsg
	for {
		ret, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
		if int32(ret) <= 0 {
			break
		}
		if msg.Message == wmUser && uint32(msg.WParam) == recheckHook {
			l.recheck()
			continue
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
		procDispatchMessage.Call(uintptr(unsafe.Pointer(&msg)))
	}

	// Teardown happens on the installing thread.
	l.uninstallKeyboardHook()
	l.uninstallMouseHook()
	if l.rawInput {
		l.destroyRawInput()
		Default().SetKeyboard(l.id, false)
		Default().SetMouse(l.id, false)
	}
	pumpLoops.Delete(tid)
	l.threadID.Store(0)
}

// RunWithThread starts the pump thread and returns once it is ready to
// accept recheck messages. Starting a running loop is a no-op.
func (l *Loop) RunWithThread() {
	if !l.running.CompareAndSwap(false, true) {
		return
	}
	started := make(chan struct{})
	go func() {
		defer l.running.Store(false)
		l.run(started)
	}()
	<-started
}

// Stop posts a quit message to the pump thread. The thread uninstalls
// its hooks on the way out.
func (l *Loop) Stop() {
	tid := l.threadID.Load()
	if tid == 0 {
		return
	}
	procPostThreadMessage.Call(uintptr(tid), wmQuit, 0, 0)
}

// PostRecheck asks the pump thread to recompute the installed hooks.
// Dropped when the loop is not running; RunWithThread rechecks on
// startup anyway.
func (l *Loop) PostRecheck() {
	tid := l.threadID.Load()
	if tid == 0 {
		return
	}
	procPostThreadMessage.Call(uintptr(tid), wmUser, recheckHook, 0)
}

package worker

import (
	"github.com/pzyyll/kmhook-go/keycode"
	"github.com/pzyyll/kmhook-go/types"
)

// Portable copies of the Windows message codes the pumps report. The
// hook layer forwards them untouched so translation stays in one place
// and compiles on every platform.
const (
	WMKeyDown     = 0x0100
	WMKeyUp       = 0x0101
	WMSysKeyDown  = 0x0104
	WMSysKeyUp    = 0x0105
	WMMouseMove   = 0x0200
	WMLButtonDown = 0x0201
	WMLButtonUp   = 0x0202
	WMRButtonDown = 0x0204
	WMRButtonUp   = 0x0205
	WMMButtonDown = 0x0207
	WMMButtonUp   = 0x0208
	WMXButtonDown = 0x020B
	WMXButtonUp   = 0x020C
)

// KBDLLHOOKSTRUCT flag: the scan code needs the 0xE0 extended prefix.
const llkhfExtended = 0x01

const (
	xButton1 = 1
	xButton2 = 2
)

// Msg is a raw input notification posted to the worker.
type Msg interface {
	isMsg()
}

// KeyboardSysMsg carries one raw keyboard transition: the message code
// discriminating down/up plus the hook payload fields.
type KeyboardSysMsg struct {
	WMCode   uint32
	VkCode   uint32
	ScanCode uint32
	Flags    uint32
	Time     uint32
}

// MouseSysMsg carries one raw mouse notification: the message code plus
// the hook payload fields. Pt is the absolute cursor position.
type MouseSysMsg struct {
	WMCode    uint32
	Pt        types.Pos
	MouseData uint32
	Flags     uint32
	Time      uint32
}

// StopMsg asks the consumer loop to exit.
type StopMsg struct{}

func (*KeyboardSysMsg) isMsg() {}
func (*MouseSysMsg) isMsg()    {}
func (StopMsg) isMsg()         {}

// translator owns the consumer-confined state: the keyboard aggregate
// and the previous mouse position. It lives on the worker goroutine and
// is never shared.
type translator struct {
	keyboard *types.KeyboardState
	lastPos  types.Pos
	hasPos   bool
}

func newTranslator(maxKeys int) *translator {
	return &translator{keyboard: types.NewKeyboardState(maxKeys)}
}

func (t *translator) translate(m Msg) *types.EventType {
	switch m := m.(type) {
	case *KeyboardSysMsg:
		return t.translateKeyboard(m)
	case *MouseSysMsg:
		return t.translateMouse(m)
	}
	return nil
}

func (t *translator) translateKeyboard(m *KeyboardSysMsg) *types.EventType {
	scan := m.ScanCode
	if m.Flags&llkhfExtended != 0 {
		scan = 0xE000 | (scan & 0xFF)
	}
	id, ok := keycode.FromWindows(scan, uint16(m.VkCode))
	if !ok {
		return nil
	}

	state := types.Released
	if m.WMCode == WMKeyDown || m.WMCode == WMSysKeyDown {
		state = types.Pressed
	}

	old := t.keyboard.Clone()
	t.keyboard.UpdateKey(id, state)
	if old.Equal(t.keyboard) {
		// Auto-repeat or an out-of-sync duplicate: the aggregate did
		// not move, so subscribers see nothing.
		return nil
	}

	ev := types.KeyboardEvent(&types.KeyInfo{
		Key:      id,
		State:    state,
		Keyboard: t.keyboard.Clone(),
	})
	return &ev
}

func (t *translator) translateMouse(m *MouseSysMsg) *types.EventType {
	var button *types.MouseButton
	switch m.WMCode {
	case WMLButtonDown:
		button = &types.MouseButton{Kind: types.MouseLeft, State: types.MousePressed}
	case WMLButtonUp:
		button = &types.MouseButton{Kind: types.MouseLeft, State: types.MouseReleased}
	case WMRButtonDown:
		button = &types.MouseButton{Kind: types.MouseRight, State: types.MousePressed}
	case WMRButtonUp:
		button = &types.MouseButton{Kind: types.MouseRight, State: types.MouseReleased}
	case WMMButtonDown:
		button = &types.MouseButton{Kind: types.MouseMiddle, State: types.MousePressed}
	case WMMButtonUp:
		button = &types.MouseButton{Kind: types.MouseMiddle, State: types.MouseReleased}
	case WMXButtonDown, WMXButtonUp:
		state := types.MousePressed
		if m.WMCode == WMXButtonUp {
			state = types.MouseReleased
		}
		switch m.MouseData >> 16 {
		case xButton1:
			button = &types.MouseButton{Kind: types.MouseX1, State: state}
		case xButton2:
			button = &types.MouseButton{Kind: types.MouseX2, State: state}
		default:
			return nil
		}
	case WMMouseMove:
		button = &types.MouseButton{Kind: types.MouseMove, State: types.MouseMoving}
	default:
		return nil
	}

	var rel types.Pos
	if t.hasPos {
		rel = types.Pos{X: m.Pt.X - t.lastPos.X, Y: m.Pt.Y - t.lastPos.Y}
	}
	t.lastPos = m.Pt
	t.hasPos = true

	ev := types.MouseEvent(&types.MouseInfo{
		Button:      button,
		Pos:         m.Pt,
		RelativePos: rel,
	})
	return &ev
}

package worker

import (
	"testing"
	"time"

	"github.com/pzyyll/kmhook-go/keycode"
	"github.com/pzyyll/kmhook-go/types"
)

func keyMsg(wm uint32, scan, vk uint32) *KeyboardSysMsg {
	return &KeyboardSysMsg{WMCode: wm, VkCode: vk, ScanCode: scan}
}

func TestTranslateKeyboardPressRelease(t *testing.T) {
	tr := newTranslator(0)

	ev := tr.translate(keyMsg(WMKeyDown, 0x1E, 0x41))
	if ev == nil || ev.Kind != types.KindKeyboard {
		t.Fatalf("press not translated: %v", ev)
	}
	info := ev.Key
	if info.Key != keycode.UsA || info.State != types.Pressed {
		t.Errorf("got %v %v, want UsA Pressed", info.Key, info.State)
	}
	if keys := info.Keyboard.Keys(); len(keys) != 1 || keys[0] != keycode.UsA {
		t.Errorf("snapshot keys = %v, want [UsA]", keys)
	}

	ev = tr.translate(keyMsg(WMKeyUp, 0x1E, 0x41))
	if ev == nil || ev.Key.State != types.Released {
		t.Fatalf("release not translated: %v", ev)
	}
	if keys := ev.Key.Keyboard.Keys(); len(keys) != 0 {
		t.Errorf("snapshot after release = %v, want empty", keys)
	}
}

func TestTranslateSuppressesAutoRepeat(t *testing.T) {
	tr := newTranslator(0)

	if ev := tr.translate(keyMsg(WMKeyDown, 0x1E, 0x41)); ev == nil {
		t.Fatal("first press dropped")
	}
	// OS auto-repeat delivers the same down transition again.
	if ev := tr.translate(keyMsg(WMKeyDown, 0x1E, 0x41)); ev != nil {
		t.Errorf("repeat press delivered: %v", ev)
	}
	if ev := tr.translate(keyMsg(WMKeyUp, 0x1E, 0x41)); ev == nil {
		t.Fatal("release after repeat dropped")
	}
	// Releasing again is a no-op transition as well.
	if ev := tr.translate(keyMsg(WMKeyUp, 0x1E, 0x41)); ev != nil {
		t.Errorf("duplicate release delivered: %v", ev)
	}
}

func TestTranslateKeyboardVariants(t *testing.T) {
	tests := []struct {
		name  string
		msg   *KeyboardSysMsg
		key   keycode.KeyId
		state types.KeyState
	}{
		{"syskey down is pressed", keyMsg(WMSysKeyDown, 0x38, 0xA4), keycode.AltLeft, types.Pressed},
		{"right control via vk", keyMsg(WMKeyDown, 0x1D, 0xA3), keycode.ControlRight, types.Pressed},
		{"extended flag composes scan", &KeyboardSysMsg{
			WMCode: WMKeyDown, VkCode: 0x26, ScanCode: 0x48, Flags: llkhfExtended,
		}, keycode.ArrowUp, types.Pressed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTranslator(0)
			ev := tr.translate(tt.msg)
			if ev == nil {
				t.Fatal("message dropped")
			}
			if ev.Key.Key != tt.key || ev.Key.State != tt.state {
				t.Errorf("got %v %v, want %v %v", ev.Key.Key, ev.Key.State, tt.key, tt.state)
			}
		})
	}
}

func TestTranslateUnknownKeyDropped(t *testing.T) {
	tr := newTranslator(0)
	if ev := tr.translate(keyMsg(WMKeyDown, 0x7F11, 0)); ev != nil {
		t.Errorf("unknown scan code delivered: %v", ev)
	}
}

func TestTranslateMouseButtons(t *testing.T) {
	tests := []struct {
		name  string
		wm    uint32
		data  uint32
		kind  types.MouseButtonKind
		state types.MouseState
	}{
		{"left down", WMLButtonDown, 0, types.MouseLeft, types.MousePressed},
		{"left up", WMLButtonUp, 0, types.MouseLeft, types.MouseReleased},
		{"right down", WMRButtonDown, 0, types.MouseRight, types.MousePressed},
		{"middle up", WMMButtonUp, 0, types.MouseMiddle, types.MouseReleased},
		{"x1 down", WMXButtonDown, 1 << 16, types.MouseX1, types.MousePressed},
		{"x2 up", WMXButtonUp, 2 << 16, types.MouseX2, types.MouseReleased},
		{"move", WMMouseMove, 0, types.MouseMove, types.MouseMoving},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTranslator(0)
			ev := tr.translate(&MouseSysMsg{WMCode: tt.wm, MouseData: tt.data, Pt: types.Pos{X: 10, Y: 20}})
			if ev == nil || ev.Kind != types.KindMouse {
				t.Fatalf("not translated: %v", ev)
			}
			btn := ev.Mouse.Button
			if btn == nil || btn.Kind != tt.kind || btn.State != tt.state {
				t.Errorf("button = %+v, want kind %v state %v", btn, tt.kind, tt.state)
			}
			if ev.Mouse.Pos != (types.Pos{X: 10, Y: 20}) {
				t.Errorf("pos = %+v", ev.Mouse.Pos)
			}
		})
	}
}

func TestTranslateMouseRelativePos(t *testing.T) {
	tr := newTranslator(0)

	ev := tr.translate(&MouseSysMsg{WMCode: WMMouseMove, Pt: types.Pos{X: 100, Y: 100}})
	if ev.Mouse.RelativePos != (types.Pos{}) {
		t.Errorf("first report has delta %+v", ev.Mouse.RelativePos)
	}

	ev = tr.translate(&MouseSysMsg{WMCode: WMMouseMove, Pt: types.Pos{X: 130, Y: 80}})
	if ev.Mouse.RelativePos != (types.Pos{X: 30, Y: -20}) {
		t.Errorf("delta = %+v, want {30 -20}", ev.Mouse.RelativePos)
	}
}

func TestTranslateMouseUnknownDropped(t *testing.T) {
	tr := newTranslator(0)
	if ev := tr.translate(&MouseSysMsg{WMCode: 0x020A}); ev != nil {
		t.Errorf("wheel message delivered: %v", ev)
	}
	if ev := tr.translate(&MouseSysMsg{WMCode: WMXButtonDown, MouseData: 7 << 16}); ev != nil {
		t.Errorf("unknown x-button delivered: %v", ev)
	}
}

func TestWorkerFIFOAndStop(t *testing.T) {
	w := New(Options{})
	var got []keycode.KeyId
	done := w.Run(func(et types.EventType) {
		if et.Kind == types.KindKeyboard {
			got = append(got, et.Key.Key)
		}
	}, true)

	w.PostMsg(keyMsg(WMKeyDown, 0x1E, 0x41))
	w.PostMsg(keyMsg(WMKeyDown, 0x30, 0x42))
	w.PostMsg(keyMsg(WMKeyUp, 0x1E, 0x41))
	w.PostMsg(StopMsg{})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}

	want := []keycode.KeyId{keycode.UsA, keycode.UsB, keycode.UsA}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}

	// Posting after stop is a no-op.
	w.PostMsg(keyMsg(WMKeyDown, 0x1E, 0x41))
}

func TestWorkerInlineRun(t *testing.T) {
	w := New(Options{})
	w.PostMsg(keyMsg(WMKeyDown, 0x1E, 0x41)) // dropped: not running yet

	count := 0
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		if done := w.Run(func(types.EventType) { count++ }, false); done != nil {
			t.Error("inline run returned a join channel")
		}
	}()

	// Give the inline loop a moment to create its queue.
	time.Sleep(50 * time.Millisecond)
	w.PostMsg(keyMsg(WMKeyDown, 0x30, 0x42))
	w.PostMsg(StopMsg{})

	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("inline run did not return")
	}
	if count != 1 {
		t.Errorf("handled %d events, want 1", count)
	}
}

package types

import (
	"bytes"

	"github.com/pzyyll/kmhook-go/keycode"
)

// MaxKeys is the number of normal-key slots tracked simultaneously,
// matching a standard 6-key-rollover HID report.
const MaxKeys = 6

// sideModifiers in HID report bit order, used to decompose the
// modifier byte back into key identifiers.
var sideModifiers = [...]keycode.KeyId{
	keycode.ControlLeft,
	keycode.ShiftLeft,
	keycode.AltLeft,
	keycode.MetaLeft,
	keycode.ControlRight,
	keycode.ShiftRight,
	keycode.AltRight,
	keycode.MetaRight,
}

// KeyboardState is the set of keys currently considered pressed:
// a modifier bitset plus the normal keys in press order. A key is in
// the state iff its last recorded transition was Pressed.
type KeyboardState struct {
	modifiers keycode.Modifiers
	keys      []keycode.KeyId
	maxKeys   int
}

// NewKeyboardState creates an empty aggregate. maxKeys <= 0 selects
// MaxKeys.
func NewKeyboardState(maxKeys int) *KeyboardState {
	if maxKeys <= 0 {
		maxKeys = MaxKeys
	}
	return &KeyboardState{
		keys:    make([]keycode.KeyId, 0, maxKeys),
		maxKeys: maxKeys,
	}
}

// UpdateKey records a key transition. Updates are idempotent: applying
// the same transition twice leaves the state unchanged. Presses beyond
// the slot limit are dropped, as a 6KRO keyboard would.
func (s *KeyboardState) UpdateKey(id keycode.KeyId, state KeyState) {
	if mod := id.Modifier(); mod != 0 {
		if state == Pressed {
			s.modifiers |= mod
		} else {
			s.modifiers &^= mod
		}
		return
	}

	idx := -1
	for i, k := range s.keys {
		if k == id {
			idx = i
			break
		}
	}
	switch state {
	case Pressed:
		if idx < 0 && len(s.keys) < s.maxKeys {
			s.keys = append(s.keys, id)
		}
	case Released:
		if idx >= 0 {
			s.keys = append(s.keys[:idx], s.keys[idx+1:]...)
		}
	}
}

// Modifiers returns the pressed-modifier bitset.
func (s *KeyboardState) Modifiers() keycode.Modifiers {
	return s.modifiers
}

// Keys returns the pressed normal keys in press order.
func (s *KeyboardState) Keys() []keycode.KeyId {
	out := make([]keycode.KeyId, len(s.keys))
	copy(out, s.keys)
	return out
}

// UsbInputReport renders the state as a HID-style input report:
// modifier byte, reserved byte, then one usage byte per key slot.
func (s *KeyboardState) UsbInputReport() []byte {
	report := make([]byte, 2+s.maxKeys)
	report[0] = byte(s.modifiers)
	for i, k := range s.keys {
		report[2+i] = byte(k.Usage())
	}
	return report
}

// Equal compares two aggregates by their input reports.
func (s *KeyboardState) Equal(o *KeyboardState) bool {
	if s == nil || o == nil {
		return s == o
	}
	return bytes.Equal(s.UsbInputReport(), o.UsbInputReport())
}

// Clone returns an independent copy.
func (s *KeyboardState) Clone() *KeyboardState {
	c := &KeyboardState{
		modifiers: s.modifiers,
		keys:      make([]keycode.KeyId, len(s.keys), s.maxKeys),
		maxKeys:   s.maxKeys,
	}
	copy(c.keys, s.keys)
	return c
}

// AsShortcut views the aggregate as a chord: the pressed side-specific
// modifiers plus the normal keys in press order.
func (s *KeyboardState) AsShortcut() Shortcut {
	var mods []keycode.KeyId
	for _, m := range sideModifiers {
		if s.modifiers&m.Modifier() != 0 {
			mods = append(mods, m)
		}
	}
	return Shortcut{Modifiers: mods, Keys: s.Keys()}
}

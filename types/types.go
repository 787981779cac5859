// Package types defines the portable event model of kmhook: key and
// mouse transitions, the aggregate keyboard state, and shortcuts.
package types

import "github.com/pzyyll/kmhook-go/keycode"

// ID is an opaque handle for registered listeners and shortcuts.
type ID uint64

// KeyState is the transition direction of a key.
type KeyState uint8

const (
	Pressed KeyState = iota
	Released
)

func (s KeyState) String() string {
	if s == Pressed {
		return "Pressed"
	}
	return "Released"
}

// MouseState flags tag a mouse button value with its transition.
type MouseState uint8

const (
	MousePressed MouseState = 1 << iota
	MouseReleased
	MouseMoving
)

// MouseButtonKind enumerates the buttons the engine reports.
type MouseButtonKind uint8

const (
	MouseLeft MouseButtonKind = iota
	MouseRight
	MouseMiddle
	MouseX1
	MouseX2
	MouseMove
)

// MouseButton is a button tagged with its click state. Move events use
// the synthetic Moving tag.
type MouseButton struct {
	Kind  MouseButtonKind
	State MouseState
}

// Pos is a screen coordinate in pixels.
type Pos struct {
	X int32
	Y int32
}

// KeyInfo describes one keyboard transition. Keyboard is the aggregate
// state after applying the transition.
type KeyInfo struct {
	Key      keycode.KeyId
	State    KeyState
	Keyboard *KeyboardState
}

// MouseInfo describes one mouse transition or movement. Pos is the
// absolute cursor position, RelativePos the delta against the previous
// report.
type MouseInfo struct {
	Button      *MouseButton
	Pos         Pos
	RelativePos Pos
}

// EventKind discriminates EventType values.
type EventKind uint8

const (
	KindKeyboard EventKind = iota
	KindMouse
	KindAll
)

// EventType is the sum of the event kinds the engine delivers. A value
// with a nil payload acts as a kind selector at subscription time; the
// All kind selects every event.
type EventType struct {
	Kind  EventKind
	Key   *KeyInfo
	Mouse *MouseInfo
}

// KeyboardEvent builds a keyboard event; pass nil for a selector.
func KeyboardEvent(info *KeyInfo) EventType {
	return EventType{Kind: KindKeyboard, Key: info}
}

// MouseEvent builds a mouse event; pass nil for a selector.
func MouseEvent(info *MouseInfo) EventType {
	return EventType{Kind: KindMouse, Mouse: info}
}

// AllEvents is the selector matching every event.
func AllEvents() EventType {
	return EventType{Kind: KindAll}
}

// Selects reports whether a subscription registered with selector s
// fires for event e. Payloads are ignored; only kinds are compared.
func (s EventType) Selects(e EventType) bool {
	return s.Kind == KindAll || s.Kind == e.Kind
}

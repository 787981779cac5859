// Package keycode is the key catalog for kmhook: it maps OS-native key
// identifiers to a canonical KeyId set modeled on the USB HID usage
// tables and reports which keys are modifiers.
//
// Every KeyId carries a HID usage id, a human-readable name and, for
// modifier keys, a bit in the HID report modifier byte. Generic
// modifiers (Control, Shift, Alt, Meta) are parse-only: they carry both
// side bits and never come out of an OS lookup.
package keycode

// KeyId is the canonical identifier of a physical key.
type KeyId uint16

// Modifiers is a bitset in USB HID report order.
type Modifiers uint8

const (
	ModControlLeft  Modifiers = 1 << 0
	ModShiftLeft    Modifiers = 1 << 1
	ModAltLeft      Modifiers = 1 << 2
	ModMetaLeft     Modifiers = 1 << 3
	ModControlRight Modifiers = 1 << 4
	ModShiftRight   Modifiers = 1 << 5
	ModAltRight     Modifiers = 1 << 6
	ModMetaRight    Modifiers = 1 << 7

	ModControl = ModControlLeft | ModControlRight
	ModShift   = ModShiftLeft | ModShiftRight
	ModAlt     = ModAltLeft | ModAltRight
	ModMeta    = ModMetaLeft | ModMetaRight
)

// Contains reports whether every bit of other is set in m.
func (m Modifiers) Contains(other Modifiers) bool {
	return other&^m == 0
}

const (
	Unknown KeyId = iota

	UsA
	UsB
	UsC
	UsD
	UsE
	UsF
	UsG
	UsH
	UsI
	UsJ
	UsK
	UsL
	UsM
	UsN
	UsO
	UsP
	UsQ
	UsR
	UsS
	UsT
	UsU
	UsV
	UsW
	UsX
	UsY
	UsZ

	Us1
	Us2
	Us3
	Us4
	Us5
	Us6
	Us7
	Us8
	Us9
	Us0

	Enter
	Escape
	Backspace
	Tab
	Space
	CapsLock

	F1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	F11
	F12

	Insert
	Home
	PageUp
	Delete
	End
	PageDown
	ArrowRight
	ArrowLeft
	ArrowDown
	ArrowUp

	ControlLeft
	ShiftLeft
	AltLeft
	MetaLeft
	ControlRight
	ShiftRight
	AltRight
	MetaRight

	// Generic modifiers match either side. Produced only by parsing.
	Control
	Shift
	Alt
	Meta
)

type entry struct {
	name  string
	usage uint16
	mod   Modifiers
	scan  uint32
	vk    uint16
}

var catalog = map[KeyId]entry{
	UsA: {"UsA", 0x04, 0, 0x1E, 0x41},
	UsB: {"UsB", 0x05, 0, 0x30, 0x42},
	UsC: {"UsC", 0x06, 0, 0x2E, 0x43},
	UsD: {"UsD", 0x07, 0, 0x20, 0x44},
	UsE: {"UsE", 0x08, 0, 0x12, 0x45},
	UsF: {"UsF", 0x09, 0, 0x21, 0x46},
	UsG: {"UsG", 0x0A, 0, 0x22, 0x47},
	UsH: {"UsH", 0x0B, 0, 0x23, 0x48},
	UsI: {"UsI", 0x0C, 0, 0x17, 0x49},
	UsJ: {"UsJ", 0x0D, 0, 0x24, 0x4A},
	UsK: {"UsK", 0x0E, 0, 0x25, 0x4B},
	UsL: {"UsL", 0x0F, 0, 0x26, 0x4C},
	UsM: {"UsM", 0x10, 0, 0x32, 0x4D},
	UsN: {"UsN", 0x11, 0, 0x31, 0x4E},
	UsO: {"UsO", 0x12, 0, 0x18, 0x4F},
	UsP: {"UsP", 0x13, 0, 0x19, 0x50},
	UsQ: {"UsQ", 0x14, 0, 0x10, 0x51},
	UsR: {"UsR", 0x15, 0, 0x13, 0x52},
	UsS: {"UsS", 0x16, 0, 0x1F, 0x53},
	UsT: {"UsT", 0x17, 0, 0x14, 0x54},
	UsU: {"UsU", 0x18, 0, 0x16, 0x55},
	UsV: {"UsV", 0x19, 0, 0x2F, 0x56},
	UsW: {"UsW", 0x1A, 0, 0x11, 0x57},
	UsX: {"UsX", 0x1B, 0, 0x2D, 0x58},
	UsY: {"UsY", 0x1C, 0, 0x15, 0x59},
	UsZ: {"UsZ", 0x1D, 0, 0x2C, 0x5A},

	Us1: {"Us1", 0x1E, 0, 0x02, 0x31},
	Us2: {"Us2", 0x1F, 0, 0x03, 0x32},
	Us3: {"Us3", 0x20, 0, 0x04, 0x33},
	Us4: {"Us4", 0x21, 0, 0x05, 0x34},
	Us5: {"Us5", 0x22, 0, 0x06, 0x35},
	Us6: {"Us6", 0x23, 0, 0x07, 0x36},
	Us7: {"Us7", 0x24, 0, 0x08, 0x37},
	Us8: {"Us8", 0x25, 0, 0x09, 0x38},
	Us9: {"Us9", 0x26, 0, 0x0A, 0x39},
	Us0: {"Us0", 0x27, 0, 0x0B, 0x30},

	Enter:     {"Enter", 0x28, 0, 0x1C, 0x0D},
	Escape:    {"Escape", 0x29, 0, 0x01, 0x1B},
	Backspace: {"Backspace", 0x2A, 0, 0x0E, 0x08},
	Tab:       {"Tab", 0x2B, 0, 0x0F, 0x09},
	Space:     {"Space", 0x2C, 0, 0x39, 0x20},
	CapsLock:  {"CapsLock", 0x39, 0, 0x3A, 0x14},

	F1:  {"F1", 0x3A, 0, 0x3B, 0x70},
	F2:  {"F2", 0x3B, 0, 0x3C, 0x71},
	F3:  {"F3", 0x3C, 0, 0x3D, 0x72},
	F4:  {"F4", 0x3D, 0, 0x3E, 0x73},
	F5:  {"F5", 0x3E, 0, 0x3F, 0x74},
	F6:  {"F6", 0x3F, 0, 0x40, 0x75},
	F7:  {"F7", 0x40, 0, 0x41, 0x76},
	F8:  {"F8", 0x41, 0, 0x42, 0x77},
	F9:  {"F9", 0x42, 0, 0x43, 0x78},
	F10: {"F10", 0x43, 0, 0x44, 0x79},
	F11: {"F11", 0x44, 0, 0x57, 0x7A},
	F12: {"F12", 0x45, 0, 0x58, 0x7B},

	Insert:     {"Insert", 0x49, 0, 0xE052, 0x2D},
	Home:       {"Home", 0x4A, 0, 0xE047, 0x24},
	PageUp:     {"PageUp", 0x4B, 0, 0xE049, 0x21},
	Delete:     {"Delete", 0x4C, 0, 0xE053, 0x2E},
	End:        {"End", 0x4D, 0, 0xE04F, 0x23},
	PageDown:   {"PageDown", 0x4E, 0, 0xE051, 0x22},
	ArrowRight: {"ArrowRight", 0x4F, 0, 0xE04D, 0x27},
	ArrowLeft:  {"ArrowLeft", 0x50, 0, 0xE04B, 0x25},
	ArrowDown:  {"ArrowDown", 0x51, 0, 0xE050, 0x28},
	ArrowUp:    {"ArrowUp", 0x52, 0, 0xE048, 0x26},

	ControlLeft:  {"ControlLeft", 0xE0, ModControlLeft, 0x1D, 0xA2},
	ShiftLeft:    {"ShiftLeft", 0xE1, ModShiftLeft, 0x2A, 0xA0},
	AltLeft:      {"AltLeft", 0xE2, ModAltLeft, 0x38, 0xA4},
	MetaLeft:     {"MetaLeft", 0xE3, ModMetaLeft, 0xE05B, 0x5B},
	ControlRight: {"ControlRight", 0xE4, ModControlRight, 0xE01D, 0xA3},
	ShiftRight:   {"ShiftRight", 0xE5, ModShiftRight, 0x36, 0xA1},
	AltRight:     {"AltRight", 0xE6, ModAltRight, 0xE038, 0xA5},
	MetaRight:    {"MetaRight", 0xE7, ModMetaRight, 0xE05C, 0x5C},

	Control: {"Control", 0, ModControl, 0, 0},
	Shift:   {"Shift", 0, ModShift, 0, 0},
	Alt:     {"Alt", 0, ModAlt, 0, 0},
	Meta:    {"Meta", 0, ModMeta, 0, 0},
}

var (
	byName map[string]KeyId
	byScan map[uint32]KeyId
	byVK   map[uint16]KeyId
)

func init() {
	byName = make(map[string]KeyId, len(catalog))
	byScan = make(map[uint32]KeyId, len(catalog))
	byVK = make(map[uint16]KeyId, len(catalog))
	for id, e := range catalog {
		byName[e.name] = id
		if e.scan != 0 {
			byScan[e.scan] = id
		}
		if e.vk != 0 {
			byVK[e.vk] = id
		}
	}
}

func (k KeyId) String() string {
	if e, ok := catalog[k]; ok {
		return e.name
	}
	return "Unknown"
}

// Usage returns the USB HID usage id of the key, zero for generic
// modifiers and unknown keys.
func (k KeyId) Usage() uint16 {
	return catalog[k].usage
}

// Modifier returns the key's bits in the HID report modifier byte.
// Normal keys return zero; generic modifiers carry both side bits.
func (k KeyId) Modifier() Modifiers {
	return catalog[k].mod
}

// IsModifier reports whether the key belongs to the modifier class.
func (k KeyId) IsModifier() bool {
	return catalog[k].mod != 0
}

// Valid reports whether the id is present in the catalog.
func (k KeyId) Valid() bool {
	_, ok := catalog[k]
	return ok
}

// FromName looks up a key by its canonical name, e.g. "UsA" or
// "ControlLeft".
func FromName(name string) (KeyId, bool) {
	id, ok := byName[name]
	return id, ok
}

// FromUsage looks up a key by its HID usage id.
func FromUsage(usage uint16) (KeyId, bool) {
	for id, e := range catalog {
		if e.usage == usage && usage != 0 {
			return id, true
		}
	}
	return Unknown, false
}

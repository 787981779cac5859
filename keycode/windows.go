package keycode

// Windows virtual-key codes for the side-specific modifiers. The
// low-level hook reports these directly; raw input reports the generic
// VK_SHIFT/VK_CONTROL/VK_MENU family instead, which is why scan codes
// remain the primary lookup.
const (
	vkLWin     = 0x5B
	vkRWin     = 0x5C
	vkLControl = 0xA2
	vkRControl = 0xA3
	vkLMenu    = 0xA4
	vkRMenu    = 0xA5
)

// FromScanCode looks up a key by its set-1 scan code. Extended keys use
// the 0xE0-prefixed form (e.g. 0xE01D for right Control).
func FromScanCode(scan uint32) (KeyId, bool) {
	id, ok := byScan[scan]
	return id, ok
}

// FromVirtualKey looks up a key by its Windows virtual-key code.
func FromVirtualKey(vk uint16) (KeyId, bool) {
	id, ok := byVK[vk]
	return id, ok
}

// FromWindows resolves a key from a scan-code/virtual-key pair as
// delivered by the keyboard hook. The virtual-key code wins for
// left/right modifier disambiguation because several keyboards report
// the same scan code for both sides; everything else resolves through
// the scan code.
func FromWindows(scan uint32, vk uint16) (KeyId, bool) {
	switch vk {
	case vkLWin:
		return MetaLeft, true
	case vkRWin:
		return MetaRight, true
	case vkLControl:
		return ControlLeft, true
	case vkRControl:
		return ControlRight, true
	case vkLMenu:
		return AltLeft, true
	case vkRMenu:
		return AltRight, true
	}
	return FromScanCode(scan)
}

package keycode

import "testing"

func TestFromName(t *testing.T) {
	tests := []struct {
		name string
		want KeyId
		ok   bool
	}{
		{"UsA", UsA, true},
		{"Us0", Us0, true},
		{"F12", F12, true},
		{"Space", Space, true},
		{"ControlLeft", ControlLeft, true},
		{"Control", Control, true},
		{"ArrowUp", ArrowUp, true},
		{"Ctrl", Unknown, false},
		{"usa", Unknown, false},
		{"", Unknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromName(tt.name)
			if ok != tt.ok || got != tt.want {
				t.Errorf("FromName(%q) = (%v, %v), want (%v, %v)", tt.name, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFromWindows(t *testing.T) {
	tests := []struct {
		name string
		scan uint32
		vk   uint16
		want KeyId
		ok   bool
	}{
		{"letter by scan code", 0x1E, 0x41, UsA, true},
		{"digit by scan code", 0x02, 0x31, Us1, true},
		{"left control by vk", 0x1D, 0xA2, ControlLeft, true},
		{"right control by vk", 0x1D, 0xA3, ControlRight, true},
		{"left alt by vk", 0x38, 0xA4, AltLeft, true},
		{"right alt by vk", 0x38, 0xA5, AltRight, true},
		{"left win by vk", 0, 0x5B, MetaLeft, true},
		{"right win by vk", 0, 0x5C, MetaRight, true},
		{"extended arrow", 0xE048, 0x26, ArrowUp, true},
		{"unknown scan code", 0x7F11, 0, Unknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromWindows(tt.scan, tt.vk)
			if ok != tt.ok || got != tt.want {
				t.Errorf("FromWindows(0x%X, 0x%X) = (%v, %v), want (%v, %v)",
					tt.scan, tt.vk, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestIsModifier(t *testing.T) {
	mods := []KeyId{
		ControlLeft, ControlRight, ShiftLeft, ShiftRight,
		AltLeft, AltRight, MetaLeft, MetaRight,
		Control, Shift, Alt, Meta,
	}
	for _, id := range mods {
		if !id.IsModifier() {
			t.Errorf("%v.IsModifier() = false, want true", id)
		}
	}

	normals := []KeyId{UsA, Us9, F1, Space, Enter, ArrowLeft, CapsLock}
	for _, id := range normals {
		if id.IsModifier() {
			t.Errorf("%v.IsModifier() = true, want false", id)
		}
	}
}

func TestModifierBits(t *testing.T) {
	if !Control.Modifier().Contains(ControlLeft.Modifier()) {
		t.Error("Control must contain ControlLeft")
	}
	if !Control.Modifier().Contains(ControlRight.Modifier()) {
		t.Error("Control must contain ControlRight")
	}
	if ControlLeft.Modifier().Contains(Control.Modifier()) {
		t.Error("ControlLeft must not contain Control")
	}
	if Control.Modifier().Contains(ShiftLeft.Modifier()) {
		t.Error("Control must not contain ShiftLeft")
	}
}

func TestUsageUnique(t *testing.T) {
	seen := make(map[uint16]KeyId)
	for id := range catalog {
		usage := id.Usage()
		if usage == 0 {
			continue
		}
		if other, ok := seen[usage]; ok {
			t.Errorf("usage 0x%X shared by %v and %v", usage, id, other)
		}
		seen[usage] = id
	}
}

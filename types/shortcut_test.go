package types

import (
	"errors"
	"testing"

	"github.com/pzyyll/kmhook-go/keycode"
)

func mustParse(t *testing.T, spec string) Shortcut {
	t.Helper()
	s, err := ParseShortcut(spec)
	if err != nil {
		t.Fatalf("ParseShortcut(%q): %v", spec, err)
	}
	return s
}

func TestParseShortcut(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		modifiers []keycode.KeyId
		keys      []keycode.KeyId
	}{
		{"single letter", "A", nil, []keycode.KeyId{keycode.UsA}},
		{"lowercase letter", "a", nil, []keycode.KeyId{keycode.UsA}},
		{"digit", "7", nil, []keycode.KeyId{keycode.Us7}},
		{"ctrl alias", "Ctrl+A", []keycode.KeyId{keycode.Control}, []keycode.KeyId{keycode.UsA}},
		{"menu alias", "Menu+X", []keycode.KeyId{keycode.Alt}, []keycode.KeyId{keycode.UsX}},
		{"option alias", "Option+X", []keycode.KeyId{keycode.Alt}, []keycode.KeyId{keycode.UsX}},
		{"win alias", "Win+D", []keycode.KeyId{keycode.Meta}, []keycode.KeyId{keycode.UsD}},
		{"cmd alias", "Cmd+C", []keycode.KeyId{keycode.Meta}, []keycode.KeyId{keycode.UsC}},
		{"command alias", "Command+V", []keycode.KeyId{keycode.Meta}, []keycode.KeyId{keycode.UsV}},
		{"side specific", "ControlLeft+A", []keycode.KeyId{keycode.ControlLeft}, []keycode.KeyId{keycode.UsA}},
		{"modifier only", "Alt", []keycode.KeyId{keycode.Alt}, nil},
		{"two normal keys ordered", "Ctrl+C+V",
			[]keycode.KeyId{keycode.Control}, []keycode.KeyId{keycode.UsC, keycode.UsV}},
		{"outer whitespace", " Ctrl + A ", []keycode.KeyId{keycode.Control}, []keycode.KeyId{keycode.UsA}},
		{"duplicates collapse", "Ctrl+Ctrl+A+A", []keycode.KeyId{keycode.Control}, []keycode.KeyId{keycode.UsA}},
		{"named key", "Ctrl+Space", []keycode.KeyId{keycode.Control}, []keycode.KeyId{keycode.Space}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustParse(t, tt.spec)
			if len(s.Modifiers) != len(tt.modifiers) || len(s.Keys) != len(tt.keys) {
				t.Fatalf("got %v+%v, want %v+%v", s.Modifiers, s.Keys, tt.modifiers, tt.keys)
			}
			for i, m := range tt.modifiers {
				if s.Modifiers[i] != m {
					t.Errorf("modifier %d = %v, want %v", i, s.Modifiers[i], m)
				}
			}
			for i, k := range tt.keys {
				if s.Keys[i] != k {
					t.Errorf("key %d = %v, want %v", i, s.Keys[i], k)
				}
			}
		})
	}
}

func TestParseShortcutErrors(t *testing.T) {
	specs := []string{"", "  ", "+", "Ctrl+", "+A", "Ctrl++A", "Bogus", "Ctrl+Bogus", "ctrl+A", "Ctrl+A B"}
	for _, spec := range specs {
		t.Run(spec, func(t *testing.T) {
			_, err := ParseShortcut(spec)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("ParseShortcut(%q) = %v, want *ParseError", spec, err)
			}
		})
	}
}

func TestShortcutEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Ctrl+A", "Ctrl+A", true},
		{"Ctrl+Shift+A", "Shift+Ctrl+A", true},
		{"Ctrl+A", "ControlLeft+A", false},
		{"Ctrl+C+V", "Ctrl+V+C", false},
		{"Ctrl+A", "Ctrl+B", false},
		{"Alt", "Alt", true},
	}
	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			a, b := mustParse(t, tt.a), mustParse(t, tt.b)
			if got := a.Equal(b); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShortcutMatchSpecificity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"reflexive", "Ctrl+A", "Ctrl+A", true},
		{"generic matches specific", "Control+A", "ControlLeft+A", true},
		{"generic matches right side", "Control+A", "ControlRight+A", true},
		{"specific rejects generic", "ControlLeft+A", "Control+A", false},
		{"wrong side", "ControlLeft+A", "ControlRight+A", false},
		{"order matters", "Ctrl+C+V", "Ctrl+V+C", false},
		{"count mismatch", "Ctrl+A", "Ctrl+Shift+A", false},
		{"both sides held is two modifiers", "Ctrl+A", "ControlLeft+ControlRight+A", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := mustParse(t, tt.a), mustParse(t, tt.b)
			if got := a.Match(b); got != tt.want {
				t.Errorf("%q.Match(%q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestShortcutStringRoundTrip(t *testing.T) {
	specs := []string{"Ctrl+A", "Ctrl+Shift+A", "Alt+C+V", "ControlLeft+UsZ", "Alt", "F5"}
	for _, spec := range specs {
		t.Run(spec, func(t *testing.T) {
			s := mustParse(t, spec)
			back, err := ParseShortcut(s.String())
			if err != nil {
				t.Fatalf("re-parse %q: %v", s.String(), err)
			}
			if !s.Equal(back) {
				t.Errorf("round trip of %q through %q lost equality", spec, s.String())
			}
		})
	}
}

func TestShortcutMatchOwnState(t *testing.T) {
	specs := []string{"Ctrl+A", "Control+Shift+A", "Alt", "Ctrl+C+V", "ControlLeft+A"}
	for _, spec := range specs {
		t.Run(spec, func(t *testing.T) {
			s := mustParse(t, spec)
			if !s.MatchState(s.IntoState()) {
				t.Errorf("%q does not match its own materialized state", spec)
			}
		})
	}
}

func TestNewShortcut(t *testing.T) {
	s, err := NewShortcut(keycode.ControlLeft, keycode.UsC, keycode.UsV)
	if err != nil {
		t.Fatal(err)
	}
	if !s.HasModifier() || !s.HasNormalKey() {
		t.Error("classification lost")
	}
	if s.String() != "ControlLeft+UsC+UsV" {
		t.Errorf("String() = %q", s.String())
	}

	if _, err := NewShortcut(); err == nil {
		t.Error("empty chord must be invalid")
	}
}

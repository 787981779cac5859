package types

import (
	"fmt"
	"strings"

	"github.com/pzyyll/kmhook-go/keycode"
)

// ParseError reports a shortcut string that could not be parsed.
type ParseError struct {
	Input string
	Token string
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("invalid shortcut %q", e.Input)
	}
	return fmt.Sprintf("invalid shortcut %q: unknown token %q", e.Input, e.Token)
}

// Aliases applied to tokens before catalog lookup. Case-sensitive.
var tokenAliases = map[string]string{
	"Ctrl":    "Control",
	"Menu":    "Alt",
	"Option":  "Alt",
	"Win":     "Meta",
	"Cmd":     "Meta",
	"Command": "Meta",
}

// genericToLeft maps a generic modifier to its left-side key, used when
// materializing a shortcut into a concrete keyboard state.
var genericToLeft = map[keycode.KeyId]keycode.KeyId{
	keycode.Control: keycode.ControlLeft,
	keycode.Shift:   keycode.ShiftLeft,
	keycode.Alt:     keycode.AltLeft,
	keycode.Meta:    keycode.MetaLeft,
}

// Shortcut is a chord: a set of modifier keys plus an ordered list of
// normal keys. Order of the normal keys is significant.
type Shortcut struct {
	Modifiers []keycode.KeyId
	Keys      []keycode.KeyId
}

// NewShortcut builds a shortcut from key identifiers, splitting them
// into modifier and normal classes. Duplicates are dropped; an empty
// chord is invalid.
func NewShortcut(ids ...keycode.KeyId) (Shortcut, error) {
	var s Shortcut
	for _, id := range ids {
		if !id.Valid() || id == keycode.Unknown {
			return Shortcut{}, &ParseError{Token: id.String()}
		}
		s.insert(id)
	}
	if len(s.Modifiers) == 0 && len(s.Keys) == 0 {
		return Shortcut{}, &ParseError{}
	}
	return s, nil
}

// ParseShortcut parses a chord string like "Ctrl+Shift+A" or "Alt+C+V".
// Tokens are split on '+', trimmed, aliased, and single characters are
// normalized to their Us form.
func ParseShortcut(spec string) (Shortcut, error) {
	if strings.TrimSpace(spec) == "" {
		return Shortcut{}, &ParseError{Input: spec}
	}

	var s Shortcut
	for _, raw := range strings.Split(spec, "+") {
		token := strings.TrimSpace(raw)
		if token == "" {
			return Shortcut{}, &ParseError{Input: spec, Token: raw}
		}
		id, ok := keycode.FromName(normalizeToken(token))
		if !ok {
			return Shortcut{}, &ParseError{Input: spec, Token: token}
		}
		s.insert(id)
	}
	return s, nil
}

func normalizeToken(token string) string {
	if alias, ok := tokenAliases[token]; ok {
		return alias
	}
	if len(token) == 1 {
		c := token[0]
		switch {
		case c >= 'a' && c <= 'z':
			return "Us" + strings.ToUpper(token)
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			return "Us" + token
		}
	}
	return token
}

func (s *Shortcut) insert(id keycode.KeyId) {
	if id.IsModifier() {
		for _, m := range s.Modifiers {
			if m == id {
				return
			}
		}
		s.Modifiers = append(s.Modifiers, id)
		return
	}
	for _, k := range s.Keys {
		if k == id {
			return
		}
	}
	s.Keys = append(s.Keys, id)
}

// HasModifier reports whether the chord contains any modifier key.
func (s Shortcut) HasModifier() bool {
	return len(s.Modifiers) > 0
}

// HasNormalKey reports whether the chord contains any normal key.
func (s Shortcut) HasNormalKey() bool {
	return len(s.Keys) > 0
}

// Equal is strict equality: the modifier sets match with the same
// specificity and the normal keys match element by element.
func (s Shortcut) Equal(o Shortcut) bool {
	if len(s.Modifiers) != len(o.Modifiers) || len(s.Keys) != len(o.Keys) {
		return false
	}
	for _, m := range s.Modifiers {
		found := false
		for _, om := range o.Modifiers {
			if m == om {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for i, k := range s.Keys {
		if o.Keys[i] != k {
			return false
		}
	}
	return true
}

// Match reports whether o satisfies the chord. Modifier counts must be
// equal and every modifier of s must be satisfied by exactly one
// modifier of o that is equal or more specific: ControlLeft satisfies
// Control, but Control does not satisfy ControlLeft. Normal keys must
// match in order.
func (s Shortcut) Match(o Shortcut) bool {
	if len(s.Modifiers) != len(o.Modifiers) || len(s.Keys) != len(o.Keys) {
		return false
	}
	for _, m := range s.Modifiers {
		matches := 0
		for _, om := range o.Modifiers {
			if m.Modifier().Contains(om.Modifier()) {
				matches++
			}
		}
		if matches != 1 {
			return false
		}
	}
	for i, k := range s.Keys {
		if o.Keys[i] != k {
			return false
		}
	}
	return true
}

// MatchState reports whether the current keyboard aggregate satisfies
// the chord.
func (s Shortcut) MatchState(ks *KeyboardState) bool {
	if ks == nil {
		return false
	}
	return s.Match(ks.AsShortcut())
}

// IntoState materializes the chord as a keyboard aggregate, pressing
// the left side for generic modifiers.
func (s Shortcut) IntoState() *KeyboardState {
	ks := NewKeyboardState(0)
	for _, m := range s.Modifiers {
		if left, ok := genericToLeft[m]; ok {
			m = left
		}
		ks.UpdateKey(m, Pressed)
	}
	for _, k := range s.Keys {
		ks.UpdateKey(k, Pressed)
	}
	return ks
}

// String renders the chord, modifiers first, joined with '+'.
func (s Shortcut) String() string {
	parts := make([]string, 0, len(s.Modifiers)+len(s.Keys))
	for _, m := range s.Modifiers {
		parts = append(parts, m.String())
	}
	for _, k := range s.Keys {
		parts = append(parts, k.String())
	}
	return strings.Join(parts, "+")
}

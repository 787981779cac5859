package kmhook

import (
	"errors"

	"github.com/pzyyll/kmhook-go/types"
)

// ParseError reports a shortcut string that could not be parsed.
type ParseError = types.ParseError

// ErrShortcutExists is returned when a new shortcut compares equal to a
// bound one.
var ErrShortcutExists = errors.New("shortcut already exists")

// ErrNilCallback is returned when a registration carries no callback.
var ErrNilCallback = errors.New("callback must not be nil")

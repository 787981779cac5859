// Package kmhook is a global keyboard and mouse hooking engine: it
// installs OS-level low-level input hooks, decodes raw notifications
// into a portable event model that tracks the full keyboard state, and
// matches composed key chords, including multi-press triggers, against
// that state.
//
// The package-level functions operate on one shared Listener. Create
// additional listeners with New when isolated registration tables are
// needed; all of them receive every hooked event.
package kmhook

import (
	"sync"

	"github.com/pzyyll/kmhook-go/internal/config"
	"github.com/pzyyll/kmhook-go/internal/logging"
	"github.com/pzyyll/kmhook-go/types"
)

// ID identifies a registration for later removal.
type ID = types.ID

var (
	cfgOnce   sync.Once
	engineCfg *config.Config
)

// engineConfig loads the engine options once, falling back to defaults
// when no config is present, and wires up logging when enabled.
func engineConfig() *config.Config {
	cfgOnce.Do(func() {
		cfg, err := config.Load("")
		if err != nil {
			cfg = config.NewDefaultConfig()
		}
		engineCfg = cfg

		if cfg.Logging.Enabled {
			lg, lerr := logging.NewLogger(logging.Config{
				Enabled:  true,
				Level:    logging.LogLevel(cfg.Logging.Level),
				FilePath: cfg.Logging.File,
			})
			if lerr == nil {
				logging.SetGlobal(lg)
			}
		}
		if err != nil {
			logging.L().Warn("config", "failed to load config, using defaults: %v", err)
		}
	})
	return engineCfg
}

var (
	defaultOnce     sync.Once
	defaultListener *Listener
)

// DefaultListener returns the process-shared listener, creating it on
// first use.
func DefaultListener() *Listener {
	defaultOnce.Do(func() {
		defaultListener = New()
	})
	return defaultListener
}

// AddGlobalShortcut binds cb to a chord on the shared listener.
func AddGlobalShortcut(spec string, cb ShortcutCallback) (ID, error) {
	return DefaultListener().AddGlobalShortcut(spec, cb)
}

// AddGlobalShortcutTrigger binds cb behind a multi-press gate on the
// shared listener.
func AddGlobalShortcutTrigger(spec string, cb ShortcutCallback, count uint32, windowMs ...uint32) (ID, error) {
	return DefaultListener().AddGlobalShortcutTrigger(spec, cb, count, windowMs...)
}

// AddEventListener subscribes cb on the shared listener.
func AddEventListener(cb EventCallback, selector *types.EventType) (ID, error) {
	return DefaultListener().AddEventListener(cb, selector)
}

// DelEventByID removes a registration from the shared listener.
func DelEventByID(id ID) {
	DefaultListener().DelEventByID(id)
}

// DelAllEvents clears the shared listener.
func DelAllEvents() {
	DefaultListener().DelAllEvents()
}

// Startup starts the shared listener.
func Startup(workThread ...bool) <-chan struct{} {
	return DefaultListener().Startup(workThread...)
}

// Shutdown stops the shared listener.
func Shutdown() {
	DefaultListener().Shutdown()
}

package hotkeys

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Activator switches the focused monitor to a named workspace.
type Activator interface {
	Activate(name string) error
}

// Handler manages global keyboard shortcuts. Callbacks run on the X event
// goroutine and must not block on work that waits for X events.
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler bound to the root window of xu.
func NewHandler(xu *xgbutil.XUtil, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:     xu,
		root:   xu.RootWin(),
		logger: logger,
	}
}

// RegisterWorkspaceKeys binds each key sequence to activating its workspace.
// Every binding is attempted; failures are joined into the returned error.
func (h *Handler) RegisterWorkspaceKeys(bindings map[string]string, target Activator) error {
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	var failed []string
	for _, name := range names {
		keys := bindings[name]
		if keys == "" {
			continue
		}
		if err := h.RegisterFunc(keys, func() {
			h.logger.Debug("workspace hotkey triggered", "workspace", name, "keys", keys)
			if err := target.Activate(name); err != nil {
				h.logger.Warn("workspace hotkey failed", "workspace", name, "error", err)
			}
		}); err != nil {
			failed = append(failed, fmt.Sprintf("%s (%s): %v", keys, name, err))
			continue
		}
		h.logger.Info("registered workspace hotkey", "workspace", name, "keys", keys)
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to register hotkeys: %v", failed)
	}
	return nil
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	xevent.IgnoreMods = ignoreMasks(caps, numLock, scrollLock)
}

// ignoreMasks returns every combination of the lock modifiers, including no
// modifier, with zero and duplicate masks dropped.
func ignoreMasks(caps, numLock, scrollLock uint16) []uint16 {
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	unique := map[uint16]struct{}{0: {}}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		unique[mask] = struct{}{}
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}
	sort.Slice(ignore, func(i, j int) bool { return ignore[i] < ignore[j] })
	return ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}

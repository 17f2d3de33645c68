// Package dispatch performs the presses, releases and pointer moves the
// action engine decides on, and remembers which keys are held.
package dispatch

import (
	"log/slog"
	"math"
	"sort"

	"github.com/Versifine/aimpad/internal/action"
	"github.com/Versifine/aimpad/internal/event"
)

// Backend injects input into the operating system.
type Backend interface {
	Press(key string) error
	Release(key string) error
	Move(x, y int) error
}

// Handler implements action.Dispatcher. A key that is already held is not
// pressed again, and a key that is not held is not released.
type Handler struct {
	backend     Backend
	bus         *event.Bus
	abilityKeys map[string]struct{}
	held        map[string]struct{}
}

var _ action.Dispatcher = (*Handler)(nil)

// NewHandler creates a handler. bus may be nil.
func NewHandler(backend Backend, abilityKeys []string, bus *event.Bus) *Handler {
	keys := make(map[string]struct{}, len(abilityKeys))
	for _, k := range abilityKeys {
		keys[k] = struct{}{}
	}
	return &Handler{
		backend:     backend,
		bus:         bus,
		abilityKeys: keys,
		held:        make(map[string]struct{}),
	}
}

func (h *Handler) PressOrRelease(dir action.Direction, key string) {
	_, held := h.held[key]
	_, ability := h.abilityKeys[key]

	if dir == action.Press {
		if held {
			return
		}
		if err := h.backend.Press(key); err != nil {
			slog.Warn("Key press failed", "key", key, "error", err)
			return
		}
		h.held[key] = struct{}{}
		h.bus.Publish(event.EventKeyPressed, event.KeyEvent{Key: key, Ability: ability})
		return
	}

	if !held {
		return
	}
	if err := h.backend.Release(key); err != nil {
		slog.Warn("Key release failed", "key", key, "error", err)
	}
	// Forget the key even on failure so a later press is retried.
	delete(h.held, key)
	h.bus.Publish(event.EventKeyReleased, event.KeyEvent{Key: key, Ability: ability})
}

func (h *Handler) MovePointer(x, y float64) {
	if err := h.backend.Move(int(math.Round(x)), int(math.Round(y))); err != nil {
		slog.Warn("Pointer move failed", "x", x, "y", y, "error", err)
		return
	}
	h.bus.Publish(event.EventPointerMoved, event.PointerEvent{X: x, Y: y})
}

func (h *Handler) IsAnyAbilityHeld() bool {
	for k := range h.held {
		if _, ok := h.abilityKeys[k]; ok {
			return true
		}
	}
	return false
}

// HeldAbilityKeyNames returns the held ability keys in sorted order.
func (h *Handler) HeldAbilityKeyNames() []string {
	var out []string
	for k := range h.held {
		if _, ok := h.abilityKeys[k]; ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (h *Handler) IsHeld(key string) bool {
	_, ok := h.held[key]
	return ok
}

// ReleaseAll lets go of every held key, for shutdown.
func (h *Handler) ReleaseAll() {
	keys := make([]string, 0, len(h.held))
	for k := range h.held {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.PressOrRelease(action.Release, k)
	}
}

// LogBackend only logs. It is used for dry runs.
type LogBackend struct{}

func (LogBackend) Press(key string) error {
	slog.Info("Press", "key", key)
	return nil
}

func (LogBackend) Release(key string) error {
	slog.Info("Release", "key", key)
	return nil
}

func (LogBackend) Move(x, y int) error {
	slog.Debug("Move", "x", x, "y", y)
	return nil
}

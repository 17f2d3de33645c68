// Package overlay keeps the state shown on top of the controlled application:
// which buttons are held, where the pointer was last sent, and the aiming
// circles. Drawing lives in overlay/ebitenhost.
package overlay

import (
	"sort"
	"sync"

	"github.com/Versifine/aimpad/internal/config"
	"github.com/Versifine/aimpad/internal/event"
	"github.com/Versifine/aimpad/internal/gamepad"
)

type Circle struct {
	X      float64
	Y      float64
	Radius float64
}

type Snapshot struct {
	Held      []string
	TargetX   float64
	TargetY   float64
	HasTarget bool
}

type Display struct {
	cfg         *config.Config
	keyToAction map[string]string

	mu        sync.Mutex
	held      map[string]struct{}
	targetX   float64
	targetY   float64
	hasTarget bool
}

// NewDisplay subscribes to dispatch events on bus.
func NewDisplay(cfg *config.Config, bus *event.Bus) *Display {
	d := &Display{
		cfg:         cfg,
		keyToAction: make(map[string]string, len(cfg.ButtonMapping)),
		held:        make(map[string]struct{}),
	}
	for _, action := range cfg.Actions() {
		key := cfg.ButtonMapping[action]
		if _, dup := d.keyToAction[key]; !dup {
			d.keyToAction[key] = action
		}
	}
	if bus != nil {
		bus.Subscribe(event.EventKeyPressed, d.onKeyPressed)
		bus.Subscribe(event.EventKeyReleased, d.onKeyReleased)
		bus.Subscribe(event.EventPointerMoved, d.onPointerMoved)
	}
	return d
}

func (d *Display) onKeyPressed(raw any) {
	evt, ok := raw.(event.KeyEvent)
	if !ok {
		return
	}
	d.mu.Lock()
	d.held[evt.Key] = struct{}{}
	d.mu.Unlock()
}

func (d *Display) onKeyReleased(raw any) {
	evt, ok := raw.(event.KeyEvent)
	if !ok {
		return
	}
	d.mu.Lock()
	delete(d.held, evt.Key)
	d.mu.Unlock()
}

func (d *Display) onPointerMoved(raw any) {
	evt, ok := raw.(event.PointerEvent)
	if !ok {
		return
	}
	d.mu.Lock()
	d.targetX, d.targetY, d.hasTarget = evt.X, evt.Y, true
	d.mu.Unlock()
}

// Snapshot returns held keys as "label:key" in sorted order, where label is
// the controller button bound to the key.
func (d *Display) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := Snapshot{TargetX: d.targetX, TargetY: d.targetY, HasTarget: d.hasTarget}
	for key := range d.held {
		label := key
		if action, ok := d.keyToAction[key]; ok {
			label = gamepad.Label(d.cfg.Controller.ControllerType, action) + ":" + key
		}
		s.Held = append(s.Held, label)
	}
	sort.Strings(s.Held)
	return s
}

// Visible reports whether anything should be drawn this frame.
func (d *Display) Visible(walking, aiming, holdingAbility bool) bool {
	return d.cfg.Overlay.AlwaysShowOverlay || walking || aiming || holdingAbility
}

// Circles returns the walk, close, mid and far circles around the avatar,
// skipping zero radii.
func (d *Display) Circles() []Circle {
	o, ctl := d.cfg.Overlay, d.cfg.Controller
	cx := o.ScreenWidth/2 + ctl.CharacterXOffsetPx
	cy := o.ScreenHeight/2 - ctl.CharacterYOffsetPx
	var out []Circle
	for _, r := range []float64{ctl.WalkCircleRadiusPx, ctl.CloseCircleRadiusPx, ctl.MidCircleRadiusPx, ctl.FarCircleRadiusPx} {
		if r > 0 {
			out = append(out, Circle{X: cx, Y: cy, Radius: r})
		}
	}
	return out
}

// Package action plans and dispatches the key presses and pointer moves that
// a gamepad tick produces.
package action

import (
	"github.com/Versifine/aimpad/internal/config"
	"github.com/Versifine/aimpad/internal/gamepad"
)

// Dispatcher performs presses, releases and pointer moves, and knows which
// ability keys are currently held.
type Dispatcher interface {
	PressOrRelease(dir Direction, key string)
	MovePointer(x, y float64)
	IsAnyAbilityHeld() bool
	HeldAbilityKeyNames() []string
}

// HoverProvider reports the pointer position over the presentation surface.
// ok is false when the pointer is outside it.
type HoverProvider interface {
	CurrentHoverPosition() (x, y float64, ok bool)
}

// Manager is the per-tick action engine. It is not safe for concurrent use;
// the host calls it once per frame from a single goroutine.
type Manager struct {
	cfg            *config.Config
	dispatcher     Dispatcher
	hover          HoverProvider
	targeting      Targeting
	planner        *Planner
	analog         AnalogState
	holdingAbility bool
}

// NewManager expects cfg to have passed config.Validate.
func NewManager(cfg *config.Config, dispatcher Dispatcher, hover HoverProvider) *Manager {
	order, err := ParseDrainOrder(cfg.Controller.DrainOrder)
	if err != nil {
		order = DrainLIFO
	}
	targeting := NewTargeting(cfg)
	return &Manager{
		cfg:        cfg,
		dispatcher: dispatcher,
		hover:      hover,
		targeting:  targeting,
		planner:    NewPlanner(cfg.AimableButtons, targeting, order),
	}
}

func (m *Manager) IngestButtons(buttons map[string]*gamepad.Button) error {
	return m.planner.Ingest(buttons)
}

func (m *Manager) IngestSticks(walk Stick, aim AimStick) {
	m.analog.Ingest(walk, aim)
}

// Tick runs one frame: buttons, then sticks, then resolution.
func (m *Manager) Tick(buttons map[string]*gamepad.Button, walk Stick, aim AimStick) error {
	if err := m.IngestButtons(buttons); err != nil {
		return err
	}
	m.IngestSticks(walk, aim)
	return m.Resolve()
}

func (m *Manager) Analog() AnalogState {
	return m.analog
}

func (m *Manager) HoldingAbility() bool {
	return m.holdingAbility
}

func (m *Manager) Targeting() Targeting {
	return m.targeting
}

// Resolve drains the planned actions and then applies the held-state
// policies: swivel while an ability is held, free aim while only aiming, and
// click-to-walk while only walking.
func (m *Manager) Resolve() error {
	for {
		pending, ok := m.planner.Next()
		if !ok {
			break
		}
		key, ok := m.cfg.ButtonMapping[pending.Name]
		if !ok {
			return &FaultError{Err: ErrUnmappedAction, Action: pending.Name}
		}
		if pending.Direction == Release {
			m.dispatcher.PressOrRelease(Release, key)
			continue
		}
		m.aimPress(pending)
		m.dispatcher.PressOrRelease(Press, key)
	}

	a := m.analog
	m.holdingAbility = m.dispatcher.IsAnyAbilityHeld()

	if m.holdingAbility && a.HoldingWalk {
		if err := m.swivel(); err != nil {
			return err
		}
	}

	if a.HoldingAim && !a.HoldingWalk {
		m.freeAim()
	}

	primary := m.cfg.Controller.PrimaryClick
	if a.HoldingWalk && !m.holdingAbility {
		m.moveTo(m.targeting.WalkRadius(), a.WalkingAngle)
		m.dispatcher.PressOrRelease(Press, primary)
	} else {
		m.dispatcher.PressOrRelease(Release, primary)
	}
	return nil
}

func (m *Manager) aimPress(p PendingAction) {
	a := m.analog
	if !a.HoldingWalk {
		return
	}
	radius := m.targeting.RadiusFor(p.Distance)
	switch {
	case p.Aimable && a.HoldingAim:
		m.moveTo(radius, a.AimingAngle)
	case p.Aimable:
		m.moveTo(radius, a.WalkingAngle)
	case p.Distance != DistanceNone:
		m.moveTo(radius, a.WalkingAngle)
	}
}

// swivel keeps the pointer on the longest-range circle among the held
// abilities, following the aim stick if any of them is aimable.
func (m *Manager) swivel() error {
	var chosen float64
	someAimable := false
	for _, key := range m.dispatcher.HeldAbilityKeyNames() {
		name, ok := m.cfg.AbilityMapping[key]
		if !ok {
			return &FaultError{Err: ErrUnmappedAbility, Action: key}
		}
		d := m.targeting.Classify(name)
		if d == DistanceNone {
			continue
		}
		if m.planner.IsAimable(name) {
			someAimable = true
		}
		if r := m.targeting.RadiusFor(d); r > chosen {
			chosen = r
		}
	}
	if chosen == 0 {
		chosen = m.targeting.WalkRadius()
	}

	a := m.analog
	if someAimable && a.HoldingAim {
		m.moveTo(chosen, a.AimingAngle)
	} else {
		m.moveTo(chosen, a.WalkingAngle)
	}
	return nil
}

func (m *Manager) freeAim() {
	var x, y float64
	if m.hover != nil {
		if hx, hy, ok := m.hover.CurrentHoverPosition(); ok {
			sens := m.cfg.Controller.FreeMouseSensitivityPx
			x = hx + m.analog.AimDirection[0]*sens
			y = hy - m.analog.AimDirection[1]*sens
		}
	}
	m.dispatcher.MovePointer(x, y)
}

func (m *Manager) moveTo(radius, angle float64) {
	x, y := m.targeting.Resolve(radius, angle)
	m.dispatcher.MovePointer(x, y)
}

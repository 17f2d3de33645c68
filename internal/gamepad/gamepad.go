// Package gamepad turns raw controller readings into per-tick button edges and
// stick samples. It has no dependency on any windowing backend; see
// gamepad/ebitenpad for the ebiten source.
package gamepad

import (
	"math"
	"sort"
)

// Canonical button names. Configuration refers to buttons by these names.
const (
	ButtonA          = "A"
	ButtonB          = "B"
	ButtonX          = "X"
	ButtonY          = "Y"
	ButtonLB         = "LB"
	ButtonRB         = "RB"
	ButtonLT         = "LT"
	ButtonRT         = "RT"
	ButtonBack       = "Back"
	ButtonStart      = "Start"
	ButtonGuide      = "Guide"
	ButtonLeftStick  = "LeftStick"
	ButtonRightStick = "RightStick"
	ButtonDPadUp     = "DPadUp"
	ButtonDPadDown   = "DPadDown"
	ButtonDPadLeft   = "DPadLeft"
	ButtonDPadRight  = "DPadRight"
)

// Names lists every button a Source can report.
var Names = []string{
	ButtonA, ButtonB, ButtonX, ButtonY,
	ButtonLB, ButtonRB, ButtonLT, ButtonRT,
	ButtonBack, ButtonStart, ButtonGuide,
	ButtonLeftStick, ButtonRightStick,
	ButtonDPadUp, ButtonDPadDown, ButtonDPadLeft, ButtonDPadRight,
}

// Side selects one of the two analog sticks.
type Side int

const (
	LeftStick Side = iota
	RightStick
)

// Button is the state of one button for the current tick. The edge flags are
// pulses: consumers clear them once read.
type Button struct {
	Pressed       bool
	JustPressed   bool
	JustUnpressed bool
}

// Stick is a single analog stick sample. Y grows upward.
type Stick struct {
	X        float64
	Y        float64
	Deadzone float64
}

// InDeadzone reports whether the stick deflection is within the radial
// deadzone.
func (s Stick) InDeadzone() bool {
	return math.Hypot(s.X, s.Y) <= s.Deadzone
}

// Angle is the counter-clockwise angle from the positive x axis, in radians.
func (s Stick) Angle() float64 {
	return math.Atan2(s.Y, s.X)
}

func (s Stick) Direction() (x, y float64) {
	return s.X, s.Y
}

// Source is a live controller reading.
type Source interface {
	Connected() bool
	Button(name string) (pressed, justPressed, justReleased bool)
	// Stick returns the deflection of one stick with y pointing up.
	Stick(side Side) (x, y float64)
}

// Pad holds the button and stick state of one controller across ticks.
type Pad struct {
	deadzone  float64
	connected bool
	names     []string
	buttons   map[string]*Button
	walk      Stick
	aim       Stick
}

// NewPad tracks the named buttons. Names not in Names are ignored.
func NewPad(deadzone float64, names []string) *Pad {
	known := make(map[string]struct{}, len(Names))
	for _, n := range Names {
		known[n] = struct{}{}
	}
	p := &Pad{
		deadzone: deadzone,
		buttons:  make(map[string]*Button, len(names)),
	}
	for _, n := range names {
		if _, ok := known[n]; !ok {
			continue
		}
		if _, dup := p.buttons[n]; dup {
			continue
		}
		p.buttons[n] = &Button{}
		p.names = append(p.names, n)
	}
	sort.Strings(p.names)
	p.walk = Stick{Deadzone: deadzone}
	p.aim = Stick{Deadzone: deadzone}
	return p
}

// Poll refreshes the pad from src. A disconnected source releases every held
// button and centres both sticks.
func (p *Pad) Poll(src Source) {
	p.connected = src != nil && src.Connected()
	if !p.connected {
		for _, b := range p.buttons {
			b.JustPressed = false
			b.JustUnpressed = b.Pressed
			b.Pressed = false
		}
		p.walk = Stick{Deadzone: p.deadzone}
		p.aim = Stick{Deadzone: p.deadzone}
		return
	}

	for _, n := range p.names {
		pressed, justPressed, justReleased := src.Button(n)
		b := p.buttons[n]
		b.Pressed = pressed
		b.JustPressed = justPressed
		b.JustUnpressed = justReleased
	}

	x, y := src.Stick(LeftStick)
	p.walk = Stick{X: x, Y: y, Deadzone: p.deadzone}
	x, y = src.Stick(RightStick)
	p.aim = Stick{X: x, Y: y, Deadzone: p.deadzone}
}

// Buttons returns the live button map. Callers may clear edge flags.
func (p *Pad) Buttons() map[string]*Button {
	return p.buttons
}

// Sticks returns the walk (left) and aim (right) stick samples.
func (p *Pad) Sticks() (walk, aim Stick) {
	return p.walk, p.aim
}

// Connected reports whether the last Poll found a usable controller.
func (p *Pad) Connected() bool {
	return p.connected
}

func (p *Pad) Names() []string {
	return append([]string(nil), p.names...)
}

var playstationLabels = map[string]string{
	ButtonA:     "Cross",
	ButtonB:     "Circle",
	ButtonX:     "Square",
	ButtonY:     "Triangle",
	ButtonLB:    "L1",
	ButtonRB:    "R1",
	ButtonLT:    "L2",
	ButtonRT:    "R2",
	ButtonBack:  "Share",
	ButtonStart: "Options",
	ButtonGuide: "PS",
}

// Label returns the face label a player sees for a button on the given
// controller type ("xbox" or "playstation").
func Label(controllerType, name string) string {
	if controllerType == "playstation" {
		if l, ok := playstationLabels[name]; ok {
			return l
		}
	}
	return name
}

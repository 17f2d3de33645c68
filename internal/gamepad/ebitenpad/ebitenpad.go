// Package ebitenpad implements gamepad.Source on top of ebiten's standard
// gamepad layout.
package ebitenpad

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/Versifine/aimpad/internal/gamepad"
)

var standardButtons = map[string]ebiten.StandardGamepadButton{
	gamepad.ButtonA:          ebiten.StandardGamepadButtonRightBottom,
	gamepad.ButtonB:          ebiten.StandardGamepadButtonRightRight,
	gamepad.ButtonX:          ebiten.StandardGamepadButtonRightLeft,
	gamepad.ButtonY:          ebiten.StandardGamepadButtonRightTop,
	gamepad.ButtonLB:         ebiten.StandardGamepadButtonFrontTopLeft,
	gamepad.ButtonRB:         ebiten.StandardGamepadButtonFrontTopRight,
	gamepad.ButtonLT:         ebiten.StandardGamepadButtonFrontBottomLeft,
	gamepad.ButtonRT:         ebiten.StandardGamepadButtonFrontBottomRight,
	gamepad.ButtonBack:       ebiten.StandardGamepadButtonCenterLeft,
	gamepad.ButtonStart:      ebiten.StandardGamepadButtonCenterRight,
	gamepad.ButtonGuide:      ebiten.StandardGamepadButtonCenterCenter,
	gamepad.ButtonLeftStick:  ebiten.StandardGamepadButtonLeftStick,
	gamepad.ButtonRightStick: ebiten.StandardGamepadButtonRightStick,
	gamepad.ButtonDPadUp:     ebiten.StandardGamepadButtonLeftTop,
	gamepad.ButtonDPadDown:   ebiten.StandardGamepadButtonLeftBottom,
	gamepad.ButtonDPadLeft:   ebiten.StandardGamepadButtonLeftLeft,
	gamepad.ButtonDPadRight:  ebiten.StandardGamepadButtonLeftRight,
}

// Source reads the first connected gamepad that has a standard layout.
// It must be used from ebiten's Update goroutine.
type Source struct {
	ids       []ebiten.GamepadID
	id        ebiten.GamepadID
	connected bool
}

func New() *Source {
	return &Source{}
}

// Connected refreshes the selected gamepad and reports whether one is usable.
func (s *Source) Connected() bool {
	s.ids = ebiten.AppendGamepadIDs(s.ids[:0])
	s.connected = false
	for _, id := range s.ids {
		if ebiten.IsStandardGamepadLayoutAvailable(id) {
			s.id = id
			s.connected = true
			break
		}
	}
	return s.connected
}

func (s *Source) Button(name string) (pressed, justPressed, justReleased bool) {
	b, ok := standardButtons[name]
	if !ok || !s.connected {
		return false, false, false
	}
	return ebiten.IsStandardGamepadButtonPressed(s.id, b),
		inpututil.IsStandardGamepadButtonJustPressed(s.id, b),
		inpututil.IsStandardGamepadButtonJustReleased(s.id, b)
}

// Stick flips ebiten's downward vertical axis so y points up.
func (s *Source) Stick(side gamepad.Side) (x, y float64) {
	if !s.connected {
		return 0, 0
	}
	h, v := ebiten.StandardGamepadAxisLeftStickHorizontal, ebiten.StandardGamepadAxisLeftStickVertical
	if side == gamepad.RightStick {
		h, v = ebiten.StandardGamepadAxisRightStickHorizontal, ebiten.StandardGamepadAxisRightStickVertical
	}
	return ebiten.StandardGamepadAxisValue(s.id, h), -ebiten.StandardGamepadAxisValue(s.id, v)
}

// Package robot injects real keyboard and mouse input with robotgo.
package robot

import (
	"strings"

	"github.com/go-vgo/robotgo"
)

// Mouse buttons are addressed by these key names in the button mapping.
var mouseButtons = map[string]string{
	"LeftClick":   "left",
	"RightClick":  "right",
	"MiddleClick": "center",
}

type Backend struct{}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Press(key string) error {
	return toggle(key, "down")
}

func (b *Backend) Release(key string) error {
	return toggle(key, "up")
}

func (b *Backend) Move(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func toggle(key, state string) error {
	if button, ok := mouseButtons[key]; ok {
		return robotgo.Toggle(button, state)
	}
	return robotgo.KeyToggle(strings.ToLower(key), state)
}

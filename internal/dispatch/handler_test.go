package dispatch

import (
	"errors"
	"testing"

	"github.com/Versifine/aimpad/internal/action"
	"github.com/Versifine/aimpad/internal/config"
	"github.com/Versifine/aimpad/internal/event"
	"github.com/Versifine/aimpad/internal/gamepad"
)

type mockBackend struct {
	calls   []string
	moves   [][2]int
	failKey string
}

func (m *mockBackend) Press(key string) error {
	if key == m.failKey {
		return errors.New("injection refused")
	}
	m.calls = append(m.calls, "down:"+key)
	return nil
}

func (m *mockBackend) Release(key string) error {
	m.calls = append(m.calls, "up:"+key)
	return nil
}

func (m *mockBackend) Move(x, y int) error {
	m.moves = append(m.moves, [2]int{x, y})
	return nil
}

func TestHandlerSuppressesDuplicatePresses(t *testing.T) {
	b := &mockBackend{}
	h := NewHandler(b, nil, nil)

	h.PressOrRelease(action.Press, "LeftClick")
	h.PressOrRelease(action.Press, "LeftClick")
	h.PressOrRelease(action.Release, "LeftClick")
	h.PressOrRelease(action.Release, "LeftClick")

	want := []string{"down:LeftClick", "up:LeftClick"}
	if len(b.calls) != len(want) {
		t.Fatalf("calls=%v want %v", b.calls, want)
	}
	for i := range want {
		if b.calls[i] != want[i] {
			t.Fatalf("calls=%v want %v", b.calls, want)
		}
	}
}

func TestHandlerAbilityQueries(t *testing.T) {
	h := NewHandler(&mockBackend{}, []string{"Q", "W", "E"}, nil)
	if h.IsAnyAbilityHeld() {
		t.Fatal("nothing held yet")
	}

	h.PressOrRelease(action.Press, "LeftClick")
	if h.IsAnyAbilityHeld() {
		t.Fatal("primary click is not an ability")
	}

	h.PressOrRelease(action.Press, "W")
	h.PressOrRelease(action.Press, "Q")
	if !h.IsAnyAbilityHeld() {
		t.Fatal("ability should be held")
	}
	got := h.HeldAbilityKeyNames()
	if len(got) != 2 || got[0] != "Q" || got[1] != "W" {
		t.Fatalf("held abilities=%v want [Q W]", got)
	}

	h.PressOrRelease(action.Release, "Q")
	h.PressOrRelease(action.Release, "W")
	if h.IsAnyAbilityHeld() {
		t.Fatal("all abilities released")
	}
}

func TestHandlerFailedPressIsNotHeld(t *testing.T) {
	b := &mockBackend{failKey: "Q"}
	h := NewHandler(b, []string{"Q"}, nil)
	h.PressOrRelease(action.Press, "Q")
	if h.IsHeld("Q") || h.IsAnyAbilityHeld() {
		t.Fatal("failed press must not be tracked as held")
	}
}

func TestHandlerMoveRoundsAndPublishes(t *testing.T) {
	b := &mockBackend{}
	bus := event.NewBus()
	var got event.PointerEvent
	bus.Subscribe(event.EventPointerMoved, func(raw any) {
		got = raw.(event.PointerEvent)
	})
	h := NewHandler(b, nil, bus)

	h.MovePointer(100.6, 49.4)

	if len(b.moves) != 1 || b.moves[0] != [2]int{101, 49} {
		t.Fatalf("moves=%v want [[101 49]]", b.moves)
	}
	if got.X != 100.6 || got.Y != 49.4 {
		t.Fatalf("published=%+v", got)
	}
}

func TestHandlerPublishesKeyEvents(t *testing.T) {
	bus := event.NewBus()
	var pressed, released []event.KeyEvent
	bus.Subscribe(event.EventKeyPressed, func(raw any) {
		pressed = append(pressed, raw.(event.KeyEvent))
	})
	bus.Subscribe(event.EventKeyReleased, func(raw any) {
		released = append(released, raw.(event.KeyEvent))
	})
	h := NewHandler(&mockBackend{}, []string{"Q"}, bus)

	h.PressOrRelease(action.Press, "Q")
	h.PressOrRelease(action.Press, "Q")
	h.PressOrRelease(action.Press, "LeftClick")
	h.ReleaseAll()

	if len(pressed) != 2 || pressed[0] != (event.KeyEvent{Key: "Q", Ability: true}) {
		t.Fatalf("pressed=%+v", pressed)
	}
	if len(released) != 2 || released[0].Key != "LeftClick" || released[1].Key != "Q" {
		t.Fatalf("released=%+v want LeftClick then Q", released)
	}
	if h.IsHeld("Q") || h.IsHeld("LeftClick") {
		t.Fatal("ReleaseAll should clear held keys")
	}
}

func TestHandlerDrivesManager(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ButtonMapping = map[string]string{"RT": "Q"}
	cfg.AbilityMapping = map[string]string{"Q": "RT"}
	cfg.ActionDistances = map[string]string{"RT": "far"}

	b := &mockBackend{}
	h := NewHandler(b, cfg.AbilityKeys(), nil)
	m := action.NewManager(cfg, h, nil)

	walk := gamepad.Stick{X: 1, Deadzone: 0.2}
	aim := gamepad.Stick{Deadzone: 0.2}

	buttons := map[string]*gamepad.Button{"RT": {Pressed: true, JustPressed: true}}
	if err := m.Tick(buttons, walk, aim); err != nil {
		t.Fatalf("tick 1: %v", err)
	}
	if len(b.calls) != 1 || b.calls[0] != "down:Q" {
		t.Fatalf("tick 1 calls=%v want [down:Q]", b.calls)
	}
	// Press pre-move then swivel, both on the far circle.
	if len(b.moves) != 2 || b.moves[0] != [2]int{1410, 540} || b.moves[1] != [2]int{1410, 540} {
		t.Fatalf("tick 1 moves=%v", b.moves)
	}

	buttons["RT"] = &gamepad.Button{JustUnpressed: true}
	if err := m.Tick(buttons, walk, aim); err != nil {
		t.Fatalf("tick 2: %v", err)
	}
	want := []string{"down:Q", "up:Q", "down:LeftClick"}
	if len(b.calls) != len(want) {
		t.Fatalf("calls=%v want %v", b.calls, want)
	}
	for i := range want {
		if b.calls[i] != want[i] {
			t.Fatalf("calls=%v want %v", b.calls, want)
		}
	}
	if last := b.moves[len(b.moves)-1]; last != [2]int{1160, 540} {
		t.Fatalf("walk move=%v want [1160 540]", last)
	}
}

// Package ebitenhost runs the engine inside an ebiten game loop. ebiten drives
// the tick, supplies gamepad readings and the cursor position, and draws the
// overlay into a transparent, click-through window.
package ebitenhost

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Versifine/aimpad/internal/action"
	"github.com/Versifine/aimpad/internal/config"
	"github.com/Versifine/aimpad/internal/gamepad"
	"github.com/Versifine/aimpad/internal/overlay"
)

// Engine is the part of action.Manager the host drives.
type Engine interface {
	Tick(buttons map[string]*gamepad.Button, walk action.Stick, aim action.AimStick) error
	Analog() action.AnalogState
	HoldingAbility() bool
}

var ErrNoEngine = errors.New("no engine attached")

var (
	circleColor    = color.RGBA{R: 0x40, G: 0xc0, B: 0xff, A: 0x80}
	crosshairColor = color.RGBA{R: 0xff, G: 0x40, B: 0x40, A: 0xff}
)

const (
	crosshairSize = 12
	lineHeight    = 16
)

type Host struct {
	ctx     context.Context
	cfg     *config.Config
	pad     *gamepad.Pad
	source  gamepad.Source
	display *overlay.Display
	engine  Engine

	wasConnected bool
}

// New builds a host. The game loop stops once ctx is cancelled.
func New(ctx context.Context, cfg *config.Config, pad *gamepad.Pad, source gamepad.Source, display *overlay.Display) *Host {
	return &Host{
		ctx:     ctx,
		cfg:     cfg,
		pad:     pad,
		source:  source,
		display: display,
	}
}

// Attach sets the engine ticked by Update. The engine usually needs the host
// as its hover provider, so it is attached after construction.
func (h *Host) Attach(engine Engine) {
	h.engine = engine
}

// CurrentHoverPosition reports the cursor inside the overlay window.
func (h *Host) CurrentHoverPosition() (x, y float64, ok bool) {
	cx, cy := ebiten.CursorPosition()
	w, ht := int(h.cfg.Overlay.ScreenWidth), int(h.cfg.Overlay.ScreenHeight)
	if cx < 0 || cy < 0 || cx >= w || cy >= ht {
		return 0, 0, false
	}
	return float64(cx), float64(cy), true
}

func (h *Host) Update() error {
	if h.ctx.Err() != nil {
		return ebiten.Termination
	}
	if h.engine == nil {
		return ErrNoEngine
	}

	h.pad.Poll(h.source)
	if c := h.pad.Connected(); c != h.wasConnected {
		if c {
			slog.Info("Gamepad connected")
		} else {
			slog.Warn("Gamepad disconnected")
		}
		h.wasConnected = c
	}

	walk, aim := h.pad.Sticks()
	if err := h.engine.Tick(h.pad.Buttons(), walk, aim); err != nil {
		slog.Error("Engine fault", "error", err)
		return fmt.Errorf("tick: %w", err)
	}
	return nil
}

func (h *Host) Draw(screen *ebiten.Image) {
	if h.engine == nil {
		return
	}
	a := h.engine.Analog()
	if !h.display.Visible(a.HoldingWalk, a.HoldingAim, h.engine.HoldingAbility()) {
		return
	}

	for _, c := range h.display.Circles() {
		vector.StrokeCircle(screen, float32(c.X), float32(c.Y), float32(c.Radius), 2, circleColor, true)
	}

	snap := h.display.Snapshot()
	if h.cfg.Overlay.ShowCrosshair && snap.HasTarget {
		x, y := float32(snap.TargetX), float32(snap.TargetY)
		vector.StrokeLine(screen, x-crosshairSize, y, x+crosshairSize, y, 2, crosshairColor, true)
		vector.StrokeLine(screen, x, y-crosshairSize, x, y+crosshairSize, 2, crosshairColor, true)
	}
	if h.cfg.Overlay.ShowButtons {
		for i, label := range snap.Held {
			ebitenutil.DebugPrintAt(screen, label, 10, 10+i*lineHeight)
		}
	}
}

func (h *Host) Layout(_, _ int) (int, int) {
	return int(h.cfg.Overlay.ScreenWidth), int(h.cfg.Overlay.ScreenHeight)
}

// Run blocks until the window closes, ctx is cancelled or the engine faults.
func (h *Host) Run() error {
	o := h.cfg.Overlay
	ebiten.SetWindowTitle("aimpad")
	ebiten.SetWindowSize(int(o.ScreenWidth), int(o.ScreenHeight))
	ebiten.SetRunnableOnUnfocused(true)
	if o.WindowedMode {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	} else {
		ebiten.SetWindowDecorated(false)
		ebiten.SetWindowFloating(true)
		ebiten.SetWindowMousePassthrough(true)
		ebiten.SetWindowPosition(0, 0)
	}

	op := &ebiten.RunGameOptions{
		ScreenTransparent: !o.WindowedMode,
		InitUnfocused:     !o.WindowedMode,
	}
	err := ebiten.RunGameWithOptions(h, op)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Package debug drives the engine from a raw-mode terminal instead of a
// controller. Keys toggle buttons and pulse the sticks, and a command line
// sets a fake cursor position for free aiming.
package debug

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Versifine/aimpad/internal/action"
	"github.com/Versifine/aimpad/internal/gamepad"
	"github.com/Versifine/aimpad/internal/overlay"
	"golang.org/x/term"
)

const (
	defaultTickInterval = 16 * time.Millisecond
	defaultMovePulse    = 180 * time.Millisecond
)

var errQuit = errors.New("quit")

// Terminals only report key presses, so each button key toggles its button.
var buttonKeys = map[byte]string{
	'1': gamepad.ButtonA,
	'2': gamepad.ButtonB,
	'3': gamepad.ButtonX,
	'4': gamepad.ButtonY,
	'5': gamepad.ButtonLB,
	'6': gamepad.ButtonRB,
	'7': gamepad.ButtonLT,
	'8': gamepad.ButtonRT,
}

type Engine interface {
	Tick(buttons map[string]*gamepad.Button, walk action.Stick, aim action.AimStick) error
	Analog() action.AnalogState
	HoldingAbility() bool
}

type Console struct {
	pad          *gamepad.Pad
	display      *overlay.Display
	engine       Engine
	out          io.Writer
	tickInterval time.Duration
	movePulse    time.Duration

	mu          sync.Mutex
	held        map[string]bool
	walk        [2]float64
	aim         [2]float64
	walkUntil   time.Time
	aimUntil    time.Time
	hoverX      float64
	hoverY      float64
	hasHover    bool
	commandMode bool
	commandBuf  []rune
	statusWidth int
	analog      action.AnalogState
	ability     bool

	// Latched per tick and read only by the tick goroutine.
	frame     map[string]bool
	last      map[string]bool
	frameWalk [2]float64
	frameAim  [2]float64
}

func NewConsole(pad *gamepad.Pad, display *overlay.Display) *Console {
	return &Console{
		pad:          pad,
		display:      display,
		out:          os.Stdout,
		tickInterval: defaultTickInterval,
		movePulse:    defaultMovePulse,
		held:         make(map[string]bool),
		frame:        make(map[string]bool),
		last:         make(map[string]bool),
	}
}

func (c *Console) Attach(engine Engine) {
	c.engine = engine
}

// Start puts stdin in raw mode and runs until ctx is cancelled, :quit is
// entered or the engine faults.
func (c *Console) Start(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("console is nil")
	}
	if c.engine == nil {
		return fmt.Errorf("console engine is nil")
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
		fmt.Fprint(c.out, "\r\n")
	}()

	fmt.Fprint(c.out, "[debug] console started (1-8 buttons, W/A/S/D walk, arrows aim, X clear, : command)\r\n")
	c.renderStatusLine()

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	tickErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		tickErr <- c.tickLoop(ctx)
	}()
	// The engine must be idle before the caller releases held keys.
	defer wg.Wait()
	defer cancel()

	keys := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		reader := bufio.NewReader(os.Stdin)
		for {
			seq, err := readKey(reader)
			if err != nil {
				readErr <- err
				return
			}
			select {
			case keys <- seq:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-tickErr:
			return err
		case err := <-readErr:
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read console input: %w", err)
		case seq := <-keys:
			if err := c.handleKey(seq); errors.Is(err, errQuit) {
				return nil
			}
		}
	}
}

func (c *Console) tickLoop(ctx context.Context) error {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if err := c.tick(now); err != nil {
				return err
			}
		}
	}
}

func (c *Console) tick(now time.Time) error {
	c.latch(now)
	c.pad.Poll(c)
	walk, aim := c.pad.Sticks()
	if err := c.engine.Tick(c.pad.Buttons(), walk, aim); err != nil {
		slog.Error("Engine fault", "error", err)
		return fmt.Errorf("tick: %w", err)
	}
	c.mu.Lock()
	c.analog, c.ability = c.engine.Analog(), c.engine.HoldingAbility()
	c.mu.Unlock()
	c.renderStatusLine()
	return nil
}

// latch snapshots the keyboard state for one tick so edges are computed
// against the previous tick.
func (c *Console) latch(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.walkUntil.IsZero() && !now.Before(c.walkUntil) {
		c.walk, c.walkUntil = [2]float64{}, time.Time{}
	}
	if !c.aimUntil.IsZero() && !now.Before(c.aimUntil) {
		c.aim, c.aimUntil = [2]float64{}, time.Time{}
	}

	c.last, c.frame = c.frame, c.last
	clear(c.frame)
	for name, pressed := range c.held {
		c.frame[name] = pressed
	}
	c.frameWalk, c.frameAim = c.walk, c.aim
}

func (c *Console) Connected() bool {
	return true
}

func (c *Console) Button(name string) (pressed, justPressed, justReleased bool) {
	now, before := c.frame[name], c.last[name]
	return now, now && !before, !now && before
}

func (c *Console) Stick(side gamepad.Side) (x, y float64) {
	if side == gamepad.RightStick {
		return c.frameAim[0], c.frameAim[1]
	}
	return c.frameWalk[0], c.frameWalk[1]
}

// CurrentHoverPosition returns the position set with :hover.
func (c *Console) CurrentHoverPosition() (x, y float64, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hoverX, c.hoverY, c.hasHover
}

// readKey returns one key press. Arrow keys arrive as ESC [ X and are kept
// together; a lone ESC is returned on its own.
func readKey(reader *bufio.Reader) ([]byte, error) {
	b, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if b != 27 || reader.Buffered() < 2 {
		return []byte{b}, nil
	}
	next, _ := reader.ReadByte()
	arrow, _ := reader.ReadByte()
	return []byte{b, next, arrow}, nil
}

func (c *Console) handleKey(seq []byte) error {
	if len(seq) == 0 {
		return nil
	}
	b := seq[0]
	if c.isCommandMode() {
		return c.handleCommandByte(b)
	}

	if name, ok := buttonKeys[b]; ok {
		c.toggleButton(name)
		c.renderStatusLine()
		return nil
	}

	switch b {
	case ':':
		c.enterCommandMode()
		return nil
	case 'w', 'W':
		c.pulseWalk(0, 1)
	case 's', 'S':
		c.pulseWalk(0, -1)
	case 'a', 'A':
		c.pulseWalk(-1, 0)
	case 'd', 'D':
		c.pulseWalk(1, 0)
	case 'x', 'X':
		c.clearInput()
	case 27: // ESC + arrow sequence
		if len(seq) != 3 || seq[1] != '[' {
			return nil
		}
		switch seq[2] {
		case 'A':
			c.pulseAim(0, 1)
		case 'B':
			c.pulseAim(0, -1)
		case 'C':
			c.pulseAim(1, 0)
		case 'D':
			c.pulseAim(-1, 0)
		}
	}
	c.renderStatusLine()
	return nil
}

func (c *Console) enterCommandMode() {
	c.mu.Lock()
	c.commandMode = true
	c.commandBuf = c.commandBuf[:0]
	c.mu.Unlock()
	fmt.Fprint(c.out, "\r\n:")
}

func (c *Console) handleCommandByte(b byte) error {
	switch b {
	case 13, 10: // Enter
		c.mu.Lock()
		cmd := strings.TrimSpace(string(c.commandBuf))
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()

		fmt.Fprint(c.out, "\r\n")
		if cmd != "" {
			if err := c.executeCommand(cmd); err != nil {
				return err
			}
		}
		c.renderStatusLine()
		return nil
	case 27: // ESC cancel command mode
		c.mu.Lock()
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()
		fmt.Fprint(c.out, "\r\n[debug] command cancelled\r\n")
		c.renderStatusLine()
		return nil
	case 8, 127: // Backspace
		c.mu.Lock()
		if len(c.commandBuf) > 0 {
			c.commandBuf = c.commandBuf[:len(c.commandBuf)-1]
		}
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s ", buf)
		fmt.Fprintf(c.out, "\r:%s", buf)
		return nil
	default:
		if b < 32 || b > 126 {
			return nil
		}
		c.mu.Lock()
		c.commandBuf = append(c.commandBuf, rune(b))
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s", buf)
		return nil
	}
}

func (c *Console) executeCommand(cmd string) error {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return nil
	}

	switch parts[0] {
	case "help":
		c.printHelp()
	case "quit", "q":
		return errQuit
	case "state":
		c.mu.Lock()
		a, ability := c.analog, c.ability
		c.mu.Unlock()
		fmt.Fprintf(c.out, "[debug] walk=%t angle=%.2f aim=%t angle=%.2f dir=(%.2f,%.2f) ability=%t\r\n",
			a.HoldingWalk, a.WalkingAngle,
			a.HoldingAim, a.AimingAngle,
			a.AimDirection[0], a.AimDirection[1],
			ability,
		)
	case "hover":
		c.handleHoverCommand(parts)
	default:
		fmt.Fprintf(c.out, "[debug] unknown command: %s\r\n", parts[0])
	}
	return nil
}

func (c *Console) handleHoverCommand(parts []string) {
	if len(parts) == 2 && parts[1] == "off" {
		c.mu.Lock()
		c.hasHover = false
		c.mu.Unlock()
		fmt.Fprint(c.out, "[debug] hover cleared\r\n")
		return
	}
	if len(parts) != 3 {
		fmt.Fprint(c.out, "[debug] usage: :hover <x> <y> or :hover off\r\n")
		return
	}
	x, err1 := strconv.ParseFloat(parts[1], 64)
	y, err2 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil {
		fmt.Fprint(c.out, "[debug] invalid hover args\r\n")
		return
	}
	c.mu.Lock()
	c.hoverX, c.hoverY, c.hasHover = x, y, true
	c.mu.Unlock()
	fmt.Fprintf(c.out, "[debug] hover set to (%.1f, %.1f)\r\n", x, y)
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, "[debug] keys:\r\n")
	fmt.Fprint(c.out, "  1-8: toggle A B X Y LB RB LT RT\r\n")
	fmt.Fprint(c.out, "  W/S/A/D: pulse walk stick (~180ms)\r\n")
	fmt.Fprint(c.out, "  Arrows: pulse aim stick (~180ms)\r\n")
	fmt.Fprint(c.out, "  X: release everything\r\n")
	fmt.Fprint(c.out, "  : enter command mode\r\n")
	fmt.Fprint(c.out, "[debug] commands:\r\n")
	fmt.Fprint(c.out, "  :hover <x> <y>\r\n")
	fmt.Fprint(c.out, "  :hover off\r\n")
	fmt.Fprint(c.out, "  :state\r\n")
	fmt.Fprint(c.out, "  :quit\r\n")
	fmt.Fprint(c.out, "  :help\r\n")
}

func (c *Console) renderStatusLine() {
	c.mu.Lock()
	if c.commandMode {
		c.mu.Unlock()
		return
	}
	walk, aim := c.walk, c.aim
	width := c.statusWidth
	c.mu.Unlock()

	target := "-"
	held := "-"
	if c.display != nil {
		snap := c.display.Snapshot()
		if snap.HasTarget {
			target = fmt.Sprintf("%.0f,%.0f", snap.TargetX, snap.TargetY)
		}
		if len(snap.Held) > 0 {
			held = strings.Join(snap.Held, " ")
		}
	}

	line := fmt.Sprintf("[WALK:%+.0f,%+.0f AIM:%+.0f,%+.0f | PTR:%s | HELD:%s]",
		walk[0], walk[1], aim[0], aim[1], target, held)

	padding := ""
	if width > len(line) {
		padding = strings.Repeat(" ", width-len(line))
	}
	fmt.Fprintf(c.out, "\r%s%s", line, padding)

	c.mu.Lock()
	if len(line) > c.statusWidth {
		c.statusWidth = len(line)
	}
	c.mu.Unlock()
}

func (c *Console) isCommandMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandMode
}

func (c *Console) toggleButton(name string) {
	c.mu.Lock()
	c.held[name] = !c.held[name]
	pressed := c.held[name]
	c.mu.Unlock()
	slog.Debug("debug button toggled", "button", name, "pressed", pressed)
}

func (c *Console) pulseWalk(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.walk = [2]float64{x, y}
	c.walkUntil = time.Now().Add(c.movePulse)
}

func (c *Console) pulseAim(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aim = [2]float64{x, y}
	c.aimUntil = time.Now().Add(c.movePulse)
}

func (c *Console) clearInput() {
	c.mu.Lock()
	clear(c.held)
	c.walk, c.aim = [2]float64{}, [2]float64{}
	c.walkUntil, c.aimUntil = time.Time{}, time.Time{}
	c.mu.Unlock()
}

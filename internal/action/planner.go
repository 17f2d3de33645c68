package action

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/Versifine/aimpad/internal/gamepad"
)

type Direction int

const (
	Press Direction = iota
	Release
)

func (d Direction) String() string {
	if d == Press {
		return "press"
	}
	return "release"
}

// PendingAction is a button edge waiting to be dispatched. Aimable and
// Distance are only meaningful for presses.
type PendingAction struct {
	Name      string
	Direction Direction
	Aimable   bool
	Distance  ActionDistance
}

type DrainOrder int

const (
	DrainLIFO DrainOrder = iota
	DrainFIFO
)

func ParseDrainOrder(s string) (DrainOrder, error) {
	switch s {
	case "lifo", "":
		return DrainLIFO, nil
	case "fifo":
		return DrainFIFO, nil
	default:
		return DrainLIFO, fmt.Errorf("unknown drain order %q", s)
	}
}

// Queue holds the actions planned during one tick.
type Queue struct {
	order DrainOrder
	items []PendingAction
}

func (q *Queue) Push(a PendingAction) {
	q.items = append(q.items, a)
}

// Pop removes the next action according to the drain order.
func (q *Queue) Pop() (PendingAction, bool) {
	if len(q.items) == 0 {
		return PendingAction{}, false
	}
	var a PendingAction
	if q.order == DrainFIFO {
		a = q.items[0]
		q.items = q.items[1:]
	} else {
		last := len(q.items) - 1
		a = q.items[last]
		q.items = q.items[:last]
	}
	return a, true
}

func (q *Queue) Len() int {
	return len(q.items)
}

// Planner turns button edges into pending actions.
type Planner struct {
	queue     Queue
	aimable   map[string]struct{}
	targeting Targeting
}

func NewPlanner(aimable []string, targeting Targeting, order DrainOrder) *Planner {
	set := make(map[string]struct{}, len(aimable))
	for _, a := range aimable {
		set[a] = struct{}{}
	}
	return &Planner{
		queue:     Queue{order: order},
		aimable:   set,
		targeting: targeting,
	}
}

func (p *Planner) IsAimable(name string) bool {
	_, ok := p.aimable[name]
	return ok
}

// Ingest consumes the edge flags of every button. Buttons are visited in name
// order so the queue is reproducible. If any button carries both edges the
// whole batch is rejected and nothing is enqueued.
func (p *Planner) Ingest(buttons map[string]*gamepad.Button) error {
	names := make([]string, 0, len(buttons))
	for name, b := range buttons {
		if b == nil {
			continue
		}
		if b.JustPressed && b.JustUnpressed {
			return &FaultError{Err: ErrConflictingEdges, Action: name}
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		b := buttons[name]
		switch {
		case b.JustPressed:
			slog.Debug("Just pressed", "action", name)
			p.queue.Push(PendingAction{
				Name:      name,
				Direction: Press,
				Aimable:   p.IsAimable(name),
				Distance:  p.targeting.Classify(name),
			})
			b.JustPressed = false
		case b.JustUnpressed:
			slog.Debug("Just unpressed", "action", name)
			p.queue.Push(PendingAction{
				Name:      name,
				Direction: Release,
				Distance:  DistanceNone,
			})
			b.JustUnpressed = false
		}
	}
	return nil
}

func (p *Planner) Next() (PendingAction, bool) {
	return p.queue.Pop()
}

func (p *Planner) Pending() int {
	return p.queue.Len()
}

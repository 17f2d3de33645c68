package action

import (
	"math"

	"github.com/Versifine/aimpad/internal/config"
)

// ActionDistance is the qualitative range configured for an action.
// DistanceNone means no ranged targeting is configured, not a zero radius.
type ActionDistance int

const (
	DistanceNone ActionDistance = iota
	DistanceClose
	DistanceMid
	DistanceFar
)

func (d ActionDistance) String() string {
	switch d {
	case DistanceClose:
		return "close"
	case DistanceMid:
		return "mid"
	case DistanceFar:
		return "far"
	default:
		return "none"
	}
}

// Targeting converts action names and stick angles into screen coordinates
// on the circles around the avatar.
type Targeting struct {
	centerX   float64
	centerY   float64
	offsetX   float64
	offsetY   float64
	walk      float64
	close     float64
	mid       float64
	far       float64
	distances map[string]string
}

func NewTargeting(cfg *config.Config) Targeting {
	ctl := cfg.Controller
	return Targeting{
		centerX:   cfg.Overlay.ScreenWidth / 2,
		centerY:   cfg.Overlay.ScreenHeight / 2,
		offsetX:   ctl.CharacterXOffsetPx,
		offsetY:   ctl.CharacterYOffsetPx,
		walk:      ctl.WalkCircleRadiusPx,
		close:     ctl.CloseCircleRadiusPx,
		mid:       ctl.MidCircleRadiusPx,
		far:       ctl.FarCircleRadiusPx,
		distances: cfg.ActionDistances,
	}
}

// Classify returns the distance tag of an action. Unknown actions and
// unrecognised tags are DistanceNone.
func (t Targeting) Classify(name string) ActionDistance {
	switch t.distances[name] {
	case "close":
		return DistanceClose
	case "mid":
		return DistanceMid
	case "far":
		return DistanceFar
	default:
		return DistanceNone
	}
}

// RadiusFor maps a distance to pixels. DistanceNone falls back to the walk
// circle.
func (t Targeting) RadiusFor(d ActionDistance) float64 {
	switch d {
	case DistanceClose:
		return t.close
	case DistanceMid:
		return t.mid
	case DistanceFar:
		return t.far
	default:
		return t.walk
	}
}

func (t Targeting) WalkRadius() float64 {
	return t.walk
}

// Resolve converts a polar offset around the avatar into absolute screen
// pixels. Angles are counter-clockwise with y up; screen y grows downward,
// hence the subtraction.
func (t Targeting) Resolve(radius, angle float64) (x, y float64) {
	x = t.centerX + math.Cos(angle)*radius + t.offsetX
	y = t.centerY - math.Sin(angle)*radius - t.offsetY
	return x, y
}

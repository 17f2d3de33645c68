package action

// Stick is one analog stick sample.
type Stick interface {
	InDeadzone() bool
	Angle() float64
}

// AimStick also exposes the raw deflection used for free aiming.
type AimStick interface {
	Stick
	Direction() (x, y float64)
}

// AnalogState is what the engine remembers about the sticks. Angles are
// latched while a stick is held and left stale once it returns to centre.
type AnalogState struct {
	HoldingWalk  bool
	WalkingAngle float64
	HoldingAim   bool
	AimingAngle  float64
	AimDirection [2]float64
}

func (s *AnalogState) Ingest(walk Stick, aim AimStick) {
	if walk != nil && !walk.InDeadzone() {
		s.HoldingWalk = true
		s.WalkingAngle = walk.Angle()
	} else {
		s.HoldingWalk = false
	}

	if aim != nil && !aim.InDeadzone() {
		s.HoldingAim = true
		s.AimingAngle = aim.Angle()
		x, y := aim.Direction()
		s.AimDirection = [2]float64{x, y}
	} else {
		s.HoldingAim = false
	}
}

package event

const (
	EventKeyPressed   = "key.pressed"
	EventKeyReleased  = "key.released"
	EventPointerMoved = "pointer.moved"
)

type KeyEvent struct {
	Key     string
	Ability bool
}

type PointerEvent struct {
	X float64
	Y float64
}

// Package input turns raw human-interface readings into relay events.
//
// It covers the three input sources of the device: USB keyboard reports,
// rotary encoders and push buttons. Everything here is pure state kept
// per device instance; sampling and wiring is left to the owner.
package input

// Event is one decoded input action to be relayed to the host.
type Event interface {
	event()
}

// Key identifies a named control key.
type Key int

// Control keys with a dedicated event line.
const (
	KeyEnter Key = iota
	KeyBackspace
)

// String returns the key name as used on the wire.
func (k Key) String() string {
	switch k {
	case KeyEnter:
		return "ENTER"
	case KeyBackspace:
		return "BACKSPACE"
	}
	return "UNKNOWN"
}

// KeyEvent is a control key press.
type KeyEvent struct {
	Key Key
}

func (KeyEvent) event() {}

// TextEvent is a single printable character.
type TextEvent struct {
	Char byte
}

func (TextEvent) event() {}

// Pin reads the current level of a digital input line.
type Pin interface {
	Read() bool
}

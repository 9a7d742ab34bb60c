package wire

import (
	"errors"
	"strings"

	"github.com/termlink/termlink.go/pkg/input"
)

// Outbound line vocabulary.
const (
	keyPrefix  = "KEY:"
	textPrefix = "TXT:"
)

// ErrBadEventLine indicates a device-to-host line that is not part of
// the protocol.
var ErrBadEventLine = errors.New("unrecognized event line")

// EventLine encodes an input event as one newline-terminated ASCII
// line, or nil for events with no wire form.
func EventLine(ev input.Event) []byte {
	switch e := ev.(type) {
	case input.KeyEvent:
		switch e.Key {
		case input.KeyEnter, input.KeyBackspace:
			return []byte(keyPrefix + e.Key.String() + "\n")
		}
	case input.TextEvent:
		b := make([]byte, 0, len(textPrefix)+2)
		b = append(b, textPrefix...)
		return append(b, e.Char, '\n')
	}
	return nil
}

// ParseEventLine decodes one device-to-host line, with or without its
// terminator.
func ParseEventLine(line string) (input.Event, error) {
	line = strings.TrimRight(line, "\r\n")
	switch {
	case line == keyPrefix+input.KeyEnter.String():
		return input.KeyEvent{Key: input.KeyEnter}, nil
	case line == keyPrefix+input.KeyBackspace.String():
		return input.KeyEvent{Key: input.KeyBackspace}, nil
	case strings.HasPrefix(line, textPrefix) && len(line) == len(textPrefix)+1:
		return input.TextEvent{Char: line[len(textPrefix)]}, nil
	}
	return nil, ErrBadEventLine
}

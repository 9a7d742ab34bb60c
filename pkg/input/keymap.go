package input

// Boot keyboard usage codes with a fixed meaning for the relay.
const (
	codeEnter     = 0x28
	codeBackspace = 0x2a
)

// shiftMask selects the left and right shift bits of the modifier byte.
const shiftMask = 0x02 | 0x20

type charPair struct {
	base    byte
	shifted byte
}

// Punctuation usage codes and their shift pairs. 0x32 (non-US #) is
// intentionally absent; unmapped codes produce no event.
var punctuation = map[byte]charPair{
	0x2c: {' ', ' '},
	0x2d: {'-', '_'},
	0x2e: {'=', '+'},
	0x2f: {'[', '{'},
	0x30: {']', '}'},
	0x31: {'\\', '|'},
	0x33: {';', ':'},
	0x34: {'\'', '"'},
	0x35: {'`', '~'},
	0x36: {'.', '>'},
	0x37: {'/', '?'},
}

const (
	digits  = "1234567890"
	symbols = "!@#$%^&*()"
)

// Resolve maps one keyboard usage code to an Event. Only the shift bits
// of the modifier byte are consulted. Codes without a mapping return
// nil.
func Resolve(code, modifiers byte) Event {
	shifted := modifiers&shiftMask != 0
	switch {
	case code == codeEnter:
		return KeyEvent{Key: KeyEnter}
	case code == codeBackspace:
		return KeyEvent{Key: KeyBackspace}
	case code >= 0x04 && code <= 0x1d:
		if shifted {
			return TextEvent{Char: 'A' + code - 0x04}
		}
		return TextEvent{Char: 'a' + code - 0x04}
	case code >= 0x1e && code <= 0x27:
		if shifted {
			return TextEvent{Char: symbols[code-0x1e]}
		}
		return TextEvent{Char: digits[code-0x1e]}
	}
	if pair, ok := punctuation[code]; ok {
		if shifted {
			return TextEvent{Char: pair.shifted}
		}
		return TextEvent{Char: pair.base}
	}
	return nil
}

package input

// Report is a boot-protocol keyboard input report: one modifier byte,
// one reserved byte and up to six concurrently pressed usage codes.
type Report struct {
	Modifiers byte
	Keys      [6]byte
}

// DecodeReport extracts a Report from a raw report buffer. Buffers
// shorter than the 8-byte boot layout are rejected; longer ones keep
// only the boot prefix.
func DecodeReport(raw []byte) (Report, bool) {
	if len(raw) < 8 {
		return Report{}, false
	}
	var r Report
	r.Modifiers = raw[0]
	copy(r.Keys[:], raw[2:8])
	return r, true
}

// Events resolves the pressed keys into events preserving the report's
// slot order. Empty slots and unmapped codes produce nothing.
func (r Report) Events() []Event {
	var evs []Event
	for _, code := range r.Keys {
		if code == 0 {
			continue
		}
		if ev := Resolve(code, r.Modifiers); ev != nil {
			evs = append(evs, ev)
		}
	}
	return evs
}

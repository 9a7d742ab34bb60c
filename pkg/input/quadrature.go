package input

// Quadrature decodes rotation direction from the two phase-shifted
// signals of a rotary encoder. It is a pure transition classifier: the
// owner samples the pins and feeds the readings in.
type Quadrature struct {
	last byte
}

// NewQuadrature seeds the decoder with the current pin readings so the
// first real transition is not misread as a step.
func NewQuadrature(a, b bool) *Quadrature {
	return &Quadrature{last: graycode(a, b)}
}

// Step classifies the transition from the previous reading and returns
// one signed unit step, or 0 when the reading is unchanged. The fixed
// clockwise sequence is 00→01→11→10→00; every other transition counts
// as counter-clockwise, including double-bit jumps from missed samples.
func (q *Quadrature) Step(a, b bool) int {
	state := graycode(a, b)
	if state == q.last {
		return 0
	}
	dir := -1
	switch q.last<<2 | state {
	case 0x01, 0x07, 0x0e, 0x08: // 00→01, 01→11, 11→10, 10→00
		dir = 1
	}
	q.last = state
	return dir
}

func graycode(a, b bool) byte {
	var state byte
	if a {
		state |= 0x2
	}
	if b {
		state |= 0x1
	}
	return state
}

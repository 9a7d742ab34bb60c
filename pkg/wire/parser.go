package wire

// Parser reassembles Snapshots from a raw byte stream, one byte per
// call. It never blocks and never reports errors: anything that does
// not frame correctly is dropped and the search for the next STX
// restarts.
type Parser struct {
	state  parseState
	rows   uint8
	snap   *Snapshot
	remain int
}

// RecvState indicates the progress of frame reception.
type RecvState int

const (
	// RecvIdle means the parser is between frames, waiting for STX.
	RecvIdle RecvState = iota
	// RecvFraming means a frame is partially received.
	RecvFraming
)

// TimerAction tells the parser's owner what to do with the field
// timeout timer. Each multi-byte field read is bounded by one timeout
// from the start of that field.
type TimerAction int

const (
	// TimerNoChange keeps the timer as-is.
	TimerNoChange TimerAction = iota
	// TimerRestart starts the timer for a new field read.
	TimerRestart
	// TimerStop cancels the timer.
	TimerStop
)

// ParseResult is the outcome of one parsing step.
type ParseResult struct {
	State    RecvState
	Timer    TimerAction
	Snapshot *Snapshot
}

type parseState int

const (
	stateSync parseState = iota // waiting for STX
	stateTag                    // waiting for 'S'
	stateRows
	stateCols
	stateData
	stateEnd // waiting for ETX
)

// State gets the current receive state.
func (p *Parser) State() RecvState {
	if p.state == stateSync {
		return RecvIdle
	}
	return RecvFraming
}

// Reset discards any partial frame.
func (p *Parser) Reset() (pr ParseResult) {
	p.snap, pr.Timer = nil, TimerStop
	p.state = stateSync
	pr.State = p.State()
	return
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	pr.Snapshot, pr.Timer = p.parseByte(b)
	pr.State = p.State()
	return
}

// Timeout notifies the parser that the field timer expired. The whole
// frame in progress is abandoned, not just the current field.
func (p *Parser) Timeout() (pr ParseResult) {
	if p.state != stateSync {
		pr.Snapshot, pr.Timer = p.abandon()
	}
	pr.State = p.State()
	return
}

func (p *Parser) parseByte(b byte) (*Snapshot, TimerAction) {
	switch p.state {
	case stateSync:
		// Stray bytes never advance past this state; resync is implicit.
		if b == STX {
			p.state = stateTag
		}
	case stateTag:
		if b != Tag {
			return p.abandon()
		}
		p.state = stateRows
		return nil, TimerRestart
	case stateRows:
		p.rows = b
		p.state = stateCols
	case stateCols:
		total := int(p.rows) * int(b)
		keep := total
		if keep > maxPayload {
			keep = maxPayload
		}
		p.snap = &Snapshot{Rows: p.rows, Cols: b, Data: make([]byte, 0, keep)}
		p.remain = total
		if total == 0 {
			p.state = stateEnd
		} else {
			p.state = stateData
		}
		return nil, TimerRestart
	case stateData:
		if len(p.snap.Data) < cap(p.snap.Data) {
			p.snap.Data = append(p.snap.Data, b)
		}
		if p.remain--; p.remain == 0 {
			p.state = stateEnd
			return nil, TimerRestart
		}
	case stateEnd:
		if b != ETX {
			return p.abandon()
		}
		snap := p.snap
		p.snap = nil
		p.state = stateSync
		return snap, TimerStop
	}
	return nil, TimerNoChange
}

func (p *Parser) abandon() (*Snapshot, TimerAction) {
	p.snap = nil
	p.state = stateSync
	return nil, TimerStop
}

package wire

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/termlink/termlink.go/pkg/input"
)

// SnapshotHandler is called when a complete, valid frame is received.
type SnapshotHandler interface {
	HandleSnapshot(context.Context, *Snapshot)
}

// HandleSnapshotFunc is the func form of SnapshotHandler.
type HandleSnapshotFunc func(context.Context, *Snapshot)

// HandleSnapshot implements SnapshotHandler.
func (f HandleSnapshotFunc) HandleSnapshot(ctx context.Context, s *Snapshot) {
	f(ctx, s)
}

// StateNotifier is called when the receive state changes.
type StateNotifier interface {
	StateChanged(context.Context, RecvState)
}

// StateChangedFunc is the func form of StateNotifier.
type StateChangedFunc func(context.Context, RecvState)

// StateChanged implements StateNotifier.
func (f StateChangedFunc) StateChanged(ctx context.Context, state RecvState) {
	f(ctx, state)
}

// DefaultFieldTimeout bounds each multi-byte field read of a frame.
const DefaultFieldTimeout = 200 * time.Millisecond

// Link runs the frame protocol over a byte stream: inbound snapshot
// frames are parsed and handed to the Handler, outbound input events
// are written as lines.
type Link struct {
	ReadWriter  io.ReadWriter
	Handler     SnapshotHandler
	Notifier    StateNotifier
	Timeout     time.Duration
	ReadTimeout bool // set when ReadWriter reports read timeouts natively

	state RecvState
	lock  sync.RWMutex

	fieldTimer <-chan time.Time
	parser     Parser
}

// NewLink creates a Link with the default field timeout.
func NewLink(rw io.ReadWriter) *Link {
	return &Link{ReadWriter: rw, Timeout: DefaultFieldTimeout}
}

// State gets the receive state.
func (l *Link) State() RecvState {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.state
}

// Send writes one outbound event line. Events without a wire form are
// dropped.
func (l *Link) Send(ev input.Event) error {
	line := EventLine(ev)
	if line == nil {
		return nil
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	_, err := l.ReadWriter.Write(line)
	return err
}

// Run consumes the inbound stream until the context is canceled or the
// stream fails.
func (l *Link) Run(ctx context.Context) error {
	l.apply(ctx, l.parser.Reset())

	if l.ReadTimeout {
		buf := make([]byte, 1)
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-l.fieldTimer:
				l.apply(ctx, l.parser.Timeout())
			default:
				n, err := l.ReadWriter.Read(buf)
				if err != nil && !os.IsTimeout(err) {
					return err
				}
				if n > 0 {
					l.apply(ctx, l.parser.Parse(buf[0]))
				}
			}
		}
	}

	byteCh, errCh := make(chan byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go l.readLoop(subCtx, byteCh, errCh)
	for {
		select {
		case b := <-byteCh:
			l.apply(ctx, l.parser.Parse(b))
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		case <-l.fieldTimer:
			l.apply(ctx, l.parser.Timeout())
		}
	}
}

func (l *Link) readLoop(ctx context.Context, byteCh chan byte, errCh chan error) {
	buf := make([]byte, 1)
	for {
		select {
		case <-ctx.Done():
			return
		default:
			n, err := l.ReadWriter.Read(buf)
			if err != nil {
				errCh <- err
				return
			}
			if n > 0 {
				byteCh <- buf[0]
			}
		}
	}
}

func (l *Link) apply(ctx context.Context, pr ParseResult) {
	var notifier StateNotifier
	l.lock.Lock()
	if l.state != pr.State {
		l.state = pr.State
		notifier = l.Notifier
	}
	l.lock.Unlock()

	switch pr.Timer {
	case TimerRestart:
		timeout := l.Timeout
		if timeout == 0 {
			timeout = DefaultFieldTimeout
		}
		l.fieldTimer = time.After(timeout)
	case TimerStop:
		l.fieldTimer = nil
	}

	if notifier != nil {
		notifier.StateChanged(ctx, pr.State)
	}
	if pr.Snapshot != nil {
		if glog.V(3) {
			glog.Infof("frame %dx%d received", pr.Snapshot.Rows, pr.Snapshot.Cols)
		}
		if h := l.Handler; h != nil {
			h.HandleSnapshot(ctx, pr.Snapshot)
		}
	}
}

package wire

import (
	"bytes"
	"context"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/termlink/termlink.go/pkg/input"
)

type linkTestCtx struct {
	t       *testing.T
	pipeW   *io.PipeWriter
	out     lockedBuffer
	link    *Link
	snapCh  chan *Snapshot
	stateCh chan RecvState
	doneCh  chan error
	cancel  func()
}

type lockedBuffer struct {
	lock sync.Mutex
	buf  bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.String()
}

func newLinkTestCtx(t *testing.T, timeout time.Duration) *linkTestCtx {
	pipeR, pipeW := io.Pipe()
	c := &linkTestCtx{
		t:       t,
		pipeW:   pipeW,
		snapCh:  make(chan *Snapshot, 4),
		stateCh: make(chan RecvState, 16),
		doneCh:  make(chan error, 1),
	}
	c.link = NewLink(struct {
		io.Reader
		io.Writer
	}{pipeR, &c.out})
	c.link.Timeout = timeout
	c.link.Handler = HandleSnapshotFunc(func(_ context.Context, s *Snapshot) {
		c.snapCh <- s
	})
	c.link.Notifier = StateChangedFunc(func(_ context.Context, state RecvState) {
		c.stateCh <- state
	})
	var ctx context.Context
	ctx, c.cancel = context.WithCancel(context.Background())
	go func() {
		c.doneCh <- c.link.Run(ctx)
	}()
	return c
}

func (c *linkTestCtx) inject(p []byte) {
	_, err := c.pipeW.Write(p)
	require.NoError(c.t, err)
}

func (c *linkTestCtx) expectSnapshot() *Snapshot {
	select {
	case s := <-c.snapCh:
		return s
	case <-time.After(time.Second):
		c.t.Fatal("expected a snapshot")
		return nil
	}
}

func (c *linkTestCtx) expectNoSnapshot(wait time.Duration) {
	select {
	case s := <-c.snapCh:
		c.t.Fatalf("unexpected snapshot %dx%d", s.Rows, s.Cols)
	case <-time.After(wait):
	}
}

func (c *linkTestCtx) close() {
	c.pipeW.Close()
	c.cancel()
	<-c.doneCh
}

func TestLinkReceivesFrames(t *testing.T) {
	c := newLinkTestCtx(t, time.Second)
	defer c.close()

	c.inject(frameOf(2, 3, []byte("abcdef")))
	s := c.expectSnapshot()
	require.Equal(t, []byte("abcdef"), s.Data)

	c.inject(frameOf(1, 1, []byte("x")))
	require.Equal(t, []byte("x"), c.expectSnapshot().Data)
}

func TestLinkStalledFrameAbandoned(t *testing.T) {
	c := newLinkTestCtx(t, 30*time.Millisecond)
	defer c.close()

	// header promises 4 payload bytes that never arrive in time
	c.inject([]byte{STX, Tag, 2, 2, 'a'})
	c.expectNoSnapshot(100 * time.Millisecond)

	// the next valid frame parses cleanly after the stall
	c.inject(frameOf(1, 2, []byte("ok")))
	require.Equal(t, []byte("ok"), c.expectSnapshot().Data)
}

func TestLinkStateNotifications(t *testing.T) {
	c := newLinkTestCtx(t, time.Second)
	defer c.close()

	c.inject(frameOf(1, 1, []byte("a")))
	c.expectSnapshot()
	require.Equal(t, RecvFraming, <-c.stateCh)
	require.Equal(t, RecvIdle, <-c.stateCh)
}

func TestLinkSend(t *testing.T) {
	c := newLinkTestCtx(t, time.Second)
	defer c.close()

	require.NoError(t, c.link.Send(input.KeyEvent{Key: input.KeyEnter}))
	require.NoError(t, c.link.Send(input.TextEvent{Char: 'q'}))
	require.Equal(t, "KEY:ENTER\nTXT:q\n", c.out.String())
}

// timeoutStream mimics a transport with a native read timeout: reads
// drain queued bytes one at a time and time out when the queue is
// empty.
type timeoutStream struct {
	lock sync.Mutex
	data []byte
}

func (s *timeoutStream) feed(p []byte) {
	s.lock.Lock()
	s.data = append(s.data, p...)
	s.lock.Unlock()
}

func (s *timeoutStream) Read(p []byte) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if len(s.data) == 0 {
		return 0, os.ErrDeadlineExceeded
	}
	n := copy(p, s.data[:1])
	s.data = s.data[n:]
	return n, nil
}

func (s *timeoutStream) Write(p []byte) (int, error) {
	return len(p), nil
}

func TestLinkNativeReadTimeoutMode(t *testing.T) {
	src := &timeoutStream{}
	link := NewLink(src)
	link.ReadTimeout = true
	link.Timeout = 30 * time.Millisecond
	snapCh := make(chan *Snapshot, 4)
	link.Handler = HandleSnapshotFunc(func(_ context.Context, s *Snapshot) {
		snapCh <- s
	})
	ctx, cancel := context.WithCancel(context.Background())
	doneCh := make(chan error, 1)
	go func() { doneCh <- link.Run(ctx) }()

	expect := func(data []byte) {
		select {
		case s := <-snapCh:
			require.Equal(t, data, s.Data)
		case <-time.After(time.Second):
			t.Fatal("expected a snapshot")
		}
	}

	src.feed(frameOf(1, 3, []byte("abc")))
	expect([]byte("abc"))

	// a stalled frame is abandoned by the field timer, not by a read
	// error
	src.feed([]byte{STX, Tag, 2, 2, 'a'})
	select {
	case s := <-snapCh:
		t.Fatalf("unexpected snapshot %dx%d", s.Rows, s.Cols)
	case <-time.After(100 * time.Millisecond):
	}
	src.feed(frameOf(1, 2, []byte("ok")))
	expect([]byte("ok"))

	cancel()
	require.Equal(t, context.Canceled, <-doneCh)
}

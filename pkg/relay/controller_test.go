package relay

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/termlink/termlink.go/pkg/framework"
	"github.com/termlink/termlink.go/pkg/term"
	"github.com/termlink/termlink.go/pkg/wire"
)

// fakeCtl stands in for the loop on direct controller calls.
type fakeCtl struct {
	now      time.Time
	messages []fx.Message
	posted   []fx.Message
	triggers int
}

func (c *fakeCtl) Time() time.Time          { return c.now }
func (c *fakeCtl) Context() context.Context { return context.Background() }
func (c *fakeCtl) Messages() fx.MessageStore {
	return c
}

func (c *fakeCtl) ProcessMessages(p fx.MessageProcessor) {
	var kept []fx.Message
	for _, msg := range c.messages {
		if !p.ProcessMessage(msg) {
			kept = append(kept, msg)
		}
	}
	c.messages = kept
}

func (c *fakeCtl) PostMessage(msg fx.Message) { c.posted = append(c.posted, msg) }
func (c *fakeCtl) TriggerNext()               { c.triggers++ }

// fakePin is a settable digital input.
type fakePin struct {
	level bool
}

func (p *fakePin) Read() bool { return p.level }

// fakeDisplay records every row write.
type fakeDisplay struct {
	rows  map[int]string
	calls int
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{rows: make(map[int]string)}
}

func (d *fakeDisplay) WriteRow(row int, text []byte) error {
	d.rows[row] = string(text)
	d.calls++
	return nil
}

// lockedBuffer collects the bytes the controller sends to the host.
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

type testStream struct {
	io.Reader
	io.Writer
}

func newTestController() (*Controller, *fakeDisplay, *lockedBuffer) {
	out := &lockedBuffer{}
	link := wire.NewLink(&testStream{Reader: strings.NewReader(""), Writer: out})
	disp := newFakeDisplay()
	return NewController(link, disp), disp, out
}

func TestControllerSplashRender(t *testing.T) {
	c, disp, _ := newTestController()
	ctl := &fakeCtl{now: time.Now()}

	require.NoError(t, c.render(ctl))
	require.Equal(t, "termlink ready  ", disp.rows[0])
	require.Equal(t, "waiting for host", disp.rows[1])
}

func TestControllerAppliesSnapshotMessage(t *testing.T) {
	c, disp, _ := newTestController()
	snap := wire.SnapshotFromText(2, 16, "first row\nsecond row")
	ctl := &fakeCtl{now: time.Now(), messages: []fx.Message{&snapshotMsg{snap: snap}}}

	require.NoError(t, c.Control(ctl))
	require.Empty(t, ctl.messages, "snapshot message must be taken")
	require.NoError(t, c.render(ctl))
	require.Equal(t, "first row       ", disp.rows[0])
	require.Equal(t, "second row      ", disp.rows[1])
}

func TestControllerLeavesForeignMessages(t *testing.T) {
	c, _, _ := newTestController()
	ctl := &fakeCtl{now: time.Now(), messages: []fx.Message{"not mine"}}
	require.NoError(t, c.Control(ctl))
	require.Len(t, ctl.messages, 1)
}

func TestControllerRenderThrottle(t *testing.T) {
	c, disp, _ := newTestController()
	now := time.Now()
	ctl := &fakeCtl{now: now}

	require.NoError(t, c.render(ctl))
	require.Equal(t, 2, disp.calls)

	// clean buffer inside the period: no writes
	ctl.now = now.Add(50 * time.Millisecond)
	require.NoError(t, c.render(ctl))
	require.Equal(t, 2, disp.calls)

	// period elapsed: periodic refresh even when clean
	ctl.now = now.Add(250 * time.Millisecond)
	require.NoError(t, c.render(ctl))
	require.Equal(t, 4, disp.calls)
}

func TestControllerKeyboardReports(t *testing.T) {
	c, _, out := newTestController()
	ctl := &fakeCtl{now: time.Now()}

	c.HandleReport([]byte{0x02, 0x00, 0x04, 0x28, 0x00, 0x00, 0x00, 0x00})
	c.HandleReport([]byte{0x00, 0x00}) // short report is ignored
	require.NoError(t, c.pollInputs(ctl))

	require.Equal(t, "TXT:A\nKEY:ENTER\n", out.String())
}

func TestControllerButtonEvents(t *testing.T) {
	c, _, out := newTestController()
	enter, back := &fakePin{level: true}, &fakePin{level: true} // released, active-low
	c.EnterBtn, c.BackBtn = enter, back
	now := time.Now()
	ctl := &fakeCtl{now: now}

	require.NoError(t, c.pollInputs(ctl))
	require.Empty(t, out.String())

	enter.level = false
	require.NoError(t, c.pollInputs(ctl))
	require.Equal(t, "KEY:ENTER\n", out.String())

	// held inside the cooldown: suppressed
	ctl.now = now.Add(50 * time.Millisecond)
	require.NoError(t, c.pollInputs(ctl))
	require.Equal(t, "KEY:ENTER\n", out.String())

	enter.level = true
	back.level = false
	ctl.now = now.Add(300 * time.Millisecond)
	require.NoError(t, c.pollInputs(ctl))
	require.Equal(t, "KEY:ENTER\nKEY:BACKSPACE\n", out.String())
}

// blockingReader counts readers and blocks them until released.
type blockingReader struct {
	readers int32
	release chan struct{}
}

func (r *blockingReader) Read(p []byte) (int, error) {
	atomic.AddInt32(&r.readers, 1)
	<-r.release
	return 0, io.EOF
}

func TestControllerPumpsLinkOnce(t *testing.T) {
	src := &blockingReader{release: make(chan struct{})}
	link := wire.NewLink(&testStream{Reader: src, Writer: &lockedBuffer{}})
	c := NewController(link, newFakeDisplay())

	loop := fx.NewLoop().Add(c)
	ctx, cancel := context.WithCancel(context.Background())
	doneCh := make(chan error, 1)
	go func() { doneCh <- loop.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(1), atomic.LoadInt32(&src.readers),
		"one reader must own the link stream")

	cancel()
	close(src.release)
	require.Equal(t, context.Canceled, <-doneCh)
}

func TestControllerLoopWiring(t *testing.T) {
	// HandleReport must be usable as soon as the loop is assembled,
	// before Run starts
	c, _, out := newTestController()
	c.AddToLoop(fx.NewLoop())

	c.HandleReport([]byte{0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00})
	require.NoError(t, c.pollInputs(&fakeCtl{now: time.Now()}))
	require.Equal(t, "TXT:a\n", out.String())
}

func TestControllerEncoderScrolls(t *testing.T) {
	c, disp, _ := newTestController()
	a, b := &fakePin{}, &fakePin{}
	c.VScroll = EncoderPins{A: a, B: b}
	now := time.Now()
	ctl := &fakeCtl{now: now}

	// fill the grid so there is somewhere to scroll
	data := make([]byte, term.Rows*term.Cols)
	for i := range data {
		data[i] = byte('A' + i/term.Cols)
	}
	ctl.messages = []fx.Message{&snapshotMsg{snap: &wire.Snapshot{
		Rows: term.Rows, Cols: term.Cols, Data: data,
	}}}
	require.NoError(t, c.Control(ctl))
	require.NoError(t, c.render(ctl))
	require.Equal(t, strings.Repeat("A", 16), disp.rows[0])

	// first poll seeds the decoder
	require.NoError(t, c.pollInputs(ctl))

	// one counter-clockwise detent scrolls down (vertical sense is
	// inverted): 00 -> 10 -> 11 -> 01 -> 00 yields four -1 steps
	detent := [][2]bool{{true, false}, {true, true}, {false, true}, {false, false}}
	for _, s := range detent {
		a.level, b.level = s[0], s[1]
		require.NoError(t, c.pollInputs(ctl))
	}

	ctl.now = now.Add(time.Second)
	require.NoError(t, c.render(ctl))
	require.Equal(t, strings.Repeat("E", 16), disp.rows[0])
}

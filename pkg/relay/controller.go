// Package relay wires the terminal-relay core together: the host link,
// the terminal buffer, the input devices and the display.
package relay

import (
	"context"
	"time"

	"github.com/golang/glog"

	fx "github.com/termlink/termlink.go/pkg/framework"
	"github.com/termlink/termlink.go/pkg/input"
	"github.com/termlink/termlink.go/pkg/term"
	"github.com/termlink/termlink.go/pkg/wire"
)

// Display receives the visible window, one row at a time, at a fixed
// cursor position.
type Display interface {
	WriteRow(row int, text []byte) error
}

// EncoderPins are the quadrature phase inputs of one rotary encoder.
type EncoderPins struct {
	A, B input.Pin
}

func (p EncoderPins) valid() bool {
	return p.A != nil && p.B != nil
}

// DefaultRenderPeriod bounds display staleness between event-driven
// renders.
const DefaultRenderPeriod = 200 * time.Millisecond

const (
	splashTop    = "termlink ready"
	splashBottom = "waiting for host"
)

// Controller owns the relay state. All mutation happens on loop
// iterations; the link and report sources only post messages.
type Controller struct {
	Link    *wire.Link
	Display Display

	// VScroll scrolls the viewport vertically, HScroll horizontally.
	// Either may be left unwired.
	VScroll EncoderPins
	HScroll EncoderPins
	// EnterBtn and BackBtn are active-low push buttons.
	EnterBtn input.Pin
	BackBtn  input.Pin

	RenderPeriod   time.Duration
	ButtonCooldown time.Duration

	buffer     *term.Buffer
	vQuad      *input.Quadrature
	hQuad      *input.Quadrature
	enterBtn   input.Button
	backBtn    input.Button
	reportCh   chan input.Report
	loopCtl    fx.LoopControl
	dirty      bool
	lastRender time.Time
}

type snapshotMsg struct {
	snap *wire.Snapshot
}

// NewController creates a Controller over an opened link and display.
func NewController(link *wire.Link, disp Display) *Controller {
	c := &Controller{
		Link:         link,
		Display:      disp,
		RenderPeriod: DefaultRenderPeriod,
		buffer:       term.NewBuffer(),
		reportCh:     make(chan input.Report, 16),
		dirty:        true,
	}
	splash := wire.SnapshotFromText(term.WindowRows, term.WindowCols,
		splashTop+"\n"+splashBottom)
	c.buffer.ApplySnapshot(splash.Rows, splash.Cols, splash.Data)
	return c
}

// AddToLoop implements LoopAdder. AddController registers the
// controller as a Runnable too, so the link pump starts exactly once.
func (c *Controller) AddToLoop(loop *fx.Loop) {
	c.loopCtl = loop
	loop.AddController(fx.PrLvPoll, fx.ControlFunc(c.pollInputs))
	loop.AddController(fx.PrLvControl, c)
	loop.AddController(fx.PrLvRender, fx.ControlFunc(c.render))
}

// Run implements Runnable: it pumps the host link, posting complete
// snapshots to the loop.
func (c *Controller) Run(ctx context.Context) error {
	ctl := c.loopCtl
	if ctl == nil {
		ctl = fx.LoopCtlFrom(ctx)
	}
	c.Link.Handler = wire.HandleSnapshotFunc(func(_ context.Context, s *wire.Snapshot) {
		ctl.PostMessage(&snapshotMsg{snap: s})
		ctl.TriggerNext()
	})
	return c.Link.Run(ctx)
}

// HandleReport is the push entry point for the keyboard host stack.
// Safe to call from any goroutine; the report is queued and drained on
// the next tick.
func (c *Controller) HandleReport(raw []byte) {
	rep, ok := input.DecodeReport(raw)
	if !ok {
		return
	}
	select {
	case c.reportCh <- rep:
		if ctl := c.loopCtl; ctl != nil {
			ctl.TriggerNext()
		}
	default:
		glog.Warning("keyboard report dropped")
	}
}

// Control implements Controller: applies queued snapshots.
func (c *Controller) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(msg fx.Message) bool {
		m, ok := msg.(*snapshotMsg)
		if !ok {
			return false
		}
		c.buffer.ApplySnapshot(m.snap.Rows, m.snap.Cols, m.snap.Data)
		c.dirty = true
		return true
	}))
	return nil
}

func (c *Controller) pollInputs(cc fx.ControlContext) error {
	for drained := false; !drained; {
		select {
		case rep := <-c.reportCh:
			for _, ev := range rep.Events() {
				c.send(ev)
			}
		default:
			drained = true
		}
	}

	if c.VScroll.valid() {
		if c.vQuad == nil {
			c.vQuad = input.NewQuadrature(c.VScroll.A.Read(), c.VScroll.B.Read())
		}
		// vertical sense is inverted: clockwise scrolls up
		if d := c.vQuad.Step(c.VScroll.A.Read(), c.VScroll.B.Read()); d != 0 {
			if c.buffer.ScrollRows(-d) {
				c.dirty = true
			}
		}
	}
	if c.HScroll.valid() {
		if c.hQuad == nil {
			c.hQuad = input.NewQuadrature(c.HScroll.A.Read(), c.HScroll.B.Read())
		}
		if d := c.hQuad.Step(c.HScroll.A.Read(), c.HScroll.B.Read()); d != 0 {
			if c.buffer.ScrollCols(d) {
				c.dirty = true
			}
		}
	}

	now := cc.Time()
	c.enterBtn.Cooldown, c.backBtn.Cooldown = c.ButtonCooldown, c.ButtonCooldown
	if c.EnterBtn != nil && c.enterBtn.Poll(!c.EnterBtn.Read(), now) {
		c.send(input.KeyEvent{Key: input.KeyEnter})
	}
	if c.BackBtn != nil && c.backBtn.Poll(!c.BackBtn.Read(), now) {
		c.send(input.KeyEvent{Key: input.KeyBackspace})
	}
	return nil
}

func (c *Controller) render(cc fx.ControlContext) error {
	period := c.RenderPeriod
	if period == 0 {
		period = DefaultRenderPeriod
	}
	now := cc.Time()
	if !c.dirty && now.Sub(c.lastRender) < period {
		return nil
	}
	c.dirty = false
	c.lastRender = now
	w := c.buffer.Window()
	for r := range w {
		if err := c.Display.WriteRow(r, w[r][:]); err != nil {
			return err
		}
	}
	return nil
}

// A dropped event is not retried; the user simply presses again.
func (c *Controller) send(ev input.Event) {
	if err := c.Link.Send(ev); err != nil {
		glog.Errorf("send event: %v", err)
	}
}

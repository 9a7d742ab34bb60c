// Package bridge is the host side of the terminal relay: it frames
// screen snapshots onto the device link and republishes the device's
// key events.
package bridge

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/termlink/termlink.go/pkg/comm/mqtt"
	fx "github.com/termlink/termlink.go/pkg/framework"
	"github.com/termlink/termlink.go/pkg/wire"
)

// Default topics, relative to the queue's topic prefix.
const (
	DefaultScreenTopic = "screen"
	DefaultKeysTopic   = "keys"
)

// DefaultMinInterval throttles snapshot pushes so a chatty publisher
// cannot saturate the serial link.
const DefaultMinInterval = 50 * time.Millisecond

// Bridge relays between the MQTT fabric and one device link. Payloads
// on the screen topic are plain text (rows separated by '\n') and are
// framed as full snapshots; event lines from the device are published
// verbatim on the keys topic.
type Bridge struct {
	Queue *mqtt.Queue
	Link  io.ReadWriter

	ScreenTopic string
	KeysTopic   string
	Rows        uint8
	Cols        uint8
	MinInterval time.Duration

	lock     sync.Mutex
	lastSend time.Time
}

// New creates a Bridge with default topics, dimensions and throttle.
func New(q *mqtt.Queue, link io.ReadWriter) *Bridge {
	return &Bridge{
		Queue:       q,
		Link:        link,
		ScreenTopic: DefaultScreenTopic,
		KeysTopic:   DefaultKeysTopic,
		Rows:        wire.MaxRows,
		Cols:        wire.MaxCols,
		MinInterval: DefaultMinInterval,
	}
}

// Run implements Runnable: subscribes the screen topic and reads event
// lines from the link until the context is canceled or the link fails.
func (b *Bridge) Run(ctx context.Context) error {
	sub := b.Queue.Sub(b.ScreenTopic, mqtt.Handler(b.handleScreen))
	defer sub.Close()

	scanner := bufio.NewScanner(b.Link)
	readLines := func() error {
		for scanner.Scan() {
			line := scanner.Text()
			if _, err := wire.ParseEventLine(line); err != nil {
				glog.Warningf("bad event line %q", line)
				continue
			}
			glog.V(1).Infof("key event %q", line)
			token := b.Queue.Pub(b.KeysTopic, []byte(line))
			token.Wait()
			if err := token.Error(); err != nil {
				glog.Errorf("publish key event: %v", err)
			}
		}
		return scanner.Err()
	}
	if closer, ok := b.Link.(io.Closer); ok {
		return fx.RunWithContextCloser(ctx, closer, readLines)
	}
	return fx.RunWithContext(ctx, readLines)
}

func (b *Bridge) handleScreen(_ string, payload []byte) {
	b.lock.Lock()
	defer b.lock.Unlock()
	now := time.Now()
	if !b.lastSend.IsZero() && now.Sub(b.lastSend) < b.MinInterval {
		glog.V(2).Info("snapshot throttled")
		return
	}
	b.lastSend = now
	snap := wire.SnapshotFromText(b.Rows, b.Cols, string(payload))
	if _, err := snap.WriteTo(b.Link); err != nil {
		glog.Errorf("send snapshot: %v", err)
	}
}

package framework

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Aggregate())

	errA := errors.New("a")
	errs.Add(nil, errA)
	require.Equal(t, errA, errs.Aggregate(), "a sole error comes back unwrapped")

	errs.Add(errors.New("b"))
	err := errs.Aggregate()
	require.Error(t, err)
	require.Equal(t, "multiple errors:\na\nb", err.Error())
}

func TestRunWithContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	unblock := make(chan struct{})
	doneCh := make(chan error, 1)
	go func() {
		doneCh <- RunWithContextCancel(ctx, func() {
			close(unblock)
		}, func() error {
			<-unblock
			return errors.New("late")
		})
	}()
	cancel()
	require.Equal(t, context.Canceled, <-doneCh)
}

type countingCloser struct {
	closed int32
}

func (c *countingCloser) Close() error {
	atomic.AddInt32(&c.closed, 1)
	return nil
}

func TestRunWithContextCloser(t *testing.T) {
	var c countingCloser
	err := RunWithContextCloser(context.Background(), &c, func() error {
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&c.closed))
}

// tickingController is both a Controller and a Runnable, the shape the
// loop promotes to a background runner automatically.
type tickingController struct {
	runs  int32
	ticks int32
}

func (c *tickingController) Control(ControlContext) error {
	atomic.AddInt32(&c.ticks, 1)
	return nil
}

func (c *tickingController) Run(ctx context.Context) error {
	atomic.AddInt32(&c.runs, 1)
	<-ctx.Done()
	return ctx.Err()
}

func TestLoopRunsRunnableControllerOnce(t *testing.T) {
	ctl := &tickingController{}
	loop := NewLoop()
	loop.AddController(PrLvControl, ctl)

	ctx, cancel := context.WithCancel(context.Background())
	doneCh := make(chan error, 1)
	go func() { doneCh <- loop.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	require.Equal(t, context.Canceled, <-doneCh)
	require.Equal(t, int32(1), atomic.LoadInt32(&ctl.runs))
	require.True(t, atomic.LoadInt32(&ctl.ticks) > 0, "controller must tick")
}

package relay

import (
	"context"
	"io"

	fx "github.com/termlink/termlink.go/pkg/framework"
)

// ReportReader pumps raw keyboard reports from a report source (e.g. a
// hidraw device node) into the controller. Each Read is assumed to
// return one complete report.
type ReportReader struct {
	Source io.ReadCloser
	Target *Controller
}

// Run implements Runnable. The source is closed on cancellation to
// unblock the pending read.
func (r *ReportReader) Run(ctx context.Context) error {
	buf := make([]byte, 64)
	return fx.RunWithContextCloser(ctx, r.Source, func() error {
		for {
			n, err := r.Source.Read(buf)
			if err != nil {
				return err
			}
			if n > 0 {
				r.Target.HandleReport(buf[:n])
			}
		}
	})
}

package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/edu_platform/pkg/logging"
	"github.com/Skotchmaster/edu_platform/pkg/metrics"
)

type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// RunJanitor purges expired refresh and denylist rows every interval until
// ctx is cancelled.
func RunJanitor(ctx context.Context, p Purger, interval time.Duration, now func() time.Time) {
	l := logging.FromContext(ctx).With("svc", "janitor")
	if interval <= 0 {
		l.Info("janitor_disabled")
		return
	}
	if now == nil {
		now = time.Now
	}

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := p.PurgeExpired(ctx, now())
			if err != nil {
				l.Error("ledger_error", "op", "purge", "error", err)
				metrics.RecordLedgerError("purge")
				continue
			}
			metrics.RecordPurged(n)
			if n > 0 {
				l.Info("purged_expired", "rows", n)
			}
		}
	}
}

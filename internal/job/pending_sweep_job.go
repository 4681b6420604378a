package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/otpauth/internal/metrics"
)

type ExpiredPendingDeleter interface {
	DeleteExpiredBefore(ctx context.Context, cutoff int64) (int64, error)
}

// PendingSweepJob removes pending registrations that expired more than
// retention ago, including rows orphaned by an interrupted signup.
type PendingSweepJob struct {
	store     ExpiredPendingDeleter
	retention time.Duration
	now       func() time.Time
}

func NewPendingSweepJob(store ExpiredPendingDeleter, retention time.Duration) *PendingSweepJob {
	return &PendingSweepJob{store: store, retention: retention, now: time.Now}
}

func (j *PendingSweepJob) Name() string {
	return "pending_sweep"
}

func (j *PendingSweepJob) Run(ctx context.Context) error {
	if j.store == nil {
		return nil
	}
	retention := j.retention
	if retention < 0 {
		retention = 0
	}
	cutoff := j.now().Add(-retention).Unix()
	n, err := j.store.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	metrics.RecordSwept(n)
	if n > 0 {
		logutil.GetLogger(ctx).Info("expired pending registrations removed", zap.Int64("count", n), zap.Int64("cutoff", cutoff))
	}
	return nil
}

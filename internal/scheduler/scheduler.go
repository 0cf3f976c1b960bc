package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/clock"
	obsmetrics "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/observability/metrics"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/ratelimit"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const lockKeyScheduler = "bookingcore:lock:scheduler"

const (
	JobExpireGuestQuotes   = "expire_guest_quotes"
	JobReleaseInvoiceFlags = "release_stale_invoice_flags"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Config Config            `optional:"true"`
	Locker *ratelimit.Locker `optional:"true"`
}

// Scheduler runs periodic maintenance over quotes and bookings. With a
// configured Locker only one instance runs a pass at a time.
type Scheduler struct {
	db     *gorm.DB
	log    *zap.Logger
	cfg    Config
	genID  *snowflake.Node
	clock  clock.Clock
	locker *ratelimit.Locker
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.GenID == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:     p.DB,
		log:    p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:    p.Config.withDefaults(),
		genID:  p.GenID,
		clock:  p.Clock,
		locker: p.Locker,
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	fn func(ctx context.Context) error,
) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	ctx, run := s.startJobRun(ctx, name)
	s.logJobStart(ctx, run)
	schedMetrics := obsmetrics.Scheduler()
	schedMetrics.IncJobRun(name)

	err := fn(ctx)
	schedMetrics.ObserveJobDuration(name, time.Since(start))
	if err != nil {
		run.IncError()
	}
	s.logJobFinish(ctx, run)
	if err == nil {
		return nil
	}

	isTimeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	schedMetrics.IncJobError(name, err)
	if isTimeout {
		schedMetrics.IncJobTimeout(name)
		s.logger(ctx).Warn("job timed out",
			zap.String("job", name),
			zap.Duration("timeout", s.cfg.JobTimeout),
			zap.Error(err),
		)
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

// RunOnce executes every job a single time. Jobs run independently and their
// errors are joined.
func (s *Scheduler) RunOnce(parent context.Context) error {
	jobs := []struct {
		Name string
		Run  func(context.Context) error
	}{
		{JobExpireGuestQuotes, s.ExpireGuestQuotesJob},
		{JobReleaseInvoiceFlags, s.ReleaseStaleInvoiceFlagsJob},
	}

	var err error
	lockErr := s.locker.WithLock(parent, lockKeyScheduler, s.cfg.RunInterval, func() error {
		for _, job := range jobs {
			err = errors.Join(err, s.runJob(parent, job.Name, job.Run))
		}
		return nil
	})
	if errors.Is(lockErr, ratelimit.ErrLockHeld) {
		s.log.Debug("scheduler pass skipped, another instance holds the lock")
		return nil
	}
	return errors.Join(err, lockErr)
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

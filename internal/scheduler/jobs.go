package scheduler

import (
	"context"

	bookingdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/booking/domain"
	obsmetrics "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/observability/metrics"
	quotedomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/quote/domain"
	"go.uber.org/zap"
)

// ExpireGuestQuotesJob expires unattached draft and pending quotes whose
// validity has lapsed. Booking quotes are left to booking finalization.
func (s *Scheduler) ExpireGuestQuotesJob(ctx context.Context) error {
	run := jobRunFromContext(ctx)
	now := s.clock.Now()

	active := []quotedomain.Status{quotedomain.StatusDraft, quotedomain.StatusPending}
	var ids []int64
	if err := s.db.WithContext(ctx).Raw(
		`SELECT id FROM quotes
		 WHERE booking_id IS NULL
		   AND status IN ?
		   AND expires_at < ?
		 ORDER BY expires_at ASC
		 LIMIT ?`,
		active, now, s.cfg.BatchSize,
	).Scan(&ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	// Conditions are repeated so a quote attached or confirmed since the
	// select is left alone.
	result := s.db.WithContext(ctx).Exec(
		`UPDATE quotes SET status = ?, updated_at = ?
		 WHERE id IN ? AND booking_id IS NULL AND status IN ? AND expires_at < ?`,
		quotedomain.StatusExpired, now, ids, active, now,
	)
	if result.Error != nil {
		return result.Error
	}

	count := int(result.RowsAffected)
	run.AddProcessed(count)
	obsmetrics.Scheduler().AddBatchProcessed(JobExpireGuestQuotes, obsmetrics.SchedulerResourceQuotes, count)
	return nil
}

// ReleaseStaleInvoiceFlagsJob marks abandoned in-progress invoice generations
// as failed so their status reads correctly and a retry is allowed.
func (s *Scheduler) ReleaseStaleInvoiceFlagsJob(ctx context.Context) error {
	run := jobRunFromContext(ctx)
	now := s.clock.Now()
	cutoff := now.Add(-s.cfg.InvoiceStaleFor)

	var ids []int64
	if err := s.db.WithContext(ctx).Raw(
		`SELECT id FROM bookings
		 WHERE invoice_generation_status = ?
		   AND invoice_generation_started_at < ?
		 ORDER BY invoice_generation_started_at ASC
		 LIMIT ?`,
		bookingdomain.GenerationInProgress, cutoff, s.cfg.BatchSize,
	).Scan(&ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	result := s.db.WithContext(ctx).Exec(
		`UPDATE bookings SET invoice_generation_status = ?, updated_at = ?
		 WHERE id IN ? AND invoice_generation_status = ? AND invoice_generation_started_at < ?`,
		bookingdomain.GenerationFailed, now, ids, bookingdomain.GenerationInProgress, cutoff,
	)
	if result.Error != nil {
		return result.Error
	}

	count := int(result.RowsAffected)
	if count > 0 {
		s.logger(ctx).Warn("released stale invoice generation flags",
			zap.Int("count", count),
			zap.Time("cutoff", cutoff),
		)
	}
	run.AddProcessed(count)
	obsmetrics.Scheduler().AddBatchProcessed(JobReleaseInvoiceFlags, obsmetrics.SchedulerResourceBookings, count)
	return nil
}

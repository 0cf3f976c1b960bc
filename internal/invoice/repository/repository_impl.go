package repository

import (
	"context"
	"time"

	bookingdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/booking/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/invoice/domain"
	pkgdb "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/pkg/db"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

const stateQuery = `SELECT id, client_name, client_email, active_quote_id, payment_status,
	invoice_generation_status, invoice_generation_started_at, processor_invoice_id
	FROM bookings WHERE id = ?`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) (*domain.BookingInvoiceState, error) {
	return r.scanState(ctx, db, stateQuery, bookingID)
}

func (r *repo) LockBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) (*domain.BookingInvoiceState, error) {
	return r.scanState(ctx, db, pkgdb.ForUpdate(db, stateQuery), bookingID)
}

func (r *repo) scanState(ctx context.Context, db *gorm.DB, query string, bookingID snowflake.ID) (*domain.BookingInvoiceState, error) {
	var state domain.BookingInvoiceState
	if err := db.WithContext(ctx).Raw(query, bookingID).Scan(&state).Error; err != nil {
		return nil, err
	}
	if state.ID == 0 {
		return nil, nil
	}
	return &state, nil
}

func (r *repo) MarkGenerationStarted(ctx context.Context, db *gorm.DB, bookingID snowflake.ID, now time.Time) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE bookings
		 SET invoice_generation_status = ?, invoice_generation_started_at = ?, updated_at = ?
		 WHERE id = ?`,
		bookingdomain.GenerationInProgress, now, now, bookingID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *repo) MarkGenerationFinished(ctx context.Context, db *gorm.DB, bookingID snowflake.ID, startedAt time.Time, status bookingdomain.GenerationStatus, invoiceID *string, now time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE bookings
		 SET invoice_generation_status = ?, processor_invoice_id = COALESCE(?, processor_invoice_id), updated_at = ?
		 WHERE id = ? AND invoice_generation_started_at = ?`,
		status, invoiceID, now, bookingID, startedAt,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

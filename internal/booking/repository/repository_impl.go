package repository

import (
	"context"
	"time"

	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/booking/domain"
	pkgdb "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/pkg/db"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

const bookingColumns = `id, client_name, client_email, event_type, shoot_date, shoot_hours, location,
	crew_roles, edit_types, active_quote_id, payment_status, paid_at,
	invoice_generation_status, invoice_generation_started_at, processor_invoice_id,
	created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, booking *domain.Booking) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO bookings (`+bookingColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.ID,
		booking.ClientName,
		booking.ClientEmail,
		booking.EventType,
		booking.ShootDate,
		booking.ShootHours,
		booking.Location,
		booking.CrewRoles,
		booking.EditTypes,
		booking.ActiveQuoteID,
		booking.PaymentStatus,
		booking.PaidAt,
		booking.InvoiceGenerationStatus,
		booking.InvoiceGenerationStartedAt,
		booking.ProcessorInvoiceID,
		booking.CreatedAt,
		booking.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Booking, error) {
	return r.findOne(ctx, db, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Booking, error) {
	return r.findOne(ctx, db, pkgdb.ForUpdate(db, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`), id)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, args ...any) (*domain.Booking, error) {
	var booking domain.Booking
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&booking).Error; err != nil {
		return nil, err
	}
	if booking.ID == 0 {
		return nil, nil
	}
	return &booking, nil
}

func (r *repo) UpdateDetails(ctx context.Context, db *gorm.DB, booking *domain.Booking) error {
	return r.exec(ctx, db,
		`UPDATE bookings
		 SET event_type = ?, shoot_date = ?, shoot_hours = ?, location = ?,
		     crew_roles = ?, edit_types = ?, updated_at = ?
		 WHERE id = ?`,
		booking.EventType,
		booking.ShootDate,
		booking.ShootHours,
		booking.Location,
		booking.CrewRoles,
		booking.EditTypes,
		booking.UpdatedAt,
		booking.ID,
	)
}

func (r *repo) SetActiveQuote(ctx context.Context, db *gorm.DB, id, quoteID snowflake.ID, now time.Time) error {
	return r.exec(ctx, db,
		`UPDATE bookings SET active_quote_id = ?, updated_at = ? WHERE id = ?`,
		quoteID, now, id,
	)
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE bookings SET payment_status = ?, paid_at = ?, updated_at = ?
		 WHERE id = ? AND payment_status <> ?`,
		domain.PaymentStatusPaid, now, now, id, domain.PaymentStatusPaid,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) exec(ctx context.Context, db *gorm.DB, query string, args ...any) error {
	result := db.WithContext(ctx).Exec(query, args...)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) InsertCrewMember(ctx context.Context, db *gorm.DB, member *domain.CrewMember) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO crew_members (id, name, role, active, created_at) VALUES (?, ?, ?, ?, ?)`,
		member.ID,
		member.Name,
		member.Role,
		member.Active,
		member.CreatedAt,
	).Error
}

func (r *repo) FindCrewMembers(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]domain.CrewMember, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var members []domain.CrewMember
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, role, active, created_at FROM crew_members WHERE id IN ? ORDER BY id ASC`,
		ids,
	).Scan(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repo) ListAssignments(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) ([]domain.CrewAssignment, error) {
	var items []domain.CrewAssignment
	err := db.WithContext(ctx).Raw(
		`SELECT booking_id, crew_member_id, assigned_at
		 FROM booking_crew_assignments WHERE booking_id = ? ORDER BY crew_member_id ASC`,
		bookingID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ReplaceAssignments(ctx context.Context, db *gorm.DB, bookingID snowflake.ID, memberIDs []snowflake.ID, now time.Time) error {
	if err := db.WithContext(ctx).Exec(
		`DELETE FROM booking_crew_assignments WHERE booking_id = ?`,
		bookingID,
	).Error; err != nil {
		return err
	}
	for _, memberID := range memberIDs {
		if err := db.WithContext(ctx).Exec(
			`INSERT INTO booking_crew_assignments (booking_id, crew_member_id, assigned_at) VALUES (?, ?, ?)`,
			bookingID, memberID, now,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

package repository

import (
	"context"
	"time"

	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/lead/domain"
	pkgdb "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/pkg/db"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

const leadColumns = `id, booking_id, client_email, lead_type, lead_status, assigned_sales_rep, last_activity_at, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertLead(ctx context.Context, db *gorm.DB, lead *domain.SalesLead) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO sales_leads (`+leadColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID,
		lead.BookingID,
		lead.ClientEmail,
		lead.LeadType,
		lead.LeadStatus,
		lead.AssignedSalesRep,
		lead.LastActivityAt,
		lead.CreatedAt,
		lead.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.SalesLead, error) {
	return r.findOne(ctx, db, `SELECT `+leadColumns+` FROM sales_leads WHERE id = ?`, id)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.SalesLead, error) {
	return r.findOne(ctx, db, pkgdb.ForUpdate(db, `SELECT `+leadColumns+` FROM sales_leads WHERE id = ?`), id)
}

func (r *repo) FindByBookingID(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) (*domain.SalesLead, error) {
	return r.findOne(ctx, db,
		`SELECT `+leadColumns+` FROM sales_leads WHERE booking_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		bookingID,
	)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, args ...any) (*domain.SalesLead, error) {
	var lead domain.SalesLead
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&lead).Error; err != nil {
		return nil, err
	}
	if lead.ID == 0 {
		return nil, nil
	}
	return &lead, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string, now time.Time) error {
	return r.exec(ctx, db,
		`UPDATE sales_leads SET lead_status = ?, last_activity_at = ?, updated_at = ? WHERE id = ?`,
		status, now, now, id,
	)
}

func (r *repo) UpdateAssignment(ctx context.Context, db *gorm.DB, id snowflake.ID, repID snowflake.ID, now time.Time) error {
	return r.exec(ctx, db,
		`UPDATE sales_leads SET assigned_sales_rep = ?, last_activity_at = ?, updated_at = ? WHERE id = ?`,
		repID, now, now, id,
	)
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

func (r *repo) InsertRep(ctx context.Context, db *gorm.DB, rep *domain.SalesRep) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO sales_reps (id, name, email, active, sort_order, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rep.ID,
		rep.Name,
		rep.Email,
		rep.Active,
		rep.SortOrder,
		rep.CreatedAt,
	).Error
}

func (r *repo) FindRep(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.SalesRep, error) {
	var rep domain.SalesRep
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, email, active, sort_order, created_at FROM sales_reps WHERE id = ?`,
		id,
	).Scan(&rep).Error
	if err != nil {
		return nil, err
	}
	if rep.ID == 0 {
		return nil, nil
	}
	return &rep, nil
}

// ListActiveReps returns the pool in its stable iteration order.
func (r *repo) ListActiveReps(ctx context.Context, db *gorm.DB) ([]domain.SalesRep, error) {
	var reps []domain.SalesRep
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, email, active, sort_order, created_at
		 FROM sales_reps WHERE active = ? ORDER BY sort_order ASC, id ASC`,
		true,
	).Scan(&reps).Error
	if err != nil {
		return nil, err
	}
	return reps, nil
}

func (r *repo) CountAssignmentsSince(ctx context.Context, db *gorm.DB, since time.Time) (map[snowflake.ID]int64, error) {
	var rows []struct {
		SalesRepID snowflake.ID
		Total      int64
	}
	err := db.WithContext(ctx).Raw(
		`SELECT sales_rep_id, COUNT(*) AS total
		 FROM sales_lead_activities
		 WHERE activity_type = ? AND sales_rep_id IS NOT NULL AND created_at >= ?
		 GROUP BY sales_rep_id`,
		domain.ActivityAssigned,
		since,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[snowflake.ID]int64, len(rows))
	for _, row := range rows {
		counts[row.SalesRepID] = row.Total
	}
	return counts, nil
}

func (r *repo) InsertActivity(ctx context.Context, db *gorm.DB, activity *domain.Activity) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO sales_lead_activities (
			id, lead_id, activity_type, sales_rep_id, actor_type, actor_id, payload, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		activity.ID,
		activity.LeadID,
		activity.ActivityType,
		activity.SalesRepID,
		activity.ActorType,
		activity.ActorID,
		activity.Payload,
		activity.CreatedAt,
	).Error
}

func (r *repo) ListActivities(ctx context.Context, db *gorm.DB, leadID snowflake.ID) ([]domain.Activity, error) {
	var items []domain.Activity
	err := db.WithContext(ctx).Raw(
		`SELECT id, lead_id, activity_type, sales_rep_id, actor_type, actor_id, payload, created_at
		 FROM sales_lead_activities WHERE lead_id = ? ORDER BY created_at ASC, id ASC`,
		leadID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

package repository

import (
	"context"
	"time"

	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/discountcode/domain"
	pkgdb "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/pkg/db"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

const codeColumns = `id, code, discount_type, discount_value, usage_type, max_uses, current_uses,
	lead_id, booking_id, expires_at, active, created_by, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, code *domain.DiscountCode) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO discount_codes (`+codeColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		code.ID,
		code.Code,
		code.DiscountType,
		code.DiscountValue,
		code.UsageType,
		code.MaxUses,
		code.CurrentUses,
		code.LeadID,
		code.BookingID,
		code.ExpiresAt,
		code.Active,
		code.CreatedBy,
		code.CreatedAt,
		code.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.DiscountCode, error) {
	return r.findOne(ctx, db, `SELECT `+codeColumns+` FROM discount_codes WHERE id = ?`, id)
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.DiscountCode, error) {
	return r.findOne(ctx, db, `SELECT `+codeColumns+` FROM discount_codes WHERE code = ?`, code)
}

func (r *repo) FindByCodeForUpdate(ctx context.Context, db *gorm.DB, code string) (*domain.DiscountCode, error) {
	return r.findOne(ctx, db, pkgdb.ForUpdate(db, `SELECT `+codeColumns+` FROM discount_codes WHERE code = ?`), code)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, args ...any) (*domain.DiscountCode, error) {
	var row domain.DiscountCode
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *repo) CodeExists(ctx context.Context, db *gorm.DB, code string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(`SELECT COUNT(1) FROM discount_codes WHERE code = ?`, code).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) IncrementUses(ctx context.Context, db *gorm.DB, id snowflake.ID, limit int, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE discount_codes
		 SET current_uses = current_uses + 1, updated_at = ?
		 WHERE id = ? AND current_uses < ?`,
		now, id, limit,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) Deactivate(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE discount_codes SET active = ?, updated_at = ? WHERE id = ?`,
		false, now, id,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrCodeNotFound
	}
	return nil
}

func (r *repo) InsertUsage(ctx context.Context, db *gorm.DB, usage *domain.Usage) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO discount_code_usage (
			id, discount_code_id, booking_id, quote_id, payer_email,
			original_amount, discount_amount, final_amount, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		usage.ID,
		usage.DiscountCodeID,
		usage.BookingID,
		usage.QuoteID,
		usage.PayerEmail,
		usage.OriginalAmount,
		usage.DiscountAmount,
		usage.FinalAmount,
		usage.CreatedAt,
	).Error
}

func (r *repo) ListUsage(ctx context.Context, db *gorm.DB, codeID snowflake.ID) ([]domain.Usage, error) {
	var rows []domain.Usage
	err := db.WithContext(ctx).Raw(
		`SELECT id, discount_code_id, booking_id, quote_id, payer_email,
			original_amount, discount_amount, final_amount, created_at
		 FROM discount_code_usage WHERE discount_code_id = ?
		 ORDER BY created_at ASC, id ASC`,
		codeID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

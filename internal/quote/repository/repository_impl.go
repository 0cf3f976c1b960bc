package repository

import (
	"context"
	"time"

	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/quote/domain"
	pkgdb "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/pkg/db"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

const quoteColumns = `id, booking_id, pricing_mode, shoot_hours, subtotal, discount_percent, discount_amount,
	discount_code_id, code_discount_amount, price_after_discount, margin_percent, margin_amount, total,
	status, expires_at, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, quote *domain.Quote, lines []domain.LineItem) error {
	err := db.WithContext(ctx).Exec(
		`INSERT INTO quotes (`+quoteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		quote.ID,
		quote.BookingID,
		quote.PricingMode,
		quote.ShootHours,
		quote.Subtotal,
		quote.DiscountPercent,
		quote.DiscountAmount,
		quote.DiscountCodeID,
		quote.CodeDiscountAmount,
		quote.PriceAfterDiscount,
		quote.MarginPercent,
		quote.MarginAmount,
		quote.Total,
		quote.Status,
		quote.ExpiresAt,
		quote.CreatedAt,
		quote.UpdatedAt,
	).Error
	if err != nil {
		return err
	}

	for _, line := range lines {
		err := db.WithContext(ctx).Exec(
			`INSERT INTO quote_line_items (
				id, quote_id, catalog_item_id, item_name, rate_type, quantity, unit_price, line_total, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			line.ID,
			line.QuoteID,
			line.CatalogItemID,
			line.ItemName,
			line.RateType,
			line.Quantity,
			line.UnitPrice,
			line.LineTotal,
			line.CreatedAt,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Quote, error) {
	return r.find(ctx, db, id, false)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Quote, error) {
	return r.find(ctx, db, id, true)
}

func (r *repo) find(ctx context.Context, db *gorm.DB, id snowflake.ID, forUpdate bool) (*domain.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = ?`
	if forUpdate {
		query = pkgdb.ForUpdate(db, query)
	}

	var quote domain.Quote
	if err := db.WithContext(ctx).Raw(query, id).Scan(&quote).Error; err != nil {
		return nil, err
	}
	if quote.ID == 0 {
		return nil, nil
	}
	return &quote, nil
}

func (r *repo) ListLines(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) ([]domain.LineItem, error) {
	var lines []domain.LineItem
	err := db.WithContext(ctx).Raw(
		`SELECT id, quote_id, catalog_item_id, item_name, rate_type, quantity, unit_price, line_total, created_at
		 FROM quote_line_items WHERE quote_id = ? ORDER BY id ASC`,
		quoteID,
	).Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repo) ListByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := db.WithContext(ctx).Raw(
		`SELECT `+quoteColumns+` FROM quotes WHERE booking_id = ? ORDER BY created_at DESC, id DESC`,
		bookingID,
	).Scan(&quotes).Error
	if err != nil {
		return nil, err
	}
	return quotes, nil
}

func (r *repo) ExpireActiveForBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE quotes SET status = ?, updated_at = ?
		 WHERE booking_id = ? AND status IN ?`,
		domain.StatusExpired,
		now,
		bookingID,
		domain.ActiveStatuses,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) UpdatePricing(ctx context.Context, db *gorm.DB, quote *domain.Quote) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE quotes SET
			discount_code_id = ?, code_discount_amount = ?, price_after_discount = ?,
			margin_amount = ?, total = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		quote.DiscountCodeID,
		quote.CodeDiscountAmount,
		quote.PriceAfterDiscount,
		quote.MarginAmount,
		quote.Total,
		quote.Status,
		quote.UpdatedAt,
		quote.ID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

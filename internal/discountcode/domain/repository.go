package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, code *DiscountCode) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*DiscountCode, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*DiscountCode, error)
	FindByCodeForUpdate(ctx context.Context, db *gorm.DB, code string) (*DiscountCode, error)
	CodeExists(ctx context.Context, db *gorm.DB, code string) (bool, error)
	// IncrementUses bumps current_uses by one only while it is below limit.
	IncrementUses(ctx context.Context, db *gorm.DB, id snowflake.ID, limit int, now time.Time) (int64, error)
	Deactivate(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error

	InsertUsage(ctx context.Context, db *gorm.DB, usage *Usage) error
	ListUsage(ctx context.Context, db *gorm.DB, codeID snowflake.ID) ([]Usage, error)
}

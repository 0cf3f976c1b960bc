package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, booking *Booking) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Booking, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Booking, error)
	UpdateDetails(ctx context.Context, db *gorm.DB, booking *Booking) error
	SetActiveQuote(ctx context.Context, db *gorm.DB, id, quoteID snowflake.ID, now time.Time) error
	// MarkPaid flips payment_status once; it reports false when already paid.
	MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) (bool, error)

	InsertCrewMember(ctx context.Context, db *gorm.DB, member *CrewMember) error
	FindCrewMembers(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]CrewMember, error)
	ListAssignments(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) ([]CrewAssignment, error)
	ReplaceAssignments(ctx context.Context, db *gorm.DB, bookingID snowflake.ID, memberIDs []snowflake.ID, now time.Time) error
}

package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertLead(ctx context.Context, db *gorm.DB, lead *SalesLead) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*SalesLead, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*SalesLead, error)
	FindByBookingID(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) (*SalesLead, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string, now time.Time) error
	UpdateAssignment(ctx context.Context, db *gorm.DB, id snowflake.ID, repID snowflake.ID, now time.Time) error

	InsertRep(ctx context.Context, db *gorm.DB, rep *SalesRep) error
	FindRep(ctx context.Context, db *gorm.DB, id snowflake.ID) (*SalesRep, error)
	ListActiveReps(ctx context.Context, db *gorm.DB) ([]SalesRep, error)
	CountAssignmentsSince(ctx context.Context, db *gorm.DB, since time.Time) (map[snowflake.ID]int64, error)

	InsertActivity(ctx context.Context, db *gorm.DB, activity *Activity) error
	ListActivities(ctx context.Context, db *gorm.DB, leadID snowflake.ID) ([]Activity, error)
}

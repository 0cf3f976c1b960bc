package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Service interface {
	CreateLead(ctx context.Context, req CreateLeadRequest) (*SalesLead, error)
	GetLead(ctx context.Context, id snowflake.ID) (*SalesLead, error)
	CreateRep(ctx context.Context, req CreateRepRequest) (*SalesRep, error)
	UpdateStatus(ctx context.Context, leadID snowflake.ID, status string, actor Actor) (*SalesLead, error)
	AutoAssignLead(ctx context.Context, leadID snowflake.ID) (*Assignment, error)
	ManuallyAssignLead(ctx context.Context, leadID, repID snowflake.ID, actor Actor) (*Assignment, error)
	ListActivities(ctx context.Context, leadID snowflake.ID) ([]Activity, error)

	// TransitionInTx moves a lead to status and appends an activity inside tx.
	TransitionInTx(ctx context.Context, tx *gorm.DB, leadID snowflake.ID, status string, activityType string, actor Actor, payload map[string]any) error
}

type CreateLeadRequest struct {
	BookingID   *snowflake.ID `json:"booking_id"`
	ClientEmail string        `json:"client_email"`
	LeadType    string        `json:"lead_type"`
}

type CreateRepRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	SortOrder int    `json:"sort_order"`
}

var (
	ErrNotFound           = errors.New("lead_not_found")
	ErrRepNotFound        = errors.New("sales_rep_not_found")
	ErrRepInactive        = errors.New("sales_rep_inactive")
	ErrNoActiveReps       = errors.New("no_active_sales_reps")
	ErrAutoAssignDisabled = errors.New("auto_assign_disabled")
	ErrAssignmentBusy     = errors.New("assignment_in_progress")
	ErrLeadClosed         = errors.New("lead_closed")
	ErrInvalidStatus      = errors.New("invalid_lead_status")
	ErrInvalidLeadType    = errors.New("invalid_lead_type")
	ErrInvalidRep         = errors.New("invalid_sales_rep")
	ErrDuplicateRep       = errors.New("duplicate_sales_rep")
)

package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Known funnel milestones. LeadStatus is free-form; only terminal states are enforced.
const (
	StatusNew             = "new"
	StatusContacted       = "contacted"
	StatusQuoteSent       = "quote_sent"
	StatusDiscountApplied = "discount_applied"
	StatusPaymentLinkSent = "payment_link_sent"
	StatusBooked          = "booked"
	StatusAbandoned       = "abandoned"
)

func IsTerminal(status string) bool {
	return status == StatusBooked || status == StatusAbandoned
}

const (
	ActivityCreated         = "created"
	ActivityStatusChanged   = "status_changed"
	ActivityAssigned        = "assigned"
	ActivityDiscountApplied = "discount_applied"
)

const (
	AssignmentModeAuto   = "auto"
	AssignmentModeManual = "manual"
)

type SalesLead struct {
	ID               snowflake.ID  `json:"id" gorm:"primaryKey"`
	BookingID        *snowflake.ID `json:"booking_id,omitempty" gorm:"index"`
	ClientEmail      string        `json:"client_email" gorm:"type:text"`
	LeadType         string        `json:"lead_type" gorm:"type:text;not null"`
	LeadStatus       string        `json:"lead_status" gorm:"type:text;not null"`
	AssignedSalesRep *snowflake.ID `json:"assigned_sales_rep,omitempty" gorm:"index"`
	LastActivityAt   time.Time     `json:"last_activity_at" gorm:"not null"`
	CreatedAt        time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt        time.Time     `json:"updated_at" gorm:"not null"`
}

func (SalesLead) TableName() string { return "sales_leads" }

type SalesRep struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Email     string       `json:"email" gorm:"type:text;not null;uniqueIndex"`
	Active    bool         `json:"active" gorm:"not null;default:true"`
	SortOrder int          `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
}

func (SalesRep) TableName() string { return "sales_reps" }

// Activity is an append-only record of a lead-affecting event.
type Activity struct {
	ID           snowflake.ID      `json:"id" gorm:"primaryKey"`
	LeadID       snowflake.ID      `json:"lead_id" gorm:"not null;index"`
	ActivityType string            `json:"activity_type" gorm:"type:text;not null;index:idx_lead_activity_window"`
	SalesRepID   *snowflake.ID     `json:"sales_rep_id,omitempty"`
	ActorType    string            `json:"actor_type" gorm:"type:text;not null"`
	ActorID      *string           `json:"actor_id,omitempty" gorm:"type:text"`
	Payload      datatypes.JSONMap `json:"payload" gorm:"type:jsonb"`
	CreatedAt    time.Time         `json:"created_at" gorm:"not null;index:idx_lead_activity_window"`
}

func (Activity) TableName() string { return "sales_lead_activities" }

// Actor identifies who caused a change. Empty Type means the system.
type Actor struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func SystemActor() Actor {
	return Actor{Type: "system"}
}

func (a Actor) Normalize() Actor {
	if a.Type == "" {
		return SystemActor()
	}
	return a
}

type Assignment struct {
	LeadID  snowflake.ID `json:"lead_id"`
	RepID   snowflake.ID `json:"rep_id"`
	RepName string       `json:"rep_name"`
}

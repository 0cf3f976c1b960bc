package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// GenerationStatus tracks processor invoice creation for a booking.
type GenerationStatus string

const (
	GenerationNotStarted GenerationStatus = "not_started"
	GenerationInProgress GenerationStatus = "in_progress"
	GenerationCompleted  GenerationStatus = "completed"
	GenerationFailed     GenerationStatus = "failed"
)

type Booking struct {
	ID                         snowflake.ID                       `json:"id" gorm:"primaryKey"`
	ClientName                 string                             `json:"client_name" gorm:"type:text"`
	ClientEmail                string                             `json:"client_email" gorm:"type:text;index"`
	EventType                  string                             `json:"event_type" gorm:"type:text"`
	ShootDate                  *time.Time                         `json:"shoot_date,omitempty"`
	ShootHours                 decimal.Decimal                    `json:"shoot_hours" gorm:"type:numeric(8,2);not null;default:0"`
	Location                   string                             `json:"location" gorm:"type:text"`
	CrewRoles                  datatypes.JSONType[map[string]int] `json:"crew_roles" gorm:"type:jsonb"`
	EditTypes                  datatypes.JSONSlice[string]        `json:"edit_types" gorm:"type:jsonb"`
	ActiveQuoteID              *snowflake.ID                      `json:"active_quote_id,omitempty"`
	PaymentStatus              PaymentStatus                      `json:"payment_status" gorm:"type:text;not null"`
	PaidAt                     *time.Time                         `json:"paid_at,omitempty"`
	InvoiceGenerationStatus    GenerationStatus                   `json:"invoice_generation_status" gorm:"type:text;not null"`
	InvoiceGenerationStartedAt *time.Time                         `json:"invoice_generation_started_at,omitempty"`
	ProcessorInvoiceID         *string                            `json:"processor_invoice_id,omitempty" gorm:"type:text"`
	CreatedAt                  time.Time                          `json:"created_at" gorm:"not null"`
	UpdatedAt                  time.Time                          `json:"updated_at" gorm:"not null"`
}

func (Booking) TableName() string { return "bookings" }

func (b Booking) Paid() bool {
	return b.PaymentStatus == PaymentStatusPaid
}

type CrewMember struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Role      string       `json:"role" gorm:"type:text;not null"`
	Active    bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
}

func (CrewMember) TableName() string { return "crew_members" }

type CrewAssignment struct {
	BookingID    snowflake.ID `json:"booking_id" gorm:"primaryKey"`
	CrewMemberID snowflake.ID `json:"crew_member_id" gorm:"primaryKey"`
	AssignedAt   time.Time    `json:"assigned_at" gorm:"not null"`
}

func (CrewAssignment) TableName() string { return "booking_crew_assignments" }

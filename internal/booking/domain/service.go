package domain

import (
	"context"
	"errors"
	"time"

	quotedomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/quote/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*Booking, error)
	GetBooking(ctx context.Context, id snowflake.ID) (*Booking, error)
	MarkPaid(ctx context.Context, id snowflake.ID) (*Booking, error)

	CreateCrewMember(ctx context.Context, req CreateCrewMemberRequest) (*CrewMember, error)
	ListAssignments(ctx context.Context, bookingID snowflake.ID) ([]CrewAssignment, error)

	// FinalizeBooking writes the booking details, crew and a fresh quote in
	// one transaction. Any failure leaves the previous state untouched.
	FinalizeBooking(ctx context.Context, bookingID snowflake.ID, req FinalizeRequest) (*FinalizeResult, error)
}

type CreateBookingRequest struct {
	ClientName  string           `json:"client_name"`
	ClientEmail string           `json:"client_email"`
	EventType   string           `json:"event_type"`
	ShootDate   *time.Time       `json:"shoot_date,omitempty"`
	ShootHours  *decimal.Decimal `json:"shoot_hours,omitempty"`
	Location    string           `json:"location"`
}

type CreateCrewMemberRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// FinalizeRequest carries the client's final selections. CrewRoles maps a
// role service key to headcount; EditTypes are edit service keys.
type FinalizeRequest struct {
	EventType       string           `json:"event_type"`
	ShootDate       *time.Time       `json:"shoot_date,omitempty"`
	ShootHours      decimal.Decimal  `json:"shoot_hours"`
	Location        string           `json:"location"`
	CrewRoles       map[string]int   `json:"crew_roles"`
	EditTypes       []string         `json:"edit_types"`
	SelectedCrewIDs []snowflake.ID   `json:"selected_crew_ids"`
	MarginPercent   *decimal.Decimal `json:"margin_percent,omitempty"`
}

type FinalizeResult struct {
	QuoteID snowflake.ID               `json:"quote_id"`
	Booking Booking                    `json:"booking"`
	Quote   quotedomain.QuoteWithLines `json:"quote"`
	// UnmappedServices lists requested roles or edit types with no active catalog item.
	UnmappedServices []string `json:"unmapped_services,omitempty"`
}

var (
	ErrNotFound           = errors.New("booking_not_found")
	ErrInvalidName        = errors.New("invalid_client_name")
	ErrInvalidEmail       = errors.New("invalid_client_email")
	ErrInvalidHours       = errors.New("invalid_shoot_hours")
	ErrInvalidCrewRoles   = errors.New("invalid_crew_roles")
	ErrInvalidCrewMember  = errors.New("invalid_crew_member")
	ErrInvalidCrewRequest = errors.New("invalid_crew_member_request")
	ErrAlreadyPaid        = errors.New("booking_already_paid")
)

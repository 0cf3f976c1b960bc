package domain

import (
	"context"
	"errors"
	"time"

	bookingdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/booking/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

const DefaultCurrency = "usd"

// BookingInvoiceState is the booking data the gateway reads and flags.
type BookingInvoiceState struct {
	ID                         snowflake.ID
	ClientName                 string
	ClientEmail                string
	ActiveQuoteID              *snowflake.ID
	PaymentStatus              bookingdomain.PaymentStatus
	InvoiceGenerationStatus    bookingdomain.GenerationStatus
	InvoiceGenerationStartedAt *time.Time
	ProcessorInvoiceID         *string
}

// InProgress reports whether another generation holds the flag at now.
func (s BookingInvoiceState) InProgress(now time.Time, staleAfter time.Duration) bool {
	if s.InvoiceGenerationStatus != bookingdomain.GenerationInProgress {
		return false
	}
	if s.InvoiceGenerationStartedAt == nil {
		return false
	}
	return now.Sub(*s.InvoiceGenerationStartedAt) < staleAfter
}

type Repository interface {
	FindBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) (*BookingInvoiceState, error)
	LockBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) (*BookingInvoiceState, error)
	MarkGenerationStarted(ctx context.Context, db *gorm.DB, bookingID snowflake.ID, now time.Time) error
	// MarkGenerationFinished only touches a flag still stamped with startedAt
	// and reports false when a later run has taken it over.
	MarkGenerationFinished(ctx context.Context, db *gorm.DB, bookingID snowflake.ID, startedAt time.Time, status bookingdomain.GenerationStatus, invoiceID *string, now time.Time) (bool, error)
}

type Result struct {
	BookingID snowflake.ID `json:"booking_id"`
	InvoiceID string       `json:"invoice_id"`
	Status    string       `json:"status"`
	HostedURL string       `json:"hosted_url,omitempty"`
	Reused    bool         `json:"reused"`
}

type GenerationState struct {
	BookingID snowflake.ID                   `json:"booking_id"`
	Status    bookingdomain.GenerationStatus `json:"status"`
	StartedAt *time.Time                     `json:"started_at,omitempty"`
	InvoiceID *string                        `json:"invoice_id,omitempty"`
}

type Service interface {
	GenerateInvoice(ctx context.Context, bookingID snowflake.ID) (*Result, error)
	RecordPaidInvoice(ctx context.Context, bookingID snowflake.ID) (*Result, error)
	GetGenerationStatus(ctx context.Context, bookingID snowflake.ID) (*GenerationState, error)
}

var (
	ErrBookingNotFound        = errors.New("booking_not_found")
	ErrGenerationInProgress   = errors.New("invoice_generation_in_progress")
	ErrNoActiveQuote          = errors.New("no_active_quote")
	ErrMissingEmail           = errors.New("missing_client_email")
	ErrProcessorFailure       = errors.New("payment_processor_failure")
	ErrProcessorNotConfigured = errors.New("payment_processor_not_configured")
	ErrInvoiceVoided          = errors.New("invoice_voided")
)

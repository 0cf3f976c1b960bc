package domain

//go:generate mockgen -destination=../mock/processor_mock.go -package=mock . Processor

import "context"

// Processor invoice states.
const (
	InvoiceStatusDraft         = "draft"
	InvoiceStatusOpen          = "open"
	InvoiceStatusPaid          = "paid"
	InvoiceStatusVoid          = "void"
	InvoiceStatusUncollectible = "uncollectible"
)

// MetadataBookingID is the metadata key linking a processor object to a booking.
const MetadataBookingID = "booking_id"

type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type InvoiceLine struct {
	Description string `json:"description"`
	AmountCents int64  `json:"amount"`
}

type Invoice struct {
	ID         string            `json:"id"`
	CustomerID string            `json:"customer"`
	Status     string            `json:"status"`
	Metadata   map[string]string `json:"metadata"`
	TotalCents int64             `json:"total"`
	HostedURL  string            `json:"hosted_invoice_url"`
	Lines      []InvoiceLine     `json:"-"`
}

type InvoiceItem struct {
	ID          string `json:"id"`
	InvoiceID   string `json:"invoice"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount"`
}

type CustomerParams struct {
	Email     string
	Name      string
	BookingID string
}

type InvoiceParams struct {
	CustomerID   string
	BookingID    string
	DaysUntilDue int
}

type InvoiceItemParams struct {
	CustomerID  string
	InvoiceID   string
	BookingID   string
	Description string
	AmountCents int64
	Currency    string
}

// Processor is the external payment processor. Mutating calls carry an
// idempotency key so a retried call has no duplicated effect.
type Processor interface {
	SearchCustomersByEmail(ctx context.Context, email string) ([]Customer, error)
	CreateCustomer(ctx context.Context, params CustomerParams, idempotencyKey string) (*Customer, error)
	ListInvoices(ctx context.Context, customerID string) ([]Invoice, error)
	CreateInvoice(ctx context.Context, params InvoiceParams, idempotencyKey string) (*Invoice, error)
	CreateInvoiceItem(ctx context.Context, params InvoiceItemParams, idempotencyKey string) (*InvoiceItem, error)
	FinalizeInvoice(ctx context.Context, invoiceID string, idempotencyKey string) (*Invoice, error)
	PayInvoiceOutOfBand(ctx context.Context, invoiceID string, idempotencyKey string) (*Invoice, error)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/config"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/invoice/domain"
)

const (
	defaultStripeAPIBase = "https://api.stripe.com"
	stripePageSize       = 100
)

// StripeError is a decoded Stripe API error body.
type StripeError struct {
	StatusCode int
	Type       string `json:"type"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *StripeError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "stripe_request_failed"
	}
	if e.Code != "" {
		return fmt.Sprintf("stripe %d %s: %s", e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("stripe %d: %s", e.StatusCode, msg)
}

type stripeErrorResponse struct {
	Error StripeError `json:"error"`
}

type stripeList[T any] struct {
	Data    []T  `json:"data"`
	HasMore bool `json:"has_more"`
}

type stripeLine struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

type stripeInvoice struct {
	ID        string                 `json:"id"`
	Customer  string                 `json:"customer"`
	Status    string                 `json:"status"`
	Metadata  map[string]string      `json:"metadata"`
	Total     int64                  `json:"total"`
	HostedURL string                 `json:"hosted_invoice_url"`
	Lines     stripeList[stripeLine] `json:"lines"`
}

func (i stripeInvoice) toDomain() domain.Invoice {
	lines := make([]domain.InvoiceLine, 0, len(i.Lines.Data))
	for _, line := range i.Lines.Data {
		lines = append(lines, domain.InvoiceLine{Description: line.Description, AmountCents: line.Amount})
	}
	return domain.Invoice{
		ID:         i.ID,
		CustomerID: i.Customer,
		Status:     i.Status,
		Metadata:   i.Metadata,
		TotalCents: i.Total,
		HostedURL:  i.HostedURL,
		Lines:      lines,
	}
}

// listAll follows has_more with starting_after until the list is exhausted.
func listAll[T any](ctx context.Context, c *stripeClient, path string, query url.Values, cursor func(T) string) ([]T, error) {
	query.Set("limit", strconv.Itoa(stripePageSize))
	var all []T
	for {
		var page stripeList[T]
		if err := c.doRequest(ctx, http.MethodGet, path+"?"+query.Encode(), nil, "", &page); err != nil {
			return nil, err
		}
		all = append(all, page.Data...)
		if !page.HasMore || len(page.Data) == 0 {
			return all, nil
		}
		query.Set("starting_after", cursor(page.Data[len(page.Data)-1]))
	}
}

type stripeClient struct {
	apiKey    string
	accountID string
	baseURL   string
	client    *http.Client
}

// NewStripeProcessor returns a form-encoded Stripe REST client.
func NewStripeProcessor(cfg config.InvoiceConfig) domain.Processor {
	base := strings.TrimRight(strings.TrimSpace(cfg.StripeAPIBase), "/")
	if base == "" {
		base = defaultStripeAPIBase
	}
	return &stripeClient{
		apiKey:    strings.TrimSpace(cfg.StripeSecretKey),
		accountID: strings.TrimSpace(cfg.StripeAccountID),
		baseURL:   base,
		client:    &http.Client{Timeout: 12 * time.Second},
	}
}

func (c *stripeClient) SearchCustomersByEmail(ctx context.Context, email string) ([]domain.Customer, error) {
	query := url.Values{}
	query.Set("email", email)
	return listAll(ctx, c, "/v1/customers", query, func(cus domain.Customer) string { return cus.ID })
}

func (c *stripeClient) CreateCustomer(ctx context.Context, params domain.CustomerParams, idempotencyKey string) (*domain.Customer, error) {
	values := url.Values{}
	values.Set("email", params.Email)
	if params.Name != "" {
		values.Set("name", params.Name)
	}
	values.Set("metadata["+domain.MetadataBookingID+"]", params.BookingID)

	var out domain.Customer
	if err := c.doRequest(ctx, http.MethodPost, "/v1/customers", values, idempotencyKey, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *stripeClient) ListInvoices(ctx context.Context, customerID string) ([]domain.Invoice, error) {
	query := url.Values{}
	query.Set("customer", customerID)
	raw, err := listAll(ctx, c, "/v1/invoices", query, func(inv stripeInvoice) string { return inv.ID })
	if err != nil {
		return nil, err
	}

	invoices := make([]domain.Invoice, 0, len(raw))
	for _, inv := range raw {
		// Embedded lines are truncated; drafts need all of them to find what is missing.
		if inv.Lines.HasMore {
			lines, err := listAll(ctx, c, "/v1/invoices/"+url.PathEscape(inv.ID)+"/lines", url.Values{},
				func(line stripeLine) string { return line.ID })
			if err != nil {
				return nil, err
			}
			inv.Lines = stripeList[stripeLine]{Data: lines}
		}
		invoices = append(invoices, inv.toDomain())
	}
	return invoices, nil
}

func (c *stripeClient) CreateInvoice(ctx context.Context, params domain.InvoiceParams, idempotencyKey string) (*domain.Invoice, error) {
	values := url.Values{}
	values.Set("customer", params.CustomerID)
	values.Set("collection_method", "send_invoice")
	values.Set("days_until_due", strconv.Itoa(params.DaysUntilDue))
	values.Set("auto_advance", "false")
	values.Set("pending_invoice_items_behavior", "exclude")
	values.Set("metadata["+domain.MetadataBookingID+"]", params.BookingID)

	return c.invoiceRequest(ctx, http.MethodPost, "/v1/invoices", values, idempotencyKey)
}

func (c *stripeClient) CreateInvoiceItem(ctx context.Context, params domain.InvoiceItemParams, idempotencyKey string) (*domain.InvoiceItem, error) {
	values := url.Values{}
	values.Set("customer", params.CustomerID)
	values.Set("invoice", params.InvoiceID)
	values.Set("amount", strconv.FormatInt(params.AmountCents, 10))
	values.Set("currency", strings.ToLower(params.Currency))
	values.Set("description", params.Description)
	values.Set("metadata["+domain.MetadataBookingID+"]", params.BookingID)

	var out domain.InvoiceItem
	if err := c.doRequest(ctx, http.MethodPost, "/v1/invoiceitems", values, idempotencyKey, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *stripeClient) FinalizeInvoice(ctx context.Context, invoiceID string, idempotencyKey string) (*domain.Invoice, error) {
	return c.invoiceRequest(ctx, http.MethodPost, "/v1/invoices/"+url.PathEscape(invoiceID)+"/finalize", url.Values{}, idempotencyKey)
}

func (c *stripeClient) PayInvoiceOutOfBand(ctx context.Context, invoiceID string, idempotencyKey string) (*domain.Invoice, error) {
	values := url.Values{}
	values.Set("paid_out_of_band", "true")
	return c.invoiceRequest(ctx, http.MethodPost, "/v1/invoices/"+url.PathEscape(invoiceID)+"/pay", values, idempotencyKey)
}

func (c *stripeClient) invoiceRequest(ctx context.Context, method, path string, values url.Values, idempotencyKey string) (*domain.Invoice, error) {
	var out stripeInvoice
	if err := c.doRequest(ctx, method, path, values, idempotencyKey, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, errors.New("stripe_response_invalid")
	}
	inv := out.toDomain()
	return &inv, nil
}

func (c *stripeClient) doRequest(
	ctx context.Context,
	method string,
	path string,
	values url.Values,
	idempotencyKey string,
	out any,
) error {
	if c.apiKey == "" {
		return domain.ErrProcessorNotConfigured
	}

	var body io.Reader
	if values != nil {
		body = strings.NewReader(values.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if values != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	if c.accountID != "" {
		req.Header.Set("Stripe-Account", c.accountID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var stripeErr stripeErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&stripeErr); err != nil {
			return &StripeError{StatusCode: resp.StatusCode}
		}
		stripeErr.Error.StatusCode = resp.StatusCode
		return &stripeErr.Error
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

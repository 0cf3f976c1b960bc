package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/config"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripeCreateInvoiceItemSendsFormAndKey(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/invoiceitems", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		assert.Equal(t, "booking:1:invoice_item:abc", r.Header.Get("Idempotency-Key"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		got, _ = url.ParseQuery(string(body))
		_, _ = w.Write([]byte(`{"id":"ii_1","invoice":"in_1","description":"Videographer x1","amount":55000}`))
	}))
	defer srv.Close()

	client := NewStripeProcessor(config.InvoiceConfig{StripeSecretKey: "sk_test_123", StripeAPIBase: srv.URL})
	item, err := client.CreateInvoiceItem(context.Background(), domain.InvoiceItemParams{
		CustomerID:  "cus_1",
		InvoiceID:   "in_1",
		BookingID:   "1",
		Description: "Videographer x1",
		AmountCents: 55000,
		Currency:    "USD",
	}, "booking:1:invoice_item:abc")
	require.NoError(t, err)
	assert.Equal(t, "ii_1", item.ID)

	assert.Equal(t, "55000", got.Get("amount"))
	assert.Equal(t, "usd", got.Get("currency"))
	assert.Equal(t, "in_1", got.Get("invoice"))
	assert.Equal(t, "1", got.Get("metadata[booking_id]"))
}

func TestStripeListInvoicesDecodesLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "cus_9", r.URL.Query().Get("customer"))
		assert.Empty(t, r.Header.Get("Idempotency-Key"))
		_, _ = w.Write([]byte(`{"data":[{"id":"in_7","customer":"cus_9","status":"draft","total":1000,
			"metadata":{"booking_id":"55"},"hosted_invoice_url":"https://pay.example/in_7",
			"lines":{"data":[{"description":"Editor x1","amount":1000}]}}],"has_more":false}`))
	}))
	defer srv.Close()

	client := NewStripeProcessor(config.InvoiceConfig{StripeSecretKey: "sk", StripeAPIBase: srv.URL + "/"})
	invoices, err := client.ListInvoices(context.Background(), "cus_9")
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "55", invoices[0].Metadata[domain.MetadataBookingID])
	assert.Equal(t, domain.InvoiceStatusDraft, invoices[0].Status)
	require.Len(t, invoices[0].Lines, 1)
	assert.EqualValues(t, 1000, invoices[0].Lines[0].AmountCents)
}

func TestStripeErrorIsTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such customer"}}`))
	}))
	defer srv.Close()

	client := NewStripeProcessor(config.InvoiceConfig{StripeSecretKey: "sk", StripeAPIBase: srv.URL})
	_, err := client.FinalizeInvoice(context.Background(), "in_1", "key")
	require.Error(t, err)

	var stripeErr *StripeError
	require.True(t, errors.As(err, &stripeErr))
	assert.Equal(t, http.StatusPaymentRequired, stripeErr.StatusCode)
	assert.Equal(t, "resource_missing", stripeErr.Code)
	assert.Contains(t, err.Error(), "No such customer")
}

func TestStripeRequiresKey(t *testing.T) {
	client := NewStripeProcessor(config.InvoiceConfig{})
	_, err := client.SearchCustomersByEmail(context.Background(), "a@example.com")
	require.ErrorIs(t, err, domain.ErrProcessorNotConfigured)
}

func TestStripeListInvoicesFollowsPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		switch {
		case r.URL.Path == "/v1/invoices" && r.URL.Query().Get("starting_after") == "":
			_, _ = w.Write([]byte(`{"data":[{"id":"in_1","status":"paid","metadata":{"booking_id":"1"}}],"has_more":true}`))
		case r.URL.Path == "/v1/invoices" && r.URL.Query().Get("starting_after") == "in_1":
			_, _ = w.Write([]byte(`{"data":[{"id":"in_2","status":"draft","metadata":{"booking_id":"55"},
				"lines":{"data":[{"id":"il_1","description":"Editor x1","amount":1000}],"has_more":true}}],"has_more":false}`))
		case r.URL.Path == "/v1/invoices/in_2/lines" && r.URL.Query().Get("starting_after") == "":
			_, _ = w.Write([]byte(`{"data":[{"id":"il_1","description":"Editor x1","amount":1000}],"has_more":true}`))
		case r.URL.Path == "/v1/invoices/in_2/lines" && r.URL.Query().Get("starting_after") == "il_1":
			_, _ = w.Write([]byte(`{"data":[{"id":"il_2","description":"Service fee","amount":250}],"has_more":false}`))
		default:
			t.Errorf("unexpected request %s", r.URL.String())
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewStripeProcessor(config.InvoiceConfig{StripeSecretKey: "sk", StripeAPIBase: srv.URL})
	invoices, err := client.ListInvoices(context.Background(), "cus_9")
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	assert.Equal(t, "in_2", invoices[1].ID)
	assert.Equal(t, []domain.InvoiceLine{
		{Description: "Editor x1", AmountCents: 1000},
		{Description: "Service fee", AmountCents: 250},
	}, invoices[1].Lines)
}

func TestStripeSearchCustomersFollowsPages(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "a@example.com", r.URL.Query().Get("email"))
		if r.URL.Query().Get("starting_after") == "" {
			_, _ = w.Write([]byte(`{"data":[{"id":"cus_1","email":"a@example.com"}],"has_more":true}`))
			return
		}
		assert.Equal(t, "cus_1", r.URL.Query().Get("starting_after"))
		_, _ = w.Write([]byte(`{"data":[{"id":"cus_2","email":"a@example.com"}],"has_more":false}`))
	}))
	defer srv.Close()

	client := NewStripeProcessor(config.InvoiceConfig{StripeSecretKey: "sk", StripeAPIBase: srv.URL})
	customers, err := client.SearchCustomersByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "cus_2", customers[1].ID)
	assert.Equal(t, 2, calls)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	auditdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/audit/domain"
	bookingdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/booking/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/clock"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/config"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/invoice/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/observability/metrics"
	quotedomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/quote/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/pkg/money"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	pathGenerate   = "generate"
	pathRecordPaid = "record_paid"

	defaultStaleAfter   = 10 * time.Minute
	defaultDaysUntilDue = 7
	listConcurrency     = 4
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Cfg       config.InvoiceConfig
	Repo      domain.Repository
	QuoteRepo quotedomain.Repository
	Processor domain.Processor
	AuditSvc  auditdomain.Service `optional:"true"`
	Metrics   *metrics.Metrics    `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	cfg       config.InvoiceConfig
	repo      domain.Repository
	quoteRepo quotedomain.Repository
	processor domain.Processor
	auditSvc  auditdomain.Service
	metrics   *metrics.Metrics
	txm       *metrics.TransactionMetrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("invoice.gateway"),
		clock:     p.Clock,
		cfg:       p.Cfg,
		repo:      p.Repo,
		quoteRepo: p.QuoteRepo,
		processor: p.Processor,
		auditSvc:  p.AuditSvc,
		metrics:   p.Metrics,
		txm:       metrics.Transactions(),
	}
}

// GenerateInvoice creates, completes or reuses the processor invoice for a
// booking's active quote. Concurrent calls for one booking are rejected with
// ErrGenerationInProgress until the first finishes or goes stale.
func (s *Service) GenerateInvoice(ctx context.Context, bookingID snowflake.ID) (result *domain.Result, err error) {
	start := time.Now()
	defer func() {
		s.txm.ObserveOperation(metrics.OperationGenerateInvoice, start, err)
		s.metrics.RecordInvoiceGeneration(ctx, pathGenerate, generationOutcome(result, err))
	}()
	return s.run(ctx, bookingID, false)
}

// RecordPaidInvoice produces a processor invoice marked paid out of band for
// a booking settled outside the processor.
func (s *Service) RecordPaidInvoice(ctx context.Context, bookingID snowflake.ID) (result *domain.Result, err error) {
	start := time.Now()
	defer func() {
		s.txm.ObserveOperation(metrics.OperationRecordPaid, start, err)
		s.metrics.RecordInvoiceGeneration(ctx, pathRecordPaid, generationOutcome(result, err))
	}()
	return s.run(ctx, bookingID, true)
}

func (s *Service) GetGenerationStatus(ctx context.Context, bookingID snowflake.ID) (*domain.GenerationState, error) {
	state, err := s.repo.FindBooking(ctx, s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, domain.ErrBookingNotFound
	}
	status := state.InvoiceGenerationStatus
	if status == "" {
		status = bookingdomain.GenerationNotStarted
	}
	return &domain.GenerationState{
		BookingID: state.ID,
		Status:    status,
		StartedAt: state.InvoiceGenerationStartedAt,
		InvoiceID: state.ProcessorInvoiceID,
	}, nil
}

func generationOutcome(result *domain.Result, err error) string {
	switch {
	case err == nil && result != nil && result.Reused:
		return "reused"
	case err == nil:
		return "created"
	case errors.Is(err, domain.ErrGenerationInProgress):
		return "in_progress"
	default:
		return "failed"
	}
}

func (s *Service) run(ctx context.Context, bookingID snowflake.ID, markPaid bool) (*domain.Result, error) {
	state, err := s.acquire(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	startedAt := *state.InvoiceGenerationStartedAt

	result, err := s.produce(ctx, state, markPaid)
	finishCtx := context.WithoutCancel(ctx)
	if err != nil {
		if _, ferr := s.finish(finishCtx, bookingID, startedAt, bookingdomain.GenerationFailed, nil); ferr != nil {
			s.log.Error("failed to record invoice generation failure",
				zap.String("booking_id", bookingID.String()),
				zap.Error(ferr),
			)
		}
		s.log.Warn("invoice generation failed",
			zap.String("booking_id", bookingID.String()),
			zap.Bool("mark_paid", markPaid),
			zap.Error(err),
		)
		return nil, err
	}

	invoiceID := result.InvoiceID
	if _, err := s.finish(finishCtx, bookingID, startedAt, bookingdomain.GenerationCompleted, &invoiceID); err != nil {
		return nil, err
	}

	if s.auditSvc != nil {
		action := "invoice.generated"
		if markPaid {
			action = "invoice.recorded_paid"
		}
		_ = s.auditSvc.AuditLog(ctx, "", "", action, "booking", bookingID.String(), map[string]any{
			"invoice_id": result.InvoiceID,
			"status":     result.Status,
			"reused":     result.Reused,
		})
	}
	return result, nil
}

// finish releases the flag this run stamped. A run whose flag was taken over
// after going stale leaves the newer run's flag alone.
func (s *Service) finish(ctx context.Context, bookingID snowflake.ID, startedAt time.Time, status bookingdomain.GenerationStatus, invoiceID *string) (bool, error) {
	owned, err := s.repo.MarkGenerationFinished(ctx, s.db, bookingID, startedAt, status, invoiceID, s.clock.Now())
	if err != nil {
		return false, err
	}
	if !owned {
		s.log.Warn("invoice generation superseded by a later run",
			zap.String("booking_id", bookingID.String()),
			zap.String("status", string(status)),
			zap.Time("started_at", startedAt),
		)
	}
	return owned, nil
}

// acquire takes the booking row lock, checks the generation flag and commits
// it as in_progress before any processor call is made.
func (s *Service) acquire(ctx context.Context, bookingID snowflake.ID) (*domain.BookingInvoiceState, error) {
	var state *domain.BookingInvoiceState
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lockStart := time.Now()
		current, err := s.repo.LockBooking(ctx, tx, bookingID)
		s.txm.ObserveLockWait(metrics.LockResourceBooking, time.Since(lockStart))
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrBookingNotFound
		}

		// Millisecond precision survives every dialect's timestamp column, so
		// the stamp can be matched again when the run finishes.
		now := s.clock.Now().UTC().Truncate(time.Millisecond)
		if current.InProgress(now, s.staleAfter()) {
			return domain.ErrGenerationInProgress
		}
		if current.InvoiceGenerationStatus == bookingdomain.GenerationInProgress {
			s.log.Warn("taking over stale invoice generation",
				zap.String("booking_id", bookingID.String()),
			)
		}
		if current.ActiveQuoteID == nil {
			return domain.ErrNoActiveQuote
		}
		if strings.TrimSpace(current.ClientEmail) == "" {
			return domain.ErrMissingEmail
		}

		if err := s.repo.MarkGenerationStarted(ctx, tx, bookingID, now); err != nil {
			return err
		}
		current.InvoiceGenerationStatus = bookingdomain.GenerationInProgress
		current.InvoiceGenerationStartedAt = &now
		state = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (s *Service) produce(ctx context.Context, state *domain.BookingInvoiceState, markPaid bool) (*domain.Result, error) {
	quote, err := s.quoteRepo.FindByID(ctx, s.db, *state.ActiveQuoteID)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, domain.ErrNoActiveQuote
	}
	lines, err := s.quoteRepo.ListLines(ctx, s.db, quote.ID)
	if err != nil {
		return nil, err
	}
	desired := buildInvoiceLines(quote, lines)
	email := strings.ToLower(strings.TrimSpace(state.ClientEmail))

	customers, err := s.processor.SearchCustomersByEmail(ctx, email)
	if err != nil {
		return nil, processorErr(err)
	}
	existing, err := s.findBookingInvoice(ctx, customers, state.ID)
	if err != nil {
		return nil, processorErr(err)
	}

	if existing != nil {
		s.log.Info("found existing processor invoice",
			zap.String("booking_id", state.ID.String()),
			zap.String("invoice_id", existing.ID),
			zap.String("status", existing.Status),
		)
		return s.completeExisting(ctx, state.ID, existing, desired, markPaid)
	}

	customerID := ""
	if len(customers) > 0 {
		customerID = customers[0].ID
	} else {
		customer, err := s.processor.CreateCustomer(ctx, domain.CustomerParams{
			Email:     email,
			Name:      state.ClientName,
			BookingID: state.ID.String(),
		}, domain.IdempotencyKey(state.ID, "customer", email))
		if err != nil {
			return nil, processorErr(err)
		}
		customerID = customer.ID
	}

	invoice, err := s.processor.CreateInvoice(ctx, domain.InvoiceParams{
		CustomerID:   customerID,
		BookingID:    state.ID.String(),
		DaysUntilDue: s.daysUntilDue(),
	}, domain.IdempotencyKey(state.ID, "invoice", customerID+"|"+quote.ID.String()))
	if err != nil {
		return nil, processorErr(err)
	}
	if invoice.CustomerID == "" {
		invoice.CustomerID = customerID
	}

	if err := s.addLines(ctx, state.ID, invoice, desired); err != nil {
		return nil, err
	}
	return s.finalize(ctx, state.ID, invoice, markPaid, false)
}

func (s *Service) completeExisting(ctx context.Context, bookingID snowflake.ID, existing *domain.Invoice, desired []invoiceLine, markPaid bool) (*domain.Result, error) {
	switch existing.Status {
	case domain.InvoiceStatusPaid:
		return toResult(bookingID, existing, true), nil
	case domain.InvoiceStatusOpen:
		if !markPaid {
			return toResult(bookingID, existing, true), nil
		}
		paid, err := s.processor.PayInvoiceOutOfBand(ctx, existing.ID, domain.IdempotencyKey(bookingID, "pay_out_of_band", existing.ID))
		if err != nil {
			return nil, processorErr(err)
		}
		return toResult(bookingID, paid, true), nil
	default:
		if err := s.addLines(ctx, bookingID, existing, missingLines(desired, existing.Lines)); err != nil {
			return nil, err
		}
		return s.finalize(ctx, bookingID, existing, markPaid, true)
	}
}

func (s *Service) finalize(ctx context.Context, bookingID snowflake.ID, invoice *domain.Invoice, markPaid, reused bool) (*domain.Result, error) {
	finalized, err := s.processor.FinalizeInvoice(ctx, invoice.ID, domain.IdempotencyKey(bookingID, "finalize", invoice.ID))
	if err != nil {
		return nil, processorErr(err)
	}
	if markPaid && finalized.Status != domain.InvoiceStatusPaid {
		finalized, err = s.processor.PayInvoiceOutOfBand(ctx, invoice.ID, domain.IdempotencyKey(bookingID, "pay_out_of_band", invoice.ID))
		if err != nil {
			return nil, processorErr(err)
		}
	}
	return toResult(bookingID, finalized, reused), nil
}

func (s *Service) addLines(ctx context.Context, bookingID snowflake.ID, invoice *domain.Invoice, lines []invoiceLine) error {
	for _, line := range lines {
		_, err := s.processor.CreateInvoiceItem(ctx, domain.InvoiceItemParams{
			CustomerID:  invoice.CustomerID,
			InvoiceID:   invoice.ID,
			BookingID:   bookingID.String(),
			Description: line.Description,
			AmountCents: line.AmountCents,
			Currency:    domain.DefaultCurrency,
		}, domain.IdempotencyKey(bookingID, "invoice_item", invoice.ID+"|"+line.fingerprint()+"|"+strconv.Itoa(line.Occurrence)))
		if err != nil {
			return processorErr(err)
		}
	}
	return nil
}

// findBookingInvoice lists every customer's invoices concurrently and returns
// the most advanced one tagged with the booking.
func (s *Service) findBookingInvoice(ctx context.Context, customers []domain.Customer, bookingID snowflake.ID) (*domain.Invoice, error) {
	if len(customers) == 0 {
		return nil, nil
	}

	perCustomer := make([][]domain.Invoice, len(customers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)
	for i, customer := range customers {
		g.Go(func() error {
			invoices, err := s.processor.ListInvoices(gctx, customer.ID)
			if err != nil {
				return err
			}
			perCustomer[i] = invoices
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	key := bookingID.String()
	var best *domain.Invoice
	for _, invoices := range perCustomer {
		for i := range invoices {
			inv := invoices[i]
			if inv.Metadata[domain.MetadataBookingID] != key {
				continue
			}
			if invoiceRank(inv.Status) == 0 {
				continue
			}
			if best == nil || invoiceRank(inv.Status) > invoiceRank(best.Status) {
				best = &inv
			}
		}
	}
	return best, nil
}

func invoiceRank(status string) int {
	switch status {
	case domain.InvoiceStatusPaid:
		return 3
	case domain.InvoiceStatusOpen:
		return 2
	case domain.InvoiceStatusDraft:
		return 1
	}
	return 0
}

func toResult(bookingID snowflake.ID, invoice *domain.Invoice, reused bool) *domain.Result {
	return &domain.Result{
		BookingID: bookingID,
		InvoiceID: invoice.ID,
		Status:    invoice.Status,
		HostedURL: invoice.HostedURL,
		Reused:    reused,
	}
}

func processorErr(err error) error {
	if errors.Is(err, domain.ErrProcessorNotConfigured) || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrProcessorFailure, err)
}

func (s *Service) staleAfter() time.Duration {
	if s.cfg.StaleAfter <= 0 {
		return defaultStaleAfter
	}
	return s.cfg.StaleAfter
}

func (s *Service) daysUntilDue() int {
	if s.cfg.DaysUntilDue <= 0 {
		return defaultDaysUntilDue
	}
	return s.cfg.DaysUntilDue
}

type invoiceLine struct {
	Description string
	AmountCents int64
	// Occurrence is the line's index among identical lines of the full
	// desired set; it keeps item idempotency keys stable across retries.
	Occurrence int
}

func (l invoiceLine) fingerprint() string {
	return l.Description + "|" + strconv.FormatInt(l.AmountCents, 10)
}

// buildInvoiceLines turns a quote into processor lines that sum to its total.
func buildInvoiceLines(quote *quotedomain.Quote, lines []quotedomain.LineItem) []invoiceLine {
	out := make([]invoiceLine, 0, len(lines)+3)
	for _, line := range lines {
		out = append(out, invoiceLine{
			Description: fmt.Sprintf("%s x%d", line.ItemName, line.Quantity),
			AmountCents: money.Cents(line.LineTotal),
		})
	}
	if quote.DiscountAmount.IsPositive() {
		out = append(out, invoiceLine{
			Description: fmt.Sprintf("Volume discount (%s%%)", quote.DiscountPercent.String()),
			AmountCents: -money.Cents(quote.DiscountAmount),
		})
	}
	if quote.CodeDiscountAmount.IsPositive() {
		out = append(out, invoiceLine{
			Description: "Discount code",
			AmountCents: -money.Cents(quote.CodeDiscountAmount),
		})
	}
	if quote.MarginAmount.IsPositive() {
		out = append(out, invoiceLine{
			Description: "Service fee",
			AmountCents: money.Cents(quote.MarginAmount),
		})
	}
	seen := make(map[string]int, len(out))
	for i := range out {
		fp := out[i].fingerprint()
		out[i].Occurrence = seen[fp]
		seen[fp]++
	}
	return out
}

// missingLines returns the desired lines not yet present on an invoice,
// matching by description and amount. Present copies satisfy the lowest
// occurrences first, so each returned line keeps its own key.
func missingLines(desired []invoiceLine, present []domain.InvoiceLine) []invoiceLine {
	have := make(map[string]int, len(present))
	for _, line := range present {
		have[invoiceLine{Description: line.Description, AmountCents: line.AmountCents}.fingerprint()]++
	}
	var out []invoiceLine
	for _, line := range desired {
		fp := line.fingerprint()
		if have[fp] > 0 {
			have[fp]--
			continue
		}
		out = append(out, line)
	}
	return out
}

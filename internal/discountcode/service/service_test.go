package service

import (
	"context"
	"testing"
	"time"

	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/clock"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/config"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/discountcode/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/discountcode/repository"
	leaddomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/lead/domain"
	leadrepository "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/lead/repository"
	leadservice "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/lead/service"
	quotedomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/quote/domain"
	quoterepository "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/quote/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ledgerFixture struct {
	svc       domain.Service
	repo      domain.Repository
	quoteRepo quotedomain.Repository
	leadSvc   leaddomain.Service
	db        *gorm.DB
	node      *snowflake.Node
	clock     *clock.FakeClock
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func intPtr(v int) *int {
	return &v
}

func setupLedger(t *testing.T) ledgerFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.DiscountCode{},
		&domain.Usage{},
		&quotedomain.Quote{},
		&quotedomain.LineItem{},
		&leaddomain.SalesLead{},
		&leaddomain.SalesRep{},
		&leaddomain.Activity{},
	))

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC))

	leadSvc := leadservice.New(leadservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Cfg:   config.LeadConfig{AutoAssignEnabled: true, Window: 24 * time.Hour},
		Repo:  leadrepository.Provide(),
	})

	repo := repository.Provide()
	quoteRepo := quoterepository.Provide()
	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     clk,
		Cfg:       config.DiscountCodeConfig{Prefix: "BEIGE", Length: 6, MaxAttempts: 5},
		Repo:      repo,
		QuoteRepo: quoteRepo,
		LeadSvc:   leadSvc,
	})
	return ledgerFixture{svc: svc, repo: repo, quoteRepo: quoteRepo, leadSvc: leadSvc, db: db, node: node, clock: clk}
}

// seedQuote stores a pending quote: subtotal 1000, 10% tier discount, 25% margin.
func seedQuote(t *testing.T, f ledgerFixture, bookingID *snowflake.ID) *quotedomain.Quote {
	t.Helper()
	now := f.clock.Now()
	quote := &quotedomain.Quote{
		ID:                 f.node.Generate(),
		BookingID:          bookingID,
		PricingMode:        "general",
		ShootHours:         dec("4"),
		Subtotal:           dec("1000"),
		DiscountPercent:    dec("10"),
		DiscountAmount:     dec("100"),
		CodeDiscountAmount: decimal.Zero,
		PriceAfterDiscount: dec("900"),
		MarginPercent:      dec("25"),
		MarginAmount:       dec("225"),
		Total:              dec("1125"),
		Status:             quotedomain.StatusPending,
		ExpiresAt:          now.Add(30 * 24 * time.Hour),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	require.NoError(t, f.quoteRepo.Insert(context.Background(), f.db, quote, nil))
	return quote
}

func TestGenerateUniqueCodeFormat(t *testing.T) {
	f := setupLedger(t)

	code, err := f.svc.GenerateUniqueCode(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, `^BEIGE-[A-Z0-9]{6}$`, code)
	assert.True(t, domain.CodePattern.MatchString(code))
}

func TestGenerateUniqueCodeExhaustion(t *testing.T) {
	ctx := context.Background()
	f := setupLedger(t)
	impl := f.svc.(*Service)

	calls := 0
	impl.randomSuffix = func(int) (string, error) {
		calls++
		return "AAAAAA", nil
	}

	_, err := f.svc.CreateCode(ctx, domain.CreateCodeRequest{
		Code:          "BEIGE-AAAAAA",
		DiscountType:  domain.DiscountTypePercentage,
		DiscountValue: dec("10"),
		UsageType:     domain.UsageTypeOneTime,
	})
	require.NoError(t, err)

	_, err = f.svc.GenerateUniqueCode(ctx)
	require.ErrorIs(t, err, domain.ErrCodeSpaceExhausted)
	assert.Equal(t, 5, calls)
}

func TestCreateCodeValidation(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()

	_, err := f.svc.CreateCode(ctx, domain.CreateCodeRequest{DiscountType: "bogus", DiscountValue: dec("1"), UsageType: domain.UsageTypeOneTime})
	require.ErrorIs(t, err, domain.ErrInvalidDiscountType)

	_, err = f.svc.CreateCode(ctx, domain.CreateCodeRequest{DiscountType: domain.DiscountTypePercentage, DiscountValue: dec("120"), UsageType: domain.UsageTypeOneTime})
	require.ErrorIs(t, err, domain.ErrInvalidDiscountValue)

	_, err = f.svc.CreateCode(ctx, domain.CreateCodeRequest{DiscountType: domain.DiscountTypeFixedAmount, DiscountValue: dec("50"), UsageType: domain.UsageTypeMultiUse})
	require.ErrorIs(t, err, domain.ErrInvalidMaxUses)

	_, err = f.svc.CreateCode(ctx, domain.CreateCodeRequest{Code: "a!", DiscountType: domain.DiscountTypeFixedAmount, DiscountValue: dec("50"), UsageType: domain.UsageTypeOneTime})
	require.ErrorIs(t, err, domain.ErrMalformedCode)

	created, err := f.svc.CreateCode(ctx, domain.CreateCodeRequest{Code: " summer-25 ", DiscountType: domain.DiscountTypePercentage, DiscountValue: dec("25"), UsageType: domain.UsageTypeOneTime})
	require.NoError(t, err)
	assert.Equal(t, "SUMMER-25", created.Code)

	_, err = f.svc.CreateCode(ctx, domain.CreateCodeRequest{Code: "summer-25", DiscountType: domain.DiscountTypePercentage, DiscountValue: dec("25"), UsageType: domain.UsageTypeOneTime})
	require.ErrorIs(t, err, domain.ErrDuplicateCode)
}

func TestCheckCodeAvailabilityReasons(t *testing.T) {
	ctx := context.Background()
	f := setupLedger(t)
	booking := snowflake.ID(99)
	other := snowflake.ID(100)

	expiresAt := f.clock.Now().Add(time.Hour)
	_, err := f.svc.CreateCode(ctx, domain.CreateCodeRequest{
		Code:          "BOOK-99",
		DiscountType:  domain.DiscountTypeFixedAmount,
		DiscountValue: dec("40"),
		UsageType:     domain.UsageTypeOneTime,
		BookingID:     &booking,
		ExpiresAt:     &expiresAt,
	})
	require.NoError(t, err)

	got, err := f.svc.CheckCodeAvailability(ctx, "??", domain.Scope{})
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonMalformed, got.Reason)

	got, err = f.svc.CheckCodeAvailability(ctx, "NOPE-0000", domain.Scope{})
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonNotFound, got.Reason)

	got, err = f.svc.CheckCodeAvailability(ctx, "book-99", domain.Scope{BookingID: &other})
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonScopeMismatch, got.Reason)

	got, err = f.svc.CheckCodeAvailability(ctx, "book-99", domain.Scope{BookingID: &booking})
	require.NoError(t, err)
	assert.True(t, got.Valid)
	require.NotNil(t, got.Code)
	assert.Equal(t, "BOOK-99", got.Code.Code)

	f.clock.Advance(2 * time.Hour)
	got, err = f.svc.CheckCodeAvailability(ctx, "BOOK-99", domain.Scope{BookingID: &booking})
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonExpired, got.Reason)
}

func TestApplyPercentageCodeRepricesQuote(t *testing.T) {
	ctx := context.Background()
	f := setupLedger(t)
	booking := snowflake.ID(501)
	quote := seedQuote(t, f, &booking)

	code, err := f.svc.CreateCode(ctx, domain.CreateCodeRequest{
		DiscountType:  domain.DiscountTypePercentage,
		DiscountValue: dec("10"),
		UsageType:     domain.UsageTypeOneTime,
	})
	require.NoError(t, err)

	result, err := f.svc.ApplyDiscountCode(ctx, domain.ApplyRequest{Code: code.Code, QuoteID: quote.ID, PayerEmail: "Payer@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "90.00", result.DiscountAmount.StringFixed(2))
	assert.Equal(t, "1012.50", result.FinalAmount.StringFixed(2))

	stored, err := f.quoteRepo.FindByID(ctx, f.db, quote.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.DiscountCodeID)
	assert.Equal(t, code.ID, *stored.DiscountCodeID)
	assert.Equal(t, "810.00", stored.PriceAfterDiscount.StringFixed(2))
	assert.Equal(t, "202.50", stored.MarginAmount.StringFixed(2))
	assert.Equal(t, "1012.50", stored.Total.StringFixed(2))
	assert.True(t, stored.Total.Equal(stored.PriceAfterDiscount.Add(stored.MarginAmount)))

	usage, err := f.svc.ListUsage(ctx, code.ID)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, "payer@example.com", usage[0].PayerEmail)
	assert.Equal(t, "1125.00", usage[0].OriginalAmount.StringFixed(2))
	require.NotNil(t, usage[0].BookingID)
	assert.Equal(t, booking, *usage[0].BookingID)
}

func TestApplyOneTimeCodeTwice(t *testing.T) {
	ctx := context.Background()
	f := setupLedger(t)
	first := seedQuote(t, f, nil)
	second := seedQuote(t, f, nil)

	code, err := f.svc.CreateCode(ctx, domain.CreateCodeRequest{
		DiscountType:  domain.DiscountTypeFixedAmount,
		DiscountValue: dec("50"),
		UsageType:     domain.UsageTypeOneTime,
	})
	require.NoError(t, err)

	_, err = f.svc.ApplyDiscountCode(ctx, domain.ApplyRequest{Code: code.Code, QuoteID: first.ID})
	require.NoError(t, err)

	_, err = f.svc.ApplyDiscountCode(ctx, domain.ApplyRequest{Code: code.Code, QuoteID: second.ID})
	require.ErrorIs(t, err, domain.ErrUsageExhausted)

	stored, err := f.svc.GetCode(ctx, code.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CurrentUses)

	untouched, err := f.quoteRepo.FindByID(ctx, f.db, second.ID)
	require.NoError(t, err)
	assert.Nil(t, untouched.DiscountCodeID)
	assert.Equal(t, "1125.00", untouched.Total.StringFixed(2))
}

func TestApplyMultiUseCodeStopsAtCap(t *testing.T) {
	ctx := context.Background()
	f := setupLedger(t)

	code, err := f.svc.CreateCode(ctx, domain.CreateCodeRequest{
		DiscountType:  domain.DiscountTypePercentage,
		DiscountValue: dec("5"),
		UsageType:     domain.UsageTypeMultiUse,
		MaxUses:       intPtr(3),
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		quote := seedQuote(t, f, nil)
		_, err := f.svc.ApplyDiscountCode(ctx, domain.ApplyRequest{Code: code.Code, QuoteID: quote.ID})
		require.NoError(t, err)
	}

	extra := seedQuote(t, f, nil)
	_, err = f.svc.ApplyDiscountCode(ctx, domain.ApplyRequest{Code: code.Code, QuoteID: extra.ID})
	require.ErrorIs(t, err, domain.ErrUsageExhausted)

	stored, err := f.svc.GetCode(ctx, code.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.CurrentUses)

	usage, err := f.svc.ListUsage(ctx, code.ID)
	require.NoError(t, err)
	assert.Len(t, usage, 3)
}

func TestIncrementUsesRespectsLimit(t *testing.T) {
	ctx := context.Background()
	f := setupLedger(t)

	code, err := f.svc.CreateCode(ctx, domain.CreateCodeRequest{
		DiscountType:  domain.DiscountTypeFixedAmount,
		DiscountValue: dec("5"),
		UsageType:     domain.UsageTypeOneTime,
	})
	require.NoError(t, err)

	affected, err := f.repo.IncrementUses(ctx, f.db, code.ID, 1, f.clock.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	affected, err = f.repo.IncrementUses(ctx, f.db, code.ID, 1, f.clock.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)
}

func TestApplyFixedCodeNeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	f := setupLedger(t)
	quote := seedQuote(t, f, nil)

	code, err := f.svc.CreateCode(ctx, domain.CreateCodeRequest{
		DiscountType:  domain.DiscountTypeFixedAmount,
		DiscountValue: dec("5000"),
		UsageType:     domain.UsageTypeOneTime,
	})
	require.NoError(t, err)

	result, err := f.svc.ApplyDiscountCode(ctx, domain.ApplyRequest{Code: code.Code, QuoteID: quote.ID})
	require.NoError(t, err)
	assert.Equal(t, "900.00", result.DiscountAmount.StringFixed(2))
	assert.True(t, result.FinalAmount.IsZero())
}

func TestApplyRejectsSecondCodeOnQuote(t *testing.T) {
	ctx := context.Background()
	f := setupLedger(t)
	quote := seedQuote(t, f, nil)

	for _, value := range []string{"10", "20"} {
		_, err := f.svc.CreateCode(ctx, domain.CreateCodeRequest{
			Code:          "PCT-" + value,
			DiscountType:  domain.DiscountTypePercentage,
			DiscountValue: dec(value),
			UsageType:     domain.UsageTypeOneTime,
		})
		require.NoError(t, err)
	}

	_, err := f.svc.ApplyDiscountCode(ctx, domain.ApplyRequest{Code: "PCT-10", QuoteID: quote.ID})
	require.NoError(t, err)
	_, err = f.svc.ApplyDiscountCode(ctx, domain.ApplyRequest{Code: "PCT-20", QuoteID: quote.ID})
	require.ErrorIs(t, err, domain.ErrQuoteAlreadyDiscounted)
}

func TestApplyScopeMismatchAgainstQuoteBooking(t *testing.T) {
	ctx := context.Background()
	f := setupLedger(t)
	bookingA := snowflake.ID(1)
	bookingB := snowflake.ID(2)
	quote := seedQuote(t, f, &bookingB)

	_, err := f.svc.CreateCode(ctx, domain.CreateCodeRequest{
		Code:          "ONLY-A",
		DiscountType:  domain.DiscountTypeFixedAmount,
		DiscountValue: dec("10"),
		UsageType:     domain.UsageTypeOneTime,
		BookingID:     &bookingA,
	})
	require.NoError(t, err)

	_, err = f.svc.ApplyDiscountCode(ctx, domain.ApplyRequest{Code: "ONLY-A", QuoteID: quote.ID})
	require.ErrorIs(t, err, domain.ErrScopeMismatch)
}

func TestApplyRejectsCallerScopeForOtherBooking(t *testing.T) {
	ctx := context.Background()
	f := setupLedger(t)
	bookingA := snowflake.ID(1)
	bookingB := snowflake.ID(2)
	quote := seedQuote(t, f, &bookingB)

	code, err := f.svc.CreateCode(ctx, domain.CreateCodeRequest{
		Code:          "ONLY-A-50",
		DiscountType:  domain.DiscountTypePercentage,
		DiscountValue: dec("50"),
		UsageType:     domain.UsageTypeOneTime,
		BookingID:     &bookingA,
	})
	require.NoError(t, err)

	_, err = f.svc.ApplyDiscountCode(ctx, domain.ApplyRequest{
		Code:    "ONLY-A-50",
		QuoteID: quote.ID,
		Scope:   domain.Scope{BookingID: &bookingA},
	})
	require.ErrorIs(t, err, domain.ErrScopeMismatch)

	stored, err := f.svc.GetCode(ctx, code.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.CurrentUses)

	usage, err := f.svc.ListUsage(ctx, code.ID)
	require.NoError(t, err)
	assert.Empty(t, usage)
}

func TestApplyRejectsBookingScopeOnGuestQuote(t *testing.T) {
	ctx := context.Background()
	f := setupLedger(t)
	bookingA := snowflake.ID(1)
	quote := seedQuote(t, f, nil)

	_, err := f.svc.CreateCode(ctx, domain.CreateCodeRequest{
		Code:          "ANY-GUEST",
		DiscountType:  domain.DiscountTypeFixedAmount,
		DiscountValue: dec("10"),
		UsageType:     domain.UsageTypeOneTime,
	})
	require.NoError(t, err)

	_, err = f.svc.ApplyDiscountCode(ctx, domain.ApplyRequest{
		Code:    "ANY-GUEST",
		QuoteID: quote.ID,
		Scope:   domain.Scope{BookingID: &bookingA},
	})
	require.ErrorIs(t, err, domain.ErrScopeMismatch)
}

func TestApplyLeadScopedCodeAdvancesLead(t *testing.T) {
	ctx := context.Background()
	f := setupLedger(t)
	quote := seedQuote(t, f, nil)

	lead, err := f.leadSvc.CreateLead(ctx, leaddomain.CreateLeadRequest{ClientEmail: "c@example.com", LeadType: "guest_quote"})
	require.NoError(t, err)

	code, err := f.svc.CreateCode(ctx, domain.CreateCodeRequest{
		DiscountType:  domain.DiscountTypePercentage,
		DiscountValue: dec("10"),
		UsageType:     domain.UsageTypeOneTime,
		LeadID:        &lead.ID,
	})
	require.NoError(t, err)

	_, err = f.svc.ApplyDiscountCode(ctx, domain.ApplyRequest{
		Code:    code.Code,
		QuoteID: quote.ID,
		Scope:   domain.Scope{LeadID: &lead.ID},
		Actor:   leaddomain.Actor{Type: "sales_rep", ID: "rep-7"},
	})
	require.NoError(t, err)

	stored, err := f.leadSvc.GetLead(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, leaddomain.StatusDiscountApplied, stored.LeadStatus)

	activities, err := f.leadSvc.ListActivities(ctx, lead.ID)
	require.NoError(t, err)
	last := activities[len(activities)-1]
	assert.Equal(t, leaddomain.ActivityDiscountApplied, last.ActivityType)
	assert.Equal(t, code.Code, last.Payload["discount_code"])
}

func TestApplyRollsBackWhenLeadClosed(t *testing.T) {
	ctx := context.Background()
	f := setupLedger(t)
	quote := seedQuote(t, f, nil)

	lead, err := f.leadSvc.CreateLead(ctx, leaddomain.CreateLeadRequest{LeadType: "guest_quote"})
	require.NoError(t, err)
	_, err = f.leadSvc.UpdateStatus(ctx, lead.ID, leaddomain.StatusAbandoned, leaddomain.SystemActor())
	require.NoError(t, err)

	code, err := f.svc.CreateCode(ctx, domain.CreateCodeRequest{
		DiscountType:  domain.DiscountTypePercentage,
		DiscountValue: dec("10"),
		UsageType:     domain.UsageTypeOneTime,
		LeadID:        &lead.ID,
	})
	require.NoError(t, err)

	_, err = f.svc.ApplyDiscountCode(ctx, domain.ApplyRequest{Code: code.Code, QuoteID: quote.ID, Scope: domain.Scope{LeadID: &lead.ID}})
	require.ErrorIs(t, err, leaddomain.ErrLeadClosed)

	stored, err := f.svc.GetCode(ctx, code.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.CurrentUses)

	usage, err := f.svc.ListUsage(ctx, code.ID)
	require.NoError(t, err)
	assert.Empty(t, usage)

	untouched, err := f.quoteRepo.FindByID(ctx, f.db, quote.ID)
	require.NoError(t, err)
	assert.Nil(t, untouched.DiscountCodeID)
}

func TestDeactivateKeepsCode(t *testing.T) {
	ctx := context.Background()
	f := setupLedger(t)

	code, err := f.svc.CreateCode(ctx, domain.CreateCodeRequest{
		DiscountType:  domain.DiscountTypePercentage,
		DiscountValue: dec("10"),
		UsageType:     domain.UsageTypeOneTime,
	})
	require.NoError(t, err)

	deactivated, err := f.svc.Deactivate(ctx, code.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)

	got, err := f.svc.CheckCodeAvailability(ctx, code.Code, domain.Scope{})
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonInactive, got.Reason)
}

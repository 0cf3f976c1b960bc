package service

import (
	"context"
	"testing"
	"time"

	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/clock"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/config"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/quote/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/quote/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupQuoteService(t *testing.T) (domain.Service, domain.Repository, *gorm.DB, *clock.FakeClock) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Quote{}, &domain.LineItem{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
	repo := repository.Provide()
	svc := New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   clk,
		Pricing: config.PricingConfig{DefaultMarginPercent: dec("25"), QuoteValidity: 30 * 24 * time.Hour},
		Repo:    repo,
		Engine:  newTestEngine(newFakeCatalog()),
	})
	return svc, repo, db, clk
}

func TestCreateGuestQuotePersistsSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, _, _, clk := setupQuoteService(t)

	created, err := svc.CreateGuestQuote(ctx, domain.CalculateRequest{
		Items:      []domain.ItemSelection{{CatalogItemID: 1, Quantity: 1}, {CatalogItemID: 2, Quantity: 1}},
		ShootHours: dec("2"),
		EventType:  "wedding",
	})
	require.NoError(t, err)
	require.Nil(t, created.Quote.BookingID)
	require.Equal(t, domain.StatusDraft, created.Quote.Status)
	require.Equal(t, clk.Now().Add(30*24*time.Hour), created.Quote.ExpiresAt)

	loaded, err := svc.GetQuote(ctx, created.Quote.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 2)
	assert.True(t, loaded.Quote.Total.Equal(created.Quote.Total))
	assert.Equal(t, "900.00", loaded.Quote.Subtotal.StringFixed(2))
	assert.Equal(t, "Videographer", loaded.Lines[0].ItemName)
	assert.Equal(t, "275.00", loaded.Lines[0].UnitPrice.StringFixed(2))
}

func TestGetQuoteNotFound(t *testing.T) {
	svc, _, _, _ := setupQuoteService(t)
	_, err := svc.GetQuote(context.Background(), 42)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExpireActiveForBookingKeepsHistory(t *testing.T) {
	ctx := context.Background()
	svc, repo, db, clk := setupQuoteService(t)
	bookingID := snowflake.ID(777)

	breakdown := &domain.Breakdown{Subtotal: dec("100"), PriceAfterDiscount: dec("100"), Total: dec("125"), MarginAmount: dec("25"), MarginPercent: dec("25")}

	first, err := svc.Persist(ctx, db, &bookingID, domain.StatusPending, breakdown)
	require.NoError(t, err)

	clk.Advance(time.Minute)
	expired, err := repo.ExpireActiveForBooking(ctx, db, bookingID, clk.Now())
	require.NoError(t, err)
	require.EqualValues(t, 1, expired)

	second, err := svc.Persist(ctx, db, &bookingID, domain.StatusPending, breakdown)
	require.NoError(t, err)

	history, err := svc.ListBookingQuotes(ctx, bookingID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	statuses := map[snowflake.ID]domain.Status{}
	for _, q := range history {
		statuses[q.ID] = q.Status
	}
	assert.Equal(t, domain.StatusExpired, statuses[first.Quote.ID])
	assert.Equal(t, domain.StatusPending, statuses[second.Quote.ID])
}

func TestPersistRejectsInactiveStatus(t *testing.T) {
	svc, _, db, _ := setupQuoteService(t)
	_, err := svc.Persist(context.Background(), db, nil, domain.StatusExpired, &domain.Breakdown{})
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
}

package scheduler

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	bookingdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/booking/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/clock"
	quotedomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/quote/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/ratelimit"
	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
}

func setup(t *testing.T) fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&bookingdomain.Booking{}, &quotedomain.Quote{}))

	node, err := snowflake.NewNode(11)
	require.NoError(t, err)
	return fixture{
		db:    db,
		node:  node,
		clock: clock.NewFakeClock(time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)),
	}
}

func (f fixture) scheduler(t *testing.T, locker *ratelimit.Locker) *Scheduler {
	t.Helper()
	s, err := New(Params{
		DB:     f.db,
		Log:    zap.NewNop(),
		GenID:  f.node,
		Clock:  f.clock,
		Config: Config{BatchSize: 10, InvoiceStaleFor: 10 * time.Minute},
		Locker: locker,
	})
	require.NoError(t, err)
	return s
}

func (f fixture) seedQuote(t *testing.T, bookingID *snowflake.ID, status quotedomain.Status, expiresAt time.Time) snowflake.ID {
	t.Helper()
	now := f.clock.Now()
	amount := decimal.RequireFromString("100.00")
	q := &quotedomain.Quote{
		ID:                 f.node.Generate(),
		BookingID:          bookingID,
		PricingMode:        "general",
		ShootHours:         decimal.NewFromInt(2),
		Subtotal:           amount,
		DiscountPercent:    decimal.Zero,
		DiscountAmount:     decimal.Zero,
		CodeDiscountAmount: decimal.Zero,
		PriceAfterDiscount: amount,
		MarginPercent:      decimal.Zero,
		MarginAmount:       decimal.Zero,
		Total:              amount,
		Status:             status,
		ExpiresAt:          expiresAt,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	require.NoError(t, f.db.Create(q).Error)
	return q.ID
}

func (f fixture) seedBooking(t *testing.T, status bookingdomain.GenerationStatus, startedAt *time.Time) snowflake.ID {
	t.Helper()
	now := f.clock.Now()
	b := &bookingdomain.Booking{
		ID:                         f.node.Generate(),
		ClientName:                 "Dana Client",
		ClientEmail:                "dana@example.com",
		PaymentStatus:              bookingdomain.PaymentStatusUnpaid,
		InvoiceGenerationStatus:    status,
		InvoiceGenerationStartedAt: startedAt,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}
	require.NoError(t, f.db.Create(b).Error)
	return b.ID
}

func quoteStatus(t *testing.T, db *gorm.DB, id snowflake.ID) quotedomain.Status {
	t.Helper()
	var status quotedomain.Status
	require.NoError(t, db.Raw(`SELECT status FROM quotes WHERE id = ?`, id).Scan(&status).Error)
	return status
}

func generationStatus(t *testing.T, db *gorm.DB, id snowflake.ID) bookingdomain.GenerationStatus {
	t.Helper()
	var status bookingdomain.GenerationStatus
	require.NoError(t, db.Raw(`SELECT invoice_generation_status FROM bookings WHERE id = ?`, id).Scan(&status).Error)
	return status
}

func TestExpireGuestQuotesJob(t *testing.T) {
	f := setup(t)
	now := f.clock.Now()
	bookingID := f.node.Generate()

	lapsedPending := f.seedQuote(t, nil, quotedomain.StatusPending, now.Add(-time.Hour))
	lapsedDraft := f.seedQuote(t, nil, quotedomain.StatusDraft, now.Add(-time.Minute))
	fresh := f.seedQuote(t, nil, quotedomain.StatusPending, now.Add(time.Hour))
	confirmed := f.seedQuote(t, nil, quotedomain.StatusConfirmed, now.Add(-time.Hour))
	attached := f.seedQuote(t, &bookingID, quotedomain.StatusPending, now.Add(-time.Hour))

	require.NoError(t, f.scheduler(t, nil).RunOnce(context.Background()))

	assert.Equal(t, quotedomain.StatusExpired, quoteStatus(t, f.db, lapsedPending))
	assert.Equal(t, quotedomain.StatusExpired, quoteStatus(t, f.db, lapsedDraft))
	assert.Equal(t, quotedomain.StatusPending, quoteStatus(t, f.db, fresh))
	assert.Equal(t, quotedomain.StatusConfirmed, quoteStatus(t, f.db, confirmed))
	assert.Equal(t, quotedomain.StatusPending, quoteStatus(t, f.db, attached))
}

func TestExpireGuestQuotesHonoursBatchSize(t *testing.T) {
	f := setup(t)
	now := f.clock.Now()
	for i := 0; i < 12; i++ {
		f.seedQuote(t, nil, quotedomain.StatusPending, now.Add(-time.Duration(i+1)*time.Minute))
	}

	s := f.scheduler(t, nil)
	require.NoError(t, s.RunOnce(context.Background()))

	var expired int64
	require.NoError(t, f.db.Model(&quotedomain.Quote{}).Where("status = ?", quotedomain.StatusExpired).Count(&expired).Error)
	assert.EqualValues(t, 10, expired)

	require.NoError(t, s.RunOnce(context.Background()))
	require.NoError(t, f.db.Model(&quotedomain.Quote{}).Where("status = ?", quotedomain.StatusExpired).Count(&expired).Error)
	assert.EqualValues(t, 12, expired)
}

func TestReleaseStaleInvoiceFlagsJob(t *testing.T) {
	f := setup(t)
	now := f.clock.Now()
	staleStart := now.Add(-11 * time.Minute)
	recentStart := now.Add(-2 * time.Minute)

	stale := f.seedBooking(t, bookingdomain.GenerationInProgress, &staleStart)
	recent := f.seedBooking(t, bookingdomain.GenerationInProgress, &recentStart)
	done := f.seedBooking(t, bookingdomain.GenerationCompleted, &staleStart)

	require.NoError(t, f.scheduler(t, nil).RunOnce(context.Background()))

	assert.Equal(t, bookingdomain.GenerationFailed, generationStatus(t, f.db, stale))
	assert.Equal(t, bookingdomain.GenerationInProgress, generationStatus(t, f.db, recent))
	assert.Equal(t, bookingdomain.GenerationCompleted, generationStatus(t, f.db, done))
}

// MySQL rejects an UPDATE whose subquery reads the updated table, so batches
// are selected first and updated by id.
func TestJobsUpdateByIDWithoutSubquery(t *testing.T) {
	f := setup(t)
	now := f.clock.Now()
	staleStart := now.Add(-11 * time.Minute)
	lapsed := f.seedQuote(t, nil, quotedomain.StatusPending, now.Add(-time.Hour))
	stale := f.seedBooking(t, bookingdomain.GenerationInProgress, &staleStart)

	var (
		mu      sync.Mutex
		updates []string
	)
	require.NoError(t, f.db.Callback().Raw().After("gorm:raw").Register("test:capture_updates", func(db *gorm.DB) {
		sql := strings.ToUpper(db.Statement.SQL.String())
		if strings.HasPrefix(strings.TrimSpace(sql), "UPDATE") {
			mu.Lock()
			updates = append(updates, sql)
			mu.Unlock()
		}
	}))

	require.NoError(t, f.scheduler(t, nil).RunOnce(context.Background()))

	assert.Equal(t, quotedomain.StatusExpired, quoteStatus(t, f.db, lapsed))
	assert.Equal(t, bookingdomain.GenerationFailed, generationStatus(t, f.db, stale))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, updates, 2)
	for _, sql := range updates {
		assert.NotContains(t, sql, "SELECT")
	}
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	f := setup(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, mr.Set(lockKeyScheduler, "other-instance"))

	lapsed := f.seedQuote(t, nil, quotedomain.StatusPending, f.clock.Now().Add(-time.Hour))

	s := f.scheduler(t, ratelimit.NewLocker(client))
	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, quotedomain.StatusPending, quoteStatus(t, f.db, lapsed))

	mr.Del(lockKeyScheduler)
	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, quotedomain.StatusExpired, quoteStatus(t, f.db, lapsed))
	assert.False(t, mr.Exists(lockKeyScheduler))
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	_, err := New(Params{Log: zap.NewNop()})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

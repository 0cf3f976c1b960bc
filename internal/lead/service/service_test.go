package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/clock"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/config"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/lead/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/lead/repository"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/ratelimit"
	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type leadFixture struct {
	svc   domain.Service
	repo  domain.Repository
	db    *gorm.DB
	clock *clock.FakeClock
}

func setupLeadService(t *testing.T, cfg config.LeadConfig, locker *ratelimit.Locker) leadFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.SalesLead{}, &domain.SalesRep{}, &domain.Activity{}))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	repo := repository.Provide()
	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  clk,
		Cfg:    cfg,
		Repo:   repo,
		Locker: locker,
	})
	return leadFixture{svc: svc, repo: repo, db: db, clock: clk}
}

func enabledConfig() config.LeadConfig {
	return config.LeadConfig{AutoAssignEnabled: true, Window: 24 * time.Hour, LockTTL: 5 * time.Second}
}

func createReps(t *testing.T, f leadFixture, n int) []*domain.SalesRep {
	t.Helper()
	reps := make([]*domain.SalesRep, 0, n)
	for i := 0; i < n; i++ {
		rep, err := f.svc.CreateRep(context.Background(), domain.CreateRepRequest{
			Name:      fmt.Sprintf("Rep %d", i+1),
			Email:     fmt.Sprintf("rep%d@example.com", i+1),
			SortOrder: i,
		})
		require.NoError(t, err)
		reps = append(reps, rep)
	}
	return reps
}

func newLead(t *testing.T, f leadFixture) *domain.SalesLead {
	t.Helper()
	lead, err := f.svc.CreateLead(context.Background(), domain.CreateLeadRequest{
		ClientEmail: "Client@Example.com",
		LeadType:    "booking_inquiry",
	})
	require.NoError(t, err)
	return lead
}

func TestAutoAssignSpreadsEvenly(t *testing.T) {
	ctx := context.Background()
	f := setupLeadService(t, enabledConfig(), nil)
	reps := createReps(t, f, 3)

	got := map[snowflake.ID]int{}
	for i := 0; i < 10; i++ {
		lead := newLead(t, f)
		assignment, err := f.svc.AutoAssignLead(ctx, lead.ID)
		require.NoError(t, err)
		got[assignment.RepID]++
		f.clock.Advance(time.Minute)
	}

	assert.Equal(t, 4, got[reps[0].ID])
	assert.Equal(t, 3, got[reps[1].ID])
	assert.Equal(t, 3, got[reps[2].ID])
}

func TestAutoAssignPicksLeastLoadedRep(t *testing.T) {
	ctx := context.Background()
	f := setupLeadService(t, enabledConfig(), nil)
	reps := createReps(t, f, 3)

	// Preload rep 1 and rep 2 with assignments inside the window.
	for _, rep := range reps[:2] {
		for i := 0; i < 2; i++ {
			lead := newLead(t, f)
			_, err := f.svc.ManuallyAssignLead(ctx, lead.ID, rep.ID, domain.Actor{Type: "user", ID: "admin-1"})
			require.NoError(t, err)
		}
	}

	lead := newLead(t, f)
	assignment, err := f.svc.AutoAssignLead(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, reps[2].ID, assignment.RepID)
	assert.Equal(t, "Rep 3", assignment.RepName)

	stored, err := f.svc.GetLead(ctx, lead.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AssignedSalesRep)
	assert.Equal(t, reps[2].ID, *stored.AssignedSalesRep)
}

func TestAutoAssignIgnoresAssignmentsOutsideWindow(t *testing.T) {
	ctx := context.Background()
	f := setupLeadService(t, enabledConfig(), nil)
	reps := createReps(t, f, 2)

	for i := 0; i < 3; i++ {
		lead := newLead(t, f)
		_, err := f.svc.ManuallyAssignLead(ctx, lead.ID, reps[0].ID, domain.Actor{Type: "user", ID: "admin-1"})
		require.NoError(t, err)
	}
	f.clock.Advance(48 * time.Hour)

	lead := newLead(t, f)
	assignment, err := f.svc.AutoAssignLead(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, reps[0].ID, assignment.RepID)
}

func TestAutoAssignIsStableForAssignedLead(t *testing.T) {
	ctx := context.Background()
	f := setupLeadService(t, enabledConfig(), nil)
	createReps(t, f, 2)

	lead := newLead(t, f)
	first, err := f.svc.AutoAssignLead(ctx, lead.ID)
	require.NoError(t, err)
	second, err := f.svc.AutoAssignLead(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, first.RepID, second.RepID)

	activities, err := f.svc.ListActivities(ctx, lead.ID)
	require.NoError(t, err)
	assigned := 0
	for _, a := range activities {
		if a.ActivityType == domain.ActivityAssigned {
			assigned++
		}
	}
	assert.Equal(t, 1, assigned)
}

func TestAutoAssignDisabled(t *testing.T) {
	f := setupLeadService(t, config.LeadConfig{}, nil)
	createReps(t, f, 1)
	lead := newLead(t, f)

	_, err := f.svc.AutoAssignLead(context.Background(), lead.ID)
	require.ErrorIs(t, err, domain.ErrAutoAssignDisabled)

	stored, err := f.svc.GetLead(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AssignedSalesRep)
}

func TestAutoAssignWithoutReps(t *testing.T) {
	f := setupLeadService(t, enabledConfig(), nil)
	lead := newLead(t, f)

	_, err := f.svc.AutoAssignLead(context.Background(), lead.ID)
	require.ErrorIs(t, err, domain.ErrNoActiveReps)
}

func TestAutoAssignBusyWhenLockHeld(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	locker := ratelimit.NewLocker(client)

	f := setupLeadService(t, enabledConfig(), locker)
	createReps(t, f, 1)
	lead := newLead(t, f)

	_, held, err := locker.TryLock(context.Background(), assignLockKey, time.Minute)
	require.NoError(t, err)
	require.True(t, held)

	_, err = f.svc.AutoAssignLead(context.Background(), lead.ID)
	require.ErrorIs(t, err, domain.ErrAssignmentBusy)
}

func TestAutoAssignWithRedisLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := setupLeadService(t, enabledConfig(), ratelimit.NewLocker(client))
	reps := createReps(t, f, 1)
	lead := newLead(t, f)

	assignment, err := f.svc.AutoAssignLead(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, reps[0].ID, assignment.RepID)
	assert.False(t, mr.Exists(assignLockKey))
}

func TestManualAssignRecordsPreviousRep(t *testing.T) {
	ctx := context.Background()
	f := setupLeadService(t, enabledConfig(), nil)
	reps := createReps(t, f, 2)
	lead := newLead(t, f)

	_, err := f.svc.ManuallyAssignLead(ctx, lead.ID, reps[0].ID, domain.Actor{Type: "user", ID: "admin-1"})
	require.NoError(t, err)
	_, err = f.svc.ManuallyAssignLead(ctx, lead.ID, reps[1].ID, domain.Actor{Type: "user", ID: "admin-1"})
	require.NoError(t, err)

	activities, err := f.svc.ListActivities(ctx, lead.ID)
	require.NoError(t, err)
	last := activities[len(activities)-1]
	assert.Equal(t, domain.ActivityAssigned, last.ActivityType)
	assert.Equal(t, reps[0].ID.String(), last.Payload["previous_sales_rep_id"])
	assert.Equal(t, reps[1].ID.String(), last.Payload["new_sales_rep_id"])
	require.NotNil(t, last.ActorID)
	assert.Equal(t, "admin-1", *last.ActorID)
}

func TestManualAssignRejectsUnknownRep(t *testing.T) {
	f := setupLeadService(t, enabledConfig(), nil)
	lead := newLead(t, f)

	_, err := f.svc.ManuallyAssignLead(context.Background(), lead.ID, 12345, domain.SystemActor())
	require.ErrorIs(t, err, domain.ErrRepNotFound)
}

func TestUpdateStatusClosedLead(t *testing.T) {
	ctx := context.Background()
	f := setupLeadService(t, enabledConfig(), nil)
	lead := newLead(t, f)

	updated, err := f.svc.UpdateStatus(ctx, lead.ID, domain.StatusContacted, domain.SystemActor())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusContacted, updated.LeadStatus)
	assert.Equal(t, "client@example.com", updated.ClientEmail)

	_, err = f.svc.UpdateStatus(ctx, lead.ID, domain.StatusAbandoned, domain.SystemActor())
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, lead.ID, domain.StatusContacted, domain.SystemActor())
	require.ErrorIs(t, err, domain.ErrLeadClosed)
}

func TestCreateRepDuplicateEmail(t *testing.T) {
	f := setupLeadService(t, enabledConfig(), nil)
	createReps(t, f, 1)

	_, err := f.svc.CreateRep(context.Background(), domain.CreateRepRequest{Name: "Again", Email: "REP1@example.com"})
	require.ErrorIs(t, err, domain.ErrDuplicateRep)
}

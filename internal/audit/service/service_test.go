package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/audit/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/audit/repository"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/clock"
	obscontext "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/observability/context"
	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAuditService(t *testing.T, notifier domain.Notifier) (domain.Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		Repo:     repository.Provide(),
		Notifier: notifier,
	})
	return svc, db
}

func TestAuditLogPersistsMaskedMetadata(t *testing.T) {
	svc, _ := setupAuditService(t, nil)
	ctx := obscontext.WithRequestID(context.Background(), "req-1")

	err := svc.AuditLog(ctx, "user", "42", "discount_code.applied", "discount_code", "900", map[string]any{
		"payer_email": "jane@example.com",
		"amount":      "82.50",
	})
	require.NoError(t, err)

	logs, err := svc.ListByTarget(ctx, "discount_code", "900")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "discount_code.applied", logs[0].Action)
	require.NotNil(t, logs[0].RequestID)
	require.Equal(t, "req-1", *logs[0].RequestID)
	require.Equal(t, "j****@example.com", logs[0].Metadata["payer_email"])
	require.Equal(t, "82.50", logs[0].Metadata["amount"])
}

func TestAuditLogResolvesActorFromContext(t *testing.T) {
	svc, _ := setupAuditService(t, nil)
	ctx := obscontext.WithActor(context.Background(), "sales_rep", "7")

	require.NoError(t, svc.AuditLog(ctx, "", "", "lead.assigned", "sales_lead", "5", nil))

	logs, err := svc.ListByTarget(ctx, "sales_lead", "5")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "sales_rep", logs[0].ActorType)
	require.NotNil(t, logs[0].ActorID)
	require.Equal(t, "7", *logs[0].ActorID)
}

func TestAuditLogRejectsEmptyAction(t *testing.T) {
	svc, _ := setupAuditService(t, nil)
	err := svc.AuditLog(context.Background(), "", "", " ", "booking", "1", nil)
	require.ErrorIs(t, err, domain.ErrInvalidAction)
}

func TestAuditLogPublishesToRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	sub := client.Subscribe(ctx, Channel)
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	svc, _ := setupAuditService(t, NewRedisNotifier(client))
	require.NoError(t, svc.AuditLog(ctx, "system", "", "invoice.generated", "booking", "11", nil))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var entry domain.AuditLog
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &entry))
	require.Equal(t, "invoice.generated", entry.Action)
}

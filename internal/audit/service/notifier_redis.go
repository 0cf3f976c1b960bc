package service

import (
	"context"
	"encoding/json"

	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/audit/domain"
	redis "github.com/redis/go-redis/v9"
)

// Channel carries every committed audit entry as JSON.
const Channel = "bookingcore.audit"

type redisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier returns nil when redis is not configured.
func NewRedisNotifier(client *redis.Client) domain.Notifier {
	if client == nil {
		return nil
	}
	return &redisNotifier{client: client}
}

func (n *redisNotifier) Publish(ctx context.Context, entry domain.AuditLog) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, Channel, payload).Err()
}

package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ActorType string

const (
	ActorTypeSystem   ActorType = "system"
	ActorTypeUser     ActorType = "user"
	ActorTypeGuest    ActorType = "guest"
	ActorTypeSalesRep ActorType = "sales_rep"
)

type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	ActorType  string            `gorm:"type:text;not null" json:"actor_type"`
	ActorID    *string           `gorm:"type:text" json:"actor_id,omitempty"`
	Action     string            `gorm:"type:text;not null;index" json:"action"`
	TargetType string            `gorm:"type:text;not null;index:idx_audit_target" json:"target_type"`
	TargetID   *string           `gorm:"type:text;index:idx_audit_target" json:"target_id,omitempty"`
	RequestID  *string           `gorm:"type:text" json:"request_id,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"not null" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	ListByTarget(ctx context.Context, db *gorm.DB, targetType, targetID string, limit int) ([]*AuditLog, error)
}

// Notifier fans audit entries out to external subscribers.
type Notifier interface {
	Publish(ctx context.Context, entry AuditLog) error
}

// Service records audit events. Callers treat AuditLog as fire-and-forget.
type Service interface {
	AuditLog(ctx context.Context, actorType string, actorID string, action string, targetType string, targetID string, metadata map[string]any) error
	ListByTarget(ctx context.Context, targetType, targetID string) ([]AuditLog, error)
}

var (
	ErrInvalidAction = errors.New("invalid_action")
	ErrInvalidTarget = errors.New("invalid_target")
)

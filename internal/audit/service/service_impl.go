package service

import (
	"context"
	"strings"

	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/audit/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/audit/masking"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/clock"
	obscontext "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/observability/context"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const listLimit = 200

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Notifier domain.Notifier `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	notifier domain.Notifier
}

func NewService(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("audit.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		notifier: p.Notifier,
	}
}

func (s *Service) AuditLog(ctx context.Context, actorType string, actorID string, action string, targetType string, targetID string, metadata map[string]any) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return domain.ErrInvalidAction
	}
	targetType = strings.TrimSpace(targetType)
	if targetType == "" {
		targetType = "unknown"
	}

	resolvedType, resolvedID := resolveActor(ctx, strings.TrimSpace(actorType), strings.TrimSpace(actorID))

	entry := domain.AuditLog{
		ID:         s.genID.Generate(),
		ActorType:  resolvedType,
		ActorID:    optionalString(resolvedID),
		Action:     action,
		TargetType: targetType,
		TargetID:   optionalString(targetID),
		RequestID:  optionalString(obscontext.RequestIDFromContext(ctx)),
		Metadata:   datatypes.JSONMap(masking.MaskMetadata(metadata)),
		CreatedAt:  s.clock.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
		return err
	}

	if s.notifier != nil {
		if err := s.notifier.Publish(ctx, entry); err != nil {
			s.log.Warn("failed to publish audit log", zap.String("action", action), zap.Error(err))
		}
	}
	return nil
}

func (s *Service) ListByTarget(ctx context.Context, targetType, targetID string) ([]domain.AuditLog, error) {
	targetType = strings.TrimSpace(targetType)
	targetID = strings.TrimSpace(targetID)
	if targetType == "" || targetID == "" {
		return nil, domain.ErrInvalidTarget
	}

	items, err := s.repo.ListByTarget(ctx, s.db, targetType, targetID, listLimit)
	if err != nil {
		return nil, err
	}

	logs := make([]domain.AuditLog, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		logs = append(logs, *item)
	}
	return logs, nil
}

func resolveActor(ctx context.Context, actorType, actorID string) (string, string) {
	if actorType == "" {
		ctxType, ctxID := obscontext.ActorFromContext(ctx)
		actorType = strings.TrimSpace(ctxType)
		if actorID == "" {
			actorID = strings.TrimSpace(ctxID)
		}
	}
	if actorType == "" {
		actorType = string(domain.ActorTypeSystem)
	}
	return actorType, actorID
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

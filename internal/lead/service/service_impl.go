package service

import (
	"context"
	"errors"
	"strings"
	"time"

	auditdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/audit/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/clock"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/config"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/lead/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/observability/metrics"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/ratelimit"
	pkgdb "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const assignLockKey = "bookingcore:lock:lead-assignment"

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Cfg      config.LeadConfig
	Repo     domain.Repository
	AuditSvc auditdomain.Service `optional:"true"`
	Locker   *ratelimit.Locker   `optional:"true"`
	Metrics  *metrics.Metrics    `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	cfg      config.LeadConfig
	repo     domain.Repository
	auditSvc auditdomain.Service
	locker   *ratelimit.Locker
	metrics  *metrics.Metrics
	txm      *metrics.TransactionMetrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("lead.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		cfg:      p.Cfg,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
		locker:   p.Locker,
		metrics:  p.Metrics,
		txm:      metrics.Transactions(),
	}
}

func (s *Service) CreateLead(ctx context.Context, req domain.CreateLeadRequest) (*domain.SalesLead, error) {
	leadType := strings.TrimSpace(req.LeadType)
	if leadType == "" {
		return nil, domain.ErrInvalidLeadType
	}

	now := s.clock.Now()
	lead := &domain.SalesLead{
		ID:             s.genID.Generate(),
		BookingID:      req.BookingID,
		ClientEmail:    strings.ToLower(strings.TrimSpace(req.ClientEmail)),
		LeadType:       leadType,
		LeadStatus:     domain.StatusNew,
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertLead(ctx, tx, lead); err != nil {
			return err
		}
		return s.appendActivity(ctx, tx, lead.ID, domain.ActivityCreated, nil, domain.SystemActor(), map[string]any{
			"lead_type": leadType,
		})
	})
	if err != nil {
		return nil, err
	}
	return lead, nil
}

func (s *Service) GetLead(ctx context.Context, id snowflake.ID) (*domain.SalesLead, error) {
	lead, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, domain.ErrNotFound
	}
	return lead, nil
}

func (s *Service) CreateRep(ctx context.Context, req domain.CreateRepRequest) (*domain.SalesRep, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" {
		return nil, domain.ErrInvalidRep
	}
	rep := &domain.SalesRep{
		ID:        s.genID.Generate(),
		Name:      name,
		Email:     email,
		Active:    true,
		SortOrder: req.SortOrder,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.InsertRep(ctx, s.db, rep); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateRep
		}
		return nil, err
	}
	return rep, nil
}

func (s *Service) UpdateStatus(ctx context.Context, leadID snowflake.ID, status string, actor domain.Actor) (*domain.SalesLead, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return nil, domain.ErrInvalidStatus
	}

	var updated *domain.SalesLead
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.TransitionInTx(ctx, tx, leadID, status, domain.ActivityStatusChanged, actor, nil); err != nil {
			return err
		}
		lead, err := s.repo.FindByID(ctx, tx, leadID)
		if err != nil {
			return err
		}
		updated = lead
		return nil
	})
	if err != nil {
		return nil, err
	}

	actor = actor.Normalize()
	s.emitAudit(ctx, actor, "lead.status_changed", leadID, map[string]any{"status": status})
	return updated, nil
}

func (s *Service) TransitionInTx(ctx context.Context, tx *gorm.DB, leadID snowflake.ID, status string, activityType string, actor domain.Actor, payload map[string]any) error {
	lead, err := s.repo.FindByIDForUpdate(ctx, tx, leadID)
	if err != nil {
		return err
	}
	if lead == nil {
		return domain.ErrNotFound
	}
	if domain.IsTerminal(lead.LeadStatus) && lead.LeadStatus != status {
		return domain.ErrLeadClosed
	}

	if err := s.repo.UpdateStatus(ctx, tx, leadID, status, s.clock.Now()); err != nil {
		return err
	}

	body := map[string]any{
		"previous_status": lead.LeadStatus,
		"status":          status,
	}
	for k, v := range payload {
		body[k] = v
	}
	return s.appendActivity(ctx, tx, leadID, activityType, nil, actor, body)
}

// AutoAssignLead gives the lead to the active rep with the fewest assignments
// in the trailing window. Ties go to pool order.
func (s *Service) AutoAssignLead(ctx context.Context, leadID snowflake.ID) (assignment *domain.Assignment, err error) {
	if !s.cfg.AutoAssignEnabled {
		s.metrics.RecordLeadAssignment(ctx, "disabled")
		return nil, domain.ErrAutoAssignDisabled
	}

	start := time.Now()
	defer func() { s.txm.ObserveOperation(metrics.OperationAutoAssignLead, start, err) }()

	var reused bool
	lockErr := s.locker.WithLock(ctx, assignLockKey, s.lockTTL(), func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			lockStart := time.Now()
			lead, err := s.repo.FindByIDForUpdate(ctx, tx, leadID)
			s.txm.ObserveLockWait(metrics.LockResourceLead, time.Since(lockStart))
			if err != nil {
				return err
			}
			if lead == nil {
				return domain.ErrNotFound
			}

			if lead.AssignedSalesRep != nil {
				rep, err := s.repo.FindRep(ctx, tx, *lead.AssignedSalesRep)
				if err != nil {
					return err
				}
				if rep != nil {
					reused = true
					assignment = &domain.Assignment{LeadID: lead.ID, RepID: rep.ID, RepName: rep.Name}
					return nil
				}
			}
			if domain.IsTerminal(lead.LeadStatus) {
				return domain.ErrLeadClosed
			}

			reps, err := s.repo.ListActiveReps(ctx, tx)
			if err != nil {
				return err
			}
			if len(reps) == 0 {
				return domain.ErrNoActiveReps
			}

			counts, err := s.repo.CountAssignmentsSince(ctx, tx, s.clock.Now().Add(-s.window()))
			if err != nil {
				return err
			}
			chosen := pickRep(reps, counts)

			if err := s.repo.UpdateAssignment(ctx, tx, lead.ID, chosen.ID, s.clock.Now()); err != nil {
				return err
			}
			if err := s.appendActivity(ctx, tx, lead.ID, domain.ActivityAssigned, &chosen.ID, domain.SystemActor(), map[string]any{
				"mode":               domain.AssignmentModeAuto,
				"new_sales_rep_id":   chosen.ID.String(),
				"window_assignments": counts[chosen.ID],
			}); err != nil {
				return err
			}

			assignment = &domain.Assignment{LeadID: lead.ID, RepID: chosen.ID, RepName: chosen.Name}
			return nil
		})
	})
	if lockErr != nil {
		if errors.Is(lockErr, ratelimit.ErrLockHeld) {
			return nil, domain.ErrAssignmentBusy
		}
		return nil, lockErr
	}

	if !reused {
		s.metrics.RecordLeadAssignment(ctx, domain.AssignmentModeAuto)
		s.emitAudit(ctx, domain.SystemActor(), "lead.auto_assigned", leadID, map[string]any{
			"sales_rep_id": assignment.RepID.String(),
		})
	}
	return assignment, nil
}

// pickRep returns the first rep in pool order holding the minimum count.
func pickRep(reps []domain.SalesRep, counts map[snowflake.ID]int64) domain.SalesRep {
	chosen := reps[0]
	best := counts[chosen.ID]
	for _, rep := range reps[1:] {
		if counts[rep.ID] < best {
			chosen = rep
			best = counts[rep.ID]
		}
	}
	return chosen
}

func (s *Service) ManuallyAssignLead(ctx context.Context, leadID, repID snowflake.ID, actor domain.Actor) (assignment *domain.Assignment, err error) {
	start := time.Now()
	defer func() { s.txm.ObserveOperation(metrics.OperationManualAssignLead, start, err) }()

	actor = actor.Normalize()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rep, err := s.repo.FindRep(ctx, tx, repID)
		if err != nil {
			return err
		}
		if rep == nil {
			return domain.ErrRepNotFound
		}
		if !rep.Active {
			return domain.ErrRepInactive
		}

		lead, err := s.repo.FindByIDForUpdate(ctx, tx, leadID)
		if err != nil {
			return err
		}
		if lead == nil {
			return domain.ErrNotFound
		}

		payload := map[string]any{
			"mode":             domain.AssignmentModeManual,
			"new_sales_rep_id": rep.ID.String(),
		}
		if lead.AssignedSalesRep != nil {
			payload["previous_sales_rep_id"] = lead.AssignedSalesRep.String()
		} else {
			payload["previous_sales_rep_id"] = nil
		}

		if err := s.repo.UpdateAssignment(ctx, tx, lead.ID, rep.ID, s.clock.Now()); err != nil {
			return err
		}
		if err := s.appendActivity(ctx, tx, lead.ID, domain.ActivityAssigned, &rep.ID, actor, payload); err != nil {
			return err
		}

		assignment = &domain.Assignment{LeadID: lead.ID, RepID: rep.ID, RepName: rep.Name}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLeadAssignment(ctx, domain.AssignmentModeManual)
	s.emitAudit(ctx, actor, "lead.manually_assigned", leadID, map[string]any{
		"sales_rep_id": repID.String(),
	})
	return assignment, nil
}

func (s *Service) ListActivities(ctx context.Context, leadID snowflake.ID) ([]domain.Activity, error) {
	return s.repo.ListActivities(ctx, s.db, leadID)
}

func (s *Service) appendActivity(ctx context.Context, tx *gorm.DB, leadID snowflake.ID, activityType string, repID *snowflake.ID, actor domain.Actor, payload map[string]any) error {
	actor = actor.Normalize()
	activity := &domain.Activity{
		ID:           s.genID.Generate(),
		LeadID:       leadID,
		ActivityType: activityType,
		SalesRepID:   repID,
		ActorType:    actor.Type,
		Payload:      datatypes.JSONMap(payload),
		CreatedAt:    s.clock.Now(),
	}
	if actor.ID != "" {
		id := actor.ID
		activity.ActorID = &id
	}
	return s.repo.InsertActivity(ctx, tx, activity)
}

func (s *Service) emitAudit(ctx context.Context, actor domain.Actor, action string, leadID snowflake.ID, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	_ = s.auditSvc.AuditLog(ctx, actor.Type, actor.ID, action, "sales_lead", leadID.String(), metadata)
}

func (s *Service) window() time.Duration {
	if s.cfg.Window <= 0 {
		return 24 * time.Hour
	}
	return s.cfg.Window
}

func (s *Service) lockTTL() time.Duration {
	if s.cfg.LockTTL <= 0 {
		return 10 * time.Second
	}
	return s.cfg.LockTTL
}

package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	auditdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/audit/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/clock"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/config"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/discountcode/domain"
	leaddomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/lead/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/observability/metrics"
	quotedomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/quote/domain"
	pkgdb "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/pkg/db"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/pkg/money"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var hundred = decimal.NewFromInt(100)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Cfg       config.DiscountCodeConfig
	Repo      domain.Repository
	QuoteRepo quotedomain.Repository
	LeadSvc   leaddomain.Service
	AuditSvc  auditdomain.Service `optional:"true"`
	Metrics   *metrics.Metrics    `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	cfg       config.DiscountCodeConfig
	repo      domain.Repository
	quoteRepo quotedomain.Repository
	leadSvc   leaddomain.Service
	auditSvc  auditdomain.Service
	metrics   *metrics.Metrics
	txm       *metrics.TransactionMetrics

	randomSuffix func(n int) (string, error)
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("discountcode.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		cfg:          p.Cfg,
		repo:         p.Repo,
		quoteRepo:    p.QuoteRepo,
		leadSvc:      p.LeadSvc,
		auditSvc:     p.AuditSvc,
		metrics:      p.Metrics,
		txm:          metrics.Transactions(),
		randomSuffix: randomSuffix,
	}
}

func (s *Service) GenerateUniqueCode(ctx context.Context) (string, error) {
	length := s.cfg.Length
	if length <= 0 {
		length = 6
	}
	attempts := s.cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 10
	}
	prefix := strings.ToUpper(strings.TrimSpace(s.cfg.Prefix))

	for i := 0; i < attempts; i++ {
		suffix, err := s.randomSuffix(length)
		if err != nil {
			return "", err
		}
		candidate := suffix
		if prefix != "" {
			candidate = prefix + "-" + suffix
		}

		exists, err := s.repo.CodeExists(ctx, s.db, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}

	s.log.Error("discount code space exhausted",
		zap.String("prefix", prefix),
		zap.Int("length", length),
		zap.Int("attempts", attempts),
	)
	return "", domain.ErrCodeSpaceExhausted
}

func randomSuffix(n int) (string, error) {
	limit := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[idx.Int64()]
	}
	return string(buf), nil
}

func (s *Service) CreateCode(ctx context.Context, req domain.CreateCodeRequest) (*domain.DiscountCode, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	code := normalizeCode(req.Code)
	if code == "" {
		generated, err := s.GenerateUniqueCode(ctx)
		if err != nil {
			return nil, err
		}
		code = generated
	} else if !domain.CodePattern.MatchString(code) {
		return nil, domain.ErrMalformedCode
	}

	maxUses := req.MaxUses
	if req.UsageType == domain.UsageTypeOneTime {
		maxUses = nil
	}

	now := s.clock.Now()
	entity := &domain.DiscountCode{
		ID:            s.genID.Generate(),
		Code:          code,
		DiscountType:  req.DiscountType,
		DiscountValue: money.Round(req.DiscountValue),
		UsageType:     req.UsageType,
		MaxUses:       maxUses,
		LeadID:        req.LeadID,
		BookingID:     req.BookingID,
		ExpiresAt:     req.ExpiresAt,
		Active:        true,
		CreatedBy:     strings.TrimSpace(req.CreatedBy),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if entity.ExpiresAt != nil {
		expires := entity.ExpiresAt.UTC()
		entity.ExpiresAt = &expires
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateCode
		}
		return nil, err
	}

	s.emitAudit(ctx, "", "", "discount_code.created", "discount_code", entity.ID.String(), map[string]any{
		"code":          entity.Code,
		"discount_type": string(entity.DiscountType),
		"usage_type":    string(entity.UsageType),
	})
	return entity, nil
}

func validateCreate(req domain.CreateCodeRequest) error {
	if !req.DiscountType.Valid() {
		return domain.ErrInvalidDiscountType
	}
	if !req.DiscountValue.IsPositive() {
		return domain.ErrInvalidDiscountValue
	}
	if req.DiscountType == domain.DiscountTypePercentage && req.DiscountValue.GreaterThan(hundred) {
		return domain.ErrInvalidDiscountValue
	}
	if !req.UsageType.Valid() {
		return domain.ErrInvalidUsageType
	}
	if req.UsageType == domain.UsageTypeMultiUse && (req.MaxUses == nil || *req.MaxUses < 1) {
		return domain.ErrInvalidMaxUses
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *Service) GetCode(ctx context.Context, id snowflake.ID) (*domain.DiscountCode, error) {
	code, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if code == nil {
		return nil, domain.ErrCodeNotFound
	}
	return code, nil
}

func (s *Service) CheckCodeAvailability(ctx context.Context, code string, scope domain.Scope) (domain.Availability, error) {
	code = normalizeCode(code)
	if !domain.CodePattern.MatchString(code) {
		return domain.Availability{Reason: domain.ReasonMalformed}, nil
	}

	entity, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return domain.Availability{}, err
	}
	return domain.Evaluate(entity, scope, s.clock.Now()), nil
}

// ApplyDiscountCode reprices a quote with a code. The quote update, the usage
// increment, the ledger row and the lead transition commit together.
func (s *Service) ApplyDiscountCode(ctx context.Context, req domain.ApplyRequest) (result *domain.ApplyResult, err error) {
	start := time.Now()
	defer func() {
		s.txm.ObserveOperation(metrics.OperationApplyDiscount, start, err)
		outcome := "applied"
		if err != nil {
			outcome = metrics.ClassifyReason(err)
			if reason := applyOutcome(err); reason != "" {
				outcome = reason
			}
		}
		s.metrics.RecordDiscountApplied(ctx, outcome)
	}()

	code := normalizeCode(req.Code)
	if !domain.CodePattern.MatchString(code) {
		return nil, domain.ErrMalformedCode
	}

	var applied *domain.DiscountCode
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lockStart := time.Now()
		entity, err := s.repo.FindByCodeForUpdate(ctx, tx, code)
		s.txm.ObserveLockWait(metrics.LockResourceDiscountCode, time.Since(lockStart))
		if err != nil {
			return err
		}

		lockStart = time.Now()
		quote, err := s.quoteRepo.FindByIDForUpdate(ctx, tx, req.QuoteID)
		s.txm.ObserveLockWait(metrics.LockResourceQuote, time.Since(lockStart))
		if err != nil {
			return err
		}
		if quote == nil {
			return quotedomain.ErrNotFound
		}

		now := s.clock.Now()
		// The quote's own booking decides scope; a caller-supplied booking must agree with it.
		if req.Scope.BookingID != nil && (quote.BookingID == nil || *req.Scope.BookingID != *quote.BookingID) {
			return domain.ErrScopeMismatch
		}
		scope := domain.Scope{BookingID: quote.BookingID, LeadID: req.Scope.LeadID}
		availability := domain.Evaluate(entity, scope, now)
		if !availability.Valid {
			return domain.ReasonError(availability.Reason)
		}
		if !quote.Status.Active() || !now.Before(quote.ExpiresAt) {
			return domain.ErrQuoteNotDiscountable
		}
		if quote.DiscountCodeID != nil {
			return domain.ErrQuoteAlreadyDiscounted
		}

		originalTotal := quote.Total
		base := money.NonNegative(quote.Subtotal.Sub(quote.DiscountAmount))
		codeDiscount := domain.CalculateDiscountAmount(base, *entity)
		amounts := quotedomain.Recalculate(quote.Subtotal, quote.DiscountAmount.Add(codeDiscount), quote.MarginPercent, false)

		quote.DiscountCodeID = &entity.ID
		quote.CodeDiscountAmount = codeDiscount
		quote.PriceAfterDiscount = amounts.PriceAfterDiscount
		quote.MarginAmount = amounts.MarginAmount
		quote.Total = amounts.Total
		quote.UpdatedAt = now
		if err := s.quoteRepo.UpdatePricing(ctx, tx, quote); err != nil {
			return err
		}

		affected, err := s.repo.IncrementUses(ctx, tx, entity.ID, entity.Cap(), now)
		if err != nil {
			return err
		}
		if affected != 1 {
			return domain.ErrUsageExhausted
		}

		usage := &domain.Usage{
			ID:             s.genID.Generate(),
			DiscountCodeID: entity.ID,
			BookingID:      quote.BookingID,
			QuoteID:        quote.ID,
			PayerEmail:     strings.ToLower(strings.TrimSpace(req.PayerEmail)),
			OriginalAmount: originalTotal,
			DiscountAmount: codeDiscount,
			FinalAmount:    amounts.Total,
			CreatedAt:      now,
		}
		if err := s.repo.InsertUsage(ctx, tx, usage); err != nil {
			return err
		}

		if entity.LeadID != nil {
			if err := s.leadSvc.TransitionInTx(ctx, tx, *entity.LeadID,
				leaddomain.StatusDiscountApplied,
				leaddomain.ActivityDiscountApplied,
				req.Actor,
				map[string]any{
					"discount_code":   entity.Code,
					"quote_id":        quote.ID.String(),
					"discount_amount": codeDiscount.StringFixed(money.Places),
				},
			); err != nil {
				return err
			}
		}

		applied = entity
		result = &domain.ApplyResult{
			DiscountCodeID: entity.ID,
			QuoteID:        quote.ID,
			DiscountAmount: codeDiscount,
			FinalAmount:    amounts.Total,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	actor := req.Actor.Normalize()
	s.emitAudit(ctx, actor.Type, actor.ID, "discount_code.applied", "discount_code", applied.ID.String(), map[string]any{
		"code":            applied.Code,
		"quote_id":        result.QuoteID.String(),
		"discount_amount": result.DiscountAmount.StringFixed(money.Places),
		"final_amount":    result.FinalAmount.StringFixed(money.Places),
		"payer_email":     req.PayerEmail,
	})
	return result, nil
}

func applyOutcome(err error) string {
	for _, reason := range []string{
		domain.ReasonMalformed,
		domain.ReasonNotFound,
		domain.ReasonInactive,
		domain.ReasonExpired,
		domain.ReasonUsageExhausted,
		domain.ReasonScopeMismatch,
	} {
		if errors.Is(err, domain.ReasonError(reason)) {
			return reason
		}
	}
	return ""
}

func (s *Service) ListUsage(ctx context.Context, codeID snowflake.ID) ([]domain.Usage, error) {
	return s.repo.ListUsage(ctx, s.db, codeID)
}

func (s *Service) Deactivate(ctx context.Context, codeID snowflake.ID) (*domain.DiscountCode, error) {
	if err := s.repo.Deactivate(ctx, s.db, codeID, s.clock.Now()); err != nil {
		return nil, err
	}
	code, err := s.GetCode(ctx, codeID)
	if err != nil {
		return nil, err
	}
	s.emitAudit(ctx, "", "", "discount_code.deactivated", "discount_code", codeID.String(), nil)
	return code, nil
}

func (s *Service) emitAudit(ctx context.Context, actorType, actorID, action, targetType, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	_ = s.auditSvc.AuditLog(ctx, actorType, actorID, action, targetType, targetID, metadata)
}

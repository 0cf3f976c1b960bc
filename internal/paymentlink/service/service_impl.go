package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"strings"
	"time"

	auditdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/audit/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/clock"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/config"
	discountdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/discountcode/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/observability/metrics"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/paymentlink/domain"
	quotedomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/quote/domain"
	pkgdb "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	tokenBytes     = 32
	maxExpiryHours = 24 * 30
	tokenAttempts  = 3
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Cfg          config.PaymentLinkConfig
	Repo         domain.Repository
	QuoteRepo    quotedomain.Repository
	DiscountRepo discountdomain.Repository
	AuditSvc     auditdomain.Service `optional:"true"`
	Metrics      *metrics.Metrics    `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	cfg          config.PaymentLinkConfig
	repo         domain.Repository
	quoteRepo    quotedomain.Repository
	discountRepo discountdomain.Repository
	auditSvc     auditdomain.Service
	metrics      *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("paymentlink.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		cfg:          p.Cfg,
		repo:         p.Repo,
		quoteRepo:    p.QuoteRepo,
		discountRepo: p.DiscountRepo,
		auditSvc:     p.AuditSvc,
		metrics:      p.Metrics,
	}
}

func (s *Service) GeneratePaymentLink(ctx context.Context, bookingID snowflake.ID, discountCodeID *snowflake.ID, expiryHours *int) (*domain.Generated, error) {
	hours := s.cfg.ExpiryHours
	if expiryHours != nil {
		hours = *expiryHours
	}
	if hours <= 0 || hours > maxExpiryHours {
		return nil, domain.ErrInvalidExpiry
	}

	booking, err := s.repo.FindBookingState(ctx, s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.ErrBookingNotFound
	}
	if booking.Paid() {
		return nil, domain.ErrBookingAlreadyPaid
	}
	if discountCodeID != nil {
		code, err := s.discountRepo.FindByID(ctx, s.db, *discountCodeID)
		if err != nil {
			return nil, err
		}
		if code == nil {
			return nil, discountdomain.ErrCodeNotFound
		}
	}

	now := s.clock.Now()
	link := &domain.PaymentLink{
		BookingID:      bookingID,
		DiscountCodeID: discountCodeID,
		ExpiresAt:      now.Add(time.Duration(hours) * time.Hour),
		CreatedAt:      now,
	}

	var token string
	for attempt := 0; attempt < tokenAttempts; attempt++ {
		token, err = generateToken()
		if err != nil {
			return nil, err
		}
		link.ID = s.genID.Generate()
		link.TokenHash = domain.HashToken(token)
		err = s.repo.Insert(ctx, s.db, link)
		if err == nil {
			break
		}
		if !pkgdb.IsDuplicateKeyErr(err) {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}

	s.emitAudit(ctx, "payment_link.generated", link.ID, map[string]any{
		"booking_id": bookingID.String(),
		"expires_at": link.ExpiresAt.Format(time.RFC3339),
	})

	return &domain.Generated{
		LinkID:    link.ID,
		Token:     token,
		URL:       s.linkURL(token),
		ExpiresAt: link.ExpiresAt,
	}, nil
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (s *Service) linkURL(token string) string {
	base := strings.TrimRight(s.cfg.BaseURL, "/")
	if base == "" {
		return "/pay/" + token
	}
	return base + "/" + token
}

// ValidatePaymentLink resolves a public token. A link whose booking is
// already paid is retired on read.
func (s *Service) ValidatePaymentLink(ctx context.Context, token string) (domain.Validation, error) {
	result, err := s.validate(ctx, token)
	if err != nil {
		return domain.Validation{}, err
	}
	reason := result.Reason
	if result.Valid {
		reason = "valid"
	}
	s.metrics.RecordPaymentLinkValidation(ctx, reason)
	return result, nil
}

func (s *Service) validate(ctx context.Context, token string) (domain.Validation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Validation{Reason: domain.ReasonNotFound}, nil
	}

	link, err := s.repo.FindByTokenHash(ctx, s.db, domain.HashToken(token))
	if err != nil {
		return domain.Validation{}, err
	}
	if link == nil {
		return domain.Validation{Reason: domain.ReasonNotFound}, nil
	}

	now := s.clock.Now()
	if link.IsUsed {
		return domain.Validation{Reason: domain.ReasonUsed}, nil
	}
	if !link.Actionable(now) {
		return domain.Validation{Reason: domain.ReasonExpired}, nil
	}

	booking, err := s.repo.FindBookingState(ctx, s.db, link.BookingID)
	if err != nil {
		return domain.Validation{}, err
	}
	if booking == nil {
		return domain.Validation{Reason: domain.ReasonNotFound}, nil
	}
	if booking.Paid() {
		if _, err := s.repo.MarkUsed(ctx, s.db, link.ID, now); err != nil {
			return domain.Validation{}, err
		}
		s.log.Info("retired payment link for paid booking",
			zap.String("link_id", link.ID.String()),
			zap.String("booking_id", link.BookingID.String()),
		)
		return domain.Validation{Reason: domain.ReasonBookingPaid}, nil
	}

	data, err := s.linkData(ctx, link, booking)
	if err != nil {
		return domain.Validation{}, err
	}
	return domain.Validation{Valid: true, Data: data}, nil
}

func (s *Service) linkData(ctx context.Context, link *domain.PaymentLink, booking *domain.BookingState) (*domain.LinkData, error) {
	data := &domain.LinkData{
		LinkID:    link.ID,
		BookingID: link.BookingID,
		ExpiresAt: link.ExpiresAt,
	}

	if booking.ActiveQuoteID != nil {
		quote, err := s.quoteRepo.FindByID(ctx, s.db, *booking.ActiveQuoteID)
		if err != nil {
			return nil, err
		}
		if quote != nil {
			discount := quote.DiscountAmount.Add(quote.CodeDiscountAmount)
			data.QuoteID = &quote.ID
			data.Subtotal = &quote.Subtotal
			data.DiscountAmount = &discount
			data.PriceAfterDiscount = &quote.PriceAfterDiscount
			data.Total = &quote.Total
		}
	}

	if link.DiscountCodeID != nil {
		code, err := s.discountRepo.FindByID(ctx, s.db, *link.DiscountCodeID)
		if err != nil {
			return nil, err
		}
		if code != nil {
			data.DiscountCode = code.Code
		}
	}
	return data, nil
}

func (s *Service) MarkUsed(ctx context.Context, token string) error {
	link, err := s.repo.FindByTokenHash(ctx, s.db, domain.HashToken(strings.TrimSpace(token)))
	if err != nil {
		return err
	}
	if link == nil {
		return domain.ErrLinkNotFound
	}

	now := s.clock.Now()
	if !link.Actionable(now) {
		if link.IsUsed {
			return domain.ErrLinkAlreadyUsed
		}
		return domain.ErrLinkExpired
	}

	flipped, err := s.repo.MarkUsed(ctx, s.db, link.ID, now)
	if err != nil {
		return err
	}
	if !flipped {
		return domain.ErrLinkAlreadyUsed
	}

	s.emitAudit(ctx, "payment_link.used", link.ID, map[string]any{
		"booking_id": link.BookingID.String(),
	})
	return nil
}

func (s *Service) emitAudit(ctx context.Context, action string, linkID snowflake.ID, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	_ = s.auditSvc.AuditLog(ctx, "", "", action, "payment_link", linkID.String(), metadata)
}

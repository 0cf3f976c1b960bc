package service

import (
	"context"
	"sort"
	"strings"
	"time"

	auditdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/audit/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/booking/domain"
	catalogdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/catalog/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/clock"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/observability/metrics"
	quotedomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/quote/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	Catalog   catalogdomain.Service
	Engine    quotedomain.Engine
	QuoteRepo quotedomain.Repository
	QuoteSvc  quotedomain.Service
	AuditSvc  auditdomain.Service `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	catalog   catalogdomain.Service
	engine    quotedomain.Engine
	quoteRepo quotedomain.Repository
	quoteSvc  quotedomain.Service
	auditSvc  auditdomain.Service
	txm       *metrics.TransactionMetrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("booking.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		catalog:   p.Catalog,
		engine:    p.Engine,
		quoteRepo: p.QuoteRepo,
		quoteSvc:  p.QuoteSvc,
		auditSvc:  p.AuditSvc,
		txm:       metrics.Transactions(),
	}
}

func (s *Service) CreateBooking(ctx context.Context, req domain.CreateBookingRequest) (*domain.Booking, error) {
	name := strings.TrimSpace(req.ClientName)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	email := strings.ToLower(strings.TrimSpace(req.ClientEmail))
	if email != "" && !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidEmail
	}
	hours := decimal.Zero
	if req.ShootHours != nil {
		if req.ShootHours.IsNegative() {
			return nil, domain.ErrInvalidHours
		}
		hours = *req.ShootHours
	}

	now := s.clock.Now()
	booking := &domain.Booking{
		ID:                      s.genID.Generate(),
		ClientName:              name,
		ClientEmail:             email,
		EventType:               strings.TrimSpace(req.EventType),
		ShootDate:               req.ShootDate,
		ShootHours:              hours,
		Location:                strings.TrimSpace(req.Location),
		CrewRoles:               datatypes.NewJSONType(map[string]int{}),
		EditTypes:               datatypes.JSONSlice[string]{},
		PaymentStatus:           domain.PaymentStatusUnpaid,
		InvoiceGenerationStatus: domain.GenerationNotStarted,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if err := s.repo.Insert(ctx, s.db, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *Service) GetBooking(ctx context.Context, id snowflake.ID) (*domain.Booking, error) {
	booking, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.ErrNotFound
	}
	return booking, nil
}

func (s *Service) MarkPaid(ctx context.Context, id snowflake.ID) (*domain.Booking, error) {
	changed, err := s.repo.MarkPaid(ctx, s.db, id, s.clock.Now())
	if err != nil {
		return nil, err
	}
	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !changed {
		return booking, domain.ErrAlreadyPaid
	}
	s.emitAudit(ctx, "booking.paid", id, nil)
	return booking, nil
}

func (s *Service) CreateCrewMember(ctx context.Context, req domain.CreateCrewMemberRequest) (*domain.CrewMember, error) {
	name := strings.TrimSpace(req.Name)
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if name == "" || role == "" {
		return nil, domain.ErrInvalidCrewRequest
	}
	member := &domain.CrewMember{
		ID:        s.genID.Generate(),
		Name:      name,
		Role:      role,
		Active:    true,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.InsertCrewMember(ctx, s.db, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *Service) ListAssignments(ctx context.Context, bookingID snowflake.ID) ([]domain.CrewAssignment, error) {
	return s.repo.ListAssignments(ctx, s.db, bookingID)
}

// FinalizeBooking prices the selections first, then applies every write in a
// single transaction: details, crew, expiry of the prior quote, the new quote
// and the active pointer.
func (s *Service) FinalizeBooking(ctx context.Context, bookingID snowflake.ID, req domain.FinalizeRequest) (result *domain.FinalizeResult, err error) {
	start := time.Now()
	defer func() {
		s.txm.ObserveOperation(metrics.OperationFinalizeBooking, start, err)
	}()

	if req.ShootHours.IsNegative() {
		return nil, domain.ErrInvalidHours
	}
	roles, err := normalizeRoles(req.CrewRoles)
	if err != nil {
		return nil, err
	}
	editTypes := normalizeKeys(req.EditTypes)
	crewIDs := uniqueIDs(req.SelectedCrewIDs)

	selections, unmapped, err := s.mapSelections(ctx, roles, editTypes)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.engine.CalculateQuote(ctx, quotedomain.CalculateRequest{
		Items:         selections,
		ShootHours:    req.ShootHours,
		EventType:     req.EventType,
		MarginPercent: req.MarginPercent,
	})
	if err != nil {
		return nil, err
	}

	var (
		updated  *domain.Booking
		created  *quotedomain.QuoteWithLines
		replaced int64
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lockStart := time.Now()
		booking, err := s.repo.FindByIDForUpdate(ctx, tx, bookingID)
		s.txm.ObserveLockWait(metrics.LockResourceBooking, time.Since(lockStart))
		if err != nil {
			return err
		}
		if booking == nil {
			return domain.ErrNotFound
		}

		now := s.clock.Now()
		booking.EventType = strings.TrimSpace(req.EventType)
		booking.ShootDate = req.ShootDate
		booking.ShootHours = req.ShootHours
		booking.Location = strings.TrimSpace(req.Location)
		booking.CrewRoles = datatypes.NewJSONType(roles)
		booking.EditTypes = datatypes.JSONSlice[string](editTypes)
		booking.UpdatedAt = now
		if err := s.repo.UpdateDetails(ctx, tx, booking); err != nil {
			return err
		}

		if err := s.validateCrew(ctx, tx, crewIDs); err != nil {
			return err
		}
		if err := s.repo.ReplaceAssignments(ctx, tx, bookingID, crewIDs, now); err != nil {
			return err
		}

		replaced, err = s.quoteRepo.ExpireActiveForBooking(ctx, tx, bookingID, now)
		if err != nil {
			return err
		}
		created, err = s.quoteSvc.Persist(ctx, tx, &bookingID, quotedomain.StatusPending, breakdown)
		if err != nil {
			return err
		}
		if err := s.repo.SetActiveQuote(ctx, tx, bookingID, created.Quote.ID, now); err != nil {
			return err
		}

		quoteID := created.Quote.ID
		booking.ActiveQuoteID = &quoteID
		updated = booking
		return nil
	})
	if err != nil {
		s.log.Warn("booking finalization rolled back",
			zap.String("booking_id", bookingID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.log.Info("booking finalized",
		zap.String("booking_id", bookingID.String()),
		zap.String("quote_id", created.Quote.ID.String()),
		zap.Int64("expired_quotes", replaced),
		zap.Int("crew", len(crewIDs)),
	)
	s.emitAudit(ctx, "booking.finalized", bookingID, map[string]any{
		"quote_id":       created.Quote.ID.String(),
		"total":          created.Quote.Total.StringFixed(2),
		"expired_quotes": replaced,
		"crew_count":     len(crewIDs),
	})

	return &domain.FinalizeResult{
		QuoteID:          created.Quote.ID,
		Booking:          *updated,
		Quote:            *created,
		UnmappedServices: unmapped,
	}, nil
}

// mapSelections resolves role headcounts and edit types to catalog items.
// Keys with no active item are returned so callers can surface them.
func (s *Service) mapSelections(ctx context.Context, roles map[string]int, editTypes []string) ([]quotedomain.ItemSelection, []string, error) {
	roleKeys := make([]string, 0, len(roles))
	for key := range roles {
		roleKeys = append(roleKeys, key)
	}
	sort.Strings(roleKeys)

	keys := append(append([]string{}, roleKeys...), editTypes...)
	if len(keys) == 0 {
		return nil, nil, nil
	}
	items, err := s.catalog.GetItemsByServiceKeys(ctx, keys)
	if err != nil {
		return nil, nil, err
	}

	var (
		selections []quotedomain.ItemSelection
		unmapped   []string
	)
	add := func(key string, qty int) {
		item, ok := items[key]
		if !ok {
			unmapped = append(unmapped, key)
			return
		}
		selections = append(selections, quotedomain.ItemSelection{CatalogItemID: item.ID, Quantity: qty})
	}
	for _, key := range roleKeys {
		add(key, roles[key])
	}
	for _, key := range editTypes {
		add(key, 1)
	}
	if len(unmapped) > 0 {
		s.log.Warn("booking selections without catalog item",
			zap.Strings("service_keys", unmapped),
		)
	}
	return selections, unmapped, nil
}

func (s *Service) validateCrew(ctx context.Context, tx *gorm.DB, ids []snowflake.ID) error {
	if len(ids) == 0 {
		return nil
	}
	members, err := s.repo.FindCrewMembers(ctx, tx, ids)
	if err != nil {
		return err
	}
	active := make(map[snowflake.ID]bool, len(members))
	for _, member := range members {
		if member.Active {
			active[member.ID] = true
		}
	}
	for _, id := range ids {
		if !active[id] {
			return domain.ErrInvalidCrewMember
		}
	}
	return nil
}

func (s *Service) emitAudit(ctx context.Context, action string, bookingID snowflake.ID, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	_ = s.auditSvc.AuditLog(ctx, "", "", action, "booking", bookingID.String(), metadata)
}

func normalizeRoles(in map[string]int) (map[string]int, error) {
	out := make(map[string]int, len(in))
	for key, count := range in {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" || count < 0 {
			return nil, domain.ErrInvalidCrewRoles
		}
		if count == 0 {
			continue
		}
		out[key] += count
	}
	return out, nil
}

func normalizeKeys(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, key := range in {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}

func uniqueIDs(in []snowflake.ID) []snowflake.ID {
	out := make([]snowflake.ID, 0, len(in))
	seen := make(map[snowflake.ID]bool, len(in))
	for _, id := range in {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

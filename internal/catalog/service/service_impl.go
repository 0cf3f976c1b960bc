package service

import (
	"context"
	"strings"

	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/catalog/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/clock"
	pkgdb "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/pkg/db"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/pkg/db/option"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/pkg/money"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/pkg/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	categories repository.Repository[domain.Category]
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("catalog.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		categories: repository.ProvideStore[domain.Category](p.DB),
	}
}

func (s *Service) CreateCategory(ctx context.Context, req domain.CreateCategoryRequest) (*domain.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	category := &domain.Category{
		ID:        s.genID.Generate(),
		Name:      name,
		Slug:      slug.Make(name),
		SortOrder: req.SortOrder,
		Active:    true,
		CreatedAt: s.clock.Now(),
	}
	if err := s.categories.Create(ctx, category); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateCategory
		}
		return nil, err
	}
	return category, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	items, err := s.categories.Find(ctx, &domain.Category{},
		option.ApplyOperator(option.Condition{Field: "active", Operator: option.EQ, Value: true}),
		option.WithSortBy(option.QuerySortBy{Allow: map[string]bool{"sort_order": true}, Field: "sort_order"}),
	)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Category, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *Service) CreateItem(ctx context.Context, req domain.CreateItemRequest) (*domain.PricingItem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	serviceKey := strings.ToLower(strings.TrimSpace(req.ServiceKey))
	if serviceKey == "" {
		serviceKey = slug.Make(name)
	}
	if req.Rate.IsNegative() {
		return nil, domain.ErrInvalidRate
	}
	if !req.RateType.Valid() {
		return nil, domain.ErrInvalidRateType
	}
	applicability := req.Applicability
	if applicability == "" {
		applicability = domain.ApplicabilityBoth
	}
	if !applicability.Valid() {
		return nil, domain.ErrInvalidApplicability
	}

	if req.CategoryID == 0 {
		return nil, domain.ErrCategoryNotFound
	}
	category, err := s.categories.FindOne(ctx, &domain.Category{ID: req.CategoryID})
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrCategoryNotFound
	}

	item := &domain.PricingItem{
		ID:            s.genID.Generate(),
		CategoryID:    category.ID,
		Name:          name,
		ServiceKey:    serviceKey,
		Rate:          money.Round(req.Rate),
		RateType:      req.RateType,
		Applicability: applicability,
		Active:        true,
		SortOrder:     req.SortOrder,
		CreatedAt:     s.clock.Now(),
	}
	if err := s.repo.InsertItem(ctx, s.db, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) ListItems(ctx context.Context, mode domain.PricingMode) ([]domain.PricingItem, error) {
	if mode != "" && !mode.Valid() {
		return nil, domain.ErrInvalidPricingMode
	}
	items, err := s.repo.ListActiveItems(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if mode == "" {
		return items, nil
	}

	filtered := make([]domain.PricingItem, 0, len(items))
	for _, item := range items {
		if item.Applicability.Allows(mode) {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// GetItems returns every requested item that exists, active or not. Missing ids are absent.
func (s *Service) GetItems(ctx context.Context, ids []snowflake.ID) (map[snowflake.ID]domain.PricingItem, error) {
	items, err := s.repo.FindItemsByIDs(ctx, s.db, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	out := make(map[snowflake.ID]domain.PricingItem, len(items))
	for _, item := range items {
		out[item.ID] = item
	}
	return out, nil
}

// GetItemsByServiceKeys resolves the newest active item per service key.
func (s *Service) GetItemsByServiceKeys(ctx context.Context, keys []string) (map[string]domain.PricingItem, error) {
	normalized := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		normalized = append(normalized, key)
	}

	items, err := s.repo.FindActiveItemsByServiceKeys(ctx, s.db, normalized)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.PricingItem, len(items))
	for _, item := range items {
		if _, ok := out[item.ServiceKey]; !ok {
			out[item.ServiceKey] = item
		}
	}
	return out, nil
}

func (s *Service) DeactivateItem(ctx context.Context, id snowflake.ID) error {
	return s.repo.SetItemActive(ctx, s.db, id, false)
}

func (s *Service) ReplaceTiers(ctx context.Context, mode domain.PricingMode, inputs []domain.TierInput) ([]domain.DiscountTier, error) {
	if !mode.Valid() {
		return nil, domain.ErrInvalidPricingMode
	}
	if err := domain.ValidatePartition(inputs); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	tiers := make([]domain.DiscountTier, 0, len(inputs))
	for _, input := range inputs {
		tier := domain.DiscountTier{
			ID:              s.genID.Generate(),
			PricingMode:     mode,
			MinHours:        input.MinHours,
			DiscountPercent: input.DiscountPercent,
			CreatedAt:       now,
		}
		if input.MaxHours != nil {
			tier.MaxHours = decimal.NewNullDecimal(*input.MaxHours)
		}
		tiers = append(tiers, tier)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteTiers(ctx, tx, mode); err != nil {
			return err
		}
		for i := range tiers {
			if err := s.repo.InsertTier(ctx, tx, &tiers[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("discount tiers replaced", zap.String("pricing_mode", string(mode)), zap.Int("tiers", len(tiers)))
	return tiers, nil
}

func (s *Service) ListTiers(ctx context.Context, mode domain.PricingMode) ([]domain.DiscountTier, error) {
	if !mode.Valid() {
		return nil, domain.ErrInvalidPricingMode
	}
	return s.repo.ListTiers(ctx, s.db, mode)
}

// FindTier returns the discount percent for hours in mode; zero when no tier qualifies.
func (s *Service) FindTier(ctx context.Context, mode domain.PricingMode, hours decimal.Decimal) (decimal.Decimal, *domain.DiscountTier, error) {
	if hours.IsNegative() {
		return decimal.Zero, nil, domain.ErrInvalidHours
	}
	tiers, err := s.ListTiers(ctx, mode)
	if err != nil {
		return decimal.Zero, nil, err
	}
	tier := domain.SelectTier(tiers, hours)
	if tier == nil {
		return decimal.Zero, nil, nil
	}
	return tier.DiscountPercent, tier, nil
}

func uniqueIDs(ids []snowflake.ID) []snowflake.ID {
	seen := make(map[snowflake.ID]bool, len(ids))
	out := make([]snowflake.ID, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

package server

import (
	"net/http"
	"strings"

	catalogdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/catalog/domain"
	"github.com/gin-gonic/gin"
)

type createCategoryRequest struct {
	Name      string `json:"name" validate:"required"`
	SortOrder int    `json:"sort_order" validate:"gte=0"`
}

func (s *Server) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := s.bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.catalogSvc.CreateCategory(c.Request.Context(), catalogdomain.CreateCategoryRequest{
		Name:      strings.TrimSpace(req.Name),
		SortOrder: req.SortOrder,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) CreateCatalogItem(c *gin.Context) {
	var req catalogdomain.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	resp, err := s.catalogSvc.CreateItem(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

// ListCatalogItems returns active items grouped by category for a pricing mode.
func (s *Server) ListCatalogItems(c *gin.Context) {
	mode := catalogdomain.PricingMode(strings.ToLower(strings.TrimSpace(c.DefaultQuery("mode", string(catalogdomain.PricingModeGeneral)))))
	if !mode.Valid() {
		AbortWithError(c, catalogdomain.ErrInvalidPricingMode)
		return
	}

	ctx := c.Request.Context()
	categories, err := s.catalogSvc.ListCategories(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	items, err := s.catalogSvc.ListItems(ctx, mode)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	type categoryView struct {
		catalogdomain.Category
		Items []catalogdomain.PricingItem `json:"items"`
	}
	byCategory := make(map[string][]catalogdomain.PricingItem, len(categories))
	for _, item := range items {
		key := item.CategoryID.String()
		byCategory[key] = append(byCategory[key], item)
	}
	resp := make([]categoryView, 0, len(categories))
	for _, category := range categories {
		group := byCategory[category.ID.String()]
		if len(group) == 0 {
			continue
		}
		resp = append(resp, categoryView{Category: category, Items: group})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp, "pricing_mode": mode})
}

func (s *Server) ListTiers(c *gin.Context) {
	mode := catalogdomain.PricingMode(strings.ToLower(strings.TrimSpace(c.Param("mode"))))
	resp, err := s.catalogSvc.ListTiers(c.Request.Context(), mode)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type replaceTiersRequest struct {
	Tiers []catalogdomain.TierInput `json:"tiers" validate:"required,min=1"`
}

func (s *Server) ReplaceTiers(c *gin.Context) {
	var req replaceTiersRequest
	if err := s.bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	mode := catalogdomain.PricingMode(strings.ToLower(strings.TrimSpace(c.Param("mode"))))
	resp, err := s.catalogSvc.ReplaceTiers(c.Request.Context(), mode, req.Tiers)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

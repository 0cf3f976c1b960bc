package server

import (
	"net/http"
	"strings"

	discountdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/discountcode/domain"
	leaddomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/lead/domain"
	obscontext "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/observability/context"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateDiscountCode(c *gin.Context) {
	var req discountdomain.CreateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.CreatedBy) == "" {
		_, actorID := obscontext.ActorFromContext(c.Request.Context())
		req.CreatedBy = actorID
	}

	resp, err := s.discountSvc.CreateCode(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

// CheckDiscountCode reports availability for the code in :ref. An unusable
// code is a normal answer, not an error.
func (s *Server) CheckDiscountCode(c *gin.Context) {
	bookingID, err := parseOptionalSnowflakeID(c.Query("booking_id"))
	if err != nil {
		AbortWithError(c, newValidationError("booking_id", "invalid_booking_id", "invalid booking_id"))
		return
	}
	leadID, err := parseOptionalSnowflakeID(c.Query("lead_id"))
	if err != nil {
		AbortWithError(c, newValidationError("lead_id", "invalid_lead_id", "invalid lead_id"))
		return
	}

	resp, err := s.discountSvc.CheckCodeAvailability(c.Request.Context(), c.Param("ref"), discountdomain.Scope{
		BookingID: bookingID,
		LeadID:    leadID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ApplyDiscountCode(c *gin.Context) {
	var req discountdomain.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.QuoteID == 0 {
		AbortWithError(c, newValidationError("quote_id", "required", "quote_id is required"))
		return
	}
	req.Actor = actorFromRequest(c)

	resp, err := s.discountSvc.ApplyDiscountCode(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeactivateDiscountCode(c *gin.Context) {
	id, err := parseIDParam(c, "ref")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.discountSvc.Deactivate(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDiscountCodeUsage(c *gin.Context) {
	id, err := parseIDParam(c, "ref")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.discountSvc.ListUsage(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func actorFromRequest(c *gin.Context) leaddomain.Actor {
	actorType, actorID := obscontext.ActorFromContext(c.Request.Context())
	return leaddomain.Actor{Type: actorType, ID: actorID}.Normalize()
}

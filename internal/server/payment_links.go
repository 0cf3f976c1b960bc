package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

type createPaymentLinkRequest struct {
	BookingID      snowflake.ID  `json:"booking_id" validate:"required"`
	DiscountCodeID *snowflake.ID `json:"discount_code_id"`
	ExpiryHours    *int          `json:"expiry_hours" validate:"omitempty,min=1,max=720"`
}

func (s *Server) CreatePaymentLink(c *gin.Context) {
	var req createPaymentLinkRequest
	if err := s.bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.paymentLinkSvc.GeneratePaymentLink(c.Request.Context(), req.BookingID, req.DiscountCodeID, req.ExpiryHours)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

// ValidatePaymentLink is public. Expired, used and unknown tokens all answer
// valid=false with a reason.
func (s *Server) ValidatePaymentLink(c *gin.Context) {
	resp, err := s.paymentLinkSvc.ValidatePaymentLink(c.Request.Context(), c.Param("token"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/providers/pdf"
	quotedomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/quote/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) CalculateQuote(c *gin.Context) {
	var req quotedomain.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quoteEngine.CalculateQuote(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateGuestQuote(c *gin.Context) {
	var req quotedomain.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quoteSvc.CreateGuestQuote(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetQuote(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.quoteSvc.GetQuote(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetQuotePDF(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	q, err := s.quoteSvc.GetQuote(ctx, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc := pdf.NewQuoteDocument(*q, strings.TrimSpace(c.Query("client_name")))
	body, err := s.pdfProvider.RenderQuote(ctx, doc)
	if err != nil {
		s.log.Error("render quote pdf", zap.String("quote_id", id.String()), zap.Error(err))
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="quote-%s.pdf"`, id.String()))
	c.Data(http.StatusOK, "application/pdf", body)
}

package server

import (
	"net/http"
	"strings"

	leaddomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/lead/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateLead(c *gin.Context) {
	var req leaddomain.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ClientEmail = strings.TrimSpace(req.ClientEmail)

	resp, err := s.leadSvc.CreateLead(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetLead(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.leadSvc.GetLead(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AutoAssignLead(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.leadSvc.AutoAssignLead(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type assignLeadRequest struct {
	RepID snowflake.ID `json:"rep_id" validate:"required"`
}

func (s *Server) AssignLead(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req assignLeadRequest
	if err := s.bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.leadSvc.ManuallyAssignLead(c.Request.Context(), id, req.RepID, actorFromRequest(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateLeadStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (s *Server) UpdateLeadStatus(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateLeadStatusRequest
	if err := s.bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.leadSvc.UpdateStatus(c.Request.Context(), id, strings.TrimSpace(req.Status), actorFromRequest(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListLeadActivities(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.leadSvc.ListActivities(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type createSalesRepRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	SortOrder int    `json:"sort_order" validate:"gte=0"`
}

func (s *Server) CreateSalesRep(c *gin.Context) {
	var req createSalesRepRequest
	if err := s.bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.leadSvc.CreateRep(c.Request.Context(), leaddomain.CreateRepRequest{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		SortOrder: req.SortOrder,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

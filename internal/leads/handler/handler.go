// Package handler exposes the leads API over HTTP.
package handler

import (
	"net/http"

	"removals_crm_backend/internal/leads/service"
	"removals_crm_backend/internal/leads/transport"
	"removals_crm_backend/platform/apperr"
	"removals_crm_backend/platform/httpkit"
	"removals_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	service *service.Service
	val     *validator.Validator
}

func New(service *service.Service, val *validator.Validator) *Handler {
	return &Handler{service: service, val: val}
}

// RegisterRoutes mounts lead routes on the given group.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("", h.HandleList)
	group.GET("/:leadId", h.HandleGet)
	group.GET("/:leadId/activities", h.HandleActivities)
	group.POST("/:leadId/accept", h.HandleAccept)
	group.POST("/:leadId/reject", h.HandleReject)
}

func (h *Handler) leadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid lead ID"))
		return uuid.Nil, false
	}
	return id, true
}

// HandleList lists leads with optional status/owner filters.
// GET /api/v1/leads
func (h *Handler) HandleList(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid query parameters"))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	resp, err := h.service.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleGet retrieves one lead.
// GET /api/v1/leads/:leadId
func (h *Handler) HandleGet(c *gin.Context) {
	leadID, ok := h.leadID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleActivities returns a lead's activity trail.
// GET /api/v1/leads/:leadId/activities
func (h *Handler) HandleActivities(c *gin.Context) {
	leadID, ok := h.leadID(c)
	if !ok {
		return
	}

	resp, err := h.service.Activities(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleAccept accepts a pending lead.
// POST /api/v1/leads/:leadId/accept
func (h *Handler) HandleAccept(c *gin.Context) {
	leadID, ok := h.leadID(c)
	if !ok {
		return
	}

	var req transport.AcceptLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	resp, err := h.service.Accept(c.Request.Context(), leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleReject rejects a pending lead.
// POST /api/v1/leads/:leadId/reject
func (h *Handler) HandleReject(c *gin.Context) {
	leadID, ok := h.leadID(c)
	if !ok {
		return
	}

	var req transport.RejectLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	resp, err := h.service.Reject(c.Request.Context(), leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, resp)
}

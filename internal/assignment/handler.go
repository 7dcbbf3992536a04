package assignment

import (
	"net/http"

	"removals_crm_backend/internal/leads/domain"
	"removals_crm_backend/platform/apperr"
	"removals_crm_backend/platform/httpkit"
	"removals_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles assignment HTTP requests.
type Handler struct {
	engine *Engine
	rules  *RuleStore
	val    *validator.Validator
}

// NewHandler creates a new assignment handler.
func NewHandler(engine *Engine, rules *RuleStore, val *validator.Validator) *Handler {
	return &Handler{engine: engine, rules: rules, val: val}
}

// RuleRequest is the body for creating or updating a rule.
type RuleRequest struct {
	Name             string    `json:"name" validate:"required,min=1,max=100"`
	Priority         int       `json:"priority" validate:"min=0,max=1000"`
	Sources          []string  `json:"sources,omitempty" validate:"max=10,dive,oneof=COMPAREMYMOVE REALLYMOVING GETAMOVER WEBSITE UNKNOWN"`
	PostcodePrefixes []string  `json:"postcodePrefixes,omitempty" validate:"max=50,dive,min=1,max=8"`
	MinBedrooms      *int      `json:"minBedrooms,omitempty" validate:"omitempty,min=0,max=20"`
	MaxBedrooms      *int      `json:"maxBedrooms,omitempty" validate:"omitempty,min=0,max=20"`
	TargetStaffID    uuid.UUID `json:"targetStaffId" validate:"required"`
	Enabled          bool      `json:"enabled"`
}

func (r RuleRequest) toRule() Rule {
	sources := make([]domain.Source, len(r.Sources))
	for i, s := range r.Sources {
		sources[i] = domain.Source(s)
	}
	return Rule{
		Name:             r.Name,
		Priority:         r.Priority,
		Sources:          sources,
		PostcodePrefixes: r.PostcodePrefixes,
		MinBedrooms:      r.MinBedrooms,
		MaxBedrooms:      r.MaxBedrooms,
		TargetStaffID:    r.TargetStaffID,
		Enabled:          r.Enabled,
	}
}

func (h *Handler) bindRule(c *gin.Context) (Rule, bool) {
	var req RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return Rule{}, false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return Rule{}, false
	}
	if req.MinBedrooms != nil && req.MaxBedrooms != nil && *req.MinBedrooms > *req.MaxBedrooms {
		httpkit.HandleError(c, apperr.Validation("minBedrooms cannot exceed maxBedrooms"))
		return Rule{}, false
	}
	return req.toRule(), true
}

// HandleListRules lists rules in priority order.
// GET /api/v1/assignment/rules
func (h *Handler) HandleListRules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.rules.List()})
}

// HandleCreateRule creates a rule.
// POST /api/v1/assignment/rules
func (h *Handler) HandleCreateRule(c *gin.Context) {
	rule, ok := h.bindRule(c)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, h.rules.Create(rule))
}

// HandleUpdateRule replaces a rule.
// PUT /api/v1/assignment/rules/:ruleId
func (h *Handler) HandleUpdateRule(c *gin.Context) {
	ruleID, err := uuid.Parse(c.Param("ruleId"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid rule ID"))
		return
	}

	rule, ok := h.bindRule(c)
	if !ok {
		return
	}

	updated, err := h.rules.Update(ruleID, rule)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, updated)
}

// HandleDeleteRule removes a rule.
// DELETE /api/v1/assignment/rules/:ruleId
func (h *Handler) HandleDeleteRule(c *gin.Context) {
	ruleID, err := uuid.Parse(c.Param("ruleId"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid rule ID"))
		return
	}
	if err := h.rules.Delete(ruleID); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleAssign runs automatic assignment for one lead.
// POST /api/v1/assignment/leads/:leadId/assign
func (h *Handler) HandleAssign(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid lead ID"))
		return
	}

	result, err := h.engine.AssignLead(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, result)
}

// ManualAssignRequest names the staff member to hand the lead to, and
// optionally who is doing the handing.
type ManualAssignRequest struct {
	StaffID      uuid.UUID  `json:"staffId" validate:"required"`
	ActingUserID *uuid.UUID `json:"actingUserId,omitempty"`
}

// HandleManualAssign sets a lead's owner directly.
// PUT /api/v1/assignment/leads/:leadId/owner
func (h *Handler) HandleManualAssign(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid lead ID"))
		return
	}

	var req ManualAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	result, err := h.engine.ManualAssign(c.Request.Context(), leadID, req.StaffID, req.ActingUserID)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleWorkload returns the per-staff workload report.
// GET /api/v1/assignment/workload
func (h *Handler) HandleWorkload(c *gin.Context) {
	entries, err := h.engine.StaffWorkload(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

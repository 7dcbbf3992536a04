package ingest

import (
	"net/http"

	"removals_crm_backend/platform/apperr"
	"removals_crm_backend/platform/httpkit"
	"removals_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles ingestion HTTP requests.
type Handler struct {
	service *Service
	val     *validator.Validator
}

// NewHandler creates a new ingestion handler.
func NewHandler(service *Service, val *validator.Validator) *Handler {
	return &Handler{service: service, val: val}
}

// HandleRun sweeps the unlinked message backlog.
// POST /api/v1/ingest/run
func (h *Handler) HandleRun(c *gin.Context) {
	summary, err := h.service.ProcessBacklog(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, summary)
}

// PreviewRequest is a sample message to run extraction against.
type PreviewRequest struct {
	SenderAddress string `json:"senderAddress" validate:"required,max=320"`
	Subject       string `json:"subject" validate:"max=1000"`
	PlainBody     string `json:"plainBody" validate:"max=100000"`
	HTMLBody      string `json:"htmlBody" validate:"max=500000"`
}

// HandlePreview dry-runs extraction against a sample message.
// POST /api/v1/ingest/preview
func (h *Handler) HandlePreview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	result := h.service.Preview(req.SenderAddress, req.Subject, req.PlainBody, req.HTMLBody)
	c.JSON(http.StatusOK, result)
}

// HandleProcessMessage reprocesses a single message by ID.
// POST /api/v1/ingest/messages/:messageId/process
func (h *Handler) HandleProcessMessage(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("messageId"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid message ID"))
		return
	}

	result, err := h.service.ProcessSingleMessage(c.Request.Context(), messageID)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, result)
}

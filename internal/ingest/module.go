// Package ingest module wiring and route registration.
package ingest

import (
	"removals_crm_backend/internal/events"
	apphttp "removals_crm_backend/internal/http"
	"removals_crm_backend/internal/leads/repository"
	"removals_crm_backend/internal/mailbox"
	"removals_crm_backend/platform/logger"
	"removals_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the ingestion bounded context implementing http.Module.
type Module struct {
	service *Service
	handler *Handler
}

// NewModule wires the ingestion pipeline: extractor registry, mailbox store,
// leads repository and the orchestrating service.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger, batchSize int) *Module {
	registry := NewRegistry()
	messages := mailbox.New(pool)
	leadsRepo := repository.New(pool)
	service := NewService(registry, messages, leadsRepo, bus, log, batchSize)
	handler := NewHandler(service, val)

	return &Module{service: service, handler: handler}
}

// Service exposes the orchestrator for non-HTTP callers (the scheduler).
func (m *Module) Service() *Service {
	return m.service
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "ingest"
}

// RegisterRoutes mounts ingestion routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/ingest")
	group.POST("/run", m.handler.HandleRun)
	group.POST("/preview", ctx.RateLimiter.RateLimit(), m.handler.HandlePreview)
	group.POST("/messages/:messageId/process", m.handler.HandleProcessMessage)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)

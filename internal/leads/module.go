// Package leads wires the lead lifecycle bounded context.
package leads

import (
	"removals_crm_backend/internal/events"
	apphttp "removals_crm_backend/internal/http"
	"removals_crm_backend/internal/leads/handler"
	"removals_crm_backend/internal/leads/repository"
	"removals_crm_backend/internal/leads/service"
	"removals_crm_backend/platform/logger"
	"removals_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the leads module.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, log)

	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// RegisterRoutes mounts lead routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/leads"))
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)

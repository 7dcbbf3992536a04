package assignment

import (
	"context"
	"fmt"

	"removals_crm_backend/internal/events"
	apphttp "removals_crm_backend/internal/http"
	"removals_crm_backend/internal/leads/repository"
	"removals_crm_backend/platform/logger"
	"removals_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the assignment bounded context implementing http.Module.
type Module struct {
	engine  *Engine
	handler *Handler
}

// NewModule wires the assignment engine and subscribes it to lead
// acceptance, so accepted leads get an owner without the caller asking.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	rules := NewRuleStore()
	engine := NewEngine(repo, rules, bus, log)
	handler := NewHandler(engine, rules, val)

	bus.Subscribe(events.LeadAccepted{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		accepted, ok := event.(events.LeadAccepted)
		if !ok {
			return fmt.Errorf("unexpected event type %T", event)
		}
		_, err := engine.AssignLead(ctx, accepted.LeadID)
		return err
	}))

	return &Module{engine: engine, handler: handler}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "assignment"
}

// RegisterRoutes mounts assignment routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/assignment")

	rules := group.Group("/rules")
	rules.GET("", m.handler.HandleListRules)
	rules.POST("", m.handler.HandleCreateRule)
	rules.PUT("/:ruleId", m.handler.HandleUpdateRule)
	rules.DELETE("/:ruleId", m.handler.HandleDeleteRule)

	group.POST("/leads/:leadId/assign", m.handler.HandleAssign)
	group.PUT("/leads/:leadId/owner", m.handler.HandleManualAssign)
	group.GET("/workload", m.handler.HandleWorkload)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)

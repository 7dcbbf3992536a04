package assignment

import (
	"context"
	"errors"

	"removals_crm_backend/internal/events"
	"removals_crm_backend/internal/leads/domain"
	"removals_crm_backend/internal/leads/repository"
	"removals_crm_backend/platform/apperr"
	"removals_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// LeadStore combines the repository capabilities the engine needs.
type LeadStore interface {
	repository.LeadReader
	repository.LeadWriter
	repository.ActivityLogger
	repository.WorkloadReader
	repository.StaffReader
}

// AssignmentResult reports one assignment decision.
type AssignmentResult struct {
	LeadID        uuid.UUID  `json:"leadId"`
	AssignedTo    *uuid.UUID `json:"assignedTo,omitempty"`
	PreviousOwner *uuid.UUID `json:"previousOwner,omitempty"`
	Reason        string     `json:"reason"` // "rule", "round_robin", "manual", "already_assigned"
	RuleID        *uuid.UUID `json:"ruleId,omitempty"`
	RuleName      string     `json:"ruleName,omitempty"`
}

// StaffWorkloadEntry is one row of the workload report.
type StaffWorkloadEntry struct {
	StaffID    uuid.UUID `json:"staffId"`
	Name       string    `json:"name"`
	NewLeads   int       `json:"newLeads"`
	TotalLeads int       `json:"totalLeads"`
}

// Engine assigns owners to leads.
type Engine struct {
	repo  LeadStore
	rules *RuleStore
	bus   events.Bus
	log   *logger.Logger
}

func NewEngine(repo LeadStore, rules *RuleStore, bus events.Bus, log *logger.Logger) *Engine {
	return &Engine{repo: repo, rules: rules, bus: bus, log: log}
}

// AssignLead picks an owner for an unassigned lead. An already-assigned
// lead is left untouched. Rules are consulted in priority order; the first
// enabled rule whose conditions hold and whose target is an active staff
// member wins. With no rule match the lead goes to the active staff member
// carrying the fewest NEW leads, ties broken alphabetically by name.
func (e *Engine) AssignLead(ctx context.Context, leadID uuid.UUID) (AssignmentResult, error) {
	lead, err := e.repo.GetByID(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return AssignmentResult{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return AssignmentResult{}, err
	}

	if lead.AssignedTo != nil {
		return AssignmentResult{LeadID: leadID, AssignedTo: lead.AssignedTo, Reason: "already_assigned"}, nil
	}

	if result, ok, err := e.assignByRule(ctx, lead); err != nil || ok {
		return result, err
	}

	return e.assignRoundRobin(ctx, lead)
}

func (e *Engine) assignByRule(ctx context.Context, lead repository.Lead) (AssignmentResult, bool, error) {
	for _, rule := range e.rules.List() {
		if !rule.Enabled || !rule.Matches(lead) {
			continue
		}

		staff, err := e.repo.GetStaff(ctx, rule.TargetStaffID)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && !staff.IsActive) {
			// Misconfigured rule. Skip it rather than fail the assignment.
			e.log.Warn("assignment rule target unavailable, skipping rule",
				"ruleId", rule.ID, "ruleName", rule.Name, "targetStaffId", rule.TargetStaffID)
			continue
		}
		if err != nil {
			return AssignmentResult{}, false, err
		}

		ruleID := rule.ID
		result, err := e.assign(ctx, lead, staff, "rule", map[string]any{
			"ruleId":   rule.ID.String(),
			"ruleName": rule.Name,
		})
		if err != nil {
			return AssignmentResult{}, false, err
		}
		result.RuleID = &ruleID
		result.RuleName = rule.Name
		return result, true, nil
	}
	return AssignmentResult{}, false, nil
}

// assignRoundRobin balances load by NEW-lead count. Counts are read once
// per invocation so one consistent snapshot decides the winner.
func (e *Engine) assignRoundRobin(ctx context.Context, lead repository.Lead) (AssignmentResult, error) {
	staff, err := e.repo.FindActiveStaff(ctx)
	if err != nil {
		return AssignmentResult{}, err
	}
	if len(staff) == 0 {
		return AssignmentResult{}, apperr.Conflict("no active staff available for assignment")
	}

	// Staff come back ordered by name, so scanning with a strict less-than
	// keeps the alphabetical tie-break.
	best := staff[0]
	bestCount, err := e.repo.CountByOwnerAndStatus(ctx, best.ID, domain.StatusNew)
	if err != nil {
		return AssignmentResult{}, err
	}
	for _, candidate := range staff[1:] {
		count, err := e.repo.CountByOwnerAndStatus(ctx, candidate.ID, domain.StatusNew)
		if err != nil {
			return AssignmentResult{}, err
		}
		if count < bestCount {
			best = candidate
			bestCount = count
		}
	}

	return e.assign(ctx, lead, best, "round_robin", map[string]any{
		"newLeadCount": bestCount,
	})
}

// ManualAssign sets the owner regardless of current assignment.
// actingUserID, when known, records who performed the reassignment.
func (e *Engine) ManualAssign(ctx context.Context, leadID, staffID uuid.UUID, actingUserID *uuid.UUID) (AssignmentResult, error) {
	lead, err := e.repo.GetByID(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return AssignmentResult{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return AssignmentResult{}, err
	}

	staff, err := e.repo.GetStaff(ctx, staffID)
	if errors.Is(err, repository.ErrNotFound) {
		return AssignmentResult{}, apperr.NotFound("staff member not found")
	}
	if err != nil {
		return AssignmentResult{}, err
	}
	if !staff.IsActive {
		return AssignmentResult{}, apperr.Validation("cannot assign lead to inactive staff member")
	}

	metadata := map[string]any{}
	if lead.AssignedTo != nil {
		metadata["previousOwner"] = lead.AssignedTo.String()
	}
	if actingUserID != nil {
		metadata["assignedBy"] = actingUserID.String()
	}
	return e.assign(ctx, lead, staff, "manual", metadata)
}

func (e *Engine) assign(ctx context.Context, lead repository.Lead, staff repository.Staff, reason string, metadata map[string]any) (AssignmentResult, error) {
	previous := lead.AssignedTo
	ownerID := staff.ID

	if _, err := e.repo.SetOwner(ctx, lead.ID, &ownerID); err != nil {
		return AssignmentResult{}, err
	}

	description := "Lead assigned to " + staff.Name
	if previous != nil {
		description = "Lead reassigned to " + staff.Name
	}

	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["reason"] = reason
	metadata["staffId"] = staff.ID.String()

	if _, err := e.repo.CreateActivity(ctx, repository.CreateActivityParams{
		LeadID:      lead.ID,
		Description: description,
		Metadata:    metadata,
	}); err != nil {
		e.log.Error("failed to record assignment activity", "leadId", lead.ID, "error", err)
	}

	e.bus.Publish(ctx, events.LeadAssigned{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        lead.ID,
		PreviousOwner: previous,
		NewOwner:      ownerID,
		Reason:        reason,
	})

	return AssignmentResult{
		LeadID:        lead.ID,
		AssignedTo:    &ownerID,
		PreviousOwner: previous,
		Reason:        reason,
	}, nil
}

// StaffWorkload reports per-staff lead counts, active staff only, ordered
// by name.
func (e *Engine) StaffWorkload(ctx context.Context) ([]StaffWorkloadEntry, error) {
	staff, err := e.repo.FindActiveStaff(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]StaffWorkloadEntry, 0, len(staff))
	for _, member := range staff {
		newCount, err := e.repo.CountByOwnerAndStatus(ctx, member.ID, domain.StatusNew)
		if err != nil {
			return nil, err
		}
		total, err := e.repo.CountByOwner(ctx, member.ID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, StaffWorkloadEntry{
			StaffID:    member.ID,
			Name:       member.Name,
			NewLeads:   newCount,
			TotalLeads: total,
		})
	}
	return entries, nil
}

// Package service implements the lead review lifecycle: pending leads are
// accepted into the pipeline or rejected.
package service

import (
	"context"
	"errors"
	"fmt"

	"removals_crm_backend/internal/events"
	"removals_crm_backend/internal/leads/domain"
	"removals_crm_backend/internal/leads/repository"
	"removals_crm_backend/internal/leads/transport"
	"removals_crm_backend/platform/apperr"
	"removals_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// Store combines the repository capabilities the lifecycle service needs.
type Store interface {
	repository.LeadReader
	repository.LeadWriter
	repository.ActivityLogger
}

type Service struct {
	repo Store
	bus  events.Bus
	log  *logger.Logger
}

func New(repo Store, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// Accept moves a pending lead into the pipeline and publishes LeadAccepted,
// which triggers ownership assignment.
func (s *Service) Accept(ctx context.Context, leadID uuid.UUID, req transport.AcceptLeadRequest) (transport.LeadResponse, error) {
	lead, err := s.transition(ctx, leadID, domain.StatusNew)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	if _, err := s.repo.CreateActivity(ctx, repository.CreateActivityParams{
		LeadID:      leadID,
		Description: "Lead accepted",
		Metadata:    map[string]any{"acceptedBy": req.AcceptedBy.String()},
	}); err != nil {
		s.log.Error("failed to record accept activity", "leadId", leadID, "error", err)
	}

	s.bus.Publish(ctx, events.LeadAccepted{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     leadID,
		AcceptedBy: req.AcceptedBy,
	})

	return transport.ToLeadResponse(lead), nil
}

// Reject marks a pending lead as rejected. Terminal.
func (s *Service) Reject(ctx context.Context, leadID uuid.UUID, req transport.RejectLeadRequest) (transport.LeadResponse, error) {
	lead, err := s.transition(ctx, leadID, domain.StatusRejected)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	metadata := map[string]any{"rejectedBy": req.RejectedBy.String()}
	if req.Reason != "" {
		metadata["reason"] = req.Reason
	}
	if _, err := s.repo.CreateActivity(ctx, repository.CreateActivityParams{
		LeadID:      leadID,
		Description: "Lead rejected",
		Metadata:    metadata,
	}); err != nil {
		s.log.Error("failed to record reject activity", "leadId", leadID, "error", err)
	}

	return transport.ToLeadResponse(lead), nil
}

func (s *Service) transition(ctx context.Context, leadID uuid.UUID, target domain.Status) (repository.Lead, error) {
	lead, err := s.repo.GetByID(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return repository.Lead{}, err
	}

	if !lead.Status.CanTransition(target) {
		return repository.Lead{}, apperr.Conflict(fmt.Sprintf("cannot move lead from %s to %s", lead.Status, target))
	}

	return s.repo.UpdateStatus(ctx, leadID, target)
}

// GetByID retrieves a single lead.
func (s *Service) GetByID(ctx context.Context, leadID uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.LeadResponse{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return transport.ToLeadResponse(lead), nil
}

// List returns leads matching the filter.
func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	params := repository.ListParams{}

	if req.Status != "" {
		status := domain.Status(req.Status)
		params.Status = &status
	}
	if req.AssignedTo != "" {
		ownerID, err := uuid.Parse(req.AssignedTo)
		if err != nil {
			return transport.LeadListResponse{}, apperr.BadRequest("invalid assignedTo")
		}
		params.AssignedTo = &ownerID
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	params.Limit = pageSize
	params.Offset = (page - 1) * pageSize

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.LeadResponse, len(leads))
	for i, lead := range leads {
		items[i] = transport.ToLeadResponse(lead)
	}

	return transport.LeadListResponse{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Activities returns a lead's activity trail, oldest first.
func (s *Service) Activities(ctx context.Context, leadID uuid.UUID) (transport.ActivityListResponse, error) {
	if _, err := s.repo.GetByID(ctx, leadID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ActivityListResponse{}, apperr.NotFound("lead not found")
		}
		return transport.ActivityListResponse{}, err
	}

	activities, err := s.repo.ListActivities(ctx, leadID)
	if err != nil {
		return transport.ActivityListResponse{}, err
	}

	items := make([]transport.ActivityResponse, len(activities))
	for i, a := range activities {
		items[i] = transport.ToActivityResponse(a)
	}
	return transport.ActivityListResponse{Items: items}, nil
}

package repository

import (
	"context"

	"removals_crm_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Lead, error)
	FindByEmail(ctx context.Context, email string) (*Lead, error)
	FindByPhone(ctx context.Context, phone string) (*Lead, error)
	List(ctx context.Context, params ListParams) ([]Lead, int, error)
}

// LeadWriter provides write operations for lead management.
type LeadWriter interface {
	Create(ctx context.Context, params CreateLeadParams) (Lead, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (Lead, error)
	SetOwner(ctx context.Context, id uuid.UUID, ownerID *uuid.UUID) (Lead, error)
}

// ActivityLogger records the immutable activity/audit trail on leads.
type ActivityLogger interface {
	CreateActivity(ctx context.Context, params CreateActivityParams) (Activity, error)
	ListActivities(ctx context.Context, leadID uuid.UUID) ([]Activity, error)
}

// WorkloadReader exposes per-owner lead counts for the assignment engine.
type WorkloadReader interface {
	CountByOwnerAndStatus(ctx context.Context, ownerID uuid.UUID, status domain.Status) (int, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error)
}

// StaffReader provides access to staff members who can own leads.
type StaffReader interface {
	FindActiveStaff(ctx context.Context) ([]Staff, error)
	GetStaff(ctx context.Context, id uuid.UUID) (Staff, error)
}

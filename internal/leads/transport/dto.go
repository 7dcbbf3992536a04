// Package transport defines the request and response DTOs for the leads API.
package transport

import (
	"time"

	"removals_crm_backend/internal/leads/repository"

	"github.com/google/uuid"
)

// Request DTOs

type AcceptLeadRequest struct {
	AcceptedBy uuid.UUID `json:"acceptedBy" validate:"required"`
}

type RejectLeadRequest struct {
	RejectedBy uuid.UUID `json:"rejectedBy" validate:"required"`
	Reason     string    `json:"reason,omitempty" validate:"max=500"`
}

type ListLeadsRequest struct {
	Status     string `form:"status" validate:"omitempty,oneof=PENDING NEW REJECTED"`
	AssignedTo string `form:"assignedTo" validate:"omitempty,uuid"`
	Page       int    `form:"page" validate:"omitempty,min=1"`
	PageSize   int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// Response DTOs

type LeadResponse struct {
	ID            uuid.UUID  `json:"id"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	Email         *string    `json:"email,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	Source        string     `json:"source"`
	ExternalRef   string     `json:"externalRef,omitempty"`
	Status        string     `json:"status"`
	ContactStatus string     `json:"contactStatus"`
	MoveDate      *time.Time `json:"moveDate,omitempty"`
	FromAddress   string     `json:"fromAddress,omitempty"`
	FromPostcode  string     `json:"fromPostcode,omitempty"`
	ToAddress     string     `json:"toAddress,omitempty"`
	ToPostcode    string     `json:"toPostcode,omitempty"`
	PropertyType  string     `json:"propertyType,omitempty"`
	Bedrooms      *int       `json:"bedrooms,omitempty"`
	DistanceMiles *float64   `json:"distanceMiles,omitempty"`
	NeedsPacking  bool       `json:"needsPacking"`
	NeedsStorage  bool       `json:"needsStorage"`
	Notes         string     `json:"notes,omitempty"`
	AssignedTo    *uuid.UUID `json:"assignedTo,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type LeadListResponse struct {
	Items    []LeadResponse `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

type ActivityResponse struct {
	ID          uuid.UUID      `json:"id"`
	LeadID      uuid.UUID      `json:"leadId"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

type ActivityListResponse struct {
	Items []ActivityResponse `json:"items"`
}

// ToLeadResponse maps a repository lead onto the wire shape.
func ToLeadResponse(lead repository.Lead) LeadResponse {
	return LeadResponse{
		ID:            lead.ID,
		FirstName:     lead.FirstName,
		LastName:      lead.LastName,
		Email:         lead.Email,
		Phone:         lead.Phone,
		Source:        string(lead.Source),
		ExternalRef:   lead.ExternalRef,
		Status:        string(lead.Status),
		ContactStatus: string(lead.ContactStatus),
		MoveDate:      lead.MoveDate,
		FromAddress:   lead.FromAddress,
		FromPostcode:  lead.FromPostcode,
		ToAddress:     lead.ToAddress,
		ToPostcode:    lead.ToPostcode,
		PropertyType:  lead.PropertyType,
		Bedrooms:      lead.Bedrooms,
		DistanceMiles: lead.DistanceMiles,
		NeedsPacking:  lead.NeedsPacking,
		NeedsStorage:  lead.NeedsStorage,
		Notes:         lead.Notes,
		AssignedTo:    lead.AssignedTo,
		CreatedAt:     lead.CreatedAt,
		UpdatedAt:     lead.UpdatedAt,
	}
}

// ToActivityResponse maps a repository activity onto the wire shape.
func ToActivityResponse(a repository.Activity) ActivityResponse {
	return ActivityResponse{
		ID:          a.ID,
		LeadID:      a.LeadID,
		Description: a.Description,
		Metadata:    a.Metadata,
		CreatedAt:   a.CreatedAt,
	}
}

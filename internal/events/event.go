// Package events defines the domain events the modules exchange and
// re-exports the platform bus so they can import a single package.
package events

import (
	"removals_crm_backend/platform/events"
	"removals_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// Platform re-exports.
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates the process-wide event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Ingestion Domain Events
// =============================================================================

// LeadCreated is published when the ingestion pipeline creates a new lead
// from an inbound message.
type LeadCreated struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	MessageID uuid.UUID `json:"messageId"`
	Source    string    `json:"source"`
	Email     string    `json:"email,omitempty"`
}

func (e LeadCreated) EventName() string { return "ingest.lead.created" }

// MessageLinked is published when an inbound message is linked to an
// already-existing lead (deduplication hit or sender-address match).
type MessageLinked struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	MessageID uuid.UUID `json:"messageId"`
	Reason    string    `json:"reason"` // "email_match", "phone_match", "sender_match"
}

func (e MessageLinked) EventName() string { return "ingest.message.linked" }

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadAccepted is published when staff accepts a pending lead.
// The assignment module subscribes to this to run ownership assignment.
type LeadAccepted struct {
	BaseEvent
	LeadID     uuid.UUID `json:"leadId"`
	AcceptedBy uuid.UUID `json:"acceptedBy"`
}

func (e LeadAccepted) EventName() string { return "leads.accepted" }

// LeadAssigned is published when a lead is assigned to a staff member.
type LeadAssigned struct {
	BaseEvent
	LeadID        uuid.UUID  `json:"leadId"`
	PreviousOwner *uuid.UUID `json:"previousOwner,omitempty"`
	NewOwner      uuid.UUID  `json:"newOwner"`
	Reason        string     `json:"reason"` // "rule", "round_robin", "manual"
}

func (e LeadAssigned) EventName() string { return "leads.assigned" }

// Package ingest implements the lead ingestion pipeline: source-specific
// extraction of inbound partner emails, deduplication against existing
// leads and creation of new pending leads.
package ingest

import (
	"time"

	"removals_crm_backend/internal/leads/domain"
)

// Candidate is the transient result of extracting one inbound message.
// Every field is optional; a sparsely populated candidate is a normal
// extraction outcome, not a failure. Candidates are never persisted as-is.
type Candidate struct {
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	Source        domain.Source
	ExternalRef   string
	MoveDate      *time.Time
	FromAddress   string
	FromPostcode  string
	ToAddress     string
	ToPostcode    string
	PropertyType  string
	Bedrooms      *int
	DistanceMiles *float64
	NeedsPacking  bool
	NeedsStorage  bool
	Notes         string
}

// HasContact reports whether the candidate carries at least one
// deduplication key.
func (c Candidate) HasContact() bool {
	return c.Email != "" || c.Phone != ""
}

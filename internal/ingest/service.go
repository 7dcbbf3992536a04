package ingest

import (
	"context"
	"errors"
	"fmt"

	"removals_crm_backend/internal/events"
	"removals_crm_backend/internal/leads/domain"
	"removals_crm_backend/internal/leads/repository"
	"removals_crm_backend/internal/mailbox"
	"removals_crm_backend/platform/apperr"
	"removals_crm_backend/platform/logger"
	"removals_crm_backend/platform/phone"

	"github.com/google/uuid"
)

// LeadStore is the persistence contract the orchestrator consumes.
// Satisfied by the leads repository.
type LeadStore interface {
	FindByEmail(ctx context.Context, email string) (*repository.Lead, error)
	FindByPhone(ctx context.Context, phoneNumber string) (*repository.Lead, error)
	Create(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error)
	CreateActivity(ctx context.Context, params repository.CreateActivityParams) (repository.Activity, error)
}

// Summary reports one backlog sweep to the operator.
type Summary struct {
	Processed    int           `json:"processed"`
	LeadsCreated int           `json:"leadsCreated"`
	Skipped      int           `json:"skipped"`
	Errors       []string      `json:"errors"`
	Leads        []CreatedLead `json:"leads"`
}

// CreatedLead identifies a lead created during a sweep.
type CreatedLead struct {
	ID     uuid.UUID `json:"id"`
	Email  string    `json:"email"`
	Source string    `json:"source"`
}

// MessageResult is the outcome of processing one message on the manual
// retry path. Source carries the coarse classification for messages that
// were already linked, where extraction does not run again.
type MessageResult struct {
	Success bool       `json:"success"`
	LeadID  *uuid.UUID `json:"leadId,omitempty"`
	Source  string     `json:"source,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// PreviewResult is a dry run of extraction against a sample message.
// Nothing is persisted.
type PreviewResult struct {
	ParserFound bool       `json:"parserFound"`
	ParserName  string     `json:"parserName,omitempty"`
	Result      *Candidate `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Service is the ingestion orchestrator: it turns the backlog of unlinked
// inbound messages into linked or newly created leads, without ever losing
// a message or duplicating a customer.
type Service struct {
	registry  *Registry
	messages  mailbox.Store
	leads     LeadStore
	bus       events.Bus
	log       *logger.Logger
	batchSize int
}

// NewService creates the ingestion orchestrator.
func NewService(registry *Registry, messages mailbox.Store, leads LeadStore, bus events.Bus, log *logger.Logger, batchSize int) *Service {
	if batchSize < 1 {
		batchSize = 100
	}
	return &Service{
		registry:  registry,
		messages:  messages,
		leads:     leads,
		bus:       bus,
		log:       log,
		batchSize: batchSize,
	}
}

type outcome int

const (
	outcomeCreated outcome = iota
	outcomeLinked
	outcomeSkipped
	outcomeFailed
)

type messageOutcome struct {
	kind   outcome
	leadID *uuid.UUID
	err    string
	lead   *CreatedLead
}

// ProcessBacklog sweeps up to the batch cap of unlinked messages, oldest
// first. Messages are processed sequentially and independently: a failure
// is recorded in the summary and the message stays unlinked for the next
// run. Only a failure to fetch the backlog at all propagates as an error.
func (s *Service) ProcessBacklog(ctx context.Context) (Summary, error) {
	messages, err := s.messages.ListUnlinked(ctx, s.batchSize)
	if err != nil {
		return Summary{}, fmt.Errorf("fetch unlinked messages: %w", err)
	}

	summary := Summary{Errors: []string{}, Leads: []CreatedLead{}}
	for _, msg := range messages {
		summary.Processed++

		res := s.processMessage(ctx, msg)
		switch res.kind {
		case outcomeCreated:
			summary.LeadsCreated++
			if res.lead != nil {
				summary.Leads = append(summary.Leads, *res.lead)
			}
		case outcomeSkipped:
			summary.Skipped++
		case outcomeFailed:
			summary.Errors = append(summary.Errors, res.err)
		}
	}

	s.log.IngestRun(summary.Processed, summary.LeadsCreated, summary.Skipped, len(summary.Errors))
	return summary, nil
}

// ProcessSingleMessage runs the same pipeline for one message, for manual
// retry. Reprocessing an already-linked message is a no-op that reports
// the existing link.
func (s *Service) ProcessSingleMessage(ctx context.Context, messageID uuid.UUID) (MessageResult, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if errors.Is(err, mailbox.ErrNotFound) {
		return MessageResult{}, apperr.NotFound("message not found")
	}
	if err != nil {
		return MessageResult{}, err
	}

	if msg.LeadID != nil {
		return MessageResult{
			Success: true,
			LeadID:  msg.LeadID,
			Source:  string(s.registry.DetectSource(msg.SenderAddress, msg.Subject)),
		}, nil
	}

	res := s.processMessage(ctx, msg)
	switch res.kind {
	case outcomeCreated, outcomeLinked:
		return MessageResult{Success: true, LeadID: res.leadID}, nil
	case outcomeSkipped:
		return MessageResult{Success: false, Error: "no extractor matched and sender is not a known lead"}, nil
	default:
		return MessageResult{Success: false, Error: res.err}, nil
	}
}

// Preview runs detection and extraction against a sample message without
// touching persistence. Used to validate an extractor before trusting it
// in the batch run.
func (s *Service) Preview(senderAddress, subject, plainBody, htmlBody string) PreviewResult {
	ex, ok := s.registry.Detect(senderAddress, subject)
	if !ok {
		return PreviewResult{ParserFound: false}
	}

	candidate, err := ex.Extract(subject, plainBody, htmlBody)
	if err != nil {
		return PreviewResult{ParserFound: true, ParserName: ex.Name(), Error: err.Error()}
	}
	return PreviewResult{ParserFound: true, ParserName: ex.Name(), Result: &candidate}
}

func (s *Service) processMessage(ctx context.Context, msg mailbox.Message) messageOutcome {
	htmlBody := ""
	if msg.HTMLBody != nil {
		htmlBody = *msg.HTMLBody
	}

	candidate, parserName, err := s.registry.Parse(msg.SenderAddress, msg.Subject, msg.PlainBody, htmlBody)
	if errors.Is(err, ErrNoParser) {
		return s.linkBySender(ctx, msg)
	}
	if err != nil {
		s.log.Warn("extraction failed", "messageId", msg.ID, "parser", parserName, "error", err)
		return messageOutcome{kind: outcomeFailed, err: fmt.Sprintf("message %s: %v", msg.ID, err)}
	}

	candidate.Phone = phone.NormalizeE164(candidate.Phone)

	// A candidate without any dedup key cannot match an existing lead.
	if !candidate.HasContact() {
		return s.createLead(ctx, msg, candidate, parserName)
	}

	// Deduplication: email is the stronger key and is checked first; a
	// conflicting phone match on a different lead never overrides it.
	if candidate.Email != "" {
		existing, err := s.leads.FindByEmail(ctx, candidate.Email)
		if err != nil {
			return messageOutcome{kind: outcomeFailed, err: fmt.Sprintf("message %s: lookup by email: %v", msg.ID, err)}
		}
		if existing != nil {
			return s.link(ctx, msg, existing.ID, "email_match")
		}
	}
	if candidate.Phone != "" {
		existing, err := s.leads.FindByPhone(ctx, candidate.Phone)
		if err != nil {
			return messageOutcome{kind: outcomeFailed, err: fmt.Sprintf("message %s: lookup by phone: %v", msg.ID, err)}
		}
		if existing != nil {
			return s.link(ctx, msg, existing.ID, "phone_match")
		}
	}

	return s.createLead(ctx, msg, candidate, parserName)
}

// linkBySender handles messages no extractor recognizes: ordinary
// correspondence from a known customer is linked to their lead by sender
// address, anything else is skipped. Neither case is an error.
func (s *Service) linkBySender(ctx context.Context, msg mailbox.Message) messageOutcome {
	existing, err := s.leads.FindByEmail(ctx, msg.SenderAddress)
	if err != nil {
		return messageOutcome{kind: outcomeFailed, err: fmt.Sprintf("message %s: lookup by sender: %v", msg.ID, err)}
	}
	if existing != nil {
		return s.link(ctx, msg, existing.ID, "sender_match")
	}

	s.log.Info("no extractor for message, skipping", "messageId", msg.ID, "sender", msg.SenderAddress)
	return messageOutcome{kind: outcomeSkipped}
}

func (s *Service) link(ctx context.Context, msg mailbox.Message, leadID uuid.UUID, reason string) messageOutcome {
	if err := s.messages.LinkToLead(ctx, msg.ID, leadID); err != nil {
		return messageOutcome{kind: outcomeFailed, err: fmt.Sprintf("message %s: link to lead %s: %v", msg.ID, leadID, err)}
	}

	s.bus.Publish(ctx, events.MessageLinked{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		MessageID: msg.ID,
		Reason:    reason,
	})

	s.log.Info("linked message to existing lead", "messageId", msg.ID, "leadId", leadID, "reason", reason)
	return messageOutcome{kind: outcomeLinked, leadID: &leadID}
}

func (s *Service) createLead(ctx context.Context, msg mailbox.Message, candidate Candidate, parserName string) messageOutcome {
	params := buildCreateParams(candidate)

	lead, err := s.leads.Create(ctx, params)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		// Lost a create race: another run inserted a lead for this email
		// between our lookup and insert. Fall back to linking.
		existing, lookupErr := s.leads.FindByEmail(ctx, candidate.Email)
		if lookupErr != nil || existing == nil {
			return messageOutcome{kind: outcomeFailed, err: fmt.Sprintf("message %s: duplicate email create, relookup failed: %v", msg.ID, lookupErr)}
		}
		return s.link(ctx, msg, existing.ID, "email_match")
	}
	if err != nil {
		return messageOutcome{kind: outcomeFailed, err: fmt.Sprintf("message %s: create lead: %v", msg.ID, err)}
	}

	if err := s.messages.LinkToLead(ctx, msg.ID, lead.ID); err != nil {
		return messageOutcome{kind: outcomeFailed, err: fmt.Sprintf("message %s: link to new lead %s: %v", msg.ID, lead.ID, err)}
	}

	if _, err := s.leads.CreateActivity(ctx, repository.CreateActivityParams{
		LeadID:      lead.ID,
		Description: "Lead created from inbound email",
		Metadata: map[string]any{
			"parser":    parserName,
			"messageId": msg.ID.String(),
			"source":    string(candidate.Source),
			"sender":    msg.SenderAddress,
		},
	}); err != nil {
		s.log.Error("failed to record lead creation activity", "leadId", lead.ID, "error", err)
	}

	email := ""
	if lead.Email != nil {
		email = *lead.Email
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		MessageID: msg.ID,
		Source:    string(lead.Source),
		Email:     email,
	})

	return messageOutcome{
		kind:   outcomeCreated,
		leadID: &lead.ID,
		lead:   &CreatedLead{ID: lead.ID, Email: email, Source: string(lead.Source)},
	}
}

// buildCreateParams maps a candidate onto lead creation params, applying
// the blank-field defaults: display fields are never null, a missing first
// name becomes "Unknown".
func buildCreateParams(candidate Candidate) repository.CreateLeadParams {
	params := repository.CreateLeadParams{
		FirstName:     candidate.FirstName,
		LastName:      candidate.LastName,
		Source:        candidate.Source,
		ExternalRef:   candidate.ExternalRef,
		MoveDate:      candidate.MoveDate,
		FromAddress:   candidate.FromAddress,
		FromPostcode:  candidate.FromPostcode,
		ToAddress:     candidate.ToAddress,
		ToPostcode:    candidate.ToPostcode,
		PropertyType:  candidate.PropertyType,
		Bedrooms:      candidate.Bedrooms,
		DistanceMiles: candidate.DistanceMiles,
		NeedsPacking:  candidate.NeedsPacking,
		NeedsStorage:  candidate.NeedsStorage,
		Notes:         candidate.Notes,
	}

	if params.FirstName == "" {
		params.FirstName = "Unknown"
	}
	if params.Source == "" {
		params.Source = domain.SourceUnknown
	}
	if candidate.Email != "" {
		email := candidate.Email
		params.Email = &email
	}
	if candidate.Phone != "" {
		phoneNumber := candidate.Phone
		params.Phone = &phoneNumber
	}

	return params
}

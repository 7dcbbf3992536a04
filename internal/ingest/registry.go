package ingest

import (
	"errors"

	"removals_crm_backend/internal/leads/domain"
)

// ErrNoParser indicates no extractor recognized the message. This is an
// expected, frequent outcome (ordinary correspondence lands in the same
// mailbox) and is reported at informational severity, never as an error.
var ErrNoParser = errors.New("no parser available for message")

// Extractor converts one partner's raw message format into a Candidate.
//
// CanHandle must be cheap (substring/domain checks only). Extract returns an
// error only when the message cannot be made sense of at all; a partially
// populated Candidate is a success.
type Extractor interface {
	Name() string
	Source() domain.Source
	CanHandle(senderAddress, subject string) bool
	Extract(subject, plainBody, htmlBody string) (Candidate, error)
}

// Registry holds the closed, ordered set of extractors and performs
// first-match dispatch. There is no fallback merging: the first extractor
// whose CanHandle returns true owns the message.
type Registry struct {
	extractors []Extractor
}

// NewRegistry creates a registry with the default extractor order.
func NewRegistry() *Registry {
	return &Registry{
		extractors: []Extractor{
			NewCompareMyMove(),
			NewReallyMoving(),
			NewGetAMover(),
			NewWebsite(),
		},
	}
}

// Detect returns the first extractor able to handle the message, if any.
func (r *Registry) Detect(senderAddress, subject string) (Extractor, bool) {
	for _, ex := range r.extractors {
		if ex.CanHandle(senderAddress, subject) {
			return ex, true
		}
	}
	return nil, false
}

// Parse detects the extractor for the message and delegates extraction.
// It returns the extractor name alongside the candidate for diagnostics.
func (r *Registry) Parse(senderAddress, subject, plainBody, htmlBody string) (Candidate, string, error) {
	ex, ok := r.Detect(senderAddress, subject)
	if !ok {
		return Candidate{}, "", ErrNoParser
	}

	candidate, err := ex.Extract(subject, plainBody, htmlBody)
	if err != nil {
		return Candidate{}, ex.Name(), err
	}
	return candidate, ex.Name(), nil
}

// DetectSource returns the coarse source classification for a message
// without running full extraction. Used for messages already linked to a
// lead where only the source tag matters.
func (r *Registry) DetectSource(senderAddress, subject string) domain.Source {
	if ex, ok := r.Detect(senderAddress, subject); ok {
		return ex.Source()
	}
	return domain.SourceUnknown
}

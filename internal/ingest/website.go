package ingest

import (
	"fmt"
	"regexp"
	"strings"

	"removals_crm_backend/internal/ingest/extract"
	"removals_crm_backend/internal/leads/domain"
)

// Website handles quote requests submitted through the company's own site.
// The notification subject is itself the primary data source
// ("New quote request by Jane Doe moving from NN1 1AA on 12/06/2026");
// the body only supplies contact details and yes/no service flags.
type Website struct {
	subjectPattern *regexp.Regexp
}

func NewWebsite() *Website {
	return &Website{
		subjectPattern: regexp.MustCompile(`(?i)by\s+(.+?)\s+moving from\s+([A-Z]{1,2}[0-9][0-9A-Z]?\s*[0-9][A-Z]{2})(?:\s+on\s+(.+))?$`),
	}
}

func (e *Website) Name() string          { return "website" }
func (e *Website) Source() domain.Source { return domain.SourceWebsite }

func (e *Website) CanHandle(senderAddress, subject string) bool {
	sender := strings.ToLower(senderAddress)
	if strings.HasPrefix(sender, "website@") || strings.Contains(sender, "noreply@") {
		return strings.Contains(strings.ToLower(subject), "quote request")
	}
	return strings.Contains(strings.ToLower(subject), "new quote request")
}

func (e *Website) Extract(subject, plainBody, htmlBody string) (Candidate, error) {
	m := e.subjectPattern.FindStringSubmatch(subject)
	if m == nil {
		return Candidate{}, fmt.Errorf("website: subject does not match quote request pattern: %q", subject)
	}

	candidate := Candidate{Source: domain.SourceWebsite}
	candidate.FirstName, candidate.LastName = extract.SplitName(m[1])
	if pc, ok := extract.Postcode(m[2]); ok {
		candidate.FromPostcode = pc
	}
	if m[3] != "" {
		if d, ok := extract.Date(m[3]); ok {
			candidate.MoveDate = &d
		}
	}

	body := messageText(plainBody, htmlBody)
	if email, ok := extract.Email(body); ok {
		candidate.Email = email
	}
	if phoneNumber, ok := extract.Phone(body); ok {
		candidate.Phone = phoneNumber
	}
	if packing, ok := boolFlag(body, "packing"); ok {
		candidate.NeedsPacking = packing
	}
	if storage, ok := boolFlag(body, "storage"); ok {
		candidate.NeedsStorage = storage
	}
	if beds, ok := extract.Bedrooms(body); ok {
		candidate.Bedrooms = &beds
	}

	return candidate, nil
}

package ingest

import (
	"fmt"
	"regexp"
	"strings"

	"removals_crm_backend/internal/ingest/extract"
	"removals_crm_backend/internal/leads/domain"
)

// CompareMyMove handles lead notification emails from comparemymove.com.
// The customer name rides in a subject parenthetical; the body is a labelled
// free-text block whose label spellings have drifted over time, so every
// field carries a fallback chain.
type CompareMyMove struct {
	subjectName *regexp.Regexp
}

func NewCompareMyMove() *CompareMyMove {
	return &CompareMyMove{
		subjectName: regexp.MustCompile(`\(([^)]+)\)\s*$`),
	}
}

func (e *CompareMyMove) Name() string          { return "comparemymove" }
func (e *CompareMyMove) Source() domain.Source { return domain.SourceCompareMyMove }

func (e *CompareMyMove) CanHandle(senderAddress, _ string) bool {
	return strings.Contains(strings.ToLower(senderAddress), "comparemymove.com")
}

var (
	cmmFromLabels = []string{"moving from", "from address", "collection address"}
	cmmToLabels   = []string{"moving to", "to address", "delivery address"}
	cmmDateLabels = []string{"move date", "moving date", "date of move"}
	cmmPropLabels = []string{"property type", "property"}
)

func (e *CompareMyMove) Extract(subject, plainBody, htmlBody string) (Candidate, error) {
	body := messageText(plainBody, htmlBody)
	if strings.TrimSpace(body) == "" && strings.TrimSpace(subject) == "" {
		return Candidate{}, fmt.Errorf("comparemymove: empty message")
	}

	candidate := Candidate{Source: domain.SourceCompareMyMove}

	if m := e.subjectName.FindStringSubmatch(subject); m != nil {
		candidate.FirstName, candidate.LastName = extract.SplitName(m[1])
	}

	if from, ok := labelValue(body, cmmFromLabels); ok {
		candidate.FromAddress = from
		if pc, ok := extract.Postcode(from); ok {
			candidate.FromPostcode = pc
		}
	}
	if to, ok := labelValue(body, cmmToLabels); ok {
		candidate.ToAddress = to
		if pc, ok := extract.Postcode(to); ok {
			candidate.ToPostcode = pc
		}
	}
	if dateText, ok := labelValue(body, cmmDateLabels); ok {
		if d, ok := extract.Date(dateText); ok {
			candidate.MoveDate = &d
		}
	}
	if prop, ok := labelValue(body, cmmPropLabels); ok {
		candidate.PropertyType = prop
	}

	// Loose-pattern fallback tier: when no labelled line matched, take the
	// first postcode anywhere in the body as the origin.
	if candidate.FromPostcode == "" {
		if pc, ok := extract.Postcode(body); ok {
			candidate.FromPostcode = pc
		}
	}

	if email, ok := extract.Email(body); ok {
		candidate.Email = email
	}
	if phoneNumber, ok := extract.Phone(body); ok {
		candidate.Phone = phoneNumber
	}
	if beds, ok := extract.Bedrooms(body); ok {
		candidate.Bedrooms = &beds
	}

	return candidate, nil
}

package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"removals_crm_backend/internal/ingest/extract"
	"removals_crm_backend/internal/leads/domain"
)

// ReallyMoving handles plain-text key:value emails from reallymoving.com.
// The subject encodes reference, customer name, bedroom count and distance
// in one compound pattern; it is consulted first and the body overrides it
// wherever both carry the same field.
type ReallyMoving struct {
	subjectPattern *regexp.Regexp
}

func NewReallyMoving() *ReallyMoving {
	return &ReallyMoving{
		// "Removal enquiry RM-123456: John Smith, 3 bed, 42.5 miles"
		subjectPattern: regexp.MustCompile(`(?i)removal enquiry\s+([A-Z0-9\-]+):\s*(.+?),\s*(\d+)\s*bed(?:room)?s?,\s*([\d.]+)\s*miles`),
	}
}

func (e *ReallyMoving) Name() string          { return "reallymoving" }
func (e *ReallyMoving) Source() domain.Source { return domain.SourceReallyMoving }

func (e *ReallyMoving) CanHandle(senderAddress, _ string) bool {
	return strings.Contains(strings.ToLower(senderAddress), "reallymoving.com")
}

func (e *ReallyMoving) Extract(subject, plainBody, htmlBody string) (Candidate, error) {
	body := messageText(plainBody, htmlBody)
	if strings.TrimSpace(body) == "" && strings.TrimSpace(subject) == "" {
		return Candidate{}, fmt.Errorf("reallymoving: empty message")
	}

	candidate := Candidate{Source: domain.SourceReallyMoving}

	if m := e.subjectPattern.FindStringSubmatch(subject); m != nil {
		candidate.ExternalRef = m[1]
		candidate.FirstName, candidate.LastName = extract.SplitName(m[2])
		if beds, err := strconv.Atoi(m[3]); err == nil {
			candidate.Bedrooms = &beds
		}
		if miles, err := strconv.ParseFloat(m[4], 64); err == nil {
			candidate.DistanceMiles = &miles
		}
	}

	for _, line := range strings.Split(body, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		e.applyField(&candidate, key, value)
	}

	return candidate, nil
}

// applyField dispatches one body line onto the candidate. Key matching is
// substring-based: partner exports have used "Customer name", "Name" and
// "Full name" for the same field across format revisions.
func (e *ReallyMoving) applyField(candidate *Candidate, key, value string) {
	switch {
	case strings.Contains(key, "name"):
		candidate.FirstName, candidate.LastName = extract.SplitName(value)
	case strings.Contains(key, "email"):
		if email, ok := extract.Email(value); ok {
			candidate.Email = email
		}
	case strings.Contains(key, "phone") || strings.Contains(key, "tel"):
		if phoneNumber, ok := extract.Phone(value); ok {
			candidate.Phone = phoneNumber
		} else {
			candidate.Phone = strings.ReplaceAll(value, " ", "")
		}
	case strings.Contains(key, "moving from") || key == "from":
		candidate.FromAddress = value
		if pc, ok := extract.Postcode(value); ok {
			candidate.FromPostcode = pc
		}
	case strings.Contains(key, "moving to") || key == "to":
		candidate.ToAddress = value
		if pc, ok := extract.Postcode(value); ok {
			candidate.ToPostcode = pc
		}
	case strings.Contains(key, "packing"):
		candidate.NeedsPacking = isAffirmative(value)
	case strings.Contains(key, "storage"):
		candidate.NeedsStorage = isAffirmative(value)
	case strings.Contains(key, "move size") || strings.Contains(key, "size"):
		candidate.PropertyType = value
		if beds, ok := extract.Bedrooms(value); ok {
			candidate.Bedrooms = &beds
		}
	case strings.Contains(key, "date"):
		if d, ok := extract.Date(value); ok {
			candidate.MoveDate = &d
		}
	case strings.Contains(key, "reference") || strings.Contains(key, "ref"):
		candidate.ExternalRef = value
	case strings.Contains(key, "notes") || strings.Contains(key, "comments"):
		candidate.Notes = value
	}
}

func isAffirmative(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return v == "yes" || v == "true" || v == "y" || v == "1"
}

package ingest

import (
	"fmt"
	"strings"

	"removals_crm_backend/internal/ingest/extract"
	"removals_crm_backend/internal/leads/domain"
	"removals_crm_backend/platform/sanitize"

	"golang.org/x/net/html"
)

// GetAMover handles table-based HTML emails from getamover.co.uk. The
// partner's template is not stable: some messages carry a proper
// <td>Label</td><td>Value</td> table and some arrive as loose sections
// bounded by "moving from" / "moving to" headings. Both layouts appear in
// the same stream over time, so table extraction is tried first and the
// section scan is the fallback tier.
type GetAMover struct{}

func NewGetAMover() *GetAMover { return &GetAMover{} }

func (e *GetAMover) Name() string          { return "getamover" }
func (e *GetAMover) Source() domain.Source { return domain.SourceGetAMover }

func (e *GetAMover) CanHandle(senderAddress, _ string) bool {
	return strings.Contains(strings.ToLower(senderAddress), "getamover.co.uk")
}

func (e *GetAMover) Extract(subject, plainBody, htmlBody string) (Candidate, error) {
	if strings.TrimSpace(htmlBody) == "" && strings.TrimSpace(plainBody) == "" {
		return Candidate{}, fmt.Errorf("getamover: empty message")
	}

	candidate := Candidate{Source: domain.SourceGetAMover}

	if rows := tableRows(htmlBody); len(rows) > 0 {
		for _, row := range rows {
			e.applyRow(&candidate, row.label, row.value)
		}
	}

	body := messageText(plainBody, htmlBody)

	// Fallback tier: unlabelled section scan between the "moving from" and
	// "moving to" headings when the table layout produced no addresses.
	if candidate.FromPostcode == "" && candidate.ToPostcode == "" {
		e.scanSections(&candidate, body)
	}

	if candidate.Email == "" {
		if email, ok := extract.Email(body); ok {
			candidate.Email = email
		}
	}
	if candidate.Phone == "" {
		if phoneNumber, ok := extract.Phone(body); ok {
			candidate.Phone = phoneNumber
		}
	}
	if candidate.Bedrooms == nil {
		if beds, ok := extract.Bedrooms(body); ok {
			candidate.Bedrooms = &beds
		}
	}
	if candidate.MoveDate == nil {
		if d, ok := extract.Date(body); ok {
			candidate.MoveDate = &d
		}
	}

	return candidate, nil
}

func (e *GetAMover) applyRow(candidate *Candidate, label, value string) {
	if value == "" {
		return
	}
	switch {
	case strings.Contains(label, "name"):
		candidate.FirstName, candidate.LastName = extract.SplitName(value)
	case strings.Contains(label, "email"):
		if email, ok := extract.Email(value); ok {
			candidate.Email = email
		}
	case strings.Contains(label, "phone") || strings.Contains(label, "telephone"):
		if phoneNumber, ok := extract.Phone(value); ok {
			candidate.Phone = phoneNumber
		}
	case strings.Contains(label, "from"):
		candidate.FromAddress = value
		if pc, ok := extract.Postcode(value); ok {
			candidate.FromPostcode = pc
		}
	case strings.Contains(label, "to"):
		candidate.ToAddress = value
		if pc, ok := extract.Postcode(value); ok {
			candidate.ToPostcode = pc
		}
	case strings.Contains(label, "date"):
		if d, ok := extract.Date(value); ok {
			candidate.MoveDate = &d
		}
	case strings.Contains(label, "property") || strings.Contains(label, "size"):
		candidate.PropertyType = value
		if beds, ok := extract.Bedrooms(value); ok {
			candidate.Bedrooms = &beds
		}
	case strings.Contains(label, "bedroom"):
		if beds, ok := extract.Bedrooms(value + " bed"); ok {
			candidate.Bedrooms = &beds
		}
	}
}

// scanSections splits the body at the "moving from" and "moving to"
// headings and pulls a postcode out of each section.
func (e *GetAMover) scanSections(candidate *Candidate, body string) {
	lower := strings.ToLower(body)

	fromIdx := strings.Index(lower, "moving from")
	toIdx := strings.Index(lower, "moving to")
	if fromIdx < 0 {
		return
	}

	fromSection := body[fromIdx:]
	if toIdx > fromIdx {
		fromSection = body[fromIdx:toIdx]
	}
	if pc, ok := extract.Postcode(fromSection); ok {
		candidate.FromPostcode = pc
	}

	if toIdx >= 0 {
		if pc, ok := extract.Postcode(body[toIdx:]); ok {
			candidate.ToPostcode = pc
		}
	}
}

type tableRow struct {
	label string
	value string
}

// tableRows parses the HTML body and returns the label/value pairs of every
// table row with at least two cells. A parse failure or a table-less body
// yields no rows, which callers treat as "try the fallback layout".
func tableRows(htmlBody string) []tableRow {
	if strings.TrimSpace(htmlBody) == "" {
		return nil
	}

	doc, err := html.Parse(strings.NewReader(htmlBody))
	if err != nil {
		return nil
	}

	var rows []tableRow
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			cells := cellTexts(n)
			if len(cells) >= 2 {
				rows = append(rows, tableRow{
					label: strings.ToLower(strings.TrimSpace(cells[0])),
					value: strings.TrimSpace(cells[1]),
				})
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return rows
}

func cellTexts(tr *html.Node) []string {
	var cells []string
	for child := tr.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && (child.Data == "td" || child.Data == "th") {
			cells = append(cells, nodeText(child))
		}
	}
	return cells
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sanitize.Text(b.String())
}

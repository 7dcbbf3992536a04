package ingest

import (
	"regexp"
	"strings"

	"removals_crm_backend/platform/sanitize"
)

// messageText picks the body to scan: the plain body when present,
// otherwise the rendered body with markup stripped.
func messageText(plainBody, htmlBody string) string {
	if strings.TrimSpace(plainBody) != "" {
		return plainBody
	}
	return sanitize.StripHTML(htmlBody)
}

// labelValue scans text line by line for the first line starting with one of
// the given labels (case-insensitive) and returns the remainder of that line.
// Labels form an ordered fallback chain: partner formats drift, so each field
// keeps its older label spellings as later entries.
func labelValue(text string, labels []string) (string, bool) {
	lines := strings.Split(text, "\n")
	for _, label := range labels {
		lowerLabel := strings.ToLower(label)
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if len(trimmed) < len(lowerLabel) {
				continue
			}
			if strings.HasPrefix(strings.ToLower(trimmed), lowerLabel) {
				value := strings.TrimSpace(trimmed[len(lowerLabel):])
				value = strings.TrimLeft(value, ":-")
				value = strings.TrimSpace(value)
				if value != "" {
					return value, true
				}
			}
		}
	}
	return "", false
}

var flagTokenPattern = `(yes|no|true|false)`

// boolFlag looks for a yes/no/true/false token adjacent to a labelled
// service name ("packing: yes", "storage required - no").
func boolFlag(text, label string) (value bool, found bool) {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `[^a-zA-Z0-9\n]{0,20}` + flagTokenPattern + `\b`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return false, false
	}
	token := strings.ToLower(m[1])
	return token == "yes" || token == "true", true
}

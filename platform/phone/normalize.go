// Package phone normalizes phone numbers so they can serve as
// deduplication keys. This is part of the platform layer and contains no
// business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Numbers without an international prefix are assumed to be UK numbers.
const defaultRegion = "GB"

// NormalizeE164 formats a phone number to E.164 so the same customer
// always produces the same key regardless of how the partner formatted
// the number. Unparseable or invalid input passes through trimmed.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return trimmed
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

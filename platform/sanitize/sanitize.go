// Package sanitize provides text sanitization utilities for inbound message bodies.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	// htmlTagRegex matches HTML tags
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)
)

// StripHTML removes all HTML tags from a string, making it safe for text-only
// processing. Block-level closing tags are replaced with newlines so that
// line-oriented extraction keeps working on rendered bodies.
func StripHTML(s string) string {
	// Preserve line structure for table rows and paragraphs
	lineBreaks := strings.NewReplacer(
		"</tr>", "\n", "</TR>", "\n",
		"</p>", "\n", "</P>", "\n",
		"<br>", "\n", "<br/>", "\n", "<br />", "\n",
		"</td>", " ", "</TD>", " ",
	)
	result := lineBreaks.Replace(s)
	result = htmlTagRegex.ReplaceAllString(result, "")
	// Decode common HTML entities
	result = strings.ReplaceAll(result, "&lt;", "<")
	result = strings.ReplaceAll(result, "&gt;", ">")
	result = strings.ReplaceAll(result, "&amp;", "&")
	result = strings.ReplaceAll(result, "&quot;", "\"")
	result = strings.ReplaceAll(result, "&#39;", "'")
	result = strings.ReplaceAll(result, "&nbsp;", " ")
	// Re-strip after entity decode to catch encoded tags
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text sanitizes a string for safe text storage by stripping HTML
// and trimming whitespace. Use for user-provided free-text fields
// like notes and descriptions.
func Text(s string) string {
	return StripHTML(s)
}

// Package ticket extracts ticket identifiers from PR free text and
// looks them up in the ticket system.
package ticket

import "regexp"

// ticketPattern matches an uppercase project token, a hyphen, and one
// or more digits (PROJ-123). Compiled once at package initialization.
var ticketPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9]+-\d+\b`)

// Extract scans title, then description, then branch name for a ticket
// identifier and returns the first match. Validation is pattern-only;
// existence checks are the ticket-system client's job. Absence is a
// first-class result, not an error.
func Extract(title, description, branch string) (string, bool) {
	for _, text := range []string{title, description, branch} {
		if match := ticketPattern.FindString(text); match != "" {
			return match, true
		}
	}
	return "", false
}

// Package review defines the data model for one PR review run: findings,
// per-producer scan results, the immutable review context, and the
// aggregated report with its gate decision.
package review

import "unicode/utf8"

// Severity is the impact level of a finding. Totally ordered,
// CRITICAL highest.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Rank returns a numeric rank for sorting (higher = more severe).
// Unknown severities rank below LOW.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is one of the four levels.
func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// NormalizeSeverity coerces arbitrary producer output into a valid
// severity. Unknown values become MEDIUM: a specialist that bothered to
// report something should not have it silently ranked last.
func NormalizeSeverity(raw string) Severity {
	switch Severity(raw) {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return Severity(raw)
	}
	return SeverityMedium
}

// EvidenceCap is the maximum length of a finding's evidence excerpt.
// Long enough to triage, short enough to avoid dumping an entire secret
// or payload into a shared report.
const EvidenceCap = 50

// TruncateEvidence bounds evidence to EvidenceCap bytes, cutting on a
// rune boundary so the excerpt stays valid UTF-8.
func TruncateEvidence(s string) string {
	return TruncateOnRune(s, EvidenceCap)
}

// TruncateOnRune bounds s to at most max bytes without splitting a
// multibyte rune.
func TruncateOnRune(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// Finding is one detected issue.
type Finding struct {
	Severity    Severity `json:"severity"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	// Source identifies the producer that emitted the finding.
	Source string `json:"source"`
	// Line is a 1-based line reference into the diff. Zero when the
	// producer cannot localize.
	Line int `json:"line,omitempty"`
	// Evidence is a short excerpt of the matched text, already
	// truncated to EvidenceCap.
	Evidence string `json:"evidence,omitempty"`
	// Recommendation is a suggested fix. Required for CRITICAL findings.
	Recommendation string `json:"recommendation,omitempty"`
}

// ScanResult is the output of one producer. Immutable once produced.
type ScanResult struct {
	ProducerID string    `json:"producer_id"`
	Findings   []Finding `json:"findings"`
	// Unavailable marks a producer that failed or timed out. It forces
	// the producer's status to WARN without contributing findings.
	Unavailable bool `json:"unavailable,omitempty"`
}

// Status is a producer status or the overall gate decision.
type Status string

const (
	StatusPass Status = "PASS"
	StatusWarn Status = "WARN"
	StatusFail Status = "FAIL"
)

// ChangedFile describes one file touched by the PR.
type ChangedFile struct {
	Path      string `json:"path"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Changes   int    `json:"changes"`
}

// TicketInfo holds ticket-system details for a referenced ticket.
// Found is false for a structured "not found" result.
type TicketInfo struct {
	ID          string `json:"id"`
	Summary     string `json:"summary,omitempty"`
	Status      string `json:"status,omitempty"`
	Assignee    string `json:"assignee,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Description string `json:"description,omitempty"`
	Found       bool   `json:"found"`
}

// Context is the immutable input for one review run. Constructed once
// during pre-flight, read-only thereafter.
type Context struct {
	RunID       string        `json:"run_id"`
	Repo        string        `json:"repo"` // owner/name
	PRNumber    int           `json:"pr_number"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Author      string        `json:"author"`
	Branch      string        `json:"branch"`
	BaseBranch  string        `json:"base_branch"`
	State       string        `json:"state"`
	TicketID    string        `json:"ticket_id,omitempty"`
	Ticket      *TicketInfo   `json:"ticket,omitempty"`
	Diff        string        `json:"-"`
	Files       []ChangedFile `json:"files,omitempty"`
}

// AggregatedReport is the merged outcome of all producers. Derived,
// never mutated after construction.
type AggregatedReport struct {
	// Producers lists producer IDs in their dispatch order so rendering
	// does not depend on map iteration.
	Producers      []string          `json:"producers"`
	ProducerStatus map[string]Status `json:"per_producer_status"`
	Critical       []Finding         `json:"critical_findings"`
	Others         []Finding         `json:"other_findings"`
	Decision       Status            `json:"overall_decision"`
}

// TotalFindings returns the combined finding count.
func (r *AggregatedReport) TotalFindings() int {
	return len(r.Critical) + len(r.Others)
}

package specialist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/reviewd/internal/logging"
	"github.com/fyrsmithlabs/reviewd/internal/review"
)

// Adapter wraps one external analyzer capability. Its job is solely to
// assemble the payload and coerce the response into findings. Any
// failure (error, malformed response, timeout) yields an empty
// ScanResult marked unavailable; a single broken specialist never
// blocks the pipeline.
type Adapter struct {
	name     string
	focus    string
	reasoner Reasoner
	logger   *logging.Logger
}

// New creates an adapter with an arbitrary focus prompt. The named
// constructors below cover the standard specialists.
func New(name, focus string, reasoner Reasoner, logger *logging.Logger) *Adapter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Adapter{name: name, focus: focus, reasoner: reasoner, logger: logger}
}

// NewCodeQuality reviews code quality, architecture, and error handling.
func NewCodeQuality(reasoner Reasoner, logger *logging.Logger) *Adapter {
	return New("code-quality", codeQualityFocus, reasoner, logger)
}

// NewSecurity reviews semantic security issues beyond the pattern scans.
func NewSecurity(reasoner Reasoner, logger *logging.Logger) *Adapter {
	return New("security", securityFocus, reasoner, logger)
}

// NewPerformanceTesting reviews performance patterns and test coverage.
func NewPerformanceTesting(reasoner Reasoner, logger *logging.Logger) *Adapter {
	return New("performance-testing", performanceTestingFocus, reasoner, logger)
}

// NewDocumentationCompliance reviews documentation, API design, and
// ticket traceability.
func NewDocumentationCompliance(reasoner Reasoner, logger *logging.Logger) *Adapter {
	return New("documentation-compliance", documentationComplianceFocus, reasoner, logger)
}

// Name returns the adapter's producer ID.
func (a *Adapter) Name() string {
	return a.name
}

// rawFinding is the JSON structure the reasoning service is asked to
// return.
type rawFinding struct {
	Severity       string `json:"severity"`
	Category       string `json:"category"`
	Description    string `json:"description"`
	Line           int    `json:"line"`
	Evidence       string `json:"evidence"`
	Recommendation string `json:"recommendation"`
}

// Evaluate invokes the external capability and shapes its response.
func (a *Adapter) Evaluate(ctx context.Context, rc review.Context) review.ScanResult {
	unavailable := review.ScanResult{ProducerID: a.name, Unavailable: true}

	raw, err := a.reasoner.Analyze(ctx, a.focus+responseContract, buildPrompt(rc))
	if err != nil {
		a.logger.Warn(ctx, "specialist unavailable",
			zap.String("specialist", a.name), zap.Error(err))
		return unavailable
	}

	findings, err := parseFindings(raw)
	if err != nil {
		a.logger.Warn(ctx, "specialist returned malformed findings",
			zap.String("specialist", a.name), zap.Error(err))
		return unavailable
	}

	result := review.ScanResult{ProducerID: a.name}
	for _, rf := range findings {
		result.Findings = append(result.Findings, a.coerce(rf))
	}
	return result
}

// coerce maps arbitrary returned structure onto the Finding schema:
// severity normalized, evidence capped, line floored at zero, and a
// recommendation guaranteed for CRITICAL findings.
func (a *Adapter) coerce(rf rawFinding) review.Finding {
	f := review.Finding{
		Severity:       review.NormalizeSeverity(strings.ToUpper(strings.TrimSpace(rf.Severity))),
		Category:       strings.TrimSpace(rf.Category),
		Description:    strings.TrimSpace(rf.Description),
		Source:         a.name,
		Evidence:       review.TruncateEvidence(rf.Evidence),
		Recommendation: strings.TrimSpace(rf.Recommendation),
	}
	if rf.Line > 0 {
		f.Line = rf.Line
	}
	if f.Category == "" {
		f.Category = "General"
	}
	if f.Severity == review.SeverityCritical && f.Recommendation == "" {
		f.Recommendation = "Fix " + strings.ToLower(f.Category)
	}
	return f
}

// parseFindings extracts the JSON array from the response text. The
// service occasionally wraps the array in prose or a code fence, so
// parsing starts at the first bracket and ends at the last.
func parseFindings(raw string) ([]rawFinding, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var findings []rawFinding
	if err := json.Unmarshal([]byte(raw[start:end+1]), &findings); err != nil {
		return nil, fmt.Errorf("parsing findings: %w", err)
	}
	return findings, nil
}

// buildPrompt assembles the review payload: PR metadata, ticket context
// when present, the changed-file summary, and the diff itself.
func buildPrompt(rc review.Context) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Review PR #%d in %s.\n\n", rc.PRNumber, rc.Repo)
	fmt.Fprintf(&b, "Title: %s\n", rc.Title)
	if rc.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", rc.Description)
	}
	fmt.Fprintf(&b, "Branch: %s -> %s\n", rc.Branch, rc.BaseBranch)

	if rc.Ticket != nil && rc.Ticket.Found {
		fmt.Fprintf(&b, "\nTicket %s: %s (status: %s, priority: %s)\n",
			rc.Ticket.ID, rc.Ticket.Summary, rc.Ticket.Status, rc.Ticket.Priority)
	} else if rc.TicketID != "" {
		fmt.Fprintf(&b, "\nTicket %s referenced but not found in the ticket system.\n", rc.TicketID)
	} else {
		b.WriteString("\nNo ticket reference found in title, description, or branch.\n")
	}

	if len(rc.Files) > 0 {
		b.WriteString("\nChanged files:\n")
		for _, f := range rc.Files {
			fmt.Fprintf(&b, "- %s (%s, +%d/-%d)\n", f.Path, f.Status, f.Additions, f.Deletions)
		}
	}

	b.WriteString("\nDiff:\n```diff\n")
	b.WriteString(rc.Diff)
	b.WriteString("\n```\n")
	return b.String()
}

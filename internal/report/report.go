// Package report renders an aggregated review into a fixed-structure
// markdown document suitable for a PR comment. Rendering is pure;
// publishing is the orchestrator's concern.
package report

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/reviewd/internal/review"
)

// Render produces the review comment for one run.
func Render(rc review.Context, agg *review.AggregatedReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## PR Review — %s#%d\n\n", rc.Repo, rc.PRNumber)
	fmt.Fprintf(&b, "**Overall: %s %s**\n\n", decisionIcon(agg.Decision), agg.Decision)

	writeTicketBlock(&b, rc)
	writeStatusTable(&b, agg)
	writeCriticalBlock(&b, agg)
	writeFindingsList(&b, agg)
	writeRecommendations(&b, agg)

	b.WriteString("---\n\n")
	b.WriteString("**Decision required:** Approve / Request Changes / Comment\n")
	return b.String()
}

func writeTicketBlock(b *strings.Builder, rc review.Context) {
	b.WriteString("### Ticket\n\n")
	switch {
	case rc.Ticket != nil && rc.Ticket.Found:
		t := rc.Ticket
		fmt.Fprintf(b, "**%s** — %s\n\n", t.ID, t.Summary)
		fmt.Fprintf(b, "Status: %s | Priority: %s | Assignee: %s\n\n", t.Status, t.Priority, t.Assignee)
	case rc.TicketID != "":
		fmt.Fprintf(b, "`%s` referenced but not found in the ticket system.\n\n", rc.TicketID)
	default:
		b.WriteString("No ticket reference found in title, description, or branch.\n\n")
	}

	if len(rc.Files) > 0 {
		adds, dels := 0, 0
		for _, f := range rc.Files {
			adds += f.Additions
			dels += f.Deletions
		}
		fmt.Fprintf(b, "%d file(s) changed, +%d/-%d\n\n", len(rc.Files), adds, dels)
	}
}

func writeStatusTable(b *strings.Builder, agg *review.AggregatedReport) {
	b.WriteString("### Checks\n\n")
	b.WriteString("| Producer | Status |\n")
	b.WriteString("|----------|--------|\n")
	for _, id := range agg.Producers {
		status := agg.ProducerStatus[id]
		fmt.Fprintf(b, "| %s | %s %s |\n", id, statusIcon(status), status)
	}
	b.WriteString("\n")
}

func writeCriticalBlock(b *strings.Builder, agg *review.AggregatedReport) {
	if len(agg.Critical) == 0 {
		return
	}

	fmt.Fprintf(b, "### Critical issues — approval blocked (%d)\n\n", len(agg.Critical))
	for i, f := range agg.Critical {
		fmt.Fprintf(b, "#### %d. %s\n\n", i+1, f.Category)
		fmt.Fprintf(b, "%s\n\n", f.Description)
		fmt.Fprintf(b, "Source: %s", f.Source)
		if f.Line > 0 {
			fmt.Fprintf(b, " | Line %d", f.Line)
		}
		b.WriteString("\n\n")

		if f.Recommendation != "" && f.Evidence != "" {
			b.WriteString("**Found:**\n\n```\n")
			b.WriteString(f.Evidence)
			b.WriteString("\n```\n\n**Suggested fix:**\n\n```\n")
			b.WriteString(f.Recommendation)
			b.WriteString("\n```\n\n")
		} else if f.Recommendation != "" {
			fmt.Fprintf(b, "**Suggested fix:** %s\n\n", f.Recommendation)
		}
	}
}

func writeFindingsList(b *strings.Builder, agg *review.AggregatedReport) {
	var listed []review.Finding
	lowCount := 0
	for _, f := range agg.Others {
		switch f.Severity {
		case review.SeverityHigh, review.SeverityMedium:
			listed = append(listed, f)
		case review.SeverityLow:
			lowCount++
		}
	}
	if len(listed) == 0 && lowCount == 0 {
		if len(agg.Critical) == 0 {
			b.WriteString("### Findings\n\nNo issues found.\n\n")
		}
		return
	}

	b.WriteString("### Findings\n\n")
	for _, f := range listed {
		line := "—"
		if f.Line > 0 {
			line = fmt.Sprintf("Line %d", f.Line)
		}
		fmt.Fprintf(b, "- **%s** %s — %s (%s)\n", f.Severity, line, f.Description, f.Source)
	}
	if lowCount > 0 {
		fmt.Fprintf(b, "- plus %d LOW severity finding(s)\n", lowCount)
	}
	b.WriteString("\n")
}

func writeRecommendations(b *strings.Builder, agg *review.AggregatedReport) {
	seen := make(map[string]bool)
	var recs []string
	for _, f := range append(append([]review.Finding{}, agg.Critical...), agg.Others...) {
		if f.Recommendation == "" || seen[f.Recommendation] {
			continue
		}
		seen[f.Recommendation] = true
		recs = append(recs, f.Recommendation)
	}
	if len(recs) == 0 {
		return
	}

	b.WriteString("### Recommendations\n\n")
	for _, r := range recs {
		fmt.Fprintf(b, "- %s\n", r)
	}
	b.WriteString("\n")
}

func decisionIcon(s review.Status) string {
	switch s {
	case review.StatusFail:
		return "🚫"
	case review.StatusWarn:
		return "⚠️"
	default:
		return "✅"
	}
}

func statusIcon(s review.Status) string {
	switch s {
	case review.StatusFail:
		return "❌"
	case review.StatusWarn:
		return "⚠️"
	default:
		return "✅"
	}
}

package review

import "sort"

// Aggregate merges producer scan results into an AggregatedReport.
//
// It is a pure function: identical inputs always yield an identical
// report. Findings are sorted by severity descending, then by line
// ascending with unlocalized findings last, then by source and category
// to break remaining ties deterministically.
//
// Per-producer status: FAIL if the producer emitted any CRITICAL
// finding, WARN if it emitted any finding at all or reported itself
// unavailable, PASS otherwise. Overall decision: FAIL if any CRITICAL
// finding exists, else WARN if any HIGH finding exists, else PASS.
func Aggregate(results []ScanResult) *AggregatedReport {
	report := &AggregatedReport{
		Producers:      make([]string, 0, len(results)),
		ProducerStatus: make(map[string]Status, len(results)),
		Decision:       StatusPass,
	}

	var all []Finding
	for _, res := range results {
		report.Producers = append(report.Producers, res.ProducerID)
		report.ProducerStatus[res.ProducerID] = producerStatus(res)
		all = append(all, res.Findings...)
	}

	sortFindings(all)

	for _, f := range all {
		switch {
		case f.Severity == SeverityCritical:
			report.Critical = append(report.Critical, f)
			report.Decision = StatusFail
		default:
			report.Others = append(report.Others, f)
			if f.Severity == SeverityHigh && report.Decision != StatusFail {
				report.Decision = StatusWarn
			}
		}
	}

	return report
}

func producerStatus(res ScanResult) Status {
	for _, f := range res.Findings {
		if f.Severity == SeverityCritical {
			return StatusFail
		}
	}
	if res.Unavailable || len(res.Findings) > 0 {
		return StatusWarn
	}
	return StatusPass
}

func sortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.Line != b.Line {
			// Unlocalized findings (line 0) sort last.
			if a.Line == 0 {
				return false
			}
			if b.Line == 0 {
				return true
			}
			return a.Line < b.Line
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Category < b.Category
	})
}

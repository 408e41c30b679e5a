// Package rules implements the deterministic pattern-rule scanner. Two
// tiers run over the raw diff text: a fast tier with a small fixed rule
// list, and a deep tier covering a standard vulnerability taxonomy. The
// rule tables are data (rules.go); the engine only compiles and applies
// them. Overlapping matches from different rules are all retained;
// deduplication is the aggregator's concern, not the engine's.
package rules

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/fyrsmithlabs/reviewd/internal/review"
)

// Producer IDs for the two tiers.
const (
	FastProducerID = "rules-fast"
	DeepProducerID = "rules-deep"
)

// DefaultRuleTimeout bounds a single rule match when the caller does
// not configure one.
const DefaultRuleTimeout = 2 * time.Second

type compiledRule struct {
	Rule
	pattern *regexp.Regexp
}

// Engine scans diff text with one tier's compiled rule table.
type Engine struct {
	producerID  string
	fastTier    bool
	rules       []compiledRule
	ruleTimeout time.Duration
}

// NewFastEngine compiles the fast-tier table. Findings are uniformly HIGH.
func NewFastEngine(ruleTimeout time.Duration) (*Engine, error) {
	return newEngine(FastProducerID, true, FastRules(), ruleTimeout)
}

// NewDeepEngine compiles the deep-tier table. Severity is derived from
// each rule's description.
func NewDeepEngine(ruleTimeout time.Duration) (*Engine, error) {
	return newEngine(DeepProducerID, false, DeepRules(), ruleTimeout)
}

func newEngine(producerID string, fastTier bool, table []Rule, ruleTimeout time.Duration) (*Engine, error) {
	if ruleTimeout <= 0 {
		ruleTimeout = DefaultRuleTimeout
	}
	e := &Engine{
		producerID:  producerID,
		fastTier:    fastTier,
		rules:       make([]compiledRule, 0, len(table)),
		ruleTimeout: ruleTimeout,
	}
	for _, rule := range table {
		if rule.ID == "" {
			return nil, fmt.Errorf("rule with pattern %q: ID is required", rule.Pattern)
		}
		// Case-insensitive, multi-line, matching the scan contract.
		pattern, err := regexp.Compile(`(?im)` + rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %s: invalid pattern: %w", rule.ID, err)
		}
		e.rules = append(e.rules, compiledRule{Rule: rule, pattern: pattern})
	}
	return e, nil
}

// Name returns the engine's producer ID.
func (e *Engine) Name() string {
	return e.producerID
}

// Evaluate implements the producer contract over a review context.
func (e *Engine) Evaluate(ctx context.Context, rc review.Context) review.ScanResult {
	return e.Scan(ctx, rc.Diff)
}

// Scan runs every rule over the diff text and emits one finding per
// match. A rule that exceeds the per-rule timeout is skipped and
// recorded as a LOW "scan incomplete" finding; the scan itself never
// aborts. The diff is never mutated and matched content is never
// executed.
func (e *Engine) Scan(ctx context.Context, diff string) review.ScanResult {
	result := review.ScanResult{ProducerID: e.producerID}
	if diff == "" {
		return result
	}

	for _, rule := range e.rules {
		if ctx.Err() != nil {
			result.Findings = append(result.Findings, e.incompleteFinding(rule.ID))
			continue
		}
		matches, ok := e.matchWithTimeout(rule, diff)
		if !ok {
			result.Findings = append(result.Findings, e.incompleteFinding(rule.ID))
			continue
		}
		for _, match := range matches {
			result.Findings = append(result.Findings, e.finding(rule, diff, match))
		}
	}
	return result
}

// matchWithTimeout applies one rule, bounded by the per-rule timeout.
// Go's regexp is linear in input length, so the spawned goroutine
// always terminates shortly after a timeout fires.
func (e *Engine) matchWithTimeout(rule compiledRule, diff string) ([][]int, bool) {
	done := make(chan [][]int, 1)
	go func() {
		done <- rule.pattern.FindAllStringIndex(diff, -1)
	}()

	timer := time.NewTimer(e.ruleTimeout)
	defer timer.Stop()

	select {
	case matches := <-done:
		return matches, true
	case <-timer.C:
		return nil, false
	}
}

func (e *Engine) finding(rule compiledRule, diff string, match []int) review.Finding {
	matched := diff[match[0]:match[1]]
	severity := review.SeverityHigh
	if !e.fastTier {
		severity = severityFor(rule.Description)
	}
	return review.Finding{
		Severity:       severity,
		Category:       rule.Category,
		Description:    rule.Description,
		Source:         e.producerID,
		Line:           strings.Count(diff[:match[0]], "\n") + 1,
		Evidence:       review.TruncateEvidence(matched),
		Recommendation: "Fix " + strings.ToLower(rule.Description),
	}
}

func (e *Engine) incompleteFinding(ruleID string) review.Finding {
	return review.Finding{
		Severity:    review.SeverityLow,
		Category:    "Scan incomplete",
		Description: fmt.Sprintf("Rule %s timed out and was skipped for this run", ruleID),
		Source:      e.producerID,
	}
}

// severityFor derives deep-tier severity from the rule description:
// injection, hardcoded, and exposed issues are CRITICAL, the rest HIGH.
func severityFor(description string) review.Severity {
	lower := strings.ToLower(description)
	for _, marker := range []string{"injection", "hardcoded", "exposed"} {
		if strings.Contains(lower, marker) {
			return review.SeverityCritical
		}
	}
	return review.SeverityHigh
}

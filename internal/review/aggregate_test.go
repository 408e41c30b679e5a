package review

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateDeterminism(t *testing.T) {
	results := []ScanResult{
		{
			ProducerID: "rules-deep",
			Findings: []Finding{
				{Severity: SeverityHigh, Category: "XSS", Source: "rules-deep", Line: 12},
				{Severity: SeverityCritical, Category: "Injection", Source: "rules-deep", Line: 3, Recommendation: "use parameterized queries"},
			},
		},
		{
			ProducerID: "code-quality",
			Findings: []Finding{
				{Severity: SeverityMedium, Category: "Complexity", Source: "code-quality"},
				{Severity: SeverityHigh, Category: "Error Handling", Source: "code-quality", Line: 8},
			},
		},
		{ProducerID: "performance-testing", Unavailable: true},
	}

	a := Aggregate(results)
	b := Aggregate(results)
	assert.Equal(t, a, b, "aggregate must be a pure function of its inputs")
}

func TestAggregateDecision(t *testing.T) {
	t.Run("critical anywhere fails", func(t *testing.T) {
		report := Aggregate([]ScanResult{
			{ProducerID: "a", Findings: []Finding{{Severity: SeverityLow, Source: "a"}}},
			{ProducerID: "b", Findings: []Finding{{Severity: SeverityCritical, Source: "b"}}},
		})
		assert.Equal(t, StatusFail, report.Decision)
		assert.Equal(t, StatusFail, report.ProducerStatus["b"])
		assert.Equal(t, StatusWarn, report.ProducerStatus["a"])
	})

	t.Run("high without critical warns", func(t *testing.T) {
		report := Aggregate([]ScanResult{
			{ProducerID: "a", Findings: []Finding{{Severity: SeverityHigh, Source: "a"}}},
		})
		assert.Equal(t, StatusWarn, report.Decision)
	})

	t.Run("clean run passes", func(t *testing.T) {
		report := Aggregate([]ScanResult{
			{ProducerID: "a"},
			{ProducerID: "b"},
		})
		assert.Equal(t, StatusPass, report.Decision)
		assert.Equal(t, StatusPass, report.ProducerStatus["a"])
		assert.Zero(t, report.TotalFindings())
	})

	t.Run("unavailable producer warns but does not fail", func(t *testing.T) {
		report := Aggregate([]ScanResult{
			{ProducerID: "a", Unavailable: true},
		})
		assert.Equal(t, StatusWarn, report.ProducerStatus["a"])
		assert.Equal(t, StatusPass, report.Decision)
	})

	t.Run("medium and low findings leave decision at pass", func(t *testing.T) {
		report := Aggregate([]ScanResult{
			{ProducerID: "a", Findings: []Finding{
				{Severity: SeverityMedium, Source: "a"},
				{Severity: SeverityLow, Source: "a"},
			}},
		})
		assert.Equal(t, StatusPass, report.Decision)
		assert.Equal(t, StatusWarn, report.ProducerStatus["a"])
	})
}

func TestAggregateSortOrder(t *testing.T) {
	report := Aggregate([]ScanResult{
		{ProducerID: "p", Findings: []Finding{
			{Severity: SeverityLow, Source: "p", Line: 1},
			{Severity: SeverityHigh, Source: "p"}, // unlocalized
			{Severity: SeverityHigh, Source: "p", Line: 20},
			{Severity: SeverityHigh, Source: "p", Line: 5},
			{Severity: SeverityCritical, Source: "p", Line: 9},
		}},
	})

	require.Len(t, report.Critical, 1)
	require.Len(t, report.Others, 4)

	assert.Equal(t, 5, report.Others[0].Line)
	assert.Equal(t, 20, report.Others[1].Line)
	assert.Equal(t, 0, report.Others[2].Line, "unlocalized HIGH sorts after located HIGHs")
	assert.Equal(t, SeverityLow, report.Others[3].Severity)
}

func TestProducerOrderPreserved(t *testing.T) {
	report := Aggregate([]ScanResult{
		{ProducerID: "z"},
		{ProducerID: "a"},
		{ProducerID: "m"},
	})
	assert.Equal(t, []string{"z", "a", "m"}, report.Producers)
}

func TestSeverity(t *testing.T) {
	assert.True(t, SeverityCritical.Rank() > SeverityHigh.Rank())
	assert.True(t, SeverityHigh.Rank() > SeverityMedium.Rank())
	assert.True(t, SeverityMedium.Rank() > SeverityLow.Rank())
	assert.False(t, Severity("BANANAS").Valid())

	assert.Equal(t, SeverityCritical, NormalizeSeverity("CRITICAL"))
	assert.Equal(t, SeverityMedium, NormalizeSeverity("urgent"))
}

func TestTruncateEvidence(t *testing.T) {
	long := ""
	for i := 0; i < 20; i++ {
		long += "secret"
	}
	truncated := TruncateEvidence(long)
	assert.Len(t, truncated, EvidenceCap)
	assert.Equal(t, "short", TruncateEvidence("short"))

	t.Run("never splits a rune", func(t *testing.T) {
		// 48 ASCII bytes then a 3-byte rune straddling the cap.
		straddling := strings.Repeat("x", 48) + "日本"
		truncated := TruncateEvidence(straddling)
		assert.True(t, utf8.ValidString(truncated))
		assert.Equal(t, strings.Repeat("x", 48), truncated)
	})
}

func TestTruncateOnRune(t *testing.T) {
	assert.Equal(t, "héllo", TruncateOnRune("héllo", 10))
	assert.Equal(t, "h", TruncateOnRune("héllo", 2))
	assert.Equal(t, "hé", TruncateOnRune("héllo", 3))
	assert.True(t, utf8.ValidString(TruncateOnRune(strings.Repeat("é", 40), 51)))
}

package specialist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/reviewd/internal/logging"
	"github.com/fyrsmithlabs/reviewd/internal/review"
)

// MockReasoner is a mock implementation of Reasoner.
type MockReasoner struct {
	mock.Mock
}

func (m *MockReasoner) Analyze(ctx context.Context, system, prompt string) (string, error) {
	args := m.Called(ctx, system, prompt)
	return args.String(0), args.Error(1)
}

func testContext() review.Context {
	return review.Context{
		RunID:      "run-1",
		Repo:       "acme/widgets",
		PRNumber:   7,
		Title:      "PROJ-123: harden auth",
		Branch:     "feature/PROJ-123",
		BaseBranch: "main",
		Diff:       "+ if user.is_admin == True:\n",
		Files: []review.ChangedFile{
			{Path: "auth.py", Status: "modified", Additions: 4, Deletions: 1},
		},
	}
}

func TestEvaluateParsesFindings(t *testing.T) {
	reasoner := new(MockReasoner)
	reasoner.On("Analyze", mock.Anything, mock.Anything, mock.Anything).Return(
		`Here are the findings:
[
  {"severity": "CRITICAL", "category": "Access Control", "description": "Hardcoded admin gate", "line": 1, "evidence": "user.is_admin == True", "recommendation": "use role checks"},
  {"severity": "medium", "category": "Testing", "description": "No tests for auth change", "line": 0}
]`, nil)

	result := NewCodeQuality(reasoner, logging.NewNop()).Evaluate(context.Background(), testContext())

	assert.False(t, result.Unavailable)
	assert.Equal(t, "code-quality", result.ProducerID)
	require.Len(t, result.Findings, 2)

	first := result.Findings[0]
	assert.Equal(t, review.SeverityCritical, first.Severity)
	assert.Equal(t, "code-quality", first.Source)
	assert.Equal(t, 1, first.Line)
	assert.Equal(t, "use role checks", first.Recommendation)

	second := result.Findings[1]
	assert.Equal(t, review.SeverityMedium, second.Severity, "lowercase severity is normalized")
	assert.Zero(t, second.Line)
}

func TestEvaluateFailureYieldsWarn(t *testing.T) {
	t.Run("reasoner error", func(t *testing.T) {
		reasoner := new(MockReasoner)
		reasoner.On("Analyze", mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("upstream timeout"))

		result := NewSecurity(reasoner, logging.NewNop()).Evaluate(context.Background(), testContext())
		assert.True(t, result.Unavailable)
		assert.Empty(t, result.Findings)
		assert.Equal(t, "security", result.ProducerID)
	})

	t.Run("malformed response", func(t *testing.T) {
		reasoner := new(MockReasoner)
		reasoner.On("Analyze", mock.Anything, mock.Anything, mock.Anything).
			Return("I could not produce JSON today.", nil)

		result := NewPerformanceTesting(reasoner, logging.NewNop()).Evaluate(context.Background(), testContext())
		assert.True(t, result.Unavailable)
	})

	t.Run("invalid JSON array", func(t *testing.T) {
		reasoner := new(MockReasoner)
		reasoner.On("Analyze", mock.Anything, mock.Anything, mock.Anything).
			Return(`[{"severity": }]`, nil)

		result := NewDocumentationCompliance(reasoner, logging.NewNop()).Evaluate(context.Background(), testContext())
		assert.True(t, result.Unavailable)
	})
}

func TestCoerceInvariants(t *testing.T) {
	a := New("test", "focus", nil, nil)

	t.Run("critical without recommendation gets one", func(t *testing.T) {
		f := a.coerce(rawFinding{Severity: "CRITICAL", Category: "Injection", Description: "bad"})
		assert.NotEmpty(t, f.Recommendation)
	})

	t.Run("evidence capped", func(t *testing.T) {
		f := a.coerce(rawFinding{Severity: "HIGH", Evidence: strings.Repeat("x", 500)})
		assert.LessOrEqual(t, len(f.Evidence), review.EvidenceCap)
	})

	t.Run("negative line dropped", func(t *testing.T) {
		f := a.coerce(rawFinding{Severity: "LOW", Line: -4})
		assert.Zero(t, f.Line)
	})

	t.Run("unknown severity becomes medium", func(t *testing.T) {
		f := a.coerce(rawFinding{Severity: "severe"})
		assert.Equal(t, review.SeverityMedium, f.Severity)
	})
}

func TestBuildPromptIncludesContext(t *testing.T) {
	rc := testContext()
	rc.TicketID = "PROJ-123"
	rc.Ticket = &review.TicketInfo{ID: "PROJ-123", Summary: "Harden auth", Status: "In Progress", Priority: "High", Found: true}

	prompt := buildPrompt(rc)
	assert.Contains(t, prompt, "acme/widgets")
	assert.Contains(t, prompt, "PROJ-123: harden auth")
	assert.Contains(t, prompt, "Ticket PROJ-123: Harden auth")
	assert.Contains(t, prompt, "auth.py")
	assert.Contains(t, prompt, "```diff")
}

func TestBuildPromptWithoutTicket(t *testing.T) {
	prompt := buildPrompt(review.Context{Repo: "a/b", PRNumber: 1, Diff: "x"})
	assert.Contains(t, prompt, "No ticket reference found")
}

func TestParseFindings(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		findings, err := parseFindings(`[{"severity":"LOW"}]`)
		require.NoError(t, err)
		assert.Len(t, findings, 1)
	})

	t.Run("fenced array", func(t *testing.T) {
		findings, err := parseFindings("```json\n[{\"severity\":\"LOW\"}]\n```")
		require.NoError(t, err)
		assert.Len(t, findings, 1)
	})

	t.Run("empty array", func(t *testing.T) {
		findings, err := parseFindings("[]")
		require.NoError(t, err)
		assert.Empty(t, findings)
	})
}

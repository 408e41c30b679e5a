// Package orchestrator drives one review run through its workflow
// states: pre-flight context construction, concurrent producer fan-out,
// aggregation, report synthesis, and publishing.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/reviewd/internal/github"
	"github.com/fyrsmithlabs/reviewd/internal/review"
)

// State is a workflow state within a single run.
type State string

const (
	// StatePreFlight fetches PR metadata and the diff, extracts the
	// ticket reference, and optionally looks the ticket up.
	StatePreFlight State = "PRE_FLIGHT"

	// StateFanout invokes every producer concurrently against the
	// same review context.
	StateFanout State = "FANOUT"

	// StateAggregate folds all scan results into one report.
	StateAggregate State = "AGGREGATE"

	// StateReport renders the aggregate as markdown.
	StateReport State = "REPORT"

	// StatePublish posts the rendered report back to the PR.
	StatePublish State = "PUBLISH"

	// StateDone is the successful terminal state.
	StateDone State = "DONE"

	// StateFailed is the terminal state for a run that could not
	// construct its context or could not publish.
	StateFailed State = "FAILED"
)

// Pipeline returns the success path in execution order.
func Pipeline() []State {
	return []State{StatePreFlight, StateFanout, StateAggregate, StateReport, StatePublish, StateDone}
}

// Run is the complete state of one review run. Runs are independent:
// nothing is shared between concurrent runs for different PRs.
type Run struct {
	ID          string                   `json:"id"`
	State       State                    `json:"state"`
	Context     review.Context           `json:"context"`
	Results     []review.ScanResult      `json:"results,omitempty"`
	Report      *review.AggregatedReport `json:"report,omitempty"`
	Rendered    string                   `json:"-"`
	StartedAt   time.Time                `json:"started_at"`
	CompletedAt time.Time                `json:"completed_at,omitempty"`
	Err         error                    `json:"-"`
}

// NewRun creates a run in its initial state.
func NewRun(id string) *Run {
	return &Run{
		ID:        id,
		State:     StatePreFlight,
		StartedAt: time.Now(),
	}
}

// CanTransition checks that next is a legal move from the current
// state. Transitions are one-directional; FAILED is reachable only
// from PRE_FLIGHT and PUBLISH.
func (r *Run) CanTransition(next State) error {
	if next == StateFailed {
		if r.State == StatePreFlight || r.State == StatePublish {
			return nil
		}
		return fmt.Errorf("cannot transition from %s to %s: only %s and %s may fail",
			r.State, StateFailed, StatePreFlight, StatePublish)
	}

	pipeline := Pipeline()
	currentIdx := -1
	nextIdx := -1
	for i, s := range pipeline {
		if s == r.State {
			currentIdx = i
		}
		if s == next {
			nextIdx = i
		}
	}

	if currentIdx == -1 {
		return fmt.Errorf("invalid current state: %s", r.State)
	}
	if nextIdx == -1 {
		return fmt.Errorf("invalid target state: %s", next)
	}
	if nextIdx != currentIdx+1 {
		return fmt.Errorf("cannot transition from %s to %s: states advance sequentially", r.State, next)
	}
	return nil
}

// Advance moves the run to the next state after validating the
// transition.
func (r *Run) Advance(next State) error {
	if err := r.CanTransition(next); err != nil {
		return err
	}
	r.State = next
	return nil
}

// HostClient is the change-hosting collaborator: PR reads plus the
// single comment write.
type HostClient interface {
	PRDetails(ctx context.Context, owner, repo string, number int) (*github.PRDetails, error)
	Diff(ctx context.Context, owner, repo string, number int) (string, error)
	ChangedFiles(ctx context.Context, owner, repo string, number int) ([]review.ChangedFile, error)
	PostComment(ctx context.Context, owner, repo string, number int, body string) error
}

// TicketClient is the ticket-system collaborator. A nil TicketClient
// disables ticket lookup entirely.
type TicketClient interface {
	Ticket(ctx context.Context, id string) (*review.TicketInfo, error)
}

// Producer is one analysis capability invoked during fan-out: the rule
// engine or a specialist adapter. Evaluate never returns an error —
// failures surface as an unavailable ScanResult.
type Producer interface {
	Name() string
	Evaluate(ctx context.Context, rc review.Context) review.ScanResult
}

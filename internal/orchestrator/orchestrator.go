package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/reviewd/internal/config"
	"github.com/fyrsmithlabs/reviewd/internal/github"
	"github.com/fyrsmithlabs/reviewd/internal/logging"
	"github.com/fyrsmithlabs/reviewd/internal/report"
	"github.com/fyrsmithlabs/reviewd/internal/review"
	"github.com/fyrsmithlabs/reviewd/internal/ticket"
)

// PreflightProducerID identifies the compliance checks run during
// pre-flight. Its findings ride through aggregation like any other
// producer's.
const PreflightProducerID = "preflight"

// Orchestrator executes review runs. It is safe for concurrent use:
// all per-run state lives in the Run.
type Orchestrator struct {
	host      HostClient
	tickets   TicketClient
	producers []Producer
	timeout   time.Duration
	maxDiff   int
	publish   bool
	logger    *logging.Logger
}

// New creates an orchestrator. tickets may be nil, which disables
// ticket lookup. publish controls whether the rendered report is
// posted back to the PR or only returned on the Run.
func New(host HostClient, tickets TicketClient, producers []Producer, cfg config.ReviewConfig, publish bool, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		host:      host,
		tickets:   tickets,
		producers: producers,
		timeout:   cfg.ProducerTimeout.Duration(),
		maxDiff:   cfg.MaxDiffBytes,
		publish:   publish,
		logger:    logger.Named("orchestrator"),
	}
}

// Review executes one complete run for the given PR. The returned Run
// carries the rendered report even when publishing fails.
func (o *Orchestrator) Review(ctx context.Context, repo string, prNumber int) (*Run, error) {
	run := NewRun(uuid.NewString())
	ctx = logging.WithRun(ctx, logging.RunInfo{RunID: run.ID, Repo: repo, PRNumber: prNumber})

	o.logger.Info(ctx, "review run started")

	if err := o.preFlight(ctx, run, repo, prNumber); err != nil {
		o.fail(ctx, run, err)
		return run, err
	}

	if err := run.Advance(StateFanout); err != nil {
		return run, err
	}
	o.fanout(ctx, run)

	if err := run.Advance(StateAggregate); err != nil {
		return run, err
	}
	run.Report = review.Aggregate(run.Results)

	if err := run.Advance(StateReport); err != nil {
		return run, err
	}
	run.Rendered = report.Render(run.Context, run.Report)

	if err := run.Advance(StatePublish); err != nil {
		return run, err
	}
	if o.publish {
		if err := o.publishReport(ctx, run, repo, prNumber); err != nil {
			o.fail(ctx, run, err)
			return run, err
		}
	}

	if err := run.Advance(StateDone); err != nil {
		return run, err
	}
	run.CompletedAt = time.Now()
	recordRun(run)

	o.logger.Info(ctx, "review run completed",
		zap.String("decision", string(run.Report.Decision)),
		zap.Int("critical", len(run.Report.Critical)),
		zap.Int("other", len(run.Report.Others)),
		zap.Duration("elapsed", run.CompletedAt.Sub(run.StartedAt)))
	return run, nil
}

func (o *Orchestrator) fail(ctx context.Context, run *Run, err error) {
	run.Err = err
	run.CompletedAt = time.Now()
	if terr := run.Advance(StateFailed); terr != nil {
		o.logger.Error(ctx, "invalid failure transition", zap.Error(terr))
		run.State = StateFailed
	}
	recordRun(run)
	o.logger.Error(ctx, "review run failed", zap.Error(err))
}

// preFlight constructs the immutable review context. Only an invalid
// repository or an unobtainable diff is fatal; every other read
// degrades into a missing field or a compliance finding.
func (o *Orchestrator) preFlight(ctx context.Context, run *Run, repo string, prNumber int) error {
	owner, name, err := github.SplitRepo(repo)
	if err != nil {
		return err
	}

	diff, err := o.host.Diff(ctx, owner, name, prNumber)
	if err != nil {
		return fmt.Errorf("diff unobtainable: %w", err)
	}
	if o.maxDiff > 0 && len(diff) > o.maxDiff {
		o.logger.Warn(ctx, "diff truncated",
			zap.Int("size", len(diff)), zap.Int("limit", o.maxDiff))
		diff = review.TruncateOnRune(diff, o.maxDiff)
	}

	rc := review.Context{
		RunID:    run.ID,
		Repo:     repo,
		PRNumber: prNumber,
		Diff:     diff,
	}

	details, err := o.host.PRDetails(ctx, owner, name, prNumber)
	if err != nil {
		o.logger.Warn(ctx, "PR metadata fetch failed", zap.Error(err))
	} else {
		rc.Title = details.Title
		rc.Description = details.Description
		rc.Author = details.Author
		rc.Branch = details.Branch
		rc.BaseBranch = details.BaseBranch
		rc.State = details.State
	}

	files, err := o.host.ChangedFiles(ctx, owner, name, prNumber)
	if err != nil {
		o.logger.Warn(ctx, "changed-file fetch failed", zap.Error(err))
	} else {
		rc.Files = files
	}

	preflight := review.ScanResult{ProducerID: PreflightProducerID}

	id, found := ticket.Extract(rc.Title, rc.Description, rc.Branch)
	switch {
	case !found:
		preflight.Findings = append(preflight.Findings, review.Finding{
			Severity:       review.SeverityMedium,
			Category:       "Compliance",
			Description:    "No ticket reference found in PR title, description, or branch name",
			Source:         PreflightProducerID,
			Recommendation: "Reference the tracking ticket (e.g. PROJ-123) in the PR title or branch name",
		})
	case o.tickets == nil:
		rc.TicketID = id
	default:
		rc.TicketID = id
		info, err := o.tickets.Ticket(ctx, id)
		switch {
		case err != nil:
			o.logger.Warn(ctx, "ticket lookup failed", zap.String("ticket", id), zap.Error(err))
			preflight.Findings = append(preflight.Findings, review.Finding{
				Severity:    review.SeverityLow,
				Category:    "Compliance",
				Description: fmt.Sprintf("Ticket lookup for %s failed; status could not be verified", id),
				Source:      PreflightProducerID,
			})
		case !info.Found:
			preflight.Findings = append(preflight.Findings, review.Finding{
				Severity:       review.SeverityMedium,
				Category:       "Compliance",
				Description:    fmt.Sprintf("Referenced ticket %s was not found in the tracker", id),
				Source:         PreflightProducerID,
				Recommendation: "Reference an existing ticket or create one for this change",
			})
		default:
			rc.Ticket = info
		}
	}

	run.Context = rc
	run.Results = []review.ScanResult{preflight}
	return nil
}

// fanout invokes every producer concurrently against the same context.
// Results keep dispatch order regardless of completion order.
func (o *Orchestrator) fanout(ctx context.Context, run *Run) {
	results := make([]review.ScanResult, len(o.producers))

	var wg sync.WaitGroup
	for i, p := range o.producers {
		wg.Add(1)
		go func(i int, p Producer) {
			defer wg.Done()
			results[i] = o.invoke(ctx, p, run.Context)
		}(i, p)
	}
	wg.Wait()

	for _, res := range results {
		if res.Unavailable {
			ProducerUnavailable.WithLabelValues(res.ProducerID).Inc()
		}
	}
	run.Results = append(run.Results, results...)
}

// invoke runs a single producer with its own timeout. A timeout or
// panic yields an unavailable result; it never aborts the run.
func (o *Orchestrator) invoke(ctx context.Context, p Producer, rc review.Context) review.ScanResult {
	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan review.ScanResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				o.logger.Error(ctx, "producer panicked",
					zap.String("producer", p.Name()), zap.Any("panic", r))
				done <- review.ScanResult{ProducerID: p.Name(), Unavailable: true}
			}
		}()
		done <- p.Evaluate(cctx, rc)
	}()

	var res review.ScanResult
	select {
	case res = <-done:
	case <-cctx.Done():
		o.logger.Warn(ctx, "producer timed out",
			zap.String("producer", p.Name()), zap.Duration("timeout", o.timeout))
		res = review.ScanResult{ProducerID: p.Name(), Unavailable: true}
	}
	ProducerDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
	return res
}

// publishReport posts the rendered report as a single PR comment. The
// host client retries transient failures internally; an error here
// means the retry budget is exhausted. The report is logged so an
// accepted event is never silently dropped.
func (o *Orchestrator) publishReport(ctx context.Context, run *Run, repo string, prNumber int) error {
	owner, name, err := github.SplitRepo(repo)
	if err != nil {
		return err
	}
	if err := o.host.PostComment(ctx, owner, name, prNumber, run.Rendered); err != nil {
		o.logger.Error(ctx, "publish failed, report follows",
			zap.Error(err), zap.String("report", run.Rendered))
		return fmt.Errorf("publishing report: %w", err)
	}
	o.logger.Info(ctx, "report published")
	return nil
}

package logging

import (
	"context"

	"go.uber.org/zap"
)

type runCtxKey struct{}

// RunInfo carries correlation data for one review run.
type RunInfo struct {
	RunID    string
	Repo     string
	PRNumber int
}

// WithRun attaches run correlation data to the context.
func WithRun(ctx context.Context, info RunInfo) context.Context {
	return context.WithValue(ctx, runCtxKey{}, info)
}

// RunFromContext returns the run info attached to ctx, if any.
func RunFromContext(ctx context.Context) (RunInfo, bool) {
	info, ok := ctx.Value(runCtxKey{}).(RunInfo)
	return info, ok
}

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	info, ok := RunFromContext(ctx)
	if !ok {
		return nil
	}
	fields := make([]zap.Field, 0, 3)
	if info.RunID != "" {
		fields = append(fields, zap.String("run_id", info.RunID))
	}
	if info.Repo != "" {
		fields = append(fields, zap.String("repo", info.Repo))
	}
	if info.PRNumber != 0 {
		fields = append(fields, zap.Int("pr_number", info.PRNumber))
	}
	return fields
}

package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v57/github"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/reviewd/internal/logging"
)

// RetryConfig configures retry behavior for hosting-API writes.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts.
	MaxRetries int
	// InitialBackoff is the first backoff duration.
	InitialBackoff time.Duration
	// MaxBackoff caps the backoff growth.
	MaxBackoff time.Duration
	// BackoffMultiplier grows the backoff each attempt.
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// withRetry runs the operation with exponential backoff on retryable
// errors. Rate-limit responses use the reset time advertised by the API
// instead of the computed backoff.
func withRetry(ctx context.Context, cfg *RetryConfig, logger *logging.Logger, operation func() (*gh.Response, error)) (*gh.Response, error) {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}

	var lastErr error
	var lastResp *gh.Response
	backoff := cfg.InitialBackoff

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		resp, err := operation()
		if err == nil {
			if attempt > 0 {
				logger.Info(ctx, "hosting API operation recovered after retries",
					zap.Int("attempts", attempt))
			}
			return resp, nil
		}

		lastErr = err
		lastResp = resp

		if !isRetryable(err, resp) {
			return resp, err
		}
		if attempt == cfg.MaxRetries {
			break
		}

		wait := backoff
		if isRateLimited(resp) {
			wait = rateLimitBackoff(resp, cfg.MaxBackoff)
		}
		logger.Warn(ctx, "retrying hosting API operation",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", cfg.MaxRetries+1),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("operation canceled: %w", ctx.Err())
		case <-time.After(wait):
		}

		backoff = time.Duration(float64(backoff) * cfg.BackoffMultiplier)
		if backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}

	return lastResp, fmt.Errorf("hosting API operation failed after %d retries: %w", cfg.MaxRetries, lastErr)
}

func isRetryable(err error, resp *gh.Response) bool {
	if err == nil {
		return false
	}
	if resp == nil || resp.Response == nil {
		// Network errors and timeouts without a response are retryable.
		return true
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		// A 403 with rate info is a secondary rate limit.
		return resp.Rate.Limit > 0
	case http.StatusBadRequest, http.StatusUnauthorized,
		http.StatusNotFound, http.StatusUnprocessableEntity:
		return false
	}
	return resp.StatusCode >= 500 && resp.StatusCode < 600
}

func isRateLimited(resp *gh.Response) bool {
	if resp == nil || resp.Response == nil {
		return false
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return resp.StatusCode == http.StatusForbidden && resp.Rate.Limit > 0
}

// rateLimitBackoff waits until the advertised rate-limit reset, plus a
// one second buffer, capped at maxBackoff.
func rateLimitBackoff(resp *gh.Response, maxBackoff time.Duration) time.Duration {
	if resp == nil || (resp.Rate.Limit == 0 && resp.Rate.Remaining == 0) {
		return time.Minute
	}
	wait := time.Until(resp.Rate.Reset.Time) + time.Second
	if wait < 0 {
		wait = time.Second
	}
	if wait > maxBackoff {
		wait = maxBackoff
	}
	return wait
}

// Package server is the inbound webhook boundary. It verifies event
// signatures, filters PR actions, and hands accepted events to the
// review runner asynchronously — acceptance is acknowledged before the
// run executes.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/reviewd/internal/config"
	"github.com/fyrsmithlabs/reviewd/internal/logging"
	"github.com/fyrsmithlabs/reviewd/internal/orchestrator"
)

// maxBodyBytes caps inbound payloads.
const maxBodyBytes = 1 << 20

var validNameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Runner executes one review run. Satisfied by the orchestrator.
type Runner interface {
	Review(ctx context.Context, repo string, prNumber int) (*orchestrator.Run, error)
}

// Server serves the webhook, health, and metrics endpoints.
type Server struct {
	echo   *echo.Echo
	runner Runner
	secret config.Secret
	cfg    config.ServerConfig
	logger *logging.Logger

	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	lastCleanup time.Time

	runs sync.WaitGroup
}

// New creates the webhook server. An unset secret disables signature
// verification; acceptable only for local development.
func New(runner Runner, secret config.Secret, cfg config.ServerConfig, logger *logging.Logger) (*Server, error) {
	if runner == nil {
		return nil, fmt.Errorf("runner cannot be nil")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info(c.Request().Context(), "http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	s := &Server{
		echo:     e,
		runner:   runner,
		secret:   secret,
		cfg:      cfg,
		logger:   logger.Named("server"),
		limiters: make(map[string]*rate.Limiter),
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.POST("/webhook/github", s.handleWebhook)
	s.echo.GET("/ping", s.handlePing)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// Start runs the server until Shutdown or a listener error.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	if s.cfg.PublicURL != "" {
		s.logger.Info(context.Background(), "webhook callback URL",
			zap.String("url", strings.TrimRight(s.cfg.PublicURL, "/")+"/webhook/github"))
	}
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown stops accepting requests and waits for in-flight review
// runs, bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	if err := s.echo.Shutdown(ctx); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		s.runs.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("review runs still in flight: %w", ctx.Err())
	}
}

type pingResponse struct {
	Status string `json:"status"`
}

func (s *Server) handlePing(c echo.Context) error {
	return c.JSON(http.StatusOK, pingResponse{Status: "healthy"})
}

type webhookResponse struct {
	Status string `json:"status"`
	PR     int    `json:"pr,omitempty"`
}

func (s *Server) handleWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	ip := clientIP(c.Request())
	if !s.limiter(ip).Allow() {
		s.logger.Warn(ctx, "rate limit exceeded", zap.String("ip", ip))
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
	}

	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxBodyBytes)

	// Empty secret means accept-all: the payload is read without
	// verification. ValidatePayload handles both cases and compares
	// signatures in constant time.
	payload, err := gh.ValidatePayload(c.Request(), []byte(s.secret.Value()))
	if err != nil {
		s.logger.Warn(ctx, "invalid webhook signature", zap.Error(err))
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid signature")
	}

	event, err := gh.ParseWebHook(gh.WebHookType(c.Request()), payload)
	if err != nil {
		s.logger.Warn(ctx, "unparseable webhook payload", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	pr, ok := event.(*gh.PullRequestEvent)
	if !ok {
		s.logger.Debug(ctx, "ignoring event type", zap.String("type", fmt.Sprintf("%T", event)))
		return c.JSON(http.StatusOK, webhookResponse{Status: "ignored"})
	}
	return s.handlePullRequest(c, pr)
}

func (s *Server) handlePullRequest(c echo.Context, event *gh.PullRequestEvent) error {
	ctx := c.Request().Context()

	action := event.GetAction()
	if action != "opened" && action != "synchronize" && action != "reopened" {
		s.logger.Debug(ctx, "ignoring PR action", zap.String("action", action))
		return c.JSON(http.StatusOK, webhookResponse{Status: "ignored"})
	}

	if err := validatePREvent(event); err != nil {
		s.logger.Warn(ctx, "invalid PR event data", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid PR event")
	}

	repo := event.GetRepo().GetFullName()
	number := event.GetPullRequest().GetNumber()

	s.logger.Info(ctx, "review queued",
		zap.String("repo", repo),
		zap.Int("pr_number", number),
		zap.String("action", action))

	// Acknowledge before running: the run executes on its own context,
	// decoupled from this request's lifetime. Repeated notifications
	// for the same PR produce independent runs.
	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		if _, err := s.runner.Review(context.Background(), repo, number); err != nil {
			s.logger.Error(context.Background(), "queued review failed",
				zap.String("repo", repo), zap.Int("pr_number", number), zap.Error(err))
		}
	}()

	return c.JSON(http.StatusOK, webhookResponse{Status: "review_queued", PR: number})
}

func validatePREvent(e *gh.PullRequestEvent) error {
	if e.PullRequest == nil || e.PullRequest.Number == nil || *e.PullRequest.Number <= 0 {
		return fmt.Errorf("invalid PR number")
	}
	if e.Repo == nil || e.Repo.Owner == nil || e.Repo.Owner.Login == nil ||
		!validNameRegex.MatchString(*e.Repo.Owner.Login) {
		return fmt.Errorf("invalid repository owner")
	}
	if e.Repo.Name == nil || !validNameRegex.MatchString(*e.Repo.Name) {
		return fmt.Errorf("invalid repository name")
	}
	return nil
}

// limiter returns the per-IP rate limiter: 60 requests per minute with
// a burst of 10. The map is rebuilt hourly to bound memory.
func (s *Server) limiter(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastCleanup.IsZero() {
		s.lastCleanup = time.Now()
	}
	if time.Since(s.lastCleanup) > time.Hour {
		s.limiters = make(map[string]*rate.Limiter)
		s.lastCleanup = time.Now()
	}

	l, ok := s.limiters[ip]
	if !ok {
		l = rate.NewLimiter(rate.Limit(1), 10)
		s.limiters[ip] = l
	}
	return l
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}

package coach

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var coachRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "coach_requests_total",
		Help: "Coach completions by personality and outcome",
	},
	[]string{"personality", "result"},
)

// Generator produces a completion for a system prompt and a user message.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

type Service interface {
	// Respond asks the coach for a short message about the day. It makes a
	// single attempt; cancelling ctx abandons the request.
	Respond(ctx context.Context, personality Personality, summary DaySummary) (string, error)
}

type service struct {
	gen     Generator
	timeout time.Duration
	logger  *zap.Logger
}

// NewService creates the coach. A nil generator makes every call fail with
// ErrNotConfigured. A zero timeout leaves the deadline to the caller.
func NewService(gen Generator, timeout time.Duration, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{gen: gen, timeout: timeout, logger: logger}
}

func outcome(err error) string {
	var remote *RemoteServiceError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrEmptyResponse):
		return "empty"
	case errors.As(err, &remote):
		return "remote_error"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "error"
	}
}

func (s *service) Respond(ctx context.Context, personality Personality, summary DaySummary) (string, error) {
	if !personality.Valid() {
		personality = DefaultPersonality
	}

	text, err := s.respond(ctx, personality, summary)
	coachRequests.WithLabelValues(string(personality), outcome(err)).Inc()
	if err != nil {
		s.logger.Warn("Coach request failed",
			zap.String("personality", string(personality)),
			zap.Error(err))
		return "", err
	}
	return text, nil
}

func (s *service) respond(ctx context.Context, personality Personality, summary DaySummary) (string, error) {
	if s.gen == nil {
		return "", ErrNotConfigured
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.gen.Generate(ctx, personality.SystemPrompt(), UserMessage(summary))
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

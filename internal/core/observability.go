package core

import (
	"context"
	"errors"
	"time"

	"orgdirectory/pkg/domain"
)

// Logger is the structured logging surface used by the service. *slog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Outcome classifies how an operation ended.
type Outcome string

// Operation outcomes reported to metrics recorders.
const (
	OutcomeSuccess   Outcome = "success"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeError     Outcome = "error"
)

// ClassifyOutcome maps an operation error onto an Outcome.
func ClassifyOutcome(err error) Outcome {
	var (
		nf domain.ErrNotFound
		ve domain.ValidationError
	)
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &nf):
		return OutcomeNotFound
	case errors.As(err, &ve):
		return OutcomeInvalid
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCancelled
	default:
		return OutcomeError
	}
}

// MetricsRecorder receives one observation per service operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, outcome Outcome, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, Outcome, time.Duration) {}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// observe reports a finished operation to the metrics recorder and the logger.
func (s *Service) observe(ctx context.Context, operation string, started time.Time, err error, attrs ...any) {
	duration := s.clock.Now().Sub(started)
	outcome := ClassifyOutcome(err)
	s.metrics.Observe(ctx, operation, outcome, duration)

	args := append([]any{"operation", operation, "outcome", string(outcome), "duration", duration}, attrs...)
	if outcome == OutcomeError {
		s.logger.Error("directory operation failed", append(args, "error", err)...)
		return
	}
	s.logger.Debug("directory operation finished", args...)
}

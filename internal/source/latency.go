package source

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"autosearch/internal/domain"
	"autosearch/internal/query"
)

// ErrSimulatedFailure is returned by Simulated for injected failures
var ErrSimulatedFailure = errors.New("simulated failure")

// Simulated delays every query of an inner executor and fails a share of
// them, which makes out-of-order completion easy to observe
type Simulated struct {
	inner       query.Executor
	latency     time.Duration
	jitter      time.Duration
	failureRate float64
	random      func() float64
}

var _ query.Executor = (*Simulated)(nil)

// NewSimulated wraps inner. Each call waits latency plus a random share of
// jitter and then fails with probability failureRate.
func NewSimulated(inner query.Executor, latency, jitter time.Duration, failureRate float64) *Simulated {
	return &Simulated{
		inner:       inner,
		latency:     latency,
		jitter:      jitter,
		failureRate: failureRate,
		random:      rand.Float64,
	}
}

func (s *Simulated) Query(ctx context.Context, text string) ([]domain.Suggestion, error) {
	delay := s.latency
	if s.jitter > 0 {
		delay += time.Duration(s.random() * float64(s.jitter))
	}

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if s.failureRate > 0 && s.random() < s.failureRate {
		return nil, ErrSimulatedFailure
	}
	return s.inner.Query(ctx, text)
}

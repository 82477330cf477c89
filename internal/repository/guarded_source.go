package repository

import (
	"context"
	"errors"
	"fmt"
	"stockcheck/internal/domain"
	"stockcheck/internal/metrics"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

type GuardOptions struct {
	RequestsPerSecond float64
	Burst             int
	// consecutive upstream failures before the breaker opens
	MaxConsecutiveFailures uint32
	OpenTimeout            time.Duration
}

func DefaultGuardOptions() GuardOptions {
	return GuardOptions{
		RequestsPerSecond:      5,
		Burst:                  5,
		MaxConsecutiveFailures: 5,
		OpenTimeout:            30 * time.Second,
	}
}

// NewGuardedSource wraps a QuoteSource with a token bucket and a circuit
// breaker, and records the outcome of every call
func NewGuardedSource(source QuoteSource, opts GuardOptions) QuoteSource {
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	st := gobreaker.Settings{
		Name:    source.Name(),
		Timeout: opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxConsecutiveFailures
		},
		IsSuccessful: isBreakerSuccess,
	}

	return &guardedSource{
		source:  source,
		limiter: rate.NewLimiter(limit, opts.Burst),
		breaker: gobreaker.NewCircuitBreaker(st),
	}
}

type guardedSource struct {
	source  QuoteSource
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

func (g *guardedSource) Name() string {
	return g.source.Name()
}

func (g *guardedSource) GetQuote(ctx context.Context, symbol string) (*domain.SourceQuote, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		metrics.UpstreamRequests.WithLabelValues(g.Name(), "rate_limited").Inc()
		// the limiter refuses up front when the wait would outlast the
		// deadline; that is still a timeout to callers
		if _, ok := ctx.Deadline(); ok && ctx.Err() == nil {
			err = fmt.Errorf("%w: %s", context.DeadlineExceeded, err.Error())
		}
		return nil, fmt.Errorf("%s rate limit wait: %w", g.Name(), err)
	}

	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.source.GetQuote(ctx, symbol)
	})
	metrics.UpstreamRequests.WithLabelValues(g.Name(), outcomeLabel(err)).Inc()
	if err != nil {
		return nil, err
	}

	return out.(*domain.SourceQuote), nil
}

// a symbol the upstream does not know, or a caller that gave up, says
// nothing about the health of the upstream
func isBreakerSuccess(err error) bool {
	return err == nil ||
		errors.Is(err, domain.ErrNoUsablePrice) ||
		errors.Is(err, context.Canceled)
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNoUsablePrice):
		return "no_data"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	default:
		return "error"
	}
}

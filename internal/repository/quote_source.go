package repository

import (
	"context"
	"stockcheck/internal/domain"
)

//go:generate mockgen -source=quote_source.go -destination=mocks/mock_quote_source.go

// QuoteSource is one upstream strategy in the resolver chain. It reports
// whatever it knows about a symbol; deciding whether the answer is usable
// is left to the resolver.
type QuoteSource interface {
	Name() string
	GetQuote(ctx context.Context, symbol string) (*domain.SourceQuote, error)
}

// callWithContext runs a blocking upstream call that has no context
// support and gives up when ctx ends. The call itself keeps running until
// the shared http client timeout; its result is dropped.
func callWithContext[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-ch:
		return r.value, r.err
	}
}

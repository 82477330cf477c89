package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput marks a holding row that could not be normalized
	ErrMalformedInput = errors.New("malformed input")

	// ErrQuoteUnavailable means every strategy in the resolver chain failed
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrUpstreamTimeout is a specialization of ErrQuoteUnavailable
	ErrUpstreamTimeout = fmt.Errorf("%w: upstream timed out", ErrQuoteUnavailable)

	// ErrNoUsablePrice is returned by a strategy that answered without a
	// positive price
	ErrNoUsablePrice = errors.New("no usable price")
)

// FetchError is the failure of one strategy for one symbol
type FetchError struct {
	Source string
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s failed for %s: %s", e.Source, e.Symbol, e.Err.Error())
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

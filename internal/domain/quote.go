package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceQuote is the partial data a single upstream strategy returns.
// Any field may be nil when the upstream did not report it.
type SourceQuote struct {
	Name                   string
	LastPrice              *decimal.Decimal
	PreviousClose          *decimal.Decimal
	TrailingAnnualDividend *decimal.Decimal
}

// Quote is the resolved price and dividend data for one symbol at one
// point in time. Once stored in the quote cache it is never modified.
type Quote struct {
	Symbol                 string
	Name                   string
	LastPrice              *decimal.Decimal
	PreviousClose          *decimal.Decimal
	TrailingAnnualDividend *decimal.Decimal
	Source                 string
	FetchedAt              time.Time
}

// QuoteResult is the outcome of resolving one symbol. Exactly one of
// Quote and Err is set.
type QuoteResult struct {
	Quote *Quote
	Err   error
	// Stale is true when Quote came from an expired cache entry because
	// a fresh resolution failed
	Stale bool
}

func (r QuoteResult) Available() bool {
	return r.Quote != nil && r.Err == nil
}

func NewQuoteResult(q Quote) QuoteResult {
	return QuoteResult{Quote: &q}
}

func UnavailableResult(err error) QuoteResult {
	return QuoteResult{Err: err}
}

func DecimalPointer(d decimal.Decimal) *decimal.Decimal {
	return &d
}

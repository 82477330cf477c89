package repository

import (
	"context"
	"fmt"
	"stockcheck/internal/domain"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/equity"
	"github.com/shopspring/decimal"
)

const YahooQuoteSourceName = "yahoo-quote"

// NewYahooQuoteRepository returns the rich quote strategy: last price,
// previous close, trailing dividend and display name in one call
func NewYahooQuoteRepository() QuoteSource {
	return yahooQuoteRepositoryHandler{
		get: equity.Get,
	}
}

type yahooQuoteRepositoryHandler struct {
	get func(symbol string) (*finance.Equity, error)
}

func (h yahooQuoteRepositoryHandler) Name() string {
	return YahooQuoteSourceName
}

func (h yahooQuoteRepositoryHandler) GetQuote(ctx context.Context, symbol string) (*domain.SourceQuote, error) {
	result, err := callWithContext(ctx, func() (*finance.Equity, error) {
		return h.get(symbol)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get yahoo quote for %s: %w", symbol, err)
	}
	if result == nil {
		return nil, fmt.Errorf("yahoo returned no quote for %s: %w", symbol, domain.ErrNoUsablePrice)
	}

	return sourceQuoteFromEquity(*result), nil
}

func sourceQuoteFromEquity(e finance.Equity) *domain.SourceQuote {
	out := &domain.SourceQuote{
		Name:                   e.ShortName,
		LastPrice:              domain.DecimalPointer(decimal.NewFromFloat(e.RegularMarketPrice)),
		TrailingAnnualDividend: domain.DecimalPointer(decimal.NewFromFloat(e.TrailingAnnualDividendRate)),
	}
	if out.Name == "" {
		out.Name = e.LongName
	}
	// yahoo reports 0 when it has no previous close
	if e.RegularMarketPreviousClose > 0 {
		out.PreviousClose = domain.DecimalPointer(decimal.NewFromFloat(e.RegularMarketPreviousClose))
	}
	return out
}

package integration_tests

import (
	"context"
	"errors"
	"fmt"
	"os"
	"stockcheck/internal/domain"
	"stockcheck/internal/repository"
	"sync/atomic"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

type quoteFixtureRow struct {
	Source        string `csv:"source"`
	Symbol        string `csv:"symbol"`
	Name          string `csv:"name"`
	Price         string `csv:"price"`
	PreviousClose string `csv:"previousClose"`
	Dividend      string `csv:"dividend"`
}

// errorPrice in a fixture row makes the source fail for that symbol
const errorPrice = "error"

// fixtureQuoteSource answers from a quotes csv instead of the network
type fixtureQuoteSource struct {
	name   string
	quotes map[string]quoteFixtureRow
	calls  *int64
}

func (f fixtureQuoteSource) Name() string {
	return f.name
}

func (f fixtureQuoteSource) Calls() int64 {
	return atomic.LoadInt64(f.calls)
}

func (f fixtureQuoteSource) GetQuote(ctx context.Context, symbol string) (*domain.SourceQuote, error) {
	atomic.AddInt64(f.calls, 1)
	row, ok := f.quotes[symbol]
	if !ok {
		return nil, fmt.Errorf("%s has no %s: %w", f.name, symbol, domain.ErrNoUsablePrice)
	}
	if row.Price == errorPrice {
		return nil, errors.New("upstream returned 500")
	}

	return &domain.SourceQuote{
		Name:                   row.Name,
		LastPrice:              optionalDecimal(row.Price),
		PreviousClose:          optionalDecimal(row.PreviousClose),
		TrailingAnnualDividend: optionalDecimal(row.Dividend),
	}, nil
}

func optionalDecimal(s string) *decimal.Decimal {
	if s == "" {
		return nil
	}
	d := decimal.RequireFromString(s)
	return &d
}

// NewFixtureQuoteSources loads one fake source per distinct source name
// in the fixture file
func NewFixtureQuoteSources(path string) (map[string]fixtureQuoteSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows := []quoteFixtureRow{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	out := map[string]fixtureQuoteSource{}
	for _, row := range rows {
		source, ok := out[row.Source]
		if !ok {
			source = fixtureQuoteSource{
				name:   row.Source,
				quotes: map[string]quoteFixtureRow{},
				calls:  new(int64),
			}
			out[row.Source] = source
		}
		source.quotes[row.Symbol] = row
	}
	return out, nil
}

func guarded(sources map[string]fixtureQuoteSource, names ...string) []repository.QuoteSource {
	out := []repository.QuoteSource{}
	for _, name := range names {
		out = append(out, repository.NewGuardedSource(sources[name], repository.DefaultGuardOptions()))
	}
	return out
}

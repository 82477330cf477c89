package repository

import (
	"context"
	"fmt"
	"stockcheck/internal/domain"
	"stockcheck/internal/util"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
)

const YahooChartSourceName = "yahoo-chart"

// how far back to look for the most recent daily bar; covers long
// weekends and exchange holidays
const chartLookbackDays = 10

func NewYahooChartRepository(clock util.Clock) QuoteSource {
	return yahooChartRepositoryHandler{
		Clock:    clock,
		listBars: listChartBars,
	}
}

type yahooChartRepositoryHandler struct {
	Clock    util.Clock
	listBars func(params *chart.Params) ([]finance.ChartBar, error)
}

func listChartBars(params *chart.Params) ([]finance.ChartBar, error) {
	iter := chart.Get(params)
	bars := []finance.ChartBar{}
	for iter.Next() {
		bars = append(bars, *iter.Bar())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return bars, nil
}

func (h yahooChartRepositoryHandler) Name() string {
	return YahooChartSourceName
}

func (h yahooChartRepositoryHandler) GetQuote(ctx context.Context, symbol string) (*domain.SourceQuote, error) {
	end := h.Clock.Now()
	start := end.AddDate(0, 0, -chartLookbackDays)
	params := &chart.Params{
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Symbol:   symbol,
		Interval: datetime.OneDay,
	}

	bars, err := callWithContext(ctx, func() ([]finance.ChartBar, error) {
		return h.listBars(params)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get chart bars for %s: %w", symbol, err)
	}

	// yahoo emits placeholder bars with empty closes for halted days
	closes := []finance.ChartBar{}
	for _, b := range bars {
		if b.Close.IsPositive() {
			closes = append(closes, b)
		}
	}
	if len(closes) == 0 {
		return nil, fmt.Errorf("no chart bars for %s in the last %d days: %w", symbol, chartLookbackDays, domain.ErrNoUsablePrice)
	}

	out := &domain.SourceQuote{
		LastPrice: domain.DecimalPointer(closes[len(closes)-1].Close),
	}
	if len(closes) > 1 {
		out.PreviousClose = domain.DecimalPointer(closes[len(closes)-2].Close)
	}
	return out, nil
}

package l1_service

import (
	"fmt"
	"stockcheck/internal/domain"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// AggregateValuation computes per-holding and portfolio metrics. It is
// pure: the same holdings and quotes always give the same result. A
// holding with no entry in quotes is unavailable.
func AggregateValuation(holdings []domain.Holding, quotes map[string]domain.QuoteResult) domain.Valuation {
	out := domain.Valuation{
		Rows: make([]domain.ValuationRow, 0, len(holdings)),
	}

	for _, h := range holdings {
		result, ok := quotes[h.Symbol]
		if !ok {
			result = domain.UnavailableResult(fmt.Errorf("no quote requested for %s: %w", h.Symbol, domain.ErrQuoteUnavailable))
		}
		row := valuationRow(h, result)
		out.Rows = append(out.Rows, row)
		out.Summary = addToSummary(out.Summary, row)
	}

	return out
}

func valuationRow(h domain.Holding, result domain.QuoteResult) domain.ValuationRow {
	row := domain.ValuationRow{
		Holding:   h,
		CostBasis: h.CostBasis(),
		Status:    domain.RowStatusUnavailable,
	}

	if !result.Available() || result.Quote.LastPrice == nil {
		err := result.Err
		if err == nil {
			err = domain.ErrQuoteUnavailable
		}
		row.Reason = err.Error()
		return row
	}

	q := result.Quote
	row.Quote = q
	row.Stale = result.Stale
	row.Status = domain.RowStatusPriced

	qty := decimal.NewFromInt(h.Quantity)
	last := *q.LastPrice

	row.MarketValue = domain.DecimalPointer(last.Mul(qty))
	row.Profit = domain.DecimalPointer(last.Sub(h.AcquisitionPrice).Mul(qty))
	if !h.AcquisitionPrice.IsZero() {
		row.ProfitPercent = domain.DecimalPointer(last.Sub(h.AcquisitionPrice).Div(h.AcquisitionPrice).Mul(hundred))
	}
	if q.PreviousClose != nil {
		row.DayChange = domain.DecimalPointer(last.Sub(*q.PreviousClose).Mul(qty))
	}

	if q.TrailingAnnualDividend != nil {
		dividend := *q.TrailingAnnualDividend
		row.DividendIncome = domain.DecimalPointer(dividend.Mul(qty))
		if !h.AcquisitionPrice.IsZero() {
			row.YieldAtCost = domain.DecimalPointer(dividend.Div(h.AcquisitionPrice).Mul(hundred))
		}
		if !last.IsZero() {
			row.CurrentYield = domain.DecimalPointer(dividend.Div(last).Mul(hundred))
		}
	}

	return row
}

func addToSummary(s domain.PortfolioSummary, row domain.ValuationRow) domain.PortfolioSummary {
	s.TotalCount++
	s.TotalCostBasis = s.TotalCostBasis.Add(row.CostBasis)
	if row.Status == domain.RowStatusPriced {
		s.PricedCount++
	}
	if row.Profit != nil {
		s.TotalProfit = s.TotalProfit.Add(*row.Profit)
	}
	if row.MarketValue != nil {
		s.TotalMarketValue = s.TotalMarketValue.Add(*row.MarketValue)
	}
	if row.DividendIncome != nil {
		s.TotalDividendIncome = s.TotalDividendIncome.Add(*row.DividendIncome)
	}
	return s
}

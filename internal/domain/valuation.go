package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RowStatus string

const (
	RowStatusPriced      RowStatus = "priced"
	RowStatusUnavailable RowStatus = "unavailable"
)

// ValuationRow is derived from a Holding and its QuoteResult on every pass.
// Nil pointers mean the value is unknown, which is different from zero.
type ValuationRow struct {
	Holding        Holding
	Quote          *Quote
	Stale          bool
	Status         RowStatus
	Reason         string
	CostBasis      decimal.Decimal
	MarketValue    *decimal.Decimal
	Profit         *decimal.Decimal
	ProfitPercent  *decimal.Decimal
	DayChange      *decimal.Decimal
	DividendIncome *decimal.Decimal
	YieldAtCost    *decimal.Decimal
	CurrentYield   *decimal.Decimal
}

type PortfolioSummary struct {
	TotalProfit         decimal.Decimal
	TotalDividendIncome decimal.Decimal
	TotalCostBasis      decimal.Decimal
	TotalMarketValue    decimal.Decimal
	PricedCount         int
	TotalCount          int
}

type Valuation struct {
	Rows    []ValuationRow
	Summary PortfolioSummary
}

// PortfolioValuation is the finished result of one valuation pass
type PortfolioValuation struct {
	ValuationID uuid.UUID
	GeneratedAt time.Time
	Valuation
	Skipped []SkippedRow
}

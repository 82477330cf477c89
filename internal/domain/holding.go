package domain

import (
	"github.com/shopspring/decimal"
)

// Holding is one normalized portfolio position. It is built by the
// normalizer and not modified for the rest of a valuation pass.
type Holding struct {
	Symbol           string
	AcquisitionPrice decimal.Decimal
	Quantity         int64
	Note             string
}

func (h Holding) CostBasis() decimal.Decimal {
	return h.AcquisitionPrice.Mul(decimal.NewFromInt(h.Quantity))
}

// SkippedRow records a raw input row the normalizer refused
type SkippedRow struct {
	Row    int
	Reason string
	Err    error
}

// HeldSymbols returns the distinct symbols in holdings, in input order
func HeldSymbols(holdings []Holding) []string {
	seen := map[string]struct{}{}
	symbols := []string{}
	for _, h := range holdings {
		if _, ok := seen[h.Symbol]; ok {
			continue
		}
		seen[h.Symbol] = struct{}{}
		symbols = append(symbols, h.Symbol)
	}
	return symbols
}

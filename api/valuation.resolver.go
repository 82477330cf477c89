package api

import (
	"fmt"
	"net/http"
	"stockcheck/internal/domain"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type valuationRequest struct {
	Holdings []map[string]any `json:"holdings" binding:"required"`
}

type ValuationHoldingResponse struct {
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	Quantity         int64   `json:"quantity"`
	AcquisitionPrice string  `json:"acquisitionPrice"`
	LastPrice        *string `json:"lastPrice"`
	Profit           *string `json:"profit"`
	ProfitPercent    *string `json:"profitPercent"`
	YieldAtCost      *string `json:"yieldAtCost"`
	CurrentYield     *string `json:"currentYield"`
	DividendIncome   *string `json:"dividendIncome"`
	Status           string  `json:"status"`
	Stale            bool    `json:"stale"`
	Reason           string  `json:"reason,omitempty"`
}

type ValuationSummaryResponse struct {
	TotalProfit         string `json:"totalProfit"`
	TotalDividendIncome string `json:"totalDividendIncome"`
	TotalCostBasis      string `json:"totalCostBasis"`
	TotalMarketValue    string `json:"totalMarketValue"`
	PricedCount         int    `json:"pricedCount"`
	TotalCount          int    `json:"totalCount"`
}

type SkippedRowResponse struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type ValuationResponse struct {
	ValuationID string                     `json:"valuationId"`
	GeneratedAt time.Time                  `json:"generatedAt"`
	Holdings    []ValuationHoldingResponse `json:"holdings"`
	Summary     ValuationSummaryResponse   `json:"summary"`
	Skipped     []SkippedRowResponse       `json:"skipped"`
}

const statusPriceUnavailable = "price unavailable"

func (m ApiHandler) postValuation(c *gin.Context) {
	var req valuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to read holdings: %w", err), c, http.StatusBadRequest)
		return
	}

	rows := make([]map[string]string, 0, len(req.Holdings))
	for _, h := range req.Holdings {
		rows = append(rows, stringFields(h))
	}

	valuation := m.ValuationService.Value(c.Request.Context(), rows)
	c.JSON(http.StatusOK, NewValuationResponse(valuation))
}

func (m ApiHandler) getValuation(c *gin.Context) {
	valuation, err := m.ValuationService.ValueHoldingsFile(c.Request.Context())
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	c.JSON(http.StatusOK, NewValuationResponse(valuation))
}

// stringFields flattens a decoded JSON object into the raw row shape the
// normalizer takes. Numbers keep their literal text.
func stringFields(in map[string]any) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch x := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = x
		default:
			out[k] = fmt.Sprint(x)
		}
	}
	return out
}

func NewValuationResponse(v *domain.PortfolioValuation) ValuationResponse {
	out := ValuationResponse{
		ValuationID: v.ValuationID.String(),
		GeneratedAt: v.GeneratedAt,
		Holdings:    make([]ValuationHoldingResponse, 0, len(v.Rows)),
		Skipped:     make([]SkippedRowResponse, 0, len(v.Skipped)),
		Summary: ValuationSummaryResponse{
			TotalProfit:         v.Summary.TotalProfit.StringFixed(2),
			TotalDividendIncome: v.Summary.TotalDividendIncome.StringFixed(2),
			TotalCostBasis:      v.Summary.TotalCostBasis.StringFixed(2),
			TotalMarketValue:    v.Summary.TotalMarketValue.StringFixed(2),
			PricedCount:         v.Summary.PricedCount,
			TotalCount:          v.Summary.TotalCount,
		},
	}

	for _, row := range v.Rows {
		h := ValuationHoldingResponse{
			Symbol:           row.Holding.Symbol,
			Quantity:         row.Holding.Quantity,
			AcquisitionPrice: row.Holding.AcquisitionPrice.StringFixed(2),
			Profit:           fixed(row.Profit),
			ProfitPercent:    fixed(row.ProfitPercent),
			YieldAtCost:      fixed(row.YieldAtCost),
			CurrentYield:     fixed(row.CurrentYield),
			DividendIncome:   fixed(row.DividendIncome),
			Status:           string(row.Status),
			Stale:            row.Stale,
			Reason:           row.Reason,
		}
		if row.Quote != nil {
			h.Name = row.Quote.Name
			h.LastPrice = fixed(row.Quote.LastPrice)
		}
		if row.Status == domain.RowStatusUnavailable {
			h.Status = statusPriceUnavailable
		}
		out.Holdings = append(out.Holdings, h)
	}

	for _, s := range v.Skipped {
		out.Skipped = append(out.Skipped, SkippedRowResponse{
			Row:    s.Row,
			Reason: s.Reason,
		})
	}

	return out
}

func fixed(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

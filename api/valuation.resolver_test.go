package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"stockcheck/internal/domain"
	mock_l3_service "stockcheck/internal/service/l3/mocks"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testValuation() *domain.PortfolioValuation {
	profit := decimal.NewFromInt(2000)
	percent := decimal.RequireFromString("20")
	last := decimal.NewFromInt(1200)
	return &domain.PortfolioValuation{
		ValuationID: uuid.MustParse("6f1b0c2e-8a51-4c3e-9f0e-2c1d5b7a9e10"),
		GeneratedAt: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
		Valuation: domain.Valuation{
			Rows: []domain.ValuationRow{
				{
					Holding:       domain.Holding{Symbol: "AAA", AcquisitionPrice: decimal.NewFromInt(1000), Quantity: 10},
					Quote:         &domain.Quote{Symbol: "AAA", Name: "AAA Corp", LastPrice: &last},
					Status:        domain.RowStatusPriced,
					Profit:        &profit,
					ProfitPercent: &percent,
				},
				{
					Holding: domain.Holding{Symbol: "BBB", Quantity: 5},
					Status:  domain.RowStatusUnavailable,
					Reason:  "quote unavailable",
				},
			},
			Summary: domain.PortfolioSummary{
				TotalProfit:    profit,
				TotalCostBasis: decimal.NewFromInt(10000),
				PricedCount:    1,
				TotalCount:     2,
			},
		},
		Skipped: []domain.SkippedRow{{Row: 3, Reason: "empty symbol: malformed input"}},
	}
}

func Test_postValuation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("renders the valuation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		valuationService := mock_l3_service.NewMockValuationService(ctrl)
		valuationService.EXPECT().
			Value(gomock.Any(), []map[string]string{
				{"symbol": "AAA", "acquisitionPrice": "1000", "quantity": "10"},
				{"symbol": "BBB", "acquisitionPrice": "0", "quantity": "5"},
			}).
			Return(testValuation())

		router := ApiHandler{ValuationService: valuationService}.InitializeRouterEngine()
		body := `{"holdings":[{"symbol":"AAA","acquisitionPrice":"1000","quantity":10},{"symbol":"BBB","acquisitionPrice":0,"quantity":"5"}]}`
		req := httptest.NewRequest(http.MethodPost, "/valuation", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, "6f1b0c2e-8a51-4c3e-9f0e-2c1d5b7a9e10", resp["valuationId"])

		holdings := resp["holdings"].([]any)
		require.Len(t, holdings, 2)
		aaa := holdings[0].(map[string]any)
		require.Equal(t, "2000.00", aaa["profit"])
		require.Equal(t, "1200.00", aaa["lastPrice"])
		require.Equal(t, "AAA Corp", aaa["name"])
		require.Equal(t, "priced", aaa["status"])
		require.Nil(t, aaa["yieldAtCost"])

		bbb := holdings[1].(map[string]any)
		require.Equal(t, "price unavailable", bbb["status"])
		require.Nil(t, bbb["profit"])
		require.Nil(t, bbb["lastPrice"])

		summary := resp["summary"].(map[string]any)
		require.Equal(t, "2000.00", summary["totalProfit"])
		require.Equal(t, "10000.00", summary["totalCostBasis"])
		require.Equal(t, float64(1), summary["pricedCount"])
		require.Equal(t, float64(2), summary["totalCount"])

		require.Len(t, resp["skipped"].([]any), 1)
	})

	t.Run("rejects a body without holdings", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		valuationService := mock_l3_service.NewMockValuationService(ctrl)

		router := ApiHandler{ValuationService: valuationService}.InitializeRouterEngine()
		req := httptest.NewRequest(http.MethodPost, "/valuation", strings.NewReader(`{"rows":[]}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func Test_getValuation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("values the holdings file", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		valuationService := mock_l3_service.NewMockValuationService(ctrl)
		valuationService.EXPECT().ValueHoldingsFile(gomock.Any()).Return(testValuation(), nil)

		router := ApiHandler{ValuationService: valuationService}.InitializeRouterEngine()
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/valuation", nil))

		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `"totalCount":2`)
	})

	t.Run("unreadable holdings file", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		valuationService := mock_l3_service.NewMockValuationService(ctrl)
		valuationService.EXPECT().ValueHoldingsFile(gomock.Any()).Return(nil, errors.New("failed to load holdings"))

		router := ApiHandler{ValuationService: valuationService}.InitializeRouterEngine()
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/valuation", nil))

		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.Contains(t, w.Body.String(), "failed to load holdings")
	})
}

func Test_healthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := ApiHandler{}.InitializeRouterEngine()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "go_goroutines")
}

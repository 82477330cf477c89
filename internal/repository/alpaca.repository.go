package repository

import (
	"context"
	"fmt"
	"stockcheck/internal/domain"
	"strings"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
)

const AlpacaTradeSourceName = "alpaca-trade"

// NewAlpacaRepository returns the minimal last-price strategy backed by
// alpaca's latest trade endpoint
func NewAlpacaRepository(apiKey, apiSecret string, endpoint string) QuoteSource {
	mdClient := marketdata.NewClient(marketdata.ClientOpts{
		BaseURL:   endpoint,
		APIKey:    apiKey,
		APISecret: apiSecret,
	})

	return alpacaRepositoryHandler{
		getLatestTrade: func(symbol string) (*marketdata.Trade, error) {
			return mdClient.GetLatestTrade(symbol, marketdata.GetLatestTradeRequest{})
		},
	}
}

type alpacaRepositoryHandler struct {
	getLatestTrade func(symbol string) (*marketdata.Trade, error)
}

func (h alpacaRepositoryHandler) Name() string {
	return AlpacaTradeSourceName
}

func (h alpacaRepositoryHandler) GetQuote(ctx context.Context, symbol string) (*domain.SourceQuote, error) {
	// alpaca only lists US equities, which never carry an exchange suffix.
	// asking anyway just burns rate limit and trips the breaker
	if strings.Contains(symbol, ".") {
		return nil, fmt.Errorf("alpaca does not list %s: %w", symbol, domain.ErrNoUsablePrice)
	}

	trade, err := callWithContext(ctx, func() (*marketdata.Trade, error) {
		return h.getLatestTrade(symbol)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get latest trade for %s: %w", symbol, err)
	}
	if trade == nil {
		return nil, fmt.Errorf("no latest trade for %s: %w", symbol, domain.ErrNoUsablePrice)
	}

	return &domain.SourceQuote{
		LastPrice: domain.DecimalPointer(decimal.NewFromFloat(trade.Price)),
	}, nil
}

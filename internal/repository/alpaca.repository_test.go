package repository

import (
	"context"
	"errors"
	"stockcheck/internal/domain"
	"testing"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func Test_alpacaRepositoryHandler_GetQuote(t *testing.T) {
	t.Run("returns last trade price", func(t *testing.T) {
		handler := alpacaRepositoryHandler{
			getLatestTrade: func(symbol string) (*marketdata.Trade, error) {
				require.Equal(t, "AAPL", symbol)
				return &marketdata.Trade{Price: 189.25}, nil
			},
		}

		quote, err := handler.GetQuote(context.Background(), "AAPL")
		require.NoError(t, err)
		require.True(t, decimal.RequireFromString("189.25").Equal(*quote.LastPrice))
		require.Nil(t, quote.PreviousClose)
		require.Nil(t, quote.TrailingAnnualDividend)
	})

	t.Run("suffixed symbols are not requested", func(t *testing.T) {
		handler := alpacaRepositoryHandler{
			getLatestTrade: func(symbol string) (*marketdata.Trade, error) {
				t.Fatal("unexpected upstream call")
				return nil, nil
			},
		}

		_, err := handler.GetQuote(context.Background(), "7203.T")
		require.ErrorIs(t, err, domain.ErrNoUsablePrice)
	})

	t.Run("missing trade is no usable price", func(t *testing.T) {
		handler := alpacaRepositoryHandler{
			getLatestTrade: func(symbol string) (*marketdata.Trade, error) {
				return nil, nil
			},
		}

		_, err := handler.GetQuote(context.Background(), "ZZZZ")
		require.ErrorIs(t, err, domain.ErrNoUsablePrice)
	})

	t.Run("upstream error is wrapped", func(t *testing.T) {
		upstreamErr := errors.New("429 too many requests")
		handler := alpacaRepositoryHandler{
			getLatestTrade: func(symbol string) (*marketdata.Trade, error) {
				return nil, upstreamErr
			},
		}

		_, err := handler.GetQuote(context.Background(), "AAPL")
		require.ErrorIs(t, err, upstreamErr)
		require.NotErrorIs(t, err, domain.ErrNoUsablePrice)
	})
}

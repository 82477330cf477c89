package l1_service

import (
	"context"
	"errors"
	"math"
	"stockcheck/internal/domain"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool {
	return a.Equal(b)
})

func Test_normalizerServiceHandler_Normalize(t *testing.T) {
	ctx := context.Background()
	handler := NewNormalizerService(".T")

	t.Run("cleans values and matches header aliases", func(t *testing.T) {
		result := handler.Normalize(ctx, []map[string]string{
			{" Ticker ": " aapl ", "Buy Price": "$1,234.50", "Shares": "10株", "Memo": " long term ", "sector": "tech"},
			{"証券コード": "7203", "取得単価": "¥2,000", "株数": "100"},
		})

		require.Empty(t, result.Skipped)
		diff := cmp.Diff([]domain.Holding{
			{Symbol: "AAPL", AcquisitionPrice: decimal.RequireFromString("1234.5"), Quantity: 10, Note: "long term"},
			{Symbol: "7203.T", AcquisitionPrice: decimal.NewFromInt(2000), Quantity: 100},
		}, result.Holdings, decimalComparer)
		require.Empty(t, diff)
	})

	t.Run("bad numbers default to zero", func(t *testing.T) {
		result := handler.Normalize(ctx, []map[string]string{
			{"symbol": "AAA", "price": "n/a", "quantity": "-3"},
			{"symbol": "BBB", "price": "-10", "quantity": "2.5"},
			{"symbol": "CCC", "price": "", "quantity": ""},
		})

		require.Len(t, result.Holdings, 3)
		for _, h := range result.Holdings {
			require.True(t, h.AcquisitionPrice.IsZero(), h.Symbol)
			require.Zero(t, h.Quantity, h.Symbol)
		}
	})

	t.Run("skips unusable rows without failing the batch", func(t *testing.T) {
		result := handler.Normalize(ctx, []map[string]string{
			{"symbol": "", "price": "10", "quantity": "1"},
			{"symbol": "AAA", "price": "10", "quantity": "1"},
			{"symbol": "Missing", "price": "10", "quantity": "1"},
			{"symbol": " ", "price": " ", "quantity": ""},
		})

		require.Len(t, result.Holdings, 1)
		require.Equal(t, "AAA", result.Holdings[0].Symbol)
		require.Len(t, result.Skipped, 3)
		require.Equal(t, []int{1, 3, 4}, []int{result.Skipped[0].Row, result.Skipped[1].Row, result.Skipped[2].Row})
		for _, s := range result.Skipped {
			require.True(t, errors.Is(s.Err, domain.ErrMalformedInput))
			require.NotEmpty(t, s.Reason)
		}
	})

	t.Run("duplicates are aggregated at first position", func(t *testing.T) {
		result := handler.Normalize(ctx, []map[string]string{
			{"symbol": "AAA", "price": "100", "quantity": "10", "note": "first"},
			{"symbol": "BBB", "price": "5", "quantity": "1"},
			{"symbol": "aaa", "price": "200", "quantity": "30", "note": "second"},
		})

		require.Len(t, result.Holdings, 2)
		aaa := result.Holdings[0]
		require.Equal(t, "AAA", aaa.Symbol)
		require.Equal(t, int64(40), aaa.Quantity)
		// (100*10 + 200*30) / 40
		require.True(t, decimal.NewFromInt(175).Equal(aaa.AcquisitionPrice), aaa.AcquisitionPrice.String())
		require.Equal(t, "first; second", aaa.Note)
		require.Equal(t, "BBB", result.Holdings[1].Symbol)
	})

	t.Run("zero quantity duplicates keep the first price", func(t *testing.T) {
		result := handler.Normalize(ctx, []map[string]string{
			{"symbol": "AAA", "price": "100", "quantity": "0"},
			{"symbol": "AAA", "price": "300", "quantity": "0"},
		})

		require.Len(t, result.Holdings, 1)
		require.True(t, decimal.NewFromInt(100).Equal(result.Holdings[0].AcquisitionPrice))
	})

	t.Run("suffixed and bare codes merge", func(t *testing.T) {
		result := handler.Normalize(ctx, []map[string]string{
			{"code": "7203", "qty": "100"},
			{"code": "7203.T", "qty": "50"},
		})

		require.Len(t, result.Holdings, 1)
		require.Equal(t, "7203.T", result.Holdings[0].Symbol)
		require.Equal(t, int64(150), result.Holdings[0].Quantity)
	})

	t.Run("empty suffix leaves codes alone", func(t *testing.T) {
		result := NewNormalizerService("").Normalize(ctx, []map[string]string{
			{"symbol": "7203", "quantity": "1"},
		})

		require.Equal(t, "7203", result.Holdings[0].Symbol)
	})

	t.Run("quantity past int64 range defaults to zero", func(t *testing.T) {
		result := handler.Normalize(ctx, []map[string]string{
			{"symbol": "AAA", "price": "10", "quantity": "9223372036854775808"},
			{"symbol": "BBB", "price": "10", "quantity": "9223372036854775807"},
		})

		require.Len(t, result.Holdings, 2)
		require.Zero(t, result.Holdings[0].Quantity)
		require.Equal(t, int64(math.MaxInt64), result.Holdings[1].Quantity)
	})

	t.Run("duplicate that would overflow the total is skipped", func(t *testing.T) {
		result := handler.Normalize(ctx, []map[string]string{
			{"symbol": "AAA", "price": "10", "quantity": "9223372036854775000"},
			{"symbol": "AAA", "price": "20", "quantity": "1000"},
			{"symbol": "AAA", "price": "20", "quantity": "7"},
		})

		require.Len(t, result.Holdings, 1)
		require.Equal(t, int64(9223372036854775007), result.Holdings[0].Quantity)
		require.Len(t, result.Skipped, 1)
		require.Equal(t, 2, result.Skipped[0].Row)
		require.True(t, errors.Is(result.Skipped[0].Err, domain.ErrMalformedInput))
	})

	t.Run("byte order mark on the first header is ignored", func(t *testing.T) {
		result := handler.Normalize(ctx, []map[string]string{
			{"\uFEFF証券コード": "7203", "株数": "100"},
		})

		require.Empty(t, result.Skipped)
		require.Len(t, result.Holdings, 1)
		require.Equal(t, "7203.T", result.Holdings[0].Symbol)
		require.Equal(t, int64(100), result.Holdings[0].Quantity)
	})

	t.Run("no rows", func(t *testing.T) {
		result := handler.Normalize(ctx, nil)
		require.Empty(t, result.Holdings)
		require.Empty(t, result.Skipped)
	})
}

package l3_service

import (
	"context"
	"errors"
	"fmt"
	"stockcheck/internal/domain"
	"stockcheck/internal/metrics"
	l1_service "stockcheck/internal/service/l1"
	mock_l2_service "stockcheck/internal/service/l2/mocks"
	"stockcheck/internal/util"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var testNow = time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)

func pricedResult(symbol string, price int64) domain.QuoteResult {
	return domain.NewQuoteResult(domain.Quote{
		Symbol:    symbol,
		LastPrice: domain.DecimalPointer(decimal.NewFromInt(price)),
		Source:    "test",
		FetchedAt: testNow,
	})
}

func newTestQuoteCache(t *testing.T) (*l1_service.QuoteCache, *util.FakeClock) {
	clock := util.NewFakeClock(testNow)
	cache, err := l1_service.NewQuoteCache(time.Minute, 100, clock)
	require.NoError(t, err)
	return cache, clock
}

func Test_fetchOrchestratorServiceHandler_ResolveAll(t *testing.T) {
	ctx := context.Background()

	t.Run("partial failures still give a complete map", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		resolver := mock_l2_service.NewMockQuoteResolverService(ctrl)
		cache, _ := newTestQuoteCache(t)

		failing := map[string]bool{"BBB": true, "DDD": true}
		resolver.EXPECT().
			Resolve(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, symbol string) domain.QuoteResult {
				if failing[symbol] {
					return domain.UnavailableResult(fmt.Errorf("%s: %w", symbol, domain.ErrQuoteUnavailable))
				}
				return pricedResult(symbol, 10)
			}).
			Times(5)

		handler := NewFetchOrchestratorService(cache, resolver, 3, time.Second)
		results := handler.ResolveAll(ctx, []string{"AAA", "BBB", "CCC", "DDD", "EEE"})

		require.Len(t, results, 5)
		available := 0
		for symbol, r := range results {
			if r.Available() {
				available++
				continue
			}
			require.True(t, failing[symbol], symbol)
			require.ErrorIs(t, r.Err, domain.ErrQuoteUnavailable)
		}
		require.Equal(t, 3, available)
	})

	t.Run("duplicate symbols are fetched once", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		resolver := mock_l2_service.NewMockQuoteResolverService(ctrl)
		cache, _ := newTestQuoteCache(t)

		resolver.EXPECT().Resolve(gomock.Any(), "AAA").Return(pricedResult("AAA", 1)).Times(1)

		handler := NewFetchOrchestratorService(cache, resolver, 4, time.Second)
		results := handler.ResolveAll(ctx, []string{"AAA", "AAA", "AAA"})
		require.Len(t, results, 1)
		require.True(t, results["AAA"].Available())
	})

	t.Run("cached quotes skip the resolver", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		resolver := mock_l2_service.NewMockQuoteResolverService(ctrl)
		cache, _ := newTestQuoteCache(t)
		cache.Put("AAA", *pricedResult("AAA", 5).Quote)

		resolver.EXPECT().Resolve(gomock.Any(), gomock.Any()).Times(0)

		handler := NewFetchOrchestratorService(cache, resolver, 4, time.Second)
		results := handler.ResolveAll(ctx, []string{"AAA"})
		require.True(t, results["AAA"].Available())
	})

	t.Run("concurrency is bounded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		resolver := mock_l2_service.NewMockQuoteResolverService(ctrl)
		cache, _ := newTestQuoteCache(t)

		var inFlight, maxInFlight int32
		resolver.EXPECT().
			Resolve(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, symbol string) domain.QuoteResult {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					m := atomic.LoadInt32(&maxInFlight)
					if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return pricedResult(symbol, 1)
			}).
			Times(8)

		handler := NewFetchOrchestratorService(cache, resolver, 2, 5*time.Second)
		results := handler.ResolveAll(ctx, []string{"A", "B", "C", "D", "E", "F", "G", "H"})

		require.Len(t, results, 8)
		require.LessOrEqual(t, atomic.LoadInt32(&maxInFlight), int32(2))
	})

	t.Run("deadline abandons outstanding fetches", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		resolver := mock_l2_service.NewMockQuoteResolverService(ctrl)
		cache, _ := newTestQuoteCache(t)
		release := make(chan struct{})
		defer close(release)

		resolver.EXPECT().
			Resolve(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, symbol string) domain.QuoteResult {
				if symbol == "SLOW" {
					<-release
				}
				return pricedResult(symbol, 1)
			}).
			AnyTimes()

		handler := NewFetchOrchestratorService(cache, resolver, 2, 50*time.Millisecond)
		start := time.Now()
		results := handler.ResolveAll(ctx, []string{"FAST", "SLOW"})

		require.Less(t, time.Since(start), time.Second)
		require.Len(t, results, 2)
		require.True(t, results["FAST"].Available())
		require.True(t, errors.Is(results["SLOW"].Err, domain.ErrUpstreamTimeout))
	})

	t.Run("queued symbols past the deadline get their stale quote", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		resolver := mock_l2_service.NewMockQuoteResolverService(ctrl)
		cache, clock := newTestQuoteCache(t)
		cache.Put("QUEUED", *pricedResult("QUEUED", 4).Quote)
		clock.Advance(2 * time.Minute)
		release := make(chan struct{})
		defer close(release)

		resolver.EXPECT().
			Resolve(gomock.Any(), "SLOW").
			DoAndReturn(func(ctx context.Context, symbol string) domain.QuoteResult {
				<-release
				return pricedResult(symbol, 1)
			}).
			AnyTimes()

		staleBefore := testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("stale"))
		handler := NewFetchOrchestratorService(cache, resolver, 1, 50*time.Millisecond)
		results := handler.ResolveAll(ctx, []string{"SLOW", "QUEUED"})

		require.Len(t, results, 2)
		require.True(t, errors.Is(results["SLOW"].Err, domain.ErrUpstreamTimeout))
		require.True(t, results["QUEUED"].Available())
		require.True(t, results["QUEUED"].Stale)
		require.True(t, decimal.NewFromInt(4).Equal(*results["QUEUED"].Quote.LastPrice))
		require.Equal(t, staleBefore+1, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("stale")))
	})

	t.Run("no symbols", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		resolver := mock_l2_service.NewMockQuoteResolverService(ctrl)
		cache, _ := newTestQuoteCache(t)

		handler := NewFetchOrchestratorService(cache, resolver, 2, time.Second)
		require.Empty(t, handler.ResolveAll(ctx, nil))
	})
}

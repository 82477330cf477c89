package l3_service

import (
	"context"
	"fmt"
	"stockcheck/internal/domain"
	"stockcheck/internal/logger"
	l1_service "stockcheck/internal/service/l1"
	l2_service "stockcheck/internal/service/l2"
	"sync"
	"time"
)

// FetchOrchestratorService resolves quotes for many symbols at once
type FetchOrchestratorService interface {
	ResolveAll(ctx context.Context, symbols []string) map[string]domain.QuoteResult
}

type fetchOrchestratorServiceHandler struct {
	QuoteCache           *l1_service.QuoteCache
	QuoteResolverService l2_service.QuoteResolverService
	MaxConcurrency       int
	Deadline             time.Duration
}

func NewFetchOrchestratorService(
	quoteCache *l1_service.QuoteCache,
	quoteResolverService l2_service.QuoteResolverService,
	maxConcurrency int,
	deadline time.Duration,
) FetchOrchestratorService {
	return fetchOrchestratorServiceHandler{
		QuoteCache:           quoteCache,
		QuoteResolverService: quoteResolverService,
		MaxConcurrency:       maxConcurrency,
		Deadline:             deadline,
	}
}

type fetchResult struct {
	Symbol string
	Result domain.QuoteResult
}

// ResolveAll returns an entry for every distinct symbol, whatever
// happened upstream. Symbols still queued or in flight when the deadline
// passes get ErrUpstreamTimeout, or their stale cached quote.
func (h fetchOrchestratorServiceHandler) ResolveAll(ctx context.Context, symbols []string) map[string]domain.QuoteResult {
	log := logger.FromContext(ctx)
	distinct := distinctSymbols(symbols)
	out := make(map[string]domain.QuoteResult, len(distinct))
	if len(distinct) == 0 {
		return out
	}

	if h.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Deadline)
		defer cancel()
	}

	numGoroutines := h.MaxConcurrency
	if numGoroutines <= 0 {
		numGoroutines = 1
	}
	if numGoroutines > len(distinct) {
		numGoroutines = len(distinct)
	}

	inputCh := make(chan string, len(distinct))
	for _, symbol := range distinct {
		inputCh <- symbol
	}
	close(inputCh)

	resultCh := make(chan fetchResult, len(distinct))

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range inputCh {
				if ctx.Err() != nil {
					resultCh <- fetchResult{Symbol: symbol, Result: h.abandoned(symbol)}
					continue
				}
				resultCh <- fetchResult{
					Symbol: symbol,
					Result: h.QuoteCache.Resolve(ctx, symbol, h.QuoteResolverService.Resolve),
				}
			}
		}()
	}

	wg.Wait()
	close(resultCh)

	for r := range resultCh {
		if !r.Result.Available() {
			log.Warnf("quote unavailable for %s: %s", r.Symbol, r.Result.Err.Error())
		}
		out[r.Symbol] = r.Result
	}

	return out
}

func (h fetchOrchestratorServiceHandler) abandoned(symbol string) domain.QuoteResult {
	if stale, ok := h.QuoteCache.StaleResult(symbol); ok {
		return stale
	}
	return domain.UnavailableResult(fmt.Errorf("deadline passed before %s was fetched: %w", symbol, domain.ErrUpstreamTimeout))
}

func distinctSymbols(symbols []string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, s := range symbols {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

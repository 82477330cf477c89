package cmd

import (
	"context"
	"fmt"
	"net/http"
	"stockcheck/api"
	"stockcheck/internal/logger"
	"stockcheck/internal/repository"
	l1_service "stockcheck/internal/service/l1"
	l2_service "stockcheck/internal/service/l2"
	l3_service "stockcheck/internal/service/l3"
	"stockcheck/internal/util"

	finance "github.com/piquette/finance-go"
)

func InitializeDependencies(cfg util.Config) (*api.ApiHandler, error) {
	valuationService, err := InitializeValuationService(cfg)
	if err != nil {
		return nil, err
	}

	return &api.ApiHandler{
		ValuationService: valuationService,
	}, nil
}

func InitializeValuationService(cfg util.Config) (l3_service.ValuationService, error) {
	clock := util.SystemClock()

	// finance-go calls take no context; the client timeout bounds the
	// goroutines left behind when a strategy gives up
	finance.SetHTTPClient(&http.Client{Timeout: 2 * cfg.StrategyTimeout()})

	priceChain, dividendChain, err := buildQuoteSources(cfg, defaultSourceFactories(cfg, clock))
	if err != nil {
		return nil, err
	}

	quoteCache, err := l1_service.NewQuoteCache(cfg.CacheTTL(), cfg.CacheMaxEntries, clock)
	if err != nil {
		return nil, err
	}

	quoteResolverService := l2_service.NewQuoteResolverService(
		priceChain,
		dividendChain,
		cfg.StrategyTimeout(),
		clock,
	)
	fetchOrchestratorService := l3_service.NewFetchOrchestratorService(
		quoteCache,
		quoteResolverService,
		cfg.MaxConcurrentFetches,
		cfg.ValuationDeadline(),
	)

	return l3_service.NewValuationService(
		repository.NewHoldingsRepository(cfg.HoldingsPath, cfg.SkipRows),
		l1_service.NewNormalizerService(cfg.ExchangeSuffix),
		fetchOrchestratorService,
		clock,
	), nil
}

// sourceFactory builds an unguarded strategy. A nil factory result means
// the strategy is known but not configured.
type sourceFactory func() repository.QuoteSource

func defaultSourceFactories(cfg util.Config, clock util.Clock) map[string]sourceFactory {
	return map[string]sourceFactory{
		repository.YahooQuoteSourceName: func() repository.QuoteSource {
			return repository.NewYahooQuoteRepository()
		},
		repository.YahooChartSourceName: func() repository.QuoteSource {
			return repository.NewYahooChartRepository(clock)
		},
		repository.AlpacaTradeSourceName: func() repository.QuoteSource {
			if !cfg.Alpaca.Enabled() {
				return nil
			}
			return repository.NewAlpacaRepository(cfg.Alpaca.ApiKey, cfg.Alpaca.ApiSecret, cfg.Alpaca.Endpoint)
		},
	}
}

// buildQuoteSources turns the configured strategy names into guarded
// chains. A name in both chains maps to the same guarded source, so it
// shares one breaker and one rate limit.
func buildQuoteSources(cfg util.Config, factories map[string]sourceFactory) ([]repository.QuoteSource, []repository.QuoteSource, error) {
	log := logger.FromContext(context.Background())
	opts := repository.DefaultGuardOptions()
	opts.RequestsPerSecond = cfg.UpstreamRps
	opts.Burst = cfg.UpstreamBurst

	built := map[string]repository.QuoteSource{}
	chain := func(names []string) ([]repository.QuoteSource, error) {
		out := []repository.QuoteSource{}
		for _, name := range names {
			if source, ok := built[name]; ok {
				out = append(out, source)
				continue
			}
			factory, ok := factories[name]
			if !ok {
				return nil, fmt.Errorf("unknown quote strategy %q", name)
			}
			source := factory()
			if source == nil {
				log.Warnf("quote strategy %s is not configured, leaving it out", name)
				continue
			}
			guarded := repository.NewGuardedSource(source, opts)
			built[name] = guarded
			out = append(out, guarded)
		}
		return out, nil
	}

	priceChain, err := chain(cfg.PriceStrategies)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid price strategies: %w", err)
	}
	if len(priceChain) == 0 {
		return nil, nil, fmt.Errorf("no usable price strategies in %v", cfg.PriceStrategies)
	}
	dividendChain, err := chain(cfg.DividendStrategies)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid dividend strategies: %w", err)
	}

	return priceChain, dividendChain, nil
}

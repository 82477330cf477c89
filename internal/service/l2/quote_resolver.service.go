package l2_service

import (
	"context"
	"errors"
	"fmt"
	"stockcheck/internal/domain"
	"stockcheck/internal/logger"
	"stockcheck/internal/repository"
	"stockcheck/internal/util"
	"time"
)

//go:generate mockgen -source=quote_resolver.service.go -destination=mocks/mock_quote_resolver.service.go

// QuoteResolverService turns one symbol into a quote by walking ordered
// chains of upstream strategies. It never returns an error; failures are
// carried in the QuoteResult.
type QuoteResolverService interface {
	Resolve(ctx context.Context, symbol string) domain.QuoteResult
}

type quoteResolverServiceHandler struct {
	PriceChain      []repository.QuoteSource
	DividendChain   []repository.QuoteSource
	StrategyTimeout time.Duration
	Clock           util.Clock
}

func NewQuoteResolverService(
	priceChain []repository.QuoteSource,
	dividendChain []repository.QuoteSource,
	strategyTimeout time.Duration,
	clock util.Clock,
) QuoteResolverService {
	return quoteResolverServiceHandler{
		PriceChain:      priceChain,
		DividendChain:   dividendChain,
		StrategyTimeout: strategyTimeout,
		Clock:           clock,
	}
}

type attempt struct {
	quote *domain.SourceQuote
	err   error
}

// resolution holds the strategy calls made for one symbol, so a source
// that sits in both chains is only asked once
type resolution struct {
	handler  quoteResolverServiceHandler
	symbol   string
	attempts map[string]attempt
}

func (r *resolution) call(ctx context.Context, source repository.QuoteSource) attempt {
	if a, ok := r.attempts[source.Name()]; ok {
		return a
	}

	strategyCtx, cancel := context.WithTimeout(ctx, r.handler.StrategyTimeout)
	defer cancel()

	q, err := source.GetQuote(strategyCtx, r.symbol)
	a := attempt{quote: q, err: err}
	if err == nil && q == nil {
		a.err = domain.ErrNoUsablePrice
	}
	if a.err != nil {
		a.err = &domain.FetchError{
			Source: source.Name(),
			Symbol: r.symbol,
			Err:    a.err,
		}
	}
	r.attempts[source.Name()] = a
	return a
}

func (h quoteResolverServiceHandler) Resolve(ctx context.Context, symbol string) domain.QuoteResult {
	log := logger.FromContext(ctx)
	r := &resolution{
		handler:  h,
		symbol:   symbol,
		attempts: map[string]attempt{},
	}

	var (
		priced      *domain.SourceQuote
		priceSource string
		errs        []error
	)
	for _, source := range h.PriceChain {
		a := r.call(ctx, source)
		if a.err == nil && !hasUsablePrice(a.quote) {
			a.err = &domain.FetchError{
				Source: source.Name(),
				Symbol: symbol,
				Err:    domain.ErrNoUsablePrice,
			}
		}
		if a.err != nil {
			log.Debugf("price strategy %s failed for %s: %s", source.Name(), symbol, a.err.Error())
			errs = append(errs, a.err)
			continue
		}
		priced = a.quote
		priceSource = source.Name()
		break
	}

	if priced == nil {
		// a dividend alone cannot value a holding, so the dividend chain
		// is not consulted
		return domain.UnavailableResult(unavailableError(symbol, errs))
	}

	out := domain.Quote{
		Symbol:        symbol,
		Name:          priced.Name,
		LastPrice:     priced.LastPrice,
		PreviousClose: priced.PreviousClose,
		Source:        priceSource,
		FetchedAt:     h.Clock.Now(),
	}

	for _, source := range h.DividendChain {
		a := r.call(ctx, source)
		if a.err != nil {
			log.Debugf("dividend strategy %s failed for %s: %s", source.Name(), symbol, a.err.Error())
			continue
		}
		if a.quote.TrailingAnnualDividend == nil || a.quote.TrailingAnnualDividend.IsNegative() {
			continue
		}
		out.TrailingAnnualDividend = a.quote.TrailingAnnualDividend
		if out.Name == "" {
			out.Name = a.quote.Name
		}
		break
	}

	return domain.NewQuoteResult(out)
}

func hasUsablePrice(q *domain.SourceQuote) bool {
	return q != nil && q.LastPrice != nil && q.LastPrice.IsPositive()
}

// unavailableError is ErrUpstreamTimeout when every attempt timed out,
// ErrQuoteUnavailable otherwise. Either way it wraps each attempt's error.
func unavailableError(symbol string, errs []error) error {
	if len(errs) == 0 {
		return fmt.Errorf("no price strategies for %s: %w", symbol, domain.ErrQuoteUnavailable)
	}

	sentinel := domain.ErrUpstreamTimeout
	for _, err := range errs {
		if !errors.Is(err, context.DeadlineExceeded) {
			sentinel = domain.ErrQuoteUnavailable
			break
		}
	}
	return fmt.Errorf("%w for %s: %w", sentinel, symbol, errors.Join(errs...))
}

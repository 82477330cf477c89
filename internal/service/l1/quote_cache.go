package l1_service

import (
	"context"
	"fmt"
	"stockcheck/internal/domain"
	"stockcheck/internal/metrics"
	"stockcheck/internal/util"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// ResolveFunc produces a fresh quote for one symbol
type ResolveFunc func(ctx context.Context, symbol string) domain.QuoteResult

type cacheEntry struct {
	quote     domain.Quote
	expiresAt time.Time
}

// QuoteCache memoizes resolved quotes per symbol for a fixed TTL, bounded
// by LRU eviction. Entries are immutable; Put swaps in a new pointer.
type QuoteCache struct {
	ttl     time.Duration
	clock   util.Clock
	entries *lru.Cache[string, *cacheEntry]
	group   singleflight.Group
}

func NewQuoteCache(ttl time.Duration, maxEntries int, clock util.Clock) (*QuoteCache, error) {
	entries, err := lru.New[string, *cacheEntry](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create quote cache: %w", err)
	}
	return &QuoteCache{
		ttl:     ttl,
		clock:   clock,
		entries: entries,
	}, nil
}

// Get returns the cached quote only while it is unexpired
func (c *QuoteCache) Get(symbol string) (domain.Quote, bool) {
	q, ok := c.fresh(symbol)
	if ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
	} else {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}
	return q, ok
}

// GetStale returns the cached quote regardless of expiry
func (c *QuoteCache) GetStale(symbol string) (domain.Quote, bool) {
	e, ok := c.entries.Peek(symbol)
	if !ok {
		return domain.Quote{}, false
	}
	return e.quote, true
}

func (c *QuoteCache) Put(symbol string, quote domain.Quote) {
	fetchedAt := quote.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = c.clock.Now()
	}
	c.entries.Add(symbol, &cacheEntry{
		quote:     quote,
		expiresAt: fetchedAt.Add(c.ttl),
	})
}

func (c *QuoteCache) Len() int {
	return c.entries.Len()
}

func (c *QuoteCache) fresh(symbol string) (domain.Quote, bool) {
	e, ok := c.entries.Get(symbol)
	if !ok || !c.clock.Now().Before(e.expiresAt) {
		return domain.Quote{}, false
	}
	return e.quote, true
}

// Resolve returns a fresh cached quote, or runs resolve at most once per
// symbol at a time and shares its result with every concurrent caller.
// The shared call is detached from ctx; a caller whose ctx ends first
// gets the stale entry if there is one, else ErrUpstreamTimeout.
func (c *QuoteCache) Resolve(ctx context.Context, symbol string, resolve ResolveFunc) domain.QuoteResult {
	if q, ok := c.Get(symbol); ok {
		return domain.NewQuoteResult(q)
	}

	ch := c.group.DoChan(symbol, func() (interface{}, error) {
		// a previous flight may have filled the entry since our lookup
		if q, ok := c.fresh(symbol); ok {
			return domain.NewQuoteResult(q), nil
		}

		result := resolve(context.WithoutCancel(ctx), symbol)
		if result.Available() {
			c.Put(symbol, *result.Quote)
			return result, nil
		}
		if stale, ok := c.StaleResult(symbol); ok {
			return stale, nil
		}
		return result, nil
	})

	select {
	case <-ctx.Done():
		if stale, ok := c.StaleResult(symbol); ok {
			return stale
		}
		return domain.UnavailableResult(fmt.Errorf("gave up waiting for %s: %w", symbol, domain.ErrUpstreamTimeout))
	case res := <-ch:
		return copyResult(res.Val.(domain.QuoteResult))
	}
}

// StaleResult wraps the cached quote, expired or not, as a stale result
func (c *QuoteCache) StaleResult(symbol string) (domain.QuoteResult, bool) {
	q, ok := c.GetStale(symbol)
	if !ok {
		return domain.QuoteResult{}, false
	}
	metrics.CacheLookups.WithLabelValues("stale").Inc()
	return domain.QuoteResult{Quote: &q, Stale: true}, true
}

// every waiter shares the flight's value; hand each its own Quote
func copyResult(r domain.QuoteResult) domain.QuoteResult {
	if r.Quote != nil {
		q := *r.Quote
		r.Quote = &q
	}
	return r
}

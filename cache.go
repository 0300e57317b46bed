package portfoy

import (
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

const (
	DefaultCacheTTL        = 5 * time.Minute
	DefaultCacheFailureTTL = time.Minute
)

// fetched is the raw outcome of a price fetch, before any fallback.
type fetched struct {
	current, previous decimal.Decimal
	err               error
}

// PriceCache memoizes fetch outcomes per source and symbol.
//
// Failures are kept at most as long as successes, so that a transient outage
// is retried no later than a live price would be refreshed.
type PriceCache struct {
	c          *cache.Cache
	ttl        time.Duration
	failureTTL time.Duration
}

// NewPriceCache returns a cache keeping successes for ttl and failures for
// failureTTL, capped at ttl.
func NewPriceCache(ttl, failureTTL time.Duration) *PriceCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if failureTTL <= 0 {
		failureTTL = DefaultCacheFailureTTL
	}
	failureTTL = min(failureTTL, ttl)
	return &PriceCache{
		c:          cache.New(ttl, 2*ttl),
		ttl:        ttl,
		failureTTL: failureTTL,
	}
}

func (p *PriceCache) get(key string) (fetched, bool) {
	if p == nil {
		return fetched{}, false
	}
	v, ok := p.c.Get(key)
	if !ok {
		return fetched{}, false
	}
	return v.(fetched), true
}

func (p *PriceCache) put(key string, f fetched) {
	if p == nil {
		return
	}
	ttl := p.ttl
	if f.err != nil {
		ttl = p.failureTTL
	}
	p.c.Set(key, f, ttl)
}

// Flush drops every memoized outcome.
func (p *PriceCache) Flush() {
	if p != nil {
		p.c.Flush()
	}
}

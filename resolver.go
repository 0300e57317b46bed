package portfoy

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/etnz/portfoy/date"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultFundCeiling    = 100
	DefaultFetchTimeout   = 10 * time.Second
	DefaultMarketLookback = 7
	DefaultFundLookback   = 14
)

// Resolver maps holdings to quotes from the configured price sources.
//
// Resolve never fails: when no source can price a holding the quote falls
// back to its unit cost and is tagged SourceFallback.
type Resolver struct {
	market  MarketDataSource
	funds   FundPriceSource
	symbols SymbolMap
	cache   *PriceCache
	log     *zap.Logger

	fundCeiling    decimal.Decimal
	timeout        time.Duration
	marketLookback int
	fundLookback   int
	today          func() date.Date
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

func WithLogger(l *zap.Logger) ResolverOption { return func(r *Resolver) { r.log = l } }
func WithCache(c *PriceCache) ResolverOption  { return func(r *Resolver) { r.cache = c } }
func WithSymbols(s SymbolMap) ResolverOption  { return func(r *Resolver) { r.symbols = s } }

// WithFundCeiling sets the unit price above which a fund quote is discarded.
func WithFundCeiling(ceiling decimal.Decimal) ResolverOption {
	return func(r *Resolver) { r.fundCeiling = ceiling }
}

// WithTimeout bounds every single fetch.
func WithTimeout(d time.Duration) ResolverOption { return func(r *Resolver) { r.timeout = d } }

// WithLookback sets how many days of history are requested from each source.
func WithLookback(marketDays, fundDays int) ResolverOption {
	return func(r *Resolver) { r.marketLookback, r.fundLookback = marketDays, fundDays }
}

// WithClock replaces date.Today, for tests.
func WithClock(today func() date.Date) ResolverOption { return func(r *Resolver) { r.today = today } }

// NewResolver returns a Resolver. Either source may be nil, holdings that need
// it are then priced at their unit cost.
func NewResolver(market MarketDataSource, funds FundPriceSource, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		market:         market,
		funds:          funds,
		log:            zap.NewNop(),
		fundCeiling:    decimal.NewFromInt(DefaultFundCeiling),
		timeout:        DefaultFetchTimeout,
		marketLookback: DefaultMarketLookback,
		fundLookback:   DefaultFundLookback,
		today:          date.Today,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the quote of h. fx is the snapshot of the current valuation
// pass, used for cash and commodities.
func (r *Resolver) Resolve(ctx context.Context, h Holding, fx FXRate) Quote {
	q := r.resolve(ctx, h, fx)
	if q.Fallback() {
		r.log.Warn("no quote, using unit cost",
			zap.String("code", h.Code),
			zap.String("market", h.Market),
			zap.Stringer("unit_cost", h.UnitCost),
			zap.Error(q.Reason),
		)
	}
	return q
}

func (r *Resolver) resolve(ctx context.Context, h Holding, fx FXRate) Quote {
	switch h.Class() {
	case ClassCash:
		if isUSDCash(normalize(h.Market), normalize(h.Code)) {
			return Quote{Current: fx.Rate(), Previous: fx.Rate(), Source: SourceCash}
		}
		one := decimal.NewFromInt(1)
		return Quote{Current: one, Previous: one, Source: SourceCash}

	case ClassCommodity:
		com, _ := lookupCommodity(normalize(h.Code))
		f := r.closes(ctx, r.symbols.Symbol(h.Code, h.Market))
		if f.err != nil {
			return FallbackQuote(h, f.err)
		}
		if fx.IsZero() {
			return FallbackQuote(h, fmt.Errorf("%w: cannot convert commodity quote", ErrInvalidRate))
		}
		perUnit := func(ounce decimal.Decimal) decimal.Decimal {
			return ounce.Mul(fx.Rate()).Div(com.grams)
		}
		return Quote{Current: perUnit(f.current), Previous: perUnit(f.previous), Source: SourceCommodity}

	case ClassFund:
		f := r.fund(ctx, h.Code)
		if f.err != nil {
			return FallbackQuote(h, f.err)
		}
		if !f.current.IsPositive() || f.current.GreaterThan(r.fundCeiling) {
			return FallbackQuote(h, fmt.Errorf("%w: fund %s at %s (ceiling %s)", ErrImplausiblePrice, h.Code, f.current, r.fundCeiling))
		}
		if !f.previous.IsPositive() || f.previous.GreaterThan(r.fundCeiling) {
			f.previous = f.current
		}
		return Quote{Current: f.current, Previous: f.previous, Source: SourceFund}
	}

	f := r.closes(ctx, r.symbols.Symbol(h.Code, h.Market))
	if f.err != nil {
		return FallbackQuote(h, f.err)
	}
	return Quote{Current: f.current, Previous: f.previous, Source: SourceMarketData}
}

// closes fetches the last two closes of symbol.
func (r *Resolver) closes(ctx context.Context, symbol string) fetched {
	key := "market|" + symbol
	if f, ok := r.cache.get(key); ok {
		return f
	}
	f := r.fetchCloses(ctx, symbol)
	if ctx.Err() == nil {
		r.cache.put(key, f)
	}
	return f
}

func (r *Resolver) fetchCloses(ctx context.Context, symbol string) fetched {
	if r.market == nil {
		return fetched{err: fmt.Errorf("%w: market data for %s", ErrNoSource, symbol)}
	}
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	closes, err := r.market.Closes(ctx, symbol, r.marketLookback)
	if err != nil {
		return fetched{err: fmt.Errorf("market data for %s: %w", symbol, err)}
	}
	// only positive closes are prices.
	closes = slices.DeleteFunc(slices.Clone(closes), func(c Close) bool { return !c.Price.IsPositive() })
	if len(closes) == 0 {
		return fetched{err: fmt.Errorf("market data for %s: %w", symbol, ErrNoData)}
	}
	slices.SortStableFunc(closes, func(a, b Close) int {
		switch {
		case a.Date.Before(b.Date):
			return -1
		case a.Date.After(b.Date):
			return 1
		}
		return 0
	})
	last := closes[len(closes)-1].Price
	previous := last
	if len(closes) > 1 {
		previous = closes[len(closes)-2].Price
	}
	return fetched{current: last, previous: previous}
}

// fund fetches the latest and previous prices of a fund.
func (r *Resolver) fund(ctx context.Context, code string) fetched {
	key := "fund|" + code
	if f, ok := r.cache.get(key); ok {
		return f
	}
	f := r.fetchFund(ctx, code)
	if ctx.Err() == nil {
		r.cache.put(key, f)
	}
	return f
}

func (r *Resolver) fetchFund(ctx context.Context, code string) fetched {
	if r.funds == nil {
		return fetched{err: fmt.Errorf("%w: fund prices for %s", ErrNoSource, code)}
	}
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	today := r.today()
	latest, previous, err := r.funds.FundQuote(ctx, code, date.NewRange(today.Add(-r.fundLookback), today))
	if err != nil {
		return fetched{err: fmt.Errorf("fund prices for %s: %w", code, err)}
	}
	return fetched{current: latest, previous: previous}
}

func (r *Resolver) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

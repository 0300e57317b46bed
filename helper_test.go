package portfoy

import (
	"context"
	"sync"

	"github.com/etnz/portfoy/date"
	"github.com/shopspring/decimal"
)

// d is a helper for tests to create decimals from literals.
func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// holding is a helper for tests to create a held holding.
func holding(code, market, quantity, unitCost string) Holding {
	return Holding{Code: code, Market: market, Quantity: d(quantity), UnitCost: d(unitCost), Type: Held}
}

// fakeMarket is an in memory MarketDataSource counting its calls.
type fakeMarket struct {
	mu     sync.Mutex
	closes map[string][]Close
	errs   map[string]error
	calls  map[string]int
	block  bool // wait for the context to be done
}

func (f *fakeMarket) Closes(ctx context.Context, symbol string, lookbackDays int) ([]Close, error) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[symbol]++
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := f.errs[symbol]; err != nil {
		return nil, err
	}
	return f.closes[symbol], nil
}

func (f *fakeMarket) count(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[symbol]
}

// twoCloses returns a previous and current close.
func twoCloses(previous, current string) []Close {
	return []Close{
		{Date: date.New(2025, 10, 13), Price: d(previous)},
		{Date: date.New(2025, 10, 14), Price: d(current)},
	}
}

// fakeFunds is an in memory FundPriceSource.
type fakeFunds struct {
	latest, previous map[string]decimal.Decimal
	err              error
}

func (f fakeFunds) FundQuote(ctx context.Context, code string, within date.Range) (decimal.Decimal, decimal.Decimal, error) {
	if f.err != nil {
		return decimal.Zero, decimal.Zero, f.err
	}
	return f.latest[code], f.previous[code], nil
}

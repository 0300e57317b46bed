// Package accountingtest provides an accounting.System over in memory price
// sources, for tests.
package accountingtest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/etnz/portfoy"
	"github.com/etnz/portfoy/accounting"
	"github.com/etnz/portfoy/date"
	"github.com/etnz/portfoy/history"
	"github.com/etnz/portfoy/sheet"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Today is the date of the fixture system.
var Today = date.New(2025, 10, 14)

// Rate is the exchange rate of the fixture system, in TRY per USD.
const Rate = 40

// Market serves fixed closes, the previous one first.
type Market map[string][2]float64

func (m Market) Closes(ctx context.Context, symbol string, lookbackDays int) ([]portfoy.Close, error) {
	c, ok := m[symbol]
	if !ok {
		return nil, errors.New("unknown symbol " + symbol)
	}
	return []portfoy.Close{
		{Date: Today.Add(-1), Price: decimal.NewFromFloat(c[0])},
		{Date: Today, Price: decimal.NewFromFloat(c[1])},
	}, nil
}

// FX serves a fixed rate.
type FX float64

func (f FX) Rate(ctx context.Context, pair string) (decimal.Decimal, error) {
	return decimal.NewFromFloat(float64(f)), nil
}

func h(code, market string, quantity, unitCost int64) portfoy.Holding {
	return portfoy.Holding{Code: code, Market: market, Quantity: decimal.NewFromInt(quantity), UnitCost: decimal.NewFromInt(unitCost), Type: portfoy.Held}
}

// Profiles are the fixture holdings.
//
// Ana is worth 4000 TRY (THYAO 3000, cash 1000), Emeklilik 17600 TRY
// (AMZN 440 USD), so TOTAL is worth 21600 TRY.
var Profiles = map[string][]portfoy.Holding{
	"Ana": {
		h("THYAO", "BIST (Tümü)", 10, 250),
		h("TL", "NAKIT", 1000, 1),
	},
	"Emeklilik": {
		h("AMZN", "ABD (S&P + NASDAQ)", 2, 200),
	},
}

// New returns a system over a temporary workbook holding Profiles, a
// temporary history and fixed prices.
func New(t testing.TB) *accounting.System {
	t.Helper()
	return Open(t, t.TempDir())
}

// Open returns a fixture system stored in dir. Profiles are written to the
// workbook unless it already has profiles, so that successive systems opened
// on the same dir share their data.
func Open(t testing.TB, dir string) *accounting.System {
	t.Helper()
	book, err := sheet.Open(filepath.Join(dir, "workbook"))
	if err != nil {
		t.Fatal(err)
	}
	names, err := book.Profiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) == 0 {
		for name, holdings := range Profiles {
			if _, err := book.WriteHoldings(name, holdings); err != nil {
				t.Fatal(err)
			}
		}
	}
	store, err := history.Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	market := Market{
		"THYAO.IS": {290, 300},
		"AMZN":     {215, 220},
	}
	today := func() date.Date { return Today }
	return &accounting.System{
		Book:     book,
		Store:    store,
		Resolver: portfoy.NewResolver(market, nil, portfoy.WithClock(today)),
		Log:      zap.NewNop(),
		FX:       FX(Rate),
		Fallback: portfoy.MustFXRate(34.20),
		Display:  portfoy.TRY,
		Workers:  2,
		Today:    today,
	}
}

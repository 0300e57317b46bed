package portfoy

import (
	"context"
	"errors"

	"github.com/etnz/portfoy/date"
	"github.com/shopspring/decimal"
)

// Source tags which provider supplied a quote.
type Source string

const (
	SourceCash       Source = "cash"
	SourceMarketData Source = "market-data"
	SourceFund       Source = "fund"
	SourceCommodity  Source = "commodity"
	SourceFallback   Source = "fallback"
)

var (
	// ErrNoData is reported when a source answered without any usable price.
	ErrNoData = errors.New("no price data")
	// ErrImplausiblePrice is reported when a source price is discarded.
	ErrImplausiblePrice = errors.New("implausible price")
	// ErrNoSource is reported when no source is configured for an asset class.
	ErrNoSource = errors.New("no price source")
)

// Quote holds the current and previous unit prices of an asset, in its
// pricing currency.
type Quote struct {
	Current  decimal.Decimal
	Previous decimal.Decimal
	Source   Source
	Reason   error // set when Source is SourceFallback
}

// Fallback reports whether q is the unit cost placeholder.
func (q Quote) Fallback() bool { return q.Source == SourceFallback }

// FallbackQuote returns the placeholder quote for h, priced at its unit cost.
func FallbackQuote(h Holding, reason error) Quote {
	return Quote{Current: h.UnitCost, Previous: h.UnitCost, Source: SourceFallback, Reason: reason}
}

// Close is a daily closing price.
type Close struct {
	Date  date.Date
	Price decimal.Decimal
}

// MarketDataSource returns daily closes for a ticker, oldest first, over the
// last lookbackDays. Unknown symbols return no closes or an error.
type MarketDataSource interface {
	Closes(ctx context.Context, symbol string, lookbackDays int) ([]Close, error)
}

// FundPriceSource returns the latest and previous unit prices of a fund
// within a date range.
type FundPriceSource interface {
	FundQuote(ctx context.Context, code string, within date.Range) (latest, previous decimal.Decimal, err error)
}

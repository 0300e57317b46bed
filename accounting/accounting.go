// Package accounting ties the workbook, the price sources and the history
// store together into the operations of the pfy command and server.
package accounting

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/etnz/portfoy"
	"github.com/etnz/portfoy/config"
	"github.com/etnz/portfoy/date"
	"github.com/etnz/portfoy/history"
	"github.com/etnz/portfoy/renderer"
	"github.com/etnz/portfoy/sheet"
	"github.com/etnz/portfoy/tefas"
	"github.com/etnz/portfoy/yahoo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// System encapsulates all the data required to value profiles: the workbook
// holding them, the resolver pricing them and the store of their history.
type System struct {
	Book     *sheet.Workbook
	Store    *history.Store
	Resolver *portfoy.Resolver
	Log      *zap.Logger

	FX        portfoy.FXRateSource
	Pair      string
	Fallback  portfoy.FXRate
	FXTimeout time.Duration

	Display portfoy.Currency
	Workers int
	Union   portfoy.UnionOptions
	Today   func() date.Date
}

// New opens the workbook and the history store named in cfg and connects to
// Yahoo Finance and TEFAS.
func New(cfg *config.Config, logger *zap.Logger) (*System, error) {
	display, err := cfg.DisplayCurrency()
	if err != nil {
		return nil, err
	}
	fallback, err := cfg.FallbackRate()
	if err != nil {
		return nil, err
	}
	book, err := sheet.Open(cfg.Workbook)
	if err != nil {
		return nil, err
	}
	store, err := history.Open(cfg.History)
	if err != nil {
		return nil, err
	}

	var yopts []yahoo.Option
	if cfg.Prices.YahooURL != "" {
		yopts = append(yopts, yahoo.WithBaseURL(cfg.Prices.YahooURL))
	}
	var topts []tefas.Option
	if cfg.Prices.TefasURL != "" {
		topts = append(topts, tefas.WithBaseURL(cfg.Prices.TefasURL))
	}
	market := yahoo.New(yopts...)

	resolver := portfoy.NewResolver(market, tefas.New(topts...),
		portfoy.WithLogger(logger),
		portfoy.WithCache(portfoy.NewPriceCache(cfg.Prices.CacheTTL, cfg.Prices.FailureTTL)),
		portfoy.WithSymbols(cfg.SymbolMap()),
		portfoy.WithFundCeiling(cfg.FundCeiling()),
		portfoy.WithTimeout(cfg.Prices.Timeout),
		portfoy.WithLookback(cfg.Prices.MarketLookback, cfg.Prices.FundLookback),
	)

	return &System{
		Book:      book,
		Store:     store,
		Resolver:  resolver,
		Log:       logger,
		FX:        market,
		Pair:      cfg.FX.Pair,
		Fallback:  fallback,
		FXTimeout: cfg.Prices.Timeout,
		Display:   display,
		Workers:   cfg.Workers,
		Union:     cfg.Union(),
		Today:     date.Today,
	}, nil
}

// Close releases the history store.
func (s *System) Close() error {
	if s.Store == nil {
		return nil
	}
	return s.Store.Close()
}

// Date returns the valuation date.
func (s *System) Date() date.Date {
	if s.Today == nil {
		return date.Today()
	}
	return s.Today()
}

func (s *System) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// Profiles returns the names of the stored profiles followed by TOTAL.
func (s *System) Profiles(ctx context.Context) ([]string, error) {
	names, err := s.Book.Profiles()
	if err != nil {
		return nil, err
	}
	return append(names, portfoy.TotalProfile), nil
}

// Snapshot fetches the exchange rate of a valuation pass.
func (s *System) Snapshot(ctx context.Context) portfoy.FXSnapshot {
	pair := s.Pair
	if pair == "" {
		pair = portfoy.DefaultFXPair
	}
	fx := portfoy.Snapshot(ctx, s.FX, pair, s.Fallback, s.FXTimeout)
	if fx.Fallback {
		s.logger().Warn("fx rate unavailable, using fallback",
			zap.Stringer("rate", fx.FXRate),
			zap.Error(fx.Reason),
		)
	}
	return fx
}

// Value values a profile at current prices. TOTAL values every profile
// against a single exchange rate and concatenates them.
func (s *System) Value(ctx context.Context, profile string) (*portfoy.Valuation, error) {
	fx := s.Snapshot(ctx)
	if !portfoy.IsTotal(profile) {
		return s.value(ctx, profile, fx)
	}
	all, err := s.ValueAll(ctx, fx)
	if err != nil {
		return nil, err
	}
	total := portfoy.Combine(all, s.Union)
	total.Display, total.FX = s.Display, fx
	return total, nil
}

// ValueAll values every stored profile against fx.
func (s *System) ValueAll(ctx context.Context, fx portfoy.FXSnapshot) ([]*portfoy.Valuation, error) {
	names, err := s.Book.Profiles()
	if err != nil {
		return nil, err
	}
	all := make([]*portfoy.Valuation, 0, len(names))
	var errs error
	for _, name := range names {
		v, err := s.value(ctx, name, fx)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		all = append(all, v)
	}
	return all, errs
}

// value values a profile. Unreadable rows are rejected like invalid ones, the
// rest of the profile is still valued.
func (s *System) value(ctx context.Context, profile string, fx portfoy.FXSnapshot) (*portfoy.Valuation, error) {
	holdings, err := s.Book.ReadHoldings(profile)
	var unreadable []portfoy.Rejection
	if err != nil {
		rows, ok := sheet.RowErrors(err)
		if !ok {
			return nil, err
		}
		for _, re := range rows {
			unreadable = append(unreadable, portfoy.Rejection{Holding: re.Holding, Err: re})
		}
	}
	v := portfoy.ValueProfile(ctx, s.Resolver, profile, holdings, fx, s.Display, s.Workers)
	v.Rejected = append(unreadable, v.Rejected...)
	for _, rej := range v.Rejected {
		s.logger().Warn("holding rejected",
			zap.String("profile", profile),
			zap.String("code", rej.Holding.Code),
			zap.Error(rej.Err),
		)
	}
	return v, nil
}

// Series returns the recorded history of a profile, TOTAL being the sum of
// all profiles.
func (s *System) Series(ctx context.Context, profile string) (*portfoy.Series, error) {
	return s.Store.Series(ctx, profile, s.Union)
}

// Sales returns the sales ledger of a profile, TOTAL being the concatenation
// of all ledgers.
func (s *System) Sales(profile string) ([]portfoy.Sale, error) {
	if !portfoy.IsTotal(profile) {
		return s.Book.ReadSales(profile)
	}
	names, err := s.Book.Profiles()
	if err != nil {
		return nil, err
	}
	profiles := make([]portfoy.Profile, 0, len(names))
	for _, name := range names {
		sales, err := s.Book.ReadSales(name)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, portfoy.Profile{Name: name, Sales: sales})
	}
	return portfoy.CombineSales(profiles, s.Union), nil
}

// SaveHoldings replaces the holdings of a profile. TOTAL is read only.
func (s *System) SaveHoldings(profile string, holdings []portfoy.Holding) (bool, error) {
	return s.Book.WriteHoldings(profile, holdings)
}

// Totals returns the total value of v in lira and in dollars.
func Totals(v *portfoy.Valuation) (try, usd decimal.Decimal, err error) {
	total := v.Totals().Value.Amount()
	if try, err = v.FX.Convert(total, v.Display, portfoy.TRY); err != nil {
		return
	}
	usd, err = v.FX.Convert(total, v.Display, portfoy.USD)
	return
}

// Record values a profile and records its totals for today. TOTAL is
// computed from the other profiles and cannot be recorded: Record returns
// false and portfoy.ErrTotalReadOnly.
func (s *System) Record(ctx context.Context, profile string) (bool, error) {
	if err := portfoy.CheckWritable(profile); err != nil {
		return false, err
	}
	v, err := s.value(ctx, profile, s.Snapshot(ctx))
	if err != nil {
		return false, err
	}
	return s.record(ctx, v)
}

// RecordAll records today's totals of every profile against a single
// exchange rate.
func (s *System) RecordAll(ctx context.Context) ([]string, error) {
	all, err := s.ValueAll(ctx, s.Snapshot(ctx))
	var recorded []string
	for _, v := range all {
		ok, rerr := s.record(ctx, v)
		if rerr != nil {
			err = errors.Join(err, rerr)
			continue
		}
		if ok {
			recorded = append(recorded, v.Profile)
		}
	}
	return recorded, err
}

func (s *System) record(ctx context.Context, v *portfoy.Valuation) (bool, error) {
	try, usd, err := Totals(v)
	if err != nil {
		return false, fmt.Errorf("cannot convert totals of %q: %w", v.Profile, err)
	}
	on := s.Date()
	ok, err := s.Store.Record(ctx, v.Profile, on, try.InexactFloat64(), usd.InexactFloat64())
	if err != nil {
		return false, err
	}
	s.logger().Info("recorded",
		zap.String("profile", v.Profile),
		zap.Stringer("day", on),
		zap.Stringer("try", try.Round(2)),
		zap.Stringer("usd", usd.Round(2)),
	)
	return ok, nil
}

// Report renders the valuation report of a profile.
func (s *System) Report(ctx context.Context, profile string) (string, error) {
	v, err := s.Value(ctx, profile)
	if err != nil {
		return "", err
	}
	return renderer.RenderReport(renderer.NewReport(v, s.Date())), nil
}

// Groups renders the subtotals of a profile by dimension.
func (s *System) Groups(ctx context.Context, profile, dimension string) (string, error) {
	g, err := s.NewGroups(ctx, profile, dimension, true)
	if err != nil {
		return "", err
	}
	return renderer.RenderGroups(g), nil
}

// NewGroups subtotals a profile by dimension.
func (s *System) NewGroups(ctx context.Context, profile, dimension string, collapse bool) (*renderer.Groups, error) {
	dim, ok := portfoy.ParseDimension(dimension)
	if !ok {
		return nil, fmt.Errorf("unknown dimension %q, want one of %v", dimension, Dimensions)
	}
	v, err := s.Value(ctx, profile)
	if err != nil {
		return nil, err
	}
	return renderer.NewGroups(v, dimension, dim, collapse), nil
}

// Dimensions lists the names accepted by NewGroups.
var Dimensions = []string{"market", "sector", "code", "class"}

// History renders the recorded history of a profile.
func (s *System) History(ctx context.Context, profile string) (string, error) {
	series, err := s.Series(ctx, profile)
	if err != nil {
		return "", err
	}
	return renderer.RenderHistory(renderer.NewHistory(profile, series)), nil
}

// Known reports whether profile is TOTAL or a stored profile.
func (s *System) Known(profile string) (bool, error) {
	if portfoy.IsTotal(profile) {
		return true, nil
	}
	names, err := s.Book.Profiles()
	if err != nil {
		return false, err
	}
	return slices.Contains(names, profile), nil
}

// Narrow keeps the records of s inside the current in period, when set, and
// then the last record of every period, when set. Periods are named as by
// date.ParsePeriod.
func Narrow(s *portfoy.Series, today date.Date, period, in string) (*portfoy.Series, error) {
	if in != "" {
		p, err := date.ParsePeriod(in)
		if err != nil {
			return nil, err
		}
		s = s.Within(date.PeriodRange(today, p))
	}
	if period != "" {
		p, err := date.ParsePeriod(period)
		if err != nil {
			return nil, err
		}
		s = s.Sample(p)
	}
	return s, nil
}

package portfoy

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is one of the two currencies a portfolio is valued in.
type Currency string

const (
	// TRY is the base currency: local assets are denominated in it.
	TRY Currency = "TRY"
	// USD is the quote currency: foreign assets are denominated in it.
	USD Currency = "USD"
)

// DefaultFXPair is the symbol used to ask a FXRateSource for TRY per USD.
const DefaultFXPair = "USDTRY=X"

var (
	// ErrInvalidRate is returned when an exchange rate is not a positive finite number.
	ErrInvalidRate = errors.New("invalid exchange rate")
	// ErrUnsupportedCurrency is returned for any currency other than TRY and USD.
	ErrUnsupportedCurrency = errors.New("unsupported currency")
)

// ParseCurrency parses a currency code. "TL" is accepted as an alias of TRY.
func ParseCurrency(s string) (Currency, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRY", "TL":
		return TRY, nil
	case "USD":
		return USD, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, s)
}

func (c Currency) valid() bool { return c == TRY || c == USD }

func (c Currency) String() string { return string(c) }

// FXRate holds how many TRY one USD is worth.
//
// Its zero value is not usable, use NewFXRate.
type FXRate struct {
	rate decimal.Decimal
}

// NewFXRate returns a FXRate, rate is in TRY per USD.
func NewFXRate(rate decimal.Decimal) (FXRate, error) {
	if !rate.IsPositive() {
		return FXRate{}, fmt.Errorf("%w: %s TRY per USD", ErrInvalidRate, rate)
	}
	return FXRate{rate: rate}, nil
}

// NewFXRateFromFloat is like NewFXRate but also rejects NaN and infinities.
func NewFXRateFromFloat(rate float64) (FXRate, error) {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return FXRate{}, fmt.Errorf("%w: %v TRY per USD", ErrInvalidRate, rate)
	}
	return NewFXRate(decimal.NewFromFloat(rate))
}

// MustFXRate is like NewFXRateFromFloat but panics on error.
func MustFXRate(rate float64) FXRate {
	fx, err := NewFXRateFromFloat(rate)
	if err != nil {
		panic(err.Error())
	}
	return fx
}

// Rate returns TRY per USD.
func (fx FXRate) Rate() decimal.Decimal { return fx.rate }

// IsZero reports whether fx was not built by NewFXRate.
func (fx FXRate) IsZero() bool { return fx.rate.IsZero() }

func (fx FXRate) String() string { return fx.rate.String() + " TRY/USD" }

// Convert converts amount from one currency to the other.
func (fx FXRate) Convert(amount decimal.Decimal, from, to Currency) (decimal.Decimal, error) {
	if !from.valid() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, from)
	}
	if !to.valid() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, to)
	}
	if from == to {
		return amount, nil
	}
	if fx.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: no rate to convert %s to %s", ErrInvalidRate, from, to)
	}
	if from == USD {
		return amount.Mul(fx.rate), nil
	}
	return amount.Div(fx.rate), nil
}

// FXRateSource provides the current rate for a currency pair symbol.
type FXRateSource interface {
	Rate(ctx context.Context, pair string) (decimal.Decimal, error)
}

// FXSnapshot is the single exchange rate used for a whole valuation pass.
type FXSnapshot struct {
	FXRate
	Fallback bool  // true when the source failed and the default rate is used.
	Reason   error // why the source was not used.
}

// Snapshot captures the rate once. Any failure from src (including a
// nonsensical rate) is replaced by fallback so that valuation is never blocked.
func Snapshot(ctx context.Context, src FXRateSource, pair string, fallback FXRate, timeout time.Duration) FXSnapshot {
	if src == nil {
		return FXSnapshot{FXRate: fallback, Fallback: true, Reason: errors.New("no fx source")}
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	rate, err := src.Rate(ctx, pair)
	if err != nil {
		return FXSnapshot{FXRate: fallback, Fallback: true, Reason: err}
	}
	fx, err := NewFXRate(rate)
	if err != nil {
		return FXSnapshot{FXRate: fallback, Fallback: true, Reason: err}
	}
	return FXSnapshot{FXRate: fx}
}

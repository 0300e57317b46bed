package portfoy

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// A recorded unit cost more than UnitMismatchRatio times the current price is
// assumed to be entered per lot and is divided by UnitMismatchDivisor.
var (
	UnitMismatchRatio   = decimal.NewFromInt(50)
	UnitMismatchDivisor = decimal.NewFromInt(100)
)

// Valued is a holding valued in a display currency.
type Valued struct {
	Profile  string   `json:"profile,omitempty"`
	Holding  Holding  `json:"holding"`
	Class    Class    `json:"class"`
	Native   Currency `json:"native"`
	Display  Currency `json:"display"`
	Source   Source   `json:"source"`
	Fallback bool     `json:"fallback"`

	// UnitCost is the unit cost actually used, after unit mismatch correction,
	// in the pricing currency.
	UnitCost decimal.Decimal `json:"unit_cost"`

	Price       Money   `json:"price"`
	Value       Money   `json:"value"`
	Cost        Money   `json:"cost"`
	PnL         Money   `json:"pnl"`
	PnLPercent  Percent `json:"pnl_percent"`
	DailyChange Money   `json:"daily_change"`
}

// Futures reports whether v is a PnL-style holding: its value is its profit.
func (v Valued) Futures() bool { return v.Class == ClassFutures }

// CorrectUnitCost returns unitCost divided by UnitMismatchDivisor when it is
// more than UnitMismatchRatio times price.
func CorrectUnitCost(unitCost, price decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() {
		return unitCost
	}
	if unitCost.Div(price).GreaterThan(UnitMismatchRatio) {
		return unitCost.Div(UnitMismatchDivisor)
	}
	return unitCost
}

// Value computes the valuation of h priced at q, in the display currency.
//
// It is a pure function: same inputs, same output, h is never modified.
func Value(h Holding, q Quote, fx FXRate, display Currency) (Valued, error) {
	if err := h.Validate(); err != nil {
		return Valued{}, err
	}
	if !display.valid() {
		return Valued{}, fmt.Errorf("%w: display currency %q", ErrUnsupportedCurrency, display)
	}
	if q.Current.IsNegative() || q.Previous.IsNegative() {
		return Valued{}, &ValidationError{Code: h.Code, Field: "price", Reason: fmt.Sprintf("is negative (%s, %s)", q.Current, q.Previous)}
	}

	class := h.Class()
	pricing := PricingCurrency(h.Market, h.Code)
	unitCost := CorrectUnitCost(h.UnitCost, q.Current)

	cost := unitCost.Mul(h.Quantity)
	value := q.Current.Mul(h.Quantity)
	if class == ClassFutures {
		// the position is worth its profit, it has no cost basis.
		value = q.Current.Sub(unitCost).Mul(h.Quantity)
		cost = decimal.Zero
	}
	daily := q.Current.Sub(q.Previous).Mul(h.Quantity)

	var err error
	convert := func(amount decimal.Decimal) Money {
		if err != nil {
			return Money{}
		}
		var d decimal.Decimal
		d, err = fx.Convert(amount, pricing, display)
		return M(d, display)
	}
	v := Valued{
		Holding:     h,
		Class:       class,
		Native:      NativeCurrency(h.Market, h.Code),
		Display:     display,
		Source:      q.Source,
		Fallback:    q.Fallback(),
		UnitCost:    unitCost,
		Price:       convert(q.Current),
		Value:       convert(value),
		Cost:        convert(cost),
		DailyChange: convert(daily),
	}
	if err != nil {
		return Valued{}, fmt.Errorf("cannot value %q: %w", h.Code, err)
	}
	v.PnL = v.Value.Sub(v.Cost)
	v.PnLPercent = percentOf(v.PnL.Amount(), v.Cost.Amount())
	return v, nil
}

package portfoy

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Rejection is a holding that could not be valued.
type Rejection struct {
	Holding Holding
	Err     error
}

// Valuation is the result of a valuation pass over one profile.
type Valuation struct {
	Profile  string
	Display  Currency
	FX       FXSnapshot
	Rows     []Valued
	Rejected []Rejection
}

// DefaultWorkers is the number of concurrent price fetches of a valuation pass.
const DefaultWorkers = 8

// ValueProfile values every non zero holding of a profile.
//
// Quotes are resolved concurrently, all against the same fx snapshot. A
// failing quote only degrades its own row. Holdings with a zero quantity are
// skipped, invalid ones are reported in Rejected. holdings is not modified.
func ValueProfile(ctx context.Context, r *Resolver, profile string, holdings []Holding, fx FXSnapshot, display Currency, workers int) *Valuation {
	v := &Valuation{Profile: profile, Display: display, FX: fx}

	todo := make([]Holding, 0, len(holdings))
	for _, h := range holdings {
		if h.Quantity.IsZero() {
			continue
		}
		if err := h.Validate(); err != nil {
			v.Rejected = append(v.Rejected, Rejection{Holding: h, Err: err})
			continue
		}
		todo = append(todo, h)
	}

	quotes := make([]Quote, len(todo))
	var g errgroup.Group
	if workers <= 0 {
		workers = DefaultWorkers
	}
	g.SetLimit(workers)
	for i, h := range todo {
		g.Go(func() error {
			quotes[i] = r.Resolve(ctx, h, fx.FXRate)
			return nil
		})
	}
	g.Wait() // Resolve never fails.

	for i, h := range todo {
		row, err := Value(h, quotes[i], fx.FXRate, display)
		if err != nil {
			v.Rejected = append(v.Rejected, Rejection{Holding: h, Err: err})
			continue
		}
		row.Profile = profile
		v.Rows = append(v.Rows, row)
	}
	return v
}

// Held returns the rows summed into totals.
func (v *Valuation) Held() []Valued {
	held := make([]Valued, 0, len(v.Rows))
	for _, row := range v.Rows {
		if row.Holding.Held() {
			held = append(held, row)
		}
	}
	return held
}

// Watched returns the watch-only rows.
func (v *Valuation) Watched() []Valued {
	var watched []Valued
	for _, row := range v.Rows {
		if !row.Holding.Held() {
			watched = append(watched, row)
		}
	}
	return watched
}

// Fallbacks returns the rows priced at their unit cost.
func (v *Valuation) Fallbacks() []Valued {
	var rows []Valued
	for _, row := range v.Rows {
		if row.Fallback {
			rows = append(rows, row)
		}
	}
	return rows
}

// Totals is the grand total of a valuation.
type Totals struct {
	Value       Money
	Cost        Money
	PnL         Money
	PnLPercent  Percent
	DailyChange Money
}

// contribution returns the value a row adds to totals and groups: futures
// positions add their profit only.
func contribution(row Valued) Money {
	if row.Futures() {
		return M(0, row.Display)
	}
	return row.Value
}

// Totals sums held rows. Futures contribute their profit but neither value
// nor cost, so the profit percentage stays relative to the cost basis.
func (v *Valuation) Totals() Totals {
	t := Totals{
		Value:       M(0, v.Display),
		Cost:        M(0, v.Display),
		PnL:         M(0, v.Display),
		DailyChange: M(0, v.Display),
	}
	for _, row := range v.Held() {
		t.Value = t.Value.Add(contribution(row))
		t.Cost = t.Cost.Add(row.Cost)
		t.PnL = t.PnL.Add(row.PnL)
		t.DailyChange = t.DailyChange.Add(row.DailyChange)
	}
	t.PnLPercent = percentOf(t.PnL.Amount(), t.Cost.Amount())
	return t
}

// Dimension is a grouping key of a valued row.
type Dimension func(Valued) string

var (
	ByMarket Dimension = func(v Valued) string { return v.Holding.Market }
	BySector Dimension = func(v Valued) string { return cmp.Or(v.Holding.Sector, "-") }
	ByCode   Dimension = func(v Valued) string { return v.Holding.Code }
	ByClass  Dimension = func(v Valued) string { return string(v.Class) }
)

// ParseDimension returns the dimension named "market", "sector", "code" or "class".
func ParseDimension(name string) (Dimension, bool) {
	switch strings.ToLower(name) {
	case "market":
		return ByMarket, true
	case "sector":
		return BySector, true
	case "code":
		return ByCode, true
	case "class":
		return ByClass, true
	}
	return nil, false
}

// Group is a subtotal of rows sharing a key.
type Group struct {
	Key     string
	Value   Money
	PnL     Money
	Share   Percent // of the total value, only set on request
	Members []string
}

// GroupBy subtotals held rows by dim, largest value first. When percent is
// true each group's share of the total value is computed.
func (v *Valuation) GroupBy(dim Dimension, percent bool) []Group {
	index := make(map[string]int)
	var groups []Group
	total := M(0, v.Display)
	for _, row := range v.Held() {
		key := dim(row)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key, Value: M(0, v.Display), PnL: M(0, v.Display)})
		}
		g := &groups[i]
		g.Value = g.Value.Add(contribution(row))
		g.PnL = g.PnL.Add(row.PnL)
		if !slices.Contains(g.Members, row.Holding.Code) {
			g.Members = append(g.Members, row.Holding.Code)
		}
		total = total.Add(contribution(row))
	}
	if percent {
		for i := range groups {
			groups[i].Share = percentOf(groups[i].Value.Amount(), total.Amount())
		}
	}
	slices.SortStableFunc(groups, func(a, b Group) int { return b.Value.Amount().Cmp(a.Value.Amount()) })
	return groups
}

// OtherGroup is the key of the bucket collecting small groups.
const OtherGroup = "Other"

// TailThreshold is the share, in percent, under which a group is collapsed.
const TailThreshold Percent = 1

// CollapseTail merges every group whose value is less than threshold percent
// of the total into a single OtherGroup, appended last.
func CollapseTail(groups []Group, threshold Percent) []Group {
	if len(groups) == 0 {
		return nil
	}
	display := groups[0].Value.Currency()
	total := decimal.Zero
	for _, g := range groups {
		total = total.Add(g.Value.Amount())
	}
	result := make([]Group, 0, len(groups))
	other := Group{Key: OtherGroup, Value: M(0, display), PnL: M(0, display)}
	merged := 0
	for _, g := range groups {
		if float64(percentOf(g.Value.Amount(), total)) < float64(threshold) {
			other.Value = other.Value.Add(g.Value)
			other.PnL = other.PnL.Add(g.PnL)
			other.Members = append(other.Members, g.Members...)
			merged++
			continue
		}
		result = append(result, g)
	}
	if merged == 0 {
		return result
	}
	other.Share = percentOf(other.Value.Amount(), total)
	return append(result, other)
}

package portfoy

import (
	"context"
	"reflect"
	"slices"
	"testing"

	"github.com/shopspring/decimal"
)

func testValuation(t *testing.T) *Valuation {
	t.Helper()
	m := &fakeMarket{closes: map[string][]Close{
		"THYAO.IS":   twoCloses("88", "90"),
		"ASELS.IS":   twoCloses("100", "110"),
		"AMZN":       twoCloses("228", "230"),
		"F_XU030.IS": twoCloses("10200", "10250"),
	}}
	r := NewResolver(m, nil)
	holdings := []Holding{
		{Code: "THYAO", Market: "BIST", Quantity: d("35"), UnitCost: d("84.53"), Sector: "Transport"},
		{Code: "ASELS", Market: "BIST", Quantity: d("10"), UnitCost: d("100"), Sector: "Defense"},
		{Code: "AMZN", Market: "ABD", Quantity: d("1.03"), UnitCost: d("225.80"), Sector: "Tech"},
		{Code: "TL", Market: "Nakit", Quantity: d("20"), UnitCost: d("1")},
		{Code: "F_XU030", Market: "VADELI (BIST)", Quantity: d("1"), UnitCost: d("10000")},
		{Code: "KCHOL", Market: "BIST", Quantity: d("0"), UnitCost: d("150")},
		{Code: "BAD", Market: "BIST", Quantity: d("-3"), UnitCost: d("1")},
		{Code: "NVDA", Market: "ABD", Quantity: d("1"), UnitCost: d("100"), Type: Watched},
	}
	fx := FXSnapshot{FXRate: MustFXRate(42)}
	return ValueProfile(context.Background(), r, "Ana", holdings, fx, TRY, 2)
}

func TestValueProfile(t *testing.T) {
	v := testValuation(t)

	if v.Profile != "Ana" || v.Display != TRY {
		t.Errorf("ValueProfile() = %s in %s, want Ana in TRY", v.Profile, v.Display)
	}
	var codes []string
	for _, row := range v.Rows {
		codes = append(codes, row.Holding.Code)
		if row.Profile != "Ana" {
			t.Errorf("row %s profile = %q, want Ana", row.Holding.Code, row.Profile)
		}
	}
	want := []string{"THYAO", "ASELS", "AMZN", "TL", "F_XU030", "NVDA"}
	if !slices.Equal(codes, want) {
		t.Errorf("ValueProfile() rows = %v, want %v", codes, want)
	}
	if len(v.Rejected) != 1 || v.Rejected[0].Holding.Code != "BAD" {
		t.Errorf("ValueProfile().Rejected = %v, want [BAD]", v.Rejected)
	}
	if got := len(v.Held()); got != 5 {
		t.Errorf("Held() has %d rows, want 5", got)
	}
	if got := v.Watched(); len(got) != 1 || got[0].Holding.Code != "NVDA" {
		t.Errorf("Watched() = %v, want [NVDA]", got)
	}
	// NVDA has no close: it is the only fallback.
	if got := v.Fallbacks(); len(got) != 1 || got[0].Holding.Code != "NVDA" {
		t.Errorf("Fallbacks() = %v, want [NVDA]", got)
	}
}

func TestValueProfileDoesNotMutate(t *testing.T) {
	holdings := []Holding{
		holding("THYAO", "BIST", "35", "8453"),
		holding("ZERO", "BIST", "0", "1"),
	}
	before := slices.Clone(holdings)
	m := &fakeMarket{closes: map[string][]Close{"THYAO.IS": twoCloses("88", "90")}}
	ValueProfile(context.Background(), NewResolver(m, nil), "Ana", holdings, FXSnapshot{FXRate: MustFXRate(42)}, TRY, 0)
	if !reflect.DeepEqual(holdings, before) {
		t.Errorf("ValueProfile() modified its holdings: %v", holdings)
	}
}

func TestTotals(t *testing.T) {
	v := testValuation(t)
	got := v.Totals()

	// THYAO 3150 + ASELS 1100 + AMZN 9949.80 + TL 20, the futures adds its profit only.
	wantValue := d("14219.8")
	wantCost := d("2958.55").Add(d("1000")).Add(d("9768.108")).Add(d("20"))
	wantPnL := wantValue.Sub(wantCost).Add(d("250"))
	wantDaily := d("70").Add(d("100")).Add(d("86.52")).Add(d("50"))

	if !got.Value.Amount().Equal(wantValue) {
		t.Errorf("Totals().Value = %v, want %v", got.Value.Amount(), wantValue)
	}
	if !got.Cost.Amount().Equal(wantCost) {
		t.Errorf("Totals().Cost = %v, want %v", got.Cost.Amount(), wantCost)
	}
	if !got.PnL.Amount().Equal(wantPnL) {
		t.Errorf("Totals().PnL = %v, want %v", got.PnL.Amount(), wantPnL)
	}
	if !got.DailyChange.Amount().Equal(wantDaily) {
		t.Errorf("Totals().DailyChange = %v, want %v", got.DailyChange.Amount(), wantDaily)
	}
	if want := percentOf(wantPnL, wantCost); !got.PnLPercent.Equal(want) {
		t.Errorf("Totals().PnLPercent = %v, want %v", got.PnLPercent, want)
	}
}

func TestTotalsEmpty(t *testing.T) {
	v := &Valuation{Profile: "Bos", Display: USD}
	got := v.Totals()
	if !got.Value.IsZero() || !got.Cost.IsZero() || got.PnLPercent != 0 {
		t.Errorf("Totals() of an empty valuation = %+v, want zeros", got)
	}
	if got.Value.Currency() != USD {
		t.Errorf("Totals().Value currency = %v, want USD", got.Value.Currency())
	}
}

func TestGroupByConservation(t *testing.T) {
	v := testValuation(t)
	total := v.Totals()

	for _, name := range []string{"market", "sector", "code", "class"} {
		dim, ok := ParseDimension(name)
		if !ok {
			t.Fatalf("ParseDimension(%q) failed", name)
		}
		groups := v.GroupBy(dim, true)
		sum, pnl := decimal.Zero, decimal.Zero
		var share Percent
		for _, g := range groups {
			sum = sum.Add(g.Value.Amount())
			pnl = pnl.Add(g.PnL.Amount())
			share += g.Share
		}
		if !sum.Equal(total.Value.Amount()) {
			t.Errorf("GroupBy(%s) values sum to %v, want %v", name, sum, total.Value.Amount())
		}
		if !pnl.Equal(total.PnL.Amount()) {
			t.Errorf("GroupBy(%s) profits sum to %v, want %v", name, pnl, total.PnL.Amount())
		}
		if !share.Equal(100) {
			t.Errorf("GroupBy(%s) shares sum to %v, want 100%%", name, share)
		}
		for i := 1; i < len(groups); i++ {
			if groups[i-1].Value.LessThan(groups[i].Value) {
				t.Errorf("GroupBy(%s) is not sorted: %s before %s", name, groups[i-1].Key, groups[i].Key)
			}
		}
	}
	if _, ok := ParseDimension("color"); ok {
		t.Errorf("ParseDimension(color) succeeded")
	}
}

func TestGroupByMarket(t *testing.T) {
	v := testValuation(t)
	groups := v.GroupBy(ByMarket, false)
	var keys []string
	for _, g := range groups {
		keys = append(keys, g.Key)
	}
	want := []string{"ABD", "BIST", "Nakit", "VADELI (BIST)"}
	if !slices.Equal(keys, want) {
		t.Errorf("GroupBy(market) keys = %v, want %v", keys, want)
	}
	if got := groups[1].Members; !slices.Equal(got, []string{"THYAO", "ASELS"}) {
		t.Errorf("BIST members = %v, want [THYAO ASELS]", got)
	}
	if groups[0].Share != 0 {
		t.Errorf("GroupBy(market, false)[0].Share = %v, want 0", groups[0].Share)
	}
}

func TestCollapseTail(t *testing.T) {
	group := func(key string, value int64) Group {
		return Group{Key: key, Value: M(value, TRY), PnL: M(0, TRY), Members: []string{key}}
	}
	// total is 10000: 1% is 100.
	groups := []Group{
		group("A", 9750),
		group("B", 100),
		group("C", 99),
		group("D", 51),
	}
	got := CollapseTail(groups, TailThreshold)

	var keys []string
	for _, g := range got {
		keys = append(keys, g.Key)
	}
	if want := []string{"A", "B", OtherGroup}; !slices.Equal(keys, want) {
		t.Fatalf("CollapseTail() keys = %v, want %v", keys, want)
	}
	other := got[2]
	if !other.Value.Equal(M(150, TRY)) {
		t.Errorf("Other value = %v, want 150", other.Value)
	}
	if !slices.Equal(other.Members, []string{"C", "D"}) {
		t.Errorf("Other members = %v, want [C D]", other.Members)
	}
	if !other.Share.Equal(1.5) {
		t.Errorf("Other share = %v, want 1.5%%", other.Share)
	}

	if got := CollapseTail(groups[:2], TailThreshold); len(got) != 2 {
		t.Errorf("CollapseTail() without small groups = %v, want unchanged", got)
	}
	if got := CollapseTail(nil, TailThreshold); got != nil {
		t.Errorf("CollapseTail(nil) = %v, want nil", got)
	}
}

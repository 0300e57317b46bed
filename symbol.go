package portfoy

import (
	"strings"

	"github.com/shopspring/decimal"
)

// GramsPerTroyOunce converts per-ounce commodity quotes to per-gram prices.
var GramsPerTroyOunce = decimal.RequireFromString("31.1035")

// commodity describes how a named commodity label is priced from a USD quote.
type commodity struct {
	ticker string
	grams  decimal.Decimal // grams per quoted unit, one means no conversion.
}

// commodities maps normalized commodity labels to their market data ticker.
// Labels are matched as substrings of the normalized holding code.
var commodities = []struct {
	label string
	commodity
}{
	{"GRAM ALTIN", commodity{"GC=F", GramsPerTroyOunce}},
	{"GRAM GUMUS", commodity{"SI=F", GramsPerTroyOunce}},
	{"ONS ALTIN", commodity{"GC=F", decimal.NewFromInt(1)}},
	{"ONS GUMUS", commodity{"SI=F", decimal.NewFromInt(1)}},
}

func lookupCommodity(normalizedCode string) (commodity, bool) {
	for _, c := range commodities {
		if strings.Contains(normalizedCode, c.label) {
			return c.commodity, true
		}
	}
	return commodity{}, false
}

func isNamedCommodity(normalizedCode string) bool {
	_, ok := lookupCommodity(normalizedCode)
	return ok
}

const (
	bistSuffix   = ".IS"
	cryptoSuffix = "-USD"
)

// SymbolMap maps a holding to the ticker used by the market data source.
//
// Overrides are keyed by the uppercased holding code and win over every other
// rule; they hold instruments whose ticker does not follow from their code.
type SymbolMap struct {
	Overrides map[string]string
}

// Symbol returns the market data ticker for (code, market).
func (s SymbolMap) Symbol(code, market string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	if t, ok := s.Overrides[c]; ok && t != "" {
		return t
	}
	if com, ok := lookupCommodity(normalize(code)); ok {
		return com.ticker
	}
	m := normalize(market)
	switch {
	case strings.Contains(m, tokenBIST):
		if strings.HasSuffix(c, bistSuffix) {
			return c
		}
		return c + bistSuffix
	case strings.Contains(m, tokenCrypto):
		if strings.Contains(c, "-") {
			return c
		}
		return c + cryptoSuffix
	}
	return c
}

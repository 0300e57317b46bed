package portfoy

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Class is the asset class derived from a holding's market and code.
type Class string

const (
	ClassCash      Class = "cash"
	ClassCommodity Class = "commodity"
	ClassFund      Class = "fund"
	ClassBIST      Class = "bist"
	ClassUS        Class = "us"
	ClassCrypto    Class = "crypto"
	ClassFutures   Class = "futures"
	ClassOther     Class = "other"
)

// market tokens, matched as substrings of the normalized market label.
const (
	tokenBIST    = "BIST"
	tokenFund    = "FON"
	tokenEmtia   = "EMTIA"
	tokenCash    = "NAKIT"
	tokenUS      = "ABD"
	tokenSP      = "S&P"
	tokenNasdaq  = "NASDAQ"
	tokenCrypto  = "KRIPTO"
	tokenFutures = "VADELI"
)

// fold removes diacritics so that "Kıymetli Emtia" and "KIYMETLI EMTIA" or
// "Nakit" and "NAKİT" match the same tokens.
var fold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalize returns s uppercased, trimmed and without diacritics.
func normalize(s string) string {
	up := strings.ToUpper(strings.TrimSpace(s))
	folded, _, err := transform.String(fold, up)
	if err != nil {
		return up
	}
	return folded
}

func containsAny(s string, tokens ...string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// isUSDCash reports whether (market, code) is the foreign cash position.
func isUSDCash(m, c string) bool { return strings.Contains(m, tokenCash) && c == string(USD) }

// NativeCurrency returns the currency a holding is naturally denominated in.
//
// Rules apply in order: local cash is TRY, then BIST, funds and commodities
// are TRY, everything else (including USD cash) is USD.
func NativeCurrency(market, code string) Currency {
	m, c := normalize(market), normalize(code)
	if strings.Contains(m, tokenCash) && c != string(USD) {
		return TRY
	}
	if containsAny(m, tokenBIST, tokenFund, tokenEmtia) {
		return TRY
	}
	return USD
}

// PricingCurrency returns the currency a holding's unit cost and quotes are
// expressed in. It is the native currency except for USD cash, whose price is
// the exchange rate itself, and named commodities, priced per gram in TRY
// whatever their market label.
func PricingCurrency(market, code string) Currency {
	if isUSDCash(normalize(market), normalize(code)) || Classify(market, code) == ClassCommodity {
		return TRY
	}
	return NativeCurrency(market, code)
}

// Classify returns the asset class, in price dispatch order: cash, named
// commodities, funds and then listed instruments.
func Classify(market, code string) Class {
	m, c := normalize(market), normalize(code)
	switch {
	case strings.Contains(m, tokenCash):
		return ClassCash
	case isNamedCommodity(c):
		return ClassCommodity
	case strings.Contains(m, tokenFund):
		return ClassFund
	case strings.Contains(m, tokenFutures):
		return ClassFutures
	case strings.Contains(m, tokenBIST):
		return ClassBIST
	case strings.Contains(m, tokenCrypto):
		return ClassCrypto
	case containsAny(m, tokenUS, tokenSP, tokenNasdaq):
		return ClassUS
	}
	return ClassOther
}

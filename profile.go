package portfoy

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/etnz/portfoy/date"
	"github.com/shopspring/decimal"
)

// TotalProfile is the name of the computed union of all profiles.
const TotalProfile = "TOTAL"

// ErrTotalReadOnly is returned by writers asked to persist the TOTAL profile.
var ErrTotalReadOnly = errors.New("the TOTAL profile is computed and cannot be written")

// ErrCurrencyMismatch reports profiles valued in different display currencies.
var ErrCurrencyMismatch = errors.New("display currency mismatch")

// IsTotal reports whether name designates the TOTAL profile.
func IsTotal(name string) bool { return strings.EqualFold(strings.TrimSpace(name), TotalProfile) }

// CheckWritable returns ErrTotalReadOnly for the TOTAL profile.
func CheckWritable(profile string) error {
	if IsTotal(profile) {
		return fmt.Errorf("%w (profile %q)", ErrTotalReadOnly, profile)
	}
	return nil
}

// Sale is a row of a profile's sales ledger.
type Sale struct {
	Date     date.Date       `json:"date"`
	Code     string          `json:"code"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Currency Currency        `json:"currency"`
	Profile  string          `json:"profile,omitempty"`
}

// Proceeds returns the amount received for s.
func (s Sale) Proceeds() Money { return M(s.Price.Mul(s.Quantity), s.Currency) }

// Series is a profile's history: total value per date in both currencies.
type Series struct {
	TRY date.History[float64]
	USD date.History[float64]
}

// Record sets the totals on a date, replacing any previous record.
func (s *Series) Record(on date.Date, try, usd float64) {
	s.TRY.Append(on, try)
	s.USD.Append(on, usd)
}

// Get returns the totals recorded on a date.
func (s *Series) Get(on date.Date) (try, usd float64, ok bool) {
	try, okTRY := s.TRY.Get(on)
	usd, okUSD := s.USD.Get(on)
	return try, usd, okTRY || okUSD
}

// Len returns the number of recorded dates.
func (s *Series) Len() int { return max(s.TRY.Len(), s.USD.Len()) }

// Dates returns all recorded dates in chronological order.
func (s *Series) Dates() iter.Seq[date.Date] { return date.Iterate(s.TRY, s.USD) }

// Sample keeps the last record of every period p.
func (s *Series) Sample(p date.Period) *Series {
	return &Series{TRY: *s.TRY.Sample(p), USD: *s.USD.Sample(p)}
}

// Within keeps the records inside r.
func (s *Series) Within(r date.Range) *Series {
	w := new(Series)
	for on := range s.Dates() {
		if !r.Contains(on) {
			continue
		}
		try, usd, _ := s.Get(on)
		w.Record(on, try, usd)
	}
	return w
}

// Profile is a named portfolio.
type Profile struct {
	Name     string
	Holdings []Holding
	Sales    []Sale
	History  Series
}

// UnionOptions configures the TOTAL union.
type UnionOptions struct {
	// Exclude names one profile left out of the union, empty to include all.
	Exclude string
}

func (o UnionOptions) includes(profile string) bool {
	if IsTotal(profile) {
		return false
	}
	return o.Exclude == "" || !strings.EqualFold(o.Exclude, profile)
}

// Combine returns the TOTAL valuation: the concatenation of all profiles'
// rows, each keeping its profile tag. Identical codes are not merged. TOTAL
// takes the display currency of the first included profile; rows of profiles
// valued in another currency are rejected with ErrCurrencyMismatch.
func Combine(valuations []*Valuation, opts UnionOptions) *Valuation {
	total := &Valuation{Profile: TotalProfile, Display: TRY}
	first := true
	for _, v := range valuations {
		if v == nil || !opts.includes(v.Profile) {
			continue
		}
		if first {
			total.Display, total.FX = v.Display, v.FX
			first = false
		}
		if v.Display != total.Display {
			err := fmt.Errorf("%w: %s valued in %s, TOTAL in %s", ErrCurrencyMismatch, v.Profile, v.Display, total.Display)
			for _, row := range v.Rows {
				total.Rejected = append(total.Rejected, Rejection{Holding: row.Holding, Err: err})
			}
			total.Rejected = append(total.Rejected, v.Rejected...)
			continue
		}
		for _, row := range v.Rows {
			if row.Profile == "" {
				row.Profile = v.Profile
			}
			total.Rows = append(total.Rows, row)
		}
		total.Rejected = append(total.Rejected, v.Rejected...)
	}
	return total
}

// CombineHistory sums, per date, the totals of all included profiles. A
// profile with no record on a date contributes zero on that date.
func CombineHistory(histories map[string]*Series, opts UnionOptions) *Series {
	total := new(Series)
	for _, name := range slices.Sorted(maps.Keys(histories)) {
		s := histories[name]
		if s == nil || !opts.includes(name) {
			continue
		}
		for on, v := range s.TRY.Values() {
			total.TRY.AppendAdd(on, v)
		}
		for on, v := range s.USD.Values() {
			total.USD.AppendAdd(on, v)
		}
	}
	return total
}

// CombineSales concatenates the sales ledgers of all included profiles.
func CombineSales(profiles []Profile, opts UnionOptions) []Sale {
	var sales []Sale
	for _, p := range profiles {
		if !opts.includes(p.Name) {
			continue
		}
		for _, s := range p.Sales {
			s.Profile = p.Name
			sales = append(sales, s)
		}
	}
	return sales
}

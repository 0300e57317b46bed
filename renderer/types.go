package renderer

import (
	"slices"

	"github.com/etnz/portfoy"
	"github.com/etnz/portfoy/date"
	"github.com/shopspring/decimal"
)

// Report is the data of a valuation report.
// Numbers keep their portfoy types so that templates can use their String and
// SignedString renderers.
type Report struct {
	Profile    string           `json:"profile"`
	Date       date.Date        `json:"date"`
	Display    portfoy.Currency `json:"display"`
	FX         string           `json:"fx"`
	FXFallback bool             `json:"fxFallback,omitempty"`
	// Total is set for the TOTAL profile: lines then show their profile.
	Total     bool           `json:"total,omitempty"`
	Holdings  []Line         `json:"holdings"`
	Watch     []Line         `json:"watch,omitempty"`
	Totals    portfoy.Totals `json:"totals"`
	Fallbacks []string       `json:"fallbacks,omitempty"`
	Rejected  []string       `json:"rejected,omitempty"`
}

// Line is a valued holding.
type Line struct {
	Profile     string          `json:"profile,omitempty"`
	Code        string          `json:"code"`
	Market      string          `json:"market"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       portfoy.Money   `json:"price"`
	Value       portfoy.Money   `json:"value"`
	Cost        portfoy.Money   `json:"cost"`
	PnL         portfoy.Money   `json:"pnl"`
	PnLPercent  portfoy.Percent `json:"pnlPercent"`
	DailyChange portfoy.Money   `json:"dailyChange"`
	Source      portfoy.Source  `json:"source"`
	Fallback    bool            `json:"fallback,omitempty"`
}

func newLine(v portfoy.Valued) Line {
	return Line{
		Profile:     v.Profile,
		Code:        v.Holding.Code,
		Market:      v.Holding.Market,
		Quantity:    v.Holding.Quantity,
		Price:       v.Price,
		Value:       v.Value,
		Cost:        v.Cost,
		PnL:         v.PnL,
		PnLPercent:  v.PnLPercent,
		DailyChange: v.DailyChange,
		Source:      v.Source,
		Fallback:    v.Fallback,
	}
}

// NewReport creates the report of a valuation on a date. Held lines are
// sorted by value, largest first.
func NewReport(v *portfoy.Valuation, on date.Date) *Report {
	r := &Report{
		Profile:    v.Profile,
		Date:       on,
		Display:    v.Display,
		FX:         v.FX.String(),
		FXFallback: v.FX.Fallback,
		Total:      portfoy.IsTotal(v.Profile),
		Holdings:   make([]Line, 0, len(v.Rows)),
		Totals:     v.Totals(),
	}
	for _, row := range v.Held() {
		r.Holdings = append(r.Holdings, newLine(row))
	}
	slices.SortStableFunc(r.Holdings, func(a, b Line) int { return b.Value.Amount().Cmp(a.Value.Amount()) })
	for _, row := range v.Watched() {
		r.Watch = append(r.Watch, newLine(row))
	}
	for _, row := range v.Fallbacks() {
		r.Fallbacks = append(r.Fallbacks, row.Holding.Code)
	}
	for _, rej := range v.Rejected {
		r.Rejected = append(r.Rejected, rej.Err.Error())
	}
	return r
}

// Groups is the data of a subtotal report.
type Groups struct {
	Profile   string           `json:"profile"`
	Dimension string           `json:"dimension"`
	Display   portfoy.Currency `json:"display"`
	Groups    []portfoy.Group  `json:"groups"`
	Total     portfoy.Money    `json:"total"`
}

// NewGroups subtotals a valuation by dim, small groups collapsed into
// portfoy.OtherGroup when collapse is set.
func NewGroups(v *portfoy.Valuation, name string, dim portfoy.Dimension, collapse bool) *Groups {
	groups := v.GroupBy(dim, true)
	if collapse {
		groups = portfoy.CollapseTail(groups, portfoy.TailThreshold)
	}
	return &Groups{
		Profile:   v.Profile,
		Dimension: name,
		Display:   v.Display,
		Groups:    groups,
		Total:     v.Totals().Value,
	}
}

// History is the data of a history report.
type History struct {
	Profile string        `json:"profile"`
	Entries []HistoryLine `json:"entries"`
}

// HistoryLine is the recorded totals of a date, with the change since the
// previous entry.
type HistoryLine struct {
	Date      date.Date     `json:"date"`
	TRY       portfoy.Money `json:"try"`
	USD       portfoy.Money `json:"usd"`
	ChangeTRY portfoy.Money `json:"changeTry"`
}

// NewHistory creates the history report of a series.
func NewHistory(profile string, s *portfoy.Series) *History {
	h := &History{Profile: profile, Entries: []HistoryLine{}}
	previous := portfoy.M(0, portfoy.TRY)
	for on := range s.Dates() {
		try, usd, _ := s.Get(on)
		line := HistoryLine{Date: on, TRY: portfoy.M(try, portfoy.TRY), USD: portfoy.M(usd, portfoy.USD)}
		if len(h.Entries) > 0 {
			line.ChangeTRY = line.TRY.Sub(previous)
		} else {
			line.ChangeTRY = portfoy.M(0, portfoy.TRY)
		}
		previous = line.TRY
		h.Entries = append(h.Entries, line)
	}
	return h
}

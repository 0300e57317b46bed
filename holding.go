package portfoy

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// HoldingType tells actively held assets from watch-only rows.
type HoldingType string

const (
	Held    HoldingType = "Portfoy"
	Watched HoldingType = "Takip"
)

// Holding is one row of portfolio data.
type Holding struct {
	Code     string          `json:"code"`
	Market   string          `json:"market"`
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"` // in the holding's pricing currency
	Type     HoldingType     `json:"type,omitempty"`
	Sector   string          `json:"sector,omitempty"`
	Notes    string          `json:"notes,omitempty"`
}

// Held reports whether h is summed into totals. An empty type counts as held.
func (h Holding) Held() bool {
	t := normalize(string(h.Type))
	return t == "" || !strings.HasPrefix(t, normalize(string(Watched)))
}

// Class returns the asset class of h.
func (h Holding) Class() Class { return Classify(h.Market, h.Code) }

// ValidationError reports which field of a holding was rejected.
type ValidationError struct {
	Code   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid holding %q: %s %s", e.Code, e.Field, e.Reason)
}

// Validate checks that h can be valued.
func (h Holding) Validate() error {
	invalid := func(field, reason string) error {
		return &ValidationError{Code: h.Code, Field: field, Reason: reason}
	}
	switch {
	case strings.TrimSpace(h.Code) == "":
		return invalid("code", "is empty")
	case strings.TrimSpace(h.Market) == "":
		return invalid("market", "is empty")
	case h.Quantity.IsNegative():
		return invalid("quantity", fmt.Sprintf("is negative (%s)", h.Quantity))
	case h.UnitCost.IsNegative():
		return invalid("unit_cost", fmt.Sprintf("is negative (%s)", h.UnitCost))
	}
	return nil
}

package sheet

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/etnz/portfoy"
	"github.com/etnz/portfoy/date"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// column is the canonical name of a tab column.
type column string

const (
	colCode     column = "code"
	colMarket   column = "market"
	colQuantity column = "quantity"
	colUnitCost column = "unit_cost"
	colType     column = "type"
	colSector   column = "sector"
	colNotes    column = "notes"
	colDate     column = "date"
	colPrice    column = "price"
	colCurrency column = "currency"
)

// aliases lists the accepted headers per column, in their folded form.
var aliases = map[column][]string{
	colCode:     {"kod", "kodu", "hisse", "varlik", "code", "symbol", "ticker"},
	colMarket:   {"piyasa", "pazar", "borsa", "market"},
	colQuantity: {"adet", "miktar", "lot", "quantity", "qty"},
	colUnitCost: {"maliyet", "birim maliyet", "ort. maliyet", "ortalama maliyet", "alis fiyati", "unit cost", "unit_cost", "cost"},
	colType:     {"tip", "tur", "durum", "type"},
	colSector:   {"sektor", "sector"},
	colNotes:    {"not", "notlar", "aciklama", "notes"},
	colDate:     {"tarih", "satis tarihi", "date"},
	colPrice:    {"fiyat", "satis fiyati", "price"},
	colCurrency: {"doviz", "para birimi", "currency"},
}

// holdingsHeader is the header written to holdings tabs.
var holdingsHeader = []string{"Kod", "Piyasa", "Adet", "Maliyet", "Tip", "Sektör", "Notlar"}

var fold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// key folds a header for lookup: "Sektör" and "SEKTOR" are the same column.
func key(s string) string {
	// the dotless ı has no decomposition.
	s = strings.NewReplacer("ı", "i", "İ", "i").Replace(strings.TrimSpace(s))
	folded, _, err := transform.String(fold, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.Join(strings.Fields(folded), " ")
}

var columnsByAlias = func() map[string]column {
	m := make(map[string]column)
	for c, names := range aliases {
		for _, n := range names {
			m[n] = c
		}
	}
	return m
}()

// lookupColumn returns the column of a header, or "" for unknown headers.
func lookupColumn(header string) column { return columnsByAlias[key(header)] }

// row is a data record keyed by column. Missing columns read as "".
type row map[column]string

func (r row) blank() bool {
	for _, v := range r {
		if v != "" {
			return false
		}
	}
	return true
}

func (r row) holding() (portfoy.Holding, error) {
	quantity, err := parseDecimal(r[colQuantity])
	if err != nil {
		return portfoy.Holding{}, fmt.Errorf("quantity: %w", err)
	}
	unitCost, err := parseDecimal(r[colUnitCost])
	if err != nil {
		return portfoy.Holding{}, fmt.Errorf("unit cost: %w", err)
	}
	return portfoy.Holding{
		Code:     r[colCode],
		Market:   r[colMarket],
		Quantity: quantity,
		UnitCost: unitCost,
		Type:     parseType(r[colType]),
		Sector:   r[colSector],
		Notes:    r[colNotes],
	}, nil
}

func (r row) sale() (portfoy.Sale, error) {
	on, err := parseDate(r[colDate])
	if err != nil {
		return portfoy.Sale{}, err
	}
	quantity, err := parseDecimal(r[colQuantity])
	if err != nil {
		return portfoy.Sale{}, fmt.Errorf("quantity: %w", err)
	}
	price, err := parseDecimal(r[colPrice])
	if err != nil {
		return portfoy.Sale{}, fmt.Errorf("price: %w", err)
	}
	cur := portfoy.TRY
	if s := r[colCurrency]; s != "" {
		if cur, err = portfoy.ParseCurrency(s); err != nil {
			return portfoy.Sale{}, err
		}
	}
	return portfoy.Sale{Date: on, Code: r[colCode], Quantity: quantity, Price: price, Currency: cur}, nil
}

func holdingRecord(h portfoy.Holding) []string {
	t := h.Type
	if t == "" {
		t = portfoy.Held
	}
	return []string{h.Code, h.Market, h.Quantity.String(), h.UnitCost.String(), string(t), h.Sector, h.Notes}
}

// parseType maps the type cell to a HoldingType, anything but a watch tag is
// held.
func parseType(s string) portfoy.HoldingType {
	k := key(s)
	if k == "" {
		return portfoy.Held
	}
	if strings.HasPrefix(k, key(string(portfoy.Watched))) || k == "watch" || k == "watched" {
		return portfoy.Watched
	}
	return portfoy.Held
}

// parseDecimal reads a number in Turkish or international notation. Currency
// signs, percent signs and spaces are ignored, an empty cell is zero.
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsDigit(r), r == '.', r == ',', r == '-', r == '+':
			return r
		}
		return -1
	}, s)
	if s == "" {
		return decimal.Zero, nil
	}
	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		// 1.234,56
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		// 1,234.56
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0 && strings.Count(s, ",") == 1:
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ".") > 1:
		// 1.234.567
		s = strings.ReplaceAll(s, ".", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", s)
	}
	return d, nil
}

// dateLayouts are the accepted date cells, ISO first.
var dateLayouts = []string{"2006-1-2", "02.01.2006", "2.1.2006", "02/01/2006"}

func parseDate(s string) (date.Date, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return date.Of(t), nil
		}
	}
	return date.Date{}, fmt.Errorf("invalid date %q", s)
}

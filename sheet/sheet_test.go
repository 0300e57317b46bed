package sheet

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/etnz/portfoy"
	"github.com/etnz/portfoy/date"
	"github.com/shopspring/decimal"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReadHoldings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Ana.csv", "\ufeffKod;Piyasa;Adet;Ort. Maliyet;Tip;Sektör;Açıklama;Renk\n"+
		"THYAO;BIST (Tümü);35;84,53;Portfoy;Ulaştırma;uzun vade;mavi\n"+
		";;;;;;;\n"+
		"AMZN;ABD (S&P + NASDAQ);1,03;$225.80;Takip;;;\n"+
		"USD;NAKIT;703,50;42,22;;;;\n")

	w, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	got, err := w.ReadHoldings("Ana")
	if err != nil {
		t.Fatalf("ReadHoldings() unexpected error: %v", err)
	}
	want := []portfoy.Holding{
		{Code: "THYAO", Market: "BIST (Tümü)", Quantity: decimal.RequireFromString("35"), UnitCost: decimal.RequireFromString("84.53"), Type: portfoy.Held, Sector: "Ulaştırma", Notes: "uzun vade"},
		{Code: "AMZN", Market: "ABD (S&P + NASDAQ)", Quantity: decimal.RequireFromString("1.03"), UnitCost: decimal.RequireFromString("225.80"), Type: portfoy.Watched},
		{Code: "USD", Market: "NAKIT", Quantity: decimal.RequireFromString("703.50"), UnitCost: decimal.RequireFromString("42.22"), Type: portfoy.Held},
	}
	if len(got) != len(want) {
		t.Fatalf("ReadHoldings() = %d rows, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.Code != w.Code || g.Market != w.Market || !g.Quantity.Equal(w.Quantity) || !g.UnitCost.Equal(w.UnitCost) ||
			g.Type != w.Type || g.Sector != w.Sector || g.Notes != w.Notes {
			t.Errorf("ReadHoldings()[%d] = %+v, want %+v", i, g, w)
		}
	}
}

func TestReadHoldingsMissingColumns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Yeni.csv", "Code,Market\nASELS,BIST\n")
	w, _ := Open(dir)

	got, err := w.ReadHoldings("Yeni")
	if err != nil {
		t.Fatalf("ReadHoldings() unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ReadHoldings() = %v, want one row", got)
	}
	h := got[0]
	if !h.Quantity.IsZero() || !h.UnitCost.IsZero() || h.Type != portfoy.Held || h.Sector != "" {
		t.Errorf("ReadHoldings() defaults = %+v, want zero quantity and cost, held", h)
	}
}

func TestReadHoldingsErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Bozuk.csv", "Kod,Piyasa,Adet\nTHYAO,BIST,1-2\nASELS,BIST,10\n")
	w, _ := Open(dir)

	got, err := w.ReadHoldings("Bozuk")
	rows, ok := RowErrors(err)
	if !ok || len(rows) != 1 || rows[0].Line != 2 || rows[0].Holding.Code != "THYAO" {
		t.Errorf("ReadHoldings() error = %v, want a row error on line 2 for THYAO", err)
	}
	if len(got) != 1 || got[0].Code != "ASELS" {
		t.Errorf("ReadHoldings() = %v, want the valid row", got)
	}

	_, err = w.ReadHoldings("Yok")
	if !errors.Is(err, ErrNoProfile) {
		t.Errorf("ReadHoldings(Yok) error = %v, want ErrNoProfile", err)
	}
	if _, ok := RowErrors(err); ok {
		t.Errorf("RowErrors(%v) = true, want false", err)
	}
	if _, err := w.ReadHoldings("TOTAL"); !errors.Is(err, ErrNoProfile) {
		t.Errorf("ReadHoldings(TOTAL) error = %v, want ErrNoProfile", err)
	}
}

func TestWriteHoldings(t *testing.T) {
	dir := t.TempDir()
	w, _ := Open(dir)
	holdings := []portfoy.Holding{
		{Code: "THYAO", Market: "BIST", Quantity: decimal.RequireFromString("35"), UnitCost: decimal.RequireFromString("84.53"), Sector: "Ulaştırma", Notes: "a, b"},
		{Code: "NVDA", Market: "ABD", Quantity: decimal.RequireFromString("1"), UnitCost: decimal.RequireFromString("100"), Type: portfoy.Watched},
	}

	ok, err := w.WriteHoldings("Ana", holdings)
	if !ok || err != nil {
		t.Fatalf("WriteHoldings() = %v, %v, want true, nil", ok, err)
	}
	got, err := w.ReadHoldings("Ana")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Notes != "a, b" || got[0].Type != portfoy.Held || got[1].Type != portfoy.Watched {
		t.Errorf("ReadHoldings() after WriteHoldings() = %+v", got)
	}
	if !got[0].UnitCost.Equal(holdings[0].UnitCost) {
		t.Errorf("UnitCost = %v, want %v", got[0].UnitCost, holdings[0].UnitCost)
	}

	ok, err = w.WriteHoldings("TOTAL", holdings)
	if ok || !errors.Is(err, portfoy.ErrTotalReadOnly) {
		t.Errorf("WriteHoldings(TOTAL) = %v, %v, want false, ErrTotalReadOnly", ok, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "TOTAL.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("WriteHoldings(TOTAL) created a tab")
	}

	bad := []portfoy.Holding{{Code: "X", Market: "BIST", Quantity: decimal.NewFromInt(-1)}}
	if ok, err := w.WriteHoldings("Ana", bad); ok || err == nil {
		t.Errorf("WriteHoldings(negative quantity) = %v, %v, want an error", ok, err)
	}
}

func TestProfiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Emeklilik.csv", "Kod\n")
	writeFile(t, dir, "Ana.csv", "Kod\n")
	writeFile(t, dir, "Ana.sales.csv", "Tarih\n")
	writeFile(t, dir, "TOTAL.csv", "Kod\n")
	writeFile(t, dir, "notes.txt", "")
	w, _ := Open(dir)

	got, err := w.Profiles()
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"Ana", "Emeklilik"}; !slices.Equal(got, want) {
		t.Errorf("Profiles() = %v, want %v", got, want)
	}
}

func TestReadSales(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Ana.csv", "Kod,Piyasa,Adet,Maliyet\n")
	writeFile(t, dir, "Ana.sales.csv", "Tarih;Kod;Adet;Satış Fiyatı;Döviz\n"+
		"14.10.2025;THYAO;10;300,50;TL\n"+
		"2025-10-15;AAPL;1;250;USD\n")
	w, _ := Open(dir)

	p, err := w.ReadProfile("Ana")
	if err != nil {
		t.Fatalf("ReadProfile() unexpected error: %v", err)
	}
	if len(p.Sales) != 2 {
		t.Fatalf("ReadProfile().Sales = %v, want 2 sales", p.Sales)
	}
	if s := p.Sales[0]; s.Date != date.New(2025, 10, 14) || s.Currency != portfoy.TRY || !s.Price.Equal(decimal.RequireFromString("300.5")) {
		t.Errorf("sale 0 = %+v", s)
	}
	if s := p.Sales[1]; s.Date != date.New(2025, 10, 15) || s.Currency != portfoy.USD {
		t.Errorf("sale 1 = %+v", s)
	}

	writeFile(t, dir, "Bos.csv", "Kod\n")
	if sales, err := w.ReadSales("Bos"); err != nil || sales != nil {
		t.Errorf("ReadSales(Bos) = %v, %v, want no sales", sales, err)
	}
}

func TestParseDecimal(t *testing.T) {
	testCases := []struct {
		in, want string
	}{
		{"", "0"},
		{"35", "35"},
		{"84,53", "84.53"},
		{"1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"1.234.567", "1234567"},
		{"₺ 1.500,00", "1500"},
		{"$225.80", "225.8"},
		{"-3,5", "-3.5"},
		{"%6,47", "6.47"},
	}
	for _, tc := range testCases {
		got, err := parseDecimal(tc.in)
		if err != nil {
			t.Errorf("parseDecimal(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("parseDecimal(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if _, err := parseDecimal("abc-"); err == nil {
		t.Errorf("parseDecimal(abc-) expected an error")
	}
}

func TestLookupColumn(t *testing.T) {
	testCases := []struct {
		header string
		want   column
	}{
		{"Kod", colCode},
		{"  KOD ", colCode},
		{"Sektör", colSector},
		{"SEKTÖR", colSector},
		{"Birim  Maliyet", colUnitCost},
		{"Unit Cost", colUnitCost},
		{"Açıklama", colNotes},
		{"Tür", colType},
		{"Renk", ""},
	}
	for _, tc := range testCases {
		if got := lookupColumn(tc.header); got != tc.want {
			t.Errorf("lookupColumn(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

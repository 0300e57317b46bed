package accounting_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/etnz/portfoy"
	"github.com/etnz/portfoy/accounting"
	"github.com/etnz/portfoy/accounting/accountingtest"
	"github.com/etnz/portfoy/agent"
	"github.com/etnz/portfoy/date"
	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

func TestValue(t *testing.T) {
	ctx := context.Background()
	s := accountingtest.New(t)

	testCases := []struct {
		profile string
		want    string
	}{
		{"Ana", "4000"},
		{"Emeklilik", "17600"},
		{"TOTAL", "21600"},
		{"total", "21600"},
	}
	for _, tc := range testCases {
		v, err := s.Value(ctx, tc.profile)
		if err != nil {
			t.Fatalf("Value(%q) unexpected error: %v", tc.profile, err)
		}
		if got := v.Totals().Value.Amount(); !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("Value(%q) total = %v, want %v", tc.profile, got, tc.want)
		}
		if v.FX.Fallback {
			t.Errorf("Value(%q) used the fallback rate", tc.profile)
		}
	}
}

func TestValueExclude(t *testing.T) {
	s := accountingtest.New(t)
	s.Union = portfoy.UnionOptions{Exclude: "Emeklilik"}
	v, err := s.Value(context.Background(), portfoy.TotalProfile)
	if err != nil {
		t.Fatal(err)
	}
	if got := v.Totals().Value.Amount(); !got.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("TOTAL without Emeklilik = %v, want 4000", got)
	}
}

func TestValueUnreadableRow(t *testing.T) {
	s := accountingtest.New(t)
	tab := "Kod,Piyasa,Adet,Maliyet\nTHYAO,BIST,10,250\nASELS,BIST,1-0,100\n"
	if err := os.WriteFile(filepath.Join(s.Book.Dir(), "Bozuk.csv"), []byte(tab), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	v, err := s.Value(ctx, "Bozuk")
	if err != nil {
		t.Fatalf("Value(Bozuk) = %v, want the readable rows valued", err)
	}
	if len(v.Rows) != 1 || v.Rows[0].Holding.Code != "THYAO" {
		t.Errorf("Value(Bozuk) rows = %v, want THYAO only", v.Rows)
	}
	if len(v.Rejected) != 1 || v.Rejected[0].Holding.Code != "ASELS" {
		t.Errorf("Value(Bozuk).Rejected = %v, want ASELS", v.Rejected)
	}

	total, err := s.Value(ctx, portfoy.TotalProfile)
	if err != nil {
		t.Fatalf("Value(TOTAL) = %v", err)
	}
	if got := total.Totals().Value.Amount(); !got.Equal(decimal.NewFromInt(24600)) {
		t.Errorf("Value(TOTAL) = %v, want 24600", got)
	}
	if len(total.Rejected) != 1 {
		t.Errorf("Value(TOTAL).Rejected = %v, want ASELS", total.Rejected)
	}
}

func TestValueUnknown(t *testing.T) {
	s := accountingtest.New(t)
	if _, err := s.Value(context.Background(), "Yok"); err == nil {
		t.Error("Value(unknown profile) succeeded, want an error")
	}
}

func TestValueFXFallback(t *testing.T) {
	s := accountingtest.New(t)
	s.FX = nil
	v, err := s.Value(context.Background(), "Emeklilik")
	if err != nil {
		t.Fatal(err)
	}
	if !v.FX.Fallback {
		t.Error("Value() without fx source did not use the fallback rate")
	}
	// 440 USD at 34.20
	if got := v.Totals().Value.Amount(); !got.Equal(decimal.RequireFromString("15048")) {
		t.Errorf("Value() = %v, want 15048", got)
	}
}

func TestRecord(t *testing.T) {
	ctx := context.Background()
	s := accountingtest.New(t)

	ok, err := s.Record(ctx, portfoy.TotalProfile)
	if ok || !errors.Is(err, portfoy.ErrTotalReadOnly) {
		t.Errorf("Record(TOTAL) = %v, %v, want false, ErrTotalReadOnly", ok, err)
	}

	recorded, err := s.RecordAll(ctx)
	if err != nil {
		t.Fatalf("RecordAll() unexpected error: %v", err)
	}
	if want := []string{"Ana", "Emeklilik"}; !slices.Equal(recorded, want) {
		t.Errorf("RecordAll() = %v, want %v", recorded, want)
	}

	series, err := s.Series(ctx, portfoy.TotalProfile)
	if err != nil {
		t.Fatal(err)
	}
	try, usd, ok := series.Get(accountingtest.Today)
	if !ok || try != 21600 || usd != 540 {
		t.Errorf("TOTAL history = %v, %v, %v, want 21600, 540, true", try, usd, ok)
	}
}

func TestSaveHoldings(t *testing.T) {
	s := accountingtest.New(t)
	ok, err := s.SaveHoldings("TOTAL", nil)
	if ok || !errors.Is(err, portfoy.ErrTotalReadOnly) {
		t.Errorf("SaveHoldings(TOTAL) = %v, %v, want false, ErrTotalReadOnly", ok, err)
	}
	ok, err = s.SaveHoldings("Yeni", accountingtest.Profiles["Ana"])
	if !ok || err != nil {
		t.Fatalf("SaveHoldings(Yeni) = %v, %v, want true, nil", ok, err)
	}
	names, err := s.Profiles(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"Ana", "Emeklilik", "Yeni", "TOTAL"}; !slices.Equal(names, want) {
		t.Errorf("Profiles() = %v, want %v", names, want)
	}
}

func TestReports(t *testing.T) {
	ctx := context.Background()
	s := accountingtest.New(t)

	report, err := s.Report(ctx, "TOTAL")
	if err != nil {
		t.Fatal(err)
	}
	for _, code := range []string{"THYAO", "AMZN", "Emeklilik"} {
		if !strings.Contains(report, code) {
			t.Errorf("Report(TOTAL) does not mention %s:\n%s", code, report)
		}
	}

	groups, err := s.Groups(ctx, "Ana", "class")
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"| bist |", "| cash |"} {
		if !strings.Contains(groups, key) {
			t.Errorf("Groups(Ana, class) has no %s row:\n%s", key, groups)
		}
	}
	if _, err := s.Groups(ctx, "Ana", "color"); err == nil {
		t.Error("Groups(unknown dimension) succeeded, want an error")
	}
}

func TestNarrow(t *testing.T) {
	s := new(portfoy.Series)
	for _, day := range []string{"2024-12-31", "2025-01-15", "2025-01-31", "2025-02-10", "2025-02-11"} {
		s.Record(date.MustParse(day), 1, 1)
	}
	today := date.MustParse("2025-02-11")

	testCases := []struct {
		period, in string
		want       []string
	}{
		{"", "", []string{"2024-12-31", "2025-01-15", "2025-01-31", "2025-02-10", "2025-02-11"}},
		{"", "year", []string{"2025-01-15", "2025-01-31", "2025-02-10", "2025-02-11"}},
		{"month", "", []string{"2024-12-31", "2025-01-31", "2025-02-11"}},
		{"month", "year", []string{"2025-01-31", "2025-02-11"}},
		{"", "week", []string{"2025-02-10", "2025-02-11"}},
	}
	for _, tc := range testCases {
		got, err := accounting.Narrow(s, today, tc.period, tc.in)
		if err != nil {
			t.Fatalf("Narrow(%q, %q) unexpected error: %v", tc.period, tc.in, err)
		}
		var days []string
		for on := range got.Dates() {
			days = append(days, on.String())
		}
		if !slices.Equal(days, tc.want) {
			t.Errorf("Narrow(%q, %q) = %v, want %v", tc.period, tc.in, days, tc.want)
		}
	}
	if _, err := accounting.Narrow(s, today, "fortnight", ""); err == nil {
		t.Error("Narrow(fortnight) succeeded, want an error")
	}
}

func TestAnalystTools(t *testing.T) {
	lib := agent.NewLibrary(agent.Functions(accountingtest.New(t)))
	ctx := context.Background()

	resp := lib(ctx, &genai.FunctionCall{ID: "1", Name: "Profiles"})
	if got := resp.Response["output"]; got != "Ana\nEmeklilik\nTOTAL" {
		t.Errorf("Profiles() = %v, want Ana, Emeklilik, TOTAL", resp.Response)
	}
	resp = lib(ctx, &genai.FunctionCall{ID: "2", Name: "Report", Args: map[string]any{"profile": "Ana"}})
	if got, _ := resp.Response["output"].(string); !strings.Contains(got, "THYAO") {
		t.Errorf("Report(Ana) = %v, want THYAO listed", resp.Response)
	}
}

package portfoy

import "testing"

func TestNativeCurrency(t *testing.T) {
	testCases := []struct {
		market, code string
		want         Currency
	}{
		{"BIST (Tümü)", "THYAO", TRY},
		{"ABD (S&P + NASDAQ)", "AMZN", USD},
		{"Fon", "AFT", TRY},
		{"Emtia", "Gram Altın", TRY},
		{"Nakit", "TL", TRY},
		{"NAKİT", "TL", TRY},
		{"Nakit", "USD", USD},
		{"nakit", "usd", USD},
		{"Kripto", "BTC", USD},
		{"Vadeli", "XU030", USD},
		{"", "X", USD},
	}
	for _, tc := range testCases {
		if got := NativeCurrency(tc.market, tc.code); got != tc.want {
			t.Errorf("NativeCurrency(%q, %q) = %v, want %v", tc.market, tc.code, got, tc.want)
		}
	}
}

func TestPricingCurrency(t *testing.T) {
	testCases := []struct {
		market, code string
		want         Currency
	}{
		{"Nakit", "USD", TRY},
		{"ABD", "AAPL", USD},
		{"Emtia", "Gram Altın", TRY},
		{"Kıymetli Maden", "Gram Altın", TRY},
		{"Altın", "GRAM GÜMÜŞ", TRY},
		{"", "Ons Altın", TRY},
	}
	for _, tc := range testCases {
		if got := PricingCurrency(tc.market, tc.code); got != tc.want {
			t.Errorf("PricingCurrency(%q, %q) = %v, want %v", tc.market, tc.code, got, tc.want)
		}
	}
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		market, code string
		want         Class
	}{
		{"BIST (Tümü)", "THYAO", ClassBIST},
		{"ABD (S&P + NASDAQ)", "AMZN", ClassUS},
		{"S&P 500", "SPY", ClassUS},
		{"NASDAQ", "QQQ", ClassUS},
		{"Yatırım Fonu (FON)", "AFT", ClassFund},
		{"Emtia", "Gram Altın", ClassCommodity},
		{"Emtia", "GRAM GÜMÜŞ", ClassCommodity},
		{"Nakit", "USD", ClassCash},
		// cash wins over a commodity looking code.
		{"Nakit", "Gram Altın", ClassCash},
		{"Kripto", "BTC", ClassCrypto},
		{"Vadeli (BIST)", "F_XU0301225", ClassFutures},
		{"Diğer", "XYZ", ClassOther},
	}
	for _, tc := range testCases {
		if got := Classify(tc.market, tc.code); got != tc.want {
			t.Errorf("Classify(%q, %q) = %v, want %v", tc.market, tc.code, got, tc.want)
		}
	}
}

func TestSymbol(t *testing.T) {
	s := SymbolMap{Overrides: map[string]string{"KOZAA": "KOZAL.IS"}}
	testCases := []struct {
		code, market string
		want         string
	}{
		{"THYAO", "BIST (Tümü)", "THYAO.IS"},
		{"thyao.is", "BIST", "THYAO.IS"},
		{"AMZN", "ABD (S&P + NASDAQ)", "AMZN"},
		{"BTC", "Kripto", "BTC-USD"},
		{"ETH-EUR", "Kripto", "ETH-EUR"},
		{"Gram Altın", "Emtia", "GC=F"},
		{"Gram Gümüş", "Emtia", "SI=F"},
		{"kozaa", "BIST", "KOZAL.IS"},
	}
	for _, tc := range testCases {
		if got := s.Symbol(tc.code, tc.market); got != tc.want {
			t.Errorf("Symbol(%q, %q) = %q, want %q", tc.code, tc.market, got, tc.want)
		}
	}
}

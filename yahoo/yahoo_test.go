package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/etnz/portfoy"
	"github.com/etnz/portfoy/date"
	"github.com/shopspring/decimal"
)

const thyao = `{"chart":{"result":[{
  "meta":{"currency":"TRY","symbol":"THYAO.IS","regularMarketPrice":90.0},
  "timestamp":[1760252400,1760338800,1760425200],
  "indicators":{"quote":[{"close":[87.5,null,90.0]}]}
}],"error":null}}`

const notFound = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v8/finance/chart/THYAO.IS", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("interval") != "1d" {
			t.Errorf("interval = %q want 1d", r.URL.Query().Get("interval"))
		}
		w.Write([]byte(thyao))
	})
	mux.HandleFunc("/v8/finance/chart/USDTRY=X", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":42.43},"timestamp":[1760425200],"indicators":{"quote":[{"close":[42.4]}]}}],"error":null}}`))
	})
	mux.HandleFunc("/v8/finance/chart/NOPE", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(notFound))
	})
	mux.HandleFunc("/v8/finance/chart/GONE", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(notFound))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCloses(t *testing.T) {
	srv := newServer(t)
	c := New(WithBaseURL(srv.URL))

	closes, err := c.Closes(context.Background(), "THYAO.IS", 7)
	if err != nil {
		t.Fatalf("Closes() error = %v", err)
	}
	if len(closes) != 2 {
		t.Fatalf("Closes() returned %d closes, want 2 (null skipped)", len(closes))
	}
	if !closes[0].Price.Equal(decimal.RequireFromString("87.5")) || !closes[1].Price.Equal(decimal.NewFromInt(90)) {
		t.Errorf("Closes() prices = %v, %v want 87.5, 90", closes[0].Price, closes[1].Price)
	}
	if want := date.New(2025, 10, 14); closes[1].Date != want {
		t.Errorf("Closes()[1].Date = %v want %v", closes[1].Date, want)
	}
}

func TestClosesErrors(t *testing.T) {
	srv := newServer(t)
	c := New(WithBaseURL(srv.URL))

	for _, symbol := range []string{"NOPE", "GONE"} {
		if _, err := c.Closes(context.Background(), symbol, 7); err == nil {
			t.Errorf("Closes(%q) want error", symbol)
		}
	}
}

func TestRate(t *testing.T) {
	srv := newServer(t)
	c := New(WithBaseURL(srv.URL))

	rate, err := c.Rate(context.Background(), portfoy.DefaultFXPair)
	if err != nil {
		t.Fatalf("Rate() error = %v", err)
	}
	if !rate.Equal(decimal.RequireFromString("42.43")) {
		t.Errorf("Rate() = %v want 42.43", rate)
	}
}

func TestClosesCancelled(t *testing.T) {
	srv := newServer(t)
	c := New(WithBaseURL(srv.URL))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Closes(ctx, "THYAO.IS", 7)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Closes() with cancelled context error = %v want context.Canceled", err)
	}
}

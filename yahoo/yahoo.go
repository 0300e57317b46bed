// Package yahoo reads daily closes and exchange rates from the Yahoo Finance
// chart endpoint.
package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/portfoy"
	"github.com/etnz/portfoy/date"
	"github.com/shopspring/decimal"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client queries the chart endpoint. It implements portfoy.MarketDataSource
// and portfoy.FXRateSource.
type Client struct {
	base   string
	client *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL targets another server, for tests.
func WithBaseURL(base string) Option { return func(c *Client) { c.base = base } }

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.client = h } }

// New returns a Client.
func New(opts ...Option) *Client {
	c := &Client{base: DefaultBaseURL, client: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	_ portfoy.MarketDataSource = (*Client)(nil)
	_ portfoy.FXRateSource     = (*Client)(nil)
)

// chart fetches the daily chart of symbol as a generic json object.
func (c *Client) chart(ctx context.Context, symbol string, lookbackDays int) (any, error) {
	// https://query1.finance.yahoo.com/v8/finance/chart/THYAO.IS?range=7d&interval=1d
	// {"chart":{"result":[{
	//    "meta":{"currency":"TRY","symbol":"THYAO.IS","regularMarketPrice":290.25, ...},
	//    "timestamp":[1728885600, ...],
	//    "indicators":{"quote":[{"close":[287.5, null, 290.25], ...}]}
	// }],"error":null}}
	if lookbackDays <= 0 {
		lookbackDays = portfoy.DefaultMarketLookback
	}
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?range=%dd&interval=1d", c.base, url.PathEscape(symbol), lookbackDays)
	var jobj any
	if err := jwget(ctx, c.client, addr, &jobj); err != nil {
		return nil, err
	}
	if jerr, err := jsonpath.Get("$.chart.error", jobj); err == nil && jerr != nil {
		return nil, fmt.Errorf("yahoo chart %s: %v", symbol, jerr)
	}
	return jobj, nil
}

// Closes returns the daily closes of symbol, oldest first. Days without a
// close (null in the payload) are skipped.
func (c *Client) Closes(ctx context.Context, symbol string, lookbackDays int) ([]portfoy.Close, error) {
	jobj, err := c.chart(ctx, symbol, lookbackDays)
	if err != nil {
		return nil, err
	}
	stamps, err := floats(jobj, "$.chart.result[0].timestamp")
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	prices, err := floats(jobj, "$.chart.result[0].indicators.quote[0].close")
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}

	closes := make([]portfoy.Close, 0, len(stamps))
	for i, ts := range stamps {
		if i >= len(prices) || prices[i] == nil {
			continue
		}
		closes = append(closes, portfoy.Close{
			Date:  date.Of(time.Unix(int64(*ts), 0).UTC()),
			Price: decimal.NewFromFloat(*prices[i]),
		})
	}
	return closes, nil
}

// Rate returns the latest rate of a currency pair symbol such as "USDTRY=X".
func (c *Client) Rate(ctx context.Context, pair string) (decimal.Decimal, error) {
	jobj, err := c.chart(ctx, pair, 5)
	if err != nil {
		return decimal.Zero, err
	}
	if v, err := jsonpath.Get("$.chart.result[0].meta.regularMarketPrice", jobj); err == nil {
		if f, ok := v.(float64); ok && f > 0 {
			return decimal.NewFromFloat(f), nil
		}
	}
	prices, err := floats(jobj, "$.chart.result[0].indicators.quote[0].close")
	if err != nil {
		return decimal.Zero, fmt.Errorf("yahoo rate %s: %w", pair, err)
	}
	for i := len(prices) - 1; i >= 0; i-- {
		if prices[i] != nil && *prices[i] > 0 {
			return decimal.NewFromFloat(*prices[i]), nil
		}
	}
	return decimal.Zero, fmt.Errorf("yahoo rate %s: %w", pair, portfoy.ErrNoData)
}

// Package tefas reads Turkish mutual fund prices from the TEFAS fund
// history service.
package tefas

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/portfoy"
	"github.com/etnz/portfoy/date"
	"github.com/shopspring/decimal"
)

const (
	DefaultBaseURL = "https://www.tefas.gov.tr"
	historyPath    = "/api/DB/BindHistoryInfo"
	// dates are sent in Turkish day first format.
	dateLayout = "02.01.2006"
)

// Client implements portfoy.FundPriceSource.
type Client struct {
	base   string
	client *http.Client
	kind   string // fund type: YAT (investment), EMK (pension), BYF (exchange traded)
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL targets another server, for tests.
func WithBaseURL(base string) Option { return func(c *Client) { c.base = base } }

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.client = h } }

// WithFundType selects the fund family, YAT by default.
func WithFundType(kind string) Option { return func(c *Client) { c.kind = kind } }

// New returns a Client.
func New(opts ...Option) *Client {
	c := &Client{base: DefaultBaseURL, client: http.DefaultClient, kind: "YAT"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ portfoy.FundPriceSource = (*Client)(nil)

// Price is a fund unit price on a day.
type Price struct {
	Date  date.Date
	Code  string
	Title string
	Price decimal.Decimal
}

// record is a row of the history payload:
//
//	{"draw":0,"recordsTotal":2,"data":[
//	  {"TARIH":"1728950400000","FONKODU":"AFT","FONUNVAN":"AK PORTFÖY ...","FIYAT":0.182345, ...}
//	]}
type record struct {
	Timestamp string          `json:"TARIH"` // epoch milliseconds
	Code      string          `json:"FONKODU"`
	Title     string          `json:"FONUNVAN"`
	Price     decimal.Decimal `json:"FIYAT"`
}

// History returns the daily prices of a fund within a range, oldest first.
func (c *Client) History(ctx context.Context, code string, within date.Range) ([]Price, error) {
	form := url.Values{
		"fontip":      {c.kind},
		"sfontur":     {""},
		"fonkod":      {strings.ToUpper(code)},
		"fongrup":     {""},
		"bastarih":    {within.From.Format(dateLayout)},
		"bittarih":    {within.To.Format(dateLayout)},
		"fonturkod":   {""},
		"fonunvantip": {""},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+historyPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot http POST %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Data []record `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		// the service answers an html error page when it rejects a request.
		return nil, fmt.Errorf("cannot parse tefas response for %s: %w", code, err)
	}

	prices := make([]Price, 0, len(payload.Data))
	for _, r := range payload.Data {
		ms, err := strconv.ParseInt(r.Timestamp, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid tefas date %q for %s: %w", r.Timestamp, code, err)
		}
		prices = append(prices, Price{
			Date:  date.Of(time.UnixMilli(ms).UTC()),
			Code:  r.Code,
			Title: r.Title,
			Price: r.Price,
		})
	}
	slices.SortFunc(prices, func(a, b Price) int { return cmp.Compare(a.Date.Time().Unix(), b.Date.Time().Unix()) })
	return prices, nil
}

// FundQuote returns the two latest prices of a fund within a range. When only
// one price is known it is also the previous one.
func (c *Client) FundQuote(ctx context.Context, code string, within date.Range) (latest, previous decimal.Decimal, err error) {
	prices, err := c.History(ctx, code, within)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if len(prices) == 0 {
		return decimal.Zero, decimal.Zero, fmt.Errorf("fund %s: %w", code, portfoy.ErrNoData)
	}
	latest = prices[len(prices)-1].Price
	previous = latest
	if len(prices) > 1 {
		previous = prices[len(prices)-2].Price
	}
	return latest, previous, nil
}

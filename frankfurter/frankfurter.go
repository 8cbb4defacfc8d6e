// Package frankfurter fetches daily reference rates from a Frankfurter API
// (https://frankfurter.dev), an alternative to the MNB service for home
// currencies other than HUF.
package frankfurter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/taxwiz"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultURL is the base address of the public Frankfurter API.
const DefaultURL = "https://api.frankfurter.dev/v1"

// Client implements taxwiz.Source, quoting currencies in Home.
type Client struct {
	base string
	home string
	http *http.Client
	log  zerolog.Logger
}

// New returns a client of the API at base (DefaultURL if empty) quoting
// rates in home currency.
func New(base, home string, client *http.Client, log zerolog.Logger) *Client {
	if base == "" {
		base = DefaultURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		base: strings.TrimSuffix(base, "/"),
		home: strings.ToUpper(home),
		http: client,
		log:  log,
	}
}

// Rates implements taxwiz.Source.
func (c *Client) Rates(ctx context.Context, from, to taxwiz.Date, currency string) ([]taxwiz.Day, error) {
	// https://api.frankfurter.dev/v1/2024-01-01..2024-01-06?base=USD&symbols=HUF
	// {
	//   "amount": 1.0,
	//   "base": "USD",
	//   "start_date": "2024-01-02",
	//   "end_date": "2024-01-05",
	//   "rates": {
	//     "2024-01-02": {"HUF": 346.12},
	//     ...
	currency = strings.ToUpper(currency)
	q := url.Values{}
	q.Set("base", currency)
	q.Set("symbols", c.home)
	addr := fmt.Sprintf("%s/%s..%s?%s", c.base, from, to, q.Encode())

	var jobj any
	if err := jwget(ctx, c.http, addr, &jobj); err != nil {
		return nil, fmt.Errorf("error retrieving %s rates: %w", currency, err)
	}
	c.log.Debug().Str("currency", currency).Stringer("from", from).Stringer("to", to).Msg("frankfurter rates")

	jval, err := jsonpath.Get("$.rates", jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s rates: %w", currency, err)
	}
	byDay, ok := jval.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("error parsing %s rates: unexpected %T", currency, jval)
	}

	days := make([]taxwiz.Day, 0, len(byDay))
	for day, v := range byDay {
		on, err := taxwiz.ParseDateLayouts(day, taxwiz.DateFormat)
		if err != nil {
			c.log.Warn().Err(err).Msg("ignoring frankfurter day")
			continue
		}
		quotes, ok := v.(map[string]any)
		if !ok {
			continue
		}
		d := taxwiz.Day{Date: on}
		if val, ok := quotes[c.home].(float64); ok {
			// the quote is the value of one unit of 'currency' in home currency.
			d.Quotes = append(d.Quotes, taxwiz.Quote{Currency: currency, Unit: 1, Text: decimal.NewFromFloat(val).String()})
		}
		days = append(days, d)
	}
	return days, nil
}

// jwget performs an HTTP GET request to the given address and unmarshals the
// JSON response body into data.
func jwget(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(data)
}

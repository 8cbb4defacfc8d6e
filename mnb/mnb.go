// Package mnb fetches the official exchange rates of the Hungarian National
// Bank (Magyar Nemzeti Bank) through its SOAP web service.
package mnb

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/taxwiz"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultURL is the address of the MNB exchange rate service.
const DefaultURL = "http://www.mnb.hu/arfolyamok.asmx"

const soapAction = `"http://www.mnb.hu/webservices/MNBArfolyamServiceSoap/GetExchangeRates"`

// Client queries GetExchangeRates. It implements taxwiz.Source.
type Client struct {
	url     string
	http    *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the http client, http.DefaultClient otherwise.
func WithHTTPClient(c *http.Client) Option { return func(m *Client) { m.http = c } }

// WithRate limits the number of requests per second. Zero or less disables the limit.
func WithRate(perSecond float64) Option {
	return func(m *Client) {
		if perSecond <= 0 {
			m.limiter = nil
			return
		}
		m.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option { return func(m *Client) { m.log = log } }

// New returns a client for the service at url, DefaultURL if empty.
func New(url string, opts ...Option) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		url:     url,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(5), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rates implements taxwiz.Source.
func (c *Client) Rates(ctx context.Context, from, to taxwiz.Date, currency string) ([]taxwiz.Day, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	body, err := envelope(from, to, currency)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", soapAction)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot query MNB: %w", err)
	}
	defer resp.Body.Close()
	c.log.Debug().Str("currency", currency).Stringer("from", from).Stringer("to", to).Int("status", resp.StatusCode).Msg("MNB GetExchangeRates")
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot query MNB %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cannot read MNB response: %w", err)
	}
	return c.parse(content)
}

type request struct {
	XMLName    xml.Name `xml:"soap:Envelope"`
	SoapNS     string   `xml:"xmlns:soap,attr"`
	WebNS      string   `xml:"xmlns:web,attr"`
	Start      string   `xml:"soap:Body>web:GetExchangeRates>web:startDate"`
	End        string   `xml:"soap:Body>web:GetExchangeRates>web:endDate"`
	Currencies string   `xml:"soap:Body>web:GetExchangeRates>web:currencyNames"`
}

func envelope(from, to taxwiz.Date, currency string) ([]byte, error) {
	body, err := xml.Marshal(request{
		SoapNS:     "http://schemas.xmlsoap.org/soap/envelope/",
		WebNS:      "http://www.mnb.hu/webservices/",
		Start:      from.String(),
		End:        to.String(),
		Currencies: strings.ToUpper(currency),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot encode MNB request: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// response is the SOAP envelope, namespaces are ignored on purpose: the
// service is not consistent about prefixes.
type response struct {
	Result string `xml:"Body>GetExchangeRatesResponse>GetExchangeRatesResult"`
	Fault  string `xml:"Body>Fault>faultstring"`
}

// rates is the document embedded, escaped, in GetExchangeRatesResult.
type rates struct {
	Days []struct {
		Date  string `xml:"date,attr"`
		Rates []struct {
			Unit     string `xml:"unit,attr"`
			Currency string `xml:"curr,attr"`
			Value    string `xml:",chardata"`
		} `xml:"Rate"`
	} `xml:"Day"`
}

func (c *Client) parse(content []byte) ([]taxwiz.Day, error) {
	var env response
	if err := xml.Unmarshal(content, &env); err != nil {
		return nil, fmt.Errorf("cannot decode MNB envelope: %w", err)
	}
	if env.Fault != "" {
		return nil, fmt.Errorf("MNB fault: %s", env.Fault)
	}
	if strings.TrimSpace(env.Result) == "" {
		return nil, fmt.Errorf("empty MNB result")
	}
	var doc rates
	if err := xml.Unmarshal([]byte(env.Result), &doc); err != nil {
		return nil, fmt.Errorf("cannot decode MNB rates: %w", err)
	}

	days := make([]taxwiz.Day, 0, len(doc.Days))
	for _, d := range doc.Days {
		on, err := taxwiz.ParseDateLayouts(d.Date, taxwiz.DateFormat)
		if err != nil {
			c.log.Warn().Err(err).Str("date", d.Date).Msg("ignoring MNB day")
			continue
		}
		day := taxwiz.Day{Date: on}
		for _, r := range d.Rates {
			unit, err := strconv.Atoi(strings.TrimSpace(r.Unit))
			if err != nil {
				unit = 1
			}
			day.Quotes = append(day.Quotes, taxwiz.Quote{Currency: r.Currency, Unit: unit, Text: r.Value})
		}
		days = append(days, day)
	}
	return days, nil
}

package mnb

import (
	"context"
	"html"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/etnz/taxwiz"
	"github.com/google/go-cmp/cmp"
)

// soapResponse wraps doc the way the service does: escaped inside GetExchangeRatesResult.
func soapResponse(doc string) string {
	return `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:xsd="http://www.w3.org/2001/XMLSchema">
<soap:Body><GetExchangeRatesResponse xmlns="http://www.mnb.hu/webservices/"><GetExchangeRatesResult>` +
		html.EscapeString(doc) +
		`</GetExchangeRatesResult></GetExchangeRatesResponse></soap:Body></soap:Envelope>`
}

func TestClient_Rates(t *testing.T) {
	var gotBody, gotAction string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotAction = r.Header.Get("SOAPAction")
		io.WriteString(w, soapResponse(`<MNBExchangeRates><Day date="2024-01-05"><Rate unit="1" curr="USD">352,12</Rate></Day><Day date="2024-01-04"><Rate unit="1" curr="USD">350,50</Rate></Day></MNBExchangeRates>`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithRate(0))
	days, err := c.Rates(context.Background(), taxwiz.NewDate(2024, 1, 1), taxwiz.NewDate(2024, 1, 6), "usd")
	if err != nil {
		t.Fatalf("Rates() unexpected error = %v", err)
	}

	want := []taxwiz.Day{
		{Date: taxwiz.NewDate(2024, 1, 5), Quotes: []taxwiz.Quote{{Currency: "USD", Unit: 1, Text: "352,12"}}},
		{Date: taxwiz.NewDate(2024, 1, 4), Quotes: []taxwiz.Quote{{Currency: "USD", Unit: 1, Text: "350,50"}}},
	}
	if diff := cmp.Diff(want, days, cmp.AllowUnexported(taxwiz.Date{})); diff != "" {
		t.Errorf("Rates() mismatch (-want +got):\n%s", diff)
	}

	if gotAction != soapAction {
		t.Errorf("SOAPAction = %q, want %q", gotAction, soapAction)
	}
	for _, want := range []string{
		"<web:startDate>2024-01-01</web:startDate>",
		"<web:endDate>2024-01-06</web:endDate>",
		"<web:currencyNames>USD</web:currencyNames>",
	} {
		if !strings.Contains(gotBody, want) {
			t.Errorf("request body %q does not contain %q", gotBody, want)
		}
	}
}

func TestClient_Rates_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"http error", http.StatusInternalServerError, "", "500"},
		{"not xml", http.StatusOK, "<html", "cannot decode MNB envelope"},
		{"empty result", http.StatusOK, soapResponse(""), "empty MNB result"},
		{"fault", http.StatusOK, `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body><soap:Fault><faultcode>soap:Server</faultcode><faultstring>boom</faultstring></soap:Fault></soap:Body></soap:Envelope>`, "MNB fault: boom"},
		{"bad inner document", http.StatusOK, soapResponse("<MNBExchangeRates><Day"), "cannot decode MNB rates"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := New(srv.URL, WithRate(0)).Rates(context.Background(), taxwiz.NewDate(2024, 1, 1), taxwiz.NewDate(2024, 1, 6), "USD")
			if err == nil {
				t.Fatalf("Rates() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Rates() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestClient_parse(t *testing.T) {
	c := New("")
	doc := `<MNBExchangeRates>
<Day date="not a date"><Rate unit="1" curr="USD">1,0</Rate></Day>
<Day date="2024-01-05"><Rate unit="100" curr="JPY">243,75</Rate><Rate unit="x" curr="EUR">385,1</Rate></Day>
<Day date="2024-01-06"></Day>
</MNBExchangeRates>`
	days, err := c.parse([]byte(soapResponse(doc)))
	if err != nil {
		t.Fatalf("parse() unexpected error = %v", err)
	}
	want := []taxwiz.Day{
		{Date: taxwiz.NewDate(2024, 1, 5), Quotes: []taxwiz.Quote{
			{Currency: "JPY", Unit: 100, Text: "243,75"},
			{Currency: "EUR", Unit: 1, Text: "385,1"},
		}},
		{Date: taxwiz.NewDate(2024, 1, 6)},
	}
	if diff := cmp.Diff(want, days, cmp.AllowUnexported(taxwiz.Date{})); diff != "" {
		t.Errorf("parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_Resolver(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		io.WriteString(w, soapResponse(`<MNBExchangeRates><Day date="2024-01-05"><Rate unit="1" curr="USD">352,12</Rate></Day></MNBExchangeRates>`))
	}))
	defer srv.Close()

	r := taxwiz.NewResolver(New(srv.URL, WithRate(0)), nil)
	for range 2 {
		got, err := r.Resolve(context.Background(), taxwiz.NewDate(2024, 1, 6), "USD")
		if err != nil {
			t.Fatalf("Resolve() unexpected error = %v", err)
		}
		if got.String() != "352.12" {
			t.Errorf("Resolve() = %v, want 352.12", got)
		}
	}
	if calls != 1 {
		t.Errorf("service called %d times, want 1", calls)
	}
}

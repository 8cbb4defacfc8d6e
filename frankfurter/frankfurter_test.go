package frankfurter

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/etnz/taxwiz"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func TestClient_Rates(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		io.WriteString(w, `{"amount":1.0,"base":"USD","start_date":"2024-01-02","end_date":"2024-01-05",
"rates":{"2024-01-02":{"HUF":346.12},"2024-01-05":{"HUF":352.5},"garbage":{"HUF":1}}}`)
	}))
	defer srv.Close()

	c := New(srv.URL+"/v1/", "huf", nil, zerolog.Nop())
	days, err := c.Rates(context.Background(), taxwiz.NewDate(2024, 1, 1), taxwiz.NewDate(2024, 1, 6), "usd")
	if err != nil {
		t.Fatalf("Rates() unexpected error = %v", err)
	}
	if want := "/v1/2024-01-01..2024-01-06"; gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}
	if want := "base=USD&symbols=HUF"; gotQuery != want {
		t.Errorf("query = %q, want %q", gotQuery, want)
	}

	slices.SortFunc(days, func(a, b taxwiz.Day) int { return a.Date.Compare(b.Date) })
	want := []taxwiz.Day{
		{Date: taxwiz.NewDate(2024, 1, 2), Quotes: []taxwiz.Quote{{Currency: "USD", Unit: 1, Text: "346.12"}}},
		{Date: taxwiz.NewDate(2024, 1, 5), Quotes: []taxwiz.Quote{{Currency: "USD", Unit: 1, Text: "352.5"}}},
	}
	if diff := cmp.Diff(want, days, cmp.AllowUnexported(taxwiz.Date{})); diff != "" {
		t.Errorf("Rates() mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_Rates_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"not found", http.StatusNotFound, `{"message":"not found"}`, "404"},
		{"not json", http.StatusOK, `<html>`, "error retrieving USD rates"},
		{"no rates", http.StatusOK, `{"amount":1}`, "error parsing USD rates"},
		{"rates not an object", http.StatusOK, `{"rates":[1,2]}`, "error parsing USD rates"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := New(srv.URL, "HUF", srv.Client(), zerolog.Nop()).Rates(context.Background(), taxwiz.NewDate(2024, 1, 1), taxwiz.NewDate(2024, 1, 6), "USD")
			if err == nil {
				t.Fatalf("Rates() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Rates() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestClient_Resolver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"rates":{"2024-01-04":{"HUF":350},"2024-01-05":{"HUF":352.5}}}`)
	}))
	defer srv.Close()

	r := taxwiz.NewResolver(New(srv.URL, "HUF", nil, zerolog.Nop()), nil)
	got, err := r.Resolve(context.Background(), taxwiz.NewDate(2024, 1, 6), "USD")
	if err != nil {
		t.Fatalf("Resolve() unexpected error = %v", err)
	}
	if got.String() != "352.5" {
		t.Errorf("Resolve() = %v, want 352.5", got)
	}
}

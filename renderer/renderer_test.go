package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/etnz/taxwiz"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// fixedRates resolves every currency to the same rate.
type fixedRates decimal.Decimal

func (f fixedRates) Resolve(context.Context, taxwiz.Date, string) (decimal.Decimal, error) {
	return decimal.Decimal(f), nil
}

func testReport(t *testing.T, p taxwiz.Profile, txs []taxwiz.Transaction) *taxwiz.Report {
	t.Helper()
	return taxwiz.BuildReport(context.Background(), p, txs, fixedRates(decimal.NewFromInt(350)), "HUF", zerolog.Nop())
}

func lightyearReport(t *testing.T) *taxwiz.Report {
	d := taxwiz.NewDate
	return testReport(t, taxwiz.Lightyear, []taxwiz.Transaction{
		{Date: d(2024, 1, 2), Instrument: "AAPL", Type: taxwiz.Buy, Currency: "USD", Amount: decimal.NewFromInt(100)},
		{Date: d(2024, 3, 2), Instrument: "AAPL", Type: taxwiz.Sell, Currency: "USD", Amount: decimal.NewFromInt(120)},
		{Date: d(2024, 2, 2), Instrument: "<b>MSFT</b>", Type: taxwiz.Buy, Currency: "USD", Amount: decimal.NewFromInt(50)},
		{Date: d(2024, 4, 2), Type: taxwiz.Dividend, Currency: "USD", Amount: decimal.NewFromInt(2)},
	})
}

func TestFormatOf(t *testing.T) {
	tests := map[string]string{
		"report.md":   FormatMarkdown,
		"report.html": FormatHTML,
		"report.json": FormatJSON,
		"report.xlsx": FormatXLSX,
		"report":      FormatXLSX,
	}
	for name, want := range tests {
		if got := FormatOf(name); got != want {
			t.Errorf("FormatOf(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestCell(t *testing.T) {
	tests := []struct {
		kind taxwiz.Kind
		v    any
		want string
	}{
		{taxwiz.KindText, "AAPL", "AAPL"},
		{taxwiz.KindDate, taxwiz.NewDate(2024, 1, 5), "2024-01-05"},
		{taxwiz.KindDate, taxwiz.Date{}, ""},
		{taxwiz.KindNumber, decimal.RequireFromString("352.12"), "352.12"},
		{taxwiz.KindHome, decimal.NewFromInt(7000), taxwiz.NewMoney(decimal.NewFromInt(7000), "HUF").String()},
		{taxwiz.KindText, nil, ""},
	}
	for _, tt := range tests {
		if got := Cell("HUF", tt.kind, tt.v); got != tt.want {
			t.Errorf("Cell(%v, %v) = %q, want %q", tt.kind, tt.v, got, tt.want)
		}
	}
}

func TestMarkdown(t *testing.T) {
	got := Markdown(lightyearReport(t))
	for _, want := range []string{
		"# Tax Report (lightyear)",
		"## Realized PnL",
		"## Open Positions",
		"## Interest",
		"None.",
		"## Dividend",
		"## Summary",
		"Total taxable (HUF)",
		"AAPL",
		taxwiz.NewMoney(decimal.NewFromInt(7000), "HUF").String(), // (120 - 100) * 350
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Markdown() does not contain %q:\n%s", want, got)
		}
	}
}

func TestHTML(t *testing.T) {
	got, err := HTML(lightyearReport(t))
	if err != nil {
		t.Fatalf("HTML() unexpected error = %v", err)
	}
	s := string(got)
	for _, want := range []string{"<title>Tax Report (lightyear)</title>", "<table>", "<h2", "Realized PnL"} {
		if !strings.Contains(s, want) {
			t.Errorf("HTML() does not contain %q", want)
		}
	}
	if strings.Contains(s, "<b>MSFT</b>") {
		t.Errorf("HTML() contains raw user html")
	}
}

func TestTerminal(t *testing.T) {
	got, err := Terminal(Markdown(lightyearReport(t)), 0)
	if err != nil {
		t.Fatalf("Terminal() unexpected error = %v", err)
	}
	if !strings.Contains(got, "AAPL") {
		t.Errorf("Terminal() does not contain AAPL:\n%s", got)
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(lightyearReport(t), &buf); err != nil {
		t.Fatalf("JSON() unexpected error = %v", err)
	}
	var got jsonReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("JSON() produced invalid json: %v", err)
	}
	var names []string
	for _, s := range got.Sheets {
		names = append(names, s.Name)
	}
	want := []string{"Realized PnL", "Open Positions", "Interest", "Dividend", "Summary"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("JSON() sheets mismatch (-want +got):\n%s", diff)
	}
	// AAPL, USD, buy, sell, pnl, ...
	if row := got.Sheets[0].Rows[0]; row[0] != "AAPL" || row[4] != "20" || row[8] != "2024-03-02" {
		t.Errorf("JSON() realized row = %v", row)
	}
	if got.Sheets[2].Rows == nil {
		t.Errorf("JSON() empty sheet rows = nil, want []")
	}
}

func TestXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := XLSX(lightyearReport(t), &buf); err != nil {
		t.Fatalf("XLSX() unexpected error = %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("cannot open workbook: %v", err)
	}
	defer f.Close()

	want := []string{"Realized PnL", "Open Positions", "Interest", "Dividend", "Summary"}
	if diff := cmp.Diff(want, f.GetSheetList()); diff != "" {
		t.Errorf("XLSX() sheets mismatch (-want +got):\n%s", diff)
	}

	rows, err := f.GetRows("Realized PnL", excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetRows() unexpected error = %v", err)
	}
	wantRows := [][]string{
		{"Ticker", "Currency", "Buy Sum (FC)", "Sell Sum (FC)", "Realized PnL (FC)", "Buy Sum (HUF)", "Sell Sum (HUF)", "Realized PnL (HUF)", "Sale Date"},
		{"AAPL", "USD", "100", "120", "20", "35000", "42000", "7000", "2024-03-02"},
	}
	if diff := cmp.Diff(wantRows, rows); diff != "" {
		t.Errorf("XLSX() realized rows mismatch (-want +got):\n%s", diff)
	}

	summary, err := f.GetRows("Summary", excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetRows() unexpected error = %v", err)
	}
	// header, realized, interest, dividend, total
	if len(summary) != 5 || summary[4][0] != "Total taxable (HUF)" || summary[4][1] != "7700" {
		t.Errorf("XLSX() summary = %v", summary)
	}
}

func TestXLSX_Savings(t *testing.T) {
	d := taxwiz.NewDate
	r := testReport(t, taxwiz.RevolutSavings, []taxwiz.Transaction{
		{Date: d(2024, 1, 2), Type: taxwiz.Interest, Currency: "EUR", Amount: decimal.RequireFromString("0.5"), Description: "Interest PAID"},
		{Date: d(2024, 1, 2), Type: taxwiz.Fee, Currency: "EUR", Amount: decimal.RequireFromString("-0.1"), Description: "Service Fee Charged"},
	})
	var buf bytes.Buffer
	if err := XLSX(r, &buf); err != nil {
		t.Fatalf("XLSX() unexpected error = %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("cannot open workbook: %v", err)
	}
	defer f.Close()
	if diff := cmp.Diff([]string{"Savings", "Summary"}, f.GetSheetList()); diff != "" {
		t.Errorf("XLSX() sheets mismatch (-want +got):\n%s", diff)
	}
}

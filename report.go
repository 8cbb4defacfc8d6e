package taxwiz

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Kind tells a report writer how to format a column.
type Kind int

const (
	KindText   Kind = iota // plain text
	KindDate               // a Date
	KindNumber             // an amount in foreign currency, or a rate
	KindHome               // an amount in home currency
)

// Column describes a column of a Table.
type Column struct {
	Title string
	Kind  Kind
}

// Table is a sheet of a report: cells are string, Date or decimal.Decimal
// according to the Kind of their column.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// Sheet names.
const (
	SheetRealized = "Realized PnL"
	SheetOpen     = "Open Positions"
	SheetSavings  = "Savings"
	SheetSummary  = "Summary"
)

// Report holds everything computed for a tax report. It owns what numbers
// appear, the renderer package decides how they look.
type Report struct {
	RunID     string
	Profile   string
	Home      string
	Generated time.Time

	Realized       []RealizedPosition
	Open           []OpenPosition
	Income         map[Type][]IncomeRecord
	Savings        []SavingsBucket
	SavingsSummary []SavingsSummary

	profile Profile
}

// BuildReport aggregates txs as configured by p, converting amounts to home with rates.
func BuildReport(ctx context.Context, p Profile, txs []Transaction, rates RateResolver, home string, log zerolog.Logger) *Report {
	r := &Report{
		RunID:     uuid.NewString(),
		Profile:   p.Name,
		Home:      home,
		Generated: time.Now(),
		Income:    make(map[Type][]IncomeRecord),
		profile:   p,
	}
	log = log.With().Str("run", r.RunID).Str("profile", p.Name).Logger()

	if p.Positions {
		r.Realized, r.Open = NewPositionAggregator(rates, log).Aggregate(ctx, txs)
	}
	income := NewIncomeAggregator(rates, log)
	for _, typ := range p.Income {
		r.Income[typ] = income.Aggregate(ctx, txs, typ)
	}
	if p.Savings {
		r.Savings, r.SavingsSummary = income.Savings(ctx, txs)
	}
	log.Info().Int("transactions", len(txs)).Int("realized", len(r.Realized)).Int("open", len(r.Open)).Msg("report built")
	return r
}

// RealizedTotal returns the sum of realized gains in home currency.
func (r *Report) RealizedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range r.Realized {
		total = total.Add(p.PnLHome)
	}
	return total
}

// IncomeTotal returns the sum of income of type typ in home currency.
func (r *Report) IncomeTotal(typ Type) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range r.Income[typ] {
		total = total.Add(rec.AmountHome)
	}
	return total
}

// TaxableTotal returns the total amount to declare: realized gains and income.
func (r *Report) TaxableTotal() decimal.Decimal {
	total := r.RealizedTotal()
	for _, typ := range r.profile.Income {
		total = total.Add(r.IncomeTotal(typ))
	}
	return total
}

// Sheets returns the tables of the report, in display order.
func (r *Report) Sheets() []Table {
	var sheets []Table
	if r.profile.Positions {
		sheets = append(sheets, r.realizedTable(), r.openTable())
	}
	for _, typ := range r.profile.Income {
		sheets = append(sheets, r.incomeTable(typ))
	}
	if r.profile.Savings {
		sheets = append(sheets, r.savingsTable(), r.savingsSummaryTable())
		return sheets
	}
	return append(sheets, r.summaryTable())
}

func (r *Report) h(title string) string { return fmt.Sprintf("%s (%s)", title, r.Home) }

func (r *Report) realizedTable() Table {
	t := Table{
		Name: SheetRealized,
		Columns: []Column{
			{"Ticker", KindText}, {"Currency", KindText},
			{"Buy Sum (FC)", KindNumber}, {"Sell Sum (FC)", KindNumber}, {"Realized PnL (FC)", KindNumber},
			{r.h("Buy Sum"), KindHome}, {r.h("Sell Sum"), KindHome}, {r.h("Realized PnL"), KindHome},
			{"Sale Date", KindDate},
		},
	}
	for _, p := range r.Realized {
		t.Rows = append(t.Rows, []any{
			p.Instrument, p.Currency,
			p.BuyFC, p.SellFC, p.PnLFC,
			p.BuyHome, p.SellHome, p.PnLHome,
			p.SaleDate,
		})
	}
	return t
}

func (r *Report) openTable() Table {
	t := Table{
		Name: SheetOpen,
		Columns: []Column{
			{"Ticker", KindText}, {"Currency", KindText},
			{"Buy Sum (FC)", KindNumber}, {r.h("Buy Sum"), KindHome},
		},
	}
	for _, p := range r.Open {
		t.Rows = append(t.Rows, []any{p.Instrument, p.Currency, p.BuyFC, p.BuyHome})
	}
	return t
}

func (r *Report) incomeTable(typ Type) Table {
	t := Table{
		Name: typ.String(),
		Columns: []Column{
			{"Date", KindDate}, {"Currency", KindText},
			{"Amount (FC)", KindNumber}, {"Exchange Rate", KindNumber}, {r.h("Amount"), KindHome},
		},
	}
	for _, rec := range r.Income[typ] {
		t.Rows = append(t.Rows, []any{rec.Date, rec.Currency, rec.AmountFC, rec.Rate, rec.AmountHome})
	}
	return t
}

func (r *Report) summaryTable() Table {
	t := Table{
		Name:    SheetSummary,
		Columns: []Column{{"Category", KindText}, {"Total", KindHome}},
	}
	t.Rows = append(t.Rows, []any{r.h("Realized PnL"), r.RealizedTotal()})
	for _, typ := range r.profile.Income {
		t.Rows = append(t.Rows, []any{r.h(typ.String()), r.IncomeTotal(typ)})
	}
	t.Rows = append(t.Rows, []any{r.h("Total taxable"), r.TaxableTotal()})
	return t
}

func (r *Report) savingsTable() Table {
	t := Table{
		Name: SheetSavings,
		Columns: []Column{
			{"Month", KindText}, {"Currency", KindText}, {"Description", KindText},
			{"Amount (FC)", KindNumber}, {r.h("Amount"), KindHome},
		},
	}
	for _, b := range r.Savings {
		t.Rows = append(t.Rows, []any{b.Period, b.Currency, b.Description, b.AmountFC, b.AmountHome})
	}
	return t
}

func (r *Report) savingsSummaryTable() Table {
	t := Table{
		Name: SheetSummary,
		Columns: []Column{
			{"Currency", KindText},
			{"Interest (FC)", KindNumber}, {"Fee (FC)", KindNumber}, {"Net (FC)", KindNumber},
			{r.h("Interest"), KindHome}, {r.h("Fee"), KindHome}, {r.h("Net"), KindHome},
			{"Gross (FC)", KindNumber}, {r.h("Gross"), KindHome},
		},
	}
	for _, s := range r.SavingsSummary {
		t.Rows = append(t.Rows, []any{
			s.Currency,
			s.InterestFC, s.FeeFC, s.NetFC,
			s.InterestHome, s.FeeHome, s.NetHome,
			s.GrossFC, s.GrossHome,
		})
	}
	return t
}

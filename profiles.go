package taxwiz

import (
	"fmt"
	"strings"
	"time"
)

// Columns names the columns of an export holding each Transaction field.
// An empty name means the export does not carry the field.
type Columns struct {
	Date        string
	Type        string
	Currency    string
	Instrument  string
	Amount      string
	Description string
}

// Profile describes a brokerage export and the report built from it.
//
// Profiles only differ by configuration: the aggregation algorithms are
// shared.
type Profile struct {
	Name    string
	Columns Columns
	// DateLayouts are tried in order to parse the date column.
	DateLayouts []string
	// Types maps the exact, trimmed value of the type column to a Type.
	Types map[string]Type
	// Prefixes maps a description prefix to a Type, for exports without a type column.
	Prefixes []Prefix
	// CurrencyFromSymbol infers the currency from the symbol in the amount column.
	CurrencyFromSymbol bool

	// Positions enables the realized and open position sheets.
	Positions bool
	// Income lists the income types reported, one sheet each.
	Income []Type
	// Savings enables the monthly savings sheets.
	Savings bool
}

// Prefix maps descriptions starting with Text to Type.
type Prefix struct {
	Text string
	Type Type
}

// Well known profiles.
var (
	Lightyear = Profile{
		Name: "lightyear",
		Columns: Columns{
			Date:       "Date",
			Type:       "Type",
			Currency:   "CCY",
			Instrument: "Ticker",
			Amount:     "Net Amt.",
		},
		// day first
		DateLayouts: []string{
			"02/01/2006 15:04:05", "02/01/2006 15:04", "02/01/2006",
			"2/1/2006 15:04:05", "2/1/2006 15:04", "2/1/2006",
			"02.01.2006 15:04:05", "02.01.2006",
			"2006-01-02 15:04:05", "2006-01-02",
		},
		Types: map[string]Type{
			"Buy":          Buy,
			"Sell":         Sell,
			"Distribution": Distribution,
			"Interest":     Interest,
			"Dividend":     Dividend,
			"Fee":          Fee,
		},
		Positions: true,
		Income:    []Type{Interest, Dividend},
	}

	Revolut = Profile{
		Name: "revolut",
		Columns: Columns{
			Date:       "Date",
			Type:       "Type",
			Currency:   "Currency",
			Instrument: "Ticker",
			Amount:     "Total Amount",
		},
		DateLayouts: []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"},
		Types: map[string]Type{
			"BUY - MARKET":  Buy,
			"SELL - MARKET": Sell,
			"DIVIDEND":      Dividend,
		},
		Positions: true,
		Income:    []Type{Dividend},
	}

	RevolutSavings = Profile{
		Name: "revolut_saving",
		Columns: Columns{
			Date:        "Date",
			Amount:      "Value",
			Description: "Description",
		},
		DateLayouts: []string{"Jan 2, 2006, 3:04:05 PM", "Jan 2, 2006, 15:04:05", "Jan 2, 2006", "2006-01-02 15:04:05", "2006-01-02"},
		Prefixes: []Prefix{
			{"Interest", Interest},
			{"Service Fee", Fee},
		},
		CurrencyFromSymbol: true,
		Savings:            true,
	}
)

// Profiles returns the well known profiles.
func Profiles() []Profile { return []Profile{Lightyear, Revolut, RevolutSavings} }

// ProfileByName returns the well known profile called name, ignoring case.
func ProfileByName(name string) (Profile, error) {
	var names []string
	for _, p := range Profiles() {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, nil
		}
		names = append(names, p.Name)
	}
	return Profile{}, fmt.Errorf("unknown mode %q, want one of %s", name, strings.Join(names, ", "))
}

// typeOf returns the Type of a row given its type and description cells.
func (p Profile) typeOf(typ, description string) Type {
	if p.Types != nil {
		if t, ok := p.Types[strings.TrimSpace(typ)]; ok {
			return t
		}
	}
	for _, prefix := range p.Prefixes {
		if strings.HasPrefix(description, prefix.Text) {
			return prefix.Type
		}
	}
	return Unknown
}

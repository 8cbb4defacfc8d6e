package taxwiz

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// this file contains functions to read the brokerage exports.
// Exports are CSV files with a header line, the columns are located by name as
// described by the Profile.

// nonNumeric matches everything that is not part of a plain decimal number,
// currency symbols and thousands separators included.
var nonNumeric = regexp.MustCompile(`[^\d.\-]`)

// Import reads the transactions of a CSV export described by p.
//
// Rows that cannot be read are skipped and reported in skipped, each one as an
// *InputError. Rows of a type the profile does not know are dropped silently.
// err is only returned when the file itself cannot be read.
func Import(r io.Reader, p Profile) (txs []Transaction, skipped []error, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	// required columns
	for _, name := range []string{p.Columns.Date, p.Columns.Amount} {
		if _, ok := index[name]; !ok {
			return nil, nil, fmt.Errorf("missing column %q in csv header %q", name, header)
		}
	}
	if p.Columns.Type != "" {
		if _, ok := index[p.Columns.Type]; !ok {
			return nil, nil, fmt.Errorf("missing column %q in csv header %q", p.Columns.Type, header)
		}
	}
	if p.Columns.Currency != "" && !p.CurrencyFromSymbol {
		if _, ok := index[p.Columns.Currency]; !ok {
			return nil, nil, fmt.Errorf("missing column %q in csv header %q", p.Columns.Currency, header)
		}
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped = append(skipped, &InputError{Line: perr.Line, Err: err})
				continue
			}
			return txs, skipped, fmt.Errorf("cannot read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		cell := func(name string) string {
			i, ok := index[name]
			if name == "" || !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		// some exports repeat the header line.
		if cell(p.Columns.Date) == p.Columns.Date {
			continue
		}
		if strings.TrimSpace(strings.Join(record, "")) == "" {
			continue
		}

		description := cell(p.Columns.Description)
		typ := p.typeOf(cell(p.Columns.Type), description)
		if typ == Unknown {
			continue
		}

		on, err := ParseDateLayouts(cell(p.Columns.Date), p.DateLayouts...)
		if err != nil {
			skipped = append(skipped, &InputError{Line: line, Field: p.Columns.Date, Err: err})
			continue
		}

		raw := cell(p.Columns.Amount)
		amount, err := ParseAmount(raw)
		if err != nil {
			skipped = append(skipped, &InputError{Line: line, Field: p.Columns.Amount, Err: err})
			continue
		}

		currency := strings.ToUpper(cell(p.Columns.Currency))
		if p.CurrencyFromSymbol {
			currency = CurrencyFromSymbol(raw)
		}
		if currency == "" {
			skipped = append(skipped, &InputError{Line: line, Field: p.Columns.Currency, Err: fmt.Errorf("no currency in %q", raw)})
			continue
		}

		txs = append(txs, Transaction{
			Date:        on,
			Instrument:  cell(p.Columns.Instrument),
			Type:        typ,
			Currency:    currency,
			Amount:      amount,
			Description: description,
		})
	}
	return txs, skipped, nil
}

// ParseAmount parses an amount cell, ignoring currency symbols and thousands separators.
//
// Commas are thousands separators: an amount written with a decimal comma
// after a point, like "1.234,56", is rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	if comma, point := strings.LastIndex(s, ","), strings.LastIndex(s, "."); point >= 0 && comma > point {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: decimal comma", s)
	}
	clean := nonNumeric.ReplaceAllString(s, "")
	if clean == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount %q", s)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// CurrencyFromSymbol returns the ISO code of the currency symbol found in s, or "".
func CurrencyFromSymbol(s string) string {
	switch {
	case strings.Contains(s, "£"):
		return "GBP"
	case strings.Contains(s, "$"):
		return "USD"
	case strings.Contains(s, "€"), strings.Contains(s, "â¬"): // the latter is € read as latin-1
		return "EUR"
	}
	return ""
}

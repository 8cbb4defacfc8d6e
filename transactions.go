package taxwiz

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Type identifies the kind of a brokerage row once normalized by a Profile.
type Type int

// Transaction types known to the aggregators.
const (
	Unknown Type = iota
	Buy
	Sell
	Distribution
	Interest
	Dividend
	Fee
)

func (t Type) String() string {
	switch t {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	case Distribution:
		return "Distribution"
	case Interest:
		return "Interest"
	case Dividend:
		return "Dividend"
	case Fee:
		return "Fee"
	default:
		return "Unknown"
	}
}

// ParseType returns the Type named by s, ignoring case.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	case "distribution":
		return Distribution, nil
	case "interest":
		return Interest, nil
	case "dividend":
		return Dividend, nil
	case "fee":
		return Fee, nil
	default:
		return Unknown, fmt.Errorf("unknown transaction type %q", s)
	}
}

// Transaction is a single row of a brokerage export.
//
// Amount is the signed net amount in Currency as it appears in the export.
// Instrument is empty for rows that are not trades (interest, fees).
type Transaction struct {
	Date        Date
	Instrument  string
	Type        Type
	Currency    string
	Amount      decimal.Decimal
	Description string
}

// IsTrade reports whether the row takes part in the position aggregation.
func (tx Transaction) IsTrade() bool {
	switch tx.Type {
	case Buy, Sell, Distribution:
		return strings.TrimSpace(tx.Instrument) != ""
	}
	return false
}

package taxwiz

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is an amount in a currency, for display.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// NewMoney returns amount in currency.
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: strings.ToUpper(strings.TrimSpace(currency))}
}

// String formats the amount the way the currency is usually written, rounded
// to its minor unit. Unknown currencies are written as "<amount> <code>".
func (m Money) String() string {
	cur := money.GetCurrency(m.Currency)
	if cur == nil {
		return strings.TrimSpace(m.Amount.String() + " " + m.Currency)
	}
	minor := m.Amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

package taxwiz

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RateResolver resolves the home currency value of one unit of a currency on a
// date. *Resolver is the production implementation.
type RateResolver interface {
	Resolve(ctx context.Context, on Date, currency string) (decimal.Decimal, error)
}

// RealizedPosition summarizes an instrument that has been (partly) sold.
type RealizedPosition struct {
	Instrument string
	Currency   string
	BuyFC      decimal.Decimal // Buy and Distribution amounts, in Currency
	SellFC     decimal.Decimal // Sell amounts, in Currency
	PnLFC      decimal.Decimal // SellFC - BuyFC
	BuyHome    decimal.Decimal // each Buy row converted at its own date
	SellHome   decimal.Decimal // each Sell row converted at its own date
	PnLHome    decimal.Decimal // SellHome - BuyHome
	SaleDate   Date            // latest Sell date
}

// OpenPosition summarizes an instrument that has never been sold.
type OpenPosition struct {
	Instrument string
	Currency   string
	BuyFC      decimal.Decimal
	BuyHome    decimal.Decimal
}

// PositionAggregator turns trade rows into realized and open positions.
//
// A row whose rate is unavailable contributes 0 to the home currency sums.
type PositionAggregator struct {
	rates RateResolver
	log   zerolog.Logger
}

// NewPositionAggregator returns an aggregator converting amounts with rates.
func NewPositionAggregator(rates RateResolver, log zerolog.Logger) *PositionAggregator {
	return &PositionAggregator{rates: rates, log: log}
}

// positionKey groups trades of the same instrument in the same currency.
type positionKey struct{ instrument, currency string }

type positionGroup struct {
	key               positionKey
	buyFC, sellFC     decimal.Decimal
	buyHome, sellHome decimal.Decimal
	saleDate          Date
	sellRows          int
}

// Aggregate groups the trade rows of txs by instrument and currency, in order
// of first appearance. A group is realized when its Sell amounts do not sum up
// to zero, open otherwise. Non trade rows are ignored.
func (a *PositionAggregator) Aggregate(ctx context.Context, txs []Transaction) (realized []RealizedPosition, open []OpenPosition) {
	var groups []*positionGroup
	index := make(map[positionKey]*positionGroup)

	for _, tx := range txs {
		if !tx.IsTrade() {
			continue
		}
		key := positionKey{tx.Instrument, tx.Currency}
		g, ok := index[key]
		if !ok {
			g = &positionGroup{key: key}
			index[key] = g
			groups = append(groups, g)
		}

		home := a.convert(ctx, tx)
		switch tx.Type {
		case Buy, Distribution:
			g.buyFC = g.buyFC.Add(tx.Amount)
			g.buyHome = g.buyHome.Add(home)
		case Sell:
			g.sellFC = g.sellFC.Add(tx.Amount)
			g.sellHome = g.sellHome.Add(home)
			g.sellRows++
			if g.saleDate.IsZero() || tx.Date.After(g.saleDate) {
				g.saleDate = tx.Date
			}
		}
	}

	for _, g := range groups {
		if g.sellFC.IsZero() {
			if g.sellRows > 0 {
				a.log.Info().Str("instrument", g.key.instrument).Str("currency", g.key.currency).
					Msg("sells sum up to zero, position reported as open")
			}
			open = append(open, OpenPosition{
				Instrument: g.key.instrument,
				Currency:   g.key.currency,
				BuyFC:      g.buyFC,
				BuyHome:    g.buyHome,
			})
			continue
		}
		realized = append(realized, RealizedPosition{
			Instrument: g.key.instrument,
			Currency:   g.key.currency,
			BuyFC:      g.buyFC,
			SellFC:     g.sellFC,
			PnLFC:      g.sellFC.Sub(g.buyFC),
			BuyHome:    g.buyHome,
			SellHome:   g.sellHome,
			PnLHome:    g.sellHome.Sub(g.buyHome),
			SaleDate:   g.saleDate,
		})
	}
	return realized, open
}

// convert returns the home value of a trade row, or zero when its rate is unavailable.
func (a *PositionAggregator) convert(ctx context.Context, tx Transaction) decimal.Decimal {
	rate, err := a.rates.Resolve(ctx, tx.Date, tx.Currency)
	if err != nil {
		a.log.Warn().Err(err).Str("instrument", tx.Instrument).Stringer("date", tx.Date).
			Msg("trade converted with a zero rate")
		return decimal.Zero
	}
	return tx.Amount.Mul(rate)
}

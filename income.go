package taxwiz

import (
	"cmp"
	"context"
	"slices"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// IncomeRecord is a single income row converted to home currency.
type IncomeRecord struct {
	Date       Date
	Currency   string
	AmountFC   decimal.Decimal
	Rate       decimal.Decimal // rate used, 1 when the rate was unavailable
	AmountHome decimal.Decimal
}

// SavingsBucket sums the income of a savings account per month, currency and description.
type SavingsBucket struct {
	Period      string // YYYY-MM
	Currency    string
	Description string
	AmountFC    decimal.Decimal
	AmountHome  decimal.Decimal
}

// SavingsSummary sums the income of a savings account per currency.
//
// Net amounts are interest plus fees (fees are negative), gross amounts are
// interest only.
type SavingsSummary struct {
	Currency     string
	InterestFC   decimal.Decimal
	FeeFC        decimal.Decimal
	NetFC        decimal.Decimal
	InterestHome decimal.Decimal
	FeeHome      decimal.Decimal
	NetHome      decimal.Decimal
	GrossFC      decimal.Decimal
	GrossHome    decimal.Decimal
}

// IncomeAggregator converts income rows (interest, dividends, fees) to home currency.
type IncomeAggregator struct {
	rates RateResolver
	log   zerolog.Logger
}

// NewIncomeAggregator returns an aggregator converting amounts with rates.
func NewIncomeAggregator(rates RateResolver, log zerolog.Logger) *IncomeAggregator {
	return &IncomeAggregator{rates: rates, log: log}
}

// Aggregate returns one record per row of txs of type typ, in input order.
//
// When the rate of a row is unavailable the amount is taken as is (rate 1),
// unlike trades which are zeroed.
func (a *IncomeAggregator) Aggregate(ctx context.Context, txs []Transaction, typ Type) []IncomeRecord {
	var records []IncomeRecord
	for _, tx := range txs {
		if tx.Type != typ {
			continue
		}
		rate, err := a.rates.Resolve(ctx, tx.Date, tx.Currency)
		if err != nil {
			a.log.Warn().Err(err).Stringer("type", tx.Type).Stringer("date", tx.Date).
				Msg("income converted with a rate of 1")
			rate = decimal.NewFromInt(1)
		}
		records = append(records, IncomeRecord{
			Date:       tx.Date,
			Currency:   tx.Currency,
			AmountFC:   tx.Amount,
			Rate:       rate,
			AmountHome: tx.Amount.Mul(rate),
		})
	}
	return records
}

// Savings aggregates the Interest and Fee rows of a savings account.
//
// Buckets are sorted by period, currency and description; summaries by
// currency. Rows whose rate is unavailable contribute 0 in home currency.
func (a *IncomeAggregator) Savings(ctx context.Context, txs []Transaction) ([]SavingsBucket, []SavingsSummary) {
	type bucketKey struct{ period, currency, description string }
	buckets := make(map[bucketKey]*SavingsBucket)
	summaries := make(map[string]*SavingsSummary)

	for _, tx := range txs {
		if tx.Type != Interest && tx.Type != Fee {
			continue
		}
		home := decimal.Zero
		if rate, err := a.rates.Resolve(ctx, tx.Date, tx.Currency); err != nil {
			a.log.Warn().Err(err).Str("description", tx.Description).Stringer("date", tx.Date).
				Msg("savings row converted with a zero rate")
		} else {
			home = tx.Amount.Mul(rate)
		}

		k := bucketKey{tx.Date.YearMonth(), tx.Currency, tx.Description}
		b, ok := buckets[k]
		if !ok {
			b = &SavingsBucket{Period: k.period, Currency: k.currency, Description: k.description}
			buckets[k] = b
		}
		b.AmountFC = b.AmountFC.Add(tx.Amount)
		b.AmountHome = b.AmountHome.Add(home)

		s, ok := summaries[tx.Currency]
		if !ok {
			s = &SavingsSummary{Currency: tx.Currency}
			summaries[tx.Currency] = s
		}
		if tx.Type == Interest {
			s.InterestFC = s.InterestFC.Add(tx.Amount)
			s.InterestHome = s.InterestHome.Add(home)
		} else {
			s.FeeFC = s.FeeFC.Add(tx.Amount)
			s.FeeHome = s.FeeHome.Add(home)
		}
	}

	monthly := make([]SavingsBucket, 0, len(buckets))
	for _, b := range buckets {
		monthly = append(monthly, *b)
	}
	slices.SortFunc(monthly, func(x, y SavingsBucket) int {
		return cmp.Or(
			cmp.Compare(x.Period, y.Period),
			cmp.Compare(x.Currency, y.Currency),
			cmp.Compare(x.Description, y.Description),
		)
	})

	summary := make([]SavingsSummary, 0, len(summaries))
	for _, s := range summaries {
		s.NetFC = s.InterestFC.Add(s.FeeFC)
		s.NetHome = s.InterestHome.Add(s.FeeHome)
		s.GrossFC = s.InterestFC
		s.GrossHome = s.InterestHome
		summary = append(summary, *s)
	}
	slices.SortFunc(summary, func(x, y SavingsSummary) int { return cmp.Compare(x.Currency, y.Currency) })
	return monthly, summary
}

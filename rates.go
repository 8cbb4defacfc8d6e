package taxwiz

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultWindow is the number of days before the requested date queried from
// the rate source, to get over weekends and bank holidays.
const DefaultWindow = 5

// DefaultHome is the home currency of the reports.
const DefaultHome = "HUF"

// Quote is a rate as published by a source: Text is the value of Unit units of
// Currency expressed in the home currency.
type Quote struct {
	Currency string
	Unit     int // 0 means 1
	Text     string
}

// Day is the set of quotes published on a given date.
type Day struct {
	Date   Date
	Quotes []Quote
}

// Source is a provider of historical daily rates.
//
// Rates returns the days published between from and to (both included) with
// quotes for currency. Days may be missing, and the order is not significant.
type Source interface {
	Rates(ctx context.Context, from, to Date, currency string) ([]Day, error)
}

// Resolver resolves the rate of a currency on a given date, going back to the
// latest published day when the date itself has no quotation, and memoizing
// every resolution in a RateCache.
type Resolver struct {
	source Source
	cache  *RateCache
	home   string
	window int
	today  func() Date
	log    zerolog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithHome sets the home currency (defaults to DefaultHome).
func WithHome(currency string) ResolverOption {
	return func(r *Resolver) { r.home = strings.ToUpper(strings.TrimSpace(currency)) }
}

// WithWindow sets the number of days queried before the requested date.
func WithWindow(days int) ResolverOption {
	return func(r *Resolver) {
		if days >= 0 {
			r.window = days
		}
	}
}

// WithLogger sets the logger used to report unavailable rates.
func WithLogger(log zerolog.Logger) ResolverOption {
	return func(r *Resolver) { r.log = log }
}

// WithClock sets the function returning the current date.
func WithClock(today func() Date) ResolverOption {
	return func(r *Resolver) { r.today = today }
}

// NewResolver returns a Resolver querying src. If cache is nil, an in-memory
// cache is used.
func NewResolver(src Source, cache *RateCache, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		source: src,
		cache:  cache,
		home:   DefaultHome,
		window: DefaultWindow,
		today:  Today,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = NewRateCache(nil, r.log)
	}
	return r
}

// Home returns the home currency.
func (r *Resolver) Home() string { return r.home }

// Cache returns the cache used by the resolver.
func (r *Resolver) Cache() *RateCache { return r.cache }

// Resolve returns the value of one unit of currency, in home currency, on day on.
//
// The home currency is always 1. Any other currency is looked up in the cache
// first, then queried from the source on the window [on-window, on]: the quote of
// day 'on' if published, otherwise the quote of the latest published day in the
// window. The result is cached under 'on'.
//
// Failures are returned as *RateError wrapping ErrRateUnavailable.
func (r *Resolver) Resolve(ctx context.Context, on Date, currency string) (decimal.Decimal, error) {
	key := NewRateKey(on, currency)
	if key.Currency == "" {
		return decimal.Decimal{}, r.fail(key, "empty currency code", nil)
	}
	if key.Currency == r.home {
		return decimal.NewFromInt(1), nil
	}
	if rate, ok := r.cache.Get(key); ok {
		return rate, nil
	}
	if on.After(r.today()) {
		return decimal.Decimal{}, r.fail(key, "date is in the future", nil)
	}

	from := on.Add(-r.window)
	r.log.Debug().Str("currency", key.Currency).Stringer("from", from).Stringer("to", on).Msg("querying rate source")
	days, err := r.source.Rates(ctx, from, on, key.Currency)
	if err != nil {
		return decimal.Decimal{}, r.fail(key, "rate source failure", err)
	}

	rate, err := selectRate(days, on, key.Currency)
	if err != nil {
		return decimal.Decimal{}, r.fail(key, "invalid rate source response", err)
	}

	// Persistence failures are already reported by the cache, the rate is valid anyway.
	_ = r.cache.Put(key, rate)
	return rate, nil
}

// Convert returns amount of currency converted in home currency on day on.
func (r *Resolver) Convert(ctx context.Context, amount decimal.Decimal, on Date, currency string) (decimal.Decimal, error) {
	rate, err := r.Resolve(ctx, on, currency)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return amount.Mul(rate), nil
}

func (r *Resolver) fail(key RateKey, reason string, err error) error {
	r.log.Warn().Err(err).Str("key", key.String()).Str("reason", reason).Msg("rate unavailable")
	return &RateError{Key: key, Reason: reason, Err: err}
}

// selectRate picks the quote for currency in days: the one published on day
// 'on', or else the one of the most recent day. Days after 'on' are never
// selected.
func selectRate(days []Day, on Date, currency string) (decimal.Decimal, error) {
	var chosen *Day
	for i := range days {
		d := &days[i]
		if d.Date.IsZero() || d.Date.After(on) {
			continue
		}
		if d.Date == on {
			chosen = d
			break
		}
		if chosen == nil || d.Date.After(chosen.Date) {
			chosen = d
		}
	}
	if chosen == nil {
		return decimal.Decimal{}, fmt.Errorf("no day published up to %s", on)
	}

	for _, q := range chosen.Quotes {
		if !strings.EqualFold(strings.TrimSpace(q.Currency), currency) {
			continue
		}
		rate, err := ParseRate(q.Text)
		if err != nil {
			return decimal.Decimal{}, err
		}
		if q.Unit > 1 {
			rate = rate.Div(decimal.NewFromInt(int64(q.Unit)))
		}
		if !rate.IsPositive() {
			return decimal.Decimal{}, fmt.Errorf("non positive rate %q on %s", q.Text, chosen.Date)
		}
		return rate, nil
	}
	return decimal.Decimal{}, fmt.Errorf("%s is not quoted on %s", currency, chosen.Date)
}

// ParseRate parses a published rate, accepting a decimal comma ("352,12").
func ParseRate(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.ReplaceAll(s, ",", ".")
	rate, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("cannot parse rate %q: %w", text, err)
	}
	return rate, nil
}

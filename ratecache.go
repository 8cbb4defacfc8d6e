package taxwiz

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RateKey identifies a rate: the value of one unit of Currency on Date.
type RateKey struct {
	Date     Date
	Currency string
}

// NewRateKey returns the canonical key for a date and a currency code.
func NewRateKey(on Date, currency string) RateKey {
	return RateKey{Date: on, Currency: strings.ToUpper(strings.TrimSpace(currency))}
}

// String returns the persisted form of the key: "YYYY-MM-DD|CCY".
func (k RateKey) String() string { return k.Date.String() + "|" + k.Currency }

// ParseRateKey parses the persisted form of a key.
func ParseRateKey(s string) (RateKey, error) {
	day, currency, ok := strings.Cut(s, "|")
	if !ok || strings.TrimSpace(currency) == "" {
		return RateKey{}, fmt.Errorf("invalid rate key %q, want \"YYYY-MM-DD|CCY\"", s)
	}
	on, err := ParseDate(day)
	if err != nil {
		return RateKey{}, fmt.Errorf("invalid rate key %q: %w", s, err)
	}
	return NewRateKey(on, currency), nil
}

// Persister stores resolved rates outside of the process.
//
// Load is called once when the cache is created, Persist after every new
// value. Implementations live in package store.
type Persister interface {
	Load() (map[string]decimal.Decimal, error)
	Persist(key string, rate decimal.Decimal) error
}

// RateCache memoizes resolved rates. A key, once written, keeps its value for
// the lifetime of the cache. It is safe for concurrent use.
type RateCache struct {
	mem       *cache.Cache
	mu        sync.Mutex // serializes writes to the persister
	persister Persister
	log       zerolog.Logger
}

// NewRateCache returns a cache primed with what p holds. p may be nil for an
// in-memory cache. A persister that cannot be read is reported and the cache
// starts empty.
func NewRateCache(p Persister, log zerolog.Logger) *RateCache {
	c := &RateCache{
		// no expiration and no janitor: the cache never evicts.
		mem:       cache.New(cache.NoExpiration, 0),
		persister: p,
		log:       log,
	}
	if p == nil {
		return c
	}
	entries, err := p.Load()
	if err != nil {
		log.Warn().Err(err).Msg("cannot load rate cache, starting with an empty cache")
		return c
	}
	for s, rate := range entries {
		key, err := ParseRateKey(s)
		if err != nil || !rate.IsPositive() {
			log.Warn().Str("key", s).Str("rate", rate.String()).Msg("ignoring invalid rate cache entry")
			continue
		}
		c.mem.Set(key.String(), rate, cache.NoExpiration)
	}
	log.Debug().Int("entries", c.mem.ItemCount()).Msg("rate cache loaded")
	return c
}

// Get returns the rate cached for key.
func (c *RateCache) Get(key RateKey) (decimal.Decimal, bool) {
	v, ok := c.mem.Get(key.String())
	if !ok {
		return decimal.Decimal{}, false
	}
	return v.(decimal.Decimal), true
}

// Put records the rate of key. Writing the value already cached is a no-op,
// writing a different one is ignored and reported. The returned error only
// reports a persistence failure (ErrCacheIO); the value is cached in memory
// regardless.
func (c *RateCache) Put(key RateKey, rate decimal.Decimal) error {
	s := key.String()
	if err := c.mem.Add(s, rate, cache.NoExpiration); err != nil {
		if prev, ok := c.Get(key); ok && !prev.Equal(rate) {
			c.log.Warn().Str("key", s).Str("cached", prev.String()).Str("rejected", rate.String()).
				Msg("conflicting rate ignored, keeping the first one")
		}
		return nil
	}
	if c.persister == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.persister.Persist(s, rate); err != nil {
		c.log.Warn().Err(err).Str("key", s).Msg("cannot persist rate")
		return fmt.Errorf("%w: %w", ErrCacheIO, err)
	}
	return nil
}

// Len returns the number of cached rates.
func (c *RateCache) Len() int { return c.mem.ItemCount() }

// Keys returns all cached keys sorted by date then currency.
func (c *RateCache) Keys() []RateKey {
	keys := make([]RateKey, 0, c.mem.ItemCount())
	for _, s := range slices.Sorted(maps.Keys(c.mem.Items())) {
		if key, err := ParseRateKey(s); err == nil {
			keys = append(keys, key)
		}
	}
	return keys
}

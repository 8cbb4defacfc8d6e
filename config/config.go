// Package config reads the taxwiz configuration from the environment,
// optionally loaded from a .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Rate sources.
const (
	SourceMNB         = "mnb"
	SourceFrankfurter = "frankfurter"
)

// Cache kinds.
const (
	CacheJSON   = "json"
	CacheSQLite = "sqlite"
	CacheNone   = "none"
)

type Config struct {
	HomeCurrency      string
	RateSource        string
	MNBURL            string
	FrankfurterURL    string
	Cache             string
	CachePath         string
	WindowDays        int
	RequestsPerSecond float64
	HTTPTimeout       time.Duration
	LogLevel          string
	LogFormat         string

	// Warnings lists the invalid values replaced by their default, to be
	// logged once the logger exists.
	Warnings []string
}

// Load loads .env if present, then reads the environment.
func Load() *Config {
	var warnings []string
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		warnings = append(warnings, fmt.Sprintf("cannot load .env file: %v", err))
	}
	c := FromEnv(os.LookupEnv)
	c.Warnings = append(warnings, c.Warnings...)
	return c
}

// FromEnv reads the configuration through lookup, using defaults for unset
// or invalid variables.
func FromEnv(lookup func(string) (string, bool)) *Config {
	c := &Config{}
	getEnv := func(key, fallback string) string {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
		return fallback
	}
	oneOf := func(key, fallback string, valid ...string) string {
		value := strings.ToLower(getEnv(key, fallback))
		for _, v := range valid {
			if value == v {
				return value
			}
		}
		c.Warnings = append(c.Warnings, fmt.Sprintf("invalid %s %q, using %q", key, value, fallback))
		return fallback
	}

	c.HomeCurrency = strings.ToUpper(getEnv("TAXWIZ_HOME_CURRENCY", "HUF"))
	c.RateSource = oneOf("TAXWIZ_RATE_SOURCE", SourceMNB, SourceMNB, SourceFrankfurter)
	c.MNBURL = getEnv("TAXWIZ_MNB_URL", "http://www.mnb.hu/arfolyamok.asmx")
	c.FrankfurterURL = getEnv("TAXWIZ_FRANKFURTER_URL", "https://api.frankfurter.dev/v1")
	c.Cache = oneOf("TAXWIZ_CACHE", CacheJSON, CacheJSON, CacheSQLite, CacheNone)
	c.CachePath = getEnv("TAXWIZ_CACHE_PATH", DefaultCachePath(c.Cache))

	windowStr := getEnv("TAXWIZ_RATE_WINDOW_DAYS", "5")
	window, err := strconv.Atoi(windowStr)
	if err != nil || window < 0 {
		c.Warnings = append(c.Warnings, fmt.Sprintf("invalid TAXWIZ_RATE_WINDOW_DAYS %q, using 5", windowStr))
		window = 5
	}
	c.WindowDays = window

	rpsStr := getEnv("TAXWIZ_REQUESTS_PER_SECOND", "5")
	rps, err := strconv.ParseFloat(rpsStr, 64)
	if err != nil || rps < 0 {
		c.Warnings = append(c.Warnings, fmt.Sprintf("invalid TAXWIZ_REQUESTS_PER_SECOND %q, using 5", rpsStr))
		rps = 5
	}
	c.RequestsPerSecond = rps

	timeoutStr := getEnv("TAXWIZ_HTTP_TIMEOUT", "30s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil || timeout <= 0 {
		c.Warnings = append(c.Warnings, fmt.Sprintf("invalid TAXWIZ_HTTP_TIMEOUT %q, using 30s", timeoutStr))
		timeout = 30 * time.Second
	}
	c.HTTPTimeout = timeout

	c.LogLevel = getEnv("LOG_LEVEL", "info")
	c.LogFormat = oneOf("LOG_FORMAT", "console", "console", "json")
	return c
}

// DefaultCachePath returns the cache file in the home directory for a cache kind.
func DefaultCachePath(kind string) string {
	name := "exchange_rate_cache.json"
	if kind == CacheSQLite {
		name = "exchange_rate_cache.db"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, name)
}

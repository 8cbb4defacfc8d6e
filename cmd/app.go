// Package cmd implements the taxwiz command line application.
package cmd

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/etnz/taxwiz"
	"github.com/etnz/taxwiz/config"
	"github.com/etnz/taxwiz/docs"
	"github.com/etnz/taxwiz/frankfurter"
	"github.com/etnz/taxwiz/logger"
	"github.com/etnz/taxwiz/mnb"
	"github.com/etnz/taxwiz/renderer"
	"github.com/etnz/taxwiz/store"
	"github.com/google/subcommands"
	md "github.com/nao1215/markdown"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&reportCmd{}, "")
	c.Register(&rateCmd{}, "")
	c.Register(&cacheCmd{}, "")
	c.Register(&topicCmd{}, "help")
}

// Completion describes the command line for shell completion.
func Completion() *complete.Command {
	var modes predict.Set
	for _, p := range taxwiz.Profiles() {
		modes = append(modes, p.Name)
	}
	topics, _ := docs.All()
	return &complete.Command{
		Sub: map[string]*complete.Command{
			"report": {
				Flags: map[string]complete.Predictor{
					"mode":   modes,
					"f":      predict.Files("*.csv"),
					"o":      predict.Files("*"),
					"format": predict.Set(renderer.Formats()),
				},
			},
			"rate": {
				Flags: map[string]complete.Predictor{
					"d": predict.Something,
					"c": predict.Something,
				},
			},
			"cache": {
				Flags: map[string]complete.Predictor{
					"prefix": predict.Something,
				},
			},
			"topic": {
				Args: predict.Set(topics),
			},
		},
	}
}

// app holds what the commands need, built from the configuration.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	resolver *taxwiz.Resolver
	closer   io.Closer
}

// newApp builds the rate resolver and its cache as configured. cfg is loaded
// from the environment when nil.
func newApp(cfg *config.Config, stderr io.Writer) (*app, error) {
	if cfg == nil {
		cfg = config.Load()
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat, stderr)
	for _, w := range cfg.Warnings {
		log.Warn().Msg(w)
	}

	a := &app{cfg: cfg, log: log}
	var persister taxwiz.Persister
	switch cfg.Cache {
	case config.CacheSQLite:
		db, err := store.OpenSQLite(cfg.CachePath)
		if err != nil {
			// the run goes on with an in-memory cache.
			log.Warn().Err(fmt.Errorf("%w: %w", taxwiz.ErrCacheIO, err)).Str("path", cfg.CachePath).
				Msg("cannot open rate cache, rates will not be persisted")
			break
		}
		persister, a.closer = db, db
	case config.CacheJSON:
		persister = store.NewJSONFile(cfg.CachePath)
	}
	cache := taxwiz.NewRateCache(persister, log)

	client := &http.Client{Timeout: cfg.HTTPTimeout}
	var source taxwiz.Source
	switch cfg.RateSource {
	case config.SourceFrankfurter:
		source = frankfurter.New(cfg.FrankfurterURL, cfg.HomeCurrency, client, log)
	default:
		source = mnb.New(cfg.MNBURL, mnb.WithHTTPClient(client), mnb.WithRate(cfg.RequestsPerSecond), mnb.WithLogger(log))
	}
	a.resolver = taxwiz.NewResolver(source, cache,
		taxwiz.WithHome(cfg.HomeCurrency),
		taxwiz.WithWindow(cfg.WindowDays),
		taxwiz.WithLogger(log),
	)
	log.Debug().Str("source", cfg.RateSource).Str("cache", cfg.Cache).Str("path", cfg.CachePath).Int("cached", cache.Len()).Msg("rate resolver ready")
	return a, nil
}

// Close releases the cache.
func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// printMarkdown renders markdown for the terminal, falling back to the raw text.
func printMarkdown(w io.Writer, markdown string) {
	out, err := renderer.Terminal(markdown, 0)
	if err != nil {
		out = markdown
	}
	fmt.Fprint(w, out)
}

// markdownTable renders a single table as markdown.
func markdownTable(title string, header []string, rows [][]string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H2(title)
	doc.Table(md.TableSet{Header: header, Rows: rows})
	return doc.String()
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

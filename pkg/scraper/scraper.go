// Package scraper provides the asynchronous coinmarketcap client: a
// bounded-concurrency multi-fetch engine with a single-pass dead-letter
// retry, plus the URL builders and scrape operations layered on top.
//
// Scrape operations return raw page bodies; turning HTML into
// structured records is left to the caller.
package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/voramos/coinmarket-client/pkg/client"
	"github.com/voramos/coinmarket-client/pkg/progress"
	"github.com/voramos/coinmarket-client/pkg/symbols"
)

// Defaults mirror the scraper's tuning for coinmarketcap.com.
const (
	// DefaultQueueSize is the main work-queue capacity.
	DefaultQueueSize = 50

	// DefaultConsumers is the worker count used by the every-* scrape
	// operations.
	DefaultConsumers = 50

	// DefaultBaseURL is the scraped site.
	DefaultBaseURL = "https://coinmarketcap.com"
)

// Fetcher performs a single GET and returns the raw body. A request
// exceeding the transport timeout must fail with an error satisfying
// client.IsTimeout.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Config holds the scraper configuration.
type Config struct {
	// QueueSize bounds the main work queue (default 50). The producer
	// blocks when the queue is full.
	QueueSize int

	// Consumers is the worker count used by EveryCurrency and
	// EveryMarkets (default 50).
	Consumers int

	// ConnectorLimit caps the default multiget worker estimate. When
	// zero it is taken from the fetcher, falling back to the transport
	// default.
	ConnectorLimit int

	// BaseURL overrides the scraped site (used in tests).
	BaseURL string

	// ProgressBar renders a terminal progress bar during multi-fetch
	// operations.
	ProgressBar bool

	// Observer overrides the progress observer (takes precedence over
	// ProgressBar).
	Observer progress.Observer

	// Symbols overrides the symbol table. When nil a table is
	// bootstrapped through the fetcher on first use.
	Symbols *symbols.Table
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		QueueSize: DefaultQueueSize,
		Consumers: DefaultConsumers,
		BaseURL:   DefaultBaseURL,
	}
}

// Scraper is the asynchronous coinmarketcap client.
type Scraper struct {
	fetcher        Fetcher
	symbols        *symbols.Table
	config         Config
	connectorLimit int
	observer       progress.Observer
	logger         zerolog.Logger
}

// New creates a scraper on top of the given transport.
func New(fetcher Fetcher, cfg Config) (*Scraper, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}

	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.Consumers <= 0 {
		cfg.Consumers = DefaultConsumers
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	connectorLimit := cfg.ConnectorLimit
	if connectorLimit <= 0 {
		if cl, ok := fetcher.(interface{ ConnectorLimit() int }); ok {
			connectorLimit = cl.ConnectorLimit()
		} else {
			connectorLimit = client.DefaultConnectorLimit
		}
	}

	table := cfg.Symbols
	if table == nil {
		table = symbols.New(fetcher, symbols.Config{})
	}

	var observer progress.Observer = progress.Nop{}
	if cfg.Observer != nil {
		observer = cfg.Observer
	} else if cfg.ProgressBar {
		observer = progress.NewBar()
	}

	return &Scraper{
		fetcher:        fetcher,
		symbols:        table,
		config:         cfg,
		connectorLimit: connectorLimit,
		observer:       observer,
		logger:         log.With().Str("component", "scraper").Logger(),
	}, nil
}

// CurrencyURL builds the currency page URL for a symbol or canonical
// name. Symbols are resolved through the correspondence table first;
// unresolvable symbols fail with symbols.ErrUnknownSymbol.
func (s *Scraper) CurrencyURL(ctx context.Context, name string) (string, error) {
	if symbols.IsSymbol(name) {
		slug, err := s.symbols.Resolve(ctx, name)
		if err != nil {
			return "", err
		}
		name = slug
	}
	return fmt.Sprintf("%s/currencies/%s/", s.config.BaseURL, name), nil
}

// HistoricalURL builds the historical-data URL for a currency over the
// given date range.
func (s *Scraper) HistoricalURL(ctx context.Context, name string, start, end time.Time) (string, error) {
	if symbols.IsSymbol(name) {
		slug, err := s.symbols.Resolve(ctx, name)
		if err != nil {
			return "", err
		}
		name = slug
	}
	return fmt.Sprintf("%s/currencies/%s/historical-data/?start=%s&end=%s",
		s.config.BaseURL, name, start.Format("20060102"), end.Format("20060102")), nil
}

// Currency returns the raw currency page for a symbol or name.
func (s *Scraper) Currency(ctx context.Context, name string) (string, error) {
	url, err := s.CurrencyURL(ctx, name)
	if err != nil {
		return "", err
	}
	return s.fetcher.Fetch(ctx, url)
}

// Markets returns the raw markets section page for a symbol or name.
// The site serves markets on the currency page itself.
func (s *Scraper) Markets(ctx context.Context, name string) (string, error) {
	return s.Currency(ctx, name)
}

// EveryCurrency fetches the currency page for every given symbol or
// name through the multiget engine. A nil input means all known
// symbols.
func (s *Scraper) EveryCurrency(ctx context.Context, currencies []string, opts ...CallOption) ([]string, error) {
	if currencies == nil {
		all, err := s.symbols.Symbols(ctx)
		if err != nil {
			return nil, err
		}
		currencies = all
	}

	opts = append([]CallOption{
		WithConsumers(s.config.Consumers),
		WithLabel("Retrieving every currency"),
	}, opts...)
	return s.Multiget(ctx, currencies, s.CurrencyURL, opts...)
}

// EveryMarkets fetches the markets page for every given symbol or
// name through the multiget engine. A nil input means all known
// symbols.
func (s *Scraper) EveryMarkets(ctx context.Context, currencies []string, opts ...CallOption) ([]string, error) {
	if currencies == nil {
		all, err := s.symbols.Symbols(ctx)
		if err != nil {
			return nil, err
		}
		currencies = all
	}

	opts = append([]CallOption{
		WithConsumers(s.config.Consumers),
		WithLabel("Retrieving all markets"),
	}, opts...)
	return s.Multiget(ctx, currencies, s.CurrencyURL, opts...)
}

// Ranks returns the raw gainers-losers page.
func (s *Scraper) Ranks(ctx context.Context) (string, error) {
	return s.fetcher.Fetch(ctx, s.config.BaseURL+"/gainers-losers/")
}

// Recently returns the raw recently-added page.
func (s *Scraper) Recently(ctx context.Context) (string, error) {
	return s.fetcher.Fetch(ctx, s.config.BaseURL+"/new/")
}

// Historical returns the raw historical-data page for a currency over
// the given date range.
func (s *Scraper) Historical(ctx context.Context, name string, start, end time.Time) (string, error) {
	url, err := s.HistoricalURL(ctx, name, start, end)
	if err != nil {
		return "", err
	}
	return s.fetcher.Fetch(ctx, url)
}

// Symbols returns all known ticker symbols, sorted.
func (s *Scraper) Symbols(ctx context.Context) ([]string, error) {
	return s.symbols.Symbols(ctx)
}

// Coins returns all known site slugs, sorted.
func (s *Scraper) Coins(ctx context.Context) ([]string, error) {
	return s.symbols.Coins(ctx)
}

// Correspondences returns the symbol→slug map.
func (s *Scraper) Correspondences(ctx context.Context) (map[string]string, error) {
	return s.symbols.Correspondences(ctx)
}

// Package symbols maintains the symbol→slug correspondence table used to
// turn ticker symbols into site URLs.
package symbols

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/voramos/coinmarket-client/pkg/cache"
)

// ErrUnknownSymbol is returned when a symbol has no known slug mapping.
var ErrUnknownSymbol = errors.New("no slug known for symbol")

// DefaultIndexURL is the quick-search index the table bootstraps from.
const DefaultIndexURL = "https://files.coinmarketcap.com/generated/search/quick_search.json"

// DefaultSnapshotTTL is how long a bootstrapped table stays valid in the
// snapshot cache.
const DefaultSnapshotTTL = 24 * time.Hour

// exceptionalSlugs overrides index slugs that don't match the site's
// currency pages.
var exceptionalSlugs = map[string]string{
	"42":  "42-coin",
	"808": "808coin",
	"611": "sixeleven",
	"EXP": "expanse",
	"ICN": "iconomi",
}

// symbolShape matches the ticker alphabet the site uses.
var symbolShape = regexp.MustCompile(`^[A-Z0-9\-\$\@\.\+\*]+$`)

// IsSymbol reports whether name looks like a ticker symbol rather than a
// canonical currency name. Slugs are lowercase, so any all-uppercase
// token is treated as a symbol.
func IsSymbol(name string) bool {
	if name == "" || name != strings.ToUpper(name) {
		return false
	}
	return symbolShape.MatchString(name)
}

// Source fetches the raw quick-search index.
type Source interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Config holds the table configuration.
type Config struct {
	// IndexURL overrides the quick-search index location.
	IndexURL string

	// Snapshot enables sharing the bootstrapped table through Redis.
	Snapshot *cache.Manager

	// SnapshotTTL controls snapshot validity (default 24h).
	SnapshotTTL time.Duration
}

// Table resolves ticker symbols to site slugs, bootstrapping the
// correspondence map lazily on first use.
type Table struct {
	source Source
	config Config
	logger zerolog.Logger

	mu sync.RWMutex
	m  map[string]string
}

// New creates a symbol table backed by the given source.
func New(source Source, cfg Config) *Table {
	if cfg.IndexURL == "" {
		cfg.IndexURL = DefaultIndexURL
	}
	if cfg.SnapshotTTL <= 0 {
		cfg.SnapshotTTL = DefaultSnapshotTTL
	}

	return &Table{
		source: source,
		config: cfg,
		logger: log.With().Str("component", "symbols").Logger(),
	}
}

// indexEntry is one currency record in the quick-search index.
type indexEntry struct {
	Symbol string `json:"symbol"`
	Slug   string `json:"slug"`
}

// Correspondences returns the symbol→slug map, bootstrapping it on first
// call. The returned map is shared; callers must not mutate it.
func (t *Table) Correspondences(ctx context.Context) (map[string]string, error) {
	t.mu.RLock()
	m := t.m
	t.mu.RUnlock()
	if m != nil {
		return m, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.m != nil {
		return t.m, nil
	}

	m, err := t.load(ctx)
	if err != nil {
		return nil, err
	}
	t.m = m
	return m, nil
}

// load bootstraps the table from the snapshot cache or the live index.
func (t *Table) load(ctx context.Context) (map[string]string, error) {
	key := t.snapshotKey()

	if t.config.Snapshot != nil {
		snap, err := t.config.Snapshot.Get(ctx, key)
		if err == nil {
			t.logger.Debug().
				Int("symbols", len(snap.Correspondences)).
				Time("fetched_at", snap.FetchedAt).
				Msg("Symbol table loaded from snapshot")
			return snap.Correspondences, nil
		}
		if err != cache.ErrCacheMiss {
			t.logger.Warn().Err(err).Msg("Snapshot get failed, bootstrapping live")
		}
	}

	raw, err := t.source.Fetch(ctx, t.config.IndexURL)
	if err != nil {
		return nil, fmt.Errorf("fetch symbol index: %w", err)
	}

	var entries []indexEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("parse symbol index: %w", err)
	}

	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[e.Symbol] = strings.ReplaceAll(e.Slug, " ", "")
	}
	for symbol, slug := range exceptionalSlugs {
		m[symbol] = slug
	}

	t.logger.Info().Int("symbols", len(m)).Msg("Symbol table refreshed")

	if t.config.Snapshot != nil {
		now := time.Now()
		snap := &cache.Snapshot{
			Correspondences: m,
			FetchedAt:       now,
			Expires:         now.Add(t.config.SnapshotTTL),
		}
		if err := t.config.Snapshot.Set(ctx, key, snap); err != nil {
			t.logger.Warn().Err(err).Msg("Failed to store symbol snapshot")
		}
	}

	return m, nil
}

func (t *Table) snapshotKey() cache.Key {
	host := ""
	if u, err := url.Parse(t.config.IndexURL); err == nil {
		host = u.Host
	}
	return cache.Key{Scope: "symbols", Host: host}
}

// Resolve maps a ticker symbol to its site slug.
// Fails with ErrUnknownSymbol when no mapping exists.
func (t *Table) Resolve(ctx context.Context, symbol string) (string, error) {
	m, err := t.Correspondences(ctx)
	if err != nil {
		return "", err
	}

	slug, ok := m[symbol]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return slug, nil
}

// Symbols returns all known ticker symbols, sorted.
func (t *Table) Symbols(ctx context.Context) ([]string, error) {
	m, err := t.Correspondences(ctx)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(m))
	for symbol := range m {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols, nil
}

// Coins returns all known site slugs, sorted.
func (t *Table) Coins(ctx context.Context) ([]string, error) {
	m, err := t.Correspondences(ctx)
	if err != nil {
		return nil, err
	}

	coins := make([]string, 0, len(m))
	for _, slug := range m {
		coins = append(coins, slug)
	}
	sort.Strings(coins)
	return coins, nil
}

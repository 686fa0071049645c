// Package suggest delays outbound search-suggestion lookups behind a
// debounce window and discards responses that arrive for a superseded query.
package suggest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/nairamart/storefront/internal/catalog"
	"github.com/nairamart/storefront/pkg/config"
	pkgerrors "github.com/nairamart/storefront/pkg/errors"
	"github.com/nairamart/storefront/pkg/logger"
)

// Handler receives the suggestions for the query they were fetched for.
// A nil record slice clears the suggestion list.
type Handler func(query string, records []catalog.ProductRecord)

// Debouncer coalesces rapid query changes into a single search per settled
// query. Results are stale-checked against the current query on arrival, so
// a slow response for an old query never overwrites newer suggestions.
type Debouncer struct {
	mu       sync.Mutex
	ctx      context.Context
	searcher catalog.Searcher
	handler  Handler
	cfg      config.SearchConfig
	logg     *logger.Logger
	timer    *time.Timer
	current  string
	closed   bool
}

// NewDebouncer builds a debouncer delivering suggestions to the handler. The
// context scopes every outbound lookup and must outlive the search session;
// keystroke-scoped contexts would cancel searches that are still wanted.
func NewDebouncer(ctx context.Context, searcher catalog.Searcher, handler Handler, cfg config.SearchConfig, logg *logger.Logger) (*Debouncer, error) {
	if searcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "searcher is required")
	}
	if handler == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "handler is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 300 * time.Millisecond
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &Debouncer{
		ctx:      ctx,
		searcher: searcher,
		handler:  handler,
		cfg:      cfg,
		logg:     logg,
	}, nil
}

// QueryChanged records the new input value. Queries shorter than the minimum
// length clear suggestions immediately; anything longer schedules a search
// after the debounce window, superseding any pending one.
func (d *Debouncer) QueryChanged(query string) {
	trimmed := strings.TrimSpace(query)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.current = trimmed
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if len(trimmed) < d.cfg.MinQueryLength {
		d.mu.Unlock()
		d.handler(trimmed, nil)
		return
	}
	d.timer = time.AfterFunc(d.cfg.Debounce, func() {
		d.search(trimmed)
	})
	d.mu.Unlock()
}

func (d *Debouncer) search(query string) {
	if d.stale(query) {
		return
	}

	records, err := d.searcher.Search(d.ctx, query, d.cfg.SuggestionLimit)
	if err != nil {
		d.logg.Warn(d.logg.WithField(d.ctx, "query", query), "suggestion lookup failed")
		return
	}

	// The query may have moved on while the lookup was in flight.
	if d.stale(query) {
		return
	}
	d.handler(query, records)
}

func (d *Debouncer) stale(query string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed || d.current != query
}

// Close stops any pending search and drops further query changes.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

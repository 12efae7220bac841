package backend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"capacity-mcp/internal/capacity"

	"github.com/rs/zerolog/log"
)

// LoadSummary describes the data an engine holds after a load.
type LoadSummary struct {
	Dates     []string  `json:"dates"`
	Products  []string  `json:"products"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Loader feeds a capacity engine from a source. The MCP server, the web
// handlers and the CLI share one Loader per engine.
type Loader struct {
	source Source
	engine *capacity.Engine

	mu        sync.Mutex
	fetchedAt time.Time
}

// NewLoader binds a source to an engine.
func NewLoader(source Source, engine *capacity.Engine) *Loader {
	return &Loader{source: source, engine: engine}
}

// Engine returns the engine the loader feeds.
func (l *Loader) Engine() *capacity.Engine {
	return l.engine
}

// EnsureLoaded loads the datasets unless a load has already succeeded.
func (l *Loader) EnsureLoaded(ctx context.Context) error {
	if l.engine.Loaded() {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.engine.Loaded() {
		return nil
	}
	return l.load(ctx)
}

// Reload drops any cached documents and loads both datasets again. The
// selection is kept; on failure the previous data stays in place.
func (l *Loader) Reload(ctx context.Context) (LoadSummary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if inv, ok := l.source.(interface{ Invalidate() }); ok {
		inv.Invalidate()
	}
	if err := l.load(ctx); err != nil {
		return LoadSummary{}, err
	}
	return l.summary(), nil
}

// Summary describes the currently loaded data.
func (l *Loader) Summary() LoadSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.summary()
}

func (l *Loader) load(ctx context.Context) error {
	ds, err := l.source.FetchDatasets(ctx)
	if err != nil {
		if errors.Is(err, ErrBackend) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("failed to fetch capacity datasets: %w", err)
		}
		return fmt.Errorf("%w: failed to fetch capacity datasets: %w", ErrBackend, err)
	}

	axis, err := l.engine.LoadDatasets(ds.ProductOnly, ds.ProductSize)
	if err != nil {
		return err
	}
	l.fetchedAt = ds.FetchedAt

	log.Info().
		Int("dates", axis.Len()).
		Int("productRows", len(ds.ProductOnly)).
		Int("sizeRows", len(ds.ProductSize)).
		Msg("Capacity data loaded")
	return nil
}

func (l *Loader) summary() LoadSummary {
	return LoadSummary{
		Dates:     orEmpty(l.engine.DateAxis().Labels()),
		Products:  orEmpty(l.engine.ProductOptions()),
		FetchedAt: l.fetchedAt,
	}
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

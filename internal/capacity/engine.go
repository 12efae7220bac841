package capacity

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// SeriesView is one effective series with its adjusted values aligned to the date axis.
type SeriesView struct {
	Key      SeriesKey  `json:"key"`
	Kind     SeriesKind `json:"kind"`
	Label    string     `json:"label"`
	Adjusted []float64  `json:"adjusted"`
}

// Engine holds one session: the loaded datasets, the selection and the
// derived adjusted capacity. Handlers of concurrent transports share an
// Engine, so every method takes the lock; mutations still apply one at a time.
type Engine struct {
	mu        sync.RWMutex
	axis      DateAxis
	set       *SeriesSet
	loaded    bool
	selection Selection
	adjusted  AdjustedCapacityMap
}

// NewEngine creates an engine with no data and an empty selection.
func NewEngine() *Engine {
	return &Engine{adjusted: AdjustedCapacityMap{}}
}

// LoadDatasets replaces the loaded data. On error nothing changes. Selected
// products and sizes the new data no longer carries are dropped.
func (e *Engine) LoadDatasets(productOnly, productSize []Record) (DateAxis, error) {
	axis, err := BuildDateAxis(productOnly, productSize)
	if err != nil {
		return DateAxis{}, fmt.Errorf("load capacity datasets: %w", err)
	}
	set := Normalize(productOnly, productSize, axis)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.axis = axis
	e.set = set
	e.loaded = true
	before := e.selection.Combinations()
	e.selection.Retain(set.hasProduct, set.HasSize)
	if dropped := before - e.selection.Combinations(); dropped > 0 {
		log.Info().Int("dropped", dropped).Msg("Selection pruned to the loaded datasets")
	}
	e.recompute()

	log.Debug().
		Int("dates", axis.Len()).
		Int("series", set.Len()).
		Int("products", len(set.products)).
		Msg("Capacity datasets loaded")
	return axis, nil
}

// Loaded reports whether a load has succeeded.
func (e *Engine) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loaded
}

// DateAxis returns the loaded axis.
func (e *Engine) DateAxis() DateAxis {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.axis
}

// ProductOptions lists the selectable product codes.
func (e *Engine) ProductOptions() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.set.ProductOptions()
}

// SizeOptions lists the selectable sizes of a product.
func (e *Engine) SizeOptions(code string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.set.SizeOptions(code)
}

// Selection returns the current selection.
func (e *Engine) Selection() SelectionSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.selection.Snapshot()
}

// Warning returns the condition raised by the last rejected selection change.
func (e *Engine) Warning() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.selection.Warning()
}

// SelectProducts replaces the selected products. The returned snapshot is the
// selection in force afterwards, which is the prior one when err is non-nil.
func (e *Engine) SelectProducts(codes []string) (SelectionSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loaded {
		return e.selection.Snapshot(), ErrNotLoaded
	}
	known := make(map[string]bool)
	for _, p := range e.set.products {
		known[p] = true
	}
	for _, code := range codes {
		if code = strings.TrimSpace(code); code != "" && !known[code] {
			return e.selection.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownProduct, code)
		}
	}

	if err := e.selection.SelectProducts(codes); err != nil {
		log.Warn().Err(err).Strs("products", codes).Msg("Product selection rejected")
		return e.selection.Snapshot(), err
	}
	e.recompute()
	return e.selection.Snapshot(), nil
}

// SelectSizes replaces the size selection of one product.
func (e *Engine) SelectSizes(code string, sizes []string) (SelectionSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loaded {
		return e.selection.Snapshot(), ErrNotLoaded
	}
	for _, size := range sizes {
		if size = strings.TrimSpace(size); size != "" && !e.set.HasSize(code, size) {
			return e.selection.Snapshot(), fmt.Errorf("%w: %q for product %q", ErrUnknownSize, size, code)
		}
	}

	if err := e.selection.SelectSizes(code, sizes); err != nil {
		if errors.Is(err, ErrSelectionLimitExceeded) {
			log.Warn().Err(err).Str("product", code).Strs("sizes", sizes).Msg("Size selection rejected")
		}
		return e.selection.Snapshot(), err
	}
	e.recompute()
	return e.selection.Snapshot(), nil
}

// BundleForDate composes the ranked view of one axis date.
func (e *Engine) BundleForDate(date string) (RenderBundle, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.axis.Contains(date) {
		return RenderBundle{}, &UnknownDateError{Date: date}
	}
	return BuildBundle(date, e.selection.EffectiveSeriesKeys(), e.set, e.adjusted), nil
}

// Bundles composes one bundle per axis date, in axis order.
func (e *Engine) Bundles() []RenderBundle {
	e.mu.RLock()
	defer e.mu.RUnlock()

	keys := e.selection.EffectiveSeriesKeys()
	out := make([]RenderBundle, 0, e.axis.Len())
	for _, date := range e.axis.labels {
		out = append(out, BuildBundle(date, keys, e.set, e.adjusted))
	}
	return out
}

// Adjusted returns a copy of the current adjusted capacity map.
func (e *Engine) Adjusted() AdjustedCapacityMap {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(AdjustedCapacityMap, len(e.adjusted))
	for key, byDate := range e.adjusted {
		out[key] = maps.Clone(byDate)
	}
	return out
}

// Series lists the effective series that have loaded data, in selection order.
func (e *Engine) Series() []SeriesView {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []SeriesView
	for _, key := range e.selection.EffectiveSeriesKeys() {
		s, ok := e.set.Lookup(key)
		if !ok {
			continue
		}
		values := make([]float64, 0, e.axis.Len())
		for _, date := range e.axis.labels {
			values = append(values, e.adjusted[key][date])
		}
		out = append(out, SeriesView{Key: key, Kind: s.Kind, Label: s.Label(), Adjusted: values})
	}
	return out
}

// recompute rebuilds the adjusted map from scratch. Callers hold the write lock.
func (e *Engine) recompute() {
	e.adjusted = BuildAdjustedMap(e.set, e.selection.EffectiveSeriesKeys(), e.axis)
}

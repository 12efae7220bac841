package capacity

import (
	"cmp"
	"slices"
)

// BundleEntry is one ranked card of a render bundle.
type BundleEntry struct {
	Key      SeriesKey `json:"key"`
	Label    string    `json:"label"`
	Capacity float64   `json:"capacity"`
}

// RenderBundle is the display-ready view of one date.
type RenderBundle struct {
	Date        string        `json:"date"`
	ProductOnly []BundleEntry `json:"product_only"`
	ProductSize []BundleEntry `json:"product_size"`
}

// BuildBundle gathers the adjusted capacity of every effective key on date,
// splits the entries by source family and sorts each family ascending.
// Equal capacities keep the order of keys.
func BuildBundle(date string, keys []SeriesKey, set *SeriesSet, adjusted AdjustedCapacityMap) RenderBundle {
	b := RenderBundle{
		Date:        date,
		ProductOnly: []BundleEntry{},
		ProductSize: []BundleEntry{},
	}
	for _, key := range keys {
		s, ok := set.Lookup(key)
		if !ok {
			continue
		}
		entry := BundleEntry{
			Key:      key,
			Label:    s.Label(),
			Capacity: adjusted[key][date],
		}
		if s.Kind == KindProductSize {
			b.ProductSize = append(b.ProductSize, entry)
		} else {
			b.ProductOnly = append(b.ProductOnly, entry)
		}
	}

	byCapacity := func(a, b BundleEntry) int {
		return cmp.Compare(a.Capacity, b.Capacity)
	}
	slices.SortStableFunc(b.ProductOnly, byCapacity)
	slices.SortStableFunc(b.ProductSize, byCapacity)
	return b
}

package capacity

// AdjustedCapacityMap maps a series to its running-total capacity per date.
type AdjustedCapacityMap map[SeriesKey]map[string]float64

// ComputeAdjusted walks the axis once, accumulating raw deltas into a running
// total. Negative inputs are carried through unclamped.
func ComputeAdjusted(s *Series, axis DateAxis) map[string]float64 {
	adjusted := make(map[string]float64, axis.Len())
	prev := 0.0
	for _, date := range axis.labels {
		cur := prev + s.RawValue(date)
		adjusted[date] = cur
		prev = cur
	}
	return adjusted
}

// BuildAdjustedMap computes a fresh map for every key that has a loaded series.
func BuildAdjustedMap(set *SeriesSet, keys []SeriesKey, axis DateAxis) AdjustedCapacityMap {
	out := make(AdjustedCapacityMap, len(keys))
	for _, key := range keys {
		s, ok := set.Lookup(key)
		if !ok {
			continue
		}
		out[key] = ComputeAdjusted(s, axis)
	}
	return out
}

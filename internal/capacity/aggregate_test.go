package capacity

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func seriesFor(t *testing.T, axis DateAxis, key SeriesKey, rec Record) *Series {
	t.Helper()
	var set *SeriesSet
	if _, ok := rec[SizeKey]; ok {
		set = Normalize(nil, []Record{rec}, axis)
	} else {
		set = Normalize([]Record{rec}, nil, axis)
	}
	s, ok := set.Lookup(key)
	if !ok {
		t.Fatalf("series %s not found", key)
	}
	return s
}

// dayLabel returns consecutive June 2025 labels starting at 01-06-2025.
func dayLabel(i int) string {
	return fmt.Sprintf("%02d-06-2025", i+1)
}

func TestComputeAdjusted_RunningTotal(t *testing.T) {
	axis := NewDateAxis([]string{"01-06-2025", "02-06-2025", "03-06-2025"})
	bowl := seriesFor(t, axis, "BOWL", Record{
		"Product Code": "BOWL",
		"01-06-2025":   8000.0,
		"02-06-2025":   0.0,
		"03-06-2025":   8000.0,
	})

	got := ComputeAdjusted(bowl, axis)
	want := map[string]float64{
		"01-06-2025": 8000,
		"02-06-2025": 8000,
		"03-06-2025": 16000,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("adjusted (-want +got):\n%s", diff)
	}
}

func TestComputeAdjusted_LastDateEqualsTotal(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{"all zero", []float64{0, 0, 0, 0}},
		{"mixed", []float64{120, 0, 35.5, 1000, 2}},
		{"negatives carried through", []float64{100, -250, 50}},
		{"single", []float64{42}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels := make([]string, len(tt.values))
			rec := Record{"Product Code": "CUP"}
			total := 0.0
			for i, v := range tt.values {
				labels[i] = dayLabel(i)
				rec[labels[i]] = v
				total += v
			}
			axis := NewDateAxis(labels)
			adjusted := ComputeAdjusted(seriesFor(t, axis, "CUP", rec), axis)

			last := labels[len(labels)-1]
			if adjusted[last] != total {
				t.Errorf("Expected last adjusted value %v, got %v", total, adjusted[last])
			}
			for i := 1; i < len(labels); i++ {
				if adjusted[labels[i]] != adjusted[labels[i-1]]+tt.values[i] {
					t.Errorf("date %s: expected prefix step of %v", labels[i], tt.values[i])
				}
			}
		})
	}
}

func TestComputeAdjusted_Deterministic(t *testing.T) {
	axis := NewDateAxis([]string{"01-06-2025", "02-06-2025"})
	s := seriesFor(t, axis, "MUG", Record{"Product Code": "MUG", "01-06-2025": 3.0, "02-06-2025": 4.0})
	if diff := cmp.Diff(ComputeAdjusted(s, axis), ComputeAdjusted(s, axis)); diff != "" {
		t.Errorf("recomputation differs:\n%s", diff)
	}
}

func TestBuildAdjustedMap_SkipsUnloadedKeys(t *testing.T) {
	axis := NewDateAxis([]string{"01-06-2025"})
	set := Normalize([]Record{{"Product Code": "BOWL", "01-06-2025": 1.0}}, nil, axis)

	m := BuildAdjustedMap(set, []SeriesKey{"BOWL", "PLATE||10 INCH"}, axis)
	if len(m) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(m))
	}
	if m["BOWL"]["01-06-2025"] != 1 {
		t.Errorf("Expected BOWL=1, got %v", m["BOWL"]["01-06-2025"])
	}
}

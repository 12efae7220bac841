package capacity

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSelection_FiveCombinationScenario(t *testing.T) {
	var s Selection

	if err := s.SelectProducts([]string{"BOWL", "PLATE"}); err != nil {
		t.Fatalf("select BOWL, PLATE: %v", err)
	}
	if s.Combinations() != 2 {
		t.Fatalf("Expected 2 combinations, got %d", s.Combinations())
	}

	if err := s.SelectSizes("PLATE", []string{"10 INCH", "12 INCH"}); err != nil {
		t.Fatalf("select PLATE sizes: %v", err)
	}
	if s.Combinations() != 4 {
		t.Fatalf("Expected 4 combinations, got %d", s.Combinations())
	}

	if err := s.SelectProducts([]string{"BOWL", "PLATE", "SPOON"}); err != nil {
		t.Fatalf("add SPOON: %v", err)
	}
	if s.Combinations() != 5 {
		t.Fatalf("Expected 5 combinations, got %d", s.Combinations())
	}

	before := s.Snapshot()
	err := s.SelectProducts([]string{"BOWL", "PLATE", "SPOON", "CUP"})
	if !errors.Is(err, ErrSelectionLimitExceeded) {
		t.Fatalf("Expected ErrSelectionLimitExceeded, got %v", err)
	}
	var limitErr *SelectionLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("Expected *SelectionLimitError, got %T", err)
	}
	if limitErr.Attempted != 6 || limitErr.Limit != MaxCombinations {
		t.Errorf("Expected attempted=6 limit=5, got attempted=%d limit=%d", limitErr.Attempted, limitErr.Limit)
	}
	if diff := cmp.Diff(before, s.Snapshot()); diff != "" {
		t.Errorf("selection changed after rejection (-before +after):\n%s", diff)
	}
	if !errors.Is(s.Warning(), ErrSelectionLimitExceeded) {
		t.Errorf("Expected warning to be raised, got %v", s.Warning())
	}

	// An accepted change clears the warning.
	if err := s.SelectProducts([]string{"BOWL", "PLATE"}); err != nil {
		t.Fatalf("shrink selection: %v", err)
	}
	if s.Warning() != nil {
		t.Errorf("Expected warning to be cleared, got %v", s.Warning())
	}
}

func TestSelection_SizeLimitCountsOtherProducts(t *testing.T) {
	var s Selection
	_ = s.SelectProducts([]string{"BOWL", "PLATE"})
	_ = s.SelectSizes("BOWL", []string{"6 INCH"})

	// 2 products + 1 BOWL size + 3 PLATE sizes = 6
	err := s.SelectSizes("PLATE", []string{"8 INCH", "10 INCH", "12 INCH"})
	var limitErr *SelectionLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("Expected *SelectionLimitError, got %v", err)
	}
	if limitErr.Attempted != 6 {
		t.Errorf("Expected attempted=6, got %d", limitErr.Attempted)
	}
	if len(s.Sizes("PLATE")) != 0 {
		t.Errorf("Expected PLATE sizes untouched, got %v", s.Sizes("PLATE"))
	}

	// Replacing a product's own sizes does not double count them.
	if err := s.SelectSizes("BOWL", []string{"6 INCH", "8 INCH", "10 INCH"}); err != nil {
		t.Fatalf("replace BOWL sizes: %v", err)
	}
	if s.Combinations() != 5 {
		t.Errorf("Expected 5 combinations, got %d", s.Combinations())
	}
}

func TestSelection_RemovingProductPrunesSizes(t *testing.T) {
	var s Selection
	_ = s.SelectProducts([]string{"BOWL", "PLATE"})
	_ = s.SelectSizes("PLATE", []string{"10 INCH"})
	_ = s.SelectSizes("BOWL", []string{"6 INCH"})

	before := s.Snapshot()
	if err := s.SelectProducts([]string{"BOWL"}); err != nil {
		t.Fatalf("deselect PLATE: %v", err)
	}
	after := s.Snapshot()

	want := SelectionSnapshot{
		Products:     []string{"BOWL"},
		Sizes:        map[string][]string{"BOWL": {"6 INCH"}},
		Combinations: 2,
		Limit:        MaxCombinations,
	}
	if diff := cmp.Diff(want, after); diff != "" {
		t.Errorf("after deselect (-want +got):\n%s", diff)
	}
	if _, ok := before.Sizes["PLATE"]; !ok {
		t.Fatal("Expected PLATE sizes before deselect")
	}
	if _, ok := after.Sizes["PLATE"]; ok {
		t.Error("Expected PLATE sizes to be pruned")
	}
}

func TestSelection_RemovalFreesBudget(t *testing.T) {
	var s Selection
	_ = s.SelectProducts([]string{"BOWL", "PLATE"})
	_ = s.SelectSizes("PLATE", []string{"8 INCH", "10 INCH", "12 INCH"})

	// PLATE and its three sizes leave, four new products arrive: 4 + 0 = 4.
	if err := s.SelectProducts([]string{"BOWL", "SPOON", "CUP", "MUG"}); err != nil {
		t.Fatalf("Expected swap to be accepted, got %v", err)
	}
	if s.Combinations() != 4 {
		t.Errorf("Expected 4 combinations, got %d", s.Combinations())
	}
}

func TestSelection_SizesRequireSelectedProduct(t *testing.T) {
	var s Selection
	err := s.SelectSizes("PLATE", []string{"10 INCH"})
	if !errors.Is(err, ErrProductNotSelected) {
		t.Fatalf("Expected ErrProductNotSelected, got %v", err)
	}
	if s.Combinations() != 0 {
		t.Errorf("Expected empty selection, got %d combinations", s.Combinations())
	}
}

func TestSelection_EmptySizesClearEntry(t *testing.T) {
	var s Selection
	_ = s.SelectProducts([]string{"PLATE"})
	_ = s.SelectSizes("PLATE", []string{"10 INCH"})
	if err := s.SelectSizes("PLATE", nil); err != nil {
		t.Fatalf("clear sizes: %v", err)
	}
	if _, ok := s.Snapshot().Sizes["PLATE"]; ok {
		t.Error("Expected PLATE entry to be removed")
	}
}

func TestSelection_DedupesInput(t *testing.T) {
	var s Selection
	_ = s.SelectProducts([]string{"BOWL", "BOWL", " PLATE ", ""})
	if diff := cmp.Diff([]string{"BOWL", "PLATE"}, s.Products()); diff != "" {
		t.Errorf("products (-want +got):\n%s", diff)
	}
	_ = s.SelectSizes("PLATE", []string{"10 INCH", "10 INCH"})
	if diff := cmp.Diff([]string{"10 INCH"}, s.Sizes("PLATE")); diff != "" {
		t.Errorf("sizes (-want +got):\n%s", diff)
	}
}

func TestSelection_EffectiveSeriesKeysAreAdditive(t *testing.T) {
	var s Selection
	_ = s.SelectProducts([]string{"PLATE", "BOWL"})
	_ = s.SelectSizes("PLATE", []string{"12 INCH", "10 INCH"})

	want := []SeriesKey{
		"PLATE||12 INCH",
		"PLATE||10 INCH",
		"PLATE",
		"BOWL",
	}
	if diff := cmp.Diff(want, s.EffectiveSeriesKeys()); diff != "" {
		t.Errorf("effective keys (-want +got):\n%s", diff)
	}
}

// Random mutation sequences never push the selection past the cap, and a
// rejected mutation never changes it.
func TestSelection_NeverExceedsLimit(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	products := []string{"BOWL", "PLATE", "SPOON", "CUP", "MUG", "TRAY", "JAR"}
	sizes := []string{"6 INCH", "8 INCH", "10 INCH", "12 INCH"}

	var s Selection
	for i := 0; i < 2000; i++ {
		before := s.Snapshot()
		var err error
		if rng.Intn(2) == 0 {
			n := rng.Intn(len(products) + 1)
			err = s.SelectProducts(pick(rng, products, n))
		} else {
			selected := s.Products()
			if len(selected) == 0 {
				continue
			}
			code := selected[rng.Intn(len(selected))]
			err = s.SelectSizes(code, pick(rng, sizes, rng.Intn(len(sizes)+1)))
		}

		if s.Combinations() > MaxCombinations {
			t.Fatalf("step %d: %d combinations exceed the limit", i, s.Combinations())
		}
		if len(s.EffectiveSeriesKeys()) != s.Combinations() {
			t.Fatalf("step %d: %d effective keys for %d combinations", i, len(s.EffectiveSeriesKeys()), s.Combinations())
		}
		if err != nil {
			if !errors.Is(err, ErrSelectionLimitExceeded) {
				t.Fatalf("step %d: unexpected error %v", i, err)
			}
			if diff := cmp.Diff(before, s.Snapshot()); diff != "" {
				t.Fatalf("step %d: rejected change mutated selection:\n%s", i, diff)
			}
		}
		for code := range s.Snapshot().Sizes {
			if !s.IsSelected(code) {
				t.Fatalf("step %d: orphaned sizes for %s", i, code)
			}
		}
	}
}

func TestSelection_Retain(t *testing.T) {
	var s Selection
	if err := s.SelectProducts([]string{"BOWL", "PLATE", "DISH"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectSizes("PLATE", []string{"10 INCH"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectSizes("DISH", []string{"6 INCH"}); err != nil {
		t.Fatal(err)
	}

	s.Retain(
		func(code string) bool { return code != "BOWL" },
		func(code, size string) bool { return code != "PLATE" },
	)

	if diff := cmp.Diff([]string{"PLATE", "DISH"}, s.Products()); diff != "" {
		t.Errorf("products (-want +got):\n%s", diff)
	}
	if len(s.Sizes("PLATE")) != 0 {
		t.Errorf("Expected PLATE sizes dropped, got %v", s.Sizes("PLATE"))
	}
	if diff := cmp.Diff([]string{"6 INCH"}, s.Sizes("DISH")); diff != "" {
		t.Errorf("DISH sizes (-want +got):\n%s", diff)
	}
	if s.Combinations() != 3 {
		t.Errorf("Expected 3 combinations, got %d", s.Combinations())
	}
}

func pick(rng *rand.Rand, from []string, n int) []string {
	perm := rng.Perm(len(from))
	out := make([]string, 0, n)
	for _, i := range perm[:n] {
		out = append(out, from[i])
	}
	return out
}

func ExampleSelection_SelectProducts() {
	var s Selection
	_ = s.SelectProducts([]string{"BOWL", "PLATE", "SPOON", "CUP", "MUG"})
	err := s.SelectProducts([]string{"BOWL", "PLATE", "SPOON", "CUP", "MUG", "TRAY"})
	fmt.Println(err)
	fmt.Println(s.Combinations())
	// Output:
	// sorry, you can't add more than 5 combinations (attempted 6)
	// 5
}

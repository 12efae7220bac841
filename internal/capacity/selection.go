package capacity

import (
	"slices"
	"strings"
)

// MaxCombinations caps the number of product-only plus product+size series shown at once.
const MaxCombinations = 5

// Selection is the user-controlled choice of products and per-product sizes.
// The zero value is an empty selection.
type Selection struct {
	products []string
	sizes    map[string][]string
	warning  error
}

// SelectionSnapshot is the serializable form of a Selection.
type SelectionSnapshot struct {
	Products     []string            `json:"products"`
	Sizes        map[string][]string `json:"sizes"`
	Combinations int                 `json:"combinations"`
	Limit        int                 `json:"limit"`
}

// Products returns the selected product codes in selection order.
func (s *Selection) Products() []string {
	return slices.Clone(s.products)
}

// Sizes returns the sizes selected for code in selection order.
func (s *Selection) Sizes(code string) []string {
	return slices.Clone(s.sizes[code])
}

// IsSelected reports whether code is among the selected products.
func (s *Selection) IsSelected(code string) bool {
	return slices.Contains(s.products, code)
}

// Warning returns the condition raised by the last rejected change, or nil
// once a later change has been accepted.
func (s *Selection) Warning() error {
	return s.warning
}

// Combinations counts product-only plus product+size selections.
func (s *Selection) Combinations() int {
	return len(s.products) + s.sizeCombinations("")
}

// sizeCombinations counts the size selections of every product except skip.
func (s *Selection) sizeCombinations(skip string) int {
	n := 0
	for code, sizes := range s.sizes {
		if code == skip {
			continue
		}
		n += len(sizes)
	}
	return n
}

// SelectProducts replaces the selected products. Size selections of products
// that stay selected are kept, the rest are pruned. A change that would exceed
// MaxCombinations is rejected whole and returned as a *SelectionLimitError.
func (s *Selection) SelectProducts(codes []string) error {
	next := dedupe(codes)

	attempted := len(next)
	for _, code := range next {
		attempted += len(s.sizes[code])
	}
	if attempted > MaxCombinations {
		s.warning = &SelectionLimitError{Attempted: attempted, Limit: MaxCombinations}
		return s.warning
	}

	s.products = next
	for code := range s.sizes {
		if !slices.Contains(next, code) {
			delete(s.sizes, code)
		}
	}
	s.warning = nil
	return nil
}

// SelectSizes replaces the size selection of one selected product. An empty
// list clears it. The limit rule is the same as for SelectProducts.
func (s *Selection) SelectSizes(code string, sizes []string) error {
	if !s.IsSelected(code) {
		return ErrProductNotSelected
	}
	next := dedupe(sizes)

	attempted := s.sizeCombinations(code) + len(next) + len(s.products)
	if attempted > MaxCombinations {
		s.warning = &SelectionLimitError{Attempted: attempted, Limit: MaxCombinations}
		return s.warning
	}

	if len(next) == 0 {
		delete(s.sizes, code)
	} else {
		if s.sizes == nil {
			s.sizes = make(map[string][]string)
		}
		s.sizes[code] = next
	}
	s.warning = nil
	return nil
}

// Retain drops the products and sizes the predicates reject. Removing
// entries can only lower the combination count, so it never fails.
func (s *Selection) Retain(product func(code string) bool, size func(code, size string) bool) {
	s.products = slices.DeleteFunc(s.products, func(code string) bool { return !product(code) })
	for code, sizes := range s.sizes {
		if !s.IsSelected(code) {
			delete(s.sizes, code)
			continue
		}
		kept := slices.DeleteFunc(sizes, func(v string) bool { return !size(code, v) })
		if len(kept) == 0 {
			delete(s.sizes, code)
		} else {
			s.sizes[code] = kept
		}
	}
}

// EffectiveSeriesKeys returns the product+size keys (product order, then size
// order) followed by one product-only key per selected product. Both derive
// from the selection independently: choosing sizes never hides the product series.
func (s *Selection) EffectiveSeriesKeys() []SeriesKey {
	keys := make([]SeriesKey, 0, s.Combinations())
	for _, code := range s.products {
		for _, size := range s.sizes[code] {
			keys = append(keys, ProductSizeKey(code, size))
		}
	}
	for _, code := range s.products {
		keys = append(keys, ProductKey(code))
	}
	return keys
}

// Snapshot copies the selection into its serializable form.
func (s *Selection) Snapshot() SelectionSnapshot {
	sizes := make(map[string][]string, len(s.sizes))
	for code, list := range s.sizes {
		sizes[code] = slices.Clone(list)
	}
	products := slices.Clone(s.products)
	if products == nil {
		products = []string{}
	}
	return SelectionSnapshot{
		Products:     products,
		Sizes:        sizes,
		Combinations: s.Combinations(),
		Limit:        MaxCombinations,
	}
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

package capacity

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Record is one decoded dataset row: identity columns plus date-label keys
// whose values are capacity deltas (numbers, numeric strings or missing).
type Record map[string]any

// SeriesKind separates the two source families.
type SeriesKind string

const (
	KindProduct     SeriesKind = "product"
	KindProductSize SeriesKind = "product_size"
)

const keySeparator = "||"

// SeriesKey uniquely identifies a series: "CODE" or "CODE||SIZE".
type SeriesKey string

// ProductKey returns the key of a product-only series.
func ProductKey(code string) SeriesKey {
	return SeriesKey(code)
}

// ProductSizeKey returns the key of a product+size series.
func ProductSizeKey(code, size string) SeriesKey {
	return SeriesKey(code + keySeparator + size)
}

// Series is the normalized raw data of one identity.
type Series struct {
	Key         SeriesKey
	Kind        SeriesKind
	ProductCode string
	Size        string
	raw         map[string]float64
}

// Label is the display label: "CODE" or "CODE - SIZE".
func (s *Series) Label() string {
	if s.Kind == KindProductSize {
		return s.ProductCode + " - " + s.Size
	}
	return s.ProductCode
}

// RawValue returns the capacity delta recorded for date, 0 when absent.
func (s *Series) RawValue(date string) float64 {
	return s.raw[date]
}

// SeriesSet holds every normalized series of one dataset load.
type SeriesSet struct {
	series   map[SeriesKey]*Series
	products []string
	sizes    map[string][]string
}

// Lookup finds a series by key.
func (ss *SeriesSet) Lookup(key SeriesKey) (*Series, bool) {
	if ss == nil {
		return nil, false
	}
	s, ok := ss.series[key]
	return s, ok
}

// Len returns the number of distinct series.
func (ss *SeriesSet) Len() int {
	if ss == nil {
		return 0
	}
	return len(ss.series)
}

// ProductOptions lists the product codes of both datasets in first-appearance order.
func (ss *SeriesSet) ProductOptions() []string {
	if ss == nil {
		return nil
	}
	return append([]string(nil), ss.products...)
}

// SizeOptions lists the sizes the product+size dataset carries for code.
func (ss *SeriesSet) SizeOptions(code string) []string {
	if ss == nil {
		return nil
	}
	return append([]string(nil), ss.sizes[code]...)
}

func (ss *SeriesSet) hasProduct(code string) bool {
	return ss != nil && slices.Contains(ss.products, code)
}

// HasSize reports whether the product+size dataset carries (code, size).
func (ss *SeriesSet) HasSize(code, size string) bool {
	_, ok := ss.Lookup(ProductSizeKey(code, size))
	return ok
}

// Normalize converts both raw datasets into series over the given axis.
// Rows without a product code are skipped; rows repeating an identity are summed.
// Codes containing the key separator are skipped, since their product-only key
// would collide with a product+size key.
func Normalize(productOnly, productSize []Record, axis DateAxis) *SeriesSet {
	ss := &SeriesSet{
		series: make(map[SeriesKey]*Series),
		sizes:  make(map[string][]string),
	}
	seenProduct := make(map[string]bool)

	add := func(rec Record, kind SeriesKind) {
		code := strings.TrimSpace(identity(rec[ProductCodeKey]))
		if code == "" {
			return
		}
		if strings.Contains(code, keySeparator) {
			log.Warn().Str("product", code).Msg("Skipping product code containing the key separator")
			return
		}
		if !seenProduct[code] {
			seenProduct[code] = true
			ss.products = append(ss.products, code)
		}

		key := ProductKey(code)
		size := ""
		if kind == KindProductSize {
			size = strings.TrimSpace(identity(rec[SizeKey]))
			if size == "" {
				return
			}
			key = ProductSizeKey(code, size)
		}

		s, ok := ss.series[key]
		if !ok {
			s = &Series{
				Key:         key,
				Kind:        kind,
				ProductCode: code,
				Size:        size,
				raw:         make(map[string]float64, axis.Len()),
			}
			ss.series[key] = s
			if kind == KindProductSize {
				ss.sizes[code] = append(ss.sizes[code], size)
			}
		}

		for _, date := range axis.labels {
			if v := numeric(rec[date]); v != 0 {
				s.raw[date] += v
			}
		}
	}

	for _, rec := range productSize {
		add(rec, KindProductSize)
	}
	for _, rec := range productOnly {
		add(rec, KindProduct)
	}
	return ss
}

// numeric turns a raw cell into a number; anything non-numeric counts as 0.
func numeric(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0
		}
		f = n
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = n
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func identity(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	default:
		return ""
	}
}

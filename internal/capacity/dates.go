package capacity

import (
	"cmp"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	// ProductCodeKey is the identity column shared by both datasets.
	ProductCodeKey = "Product Code"
	// SizeKey is the identity column of the product+size dataset.
	SizeKey = "Size"
)

// DateAxis is the chronologically ordered, deduplicated set of date labels
// shared by every series of one dataset load.
type DateAxis struct {
	labels []string
	index  map[string]int
}

// ParseDateLabel parses a DD-MM-YYYY label into a calendar date (UTC midnight).
// Day and month may be written with one or two digits; the year needs four.
func ParseDateLabel(label string) (time.Time, error) {
	parts := strings.Split(label, "-")
	if len(parts) != 3 {
		return time.Time{}, &MalformedDateKeyError{Key: label}
	}

	widths := [3][2]int{{1, 2}, {1, 2}, {4, 4}}
	var nums [3]int
	for i, p := range parts {
		if len(p) < widths[i][0] || len(p) > widths[i][1] {
			return time.Time{}, &MalformedDateKeyError{Key: label}
		}
		n, err := strconv.Atoi(p)
		if err != nil || strings.ContainsAny(p, "+-") {
			return time.Time{}, &MalformedDateKeyError{Key: label}
		}
		nums[i] = n
	}

	day, month, year := nums[0], nums[1], nums[2]
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalises overflow (31-02 becomes 03-03), so round-trip to reject it.
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, &MalformedDateKeyError{Key: label}
	}
	return t, nil
}

// IsIdentityKey reports whether a record key is an identity column rather than a date.
func IsIdentityKey(key string) bool {
	return key == ProductCodeKey || key == SizeKey
}

// BuildDateAxis collects every non-identity key of every record into one
// sorted axis. The first key that is not a valid date aborts the build.
func BuildDateAxis(datasets ...[]Record) (DateAxis, error) {
	seen := make(map[string]time.Time)
	for _, records := range datasets {
		for _, rec := range records {
			for _, key := range slices.Sorted(maps.Keys(rec)) {
				if IsIdentityKey(key) {
					continue
				}
				if _, ok := seen[key]; ok {
					continue
				}
				t, err := ParseDateLabel(key)
				if err != nil {
					return DateAxis{}, err
				}
				seen[key] = t
			}
		}
	}

	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	slices.SortFunc(labels, func(a, b string) int {
		if c := seen[a].Compare(seen[b]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	return NewDateAxis(labels), nil
}

// NewDateAxis wraps labels that are already ordered.
func NewDateAxis(labels []string) DateAxis {
	axis := DateAxis{
		labels: slices.Clone(labels),
		index:  make(map[string]int, len(labels)),
	}
	for i, l := range axis.labels {
		axis.index[l] = i
	}
	return axis
}

// Labels returns a copy of the ordered labels.
func (a DateAxis) Labels() []string {
	return slices.Clone(a.labels)
}

func (a DateAxis) Len() int {
	return len(a.labels)
}

// Index returns the axis position of a label, or -1.
func (a DateAxis) Index(label string) int {
	if i, ok := a.index[label]; ok {
		return i
	}
	return -1
}

func (a DateAxis) Contains(label string) bool {
	_, ok := a.index[label]
	return ok
}

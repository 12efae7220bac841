package capacity

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDateKey is matched by every MalformedDateKeyError.
	ErrMalformedDateKey = errors.New("malformed date key")
	// ErrSelectionLimitExceeded is matched by every SelectionLimitError.
	ErrSelectionLimitExceeded = errors.New("selection limit exceeded")
	// ErrUnknownDate is matched by every UnknownDateError.
	ErrUnknownDate = errors.New("unknown date")

	// ErrProductNotSelected is returned when sizes are chosen for a product that is not selected.
	ErrProductNotSelected = errors.New("product not selected")
	// ErrUnknownProduct is returned when a selected code is absent from both datasets.
	ErrUnknownProduct = errors.New("unknown product")
	// ErrUnknownSize is returned when a size is not carried by the loaded dataset for a product.
	ErrUnknownSize = errors.New("unknown size")
	// ErrNotLoaded is returned by operations that need datasets before any load succeeded.
	ErrNotLoaded = errors.New("capacity datasets not loaded")
)

// MalformedDateKeyError names a dataset key that is not a DD-MM-YYYY date.
type MalformedDateKeyError struct {
	Key string
}

func (e *MalformedDateKeyError) Error() string {
	return fmt.Sprintf("malformed date key %q: expected DD-MM-YYYY", e.Key)
}

func (e *MalformedDateKeyError) Unwrap() error {
	return ErrMalformedDateKey
}

// SelectionLimitError reports a rejected selection change and the count it would have produced.
type SelectionLimitError struct {
	Attempted int
	Limit     int
}

func (e *SelectionLimitError) Error() string {
	return fmt.Sprintf("sorry, you can't add more than %d combinations (attempted %d)", e.Limit, e.Attempted)
}

func (e *SelectionLimitError) Unwrap() error {
	return ErrSelectionLimitExceeded
}

// UnknownDateError reports a lookup outside the loaded date axis.
type UnknownDateError struct {
	Date string
}

func (e *UnknownDateError) Error() string {
	return fmt.Sprintf("date %q is not on the loaded date axis", e.Date)
}

func (e *UnknownDateError) Unwrap() error {
	return ErrUnknownDate
}

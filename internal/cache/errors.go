package cache

import (
	"errors"
	"fmt"
)

// ErrInvalidRange is returned for requests whose end is not after their start.
var ErrInvalidRange = errors.New("invalid range")

// FetchError reports a vendor failure for one sub-range. It is never used for
// an empty result, which is not an error.
type FetchError struct {
	Vendor   string
	Ticker   string
	Interval string
	Range    Range
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s %s %s from %s: %v", e.Ticker, e.Interval, e.Range, e.Vendor, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

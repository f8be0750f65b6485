package catalog

import (
	"errors"
	"fmt"
)

// ErrProductUnavailable reports that a single product could not be shown,
// either because the provider does not know it or because the lookup failed.
var ErrProductUnavailable = errors.New("product unavailable")

// FetchError captures a failed provider call: transport errors, non-2xx
// responses and bodies that do not parse.
type FetchError struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed: status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s request failed: %v", e.Operation, e.Err)
}

func (e *FetchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

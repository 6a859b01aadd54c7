package index

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the referenced tenant index does not exist,
// locally or upstream.
var ErrNotFound = errors.New("index not found")

// OpError wraps a vector-service failure during an index operation,
// preserving the upstream detail.
type OpError struct {
	IndexID string
	Op      string
	Err     error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("index %s: %s failed: %v", e.IndexID, e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

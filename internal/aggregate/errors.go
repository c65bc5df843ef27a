package aggregate

import "fmt"

// AggregationError reports that the fan-out itself could not run to
// completion. Individual provider failures never produce one; a
// cancelled or expired context does.
type AggregationError struct {
	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregation failed: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *AggregationError) Unwrap() error {
	return e.Err
}

// PersistenceError reports that a completed report could not be saved.
// The report itself is still returned to the caller; losing the write
// must not lose the search.
type PersistenceError struct {
	// MainID is the subject document the write was destined for.
	MainID string

	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist report %s: %v", e.MainID, e.Err)
}

// Unwrap returns the underlying cause.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

package model

import (
	"fmt"
	"unicode/utf8"
)

// MaxNameLength is the maximum accepted length for the subject name.
// Queries with longer names are rejected before any provider is contacted.
const MaxNameLength = 100

// MaxLocationLength is the maximum accepted length for the location hint.
const MaxLocationLength = 100

// Query describes one search request for a subject.
type Query struct {
	// Name is the subject's name. Required, at most MaxNameLength characters.
	Name string `json:"name"`

	// Location is an optional location hint used to narrow registry and
	// geolocation lookups. At most MaxLocationLength characters.
	Location string `json:"location,omitempty"`

	// MainID links this query to an existing subject record. When empty,
	// a fresh subject identity is derived for the query.
	MainID string `json:"main_id,omitempty"`

	// AttachedMetadata carries caller-supplied metadata for the query,
	// typically EXIF data extracted from an uploaded image. The formatter
	// projects camera and location sub-fields from it when present.
	AttachedMetadata map[string]any `json:"metadata,omitempty"`
}

// ValidationError reports a query field that failed validation.
// It is a client error: the query never reached any provider.
type ValidationError struct {
	// Field is the name of the offending query field.
	Field string

	// Reason describes why the field was rejected.
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid query: %s %s", e.Field, e.Reason)
}

// Validate checks the query against the length limits. Limits count
// characters, not bytes, so multibyte scripts get the full allowance.
// It returns a *ValidationError describing the first violation found,
// or nil if the query is acceptable.
func (q Query) Validate() error {
	if q.Name == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if utf8.RuneCountInString(q.Name) > MaxNameLength {
		return &ValidationError{Field: "name", Reason: fmt.Sprintf("exceeds %d characters", MaxNameLength)}
	}
	if utf8.RuneCountInString(q.Location) > MaxLocationLength {
		return &ValidationError{Field: "location", Reason: fmt.Sprintf("exceeds %d characters", MaxLocationLength)}
	}
	return nil
}

// Package source loads tenant FAQ data from a spreadsheet CSV export or a
// pre-parsed JSON payload and normalizes it into Records.
package source

import (
	"errors"
	"fmt"
)

// Type identifies where tenant data comes from.
type Type string

const (
	// TypeSpreadsheet fetches a CSV export of a named sheet tab.
	TypeSpreadsheet Type = "spreadsheet"
	// TypeJSON reads a header row plus value rows from the request payload.
	TypeJSON Type = "json"
)

// Record is one visible row of tenant source data.
// Records with a non-empty Slug are parents; records with a non-empty Parent
// reference a parent's Slug. Orphaned Parent references are tolerated.
type Record struct {
	// SourceIndex is the row position in the source data. It is the stable
	// identity of the record within one tenant.
	SourceIndex int
	Category    int
	Subcategory int
	Slug        string
	Parent      string
	Question    string
	Answer      string
	// Text is the cleaned concatenation of Question and Answer, used for
	// chunking and embedding.
	Text string
}

// Payload carries pre-parsed sheet data for TypeJSON: a header row followed
// by value rows.
type Payload struct {
	Values [][]string `json:"values"`
}

// ErrNoData is returned when TypeJSON is requested without a payload.
var ErrNoData = errors.New("no document data provided")

// SchemaError indicates the source data does not match the expected schema,
// e.g. a required header marker is missing or a numeric column holds text.
// It points at misconfigured tenant data, not at a service fault.
type SchemaError struct {
	Detail string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("source schema error: %s", e.Detail)
}

// FetchError indicates the upstream source could not be fetched.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch source %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

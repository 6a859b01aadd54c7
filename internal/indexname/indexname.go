// Package indexname derives vector index names from tenant source identifiers.
//
// Every component that needs an index name for a source id must go through
// Normalize, so that ingestion and query always agree on the same index for
// the same tenant.
package indexname

import "strings"

// maxLength is the upstream limit on index names.
const maxLength = 128

// Normalize converts a tenant source identifier (e.g. a spreadsheet id) into
// a valid index name: lowercase, only [a-z0-9-], at most 128 characters.
// It is pure and idempotent. An empty result means the input contained no
// usable characters; callers must treat that as an invalid identifier.
func Normalize(sourceID string) string {
	var b strings.Builder
	b.Grow(len(sourceID))
	for _, r := range strings.ToLower(sourceID) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if len(name) > maxLength {
		name = name[:maxLength]
	}
	return name
}

// Package uuid generates UUIDv7 identifiers for database primary keys.
// UUIDv7 is time-ordered, so lexicographic comparison of two IDs follows
// creation order. That property is relied on as a deterministic
// tie-breaker when two budget rules share the same start date.
package uuid

import googleuuid "github.com/google/uuid"

// New returns a new UUIDv7 string.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// NewV7 only fails if the random source does; fall back to v4
		// rather than aborting record creation.
		return googleuuid.New().String()
	}
	return id.String()
}

// IsValid checks if a string is a valid UUID.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}

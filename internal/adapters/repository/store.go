// Package repository defines the user store interface and errors.
package repository

import (
	"context"
	"unicode/utf8"
)

// UserRecord is a stored user row. Usernames are lowercase; uniqueness is
// recommended but the store does not enforce it across adapters.
type UserRecord struct {
	ID       string
	Username string
	Rating   int
}

// Store provides read access to the ranked user collection, plus the bulk
// upsert used by seeding. All query methods are snapshot-free reads; callers
// accept that concurrent writes may land between two calls.
type Store interface {
	// ListByRating returns up to limit records ordered by rating descending,
	// username ascending, skipping offset records first.
	ListByRating(ctx context.Context, limit, offset int) ([]UserRecord, error)

	// CountHigher returns the number of records with rating strictly greater
	// than the given value.
	CountHigher(ctx context.Context, rating int) (int, error)

	// SearchByPrefix returns up to limit records whose username falls in the
	// lexicographic range [prefix, PrefixUpperBound(prefix)).
	SearchByPrefix(ctx context.Context, prefix string, limit int) ([]UserRecord, error)

	// Count returns the total number of records.
	Count(ctx context.Context) (int, error)

	// Upsert inserts or replaces a record keyed by username.
	Upsert(ctx context.Context, rec UserRecord) error
}

// PrefixUpperBound returns the exclusive upper bound for a username prefix
// range: the prefix with its final code point incremented. A prefix ending
// in utf8.MaxRune cannot be incremented; the empty string is returned and
// adapters treat it as an unsatisfiable range that matches nothing.
func PrefixUpperBound(prefix string) string {
	if prefix == "" {
		return ""
	}
	last, size := utf8.DecodeLastRuneInString(prefix)
	if last == utf8.RuneError && size <= 1 {
		return ""
	}
	if last >= utf8.MaxRune {
		return ""
	}
	return prefix[:len(prefix)-size] + string(last+1)
}

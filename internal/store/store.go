// Package store defines the versioned key-value capability the
// reservation core depends on, together with the in-memory, Redis and
// MySQL backends that implement it.
//
// The only synchronisation point between concurrent reservations is
// PutIfVersion: it must compare the stored version and write the new
// record as one atomic step.  A version mismatch is a normal outcome and
// is reported as (false, nil); errors are reserved for I/O failures so
// that callers can tell a lost race from an unavailable store.
package store

import (
	"context"

	"github.com/iliyamo/radical-ticket/internal/model"
)

// Store is the capability the reservation path needs.
type Store interface {
	// Get returns the record at key and true, or false when absent.
	Get(ctx context.Context, key string) (model.Record, bool, error)
	// PutIfVersion replaces the record at key with rec only if a record
	// exists there with Version == expected.
	PutIfVersion(ctx context.Context, key string, expected uint64, rec model.Record) (bool, error)
	// Delete removes key.  Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Backend adds the bulk population helpers used to create and clear the
// ticket set.
type Backend interface {
	Store
	// Put writes rec unconditionally under rec.Key.
	Put(ctx context.Context, rec model.Record) error
	// Count returns the number of tickets recorded by the last populate.
	Count(ctx context.Context) (uint64, error)
	// SetCount records the number of populated tickets.
	SetCount(ctx context.Context, n uint64) error
}

// BatchPutter is implemented by backends that can write many records in
// one round trip.  Populate uses it when available.
type BatchPutter interface {
	PutAll(ctx context.Context, recs []model.Record) error
}

// Package storage implements the pluggable persistence backends for
// the AtomSpace (spec §4.4): an in-memory backend for tests and
// ephemeral use, a SQL backend over mattn/go-sqlite3, and a key-value
// backend over redis/go-redis. All three satisfy the same Backend
// capability interface so the core AtomSpace never depends on a
// concrete storage technology.
package storage

import (
	"context"

	"github.com/EchoCog/atomspace/core/atomspace"
)

// Record is the wire representation of one atom: enough to
// reconstruct it via AtomSpace.AddNode/AddLink without re-deriving its
// handle (the handle is recomputed from Type/Name/Outgoing on load and
// checked against Handle as a consistency guard).
type Record struct {
	Handle atomspace.Handle
	Type   atomspace.AtomType
	Name   string // node payload; empty for links
	// IsLink distinguishes a zero-arity link from a node; Outgoing alone
	// is ambiguous (both are a nil/empty slice).
	IsLink     bool
	Outgoing   []atomspace.Handle
	Strength   float64
	Confidence float64
	STI        int16
	LTI        int16
	VLTI       bool
}

// Stats summarizes a backend's current content, surfaced by the CLI
// stats subcommand and used by tests asserting round-trip counts.
type Stats struct {
	AtomCount  int64
	NodeCount  int64
	LinkCount  int64
	BackendTag string
}

// Backend is the capability interface every storage implementation
// satisfies (spec §4.4: "open/close/store/fetch/remove/iterate/stats").
// All methods must be safe for concurrent use.
type Backend interface {
	// Open prepares the backend for use (connects, migrates schema,
	// etc). Must be called before any other method.
	Open(ctx context.Context) error

	// Close releases any held resources (connections, file handles).
	Close() error

	// StoreAtom persists one record, overwriting any prior record with
	// the same handle.
	StoreAtom(ctx context.Context, r Record) error

	// StoreAtoms persists many records as a single unit of work where
	// the backend supports it (a SQL transaction, a Redis pipeline).
	StoreAtoms(ctx context.Context, rs []Record) error

	// FetchAtom retrieves one record by handle. ok is false when no
	// record exists for h.
	FetchAtom(ctx context.Context, h atomspace.Handle) (r Record, ok bool, err error)

	// FetchAtoms retrieves many records by handle in one round trip.
	// The result has one entry per input handle, in the same order;
	// a missing handle yields a nil entry rather than an error or a
	// shorter slice, so callers can always align results to hs by index.
	FetchAtoms(ctx context.Context, hs []atomspace.Handle) ([]*Record, error)

	// RemoveAtom deletes the record for h, if any. Removing a handle
	// that doesn't exist is not an error.
	RemoveAtom(ctx context.Context, h atomspace.Handle) error

	// IterateAtoms calls fn once per stored record in backend-defined
	// order. Iteration stops early, without error, if fn returns false.
	IterateAtoms(ctx context.Context, fn func(Record) bool) error

	// Stats reports backend-level counters.
	Stats(ctx context.Context) (Stats, error)
}

// ToRecord converts a live atom into its wire Record.
func ToRecord(a *atomspace.Atom) Record {
	tv := a.TruthValue()
	av := a.AttentionValue()
	return Record{
		Handle:     a.Handle(),
		Type:       a.Type(),
		Name:       a.Name(),
		IsLink:     a.IsLink(),
		Outgoing:   a.Outgoing(),
		Strength:   tv.Strength,
		Confidence: tv.Confidence,
		STI:        av.STI,
		LTI:        av.LTI,
		VLTI:       av.VLTI,
	}
}

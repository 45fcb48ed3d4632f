package atomspace

import "errors"

// Sentinel errors matching the taxonomy in spec §7. Callers should use
// errors.Is against these rather than string-matching error text.
var (
	// ErrDanglingReference is returned by AddLink when an outgoing handle
	// does not name any atom currently in the AtomSpace.
	ErrDanglingReference = errors.New("atomspace: dangling reference")

	// ErrHasIncoming is returned by RemoveAtom(recursive=false) when the
	// target atom's incoming set is non-empty.
	ErrHasIncoming = errors.New("atomspace: atom has non-empty incoming set")

	// ErrUnknownType is returned when an AtomType outside the static
	// lattice is used to add an atom or declare a pattern constraint.
	ErrUnknownType = errors.New("atomspace: unknown atom type")

	// ErrTypeMismatch is returned for illegal atom-type composition,
	// e.g. attempting to add a Node's content as a Link or vice versa.
	ErrTypeMismatch = errors.New("atomspace: type mismatch")

	// ErrNotFound is returned when a handle does not resolve to any atom.
	ErrNotFound = errors.New("atomspace: atom not found")

	// ErrMalformedPattern is returned by the pattern matcher when a
	// declared variable is unused (or vice versa) or a type constraint
	// names an unknown type.
	ErrMalformedPattern = errors.New("atomspace: malformed pattern")

	// ErrFundInsufficient is returned by the attention bank when a
	// stimulation would exceed available STI/LTI funds and the caller
	// opted out of clamping.
	ErrFundInsufficient = errors.New("atomspace: attention fund insufficient")

	// ErrPoolExhausted names the connection-pool-exhausted failure. No
	// backend in core/storage returns it: the SQL backend waits on
	// database/sql's own pool and, when the caller's context deadline
	// passes while waiting, reports the context's error instead.
	ErrPoolExhausted = errors.New("atomspace: connection pool exhausted")

	// ErrBackendUnavailable signals a storage backend could not be
	// reached when it was opened (connect, ping or schema migration
	// failed). Backends return it on the first failed attempt; they do
	// not retry.
	ErrBackendUnavailable = errors.New("atomspace: storage backend unavailable")

	// ErrSerializationFailed signals an atom could not be encoded or
	// decoded by a storage backend.
	ErrSerializationFailed = errors.New("atomspace: serialization failed")

	// ErrCancelled is returned by long-running operations (pattern
	// matching, chaining, attention cycles) when their context is
	// cancelled mid-flight. It is not an error in the usual sense but
	// is distinguishable from success.
	ErrCancelled = errors.New("atomspace: operation cancelled")

	// ErrAlreadyRunning / ErrNotRunning name start/stop lifecycle
	// failures; no package in this module returns them.
	ErrAlreadyRunning = errors.New("atomspace: already running")
	ErrNotRunning     = errors.New("atomspace: not running")
)

package atomspace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Handle is an opaque, stable identifier for an atom within one
// AtomSpace. Equal atoms (same content key) share one handle; it is
// cheap to copy and hash (spec §3 "Handle").
//
// Handles are the hex SHA-256 digest of the atom's content key
// (type + name for nodes, type + ordered outgoing handles for links).
// This is the content-addressing scheme from cogpy-Erebus's
// atomspace.GenerateAtomID, adopted here because the teacher
// prototype's nanosecond-timestamp IDs cannot satisfy the spec's
// content-uniqueness invariant: two calls adding identical content
// would never collide under that scheme.
type Handle string

// ComputeNodeHandle returns the handle a node with this type and name
// would have, without requiring the node to exist yet.
func ComputeNodeHandle(t AtomType, name string) Handle { return nodeKey(t, name) }

// ComputeLinkHandle returns the handle a link with this type and
// outgoing sequence would have, without requiring the link to exist.
// The rule engine's backward chainer uses this to check whether a goal
// is already a known fact before trying to derive it.
func ComputeLinkHandle(t AtomType, outgoing []Handle) Handle { return linkKey(t, outgoing) }

// nodeKey computes the content-addressed handle for a node.
func nodeKey(t AtomType, name string) Handle {
	h := sha256.New()
	fmt.Fprintf(h, "N:%d:", t)
	h.Write([]byte(name))
	return Handle(hex.EncodeToString(h.Sum(nil)))
}

// linkKey computes the content-addressed handle for a link. Order is
// significant except for link types declared unordered (And/Or), in
// which case the outgoing sequence is sorted before hashing so
// structurally-commuted links dedupe to the same handle.
func linkKey(t AtomType, outgoing []Handle) Handle {
	seq := outgoing
	if unorderedOutgoing(t) {
		seq = sortedHandles(outgoing)
	}
	h := sha256.New()
	fmt.Fprintf(h, "L:%d:%d:", t, len(seq))
	for _, o := range seq {
		h.Write([]byte(o))
		h.Write([]byte{0})
	}
	return Handle(hex.EncodeToString(h.Sum(nil)))
}

func sortedHandles(in []Handle) []Handle {
	out := append([]Handle(nil), in...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

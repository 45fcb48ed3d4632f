// Package atomspace implements the typed hypergraph store at the
// heart of the cognitive substrate: content-addressed atoms, a type
// lattice, truth/attention values, and the indices (by-type,
// incoming-set, content-key) that the pattern matcher and attention
// bank build on. See spec §3–§4.2.
package atomspace

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// AtomSpace owns the graph, enforces its invariants, and routes
// lifecycle events to observers (spec §4.1). Concurrency model is
// single-writer/multiple-reader (spec §5): AddNode/AddLink/RemoveAtom/
// SetTruthValue/SetAttentionValue take the write lock; GetAtom/
// GetByType/Incoming/Size are readers.
type AtomSpace struct {
	mu sync.RWMutex

	atoms    map[Handle]*Atom
	byType   map[AtomType]map[Handle]struct{}
	incoming map[Handle]map[Handle]struct{} // atom handle -> set of link handles naming it

	observers []Observer

	log *zap.SugaredLogger
}

// New creates an empty AtomSpace. A nil logger installs zap's no-op
// logger so call sites never need a nil check.
func New(log *zap.SugaredLogger) *AtomSpace {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &AtomSpace{
		atoms:    make(map[Handle]*Atom),
		byType:   make(map[AtomType]map[Handle]struct{}),
		incoming: make(map[Handle]map[Handle]struct{}),
		log:      log,
	}
}

// Subscribe registers an observer for lifecycle notifications. It takes
// the write lock, so it serializes with mutating operations; observers
// are normally wired up once at startup (attention bank, storage
// backends, pattern-index maintenance).
func (as *AtomSpace) Subscribe(o Observer) {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.observers = append(as.observers, o)
}

func (as *AtomSpace) notify(e Event) {
	for _, o := range as.observers {
		o.OnEvent(e)
	}
}

// AddNode adds (or looks up) a Node atom, keyed by (type, name). If an
// atom with this content key already exists, its truth value is
// revised with tv (when tv != nil) and the existing handle is
// returned — re-adding never creates a duplicate (spec §3 "Content
// uniqueness", §4.1 "AddNode").
func (as *AtomSpace) AddNode(t AtomType, name string, tv *TruthValue) (Handle, error) {
	if !t.Valid() {
		return "", fmt.Errorf("add node %q: %w: %s", name, ErrUnknownType, t)
	}
	if !t.IsNode() {
		return "", fmt.Errorf("add node %q: %w: %s is not a node type", name, ErrTypeMismatch, t)
	}

	as.mu.Lock()
	defer as.mu.Unlock()

	h := nodeKey(t, name)
	if existing, ok := as.atoms[h]; ok {
		if tv != nil {
			prior := existing.TruthValue()
			existing.reviseTruthValue(*tv)
			as.notify(Event{Kind: EventTruthValueChanged, Atom: existing, Prior: prior})
		}
		return h, nil
	}

	value := DefaultTruthValue
	if tv != nil {
		value = *tv
	}
	atom := newNode(t, name, value)
	as.insertUnlocked(atom)
	as.notify(Event{Kind: EventAdd, Atom: atom})
	as.log.Debugw("added node", "handle", h, "type", t, "name", name)
	return h, nil
}

// AddLink adds (or looks up) a Link atom, keyed by (type, outgoing).
// Every handle in outgoing must already name an atom in this
// AtomSpace, or ErrDanglingReference is returned (spec §3 "Referential
// closure", §4.1 "AddLink").
func (as *AtomSpace) AddLink(t AtomType, outgoing []Handle, tv *TruthValue) (Handle, error) {
	if !t.Valid() {
		return "", fmt.Errorf("add link: %w: %s", ErrUnknownType, t)
	}
	if t == Atom_ || t == Link_ || !t.IsLink() {
		return "", fmt.Errorf("add link: %w: %s is not a link type", ErrTypeMismatch, t)
	}

	as.mu.Lock()
	defer as.mu.Unlock()

	for _, o := range outgoing {
		if _, ok := as.atoms[o]; !ok {
			return "", fmt.Errorf("add link %s: %w: %s", t, ErrDanglingReference, o)
		}
	}

	h := linkKey(t, outgoing)
	if existing, ok := as.atoms[h]; ok {
		if tv != nil {
			prior := existing.TruthValue()
			existing.reviseTruthValue(*tv)
			as.notify(Event{Kind: EventTruthValueChanged, Atom: existing, Prior: prior})
		}
		return h, nil
	}

	value := DefaultTruthValue
	if tv != nil {
		value = *tv
	}
	atom := newLink(t, outgoing, value)
	as.insertUnlocked(atom)
	for _, o := range outgoing {
		if as.incoming[o] == nil {
			as.incoming[o] = make(map[Handle]struct{})
		}
		as.incoming[o][h] = struct{}{}
	}
	as.notify(Event{Kind: EventAdd, Atom: atom})
	as.log.Debugw("added link", "handle", h, "type", t, "arity", len(outgoing))
	return h, nil
}

func (as *AtomSpace) insertUnlocked(atom *Atom) {
	as.atoms[atom.handle] = atom
	if as.byType[atom.typ] == nil {
		as.byType[atom.typ] = make(map[Handle]struct{})
	}
	as.byType[atom.typ][atom.handle] = struct{}{}
}

// GetAtom retrieves an atom by handle in O(1).
func (as *AtomSpace) GetAtom(h Handle) (*Atom, bool) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	a, ok := as.atoms[h]
	return a, ok
}

// GetByType returns the handles of every atom of exactly type t, or
// (when includeSubtypes is true) of t or any transitive subtype of t.
// Iteration order is unspecified but stable within a single returned
// slice (spec §4.1).
func (as *AtomSpace) GetByType(t AtomType, includeSubtypes bool) []Handle {
	as.mu.RLock()
	defer as.mu.RUnlock()

	types := []AtomType{t}
	if includeSubtypes {
		types = TransitiveSubtypes(t)
	}

	var out []Handle
	for _, tt := range types {
		for h := range as.byType[tt] {
			out = append(out, h)
		}
	}
	return out
}

// Incoming returns the handles of every link whose outgoing sequence
// names h (spec §4.1 "incoming").
func (as *AtomSpace) Incoming(h Handle) []Handle {
	as.mu.RLock()
	defer as.mu.RUnlock()

	set := as.incoming[h]
	out := make([]Handle, 0, len(set))
	for inc := range set {
		out = append(out, inc)
	}
	return out
}

// RemoveAtom removes the atom named by h. Non-recursive removal fails
// with ErrHasIncoming (state unchanged) when h's incoming set is
// non-empty. Recursive removal deletes h and, transitively, every atom
// reachable by following incoming edges, visiting each affected atom
// exactly once even across diamonds in the incoming graph (spec §4.1,
// §9 "recursive remove_atom … assumes it deletes each affected atom
// exactly once via a visited-set traversal"). The incoming-set graph
// is a DAG (a link's outgoing is fixed at creation and can never name
// the link itself), so this traversal always terminates.
func (as *AtomSpace) RemoveAtom(h Handle, recursive bool) (bool, error) {
	as.mu.Lock()
	defer as.mu.Unlock()

	if _, ok := as.atoms[h]; !ok {
		return false, nil
	}

	if !recursive {
		if len(as.incoming[h]) > 0 {
			return false, ErrHasIncoming
		}
		as.deleteUnlocked(h)
		return true, nil
	}

	visited := map[Handle]bool{}
	order := make([]Handle, 0, 8)
	var visit func(Handle)
	visit = func(cur Handle) {
		if visited[cur] {
			return
		}
		visited[cur] = true
		order = append(order, cur)
		for inc := range as.incoming[cur] {
			visit(inc)
		}
	}
	visit(h)

	for i := len(order) - 1; i >= 0; i-- {
		as.deleteUnlocked(order[i])
	}
	return true, nil
}

func (as *AtomSpace) deleteUnlocked(h Handle) {
	atom, ok := as.atoms[h]
	if !ok {
		return
	}
	delete(as.atoms, h)
	if set := as.byType[atom.typ]; set != nil {
		delete(set, h)
	}
	if atom.IsLink() {
		for _, o := range atom.outgoing {
			if set := as.incoming[o]; set != nil {
				delete(set, h)
			}
		}
	}
	delete(as.incoming, h)
	as.notify(Event{Kind: EventRemove, Atom: atom})
}

// SetTruthValue overwrites h's truth value unconditionally (no
// revision — contrast with AddNode/AddLink's merge-on-duplicate
// behavior). Spec §4.1 "set_truth_value".
func (as *AtomSpace) SetTruthValue(h Handle, tv TruthValue) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	atom, ok := as.atoms[h]
	if !ok {
		return fmt.Errorf("set truth value %s: %w", h, ErrNotFound)
	}
	prior := atom.TruthValue()
	atom.setTruthValue(tv)
	as.notify(Event{Kind: EventTruthValueChanged, Atom: atom, Prior: prior})
	return nil
}

// SetAttentionValue overwrites h's attention value unconditionally.
// The caller is responsible for respecting fund invariants; use the
// attention bank's Stimulate for fund-safe transfers (spec §4.1/§4.7).
func (as *AtomSpace) SetAttentionValue(h Handle, av AttentionValue) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	atom, ok := as.atoms[h]
	if !ok {
		return fmt.Errorf("set attention value %s: %w", h, ErrNotFound)
	}
	atom.setAttentionValue(av)
	as.notify(Event{Kind: EventAttentionValueChanged, Atom: atom})
	return nil
}

// Size returns the number of atoms (nodes + links) currently stored.
func (as *AtomSpace) Size() int {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return len(as.atoms)
}

// Clear removes every atom and resets all indices. Intended for test
// fixtures and ephemeral reuse; does not fire per-atom Remove events
// (it is a bulk reset, not a sequence of individual removals).
func (as *AtomSpace) Clear() {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.atoms = make(map[Handle]*Atom)
	as.byType = make(map[AtomType]map[Handle]struct{})
	as.incoming = make(map[Handle]map[Handle]struct{})
}

// AllHandles returns every handle currently stored, for callers (the
// pattern matcher, snapshot writer) that need a full-graph scan.
// Iteration order is unspecified.
func (as *AtomSpace) AllHandles() []Handle {
	as.mu.RLock()
	defer as.mu.RUnlock()
	out := make([]Handle, 0, len(as.atoms))
	for h := range as.atoms {
		out = append(out, h)
	}
	return out
}

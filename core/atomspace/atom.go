package atomspace

import "sync"

// Atom is one vertex (Node) or hyperedge (Link) of the knowledge
// hypergraph. The variant payload (Name, Outgoing) is immutable for
// the atom's lifetime; only TruthValue and Attention are mutable,
// guarded by the owning AtomSpace's lock (spec §3 "Atom").
type Atom struct {
	handle Handle
	typ    AtomType

	// Node payload. Empty for links.
	name string

	// Link payload. Empty (possibly nil) for nodes; isLink distinguishes
	// a zero-arity link from a node, since both have a nil/empty slice.
	outgoing []Handle
	isLink   bool

	mu    sync.Mutex
	tv    TruthValue
	av    AttentionValue
}

// newNode constructs a Node atom. Callers must hold the owning
// AtomSpace's write lock.
func newNode(t AtomType, name string, tv TruthValue) *Atom {
	return &Atom{
		handle: nodeKey(t, name),
		typ:    t,
		name:   name,
		tv:     tv,
		av:     DefaultAttentionValue,
	}
}

// newLink constructs a Link atom. Callers must hold the owning
// AtomSpace's write lock.
func newLink(t AtomType, outgoing []Handle, tv TruthValue) *Atom {
	cp := append([]Handle(nil), outgoing...)
	return &Atom{
		handle:   linkKey(t, outgoing),
		typ:      t,
		outgoing: cp,
		isLink:   true,
		tv:       tv,
		av:       DefaultAttentionValue,
	}
}

// Handle returns the atom's stable identifier.
func (a *Atom) Handle() Handle { return a.handle }

// Type returns the atom's type.
func (a *Atom) Type() AtomType { return a.typ }

// Name returns the node's name, or "" for a link.
func (a *Atom) Name() string { return a.name }

// IsNode reports whether this atom is a Node.
func (a *Atom) IsNode() bool { return !a.isLink }

// IsLink reports whether this atom is a Link, including a zero-arity one.
func (a *Atom) IsLink() bool { return a.isLink }

// Outgoing returns a copy of the link's outgoing handle sequence, or
// nil for a node.
func (a *Atom) Outgoing() []Handle {
	if !a.isLink {
		return nil
	}
	return append([]Handle(nil), a.outgoing...)
}

// Arity returns len(Outgoing()) for a link, 0 for a node.
func (a *Atom) Arity() int { return len(a.outgoing) }

// TruthValue returns the atom's current truth value.
func (a *Atom) TruthValue() TruthValue {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tv
}

// AttentionValue returns the atom's current attention value.
func (a *Atom) AttentionValue() AttentionValue {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.av
}

func (a *Atom) setTruthValue(tv TruthValue) {
	a.mu.Lock()
	a.tv = tv
	a.mu.Unlock()
}

func (a *Atom) setAttentionValue(av AttentionValue) {
	a.mu.Lock()
	a.av = av
	a.mu.Unlock()
}

func (a *Atom) reviseTruthValue(tv TruthValue) {
	a.mu.Lock()
	a.tv = Revise(a.tv, tv)
	a.mu.Unlock()
}

package atomspace

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
)

// AtomType is a closed enumeration over the atom-type lattice. The
// lattice is single-rooted at Atom and fixed at build time.
type AtomType uint32

// Node types.
const (
	Atom_ AtomType = iota // the lattice apex; never assigned to a real atom
	ConceptNode
	PredicateNode
	VariableNode
	NumberNode
	SchemaNode
	GroundedSchemaNode
	numNodeTypes // sentinel
)

// Link types.
const (
	Link_ AtomType = iota + numNodeTypes // intermediate apex for all links
	ListLink
	InheritanceLink
	SimilarityLink
	SubsetLink
	EvaluationLink
	MemberLink
	ExecutionLink
	ImplicationLink
	EquivalenceLink
	AndLink
	OrLink
	NotLink
	numAtomTypes // sentinel: one past the last valid type
)

var typeNames = map[AtomType]string{
	Atom_:              "Atom",
	ConceptNode:        "ConceptNode",
	PredicateNode:      "PredicateNode",
	VariableNode:       "VariableNode",
	NumberNode:         "NumberNode",
	SchemaNode:         "SchemaNode",
	GroundedSchemaNode: "GroundedSchemaNode",
	Link_:              "Link",
	ListLink:           "ListLink",
	InheritanceLink:    "InheritanceLink",
	SimilarityLink:     "SimilarityLink",
	SubsetLink:         "SubsetLink",
	EvaluationLink:     "EvaluationLink",
	MemberLink:         "MemberLink",
	ExecutionLink:      "ExecutionLink",
	ImplicationLink:    "ImplicationLink",
	EquivalenceLink:    "EquivalenceLink",
	AndLink:            "AndLink",
	OrLink:             "OrLink",
	NotLink:            "NotLink",
}

// parent maps each type to its single immediate supertype in the
// lattice. Node types hang directly off Atom_; link types hang off
// Link_, which in turn hangs off Atom_.
var parent = map[AtomType]AtomType{
	ConceptNode:        Atom_,
	PredicateNode:      Atom_,
	VariableNode:       Atom_,
	NumberNode:         Atom_,
	SchemaNode:         Atom_,
	GroundedSchemaNode: Atom_,
	Link_:              Atom_,
	ListLink:           Link_,
	InheritanceLink:    Link_,
	SimilarityLink:     Link_,
	SubsetLink:         Link_,
	EvaluationLink:     Link_,
	MemberLink:         Link_,
	ExecutionLink:      Link_,
	ImplicationLink:    Link_,
	EquivalenceLink:    Link_,
	AndLink:            Link_,
	OrLink:             Link_,
	NotLink:            Link_,
}

// lattice is the process-global, immutable-after-init type table. It
// precomputes an ancestor bitset per type so IsA is O(1) amortized
// (a roaring.Bitmap.Contains check) instead of a parent-pointer walk.
type typeLattice struct {
	ancestors   map[AtomType]*roaring.Bitmap // type -> bitset of itself + all supertypes
	descendants map[AtomType]*roaring.Bitmap // type -> bitset of itself + all subtypes
	children    map[AtomType][]AtomType      // type -> immediate subtypes
}

var lattice = buildLattice()

func buildLattice() *typeLattice {
	l := &typeLattice{
		ancestors:   make(map[AtomType]*roaring.Bitmap),
		descendants: make(map[AtomType]*roaring.Bitmap),
		children:    make(map[AtomType][]AtomType),
	}

	for t := range typeNames {
		l.ancestors[t] = ancestorsOf(t)
	}
	for t, bm := range l.ancestors {
		it := bm.Iterator()
		for it.HasNext() {
			anc := AtomType(it.Next())
			if l.descendants[anc] == nil {
				l.descendants[anc] = roaring.New()
			}
			l.descendants[anc].Add(uint32(t))
		}
	}
	for t, p := range parent {
		l.children[p] = append(l.children[p], t)
	}
	return l
}

func ancestorsOf(t AtomType) *roaring.Bitmap {
	bm := roaring.New()
	cur := t
	bm.Add(uint32(cur))
	for {
		p, ok := parent[cur]
		if !ok {
			break
		}
		bm.Add(uint32(p))
		cur = p
	}
	return bm
}

// String implements fmt.Stringer.
func (t AtomType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("AtomType(%d)", uint32(t))
}

// Valid reports whether t is a member of the static lattice.
func (t AtomType) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// ParseAtomType resolves a type's string name (e.g. "ConceptNode")
// back to its AtomType, for callers (the JSON/WS frontend, the CLI)
// that receive type names as text rather than the enum value.
func ParseAtomType(name string) (AtomType, bool) {
	for t, n := range typeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// IsLink reports whether t is Link_ or a descendant of it.
func (t AtomType) IsLink() bool {
	return t == Link_ || lattice.ancestors[t] != nil && lattice.ancestors[t].Contains(uint32(Link_))
}

// IsNode reports whether t is a node type (not Link_ or a link subtype).
func (t AtomType) IsNode() bool {
	return t.Valid() && t != Atom_ && t != Link_ && !t.IsLink()
}

// IsA reports whether t is exactly super, or a (transitive) subtype of
// super. Amortized O(1): a single bitset membership test.
func IsA(t, super AtomType) bool {
	bm := lattice.ancestors[t]
	if bm == nil {
		return false
	}
	return bm.Contains(uint32(super))
}

// Subtypes returns the immediate subtypes of t.
func Subtypes(t AtomType) []AtomType {
	return append([]AtomType(nil), lattice.children[t]...)
}

// TransitiveSubtypes returns t and every (transitive) subtype of t.
func TransitiveSubtypes(t AtomType) []AtomType {
	bm := lattice.descendants[t]
	if bm == nil {
		return []AtomType{t}
	}
	out := make([]AtomType, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, AtomType(it.Next()))
	}
	return out
}

// unorderedOutgoing reports whether a link type's outgoing sequence is
// commutative for matching purposes (spec §4.5: "currently And and Or").
func unorderedOutgoing(t AtomType) bool {
	return t == AndLink || t == OrLink
}

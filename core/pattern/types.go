// Package pattern implements the AtomSpace query engine: unification
// over link clauses with type-constrained variable binding, ordered by
// a selectivity-driven join plan (spec §4.5).
package pattern

import (
	"fmt"
	"sort"
	"strings"

	"github.com/EchoCog/atomspace/core/atomspace"
)

// Term is one position in a clause's outgoing sequence: either a bound
// reference to a specific Handle, or a reference to a pattern
// Variable that gets bound during matching.
type Term struct {
	Var    string // non-empty when this term is a variable reference
	Handle atomspace.Handle
}

// IsVar reports whether this term names a variable rather than a
// concrete handle.
func (t Term) IsVar() bool { return t.Var != "" }

// VarTerm constructs a variable-reference Term.
func VarTerm(name string) Term { return Term{Var: name} }

// HandleTerm constructs a concrete-handle Term.
func HandleTerm(h atomspace.Handle) Term { return Term{Handle: h} }

// Variable declares one pattern variable, optionally constrained to
// bind only to atoms of Type (or a transitive subtype of Type) —
// spec §4.5 "type-constrained variable binding".
type Variable struct {
	Name    string
	Type    atomspace.AtomType
	HasType bool
}

// Clause matches against every link of exactly LinkType whose arity
// equals len(Outgoing); each position either pins a concrete handle or
// binds/checks a pattern Variable.
type Clause struct {
	LinkType atomspace.AtomType
	Outgoing []Term
}

// Pattern is a conjunction of Clauses over a shared variable set. A
// solution binds every Variable named by some clause's Outgoing to a
// concrete Handle such that every clause is simultaneously satisfied.
type Pattern struct {
	Variables map[string]Variable
	Clauses   []Clause
}

// Binding maps variable name to the Handle it was matched to in one
// solution.
type Binding map[string]atomspace.Handle

// Result holds every solution to a Match call. ClauseHandles[i] gives
// the handle each of Pattern.Clauses matched against for Bindings[i],
// in the same order the pattern declared its clauses — letting callers
// (the rule engine) recover each premise's own truth/attention values,
// not just the variable bindings.
type Result struct {
	Bindings      []Binding
	ClauseHandles [][]atomspace.Handle
}

// Validate checks the structural well-formedness invariants spec §4.5
// requires before matching begins: every variable referenced by a
// clause must be declared, every declared variable must be referenced
// by at least one clause, and every declared type (clause link type or
// variable type constraint) must be a real lattice member.
func (p Pattern) Validate() error {
	if len(p.Clauses) == 0 {
		return fmt.Errorf("pattern has no clauses: %w", atomspace.ErrMalformedPattern)
	}
	referenced := make(map[string]bool)
	for _, c := range p.Clauses {
		if !c.LinkType.Valid() {
			return fmt.Errorf("clause names unknown type %s: %w", c.LinkType, atomspace.ErrUnknownType)
		}
		for _, term := range c.Outgoing {
			if !term.IsVar() {
				continue
			}
			v, ok := p.Variables[term.Var]
			if !ok {
				return fmt.Errorf("clause references undeclared variable %q: %w", term.Var, atomspace.ErrMalformedPattern)
			}
			if v.HasType && !v.Type.Valid() {
				return fmt.Errorf("variable %q names unknown type %s: %w", term.Var, v.Type, atomspace.ErrUnknownType)
			}
			referenced[term.Var] = true
		}
	}
	var unused []string
	for name := range p.Variables {
		if !referenced[name] {
			unused = append(unused, name)
		}
	}
	if len(unused) > 0 {
		sort.Strings(unused)
		return fmt.Errorf("variable(s) %s declared but never referenced: %w", strings.Join(unused, ", "), atomspace.ErrMalformedPattern)
	}
	return nil
}

// Package ure implements the unified rule engine: forward and backward
// chaining over a catalog of inference rules, with PLN's truth-value
// formulas supplying each rule's conclusion strength/confidence
// (spec §4.6). Grounded on the teacher's HypercyclicReactor
// InferenceEngine/ChainEngine/PLNEngine, generalized from a hardcoded
// three-rule catalog tied to one atom-ID string type into a pattern
// driven catalog over the content-addressed AtomSpace.
package ure

import (
	"fmt"

	"github.com/EchoCog/atomspace/core/atomspace"
	"github.com/EchoCog/atomspace/core/pattern"
)

// Rule is one inference rule: a premise Pattern over the AtomSpace,
// a template for the link it concludes, and the truth-value formula
// combining premise truth values into the conclusion's. Premises[i]
// supplies the truth value read from pattern.Result.ClauseHandles[i]
// for a given solution.
//
// TruthValue optionally carries the rule's own intrinsic evidence
// (spec §8 scenario 3: a rule like father_of(X,Y) ⇒ parent_of(X,Y)
// asserted with its own tv=(1.0, 0.9), independent of any premise's
// truth value). Formula closures that need it read it directly rather
// than receiving it as a synthetic extra premise, since it has no
// ClauseHandles entry of its own.
type Rule struct {
	Name       string
	Premises   pattern.Pattern
	Conclusion pattern.Clause // Outgoing terms reference Premises' variables
	TruthValue *atomspace.TruthValue
	Formula    func(premiseTVs []atomspace.TruthValue) atomspace.TruthValue
}

// ground resolves one matched solution's conclusion into a concrete
// link type + outgoing handle sequence + truth value, ready to add to
// the AtomSpace.
func (r Rule) ground(as *atomspace.AtomSpace, binding pattern.Binding, clauseHandles []atomspace.Handle) (atomspace.AtomType, []atomspace.Handle, atomspace.TruthValue, error) {
	outgoing := make([]atomspace.Handle, len(r.Conclusion.Outgoing))
	for i, term := range r.Conclusion.Outgoing {
		if term.IsVar() {
			h, ok := binding[term.Var]
			if !ok {
				return 0, nil, atomspace.TruthValue{}, fmt.Errorf("rule %s: conclusion references unbound variable %q", r.Name, term.Var)
			}
			outgoing[i] = h
		} else {
			outgoing[i] = term.Handle
		}
	}

	tvs := make([]atomspace.TruthValue, len(clauseHandles))
	for i, h := range clauseHandles {
		atom, ok := as.GetAtom(h)
		if !ok {
			return 0, nil, atomspace.TruthValue{}, fmt.Errorf("rule %s: premise %d handle %s vanished mid-chain", r.Name, i, h)
		}
		tvs[i] = atom.TruthValue()
	}

	return r.Conclusion.LinkType, outgoing, r.Formula(tvs), nil
}

// Deduction builds the (A->B, B->C) |- A->C rule over InheritanceLink,
// the example spec §4.6 and §8 work through explicitly.
func Deduction(linkType atomspace.AtomType) Rule {
	return Rule{
		Name: "Deduction",
		Premises: pattern.Pattern{
			Variables: map[string]pattern.Variable{"a": {Name: "a"}, "b": {Name: "b"}, "c": {Name: "c"}},
			Clauses: []pattern.Clause{
				{LinkType: linkType, Outgoing: []pattern.Term{pattern.VarTerm("a"), pattern.VarTerm("b")}},
				{LinkType: linkType, Outgoing: []pattern.Term{pattern.VarTerm("b"), pattern.VarTerm("c")}},
			},
		},
		Conclusion: pattern.Clause{LinkType: linkType, Outgoing: []pattern.Term{pattern.VarTerm("a"), pattern.VarTerm("c")}},
		Formula: func(tvs []atomspace.TruthValue) atomspace.TruthValue {
			return atomspace.Deduction(tvs[0], tvs[1])
		},
	}
}

// Implication builds a predicate-implication rule: given
// EvaluationLink(predicateA, args) with its own evidence, conclude
// EvaluationLink(predicateB, args) discounted by the rule's own
// intrinsic truth value via ModusPonens (spec §8 scenario 3:
// father_of(X,Y) ⇒ parent_of(X,Y) with rule tv=(1.0, 0.9) turns a
// (1.0, 0.95) premise into a (1.0, 0.855) conclusion — 0.95*0.9). args
// is left unconstrained by the pattern so it carries over to the
// conclusion verbatim, whatever shape the relation's argument list is
// (a ListLink, a bare ConceptNode, …).
func Implication(evalLinkType atomspace.AtomType, predicateA, predicateB atomspace.Handle, ruleTV atomspace.TruthValue) Rule {
	tv := ruleTV
	return Rule{
		Name: "Implication",
		Premises: pattern.Pattern{
			Variables: map[string]pattern.Variable{"args": {Name: "args"}},
			Clauses: []pattern.Clause{
				{LinkType: evalLinkType, Outgoing: []pattern.Term{pattern.HandleTerm(predicateA), pattern.VarTerm("args")}},
			},
		},
		Conclusion: pattern.Clause{LinkType: evalLinkType, Outgoing: []pattern.Term{pattern.HandleTerm(predicateB), pattern.VarTerm("args")}},
		TruthValue: &tv,
		Formula: func(tvs []atomspace.TruthValue) atomspace.TruthValue {
			return atomspace.ModusPonens(tvs[0], tv)
		},
	}
}

// ModusPonens builds the (A, A->B) |- B rule.
func ModusPonens(factType, implicationType atomspace.AtomType) Rule {
	return Rule{
		Name: "ModusPonens",
		Premises: pattern.Pattern{
			Variables: map[string]pattern.Variable{"a": {Name: "a"}, "b": {Name: "b"}},
			Clauses: []pattern.Clause{
				{LinkType: factType, Outgoing: []pattern.Term{pattern.VarTerm("a")}},
				{LinkType: implicationType, Outgoing: []pattern.Term{pattern.VarTerm("a"), pattern.VarTerm("b")}},
			},
		},
		Conclusion: pattern.Clause{LinkType: factType, Outgoing: []pattern.Term{pattern.VarTerm("b")}},
		Formula: func(tvs []atomspace.TruthValue) atomspace.TruthValue {
			return atomspace.ModusPonens(tvs[0], tvs[1])
		},
	}
}

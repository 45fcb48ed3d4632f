package pattern

import (
	"context"
	"testing"
	"time"

	"github.com/EchoCog/atomspace/core/atomspace"
)

func buildFamilyTree(t *testing.T) (*atomspace.AtomSpace, map[string]atomspace.Handle) {
	t.Helper()
	as := atomspace.New(nil)
	h := map[string]atomspace.Handle{}
	var err error
	for _, name := range []string{"tom", "bob", "liz", "ann"} {
		h[name], err = as.AddNode(atomspace.ConceptNode, name, nil)
		if err != nil {
			t.Fatalf("add node %s: %v", name, err)
		}
	}
	// tom -> bob, tom -> liz, bob -> ann (InheritanceLink used as "parent_of")
	if _, err := as.AddLink(atomspace.InheritanceLink, []atomspace.Handle{h["tom"], h["bob"]}, nil); err != nil {
		t.Fatalf("add link: %v", err)
	}
	if _, err := as.AddLink(atomspace.InheritanceLink, []atomspace.Handle{h["tom"], h["liz"]}, nil); err != nil {
		t.Fatalf("add link: %v", err)
	}
	if _, err := as.AddLink(atomspace.InheritanceLink, []atomspace.Handle{h["bob"], h["ann"]}, nil); err != nil {
		t.Fatalf("add link: %v", err)
	}
	return as, h
}

func TestMatchBindsVariableAcrossClauses(t *testing.T) {
	as, h := buildFamilyTree(t)
	m := NewMatcher()

	// ?x parent_of bob AND ?x parent_of liz -> expect x=tom only.
	pat := Pattern{
		Variables: map[string]Variable{"x": {Name: "x"}},
		Clauses: []Clause{
			{LinkType: atomspace.InheritanceLink, Outgoing: []Term{VarTerm("x"), HandleTerm(h["bob"])}},
			{LinkType: atomspace.InheritanceLink, Outgoing: []Term{VarTerm("x"), HandleTerm(h["liz"])}},
		},
	}

	res, err := m.Match(context.Background(), as, pat)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(res.Bindings) != 1 {
		t.Fatalf("expected 1 binding, got %d: %+v", len(res.Bindings), res.Bindings)
	}
	if res.Bindings[0]["x"] != h["tom"] {
		t.Fatalf("expected x=tom, got %v", res.Bindings[0]["x"])
	}
}

func TestMatchRepeatedVariableRequiresAgreement(t *testing.T) {
	as, h := buildFamilyTree(t)
	m := NewMatcher()

	// ?x parent_of ?x would require a self-loop, which doesn't exist.
	pat := Pattern{
		Variables: map[string]Variable{"x": {Name: "x"}},
		Clauses: []Clause{
			{LinkType: atomspace.InheritanceLink, Outgoing: []Term{VarTerm("x"), VarTerm("x")}},
		},
	}
	res, err := m.Match(context.Background(), as, pat)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(res.Bindings) != 0 {
		t.Fatalf("expected no self-loop bindings, got %+v", res.Bindings)
	}
	_ = h
}

func TestMatchTypeConstraint(t *testing.T) {
	as := atomspace.New(nil)
	concept, _ := as.AddNode(atomspace.ConceptNode, "thing", nil)
	pred, _ := as.AddNode(atomspace.PredicateNode, "likes", nil)
	if _, err := as.AddLink(atomspace.ListLink, []atomspace.Handle{concept, pred}, nil); err != nil {
		t.Fatalf("add link: %v", err)
	}

	m := NewMatcher()
	pat := Pattern{
		Variables: map[string]Variable{"p": {Name: "p", Type: atomspace.PredicateNode, HasType: true}},
		Clauses: []Clause{
			{LinkType: atomspace.ListLink, Outgoing: []Term{HandleTerm(concept), VarTerm("p")}},
		},
	}
	res, err := m.Match(context.Background(), as, pat)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(res.Bindings) != 1 || res.Bindings[0]["p"] != pred {
		t.Fatalf("expected p=%v, got %+v", pred, res.Bindings)
	}

	// Constraining to ConceptNode instead should yield no matches,
	// since the bound atom is a PredicateNode.
	pat.Variables["p"] = Variable{Name: "p", Type: atomspace.ConceptNode, HasType: true}
	res, err = m.Match(context.Background(), as, pat)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(res.Bindings) != 0 {
		t.Fatalf("expected type constraint to exclude match, got %+v", res.Bindings)
	}
}

func TestMatchUnorderedOutgoing(t *testing.T) {
	as := atomspace.New(nil)
	a, _ := as.AddNode(atomspace.ConceptNode, "a", nil)
	b, _ := as.AddNode(atomspace.ConceptNode, "b", nil)
	if _, err := as.AddLink(atomspace.AndLink, []atomspace.Handle{a, b}, nil); err != nil {
		t.Fatalf("add link: %v", err)
	}

	m := NewMatcher()
	pat := Pattern{
		Variables: map[string]Variable{"x": {Name: "x"}},
		Clauses: []Clause{
			// Query with operands reversed relative to AddLink's call —
			// AndLink is unordered so this must still match.
			{LinkType: atomspace.AndLink, Outgoing: []Term{VarTerm("x"), HandleTerm(a)}},
		},
	}
	res, err := m.Match(context.Background(), as, pat)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(res.Bindings) != 1 || res.Bindings[0]["x"] != b {
		t.Fatalf("expected x=b via commuted match, got %+v", res.Bindings)
	}
}

func TestValidateRejectsUnusedVariable(t *testing.T) {
	pat := Pattern{
		Variables: map[string]Variable{"unused": {Name: "unused"}},
		Clauses: []Clause{
			{LinkType: atomspace.ListLink, Outgoing: []Term{HandleTerm("h1")}},
		},
	}
	if err := pat.Validate(); err == nil {
		t.Fatal("expected malformed-pattern error for unused variable")
	}
}

func TestValidateRejectsUndeclaredVariable(t *testing.T) {
	pat := Pattern{
		Variables: map[string]Variable{},
		Clauses: []Clause{
			{LinkType: atomspace.ListLink, Outgoing: []Term{VarTerm("ghost")}},
		},
	}
	if err := pat.Validate(); err == nil {
		t.Fatal("expected malformed-pattern error for undeclared variable")
	}
}

func TestMatchCancellation(t *testing.T) {
	as, h := buildFamilyTree(t)
	m := NewMatcher()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	time.Sleep(time.Millisecond) // ensure ctx.Done() is observably closed

	pat := Pattern{
		Variables: map[string]Variable{"x": {Name: "x"}},
		Clauses: []Clause{
			{LinkType: atomspace.InheritanceLink, Outgoing: []Term{VarTerm("x"), HandleTerm(h["bob"])}},
		},
	}
	_, err := m.Match(ctx, as, pat)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestMatchNoGroundings(t *testing.T) {
	as := atomspace.New(nil)
	_, _ = as.AddNode(atomspace.ConceptNode, "lonely", nil)
	m := NewMatcher()
	pat := Pattern{
		Variables: map[string]Variable{"x": {Name: "x"}, "y": {Name: "y"}},
		Clauses: []Clause{
			{LinkType: atomspace.InheritanceLink, Outgoing: []Term{VarTerm("x"), VarTerm("y")}},
		},
	}
	res, err := m.Match(context.Background(), as, pat)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(res.Bindings) != 0 {
		t.Fatalf("expected no groundings, got %+v", res.Bindings)
	}
}

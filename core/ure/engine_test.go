package ure

import (
	"context"
	"testing"

	"github.com/EchoCog/atomspace/core/atomspace"
)

func TestForwardChainDeductionClosesTransitivity(t *testing.T) {
	as := atomspace.New(nil)
	tom, _ := as.AddNode(atomspace.ConceptNode, "tom", nil)
	bob, _ := as.AddNode(atomspace.ConceptNode, "bob", nil)
	ann, _ := as.AddNode(atomspace.ConceptNode, "ann", nil)

	strong := atomspace.TruthValue{Strength: 0.9, Confidence: 0.9}
	if _, err := as.AddLink(atomspace.InheritanceLink, []atomspace.Handle{tom, bob}, &strong); err != nil {
		t.Fatalf("add link: %v", err)
	}
	if _, err := as.AddLink(atomspace.InheritanceLink, []atomspace.Handle{bob, ann}, &strong); err != nil {
		t.Fatalf("add link: %v", err)
	}

	engine := New(as, []Rule{Deduction(atomspace.InheritanceLink)}, DefaultConfig)
	derived, steps, err := engine.Forward(context.Background())
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if steps == 0 {
		t.Fatal("expected at least one step to run")
	}
	if len(derived) == 0 {
		t.Fatal("expected at least one derived link")
	}

	tomAnn := atomspace.ComputeLinkHandle(atomspace.InheritanceLink, []atomspace.Handle{tom, ann})
	atom, ok := as.GetAtom(tomAnn)
	if !ok {
		t.Fatal("expected tom->ann to be derived via transitivity")
	}
	tv := atom.TruthValue()
	if tv.Strength <= 0 || tv.Confidence <= 0 {
		t.Fatalf("expected non-trivial truth value, got %+v", tv)
	}
}

func TestForwardChainReachesFixedPoint(t *testing.T) {
	as := atomspace.New(nil)
	a, _ := as.AddNode(atomspace.ConceptNode, "a", nil)
	b, _ := as.AddNode(atomspace.ConceptNode, "b", nil)
	tv := atomspace.TruthValue{Strength: 1, Confidence: 1}
	if _, err := as.AddLink(atomspace.InheritanceLink, []atomspace.Handle{a, b}, &tv); err != nil {
		t.Fatalf("add link: %v", err)
	}

	engine := New(as, []Rule{Deduction(atomspace.InheritanceLink)}, Config{StepBudget: 5, MaxDepth: 5})
	_, steps, err := engine.Forward(context.Background())
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if steps >= 5 {
		t.Fatalf("expected fixed point before exhausting step budget, used all %d steps", steps)
	}
}

func TestProveMemoizesAcrossCalls(t *testing.T) {
	as := atomspace.New(nil)
	tom, _ := as.AddNode(atomspace.ConceptNode, "tom", nil)
	bob, _ := as.AddNode(atomspace.ConceptNode, "bob", nil)
	ann, _ := as.AddNode(atomspace.ConceptNode, "ann", nil)

	strong := atomspace.TruthValue{Strength: 0.9, Confidence: 0.9}
	if _, err := as.AddLink(atomspace.InheritanceLink, []atomspace.Handle{tom, bob}, &strong); err != nil {
		t.Fatalf("add link: %v", err)
	}
	if _, err := as.AddLink(atomspace.InheritanceLink, []atomspace.Handle{bob, ann}, &strong); err != nil {
		t.Fatalf("add link: %v", err)
	}

	engine := New(as, []Rule{Deduction(atomspace.InheritanceLink)}, DefaultConfig)
	goal := Goal{Type: atomspace.InheritanceLink, Outgoing: []atomspace.Handle{tom, ann}}

	tv1, ok1, err := engine.Prove(context.Background(), goal)
	if err != nil || !ok1 {
		t.Fatalf("expected tom->ann provable, ok=%v err=%v", ok1, err)
	}

	engine.memoMu.Lock()
	memoSizeAfterFirst := len(engine.memo)
	engine.memoMu.Unlock()
	if memoSizeAfterFirst == 0 {
		t.Fatal("expected memo to be populated after first prove")
	}

	tv2, ok2, err := engine.Prove(context.Background(), goal)
	if err != nil || !ok2 {
		t.Fatalf("second prove: ok=%v err=%v", ok2, err)
	}
	if tv1 != tv2 {
		t.Fatalf("expected memoized result to match: %+v vs %+v", tv1, tv2)
	}
}

func TestProveFailsWhenUnreachable(t *testing.T) {
	as := atomspace.New(nil)
	a, _ := as.AddNode(atomspace.ConceptNode, "a", nil)
	b, _ := as.AddNode(atomspace.ConceptNode, "b", nil)

	engine := New(as, []Rule{Deduction(atomspace.InheritanceLink)}, DefaultConfig)
	_, ok, err := engine.Prove(context.Background(), Goal{Type: atomspace.InheritanceLink, Outgoing: []atomspace.Handle{a, b}})
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if ok {
		t.Fatal("expected goal to be unprovable with no supporting facts")
	}
}

func TestForwardChainImplicationAppliesRuleTruthValue(t *testing.T) {
	as := atomspace.New(nil)
	fatherOf, _ := as.AddNode(atomspace.PredicateNode, "father_of", nil)
	parentOf, _ := as.AddNode(atomspace.PredicateNode, "parent_of", nil)
	john, _ := as.AddNode(atomspace.ConceptNode, "john", nil)
	bob, _ := as.AddNode(atomspace.ConceptNode, "bob", nil)
	args, _ := as.AddLink(atomspace.ListLink, []atomspace.Handle{john, bob}, nil)

	premiseTV := atomspace.TruthValue{Strength: 1.0, Confidence: 0.95}
	if _, err := as.AddLink(atomspace.EvaluationLink, []atomspace.Handle{fatherOf, args}, &premiseTV); err != nil {
		t.Fatalf("add link: %v", err)
	}

	ruleTV := atomspace.TruthValue{Strength: 1.0, Confidence: 0.9}
	// One forward-chaining step: a second step would re-derive the same
	// conclusion and revise it with itself, raising its confidence.
	oneStep := Config{StepBudget: 1, MaxDepth: DefaultConfig.MaxDepth}
	engine := New(as, []Rule{Implication(atomspace.EvaluationLink, fatherOf, parentOf, ruleTV)}, oneStep)
	if _, _, err := engine.Forward(context.Background()); err != nil {
		t.Fatalf("forward: %v", err)
	}

	concluded := atomspace.ComputeLinkHandle(atomspace.EvaluationLink, []atomspace.Handle{parentOf, args})
	atom, ok := as.GetAtom(concluded)
	if !ok {
		t.Fatal("expected parent_of(john, bob) to be derived")
	}
	tv := atom.TruthValue()
	const epsilon = 1e-9
	if diff := tv.Strength - 1.0; diff > epsilon || diff < -epsilon {
		t.Fatalf("expected strength ~= 1.0, got %v", tv.Strength)
	}
	if diff := tv.Confidence - 0.855; diff > epsilon || diff < -epsilon {
		t.Fatalf("expected confidence ~= 0.855, got %v", tv.Confidence)
	}
}

func TestForwardChainCancellation(t *testing.T) {
	as := atomspace.New(nil)
	a, _ := as.AddNode(atomspace.ConceptNode, "a", nil)
	b, _ := as.AddNode(atomspace.ConceptNode, "b", nil)
	tv := atomspace.TruthValue{Strength: 1, Confidence: 1}
	_, _ = as.AddLink(atomspace.InheritanceLink, []atomspace.Handle{a, b}, &tv)

	engine := New(as, []Rule{Deduction(atomspace.InheritanceLink)}, DefaultConfig)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := engine.Forward(ctx)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}

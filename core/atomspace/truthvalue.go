package atomspace

import "math"

// TruthValue is an immutable probabilistic truth value: a strength in
// [0,1] (how likely the statement is true) paired with a confidence in
// [0,1] (how much evidence backs that estimate). Spec §3/§4.3.
type TruthValue struct {
	Strength   float64
	Confidence float64
}

// DefaultTruthValue is applied when an atom is created without an
// explicit truth value (spec §3: "A default value (1.0, 0.0) applies
// when none is set").
var DefaultTruthValue = TruthValue{Strength: 1.0, Confidence: 0.0}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Clamped returns tv with both fields clamped into [0,1] and NaN
// mapped to 0, guarding against the boundary behaviors spec §8 calls
// out explicitly ("(0,0) and (1,1) survive revision without overflow").
func (tv TruthValue) Clamped() TruthValue {
	return TruthValue{Strength: clamp01(tv.Strength), Confidence: clamp01(tv.Confidence)}
}

// Revise combines two truth values about the same atom into one via
// confidence-weighted averaging, per spec §4.3 ("Revision … weighted
// average by confidence, confidence bounded at 1"). Revision is what
// AddNode/AddLink apply on a duplicate add, never a blind overwrite.
func Revise(a, b TruthValue) TruthValue {
	a, b = a.Clamped(), b.Clamped()
	if a.Confidence == 0 && b.Confidence == 0 {
		// No evidence on either side: average strengths, keep zero confidence.
		return TruthValue{Strength: (a.Strength + b.Strength) / 2, Confidence: 0}
	}
	wa, wb := a.Confidence, b.Confidence
	strength := (a.Strength*wa + b.Strength*wb) / (wa + wb)
	confidence := math.Min(1.0, wa+wb-wa*wb) // probabilistic OR of two confidences, bounded at 1
	return TruthValue{Strength: clamp01(strength), Confidence: clamp01(confidence)}
}

// And computes PLN conjunction: strengths multiply (independence
// assumption), confidence is the weaker of the two (an AND is only as
// certain as its least-certain conjunct).
func And(a, b TruthValue) TruthValue {
	a, b = a.Clamped(), b.Clamped()
	return TruthValue{Strength: a.Strength * b.Strength, Confidence: math.Min(a.Confidence, b.Confidence)}
}

// Or computes PLN disjunction via the inclusion-exclusion identity.
func Or(a, b TruthValue) TruthValue {
	a, b = a.Clamped(), b.Clamped()
	s := a.Strength + b.Strength - a.Strength*b.Strength
	return TruthValue{Strength: clamp01(s), Confidence: math.Min(a.Confidence, b.Confidence)}
}

// Not computes PLN negation: strength flips, confidence is unaffected.
func Not(a TruthValue) TruthValue {
	a = a.Clamped()
	return TruthValue{Strength: 1 - a.Strength, Confidence: a.Confidence}
}

// Deduction implements the PLN deduction formula over an
// (A->B, B->C) premise pair, yielding an estimate for A->C. Ported
// from the teacher's PLNEngine Deduction rule.
func Deduction(ab, bc TruthValue) TruthValue {
	ab, bc = ab.Clamped(), bc.Clamped()
	return TruthValue{
		Strength:   clamp01(ab.Strength * bc.Strength),
		Confidence: clamp01(ab.Confidence * bc.Confidence),
	}
}

// Induction accumulates strength/confidence evidence across a set of
// observations of the same relationship, per the teacher's
// PLNEngine Induction rule, generalized to accept a Count-weighted
// evidence trail via the counts slice (parallel to tvs; a nil slice, or
// an all-equal-weight slice whose weights sum to at least 1, gives the
// unweighted average strength).
func Induction(tvs []TruthValue, counts []float64) TruthValue {
	if len(tvs) == 0 {
		return TruthValue{Strength: 0.5, Confidence: 0}
	}
	totalCount := 0.0
	totalStrength := 0.0
	for i, tv := range tvs {
		tv = tv.Clamped()
		c := 1.0
		if counts != nil && i < len(counts) {
			c = counts[i]
		}
		totalCount += c
		totalStrength += tv.Strength * c
	}
	avgStrength := totalStrength / math.Max(totalCount, 1.0)
	confidence := math.Min(totalCount/100.0, 1.0)
	return TruthValue{Strength: clamp01(avgStrength), Confidence: clamp01(confidence)}
}

// Abduction implements (A->B, B) |- A with reduced confidence relative
// to straight deduction, per the teacher's PLNEngine Abduction rule.
func Abduction(ab, b TruthValue) TruthValue {
	ab, b = ab.Clamped(), b.Clamped()
	return TruthValue{
		Strength:   clamp01(ab.Strength * b.Strength),
		Confidence: clamp01(ab.Confidence * 0.5),
	}
}

// ModusPonens estimates B's truth value from A and A->B, the
// inference spec §4.6 names explicitly ("modus ponens") that the
// teacher's three-rule catalog never implemented.
func ModusPonens(a, ab TruthValue) TruthValue {
	a, ab = a.Clamped(), ab.Clamped()
	return TruthValue{
		Strength:   clamp01(a.Strength * ab.Strength),
		Confidence: clamp01(a.Confidence * ab.Confidence),
	}
}

// Inversion estimates B->A's truth value from A->B and the marginal
// strengths of A and B, via a Bayes'-rule-style identity, returning
// (0.5, 0) instead of dividing by zero when priorB is 0 (spec §4.3: "treat edge
// cases … without NaN propagation").
func Inversion(ab TruthValue, priorA, priorB float64) TruthValue {
	ab = ab.Clamped()
	priorA, priorB = clamp01(priorA), clamp01(priorB)
	if priorB == 0 {
		return TruthValue{Strength: 0.5, Confidence: 0}
	}
	strength := clamp01(ab.Strength * priorA / priorB)
	return TruthValue{Strength: strength, Confidence: ab.Confidence}
}

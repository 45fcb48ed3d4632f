package pattern

import (
	"sort"

	"github.com/EchoCog/atomspace/core/atomspace"
)

// plan is a Pattern's clauses reordered for evaluation: most selective
// (fewest current candidates) first, so backtracking prunes dead
// branches as early as possible (spec §4.5 "join-plan compilation …
// ordered by selectivity"). Plans are cheap to recompute per call —
// candidate counts are graph-state-dependent — but the ordering itself
// is cached per distinct Pattern shape via planCache.
type plan struct {
	clauses []Clause
	order   []int // ordered[i] = original Clauses[order[i]]
}

func compilePlan(as *atomspace.AtomSpace, p Pattern) plan {
	type scored struct {
		origIdx int
		count   int
	}
	scoredClauses := make([]scored, len(p.Clauses))
	for i, c := range p.Clauses {
		scoredClauses[i] = scored{origIdx: i, count: len(as.GetByType(c.LinkType, false))}
	}
	sort.SliceStable(scoredClauses, func(i, j int) bool {
		return scoredClauses[i].count < scoredClauses[j].count
	})
	order := make([]int, len(scoredClauses))
	clauses := make([]Clause, len(scoredClauses))
	for i, sc := range scoredClauses {
		order[i] = sc.origIdx
		clauses[i] = p.Clauses[sc.origIdx]
	}
	return plan{clauses: clauses, order: order}
}

package pattern

import (
	"context"
	"sort"

	"github.com/EchoCog/atomspace/core/atomspace"
)

// Matcher runs queries against one AtomSpace, caching join-plan
// orderings across calls (spec §4.5).
type Matcher struct {
	plans *planCache
}

// NewMatcher constructs a Matcher.
func NewMatcher() *Matcher {
	return &Matcher{plans: newPlanCache()}
}

// frame is one level of the explicit backtracking stack: the binding
// state entering this clause, the clause's current candidate handles,
// and the next untried candidate index. Using an explicit stack rather
// than recursion means Match can check ctx between every candidate
// attempt without plumbing cancellation through call frames (spec §4.5
// "explicit binding stack … for cancellation support").
type frame struct {
	binding    Binding
	candidates []atomspace.Handle
	next       int
}

// Match finds every binding that simultaneously satisfies every clause
// of p against as. Returns ErrMalformedPattern / ErrUnknownType from
// Pattern.Validate without attempting any matching, and ErrCancelled
// if ctx is done before the search completes.
func (m *Matcher) Match(ctx context.Context, as *atomspace.AtomSpace, p Pattern) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	pl := m.plans.get(as, p)
	clauses := pl.clauses

	seen := make(map[string]bool)
	var out []Binding
	var outClauses [][]atomspace.Handle

	// current[d] holds the handle matched against clauses[d] on the
	// path currently being explored; always written before being read
	// since a depth is only consulted after its own frame succeeded.
	current := make([]atomspace.Handle, len(clauses))

	stack := []*frame{{
		binding:    Binding{},
		candidates: as.GetByType(clauses[0].LinkType, false),
	}}

	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			return Result{}, atomspace.ErrCancelled
		default:
		}

		top := stack[len(stack)-1]
		depth := len(stack) - 1

		if top.next >= len(top.candidates) {
			stack = stack[:len(stack)-1]
			continue
		}

		candidate := top.candidates[top.next]
		top.next++

		atom, ok := as.GetAtom(candidate)
		if !ok {
			continue
		}
		binding, ok := bindClause(as, p, clauses[depth], atom, top.binding)
		if !ok {
			continue
		}
		current[depth] = candidate

		if depth == len(clauses)-1 {
			key := bindingKey(binding)
			if !seen[key] {
				seen[key] = true
				out = append(out, binding)
				outClauses = append(outClauses, toOriginalOrder(current, pl.order))
			}
			continue
		}

		stack = append(stack, &frame{
			binding:    binding,
			candidates: as.GetByType(clauses[depth+1].LinkType, false),
		})
	}

	return Result{Bindings: out, ClauseHandles: outClauses}, nil
}

// toOriginalOrder re-indexes a plan-order handle slice back to the
// order the caller declared Pattern.Clauses in, so rule authors (the
// rule engine) can line premise truth values up against the Rule's own
// premise list rather than the selectivity-driven evaluation order.
func toOriginalOrder(planOrderHandles []atomspace.Handle, order []int) []atomspace.Handle {
	out := make([]atomspace.Handle, len(planOrderHandles))
	for planIdx, origIdx := range order {
		out[origIdx] = planOrderHandles[planIdx]
	}
	return out
}

// bindClause attempts to match atom (known to have clause's LinkType)
// against clause's outgoing term pattern, starting from an existing
// binding. Returns the extended binding and true on success. Variables
// seen for the first time are checked against any declared type
// constraint (spec §4.5 "type-constrained variable binding"); variable
// occurrences after the first must resolve to the same handle every
// time — this fixes the teacher's matchClause, which bound repeated
// pattern variables independently per occurrence instead of requiring
// agreement across them.
func bindClause(as *atomspace.AtomSpace, p Pattern, clause Clause, atom *atomspace.Atom, base Binding) (Binding, bool) {
	if atom.Arity() != len(clause.Outgoing) {
		return nil, false
	}
	outgoing := atom.Outgoing()

	if isUnordered(clause.LinkType) {
		return bindUnordered(as, p, clause.Outgoing, outgoing, base)
	}
	return bindOrdered(as, p, clause.Outgoing, outgoing, base)
}

func bindOrdered(as *atomspace.AtomSpace, p Pattern, terms []Term, handles []atomspace.Handle, base Binding) (Binding, bool) {
	binding := cloneBinding(base)
	for i, term := range terms {
		if !tryBindTerm(as, p, term, handles[i], binding) {
			return nil, false
		}
	}
	return binding, true
}

// bindUnordered handles clause link types whose outgoing sequence is
// commutative (AndLink/OrLink): any permutation of handles may satisfy
// the term sequence. Arity is small in practice, so a straightforward
// backtracking assignment (try each remaining handle for each
// remaining term) is sufficient.
func bindUnordered(as *atomspace.AtomSpace, p Pattern, terms []Term, handles []atomspace.Handle, base Binding) (Binding, bool) {
	used := make([]bool, len(handles))
	binding := cloneBinding(base)

	var assign func(termIdx int) bool
	assign = func(termIdx int) bool {
		if termIdx == len(terms) {
			return true
		}
		term := terms[termIdx]
		for i, h := range handles {
			if used[i] {
				continue
			}
			snapshot := cloneBinding(binding)
			if !tryBindTerm(as, p, term, h, binding) {
				binding = snapshot
				continue
			}
			used[i] = true
			if assign(termIdx + 1) {
				return true
			}
			used[i] = false
			binding = snapshot
		}
		return false
	}

	if !assign(0) {
		return nil, false
	}
	return binding, true
}

func tryBindTerm(as *atomspace.AtomSpace, p Pattern, term Term, handle atomspace.Handle, binding Binding) bool {
	if !term.IsVar() {
		return term.Handle == handle
	}
	if existing, ok := binding[term.Var]; ok {
		return existing == handle
	}
	if v, ok := p.Variables[term.Var]; ok && v.HasType {
		bound, ok := as.GetAtom(handle)
		if !ok || !atomspace.IsA(bound.Type(), v.Type) {
			return false
		}
	}
	binding[term.Var] = handle
	return true
}

func cloneBinding(b Binding) Binding {
	out := make(Binding, len(b)+1)
	for k, v := range b {
		out[k] = v
	}
	return out
}

func bindingKey(b Binding) string {
	names := make([]string, 0, len(b))
	for n := range b {
		names = append(names, n)
	}
	sort.Strings(names)
	key := ""
	for _, n := range names {
		key += n + "=" + string(b[n]) + ";"
	}
	return key
}

func isUnordered(t atomspace.AtomType) bool {
	return t == atomspace.AndLink || t == atomspace.OrLink
}

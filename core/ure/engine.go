package ure

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/EchoCog/atomspace/core/atomspace"
	"github.com/EchoCog/atomspace/core/pattern"
)

// Config bounds how much work a chaining call may do before giving up,
// per spec §6 ("chain_step_budget") and §4.6 ("max depth").
type Config struct {
	StepBudget int // forward chaining: max fixed-point iterations
	MaxDepth   int // backward chaining: max recursive premise depth
}

// DefaultConfig matches the teacher's ChainEngine defaults
// (MaxDepth: 10), generalized with a forward step budget.
var DefaultConfig = Config{StepBudget: 20, MaxDepth: 10}

// memoEntry caches one goal's proof outcome across Prove calls until
// ResetMemo clears it (Forward does so whenever a step adds atoms) —
// not reset per Prove call, unlike the teacher's ChainEngine
// which zeroed its Visited set on every Execute and so never actually
// memoized anything across the chaining session it was supposedly
// guarding against re-exploring.
type memoEntry struct {
	tv atomspace.TruthValue
	ok bool
}

// Engine runs forward and backward chaining over a rule catalog
// against one AtomSpace (spec §4.6).
type Engine struct {
	as      *atomspace.AtomSpace
	matcher *pattern.Matcher
	rules   []Rule
	cfg     Config

	memoMu sync.Mutex
	memo   map[string]memoEntry

	// OnCooccurrence, when set, is called once per unordered pair of
	// premise handles grounding a successful forward-chain conclusion.
	// The attention bank's Hebbian diffusion wires this in (spec §4.7:
	// "inference observer informs the bank").
	OnCooccurrence func(a, b atomspace.Handle)
}

// New constructs an Engine over as with the given rule catalog.
func New(as *atomspace.AtomSpace, rules []Rule, cfg Config) *Engine {
	return &Engine{
		as:      as,
		matcher: pattern.NewMatcher(),
		rules:   rules,
		cfg:     cfg,
		memo:    make(map[string]memoEntry),
	}
}

// ResetMemo discards cached proof outcomes — call after a batch of
// AddNode/AddLink/RemoveAtom/SetTruthValue calls invalidates them.
func (e *Engine) ResetMemo() {
	e.memoMu.Lock()
	e.memo = make(map[string]memoEntry)
	e.memoMu.Unlock()
}

// groundedConclusion is one rule application's fully resolved output,
// ready to add to the AtomSpace.
type groundedConclusion struct {
	typ      atomspace.AtomType
	outgoing []atomspace.Handle
	tv       atomspace.TruthValue
}

// Forward runs forward chaining to a fixed point or until cfg's step
// budget is exhausted, whichever comes first (spec §4.6). Each step
// takes the rules in order: it matches the rule's premises against the
// current AtomSpace state, grounds every solution concurrently
// (golang.org/x/sync/errgroup, since grounding a conclusion is pure
// computation that only touches the AtomSpace for reads), and adds the
// grounded conclusions before moving on to the next rule. A step that
// adds no new atom ends the run; it still re-adds, and so revises, the
// conclusions it derived again. Returns the handles added or revised
// across all steps and the number of steps actually run.
func (e *Engine) Forward(ctx context.Context) (derived []atomspace.Handle, steps int, err error) {
	for step := 0; step < e.cfg.StepBudget; step++ {
		select {
		case <-ctx.Done():
			return derived, step, atomspace.ErrCancelled
		default:
		}

		sizeBefore := e.as.Size()

		for _, rule := range e.rules {
			res, err := e.matcher.Match(ctx, e.as, rule.Premises)
			if err != nil {
				return derived, step, fmt.Errorf("forward chain rule %s: %w", rule.Name, err)
			}
			if len(res.Bindings) == 0 {
				continue
			}

			grounded := make([]groundedConclusion, len(res.Bindings))
			g, gctx := errgroup.WithContext(ctx)
			for i := range res.Bindings {
				i := i
				g.Go(func() error {
					select {
					case <-gctx.Done():
						return atomspace.ErrCancelled
					default:
					}
					typ, outgoing, tv, err := rule.ground(e.as, res.Bindings[i], res.ClauseHandles[i])
					if err != nil {
						return err
					}
					grounded[i] = groundedConclusion{typ: typ, outgoing: outgoing, tv: tv}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return derived, step, fmt.Errorf("forward chain rule %s: %w", rule.Name, err)
			}

			for i, gc := range grounded {
				h, err := e.as.AddLink(gc.typ, gc.outgoing, &gc.tv)
				if err != nil {
					continue // dangling reference: premise atoms removed mid-run
				}
				derived = append(derived, h)
				e.notifyCooccurrence(res.ClauseHandles[i])
			}
		}

		if e.as.Size() == sizeBefore {
			return derived, step + 1, nil // fixed point
		}
		e.ResetMemo() // new facts can open new backward-chain proofs
	}
	return derived, e.cfg.StepBudget, nil
}

// Goal names a link (by type + fully concrete outgoing sequence) whose
// truth value backward chaining should establish.
type Goal struct {
	Type     atomspace.AtomType
	Outgoing []atomspace.Handle
}

func goalSignature(g Goal) string {
	s := fmt.Sprintf("%d:%d:", g.Type, len(g.Outgoing))
	for _, h := range g.Outgoing {
		s += string(h) + ","
	}
	return s
}

// Prove runs backward chaining for goal (spec §4.6 "backward
// chaining"): if an atom with goal's exact content already exists, its
// truth value is returned directly; otherwise every rule concluding
// goal's link type is tried, unifying the rule's conclusion template
// against goal's outgoing sequence and recursively proving each
// premise — existentially-bound premise variables are resolved by
// searching the AtomSpace's existing atoms of the relevant type.
// Results are memoized across calls until ResetMemo (see memoEntry).
func (e *Engine) Prove(ctx context.Context, goal Goal) (atomspace.TruthValue, bool, error) {
	return e.prove(ctx, goal, 0)
}

func (e *Engine) prove(ctx context.Context, goal Goal, depth int) (atomspace.TruthValue, bool, error) {
	select {
	case <-ctx.Done():
		return atomspace.TruthValue{}, false, atomspace.ErrCancelled
	default:
	}
	if depth > e.cfg.MaxDepth {
		return atomspace.TruthValue{}, false, nil
	}

	sig := goalSignature(goal)
	e.memoMu.Lock()
	if cached, ok := e.memo[sig]; ok {
		e.memoMu.Unlock()
		return cached.tv, cached.ok, nil
	}
	e.memoMu.Unlock()

	h := atomspace.ComputeLinkHandle(goal.Type, goal.Outgoing)
	if atom, ok := e.as.GetAtom(h); ok {
		tv := atom.TruthValue()
		e.storeMemo(sig, tv, true)
		return tv, true, nil
	}

	for _, rule := range e.rules {
		if rule.Conclusion.LinkType != goal.Type {
			continue
		}
		binding, ok := unifyConclusion(rule.Conclusion, goal.Outgoing)
		if !ok {
			continue
		}
		tvs, ok, err := e.provePremises(ctx, rule, binding, 0, depth)
		if err != nil {
			return atomspace.TruthValue{}, false, err
		}
		if ok {
			tv := rule.Formula(tvs)
			e.storeMemo(sig, tv, true)
			return tv, true, nil
		}
	}

	e.storeMemo(sig, atomspace.TruthValue{}, false)
	return atomspace.TruthValue{}, false, nil
}

func (e *Engine) notifyCooccurrence(clauseHandles []atomspace.Handle) {
	if e.OnCooccurrence == nil {
		return
	}
	for i := 0; i < len(clauseHandles); i++ {
		for j := i + 1; j < len(clauseHandles); j++ {
			e.OnCooccurrence(clauseHandles[i], clauseHandles[j])
		}
	}
}

func (e *Engine) storeMemo(sig string, tv atomspace.TruthValue, ok bool) {
	e.memoMu.Lock()
	e.memo[sig] = memoEntry{tv: tv, ok: ok}
	e.memoMu.Unlock()
}

// provePremises proves rule.Premises.Clauses[idx:] under binding,
// returning their truth values in clause order on success. A premise
// whose terms are all resolved by binding is itself a goal to prove
// (possibly a known fact, possibly derivable by another rule); a
// premise with remaining free variables is resolved by enumerating the
// AtomSpace's existing atoms of that clause's link type and trying
// each as the existential witness.
func (e *Engine) provePremises(ctx context.Context, rule Rule, binding pattern.Binding, idx, depth int) ([]atomspace.TruthValue, bool, error) {
	if idx == len(rule.Premises.Clauses) {
		return nil, true, nil
	}
	clause := rule.Premises.Clauses[idx]

	resolved := make([]atomspace.Handle, len(clause.Outgoing))
	fullyResolved := true
	for i, term := range clause.Outgoing {
		if term.IsVar() {
			if h, ok := binding[term.Var]; ok {
				resolved[i] = h
			} else {
				fullyResolved = false
			}
		} else {
			resolved[i] = term.Handle
		}
	}

	if fullyResolved {
		tv, ok, err := e.prove(ctx, Goal{Type: clause.LinkType, Outgoing: resolved}, depth+1)
		if err != nil || !ok {
			return nil, false, err
		}
		rest, ok, err := e.provePremises(ctx, rule, binding, idx+1, depth)
		if err != nil || !ok {
			return nil, false, err
		}
		return append([]atomspace.TruthValue{tv}, rest...), true, nil
	}

	for _, h := range e.as.GetByType(clause.LinkType, false) {
		select {
		case <-ctx.Done():
			return nil, false, atomspace.ErrCancelled
		default:
		}
		atom, ok := e.as.GetAtom(h)
		if !ok || atom.Arity() != len(clause.Outgoing) {
			continue
		}
		outgoing := atom.Outgoing()

		candidateBinding := cloneBindingURE(binding)
		matched := true
		for i, term := range clause.Outgoing {
			if term.IsVar() {
				if existing, ok := candidateBinding[term.Var]; ok {
					if existing != outgoing[i] {
						matched = false
						break
					}
				} else {
					candidateBinding[term.Var] = outgoing[i]
				}
			} else if term.Handle != outgoing[i] {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}

		rest, ok, err := e.provePremises(ctx, rule, candidateBinding, idx+1, depth)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return append([]atomspace.TruthValue{atom.TruthValue()}, rest...), true, nil
		}
	}
	return nil, false, nil
}

func unifyConclusion(conclusion pattern.Clause, target []atomspace.Handle) (pattern.Binding, bool) {
	if len(conclusion.Outgoing) != len(target) {
		return nil, false
	}
	binding := pattern.Binding{}
	for i, term := range conclusion.Outgoing {
		if term.IsVar() {
			if existing, ok := binding[term.Var]; ok {
				if existing != target[i] {
					return nil, false
				}
			} else {
				binding[term.Var] = target[i]
			}
		} else if term.Handle != target[i] {
			return nil, false
		}
	}
	return binding, true
}

func cloneBindingURE(b pattern.Binding) pattern.Binding {
	out := make(pattern.Binding, len(b)+1)
	for k, v := range b {
		out[k] = v
	}
	return out
}

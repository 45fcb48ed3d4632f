// Package ecan implements the attention bank and its dynamics: fund
// accounting, stimulation, rent collection, neighbor and Hebbian
// diffusion, and forgetting (spec §4.7). Grounded on the teacher's
// AttentionBank/SpreadAttention/Forget trio, generalized from a
// string-ID heap-tracked prototype into a fund-conserving cycle engine
// over the content-addressed AtomSpace, with the neighbor graph kept
// as an explicit gonum graph rather than recomputed by scanning every
// link on every diffusion cycle.
package ecan

import (
	"gonum.org/v1/gonum/graph/simple"

	"github.com/EchoCog/atomspace/core/atomspace"
)

// neighborGraph mirrors the AtomSpace's "connected via any Link"
// adjacency (spec §4.7 "neighbor diffusion") as an explicit weighted
// undirected graph, maintained incrementally via the AtomSpace
// observer hook rather than rebuilt by scanning every link each cycle.
type neighborGraph struct {
	g       *simple.WeightedUndirectedGraph
	ids     map[atomspace.Handle]int64
	handles map[int64]atomspace.Handle
	nextID  int64

	// hebbian records a multiplicative spread-coefficient boost between
	// pairs of atoms that have co-occurred as premises in a successful
	// inference (spec §4.7 "Hebbian diffusion"). Keyed by the pair's two
	// handles in a fixed (sorted) order so (a,b) and (b,a) collide.
	hebbian map[[2]atomspace.Handle]float64
}

func newNeighborGraph() *neighborGraph {
	return &neighborGraph{
		g:       simple.NewWeightedUndirectedGraph(0, 0),
		ids:     make(map[atomspace.Handle]int64),
		handles: make(map[int64]atomspace.Handle),
		hebbian: make(map[[2]atomspace.Handle]float64),
	}
}

func (ng *neighborGraph) ensureNode(h atomspace.Handle) int64 {
	if id, ok := ng.ids[h]; ok {
		return id
	}
	id := ng.nextID
	ng.nextID++
	ng.ids[h] = id
	ng.handles[id] = h
	ng.g.AddNode(simple.Node(id))
	return id
}

func (ng *neighborGraph) removeNode(h atomspace.Handle) {
	id, ok := ng.ids[h]
	if !ok {
		return
	}
	ng.g.RemoveNode(id)
	delete(ng.ids, h)
	delete(ng.handles, id)
}

// connectOutgoing links every pair of a link atom's outgoing handles,
// the graph-neighbor relation spec §4.7 defines as "atoms connected
// via any Link". Self-loops (an atom appearing more than once in its
// own link's outgoing, or a link with a single outgoing handle) are
// skipped per spec's diffusion rule.
func (ng *neighborGraph) connectOutgoing(outgoing []atomspace.Handle) {
	ids := make([]int64, len(outgoing))
	for i, h := range outgoing {
		ids[i] = ng.ensureNode(h)
	}
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			if ids[i] == ids[j] {
				continue
			}
			if ng.g.HasEdgeBetween(ids[i], ids[j]) {
				continue
			}
			ng.g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(ids[i]), T: simple.Node(ids[j]), W: 1.0})
		}
	}
}

// neighbors returns every atom directly graph-connected to h.
func (ng *neighborGraph) neighbors(h atomspace.Handle) []atomspace.Handle {
	id, ok := ng.ids[h]
	if !ok {
		return nil
	}
	it := ng.g.From(id)
	out := make([]atomspace.Handle, 0, it.Len())
	for it.Next() {
		out = append(out, ng.handles[it.Node().ID()])
	}
	return out
}

func hebbianKey(a, b atomspace.Handle) [2]atomspace.Handle {
	if a <= b {
		return [2]atomspace.Handle{a, b}
	}
	return [2]atomspace.Handle{b, a}
}

// recordCooccurrence boosts the spread coefficient between a and b,
// called by an inference engine's Hebbian hook when the pair
// co-occurs as premises in a successful rule application.
func (ng *neighborGraph) recordCooccurrence(a, b atomspace.Handle, boost float64) {
	if a == b {
		return
	}
	key := hebbianKey(a, b)
	cur, ok := ng.hebbian[key]
	if !ok {
		cur = 1.0
	}
	ng.hebbian[key] = cur * boost
}

func (ng *neighborGraph) weight(a, b atomspace.Handle) float64 {
	if w, ok := ng.hebbian[hebbianKey(a, b)]; ok {
		return w
	}
	return 1.0
}

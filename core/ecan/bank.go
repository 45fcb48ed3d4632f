package ecan

import (
	"fmt"
	"sync"

	"github.com/EchoCog/atomspace/core/atomspace"
)

// Config parameterizes one Bank's fund ceilings and cycle
// coefficients (spec §6: sti_fund, lti_fund, forgetting_threshold_sti,
// rent_rate_sti, rent_rate_lti, spread_fraction, sti_threshold_spread).
type Config struct {
	STIFund int64
	LTIFund int64

	ThresholdSTI int16 // rent is paid on STI above this
	ThresholdLTI int16 // rent is paid on LTI above this
	RentRateSTI  float64
	RentRateLTI  float64

	ForgettingThresholdSTI int16 // below this (and no VLTI pin), evict

	SpreadThresholdSTI int16 // diffusion only spreads STI above this
	SpreadFraction     float64
}

// DefaultConfig matches the fund ceilings the spec calls out as the
// default (10,000 each) with conservative cycle coefficients.
var DefaultConfig = Config{
	STIFund:                10000,
	LTIFund:                10000,
	ThresholdSTI:           100,
	ThresholdLTI:           100,
	RentRateSTI:            0.1,
	RentRateLTI:            0.1,
	ForgettingThresholdSTI: -50,
	SpreadThresholdSTI:     50,
	SpreadFraction:         0.2,
}

// Bank is the process-local attention bank (spec §4.7): STI/LTI fund
// ceilings, the map from Handle to AttentionValue (aliased through the
// AtomSpace's own atom slots), and the neighbor graph diffusion reads.
// Fund accounting is a single mutable pair guarded by bankMu — the
// spec explicitly calls out not distributing this further, since
// attention-math throughput was never the bottleneck in the source.
type Bank struct {
	as  *atomspace.AtomSpace
	cfg Config

	bankMu  sync.Mutex
	stiFund int64
	ltiFund int64

	graph *neighborGraph
}

// New constructs a Bank over as, seeds the funds from cfg, connects
// the neighbor graph for every link already in as, and subscribes to
// AtomSpace lifecycle events to keep the graph in sync incrementally
// (spec §4.1 "Change-notification contract").
func New(as *atomspace.AtomSpace, cfg Config) *Bank {
	b := &Bank{
		as:      as,
		cfg:     cfg,
		stiFund: cfg.STIFund,
		ltiFund: cfg.LTIFund,
		graph:   newNeighborGraph(),
	}
	as.Subscribe(atomspace.ObserverFunc(b.onEvent))
	for _, h := range as.AllHandles() {
		if atom, ok := as.GetAtom(h); ok && atom.IsLink() {
			b.bankMu.Lock()
			b.graph.connectOutgoing(atom.Outgoing())
			b.bankMu.Unlock()
		}
	}
	return b
}

func (b *Bank) onEvent(e atomspace.Event) {
	switch e.Kind {
	case atomspace.EventAdd:
		if e.Atom.IsLink() {
			b.bankMu.Lock()
			b.graph.connectOutgoing(e.Atom.Outgoing())
			b.bankMu.Unlock()
		}
	case atomspace.EventRemove:
		b.bankMu.Lock()
		b.graph.removeNode(e.Atom.Handle())
		b.bankMu.Unlock()
	}
}

// RecordCooccurrence boosts the Hebbian spread coefficient between a
// and b. An inference engine calls this when the pair co-occurred as
// premises in a successful rule application (spec §4.7 "Hebbian
// diffusion … implemented as a multiplicative boost on the spread
// coefficient between such pairs").
func (b *Bank) RecordCooccurrence(a, bHandle atomspace.Handle, boost float64) {
	b.bankMu.Lock()
	defer b.bankMu.Unlock()
	b.graph.recordCooccurrence(a, bHandle, boost)
}

// Funds returns the current STI and LTI fund levels.
func (b *Bank) Funds() (sti, lti int64) {
	b.bankMu.Lock()
	defer b.bankMu.Unlock()
	return b.stiFund, b.ltiFund
}

// Stimulate transfers amount STI from the fund to h's attention value
// (spec §4.7 "stimulate"). When clamp is true, a transfer that would
// exceed the available fund is reduced to whatever remains (returning
// the amount actually transferred); when clamp is false, an
// insufficient fund instead returns ErrFundInsufficient and the bank
// and atom are left unchanged.
func (b *Bank) Stimulate(h atomspace.Handle, amount int16, clamp bool) (int16, error) {
	if amount <= 0 {
		return 0, nil
	}
	atom, ok := b.as.GetAtom(h)
	if !ok {
		return 0, fmt.Errorf("stimulate %s: %w", h, atomspace.ErrNotFound)
	}

	b.bankMu.Lock()
	transfer := int64(amount)
	if transfer > b.stiFund {
		if !clamp {
			b.bankMu.Unlock()
			return 0, fmt.Errorf("stimulate %s by %d: %w", h, amount, atomspace.ErrFundInsufficient)
		}
		transfer = b.stiFund
	}
	b.stiFund -= transfer
	b.bankMu.Unlock()

	av := atom.AttentionValue()
	av.STI = clampSTI64(int64(av.STI) + transfer)
	if err := b.as.SetAttentionValue(h, av); err != nil {
		// Roll the fund back; the atom vanished between GetAtom and here.
		b.bankMu.Lock()
		b.stiFund += transfer
		b.bankMu.Unlock()
		return 0, err
	}
	return int16(transfer), nil
}

func clampSTI64(v int64) int16 {
	const maxI16 = int64(1<<15 - 1)
	const minI16 = -int64(1 << 15)
	if v > maxI16 {
		return int16(maxI16)
	}
	if v < minI16 {
		return int16(minI16)
	}
	return int16(v)
}

package ecan

import (
	"context"
	"sort"

	"github.com/EchoCog/atomspace/core/atomspace"
)

// CycleReport summarizes one stimulate/diffuse/rent/forget cycle, for
// callers (the allocation engine's caller, tests, the CLI) that want
// visibility without re-deriving it from Funds()/AtomSpace.Size().
type CycleReport struct {
	RentCollectedSTI int64
	RentCollectedLTI int64
	Diffused         int64
	Forgotten        int
}

// RentCycle charges every atom above the STI/LTI rent thresholds rent
// proportional to its excess over the threshold, crediting the fund
// (spec §4.7 "Rent cycle"). Rent is floored to an integer per atom so
// the fund never gains fractional STI/LTI it can't later redistribute.
func (b *Bank) RentCycle() (stiCollected, ltiCollected int64) {
	for _, h := range b.as.AllHandles() {
		atom, ok := b.as.GetAtom(h)
		if !ok {
			continue
		}
		av := atom.AttentionValue()
		changed := false

		if av.STI > b.cfg.ThresholdSTI {
			rent := int64(b.cfg.RentRateSTI * float64(av.STI-b.cfg.ThresholdSTI))
			if rent > 0 {
				av.STI = clampSTI64(int64(av.STI) - rent)
				stiCollected += rent
				changed = true
			}
		}
		if av.LTI > b.cfg.ThresholdLTI {
			rent := int64(b.cfg.RentRateLTI * float64(av.LTI-b.cfg.ThresholdLTI))
			if rent > 0 {
				av.LTI = clampSTI64(int64(av.LTI) - rent)
				ltiCollected += rent
				changed = true
			}
		}
		if changed {
			_ = b.as.SetAttentionValue(h, av)
		}
	}

	b.bankMu.Lock()
	b.stiFund += stiCollected
	b.ltiFund += ltiCollected
	b.bankMu.Unlock()
	return stiCollected, ltiCollected
}

// DiffuseCycle runs neighbor diffusion (spec §4.7 "Diffusion cycle"):
// every atom with STI above the spread threshold distributes
// spread_fraction * STI among its graph neighbors, weighted by any
// Hebbian boost recorded between the pair, skipping self (an atom is
// never its own neighbor). Distribution uses the largest-remainder
// method so the integer amounts handed to neighbors sum to exactly the
// amount subtracted from the source — the invariant spec §8's
// "attention diffusion conservation" scenario exercises directly.
func (b *Bank) DiffuseCycle() (totalDiffused int64) {
	sources := b.as.AllHandles()
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })

	for _, h := range sources {
		atom, ok := b.as.GetAtom(h)
		if !ok {
			continue
		}
		av := atom.AttentionValue()
		if av.STI <= b.cfg.SpreadThresholdSTI {
			continue
		}

		b.bankMu.Lock()
		neighbors := b.graph.neighbors(h)
		weights := make([]float64, len(neighbors))
		sum := 0.0
		for i, n := range neighbors {
			weights[i] = b.graph.weight(h, n)
			sum += weights[i]
		}
		b.bankMu.Unlock()
		if len(neighbors) == 0 || sum <= 0 {
			continue
		}

		toSpread := int64(b.cfg.SpreadFraction * float64(av.STI))
		if toSpread <= 0 {
			continue
		}

		shares := allocateLargestRemainder(toSpread, weights)

		newSTI := av.STI
		for i, n := range neighbors {
			share := shares[i]
			if share == 0 {
				continue
			}
			nAtom, ok := b.as.GetAtom(n)
			if !ok {
				continue
			}
			nav := nAtom.AttentionValue()
			nav.STI = clampSTI64(int64(nav.STI) + share)
			if err := b.as.SetAttentionValue(n, nav); err != nil {
				continue
			}
			newSTI = clampSTI64(int64(newSTI) - share)
			totalDiffused += share
		}
		av.STI = newSTI
		_ = b.as.SetAttentionValue(h, av)
	}
	return totalDiffused
}

// allocateLargestRemainder splits total across weights proportionally,
// rounding down then distributing the leftover units (at most
// len(weights) of them) to the entries with the largest fractional
// remainder, so sum(result) == total exactly.
func allocateLargestRemainder(total int64, weights []float64) []int64 {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	out := make([]int64, len(weights))
	if sum <= 0 {
		return out
	}

	type rem struct {
		idx  int
		frac float64
	}
	remainders := make([]rem, len(weights))
	allocated := int64(0)
	for i, w := range weights {
		exact := float64(total) * w / sum
		floor := int64(exact)
		out[i] = floor
		allocated += floor
		remainders[i] = rem{idx: i, frac: exact - float64(floor)}
	}

	sort.Slice(remainders, func(i, j int) bool { return remainders[i].frac > remainders[j].frac })
	leftover := total - allocated
	for i := int64(0); i < leftover && int(i) < len(remainders); i++ {
		out[remainders[i].idx]++
	}
	return out
}

// ForgetCycle evicts every atom whose STI has fallen below the
// forgetting threshold and is not VLTI-pinned (spec §4.7 "Atoms whose
// STI falls below a forgetting threshold ... are candidates for
// eviction"). Its STI is returned to the fund first so forgetting
// never silently destroys attention mass. Eviction is non-recursive:
// an atom still referenced by a surviving link is skipped rather than
// cascading, since forgetting is a resource-reclamation pass, not a
// semantic delete.
func (b *Bank) ForgetCycle() int {
	forgotten := 0
	for _, h := range b.as.AllHandles() {
		atom, ok := b.as.GetAtom(h)
		if !ok {
			continue
		}
		av := atom.AttentionValue()
		if av.VLTI || av.STI >= b.cfg.ForgettingThresholdSTI {
			continue
		}

		b.bankMu.Lock()
		b.stiFund += int64(av.STI)
		b.bankMu.Unlock()

		removed, err := b.as.RemoveAtom(h, false)
		if err != nil || !removed {
			// Still referenced; give its STI back and leave it be.
			b.bankMu.Lock()
			b.stiFund -= int64(av.STI)
			b.bankMu.Unlock()
			continue
		}
		forgotten++
	}
	return forgotten
}

// RunCycles drives the allocation engine's stimulate -> diffuse ->
// rent -> forget loop for n cycles (spec §4.7 "Allocation engine"),
// checking ctx between cycles for cancellation. Stimulation itself is
// the caller's responsibility (via Stimulate) between RunCycles calls
// or from a separate goroutine feeding a channel of stimulation
// requests; RunCycles only drives the recurring diffuse/rent/forget
// sweep.
func (b *Bank) RunCycles(ctx context.Context, n int) ([]CycleReport, error) {
	reports := make([]CycleReport, 0, n)
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return reports, atomspace.ErrCancelled
		default:
		}

		diffused := b.DiffuseCycle()
		stiRent, ltiRent := b.RentCycle()
		forgotten := b.ForgetCycle()
		reports = append(reports, CycleReport{
			RentCollectedSTI: stiRent,
			RentCollectedLTI: ltiRent,
			Diffused:         diffused,
			Forgotten:        forgotten,
		})
	}
	return reports, nil
}

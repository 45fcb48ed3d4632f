package pattern

import (
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/EchoCog/atomspace/core/atomspace"
)

// planCache memoizes a pattern's join-plan ordering by structural
// shape (clause link types + arities), so repeated queries of the same
// pattern shape skip re-deriving an ordering from scratch. The
// ordering is a hint, not a correctness requirement — graph content
// changes between queries, so a stale ordering still yields correct
// results, just possibly less pruning than a fresh selectivity pass
// would give. Matcher refreshes the cache whenever ordering is
// recomputed.
type planCache struct {
	mu    sync.Mutex
	cache *lru.Cache
}

// defaultPlanCacheSize bounds memory use; query shapes are typically
// few relative to query volume, so even a small cache has a high hit
// rate in steady state.
const defaultPlanCacheSize = 256

func newPlanCache() *planCache {
	c, err := lru.New(defaultPlanCacheSize)
	if err != nil {
		// lru.New only errors on size <= 0, which never happens here.
		panic(fmt.Sprintf("pattern: building plan cache: %v", err))
	}
	return &planCache{cache: c}
}

func patternSignature(p Pattern) string {
	var b strings.Builder
	for i, c := range p.Clauses {
		if i > 0 {
			b.WriteByte('|')
		}
		fmt.Fprintf(&b, "%d:%d", c.LinkType, len(c.Outgoing))
	}
	return b.String()
}

func (pc *planCache) get(as *atomspace.AtomSpace, p Pattern) plan {
	sig := patternSignature(p)

	pc.mu.Lock()
	cached, hit := pc.cache.Get(sig)
	pc.mu.Unlock()

	if hit {
		order := cached.([]int)
		if len(order) == len(p.Clauses) {
			ordered := make([]Clause, len(order))
			for i, origIdx := range order {
				ordered[i] = p.Clauses[origIdx]
			}
			return plan{clauses: ordered, order: order}
		}
	}

	fresh := compilePlan(as, p)
	pc.mu.Lock()
	pc.cache.Add(sig, fresh.order)
	pc.mu.Unlock()
	return fresh
}

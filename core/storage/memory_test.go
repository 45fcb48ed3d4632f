package storage

import (
	"context"
	"testing"

	"github.com/EchoCog/atomspace/core/atomspace"
)

func TestMemoryStoreFetchRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	if err := m.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer m.Close()

	r := Record{Handle: "h1", Type: atomspace.ConceptNode, Name: "dog", Strength: 0.9, Confidence: 0.8}
	if err := m.StoreAtom(ctx, r); err != nil {
		t.Fatalf("store: %v", err)
	}

	got, ok, err := m.FetchAtom(ctx, "h1")
	if err != nil || !ok {
		t.Fatalf("fetch: got=%v ok=%v err=%v", got, ok, err)
	}
	if got != r {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, r)
	}

	if _, ok, _ := m.FetchAtom(ctx, "missing"); ok {
		t.Fatal("expected miss for unknown handle")
	}
}

func TestMemoryBatchAndStats(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.Open(ctx)

	node := Record{Handle: "n1", Type: atomspace.ConceptNode, Name: "cat"}
	link := Record{Handle: "l1", Type: atomspace.ListLink, IsLink: true, Outgoing: []atomspace.Handle{"n1"}}
	if err := m.StoreAtoms(ctx, []Record{node, link}); err != nil {
		t.Fatalf("store batch: %v", err)
	}

	fetched, err := m.FetchAtoms(ctx, []atomspace.Handle{"n1", "l1", "missing"})
	if err != nil {
		t.Fatalf("fetch batch: %v", err)
	}
	if len(fetched) != 3 {
		t.Fatalf("expected 3 positional entries, got %d", len(fetched))
	}
	if fetched[0] == nil || fetched[1] == nil || fetched[2] != nil {
		t.Fatalf("expected hits for n1/l1 and a nil for missing, got %+v", fetched)
	}

	stats, err := m.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.AtomCount != 2 || stats.NodeCount != 1 || stats.LinkCount != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if err := m.RemoveAtom(ctx, "n1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := m.FetchAtom(ctx, "n1"); ok {
		t.Fatal("expected n1 removed")
	}
}

func TestMemoryIterateStopsEarly(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.Open(ctx)
	for i := 0; i < 5; i++ {
		h := atomspace.Handle(string(rune('a' + i)))
		_ = m.StoreAtom(ctx, Record{Handle: h, Type: atomspace.ConceptNode, Name: string(h)})
	}

	count := 0
	err := m.IterateAtoms(ctx, func(Record) bool {
		count++
		return count < 2
	})
	if err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected iteration to stop after 2 records, got %d", count)
	}
}

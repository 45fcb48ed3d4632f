//go:build integration

package storage_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/EchoCog/atomspace/core/atomspace"
	"github.com/EchoCog/atomspace/core/storage"
)

// TestKVBackendRoundTrip requires a Redis instance reachable at
// localhost:6379 (matching go-redis's own default in its integration
// suite); skip locally with `go test ./...` (no integration tag) and
// run with `-tags integration` against a live Redis.
func TestKVBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	prefix := fmt.Sprintf("atomspace-test-%s", t.Name())
	backend := storage.NewKV(&redis.Options{Addr: "localhost:6379"}, prefix)
	require.NoError(t, backend.Open(ctx))
	defer backend.Close()

	node := storage.Record{Handle: "n1", Type: atomspace.ConceptNode, Name: "dog"}
	link := storage.Record{Handle: "l1", Type: atomspace.ListLink, IsLink: true, Outgoing: []atomspace.Handle{"n1"}}
	require.NoError(t, backend.StoreAtoms(ctx, []storage.Record{node, link}))
	defer func() {
		_ = backend.RemoveAtom(ctx, "n1")
		_ = backend.RemoveAtom(ctx, "l1")
	}()

	fetched, err := backend.FetchAtoms(ctx, []atomspace.Handle{"n1", "l1"})
	require.NoError(t, err)
	require.Len(t, fetched, 2)

	stats, err := backend.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.AtomCount)
}

//go:build integration

package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EchoCog/atomspace/core/atomspace"
	"github.com/EchoCog/atomspace/core/storage"
)

func TestSQLBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "atoms.db")

	backend := storage.NewSQL(dsn, 4)
	require.NoError(t, backend.Open(ctx))
	defer backend.Close()

	node := storage.Record{Handle: "n1", Type: atomspace.ConceptNode, Name: "dog", Strength: 0.9, Confidence: 0.7}
	link := storage.Record{Handle: "l1", Type: atomspace.InheritanceLink, IsLink: true, Outgoing: []atomspace.Handle{"n1", "n2"}}
	require.NoError(t, backend.StoreAtoms(ctx, []storage.Record{node, link}))

	got, ok, err := backend.FetchAtom(ctx, "n1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, node, got)

	stats, err := backend.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.AtomCount)
	require.EqualValues(t, 1, stats.NodeCount)
	require.EqualValues(t, 1, stats.LinkCount)

	require.NoError(t, backend.RemoveAtom(ctx, "n1"))
	_, ok, err = backend.FetchAtom(ctx, "n1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSQLBackendIterate(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "atoms.db")
	backend := storage.NewSQL(dsn, 2)
	require.NoError(t, backend.Open(ctx))
	defer backend.Close()

	for i := 0; i < 3; i++ {
		h := atomspace.Handle(string(rune('a' + i)))
		require.NoError(t, backend.StoreAtom(ctx, storage.Record{Handle: h, Type: atomspace.ConceptNode, Name: string(h)}))
	}

	seen := 0
	require.NoError(t, backend.IterateAtoms(ctx, func(storage.Record) bool {
		seen++
		return true
	}))
	require.Equal(t, 3, seen)
}

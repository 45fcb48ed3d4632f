package storage

import (
	"path/filepath"
	"testing"

	"github.com/EchoCog/atomspace/core/atomspace"
)

func buildSampleSpace(t *testing.T) *atomspace.AtomSpace {
	t.Helper()
	as := atomspace.New(nil)
	dog, err := as.AddNode(atomspace.ConceptNode, "dog", nil)
	if err != nil {
		t.Fatalf("add node: %v", err)
	}
	animal, err := as.AddNode(atomspace.ConceptNode, "animal", nil)
	if err != nil {
		t.Fatalf("add node: %v", err)
	}
	tv := atomspace.TruthValue{Strength: 0.95, Confidence: 0.8}
	if _, err := as.AddLink(atomspace.InheritanceLink, []atomspace.Handle{dog, animal}, &tv); err != nil {
		t.Fatalf("add link: %v", err)
	}
	return as
}

func TestSnapshotSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "atoms.json")

	as := buildSampleSpace(t)
	w := NewSnapshotWriter(path)
	if err := w.Save(as); err != nil {
		t.Fatalf("save: %v", err)
	}

	restored := atomspace.New(nil)
	if err := w.LoadInto(restored); err != nil {
		t.Fatalf("load into: %v", err)
	}
	if restored.Size() != as.Size() {
		t.Fatalf("restored size %d, want %d", restored.Size(), as.Size())
	}

	dogAgain, err := restored.AddNode(atomspace.ConceptNode, "dog", nil)
	if err != nil {
		t.Fatalf("re-add dog: %v", err)
	}
	if _, ok := restored.GetAtom(dogAgain); !ok {
		t.Fatal("expected restored dog node to resolve")
	}
}

func TestSnapshotBackupAndRestore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "atoms.json")
	w := NewSnapshotWriter(path)

	as := buildSampleSpace(t)
	if err := w.Save(as); err != nil {
		t.Fatalf("save: %v", err)
	}
	backupPath, err := w.CreateBackup()
	if err != nil {
		t.Fatalf("create backup: %v", err)
	}

	as2 := atomspace.New(nil)
	_, _ = as2.AddNode(atomspace.ConceptNode, "only-this-one", nil)
	if err := w.Save(as2); err != nil {
		t.Fatalf("save overwrite: %v", err)
	}

	if err := w.RestoreFromBackup(backupPath); err != nil {
		t.Fatalf("restore from backup: %v", err)
	}
	restored := atomspace.New(nil)
	if err := w.LoadInto(restored); err != nil {
		t.Fatalf("load restored: %v", err)
	}
	if restored.Size() != as.Size() {
		t.Fatalf("restored-from-backup size %d, want %d", restored.Size(), as.Size())
	}
}

package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/EchoCog/atomspace/core/atomspace"
)

// Snapshot is the on-disk representation of an entire AtomSpace,
// written atomically (temp-write + rename) in the manner
// of the teacher's StateManager, generalized from one fixed struct to
// an arbitrary set of atom Records.
type Snapshot struct {
	Version   string             `json:"version"`
	CreatedAt time.Time          `json:"created_at"`
	Atoms     []Record           `json:"atoms"`
}

// SnapshotWriter saves and restores full-graph snapshots to a single
// path, with timestamped backups, grounded on
// core/persistence.StateManager's SaveState/CreateBackup/RestoreFromBackup.
type SnapshotWriter struct {
	path string
}

// NewSnapshotWriter targets path as the live snapshot file.
func NewSnapshotWriter(path string) *SnapshotWriter {
	return &SnapshotWriter{path: path}
}

// Save atomically writes every atom in as to the snapshot path: it
// marshals to a temp file in the same directory, then renames over the
// live path, so a crash mid-write never corrupts the previous snapshot.
func (w *SnapshotWriter) Save(as *atomspace.AtomSpace) error {
	handles := as.AllHandles()
	records := make([]Record, 0, len(handles))
	for _, h := range handles {
		a, ok := as.GetAtom(h)
		if !ok {
			continue
		}
		records = append(records, ToRecord(a))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Handle < records[j].Handle })

	snap := Snapshot{Version: "1", CreatedAt: time.Now(), Atoms: records}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tempPath := w.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tempPath, w.path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// Load reads and parses the snapshot file, returning its records in
// the order they were recorded (Save sorts them by handle). It does not
// touch any AtomSpace; LoadInto replays the records into one.
func (w *SnapshotWriter) Load() (Snapshot, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal snapshot: %w: %v", atomspace.ErrSerializationFailed, err)
	}
	return snap, nil
}

// LoadInto restores a snapshot into as, re-adding nodes first and then
// repeatedly sweeping the remaining links until every one of them has
// all of its outgoing handles present (or no progress can be made,
// which signals a corrupt snapshot).
func (w *SnapshotWriter) LoadInto(as *atomspace.AtomSpace) error {
	snap, err := w.Load()
	if err != nil {
		return err
	}

	var pending []Record
	for _, r := range snap.Atoms {
		if !r.IsLink {
			tv := atomspace.TruthValue{Strength: r.Strength, Confidence: r.Confidence}
			h, err := as.AddNode(r.Type, r.Name, &tv)
			if err != nil {
				return fmt.Errorf("restore node %s: %w", r.Handle, err)
			}
			if h != r.Handle {
				return fmt.Errorf("restore node %s: recomputed handle %s differs: %w", r.Handle, h, atomspace.ErrSerializationFailed)
			}
			_ = as.SetAttentionValue(h, atomspace.AttentionValue{STI: r.STI, LTI: r.LTI, VLTI: r.VLTI})
		} else {
			pending = append(pending, r)
		}
	}

	for len(pending) > 0 {
		progressed := false
		var retry []Record
		for _, r := range pending {
			h, err := as.AddLink(r.Type, r.Outgoing, &atomspace.TruthValue{Strength: r.Strength, Confidence: r.Confidence})
			if err != nil {
				retry = append(retry, r)
				continue
			}
			if h != r.Handle {
				return fmt.Errorf("restore link %s: recomputed handle %s differs: %w", r.Handle, h, atomspace.ErrSerializationFailed)
			}
			_ = as.SetAttentionValue(h, atomspace.AttentionValue{STI: r.STI, LTI: r.LTI, VLTI: r.VLTI})
			progressed = true
		}
		if !progressed {
			return fmt.Errorf("restore snapshot: %d link(s) reference atoms never restored", len(retry))
		}
		pending = retry
	}
	return nil
}

// CreateBackup copies the current snapshot file to a timestamped
// sibling, e.g. atoms.json.backup_20260730_091500.
func (w *SnapshotWriter) CreateBackup() (string, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return "", fmt.Errorf("read snapshot for backup: %w", err)
	}
	backupPath := fmt.Sprintf("%s.backup_%s", w.path, time.Now().Format("20060102_150405"))
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return backupPath, nil
}

// RestoreFromBackup overwrites the live snapshot path with a previous
// backup's contents, after validating it parses as a Snapshot.
func (w *SnapshotWriter) RestoreFromBackup(backupPath string) error {
	data, err := os.ReadFile(backupPath)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("backup is corrupted: %w", err)
	}
	if err := os.WriteFile(w.path, data, 0o644); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}
	return nil
}

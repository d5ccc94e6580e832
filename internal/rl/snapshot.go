package rl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// ErrMalformedSnapshot is returned when a persisted policy cannot be decoded
// or does not match the table's action set.
var ErrMalformedSnapshot = errors.New("malformed policy snapshot")

// Snapshot is the durable form of a Table.
type Snapshot struct {
	QTable  []SnapshotEntry `json:"q_table"`
	Rewards []float64       `json:"rewards"`
}

// SnapshotEntry is one state with its action values.
type SnapshotEntry struct {
	State  StateKey `json:"state"`
	Values Values   `json:"values"`
}

// Snapshot copies the table into its durable form, in first-visit order.
func (t *Table) Snapshot() Snapshot {
	s := Snapshot{
		QTable:  make([]SnapshotEntry, 0, len(t.order)),
		Rewards: t.Rewards(),
	}
	for _, key := range t.order {
		s.QTable = append(s.QTable, SnapshotEntry{State: key, Values: t.Values(key)})
	}
	if s.Rewards == nil {
		s.Rewards = []float64{}
	}
	return s
}

// Restore replaces the table contents with s. Every entry must have a
// discretized state and carry exactly the configured actions. On error the table is left untouched.
func (t *Table) Restore(s Snapshot) error {
	entries := make(map[StateKey]Values, len(s.QTable))
	order := make([]StateKey, 0, len(s.QTable))

	for i, e := range s.QTable {
		if !e.State.Valid() {
			return fmt.Errorf("%w: entry %d has unknown state %s", ErrMalformedSnapshot, i, e.State)
		}
		if _, dup := entries[e.State]; dup {
			return fmt.Errorf("%w: duplicate state %s", ErrMalformedSnapshot, e.State)
		}
		if len(e.Values) != len(t.actions) {
			return fmt.Errorf("%w: entry %d has %d actions, want %d", ErrMalformedSnapshot, i, len(e.Values), len(t.actions))
		}

		values := make(Values, len(t.actions))
		for _, a := range t.actions {
			v, ok := e.Values[a]
			if !ok {
				return fmt.Errorf("%w: entry %d is missing action %q", ErrMalformedSnapshot, i, a)
			}
			values[a] = v
		}

		entries[e.State] = values
		order = append(order, e.State)
	}

	t.entries = entries
	t.order = order
	t.rewards = slices.Clone(s.Rewards)

	return nil
}

// Save writes the table to path atomically: the previous file stays intact
// if any step fails.
func (t *Table) Save(path string) error {
	data, err := json.MarshalIndent(t.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode policy: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create policy dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp policy file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write policy: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync policy: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close policy: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace policy file: %w", err)
	}

	return nil
}

// Load restores the table from path. A missing file is not an error and
// reports false; a corrupt file wraps ErrMalformedSnapshot.
func (t *Table) Load(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read policy: %w", err)
	}

	var s *Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if s == nil || s.QTable == nil {
		return false, fmt.Errorf("%w: missing q_table", ErrMalformedSnapshot)
	}

	if err := t.Restore(*s); err != nil {
		return false, err
	}

	return true, nil
}

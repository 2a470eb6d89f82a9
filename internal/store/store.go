// Package store persists a repository's in-flight rebase session —
// RebaseIntent, RebaseState, and the planning-phase correlation id (§4.9) —
// across process restarts. It is a JSON-blob-per-transaction file store,
// ported from internal/meta/jsonfiledb: same ReadTx/WriteTx shape, same
// single-mutex-held-across-a-write-transaction locking model. Unlike the
// teacher's direct-truncate write, Commit here writes to a temp file and
// renames it into place, so a crash mid-write can never leave a half-written,
// unparseable state file behind — the improvement SPEC_FULL.md's domain
// stack section calls for.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"emperror.dev/errors"
	"github.com/sirupsen/logrus"

	"github.com/aviator-co/stackcore/internal/dagmodel"
)

// fileName is the on-disk filename for the session store, rooted at the
// repository's .git/stackcore directory.
const fileName = "session.json"

// Snapshot is the full persisted state of a rebase session.
type Snapshot struct {
	CorrelationID string                 `json:"correlationId"`
	Intent        *dagmodel.RebaseIntent `json:"intent,omitempty"`
	State         *dagmodel.RebaseState  `json:"state,omitempty"`
}

func (s Snapshot) copy() Snapshot {
	cp := s
	if s.State != nil {
		cloned := s.State.Clone()
		cp.State = &cloned
	}
	return cp
}

// DB is a JSON-blob-per-transaction file store for one repository's session
// state.
type DB struct {
	path string

	mu    sync.Mutex
	state Snapshot
}

// RepoPath returns the session store path rooted at gitDir (a repository's
// .git directory).
func RepoPath(gitDir string) string {
	return filepath.Join(gitDir, "stackcore", fileName)
}

// Open opens (creating the containing directory if absent) the session store
// at path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.WrapIff(err, "failed to create stackcore state directory")
	}
	snap, err := readSnapshot(path)
	if err != nil {
		return nil, err
	}
	return &DB{path: path, state: snap}, nil
}

// readSnapshot loads path's contents, tolerating a missing file. A corrupt
// file is logged and treated as an empty session rather than failing open —
// the self-healing behavior meta.ReadBranch has for a corrupt ref, carried
// into session persistence per §12.
func readSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, nil
		}
		return Snapshot{}, errors.WrapIff(err, "failed to read stackcore state file %q", path)
	}
	if len(data) == 0 {
		return Snapshot{}, nil
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		logrus.WithError(err).WithField("path", path).
			Warn("stackcore session file is corrupt, discarding and starting a fresh session")
		return Snapshot{}, nil
	}
	return snap, nil
}

// ReadTx returns a copy of the current snapshot.
func (d *DB) ReadTx() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.copy()
}

// WriteTx begins a write transaction, holding the store's lock until Commit
// or Abort is called.
func (d *DB) WriteTx() *WriteTx {
	d.mu.Lock()
	return &WriteTx{db: d, snap: d.state.copy()}
}

// WriteTx stages changes to the session snapshot; nothing reaches disk until
// Commit.
type WriteTx struct {
	db   *DB
	snap Snapshot
}

// Snapshot returns the transaction's staged (not-yet-committed) view.
func (tx *WriteTx) Snapshot() Snapshot { return tx.snap }

func (tx *WriteTx) SetIntent(intent *dagmodel.RebaseIntent) { tx.snap.Intent = intent }

func (tx *WriteTx) SetState(state *dagmodel.RebaseState) { tx.snap.State = state }

func (tx *WriteTx) SetCorrelationID(id string) { tx.snap.CorrelationID = id }

// Clear resets the session to empty, e.g. once a rebase completes or is
// aborted.
func (tx *WriteTx) Clear() { tx.snap = Snapshot{} }

// Abort discards staged changes without persisting them.
func (tx *WriteTx) Abort() {
	if tx.db == nil {
		return
	}
	tx.db.mu.Unlock()
	tx.db = nil
}

// Commit persists the staged snapshot.
func (tx *WriteTx) Commit() error {
	if tx.db == nil {
		panic("cannot commit transaction: already finalized")
	}
	defer tx.db.mu.Unlock()
	if err := writeSnapshot(tx.db.path, tx.snap); err != nil {
		tx.db = nil
		return err
	}
	tx.db.state = tx.snap
	tx.db = nil
	return nil
}

func writeSnapshot(path string, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.WrapIff(err, "failed to marshal stackcore session state")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".session-*.json.tmp")
	if err != nil {
		return errors.WrapIff(err, "failed to create stackcore session temp file")
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return errors.WrapIff(err, "failed to write stackcore session file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIff(err, "failed to write stackcore session file")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIff(err, "failed to replace stackcore session file")
	}
	return nil
}

// Package store persists curation state for one repository: a single JSON
// document with backup rotation, written atomically under a cross-process
// lock.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/NielsdaWheelz/curator/internal/core"
	"github.com/NielsdaWheelz/curator/internal/errors"
	"github.com/NielsdaWheelz/curator/internal/fs"
	"github.com/NielsdaWheelz/curator/internal/lock"
)

// errUnchanged aborts an Update that has nothing to write.
var errUnchanged = errors.New(errors.EInternal, "state unchanged")

// Files kept in the repository root.
const (
	StateFileName = ".curator_state.json"
	BackupSuffix  = ".bak"
	LockSuffix    = ".lock"
)

// Store handles persistence of the state document for one repository.
type Store struct {
	FS     afero.Fs         // filesystem, swappable in tests
	Root   string           // repository root
	Locker lock.Locker      // repository-scoped exclusive lock
	Now    func() time.Time // injectable clock for deterministic tests
	Logger zerolog.Logger
}

// NewStore creates a Store for the repository at root, locking via the
// companion lock file.
func NewStore(filesystem afero.Fs, root string, now func() time.Time) *Store {
	s := &Store{
		FS:     filesystem,
		Root:   root,
		Now:    now,
		Logger: zerolog.Nop(),
	}
	s.Locker = lock.NewFileLock(s.LockPath())
	return s
}

// StatePath returns the path to the primary state file.
func (s *Store) StatePath() string {
	return filepath.Join(s.Root, StateFileName)
}

// BackupPath returns the path to the rotated backup.
func (s *Store) BackupPath() string {
	return s.StatePath() + BackupSuffix
}

// LockPath returns the path to the lock file.
func (s *Store) LockPath() string {
	return s.StatePath() + LockSuffix
}

// Clock returns the time from Now, or the wall clock when Now is unset.
func (s *Store) Clock() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Load returns the current document. It never fails: an unreadable primary
// falls back to the backup, and if both are unusable the result is empty.
// A reset caused by corruption (as opposed to a fresh repository) is
// logged as a warning.
func (s *Store) Load() *Document {
	doc, primaryErr := s.read(s.StatePath())
	if primaryErr == nil {
		return doc
	}
	primaryPresent := !os.IsNotExist(primaryErr)
	if primaryPresent {
		s.Logger.Warn().Err(primaryErr).Str("state_file", s.StatePath()).
			Msg("state file unreadable; trying backup")
	}

	doc, backupErr := s.read(s.BackupPath())
	if backupErr == nil {
		s.Logger.Warn().Str("state_file", s.BackupPath()).Msg("loaded state from backup")
		return doc
	}

	if primaryPresent || !os.IsNotExist(backupErr) {
		s.Logger.Warn().Err(backupErr).Str("repo", s.Root).
			Msg("state and backup both unusable; starting with no prior decisions")
	}
	return NewDocument()
}

func (s *Store) read(path string) (*Document, error) {
	data, err := afero.ReadFile(s.FS, path)
	if err != nil {
		return nil, err
	}
	doc := NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Save writes doc under the repository lock.
func (s *Store) Save(doc *Document) error {
	unlock, err := s.Locker.Lock()
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()
	return s.saveLocked(doc)
}

// saveLocked installs doc as the new primary, rotating the old primary to
// the backup slot. The caller holds the lock.
func (s *Store) saveLocked(doc *Document) error {
	data, err := doc.encode()
	if err != nil {
		return errors.Wrap(errors.EInternal, "failed to encode state", err)
	}
	if err := fs.WriteFileAtomicWithBackup(s.FS, s.StatePath(), s.BackupPath(), data, 0o644); err != nil {
		return errors.WrapWithDetails(errors.EPersistFailed, "failed to write state file", err,
			map[string]string{"state_file": s.StatePath()})
	}
	return nil
}

// Update runs fn on the current document and saves the result, holding the
// lock across the whole read-modify-write. If fn returns an error nothing
// is written.
func (s *Store) Update(fn func(doc *Document) error) error {
	unlock, err := s.Locker.Lock()
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	doc := s.Load()
	if err := fn(doc); err != nil {
		return err
	}
	return s.saveLocked(doc)
}

// Get returns a copy of the record for rel without taking the lock.
func (s *Store) Get(rel string) (*FileRecord, bool) {
	rec, ok := s.Load().Get(rel)
	return rec.Clone(), ok
}

// UpdateStatus sets the status of rel, adding tags if given.
//
// status is normalized first (keep_90_days becomes keep for 90 days unless
// days says otherwise). keep requires days > 0 (E_INVALID_DAYS); any other
// status clears keep_days and expiry_date. Returns a copy of the record.
func (s *Store) UpdateStatus(rel, status string, tags []string, days int) (*FileRecord, error) {
	parsed, err := core.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	if parsed.Days > 0 && days <= 0 {
		days = parsed.Days
	}
	if parsed.Status == core.StatusKeep && days <= 0 {
		return nil, errors.NewWithDetails(errors.EInvalidDays,
			"--days must be a positive integer when status is 'keep'",
			map[string]string{"path": rel, "status": string(parsed.Status)})
	}

	if err := checkKey(rel); err != nil {
		return nil, err
	}

	var out *FileRecord
	err = s.Update(func(doc *Document) error {
		rec := doc.Ensure(rel)
		rec.AddTags(tags...)
		rec.SetStatus(parsed.Status, days, s.Clock())
		out = rec.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ManageTags adds then removes tags on rel and returns the final tag list.
// Adding a tag that is already present is a no-op. When the tag list does
// not change nothing is written and last_updated is left alone.
func (s *Store) ManageTags(rel string, add, remove []string) ([]string, error) {
	if err := checkKey(rel); err != nil {
		return nil, err
	}
	var out []string
	err := s.Update(func(doc *Document) error {
		cur, ok := doc.Get(rel)
		next := &FileRecord{}
		if ok {
			next = cur.Clone()
		}
		next.AddTags(add...)
		next.RemoveTags(remove...)
		out = append([]string{}, next.Tags...)
		if (ok && slices.Equal(cur.Tags, next.Tags)) || (!ok && len(next.Tags) == 0) {
			return errUnchanged
		}
		rec := doc.Ensure(rel)
		rec.Tags = next.Tags
		rec.Touch(s.Clock())
		return nil
	})
	if err != nil && err != errUnchanged {
		return nil, err
	}
	return out, nil
}

// checkKey rejects paths that resolve outside the repository.
func checkKey(rel string) error {
	if OutsideRoot(Key(rel)) {
		return errors.NewWithDetails(errors.EUsage,
			"Path '"+rel+"' is outside the repository.",
			map[string]string{"path": rel})
	}
	return nil
}

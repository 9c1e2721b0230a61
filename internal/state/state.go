// Package state persists review-progress records as one JSON file per
// PR key under the repository's .git directory.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joescharf/cr/internal/ledger"
)

// ErrCorrupt wraps a state file that exists but cannot be decoded.
// Unlike the user config file, a corrupt state record is surfaced, not
// silently treated as absent.
var ErrCorrupt = errors.New("corrupt state file")

// Store reads and writes ReviewState records keyed by PR.
type Store struct {
	// Dir is the state directory, typically <repo>/.git/cr.
	Dir string
}

// NewStore returns a store rooted at the given repo's .git metadata dir.
func NewStore(repoRoot string) *Store {
	return &Store{Dir: filepath.Join(repoRoot, ".git", "cr")}
}

func (s *Store) path(prKey string) string {
	return filepath.Join(s.Dir, prKey+".json")
}

// Load returns the record for prKey, or nil with no error when absent.
// A record that exists but fails to decode is a fatal read error.
func (s *Store) Load(prKey string) (*ledger.ReviewState, error) {
	data, err := os.ReadFile(s.path(prKey))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var st ledger.ReviewState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path(prKey), err)
	}
	if st.Files == nil {
		st.Files = map[string]ledger.FileEntry{}
	}
	return &st, nil
}

// Save overwrites the record for prKey. The write goes to a temp file
// in the same directory and is renamed into place so a crashed save
// never leaves a half-written record behind.
func (s *Store) Save(st *ledger.ReviewState, prKey string) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, prKey+".*.tmp")
	if err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(prKey)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// Delete removes the record for prKey. Returns false when there was
// nothing to delete; absence is not an error.
func (s *Store) Delete(prKey string) (bool, error) {
	err := os.Remove(s.path(prKey))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete state: %w", err)
	}
	return true, nil
}

// Package ledger holds the per-PR review-progress model and the pure
// transitions over it. All persistence lives in internal/state.
package ledger

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownFile is returned when a path is not part of the review state.
var ErrUnknownFile = errors.New("unknown file")

// FileEntry tracks one changed file within a PR.
type FileEntry struct {
	// Lines is the changed-line count (additions + deletions) captured
	// when the overview was built. Immutable after creation.
	Lines int `json:"lines"`

	Reviewed bool `json:"reviewed"`
}

// ReviewState is the review-progress record for a single PR.
//
// TotalLines is fixed at creation and never recomputed; re-running the
// overview replaces the whole record, it never merges.
type ReviewState struct {
	Files      map[string]FileEntry `json:"files"`
	TotalLines int                  `json:"total_lines"`
}

// FileChange is one changed file as reported by the PR metadata source.
type FileChange struct {
	Path  string
	Lines int
}

// New builds a ReviewState with every file unreviewed. An empty change
// set is allowed and yields TotalLines of zero.
func New(changes []FileChange) *ReviewState {
	s := &ReviewState{Files: make(map[string]FileEntry, len(changes))}
	for _, c := range changes {
		s.Files[c.Path] = FileEntry{Lines: c.Lines}
		s.TotalLines += c.Lines
	}
	return s
}

// Progress is the aggregate review position for one ReviewState.
type Progress struct {
	ReviewedLines  int
	RemainingLines int
	Percent        int
	FilesRemaining int
}

// Progress computes the aggregate position. Percent rounds half up; an
// empty change set reports 100% with nothing remaining.
func (s *ReviewState) Progress() Progress {
	var p Progress
	for _, f := range s.Files {
		if f.Reviewed {
			p.ReviewedLines += f.Lines
		} else {
			p.FilesRemaining++
		}
	}
	p.RemainingLines = s.TotalLines - p.ReviewedLines
	if s.TotalLines > 0 {
		p.Percent = int(math.Floor(float64(p.ReviewedLines)/float64(s.TotalLines)*100 + 0.5))
	} else {
		p.Percent = 100
	}
	return p
}

// MarkResult reports the outcome of MarkReviewed.
type MarkResult struct {
	// Lines reviewed by this transition (the entry's line count).
	Lines int

	// AlreadyReviewed is set when the file was reviewed before this
	// call. Not an error; the state is unchanged.
	AlreadyReviewed bool
}

// MarkReviewed flips a file to reviewed. Marking an already-reviewed
// file is a no-op signaled through the result, not an error.
func (s *ReviewState) MarkReviewed(path string) (MarkResult, error) {
	f, ok := s.Files[path]
	if !ok {
		return MarkResult{}, fmt.Errorf("%w: %s", ErrUnknownFile, path)
	}
	if f.Reviewed {
		return MarkResult{Lines: f.Lines, AlreadyReviewed: true}, nil
	}
	f.Reviewed = true
	s.Files[path] = f
	return MarkResult{Lines: f.Lines}, nil
}

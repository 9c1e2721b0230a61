// Package session implements the interactive review loop: a
// line-oriented dispatcher over the fixed file list captured when the
// overview was built.
package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joescharf/cr/internal/journal"
	"github.com/joescharf/cr/internal/ledger"
	"github.com/joescharf/cr/internal/output"
	"github.com/joescharf/cr/internal/state"
)

// ConfirmFunc asks the user a yes/no question, returning def on blank
// input. Injected so tests never touch a terminal.
type ConfirmFunc func(prompt string, def bool) bool

// ActionRunner invokes the external review action for a file path.
// Satisfied by action.Runner.
type ActionRunner interface {
	Review(path string) error
}

// Reviewer applies the review action and the mark-reviewed transition
// for one file. Shared by the one-shot `cr review` command and the
// interactive loop.
type Reviewer struct {
	PRKey   string
	Store   *state.Store
	Action  ActionRunner
	Journal *journal.Journal // optional
	UI      *output.UI
	Confirm ConfirmFunc

	// SessionID groups journal events from one interactive session.
	SessionID string
}

// Review runs the review action for path and, on confirmation, marks
// it reviewed and persists the result. Returns whether the file was
// marked by this call. Nothing is written unless the transition fully
// succeeds.
func (rv *Reviewer) Review(path, mode string) (bool, error) {
	st, err := rv.Store.Load(rv.PRKey)
	if err != nil {
		return false, err
	}
	if st == nil {
		rv.UI.Warning("Unknown file. Run 'cr overview' first.")
		return false, nil
	}
	if _, ok := st.Files[path]; !ok {
		rv.UI.Warning("Unknown file. Run 'cr overview' first.")
		return false, nil
	}
	if st.Files[path].Reviewed {
		rv.UI.Info("%s already reviewed", path)
		return false, nil
	}

	if err := rv.Action.Review(path); err != nil {
		return false, fmt.Errorf("review action: %w", err)
	}
	if !rv.Confirm("Mark reviewed?", false) {
		return false, nil
	}

	res, err := st.MarkReviewed(path)
	if err != nil {
		return false, err
	}
	if err := rv.Store.Save(st, rv.PRKey); err != nil {
		return false, err
	}

	if rv.Journal != nil {
		e := &journal.Event{
			PRKey:     rv.PRKey,
			Path:      path,
			Mode:      mode,
			Lines:     res.Lines,
			SessionID: rv.SessionID,
		}
		if err := rv.Journal.Append(context.Background(), e); err != nil {
			rv.UI.VerboseLog("journal append failed: %v", err)
		}
	}

	rv.UI.Success("Marked %d lines as reviewed (%s mode)", res.Lines, mode)
	return true, nil
}

// Runner drives one interactive session over a fixed, ordered file list.
type Runner struct {
	*Reviewer

	// Paths is the PR's file order captured at session start; the
	// 1-based selectors index into it and it does not change even if
	// the overview is re-run elsewhere.
	Paths []string

	RepoRoot string
	In       io.Reader

	// Interrupt, when set, ends the session like EOF does: the loop
	// stops and the approved summary still prints. Wired to SIGINT by
	// the overview command.
	Interrupt <-chan os.Signal

	approved []string
}

type lineResult struct {
	text string
	err  error
}

// Run reads and executes commands until a blank line, EOF, interrupt,
// or a read error. Commands execute synchronously, one at a time.
//
// When In is already a *bufio.Reader it is used as-is, so the loop and
// the confirm prompt can share one buffer over stdin.
func (r *Runner) Run() error {
	r.UI.Plain("commands: p <ids>, rs <ids>, rd <ids>, ls, lsu, empty line to exit")

	reader, ok := r.In.(*bufio.Reader)
	if !ok {
		reader = bufio.NewReader(r.In)
	}

	// Lines are read on demand, one per request, so the confirm prompt
	// can use the same reader between commands. An interrupt abandons
	// the pending read.
	req := make(chan struct{})
	lines := make(chan lineResult, 1)
	go func() {
		for range req {
			text, err := reader.ReadString('\n')
			lines <- lineResult{text, err}
		}
	}()
	defer close(req)

loop:
	for {
		fmt.Fprint(r.UI.Out, "> ")
		req <- struct{}{}

		var res lineResult
		select {
		case res = <-lines:
		case <-r.Interrupt:
			r.UI.Plain("")
			break loop
		}

		if res.err != nil && res.text == "" {
			if res.err != io.EOF {
				return res.err
			}
			r.UI.Plain("")
			break
		}

		cmd := Parse(res.text)
		if cmd.Kind == Exit {
			break
		}
		if err := r.execute(cmd); err != nil {
			return err
		}
		if res.err != nil {
			// Final line had no newline before EOF.
			break
		}
	}

	if len(r.approved) > 0 {
		r.UI.Plain("")
		r.UI.Plain("Approved in this session:")
		for _, path := range r.approved {
			r.UI.Plain("- %s", path)
		}
	}
	return nil
}

func (r *Runner) execute(cmd Command) error {
	switch cmd.Kind {
	case Print:
		r.printFiles(cmd.Selectors)
	case ReviewSkim:
		if err := r.reviewFiles(cmd.Selectors, ModeSkim); err != nil {
			return err
		}
	case ReviewDeep:
		if err := r.reviewFiles(cmd.Selectors, ModeDeep); err != nil {
			return err
		}
	case ListAll:
		if err := r.listFiles(false); err != nil {
			return err
		}
	case ListUnreviewed:
		if err := r.listFiles(true); err != nil {
			return err
		}
	case Unknown:
		r.UI.Warning("unknown command: %s", cmd.Word)
		return nil
	case Exit:
		return nil
	}
	return r.printStatus()
}

// resolve validates selector tokens against the fixed path list,
// reporting each invalid token and returning the surviving indices
// (0-based). A partially invalid batch still yields the valid entries.
func (r *Runner) resolve(selectors []string) []int {
	var idxs []int
	for _, tok := range selectors {
		// ParseUint rejects sign prefixes, so "+2" and "-2" are
		// invalid ids rather than aliases for 2.
		n, err := strconv.ParseUint(tok, 10, strconv.IntSize-1)
		if err != nil || n < 1 || n > uint64(len(r.Paths)) {
			r.UI.Warning("invalid file id: %s", tok)
			continue
		}
		idxs = append(idxs, int(n)-1)
	}
	return idxs
}

func (r *Runner) printFiles(selectors []string) {
	for _, i := range r.resolve(selectors) {
		r.UI.Plain("== %s ==", filepath.Join(r.RepoRoot, r.Paths[i]))
	}
}

func (r *Runner) reviewFiles(selectors []string, mode string) error {
	for _, i := range r.resolve(selectors) {
		approved, err := r.Review(r.Paths[i], mode)
		if err != nil {
			return err
		}
		if approved {
			r.approved = append(r.approved, r.Paths[i])
		}
	}
	return nil
}

func (r *Runner) listFiles(unreviewedOnly bool) error {
	st, err := r.Store.Load(r.PRKey)
	if err != nil {
		return err
	}

	for i, path := range r.Paths {
		var entry struct {
			lines    int
			reviewed bool
		}
		if st != nil {
			e := st.Files[path]
			entry.lines = e.Lines
			entry.reviewed = e.Reviewed
		}
		if unreviewedOnly && entry.reviewed {
			continue
		}
		r.UI.Plain("%d. %s%-25s +%d", i+1, output.ReviewedMark(entry.reviewed), path, entry.lines)
	}
	return nil
}

func (r *Runner) printStatus() error {
	st, err := r.Store.Load(r.PRKey)
	if err != nil {
		return err
	}
	if st == nil {
		r.UI.Plain("No state. Run 'cr overview' first.")
		return nil
	}
	r.UI.Plain("%s", StatusLine(st.Progress()))
	return nil
}

// StatusLine formats the aggregate progress line printed after every
// recognized command and by `cr status`.
func StatusLine(p ledger.Progress) string {
	return fmt.Sprintf("> %d lines remaining | %s reviewed | %d files remaining",
		p.RemainingLines, output.PercentColor(p.Percent), p.FilesRemaining)
}

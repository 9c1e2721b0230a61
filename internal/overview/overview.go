// Package overview builds a fresh review-progress record from the
// current pull request's metadata.
package overview

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/joescharf/cr/internal/git"
	"github.com/joescharf/cr/internal/ledger"
	"github.com/joescharf/cr/internal/state"
)

// ticketRE matches project-key style ticket identifiers like INFRA-1234.
var ticketRE = regexp.MustCompile(`[A-Z][A-Z0-9]+-\d+`)

// Builder fetches PR metadata and (re)initializes review state.
// Running it fully replaces any existing record for the PR; prior
// progress is discarded rather than merged.
type Builder struct {
	GitHub   git.GitHubClient
	Store    *state.Store
	JiraBase string
}

// Result is what a completed overview hands back for display and for
// seeding an interactive session.
type Result struct {
	PRKey  string
	Title  string
	Body   string
	Ticket string

	// TicketURL is set when both a ticket and jira.base are available.
	TicketURL string

	// Paths preserves the PR's file order; selectors index into it.
	Paths []string

	State *ledger.ReviewState
}

// Build fetches metadata, creates the state record, and persists it.
func (b *Builder) Build() (*Result, error) {
	view, err := b.GitHub.CurrentPRView()
	if err != nil {
		return nil, fmt.Errorf("fetch PR metadata: %w", err)
	}

	res := &Result{
		PRKey: strconv.Itoa(view.Number),
		Title: strings.TrimSpace(view.Title),
		Body:  strings.TrimSpace(view.Body),
	}

	res.Ticket = FindTicket(res.Title + "\n" + res.Body)
	if res.Ticket != "" && b.JiraBase != "" {
		res.TicketURL = fmt.Sprintf("https://%s.atlassian.net/browse/%s", b.JiraBase, res.Ticket)
	}

	changes := make([]ledger.FileChange, 0, len(view.Files))
	for _, f := range view.Files {
		changes = append(changes, ledger.FileChange{
			Path:  f.Path,
			Lines: f.Additions + f.Deletions,
		})
		res.Paths = append(res.Paths, f.Path)
	}

	res.State = ledger.New(changes)
	if err := b.Store.Save(res.State, res.PRKey); err != nil {
		return nil, err
	}
	return res, nil
}

// FindTicket returns the first ticket identifier in text, or "".
func FindTicket(text string) string {
	return ticketRE.FindString(text)
}

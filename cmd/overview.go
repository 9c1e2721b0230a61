package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/cr/internal/action"
	"github.com/joescharf/cr/internal/journal"
	"github.com/joescharf/cr/internal/output"
	"github.com/joescharf/cr/internal/overview"
	"github.com/joescharf/cr/internal/session"
)

var overviewInteractive bool

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Fetch PR metadata and (re)initialize review progress",
	Long: `Fetch the current pull request's title, body, and changed files,
and start review progress tracking from scratch. Any existing progress
for this PR is replaced, not merged.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return overviewRun(cmd)
	},
}

func init() {
	overviewCmd.Flags().BoolVarP(&overviewInteractive, "interactive", "i", false, "Start an interactive review session")
	rootCmd.AddCommand(overviewCmd)
}

func overviewRun(cmd *cobra.Command) error {
	store, repoRoot, err := getStateStore()
	if err != nil {
		return err
	}

	b := &overview.Builder{
		GitHub:   githubClient,
		Store:    store,
		JiraBase: viper.GetString("jira.base"),
	}
	res, err := b.Build()
	if err != nil {
		return err
	}

	renderOverview(res, overviewInteractive)

	if !overviewInteractive {
		return nil
	}

	j := bestEffortJournal(cmd)
	if j != nil {
		defer func() { _ = j.Close() }()
	}

	// Ctrl-C ends the session like EOF: progress already saved stays
	// saved and the approved summary still prints.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	runner := &session.Runner{
		Reviewer: &session.Reviewer{
			PRKey:     res.PRKey,
			Store:     store,
			Action:    action.NewRunner(viper.GetString("actions.on_review")),
			Journal:   j,
			UI:        ui,
			Confirm:   confirmFunc,
			SessionID: journal.NewSessionID(),
		},
		Paths:     res.Paths,
		RepoRoot:  repoRoot,
		In:        stdin,
		Interrupt: sig,
	}
	return runner.Run()
}

// renderOverview prints the PR summary, ticket link, and file table.
func renderOverview(res *overview.Result, numbered bool) {
	ui.Plain("PR #%s: %s", res.PRKey, output.Cyan(res.Title))
	switch {
	case res.TicketURL != "":
		ui.Plain("Ticket: %s", res.TicketURL)
	case res.Ticket != "":
		ui.Plain("Ticket: %s", res.Ticket)
	}
	if res.Body != "" {
		ui.Plain("> %s", res.Body)
	}

	ui.Plain("")
	ui.Plain("Changed files:")
	for i, path := range res.Paths {
		lines := res.State.Files[path].Lines
		if numbered {
			ui.Plain("%d. %-25s +%d", i+1, path, lines)
		} else {
			ui.Plain("- %-25s +%d", path, lines)
		}
	}

	ui.Plain("")
	ui.Plain("Total: %d files, %d changed lines", len(res.Paths), res.State.TotalLines)
}

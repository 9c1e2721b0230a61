package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded review events for the current PR",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyRun(cmd)
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum events to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func historyRun(cmd *cobra.Command) error {
	prKey, err := currentPRKey()
	if err != nil {
		return err
	}

	j, err := openJournal(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = j.Close() }()

	events, err := j.List(cmdContext(cmd), prKey, historyLimit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		ui.Info("No review events recorded for PR #%s", prKey)
		return nil
	}

	table := ui.Table([]string{"When", "File", "Mode", "Lines", "Session"})
	for _, e := range events {
		session := ""
		if e.SessionID != "" {
			session = e.SessionID[:8]
		}
		table.Append([]string{
			e.ReviewedAt.Local().Format(time.DateTime),
			e.Path,
			e.Mode,
			fmt.Sprintf("%d", e.Lines),
			session,
		})
	}
	return table.Render()
}

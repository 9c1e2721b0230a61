package cmd

import (
	"github.com/spf13/cobra"

	"github.com/joescharf/cr/internal/session"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show aggregate review progress for the current PR",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusRun()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusRun() error {
	prKey, err := currentPRKey()
	if err != nil {
		return err
	}
	store, _, err := getStateStore()
	if err != nil {
		return err
	}

	st, err := loadOrOfferOverview(store, prKey)
	if err != nil {
		return err
	}
	if st == nil {
		ui.Info("No state. Run 'cr overview' first.")
		return nil
	}

	ui.Plain("%s", session.StatusLine(st.Progress()))
	return nil
}

package cmd

import (
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete review progress for the current PR",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return resetRun()
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func resetRun() error {
	prKey, err := currentPRKey()
	if err != nil {
		return err
	}
	store, _, err := getStateStore()
	if err != nil {
		return err
	}

	removed, err := store.Delete(prKey)
	if err != nil {
		return err
	}
	if removed {
		ui.Success("Reset review progress for PR #%s", prKey)
	} else {
		ui.Info("No state to reset")
	}
	return nil
}

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/cr/internal/action"
	"github.com/joescharf/cr/internal/session"
)

var (
	reviewSkim bool
	reviewDeep bool
)

var reviewCmd = &cobra.Command{
	Use:   "review <file>",
	Short: "Review one changed file and mark it reviewed",
	Long: `Run the configured review action for one file of the current PR,
then prompt to mark it reviewed. The default action is a diff against
the main branch; set actions.on_review to override it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := session.ModeSkim
		if reviewDeep {
			mode = session.ModeDeep
		}
		return reviewRun(cmd, args[0], mode)
	},
}

func init() {
	reviewCmd.Flags().BoolVar(&reviewSkim, "skim", false, "Skim mode (default)")
	reviewCmd.Flags().BoolVar(&reviewDeep, "deep", false, "Deep-read mode")
	reviewCmd.MarkFlagsMutuallyExclusive("skim", "deep")
	rootCmd.AddCommand(reviewCmd)
}

func reviewRun(cmd *cobra.Command, path, mode string) error {
	prKey, err := currentPRKey()
	if err != nil {
		return err
	}
	store, _, err := getStateStore()
	if err != nil {
		return err
	}

	// Offer the overview inline when no state exists yet; a declined
	// offer falls through to the Reviewer's own "unknown file" report.
	if _, err := loadOrOfferOverview(store, prKey); err != nil {
		return err
	}

	j := bestEffortJournal(cmd)
	if j != nil {
		defer func() { _ = j.Close() }()
	}

	rv := &session.Reviewer{
		PRKey:   prKey,
		Store:   store,
		Action:  action.NewRunner(viper.GetString("actions.on_review")),
		Journal: j,
		UI:      ui,
		Confirm: confirmFunc,
	}
	_, err = rv.Review(path, mode)
	return err
}

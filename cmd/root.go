package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/cr/internal/git"
	"github.com/joescharf/cr/internal/journal"
	"github.com/joescharf/cr/internal/ledger"
	"github.com/joescharf/cr/internal/output"
	"github.com/joescharf/cr/internal/overview"
	"github.com/joescharf/cr/internal/state"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui *output.UI

	verbose bool

	buildVersion string
	buildCommit  string
	buildDate    string
)

// Collaborator seams, replaceable in tests.
var (
	gitClient    git.Client       = git.NewClient()
	githubClient git.GitHubClient = git.NewGitHubClient()
	confirmFunc                   = confirmStdin
)

var rootCmd = &cobra.Command{
	Use:   "cr",
	Short: "Track code-review progress for the current pull request",
	Long: `cr tracks which changed files of a pull request you have reviewed
and how many lines remain. Progress is kept per PR under the repo's
.git directory, so a partially finished review survives across
invocations.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)

	// Alias expansion happens before cobra sees the arguments, so the
	// config must be read early; OnInitialize reads it again, which is
	// harmless.
	initConfig()
	expandAlias()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/cr/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDirFunc()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("CR")
	viper.AutomaticEnv()

	defaultDir, _ := configDirFunc()
	viper.SetDefault("state_dir", "")
	viper.SetDefault("journal_path", filepath.Join(defaultDir, "journal.db"))
	viper.SetDefault("actions.on_review", "")
	viper.SetDefault("jira.base", "")

	// A missing or malformed config file is treated as an empty
	// configuration, never an error.
	_ = viper.ReadInConfig()
}

func initDeps() {
	if ui == nil {
		ui = output.New()
	}
	ui.Verbose = verbose
}

// expandAlias splices a configured alias expansion into os.Args before
// parsing, so `cr o` can stand for `cr overview --interactive`.
func expandAlias() {
	if len(os.Args) < 2 {
		return
	}
	aliases := viper.GetStringMapString("aliases")
	expansion, ok := aliases[strings.ToLower(os.Args[1])]
	if !ok {
		return
	}
	tokens, err := shlex.Split(expansion)
	if err != nil || len(tokens) == 0 {
		return
	}
	args := []string{os.Args[0]}
	args = append(args, tokens...)
	args = append(args, os.Args[2:]...)
	os.Args = args
}

// currentPRKey resolves the PR number for the current branch.
func currentPRKey() (string, error) {
	n, err := githubClient.CurrentPRNumber()
	if err != nil {
		if branch, berr := gitClient.CurrentBranch(); berr == nil && branch != "" {
			return "", fmt.Errorf("unable to determine current PR for branch %s: %w", branch, err)
		}
		return "", fmt.Errorf("unable to determine current PR: %w", err)
	}
	return fmt.Sprintf("%d", n), nil
}

// getStateStore returns the state store and the repo root it lives under.
func getStateStore() (*state.Store, string, error) {
	root, err := gitClient.RepoRoot()
	if err != nil {
		return nil, "", err
	}
	if dir := viper.GetString("state_dir"); dir != "" {
		return &state.Store{Dir: dir}, root, nil
	}
	return state.NewStore(root), root, nil
}

// cmdContext returns the command's context, or a background context
// when the command was not run through Execute.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// openJournal opens and migrates the review-event journal.
func openJournal(cmd *cobra.Command) (*journal.Journal, error) {
	j, err := journal.Open(viper.GetString("journal_path"))
	if err != nil {
		return nil, err
	}
	if err := j.Migrate(cmdContext(cmd)); err != nil {
		_ = j.Close()
		return nil, err
	}
	return j, nil
}

// bestEffortJournal returns the journal or nil; review flows still work
// when the journal cannot be opened.
func bestEffortJournal(cmd *cobra.Command) *journal.Journal {
	j, err := openJournal(cmd)
	if err != nil {
		ui.VerboseLog("journal unavailable: %v", err)
		return nil
	}
	return j
}

// stdin is shared between the confirm prompt and the interactive
// session so buffered input is never split across two readers.
var stdin = bufio.NewReader(os.Stdin)

// confirmStdin asks a yes/no question on the terminal.
func confirmStdin(prompt string, def bool) bool {
	choices := "y/N"
	if def {
		choices = "Y/n"
	}
	fmt.Fprintf(os.Stdout, "%s [%s] ", prompt, choices)

	line, err := stdin.ReadString('\n')
	if err != nil {
		return def
	}
	ans := strings.ToLower(strings.TrimSpace(line))
	if ans == "" {
		return def
	}
	return ans == "y"
}

// loadOrOfferOverview loads the state for prKey, offering to run the
// overview inline when none exists. The overview runs at most once; a
// declined offer returns nil state with no error.
func loadOrOfferOverview(store *state.Store, prKey string) (*ledger.ReviewState, error) {
	st, err := store.Load(prKey)
	if err != nil {
		return nil, err
	}
	if st != nil {
		return st, nil
	}

	if !confirmFunc("No state file. Run overview?", false) {
		return nil, nil
	}

	b := &overview.Builder{
		GitHub:   githubClient,
		Store:    store,
		JiraBase: viper.GetString("jira.base"),
	}
	res, err := b.Build()
	if err != nil {
		return nil, err
	}
	renderOverview(res, false)
	return store.Load(prKey)
}

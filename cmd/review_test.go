package cmd

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/cr/internal/journal"
	"github.com/joescharf/cr/internal/session"
	"github.com/joescharf/cr/internal/state"
)

func TestReviewRun_MarksFile(t *testing.T) {
	_, out, _ := testEnv(t)
	stubCollaborators(t, &fakeGitHub{view: prView()}, true)
	// `true` exits 0 and ignores the appended path, so no diff is shown.
	viper.Set("actions.on_review", "true")

	store := &state.Store{Dir: viper.GetString("state_dir")}
	require.NoError(t, store.Save(seedState(), "42"))

	require.NoError(t, reviewRun(reviewCmd, "a.py", session.ModeDeep))

	st, err := store.Load("42")
	require.NoError(t, err)
	assert.True(t, st.Files["a.py"].Reviewed)
	assert.Contains(t, out.String(), "Marked 5 lines as reviewed (deep mode)")

	// The transition lands in the journal too.
	j, err := journal.Open(viper.GetString("journal_path"))
	require.NoError(t, err)
	defer func() { _ = j.Close() }()
	require.NoError(t, j.Migrate(t.Context()))
	events, err := j.List(t.Context(), "42", 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "a.py", events[0].Path)
	assert.Equal(t, "deep", events[0].Mode)
	assert.Equal(t, 5, events[0].Lines)
}

func TestReviewRun_UnknownFile(t *testing.T) {
	_, _, errOut := testEnv(t)
	stubCollaborators(t, &fakeGitHub{view: prView()}, true)
	viper.Set("actions.on_review", "true")

	store := &state.Store{Dir: viper.GetString("state_dir")}
	require.NoError(t, store.Save(seedState(), "42"))

	require.NoError(t, reviewRun(reviewCmd, "zzz.py", session.ModeSkim))
	assert.Contains(t, errOut.String(), "Unknown file")

	st, err := store.Load("42")
	require.NoError(t, err)
	for path, f := range st.Files {
		assert.False(t, f.Reviewed, "unexpected mutation of %s", path)
	}
}

func TestReviewRun_NoStateDeclined(t *testing.T) {
	_, _, errOut := testEnv(t)
	stubCollaborators(t, &fakeGitHub{view: prView()}, false)
	viper.Set("actions.on_review", "true")

	// No state on disk, offer declined: clean exit, diagnosed.
	require.NoError(t, reviewRun(reviewCmd, "a.py", session.ModeSkim))
	assert.Contains(t, errOut.String(), "Unknown file")
}

func TestStatusRun_ReportsProgress(t *testing.T) {
	_, out, _ := testEnv(t)
	stubCollaborators(t, &fakeGitHub{view: prView()}, false)

	store := &state.Store{Dir: viper.GetString("state_dir")}
	st := seedState()
	_, err := st.MarkReviewed("a.py")
	require.NoError(t, err)
	require.NoError(t, store.Save(st, "42"))

	require.NoError(t, statusRun())
	assert.Contains(t, out.String(), "3 lines remaining")
	assert.Contains(t, out.String(), "63%")
	assert.Contains(t, out.String(), "1 files remaining")
}

func TestStatusRun_NoStateDeclined(t *testing.T) {
	_, out, _ := testEnv(t)
	stubCollaborators(t, &fakeGitHub{view: prView()}, false)

	require.NoError(t, statusRun())
	assert.Contains(t, out.String(), "No state")
}

func TestResetRun(t *testing.T) {
	_, out, _ := testEnv(t)
	stubCollaborators(t, &fakeGitHub{view: prView()}, false)

	store := &state.Store{Dir: viper.GetString("state_dir")}
	require.NoError(t, store.Save(seedState(), "42"))

	require.NoError(t, resetRun())
	assert.Contains(t, out.String(), "Reset review progress")

	st, err := store.Load("42")
	require.NoError(t, err)
	assert.Nil(t, st, "state should be gone after reset")

	// Second reset has nothing to do.
	out.Reset()
	require.NoError(t, resetRun())
	assert.Contains(t, out.String(), "No state to reset")
}

func TestHistoryRun_ListsEvents(t *testing.T) {
	_, out, _ := testEnv(t)
	stubCollaborators(t, &fakeGitHub{view: prView()}, false)

	j, err := journal.Open(viper.GetString("journal_path"))
	require.NoError(t, err)
	require.NoError(t, j.Migrate(t.Context()))
	require.NoError(t, j.Append(t.Context(), &journal.Event{
		PRKey: "42", Path: "a.py", Mode: "skim", Lines: 5,
	}))
	require.NoError(t, j.Close())

	historyLimit = 20
	require.NoError(t, historyRun(historyCmd))
	assert.Contains(t, out.String(), "a.py")
	assert.Contains(t, out.String(), "skim")
}

func TestHistoryRun_Empty(t *testing.T) {
	_, out, _ := testEnv(t)
	stubCollaborators(t, &fakeGitHub{view: prView()}, false)

	historyLimit = 20
	require.NoError(t, historyRun(historyCmd))
	assert.Contains(t, out.String(), "No review events")
}

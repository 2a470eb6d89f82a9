package rebaseplan_test

import (
	"testing"

	"github.com/aviator-co/stackcore/internal/dagmodel"
	"github.com/aviator-co/stackcore/internal/rebaseplan"
	"github.com/stretchr/testify/require"
)

func TestCreatePlan_SingleTarget(t *testing.T) {
	repo := &dagmodel.Repo{
		Commits: dagmodel.CommitMap{"A": {Sha: "A"}},
		Branches: []*dagmodel.Branch{
			{Ref: "main", HeadSha: "A", IsTrunk: true},
		},
	}
	intent := &dagmodel.RebaseIntent{
		ID:          "intent-1",
		CreatedAtMs: 5000,
		Targets: []dagmodel.RebaseTarget{
			{
				Node:          &dagmodel.StackNodeState{Branch: "feature", HeadSha: "C", BaseSha: "A"},
				TargetBaseSha: "A",
			},
		},
	}

	ids := []string{"job-1"}
	i := 0
	gen := func() string {
		id := ids[i]
		i++
		return id
	}

	outIntent, state, ok := rebaseplan.CreatePlan(repo, intent, gen)
	require.True(t, ok)
	require.Same(t, intent, outIntent)

	require.Equal(t, "intent-1", state.Session.ID)
	require.Equal(t, dagmodel.SessionPending, state.Session.Status)
	require.Equal(t, "A", state.Session.InitialTrunkSha)
	require.Equal(t, []string{"job-1"}, state.Session.Jobs)
	require.Equal(t, []string{"job-1"}, state.Queue.PendingJobIDs)
	require.Empty(t, state.Queue.ActiveJobID)

	job := state.JobsByID["job-1"]
	require.Equal(t, "feature", job.Branch)
	require.Equal(t, "A", job.OriginalBaseSha)
	require.Equal(t, "C", job.OriginalHeadSha)
	require.Equal(t, "A", job.TargetBaseSha)
	require.Equal(t, dagmodel.JobQueued, job.Status)
}

func TestCreatePlan_FailsWithoutTrunk(t *testing.T) {
	repo := &dagmodel.Repo{Commits: dagmodel.CommitMap{"A": {Sha: "A"}}}
	intent := &dagmodel.RebaseIntent{
		Targets: []dagmodel.RebaseTarget{
			{Node: &dagmodel.StackNodeState{Branch: "feature", HeadSha: "A"}, TargetBaseSha: "A"},
		},
	}
	_, _, ok := rebaseplan.CreatePlan(repo, intent, func() string { return "x" })
	require.False(t, ok)
}

func TestCreatePlan_FailsWithNoTargets(t *testing.T) {
	repo := &dagmodel.Repo{
		Commits:  dagmodel.CommitMap{"A": {Sha: "A"}},
		Branches: []*dagmodel.Branch{{Ref: "main", HeadSha: "A", IsTrunk: true}},
	}
	intent := &dagmodel.RebaseIntent{}
	_, _, ok := rebaseplan.CreatePlan(repo, intent, func() string { return "x" })
	require.False(t, ok)
}

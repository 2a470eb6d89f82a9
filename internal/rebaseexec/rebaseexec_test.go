package rebaseexec_test

import (
	"testing"

	"github.com/aviator-co/stackcore/internal/dagmodel"
	"github.com/aviator-co/stackcore/internal/rebaseexec"
	"github.com/stretchr/testify/require"
)

func baseState() dagmodel.RebaseState {
	return dagmodel.RebaseState{
		Session: dagmodel.RebaseSession{ID: "s1", Status: dagmodel.SessionPending, Jobs: []string{"j1", "j2"}},
		JobsByID: map[string]*dagmodel.RebaseJob{
			"j1": {ID: "j1", Branch: "feat1", Status: dagmodel.JobQueued},
			"j2": {ID: "j2", Branch: "feat2", Status: dagmodel.JobQueued},
		},
		Queue: dagmodel.RebaseQueue{PendingJobIDs: []string{"j1", "j2"}},
	}
}

func TestNextJob_PromotesFirstPending(t *testing.T) {
	state := baseState()
	next, ok := rebaseexec.NextJob(state, 100)
	require.True(t, ok)
	require.Equal(t, "j1", next.Queue.ActiveJobID)
	require.Equal(t, []string{"j2"}, next.Queue.PendingJobIDs)
	require.Equal(t, dagmodel.JobApplying, next.JobsByID["j1"].Status)
	require.Equal(t, dagmodel.SessionRunning, next.Session.Status)

	// original untouched
	require.Empty(t, state.Queue.ActiveJobID)
	require.Equal(t, dagmodel.JobQueued, state.JobsByID["j1"].Status)
}

func TestNextJob_NoOpWhenActiveJobExists(t *testing.T) {
	state := baseState()
	state.Queue.ActiveJobID = "j1"
	_, ok := rebaseexec.NextJob(state, 100)
	require.False(t, ok)
}

func TestRecordConflict(t *testing.T) {
	job := &dagmodel.RebaseJob{ID: "j1", Status: dagmodel.JobApplying}
	wt := dagmodel.WorkingTreeStatus{IsRebasing: true, Conflicted: []string{"a.go", "b.go"}}
	out := rebaseexec.RecordConflict(job, wt, 200, map[string][]int{"a.go": {1, 2, 3}})
	require.Equal(t, dagmodel.JobAwaitingUser, out.Status)
	require.Len(t, out.Conflicts, 2)
	require.Equal(t, "a.go", out.Conflicts[0].Path)
	require.Equal(t, []int{1, 2, 3}, out.Conflicts[0].Stages)
	require.Equal(t, dagmodel.JobApplying, job.Status) // original untouched
}

func TestCompleteJob(t *testing.T) {
	job := &dagmodel.RebaseJob{ID: "j1", Branch: "feat1", TargetBaseSha: "newbase"}
	result := rebaseexec.CompleteJob(job, "newhead", 300, []dagmodel.ShaRewrite{{OldSha: "old1", NewSha: "new1"}})
	require.Equal(t, dagmodel.JobCompleted, result.Job.Status)
	require.Equal(t, "newhead", result.Job.RebasedHeadSha)
	require.Equal(t, []rebaseexec.StackMutation{{Branch: "feat1", NewBaseSha: "newbase", NewHeadSha: "newhead"}}, result.StackMutations)
	require.Len(t, result.CommitRewrites, 1)
}

func TestEnqueueDescendants(t *testing.T) {
	state := baseState()
	state.Queue.PendingJobIDs = nil
	parent := &dagmodel.StackNodeState{
		Branch: "parent",
		Children: []*dagmodel.StackNodeState{
			{Branch: "child1", HeadSha: "c1", BaseSha: "b1"},
		},
	}
	i := 0
	gen := func() string { i++; return "gen-job" }

	next := rebaseexec.EnqueueDescendants(state, parent, "newParentHead", 400, gen)
	require.Len(t, next.Queue.PendingJobIDs, 1)
	job := next.JobsByID["gen-job"]
	require.Equal(t, "child1", job.Branch)
	require.Equal(t, "newParentHead", job.TargetBaseSha)
	require.Equal(t, dagmodel.JobQueued, job.Status)
}

func TestEnqueueDescendants_NoChildrenReturnsSameState(t *testing.T) {
	state := baseState()
	parent := &dagmodel.StackNodeState{Branch: "leaf"}
	next := rebaseexec.EnqueueDescendants(state, parent, "x", 0, func() string { return "" })
	require.Equal(t, state.Session.Jobs, next.Session.Jobs)
}

func TestResumeRebaseSession_ConflictedBecomesAwaitingUser(t *testing.T) {
	state := baseState()
	state.Queue.ActiveJobID = "j1"
	wt := dagmodel.WorkingTreeStatus{IsRebasing: true, Conflicted: []string{"a.go"}}
	next := rebaseexec.ResumeRebaseSession(state, wt, 500)
	require.Equal(t, dagmodel.SessionAwaitUser, next.Session.Status)
	require.Equal(t, dagmodel.JobAwaitingUser, next.JobsByID["j1"].Status)
}

func TestResumeRebaseSession_NotRebasingCompletesWhenNoPending(t *testing.T) {
	state := baseState()
	state.Queue.ActiveJobID = "j1"
	state.Queue.PendingJobIDs = nil
	wt := dagmodel.WorkingTreeStatus{IsRebasing: false}
	next := rebaseexec.ResumeRebaseSession(state, wt, 600)
	require.Equal(t, dagmodel.SessionCompleted, next.Session.Status)
	require.Equal(t, int64(600), next.Session.CompletedAtMs)
	require.Empty(t, next.Queue.ActiveJobID)
	require.Equal(t, dagmodel.JobCompleted, next.JobsByID["j1"].Status)
}

func TestDecorateWorkingTreeStatus(t *testing.T) {
	state := baseState()
	state.Queue.ActiveJobID = "j1"
	state.JobsByID["j1"].Status = dagmodel.JobAwaitingUser
	wt := dagmodel.WorkingTreeStatus{IsRebasing: true}

	decorated := rebaseexec.DecorateWorkingTreeStatus(wt, &state)
	require.Equal(t, "rebasing", decorated.Operation)
	require.Equal(t, "s1", decorated.RebaseSessionID)
	require.Equal(t, "feat1", decorated.ConflictedBranch)

	idle := rebaseexec.DecorateWorkingTreeStatus(wt, nil)
	require.Equal(t, "idle", idle.Operation)
}

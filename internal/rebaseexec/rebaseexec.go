// Package rebaseexec implements the RebaseStateMachine (§4.8): the pure
// transitions an orchestrator applies to a RebaseState in response to
// executor events (a job started, a conflict hit, a job finished, a
// process reattached to an in-flight rebase). No I/O; every function here
// takes a state and returns a new one.
//
// Grounded on the teacher's sequencer.Sequencer, which drives exactly this
// job queue (one RestackOp per branch) against the working tree, reading
// git status to decide whether to continue, pause for conflicts, or
// finish. This package extracts that decision logic into pure functions
// over dagmodel.RebaseState so the orchestrator supplies the I/O.
package rebaseexec

import "github.com/aviator-co/stackcore/internal/dagmodel"

// NextJob promotes the first pending job to active, if none is already
// active. Returns the same state and ok=false when there's nothing to do.
func NextJob(state dagmodel.RebaseState, nowMs int64) (dagmodel.RebaseState, bool) {
	if state.Queue.ActiveJobID != "" || len(state.Queue.PendingJobIDs) == 0 {
		return state, false
	}
	next := state.Clone()
	id := next.Queue.PendingJobIDs[0]
	next.Queue.PendingJobIDs = next.Queue.PendingJobIDs[1:]
	next.Queue.ActiveJobID = id
	if job, ok := next.JobsByID[id]; ok {
		job.Status = dagmodel.JobApplying
		job.UpdatedAtMs = nowMs
	}
	next.Session.Status = dagmodel.SessionRunning
	return next, true
}

// RecordConflict marks job as awaiting-user, populating its conflicts from
// the observed working tree's conflicted paths in order. stageInfo may be
// nil; when present it supplies the git index stage numbers per path.
func RecordConflict(
	job *dagmodel.RebaseJob,
	workingTree dagmodel.WorkingTreeStatus,
	nowMs int64,
	stageInfo map[string][]int,
) *dagmodel.RebaseJob {
	if job == nil {
		return nil
	}
	out := *job
	out.Status = dagmodel.JobAwaitingUser
	out.UpdatedAtMs = nowMs
	out.Conflicts = make([]dagmodel.ConflictStage, 0, len(workingTree.Conflicted))
	for _, path := range workingTree.Conflicted {
		out.Conflicts = append(out.Conflicts, dagmodel.ConflictStage{
			Path:   path,
			Stages: stageInfo[path],
		})
	}
	return &out
}

// StackMutation records a branch's ref update once its rebase job
// completes.
type StackMutation struct {
	Branch     string
	NewBaseSha string
	NewHeadSha string
}

// CompleteJobResult is the outcome of finishing a rebase job.
type CompleteJobResult struct {
	Job            *dagmodel.RebaseJob
	StackMutations []StackMutation
	CommitRewrites []dagmodel.ShaRewrite
}

// CompleteJob marks job completed at rebasedHeadSha and derives the single
// stack mutation (branch ref move) it implies.
func CompleteJob(
	job *dagmodel.RebaseJob,
	rebasedHeadSha string,
	nowMs int64,
	rewrites []dagmodel.ShaRewrite,
) CompleteJobResult {
	if job == nil {
		return CompleteJobResult{}
	}
	out := *job
	out.Status = dagmodel.JobCompleted
	out.UpdatedAtMs = nowMs
	out.RebasedHeadSha = rebasedHeadSha

	return CompleteJobResult{
		Job: &out,
		StackMutations: []StackMutation{{
			Branch:     out.Branch,
			NewBaseSha: out.TargetBaseSha,
			NewHeadSha: rebasedHeadSha,
		}},
		CommitRewrites: rewrites,
	}
}

// EnqueueDescendants appends one queued job per child of parent, targeting
// parentNewHeadSha as their new base. Returns the same state reference
// (not a clone) when parent has no children, so callers can use identity
// to detect a no-op.
func EnqueueDescendants(
	state dagmodel.RebaseState,
	parent *dagmodel.StackNodeState,
	parentNewHeadSha string,
	nowMs int64,
	generateJobID func() string,
) dagmodel.RebaseState {
	if parent == nil || len(parent.Children) == 0 {
		return state
	}
	next := state.Clone()
	for _, child := range parent.Children {
		id := generateJobID()
		next.JobsByID[id] = &dagmodel.RebaseJob{
			ID:              id,
			Branch:          child.Branch,
			OriginalBaseSha: child.BaseSha,
			OriginalHeadSha: child.HeadSha,
			TargetBaseSha:   parentNewHeadSha,
			Status:          dagmodel.JobQueued,
			CreatedAtMs:     nowMs,
			UpdatedAtMs:     nowMs,
		}
		next.Session.Jobs = append(next.Session.Jobs, id)
		next.Queue.PendingJobIDs = append(next.Queue.PendingJobIDs, id)
	}
	return next
}

// ResumeRebaseSession reconciles a stored RebaseState with the observed
// working-tree state after a process restart mid-rebase.
func ResumeRebaseSession(state dagmodel.RebaseState, workingTree dagmodel.WorkingTreeStatus, nowMs int64) dagmodel.RebaseState {
	next := state.Clone()
	active, hasActive := next.ActiveJob()

	switch {
	case workingTree.IsRebasing && len(workingTree.Conflicted) > 0:
		if hasActive {
			active.Status = dagmodel.JobAwaitingUser
			active.UpdatedAtMs = nowMs
		}
		next.Session.Status = dagmodel.SessionAwaitUser
	case workingTree.IsRebasing:
		if hasActive {
			active.Status = dagmodel.JobApplying
			active.UpdatedAtMs = nowMs
		}
		next.Session.Status = dagmodel.SessionRunning
	default:
		if hasActive {
			active.Status = dagmodel.JobCompleted
			active.UpdatedAtMs = nowMs
			next.Queue.ActiveJobID = ""
		}
		if len(next.Queue.PendingJobIDs) == 0 {
			next.Session.Status = dagmodel.SessionCompleted
			next.Session.CompletedAtMs = nowMs
		}
	}
	return next
}

// DecoratedWorkingTreeStatus is the working-tree status a UI renders,
// annotated with the in-flight rebase (if any).
type DecoratedWorkingTreeStatus struct {
	dagmodel.WorkingTreeStatus
	Operation        string // "idle" | "rebasing"
	RebaseSessionID  string
	ConflictedBranch string
}

// DecorateWorkingTreeStatus attaches rebase-session context to a raw
// working-tree status for display.
func DecorateWorkingTreeStatus(status dagmodel.WorkingTreeStatus, state *dagmodel.RebaseState) DecoratedWorkingTreeStatus {
	out := DecoratedWorkingTreeStatus{WorkingTreeStatus: status, Operation: "idle"}
	if state == nil {
		return out
	}
	switch state.Session.Status {
	case dagmodel.SessionPending, dagmodel.SessionRunning, dagmodel.SessionAwaitUser:
		out.Operation = "rebasing"
		out.RebaseSessionID = state.Session.ID
	}
	if job, ok := state.ActiveJob(); ok && job.Status == dagmodel.JobAwaitingUser {
		out.ConflictedBranch = job.Branch
	}
	return out
}

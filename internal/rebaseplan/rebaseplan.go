// Package rebaseplan implements RebasePlanner (§4.7): turning a confirmed
// RebaseIntent into the initial RebaseState an executor drives to
// completion.
//
// Grounded on the teacher's sequencer.Sequencer plan construction (one
// sequencer.RestackOp per branch, executed in dependency order), adapted
// to the pure job/queue model this core uses instead of the teacher's
// mutable sequencer file on disk.
package rebaseplan

import (
	"github.com/aviator-co/stackcore/internal/dagmodel"
	"github.com/aviator-co/stackcore/internal/trunk"
)

// CreateSession builds the initial RebaseState for targets: one queued
// RebaseJob per target, in the given order, none of them active yet. Fails
// (ok=false) if there are no targets or the repo has no resolvable trunk.
func CreateSession(
	sessionID string,
	repo *dagmodel.Repo,
	targets []dagmodel.RebaseTarget,
	startedAtMs int64,
	generateJobID func() string,
) (*dagmodel.RebaseState, bool) {
	if repo == nil || len(targets) == 0 {
		return nil, false
	}
	trunkHeadSha := trunk.GetTrunkHeadSha(repo.Branches, repo.Commits)
	if trunkHeadSha == "" {
		return nil, false
	}

	jobsByID := map[string]*dagmodel.RebaseJob{}
	var jobIDs []string
	for _, t := range targets {
		if t.Node == nil {
			continue
		}
		id := generateJobID()
		jobsByID[id] = &dagmodel.RebaseJob{
			ID:              id,
			Branch:          t.Node.Branch,
			OriginalBaseSha: t.Node.BaseSha,
			OriginalHeadSha: t.Node.HeadSha,
			TargetBaseSha:   t.TargetBaseSha,
			Status:          dagmodel.JobQueued,
			CreatedAtMs:     startedAtMs,
			UpdatedAtMs:     startedAtMs,
		}
		jobIDs = append(jobIDs, id)
	}
	if len(jobIDs) == 0 {
		return nil, false
	}

	return &dagmodel.RebaseState{
		Session: dagmodel.RebaseSession{
			ID:              sessionID,
			StartedAtMs:     startedAtMs,
			Status:          dagmodel.SessionPending,
			InitialTrunkSha: trunkHeadSha,
			Jobs:            jobIDs,
		},
		JobsByID: jobsByID,
		Queue: dagmodel.RebaseQueue{
			PendingJobIDs: append([]string(nil), jobIDs...),
		},
	}, true
}

// CreatePlan wraps CreateSession, using the intent's own ID as the session
// ID and its CreatedAtMs as the session start time — a rebase plan is
// always the direct execution of one already-built intent.
func CreatePlan(
	repo *dagmodel.Repo,
	intent *dagmodel.RebaseIntent,
	generateJobID func() string,
) (*dagmodel.RebaseIntent, *dagmodel.RebaseState, bool) {
	if intent == nil {
		return nil, nil, false
	}
	state, ok := CreateSession(intent.ID, repo, intent.Targets, intent.CreatedAtMs, generateJobID)
	if !ok {
		return nil, nil, false
	}
	return intent, state, true
}

package validate

import "github.com/aviator-co/stackcore/internal/dagmodel"

// ValidateIntentStructure checks that an intent is well-formed shape-only,
// before anything about repo state is consulted.
func ValidateIntentStructure(intent *dagmodel.RebaseIntent) Result {
	if intent == nil || len(intent.Targets) == 0 {
		return fail(CodeInvalidIntent, "rebase intent has no targets")
	}
	for _, t := range intent.Targets {
		if t.Node == nil || t.Node.HeadSha == "" || t.TargetBaseSha == "" {
			return fail(CodeInvalidIntent, "rebase target is missing a head or target base sha")
		}
	}
	return ok()
}

// ValidateStart checks whether intent may begin executing against repo's
// current snapshot. existing is the caller's in-memory RebaseState for this
// repo, if one is already tracked (nil if none).
func ValidateStart(
	repo *dagmodel.Repo,
	intent *dagmodel.RebaseIntent,
	workingTree dagmodel.WorkingTreeStatus,
	existing *dagmodel.RebaseState,
) Result {
	if r := ValidateIntentStructure(intent); !r.Valid {
		return r
	}

	if workingTree.IsRebasing {
		return fail(CodeRebaseInProgress, "a rebase is already in progress in the working tree")
	}
	if existing != nil && isSessionActive(existing.Session.Status) {
		return fail(CodeSessionExists, "a rebase session already exists for this repository")
	}
	if workingTree.Detached {
		return fail(CodeDetachedHead, "cannot start a rebase with a detached HEAD")
	}
	if files := workingTree.ChangedFiles(); len(files) > 0 {
		return fail(CodeDirtyWorkingTree, dirtyTreeMessage(files))
	}

	var affected []string
	for _, t := range intent.Targets {
		n := t.Node
		branch, ok := repo.BranchByRef(n.Branch)
		if !ok {
			return fail(CodeBranchNotFound, "branch not found: "+n.Branch)
		}
		if branch.HeadSha != n.HeadSha {
			return fail(CodeBranchMoved, "branch "+n.Branch+" has moved since this rebase was planned")
		}
		if _, ok := repo.Commits[t.TargetBaseSha]; !ok {
			return fail(CodeTargetNotFound, "target base commit not found: "+t.TargetBaseSha)
		}
		if t.TargetBaseSha == n.BaseSha {
			return fail(CodeSameBase, "branch "+n.Branch+" is already based there")
		}
		affected = append(affected, n.Branch)
	}

	if wc := ValidateWorktrees(repo, affected); len(wc.Dirty) > 0 {
		return fail(CodeWorktreeConflict, "branches are checked out in dirty worktrees: "+joinNonEmpty(wc.Dirty))
	}

	return ok()
}

// ValidateContinue checks whether a CONTINUE_AFTER_RESOLVE gesture may
// proceed: a rebase must be in progress and every conflict must already be
// resolved.
func ValidateContinue(workingTree dagmodel.WorkingTreeStatus, state *dagmodel.RebaseState) Result {
	if state == nil || !workingTree.IsRebasing {
		return fail(CodeRebaseInProgress, "no rebase is currently in progress to continue")
	}
	if len(workingTree.Conflicted) > 0 {
		return fail(CodeConflictsUnresolved, "resolve remaining conflicts before continuing: "+joinNonEmpty(workingTree.Conflicted))
	}
	return ok()
}

// ValidateAbort checks whether an ABORT gesture may proceed: a rebase must
// actually be in progress.
func ValidateAbort(workingTree dagmodel.WorkingTreeStatus, state *dagmodel.RebaseState) Result {
	if state == nil || !workingTree.IsRebasing {
		return fail(CodeRebaseInProgress, "no rebase is currently in progress to abort")
	}
	return ok()
}

func isSessionActive(status dagmodel.SessionStatus) bool {
	switch status {
	case dagmodel.SessionPending, dagmodel.SessionRunning, dagmodel.SessionAwaitUser:
		return true
	default:
		return false
	}
}

func dirtyTreeMessage(files []string) string {
	return "working tree has uncommitted changes: " + joinNonEmpty(files)
}

func joinNonEmpty(items []string) string {
	const maxShown = 5
	if len(items) <= maxShown {
		return join(items)
	}
	return join(items[:maxShown]) + " (+" + itoa(len(items)-maxShown) + " more)"
}

func join(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

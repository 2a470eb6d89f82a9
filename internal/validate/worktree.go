package validate

import "github.com/aviator-co/stackcore/internal/dagmodel"

// WorktreeConflictResult partitions affectedBranches' worktrees (if any)
// into ones that can be auto-detached (clean) and ones that need the user
// to intervene first (dirty).
type WorktreeConflictResult struct {
	Clean []string
	Dirty []string
}

// ValidateWorktrees checks out every branch in affectedBranches against
// repo's non-active worktrees, per §4.12's WorktreeConflict validator.
func ValidateWorktrees(repo *dagmodel.Repo, affectedBranches []string) WorktreeConflictResult {
	var out WorktreeConflictResult
	for _, branch := range affectedBranches {
		w, ok := repo.WorktreeForBranch(branch)
		if !ok {
			continue
		}
		if w.IsDirty {
			out.Dirty = append(out.Dirty, branch)
		} else {
			out.Clean = append(out.Clean, branch)
		}
	}
	return out
}

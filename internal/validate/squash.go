package validate

import (
	"github.com/aviator-co/stackcore/internal/dagmodel"
	"github.com/aviator-co/stackcore/internal/dagwalk"
	"github.com/aviator-co/stackcore/internal/ownership"
	"github.com/aviator-co/stackcore/internal/trunk"
)

// SquashResult is SquashValidator's return value: the common Result plus,
// on success, everything the executor needs to carry out the squash.
type SquashResult struct {
	Result
	TargetSha          string
	ParentSha          string
	BranchesAtTarget   []string
	BranchesAtParent   []string
	DescendantBranches []string
}

func squashFail(code, message string) SquashResult {
	return SquashResult{Result: fail(code, message)}
}

// ValidateSquash checks whether targetSha may be squashed into its parent,
// in the precedence order named by §4.12: no_parent, is_trunk,
// parent_is_trunk, rebase_in_progress, dirty_tree (only when squashing the
// currently checked out branch), not_linear.
func ValidateSquash(
	repo *dagmodel.Repo,
	targetSha string,
	isRebaseInProgress bool,
) SquashResult {
	commit, ok := repo.Commits[targetSha]
	if !ok || commit.ParentSha == "" {
		return squashFail(SquashNoParent, "commit has no parent to squash into")
	}
	parentSha := commit.ParentSha

	trunkHeadSha := trunk.GetTrunkHeadSha(repo.Branches, repo.Commits)
	trunkShas := ownership.BuildTrunkShaSet(trunkHeadSha, repo.Commits)

	if trunkShas[targetSha] {
		return squashFail(SquashIsTrunk, "cannot squash a commit on trunk")
	}
	if trunkShas[parentSha] {
		return squashFail(SquashParentIsTrunk, "cannot squash into a trunk commit")
	}
	if isRebaseInProgress {
		return squashFail(SquashRebaseInProgress, "cannot squash while a rebase is in progress")
	}

	branchHeadIndex := dagwalk.BuildBranchHeadIndex(repo.LocalBranches())
	branchesAtTarget := branchHeadIndex[targetSha]

	if isCurrentBranchSquash(repo, branchesAtTarget) {
		if files := repo.WorkingTreeStatus.ChangedFiles(); len(files) > 0 {
			return squashFail(SquashDirtyTree, dirtyTreeMessage(files))
		}
	}

	if len(commit.ChildrenSha) > 1 {
		return squashFail(SquashNotLinear, "commit has more than one child; squashing it would drop a branch")
	}

	descendants := collectDescendantBranches(commit, repo.Commits, branchHeadIndex)

	return SquashResult{
		Result:             ok(),
		TargetSha:          targetSha,
		ParentSha:          parentSha,
		BranchesAtTarget:   branchesAtTarget,
		BranchesAtParent:   branchHeadIndex[parentSha],
		DescendantBranches: descendants,
	}
}

func isCurrentBranchSquash(repo *dagmodel.Repo, branchesAtTarget []string) bool {
	current := repo.WorkingTreeStatus.CurrentBranch
	if current == "" {
		return false
	}
	for _, b := range branchesAtTarget {
		if b == current {
			return true
		}
	}
	return false
}

// collectDescendantBranches BFS-walks forward from commit's children,
// collecting every branch head reachable along the way.
func collectDescendantBranches(
	commit *dagmodel.Commit,
	commits dagmodel.CommitMap,
	branchHeadIndex map[string][]string,
) []string {
	var out []string
	visited := map[string]bool{}
	queue := append([]string(nil), commit.ChildrenSha...)
	for _, sha := range queue {
		visited[sha] = true
	}
	for len(queue) > 0 {
		sha := queue[0]
		queue = queue[1:]
		out = append(out, branchHeadIndex[sha]...)
		c, ok := commits[sha]
		if !ok {
			continue
		}
		for _, child := range c.ChildrenSha {
			if !visited[child] {
				visited[child] = true
				queue = append(queue, child)
			}
		}
	}
	return out
}

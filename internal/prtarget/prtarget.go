// Package prtarget implements PrTargetResolver (§4.11): picking the branch a
// pull request should target, and validating/repairing that choice as
// branches and PRs move around underneath it.
//
// Grounded on the teacher's actions.GetDefaultBranchName (trunk fallback) and
// stacks.BranchPRInfo's base-branch resolution walk, which climbs parent
// branches the same way findBaseBranch does here, and on gh's PR state
// checks for the merged/stale walk in findValidPrTarget.
package prtarget

import (
	"fmt"

	"github.com/aviator-co/stackcore/internal/dagmodel"
	"github.com/aviator-co/stackcore/internal/forgejoin"
	"github.com/aviator-co/stackcore/internal/ownership"
	"github.com/aviator-co/stackcore/internal/trunk"
)

const maxWalkDepth = 1000

// AmbiguousParentError reports that a commit has more than one eligible,
// unmerged local branch sitting at it, so findBaseBranch cannot pick a
// single parent without guessing.
type AmbiguousParentError struct {
	Sha      string
	Branches []string
}

func (e *AmbiguousParentError) Error() string {
	return fmt.Sprintf("multiple parent branches at %s: %v", e.Sha, e.Branches)
}

// FindBaseBranch walks parent links from headCommitSha's parent, returning
// the ref of the first local, non-merged branch it meets, or trunk if none
// is found before the walk runs out. mergedBranches is the set of branch
// refs the caller already knows to be merged and therefore ineligible.
func FindBaseBranch(
	repo *dagmodel.Repo,
	headCommitSha string,
	mergedBranches map[string]bool,
) (string, error) {
	trunkBranch := trunk.SelectTrunk(repo.Branches)
	trunkHeadSha := trunk.GetTrunkHeadSha(repo.Branches, repo.Commits)
	trunkShas := ownership.BuildTrunkShaSet(trunkHeadSha, repo.Commits)
	trunkRef := ""
	if trunkBranch != nil {
		trunkRef = trunkBranch.Ref
	}

	headByCommit := map[string][]*dagmodel.Branch{}
	for _, b := range repo.LocalBranches() {
		headByCommit[b.HeadSha] = append(headByCommit[b.HeadSha], b)
	}

	c, ok := repo.Commits[headCommitSha]
	if !ok {
		return trunkRef, nil
	}
	sha := c.ParentSha

	visited := map[string]bool{}
	for depth := 0; depth < maxWalkDepth && sha != "" && !visited[sha]; depth++ {
		visited[sha] = true

		if trunkShas[sha] {
			return trunkRef, nil
		}

		var eligible []string
		for _, b := range headByCommit[sha] {
			if mergedBranches[b.Ref] {
				continue
			}
			eligible = append(eligible, b.Ref)
		}
		switch len(eligible) {
		case 0:
			// keep walking
		case 1:
			return eligible[0], nil
		default:
			return "", &AmbiguousParentError{Sha: sha, Branches: eligible}
		}

		next, ok := repo.Commits[sha]
		if !ok {
			break
		}
		sha = next.ParentSha
	}

	return trunkRef, nil
}

// IsValidPrTarget reports whether branch is still a legitimate PR base: it
// is trunk, or it is not (yet) merged.
func IsValidPrTarget(branch string, trunkRef string, mergedBranches map[string]bool) bool {
	if branch == trunkRef {
		return true
	}
	return !mergedBranches[branch]
}

// FindValidPrTarget walks up the PR stack from branch's currentTarget,
// following headRefName -> baseRefName transitions through prs, until it
// reaches trunk or a base that is not merged. A cycle in the PR chain stops
// the walk and falls back the same as a dead end. trunkFallback, if
// non-empty, is returned when the walk dead-ends on a merged branch with no
// further PR to climb; otherwise that case is an error.
func FindValidPrTarget(
	branch string,
	currentTarget string,
	prs []*dagmodel.ForgePullRequest,
	mergedBranches map[string]bool,
	trunkRef string,
	trunkFallback string,
) (string, error) {
	if IsValidPrTarget(currentTarget, trunkRef, mergedBranches) {
		return currentTarget, nil
	}

	visited := map[string]bool{currentTarget: true}
	cur := currentTarget
	for depth := 0; depth < maxWalkDepth; depth++ {
		pr := forgejoin.FindBestPr(cur, prs)
		if pr == nil || pr.BaseRefName == "" || visited[pr.BaseRefName] {
			if trunkFallback != "" {
				return trunkFallback, nil
			}
			return "", fmt.Errorf("prtarget: no valid PR target found for branch %q (stuck at %q)", branch, cur)
		}
		visited[pr.BaseRefName] = true
		cur = pr.BaseRefName
		if IsValidPrTarget(cur, trunkRef, mergedBranches) {
			return cur, nil
		}
	}

	if trunkFallback != "" {
		return trunkFallback, nil
	}
	return "", fmt.Errorf("prtarget: PR target walk for branch %q exceeded max depth", branch)
}

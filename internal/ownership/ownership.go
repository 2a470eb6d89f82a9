// Package ownership implements CommitOwnership (§4.3): the single source of
// truth for which commits a branch owns and what its base is.
//
// Grounded on the teacher's treedetector.detector.detectBranchTree, which
// walks backward from a branch head via object.NewCommitPreorderIter,
// stopping at a trunk merge-base, another branch's head, or a commit with
// more than one non-trunk child. This package re-expresses that walk over
// the pure dagmodel.CommitMap instead of a go-git object.Commit, and adds
// the fork-point ("independent commit") semantics the teacher's detector
// only implicitly carries in PossibleParents.
package ownership

import "github.com/aviator-co/stackcore/internal/dagmodel"

// Ownership is the result of walking backward from a branch head: the
// commits it owns (head-to-base order, base excluded) and its base SHA.
type Ownership struct {
	OwnedShas []string
	BaseSha   string
}

// BuildTrunkShaSet forward-walks from the trunk head via parent links,
// stopping at a missing commit (shallow-clone safe per invariant 1).
func BuildTrunkShaSet(trunkHeadSha string, commits dagmodel.CommitMap) map[string]bool {
	set := map[string]bool{}
	sha := trunkHeadSha
	visited := map[string]bool{}
	for sha != "" && !visited[sha] {
		visited[sha] = true
		set[sha] = true
		c, ok := commits[sha]
		if !ok {
			break
		}
		sha = c.ParentSha
	}
	return set
}

// IsForkPoint reports whether a commit has two or more children that are
// not themselves on the trunk lineage.
func IsForkPoint(commit *dagmodel.Commit, trunkShas map[string]bool) bool {
	if commit == nil {
		return false
	}
	n := 0
	for _, child := range commit.ChildrenSha {
		if !trunkShas[child] {
			n++
		}
	}
	return n >= 2
}

// Compute walks backward from headSha, assigning ownership per the §4.3
// algorithm:
//
//  1. Add the current SHA. If missing from commitMap, stop (base = last
//     known parent, if any).
//  2. If the current commit has no parent, it's a root: base = current.
//  3. If the parent is on the trunk lineage, base = parent.
//  4. If the parent is the head of some other local branch, base = parent.
//  5. If the parent is a fork point (>= 2 non-trunk children), base =
//     parent; the fork point itself is owned by nobody.
//  6. Otherwise continue from the parent.
//
// branchHeadIndex must be built from LOCAL branches only (remote heads
// never affect ownership, per §4.3's contract with the projector and the
// intent builder).
func Compute(
	headSha string,
	branchRef string,
	commits dagmodel.CommitMap,
	branchHeadIndex map[string][]string,
	trunkShas map[string]bool,
) Ownership {
	var owned []string
	lastKnownParent := ""
	sha := headSha
	visited := map[string]bool{}

	for sha != "" && !visited[sha] {
		visited[sha] = true
		owned = append(owned, sha)

		commit, ok := commits[sha]
		if !ok {
			// Missing mid-chain (or at the head itself): stop, base = last
			// known parent if any. A missing parent is that base, so it is
			// not owned.
			if lastKnownParent != "" {
				owned = owned[:len(owned)-1]
			}
			return Ownership{OwnedShas: owned, BaseSha: lastKnownParent}
		}

		if commit.ParentSha == "" {
			// Root commit: it is its own base.
			return Ownership{OwnedShas: owned, BaseSha: sha}
		}

		p := commit.ParentSha
		lastKnownParent = p

		if trunkShas[p] {
			return Ownership{OwnedShas: owned, BaseSha: p}
		}

		if refs := branchHeadIndex[p]; hasOtherRef(refs, branchRef) {
			return Ownership{OwnedShas: owned, BaseSha: p}
		}

		if pc, ok := commits[p]; ok && IsForkPoint(pc, trunkShas) {
			return Ownership{OwnedShas: owned, BaseSha: p}
		}

		sha = p
	}

	// Walked past the head (cycle guard tripped) without ever setting a
	// base: fall back to the last known parent.
	return Ownership{OwnedShas: owned, BaseSha: lastKnownParent}
}

func hasOtherRef(refs []string, self string) bool {
	for _, r := range refs {
		if r != self {
			return true
		}
	}
	return false
}

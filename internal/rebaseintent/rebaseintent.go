// Package rebaseintent implements RebaseIntentBuilder (§4.6): turning a
// (headSha, targetBaseSha) drag gesture into a RebaseIntent — a recursive
// StackNodeState tree describing everything that gesture would move.
//
// Grounded on the teacher's stacks.BranchInfo construction in
// actions.GetCurrentStack combined with treedetector's fork-point walk:
// the teacher computes "what does this branch carry with it" inline at
// rebase time, which this package re-expresses as a standalone, reusable
// recursive builder over ownership.Compute.
package rebaseintent

import (
	"sort"

	"github.com/aviator-co/stackcore/internal/dagmodel"
	"github.com/aviator-co/stackcore/internal/dagwalk"
	"github.com/aviator-co/stackcore/internal/ownership"
	"github.com/aviator-co/stackcore/internal/trunk"
)

// Build constructs a RebaseIntent for dragging the stack rooted at headSha
// onto targetBaseSha. generateID supplies the intent's opaque, stable-
// within-process ID. Returns ok=false (and a nil intent) if either SHA is
// unknown to repo.
func Build(
	repo *dagmodel.Repo,
	headSha, targetBaseSha string,
	nowMs int64,
	generateID func() string,
) (*dagmodel.RebaseIntent, bool) {
	if repo == nil || headSha == "" || targetBaseSha == "" {
		return nil, false
	}
	if _, ok := repo.Commits[headSha]; !ok {
		return nil, false
	}
	if _, ok := repo.Commits[targetBaseSha]; !ok {
		return nil, false
	}

	localBranches := repo.LocalBranches()
	trunkHeadSha := trunk.GetTrunkHeadSha(repo.Branches, repo.Commits)
	trunkShas := ownership.BuildTrunkShaSet(trunkHeadSha, repo.Commits)
	branchHeadIndex := dagwalk.BuildBranchHeadIndex(localBranches)

	branchName := representativeBranch(repo.Branches, headSha)

	visited := map[string]bool{}
	root := buildNode(repo.Commits, localBranches, branchHeadIndex, trunkShas, headSha, branchName, visited)
	if root == nil {
		return nil, false
	}

	return &dagmodel.RebaseIntent{
		ID:          generateID(),
		CreatedAtMs: nowMs,
		Targets: []dagmodel.RebaseTarget{
			{Node: root, TargetBaseSha: targetBaseSha},
		},
	}, true
}

// representativeBranch picks the branch name to label headSha with,
// preferring a local non-trunk branch, then any local branch, then any
// branch at all (including remotes).
func representativeBranch(branches []*dagmodel.Branch, headSha string) string {
	for _, b := range branches {
		if !b.IsRemote && !b.IsTrunk && !trunk.IsCanonicalTrunk(b) && b.HeadSha == headSha {
			return b.Ref
		}
	}
	for _, b := range branches {
		if !b.IsRemote && b.HeadSha == headSha {
			return b.Ref
		}
	}
	for _, b := range branches {
		if b.HeadSha == headSha {
			return b.Ref
		}
	}
	return ""
}

func isTrunkBranch(b *dagmodel.Branch) bool {
	return b.IsTrunk || trunk.IsCanonicalTrunk(b)
}

// buildNode recursively assembles one StackNodeState. visited is keyed by
// "headSha:branchName" so a commit shared by several branches can't recurse
// forever.
func buildNode(
	commits dagmodel.CommitMap,
	localBranches []*dagmodel.Branch,
	branchHeadIndex map[string][]string,
	trunkShas map[string]bool,
	headSha, branchName string,
	visited map[string]bool,
) *dagmodel.StackNodeState {
	key := headSha + ":" + branchName
	if visited[key] {
		return nil
	}
	visited[key] = true

	own := ownership.Compute(headSha, branchName, commits, branchHeadIndex, trunkShas)
	node := &dagmodel.StackNodeState{
		Branch:    branchName,
		HeadSha:   headSha,
		BaseSha:   own.BaseSha,
		OwnedShas: own.OwnedShas,
	}

	ownedSet := map[string]bool{}
	for _, s := range own.OwnedShas {
		ownedSet[s] = true
	}

	added := map[string]bool{}
	for _, b := range localBranches {
		if b.Ref == branchName || isTrunkBranch(b) || added[b.Ref] {
			continue
		}

		// (a) sibling at the same commit, or (b)/(c) its fork point sits
		// at headSha or anywhere in this node's owned chain.
		candOwn := ownership.Compute(b.HeadSha, b.Ref, commits, branchHeadIndex, trunkShas)
		if b.HeadSha != headSha && !ownedSet[candOwn.BaseSha] {
			continue
		}

		added[b.Ref] = true
		child := buildNode(commits, localBranches, branchHeadIndex, trunkShas, b.HeadSha, b.Ref, visited)
		if child != nil {
			node.Children = append(node.Children, child)
		}
	}

	sort.Slice(node.Children, func(i, j int) bool {
		return node.Children[i].Branch < node.Children[j].Branch
	})

	return node
}

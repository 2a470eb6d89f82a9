// Package projector implements StackProjector (§4.4): turning a Repo
// snapshot into the recursive []*dagmodel.UiStack tree a UI renders.
//
// Grounded on the teacher's utils/stackutils.BuildTree (parent-index driven
// tree assembly) and stacks.BranchInfo (per-branch permission/forge
// annotation), re-expressed as a single pure function of (Repo,
// *GitForgeState). UiCommit nodes are shared by reference within one
// projection, matching the teacher's shared-mutable-node pattern but built
// in two explicit passes here: first assemble the tree, then annotate
// branch heads, so that sharing is a documented invariant rather than an
// accident of object identity.
package projector

import (
	"sort"

	"github.com/aviator-co/stackcore/internal/dagmodel"
	"github.com/aviator-co/stackcore/internal/dagwalk"
	"github.com/aviator-co/stackcore/internal/forgejoin"
	"github.com/aviator-co/stackcore/internal/ownership"
	"github.com/aviator-co/stackcore/internal/prtarget"
	"github.com/aviator-co/stackcore/internal/trunk"
)

// Project builds the full stack tree for repo. forge may be nil, in which
// case no branch gets PR/merged annotations.
func Project(repo *dagmodel.Repo, forge *dagmodel.GitForgeState) []*dagmodel.UiStack {
	if repo == nil {
		return nil
	}

	localBranches := repo.LocalBranches()
	trunkHeadSha := trunk.GetTrunkHeadSha(repo.Branches, repo.Commits)
	trunkBranch := trunk.SelectTrunk(repo.Branches)
	trunkShas := ownership.BuildTrunkShaSet(trunkHeadSha, repo.Commits)
	branchHeadIndex := dagwalk.BuildBranchHeadIndex(localBranches)

	p := &projection{
		repo:            repo,
		forge:           forge,
		trunkShas:       trunkShas,
		branchHeadIndex: branchHeadIndex,
		nodes:           map[string]*dagmodel.UiCommit{},
		worktreeByName:  map[string]*dagmodel.Worktree{},
		ownerships:      map[string]ownership.Ownership{},
	}

	for _, w := range repo.Worktrees {
		if w.Branch != "" {
			p.worktreeByName[w.Branch] = w
		}
	}

	for _, b := range localBranches {
		if b == trunkBranch || trunk.IsCanonicalTrunk(b) || b.IsTrunk {
			continue
		}
		p.ownerships[b.Ref] = ownership.Compute(b.HeadSha, b.Ref, repo.Commits, branchHeadIndex, trunkShas)
	}

	baseIndex := map[string][]*dagmodel.Branch{}
	ownedShas := map[string]bool{}
	for _, b := range localBranches {
		own, hasOwnership := p.ownerships[b.Ref]
		if !hasOwnership {
			continue
		}
		baseIndex[own.BaseSha] = append(baseIndex[own.BaseSha], b)
		for _, s := range own.OwnedShas {
			ownedShas[s] = true
		}
	}
	p.baseIndex = baseIndex
	p.ownedShas = ownedShas

	var out []*dagmodel.UiStack

	trunkStack, attachmentShas := p.buildTrunkStack(trunkHeadSha)
	if trunkStack != nil {
		out = append(out, trunkStack)
	}

	var directChildren []*dagmodel.Branch
	for _, sha := range attachmentShas {
		directChildren = append(directChildren, baseIndex[sha]...)
	}
	sort.Slice(directChildren, func(i, j int) bool {
		return branchSortKey(directChildren[i], repo.Commits) < branchSortKey(directChildren[j], repo.Commits)
	})

	visited := map[string]bool{}
	for _, b := range directChildren {
		if visited[b.Ref] {
			continue
		}
		stack := p.buildBranchStack(b.Ref, true, visited)
		if stack != nil {
			out = append(out, stack)
		}
	}

	p.annotateBranchHeads(trunkBranch)

	return out
}

type projection struct {
	repo            *dagmodel.Repo
	forge           *dagmodel.GitForgeState
	trunkShas       map[string]bool
	branchHeadIndex map[string][]string
	baseIndex       map[string][]*dagmodel.Branch
	ownerships      map[string]ownership.Ownership
	ownedShas       map[string]bool
	nodes           map[string]*dagmodel.UiCommit
	worktreeByName  map[string]*dagmodel.Worktree
}

func branchSortKey(b *dagmodel.Branch, commits dagmodel.CommitMap) string {
	if c, ok := commits[b.HeadSha]; ok {
		return itoa(c.TimeMs) + b.Ref
	}
	return b.Ref
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	s := string(buf[i:])
	if neg {
		return "-" + s
	}
	return s
}

// node returns the shared UiCommit for sha, creating it on first reference.
func (p *projection) node(sha string) *dagmodel.UiCommit {
	if n, ok := p.nodes[sha]; ok {
		return n
	}
	n := &dagmodel.UiCommit{Sha: sha}
	if c, ok := p.repo.Commits[sha]; ok {
		n.Name = c.Message
		n.TimestampMs = c.TimeMs
	}
	if p.repo.WorkingTreeStatus.CurrentCommitSha == sha {
		n.IsCurrent = true
	}
	p.nodes[sha] = n
	return n
}

// buildTrunkStack returns the trunk's own UiStack plus the full set of
// attachment SHAs non-trunk stacks may be based at: the trunk lineage
// itself, and any "orphan" fork-point commits reachable forward from trunk
// that no branch owns (a commit with two or more non-trunk children is
// owned by nobody per §4.3, yet still anchors the branches that spin off
// it). Orphans are folded into the trunk stack's display so they are never
// silently dropped from the projection.
func (p *projection) buildTrunkStack(trunkHeadSha string) (*dagmodel.UiStack, []string) {
	if trunkHeadSha == "" {
		return nil, nil
	}
	lineage := dagwalk.CollectLineage(trunkHeadSha, p.repo.Commits, dagwalk.CollectLineageOpts{})
	if len(lineage) == 0 {
		return nil, nil
	}
	stack := &dagmodel.UiStack{IsTrunk: true}
	attachments := make([]string, 0, len(lineage))
	for _, sha := range lineage {
		n := p.node(sha)
		stack.Commits = append(stack.Commits, n)
		attachments = append(attachments, sha)

		for _, orphan := range p.collectOrphanChain(sha) {
			on := p.node(orphan)
			if c, ok := p.repo.Commits[orphan]; ok && ownership.IsForkPoint(c, p.trunkShas) {
				on.IsIndependent = true
			}
			stack.Commits = append(stack.Commits, on)
			attachments = append(attachments, orphan)
		}
	}
	return stack, attachments
}

// collectOrphanChain walks forward from startSha through children that are
// neither on the trunk lineage nor owned by any branch: unowned fork-point
// commits that sit between trunk and the branches spun off them.
func (p *projection) collectOrphanChain(startSha string) []string {
	var out []string
	visited := map[string]bool{startSha: true}
	queue := []string{startSha}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		c, ok := p.repo.Commits[cur]
		if !ok {
			continue
		}
		for _, child := range c.ChildrenSha {
			if p.trunkShas[child] || p.ownedShas[child] || visited[child] {
				continue
			}
			visited[child] = true
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out
}

// buildBranchStack builds the linear UiStack owned by branchRef, marking
// visited so a malformed/cyclic base index can't recurse forever.
func (p *projection) buildBranchStack(branchRef string, directlyOffTrunk bool, visited map[string]bool) *dagmodel.UiStack {
	if visited[branchRef] {
		return nil
	}
	visited[branchRef] = true

	own, ok := p.ownerships[branchRef]
	if !ok || len(own.OwnedShas) == 0 {
		return nil
	}

	stack := &dagmodel.UiStack{IsDirectlyOffTrunk: directlyOffTrunk, CanRebaseToTrunk: !directlyOffTrunk}

	for i := len(own.OwnedShas) - 1; i >= 0; i-- {
		sha := own.OwnedShas[i]
		n := p.node(sha)
		p.attachSpinoffsExcluding(n, branchRef, visited)
		stack.Commits = append(stack.Commits, n)
	}
	return stack
}

// attachSpinoffsExcluding finds branches whose base sits at n.Sha and nests
// their stacks under n.Spinoffs, skipping the branch currently being built
// (its own head is never its own spinoff).
func (p *projection) attachSpinoffsExcluding(n *dagmodel.UiCommit, skip string, visited map[string]bool) {
	children := p.baseIndex[n.Sha]
	if len(children) == 0 {
		return
	}
	sorted := make([]*dagmodel.Branch, 0, len(children))
	for _, b := range children {
		if b.Ref == skip {
			continue
		}
		sorted = append(sorted, b)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Ref < sorted[j].Ref
	})
	for _, b := range sorted {
		s := p.buildBranchStack(b.Ref, false, visited)
		if s != nil {
			n.Spinoffs = append(n.Spinoffs, s)
		}
	}
}

// annotateBranchHeads pushes a UiBranch onto the UiCommit at the head of
// every branch that has one, trunk and remotes included. Branches are
// visited in a fixed order (trunk first, local before remote, then
// lexicographic by ref) so that two branches sharing a head commit always
// land on n.Branches in the same order across runs.
func (p *projection) annotateBranchHeads(trunkBranch *dagmodel.Branch) {
	var prs []*dagmodel.ForgePullRequest
	var merged map[string]bool
	if p.forge != nil {
		prs = p.forge.PullRequests
		merged = p.forge.MergedBranchNames
	}

	branches := make([]*dagmodel.Branch, len(p.repo.Branches))
	copy(branches, p.repo.Branches)
	sort.SliceStable(branches, func(i, j int) bool {
		return annotationSortKey(branches[i], trunkBranch) < annotationSortKey(branches[j], trunkBranch)
	})

	for _, b := range branches {
		n, ok := p.nodes[b.HeadSha]
		if !ok {
			continue
		}

		isTrunkBranch := b == trunkBranch || trunk.IsCanonicalTrunk(b) || b.IsTrunk
		isCurrent := p.repo.WorkingTreeStatus.CurrentBranch == b.Ref

		ub := &dagmodel.UiBranch{
			Name:      b.Ref,
			IsCurrent: isCurrent,
			IsRemote:  b.IsRemote,
			IsTrunk:   isTrunkBranch,
			CanDelete: !isCurrent && !isTrunkBranch,
		}
		switch {
		case isTrunkBranch:
			ub.CanDeleteReason = "is_trunk"
			ub.CanRenameReason = "is_trunk"
			ub.CanSquashReason = "is_trunk"
		case isCurrent:
			ub.CanDeleteReason = "is_current"
		}

		own, hasOwnership := p.ownerships[b.Ref]
		switch {
		case hasOwnership:
			ub.CanRename = true
			ub.OwnedCommitShas = own.OwnedShas

			baseSha := own.BaseSha
			switch {
			case len(own.OwnedShas) == 0:
				ub.CanSquashReason = "no_parent"
			case p.trunkShas[baseSha]:
				ub.CanSquashReason = "parent_is_trunk"
			default:
				ub.CanSquash = true
			}

			if base, err := prtarget.FindBaseBranch(p.repo, b.HeadSha, merged); err == nil {
				ub.ExpectedPrBase = base
			}
		case b.IsRemote:
			ub.CanRenameReason = "is_remote"
			ub.CanSquashReason = "is_remote"
		}

		if w, ok := p.worktreeByName[b.Ref]; ok {
			ub.Worktree = w
			ub.CanCreateWorktree = false
			ub.CanCreateWorktreeReason = "worktree_exists"
		} else if !b.IsRemote {
			ub.CanCreateWorktree = true
		}

		if prs != nil {
			if pr := forgejoin.FindBestPr(b.Ref, prs); pr != nil {
				ub.PullRequest = pr
				ub.HasStaleTarget = forgejoin.HasStaleTarget(pr, merged)
			}
			ub.IsMerged = forgejoin.IsMerged(b.Ref, prs, merged)
			ub.CanRecreatePr = forgejoin.CanRecreatePr(b.Ref, prs)
		}

		n.Branches = append(n.Branches, ub)
	}
}

// annotationSortKey orders branches trunk-first, local-before-remote, then
// lexicographically by ref.
func annotationSortKey(b *dagmodel.Branch, trunkBranch *dagmodel.Branch) string {
	rank := "1"
	if b == trunkBranch || trunk.IsCanonicalTrunk(b) || b.IsTrunk {
		rank = "0"
	}
	remoteRank := "0"
	if b.IsRemote {
		remoteRank = "1"
	}
	return rank + remoteRank + b.Ref
}


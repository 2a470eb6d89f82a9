// Package dagwalk implements StackAnalyzer (§4.2): the bounded, pure DAG
// traversal helpers shared by ownership, projection, and intent building.
//
// Grounded on the teacher's treedetector.detector (bounded commit
// preorder walk stopping at trunk/branch boundaries) and
// utils/stackutils.BuildTree (parent/children indexing, lineage-path
// discovery). All walks here are visited-set and depth bounded; none of
// them throw on a cycle or a cap hit — they return whatever was collected,
// per §4.2 and §7.
package dagwalk

import (
	"sort"

	"github.com/aviator-co/stackcore/internal/dagmodel"
)

const defaultMaxDepth = 1000

// Walk performs a depth-first, parent-before-children traversal starting at
// root, calling visit for each StackNodeState in that order.
func Walk(root *dagmodel.StackNodeState, visit func(*dagmodel.StackNodeState)) {
	if root == nil {
		return
	}
	visit(root)
	for _, c := range root.Children {
		Walk(c, visit)
	}
}

// FindNodeByBranch searches a StackNodeState tree for the node whose Branch
// matches name. Returns nil if not found.
func FindNodeByBranch(root *dagmodel.StackNodeState, name string) *dagmodel.StackNodeState {
	var found *dagmodel.StackNodeState
	Walk(root, func(n *dagmodel.StackNodeState) {
		if found == nil && n.Branch == name {
			found = n
		}
	})
	return found
}

// CollectLineageOpts configures CollectLineage.
type CollectLineageOpts struct {
	StopAt   map[string]bool
	MaxDepth int
}

// CollectLineage walks parent links from headSha until a missing commit, a
// root, or a StopAt boundary, bounded by MaxDepth (default 1000). Returns
// the lineage oldest-first.
func CollectLineage(headSha string, commits dagmodel.CommitMap, opts CollectLineageOpts) []string {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	var revHeadFirst []string
	visited := map[string]bool{}
	sha := headSha
	for depth := 0; depth < maxDepth && sha != "" && !visited[sha]; depth++ {
		visited[sha] = true
		revHeadFirst = append(revHeadFirst, sha)
		if opts.StopAt != nil && opts.StopAt[sha] {
			break
		}
		c, ok := commits[sha]
		if !ok {
			break
		}
		sha = c.ParentSha
	}
	// reverse to oldest-first
	out := make([]string, len(revHeadFirst))
	for i, s := range revHeadFirst {
		out[len(out)-1-i] = s
	}
	return out
}

// WalkCommitHistoryOpts configures WalkCommitHistory.
type WalkCommitHistoryOpts struct {
	MaxDepth int
}

// WalkCommitHistory walks parent links from startSha, head-first, stopping
// when shouldStop returns true for a commit (that commit IS included) or
// when the walk runs out of known parents or hits MaxDepth (default 1000).
func WalkCommitHistory(
	startSha string,
	commits dagmodel.CommitMap,
	shouldStop func(sha string) bool,
	opts WalkCommitHistoryOpts,
) []string {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	var out []string
	visited := map[string]bool{}
	sha := startSha
	for depth := 0; depth < maxDepth && sha != "" && !visited[sha]; depth++ {
		visited[sha] = true
		out = append(out, sha)
		if shouldStop != nil && shouldStop(sha) {
			break
		}
		c, ok := commits[sha]
		if !ok {
			break
		}
		sha = c.ParentSha
	}
	return out
}

// GetCommitsInRange returns the commits strictly after base up to and
// including head, in topological (head-to-base reversed to base-to-head)
// order: oldest-first, base excluded. Bounded the same way as the other
// walks.
func GetCommitsInRange(base, head string, commits dagmodel.CommitMap) []string {
	if head == "" {
		return nil
	}
	var revHeadFirst []string
	visited := map[string]bool{}
	sha := head
	for depth := 0; depth < defaultMaxDepth && sha != "" && sha != base && !visited[sha]; depth++ {
		visited[sha] = true
		revHeadFirst = append(revHeadFirst, sha)
		c, ok := commits[sha]
		if !ok {
			break
		}
		sha = c.ParentSha
	}
	out := make([]string, len(revHeadFirst))
	for i, s := range revHeadFirst {
		out[len(out)-1-i] = s
	}
	return out
}

// CountCommitsInRange is the cardinality of GetCommitsInRange.
func CountCommitsInRange(base, head string, commits dagmodel.CommitMap) int {
	return len(GetCommitsInRange(base, head, commits))
}

// BuildBranchHeadIndex maps a commit SHA to the (possibly several) branch
// refs whose head sits there.
func BuildBranchHeadIndex(branches []*dagmodel.Branch) map[string][]string {
	idx := map[string][]string{}
	for _, b := range branches {
		if b.HeadSha == "" {
			continue
		}
		idx[b.HeadSha] = append(idx[b.HeadSha], b.Ref)
	}
	return idx
}

// ParentBranchInfo is one entry of BuildParentIndex's result: the nearest
// ancestor branch ref and its commit distance from the branch's head.
type ParentBranchInfo struct {
	ParentRef string
	Distance  int
}

// BuildParentIndex computes, for each local branch, the nearest ancestor
// branch among localBranches (walking parent links). Ties prefer a
// non-trunk parent, then lexicographically smaller ref name, matching the
// teacher's deterministic tie-breaking conventions elsewhere in the corpus.
func BuildParentIndex(
	localBranches []*dagmodel.Branch,
	commits dagmodel.CommitMap,
) map[string]ParentBranchInfo {
	headIndex := map[string][]*dagmodel.Branch{}
	for _, b := range localBranches {
		headIndex[b.HeadSha] = append(headIndex[b.HeadSha], b)
	}

	out := map[string]ParentBranchInfo{}
	for _, b := range localBranches {
		sha := b.HeadSha
		visited := map[string]bool{}
		for depth := 1; depth <= defaultMaxDepth; depth++ {
			c, ok := commits[sha]
			if !ok {
				break
			}
			parentSha := c.ParentSha
			if parentSha == "" || visited[parentSha] {
				break
			}
			visited[parentSha] = true

			candidates := headIndex[parentSha]
			var best *dagmodel.Branch
			for _, cand := range candidates {
				if cand.Ref == b.Ref {
					continue
				}
				if best == nil {
					best = cand
					continue
				}
				if cand.IsTrunk != best.IsTrunk {
					if !cand.IsTrunk {
						best = cand
					}
					continue
				}
				if cand.Ref < best.Ref {
					best = cand
				}
			}
			if best != nil {
				out[b.Ref] = ParentBranchInfo{ParentRef: best.Ref, Distance: depth}
				break
			}
			sha = parentSha
		}
	}
	return out
}

// BuildChildrenIndex reverses a parent index into parent ref -> child refs.
func BuildChildrenIndex(parentIndex map[string]ParentBranchInfo) map[string][]string {
	out := map[string][]string{}
	var refs []string
	for ref := range parentIndex {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	for _, ref := range refs {
		info := parentIndex[ref]
		out[info.ParentRef] = append(out[info.ParentRef], ref)
	}
	return out
}

// CollectLinearDescendants returns the chain of descendants of branch
// following childrenIndex, or ok=false if the chain is not linear (some
// node has >= 2 children) or a cycle is detected, bounded by maxDepth
// (default 1000 when <= 0).
func CollectLinearDescendants(
	branch string,
	childrenIndex map[string][]string,
	maxDepth int,
) (chain []string, ok bool) {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	visited := map[string]bool{branch: true}
	cur := branch
	for depth := 0; depth < maxDepth; depth++ {
		children := childrenIndex[cur]
		if len(children) == 0 {
			return chain, true
		}
		if len(children) > 1 {
			return chain, false
		}
		next := children[0]
		if visited[next] {
			return chain, false
		}
		visited[next] = true
		chain = append(chain, next)
		cur = next
	}
	return chain, false
}

// FindDirectChildBranchesOpts configures FindDirectChildBranches. The zero
// value excludes remote and trunk branches; IncludeRemote and IncludeTrunk
// keep them.
type FindDirectChildBranchesOpts struct {
	IncludeRemote bool
	IncludeTrunk  bool
}

// FindDirectChildBranches returns branches whose head's parent SHA equals
// parentHeadSha, excluding remote and trunk branches unless opts includes
// them.
func FindDirectChildBranches(
	branches []*dagmodel.Branch,
	commits dagmodel.CommitMap,
	parentHeadSha string,
	opts FindDirectChildBranchesOpts,
) []*dagmodel.Branch {
	var out []*dagmodel.Branch
	for _, b := range branches {
		if !opts.IncludeRemote && b.IsRemote {
			continue
		}
		if !opts.IncludeTrunk && b.IsTrunk {
			continue
		}
		c, ok := commits[b.HeadSha]
		if !ok {
			continue
		}
		if c.ParentSha == parentHeadSha {
			out = append(out, b)
		}
	}
	return out
}

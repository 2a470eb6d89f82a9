// Package rebasepreview implements the planning-phase DAG projection from
// §4.10: synthesizing what the commit graph would look like after an
// intent's targets are rebased, then running that synthetic graph back
// through the StackProjector so the planning UI can show the same tree it
// would see post-rebase, annotated with rebaseStatus.
//
// Grounded on the teacher's stacks.previewRebase (used by `av stack
// branch --dry-run`-style planning output), which likewise clones the
// commit graph, relinks parents, and re-renders rather than mutating the
// real repository.
package rebasepreview

import (
	"github.com/aviator-co/stackcore/internal/dagmodel"
	"github.com/aviator-co/stackcore/internal/projector"
)

// Build returns the projected stack forest for intent as if its targets had
// already been rebased, with each moved commit's RebaseStatus set to
// "prompting" (a target itself) or "idle" (a descendant carried along).
func Build(repo *dagmodel.Repo, intent *dagmodel.RebaseIntent, forge *dagmodel.GitForgeState) []*dagmodel.UiStack {
	if repo == nil || intent == nil || len(intent.Targets) == 0 {
		return nil
	}

	commits := cloneCommits(repo.Commits)
	counter := intent.CreatedAtMs
	for _, t := range intent.Targets {
		if t.Node == nil {
			continue
		}
		counter = rebaseNode(commits, t.Node, t.TargetBaseSha, counter)
	}

	synthetic := *repo
	synthetic.Commits = commits

	stacks := projector.Project(&synthetic, forge)

	prompting := map[string]bool{}
	idle := map[string]bool{}
	for _, t := range intent.Targets {
		if t.Node == nil {
			continue
		}
		for _, sha := range t.Node.OwnedShas {
			prompting[sha] = true
		}
		for _, child := range t.Node.Children {
			markDescendants(child, idle)
		}
	}

	overlay(stacks, prompting, idle)
	return stacks
}

func markDescendants(node *dagmodel.StackNodeState, idle map[string]bool) {
	if node == nil {
		return
	}
	for _, sha := range node.OwnedShas {
		idle[sha] = true
	}
	for _, c := range node.Children {
		markDescendants(c, idle)
	}
}

func overlay(stacks []*dagmodel.UiStack, prompting, idle map[string]bool) {
	for _, s := range stacks {
		for _, c := range s.Commits {
			overlayCommit(c, prompting, idle)
		}
	}
}

func overlayCommit(c *dagmodel.UiCommit, prompting, idle map[string]bool) {
	switch {
	case prompting[c.Sha]:
		c.RebaseStatus = dagmodel.RebaseStatusPrompting
	case idle[c.Sha]:
		c.RebaseStatus = dagmodel.RebaseStatusIdle
	}
	for _, s := range c.Spinoffs {
		for _, sc := range s.Commits {
			overlayCommit(sc, prompting, idle)
		}
	}
}

// rebaseNode reparents node's owned chain onto targetBaseSha (oldest owned
// commit first) and re-stamps timestamps from counter, then recurses into
// node's children onto the new head of this chain. Returns the advanced
// counter.
func rebaseNode(commits dagmodel.CommitMap, node *dagmodel.StackNodeState, targetBaseSha string, counter int64) int64 {
	if node == nil || len(node.OwnedShas) == 0 {
		return counter
	}

	oldestFirst := make([]string, len(node.OwnedShas))
	for i, sha := range node.OwnedShas {
		oldestFirst[len(oldestFirst)-1-i] = sha
	}

	newParent := targetBaseSha
	for _, sha := range oldestFirst {
		c, ok := commits[sha]
		if !ok {
			continue
		}
		if oldParent, ok := commits[c.ParentSha]; ok {
			oldParent.ChildrenSha = removeSha(oldParent.ChildrenSha, sha)
		}
		c.ParentSha = newParent
		if p, ok := commits[newParent]; ok {
			p.ChildrenSha = appendIfMissing(p.ChildrenSha, sha)
		}
		counter++
		c.TimeMs = counter
		newParent = sha
	}

	newHead := newParent
	for _, child := range node.Children {
		counter = rebaseNode(commits, child, newHead, counter)
	}
	return counter
}

func cloneCommits(src dagmodel.CommitMap) dagmodel.CommitMap {
	out := make(dagmodel.CommitMap, len(src))
	for sha, c := range src {
		cc := *c
		cc.ChildrenSha = append([]string(nil), c.ChildrenSha...)
		out[sha] = &cc
	}
	return out
}

func removeSha(list []string, target string) []string {
	out := list[:0]
	for _, s := range list {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}

func appendIfMissing(list []string, target string) []string {
	for _, s := range list {
		if s == target {
			return list
		}
	}
	return append(list, target)
}

// Package drag implements OptimisticDrag (§4.5): a pure reshape of a
// projected stack forest for a drag-over-commit gesture, used to render an
// instant preview before the real rebase plan is computed and applied.
//
// Grounded on the teacher's utils/stackutils tree-splicing helpers (the
// same "locate a node, detach its suffix, reattach elsewhere" shape used
// there for reorder previews), re-expressed over dagmodel.UiStack/UiCommit
// instead of the teacher's mutable in-place tree.
package drag

import "github.com/aviator-co/stackcore/internal/dagmodel"

// ApplyDrag returns a deep-cloned copy of forest with the commit at
// draggingSha (and every later commit in its stack, plus their spinoffs)
// relocated onto overSha. It never mutates forest. Any invalid input —
// either SHA missing, dragging onto itself, or dragging onto a commit
// inside the subtree being moved — returns nil, matching the "any error
// produces none, not an exception" rule.
func ApplyDrag(forest []*dagmodel.UiStack, draggingSha, overSha string) []*dagmodel.UiStack {
	if draggingSha == "" || overSha == "" || draggingSha == overSha {
		return nil
	}

	cloned := cloneForest(forest)

	parentStack, idx, ok := locate(cloned, draggingSha)
	if !ok {
		return nil
	}

	dragging := parentStack.Commits[idx:]
	insideSet := map[string]bool{}
	collectSubtreeShas(dragging, insideSet)
	if insideSet[overSha] {
		return nil
	}

	overStack, overIdx, ok := locate(cloned, overSha)
	if !ok {
		return nil
	}

	ownerOf := map[*dagmodel.UiStack]*dagmodel.UiCommit{}
	buildOwnerIndex(cloned, nil, ownerOf)

	parentStack.Commits = parentStack.Commits[:idx]
	newStack := &dagmodel.UiStack{Commits: dragging}

	if len(parentStack.Commits) == 0 {
		cloned = pruneEmptyStack(cloned, ownerOf, parentStack)
	}

	if overIdx == len(overStack.Commits)-1 {
		overStack.Commits = append(overStack.Commits, newStack.Commits...)
	} else {
		overCommit := overStack.Commits[overIdx]
		overCommit.Spinoffs = append(overCommit.Spinoffs, newStack)
	}

	return cloned
}

// IsInsideDraggingStack reports whether candidateSha sits inside the
// subtree that a drag of draggingSha would move: the dragging commit
// itself, every later commit in the same parent stack, or any commit
// reachable through their spinoffs. The UI uses this to refuse drops onto
// the dragged subtree without needing to run ApplyDrag first.
func IsInsideDraggingStack(forest []*dagmodel.UiStack, draggingSha, candidateSha string) bool {
	parentStack, idx, ok := locate(forest, draggingSha)
	if !ok {
		return false
	}
	set := map[string]bool{}
	collectSubtreeShas(parentStack.Commits[idx:], set)
	return set[candidateSha]
}

func locate(stacks []*dagmodel.UiStack, sha string) (*dagmodel.UiStack, int, bool) {
	for _, s := range stacks {
		for i, c := range s.Commits {
			if c.Sha == sha {
				return s, i, true
			}
			if st, idx, ok := locate(c.Spinoffs, sha); ok {
				return st, idx, true
			}
		}
	}
	return nil, 0, false
}

func collectSubtreeShas(commits []*dagmodel.UiCommit, out map[string]bool) {
	for _, c := range commits {
		out[c.Sha] = true
		for _, s := range c.Spinoffs {
			collectSubtreeShas(s.Commits, out)
		}
	}
}

func buildOwnerIndex(stacks []*dagmodel.UiStack, owner *dagmodel.UiCommit, out map[*dagmodel.UiStack]*dagmodel.UiCommit) {
	for _, s := range stacks {
		out[s] = owner
		for _, c := range s.Commits {
			buildOwnerIndex(c.Spinoffs, c, out)
		}
	}
}

// pruneEmptyStack removes stack from wherever it was attached: the owning
// commit's Spinoffs if it was a spinoff, or the top-level forest if it was
// a root stack left with no commits after the drag.
func pruneEmptyStack(
	forest []*dagmodel.UiStack,
	ownerOf map[*dagmodel.UiStack]*dagmodel.UiCommit,
	stack *dagmodel.UiStack,
) []*dagmodel.UiStack {
	owner := ownerOf[stack]
	if owner == nil {
		out := make([]*dagmodel.UiStack, 0, len(forest))
		for _, s := range forest {
			if s != stack {
				out = append(out, s)
			}
		}
		return out
	}
	var kept []*dagmodel.UiStack
	for _, s := range owner.Spinoffs {
		if s != stack {
			kept = append(kept, s)
		}
	}
	owner.Spinoffs = kept
	return forest
}

func cloneForest(stacks []*dagmodel.UiStack) []*dagmodel.UiStack {
	if stacks == nil {
		return nil
	}
	out := make([]*dagmodel.UiStack, len(stacks))
	for i, s := range stacks {
		out[i] = cloneStack(s)
	}
	return out
}

func cloneStack(s *dagmodel.UiStack) *dagmodel.UiStack {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Commits = make([]*dagmodel.UiCommit, len(s.Commits))
	for i, c := range s.Commits {
		clone.Commits[i] = cloneCommit(c)
	}
	return &clone
}

func cloneCommit(c *dagmodel.UiCommit) *dagmodel.UiCommit {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Spinoffs = cloneForest(c.Spinoffs)
	if c.Branches != nil {
		clone.Branches = make([]*dagmodel.UiBranch, len(c.Branches))
		for i, b := range c.Branches {
			bc := *b
			clone.Branches[i] = &bc
		}
	}
	return &clone
}

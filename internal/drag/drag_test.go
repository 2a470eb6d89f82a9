package drag_test

import (
	"testing"

	"github.com/aviator-co/stackcore/internal/dagmodel"
	"github.com/aviator-co/stackcore/internal/drag"
	"github.com/stretchr/testify/require"
)

func commit(sha string, spinoffs ...*dagmodel.UiStack) *dagmodel.UiCommit {
	return &dagmodel.UiCommit{Sha: sha, Spinoffs: spinoffs}
}

func TestApplyDrag_AppendsOntoHead(t *testing.T) {
	trunk := &dagmodel.UiStack{IsTrunk: true, Commits: []*dagmodel.UiCommit{commit("T1")}}
	featA := &dagmodel.UiStack{Commits: []*dagmodel.UiCommit{commit("A1"), commit("A2")}}
	featB := &dagmodel.UiStack{Commits: []*dagmodel.UiCommit{commit("B1")}}
	forest := []*dagmodel.UiStack{trunk, featA, featB}

	out := drag.ApplyDrag(forest, "B1", "A2")
	require.NotNil(t, out)

	// original untouched
	require.Len(t, featB.Commits, 1)
	require.Len(t, featA.Commits, 2)

	var outFeatA *dagmodel.UiStack
	for _, s := range out {
		if len(s.Commits) > 0 && s.Commits[0].Sha == "A1" {
			outFeatA = s
		}
	}
	require.NotNil(t, outFeatA)
	require.Len(t, outFeatA.Commits, 3)
	require.Equal(t, "B1", outFeatA.Commits[2].Sha)

	// featB's stack should have been pruned from the root forest (emptied)
	require.Len(t, out, 2)
}

func TestApplyDrag_NewSpinoffMidStack(t *testing.T) {
	trunk := &dagmodel.UiStack{IsTrunk: true, Commits: []*dagmodel.UiCommit{commit("T1")}}
	featA := &dagmodel.UiStack{Commits: []*dagmodel.UiCommit{commit("A1"), commit("A2")}}
	featB := &dagmodel.UiStack{Commits: []*dagmodel.UiCommit{commit("B1"), commit("B2")}}
	forest := []*dagmodel.UiStack{trunk, featA, featB}

	out := drag.ApplyDrag(forest, "B2", "A1")
	require.NotNil(t, out)

	var outFeatA *dagmodel.UiStack
	for _, s := range out {
		if len(s.Commits) > 0 && s.Commits[0].Sha == "A1" {
			outFeatA = s
		}
	}
	require.NotNil(t, outFeatA)
	require.Len(t, outFeatA.Commits, 2) // A1 unchanged (not the head)
	a1 := outFeatA.Commits[0]
	require.Len(t, a1.Spinoffs, 1)
	require.Equal(t, []string{"B2"}, shas(a1.Spinoffs[0].Commits))

	var outFeatB *dagmodel.UiStack
	for _, s := range out {
		if len(s.Commits) > 0 && s.Commits[0].Sha == "B1" {
			outFeatB = s
		}
	}
	require.NotNil(t, outFeatB)
	require.Len(t, outFeatB.Commits, 1)
}

func TestApplyDrag_RefusesDropInsideOwnSubtree(t *testing.T) {
	featA := &dagmodel.UiStack{Commits: []*dagmodel.UiCommit{commit("A1"), commit("A2"), commit("A3")}}
	forest := []*dagmodel.UiStack{featA}

	require.True(t, drag.IsInsideDraggingStack(forest, "A2", "A3"))
	require.False(t, drag.IsInsideDraggingStack(forest, "A2", "A1"))

	require.Nil(t, drag.ApplyDrag(forest, "A2", "A3"))
}

func TestApplyDrag_UnknownShaReturnsNil(t *testing.T) {
	featA := &dagmodel.UiStack{Commits: []*dagmodel.UiCommit{commit("A1")}}
	forest := []*dagmodel.UiStack{featA}

	require.Nil(t, drag.ApplyDrag(forest, "missing", "A1"))
	require.Nil(t, drag.ApplyDrag(forest, "A1", "missing"))
	require.Nil(t, drag.ApplyDrag(forest, "A1", "A1"))
}

func shas(commits []*dagmodel.UiCommit) []string {
	out := make([]string, len(commits))
	for i, c := range commits {
		out[i] = c.Sha
	}
	return out
}

package prtarget_test

import (
	"testing"

	"github.com/aviator-co/stackcore/internal/dagmodel"
	"github.com/aviator-co/stackcore/internal/prtarget"
	"github.com/stretchr/testify/require"
)

func baseRepo() *dagmodel.Repo {
	return &dagmodel.Repo{
		Commits: dagmodel.CommitMap{
			"A": {Sha: "A", ChildrenSha: []string{"B"}},
			"B": {Sha: "B", ParentSha: "A", ChildrenSha: []string{"C", "D"}},
			"C": {Sha: "C", ParentSha: "B"},
			"D": {Sha: "D", ParentSha: "B"},
		},
		Branches: []*dagmodel.Branch{
			{Ref: "main", HeadSha: "A", IsTrunk: true},
			{Ref: "parent-branch", HeadSha: "B"},
		},
	}
}

func TestFindBaseBranch_FindsEligibleParent(t *testing.T) {
	repo := baseRepo()
	ref, err := prtarget.FindBaseBranch(repo, "C", map[string]bool{})
	require.NoError(t, err)
	require.Equal(t, "parent-branch", ref)
}

func TestFindBaseBranch_SkipsMergedParent(t *testing.T) {
	repo := baseRepo()
	ref, err := prtarget.FindBaseBranch(repo, "C", map[string]bool{"parent-branch": true})
	require.NoError(t, err)
	require.Equal(t, "main", ref)
}

func TestFindBaseBranch_FallsBackToTrunk(t *testing.T) {
	repo := baseRepo()
	ref, err := prtarget.FindBaseBranch(repo, "D", map[string]bool{"parent-branch": true})
	require.NoError(t, err)
	require.Equal(t, "main", ref)
}

func TestFindBaseBranch_AmbiguousParentsFail(t *testing.T) {
	repo := baseRepo()
	repo.Branches = append(repo.Branches, &dagmodel.Branch{Ref: "sibling-branch", HeadSha: "B"})

	_, err := prtarget.FindBaseBranch(repo, "C", map[string]bool{})
	require.Error(t, err)
	var ambiguous *prtarget.AmbiguousParentError
	require.ErrorAs(t, err, &ambiguous)
	require.ElementsMatch(t, []string{"parent-branch", "sibling-branch"}, ambiguous.Branches)
}

func TestIsValidPrTarget(t *testing.T) {
	require.True(t, prtarget.IsValidPrTarget("main", "main", map[string]bool{"main": true}))
	require.True(t, prtarget.IsValidPrTarget("feature", "main", map[string]bool{}))
	require.False(t, prtarget.IsValidPrTarget("feature", "main", map[string]bool{"feature": true}))
}

func TestFindValidPrTarget_ReturnsCurrentWhenStillValid(t *testing.T) {
	target, err := prtarget.FindValidPrTarget("feature", "parent", nil, map[string]bool{}, "main", "")
	require.NoError(t, err)
	require.Equal(t, "parent", target)
}

func TestFindValidPrTarget_ClimbsMergedChain(t *testing.T) {
	prs := []*dagmodel.ForgePullRequest{
		{Number: 1, HeadRefName: "parent", BaseRefName: "grandparent", State: dagmodel.PrMerged},
	}
	merged := map[string]bool{"parent": true}
	target, err := prtarget.FindValidPrTarget("feature", "parent", prs, merged, "main", "")
	require.NoError(t, err)
	require.Equal(t, "grandparent", target)
}

func TestFindValidPrTarget_DeadEndUsesFallback(t *testing.T) {
	merged := map[string]bool{"parent": true}
	target, err := prtarget.FindValidPrTarget("feature", "parent", nil, merged, "main", "main")
	require.NoError(t, err)
	require.Equal(t, "main", target)
}

func TestFindValidPrTarget_DeadEndWithoutFallbackFails(t *testing.T) {
	merged := map[string]bool{"parent": true}
	_, err := prtarget.FindValidPrTarget("feature", "parent", nil, merged, "main", "")
	require.Error(t, err)
}

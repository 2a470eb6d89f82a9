package rebaseintent_test

import (
	"testing"

	"github.com/aviator-co/stackcore/internal/dagmodel"
	"github.com/aviator-co/stackcore/internal/rebaseintent"
	"github.com/stretchr/testify/require"
)

func idGen(id string) func() string {
	return func() string { return id }
}

func TestBuild_SimpleBranchOntoTrunk(t *testing.T) {
	// main@A -> B -> C(feature)
	repo := &dagmodel.Repo{
		Commits: dagmodel.CommitMap{
			"A": {Sha: "A", ChildrenSha: []string{"B"}},
			"B": {Sha: "B", ParentSha: "A", ChildrenSha: []string{"C"}},
			"C": {Sha: "C", ParentSha: "B"},
		},
		Branches: []*dagmodel.Branch{
			{Ref: "main", HeadSha: "A", IsTrunk: true},
			{Ref: "feature", HeadSha: "C"},
		},
	}

	intent, ok := rebaseintent.Build(repo, "C", "A", 1000, idGen("intent-1"))
	require.True(t, ok)
	require.Equal(t, "intent-1", intent.ID)
	require.Equal(t, int64(1000), intent.CreatedAtMs)
	require.Len(t, intent.Targets, 1)

	root := intent.Targets[0].Node
	require.Equal(t, "feature", root.Branch)
	require.Equal(t, "C", root.HeadSha)
	require.Equal(t, "A", root.BaseSha)
	require.Equal(t, []string{"C", "B"}, root.OwnedShas)
	require.Empty(t, root.Children)
	require.Equal(t, "A", intent.Targets[0].TargetBaseSha)
}

func TestBuild_IncludesChildBranchForkedMidStack(t *testing.T) {
	// main@A -> B -> C(parent head) -> D(child, forked at C)
	repo := &dagmodel.Repo{
		Commits: dagmodel.CommitMap{
			"A": {Sha: "A", ChildrenSha: []string{"B"}},
			"B": {Sha: "B", ParentSha: "A", ChildrenSha: []string{"C"}},
			"C": {Sha: "C", ParentSha: "B", ChildrenSha: []string{"D"}},
			"D": {Sha: "D", ParentSha: "C"},
		},
		Branches: []*dagmodel.Branch{
			{Ref: "main", HeadSha: "A", IsTrunk: true},
			{Ref: "parent", HeadSha: "C"},
			{Ref: "child", HeadSha: "D"},
		},
	}

	intent, ok := rebaseintent.Build(repo, "C", "A", 2000, idGen("intent-2"))
	require.True(t, ok)
	root := intent.Targets[0].Node
	require.Equal(t, "parent", root.Branch)
	require.Len(t, root.Children, 1)
	require.Equal(t, "child", root.Children[0].Branch)
	require.Equal(t, []string{"D"}, root.Children[0].OwnedShas)
}

func TestBuild_UnknownShaFails(t *testing.T) {
	repo := &dagmodel.Repo{Commits: dagmodel.CommitMap{"A": {Sha: "A"}}}
	_, ok := rebaseintent.Build(repo, "missing", "A", 0, idGen("x"))
	require.False(t, ok)
}

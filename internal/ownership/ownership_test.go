package ownership_test

import (
	"testing"

	"github.com/aviator-co/stackcore/internal/dagmodel"
	"github.com/aviator-co/stackcore/internal/ownership"
	"github.com/stretchr/testify/require"
)

func TestCompute_BranchlessCommits(t *testing.T) {
	// A -> B -> C -> D; main@A (trunk), feature@D.
	commits := dagmodel.CommitMap{
		"A": {Sha: "A", ChildrenSha: []string{"B"}},
		"B": {Sha: "B", ParentSha: "A", ChildrenSha: []string{"C"}},
		"C": {Sha: "C", ParentSha: "B", ChildrenSha: []string{"D"}},
		"D": {Sha: "D", ParentSha: "C"},
	}
	trunkShas := ownership.BuildTrunkShaSet("A", commits)
	headIndex := map[string][]string{"D": {"feature"}}

	got := ownership.Compute("D", "feature", commits, headIndex, trunkShas)
	require.Equal(t, []string{"D", "C", "B"}, got.OwnedShas)
	require.Equal(t, "A", got.BaseSha)
}

func TestCompute_ForkPoint(t *testing.T) {
	// A -> B -> {C, D}; main@A (trunk), feat1@C, feat2@D.
	commits := dagmodel.CommitMap{
		"A": {Sha: "A", ChildrenSha: []string{"B"}},
		"B": {Sha: "B", ParentSha: "A", ChildrenSha: []string{"C", "D"}},
		"C": {Sha: "C", ParentSha: "B"},
		"D": {Sha: "D", ParentSha: "B"},
	}
	trunkShas := ownership.BuildTrunkShaSet("A", commits)
	headIndex := map[string][]string{"C": {"feat1"}, "D": {"feat2"}}

	feat1 := ownership.Compute("C", "feat1", commits, headIndex, trunkShas)
	require.Equal(t, []string{"C"}, feat1.OwnedShas)
	require.Equal(t, "B", feat1.BaseSha)

	feat2 := ownership.Compute("D", "feat2", commits, headIndex, trunkShas)
	require.Equal(t, []string{"D"}, feat2.OwnedShas)
	require.Equal(t, "B", feat2.BaseSha)

	require.True(t, ownership.IsForkPoint(commits["B"], trunkShas))
}

func TestCompute_RootCommit(t *testing.T) {
	commits := dagmodel.CommitMap{
		"A": {Sha: "A"},
	}
	got := ownership.Compute("A", "feature", commits, nil, map[string]bool{})
	require.Equal(t, []string{"A"}, got.OwnedShas)
	require.Equal(t, "A", got.BaseSha)
}

func TestCompute_MissingMidChain(t *testing.T) {
	commits := dagmodel.CommitMap{
		"B": {Sha: "B", ParentSha: "A"},
	}
	got := ownership.Compute("B", "feature", commits, nil, map[string]bool{})
	require.Equal(t, []string{"B"}, got.OwnedShas)
	require.Equal(t, "A", got.BaseSha)
}

func TestCompute_DisjointOwnership(t *testing.T) {
	// Property 2: ownedShas of distinct branches never overlap.
	commits := dagmodel.CommitMap{
		"A": {Sha: "A", ChildrenSha: []string{"B"}},
		"B": {Sha: "B", ParentSha: "A", ChildrenSha: []string{"C", "D"}},
		"C": {Sha: "C", ParentSha: "B", ChildrenSha: []string{"E"}},
		"E": {Sha: "E", ParentSha: "C"},
		"D": {Sha: "D", ParentSha: "B"},
	}
	trunkShas := ownership.BuildTrunkShaSet("A", commits)
	headIndex := map[string][]string{"E": {"feat1"}, "D": {"feat2"}}

	feat1 := ownership.Compute("E", "feat1", commits, headIndex, trunkShas)
	feat2 := ownership.Compute("D", "feat2", commits, headIndex, trunkShas)

	seen := map[string]bool{}
	for _, s := range feat1.OwnedShas {
		seen[s] = true
	}
	for _, s := range feat2.OwnedShas {
		require.False(t, seen[s], "commit %s should not be owned by both branches", s)
	}
}

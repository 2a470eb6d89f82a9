package projector_test

import (
	"testing"

	"github.com/aviator-co/stackcore/internal/dagmodel"
	"github.com/aviator-co/stackcore/internal/projector"
	"github.com/stretchr/testify/require"
)

func TestProject_SingleStackOffTrunk(t *testing.T) {
	// main@A -> B -> C (feature@C)
	repo := &dagmodel.Repo{
		Commits: dagmodel.CommitMap{
			"A": {Sha: "A", ChildrenSha: []string{"B"}, TimeMs: 1},
			"B": {Sha: "B", ParentSha: "A", ChildrenSha: []string{"C"}, TimeMs: 2},
			"C": {Sha: "C", ParentSha: "B", TimeMs: 3},
		},
		Branches: []*dagmodel.Branch{
			{Ref: "main", HeadSha: "A", IsTrunk: true},
			{Ref: "feature", HeadSha: "C"},
		},
	}

	out := projector.Project(repo, nil)
	require.Len(t, out, 2)

	require.True(t, out[0].IsTrunk)
	require.Len(t, out[0].Commits, 1)
	require.Equal(t, "A", out[0].Commits[0].Sha)

	require.False(t, out[1].IsTrunk)
	require.True(t, out[1].IsDirectlyOffTrunk)
	require.Len(t, out[1].Commits, 2)
	require.Equal(t, "B", out[1].Commits[0].Sha)
	require.Equal(t, "C", out[1].Commits[1].Sha)

	require.Len(t, out[1].Commits[1].Branches, 1)
	ub := out[1].Commits[1].Branches[0]
	require.Equal(t, "feature", ub.Name)
	require.Equal(t, "main", ub.ExpectedPrBase)
	require.Equal(t, []string{"C", "B"}, ub.OwnedCommitShas)
	require.True(t, ub.CanDelete)
	require.False(t, ub.CanSquash)
	require.Equal(t, "parent_is_trunk", ub.CanSquashReason)

	require.Len(t, out[0].Commits[0].Branches, 1)
	trunkUb := out[0].Commits[0].Branches[0]
	require.Equal(t, "main", trunkUb.Name)
	require.True(t, trunkUb.IsTrunk)
	require.False(t, trunkUb.CanDelete)
	require.Equal(t, "is_trunk", trunkUb.CanDeleteReason)
	require.False(t, trunkUb.CanSquash)
}

func TestProject_CurrentBranchCannotBeDeleted(t *testing.T) {
	repo := &dagmodel.Repo{
		Commits: dagmodel.CommitMap{
			"A": {Sha: "A", ChildrenSha: []string{"B"}, TimeMs: 1},
			"B": {Sha: "B", ParentSha: "A", TimeMs: 2},
		},
		Branches: []*dagmodel.Branch{
			{Ref: "main", HeadSha: "A", IsTrunk: true},
			{Ref: "feature", HeadSha: "B"},
		},
		WorkingTreeStatus: dagmodel.WorkingTreeStatus{CurrentBranch: "feature"},
	}

	out := projector.Project(repo, nil)
	require.Len(t, out, 2)
	ub := out[1].Commits[0].Branches[0]
	require.Equal(t, "feature", ub.Name)
	require.True(t, ub.IsCurrent)
	require.False(t, ub.CanDelete)
	require.Equal(t, "is_current", ub.CanDeleteReason)
}

func TestProject_SquashableOneCommitOnNonTrunkParent(t *testing.T) {
	// main@A -> B(feat1 head) -> C(feat2 head): feat2 is stacked directly on
	// feat1 with exactly one commit of its own, whose base is feat1's head,
	// not trunk, so it must still report canSquash=true.
	repo := &dagmodel.Repo{
		Commits: dagmodel.CommitMap{
			"A": {Sha: "A", ChildrenSha: []string{"B"}, TimeMs: 1},
			"B": {Sha: "B", ParentSha: "A", ChildrenSha: []string{"C"}, TimeMs: 2},
			"C": {Sha: "C", ParentSha: "B", TimeMs: 3},
		},
		Branches: []*dagmodel.Branch{
			{Ref: "main", HeadSha: "A", IsTrunk: true},
			{Ref: "feat1", HeadSha: "B"},
			{Ref: "feat2", HeadSha: "C"},
		},
	}

	out := projector.Project(repo, nil)
	require.Len(t, out, 2)

	var feat2 *dagmodel.UiBranch
	for _, s := range out {
		for _, c := range s.Commits {
			for _, ub := range c.Branches {
				if ub.Name == "feat2" {
					feat2 = ub
				}
			}
		}
	}
	require.NotNil(t, feat2)
	require.True(t, feat2.CanSquash)
	require.Equal(t, "feat1", feat2.ExpectedPrBase)
}

func TestProject_ExpectedPrBaseWalksPastUnownedForkPoint(t *testing.T) {
	// main@A -> B -> {feat1@C, feat2@D}: B is an unowned fork point, so
	// feat1's expected PR base must walk past it to trunk, not come back
	// empty.
	repo := &dagmodel.Repo{
		Commits: dagmodel.CommitMap{
			"A": {Sha: "A", ChildrenSha: []string{"B"}, TimeMs: 1},
			"B": {Sha: "B", ParentSha: "A", ChildrenSha: []string{"C", "D"}, TimeMs: 2},
			"C": {Sha: "C", ParentSha: "B", TimeMs: 3},
			"D": {Sha: "D", ParentSha: "B", TimeMs: 4},
		},
		Branches: []*dagmodel.Branch{
			{Ref: "main", HeadSha: "A", IsTrunk: true},
			{Ref: "feat1", HeadSha: "C"},
			{Ref: "feat2", HeadSha: "D"},
		},
	}

	out := projector.Project(repo, nil)

	var feat1 *dagmodel.UiBranch
	for _, s := range out {
		for _, c := range s.Commits {
			for _, ub := range c.Branches {
				if ub.Name == "feat1" {
					feat1 = ub
				}
			}
		}
	}
	require.NotNil(t, feat1)
	require.Equal(t, "main", feat1.ExpectedPrBase)
}

func TestProject_SharedHeadBranchOrderIsDeterministic(t *testing.T) {
	// main@A -> B, with both "feat-b" and "feat-a" pointing at B: the
	// lexicographic tiebreak must put feat-a before feat-b every run.
	repo := &dagmodel.Repo{
		Commits: dagmodel.CommitMap{
			"A": {Sha: "A", ChildrenSha: []string{"B"}, TimeMs: 1},
			"B": {Sha: "B", ParentSha: "A", TimeMs: 2},
		},
		Branches: []*dagmodel.Branch{
			{Ref: "main", HeadSha: "A", IsTrunk: true},
			{Ref: "feat-b", HeadSha: "B"},
			{Ref: "feat-a", HeadSha: "B"},
		},
	}

	out := projector.Project(repo, nil)
	var head *dagmodel.UiCommit
	for _, s := range out {
		for _, c := range s.Commits {
			if c.Sha == "B" {
				head = c
			}
		}
	}
	require.NotNil(t, head)
	require.Len(t, head.Branches, 2)
	require.Equal(t, "feat-a", head.Branches[0].Name)
	require.Equal(t, "feat-b", head.Branches[1].Name)
}

func TestProject_SpinoffAttachedMidStack(t *testing.T) {
	// main@A -> B(feat1 base) -> C(feat1 head); feat2 forks off B too.
	repo := &dagmodel.Repo{
		Commits: dagmodel.CommitMap{
			"A": {Sha: "A", ChildrenSha: []string{"B"}, TimeMs: 1},
			"B": {Sha: "B", ParentSha: "A", ChildrenSha: []string{"C", "D"}, TimeMs: 2},
			"C": {Sha: "C", ParentSha: "B", TimeMs: 3},
			"D": {Sha: "D", ParentSha: "B", TimeMs: 4},
		},
		Branches: []*dagmodel.Branch{
			{Ref: "main", HeadSha: "A", IsTrunk: true},
			{Ref: "feat1", HeadSha: "C"},
			{Ref: "feat2", HeadSha: "D"},
		},
	}

	out := projector.Project(repo, nil)
	// B is an unowned fork point (2 non-trunk children): it folds into the
	// trunk stack's display rather than being dropped, and both feat1/feat2
	// attach directly off it.
	require.True(t, out[0].IsTrunk)
	require.Len(t, out[0].Commits, 2)
	require.Equal(t, "B", out[0].Commits[1].Sha)
	require.True(t, out[0].Commits[1].IsIndependent)
	require.Len(t, out, 3)

	names := map[string]bool{}
	for _, s := range out[1:] {
		names[s.Commits[len(s.Commits)-1].Sha] = true
	}
	require.True(t, names["C"])
	require.True(t, names["D"])
}

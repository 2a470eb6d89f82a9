package rebasepreview_test

import (
	"testing"

	"github.com/aviator-co/stackcore/internal/dagmodel"
	"github.com/aviator-co/stackcore/internal/rebasepreview"
	"github.com/stretchr/testify/require"
)

func TestBuild_ReparentsOntoTrunkHead(t *testing.T) {
	// main@A -> X (new trunk tip); feature@C previously based on B which
	// forked off A.
	repo := &dagmodel.Repo{
		Commits: dagmodel.CommitMap{
			"A": {Sha: "A", TimeMs: 1, ChildrenSha: []string{"B", "X"}},
			"X": {Sha: "X", ParentSha: "A", TimeMs: 2},
			"B": {Sha: "B", ParentSha: "A", TimeMs: 3, ChildrenSha: []string{"C"}},
			"C": {Sha: "C", ParentSha: "B", TimeMs: 4},
		},
		Branches: []*dagmodel.Branch{
			{Ref: "main", HeadSha: "X", IsTrunk: true},
			{Ref: "feature", HeadSha: "C"},
		},
	}

	intent := &dagmodel.RebaseIntent{
		CreatedAtMs: 1000,
		Targets: []dagmodel.RebaseTarget{
			{
				Node:          &dagmodel.StackNodeState{Branch: "feature", HeadSha: "C", BaseSha: "A", OwnedShas: []string{"C", "B"}},
				TargetBaseSha: "X",
			},
		},
	}

	out := rebasepreview.Build(repo, intent, nil)
	require.NotEmpty(t, out)

	var featureStack *dagmodel.UiStack
	for _, s := range out {
		if len(s.Commits) > 0 && s.Commits[0].Sha == "B" {
			featureStack = s
		}
	}
	require.NotNil(t, featureStack)
	require.Equal(t, []string{"B", "C"}, shas(featureStack.Commits))
	require.True(t, featureStack.IsDirectlyOffTrunk)

	require.Equal(t, dagmodel.RebaseStatusPrompting, featureStack.Commits[0].RebaseStatus)
	require.Equal(t, dagmodel.RebaseStatusPrompting, featureStack.Commits[1].RebaseStatus)

	// original repo untouched
	require.Equal(t, "A", repo.Commits["B"].ParentSha)
}

func shas(commits []*dagmodel.UiCommit) []string {
	out := make([]string, len(commits))
	for i, c := range commits {
		out[i] = c.Sha
	}
	return out
}

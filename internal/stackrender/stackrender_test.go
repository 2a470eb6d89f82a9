package stackrender_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aviator-co/stackcore/internal/dagmodel"
	"github.com/aviator-co/stackcore/internal/stackrender"
)

func plainLabel(commit *dagmodel.UiCommit) string {
	return commit.Name
}

func TestRender_LinearStack(t *testing.T) {
	stack := &dagmodel.UiStack{
		IsTrunk: true,
		Commits: []*dagmodel.UiCommit{
			{Sha: "a", Name: "root"},
			{Sha: "b", Name: "second"},
		},
	}
	out := stackrender.Render([]*dagmodel.UiStack{stack}, plainLabel)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "second")
	require.Contains(t, lines[1], "root")
}

func TestRender_ForkedSpinoffsIndentSeparately(t *testing.T) {
	base := &dagmodel.UiCommit{Sha: "base", Name: "base commit"}
	left := &dagmodel.UiStack{Commits: []*dagmodel.UiCommit{{Sha: "l", Name: "left branch"}}}
	right := &dagmodel.UiStack{Commits: []*dagmodel.UiCommit{{Sha: "r", Name: "right branch"}}}
	base.Spinoffs = []*dagmodel.UiStack{left, right}

	trunk := &dagmodel.UiStack{IsTrunk: true, Commits: []*dagmodel.UiCommit{base}}
	out := stackrender.Render([]*dagmodel.UiStack{trunk}, plainLabel)

	require.Contains(t, out, "left branch")
	require.Contains(t, out, "right branch")
	require.Contains(t, out, "base commit")
	require.Contains(t, out, "├─┘")
}

func TestDefaultLabel_IncludesBranchAnnotations(t *testing.T) {
	commit := &dagmodel.UiCommit{
		Name: "fix bug",
		Branches: []*dagmodel.UiBranch{
			{Name: "feature/x", IsCurrent: true},
		},
	}
	out := stackrender.DefaultLabel(commit)
	require.Contains(t, out, "fix bug")
	require.Contains(t, out, "feature/x")
}

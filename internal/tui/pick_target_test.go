package tui

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCandidatesExcludingSubtree(t *testing.T) {
	heads := map[string]string{
		"main":    "sha-main",
		"feature": "sha-feature",
		"child":   "sha-child",
	}
	inside := func(sha string) bool { return sha == "sha-child" }

	choices := CandidatesExcludingSubtree(heads, inside)
	require.Len(t, choices, 2)
	var names []string
	for _, c := range choices {
		names = append(names, c.branch)
	}
	require.ElementsMatch(t, []string{"main", "feature"}, names)
}

func TestNewTargetPicker_BuildsModel(t *testing.T) {
	picker := NewTargetPicker("choose a target", []targetChoice{
		{branch: "main", sha: "sha-main"},
	})
	require.NotNil(t, picker)
	require.Nil(t, picker.Filter)
}

// Package stackrender renders a projected []*dagmodel.UiStack forest as a
// terminal tree, the same ASCII-art fork/join style the teacher's
// utils/stackutils.RenderTree produces, adapted from a per-branch tree to
// the per-commit Spinoffs shape dagmodel.UiStack actually has (a branch can
// fork off any commit in its parent's chain, not only the parent's head).
package stackrender

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aviator-co/stackcore/internal/dagmodel"
)

// LabelFn renders the one-or-more-line annotation printed to the right of a
// commit's "* " marker.
type LabelFn func(commit *dagmodel.UiCommit) string

// Render renders a forest of stacks (the trunk stack plus every stack
// directly or transitively spun off it) as a terminal tree.
func Render(stacks []*dagmodel.UiStack, label LabelFn) string {
	sb := strings.Builder{}
	for _, s := range stacks {
		sb.WriteString(renderStack(0, s, label))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// renderStack renders one linear stack from its newest commit down to its
// oldest. dagmodel.UiStack.Commits is stored oldest-first, so this walks it
// in reverse to print newest-on-top, matching `git log`'s convention.
func renderStack(columns int, stack *dagmodel.UiStack, label LabelFn) string {
	sb := strings.Builder{}
	for i := len(stack.Commits) - 1; i >= 0; i-- {
		sb.WriteString(renderCommit(columns, stack.Commits[i], label))
	}
	return sb.String()
}

func renderCommit(columns int, commit *dagmodel.UiCommit, label LabelFn) string {
	sb := strings.Builder{}
	for i, spinoff := range commit.Spinoffs {
		sb.WriteString(renderStack(columns+i, spinoff, label))
	}

	switch {
	case len(commit.Spinoffs) > 1:
		sb.WriteString(" ")
		sb.WriteString(strings.Repeat(" │", columns))
		sb.WriteString(" ├")
		sb.WriteString(strings.Repeat("─┴", len(commit.Spinoffs)-2))
		sb.WriteString("─┘\n")
	case len(commit.Spinoffs) == 1:
		sb.WriteString(" ")
		sb.WriteString(strings.Repeat(" │", columns+1))
		sb.WriteString("\n")
	case columns > 0:
		sb.WriteString(" ")
		sb.WriteString(strings.Repeat(" │", columns))
		sb.WriteString("\n")
	}

	firstLine := " " + strings.Repeat(" │", columns) + " * "
	contLine := " " + strings.Repeat(" │", columns+1) + " "

	labelText := strings.TrimSuffix(label(commit), "\n")
	height := lipgloss.Height(labelText)
	lhs := firstLine
	for i := 0; i < height-1; i++ {
		lhs += "\n" + contLine
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, lhs, labelText))
	sb.WriteString("\n")
	return sb.String()
}

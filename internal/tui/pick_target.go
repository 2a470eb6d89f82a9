package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/erikgeiser/promptkit/selection"
)

// targetChoice is one candidate rebase target offered to the user: a
// branch name paired with the SHA its head currently resolves to.
type targetChoice struct {
	branch string
	sha    string
}

func (t targetChoice) String() string { return t.branch }

// NewTargetPicker builds a selection.Model offering choices as rebase
// targets for the branch currently being dragged, ported from the
// teacher's uiutils.NewPromptModel (same vim-style up/down key additions,
// same disabled fuzzy filter since the list is always short).
func NewTargetPicker(title string, choices []targetChoice) *selection.Model[targetChoice] {
	items := make([]targetChoice, len(choices))
	copy(items, choices)
	m := selection.NewModel(selection.New(title, items))
	m.Filter = nil
	m.KeyMap.Up = append(m.KeyMap.Up, "k")
	m.KeyMap.Down = append(m.KeyMap.Down, "j")
	return m
}

// PickerKeys documents the picker's key bindings for a help view, matching
// the teacher's uiutils.PromptKeys.
var PickerKeys = []key.Binding{
	key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
	key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
	key.NewBinding(key.WithKeys("space", "enter"), key.WithHelp("space/enter", "select")),
	key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "cancel")),
}

// CandidatesExcludingSubtree lists every entry of branchHeads (branch name
// to head SHA) as a targetChoice, excluding heads for which insideSubtree
// reports true (a branch can never be dragged onto one of its own
// descendants).
func CandidatesExcludingSubtree(branchHeads map[string]string, insideSubtree func(sha string) bool) []targetChoice {
	var out []targetChoice
	for branch, sha := range branchHeads {
		if insideSubtree(sha) {
			continue
		}
		out = append(out, targetChoice{branch: branch, sha: sha})
	}
	return out
}

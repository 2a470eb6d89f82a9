package uiutils

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// ModelWithExitHandling is a tea.Model that reports a terminal error once
// the program quits, so the caller can propagate it as a normal Go error
// instead of it being silently swallowed by bubbletea's event loop.
type ModelWithExitHandling interface {
	ExitError() error
	tea.Model
}

// RunBubbleTea runs model to completion, disabling stdin reads when not
// attached to a real terminal (e.g. in CI or when piped), matching the
// teacher's uiutils.RunBubbleTea.
func RunBubbleTea(model ModelWithExitHandling) error {
	var opts []tea.ProgramOption
	if !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stdout.Fd()) {
		opts = []tea.ProgramOption{tea.WithInput(nil)}
	}
	p := tea.NewProgram(model, opts...)
	finalModel, err := p.Run()
	if err != nil {
		return err
	}
	if err := finalModel.(ModelWithExitHandling).ExitError(); err != nil {
		return err
	}
	return nil
}

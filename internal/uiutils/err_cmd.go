package uiutils

import tea "github.com/charmbracelet/bubbletea"

// ErrCmd wraps err as a tea.Cmd so a bubbletea Update loop can treat a
// plain error as a message and halt on it, matching the teacher's
// convention of using a bare error value as a terminal message type.
func ErrCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return err
	}
}

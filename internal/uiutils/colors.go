// Package uiutils holds small terminal-rendering helpers shared by the CLI
// and TUI: colored status words and Markdown-to-terminal error rendering.
//
// Ported from the teacher's internal/utils/colors and
// internal/utils/uiutils packages.
package uiutils

import "github.com/fatih/color"

var (
	cliCmdC          = color.New(color.FgMagenta)
	successC         = color.New(color.FgGreen)
	failureC         = color.New(color.FgRed)
	troubleshootingC = color.New(color.Faint)
	userInputC       = color.New(color.FgCyan)
	faintC           = color.New(color.Faint)
)

// CliCmd, Success, Failure, Troubleshooting, UserInput, and Faint render
// their argument in the role's associated color, matching the teacher's
// colors package.
var (
	CliCmd          = cliCmdC.Sprint
	Success         = successC.Sprint
	Failure         = failureC.Sprint
	Troubleshooting = troubleshootingC.Sprint
	UserInput       = userInputC.Sprint
	Faint           = faintC.Sprint
)

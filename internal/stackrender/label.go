package stackrender

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/aviator-co/stackcore/internal/dagmodel"
	"github.com/aviator-co/stackcore/internal/uiutils"
)

// DefaultLabel is the LabelFn the CLI uses: commit message, a trailing
// relative timestamp, and one line per branch pointing at the commit,
// annotated with its forge PR state.
func DefaultLabel(commit *dagmodel.UiCommit) string {
	lines := make([]string, 0, 1+len(commit.Branches))

	msg := commit.Name
	if commit.IsCurrent {
		msg = uiutils.Success(msg)
	}
	when := ""
	if commit.TimestampMs > 0 {
		when = " " + uiutils.Faint(humanize.Time(time.UnixMilli(commit.TimestampMs)))
	}
	lines = append(lines, msg+when)

	for _, b := range commit.Branches {
		lines = append(lines, "  "+branchLine(b))
	}

	return strings.Join(lines, "\n")
}

func branchLine(b *dagmodel.UiBranch) string {
	name := b.Name
	if b.IsCurrent {
		name = uiutils.CliCmd(name) + uiutils.Faint(" (current)")
	} else if b.IsTrunk {
		name = uiutils.Faint(name) + uiutils.Faint(" (trunk)")
	} else {
		name = uiutils.UserInput(name)
	}

	if b.PullRequest == nil {
		return name
	}

	status := string(b.PullRequest.State)
	switch b.PullRequest.State {
	case dagmodel.PrMerged:
		status = uiutils.Success("merged")
	case dagmodel.PrOpen:
		status = uiutils.CliCmd("open")
	case dagmodel.PrDraft:
		status = uiutils.Faint("draft")
	case dagmodel.PrClosed:
		status = uiutils.Failure("closed")
	}
	return name + uiutils.Faint(" #") + itoa(b.PullRequest.Number) + " " + status
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	s := string(buf[i:])
	if neg {
		return "-" + s
	}
	return s
}

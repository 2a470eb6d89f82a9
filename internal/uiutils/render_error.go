package uiutils

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"emperror.dev/errors"
	"github.com/fatih/color"
	"github.com/kr/text"
	blackfriday "github.com/russross/blackfriday/v2"
)

// Sentinel errors the CLI recognizes and renders as a long-form,
// Markdown-authored explanation instead of a bare one-line message,
// matching the teacher's uiutils.ErrNoGitHubToken/ErrParentNotAdopted.
var (
	ErrNoForgeToken       = errors.Sentinel("no GitHub token is set (do you need to configure one?)")
	ErrParentNotAdopted   = errors.Sentinel("parent branch is not part of a tracked stack")
	ErrRebaseInProgress   = errors.Sentinel("a rebase is already in progress")
	ErrWorktreeCheckedOut = errors.Sentinel("branch is checked out in another worktree")
)

const noForgeToken = `# No GitHub token

This command needs a GitHub API token to talk to the forge. There are two
ways to provide one:

1. Authenticate with the ` + "`gh`" + ` CLI and let it supply credentials.
2. Set a personal access token via the ` + "`STACKCORE_GITHUB_TOKEN`" + ` (or
   ` + "`GITHUB_TOKEN`" + `) environment variable, or in the config file.

Set up a token and try again.
`

const parentNotAdopted = `# Parent branch not tracked

Stack metadata is only kept for branches that have been added to a stack.
The parent of this branch has no tracked metadata, so its position in the
stack can't be resolved.

Run the adopt command on the parent branch first.
`

const rebaseInProgress = `# Rebase already in progress

Only one rebase/restack session can be active per repository at a time.
Finish or abort the in-progress session before starting another.
`

const worktreeCheckedOut = `# Branch checked out elsewhere

This branch is checked out in a different worktree. Switch to that worktree,
or remove it, before operating on the branch from here.
`

// RenderError renders err for terminal display: sentinel errors recognized
// above get their long-form Markdown explanation rendered through
// renderMarkdown; anything else falls back to a plain one-line message.
func RenderError(err error) string {
	var markdownText string
	switch {
	case errors.Is(err, ErrNoForgeToken):
		markdownText = noForgeToken
	case errors.Is(err, ErrParentNotAdopted):
		markdownText = parentNotAdopted
	case errors.Is(err, ErrRebaseInProgress):
		markdownText = rebaseInProgress
	case errors.Is(err, ErrWorktreeCheckedOut):
		markdownText = worktreeCheckedOut
	}
	if markdownText != "" {
		return renderMarkdown(markdownText)
	}
	return failureC.Sprintf("error: %s\n", err)
}

// renderMarkdown renders Markdown source to ANSI-colored terminal text via
// a minimal blackfriday.Renderer, rather than printing raw Markdown syntax.
func renderMarkdown(src string) string {
	var buf bytes.Buffer
	r := &termRenderer{}
	md := blackfriday.New(blackfriday.WithExtensions(blackfriday.CommonExtensions))
	root := md.Parse([]byte(src))
	root.Walk(func(node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		return r.RenderNode(&buf, node, entering)
	})
	rendered := strings.TrimRight(buf.String(), "\n") + "\n"
	return text.Indent(rendered, "  ")
}

// termRenderer is a blackfriday.Renderer that emits ANSI-colored terminal
// text instead of HTML, enough to cover the headings/paragraphs/lists/
// code spans/links this package's sentinel messages use.
type termRenderer struct {
	listDepth int
}

func (r *termRenderer) RenderHeader(w io.Writer, _ *blackfriday.Node) {}
func (r *termRenderer) RenderFooter(w io.Writer, _ *blackfriday.Node) {}

func (r *termRenderer) RenderNode(w io.Writer, node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
	switch node.Type {
	case blackfriday.Heading:
		if entering {
			fmt.Fprint(w, color.New(color.Bold, color.FgMagenta).Sprint("# "))
		} else {
			fmt.Fprint(w, "\n\n")
		}
	case blackfriday.Paragraph:
		if !entering {
			fmt.Fprint(w, "\n\n")
		}
	case blackfriday.List:
		if entering {
			r.listDepth++
		} else {
			r.listDepth--
		}
	case blackfriday.Item:
		if entering {
			fmt.Fprint(w, indentPrefix(r.listDepth-1)+"- ")
		} else {
			fmt.Fprint(w, "\n")
		}
	case blackfriday.Text:
		fmt.Fprint(w, string(node.Literal))
	case blackfriday.Code:
		fmt.Fprint(w, color.New(color.FgCyan).Sprintf("`%s`", node.Literal))
	case blackfriday.Link:
		if entering {
			fmt.Fprint(w, color.New(color.Underline, color.FgBlue).Sprint(string(node.LinkData.Destination)))
			return blackfriday.SkipChildren
		}
	case blackfriday.Softbreak, blackfriday.Hardbreak:
		fmt.Fprint(w, "\n")
	}
	return blackfriday.GoToNext
}

func indentPrefix(depth int) string {
	if depth <= 0 {
		return ""
	}
	out := ""
	for i := 0; i < depth; i++ {
		out += "  "
	}
	return out
}

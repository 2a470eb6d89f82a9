package uiutils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderError_SentinelRendersMarkdown(t *testing.T) {
	out := RenderError(ErrNoForgeToken)
	require.Contains(t, out, "No GitHub token")
	require.Contains(t, out, "STACKCORE_GITHUB_TOKEN")
}

func TestRenderError_UnknownFallsBackToPlainMessage(t *testing.T) {
	out := RenderError(errPlain("boom"))
	require.Contains(t, out, "error: boom")
}

type errPlain string

func (e errPlain) Error() string { return string(e) }

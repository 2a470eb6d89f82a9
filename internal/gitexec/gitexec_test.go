package gitexec_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aviator-co/stackcore/internal/gitexec"
)

// newTempRepo creates a small local git repository with an origin remote and
// one commit on main, matching the shape the teacher's gittest.NewTempRepo
// sets up.
func newTempRepo(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "local")
	remoteDir := filepath.Join(t.TempDir(), "remote")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.MkdirAll(remoteDir, 0o755))

	run := func(workDir string, args ...string) {
		cmd := exec.CommandContext(context.Background(), "git", args...)
		cmd.Dir = workDir
		out, err := cmd.CombinedOutput()
		require.NoErrorf(t, err, "git %v: %s", args, out)
	}

	run(dir, "init", "--initial-branch=main")
	run(remoteDir, "init", "--bare")
	run(dir, "config", "user.name", "stackcore-test")
	run(dir, "config", "user.email", "stackcore-test@nonexistent")
	run(dir, "remote", "add", "origin", remoteDir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello"), 0o644))
	run(dir, "add", "README.md")
	run(dir, "commit", "-m", "initial commit")
	run(dir, "push", "origin", "main")
	run(dir, "remote", "set-head", "origin", "main")

	return dir
}

func TestSnapshot_ReturnsTrunkCommitAndBranch(t *testing.T) {
	dir := newTempRepo(t)
	repo, err := gitexec.Open(dir)
	require.NoError(t, err)

	ctx := context.Background()
	snap, err := repo.Snapshot(ctx, gitexec.SnapshotOpts{})
	require.NoError(t, err)

	require.Len(t, snap.Commits, 1)
	mainBranch, ok := snap.BranchByRef("main")
	require.True(t, ok)
	require.True(t, mainBranch.IsTrunk)
	require.False(t, mainBranch.IsRemote)

	require.Equal(t, "main", snap.WorkingTreeStatus.CurrentBranch)
	require.False(t, snap.WorkingTreeStatus.Detached)
	require.True(t, snap.WorkingTreeStatus.ChangedFiles() == nil)
}

func TestSnapshot_DetectsDirtyWorkingTree(t *testing.T) {
	dir := newTempRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("changed"), 0o644))

	repo, err := gitexec.Open(dir)
	require.NoError(t, err)
	snap, err := repo.Snapshot(context.Background(), gitexec.SnapshotOpts{})
	require.NoError(t, err)

	require.Contains(t, snap.WorkingTreeStatus.Modified, "README.md")
}

func TestRebase_ReportsConflict(t *testing.T) {
	dir := newTempRepo(t)
	repo, err := gitexec.Open(dir)
	require.NoError(t, err)
	ctx := context.Background()

	run := func(args ...string) {
		cmd := exec.CommandContext(ctx, "git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoErrorf(t, err, "git %v: %s", args, out)
	}

	run("checkout", "-b", "feature")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("feature change"), 0o644))
	run("commit", "-am", "feature commit")

	run("checkout", "main")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("main change"), 0o644))
	run("commit", "-am", "main commit")

	run("checkout", "feature")
	result, err := repo.Rebase(ctx, gitexec.RebaseOpts{Upstream: "main"})
	require.NoError(t, err)
	require.True(t, result.Conflict)

	abortResult, err := repo.Rebase(ctx, gitexec.RebaseOpts{Abort: true})
	require.NoError(t, err)
	require.True(t, abortResult.Done)
}

// Package gitexec is the Git executor: the only package in this repository
// that performs real Git I/O. It builds a dagmodel.Repo snapshot for the
// pure core to consume (read-only, via go-git) and shells out to the system
// git binary for mutating operations (rebase, cherry-pick), reporting
// results back in the core's own vocabulary (dagmodel.RebaseState,
// conflict events).
//
// Ported from the teacher's internal/git (exec plumbing, rebase.go,
// cherrypick.go, status.go) and internal/treedetector (merge-base walks,
// remote-tracking-branch resolution for trunk).
package gitexec

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/go-git/go-git/v5"
	"github.com/sirupsen/logrus"
)

// Repo wraps an open Git repository, providing both the go-git handle used
// for read-only snapshot construction and a thin exec.Command wrapper used
// for mutating operations that go-git doesn't implement (rebase,
// cherry-pick).
type Repo struct {
	repoDir string
	gitDir  string
	goGit   *git.Repository
	log     logrus.FieldLogger
}

// Open opens the Git repository rooted at repoDir.
func Open(repoDir string) (*Repo, error) {
	goGit, err := git.PlainOpenWithOptions(repoDir, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, errors.WrapIff(err, "failed to open git repo at %q", repoDir)
	}
	gitDir := filepath.Join(repoDir, ".git")
	return &Repo{
		repoDir: repoDir,
		gitDir:  gitDir,
		goGit:   goGit,
		log:     logrus.WithField("repo", filepath.Base(repoDir)),
	}, nil
}

// Dir returns the repository's working directory.
func (r *Repo) Dir() string { return r.repoDir }

// GitDir returns the repository's .git directory.
func (r *Repo) GitDir() string { return r.gitDir }

// GoGit returns the underlying go-git handle, for read-only snapshot
// construction.
func (r *Repo) GoGit() *git.Repository { return r.goGit }

// Git runs a git subcommand and returns its trimmed stdout.
func (r *Repo) Git(ctx context.Context, args ...string) (string, error) {
	start := time.Now()
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.repoDir
	out, err := cmd.Output()
	log := r.log.WithField("duration", time.Since(start))
	if err != nil {
		stderr := "<no output>"
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			stderr = string(exitErr.Stderr)
		}
		log.WithError(err).Debugf("git %s failed: %s", args, stderr)
		return strings.TrimSpace(string(out)), errors.WrapIff(err, "git %s", args[0])
	}
	log.Debugf("git %s", args)
	return strings.TrimSpace(string(out)), nil
}

// RunOpts controls a raw git invocation whose exit code the caller wants to
// inspect (rather than have it turned into an error).
type RunOpts struct {
	Args []string
	Env  []string
}

// RunResult is the result of a raw git invocation.
type RunResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Lines splits Stdout on newlines, skipping a trailing blank line.
func (o RunResult) Lines() []string {
	s := strings.TrimSpace(string(o.Stdout))
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Run runs a git subcommand, capturing stdout/stderr and the exit code
// without returning an error for a non-zero exit — callers that need to
// distinguish "ran and failed" from "conflict, handle it" use this instead
// of Git.
func (r *Repo) Run(ctx context.Context, opts RunOpts) (RunResult, error) {
	cmd := exec.CommandContext(ctx, "git", opts.Args...)
	cmd.Dir = r.repoDir
	cmd.Env = append(os.Environ(), opts.Env...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return RunResult{}, errors.WrapIff(err, "git %s", opts.Args)
	}
	return RunResult{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   []byte(stdout.String()),
		Stderr:   []byte(stderr.String()),
	}, nil
}

func (r *Repo) readGitFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(r.gitDir, name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// ShortSha returns the first 8 characters of a sha, for log messages.
func ShortSha(sha string) string {
	if len(sha) <= 8 {
		return sha
	}
	return sha[:8]
}

// ErrRemoteNotFound is returned by DefaultBranch when the repository has no
// configured "origin" remote.
var ErrRemoteNotFound = errors.Sentinel("this repository doesn't have a remote named origin")

// DefaultBranch resolves the repository's trunk branch from the origin
// remote's HEAD, matching the teacher's av/internal/git.OpenRepo logic.
func (r *Repo) DefaultBranch(ctx context.Context) (string, error) {
	out, err := r.Git(ctx, "symbolic-ref", "refs/remotes/origin/HEAD")
	if err != nil {
		logrus.WithError(err).Debug("failed to determine remote HEAD")
		return "", errors.WrapIff(ErrRemoteNotFound, "failed to determine repository default branch: %v", err)
	}
	return strings.TrimPrefix(out, "refs/remotes/origin/"), nil
}

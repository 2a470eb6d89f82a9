package gitexec

import (
	"context"
	"fmt"
	"strings"

	"emperror.dev/errors"
)

// RebaseOpts mirrors the teacher's git.RebaseOpts: a single onto-rebase, or a
// continue/abort of one already in progress.
type RebaseOpts struct {
	Upstream string
	Onto     string
	Branch   string
	Continue bool
	Abort    bool
}

// RebaseResult reports what happened after invoking git rebase.
type RebaseResult struct {
	Conflict bool
	Done     bool
	Stderr   string
}

// Rebase runs `git rebase`, `git rebase --continue`, or `git rebase --abort`
// depending on opts. A conflicting rebase is reported via
// RebaseResult.Conflict rather than an error — the orchestrator decides what
// to do with a conflict, this layer only reports it.
func (r *Repo) Rebase(ctx context.Context, opts RebaseOpts) (RebaseResult, error) {
	if opts.Continue || opts.Abort {
		verb := "--continue"
		if opts.Abort {
			verb = "--abort"
		}
		res, err := r.Run(ctx, RunOpts{
			Args: []string{"rebase", verb},
			// Disable the commit-message editor git rebase --continue would
			// otherwise open.
			Env: []string{"GIT_EDITOR=true"},
		})
		if err != nil {
			return RebaseResult{}, err
		}
		if res.ExitCode != 0 {
			if strings.Contains(string(res.Stderr), "No rebase in progress") {
				return RebaseResult{Done: true}, nil
			}
			return RebaseResult{Conflict: true, Stderr: string(res.Stderr)}, nil
		}
		return RebaseResult{Done: true}, nil
	}

	args := []string{"rebase"}
	if opts.Onto != "" {
		args = append(args, "--onto", opts.Onto)
	}
	args = append(args, opts.Upstream)
	if opts.Branch != "" {
		args = append(args, opts.Branch)
	}
	res, err := r.Run(ctx, RunOpts{Args: args})
	if err != nil {
		return RebaseResult{}, err
	}
	if res.ExitCode != 0 {
		return RebaseResult{Conflict: true, Stderr: string(res.Stderr)}, nil
	}
	return RebaseResult{Done: true}, nil
}

// CherryPickResume mirrors the teacher's git.CherryPickResume.
type CherryPickResume string

const (
	CherryPickContinue CherryPickResume = "continue"
	CherryPickSkip     CherryPickResume = "skip"
	CherryPickAbort    CherryPickResume = "abort"
)

// CherryPickOpts mirrors the teacher's git.CherryPick options.
type CherryPickOpts struct {
	Commits []string
	NoCommit bool
	Resume  CherryPickResume
}

// ErrCherryPickConflict is returned by CherryPick when the pick could not be
// applied cleanly.
type ErrCherryPickConflict struct {
	ConflictingCommit string
	Output             string
}

func (e ErrCherryPickConflict) Error() string {
	return fmt.Sprintf("cherry-pick conflict: failed to apply %s", ShortSha(e.ConflictingCommit))
}

// CherryPick applies opts.Commits on top of the current HEAD, or resumes an
// in-progress pick per opts.Resume.
func (r *Repo) CherryPick(ctx context.Context, opts CherryPickOpts) error {
	args := []string{"cherry-pick"}
	if opts.Resume != "" {
		args = append(args, "--"+string(opts.Resume))
	} else {
		if opts.NoCommit {
			args = append(args, "--no-commit")
		}
		args = append(args, opts.Commits...)
	}

	res, err := r.Run(ctx, RunOpts{Args: args})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		head, readErr := r.readGitFile("CHERRY_PICK_HEAD")
		if readErr != nil {
			return errors.WrapIff(readErr, "expected CHERRY_PICK_HEAD to exist after cherry-pick failure")
		}
		return ErrCherryPickConflict{ConflictingCommit: head, Output: string(res.Stderr)}
	}
	return nil
}

// CheckoutBranch checks out name, optionally creating it at newHeadRef.
func (r *Repo) CheckoutBranch(ctx context.Context, name string, newBranch bool, newHeadRef string) error {
	args := []string{"checkout"}
	if newBranch {
		args = append(args, "-b")
	}
	args = append(args, name)
	if newBranch && newHeadRef != "" {
		args = append(args, newHeadRef)
	}
	res, err := r.Run(ctx, RunOpts{Args: args})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return errors.WrapIff(errors.Errorf("git checkout failed"), "failed to checkout %q: %s", name, res.Stderr)
	}
	return nil
}

// UpdateRef updates ref to point at newSha, optionally only if its current
// value is oldSha.
func (r *Repo) UpdateRef(ctx context.Context, ref, newSha, oldSha string) error {
	args := []string{"update-ref", ref, newSha}
	if oldSha != "" {
		args = append(args, oldSha)
	}
	_, err := r.Git(ctx, args...)
	return errors.WrapIff(err, "failed to write ref %q (%s)", ref, ShortSha(newSha))
}

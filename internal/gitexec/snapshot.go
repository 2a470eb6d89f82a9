package gitexec

import (
	"context"
	"strings"

	"emperror.dev/errors"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/sirupsen/logrus"

	"github.com/aviator-co/stackcore/internal/dagmodel"
)

// SnapshotOpts configures Snapshot. AdditionalTrunkBranches lists extra
// branch names that count as trunk alongside the remote-detected default
// branch.
type SnapshotOpts struct {
	AdditionalTrunkBranches []string
}

// Snapshot builds the read-only dagmodel.Repo the pure core consumes:
// commits (with parent/child links), branches (local and remote-tracking),
// worktrees, and the active worktree's status.
//
// Commit and branch enumeration goes through go-git directly; status and
// worktree listing shell out to the system git binary, since go-git has no
// porcelain-status or multi-worktree API. Ported from the teacher's
// treedetector.DetectBranchTree (trunk/remote-tracking resolution) and
// git.Status.
func (r *Repo) Snapshot(ctx context.Context, opts SnapshotOpts) (dagmodel.Repo, error) {
	trunkRef, err := r.DefaultBranch(ctx)
	if err != nil {
		return dagmodel.Repo{}, err
	}
	trunkNames := map[string]bool{trunkRef: true}
	for _, b := range opts.AdditionalTrunkBranches {
		trunkNames[b] = true
	}

	commits, err := r.buildCommits()
	if err != nil {
		return dagmodel.Repo{}, err
	}

	branches, err := r.buildBranches(trunkNames)
	if err != nil {
		return dagmodel.Repo{}, err
	}

	worktrees, err := r.listWorktrees(ctx)
	if err != nil {
		return dagmodel.Repo{}, err
	}

	status, err := r.Status(ctx)
	if err != nil {
		return dagmodel.Repo{}, err
	}

	return dagmodel.Repo{
		Path:               r.repoDir,
		ActiveWorktreePath: r.repoDir,
		Commits:            commits,
		Branches:           branches,
		Worktrees:          worktrees,
		WorkingTreeStatus:  status,
	}, nil
}

// buildCommits walks every commit reachable from a local or remote-tracking
// branch (refs/heads/* and refs/remotes/*) and assembles the sha -> *Commit map, with ChildrenSha populated as
// the reverse of ParentSha. Assumes single-parent history (merge commits are
// represented by their first parent only, consistent with the core's
// single-parent assumption).
func (r *Repo) buildCommits() (dagmodel.CommitMap, error) {
	out := dagmodel.CommitMap{}
	refs, err := r.goGit.References()
	if err != nil {
		return nil, errors.WrapIff(err, "failed to list refs")
	}
	seen := map[plumbing.Hash]bool{}
	var walkErr error
	if err := refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		if !strings.HasPrefix(ref.Name().String(), "refs/heads/") &&
			!strings.HasPrefix(ref.Name().String(), "refs/remotes/") {
			return nil
		}
		startCommit, err := r.goGit.CommitObject(ref.Hash())
		if err != nil {
			logrus.WithError(err).WithField("ref", ref.Name()).
				Warn("failed to resolve commit for ref, skipping")
			return nil
		}
		return object.NewCommitPreorderIter(startCommit, seen, nil).ForEach(func(c *object.Commit) error {
			if _, ok := out[c.Hash.String()]; ok {
				return nil
			}
			seen[c.Hash] = true
			commit := &dagmodel.Commit{
				Sha:     c.Hash.String(),
				Message: c.Message,
				TimeMs:  c.Author.When.UnixMilli(),
			}
			if c.NumParents() > 0 {
				commit.ParentSha = c.ParentHashes[0].String()
			}
			out[commit.Sha] = commit
			return nil
		})
	}); err != nil {
		walkErr = err
	}
	if walkErr != nil {
		return nil, errors.WrapIff(walkErr, "failed to walk commit history")
	}
	for _, c := range out {
		if c.ParentSha == "" {
			continue
		}
		if parent, ok := out[c.ParentSha]; ok {
			parent.ChildrenSha = append(parent.ChildrenSha, c.Sha)
		}
	}
	return out, nil
}

// buildBranches lists every local and remote-tracking branch ref, flagging
// trunk membership per trunkNames.
func (r *Repo) buildBranches(trunkNames map[string]bool) ([]*dagmodel.Branch, error) {
	var out []*dagmodel.Branch
	iter, err := r.goGit.Branches()
	if err != nil {
		return nil, errors.WrapIff(err, "failed to list local branches")
	}
	if err := iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		out = append(out, &dagmodel.Branch{
			Ref:      name,
			HeadSha:  ref.Hash().String(),
			IsTrunk:  trunkNames[name],
			IsRemote: false,
		})
		return nil
	}); err != nil {
		return nil, errors.WrapIff(err, "failed to walk local branches")
	}

	refs, err := r.goGit.References()
	if err != nil {
		return nil, errors.WrapIff(err, "failed to list refs")
	}
	if err := refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		full := ref.Name().String()
		if !strings.HasPrefix(full, "refs/remotes/") || strings.HasSuffix(full, "/HEAD") {
			return nil
		}
		short := strings.TrimPrefix(full, "refs/remotes/")
		out = append(out, &dagmodel.Branch{
			Ref:      short,
			HeadSha:  ref.Hash().String(),
			IsTrunk:  false,
			IsRemote: true,
		})
		return nil
	}); err != nil {
		return nil, errors.WrapIff(err, "failed to walk remote-tracking branches")
	}
	return out, nil
}

// listWorktrees shells out to `git worktree list --porcelain`, since go-git
// has no multi-worktree API.
func (r *Repo) listWorktrees(ctx context.Context) ([]*dagmodel.Worktree, error) {
	out, err := r.Git(ctx, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	var worktrees []*dagmodel.Worktree
	var cur *dagmodel.Worktree
	flush := func() {
		if cur != nil {
			worktrees = append(worktrees, cur)
		}
	}
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			flush()
			cur = &dagmodel.Worktree{Path: strings.TrimPrefix(line, "worktree ")}
		case strings.HasPrefix(line, "HEAD "):
			if cur != nil {
				cur.HeadSha = strings.TrimPrefix(line, "HEAD ")
			}
		case strings.HasPrefix(line, "branch "):
			if cur != nil {
				cur.Branch = strings.TrimPrefix(strings.TrimPrefix(line, "branch "), "refs/heads/")
			}
		case line == "detached":
			// leave Branch empty
		}
	}
	flush()
	for i, w := range worktrees {
		w.IsMain = i == 0
		dirty, err := r.worktreeIsDirty(ctx, w.Path)
		if err != nil {
			logrus.WithError(err).WithField("worktree", w.Path).
				Warn("failed to determine worktree dirtiness, assuming clean")
			continue
		}
		w.IsDirty = dirty
	}
	return worktrees, nil
}

func (r *Repo) worktreeIsDirty(ctx context.Context, path string) (bool, error) {
	out, err := r.Git(ctx, "-C", path, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

package main

import (
	"time"

	"emperror.dev/errors"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aviator-co/stackcore/internal/dagmodel"
	"github.com/aviator-co/stackcore/internal/gitexec"
	"github.com/aviator-co/stackcore/internal/phasemachine"
	"github.com/aviator-co/stackcore/internal/rebaseintent"
	"github.com/aviator-co/stackcore/internal/rebaseplan"
	"github.com/aviator-co/stackcore/internal/store"
	"github.com/aviator-co/stackcore/internal/trunk"
	"github.com/aviator-co/stackcore/internal/tui"
	"github.com/aviator-co/stackcore/internal/uiutils"
)

var restackFlags struct {
	Onto     string
	Continue bool
	Abort    bool
}

var restackCmd = &cobra.Command{
	Use:   "restack",
	Short: "Rebase the current branch (and everything stacked on it) onto a new base",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		db, err := openStore(repo)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		nowMs := func() int64 { return time.Now().UnixMilli() }

		snap := db.ReadTx()

		if restackFlags.Continue || restackFlags.Abort {
			if snap.State == nil {
				return errors.New("no restack is in progress to continue or abort")
			}
			var nodes []*dagmodel.StackNodeState
			if snap.Intent != nil {
				for _, t := range snap.Intent.Targets {
					nodes = append(nodes, t.Node)
				}
			}
			return runRestackModel(repo, db, "", phasemachine.State{Phase: phasemachine.PhaseConflicted}, *snap.State, nodes, tui.Options{
				Continue: restackFlags.Continue,
				Abort:    restackFlags.Abort,
				NowMs:    nowMs,
			})
		}

		if snap.State != nil {
			return uiutils.ErrRebaseInProgress
		}

		repoState, err := repo.Snapshot(ctx, gitexec.SnapshotOpts{})
		if err != nil {
			return err
		}
		if repoState.WorkingTreeStatus.CurrentCommitSha == "" {
			return errors.New("could not determine the current commit")
		}
		headSha := repoState.WorkingTreeStatus.CurrentCommitSha

		targetBaseSha := restackFlags.Onto
		if targetBaseSha == "" {
			targetBaseSha = trunk.GetTrunkHeadSha(repoState.Branches, repoState.Commits)
			if targetBaseSha == "" {
				return errors.New("cannot determine a default trunk to restack onto; pass --onto")
			}
		} else if b, ok := repoState.BranchByRef(targetBaseSha); ok {
			targetBaseSha = b.HeadSha
		}

		intent, ok := rebaseintent.Build(&repoState, headSha, targetBaseSha, nowMs(), uuid.NewString)
		if !ok {
			return errors.New("nothing to restack from the current branch")
		}

		state, ok := rebaseplan.CreateSession(intent.ID, &repoState, intent.Targets, nowMs(), uuid.NewString)
		if !ok {
			return errors.New("failed to plan the restack")
		}

		wt := db.WriteTx()
		wt.SetIntent(intent)
		wt.SetState(state)
		if err := wt.Commit(); err != nil {
			return err
		}

		var nodes []*dagmodel.StackNodeState
		for _, t := range intent.Targets {
			nodes = append(nodes, t.Node)
		}
		initialBranch := currentBranch(&repoState)

		return runRestackModel(repo, db, initialBranch, phasemachine.State{Phase: phasemachine.PhaseExecuting, EnteredAtMs: nowMs()}, *state, nodes, tui.Options{
			NowMs: nowMs,
		})
	},
}

func currentBranch(repo *dagmodel.Repo) string {
	for _, b := range repo.LocalBranches() {
		if b.HeadSha == repo.WorkingTreeStatus.CurrentCommitSha {
			return b.Ref
		}
	}
	return ""
}

func runRestackModel(
	repo *gitexec.Repo,
	db *store.DB,
	initialBranch string,
	phase phasemachine.State,
	state dagmodel.RebaseState,
	nodes []*dagmodel.StackNodeState,
	opts tui.Options,
) error {
	model := tui.NewRestackModel(repo, db, initialBranch, phase, state, nodes, opts)
	if err := uiutils.RunBubbleTea(model); err != nil {
		return err
	}
	if model.ExitError() != nil {
		return model.ExitError()
	}
	wt := db.WriteTx()
	wt.Clear()
	return wt.Commit()
}

func init() {
	restackCmd.Flags().StringVar(&restackFlags.Onto, "onto", "", "branch or commit to rebase onto (defaults to the trunk head)")
	restackCmd.Flags().BoolVar(&restackFlags.Continue, "continue", false, "continue a paused restack after resolving conflicts")
	restackCmd.Flags().BoolVar(&restackFlags.Abort, "abort", false, "abort an in-progress restack")
}

package main

import (
	"fmt"

	"emperror.dev/errors"
	"github.com/spf13/cobra"

	"github.com/aviator-co/stackcore/internal/forgejoin"
	"github.com/aviator-co/stackcore/internal/gitexec"
	"github.com/aviator-co/stackcore/internal/prtarget"
	"github.com/aviator-co/stackcore/internal/uiutils"
)

var prCmd = &cobra.Command{
	Use:   "pr",
	Short: "Show the pull request base branch and status for the current branch",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		snap, err := repo.Snapshot(ctx, gitexec.SnapshotOpts{})
		if err != nil {
			return err
		}
		if snap.WorkingTreeStatus.CurrentCommitSha == "" {
			return errors.New("could not determine the current commit")
		}
		branch := currentBranch(&snap)
		if branch == "" {
			return errors.New("HEAD is detached; check out a branch first")
		}

		client, err := getForgeClient()
		if err != nil {
			return errors.WrapIf(uiutils.ErrNoForgeToken, err.Error())
		}
		slug, err := resolveOriginSlug(ctx, repo)
		if err != nil {
			return err
		}
		forge, err := client.FetchForgeState(ctx, slug)
		if err != nil {
			return err
		}

		base, err := prtarget.FindBaseBranch(&snap, snap.WorkingTreeStatus.CurrentCommitSha, forge.MergedBranchNames)
		if err != nil {
			return err
		}

		fmt.Printf("branch:  %s\n", branch)
		fmt.Printf("base:    %s\n", base)
		if pr := forgejoin.FindActivePr(branch, forge.PullRequests); pr != nil {
			fmt.Printf("pr:      #%d (%s) -> %s\n", pr.Number, pr.State, pr.BaseRefName)
			if pr.BaseRefName != base {
				fmt.Println(uiutils.Failure("the open PR's base is stale; retarget it to " + base))
			}
		} else {
			fmt.Println("pr:      none open yet")
		}
		return nil
	},
}

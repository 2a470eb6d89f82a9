package main

import (
	"fmt"

	"emperror.dev/errors"
	"github.com/spf13/cobra"

	"github.com/aviator-co/stackcore/internal/dagmodel"
	"github.com/aviator-co/stackcore/internal/dagwalk"
	"github.com/aviator-co/stackcore/internal/forgejoin"
	"github.com/aviator-co/stackcore/internal/gitexec"
	"github.com/aviator-co/stackcore/internal/shipnav"
	"github.com/aviator-co/stackcore/internal/trunk"
	"github.com/aviator-co/stackcore/internal/uiutils"
)

var shipCmd = &cobra.Command{
	Use:   "ship",
	Short: "Move on from the current branch once its pull request has merged",
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

		branch := currentBranch(&snap)
		if branch == "" {
			return errors.New("HEAD is detached; check out the branch that shipped first")
		}

		client, err := getForgeClient()
		if err != nil {
			return uiutils.ErrNoForgeToken
		}
		slug, err := resolveOriginSlug(ctx, repo)
		if err != nil {
			return err
		}
		forge, err := client.FetchForgeState(ctx, slug)
		if err != nil {
			return err
		}

		if pr := forgejoin.FindOpenPr(branch, forge.PullRequests); pr != nil {
			fmt.Printf("PR #%d for %s is still open; nothing to ship yet.\n", pr.Number, branch)
			return nil
		}
		mergedPr := latestMergedPr(branch, forge.PullRequests)
		if mergedPr == nil {
			fmt.Printf("no merged pull request found for %s\n", branch)
			return nil
		}

		trunkBranch := trunk.SelectTrunk(snap.Branches)
		trunkRef := ""
		if trunkBranch != nil {
			trunkRef = trunkBranch.Ref
		}
		prTargetBranch := mergedPr.BaseRefName
		if prTargetBranch == "" {
			prTargetBranch = trunkRef
		}

		parentIndex := dagwalk.BuildParentIndex(snap.LocalBranches(), snap.Commits)
		childrenIndex := dagwalk.BuildChildrenIndex(parentIndex)
		hasChildren := len(childrenIndex[branch]) > 0

		result := shipnav.Navigate(shipnav.Input{
			ShippedBranch:      branch,
			PrTargetBranch:     prTargetBranch,
			TrunkBranch:        trunkRef,
			UserCurrentBranch:  branch,
			HasChildren:        hasChildren,
			IsWorkingTreeClean: !snap.WorkingTreeStatus.IsDirty,
		})

		if result.TargetBranch != "" {
			if err := repo.CheckoutBranch(ctx, result.TargetBranch, false, ""); err != nil {
				return err
			}
		}
		fmt.Println(result.Message)
		if result.NeedsRebase {
			fmt.Println(uiutils.CliCmd("stackcore restack") + " to bring descendant branches up to date")
		}
		return nil
	},
}

func latestMergedPr(branch string, prs []*dagmodel.ForgePullRequest) *dagmodel.ForgePullRequest {
	var best *dagmodel.ForgePullRequest
	for _, pr := range prs {
		if pr.HeadRefName != branch || pr.State != dagmodel.PrMerged {
			continue
		}
		if best == nil || pr.CreatedAtMs > best.CreatedAtMs {
			best = pr
		}
	}
	return best
}

package main

import (
	"fmt"

	"emperror.dev/errors"
	"github.com/spf13/cobra"

	"github.com/aviator-co/stackcore/internal/gitexec"
	"github.com/aviator-co/stackcore/internal/validate"
)

var squashCmd = &cobra.Command{
	Use:   "squash",
	Short: "Squash the current branch's head commit into its parent",
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

		result := validate.ValidateSquash(&snap, snap.WorkingTreeStatus.CurrentCommitSha, snap.WorkingTreeStatus.IsRebasing)
		if !result.Valid {
			return errors.Errorf("cannot squash: %s (%s)", result.Message, result.Code)
		}

		if _, err := repo.Git(ctx, "reset", "--soft", result.ParentSha); err != nil {
			return errors.WrapIff(err, "failed to reset onto parent commit")
		}
		if _, err := repo.Git(ctx, "commit", "--amend", "--no-edit"); err != nil {
			return errors.WrapIff(err, "failed to amend squashed commit")
		}

		if len(result.DescendantBranches) > 0 {
			fmt.Printf(
				"Squashed. %d descendant branch(es) will need restacking: %v\n",
				len(result.DescendantBranches), result.DescendantBranches,
			)
		} else {
			fmt.Println("Squashed.")
		}
		return nil
	},
}

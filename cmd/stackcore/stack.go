package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aviator-co/stackcore/internal/dagmodel"
	"github.com/aviator-co/stackcore/internal/forgeclient"
	"github.com/aviator-co/stackcore/internal/gitexec"
	"github.com/aviator-co/stackcore/internal/projector"
	"github.com/aviator-co/stackcore/internal/stackrender"
	"github.com/aviator-co/stackcore/internal/watch"
)

var stackFlags struct {
	Watch bool
}

var stackCmd = &cobra.Command{
	Use:   "stack",
	Short: "Show the current stack as a tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if err := printStack(ctx, repo); err != nil {
			return err
		}
		if !stackFlags.Watch {
			return nil
		}

		w, err := watch.New(repo.GitDir())
		if err != nil {
			return err
		}
		defer w.Close()

		for {
			select {
			case <-w.Events:
				fmt.Print("\033[H\033[2J")
				if err := printStack(ctx, repo); err != nil {
					return err
				}
			case err := <-w.Errs():
				return err
			case <-ctx.Done():
				return nil
			}
		}
	},
}

func printStack(ctx context.Context, repo *gitexec.Repo) error {
	snap, err := repo.Snapshot(ctx, gitexec.SnapshotOpts{})
	if err != nil {
		return err
	}

	var forge *dagmodel.GitForgeState
	if client, err := getForgeClient(); err == nil {
		if slug, err := resolveOriginSlug(ctx, repo); err == nil {
			if state, err := client.FetchForgeState(ctx, slug); err == nil {
				forge = &state
			} else {
				logrus.WithError(err).Debug("failed to fetch forge state")
			}
		}
	}

	stacks := projector.Project(&snap, forge)
	if len(stacks) == 0 {
		fmt.Println("No branches found.")
		return nil
	}
	fmt.Println(stackrender.Render(stacks, stackrender.DefaultLabel))
	return nil
}

func init() {
	stackCmd.Flags().BoolVar(&stackFlags.Watch, "watch", false, "re-render the stack tree whenever the repository changes")
}

func resolveOriginSlug(ctx context.Context, repo *gitexec.Repo) (forgeclient.RepoSlug, error) {
	raw, err := repo.Git(ctx, "remote", "get-url", "origin")
	if err != nil {
		return forgeclient.RepoSlug{}, err
	}
	return forgeclient.ParseOriginURL(raw)
}

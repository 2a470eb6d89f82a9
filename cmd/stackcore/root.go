// Command stackcore is the CLI entrypoint: a cobra tree wiring the pure
// core packages to the gitexec/forgeclient/store adapters.
//
// Ported from the teacher's cmd/av/main.go: same persistent --debug/--repo
// flags, same PersistentPreRunE loading config before every subcommand
// runs, same silenced cobra error/usage printing in favor of a
// hand-rendered error.
package main

import (
	"path/filepath"

	"emperror.dev/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aviator-co/stackcore/internal/config"
)

var rootFlags struct {
	Debug     bool
	Directory string
}

var rootCmd = &cobra.Command{
	Use:   "stackcore",
	Short: "A stacked-diffs Git client",

	SilenceErrors: true,
	SilenceUsage:  true,

	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if rootFlags.Debug {
			logrus.SetLevel(logrus.DebugLevel)
			logrus.WithField("version", config.Version).Debug("enabled debug logging")
		}

		var configPaths []string
		if repo, err := openRepo(); err != nil {
			logrus.WithError(err).Debug("unable to open git repository (probably not inside a repo)")
		} else {
			configPaths = append(configPaths, filepath.Join(repo.GitDir(), "stackcore"))
		}

		if _, err := config.Load(configPaths); err != nil {
			return errors.WrapIf(err, "failed to load configuration")
		}
		if err := config.LoadUserState(); err != nil {
			return errors.WrapIf(err, "failed to load user state")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootFlags.Debug, "debug", false, "enable verbose debug logging")
	rootCmd.PersistentFlags().StringVarP(&rootFlags.Directory, "repo", "C", "", "directory to use for the git repository")

	rootCmd.AddCommand(
		stackCmd,
		restackCmd,
		squashCmd,
		shipCmd,
		prCmd,
		versionCmd,
	)
}

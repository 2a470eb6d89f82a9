package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/kr/text"
	"github.com/sirupsen/logrus"

	"github.com/aviator-co/stackcore/internal/config"
	"github.com/aviator-co/stackcore/internal/uiutils"
)

func main() {
	startTime := time.Now()
	err := rootCmd.Execute()
	logrus.WithField("duration", time.Since(startTime)).Debug("command exited")
	checkCliVersion()

	if err != nil {
		if rootFlags.Debug {
			stackTrace := fmt.Sprintf("%+v", err)
			fmt.Fprintf(os.Stderr, "error: %s\n%s\n", err, text.Indent(stackTrace, "\t"))
		} else {
			fmt.Fprint(os.Stderr, uiutils.RenderError(err))
		}
		os.Exit(1)
	}
}

func checkCliVersion() {
	if config.Version == config.VersionDev {
		logrus.Debug("skipping version check (development build)")
		return
	}
	latest, err := config.FetchLatestVersion()
	if err != nil {
		logrus.WithError(err).Debug("failed to determine latest released version")
		return
	}
	if config.IsOutdated(config.Version, latest) {
		c := color.New(color.Faint, color.Bold)
		fmt.Fprint(
			os.Stderr,
			c.Sprint(">> A new version of stackcore is available: "),
			color.RedString(config.Version),
			c.Sprint(" => "),
			color.GreenString(latest),
			"\n",
		)
	}
}

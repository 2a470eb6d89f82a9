package config

import (
	"os"

	"emperror.dev/errors"
	"github.com/spf13/viper"
)

type GitHub struct {
	Token   string
	BaseUrl string
}

// PullRequest holds the defaults applied when stackcore opens a pull
// request on a user's behalf.
type PullRequest struct {
	Draft       bool
	OpenBrowser bool
	// If true, a PR whose base branch changes mid-rebase is converted to a
	// draft first, to avoid re-triggering CODEOWNERS review requests while
	// the PR sits in a transient state.
	RebaseWithDraft *bool
}

// Ship holds defaults for the ship-it workflow's post-merge navigation
// (§4.14).
type Ship struct {
	DeleteBranchOnMerge bool
}

var StackCore = struct {
	PullRequest PullRequest
	GitHub      GitHub
	Ship        Ship
}{
	PullRequest: PullRequest{
		OpenBrowser: true,
	},
	GitHub: GitHub{
		BaseUrl: "https://github.com",
	},
	Ship: Ship{
		DeleteBranchOnMerge: true,
	},
}

// Load initializes the configuration values. It may optionally be called
// with a list of additional paths to check for the config file. Returns
// whether a config file was found and an error if one occurred.
func Load(paths []string) (bool, error) {
	loaded, err := loadFromFile(paths)
	loadFromEnv()
	return loaded, err
}

func loadFromFile(paths []string) (bool, error) {
	v := viper.New()
	v.SetConfigName("config")

	v.AddConfigPath("$XDG_CONFIG_HOME/stackcore")
	v.AddConfigPath("$HOME/.config/stackcore")
	v.AddConfigPath("$HOME/.stackcore")
	v.AddConfigPath("$STACKCORE_HOME")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		if errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return false, nil
		}
		return false, err
	}

	if err := v.Unmarshal(&StackCore); err != nil {
		return true, errors.Wrap(err, "failed to read stackcore config")
	}

	return true, nil
}

func loadFromEnv() {
	if token := os.Getenv("STACKCORE_GITHUB_TOKEN"); token != "" {
		StackCore.GitHub.Token = token
	} else if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		StackCore.GitHub.Token = token
	}
}

package main

import (
	"bytes"
	"os"
	"os/exec"
	"strings"

	"github.com/aviator-co/stackcore/internal/config"
	"github.com/aviator-co/stackcore/internal/forgeclient"
	"github.com/aviator-co/stackcore/internal/gitexec"
	"github.com/aviator-co/stackcore/internal/store"
)

func openRepo() (*gitexec.Repo, error) {
	dir := rootFlags.Directory
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, err
		}
	}
	return gitexec.Open(dir)
}

func openStore(repo *gitexec.Repo) (*store.DB, error) {
	return store.Open(store.RepoPath(repo.GitDir()))
}

// getForgeClient builds a forgeclient.Client from the configured GitHub
// token, falling back to the `gh` CLI's cached credential, matching the
// teacher's discoverGitHubAPIToken.
func getForgeClient() (*forgeclient.Client, error) {
	return forgeclient.NewClient(discoverGitHubToken())
}

func discoverGitHubToken() string {
	if config.StackCore.GitHub.Token != "" {
		return config.StackCore.GitHub.Token
	}
	ghCli, err := exec.LookPath("gh")
	if err != nil {
		return ""
	}
	var stdout bytes.Buffer
	cmd := exec.Command(ghCli, "auth", "token")
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return ""
	}
	return strings.TrimSpace(stdout.String())
}

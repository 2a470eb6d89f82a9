package config

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/mod/semver"
)

const VersionDev = "<dev>"

// Version is the running binary's version; set automatically on release
// builds.
var Version = VersionDev

// FetchLatestVersion returns the latest released version tag, caching the
// result in $HOME/.cache/stackcore for a day.
func FetchLatestVersion() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	cacheDir := filepath.Join(home, ".cache", "stackcore")
	if err := os.MkdirAll(cacheDir, os.ModePerm); err != nil {
		return "", err
	}
	cacheFile := filepath.Join(cacheDir, "version-check")
	stat, _ := os.Stat(cacheFile)

	if stat != nil && time.Since(stat.ModTime()) <= 24*time.Hour {
		data, err := os.ReadFile(cacheFile)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(
		ctx,
		"GET",
		"https://api.github.com/repos/aviator-co/stackcore/releases/latest",
		nil,
	)
	if err != nil {
		return "", err
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	var data struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
		return "", err
	}

	if err := os.WriteFile(cacheFile, []byte(data.Name), os.ModePerm); err != nil {
		return "", err
	}

	return data.Name, nil
}

// IsOutdated reports whether Version is older than latest, using semantic
// version ordering. Returns false for an unparsable or dev version rather
// than guessing.
func IsOutdated(version, latest string) bool {
	if version == VersionDev || !semver.IsValid(version) || !semver.IsValid(latest) {
		return false
	}
	return semver.Compare(version, latest) < 0
}

// Package watch notifies the orchestrator that a repository's on-disk state
// may have changed (a ref moved, a file in .git was touched), so it can
// re-run the Git executor's snapshot and the projector with fresh data.
//
// Uses github.com/fsnotify/fsnotify, already in the teacher's dependency
// graph indirectly via viper's config-file watching; promoted to a direct
// dependency here since this package exercises it on the repository's .git
// directory instead.
package watch

import (
	"path/filepath"

	"emperror.dev/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watcher signals on Events whenever a ref or index file changes under a
// repository's .git directory.
type Watcher struct {
	fsw    *fsnotify.Watcher
	Events chan struct{}
	errs   chan error
}

// watchedSubdirs are the .git-relative paths whose changes matter to the
// core: ref updates, the index (working-tree changes), and rebase-in-
// progress markers.
var watchedSubdirs = []string{
	"refs/heads",
	"refs/remotes",
	".",
}

// New starts watching gitDir (a repository's .git directory) for changes
// relevant to the stack's state: ref updates, HEAD changes, the index, and
// rebase-progress markers.
func New(gitDir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapIff(err, "failed to create filesystem watcher")
	}

	w := &Watcher{
		fsw:    fsw,
		Events: make(chan struct{}, 1),
		errs:   make(chan error, 1),
	}

	for _, sub := range watchedSubdirs {
		dir := filepath.Join(gitDir, sub)
		if err := fsw.Add(dir); err != nil {
			logrus.WithError(err).WithField("dir", dir).
				Debug("failed to watch directory, it may not exist yet")
			continue
		}
	}

	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !isRelevant(event) {
				continue
			}
			select {
			case w.Events <- struct{}{}:
			default:
				// A notification is already pending; the orchestrator will
				// pick up the latest state on its next snapshot regardless.
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

func isRelevant(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// Errs returns the channel carrying watch errors (e.g. a watched directory
// was removed).
func (w *Watcher) Errs() <-chan error { return w.errs }

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

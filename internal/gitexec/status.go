package gitexec

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aviator-co/stackcore/internal/dagmodel"
)

var (
	patternBranchOID        = regexp.MustCompile(`# branch\.oid ([0-9a-f]+)`)
	patternBranchOIDInitial = regexp.MustCompile(`# branch\.oid \(initial\)`)
	patternBranchHead       = regexp.MustCompile(`# branch\.head (.+)`)
	patternFile1            = regexp.MustCompile(`1 (..) .... ...... ...... ...... [0-9a-f]+ [0-9a-f]+ (.+)`)
	patternFile2            = regexp.MustCompile(`2 (..) .... ...... ...... ...... [0-9a-f]+ [0-9a-f]+ .+ (.+)\t.+`)
	patternFileUnmerged     = regexp.MustCompile(`u .. .... ...... ...... ...... .... [0-9a-f]+ [0-9a-f]+ [0-9a-f]+ (.+)`)
)

// Status runs `git status --porcelain=v2` and parses it into a
// dagmodel.WorkingTreeStatus, same format the teacher's git.Status parses.
func (r *Repo) Status(ctx context.Context) (dagmodel.WorkingTreeStatus, error) {
	body, err := r.Git(ctx, "status", "--porcelain=v2", "--branch")
	if err != nil {
		return dagmodel.WorkingTreeStatus{}, err
	}
	st := dagmodel.WorkingTreeStatus{Detached: true}
	for _, line := range strings.Split(body, "\n") {
		parseStatusLine(line, &st)
	}
	st.IsRebasing = r.isRebasing()
	return st, nil
}

func (r *Repo) isRebasing() bool {
	for _, f := range []string{"rebase-merge", "rebase-apply"} {
		if _, err := os.Stat(filepath.Join(r.gitDir, f)); err == nil {
			return true
		}
	}
	return false
}

func parseStatusLine(line string, st *dagmodel.WorkingTreeStatus) {
	switch {
	case patternBranchOID.MatchString(line):
		st.CurrentCommitSha = patternBranchOID.FindStringSubmatch(line)[1]
	case patternBranchOIDInitial.MatchString(line):
		st.CurrentCommitSha = ""
	case patternBranchHead.MatchString(line):
		head := patternBranchHead.FindStringSubmatch(line)[1]
		if head == "(detached)" {
			st.Detached = true
			st.CurrentBranch = ""
		} else {
			st.Detached = false
			st.CurrentBranch = head
		}
	default:
		if m := patternFile1.FindStringSubmatch(line); len(m) > 0 {
			addChangedPath(st, m[1], m[2])
			return
		}
		if m := patternFile2.FindStringSubmatch(line); len(m) > 0 {
			addChangedPath(st, m[1], m[2])
			return
		}
		if m := patternFileUnmerged.FindStringSubmatch(line); len(m) > 0 {
			st.Conflicted = append(st.Conflicted, m[1])
			return
		}
		if strings.HasPrefix(line, "? ") {
			st.NotAdded = append(st.NotAdded, strings.TrimPrefix(line, "? "))
		}
	}
}

func addChangedPath(st *dagmodel.WorkingTreeStatus, xy, path string) {
	if xy[0] != '.' {
		st.Staged = append(st.Staged, path)
	}
	if xy[1] != '.' {
		st.Modified = append(st.Modified, path)
	}
}

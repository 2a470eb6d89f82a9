// Package forgejoin implements the read-only forge join helpers of §4.13:
// pure lookups over a GitForgeState snapshot, with no network or caching of
// their own. The forge client (internal/forgeclient) is the only thing that
// talks to a real forge; this package only reasons about the snapshot it
// hands back.
//
// Grounded on the teacher's gh.PullRequest matching in actions.GetCurrentStack
// (locating a branch's open PR) and stacks.BranchInfo.MergedIntoParent (the
// closed-vs-merged branch-name-fallback logic reused here as IsMerged).
package forgejoin

import "github.com/aviator-co/stackcore/internal/dagmodel"

// FindOpenPr returns the first PR whose head is branch and whose state is
// open.
func FindOpenPr(branch string, prs []*dagmodel.ForgePullRequest) *dagmodel.ForgePullRequest {
	for _, pr := range prs {
		if pr.HeadRefName == branch && pr.State == dagmodel.PrOpen {
			return pr
		}
	}
	return nil
}

// FindActivePr returns the first PR whose head is branch and whose state is
// open or draft.
func FindActivePr(branch string, prs []*dagmodel.ForgePullRequest) *dagmodel.ForgePullRequest {
	for _, pr := range prs {
		if pr.HeadRefName == branch && isActive(pr) {
			return pr
		}
	}
	return nil
}

func isActive(pr *dagmodel.ForgePullRequest) bool {
	return pr.State == dagmodel.PrOpen || pr.State == dagmodel.PrDraft
}

// HasChildPrs reports whether any PR is based on branch and still active.
func HasChildPrs(branch string, prs []*dagmodel.ForgePullRequest) bool {
	for _, pr := range prs {
		if pr.BaseRefName == branch && isActive(pr) {
			return true
		}
	}
	return false
}

// HasMergedPr reports whether branch has at least one merged PR.
func HasMergedPr(branch string, prs []*dagmodel.ForgePullRequest) bool {
	for _, pr := range prs {
		if pr.HeadRefName == branch && pr.State == dagmodel.PrMerged {
			return true
		}
	}
	return false
}

// CountOpenPrs counts branch's PRs in the open state.
func CountOpenPrs(branch string, prs []*dagmodel.ForgePullRequest) int {
	n := 0
	for _, pr := range prs {
		if pr.HeadRefName == branch && pr.State == dagmodel.PrOpen {
			n++
		}
	}
	return n
}

// CanRecreatePr reports whether branch has at least one PR, none of them
// active, so a fresh PR may be opened without colliding with a live one.
func CanRecreatePr(branch string, prs []*dagmodel.ForgePullRequest) bool {
	n := 0
	for _, pr := range prs {
		if pr.HeadRefName != branch {
			continue
		}
		if isActive(pr) {
			return false
		}
		n++
	}
	return n > 0
}

// prPriority ranks PR states for FindBestPr: open beats draft beats merged
// beats closed.
func prPriority(pr *dagmodel.ForgePullRequest) int {
	switch pr.State {
	case dagmodel.PrOpen:
		return 3
	case dagmodel.PrDraft:
		return 2
	case dagmodel.PrMerged:
		return 1
	default:
		return 0
	}
}

// FindBestPr picks the PR most relevant to branch: highest state priority
// (open > draft > merged > closed), newest CreatedAtMs breaking ties within
// a state. A missing or non-positive CreatedAtMs is treated as oldest, never
// panics, and never excludes a PR from consideration. Returns nil if branch
// has no PRs at all.
func FindBestPr(branch string, prs []*dagmodel.ForgePullRequest) *dagmodel.ForgePullRequest {
	var best *dagmodel.ForgePullRequest
	for _, pr := range prs {
		if pr == nil || pr.HeadRefName != branch {
			continue
		}
		if best == nil {
			best = pr
			continue
		}
		switch {
		case prPriority(pr) > prPriority(best):
			best = pr
		case prPriority(pr) == prPriority(best) && pr.CreatedAtMs > best.CreatedAtMs:
			best = pr
		}
	}
	return best
}

// HasStaleTarget reports whether pr's base branch has already been merged,
// per mergedBranchNames.
func HasStaleTarget(pr *dagmodel.ForgePullRequest, mergedBranchNames map[string]bool) bool {
	if pr == nil || pr.BaseRefName == "" {
		return false
	}
	return mergedBranchNames[pr.BaseRefName]
}

// IsMerged reports whether branch counts as merged: its best PR is in the
// merged state outright; if its best PR is closed (not merged), or it has no
// PR at all, fall back to the forge's mergedBranchNames set (a branch can be
// known-merged without carrying a PR record, e.g. after a squash-merge that
// deleted the PR's branch).
func IsMerged(branch string, prs []*dagmodel.ForgePullRequest, mergedBranchNames map[string]bool) bool {
	best := FindBestPr(branch, prs)
	switch {
	case best != nil && best.State == dagmodel.PrMerged:
		return true
	case best != nil && best.State == dagmodel.PrClosed:
		return mergedBranchNames[branch]
	default:
		return mergedBranchNames[branch]
	}
}

// Package trunk implements TrunkResolver (§4.1): selecting the repository's
// trunk branch and its head SHA under local/remote ambiguity.
//
// Grounded on the teacher's treedetector.getTrunkCommits (local vs.
// remote-tracking trunk commit collection) and meta.Branch's Parent.Trunk
// convention for what counts as "trunk".
package trunk

import "github.com/aviator-co/stackcore/internal/dagmodel"

// canonicalNames is the canonical trunk name set from the glossary:
// "one of {main, master, develop, trunk}".
var canonicalNames = map[string]bool{
	"main":    true,
	"master":  true,
	"develop": true,
	"trunk":   true,
}

// localName strips the first slash-segment of a ref iff the branch is
// remote, so "origin/main" and "main" both resolve to "main".
func localName(b *dagmodel.Branch) string {
	if !b.IsRemote {
		return b.Ref
	}
	idx := -1
	for i, c := range b.Ref {
		if c == '/' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return b.Ref
	}
	return b.Ref[idx+1:]
}

func lower(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c >= 'A' && c <= 'Z' {
			out[i] = c + ('a' - 'A')
		}
	}
	return string(out)
}

// IsCanonicalTrunk reports whether the branch's local name (after stripping
// any remote prefix) is in the canonical trunk-name set, case-insensitively.
func IsCanonicalTrunk(b *dagmodel.Branch) bool {
	return canonicalNames[lower(localName(b))]
}

// SelectTrunk picks a single trunk branch following the documented
// precedence order: local trunk flag, any trunk flag, local canonical name,
// any canonical name, else the first branch. Returns nil if branches is
// empty.
func SelectTrunk(branches []*dagmodel.Branch) *dagmodel.Branch {
	if len(branches) == 0 {
		return nil
	}

	for _, b := range branches {
		if b.IsTrunk && !b.IsRemote {
			return b
		}
	}
	for _, b := range branches {
		if b.IsTrunk {
			return b
		}
	}
	for _, b := range branches {
		if !b.IsRemote && IsCanonicalTrunk(b) {
			return b
		}
	}
	for _, b := range branches {
		if IsCanonicalTrunk(b) {
			return b
		}
	}
	return branches[0]
}

// GetTrunkHeadSha resolves the trunk head SHA to use for this derivation.
// When both a local and a remote trunk branch exist and commit timestamps
// are available for both heads, the later timestamp wins (resolving the
// offline-vs-post-ship ambiguity per §4.1); otherwise the remote head is
// preferred, then the local head. Returns "" when no trunk exists
// (degraded mode; callers must not crash).
func GetTrunkHeadSha(branches []*dagmodel.Branch, commits dagmodel.CommitMap) string {
	var local, remote *dagmodel.Branch
	for _, b := range branches {
		if !IsCanonicalTrunk(b) && !b.IsTrunk {
			continue
		}
		if b.IsRemote {
			if remote == nil {
				remote = b
			}
		} else {
			if local == nil {
				local = b
			}
		}
	}

	switch {
	case local != nil && remote != nil:
		lc, lok := commits[local.HeadSha]
		rc, rok := commits[remote.HeadSha]
		if lok && rok {
			if rc.TimeMs > lc.TimeMs {
				return remote.HeadSha
			}
			return local.HeadSha
		}
		return remote.HeadSha
	case remote != nil:
		return remote.HeadSha
	case local != nil:
		return local.HeadSha
	default:
		return ""
	}
}

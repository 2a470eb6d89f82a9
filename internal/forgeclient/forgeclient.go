// Package forgeclient is the forge client: the only package that talks to
// GitHub. It queries pull requests over the GraphQL API and assembles the
// read-only dagmodel.GitForgeState the core's ForgeJoin (§4.13) and
// ShipItNavigator (§4.14) reason about.
//
// Ported from the teacher's internal/gh: same githubv4/graphql/oauth2
// transport, same query-with-debug-logging wrapper.
package forgeclient

import (
	"context"
	"time"

	"emperror.dev/errors"
	giturls "github.com/chainguard-dev/git-urls"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/aviator-co/stackcore/internal/dagmodel"
)

// Client queries a GitHub repository's pull requests over GraphQL.
type Client struct {
	gh *githubv4.Client
}

// NewClient builds a Client authenticated with an OAuth2 static token
// source, matching the teacher's gh.NewClient.
func NewClient(token string) (*Client, error) {
	if token == "" {
		return nil, errors.Errorf("no GitHub token provided (do you need to configure one?)")
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), src)
	return &Client{gh: githubv4.NewClient(httpClient)}, nil
}

// RepoSlug is the owner/name pair a forge client operates against.
type RepoSlug struct {
	Owner string
	Name  string
}

// ParseOriginURL extracts a RepoSlug from a repository's "origin" remote
// URL, ported from the teacher's git.Origin/RepoSlug logic.
func ParseOriginURL(raw string) (RepoSlug, error) {
	u, err := giturls.Parse(raw)
	if err != nil {
		return RepoSlug{}, errors.WrapIff(err, "failed to parse origin url %q", raw)
	}
	path := u.Path
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	for len(path) > 4 && path[len(path)-4:] == ".git" {
		path = path[:len(path)-4]
	}
	idx := -1
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return RepoSlug{}, errors.Errorf("failed to parse owner/repo from origin url %q", raw)
	}
	return RepoSlug{Owner: path[:idx], Name: path[idx+1:]}, nil
}

func (c *Client) query(ctx context.Context, query any, variables map[string]any) error {
	start := time.Now()
	err := c.gh.Query(ctx, query, variables)
	log := logrus.WithField("elapsed", time.Since(start))
	if err != nil {
		log.WithError(err).Debug("GitHub API query failed")
	} else {
		log.Debug("GitHub API query succeeded")
	}
	return err
}

type pullRequestNode struct {
	Number      int64
	HeadRefName string
	BaseRefName string
	IsDraft     bool
	Mergeable   githubv4.MergeableState
	State       githubv4.PullRequestState
	CreatedAt   githubv4.DateTime
}

func (n pullRequestNode) toDomain() *dagmodel.ForgePullRequest {
	return &dagmodel.ForgePullRequest{
		Number:      n.Number,
		HeadRefName: n.HeadRefName,
		BaseRefName: n.BaseRefName,
		State:       toDomainState(n),
		Mergeable:   n.Mergeable == githubv4.MergeableStateMergeable,
		CreatedAtMs: n.CreatedAt.UnixMilli(),
	}
}

func toDomainState(n pullRequestNode) dagmodel.PrState {
	switch n.State {
	case githubv4.PullRequestStateMerged:
		return dagmodel.PrMerged
	case githubv4.PullRequestStateClosed:
		return dagmodel.PrClosed
	default:
		if n.IsDraft {
			return dagmodel.PrDraft
		}
		return dagmodel.PrOpen
	}
}

// FetchForgeState queries every pull request in the repository and returns
// the GitForgeState the core consumes. mergedBranchNames is computed from
// the same query (a branch whose only matching PR record is missing or
// closed is not inferred merged here — that inference belongs to the core's
// ForgeJoin.IsMerged, which consults the PR records and this same
// mergedBranchNames set).
func (c *Client) FetchForgeState(ctx context.Context, repo RepoSlug) (dagmodel.GitForgeState, error) {
	var all []*dagmodel.ForgePullRequest
	after := ""
	for {
		var query struct {
			Repository struct {
				PullRequests struct {
					Nodes    []pullRequestNode
					PageInfo struct {
						EndCursor   string
						HasNextPage bool
					}
				} `graphql:"pullRequests(states: [OPEN, CLOSED, MERGED], first: 100, after: $after)"`
			} `graphql:"repository(owner: $owner, name: $name)"`
		}
		vars := map[string]any{
			"owner": githubv4.String(repo.Owner),
			"name":  githubv4.String(repo.Name),
			"after": (*githubv4.String)(nil),
		}
		if after != "" {
			vars["after"] = githubv4.String(after)
		}
		if err := c.query(ctx, &query, vars); err != nil {
			return dagmodel.GitForgeState{}, errors.WrapIff(err, "failed to query pull requests for %s/%s", repo.Owner, repo.Name)
		}
		for _, n := range query.Repository.PullRequests.Nodes {
			all = append(all, n.toDomain())
		}
		if !query.Repository.PullRequests.PageInfo.HasNextPage {
			break
		}
		after = query.Repository.PullRequests.PageInfo.EndCursor
	}

	merged := map[string]bool{}
	for _, pr := range all {
		if pr.State == dagmodel.PrMerged {
			merged[pr.HeadRefName] = true
		}
	}
	return dagmodel.GitForgeState{PullRequests: all, MergedBranchNames: merged}, nil
}

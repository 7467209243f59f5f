// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/oss-contrib/leaderboard/internal/domain"
)

// configIssueLabel marks the open issue whose body carries the remote config.
const configIssueLabel = "leaderboard-config"

// orgRepoPageSize bounds the number of repositories listed per organization.
const orgRepoPageSize = 100

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	// ConfigIssueBody returns the body of the repository's open config
	// issue, or "" when no such issue exists.
	ConfigIssueBody(ctx context.Context, owner, name string) (string, error)
	// OrgRepos lists the first page of an organization's repositories,
	// most recently updated first, excluding archived ones.
	OrgRepos(ctx context.Context, org string) ([]domain.RepoRef, error)
	// RepoContributions returns the most recent pull request and issue
	// activity of one repository as contribution events.
	RepoContributions(ctx context.Context, repo domain.RepoRef) ([]domain.ContributionEvent, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

// configIssueQuery looks up the single open issue carrying the config label.
type configIssueQuery struct {
	Repository struct {
		Issues struct {
			Nodes []struct {
				Body string
			}
		} `graphql:"issues(first: 1, labels: $labels, states: OPEN)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// repoContributionsQuery fetches one page each of recent pull requests and issues.
type repoContributionsQuery struct {
	Repository struct {
		PullRequests struct {
			Nodes []struct {
				State     githubv4.PullRequestState
				CreatedAt githubv4.DateTime
				Author    struct {
					Login     string
					AvatarURL string `graphql:"avatarUrl"`
				}
			}
		} `graphql:"pullRequests(first: 100, states: [MERGED, OPEN], orderBy: {field: CREATED_AT, direction: DESC})"`
		Issues struct {
			Nodes []struct {
				CreatedAt githubv4.DateTime
				Author    struct {
					Login     string
					AvatarURL string `graphql:"avatarUrl"`
				}
			}
		} `graphql:"issues(first: 100, states: [OPEN, CLOSED], orderBy: {field: CREATED_AT, direction: DESC})"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, logger *log.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

func (g *GitHubGateway) ConfigIssueBody(ctx context.Context, owner, name string) (string, error) {
	g.logger.Printf("Checking for a configuration issue in %s/%s...", owner, name)
	variables := map[string]interface{}{
		"owner":  githubv4.String(owner),
		"name":   githubv4.String(name),
		"labels": []githubv4.String{configIssueLabel},
	}
	var q configIssueQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return "", fmt.Errorf("failed to query config issue in %s/%s: %w", owner, name, err)
	}
	if len(q.Repository.Issues.Nodes) == 0 {
		return "", nil
	}
	return q.Repository.Issues.Nodes[0].Body, nil
}

func (g *GitHubGateway) OrgRepos(ctx context.Context, org string) ([]domain.RepoRef, error) {
	g.logger.Printf("Fetching repositories for org %s...", org)
	opts := &github.RepositoryListByOrgOptions{
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: orgRepoPageSize},
	}
	// Only the first page is read; very large organizations are truncated.
	repos, _, err := g.restClient.Repositories.ListByOrg(ctx, org, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories for org %s: %w", org, err)
	}
	refs := make([]domain.RepoRef, 0, len(repos))
	for _, r := range repos {
		if r.GetArchived() {
			continue
		}
		refs = append(refs, domain.RepoRef{Owner: r.GetOwner().GetLogin(), Name: r.GetName()})
	}
	g.logger.Printf("Org %s contributed %d repositories.", org, len(refs))
	return refs, nil
}

func (g *GitHubGateway) RepoContributions(ctx context.Context, repo domain.RepoRef) ([]domain.ContributionEvent, error) {
	g.logger.Printf("Fetching contributions for %s...", repo)
	variables := map[string]interface{}{
		"owner": githubv4.String(repo.Owner),
		"name":  githubv4.String(repo.Name),
	}
	var q repoContributionsQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to fetch contributions for %s: %w", repo, err)
	}

	prs := q.Repository.PullRequests.Nodes
	issues := q.Repository.Issues.Nodes
	events := make([]domain.ContributionEvent, 0, len(prs)+len(issues))
	for _, pr := range prs {
		if pr.Author.Login == "" {
			continue // author deleted; nothing to attribute
		}
		kind := domain.KindOpenPR
		if pr.State == githubv4.PullRequestStateMerged {
			kind = domain.KindMergedPR
		}
		events = append(events, domain.ContributionEvent{
			Login:     pr.Author.Login,
			AvatarURL: pr.Author.AvatarURL,
			CreatedAt: pr.CreatedAt.Time,
			Kind:      kind,
		})
	}
	for _, issue := range issues {
		if issue.Author.Login == "" {
			continue
		}
		events = append(events, domain.ContributionEvent{
			Login:     issue.Author.Login,
			AvatarURL: issue.Author.AvatarURL,
			CreatedAt: issue.CreatedAt.Time,
			Kind:      domain.KindIssue,
		})
	}
	g.logger.Printf("Completed fetching contributions for %s (%d events).", repo, len(events))
	return events, nil
}

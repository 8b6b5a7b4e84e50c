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
	"github.com/naka-gawa/github-report/internal/domain"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
)

// Fetcher defines the behavior of a gateway for fetching repository records from GitHub.
type Fetcher interface {
	FetchRepository(ctx context.Context, owner, name string) (domain.Record, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

// repositoryQuery fetches every dataset column except the contributor count,
// which GraphQL does not expose.
type repositoryQuery struct {
	Repository struct {
		NameWithOwner  string
		StargazerCount int
		ForkCount      int
		Issues         struct {
			TotalCount int
		}
		PullRequests struct {
			TotalCount int
		}
		PrimaryLanguage *struct {
			Name string
		}
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// An empty token yields an unauthenticated client with GitHub's lower rate limits.
func NewGitHubGateway(token string, logger *log.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	var transport http.RoundTripper = rateLimitWaiter
	if token != "" {
		transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		}
	}
	httpClient := &http.Client{Transport: transport}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

// FetchRepository builds one dataset record for owner/name.
func (g *GitHubGateway) FetchRepository(ctx context.Context, owner, name string) (domain.Record, error) {
	g.logger.Printf("Fetching repository %s/%s...", owner, name)
	var q repositoryQuery
	variables := map[string]interface{}{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(name),
	}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return domain.Record{}, fmt.Errorf("failed to execute GraphQL query for %s/%s: %w", owner, name, err)
	}

	contributors, err := g.countContributors(ctx, owner, name)
	if err != nil {
		return domain.Record{}, err
	}

	repo := q.Repository
	rec := domain.Record{
		Name:         repo.NameWithOwner,
		Stars:        repo.StargazerCount,
		Forks:        repo.ForkCount,
		Issues:       repo.Issues.TotalCount,
		PullRequests: repo.PullRequests.TotalCount,
		Contributors: contributors,
	}
	if rec.Name == "" {
		rec.Name = owner + "/" + name
	}
	if repo.PrimaryLanguage != nil {
		rec.Language = repo.PrimaryLanguage.Name
	}
	g.logger.Printf("Completed fetching repository %s.", rec.Name)
	return rec, nil
}

// countContributors requests one contributor per page; the last page number
// is then the contributor count.
func (g *GitHubGateway) countContributors(ctx context.Context, owner, name string) (int, error) {
	opts := &github.ListContributorsOptions{Anon: "true", ListOptions: github.ListOptions{PerPage: 1}}
	contributors, resp, err := g.restClient.Repositories.ListContributors(ctx, owner, name, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to list contributors with REST API: %w", err)
	}
	if resp.LastPage > 0 {
		return resp.LastPage, nil
	}
	return len(contributors), nil
}

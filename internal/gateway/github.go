// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying GraphQL client.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/naka-gawa/readme-stats/internal/domain"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// APIVersion is sent with every request in the X-GitHub-Api-Version header.
const APIVersion = "2022-11-28"

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	FetchCounts(ctx context.Context, login string) (domain.RepositoryCounts, domain.ContributionSummary, error)
	FetchRepositories(ctx context.Context, login string, partitions []domain.Partition) (map[domain.Partition][]domain.RepositoryRecord, error)
}

// Options tunes the query shapes.
type Options struct {
	PageSize    int
	LanguageCap int
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	graphqlClient *githubv4.Client
	opts          Options
	logger        *zap.Logger
}

// countQuery fetches the unpaginated totals in a single round trip.
type countQuery struct {
	User struct {
		Login string
		Owned struct {
			TotalCount int
		} `graphql:"owned: repositories(ownerAffiliations: OWNER)"`
		Org struct {
			TotalCount int
		} `graphql:"org: repositories(ownerAffiliations: ORGANIZATION_MEMBER)"`
		Organizations struct {
			TotalCount int
		}
		Followers struct {
			TotalCount int
		}
		ContributionsCollection struct {
			TotalCommitContributions            int
			TotalIssueContributions             int
			TotalPullRequestContributions       int
			TotalPullRequestReviewContributions int
			RestrictedContributionsCount        int
		}
	} `graphql:"user(login: $login)"`
}

// repositoryNode is the per-repository projection shared by every partition.
type repositoryNode struct {
	ID             githubv4.ID
	Name           string
	NameWithOwner  string
	StargazerCount int
	ForkCount      int
	IsPrivate      bool
	IsFork         bool
	PullRequests   struct {
		TotalCount int
	}
	DefaultBranchRef *struct {
		Target struct {
			Commit struct {
				History struct {
					TotalCount int
				}
			} `graphql:"... on Commit"`
		}
	}
	Languages struct {
		TotalCount int
		Edges      []struct {
			Size int
			Node struct {
				Name string
			}
		}
	} `graphql:"languages(first: $languageCap, orderBy: {field: SIZE, direction: DESC})"`
}

type repositoryPage struct {
	Nodes []repositoryNode
}

// partitionQuery fetches up to $pageSize repositories per partition in a single round trip.
// Partitions that were not requested are skipped server side.
type partitionQuery struct {
	User struct {
		OwnedPublic  repositoryPage `graphql:"ownedPublic: repositories(first: $pageSize, ownerAffiliations: OWNER, privacy: PUBLIC) @include(if: $withOwnedPublic)"`
		OwnedPrivate repositoryPage `graphql:"ownedPrivate: repositories(first: $pageSize, ownerAffiliations: OWNER, privacy: PRIVATE) @include(if: $withOwnedPrivate)"`
		OrgPublic    repositoryPage `graphql:"orgPublic: repositories(first: $pageSize, ownerAffiliations: ORGANIZATION_MEMBER, privacy: PUBLIC) @include(if: $withOrgPublic)"`
		OrgPrivate   repositoryPage `graphql:"orgPrivate: repositories(first: $pageSize, ownerAffiliations: ORGANIZATION_MEMBER, privacy: PRIVATE) @include(if: $withOrgPrivate)"`
	} `graphql:"user(login: $login)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// An empty endpoint targets github.com.
func NewGitHubGateway(httpClient *http.Client, endpoint string, opts Options, logger *zap.Logger) *GitHubGateway {
	var client *githubv4.Client
	if endpoint == "" {
		client = githubv4.NewClient(httpClient)
	} else {
		client = githubv4.NewEnterpriseClient(endpoint, httpClient)
	}
	return &GitHubGateway{
		graphqlClient: client,
		opts:          opts,
		logger:        logger,
	}
}

// NewHTTPClient builds the authenticated client shared by the GraphQL and REST gateways.
func NewHTTPClient(token string) (*http.Client, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &http.Client{
		Transport: &oauth2.Transport{
			Base:   &versionTransport{base: rateLimitWaiter},
			Source: ts,
		},
	}, nil
}

// versionTransport pins the API version on outgoing requests.
type versionTransport struct {
	base http.RoundTripper
}

func (t *versionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("X-GitHub-Api-Version", APIVersion)
	return t.base.RoundTrip(req)
}

func (g *GitHubGateway) FetchCounts(ctx context.Context, login string) (domain.RepositoryCounts, domain.ContributionSummary, error) {
	g.logger.Debug("fetching repository counts", zap.String("login", login))
	var q countQuery
	variables := map[string]interface{}{"login": githubv4.String(login)}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return domain.RepositoryCounts{}, domain.ContributionSummary{}, fmt.Errorf("failed to execute GraphQL query for counts: %w", err)
	}

	u := q.User
	counts := domain.RepositoryCounts{
		Owned: u.Owned.TotalCount,
		Org:   u.Org.TotalCount,
	}
	summary := domain.ContributionSummary{
		Commits:       u.ContributionsCollection.TotalCommitContributions,
		Issues:        u.ContributionsCollection.TotalIssueContributions,
		PullRequests:  u.ContributionsCollection.TotalPullRequestContributions,
		Reviews:       u.ContributionsCollection.TotalPullRequestReviewContributions,
		Restricted:    u.ContributionsCollection.RestrictedContributionsCount,
		Followers:     u.Followers.TotalCount,
		Organizations: u.Organizations.TotalCount,
	}
	g.logger.Debug("completed fetching repository counts",
		zap.Int("owned", counts.Owned), zap.Int("org", counts.Org))
	return counts, summary, nil
}

func (g *GitHubGateway) FetchRepositories(ctx context.Context, login string, partitions []domain.Partition) (map[domain.Partition][]domain.RepositoryRecord, error) {
	want := make(map[domain.Partition]bool, len(partitions))
	for _, p := range partitions {
		want[p] = true
	}
	g.logger.Debug("fetching repositories",
		zap.String("login", login), zap.Int("page_size", g.opts.PageSize), zap.Stringers("partitions", partitions))

	variables := map[string]interface{}{
		"login":            githubv4.String(login),
		"pageSize":         githubv4.Int(g.opts.PageSize),
		"languageCap":      githubv4.Int(g.opts.LanguageCap),
		"withOwnedPublic":  githubv4.Boolean(want[domain.OwnedPublic]),
		"withOwnedPrivate": githubv4.Boolean(want[domain.OwnedPrivate]),
		"withOrgPublic":    githubv4.Boolean(want[domain.OrgPublic]),
		"withOrgPrivate":   githubv4.Boolean(want[domain.OrgPrivate]),
	}
	var q partitionQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL query for repositories: %w", err)
	}

	pages := map[domain.Partition]repositoryPage{
		domain.OwnedPublic:  q.User.OwnedPublic,
		domain.OwnedPrivate: q.User.OwnedPrivate,
		domain.OrgPublic:    q.User.OrgPublic,
		domain.OrgPrivate:   q.User.OrgPrivate,
	}
	result := make(map[domain.Partition][]domain.RepositoryRecord, len(want))
	for _, p := range domain.AllPartitions {
		if !want[p] {
			continue
		}
		nodes := pages[p].Nodes
		records := make([]domain.RepositoryRecord, 0, len(nodes))
		for _, n := range nodes {
			records = append(records, n.toRecord(p))
		}
		result[p] = records
	}
	g.logger.Debug("completed fetching repositories")
	return result, nil
}

func nodeID(id githubv4.ID) string {
	if id == nil {
		return ""
	}
	return fmt.Sprint(id)
}

func (n repositoryNode) toRecord(p domain.Partition) domain.RepositoryRecord {
	r := domain.RepositoryRecord{
		ID:            nodeID(n.ID),
		Name:          n.Name,
		NameWithOwner: n.NameWithOwner,
		Stars:         n.StargazerCount,
		Forks:         n.ForkCount,
		IsPrivate:     n.IsPrivate,
		IsFork:        n.IsFork,
		PullRequests:  n.PullRequests.TotalCount,
		LanguageCount: n.Languages.TotalCount,
		Languages:     make([]domain.Language, 0, len(n.Languages.Edges)),
		Partition:     p,
	}
	// A missing default branch, or one that does not point at a commit, counts as zero.
	if n.DefaultBranchRef != nil {
		r.HasDefaultBranch = true
		r.Commits = n.DefaultBranchRef.Target.Commit.History.TotalCount
	}
	for _, e := range n.Languages.Edges {
		r.Languages = append(r.Languages, domain.Language{Name: e.Node.Name, Bytes: e.Size})
	}
	return r
}

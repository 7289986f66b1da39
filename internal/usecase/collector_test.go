package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/naka-gawa/readme-stats/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchCounts(ctx context.Context, login string) (domain.RepositoryCounts, domain.ContributionSummary, error) {
	args := m.Called(ctx, login)
	return args.Get(0).(domain.RepositoryCounts), args.Get(1).(domain.ContributionSummary), args.Error(2)
}

func (m *mockFetcher) FetchRepositories(ctx context.Context, login string, partitions []domain.Partition) (map[domain.Partition][]domain.RepositoryRecord, error) {
	args := m.Called(ctx, login, partitions)
	// The returned map is nil when an error occurs.
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.Partition][]domain.RepositoryRecord), args.Error(1)
}

func TestCollector_Collect(t *testing.T) {
	counts := domain.RepositoryCounts{Owned: 3, Org: 1}
	summary := domain.ContributionSummary{Commits: 12, Followers: 4}
	partitions := map[domain.Partition][]domain.RepositoryRecord{
		domain.OwnedPublic: {repo("o1", domain.OwnedPublic, 1, 0, 1)},
	}

	testCases := []struct {
		name        string
		parallel    bool
		countsErr   error
		reposErr    error
		skipRepos   bool
		expectError string
	}{
		{name: "happy path - sequential"},
		{name: "happy path - parallel", parallel: true},
		{name: "error case - count query fails", countsErr: errors.New("count boom"), skipRepos: true, expectError: "count boom"},
		{name: "error case - repository query fails", reposErr: errors.New("repos boom"), expectError: "repos boom"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			fetcher.On("FetchCounts", mock.Anything, "octocat").Return(counts, summary, tc.countsErr)
			var reposResult interface{} = partitions
			if tc.reposErr != nil {
				reposResult = nil
			}
			call := fetcher.On("FetchRepositories", mock.Anything, "octocat", domain.AllPartitions).Return(reposResult, tc.reposErr)
			if tc.skipRepos {
				call.Maybe()
			}

			collector := NewCollector(fetcher, 100, tc.parallel, zap.NewNop())
			result, err := collector.Collect(context.Background(), "octocat", domain.AllPartitions)

			if tc.expectError != "" {
				assert.ErrorContains(t, err, tc.expectError)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, &domain.FetchResult{
					Login:         "octocat",
					Counts:        counts,
					Contributions: summary,
					Partitions:    partitions,
				}, result)
			}
			fetcher.AssertExpectations(t)
		})
	}
}

func TestCollector_SequentialStopsAfterCountFailure(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("FetchCounts", mock.Anything, "octocat").
		Return(domain.RepositoryCounts{}, domain.ContributionSummary{}, errors.New("unauthorized"))

	collector := NewCollector(fetcher, 100, false, zap.NewNop())
	_, err := collector.Collect(context.Background(), "octocat", domain.AllPartitions)

	assert.ErrorContains(t, err, "unauthorized")
	fetcher.AssertNotCalled(t, "FetchRepositories", mock.Anything, mock.Anything, mock.Anything)
}

func TestCollector_WarnsOnTruncation(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	full := []domain.RepositoryRecord{
		repo("a", domain.OrgPublic, 0, 0, 1),
		repo("b", domain.OrgPublic, 0, 0, 1),
	}
	manyLanguages := withLanguages(repo("c", domain.OwnedPublic, 0, 0, 1), domain.Language{Name: "Go", Bytes: 1})
	manyLanguages.NameWithOwner = "octocat/c"
	manyLanguages.LanguageCount = 14

	fetcher := new(mockFetcher)
	fetcher.On("FetchCounts", mock.Anything, "octocat").Return(domain.RepositoryCounts{}, domain.ContributionSummary{}, nil)
	fetcher.On("FetchRepositories", mock.Anything, "octocat", domain.AllPartitions).Return(map[domain.Partition][]domain.RepositoryRecord{
		domain.OwnedPublic: {manyLanguages},
		domain.OrgPublic:   full,
	}, nil)

	collector := NewCollector(fetcher, 2, false, zap.New(core))
	_, err := collector.Collect(context.Background(), "octocat", domain.AllPartitions)
	require.NoError(t, err)

	truncated := logs.FilterMessageSnippet("page size").All()
	require.Len(t, truncated, 1)
	assert.Equal(t, "org-public", truncated[0].ContextMap()["partition"])

	languages := logs.FilterMessageSnippet("more languages").All()
	require.Len(t, languages, 1)
	assert.Equal(t, "octocat/c", languages[0].ContextMap()["repository"])
}

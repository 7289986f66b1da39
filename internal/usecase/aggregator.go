// Package usecase contains the business logic of the application.
package usecase

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/naka-gawa/readme-stats/internal/domain"
)

// DefaultTopLanguages is the length of the language ranking when none is configured.
const DefaultTopLanguages = 6

// AggregateOptions tunes the aggregation.
type AggregateOptions struct {
	TopLanguages int
}

// Contributed reports whether a repository counts toward the user's activity.
// Owned repositories always count; organization repositories count when their
// default branch has at least one commit.
func Contributed(r domain.RepositoryRecord) bool {
	if r.Partition.Owned() {
		return true
	}
	return r.Commits > 0
}

// Aggregate turns a fetch result into the report. It never fails.
func Aggregate(result *domain.FetchResult, opts AggregateOptions, now time.Time) domain.AggregateReport {
	report := domain.AggregateReport{
		GeneratedAt: now.UTC(),
		Languages:   []domain.LanguageShare{},
	}
	if result == nil {
		return report
	}
	report.Login = result.Login
	report.TotalRepos = result.Counts.Owned + result.Counts.Org
	report.Contributions = result.Contributions

	included := contributedRepositories(result.Partitions)
	for _, r := range included {
		report.Stars += r.Stars
		report.Forks += r.Forks
		report.Commits += r.Commits
		report.PullRequests += r.PullRequests
		if r.IsFork {
			report.Forked++
		}
		if r.Partition.Owned() {
			report.OwnedContributed++
		} else {
			report.OrgContributed++
		}
	}
	report.Contributed = len(included)

	top := opts.TopLanguages
	if top <= 0 {
		top = DefaultTopLanguages
	}
	report.Languages = RankLanguages(included, top)
	return report
}

// contributedRepositories concatenates the partitions in fixed order, keeps the
// contributed records and drops repeated node IDs.
func contributedRepositories(partitions map[domain.Partition][]domain.RepositoryRecord) []domain.RepositoryRecord {
	var included []domain.RepositoryRecord
	seen := make(map[string]struct{})
	for _, p := range domain.AllPartitions {
		for _, r := range partitions[p] {
			// The partition a record was fetched under is authoritative.
			r.Partition = p
			if !Contributed(r) {
				continue
			}
			if r.ID != "" {
				if _, dup := seen[r.ID]; dup {
					continue
				}
				seen[r.ID] = struct{}{}
			}
			included = append(included, r)
		}
	}
	return included
}

// RankLanguages merges the language bytes of repos and returns the top n entries,
// largest first. Equal sizes keep the order in which the languages were first seen.
// Percentages are rounded half away from zero independently, so they need not sum to 100.
// It returns an empty slice when no bytes were recorded.
func RankLanguages(repos []domain.RepositoryRecord, n int) []domain.LanguageShare {
	bytesByName := make(map[string]int)
	var order []string
	total := 0
	for _, r := range repos {
		for _, l := range r.Languages {
			if _, ok := bytesByName[l.Name]; !ok {
				order = append(order, l.Name)
			}
			bytesByName[l.Name] += l.Bytes
			total += l.Bytes
		}
	}
	if total == 0 {
		return []domain.LanguageShare{}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return bytesByName[order[i]] > bytesByName[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}

	shares := make([]domain.LanguageShare, 0, len(order))
	for _, name := range order {
		b := bytesByName[name]
		pct, _ := stats.Round(float64(b)/float64(total)*100, 0)
		shares = append(shares, domain.LanguageShare{Name: name, Bytes: b, Percent: int(pct)})
	}
	return shares
}

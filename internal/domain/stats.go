// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"fmt"
	"time"
)

// Partition identifies the ownership and visibility bucket a repository was fetched from.
type Partition int

const (
	OwnedPublic Partition = iota
	OwnedPrivate
	OrgPublic
	OrgPrivate
)

// AllPartitions lists every partition in concatenation order.
var AllPartitions = []Partition{OwnedPublic, OwnedPrivate, OrgPublic, OrgPrivate}

var partitionNames = map[Partition]string{
	OwnedPublic:  "owned-public",
	OwnedPrivate: "owned-private",
	OrgPublic:    "org-public",
	OrgPrivate:   "org-private",
}

func (p Partition) String() string {
	if name, ok := partitionNames[p]; ok {
		return name
	}
	return "unknown"
}

// Owned reports whether the partition holds repositories owned by the user.
func (p Partition) Owned() bool {
	return p == OwnedPublic || p == OwnedPrivate
}

// ParsePartition converts a partition name such as "org-private" back into a Partition.
func ParsePartition(name string) (Partition, bool) {
	for p, n := range partitionNames {
		if n == name {
			return p, true
		}
	}
	return 0, false
}

func (p Partition) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Partition) UnmarshalText(text []byte) error {
	parsed, ok := ParsePartition(string(text))
	if !ok {
		return fmt.Errorf("unknown partition %q", text)
	}
	*p = parsed
	return nil
}

// Language is one entry of a repository's language breakdown.
type Language struct {
	Name  string `json:"name"`
	Bytes int    `json:"bytes"`
}

// RepositoryRecord is a single repository as returned by the partition query.
type RepositoryRecord struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	NameWithOwner    string     `json:"name_with_owner"`
	Stars            int        `json:"stars"`
	Forks            int        `json:"forks"`
	IsPrivate        bool       `json:"is_private"`
	IsFork           bool       `json:"is_fork"`
	HasDefaultBranch bool       `json:"has_default_branch"`
	Commits          int        `json:"commits"`
	PullRequests     int        `json:"pull_requests"`
	Languages        []Language `json:"languages"`
	// LanguageCount is the upstream total, which may exceed len(Languages).
	LanguageCount int       `json:"language_count"`
	Partition     Partition `json:"partition"`
}

// ContributionSummary holds the user's counters for the current contribution period.
type ContributionSummary struct {
	Commits       int `json:"commits"`
	Issues        int `json:"issues"`
	PullRequests  int `json:"pull_requests"`
	Reviews       int `json:"reviews"`
	Restricted    int `json:"restricted"`
	Followers     int `json:"followers"`
	Organizations int `json:"organizations"`
}

// RepositoryCounts are the unpaginated totals from the count query.
type RepositoryCounts struct {
	Owned int `json:"owned"`
	Org   int `json:"org"`
}

// FetchResult is everything the orchestrator collected in one run.
type FetchResult struct {
	Login         string
	Counts        RepositoryCounts
	Contributions ContributionSummary
	Partitions    map[Partition][]RepositoryRecord
}

// LanguageShare is one ranked entry of the top language list.
type LanguageShare struct {
	Name    string `json:"name"`
	Bytes   int    `json:"bytes"`
	Percent int    `json:"percent"`
}

// AggregateReport is the final summary rendered into the document.
type AggregateReport struct {
	Login            string              `json:"login"`
	TotalRepos       int                 `json:"total_repos"`
	Contributed      int                 `json:"contributed"`
	OwnedContributed int                 `json:"owned_contributed"`
	OrgContributed   int                 `json:"org_contributed"`
	Forked           int                 `json:"forked"`
	Stars            int                 `json:"stars"`
	Forks            int                 `json:"forks"`
	Commits          int                 `json:"commits"`
	PullRequests     int                 `json:"pull_requests"`
	Languages        []LanguageShare     `json:"languages"`
	Contributions    ContributionSummary `json:"contributions"`
	GeneratedAt      time.Time           `json:"generated_at"`
}

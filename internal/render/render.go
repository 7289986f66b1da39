// Package render turns an aggregate report into the Markdown block placed between
// the document markers.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/naka-gawa/readme-stats/internal/domain"
)

// Placeholder stands in for the language list when no bytes were recorded.
const Placeholder = "—"

// Shape selects the sections to render.
type Shape struct {
	Repositories  bool
	Contributions bool
	Community     bool
	Languages     bool
}

// FullShape renders every section.
var FullShape = Shape{Repositories: true, Contributions: true, Community: true, Languages: true}

// FormatLanguages renders the ranking as "Go (60%), Rust (20%)".
func FormatLanguages(shares []domain.LanguageShare) string {
	if len(shares) == 0 {
		return Placeholder
	}
	parts := make([]string, 0, len(shares))
	for _, s := range shares {
		parts = append(parts, fmt.Sprintf("%s (%d%%)", s.Name, s.Percent))
	}
	return strings.Join(parts, ", ")
}

// Render builds the block. It starts and ends with a newline so the markers
// stay on lines of their own.
func Render(report domain.AggregateReport, shape Shape) string {
	var b strings.Builder
	b.WriteString("\n")

	if shape.Repositories {
		section(&b, "Repository Statistics")
		item(&b, "Total repositories", report.TotalRepos)
		fmt.Fprintf(&b, "- Contributed repositories: %d (owned %d, organization %d)\n",
			report.Contributed, report.OwnedContributed, report.OrgContributed)
		item(&b, "Forked repositories", report.Forked)
		item(&b, "Total stars", report.Stars)
		item(&b, "Total forks", report.Forks)
		item(&b, "Commits in repositories", report.Commits)
		item(&b, "Pull requests in repositories", report.PullRequests)
		b.WriteString("\n")
	}

	if shape.Contributions {
		c := report.Contributions
		section(&b, "Contribution Statistics")
		item(&b, "Commits", c.Commits)
		item(&b, "Issues", c.Issues)
		item(&b, "Pull requests", c.PullRequests)
		item(&b, "Reviews", c.Reviews)
		item(&b, "Private contributions", c.Restricted)
		b.WriteString("\n")
	}

	if shape.Community {
		section(&b, "Community")
		item(&b, "Followers", report.Contributions.Followers)
		item(&b, "Organizations", report.Contributions.Organizations)
		b.WriteString("\n")
	}

	if shape.Languages {
		section(&b, "Top Languages")
		b.WriteString(FormatLanguages(report.Languages))
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "_Last updated: %s_\n", report.GeneratedAt.UTC().Format(time.RFC3339))
	return b.String()
}

func section(b *strings.Builder, title string) {
	fmt.Fprintf(b, "### %s\n\n", title)
}

func item(b *strings.Builder, label string, value int) {
	fmt.Fprintf(b, "- %s: %d\n", label, value)
}

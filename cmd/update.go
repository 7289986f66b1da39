package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/naka-gawa/readme-stats/internal/config"
	"github.com/naka-gawa/readme-stats/internal/document"
	"github.com/naka-gawa/readme-stats/internal/gateway"
	"github.com/naka-gawa/readme-stats/internal/render"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Rewrites the marked region of a document with fresh statistics",
	Long: `Fetches and aggregates the statistics of GITHUB_USER, renders them and replaces
everything between the start and end markers of the target document.

The target is a local file (--file) or a file in a GitHub repository (--repo and
--path). Nothing is written when fetching fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		creds, err := config.CredentialsFromEnv(os.Getenv)
		if err != nil {
			return err
		}

		report, err := buildReport(cmd.Context(), cfg, creds)
		if err != nil {
			return err
		}
		block := render.Render(report, shapeOf(cfg.Report))

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if dryRun {
			fmt.Fprint(cmd.OutOrStdout(), block)
			return nil
		}

		store, target, err := newStore(cfg, creds)
		if err != nil {
			return err
		}
		markers := document.Markers{Start: cfg.Document.StartMarker, End: cfg.Document.EndMarker}
		if _, err := document.Update(cmd.Context(), store, markers, block, logger); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Updated %s\n", target)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringP("file", "f", "", "Local document to update (default README.md)")
	updateCmd.Flags().String("repo", "", "Update a file in this GitHub repository (owner/name) instead of a local file")
	updateCmd.Flags().String("path", "", "Path of the document inside --repo (default README.md)")
	updateCmd.Flags().String("branch", "", "Branch to commit to when using --repo (default branch when empty)")
	updateCmd.Flags().String("message", "", "Commit message when using --repo")
	updateCmd.Flags().Bool("dry-run", false, "Print the rendered block instead of writing the document")
	updateCmd.Flags().Bool("parallel", false, "Issue the count and repository queries concurrently")
}

func shapeOf(r config.Report) render.Shape {
	return render.Shape{
		Repositories:  r.Repositories,
		Contributions: r.Contributions,
		Community:     r.Community,
		Languages:     r.Languages,
	}
}

// newStore picks the repository store when a repository is configured, the local file otherwise.
func newStore(cfg config.Config, creds config.Credentials) (document.Store, string, error) {
	d := cfg.Document
	if d.Repo == "" {
		return &document.FileStore{Path: d.File}, d.File, nil
	}
	httpClient, err := gateway.NewHTTPClient(creds.Token)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create GitHub client: %w", err)
	}
	owner, name := d.RepoOwnerName()
	store, err := document.NewRepositoryStore(httpClient, cfg.RESTURL, owner, name, d.Path, d.Branch, d.Message)
	if err != nil {
		return nil, "", err
	}
	return store, d.Repo + "/" + d.Path, nil
}

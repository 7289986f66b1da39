package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/naka-gawa/readme-stats/internal/config"
	"github.com/naka-gawa/readme-stats/internal/domain"
	"github.com/naka-gawa/readme-stats/internal/gateway"
	"github.com/naka-gawa/readme-stats/internal/usecase"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregates GitHub profile statistics and outputs them as JSON",
	Long:  `Fetches the repository and contribution data of GITHUB_USER, aggregates it and prints the report in JSON format. No document is touched.`,
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

		jsonData, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report to JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().Bool("parallel", false, "Issue the count and repository queries concurrently")
}

// loadConfig reads the --config file and overlays the flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("parallel") {
		cfg.Parallel, _ = flags.GetBool("parallel")
	}
	if flags.Changed("file") {
		cfg.Document.File, _ = flags.GetString("file")
	}
	if flags.Changed("repo") {
		cfg.Document.Repo, _ = flags.GetString("repo")
	}
	if flags.Changed("path") {
		cfg.Document.Path, _ = flags.GetString("path")
	}
	if flags.Changed("branch") {
		cfg.Document.Branch, _ = flags.GetString("branch")
	}
	if flags.Changed("message") {
		cfg.Document.Message, _ = flags.GetString("message")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// buildReport runs the fetch phase and aggregates the result.
func buildReport(ctx context.Context, cfg config.Config, creds config.Credentials) (domain.AggregateReport, error) {
	httpClient, err := gateway.NewHTTPClient(creds.Token)
	if err != nil {
		return domain.AggregateReport{}, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	githubGateway := gateway.NewGitHubGateway(httpClient, cfg.GraphQLURL, gateway.Options{
		PageSize:    cfg.PageSize,
		LanguageCap: cfg.LanguageCap,
	}, logger)
	collector := usecase.NewCollector(githubGateway, cfg.PageSize, cfg.Parallel, logger)

	result, err := collector.Collect(ctx, creds.User, cfg.Partitions)
	if err != nil {
		return domain.AggregateReport{}, fmt.Errorf("failed to collect stats: %w", err)
	}
	return usecase.Aggregate(result, usecase.AggregateOptions{TopLanguages: cfg.TopLanguages}, time.Now()), nil
}

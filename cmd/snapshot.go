// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/oss-contrib/leaderboard/internal/config"
	"github.com/oss-contrib/leaderboard/internal/domain"
	"github.com/oss-contrib/leaderboard/internal/gateway"
	"github.com/oss-contrib/leaderboard/internal/snapshot"
	"github.com/oss-contrib/leaderboard/internal/usecase"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetches GitHub activity and writes the leaderboard snapshot",
	Long: `Resolves the run configuration, expands the configured repositories and
organizations, fetches recent pull request and issue activity for each, scores
every contributor, and atomically writes the resulting snapshot JSON.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
		if verbose {
			logger.SetOutput(os.Stderr) // If verbose, log to standard error.
		}

		// The credential is the only fatal precondition: without it no
		// fetch happens and no snapshot is written.
		token := os.Getenv("GITHUB_TOKEN")
		if token == "" {
			fmt.Fprintln(os.Stderr, "Error: GITHUB_TOKEN environment variable is not set.")
			os.Exit(1)
		}

		configPath, _ := cmd.Flags().GetString("config")
		outputPath, _ := cmd.Flags().GetString("output")
		mergedWeight, _ := cmd.Flags().GetInt("merged-weight")
		openWeight, _ := cmd.Flags().GetInt("open-weight")
		issueWeight, _ := cmd.Flags().GetInt("issue-weight")

		// Inject dependencies and run the pipeline.
		githubGateway, err := gateway.NewGitHubGateway(token, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}

		// The remote config issue lives in the repository running the
		// pipeline, identified by GITHUB_REPOSITORY in Actions. A missing
		// or malformed identifier just skips that source.
		var sources []config.Source
		if current, ok := domain.ParseRepoRef(os.Getenv("GITHUB_REPOSITORY")); ok {
			sources = append(sources, config.IssueSource{Fetcher: githubGateway, Repo: current})
		}
		sources = append(sources, config.FileSource{Path: configPath}, config.Defaults{})
		cfg := config.Resolve(ctx, logger, sources...)

		settings := domain.DefaultSettings()
		settings.Scoring = domain.Weights{MergedPR: mergedWeight, OpenPR: openWeight, Issue: issueWeight}

		pipeline := usecase.NewPipeline(githubGateway, logger)
		snap := pipeline.Run(ctx, cfg, settings)

		if err := snapshot.Write(outputPath, snap); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write snapshot: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated leaderboard snapshot for %d contributors at %s\n", len(snap.Contributors), outputPath)
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().StringP("config", "c", "leaderboard.config.json", "Path to the local fallback config file")
	snapshotCmd.Flags().StringP("output", "o", "public/data.json", "Path to write the snapshot JSON")
	weights := domain.DefaultWeights()
	snapshotCmd.Flags().Int("merged-weight", weights.MergedPR, "Score weight for merged pull requests")
	snapshotCmd.Flags().Int("open-weight", weights.OpenPR, "Score weight for open pull requests")
	snapshotCmd.Flags().Int("issue-weight", weights.Issue, "Score weight for issues")
}

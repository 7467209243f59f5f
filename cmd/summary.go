// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/spf13/cobra"

	"github.com/oss-contrib/leaderboard/internal/snapshot"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Prints the leaderboard from an existing snapshot",
	Long: `Reads a snapshot produced by the snapshot command and renders the ranked
contributor table together with a score distribution summary. This command is
read-only; it never touches the GitHub API.`,
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("snapshot")
		limit, _ := cmd.Flags().GetInt("limit")

		snap, err := snapshot.Read(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read snapshot: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Snapshot generated at %s\n\n", snap.Timestamp.Format(time.RFC3339))

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RANK\tUSER\tMERGED\tOPEN\tISSUES\tSCORE\tLAST ACTIVE")
		scores := make([]float64, 0, len(snap.Contributors))
		for i, c := range snap.Contributors {
			scores = append(scores, float64(c.Score))
			if limit > 0 && i >= limit {
				continue
			}
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\t%s\n",
				i+1, c.Username, c.MergedPRs, c.OpenPRs, c.Issues, c.Score, c.LastActive.Format("2006-01-02"))
		}
		w.Flush()

		if len(scores) > 0 {
			mean, _ := stats.Mean(scores)
			median, _ := stats.Median(scores)
			p90, _ := stats.Percentile(scores, 90)
			fmt.Printf("\n%d contributors: mean score %.1f, median %.1f, p90 %.1f\n",
				len(scores), mean, median, p90)
		}
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().String("snapshot", "public/data.json", "Path to the snapshot JSON to read")
	summaryCmd.Flags().Int("limit", 0, "Show only the top N contributors (0 = all)")
}

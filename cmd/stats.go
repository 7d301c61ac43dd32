package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/nagacity/mynaga-console/internal/api"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print dashboard statistics",
	Long: `Print the aggregate case statistics and the per-MyNaga-status
breakdown that the dashboard shows, in plain text.

Examples:
  mynaga-console stats`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()
	logger := log.New(os.Stderr, "[stats] ", log.LstdFlags)

	client, err := newAPIClient(config, logger)
	if err != nil {
		return err
	}

	stats, err := client.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch stats: %w", err)
	}

	fmt.Printf("Total cases:    %d\n", stats.TotalCases)
	fmt.Printf("Open:           %d\n", stats.OpenCases)
	fmt.Printf("Resolved:       %d\n", stats.ResolvedCases)
	fmt.Printf("For rerouting:  %d\n", stats.ReroutingCases)
	fmt.Printf("Offices:        %d\n", stats.TotalOffices)
	fmt.Printf("Clusters:       %d\n", stats.TotalClusters)
	fmt.Printf("Avg case aging: %.1f days\n", stats.AverageCaseAging)

	breakdown, err := client.MyNagaStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch MyNaga breakdown: %w", err)
	}

	fmt.Printf("\nMyNaga status breakdown (%d total):\n", breakdown.Total)
	for _, status := range api.MyNagaStatuses {
		if count := breakdown.Count(status); count > 0 {
			fmt.Printf("  %-24s %d\n", status, count)
		}
	}

	return nil
}

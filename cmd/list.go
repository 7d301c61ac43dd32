package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nagacity/mynaga-console/internal/api"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cases in plain text",
	Long: `List cases from the API in a simple text format. This command works
in any terminal environment and provides an alternative to the dashboard
when terminal capabilities are limited.

Examples:
  # List all cases
  mynaga-console list

  # Open cases in one barangay
  mynaga-console list --status Open --barangay "Concepcion Pequeña"

  # Search descriptions and control numbers
  mynaga-console list --search pothole --limit 10`,
	RunE: runList,
}

var (
	listStatus   string
	listCategory string
	listBarangay string
	listSearch   string
	listLimit    int
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by internal status (Open, Resolved, For Rerouting)")
	listCmd.Flags().StringVar(&listCategory, "category", "", "Filter by category")
	listCmd.Flags().StringVar(&listBarangay, "barangay", "", "Filter by barangay")
	listCmd.Flags().StringVar(&listSearch, "search", "", "Search control numbers, descriptions, and locations")
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "Maximum number of cases to show")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()
	logger := log.New(os.Stderr, "[list] ", log.LstdFlags)

	client, err := newAPIClient(config, logger)
	if err != nil {
		return err
	}

	cases, err := client.ListCases(ctx, api.ListCasesOptions{
		Limit:    listLimit,
		Status:   listStatus,
		Category: listCategory,
		Barangay: listBarangay,
		Search:   listSearch,
	})
	if err != nil {
		return fmt.Errorf("failed to list cases: %w", err)
	}

	if len(cases) == 0 {
		fmt.Println("No cases found.")
		return nil
	}

	fmt.Printf("Found %d cases:\n\n", len(cases))
	for i, c := range cases {
		fmt.Printf("%d. [%s] %s\n", i+1, strings.ToUpper(c.Status), c.ControlNo)
		if c.Category != "" {
			fmt.Printf("   Category: %s\n", c.Category)
		}
		if c.Barangay != "" {
			fmt.Printf("   Barangay: %s\n", c.Barangay)
		}
		if c.Office != "" {
			fmt.Printf("   Office: %s\n", c.Office)
		}
		if c.MyNagaAppStatus != "" {
			fmt.Printf("   MyNaga Status: %s\n", c.MyNagaAppStatus)
		}
		if !c.DateCreated.IsZero() {
			fmt.Printf("   Created: %s\n", c.DateCreated.Format("2006-01-02 15:04:05"))
		}
		if c.Description != "" {
			fmt.Printf("   Description: %s\n", c.Description)
		}
		fmt.Println()
	}

	return nil
}

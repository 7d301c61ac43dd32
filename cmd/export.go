package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all cases to an Excel file",
	Long: `Ask the server to write all cases to an Excel workbook and print
where it put the result.

Examples:
  mynaga-console export`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()
	logger := log.New(os.Stderr, "[export] ", log.LstdFlags)

	client, err := newAPIClient(config, logger)
	if err != nil {
		return err
	}

	res, err := client.ExportExcel(ctx)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Printf("Export written to %s\n", res.FilePath)
	return nil
}

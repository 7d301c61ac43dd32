package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/nagacity/mynaga-console/internal/importer"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import [file.xlsx | directory]",
	Short: "Upload Excel workbooks for server-side import",
	Long: `Upload one Excel workbook, or every workbook in a directory, to the
server's import endpoint. With --watch the directory is monitored and new
or rewritten workbooks are uploaded as they appear, until interrupted.

Rows the server rejects are reported per file; imported rows are kept.

Examples:
  # Upload a single workbook
  mynaga-console import cases.xlsx

  # Upload every workbook in a folder
  mynaga-console import ./drops

  # Keep watching a drop folder
  mynaga-console import ./drops --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var importWatch bool

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&importWatch, "watch", false, "Keep watching the directory for new workbooks")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()
	logger := log.New(os.Stderr, "[import] ", log.LstdFlags)

	client, err := newAPIClient(config, logger)
	if err != nil {
		return err
	}

	target := args[0]
	st, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", target, err)
	}

	// Single file: upload directly.
	if !st.IsDir() {
		f, err := os.Open(target)
		if err != nil {
			return fmt.Errorf("cannot open %s: %w", target, err)
		}
		defer f.Close()

		res, err := client.ImportExcel(ctx, target, f)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		fmt.Printf("Imported %d rows from %s\n", res.ImportedCount, target)
		for _, rowErr := range res.Errors {
			fmt.Printf("  row error: %s\n", rowErr)
		}
		return nil
	}

	w := importer.New(client, importer.Options{
		Dir:    target,
		Watch:  importWatch,
		Logger: logger,
	})
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}

	imported, errCount := w.Counts()
	fmt.Printf("Imported %d workbooks (%d errors)\n", imported, errCount)
	return nil
}

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/nagacity/mynaga-console/internal/importer"
	"github.com/nagacity/mynaga-console/internal/store"
	"github.com/nagacity/mynaga-console/internal/ui"
)

var forceTUI bool

// consoleCmd represents the console command
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start the interactive terminal dashboard",
	Long: `Start the full-screen dashboard connected to the MyNaga case API:

1. Statistics overview with auto-refresh
2. Case listing with filtering, search, create/edit/delete
3. MyNaga mobile-app sync controls
4. Google Sheets sync controls

When import.watch_dir is configured, Excel workbooks dropped into that
directory are uploaded to the server in the background.

The console runs until quit (q or Ctrl+C).

Examples:
  # Connect to a local backend
  mynaga-console console

  # Connect to a deployed backend
  mynaga-console console --api https://reports.naga.gov.ph/api`,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)

	consoleCmd.Flags().BoolVar(&forceTUI, "force-tui", false, "Skip the terminal capability check")
}

func runConsole(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()

	if !forceTUI && !canInitializeTUI() {
		return fmt.Errorf("terminal does not support full-screen mode; use a native terminal or --force-tui, or fall back to 'mynaga-console list'")
	}

	// Logs go to a file while the screen belongs to the TUI.
	logFile := setupFileLogger("mynaga-console.log")
	var logger *log.Logger
	if logFile != nil {
		logger = log.New(logFile, "[console] ", log.LstdFlags)
		defer logFile.Close()
	} else {
		logger = log.New(io.Discard, "", 0)
	}
	logger.Println("starting MyNaga console")
	logger.Printf("API base URL: %s", config.API.BaseURL)

	client, err := newAPIClient(config, logger)
	if err != nil {
		return err
	}

	st := store.New()

	dashboard := ui.New(ctx, ui.Options{
		Client:         client,
		Store:          st,
		StorageBase:    config.Media.StorageBase,
		StatsInterval:  config.Dashboard.StatsInterval,
		StatusInterval: config.Dashboard.StatusInterval,
		Logger:         logger,
	})

	// Background drop-folder import when configured.
	if config.Import.WatchDir != "" {
		dir := resolvePathRelativeToBase(getWorkingDir(), config.Import.WatchDir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Printf("could not create import watch dir %s: %v", dir, err)
		} else {
			w := importer.New(client, importer.Options{
				Dir:    dir,
				Watch:  true,
				Logger: logger,
			})
			go func() {
				if err := w.Run(ctx); err != nil && ctx.Err() == nil {
					logger.Printf("import watcher error: %v", err)
				}
			}()
			logger.Printf("watching %s for Excel drops", dir)
		}
	}

	if err := dashboard.Start(); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	logger.Println("MyNaga console stopped")
	return nil
}

// canInitializeTUI tests whether tcell can drive this terminal.
func canInitializeTUI() bool {
	screen, err := tcell.NewScreen()
	if err != nil {
		return false
	}
	if err := screen.Init(); err != nil {
		return false
	}
	screen.Fini()
	return true
}

// setupFileLogger opens logs/<name> under the working directory, creating the
// directory as needed. Returns nil when the file cannot be opened.
func setupFileLogger(name string) *os.File {
	logDir := filepath.Join(getWorkingDir(), "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(logDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil
	}
	return f
}

// getWorkingDir returns the current working directory, falling back to the
// executable's directory.
func getWorkingDir() string {
	if wd, err := os.Getwd(); err == nil && wd != "" {
		return wd
	}
	if exe, err := os.Executable(); err == nil {
		return filepath.Dir(exe)
	}
	return "."
}

// resolvePathRelativeToBase resolves a possibly relative path against a base
// directory. Absolute paths are returned unchanged.
func resolvePathRelativeToBase(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile     string
	apiBaseURL  string
	storageBase string
	logLevel    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mynaga-console",
	Short: "Terminal dashboard for the MyNaga citizen-reporting case API",
	Long: `MyNaga Console is a terminal-first dashboard client for the MyNaga
case-management backend. It lists, filters, creates, edits, and deletes
case records, shows live aggregate statistics, and drives the backend's
MyNaga-app and Google Sheets sync integrations.

Features:
- Case list with server-side filtering and search
- Dual-mode case detail surface (view / edit) with media gallery
- Auto-refreshing statistics dashboard
- Integration setup for the MyNaga mobile API and Google Sheets
- Excel import (one-shot or drop-folder watch) and export`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mynaga-console.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api", "http://localhost:8000/api", "Base URL of the MyNaga dashboard API")
	rootCmd.PersistentFlags().StringVar(&storageBase, "storage-base", "", "URL prefix for resolving bare media filenames")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	// Bind flags to viper
	viper.BindPFlag("api.base_url", rootCmd.PersistentFlags().Lookup("api"))
	viper.BindPFlag("media.storage_base", rootCmd.PersistentFlags().Lookup("storage-base"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".mynaga-console" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".mynaga-console")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// Set defaults
	viper.SetDefault("api.base_url", "http://localhost:8000/api")
	viper.SetDefault("api.timeout", 30*time.Second)
	viper.SetDefault("media.storage_base", "")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("dashboard.stats_interval", 10*time.Second)
	viper.SetDefault("dashboard.status_interval", 10*time.Second)
	viper.SetDefault("import.watch_dir", "")
}

// GetConfig returns the current configuration values
func GetConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: viper.GetString("api.base_url"),
			Timeout: viper.GetDuration("api.timeout"),
		},
		Media: MediaConfig{
			StorageBase: viper.GetString("media.storage_base"),
		},
		Log: LogConfig{
			Level: viper.GetString("log.level"),
		},
		Dashboard: DashboardConfig{
			StatsInterval:  viper.GetDuration("dashboard.stats_interval"),
			StatusInterval: viper.GetDuration("dashboard.status_interval"),
		},
		Import: ImportConfig{
			WatchDir: viper.GetString("import.watch_dir"),
		},
	}
}

// Config represents the application configuration
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Media     MediaConfig     `mapstructure:"media"`
	Log       LogConfig       `mapstructure:"log"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Import    ImportConfig    `mapstructure:"import"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MediaConfig holds the storage base used to resolve bare media filenames.
// The correct value depends on where the MyNaga app keeps report attachments;
// it must be supplied per deployment.
type MediaConfig struct {
	StorageBase string `mapstructure:"storage_base"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DashboardConfig struct {
	StatsInterval  time.Duration `mapstructure:"stats_interval"`
	StatusInterval time.Duration `mapstructure:"status_interval"`
}

type ImportConfig struct {
	WatchDir string `mapstructure:"watch_dir"`
}

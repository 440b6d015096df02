// Package cli implements the snowreport command line.
//
// Commands load settings from the config file, build their services through
// the Factory set by main, and print results to the command's output.
package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/snowreport/internal/adapters/driven/config/file"
	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driving"
	"github.com/custodia-labs/snowreport/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Persistent flags.
var (
	configPath string
	verbose    bool
	jsonLogs   bool
)

// Factory builds the services behind each command from loaded settings.
type Factory struct {
	// Report returns the report service and a function releasing its resources.
	Report func(ctx context.Context, s domain.Settings, log *slog.Logger) (driving.ReportService, func(), error)

	// Cleanup returns the maintenance service.
	Cleanup func(s domain.Settings, log *slog.Logger) (driving.CleanupService, error)
}

var factory Factory

// SetFactory sets the service factory used by commands.
func SetFactory(f Factory) {
	factory = f
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// loadSettings reads the config file. Report runs validate; maintenance
// commands only need defaults applied.
var loadSettings = func(path string, validate bool) (domain.Settings, error) {
	l := file.NewLoader(path)
	if validate {
		return l.Load()
	}
	return l.Read()
}

var rootCmd = &cobra.Command{
	Use:   "snowreport",
	Short: "Monthly resolved-ticket attachment reports",
	Long: `snowreport collects the resolved tickets of a month from a Monday.com board,
downloads their attachments once per distinct content, and writes a merged PDF
plus an Excel summary.

Configuration is read from config.toml or config.yaml in the working directory
unless --config is given. The API token is read from the environment variable
named by api.token_env; a .env file is honoured.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger.SetOutput(cmd.ErrOrStderr())
		logger.SetJSON(jsonLogs)
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (.toml, .yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "log as JSON")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/snowreport/internal/adapters/driven/config/file"
)

var (
	configInitBoard      string
	configInitDateColumn string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or inspect the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter config file",
	Long: `Writes a config file with every default filled in. The format follows the
extension: .toml (default config.toml) or .yaml/.yml. Existing files are kept.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().StringVar(&configInitBoard, "board", "", "board ID")
	configInitCmd.Flags().StringVar(&configInitDateColumn, "date-column", "", "open date column ID")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := file.DefaultPaths[0]
	if len(args) > 0 {
		path = args[0]
	}
	if err := file.WriteDefault(path, configInitBoard, configInitDateColumn); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	cmd.Printf("Wrote %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(configPath, false)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	out := "config.toml"
	if configPath != "" {
		out = configPath
	}
	data, err := file.Encode(out, settings)
	if err != nil {
		return err
	}

	p := newPrinter(cmd.OutOrStdout())
	p.muted("# token (%s): %s", settings.API.TokenEnv, maskToken(settings.API.Token))
	p.line("%s", data)
	if err := settings.Validate(); err != nil {
		p.warn("invalid: %v", err)
	}
	return nil
}

func maskToken(token string) string {
	switch {
	case token == "":
		return "(not set)"
	case len(token) <= 8:
		return "****"
	default:
		return token[:4] + "..." + token[len(token)-4:]
	}
}

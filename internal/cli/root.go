// Package cli implements the dxfexport command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pid-digitizer/backend/internal/config"
	"github.com/pid-digitizer/backend/internal/logging"
	"github.com/pid-digitizer/backend/internal/models"
)

var (
	version = "dev"

	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "dxfexport",
	Short: "Render P&ID drawings to DXF",
	Long: `dxfexport renders digitized P&ID drawings (symbols, lines and text
described in JSON, YAML or MessagePack) into AutoCAD DXF files.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logging.SetOutput(cmd.ErrOrStderr())
		if verbose {
			logging.SetLevel("debug")
		} else {
			logging.SetLevel("warn")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log export events to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "read export defaults from a server config file")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// exportDefaults returns the options requests start from.
func exportDefaults() (models.ExportOptions, error) {
	if configPath == "" {
		return models.DefaultExportOptions(), nil
	}
	if _, err := os.Stat(configPath); err != nil {
		return models.ExportOptions{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return models.ExportOptions{}, err
	}
	return cfg.ExportDefaults(), nil
}

// Package cli implements the icond command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Global flags
var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "icond",
	Short: "icond – ICON weather data cache daemon",
	Long: `icond maintains a local ICONDB database built from DWD ICON open data:
it fetches each model run as it is published, validates the cached artifact
against the configured dataset shape, and evicts runs past their archive life.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "icond.yaml",
		"Path to the configuration file")
}

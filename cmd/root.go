// =============================================================================
// PO Middleware - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands (like 'process', 'validate') are
// attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (po-middleware)
//   ├── processCmd (po-middleware process)
//   ├── validateCmd (po-middleware validate)
//   └── versionCmd (po-middleware version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose, --log-level)
//   2. Creating the viper instance that carries flag and POMW_* overrides
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/edisonbriones/po-middleware/internal/config"
	"github.com/edisonbriones/po-middleware/pkg/logger"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
// A missing file is fine; defaults, environment and flags are used instead.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// v carries flag bindings and POMW_* environment overrides into config.Load.
// It is created before any init so every command file can bind to it.
var v = config.NewViper()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "po-middleware",
	Short: "PO Middleware - Turn retail EDI purchase orders into SAP order import files",
	Long: `PO Middleware reads the purchase-order CSV exports of a retail EDI feed,
enriches every line from the item, store and SAP status master workbooks, and
writes the ORDERHDR and ORDERDTL files expected by the SAP order import.

Outputs (in the output folder):
  - Compiled csv file.csv  : every PO line, normalized
  - Managed PO file.csv    : compiled lines plus the looked-up codes
  - ORDERHDR.csv           : one header row per PO
  - ORDERDTL.csv           : one detail row per PO line
  - exceptions_*.txt       : lines with unmapped fields
  - run_summary_*.txt      : counts and files of the run

Example Usage:
  po-middleware process                          # Prompt for any path not configured
  po-middleware process --config ./po.yaml       # Use a custom configuration file
  po-middleware process --no-prompt --dry-run    # Check a configured batch
  po-middleware validate                         # Check the master workbooks only`,

	SilenceUsage: true,

	// PersistentPreRun applies --verbose before any command logs.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetLevel("debug")
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file (default is config.yaml)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	rootCmd.PersistentFlags().String(
		"log-level",
		"",
		"Log level: debug, info, warn, error (overrides log_level in the config file)",
	)
	v.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
}

// loadConfig loads the configuration and applies its log level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile, v)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger.SetLevel(level)

	return cfg, nil
}

// =============================================================================
// PO Middleware - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the configuration
// and the three master workbooks without touching any PO export.
//
// COMMAND USAGE:
//   po-middleware validate [--item-master --store-master --status-master]
//
// A workbook fails validation when its sheet, header row or a declared
// column is missing. Rows dropped for an empty value are reported but do not
// fail validation.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/edisonbriones/po-middleware/internal/config"
	"github.com/edisonbriones/po-middleware/internal/converter"
	"github.com/edisonbriones/po-middleware/internal/lookup"
	"github.com/edisonbriones/po-middleware/internal/picker"
	"github.com/spf13/cobra"
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and the master workbooks",
	Long: `The validate command loads the configuration, resolves the item, store and
status master workbooks, and builds the lookup tables exactly as a batch run
would. It reports the size of every table and how many rows were dropped.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate()
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	masters := []struct {
		name  string
		key   string
		usage string
	}{
		{"item-master", config.KeyItemMaster, "Item master workbook"},
		{"store-master", config.KeyStoreMaster, "Store master workbook"},
		{"status-master", config.KeyStatusMaster, "SAP status workbook"},
	}
	for _, f := range masters {
		validateCmd.Flags().String(f.name, "", f.usage)
	}

	validateCmd.Flags().BoolVar(&noPrompt, "no-prompt", false, "Fail instead of prompting for a missing path")

	// Flags of the command actually run win over those of the other commands.
	validateCmd.PreRun = func(cmd *cobra.Command, args []string) {
		for _, f := range masters {
			v.BindPFlag(f.key, cmd.Flags().Lookup(f.name))
		}
	}
}

// runValidate loads the three lookup tables and prints their sizes.
func runValidate() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fmt.Println("Configuration OK")

	paths, err := picker.ResolveMasters(cfg.Paths, newPicker())
	if err != nil {
		return fmt.Errorf("failed to resolve master workbooks: %w", err)
	}

	tables, err := lookup.Load(lookup.Sources{
		ItemMaster:   paths.ItemMasterFile,
		StoreMaster:  paths.StoreMasterFile,
		StatusMaster: paths.StatusMasterFile,
	}, cfg)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Println("\nLookup tables:")
	for _, info := range converter.DescribeTables(tables) {
		fmt.Printf("  ✓ %-16s %6d entries, %d rows dropped\n", info.Name, info.Entries, info.Dropped)
	}

	return nil
}

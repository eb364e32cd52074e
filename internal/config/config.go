// =============================================================================
// PO Middleware - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the run configuration.
//
// CONFIGURATION SOURCES (highest precedence first):
//   1. Command-line flags (bound through viper by the cmd package)
//   2. Environment variables prefixed with POMW_ (a .env file is honoured)
//   3. The YAML configuration file (config.yaml by default, optional)
//   4. Built-in defaults (Default)
//
// The defaults reproduce the layout of the retail EDI export and the SAP
// order import files, so an empty config file is a working config.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variable overrides (POMW_SOURCE_DIR, ...).
const EnvPrefix = "POMW"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the complete configuration of a batch run.
type Config struct {
	// Paths holds the five paths the run needs. Any left empty is
	// resolved interactively by the picker.
	Paths Paths `yaml:"paths"`

	// Source describes the headerless PO export files.
	Source SourceSettings `yaml:"source"`

	// ItemMaster, StoreMaster and StatusMaster describe the reference workbooks.
	ItemMaster   SheetSettings `yaml:"item_master"`
	StoreMaster  SheetSettings `yaml:"store_master"`
	StatusMaster SheetSettings `yaml:"status_master"`

	// SAP holds the literal codes injected into the import files.
	SAP SAPSettings `yaml:"sap"`

	// Output holds output file names.
	Output OutputSettings `yaml:"output"`

	// Policy holds business-behaviour switches.
	Policy PolicySettings `yaml:"policy"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// MetricsFile, when set, receives run counters in Prometheus text format.
	MetricsFile string `yaml:"metrics_file"`
}

// Paths holds the input and output locations of a run.
type Paths struct {
	// SourceDir is the folder scanned for *.csv PO export files.
	SourceDir string `yaml:"source_dir"`

	// ItemMasterFile maps barcodes to internal material codes.
	ItemMasterFile string `yaml:"item_master_file"`

	// StoreMasterFile maps store codes to customer codes and delivery dates.
	StoreMasterFile string `yaml:"store_master_file"`

	// StatusMasterFile maps material codes to SAP status labels.
	StatusMasterFile string `yaml:"status_master_file"`

	// OutputDir receives the four output files and the run logs.
	OutputDir string `yaml:"output_dir"`

	// ArchiveDir, when set, receives the source files after a successful run.
	ArchiveDir string `yaml:"archive_dir"`
}

// =============================================================================
// SOURCE SETTINGS
// =============================================================================

// SourceSettings contains settings for parsing the PO export files.
type SourceSettings struct {
	// Pattern is the glob used to discover source files in SourceDir.
	// Default: "*.csv"
	Pattern string `yaml:"pattern"`

	// Delimiter is the field separator of the export: one character, or one
	// of the names "tab" (also `\t`), "pipe", "semicolon" and "comma".
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// Encoding is the character encoding of the export, by WHATWG name.
	// Common values: "utf-8", "windows-1252", "iso-8859-1"
	// Default: "utf-8"
	Encoding string `yaml:"encoding"`

	// POSeparator separates the parent PO number from its release suffix.
	// Default: "-"
	POSeparator string `yaml:"po_separator"`

	// DateLayouts are tried in order when parsing the three date columns.
	// Uses Go's time format strings.
	DateLayouts []string `yaml:"date_layouts"`
}

// =============================================================================
// REFERENCE SHEET SETTINGS
// =============================================================================

// SheetSettings describes where a lookup table lives inside a workbook.
type SheetSettings struct {
	// SheetIndex is the 0-based position of the sheet in the workbook.
	SheetIndex int `yaml:"sheet_index"`

	// HeaderRow is the 0-based row holding the column names.
	HeaderRow int `yaml:"header_row"`

	// KeyColumn is the header of the lookup key column.
	KeyColumn string `yaml:"key_column"`

	// ValueColumn is the header of the looked-up value column.
	ValueColumn string `yaml:"value_column"`

	// DateColumn is an optional second value column holding dates.
	// Only the store master uses it ("Del Sched").
	DateColumn string `yaml:"date_column,omitempty"`
}

// =============================================================================
// SAP SETTINGS
// =============================================================================

// SAPSettings holds the literal values the order import expects.
type SAPSettings struct {
	OrderType   string `yaml:"order_type"`
	SalesOrg    string `yaml:"sales_org"`
	DistChannel string `yaml:"dist_channel"`
	Division    string `yaml:"division"`
	POType      string `yaml:"po_type"`
	Unit        string `yaml:"unit"`

	// DateFormat is the Go layout of Del Date and PO Date in ORDERHDR.
	// Default: "20060102" (YYYYMMDD)
	DateFormat string `yaml:"date_format"`
}

// =============================================================================
// OUTPUT SETTINGS
// =============================================================================

// OutputSettings holds the names of the four output files.
type OutputSettings struct {
	CompiledFile string `yaml:"compiled_file"`
	ManagedFile  string `yaml:"managed_file"`
	HeaderFile   string `yaml:"header_file"`
	DetailFile   string `yaml:"detail_file"`
}

// =============================================================================
// POLICY SETTINGS
// =============================================================================

// Unmapped policies.
const (
	// UnmappedKeep lets records with an unknown material reach the outputs.
	UnmappedKeep = "keep"

	// UnmappedDrop filters records with an unknown material like excluded ones.
	UnmappedDrop = "drop"
)

// PolicySettings holds the switches for the open business questions.
type PolicySettings struct {
	// ExcludedStatus is the SAP status label that removes a line.
	// Default: "Material Excluded"
	ExcludedStatus string `yaml:"excluded_status"`

	// UnmappedPolicy is UnmappedKeep or UnmappedDrop.
	// Default: "keep"
	UnmappedPolicy string `yaml:"unmapped_policy"`

	// CollapseDuplicateLines merges detail rows with identical
	// (PO number, material, qty).
	// Default: true
	CollapseDuplicateLines bool `yaml:"collapse_duplicate_lines"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load reads the configuration file, applies overrides and defaults, and
// validates the result.
//
// PARAMETERS:
//   - configPath: The path to the YAML file. A missing file is not an error;
//     the run then relies on defaults, environment and flags.
//   - v: The viper instance carrying flag bindings. May be nil.
//
// RETURNS:
//   - A pointer to the Config struct.
//   - An error if the file cannot be parsed or the result is invalid.
func Load(configPath string, v *viper.Viper) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
			// Flags and environment are enough to run.
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	applyOverrides(&cfg, v)
	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// NewViper returns a viper instance reading POMW_* environment variables.
// A .env file in the working directory is loaded first if present.
func NewViper() *viper.Viper {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Override keys understood by applyOverrides. The cmd package binds its
// flags to these names.
const (
	KeySourceDir    = "source_dir"
	KeyItemMaster   = "item_master"
	KeyStoreMaster  = "store_master"
	KeyStatusMaster = "status_master"
	KeyOutputDir    = "output_dir"
	KeyArchiveDir   = "archive_dir"
	KeyLogLevel     = "log_level"
	KeyMetricsFile  = "metrics_file"
)

// applyOverrides copies every key explicitly set in v (flag or env) into cfg.
func applyOverrides(cfg *Config, v *viper.Viper) {
	if v == nil {
		return
	}

	targets := map[string]*string{
		KeySourceDir:    &cfg.Paths.SourceDir,
		KeyItemMaster:   &cfg.Paths.ItemMasterFile,
		KeyStoreMaster:  &cfg.Paths.StoreMasterFile,
		KeyStatusMaster: &cfg.Paths.StatusMasterFile,
		KeyOutputDir:    &cfg.Paths.OutputDir,
		KeyArchiveDir:   &cfg.Paths.ArchiveDir,
		KeyLogLevel:     &cfg.LogLevel,
		KeyMetricsFile:  &cfg.MetricsFile,
	}

	for key, target := range targets {
		if v.IsSet(key) {
			if value := strings.TrimSpace(v.GetString(key)); value != "" {
				*target = value
			}
		}
	}
}

// Default returns the configuration used when nothing overrides it.
// Load decodes the YAML file on top of this value, so keys missing from the
// file keep these defaults.
func Default() Config {
	return Config{
		Source: SourceSettings{
			Pattern:     "*.csv",
			Delimiter:   ",",
			Encoding:    "utf-8",
			POSeparator: "-",
			DateLayouts: []string{
				"2006-01-02",
				"2006-01-02 15:04:05",
				"01/02/2006",
				"1/2/2006",
				"01/02/2006 15:04",
				"1/2/2006 15:04",
				"2006/01/02",
				"02-Jan-2006",
				"20060102",
			},
		},

		// Sheet positions follow the master workbooks as maintained by sales ops.
		ItemMaster: SheetSettings{
			SheetIndex:  0,
			HeaderRow:   0,
			KeyColumn:   "Barcode",
			ValueColumn: "URC Code",
		},
		StoreMaster: SheetSettings{
			SheetIndex:  1,
			HeaderRow:   0,
			KeyColumn:   "Store Code",
			ValueColumn: "URC Customer Code",
			DateColumn:  "Del Sched",
		},
		StatusMaster: SheetSettings{
			SheetIndex:  0,
			HeaderRow:   1,
			KeyColumn:   "URC Code",
			ValueColumn: "SAP STATUS",
		},

		SAP: SAPSettings{
			OrderType:   "Z8DO",
			SalesOrg:    "BCFG",
			DistChannel: "12",
			Division:    "97",
			POType:      "EMAL",
			Unit:        "CS",
			DateFormat:  "20060102",
		},

		Output: OutputSettings{
			CompiledFile: "Compiled csv file.csv",
			ManagedFile:  "Managed PO file.csv",
			HeaderFile:   "ORDERHDR.csv",
			DetailFile:   "ORDERDTL.csv",
		},

		Policy: PolicySettings{
			ExcludedStatus:         "Material Excluded",
			UnmappedPolicy:         UnmappedKeep,
			CollapseDuplicateLines: true,
		},

		LogLevel: "info",
	}
}

// applyDefaults restores defaults for string options explicitly blanked in
// the file (for example `encoding: ""`).
func applyDefaults(cfg *Config) {
	def := Default()

	fill := func(target *string, value string) {
		if strings.TrimSpace(*target) == "" {
			*target = value
		}
	}

	fill(&cfg.Source.Pattern, def.Source.Pattern)
	cfg.Source.Delimiter = resolveDelimiter(cfg.Source.Delimiter, def.Source.Delimiter)
	fill(&cfg.Source.Encoding, def.Source.Encoding)
	fill(&cfg.Source.POSeparator, def.Source.POSeparator)
	if len(cfg.Source.DateLayouts) == 0 {
		cfg.Source.DateLayouts = def.Source.DateLayouts
	}

	fill(&cfg.SAP.DateFormat, def.SAP.DateFormat)
	fill(&cfg.Output.CompiledFile, def.Output.CompiledFile)
	fill(&cfg.Output.ManagedFile, def.Output.ManagedFile)
	fill(&cfg.Output.HeaderFile, def.Output.HeaderFile)
	fill(&cfg.Output.DetailFile, def.Output.DetailFile)
	fill(&cfg.Policy.ExcludedStatus, def.Policy.ExcludedStatus)
	fill(&cfg.Policy.UnmappedPolicy, def.Policy.UnmappedPolicy)
	fill(&cfg.LogLevel, def.LogLevel)
}

// delimiterAliases maps delimiter names to the character they stand for.
var delimiterAliases = map[string]string{
	`\t`:        "\t",
	"tab":       "\t",
	"pipe":      "|",
	"semicolon": ";",
	"comma":     ",",
}

// resolveDelimiter turns a delimiter name into its character. A single
// character, whitespace included, is kept as is; a blank value falls back
// to def.
func resolveDelimiter(value, def string) string {
	if len([]rune(value)) == 1 {
		return value
	}
	name := strings.ToLower(strings.TrimSpace(value))
	if name == "" {
		return def
	}
	if d, ok := delimiterAliases[name]; ok {
		return d
	}
	return strings.TrimSpace(value)
}

// validate checks the configuration for values the pipeline cannot work with.
func validate(cfg *Config) error {
	if len([]rune(cfg.Source.Delimiter)) != 1 {
		return fmt.Errorf("source.delimiter must be a single character, got %q", cfg.Source.Delimiter)
	}

	switch cfg.Policy.UnmappedPolicy {
	case UnmappedKeep, UnmappedDrop:
	default:
		return fmt.Errorf("policy.unmapped_policy must be %q or %q, got %q",
			UnmappedKeep, UnmappedDrop, cfg.Policy.UnmappedPolicy)
	}

	sheets := map[string]SheetSettings{
		"item_master":   cfg.ItemMaster,
		"store_master":  cfg.StoreMaster,
		"status_master": cfg.StatusMaster,
	}
	for name, sheet := range sheets {
		if sheet.SheetIndex < 0 || sheet.HeaderRow < 0 {
			return fmt.Errorf("%s: sheet_index and header_row must not be negative", name)
		}
	}

	return nil
}

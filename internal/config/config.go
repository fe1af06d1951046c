// =============================================================================
// Delivery Reconciler - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration. Settings come from three layers, lowest precedence first:
//   1. Built-in defaults (applyMainConfigDefaults)
//   2. The YAML config file (config.yaml)
//   3. DELIVERIES_* environment variables, read through Viper
//
// A missing config file is not an error: the defaults are used.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/delivery-reconciler/internal/types"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// Store selects and configures the persistence backend.
	Store StoreConfig `yaml:"store"`

	// Import configures the primary (header-less) import.
	Import ImportConfig `yaml:"import"`

	// Status configures the status (header-keyed) import.
	Status StatusConfig `yaml:"status"`

	// Regions is the closed set of known region names.
	// Default: North, South, East, West, Central
	Regions []string `yaml:"regions"`

	// Locale is the BCP 47 tag used for alphabetical sorting.
	// Default: "en"
	Locale string `yaml:"locale"`

	// Log configures the zerolog logger.
	Log LogConfig `yaml:"log"`

	// Export configures XLSX report output.
	Export ExportConfig `yaml:"export"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	// Backend is one of "file", "redis" or "memory".
	// Default: "file"
	Backend string `yaml:"backend"`

	// Path is the JSON file used by the file backend.
	// Default: "./data/deliveries.json"
	Path string `yaml:"path"`

	// RedisAddr is the host:port of the Redis server.
	// Default: "localhost:6379"
	RedisAddr string `yaml:"redis_addr"`

	// RedisPassword is optional.
	RedisPassword string `yaml:"redis_password"`

	// RedisDB selects the Redis logical database.
	RedisDB int `yaml:"redis_db"`

	// Key is the single key the record set is stored under.
	// Default: "deliveries:records"
	Key string `yaml:"key"`
}

// ImportConfig configures the primary import.
type ImportConfig struct {
	// Mode is "append" (default) or "upsert".
	Mode string `yaml:"mode"`

	// InitialStatus is the status given to newly imported records.
	// Default: "Pending"
	InitialStatus string `yaml:"initial_status"`

	// DataStartRow is the 1-based row where data begins.
	// Set to 2 when the sheet carries a header row.
	// Default: 1
	DataStartRow int `yaml:"data_start_row"`

	// Sheet is the worksheet to read. Empty means the first sheet.
	Sheet string `yaml:"sheet"`

	// CSVDelimiter is used when the input file is a CSV export.
	// Default: ","
	CSVDelimiter string `yaml:"csv_delimiter"`

	// CSVEncoding is "UTF-8" (default), "Windows-1252" or "ISO-8859-1".
	CSVEncoding string `yaml:"csv_encoding"`

	// Columns maps record fields to column letters.
	Columns ColumnsConfig `yaml:"columns"`
}

// ColumnsConfig maps record fields to spreadsheet column letters.
type ColumnsConfig struct {
	Driver    string `yaml:"driver"`    // Default: A
	Region    string `yaml:"region"`    // Default: B
	Total     string `yaml:"total"`     // Default: C
	Completed string `yaml:"completed"` // Default: D
	Date      string `yaml:"date"`      // Default: E
}

// StatusConfig lists the accepted header names for each status field.
// Header matching is case-insensitive and ignores surrounding spaces.
type StatusConfig struct {
	DriverHeaders    []string `yaml:"driver_headers"`
	StatusHeaders    []string `yaml:"status_headers"`
	CompletedHeaders []string `yaml:"completed_headers"`
	TotalHeaders     []string `yaml:"total_headers"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level: trace, debug, info, warn, error. Default: "info"
	Level string `yaml:"level"`

	// Format: auto, console, json. Default: "auto"
	Format string `yaml:"format"`

	// Output: stderr, stdout, discard or a file path. Default: "stderr"
	Output string `yaml:"output"`
}

// ExportConfig configures report export.
type ExportConfig struct {
	// OutputDir is where exported workbooks are written.
	// Default: "./exports"
	OutputDir string `yaml:"output_dir"`

	// FileNameFormat supports the {timestamp}, {uuid} and {region} placeholders.
	// Default: "deliveries_{timestamp}.xlsx"
	FileNameFormat string `yaml:"file_name_format"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file. A missing file
//     yields the default configuration.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read or parsed, or is invalid.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration used when no file is present.
func Default() *MainConfig {
	var config MainConfig
	applyMainConfigDefaults(&config)
	return &config
}

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "DELIVERIES"

// NewEnv returns a Viper instance that resolves keys such as
// "store.redis_addr" from DELIVERIES_STORE_REDIS_ADDR.
func NewEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// ApplyEnv overrides settings with values bound in v. Keys follow the YAML
// layout with "." separators, e.g. "store.backend" which Viper maps to
// DELIVERIES_STORE_BACKEND when AutomaticEnv is enabled.
func ApplyEnv(config *MainConfig, v *viper.Viper) error {
	if v == nil {
		return nil
	}

	overrideString(v, "store.backend", &config.Store.Backend)
	overrideString(v, "store.path", &config.Store.Path)
	overrideString(v, "store.redis_addr", &config.Store.RedisAddr)
	overrideString(v, "store.redis_password", &config.Store.RedisPassword)
	overrideString(v, "store.key", &config.Store.Key)
	if v.IsSet("store.redis_db") {
		config.Store.RedisDB = v.GetInt("store.redis_db")
	}
	overrideString(v, "import.mode", &config.Import.Mode)
	overrideString(v, "import.initial_status", &config.Import.InitialStatus)
	overrideString(v, "import.csv_encoding", &config.Import.CSVEncoding)
	overrideString(v, "locale", &config.Locale)
	overrideString(v, "log.level", &config.Log.Level)
	overrideString(v, "log.format", &config.Log.Format)
	overrideString(v, "log.output", &config.Log.Output)
	overrideString(v, "export.output_dir", &config.Export.OutputDir)

	return validateMainConfig(config)
}

func overrideString(v *viper.Viper, key string, dst *string) {
	if s := v.GetString(key); s != "" {
		*dst = s
	}
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.Store.Backend == "" {
		config.Store.Backend = "file"
	}
	if config.Store.Path == "" {
		config.Store.Path = "./data/deliveries.json"
	}
	if config.Store.RedisAddr == "" {
		config.Store.RedisAddr = "localhost:6379"
	}
	if config.Store.Key == "" {
		config.Store.Key = "deliveries:records"
	}

	if config.Import.Mode == "" {
		config.Import.Mode = "append"
	}
	if config.Import.InitialStatus == "" {
		config.Import.InitialStatus = "Pending"
	}
	if config.Import.DataStartRow == 0 {
		config.Import.DataStartRow = 1
	}
	if config.Import.CSVDelimiter == "" {
		config.Import.CSVDelimiter = ","
	}
	cols := &config.Import.Columns
	if cols.Driver == "" {
		cols.Driver = "A"
	}
	if cols.Region == "" {
		cols.Region = "B"
	}
	if cols.Total == "" {
		cols.Total = "C"
	}
	if cols.Completed == "" {
		cols.Completed = "D"
	}
	if cols.Date == "" {
		cols.Date = "E"
	}

	if len(config.Status.DriverHeaders) == 0 {
		config.Status.DriverHeaders = []string{"driver", "motorista", "name"}
	}
	if len(config.Status.StatusHeaders) == 0 {
		config.Status.StatusHeaders = []string{"status", "situacao"}
	}
	if len(config.Status.CompletedHeaders) == 0 {
		config.Status.CompletedHeaders = []string{"completed", "completeddeliveries", "entregues"}
	}
	if len(config.Status.TotalHeaders) == 0 {
		config.Status.TotalHeaders = []string{"total", "totaldeliveries"}
	}

	if len(config.Regions) == 0 {
		for _, r := range types.DefaultRegions {
			config.Regions = append(config.Regions, string(r))
		}
	}
	if config.Locale == "" {
		config.Locale = "en"
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "auto"
	}
	if config.Log.Output == "" {
		config.Log.Output = "stderr"
	}

	if config.Export.OutputDir == "" {
		config.Export.OutputDir = "./exports"
	}
	if config.Export.FileNameFormat == "" {
		config.Export.FileNameFormat = "deliveries_{timestamp}.xlsx"
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	switch config.Store.Backend {
	case "file", "redis", "memory":
	default:
		return fmt.Errorf("unknown store backend %q", config.Store.Backend)
	}

	switch config.Import.Mode {
	case "append", "upsert":
	default:
		return fmt.Errorf("unknown import mode %q", config.Import.Mode)
	}

	if config.Import.DataStartRow < 1 {
		return fmt.Errorf("import.data_start_row must be >= 1, got %d", config.Import.DataStartRow)
	}

	seen := make(map[string]bool, len(config.Regions))
	for _, r := range config.Regions {
		key := strings.ToLower(strings.TrimSpace(r))
		if key == "" {
			return fmt.Errorf("empty region name")
		}
		if strings.EqualFold(key, string(types.RegionAll)) {
			return fmt.Errorf("%q is reserved for the region filter", r)
		}
		if seen[key] {
			return fmt.Errorf("duplicate region %q", r)
		}
		seen[key] = true
	}

	return nil
}

// RegionSet returns the configured regions as a types.RegionSet.
func (c *MainConfig) RegionSet() types.RegionSet {
	set := make(types.RegionSet, 0, len(c.Regions))
	for _, r := range c.Regions {
		set = append(set, types.Region(strings.TrimSpace(r)))
	}
	return set
}

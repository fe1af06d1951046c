// =============================================================================
// Delivery Reconciler - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (deliveries)
//   ├── importCmd  (deliveries import <file>)
//   ├── statusCmd  (deliveries status <file>)
//   ├── validateCmd (deliveries validate <file>)
//   ├── showCmd    (deliveries show)
//   ├── exportCmd  (deliveries export)
//   ├── clearCmd   (deliveries clear)
//   └── versionCmd (deliveries version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads .env.local and .env into the environment
//   2. Reads config.yaml (defaults when missing)
//   3. Applies DELIVERIES_* environment overrides through Viper
//   4. Builds the zerolog logger
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/delivery-reconciler/internal/config"
	"github.com/ginjaninja78/delivery-reconciler/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// logLevel overrides the configured log level.
var logLevel string

// mainConfig and logger are set up by setup before any subcommand runs.
var (
	mainConfig *config.MainConfig
	logger     = zerolog.Nop()
)

// envFiles are loaded in order. godotenv never overrides a variable that is
// already set, so the first file wins.
var envFiles = []string{".env.local", ".env"}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "deliveries",
	Short: "Delivery Reconciler - import delivery sheets and reconcile driver status",
	Long: `Delivery Reconciler keeps a persistent set of delivery records built from
spreadsheet imports.

A primary import reads a header-less sheet (driver, region, total, completed,
date) and appends one record per row. A status import reads a sheet with a
header row and updates the matching records by driver name.

Example Usage:
  deliveries import ./routes.xlsx          # Import the day's routes
  deliveries status ./status.csv           # Apply a status sheet
  deliveries show --region North --order desc
  deliveries export --order alpha --out ./reports`,

	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,

	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
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
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel,
		"log-level",
		"",
		"Log level (trace, debug, info, warn, error)",
	)
}

// setup loads configuration and builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return err
	}
	if err := config.ApplyEnv(cfg, config.NewEnv()); err != nil {
		return fmt.Errorf("invalid environment override: %w", err)
	}

	logCfg := &logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	if verbose {
		logCfg.Level = "debug"
	}
	if logLevel != "" {
		logCfg.Level = logLevel
	}

	mainConfig = cfg
	logger = logging.New(logCfg).With().Str("command", cmd.Name()).Logger()
	logger.Debug().
		Str("config", cfgFile).
		Str("store", cfg.Store.Backend).
		Msg("configuration loaded")
	return nil
}

// =============================================================================
// Delivery Reconciler - Import Command
// =============================================================================
//
// COMMAND USAGE:
//   deliveries import <file> [--mode append|upsert]
//
// The file is a header-less XLSX or CSV sheet. Each non-empty row becomes one
// record with the configured initial status. A file that cannot be decoded
// leaves the stored record set untouched.
//
// =============================================================================

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/delivery-reconciler/internal/converter"
	"github.com/ginjaninja78/delivery-reconciler/internal/validation"
)

// importMode overrides import.mode from the config file.
var importMode string

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a primary delivery sheet",
	Long: `Import a header-less delivery sheet (XLSX or CSV).

Columns, by default:
  A  driver     (rows without a driver are skipped)
  B  region
  C  total deliveries
  D  completed deliveries
  E  date (optional)

In append mode every row becomes a new record. In upsert mode a row with the
same driver, region and date as an existing record replaces its counts.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importMode, "mode", "", "Merge mode: append or upsert (default from config)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if importMode != "" {
		switch converter.ImportMode(strings.ToLower(importMode)) {
		case converter.ModeAppend, converter.ModeUpsert:
			mainConfig.Import.Mode = strings.ToLower(importMode)
		default:
			return fmt.Errorf("--mode: unknown import mode %q", importMode)
		}
	}

	// Decode first: a bad file must not touch the stored set.
	rows, err := decodeImportFile(args[0])
	if err != nil {
		return err
	}

	check := validation.CheckRows(rows, validationOptions())
	for _, issue := range check.Issues {
		logger.Debug().Msg(issue.Error())
	}

	t, release, err := openTracker(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	stats := t.ImportRows(cmd.Context(), rows)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Rows read:  %d\n", stats.RowsRead)
	fmt.Fprintf(out, "Imported:   %d\n", stats.Imported)
	if stats.Updated > 0 {
		fmt.Fprintf(out, "Updated:    %d\n", stats.Updated)
	}
	fmt.Fprintf(out, "Skipped:    %d\n", stats.Skipped)
	if len(stats.UnknownRegions) > 0 {
		fmt.Fprintf(out, "Unknown regions: %s\n", strings.Join(stats.UnknownRegions, ", "))
	}
	fmt.Fprintf(out, "Records:    %d\n", t.Len())
	if len(check.Issues) > 0 {
		fmt.Fprintf(out, "Issues:     %d errors, %d warnings (see 'deliveries validate %s')\n",
			check.ErrorCount, check.WarningCount, args[0])
	}

	if err := t.LastSaveError(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: changes were not saved: %v\n", err)
	}
	return nil
}

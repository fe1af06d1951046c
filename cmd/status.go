// =============================================================================
// Delivery Reconciler - Status Command
// =============================================================================
//
// COMMAND USAGE:
//   deliveries status <file> [--strict]
//
// The file is an XLSX or CSV sheet whose first row holds headers. Rows are
// matched to records by driver name (case and spacing ignored); the first
// matching record gets the row's status and, when present, its counts.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// strict fails the command when any status row matched no record.
var strict bool

var statusCmd = &cobra.Command{
	Use:   "status <file>",
	Short: "Apply a status sheet to the stored records",
	Long: `Apply a status sheet (XLSX or CSV with a header row) to the stored records.

Recognized headers (case, spaces, "_" and "-" ignored) are configured under
status: in config.yaml. By default:
  driver:    Driver, Motorista, Name
  status:    Status, Situacao
  completed: Completed, CompletedDeliveries, Entregues
  total:     Total, TotalDeliveries

Rows that match no record are listed and otherwise ignored. Count cells
that are not numbers are listed and leave the stored count unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error when a row matches no record")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	rows, err := decodeStatusFile(args[0])
	if err != nil {
		return err
	}

	t, release, err := openTracker(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	report := t.ApplyStatus(cmd.Context(), rows)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report.String())
	for _, driver := range report.Unmatched {
		fmt.Fprintf(out, "  unmatched: %s\n", driver)
	}
	for _, cell := range report.InvalidCounts {
		fmt.Fprintf(out, "  invalid count: %s (not applied)\n", cell)
	}
	for _, driver := range report.Ambiguous {
		fmt.Fprintf(out, "  ambiguous: %s (first record updated)\n", driver)
	}

	if err := t.LastSaveError(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: changes were not saved: %v\n", err)
	}
	if strict && report.HasUnmatched() {
		return fmt.Errorf("%d status rows matched no record", len(report.Unmatched))
	}
	return nil
}

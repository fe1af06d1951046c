// =============================================================================
// Delivery Reconciler - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   deliveries validate <file> [--warnings-as-errors]
//
// Decodes a primary sheet and reports every cell the import would skip,
// zero out or keep as-is against expectations. Nothing is imported and the
// store is not opened.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/delivery-reconciler/internal/validation"
)

// warningsAsErrors fails validation on warnings too.
var warningsAsErrors bool

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a primary delivery sheet without importing it",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&warningsAsErrors, "warnings-as-errors", false, "Treat warnings as errors")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	rows, err := decodeImportFile(args[0])
	if err != nil {
		return err
	}

	opts := validationOptions()
	opts.TreatWarningsAsErrors = warningsAsErrors
	result := validation.CheckRows(rows, opts)

	out := cmd.OutOrStdout()
	for _, issue := range result.Issues {
		fmt.Fprintln(out, issue.Error())
	}
	fmt.Fprintf(out, "%d rows checked, %d errors, %d warnings\n",
		result.RowsChecked, result.ErrorCount, result.WarningCount)

	if !result.IsValid {
		return fmt.Errorf("validation failed for %s", args[0])
	}
	return nil
}

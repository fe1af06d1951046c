// =============================================================================
// Delivery Reconciler - Show Command
// =============================================================================
//
// COMMAND USAGE:
//   deliveries show [--region R] [--order asc|desc|alpha] [--format table|json]
//
// Prints a projection of the stored records. The stored set is not modified.
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/delivery-reconciler/internal/types"
)

// Selector flags shared by show and export.
var (
	showRegion string
	showOrder  string
	showFormat string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored records",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showRegion, "region", "All", "Region filter, or All")
	showCmd.Flags().StringVar(&showOrder, "order", "ascending", "Sort order: ascending, descending or alphabetical")
	showCmd.Flags().StringVarP(&showFormat, "format", "f", "table", "Output format: table or json")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, _ []string) error {
	query, err := parseQuery(showRegion, showOrder)
	if err != nil {
		return err
	}

	t, release, err := openTracker(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	records := t.View(query)

	switch showFormat {
	case "json":
		return writeJSON(cmd.OutOrStdout(), records)
	case "table", "":
		return writeTable(cmd.OutOrStdout(), records)
	default:
		return fmt.Errorf("--format: unknown output format %q", showFormat)
	}
}

// writeJSON prints records as an indented JSON array.
func writeJSON(w io.Writer, records []types.DeliveryRecord) error {
	if records == nil {
		records = []types.DeliveryRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// writeTable prints records as a text table.
func writeTable(w io.Writer, records []types.DeliveryRecord) error {
	table := tablewriter.NewTable(w)
	table.Header("Driver", "Region", "Date", "Total", "Completed", "%", "Status")

	for _, r := range records {
		if err := table.Append(
			r.Driver,
			string(r.Region),
			r.Date,
			strconv.Itoa(r.TotalDeliveries),
			strconv.Itoa(r.CompletedDeliveries),
			strconv.FormatFloat(r.DeliveryPercentage, 'f', 1, 64),
			r.Status,
		); err != nil {
			return err
		}
	}
	return table.Render()
}

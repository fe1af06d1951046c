// =============================================================================
// Delivery Reconciler - Export Command
// =============================================================================
//
// COMMAND USAGE:
//   deliveries export [--region R] [--order O] [--out DIR]
//
// Writes the same projection as 'show' to an XLSX workbook. The file name
// comes from export.file_name_format in config.yaml.
//
// =============================================================================

package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/delivery-reconciler/internal/types"
	"github.com/ginjaninja78/delivery-reconciler/internal/xlsxwriter"
	"github.com/ginjaninja78/delivery-reconciler/pkg/utils"
)

var (
	exportRegion string
	exportOrder  string
	exportDir    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the stored records to an XLSX workbook",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportRegion, "region", "All", "Region filter, or All")
	exportCmd.Flags().StringVar(&exportOrder, "order", "ascending", "Sort order: ascending, descending or alphabetical")
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", "", "Output directory (default from config)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	query, err := parseQuery(exportRegion, exportOrder)
	if err != nil {
		return err
	}

	t, release, err := openTracker(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	records := t.View(query)

	var buf bytes.Buffer
	if err := xlsxwriter.Write(&buf, records); err != nil {
		return err
	}

	dir := exportDir
	if dir == "" {
		dir = mainConfig.Export.OutputDir
	}
	region := string(query.Region)
	if region == "" {
		region = string(types.RegionAll)
	}
	name := utils.GenerateOutputFileName(mainConfig.Export.FileNameFormat, map[string]string{
		"region": region,
		"order":  string(query.Order),
	}, ".xlsx")
	path := filepath.Join(dir, name)

	if err := utils.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	logger.Info().Str("path", path).Int("records", len(records)).Msg("export written")
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", len(records), path)
	return nil
}

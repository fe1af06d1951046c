// =============================================================================
// Delivery Reconciler - Engine Wiring
// =============================================================================
//
// Helpers shared by the subcommands: building the store and tracker from the
// loaded configuration, decoding input files, and parsing view selectors.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ginjaninja78/delivery-reconciler/internal/converter"
	"github.com/ginjaninja78/delivery-reconciler/internal/csvparser"
	"github.com/ginjaninja78/delivery-reconciler/internal/projection"
	"github.com/ginjaninja78/delivery-reconciler/internal/reconcile"
	"github.com/ginjaninja78/delivery-reconciler/internal/store"
	"github.com/ginjaninja78/delivery-reconciler/internal/tracker"
	"github.com/ginjaninja78/delivery-reconciler/internal/types"
	"github.com/ginjaninja78/delivery-reconciler/internal/validation"
	"github.com/ginjaninja78/delivery-reconciler/internal/xlsxparser"
	"github.com/ginjaninja78/delivery-reconciler/pkg/utils"
)

// =============================================================================
// TRACKER
// =============================================================================

// openTracker builds the configured store and loads it into a tracker.
// The returned func releases the store.
func openTracker(ctx context.Context) (*tracker.Tracker, func(), error) {
	s, err := store.New(mainConfig.Store, logger)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if c, ok := s.(io.Closer); ok {
			_ = c.Close()
		}
	}

	t, err := tracker.New(ctx, s, trackerOptions(), logger)
	if err != nil {
		release()
		return nil, nil, err
	}
	return t, release, nil
}

// trackerOptions maps the loaded configuration onto engine options.
func trackerOptions() tracker.Options {
	cols := mainConfig.Import.Columns
	return tracker.Options{
		Import: converter.ImportOptions{
			Normalize: converter.NormalizeOptions{
				Columns: converter.Columns{
					Driver:    cols.Driver,
					Region:    cols.Region,
					Total:     cols.Total,
					Completed: cols.Completed,
					Date:      cols.Date,
				},
				Regions: mainConfig.RegionSet(),
			},
			Mode:          converter.ImportMode(mainConfig.Import.Mode),
			InitialStatus: mainConfig.Import.InitialStatus,
		},
		Reconcile: reconcile.Options{
			DriverHeaders:    mainConfig.Status.DriverHeaders,
			StatusHeaders:    mainConfig.Status.StatusHeaders,
			CompletedHeaders: mainConfig.Status.CompletedHeaders,
			TotalHeaders:     mainConfig.Status.TotalHeaders,
		},
	}
}

// validationOptions mirrors the import settings for the row checker.
func validationOptions() validation.Options {
	norm := trackerOptions().Import.Normalize
	return validation.Options{
		Columns:  norm.Columns,
		Regions:  norm.Regions,
		StartRow: mainConfig.Import.DataStartRow,
	}
}

// =============================================================================
// DECODING
// =============================================================================

// decodeImportFile reads a primary (header-less) sheet.
func decodeImportFile(path string) ([]types.ImportedRow, error) {
	data, format, err := utils.ReadInputFile(path)
	if err != nil {
		return nil, err
	}

	source := filepath.Base(path)
	if format == utils.FormatCSV {
		return csvparser.DecodePositional(data, csvSettings(source, mainConfig.Import.DataStartRow))
	}
	return xlsxparser.DecodePositional(data, xlsxparser.Options{
		Source:       source,
		Sheet:        mainConfig.Import.Sheet,
		DataStartRow: mainConfig.Import.DataStartRow,
	})
}

// decodeStatusFile reads a status sheet. The header row is always the first
// non-empty row, so the configured start row does not apply.
func decodeStatusFile(path string) ([]types.StatusRow, error) {
	data, format, err := utils.ReadInputFile(path)
	if err != nil {
		return nil, err
	}

	source := filepath.Base(path)
	if format == utils.FormatCSV {
		return csvparser.DecodeHeaded(data, csvSettings(source, 1))
	}
	return xlsxparser.DecodeHeaded(data, xlsxparser.Options{
		Source:       source,
		Sheet:        mainConfig.Import.Sheet,
		DataStartRow: 1,
	})
}

func csvSettings(source string, startRow int) csvparser.Settings {
	return csvparser.Settings{
		Source:       source,
		Delimiter:    mainConfig.Import.CSVDelimiter,
		Encoding:     mainConfig.Import.CSVEncoding,
		DataStartRow: startRow,
	}
}

// =============================================================================
// SELECTORS
// =============================================================================

// parseQuery validates the --region and --order flag values.
func parseQuery(region, order string) (projection.Query, error) {
	r, err := types.ParseRegionFilter(region, mainConfig.RegionSet())
	if err != nil {
		return projection.Query{}, fmt.Errorf("--region: %w", err)
	}
	o, err := types.ParseSortOrder(order)
	if err != nil {
		return projection.Query{}, fmt.Errorf("--order: %w", err)
	}
	return projection.Query{
		Region: r,
		Order:  o,
		Locale: projection.ParseLocale(mainConfig.Locale),
	}, nil
}

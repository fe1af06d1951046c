// =============================================================================
// Delivery Reconciler - XLSX Writer Module
// =============================================================================
//
// This module writes a projection of the record set to an XLSX workbook.
//
// SHEET LAYOUT:
//
//   | Driver | Region | Date       | Total | Completed | Percentage | Status  |
//   |--------|--------|------------|-------|-----------|------------|---------|
//   | Ana    | North  | 2024-03-01 | 10    | 8         | 80.00      | Late    |
//   | Beto   | South  |            | 5     | 5         | 100.00     | Pending |
//
// The header row is bold and frozen. Counts and percentages are written as
// numbers so the sheet stays sortable in a spreadsheet application.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/delivery-reconciler/internal/types"
)

// DefaultSheetName is the name of the exported worksheet.
const DefaultSheetName = "Deliveries"

// Header is the column header row.
var Header = []string{"Driver", "Region", "Date", "Total", "Completed", "Percentage", "Status"}

// =============================================================================
// WRITE OPTIONS
// =============================================================================

// Options contains options for workbook generation.
type Options struct {
	// SheetName is the worksheet name.
	// Default: "Deliveries"
	SheetName string

	// FreezeHeader keeps the header row visible while scrolling.
	// Default: true
	FreezeHeader bool

	// ColumnWidth is applied to every column. Zero keeps excelize's default.
	// Default: 14
	ColumnWidth float64
}

// DefaultOptions returns the default write options.
func DefaultOptions() Options {
	return Options{
		SheetName:    DefaultSheetName,
		FreezeHeader: true,
		ColumnWidth:  14,
	}
}

// =============================================================================
// WORKBOOK GENERATION
// =============================================================================

// Write encodes records as a workbook with the default options.
func Write(w io.Writer, records []types.DeliveryRecord) error {
	return WriteWithOptions(w, records, DefaultOptions())
}

// WriteWithOptions encodes records as a workbook.
//
// PARAMETERS:
//   - w: Destination for the workbook bytes.
//   - records: The rows to write, in order. Usually a projection.
//   - options: Sheet name and layout.
//
// RETURNS:
//   - An error if the workbook cannot be built or written.
func WriteWithOptions(w io.Writer, records []types.DeliveryRecord, options Options) error {
	if options.SheetName == "" {
		options.SheetName = DefaultSheetName
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), options.SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	sheet := options.SheetName

	if err := writeHeader(f, sheet); err != nil {
		return err
	}

	percentStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("failed to create percentage style: %w", err)
	}

	for i, record := range records {
		row := i + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", row, err)
		}
		values := []any{
			record.Driver,
			string(record.Region),
			record.Date,
			record.TotalDeliveries,
			record.CompletedDeliveries,
			record.DeliveryPercentage,
			record.Status,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}

	if len(records) > 0 {
		last := fmt.Sprintf("F%d", len(records)+1)
		if err := f.SetCellStyle(sheet, "F2", last, percentStyle); err != nil {
			return fmt.Errorf("failed to style percentages: %w", err)
		}
	}

	if options.ColumnWidth > 0 {
		if err := f.SetColWidth(sheet, "A", "G", options.ColumnWidth); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if options.FreezeHeader {
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("failed to freeze header: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// writeHeader writes the bold header row.
func writeHeader(f *excelize.File, sheet string) error {
	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "G1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	return nil
}

// =============================================================================
// Delivery Reconciler - XLSX Sheet Decoder
// =============================================================================
//
// This module turns spreadsheet bytes into raw row sequences. It knows
// nothing about delivery records; it only produces the two row shapes the
// engine consumes:
//
//   - Position-keyed rows for the primary import. Sheets carry no header
//     row, so every cell is keyed by its column letter:
//
//       | A      | B     | C  | D | E          |
//       |--------|-------|----|---|------------|
//       | Ana    | North | 10 | 8 | 45321      |   -> {"A":"Ana","B":"North",...}
//
//   - Header-keyed rows for the status import. The first non-empty row is
//     the header and every following row is keyed by header text:
//
//       | Driver | Status |
//       |--------|--------|
//       | ana    | Late   |                        -> {"Driver":"ana","Status":"Late"}
//
// Cells are read with RawCellValue so date cells arrive as Excel serial
// numbers and the normalizer decides how to interpret them. Empty cells are
// omitted from the row map.
//
// Any failure to open or read the workbook is returned as a
// *types.DecodeError so callers can tell a corrupt file from an empty one.
//
// =============================================================================

package xlsxparser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/delivery-reconciler/internal/types"
)

// =============================================================================
// DECODER OPTIONS
// =============================================================================

// Options controls which sheet and rows are decoded.
type Options struct {
	// Source names the input in error messages (usually the file name).
	Source string

	// Sheet is the worksheet to read. Empty means the first sheet.
	Sheet string

	// DataStartRow is the 1-based row where decoding starts.
	// Default: 1 (Row 1)
	DataStartRow int
}

// DefaultOptions returns options that read the first sheet from row 1.
func DefaultOptions() Options {
	return Options{DataStartRow: 1}
}

// =============================================================================
// DECODER FUNCTIONS
// =============================================================================

// DecodePositional decodes a header-less sheet into position-keyed rows.
//
// PARAMETERS:
//   - data: The raw workbook bytes.
//   - opts: Sheet and start row selection.
//
// RETURNS:
//   - One ImportedRow per non-empty sheet row, in sheet order.
//   - A *types.DecodeError if the workbook cannot be read.
func DecodePositional(data []byte, opts Options) ([]types.ImportedRow, error) {
	rows, err := readRows(data, opts)
	if err != nil {
		return nil, err
	}

	result := make([]types.ImportedRow, 0, len(rows))
	for _, row := range rows {
		if isRowEmpty(row) {
			continue
		}
		imported := make(types.ImportedRow, len(row))
		for i, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			name, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return nil, types.NewDecodeError(opts.Source, err)
			}
			imported[name] = cell
		}
		result = append(result, imported)
	}

	return result, nil
}

// DecodeHeaded decodes a sheet whose first non-empty row is a header.
//
// PARAMETERS:
//   - data: The raw workbook bytes.
//   - opts: Sheet and start row selection. DataStartRow points at or before
//     the header row.
//
// RETURNS:
//   - One StatusRow per non-empty data row, keyed by trimmed header text.
//     Columns with a blank header are dropped; for duplicate headers the
//     leftmost column wins.
//   - A *types.DecodeError if the workbook cannot be read.
func DecodeHeaded(data []byte, opts Options) ([]types.StatusRow, error) {
	rows, err := readRows(data, opts)
	if err != nil {
		return nil, err
	}
	return HeadedRows(rows), nil
}

// HeadedRows keys each row after the first non-empty one by the header text.
// It is shared with the CSV decoder.
func HeadedRows(rows [][]string) []types.StatusRow {
	var headers []string
	result := []types.StatusRow{}

	for _, row := range rows {
		if isRowEmpty(row) {
			continue
		}
		if headers == nil {
			headers = make([]string, len(row))
			for i, h := range row {
				headers[i] = strings.TrimSpace(h)
			}
			continue
		}

		statusRow := make(types.StatusRow, len(headers))
		for i, cell := range row {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			if _, exists := statusRow[headers[i]]; exists {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			statusRow[headers[i]] = cell
		}
		result = append(result, statusRow)
	}

	return result
}

// readRows opens the workbook and returns the selected sheet's rows from
// DataStartRow on.
func readRows(data []byte, opts Options) ([][]string, error) {
	if opts.DataStartRow < 1 {
		opts.DataStartRow = 1
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, types.NewDecodeError(opts.Source, err)
	}
	defer func() { _ = f.Close() }()

	sheetName := opts.Sheet
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
		if sheetName == "" {
			return nil, types.NewDecodeError(opts.Source, types.ErrNoSheet)
		}
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, types.NewDecodeError(opts.Source, fmt.Errorf("failed to read rows of sheet %q: %w", sheetName, err))
	}

	start := opts.DataStartRow - 1
	if start >= len(rows) {
		return nil, nil
	}
	return rows[start:], nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

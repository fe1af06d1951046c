// =============================================================================
// Delivery Reconciler - CSV Decoder
// =============================================================================
//
// This module decodes CSV exports of delivery spreadsheets into the same two
// row shapes the XLSX decoder produces, so the engine never needs to know
// which format a file came in:
//   - DecodePositional: header-less rows keyed by column letter (A, B, ...)
//   - DecodeHeaded:     rows keyed by the header text of the first row
//
// FEATURES:
//   - Configurable delimiter (comma, semicolon, pipe, tab)
//   - Windows-1252 / ISO-8859-1 input converted to UTF-8
//   - UTF-8 byte order mark stripped
//   - Ragged rows accepted
//
// =============================================================================

package csvparser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/delivery-reconciler/internal/types"
	"github.com/ginjaninja78/delivery-reconciler/internal/xlsxparser"
)

// =============================================================================
// CSV SETTINGS
// =============================================================================

// Settings contains settings for decoding CSV input.
type Settings struct {
	// Source names the input in error messages.
	Source string

	// Delimiter separates fields. Accepts a single character or one of
	// "tab", "pipe", "semicolon".
	// Default: ","
	Delimiter string

	// Encoding of the input: "UTF-8" (default), "Windows-1252", "ISO-8859-1".
	Encoding string

	// DataStartRow is the 1-based row where decoding starts.
	// Default: 1
	DataStartRow int
}

// =============================================================================
// DECODER FUNCTIONS
// =============================================================================

// DecodePositional decodes header-less CSV data into position-keyed rows.
//
// PARAMETERS:
//   - data: The raw file bytes.
//   - settings: Delimiter, encoding and start row.
//
// RETURNS:
//   - One ImportedRow per non-empty line, keyed by column letter.
//   - A *types.DecodeError if the data is not valid CSV.
func DecodePositional(data []byte, settings Settings) ([]types.ImportedRow, error) {
	rows, err := readAll(data, settings)
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
				return nil, types.NewDecodeError(settings.Source, err)
			}
			imported[name] = cell
		}
		result = append(result, imported)
	}
	return result, nil
}

// DecodeHeaded decodes CSV data whose first non-empty line is a header.
func DecodeHeaded(data []byte, settings Settings) ([]types.StatusRow, error) {
	rows, err := readAll(data, settings)
	if err != nil {
		return nil, err
	}
	return xlsxparser.HeadedRows(rows), nil
}

// readAll reads every record from DataStartRow on.
func readAll(data []byte, settings Settings) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var reader io.Reader = bytes.NewReader(data)
	switch strings.ToUpper(strings.ReplaceAll(settings.Encoding, "_", "-")) {
	case "", "UTF-8", "UTF8":
	case "WINDOWS-1252", "CP1252":
		reader = transform.NewReader(reader, charmap.Windows1252.NewDecoder())
	case "ISO-8859-1", "LATIN1", "LATIN-1":
		reader = transform.NewReader(reader, charmap.ISO8859_1.NewDecoder())
	default:
		return nil, types.NewDecodeError(settings.Source, fmt.Errorf("unsupported encoding %q", settings.Encoding))
	}

	csvReader := csv.NewReader(reader)
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, types.NewDecodeError(settings.Source, fmt.Errorf("failed to read CSV: %w", err))
	}

	start := settings.DataStartRow - 1
	if start < 0 {
		start = 0
	}
	if start >= len(allRows) {
		return nil, nil
	}
	return allRows[start:], nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings Settings) {
	switch strings.ToLower(settings.Delimiter) {
	case "\\t", "\t", "tab":
		reader.Comma = '\t'
	case "|", "pipe":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Allow variable number of fields per row.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

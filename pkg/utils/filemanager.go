// =============================================================================
// Delivery Reconciler - File Utilities
// =============================================================================
//
// This module provides the file handling shared by the CLI, the file store
// and the report exporter:
//   - Reading input spreadsheets and detecting their format
//   - Atomic writes (temp file + rename) so a crash never leaves a
//     half-written store file behind
//   - Output file naming with {timestamp} / {uuid} placeholders
//
// =============================================================================

package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/delivery-reconciler/internal/types"
)

// =============================================================================
// INPUT FILES
// =============================================================================

// Format identifies the container format of an input spreadsheet.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatXLS  Format = "xls"
)

// MaxInputSize caps how much of an input file is read into memory.
const MaxInputSize = 64 << 20

// DetectFormat picks the decoder from the file extension. Unknown
// extensions are treated as XLSX so the decoder reports a proper decode
// error for them.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", ".tsv":
		return FormatCSV
	case ".xls":
		return FormatXLS
	default:
		return FormatXLSX
	}
}

// ReadInputFile reads an input spreadsheet.
//
// PARAMETERS:
//   - path: The path to the spreadsheet.
//
// RETURNS:
//   - The file contents and detected format.
//   - An error if the file is missing, a directory, or too large. Legacy
//     .xls workbooks fail with a types.ErrDecode error.
func ReadInputFile(path string) ([]byte, Format, error) {
	if DetectFormat(path) == FormatXLS {
		return nil, FormatXLS, types.NewDecodeError(filepath.Base(path),
			errors.New("unsupported Excel 97-2003 (.xls) workbook, save it as .xlsx"))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open input file: %w", err)
	}
	if info.IsDir() {
		return nil, "", fmt.Errorf("input %s is a directory", path)
	}
	if info.Size() > MaxInputSize {
		return nil, "", fmt.Errorf("input %s is %d bytes, limit is %d", path, info.Size(), MaxInputSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read input file: %w", err)
	}
	return data, DetectFormat(path), nil
}

// =============================================================================
// ATOMIC WRITES
// =============================================================================

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it over path. Readers see either the old or the new content.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op after a successful rename.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates a unique output file name.
//
// PARAMETERS:
//   - format: The format string for the file name. Placeholders are
//     {uuid} (a random UUID), {timestamp} (YYYYMMDD_HHMMSS) and {date}
//     (YYYYMMDD).
//   - params: Extra placeholder values, e.g. {"region": "North"}.
//   - ext: The required extension including the dot, e.g. ".xlsx".
//
// RETURNS:
//   - The generated file name, always ending in ext.
//
// EXAMPLE:
//
//	format: "deliveries_{region}_{timestamp}"
//	params: {"region": "North"}
//	output: "deliveries_North_20240115_143022.xlsx"
func GenerateOutputFileName(format string, params map[string]string, ext string) string {
	return generateOutputFileName(format, params, ext, time.Now())
}

func generateOutputFileName(format string, params map[string]string, ext string, now time.Time) string {
	replacements := []string{
		"{uuid}", uuid.NewString(),
		"{timestamp}", now.Format("20060102_150405"),
		"{date}", now.Format("20060102"),
	}
	for key, value := range params {
		replacements = append(replacements, "{"+key+"}", sanitizeFileNamePart(value))
	}

	result := strings.NewReplacer(replacements...).Replace(format)

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}
	return result
}

// sanitizeFileNamePart keeps placeholder values from introducing path
// separators or spaces into a file name.
func sanitizeFileNamePart(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, s)
}

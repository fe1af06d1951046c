package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/delivery-reconciler/internal/types"
)

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatCSV, DetectFormat("routes.CSV"))
	assert.Equal(t, FormatXLSX, DetectFormat("routes.xlsx"))
	assert.Equal(t, FormatXLSX, DetectFormat("routes"))
	assert.Equal(t, FormatXLS, DetectFormat("routes.XLS"))
}

func TestReadInputFileRejectsLegacyWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.xls")
	require.NoError(t, os.WriteFile(path, []byte{0xD0, 0xCF, 0x11, 0xE0}, 0o644))

	_, _, err := ReadInputFile(path)
	require.ErrorIs(t, err, types.ErrDecode)
	assert.Contains(t, err.Error(), "save it as .xlsx")
	assert.Contains(t, err.Error(), "routes.xls")
}

func TestReadInputFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "status.csv")
	require.NoError(t, os.WriteFile(path, []byte("driver,status\n"), 0o644))

	data, format, err := ReadInputFile(path)
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)
	assert.Equal(t, "driver,status\n", string(data))

	_, _, err = ReadInputFile(filepath.Join(dir, "missing.xlsx"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, _, err = ReadInputFile(dir)
	assert.Error(t, err)
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")

	require.NoError(t, WriteFileAtomic(path, []byte("one"), 0o600))
	require.NoError(t, WriteFileAtomic(path, []byte("two"), 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must be cleaned up")
	assert.FileExists(t, path)
}

func TestGenerateOutputFileName(t *testing.T) {
	now := time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC)

	got := generateOutputFileName("deliveries_{region}_{timestamp}", map[string]string{"region": "North West"}, ".xlsx", now)
	assert.Equal(t, "deliveries_North_West_20240115_143022.xlsx", got)

	got = generateOutputFileName("report_{date}.XLSX", nil, ".xlsx", now)
	assert.Equal(t, "report_20240115.XLSX", got)

	a := generateOutputFileName("{uuid}", nil, ".xlsx", now)
	b := generateOutputFileName("{uuid}", nil, ".xlsx", now)
	assert.NotEqual(t, a, b)
}

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/delivery-reconciler/internal/types"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type workspace struct {
	dir   string
	store string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	dir := t.TempDir()
	ws := workspace{dir: dir, store: filepath.Join(dir, "data", "deliveries.json")}

	cfg := fmt.Sprintf(`store:
  backend: file
  path: %q
log:
  output: discard
export:
  output_dir: %q
`, ws.store, filepath.Join(dir, "exports"))
	ws.write(t, "config.yaml", cfg)
	return ws
}

func (ws workspace) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(ws.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// run executes the CLI with fresh flag values.
func (ws workspace) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	importMode, strict, warningsAsErrors = "", false, false
	showRegion, showOrder, showFormat = "All", "ascending", "table"
	exportRegion, exportOrder, exportDir = "All", "ascending", ""
	verbose, logLevel = false, ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(ws.dir, "config.yaml")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func (ws workspace) records(t *testing.T, args ...string) []types.DeliveryRecord {
	t.Helper()
	out, err := ws.run(t, append([]string{"show", "--format", "json"}, args...)...)
	require.NoError(t, err)

	var records []types.DeliveryRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records), out)
	return records
}

// =============================================================================
// TESTS
// =============================================================================

func TestImportStatusShow(t *testing.T) {
	ws := newWorkspace(t)
	routes := ws.write(t, "routes.csv", "Ana,North,10,8\nBeto,South,5,5\n,North,1,1\n")
	status := ws.write(t, "status.csv", "Driver,Status\nana,Late\nZed,Done\n")

	out, err := ws.run(t, "import", routes)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported:   2")
	assert.Contains(t, out, "Skipped:    1")

	out, err = ws.run(t, "status", status)
	require.NoError(t, err)
	assert.Contains(t, out, "1 matched")
	assert.Contains(t, out, "unmatched: Zed")

	records := ws.records(t)
	require.Len(t, records, 2)
	assert.Equal(t, "Ana", records[0].Driver)
	assert.Equal(t, "Late", records[0].Status)
	assert.Equal(t, 80.0, records[0].DeliveryPercentage)
	assert.Equal(t, "Pending", records[1].Status)

	north := ws.records(t, "--region", "north")
	require.Len(t, north, 1)
	assert.Equal(t, "Ana", north[0].Driver)

	desc := ws.records(t, "--order", "desc")
	assert.Equal(t, "Beto", desc[0].Driver)

	_, err = ws.run(t, "status", status, "--strict")
	assert.Error(t, err)
}

func TestImportXLSX(t *testing.T) {
	ws := newWorkspace(t)

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Ana", "North", 10, 8}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	path := filepath.Join(ws.dir, "routes.xlsx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	_, err = ws.run(t, "import", path)
	require.NoError(t, err)

	records := ws.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, types.Region("North"), records[0].Region)
	assert.Equal(t, 8, records[0].CompletedDeliveries)
}

func TestImportCorruptFileKeepsStore(t *testing.T) {
	ws := newWorkspace(t)
	_, err := ws.run(t, "import", ws.write(t, "routes.csv", "Ana,North,10,8\n"))
	require.NoError(t, err)

	_, err = ws.run(t, "import", ws.write(t, "broken.xlsx", "not a workbook"))
	require.ErrorIs(t, err, types.ErrDecode)

	assert.Len(t, ws.records(t), 1)
}

func TestImportLegacyWorkbook(t *testing.T) {
	ws := newWorkspace(t)

	_, err := ws.run(t, "import", ws.write(t, "routes.xls", "legacy"))
	require.ErrorIs(t, err, types.ErrDecode)
	assert.Contains(t, err.Error(), "save it as .xlsx")

	_, err = ws.run(t, "status", ws.write(t, "status.xls", "legacy"))
	assert.ErrorIs(t, err, types.ErrDecode)
	assert.NoFileExists(t, ws.store)
}

func TestStatusInvalidCount(t *testing.T) {
	ws := newWorkspace(t)
	_, err := ws.run(t, "import", ws.write(t, "routes.csv", "Ana,North,10,8\n"))
	require.NoError(t, err)

	out, err := ws.run(t, "status", ws.write(t, "status.csv", "Driver,Total,Status\nAna,n/a,Late\n"))
	require.NoError(t, err)
	assert.Contains(t, out, `invalid count: Ana: total "n/a" (not applied)`)

	records := ws.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, "Late", records[0].Status)
	assert.Equal(t, 10, records[0].TotalDeliveries)
	assert.Equal(t, 80.0, records[0].DeliveryPercentage)
}

func TestShowRejectsUnknownSelectors(t *testing.T) {
	ws := newWorkspace(t)

	_, err := ws.run(t, "show", "--region", "Atlantis")
	assert.ErrorIs(t, err, types.ErrInvalidSelector)

	_, err = ws.run(t, "show", "--order", "sideways")
	assert.ErrorIs(t, err, types.ErrInvalidSelector)
}

func TestShowTable(t *testing.T) {
	ws := newWorkspace(t)
	_, err := ws.run(t, "import", ws.write(t, "routes.csv", "Ana,North,10,8\n"))
	require.NoError(t, err)

	out, err := ws.run(t, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Ana")
	assert.Contains(t, out, "80.0")
}

func TestExport(t *testing.T) {
	ws := newWorkspace(t)
	_, err := ws.run(t, "import", ws.write(t, "routes.csv", "Ana,North,10,8\nBeto,South,5,5\n"))
	require.NoError(t, err)

	out, err := ws.run(t, "export", "--region", "South")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 records")

	files, err := filepath.Glob(filepath.Join(ws.dir, "exports", "*.xlsx"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	f, err := excelize.OpenFile(files[0])
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Deliveries")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Beto", rows[1][0])
}

func TestClear(t *testing.T) {
	ws := newWorkspace(t)
	_, err := ws.run(t, "import", ws.write(t, "routes.csv", "Ana,North,10,8\n"))
	require.NoError(t, err)

	out, err := ws.run(t, "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 1 records")
	assert.NoFileExists(t, ws.store)
	assert.Empty(t, ws.records(t))
}

func TestImportModeFlag(t *testing.T) {
	ws := newWorkspace(t)
	routes := ws.write(t, "routes.csv", "Ana,North,10,8\n")

	_, err := ws.run(t, "import", routes)
	require.NoError(t, err)
	out, err := ws.run(t, "import", routes, "--mode", "upsert")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated:    1")
	assert.Len(t, ws.records(t), 1)

	_, err = ws.run(t, "import", routes, "--mode", "merge")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	ws := newWorkspace(t)

	out, err := ws.run(t, "validate", ws.write(t, "good.csv", "Ana,North,10,8\n"))
	require.NoError(t, err)
	assert.Contains(t, out, "1 rows checked, 0 errors, 0 warnings")

	bad := ws.write(t, "bad.csv", "Ana,North,ten,8\nBeto,Atlantis,5,5\n")
	out, err = ws.run(t, "validate", bad)
	assert.Error(t, err)
	assert.Contains(t, out, "[ERROR] row 1, column C (total)")
	assert.Contains(t, out, "[WARNING] row 2, column B (region)")

	_, err = ws.run(t, "validate", ws.write(t, "warn.csv", "Beto,Atlantis,5,5\n"), "--warnings-as-errors")
	assert.Error(t, err)

	assert.NoFileExists(t, ws.store)
}

func TestVersion(t *testing.T) {
	ws := newWorkspace(t)
	out, err := ws.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    "+Version)
}

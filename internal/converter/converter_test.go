package converter_test

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/delivery-reconciler/internal/converter"
	"github.com/ginjaninja78/delivery-reconciler/internal/types"
)

var regions = types.RegionSet(types.DefaultRegions)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func importOpts(mode converter.ImportMode) converter.ImportOptions {
	return converter.ImportOptions{
		Normalize:     converter.NormalizeOptions{Regions: regions},
		Mode:          mode,
		InitialStatus: "Pending",
		NewID:         sequentialIDs(),
	}
}

// =============================================================================
// COERCION
// =============================================================================

func TestToInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{nil, 0},
		{8, 8},
		{int64(12), 12},
		{8.9, 8},
		{float32(3.2), 3},
		{"10", 10},
		{" 7 ", 7},
		{"8,0", 8},
		{"2.5", 2},
		{"abc", 0},
		{"", 0},
		{-4, 0},
		{"-4", 0},
		{true, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, converter.ToInt(tt.in), "input %#v", tt.in)
	}
}

func TestToText(t *testing.T) {
	assert.Equal(t, "", converter.ToText(nil))
	assert.Equal(t, "Ana", converter.ToText("  Ana "))
	assert.Equal(t, "42", converter.ToText(42.0))
	assert.Equal(t, "4.5", converter.ToText(4.5))
	assert.Equal(t, "7", converter.ToText(7))
	assert.Equal(t, "2024-03-01", converter.ToText(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)))
}

func TestToDate(t *testing.T) {
	assert.Equal(t, "", converter.ToDate(nil))
	assert.Equal(t, "2024-01-15", converter.ToDate(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-01-15", converter.ToDate("2024-01-15"))
	assert.Equal(t, "2024-01-15", converter.ToDate("15/01/2024"))
	// Excel serial 45306 is 2024-01-15 in the 1900 date system.
	assert.Equal(t, "2024-01-15", converter.ToDate(45306.0))
	assert.Equal(t, "2024-01-15", converter.ToDate("45306"))
	assert.Equal(t, "next week", converter.ToDate(" next week "))
}

// =============================================================================
// NORMALIZER
// =============================================================================

func TestNormalize(t *testing.T) {
	record, ok := converter.Normalize(types.ImportedRow{
		"A": "  Ana   Silva ",
		"B": "north",
		"C": "10",
		"D": 8.0,
		"E": "45306",
	}, converter.NormalizeOptions{Regions: regions})

	require.True(t, ok)
	assert.Equal(t, "Ana Silva", record.Driver)
	assert.Equal(t, types.Region("North"), record.Region)
	assert.Equal(t, 10, record.TotalDeliveries)
	assert.Equal(t, 8, record.CompletedDeliveries)
	assert.InDelta(t, 80.0, record.DeliveryPercentage, 1e-9)
	assert.Equal(t, "2024-01-15", record.Date)
	assert.Empty(t, record.ID)
	assert.Empty(t, record.Status)
}

func TestNormalizeSkipsRowsWithoutDriver(t *testing.T) {
	for _, row := range []types.ImportedRow{
		{},
		{"A": "   "},
		{"A": nil, "B": "North", "C": 3},
	} {
		_, ok := converter.Normalize(row, converter.NormalizeOptions{})
		assert.False(t, ok, "row %v", row)
	}
}

func TestNormalizePercentageBounds(t *testing.T) {
	rows := []types.ImportedRow{
		{"A": "zero", "C": 0, "D": 5},
		{"A": "missing"},
		{"A": "text", "C": "lots", "D": "some"},
		{"A": "over", "C": 3, "D": 9},
		{"A": "negative", "C": -3, "D": -1},
		{"A": "ok", "C": 3, "D": 1},
	}
	for _, row := range rows {
		record, ok := converter.Normalize(row, converter.NormalizeOptions{})
		require.True(t, ok)
		assert.GreaterOrEqual(t, record.DeliveryPercentage, 0.0, record.Driver)
		assert.LessOrEqual(t, record.DeliveryPercentage, 100.0, record.Driver)
		if record.TotalDeliveries == 0 {
			assert.Equal(t, 0.0, record.DeliveryPercentage, record.Driver)
		}
	}
}

func TestNormalizeCustomColumns(t *testing.T) {
	record, ok := converter.Normalize(types.ImportedRow{"C": "Ana", "A": "South", "B": 4, "D": 2}, converter.NormalizeOptions{
		Columns: converter.Columns{Driver: "c", Region: "A", Total: "B", Completed: "D"},
		Regions: regions,
	})
	require.True(t, ok)
	assert.Equal(t, "Ana", record.Driver)
	assert.Equal(t, types.Region("South"), record.Region)
	assert.InDelta(t, 50.0, record.DeliveryPercentage, 1e-9)
}

func TestMatchKey(t *testing.T) {
	assert.Equal(t, converter.MatchKey("ana"), converter.MatchKey("  ANA "))
	assert.Equal(t, converter.MatchKey("Ana  Silva"), converter.MatchKey("ana silva"))
	assert.Equal(t, converter.MatchKey("JOÃO"), converter.MatchKey("joão"))
	assert.NotEqual(t, converter.MatchKey("Ana"), converter.MatchKey("Anna"))
}

// =============================================================================
// BATCH IMPORTER
// =============================================================================

func TestImportBatchEmptyIsIdentity(t *testing.T) {
	existing := types.RecordSet{{ID: "x", Driver: "Ana"}}

	got, stats := converter.ImportBatch(nil, existing, importOpts(converter.ModeAppend))
	assert.Equal(t, existing, got)
	assert.Equal(t, 0, stats.Imported)

	got, _ = converter.ImportBatch([]types.ImportedRow{}, nil, importOpts(converter.ModeAppend))
	assert.Nil(t, got)
}

func TestImportBatchAppends(t *testing.T) {
	existing := types.RecordSet{{ID: "old", Driver: "Carla", Region: "East", Status: "Completed"}}

	rows := []types.ImportedRow{
		{"A": "Ana", "B": "North", "C": 10, "D": 8},
		{"B": "North"},
		{"A": "Beto", "B": "South", "C": 5, "D": 5},
		{"A": "Ana", "B": "North", "C": 10, "D": 8},
		{"A": "Dani", "B": "Mars", "C": 1, "D": 1},
	}
	got, stats := converter.ImportBatch(rows, existing, importOpts(converter.ModeAppend))

	require.Len(t, got, 5)
	assert.Equal(t, existing[0], got[0])
	assert.Equal(t, []string{"Carla", "Ana", "Beto", "Ana", "Dani"}, drivers(got))
	assert.Equal(t, "id-1", got[1].ID)
	assert.Equal(t, "id-2", got[2].ID)
	assert.Equal(t, "Pending", got[1].Status)
	assert.InDelta(t, 80.0, got[1].DeliveryPercentage, 1e-9)
	assert.InDelta(t, 100.0, got[2].DeliveryPercentage, 1e-9)

	assert.Equal(t, 5, stats.RowsRead)
	assert.Equal(t, 4, stats.Imported)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, []string{"Mars"}, stats.UnknownRegions)

	// existing must not have grown or changed
	assert.Len(t, existing, 1)
}

func TestImportBatchAllSkippedReturnsExisting(t *testing.T) {
	existing := types.RecordSet{{ID: "x", Driver: "Ana"}}
	got, stats := converter.ImportBatch([]types.ImportedRow{{"B": "North"}}, existing, importOpts(converter.ModeAppend))
	assert.Equal(t, existing, got)
	assert.Equal(t, 1, stats.Skipped)
}

func TestImportBatchUpsert(t *testing.T) {
	existing := types.RecordSet{
		{ID: "a1", Driver: "Ana", Region: "North", Date: "2024-01-15", TotalDeliveries: 10, CompletedDeliveries: 2, DeliveryPercentage: 20, Status: "Late"},
	}
	rows := []types.ImportedRow{
		{"A": "ana ", "B": "NORTH", "C": 10, "D": 9, "E": "2024-01-15"},
		{"A": "Ana", "B": "North", "C": 4, "D": 4, "E": "2024-01-16"},
		{"A": "Beto", "B": "South", "C": 2, "D": 1},
		{"A": "beto", "B": "south", "C": 2, "D": 2},
	}
	got, stats := converter.ImportBatch(rows, existing, importOpts(converter.ModeUpsert))

	require.Len(t, got, 3)
	assert.Equal(t, "a1", got[0].ID)
	assert.Equal(t, "Late", got[0].Status)
	assert.Equal(t, 9, got[0].CompletedDeliveries)
	assert.InDelta(t, 90.0, got[0].DeliveryPercentage, 1e-9)
	assert.Equal(t, "2024-01-16", got[1].Date)
	assert.Equal(t, 2, got[2].CompletedDeliveries)

	assert.Equal(t, 2, stats.Imported)
	assert.Equal(t, 2, stats.Updated)

	// existing untouched
	assert.Equal(t, 2, existing[0].CompletedDeliveries)
}

func TestImportBatchDefaultIDsAreUnique(t *testing.T) {
	rows := []types.ImportedRow{{"A": "Ana"}, {"A": "Beto"}}
	got, _ := converter.ImportBatch(rows, nil, converter.ImportOptions{})
	require.Len(t, got, 2)
	assert.NotEmpty(t, got[0].ID)
	assert.NotEqual(t, got[0].ID, got[1].ID)
}

func drivers(set types.RecordSet) []string {
	out := make([]string, len(set))
	for i, r := range set {
		out[i] = r.Driver
	}
	return out
}

// =============================================================================
// Delivery Reconciler - Row Normalizer
// =============================================================================
//
// The normalizer converts one imported row into zero or one DeliveryRecord.
// Primary sheets carry no header row, so fields are read by column position
// through a fixed column table:
//
//   | Column | Field               |
//   |--------|---------------------|
//   | A      | driver              |
//   | B      | region              |
//   | C      | totalDeliveries     |
//   | D      | completedDeliveries |
//   | E      | date (optional)     |
//
// A row without a driver name is skipped, not rejected. The normalizer is a
// pure mapping; IDs and initial status are assigned by the importer.
//
// =============================================================================

package converter

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/ginjaninja78/delivery-reconciler/internal/types"
)

// =============================================================================
// COLUMN TABLE
// =============================================================================

// Columns maps record fields to column letters.
type Columns struct {
	Driver    string
	Region    string
	Total     string
	Completed string
	Date      string
}

// DefaultColumns returns the A-E column table.
func DefaultColumns() Columns {
	return Columns{
		Driver:    "A",
		Region:    "B",
		Total:     "C",
		Completed: "D",
		Date:      "E",
	}
}

// NormalizeOptions configures Normalize.
type NormalizeOptions struct {
	// Columns is the column table. Zero fields fall back to DefaultColumns.
	Columns Columns

	// Regions is the closed set of known regions. Region values are stored
	// with the set's spelling when they match case-insensitively.
	Regions types.RegionSet
}

// =============================================================================
// NORMALIZER
// =============================================================================

// Normalize converts one imported row into a record.
//
// PARAMETERS:
//   - row: The raw column-keyed row.
//   - opts: Column table and known regions.
//
// RETURNS:
//   - The normalized record, with ID and Status left empty.
//   - false if the row has no driver name and must be skipped.
func Normalize(row types.ImportedRow, opts NormalizeOptions) (types.DeliveryRecord, bool) {
	cols := opts.Columns.WithDefaults()

	driver := collapseSpaces(ToText(Cell(row, cols.Driver)))
	if driver == "" {
		return types.DeliveryRecord{}, false
	}

	region, _ := opts.Regions.Canonical(ToText(Cell(row, cols.Region)))

	record := types.DeliveryRecord{
		Driver: driver,
		Region: region,
		Date:   ToDate(Cell(row, cols.Date)),
	}
	record.SetCounts(ToInt(Cell(row, cols.Total)), ToInt(Cell(row, cols.Completed)))

	return record, true
}

// MatchKey is the normalized identifier used to link a status row to a
// record: trimmed, inner whitespace collapsed and Unicode case-folded. The
// same function must be applied to both sides of a match.
func MatchKey(driver string) string {
	return cases.Fold().String(collapseSpaces(driver))
}

// identityKey extends MatchKey with region and date. Upsert imports use it
// to decide whether a row describes an existing record.
func identityKey(r types.DeliveryRecord) string {
	return MatchKey(r.Driver) + "\x00" + strings.ToLower(string(r.Region)) + "\x00" + r.Date
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Cell looks a column up case-insensitively; decoders use upper-case letters.
func Cell(row types.ImportedRow, column string) any {
	if v, ok := row[column]; ok {
		return v
	}
	return row[strings.ToUpper(column)]
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// WithDefaults fills empty fields from DefaultColumns.
func (c Columns) WithDefaults() Columns {
	d := DefaultColumns()
	if c.Driver == "" {
		c.Driver = d.Driver
	}
	if c.Region == "" {
		c.Region = d.Region
	}
	if c.Total == "" {
		c.Total = d.Total
	}
	if c.Completed == "" {
		c.Completed = d.Completed
	}
	if c.Date == "" {
		c.Date = d.Date
	}
	return c
}

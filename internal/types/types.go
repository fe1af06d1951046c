// =============================================================================
// Delivery Reconciler - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - converter   (row normalization and batch import)
//   - reconcile   (status reconciliation)
//   - projection  (filter/sort views)
//   - store       (persistence)
//   - tracker     (state holder)
//
// =============================================================================

package types

import (
	"fmt"
	"strings"
)

// =============================================================================
// DELIVERY RECORD
// =============================================================================

// DeliveryRecord is one driver/route/day entry tracked by the engine.
type DeliveryRecord struct {
	// ID is assigned by the importer when the record is created.
	// Reconciliation never changes it.
	ID string `json:"id"`

	// Driver is the display and sort key. Never empty.
	Driver string `json:"driver"`

	// Region is the canonical region name. Never the "All" sentinel.
	Region Region `json:"region"`

	// Date is the optional delivery day in YYYY-MM-DD form.
	Date string `json:"date,omitempty"`

	// TotalDeliveries is the number of planned deliveries.
	TotalDeliveries int `json:"totalDeliveries"`

	// CompletedDeliveries is the number of deliveries done.
	CompletedDeliveries int `json:"completedDeliveries"`

	// DeliveryPercentage is derived from the two counts, see Percentage.
	DeliveryPercentage float64 `json:"deliveryPercentage"`

	// Status is the last known delivery status label.
	Status string `json:"status"`
}

// SetCounts replaces both counts and recomputes the derived percentage.
// Negative counts are stored as zero.
func (r *DeliveryRecord) SetCounts(total, completed int) {
	if total < 0 {
		total = 0
	}
	if completed < 0 {
		completed = 0
	}
	r.TotalDeliveries = total
	r.CompletedDeliveries = completed
	r.DeliveryPercentage = Percentage(total, completed)
}

// Percentage returns completed/total*100 clamped to [0,100].
// A zero total yields 0.
func Percentage(total, completed int) float64 {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return float64(completed) / float64(total) * 100
}

// RecordSet is the ordered sequence of delivery records.
type RecordSet []DeliveryRecord

// Clone returns an independent copy of the set.
// A nil set clones to nil.
func (s RecordSet) Clone() RecordSet {
	if s == nil {
		return nil
	}
	out := make(RecordSet, len(s))
	copy(out, s)
	return out
}

// =============================================================================
// RAW ROWS
// =============================================================================

// ImportedRow is one raw row of a header-less sheet, keyed by column letter
// ("A", "B", ...). Values have no guaranteed type.
type ImportedRow map[string]any

// StatusRow is one raw row of a status sheet, keyed by the header text found
// in the sheet's first row.
type StatusRow map[string]any

// =============================================================================
// REGIONS
// =============================================================================

// Region is a region name from the configured closed set.
type Region string

// RegionAll selects every record in a projection. It is never stored.
const RegionAll Region = "All"

// DefaultRegions is the known region set used when none is configured.
var DefaultRegions = []Region{"North", "South", "East", "West", "Central"}

// RegionSet is the closed set of known regions.
type RegionSet []Region

// Canonical returns the configured spelling of name, matched
// case-insensitively. ok is false when the name is not a known region.
func (rs RegionSet) Canonical(name string) (Region, bool) {
	name = strings.TrimSpace(name)
	for _, r := range rs {
		if strings.EqualFold(string(r), name) {
			return r, true
		}
	}
	return Region(name), false
}

// ParseRegionFilter parses a region selector. "All" (or "Todos") selects
// every region; any other value must be a known region.
func ParseRegionFilter(value string, known RegionSet) (Region, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, string(RegionAll)) || strings.EqualFold(value, "todos") {
		return RegionAll, nil
	}
	if r, ok := known.Canonical(value); ok {
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown region %q", ErrInvalidSelector, value)
}

// =============================================================================
// SORT ORDER
// =============================================================================

// SortOrder selects how a projection is ordered.
type SortOrder string

const (
	// SortAscending orders by delivery percentage, lowest first.
	SortAscending SortOrder = "ascending"

	// SortDescending orders by delivery percentage, highest first.
	SortDescending SortOrder = "descending"

	// SortAlphabetical orders by driver name.
	SortAlphabetical SortOrder = "alphabetical"
)

// ParseSortOrder parses a sort selector. The short forms asc, desc and alpha
// are accepted. An empty value means ascending.
func ParseSortOrder(value string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "asc", "ascending":
		return SortAscending, nil
	case "desc", "descending":
		return SortDescending, nil
	case "alpha", "alphabetical", "name":
		return SortAlphabetical, nil
	default:
		return "", fmt.Errorf("%w: unknown sort order %q", ErrInvalidSelector, value)
	}
}

// =============================================================================
// IMPORT STATISTICS
// =============================================================================

// ImportStats summarizes one batch import.
type ImportStats struct {
	// RowsRead is the number of rows handed to the importer.
	RowsRead int

	// Imported is the number of records appended to the set.
	Imported int

	// Updated is the number of existing records updated in upsert mode.
	Updated int

	// Skipped is the number of rows with no driver name.
	Skipped int

	// UnknownRegions lists region values that are not in the known set,
	// in first-seen order.
	UnknownRegions []string
}

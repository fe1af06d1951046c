package reconcile

import (
	"fmt"
	"strings"
)

// Report summarizes one reconciliation run.
type Report struct {
	// RowsRead is the number of status rows received.
	RowsRead int

	// Matched is the number of rows that found a record.
	Matched int

	// Changed is the number of matched rows that altered their record.
	Changed int

	// MissingIdentifier counts rows without a driver value.
	MissingIdentifier int

	// Unmatched lists driver values that matched no record, in row order.
	Unmatched []string

	// InvalidCounts lists count cells that were not applied because they
	// are not non-negative numbers, as "driver: field \"value\"".
	InvalidCounts []string

	// Ambiguous lists driver values that matched more than one record.
	// Only the first record in set order was updated for them.
	Ambiguous []string
}

// HasUnmatched reports whether any row was dropped for lack of a match.
func (r *Report) HasUnmatched() bool {
	return len(r.Unmatched) > 0
}

// String returns a one-line summary.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d rows, %d matched, %d changed", r.RowsRead, r.Matched, r.Changed)
	if n := len(r.Unmatched); n > 0 {
		fmt.Fprintf(&b, ", %d unmatched", n)
	}
	if r.MissingIdentifier > 0 {
		fmt.Fprintf(&b, ", %d without driver", r.MissingIdentifier)
	}
	if n := len(r.InvalidCounts); n > 0 {
		fmt.Fprintf(&b, ", %d invalid counts", n)
	}
	if n := len(r.Ambiguous); n > 0 {
		fmt.Fprintf(&b, ", %d ambiguous", n)
	}
	return b.String()
}

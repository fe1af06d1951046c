// Package reconcile applies a status-update sheet to an existing record set.
//
// Status sheets carry a header row. Each data row names a driver and one or
// more status fields; the driver is matched against the record set with
// converter.MatchKey, the same rule used when the records were imported.
// Reconciliation never adds or removes records.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/delivery-reconciler/internal/converter"
	"github.com/ginjaninja78/delivery-reconciler/internal/types"
)

// Options lists the accepted header names for each field. Header matching
// ignores case, spaces, underscores and hyphens.
type Options struct {
	DriverHeaders    []string
	StatusHeaders    []string
	CompletedHeaders []string
	TotalHeaders     []string
}

// DefaultOptions returns the built-in header aliases.
func DefaultOptions() Options {
	return Options{
		DriverHeaders:    []string{"driver", "motorista", "name"},
		StatusHeaders:    []string{"status", "situacao"},
		CompletedHeaders: []string{"completed", "completeddeliveries", "entregues"},
		TotalHeaders:     []string{"total", "totaldeliveries"},
	}
}

// Reconcile updates records in a copy of existing from the status rows.
//
// For every row with a driver value, the first record in set order whose
// match key equals the row's is updated: its status when the row has a
// non-blank status, and its counts when the row has non-negative numeric
// count cells. Other non-blank count cells are skipped and listed in the
// report's InvalidCounts.
// The percentage is recomputed, and ID and position are kept. Rows that
// match nothing are dropped from the set and listed in the report.
//
// existing is never modified; the returned set always has the same length.
func Reconcile(rows []types.StatusRow, existing types.RecordSet, opts Options) (types.RecordSet, *Report) {
	out := existing.Clone()
	report := &Report{RowsRead: len(rows)}

	index := make(map[string][]int, len(out))
	for i, r := range out {
		key := converter.MatchKey(r.Driver)
		index[key] = append(index[key], i)
	}

	fields := newHeaderSet(opts)
	ambiguous := make(map[string]bool)

	for _, row := range rows {
		cells := fields.extract(row)

		driver := converter.ToText(cells.driver)
		if driver == "" {
			report.MissingIdentifier++
			continue
		}

		key := converter.MatchKey(driver)
		matches := index[key]
		if len(matches) == 0 {
			report.Unmatched = append(report.Unmatched, driver)
			continue
		}
		if len(matches) > 1 && !ambiguous[key] {
			ambiguous[key] = true
			report.Ambiguous = append(report.Ambiguous, driver)
		}

		changed, rejected := apply(&out[matches[0]], cells)
		if changed {
			report.Changed++
		}
		for _, r := range rejected {
			report.InvalidCounts = append(report.InvalidCounts, driver+": "+r)
		}
		report.Matched++
	}

	return out, report
}

// apply writes the non-blank status fields into record and reports whether
// anything changed. Count cells that are not non-negative numbers are left
// out and returned as rejected.
func apply(record *types.DeliveryRecord, cells statusCells) (changed bool, rejected []string) {
	before := *record

	if status := converter.ToText(cells.status); status != "" {
		record.Status = status
	}

	total, completed := record.TotalDeliveries, record.CompletedDeliveries
	countsGiven := false
	if n, ok, text := count(cells.total); ok {
		total = n
		countsGiven = true
	} else if text != "" {
		rejected = append(rejected, fmt.Sprintf("total %q", text))
	}
	if n, ok, text := count(cells.completed); ok {
		completed = n
		countsGiven = true
	} else if text != "" {
		rejected = append(rejected, fmt.Sprintf("completed %q", text))
	}
	if countsGiven {
		record.SetCounts(total, completed)
	}

	return *record != before, rejected
}

// count parses a revised count cell. ok is false for blank cells and for
// values that are not non-negative numbers; text is the trimmed cell.
func count(value any) (n int, ok bool, text string) {
	text = converter.ToText(value)
	if text == "" || !converter.IsNumber(value) || converter.IsNegative(value) {
		return 0, false, text
	}
	return converter.ToInt(value), true, text
}

// =============================================================================
// HEADER LOOKUP
// =============================================================================

type statusCells struct {
	driver, status, completed, total any
}

// headerSet maps normalized header names to the field they feed and the
// alias position within that field's list.
type headerSet map[string]headerField

type headerField struct {
	field string
	rank  int
}

const (
	fieldDriver    = "driver"
	fieldStatus    = "status"
	fieldCompleted = "completed"
	fieldTotal     = "total"
)

func newHeaderSet(opts Options) headerSet {
	if len(opts.DriverHeaders) == 0 && len(opts.StatusHeaders) == 0 &&
		len(opts.CompletedHeaders) == 0 && len(opts.TotalHeaders) == 0 {
		opts = DefaultOptions()
	}

	hs := make(headerSet)
	add := func(field string, names []string) {
		for i, n := range names {
			key := normalizeHeader(n)
			if _, taken := hs[key]; !taken {
				hs[key] = headerField{field: field, rank: i}
			}
		}
	}
	add(fieldDriver, opts.DriverHeaders)
	add(fieldStatus, opts.StatusHeaders)
	add(fieldCompleted, opts.CompletedHeaders)
	add(fieldTotal, opts.TotalHeaders)
	return hs
}

// candidate is a non-blank row cell feeding a field.
type candidate struct {
	rank   int
	key    string
	header string
	value  any
}

// before orders candidates by alias position, then by header text.
func (c candidate) before(o candidate) bool {
	if c.rank != o.rank {
		return c.rank < o.rank
	}
	if c.key != o.key {
		return c.key < o.key
	}
	return c.header < o.header
}

// extract picks the status fields out of a row. Blank cells are ignored.
// When several headers feed the same field, the one listed first in the
// configured aliases wins.
func (hs headerSet) extract(row types.StatusRow) statusCells {
	chosen := make(map[string]candidate, 4)

	for header, value := range row {
		key := normalizeHeader(header)
		hf, ok := hs[key]
		if !ok || converter.ToText(value) == "" {
			continue
		}
		c := candidate{rank: hf.rank, key: strings.ToLower(strings.TrimSpace(header)), header: header, value: value}
		if prev, seen := chosen[hf.field]; seen && !c.before(prev) {
			continue
		}
		chosen[hf.field] = c
	}

	return statusCells{
		driver:    chosen[fieldDriver].value,
		status:    chosen[fieldStatus].value,
		completed: chosen[fieldCompleted].value,
		total:     chosen[fieldTotal].value,
	}
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

package converter

import (
	"github.com/google/uuid"

	"github.com/ginjaninja78/delivery-reconciler/internal/types"
)

// ImportMode selects how a batch is merged into the existing set.
type ImportMode string

const (
	// ModeAppend appends every normalized row, duplicates included.
	ModeAppend ImportMode = "append"

	// ModeUpsert updates the counts of the first record with the same driver,
	// region and date instead of appending a duplicate.
	ModeUpsert ImportMode = "upsert"
)

// ImportOptions configures ImportBatch.
type ImportOptions struct {
	Normalize NormalizeOptions

	// Mode defaults to ModeAppend.
	Mode ImportMode

	// InitialStatus is given to every new record.
	InitialStatus string

	// NewID generates record IDs. Defaults to uuid.NewString.
	NewID func() string
}

// ImportBatch normalizes rows and merges them into existing.
//
// PARAMETERS:
//   - rows: The decoded, position-keyed rows in sheet order.
//   - existing: The current record set. It is never modified.
//   - opts: Normalization, merge mode and defaults for new records.
//
// RETURNS:
//   - The new record set: existing records unchanged and in place, followed
//     by the new records in row order. An empty batch returns existing as-is.
//   - Statistics about the batch.
func ImportBatch(rows []types.ImportedRow, existing types.RecordSet, opts ImportOptions) (types.RecordSet, types.ImportStats) {
	stats := types.ImportStats{RowsRead: len(rows)}
	if len(rows) == 0 {
		return existing, stats
	}

	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	out := make(types.RecordSet, len(existing), len(existing)+len(rows))
	copy(out, existing)

	var index map[string]int
	if opts.Mode == ModeUpsert {
		index = make(map[string]int, len(out))
		for i, r := range out {
			if _, seen := index[identityKey(r)]; !seen {
				index[identityKey(r)] = i
			}
		}
	}

	seenUnknown := make(map[types.Region]bool)
	for _, row := range rows {
		record, ok := Normalize(row, opts.Normalize)
		if !ok {
			stats.Skipped++
			continue
		}

		if record.Region != "" && !isKnown(record.Region, opts.Normalize.Regions) && !seenUnknown[record.Region] {
			seenUnknown[record.Region] = true
			stats.UnknownRegions = append(stats.UnknownRegions, string(record.Region))
		}

		if index != nil {
			key := identityKey(record)
			if i, found := index[key]; found {
				out[i].SetCounts(record.TotalDeliveries, record.CompletedDeliveries)
				stats.Updated++
				continue
			}
			index[key] = len(out)
		}

		record.ID = newID()
		record.Status = opts.InitialStatus
		out = append(out, record)
		stats.Imported++
	}

	if stats.Imported == 0 && stats.Updated == 0 {
		return existing, stats
	}
	return out, stats
}

// isKnown reports whether region is in known. An empty set accepts anything.
func isKnown(region types.Region, known types.RegionSet) bool {
	if len(known) == 0 {
		return true
	}
	_, ok := known.Canonical(string(region))
	return ok
}

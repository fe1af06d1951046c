// Package projection computes filtered and sorted read-only views of a
// record set for display and export.
package projection

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ginjaninja78/delivery-reconciler/internal/types"
)

// Query selects and orders records.
type Query struct {
	// Region filters by exact region. types.RegionAll (or empty) keeps all.
	Region types.Region

	// Order defaults to types.SortAscending.
	Order types.SortOrder

	// Locale drives alphabetical collation. The zero tag uses the root
	// collation order.
	Locale language.Tag
}

// Project returns a new slice holding the records that pass the region
// filter, ordered by the query's sort order. All orders are stable: ties keep
// their order in records. records is never modified.
func Project(records types.RecordSet, q Query) []types.DeliveryRecord {
	out := make([]types.DeliveryRecord, 0, len(records))
	for _, r := range records {
		if q.Region == "" || q.Region == types.RegionAll || r.Region == q.Region {
			out = append(out, r)
		}
	}

	switch q.Order {
	case types.SortDescending:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].DeliveryPercentage > out[j].DeliveryPercentage
		})
	case types.SortAlphabetical:
		// A collator keeps internal buffers; one per call.
		c := collate.New(q.Locale)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].Driver, out[j].Driver) < 0
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].DeliveryPercentage < out[j].DeliveryPercentage
		})
	}

	return out
}

// ParseLocale parses a BCP 47 tag, falling back to English.
func ParseLocale(tag string) language.Tag {
	t, err := language.Parse(tag)
	if err != nil {
		return language.English
	}
	return t
}

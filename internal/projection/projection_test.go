package projection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ginjaninja78/delivery-reconciler/internal/projection"
	"github.com/ginjaninja78/delivery-reconciler/internal/types"
)

func record(id, driver string, region types.Region, total, completed int) types.DeliveryRecord {
	r := types.DeliveryRecord{ID: id, Driver: driver, Region: region, Status: "Pending"}
	r.SetCounts(total, completed)
	return r
}

func fixture() types.RecordSet {
	return types.RecordSet{
		record("1", "Ana", "North", 10, 8),   // 80
		record("2", "Beto", "South", 5, 5),   // 100
		record("3", "Élio", "North", 4, 1),   // 25
		record("4", "carla", "North", 10, 8), // 80, ties with Ana
		record("5", "Davi", "East", 0, 0),    // 0
	}
}

func ids(rs []types.DeliveryRecord) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestProjectAscendingIsStable(t *testing.T) {
	got := projection.Project(fixture(), projection.Query{Region: types.RegionAll, Order: types.SortAscending})
	assert.Equal(t, []string{"5", "3", "1", "4", "2"}, ids(got))
}

func TestProjectDescendingIsStable(t *testing.T) {
	got := projection.Project(fixture(), projection.Query{Order: types.SortDescending})
	assert.Equal(t, []string{"2", "1", "4", "3", "5"}, ids(got))
}

func TestProjectAlphabeticalIsLocaleAware(t *testing.T) {
	got := projection.Project(fixture(), projection.Query{Order: types.SortAlphabetical, Locale: language.English})
	// Case and accents do not push "carla" or "Élio" to the end.
	assert.Equal(t, []string{"Ana", "Beto", "carla", "Davi", "Élio"}, drivers(got))
}

func TestProjectRegionFilter(t *testing.T) {
	got := projection.Project(fixture(), projection.Query{Region: "North", Order: types.SortAscending})
	require.Len(t, got, 3)
	for _, r := range got {
		assert.Equal(t, types.Region("North"), r.Region)
	}

	assert.Empty(t, projection.Project(fixture(), projection.Query{Region: "West"}))
	assert.Len(t, projection.Project(fixture(), projection.Query{}), 5)
}

func TestProjectSortProperties(t *testing.T) {
	set := fixture()
	asc := projection.Project(set, projection.Query{Order: types.SortAscending})
	desc := projection.Project(set, projection.Query{Order: types.SortDescending})
	alpha := projection.Project(set, projection.Query{Order: types.SortAlphabetical, Locale: language.English})

	c := collate.New(language.English)
	for i := 1; i < len(set); i++ {
		assert.LessOrEqual(t, asc[i-1].DeliveryPercentage, asc[i].DeliveryPercentage)
		assert.GreaterOrEqual(t, desc[i-1].DeliveryPercentage, desc[i].DeliveryPercentage)
		assert.LessOrEqual(t, c.CompareString(alpha[i-1].Driver, alpha[i].Driver), 0)
	}
}

func TestProjectIsPureAndDeterministic(t *testing.T) {
	set := fixture()
	before := set.Clone()
	q := projection.Query{Region: types.RegionAll, Order: types.SortDescending}

	first := projection.Project(set, q)
	second := projection.Project(set, q)

	assert.Equal(t, first, second)
	assert.Equal(t, before, set)
}

func TestParseLocale(t *testing.T) {
	assert.Equal(t, language.MustParse("pt-BR"), projection.ParseLocale("pt-BR"))
	assert.Equal(t, language.English, projection.ParseLocale("!!"))
}

func drivers(rs []types.DeliveryRecord) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Driver
	}
	return out
}

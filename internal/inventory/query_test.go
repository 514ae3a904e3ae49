package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixtureItems() []Item {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []Item{
		{ID: "1", SKU: "HAM-01", Name: "Hammer", Category: "Tools", Quantity: 0, Location: "A-01", UnitCost: 5, UnitPrice: 9, Supplier: "Acme", Version: 1, CreatedAt: base, UpdatedAt: base},
		{ID: "2", SKU: "SCR-10", Name: "Screw pack", Category: "Fasteners", Quantity: 400, Location: "B-02", UnitCost: 0.1, UnitPrice: 0.25, Supplier: "Bolt Co", Version: 3, CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(5 * time.Hour)},
		{ID: "3", SKU: "WRN-02", Name: "Wrench", Category: "tools", Quantity: 4, Location: "A-02", UnitCost: 7, UnitPrice: 12, Supplier: "acme", Version: 2, CreatedAt: base.Add(2 * time.Hour), UpdatedAt: base.Add(2 * time.Hour)},
		{ID: "4", SKU: "DRL-07", Name: "Drill", Category: "Power Tools", Quantity: 12, Location: "A-01", UnitCost: 40, UnitPrice: 65, Supplier: "Voltix", Version: 1, CreatedAt: base.Add(3 * time.Hour), UpdatedAt: base.Add(3 * time.Hour)},
		{ID: "5", SKU: "NUT-03", Name: "Nut pack", Category: "Fasteners", Quantity: 4, Location: "B-01", UnitCost: 0.05, UnitPrice: 0.2, Supplier: "Bolt Co", Version: 1, CreatedAt: base.Add(4 * time.Hour), UpdatedAt: base.Add(4 * time.Hour)},
	}
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestFilterEmptyCriteriaReturnsAll(t *testing.T) {
	items := fixtureItems()
	got, err := Filter(items, Criteria{}, NewThresholds(5, nil))
	require.NoError(t, err)
	require.Equal(t, ids(items), ids(got))
}

func TestFilterCombinesPredicates(t *testing.T) {
	th := NewThresholds(5, nil)
	items := fixtureItems()

	got, err := Filter(items, Criteria{Category: ptr(" TOOLS ")}, th)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "3"}, ids(got))

	got, err = Filter(items, Criteria{Supplier: ptr("Acme"), StockStatus: ptr(StockStatusLowStock)}, th)
	require.NoError(t, err)
	require.Equal(t, []string{"3"}, ids(got))

	got, err = Filter(items, Criteria{MinQuantity: ptr(int64(4)), MaxQuantity: ptr(int64(12)), Location: ptr("a-01")}, th)
	require.NoError(t, err)
	require.Equal(t, []string{"4"}, ids(got))

	got, err = Filter(items, Criteria{MinQuantity: ptr(int64(20)), MaxQuantity: ptr(int64(10))}, th)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestFilterIsSubsetAndIdempotent(t *testing.T) {
	th := NewThresholds(5, nil)
	c := Criteria{Category: ptr("Fasteners")}
	once, err := Filter(fixtureItems(), c, th)
	require.NoError(t, err)
	twice, err := Filter(once, c, th)
	require.NoError(t, err)
	require.Equal(t, once, twice)
	require.Subset(t, ids(fixtureItems()), ids(once))
}

func TestFilterRejectsInvalidCriteria(t *testing.T) {
	_, err := Filter(fixtureItems(), Criteria{StockStatus: ptr(StockStatus("sold")), MinQuantity: ptr(int64(-1))}, NewThresholds(5, nil))
	require.ErrorIs(t, err, ErrInvalidQuery)
	require.Len(t, FieldErrors(err), 2)
}

func TestSearchMatchesAnyTextField(t *testing.T) {
	items := fixtureItems()

	require.Equal(t, []string{"2", "5"}, ids(Search(items, "PACK")))
	require.Equal(t, []string{"1", "3"}, ids(Search(items, "acme")))
	require.Equal(t, []string{"4"}, ids(Search(items, "drl")))
	require.Equal(t, []string{"2", "5"}, ids(Search(items, "b-0")))
	require.Equal(t, ids(items), ids(Search(items, "  ")))
	require.Empty(t, Search(items, "nothing-matches"))
}

func TestSearchKeepsWhitespaceInTerm(t *testing.T) {
	items := []Item{
		{ID: "1", SKU: "W-1", Name: "Walnut"},
		{ID: "2", SKU: "H-2", Name: "Hex Nut"},
	}

	require.Equal(t, []string{"2"}, ids(Search(items, " nut")))
	require.Equal(t, []string{"1", "2"}, ids(Search(items, "nut")))
	require.Equal(t, []string{"1", "2"}, ids(Search(items, "\t ")))
}

func TestSortByNumberBothDirections(t *testing.T) {
	th := NewThresholds(5, nil)
	items := fixtureItems()

	asc, err := Sort(items, SortSpec{Field: SortByQuantity, Direction: SortAsc}, th)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "3", "5", "4", "2"}, ids(asc))

	// equal quantities (3 and 5) keep input order when descending too
	desc, err := Sort(items, SortSpec{Field: SortByQuantity, Direction: SortDesc}, th)
	require.NoError(t, err)
	require.Equal(t, []string{"2", "4", "3", "5", "1"}, ids(desc))
}

func TestSortDefaultsToAscending(t *testing.T) {
	got, err := Sort(fixtureItems(), SortSpec{Field: SortByName}, NewThresholds(5, nil))
	require.NoError(t, err)
	require.Equal(t, []string{"4", "1", "5", "2", "3"}, ids(got))
}

func TestSortByTextIgnoresCase(t *testing.T) {
	got, err := Sort(fixtureItems(), SortSpec{Field: SortByCategory, Direction: SortAsc}, NewThresholds(5, nil))
	require.NoError(t, err)
	require.Equal(t, []string{"2", "5", "4", "1", "3"}, ids(got))
}

func TestSortByStockStatusRank(t *testing.T) {
	got, err := Sort(fixtureItems(), SortSpec{Field: SortByStockStatus, Direction: SortAsc}, NewThresholds(5, nil))
	require.NoError(t, err)
	require.Equal(t, []string{"1", "3", "5", "2", "4"}, ids(got))
}

func TestSortByUpdatedAtDesc(t *testing.T) {
	got, err := Sort(fixtureItems(), SortSpec{Field: SortByUpdatedAt, Direction: SortDesc}, NewThresholds(5, nil))
	require.NoError(t, err)
	require.Equal(t, []string{"2", "5", "4", "3", "1"}, ids(got))
}

func TestSortPreservesInput(t *testing.T) {
	items := fixtureItems()
	_, err := Sort(items, SortSpec{Field: SortByMargin, Direction: SortDesc}, NewThresholds(5, nil))
	require.NoError(t, err)
	require.Equal(t, ids(fixtureItems()), ids(items))
}

func TestSortRejectsUnknownFieldAndDirection(t *testing.T) {
	th := NewThresholds(5, nil)

	_, err := Sort(fixtureItems(), SortSpec{Field: "colour"}, th)
	require.ErrorIs(t, err, ErrInvalidQuery)

	_, err = Sort(fixtureItems(), SortSpec{Field: SortBySKU, Direction: "sideways"}, th)
	require.ErrorIs(t, err, ErrInvalidQuery)

	_, err = Sort(fixtureItems(), SortSpec{Direction: SortDesc}, th)
	require.ErrorIs(t, err, ErrInvalidQuery)

	got, err := Sort(fixtureItems(), SortSpec{}, th)
	require.NoError(t, err)
	require.Equal(t, ids(fixtureItems()), ids(got))
}

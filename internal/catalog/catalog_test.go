package catalog_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/catalog"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/domain"
)

func newStore() *catalog.MemoryStore {
	store := &catalog.MemoryStore{
		Regions: []*domain.Region{
			{ID: "R1", Name: "江南"},
			{ID: "R2", Name: "岭南"},
		},
		Tours: []*domain.Tour{
			{ID: 1, RegionID: "R1", Name: "t1", DurationDays: 3, Cost: 300},
			{ID: 2, RegionID: "R1", Name: "t2", DurationDays: 1, Cost: 100},
			{ID: 3, RegionID: "R2", Name: "t3", DurationDays: 2, Cost: 200},
			{ID: 4, RegionID: "R1", Name: "t4", DurationDays: 1, Cost: 150},
		},
		Attractions: []*domain.Attraction{
			{ID: 10, Name: "a10", CulturalValue: 5},
			{ID: 11, Name: "a11", CulturalValue: 3},
			{ID: 12, Name: "a12", CulturalValue: 7},
		},
	}
	store.Link(1, 10, 11)
	store.Link(2, 11)
	store.Link(3, 12)
	return store
}

// 检查 a ∈ attractions(t) ⇔ t ∈ tours(a)
func requireBidirectional(t *testing.T, cat *catalog.Catalog) {
	t.Helper()

	for _, tour := range cat.Tours() {
		for _, a := range cat.AttractionsOf(tour.ID) {
			require.Contains(t, cat.ToursOf(a.ID), tour)
		}
	}
	for id := int64(0); id < 100; id++ {
		a, ok := cat.Attraction(id)
		if !ok {
			continue
		}
		for _, tour := range cat.ToursOf(a.ID) {
			require.Contains(t, cat.AttractionsOf(tour.ID), a)
		}
	}
}

func TestLoad(t *testing.T) {
	cat := catalog.New(newStore())

	dropped, err := cat.Load()
	require.NoError(t, err)
	require.Zero(t, dropped)

	tours, attractions := cat.Len()
	require.Equal(t, 4, tours)
	require.Equal(t, 3, attractions)

	require.Equal(t, []int64{10, 11}, cat.AttractionIDsOf(1))
	require.Len(t, cat.ToursOf(11), 2)
	require.Equal(t, int64(1), cat.ToursOf(11)[0].ID)
	require.Equal(t, int64(2), cat.ToursOf(11)[1].ID)
	require.Equal(t, int64(8), cat.TourValue(1))
	require.Empty(t, cat.AttractionsOf(4))
	require.Zero(t, cat.TourValue(4))

	requireBidirectional(t, cat)
}

func TestLoadRegionsReturnsStoreContents(t *testing.T) {
	store := newStore()
	cat := catalog.New(store)

	regions, err := cat.LoadRegions()
	require.NoError(t, err)
	require.Equal(t, store.Regions, regions)
}

func TestLoadRelationshipsSkipsDanglingLinks(t *testing.T) {
	store := newStore()
	store.Link(99, 10) // 线路不存在
	store.Link(1, 98)  // 景点不存在
	store.TourAttractions = append(store.TourAttractions, nil)

	cat := catalog.New(store)
	dropped, err := cat.Load()
	require.NoError(t, err)
	require.Equal(t, 2, dropped)

	_, ok := cat.Tour(99)
	require.False(t, ok)
	require.Equal(t, []int64{10, 11}, cat.AttractionIDsOf(1))
	require.Len(t, cat.ToursOf(10), 1)

	requireBidirectional(t, cat)
}

func TestLoadRelationshipsWithoutLinks(t *testing.T) {
	store := newStore()
	store.TourAttractions = nil

	cat := catalog.New(store)
	dropped, err := cat.Load()
	require.NoError(t, err)
	require.Zero(t, dropped)

	for _, tour := range cat.Tours() {
		require.Empty(t, cat.AttractionsOf(tour.ID))
	}
	require.Empty(t, cat.ToursOf(10))
}

func TestReloadToursClearsStaleLinks(t *testing.T) {
	store := newStore()
	cat := catalog.New(store)
	_, err := cat.Load()
	require.NoError(t, err)

	// 删除线路 1 之后只重新加载线路，旧的关联不能残留在景点一侧
	store.Tours = store.Tours[1:]
	require.NoError(t, cat.LoadTours())
	require.Empty(t, cat.ToursOf(10))

	dropped, err := cat.LoadRelationships()
	require.NoError(t, err)
	require.Equal(t, 2, dropped)
	require.Empty(t, cat.ToursOf(10))
	require.Len(t, cat.ToursOf(11), 1)

	requireBidirectional(t, cat)
}

func TestToursInRegionSortedByDuration(t *testing.T) {
	cat := catalog.New(newStore())
	_, err := cat.Load()
	require.NoError(t, err)

	candidates := cat.ToursInRegion("R1")
	ids := make([]int64, 0, len(candidates))
	for _, tour := range candidates {
		ids = append(ids, tour.ID)
	}
	require.Equal(t, []int64{2, 4, 1}, ids)

	require.Empty(t, cat.ToursInRegion("R404"))
}

func TestLoadPropagatesStoreErrors(t *testing.T) {
	store := newStore()
	store.Err = errors.New("connection refused")

	cat := catalog.New(store)
	_, err := cat.Load()
	require.ErrorIs(t, err, store.Err)
	require.ErrorContains(t, err, "load tours")

	_, err = cat.LoadRegions()
	require.ErrorIs(t, err, store.Err)
}

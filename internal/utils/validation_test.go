package utils_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/catalog"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/utils"
)

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	store := &catalog.MemoryStore{
		Tours: []*domain.Tour{
			{ID: 1, RegionID: "R1", DurationDays: 2, Cost: 100},
			{ID: 2, RegionID: "R1", DurationDays: 3, Cost: 250.5},
			{ID: 3, RegionID: "R1", DurationDays: 1, Cost: 50},
			{ID: 4, RegionID: "R2", DurationDays: 1, Cost: 50},
		},
		Attractions: []*domain.Attraction{
			{ID: 1, CulturalValue: 5},
			{ID: 2, CulturalValue: 3},
			{ID: 3, CulturalValue: 4},
		},
	}
	store.Link(1, 1)
	store.Link(2, 2)
	store.Link(3, 1, 3)

	cat := catalog.New(store)
	_, err := cat.Load()
	require.NoError(t, err)
	return cat
}

func packageOf(cat *catalog.Catalog, regionID string, ids ...int64) *domain.Package {
	pkg := &domain.Package{RegionID: regionID}
	for _, id := range ids {
		tour, _ := cat.Tour(id)
		pkg.Tours = append(pkg.Tours, tour)
		pkg.TotalDays += int64(tour.DurationDays)
		pkg.TotalCost += tour.Cost
		pkg.TotalValue += cat.TourValue(id)
	}
	return pkg
}

func TestValidatePackage(t *testing.T) {
	cat := newCatalog(t)
	maxDays := int32(5)
	maxBudget := 350.5

	require.NoError(t, utils.ValidatePackage(packageOf(cat, "R1"), cat, nil, nil))
	require.NoError(t, utils.ValidatePackage(packageOf(cat, "R1", 1, 2), cat, nil, nil))
	require.NoError(t, utils.ValidatePackage(packageOf(cat, "R1", 1, 2), cat, &maxDays, &maxBudget))
}

func TestValidatePackageRejectsViolations(t *testing.T) {
	cat := newCatalog(t)

	tests := []struct {
		name    string
		pkg     func() *domain.Package
		days    *int32
		budget  *float64
		message string
	}{
		{
			name:    "wrong region",
			pkg:     func() *domain.Package { return packageOf(cat, "R1", 4) },
			message: "不属于地区",
		},
		{
			name:    "duplicated tour",
			pkg:     func() *domain.Package { return packageOf(cat, "R1", 2, 2) },
			message: "重复选择",
		},
		{
			name:    "shared attraction",
			pkg:     func() *domain.Package { return packageOf(cat, "R1", 1, 3) },
			message: "同时出现",
		},
		{
			name: "wrong total value",
			pkg: func() *domain.Package {
				pkg := packageOf(cat, "R1", 1)
				pkg.TotalValue++
				return pkg
			},
			message: "总价值",
		},
		{
			name: "wrong total cost",
			pkg: func() *domain.Package {
				pkg := packageOf(cat, "R1", 2)
				pkg.TotalCost = 250
				return pkg
			},
			message: "总花费",
		},
		{
			name:    "days exceeded",
			pkg:     func() *domain.Package { return packageOf(cat, "R1", 1, 2) },
			days:    func() *int32 { d := int32(4); return &d }(),
			message: "超过了限制",
		},
		{
			name: "days sum beyond int32",
			pkg: func() *domain.Package {
				return &domain.Package{
					RegionID:   "R1",
					Tours:      []*domain.Tour{{ID: 5, RegionID: "R1", DurationDays: 2_000_000_000}, {ID: 6, RegionID: "R1", DurationDays: 2_000_000_000}},
					TotalDays:  4_000_000_000,
					TotalValue: 0,
				}
			},
			days:    func() *int32 { d := int32(math.MaxInt32); return &d }(),
			message: "超过了限制",
		},
		{
			name:    "budget exceeded",
			pkg:     func() *domain.Package { return packageOf(cat, "R1", 1, 2) },
			budget:  func() *float64 { b := 350.0; return &b }(),
			message: "超过了预算",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := utils.ValidatePackage(tt.pkg(), cat, tt.days, tt.budget)
			require.ErrorContains(t, err, tt.message)
		})
	}
}

package utils

import (
	"fmt"

	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/catalog"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/domain"
)

// ValidatePackage 检查套餐是否满足所有约束，并且汇总数据和线路本身一致
// maxDays 和 maxBudget 为 nil 时表示不限制
func ValidatePackage(pkg *domain.Package, cat *catalog.Catalog, maxDays *int32, maxBudget *float64) error {
	var (
		days  int64
		cost  float64
		value int64
	)

	seenTours := make(map[int64]bool)
	seenAttractions := make(map[int64]int64) // attractionID -> tourID

	for _, tour := range pkg.Tours {
		if tour.RegionID != pkg.RegionID {
			return fmt.Errorf("线路 %d 属于地区 %q，不属于地区 %q", tour.ID, tour.RegionID, pkg.RegionID)
		}

		if seenTours[tour.ID] {
			return fmt.Errorf("线路 %d 被重复选择", tour.ID)
		}
		seenTours[tour.ID] = true

		for _, attraction := range cat.AttractionsOf(tour.ID) {
			if otherTourID, exists := seenAttractions[attraction.ID]; exists {
				return fmt.Errorf("景点 %d 同时出现在线路 %d 和线路 %d 中", attraction.ID, otherTourID, tour.ID)
			}
			seenAttractions[attraction.ID] = tour.ID
			value += int64(attraction.CulturalValue)
		}

		// 按照选择的顺序累加，和搜索时的累加顺序保持一致
		days += int64(tour.DurationDays)
		cost += tour.Cost
	}

	if days != pkg.TotalDays {
		return fmt.Errorf("套餐总天数 %d 和线路天数之和 %d 不一致", pkg.TotalDays, days)
	}
	if cost != pkg.TotalCost {
		return fmt.Errorf("套餐总花费 %.2f 和线路花费之和 %.2f 不一致", pkg.TotalCost, cost)
	}
	if value != pkg.TotalValue {
		return fmt.Errorf("套餐总价值 %d 和景点价值之和 %d 不一致", pkg.TotalValue, value)
	}

	if maxDays != nil && days > int64(*maxDays) {
		return fmt.Errorf("套餐总天数 %d 超过了限制 %d", days, *maxDays)
	}
	if maxBudget != nil && cost > *maxBudget {
		return fmt.Errorf("套餐总花费 %.2f 超过了预算 %.2f", cost, *maxBudget)
	}

	return nil
}

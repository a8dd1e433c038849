package optimizer

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/catalog"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/utils"
)

// Optimizer 在 catalog 上搜索文化价值最高的线路组合
//
// Optimizer 本身不保存任何搜索状态，每次调用 GeneratePackage 都会创建独立的搜索状态，
// 因此同一个 Optimizer 可以被并发调用。调用之前 catalog 必须已经加载完成。
type Optimizer struct {
	catalog *catalog.Catalog
}

func New(cat *catalog.Catalog) *Optimizer {
	return &Optimizer{
		catalog: cat,
	}
}

// GeneratePackage 为 regionID 生成最优套餐
// 没有任何候选线路或者限制过紧时返回空套餐（价值为 0），这不是错误。
// ctx 被取消时返回错误，不返回中间结果。
func (o *Optimizer) GeneratePackage(ctx context.Context, regionID string, limits Limits) (*domain.Package, error) {
	start := time.Now()

	tours := o.catalog.ToursInRegion(regionID)
	candidates := make([]candidate, 0, len(tours))
	for _, t := range tours {
		candidates = append(candidates, candidate{
			tour:          t,
			attractionIDs: o.catalog.AttractionIDsOf(t.ID),
			value:         o.catalog.TourValue(t.ID),
		})
	}

	s := newSearch(ctx, candidates, limits)
	s.recurse(0, 0, 0, 0)
	if s.err != nil {
		return nil, fmt.Errorf("generate package for region %q: %w", regionID, s.err)
	}

	pkg := &domain.Package{
		RegionID:    regionID,
		Tours:       s.bestSelection,
		Attractions: make([]*domain.Attraction, 0),
		TotalDays:   s.bestDays,
		TotalCost:   s.bestCost,
		TotalValue:  s.bestValue,
		Stats:       s.stats,
	}

	for _, t := range pkg.Tours {
		pkg.Attractions = append(pkg.Attractions, o.catalog.AttractionsOf(t.ID)...)
	}
	slices.SortFunc(pkg.Attractions, func(a, b *domain.Attraction) int {
		return cmp.Compare(a.ID, b.ID)
	})

	pkg.Stats.Candidates = len(candidates)
	pkg.Stats.Elapsed = time.Since(start)

	// 还需要检查一下结果是否满足约束条件
	if err := utils.ValidatePackage(pkg, o.catalog, limits.MaxDays, limits.MaxBudget); err != nil {
		return nil, fmt.Errorf("generate package for region %q: %w", regionID, err)
	}

	return pkg, nil
}

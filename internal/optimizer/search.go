package optimizer

import (
	"context"
	"slices"

	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/domain"
)

// 每访问这么多个节点检查一次 ctx 是否已经取消
const cancelCheckInterval = 1024

// search 是一次 GeneratePackage 调用独占的搜索状态
//
// selection 和 used 在整棵搜索树上共享，通过 include / exclude 成对地修改；
// 天数、花费和价值作为参数按值传递，回溯时自然恢复。
type search struct {
	ctx        context.Context
	candidates []candidate
	limits     Limits

	selection []*domain.Tour
	used      map[int64]struct{}

	bestValue     int64
	bestSelection []*domain.Tour
	bestCost      float64
	bestDays      int64

	stats domain.SearchStats
	err   error
}

func newSearch(ctx context.Context, candidates []candidate, limits Limits) *search {
	return &search{
		ctx:           ctx,
		candidates:    candidates,
		limits:        limits,
		selection:     make([]*domain.Tour, 0, len(candidates)),
		used:          make(map[int64]struct{}),
		bestValue:     -1, // 保证空组合（价值为 0）一定会被记录
		bestSelection: make([]*domain.Tour, 0),
	}
}

func (s *search) recurse(start int, days int64, cost float64, value int64) {
	s.stats.Nodes++
	if s.stats.Nodes%cancelCheckInterval == 0 {
		if err := s.ctx.Err(); err != nil {
			s.err = err
		}
	}
	if s.err != nil {
		return
	}

	// 严格大于：价值相同的组合保留先找到的那个
	if value > s.bestValue {
		s.bestValue = value
		// 这里需要复制，防止后续回溯修改已经记录的结果
		s.bestSelection = slices.Clone(s.selection)
		s.bestCost = cost
		s.bestDays = days
	}

	for i := start; i < len(s.candidates); i++ {
		if s.err != nil {
			return
		}
		if start == 0 {
			// 每个顶层分支开始前也检查一次
			if err := s.ctx.Err(); err != nil {
				s.err = err
				return
			}
		}

		c := &s.candidates[i]

		// 天数限制
		// 天数按 int64 累加，多条线路的天数之和可能超出 int32
		if s.limits.MaxDays != nil && days+int64(c.tour.DurationDays) > int64(*s.limits.MaxDays) {
			s.stats.PrunedByDays++
			continue
		}

		// 预算限制
		if s.limits.MaxBudget != nil && cost+c.tour.Cost > *s.limits.MaxBudget {
			s.stats.PrunedByBudget++
			continue
		}

		// 景点不能重复
		if s.conflicts(c) {
			s.stats.PrunedByDuplicate++
			continue
		}

		s.include(c)
		s.recurse(i+1, days+int64(c.tour.DurationDays), cost+c.tour.Cost, value+c.value)
		s.exclude(c)
	}
}

func (s *search) conflicts(c *candidate) bool {
	for _, id := range c.attractionIDs {
		if _, ok := s.used[id]; ok {
			return true
		}
	}
	return false
}

func (s *search) include(c *candidate) {
	s.selection = append(s.selection, c.tour)
	for _, id := range c.attractionIDs {
		s.used[id] = struct{}{}
	}
}

// exclude 撤销 include 的修改
// 能走到 include 说明 c 的景点和 used 没有交集，所以这里可以直接删除
func (s *search) exclude(c *candidate) {
	s.selection = s.selection[:len(s.selection)-1]
	for _, id := range c.attractionIDs {
		delete(s.used, id)
	}
}

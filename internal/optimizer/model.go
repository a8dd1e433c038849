package optimizer

import "github.com/sysu-ecnc-dev/tour-planner/backend/internal/domain"

// Limits 是生成套餐时的限制条件，字段为 nil 表示不限制（而不是限制为 0）
type Limits struct {
	MaxDays   *int32
	MaxBudget *float64
}

func (l Limits) WithMaxDays(days int32) Limits {
	l.MaxDays = &days
	return l
}

func (l Limits) WithMaxBudget(budget float64) Limits {
	l.MaxBudget = &budget
	return l
}

// candidate 是搜索时使用的候选线路，景点 ID 和价值在搜索开始前预先算好
type candidate struct {
	tour          *domain.Tour
	attractionIDs []int64
	value         int64
}

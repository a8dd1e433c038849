package domain

import "time"

type SearchStats struct {
	Candidates        int           `json:"candidates"`
	Nodes             int64         `json:"nodes"`
	PrunedByDays      int64         `json:"prunedByDays"`
	PrunedByBudget    int64         `json:"prunedByBudget"`
	PrunedByDuplicate int64         `json:"prunedByDuplicate"`
	Elapsed           time.Duration `json:"elapsed"`
}

// Package 是优化器针对某个地区和限制条件给出的旅游套餐
// Tours 按照被选中的顺序排列，而不一定按照天数排序
type Package struct {
	RegionID    string        `json:"regionID"`
	Tours       []*Tour       `json:"tours"`
	Attractions []*Attraction `json:"attractions"`
	TotalDays   int64         `json:"totalDays"`
	TotalCost   float64       `json:"totalCost"`
	TotalValue  int64         `json:"totalValue"`
	Stats       SearchStats   `json:"stats"`
}

package domain

import "time"

// Tour 表示某个地区下可购买的旅游线路
// 包含的景点不在结构体中保存，而是由 catalog 中的关联关系维护
type Tour struct {
	ID           int64     `json:"id"`
	RegionID     string    `json:"regionID"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	DurationDays int32     `json:"durationDays"`
	Cost         float64   `json:"cost"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}

// TourAttraction 是 tour 和 attraction 之间的一条关联记录
type TourAttraction struct {
	TourID       int64 `json:"tourID"`
	AttractionID int64 `json:"attractionID"`
}

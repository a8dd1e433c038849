// Package catalog 在内存中维护地区、线路和景点之间的关系图
//
// Catalog 的生命周期是「先加载，后只读」：加载完成之后不会再修改，因此可以被多个
// goroutine 同时读取。需要刷新数据时应当新建一个 Catalog 并整体替换。
package catalog

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/domain"
)

// Store 是 catalog 所依赖的数据源，由 repository.Repository 实现
type Store interface {
	GetAllRegions() ([]*domain.Region, error)
	GetAllTours() ([]*domain.Tour, error)
	GetAllAttractions() ([]*domain.Attraction, error)
	GetAllTourAttractions() ([]*domain.TourAttraction, error)
}

type idSet map[int64]struct{}

type Catalog struct {
	store Store

	tours       map[int64]*domain.Tour
	attractions map[int64]*domain.Attraction

	// 双向关联只保存 ID，需要实体时再回到上面两个 map 中查找
	tourAttractions map[int64]idSet // tourID -> {attractionID}
	attractionTours map[int64]idSet // attractionID -> {tourID}
}

func New(store Store) *Catalog {
	return &Catalog{
		store:           store,
		tours:           make(map[int64]*domain.Tour),
		attractions:     make(map[int64]*domain.Attraction),
		tourAttractions: make(map[int64]idSet),
		attractionTours: make(map[int64]idSet),
	}
}

// Load 依次加载线路、景点和它们之间的关联，返回被丢弃的关联记录数量
func (c *Catalog) Load() (int, error) {
	if err := c.LoadTours(); err != nil {
		return 0, err
	}
	if err := c.LoadAttractions(); err != nil {
		return 0, err
	}
	return c.LoadRelationships()
}

// LoadRegions 原样返回数据源中的所有地区，不做缓存
func (c *Catalog) LoadRegions() ([]*domain.Region, error) {
	regions, err := c.store.GetAllRegions()
	if err != nil {
		return nil, fmt.Errorf("load regions: %w", err)
	}
	return regions, nil
}

func (c *Catalog) LoadTours() error {
	tours, err := c.store.GetAllTours()
	if err != nil {
		return fmt.Errorf("load tours: %w", err)
	}

	c.tours = make(map[int64]*domain.Tour, len(tours))
	c.tourAttractions = make(map[int64]idSet, len(tours))
	for _, t := range tours {
		c.tours[t.ID] = t
		c.tourAttractions[t.ID] = make(idSet)
	}
	// 旧的关联全部失效，需要重新调用 LoadRelationships
	for id := range c.attractionTours {
		c.attractionTours[id] = make(idSet)
	}

	return nil
}

func (c *Catalog) LoadAttractions() error {
	attractions, err := c.store.GetAllAttractions()
	if err != nil {
		return fmt.Errorf("load attractions: %w", err)
	}

	c.attractions = make(map[int64]*domain.Attraction, len(attractions))
	c.attractionTours = make(map[int64]idSet, len(attractions))
	for _, a := range attractions {
		c.attractions[a.ID] = a
		c.attractionTours[a.ID] = make(idSet)
	}
	for id := range c.tourAttractions {
		c.tourAttractions[id] = make(idSet)
	}

	return nil
}

// LoadRelationships 建立 tour <-> attraction 的双向关联
// 任意一端不存在的记录会被跳过，这属于可以容忍的数据问题，不会作为错误返回
func (c *Catalog) LoadRelationships() (int, error) {
	links, err := c.store.GetAllTourAttractions()
	if err != nil {
		return 0, fmt.Errorf("load relationships: %w", err)
	}

	dropped := 0
	for _, link := range links {
		if link == nil {
			continue
		}

		_, tourExists := c.tours[link.TourID]
		_, attractionExists := c.attractions[link.AttractionID]
		if !tourExists || !attractionExists {
			slog.Warn("跳过悬空的线路景点关联", "tourID", link.TourID, "attractionID", link.AttractionID, "tourExists", tourExists, "attractionExists", attractionExists)
			dropped++
			continue
		}

		c.tourAttractions[link.TourID][link.AttractionID] = struct{}{}
		c.attractionTours[link.AttractionID][link.TourID] = struct{}{}
	}

	return dropped, nil
}

func (c *Catalog) Tour(id int64) (*domain.Tour, bool) {
	t, ok := c.tours[id]
	return t, ok
}

func (c *Catalog) Attraction(id int64) (*domain.Attraction, bool) {
	a, ok := c.attractions[id]
	return a, ok
}

// Tours 返回所有线路，按 ID 升序
func (c *Catalog) Tours() []*domain.Tour {
	tours := make([]*domain.Tour, 0, len(c.tours))
	for _, t := range c.tours {
		tours = append(tours, t)
	}
	slices.SortFunc(tours, func(a, b *domain.Tour) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return tours
}

// AttractionIDsOf 返回线路包含的景点 ID，按升序排列
func (c *Catalog) AttractionIDsOf(tourID int64) []int64 {
	return sortedIDs(c.tourAttractions[tourID])
}

func (c *Catalog) AttractionsOf(tourID int64) []*domain.Attraction {
	ids := c.AttractionIDsOf(tourID)
	attractions := make([]*domain.Attraction, 0, len(ids))
	for _, id := range ids {
		attractions = append(attractions, c.attractions[id])
	}
	return attractions
}

func (c *Catalog) ToursOf(attractionID int64) []*domain.Tour {
	ids := sortedIDs(c.attractionTours[attractionID])
	tours := make([]*domain.Tour, 0, len(ids))
	for _, id := range ids {
		tours = append(tours, c.tours[id])
	}
	return tours
}

// TourValue 是线路中所有（不重复）景点文化价值之和
func (c *Catalog) TourValue(tourID int64) int64 {
	var value int64
	for id := range c.tourAttractions[tourID] {
		value += int64(c.attractions[id].CulturalValue)
	}
	return value
}

// ToursInRegion 返回属于该地区的候选线路，按天数升序排列
// 天数相同时按 ID 排序，保证搜索顺序是确定的
func (c *Catalog) ToursInRegion(regionID string) []*domain.Tour {
	candidates := make([]*domain.Tour, 0)
	for _, t := range c.tours {
		if t.RegionID == regionID {
			candidates = append(candidates, t)
		}
	}

	slices.SortStableFunc(candidates, func(a, b *domain.Tour) int {
		if a.DurationDays != b.DurationDays {
			return cmp.Compare(a.DurationDays, b.DurationDays)
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return candidates
}

// Len 返回已加载的线路数量和景点数量
func (c *Catalog) Len() (tours int, attractions int) {
	return len(c.tours), len(c.attractions)
}

func sortedIDs(set idSet) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

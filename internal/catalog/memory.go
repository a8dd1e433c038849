package catalog

import "github.com/sysu-ecnc-dev/tour-planner/backend/internal/domain"

// MemoryStore 是保存在内存中的 Store，用于导入数据前的预检查以及测试
type MemoryStore struct {
	Regions         []*domain.Region
	Tours           []*domain.Tour
	Attractions     []*domain.Attraction
	TourAttractions []*domain.TourAttraction

	// 不为 nil 时所有方法都返回这个错误
	Err error
}

func (m *MemoryStore) GetAllRegions() ([]*domain.Region, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Regions, nil
}

func (m *MemoryStore) GetAllTours() ([]*domain.Tour, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Tours, nil
}

func (m *MemoryStore) GetAllAttractions() ([]*domain.Attraction, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Attractions, nil
}

func (m *MemoryStore) GetAllTourAttractions() ([]*domain.TourAttraction, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.TourAttractions, nil
}

// Link 添加一条线路和景点的关联
func (m *MemoryStore) Link(tourID int64, attractionIDs ...int64) {
	for _, id := range attractionIDs {
		m.TourAttractions = append(m.TourAttractions, &domain.TourAttraction{
			TourID:       tourID,
			AttractionID: id,
		})
	}
}

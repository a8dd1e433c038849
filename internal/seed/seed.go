// Package seed 从 YAML 文件导入地区、景点和线路
package seed

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/catalog"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/utils"
	"gopkg.in/yaml.v3"
)

type File struct {
	Attractions []Attraction `yaml:"attractions"`
	Regions     []Region     `yaml:"regions"`
}

type Attraction struct {
	Name          string `yaml:"name"`
	Description   string `yaml:"description"`
	CulturalValue int32  `yaml:"culturalValue"`
}

type Region struct {
	ID          string `yaml:"id"` // 为空时由名称的拼音生成
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Tours       []Tour `yaml:"tours"`
}

type Tour struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	DurationDays int32    `yaml:"durationDays"`
	Cost         float64  `yaml:"cost"`
	Attractions  []string `yaml:"attractions"` // 景点名称
}

// Importer 是导入时需要的写操作，由 repository.Repository 实现
type Importer interface {
	CreateRegion(region *domain.Region) error
	CreateAttraction(a *domain.Attraction) error
	CreateTour(t *domain.Tour, attractionIDs []int64) error
}

func Parse(r io.Reader) (*File, error) {
	f := &File{}

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	return f, nil
}

func ParseFile(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Plan 在不访问数据库的情况下把文件转换成内存中的目录数据
// 景点和线路使用从 1 开始的临时 ID，可以直接用来加载 catalog 做预检查
func (f *File) Plan() (*catalog.MemoryStore, error) {
	store := &catalog.MemoryStore{}

	attractionIDs := make(map[string]int64, len(f.Attractions))
	for i, a := range f.Attractions {
		if a.Name == "" {
			return nil, fmt.Errorf("第 %d 个景点缺少名称", i+1)
		}
		if a.CulturalValue < 0 {
			return nil, fmt.Errorf("景点 %q 的文化价值不能为负数", a.Name)
		}
		if _, exists := attractionIDs[a.Name]; exists {
			return nil, fmt.Errorf("景点 %q 重复", a.Name)
		}

		id := int64(len(store.Attractions) + 1)
		attractionIDs[a.Name] = id
		store.Attractions = append(store.Attractions, &domain.Attraction{
			ID:            id,
			Name:          a.Name,
			Description:   a.Description,
			CulturalValue: a.CulturalValue,
		})
	}

	regionIDs := make(map[string]bool, len(f.Regions))
	for i, r := range f.Regions {
		if r.Name == "" {
			return nil, fmt.Errorf("第 %d 个地区缺少名称", i+1)
		}

		regionID := r.ID
		if regionID == "" {
			regionID = utils.GenerateRegionIDFromName(r.Name)
		}
		if regionIDs[regionID] {
			return nil, fmt.Errorf("地区 ID %q 重复", regionID)
		}
		regionIDs[regionID] = true

		store.Regions = append(store.Regions, &domain.Region{
			ID:          regionID,
			Name:        r.Name,
			Description: r.Description,
		})

		for _, t := range r.Tours {
			if t.DurationDays < 0 || t.Cost < 0 {
				return nil, fmt.Errorf("线路 %q 的天数和花费不能为负数", t.Name)
			}

			tourID := int64(len(store.Tours) + 1)
			store.Tours = append(store.Tours, &domain.Tour{
				ID:           tourID,
				RegionID:     regionID,
				Name:         t.Name,
				Description:  t.Description,
				DurationDays: t.DurationDays,
				Cost:         t.Cost,
			})

			for _, name := range t.Attractions {
				attractionID, ok := attractionIDs[name]
				if !ok {
					return nil, fmt.Errorf("线路 %q 引用了不存在的景点 %q", t.Name, name)
				}
				store.Link(tourID, attractionID)
			}
		}
	}

	return store, nil
}

// Import 把 Plan 的结果写入数据库，返回写入的地区、景点和线路数量
// 数据库分配的 ID 和临时 ID 不同，线路的景点需要重新映射；导入之后 store 中实体的 ID 会被替换
func Import(im Importer, store *catalog.MemoryStore) (int, int, int, error) {
	for _, region := range store.Regions {
		if err := im.CreateRegion(region); err != nil {
			return 0, 0, 0, fmt.Errorf("create region %q: %w", region.ID, err)
		}
	}

	realIDs := make(map[int64]int64, len(store.Attractions))
	for _, a := range store.Attractions {
		planned := a.ID
		if err := im.CreateAttraction(a); err != nil {
			return len(store.Regions), 0, 0, fmt.Errorf("create attraction %q: %w", a.Name, err)
		}
		realIDs[planned] = a.ID
	}

	links := make(map[int64][]int64, len(store.Tours))
	for _, link := range store.TourAttractions {
		links[link.TourID] = append(links[link.TourID], realIDs[link.AttractionID])
	}

	for i, t := range store.Tours {
		if err := im.CreateTour(t, links[t.ID]); err != nil {
			return len(store.Regions), len(store.Attractions), i, fmt.Errorf("create tour %q: %w", t.Name, err)
		}
	}

	slog.Info("导入数据完成", "regions", len(store.Regions), "attractions", len(store.Attractions), "tours", len(store.Tours))

	return len(store.Regions), len(store.Attractions), len(store.Tours), nil
}

package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/domain"
)

var regionNameCharacters = []string{
	"江", "山", "河", "湖", "海", "云", "川", "岭", "南", "北",
	"东", "西", "青", "黄", "白", "苏", "浙", "闽", "粤", "桂",
}

var attractionSuffixes = []string{
	"古城", "寺", "塔", "博物馆", "故居", "石窟", "园林", "书院", "古镇", "遗址",
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
var digits = "0123456789"

func GenerateRandomRegionName() string {
	nameLength := rand.Intn(2) + 2
	name := ""

	for i := 0; i < nameLength; i++ {
		name += regionNameCharacters[rand.Intn(len(regionNameCharacters))]
	}
	return name
}

// GenerateRegionIDFromName 用地区名称的拼音生成地区 ID，例如 "江南" -> "JIANGNAN"
func GenerateRegionIDFromName(name string) string {
	pinyinArray := pinyin.LazyConvert(name, nil)
	if len(pinyinArray) == 0 {
		return strings.ToUpper(GenerateRandomID(6, 0))
	}
	return strings.ToUpper(strings.Join(pinyinArray, ""))
}

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

func GenerateRandomRegion() *domain.Region {
	name := GenerateRandomRegionName()
	return &domain.Region{
		// 同名地区的拼音相同，追加随机数字避免主键冲突
		ID:          GenerateRegionIDFromName(name) + GenerateRandomID(0, 3),
		Name:        name + GenerateRandomID(0, 3),
		Description: "地区描述" + GenerateRandomID(20, 10),
	}
}

func GenerateRandomAttraction() *domain.Attraction {
	prefix := GenerateRandomRegionName()
	suffix := attractionSuffixes[rand.Intn(len(attractionSuffixes))]
	return &domain.Attraction{
		Name:          prefix + suffix,
		Description:   "景点描述" + GenerateRandomID(20, 10),
		CulturalValue: int32(rand.Intn(10) + 1),
	}
}

func GenerateRandomTour(regionID string) *domain.Tour {
	return &domain.Tour{
		RegionID:     regionID,
		Name:         fmt.Sprintf("线路%s", GenerateRandomID(3, 3)),
		Description:  "线路描述" + GenerateRandomID(20, 10),
		DurationDays: int32(rand.Intn(7) + 1),
		Cost:         float64(rand.Intn(40)+1) * 50,
	}
}

// 使用 Fisher-Yates 洗牌算法来生成一个随机子集，子集大小在 [1, maxSize] 之间
func GenerateRandomSubset(arr []int64, maxSize int) []int64 {
	if len(arr) == 0 || maxSize <= 0 {
		return []int64{}
	}

	arrCopy := append([]int64{}, arr...) // 复制数组，避免修改原数组

	for i := 0; i < len(arrCopy)-1; i++ {
		j := rand.Intn(len(arrCopy)-i) + i
		arrCopy[i], arrCopy[j] = arrCopy[j], arrCopy[i]
	}

	l := rand.Intn(min(maxSize, len(arrCopy))) + 1
	return arrCopy[:l]
}

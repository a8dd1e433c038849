package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/utils"
)

func TestGenerateRegionIDFromName(t *testing.T) {
	require.Equal(t, "JIANGNAN", utils.GenerateRegionIDFromName("江南"))
	require.Equal(t, "LINGNAN", utils.GenerateRegionIDFromName("岭南"))

	// 没有汉字时退化为随机 ID
	id := utils.GenerateRegionIDFromName("abc")
	require.Len(t, id, 6)
}

func TestGenerateRandomTour(t *testing.T) {
	for i := 0; i < 100; i++ {
		tour := utils.GenerateRandomTour("R1")
		require.Equal(t, "R1", tour.RegionID)
		require.GreaterOrEqual(t, tour.DurationDays, int32(1))
		require.LessOrEqual(t, tour.DurationDays, int32(7))
		require.Positive(t, tour.Cost)
	}
}

func TestGenerateRandomSubset(t *testing.T) {
	arr := []int64{1, 2, 3, 4, 5}

	for i := 0; i < 100; i++ {
		subset := utils.GenerateRandomSubset(arr, 3)
		require.NotEmpty(t, subset)
		require.LessOrEqual(t, len(subset), 3)

		seen := make(map[int64]bool)
		for _, v := range subset {
			require.Contains(t, arr, v)
			require.False(t, seen[v])
			seen[v] = true
		}
	}
	require.Equal(t, []int64{1, 2, 3, 4, 5}, arr)

	require.Empty(t, utils.GenerateRandomSubset(nil, 3))
	require.Empty(t, utils.GenerateRandomSubset(arr, 0))
}

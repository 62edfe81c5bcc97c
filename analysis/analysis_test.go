package analysis

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/quinimind/draw"
)

func rec(id int, nums ...int) draw.Record {
	r := draw.Record{DrawID: id, Date: "d" + strconv.Itoa(id), Modality: draw.Traditional}
	copy(r.Numbers[:], nums)
	return r
}

func TestEmptyHistory(t *testing.T) {
	assert.Empty(t, HotNumbers(nil, 50, 10))
	assert.Empty(t, ColdNumbers(nil, 10))
	assert.Empty(t, Heatmap(nil, DefaultThresholds()))
}

func TestSingleDraw(t *testing.T) {
	history := []draw.Record{rec(10, 1, 2, 3, 4, 5, 6)}

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, HotNumbers(history, 50, 10))
	assert.Equal(t, []int{0, 7, 8, 9, 10, 11, 12, 13, 14, 15}, ColdNumbers(history, 10))

	rows := Heatmap(history, DefaultThresholds())
	require.Len(t, rows, 46)

	assert.Equal(t, HeatmapRow{
		Number: 1, Frequency: 1, LastDrawID: 10, LastDate: "d10", Delay: 0, Status: StatusNormal,
	}, rows[1])
	assert.Equal(t, HeatmapRow{
		Number: 0, Frequency: 0, LastDrawID: NeverDrawID, LastDate: NeverDate, Delay: 999, Status: StatusCold,
	}, rows[0])
}

func TestHotNumbers_Window(t *testing.T) {
	// Insertion order must not matter: the window is chosen by draw id.
	history := []draw.Record{
		rec(20, 10, 11, 12, 13, 14, 15),
		rec(10, 1, 2, 3, 4, 5, 6),
	}
	assert.Equal(t, []int{10, 11, 12, 13, 14, 15}, HotNumbers(history, 1, 10))

	reversed := []draw.Record{history[1], history[0]}
	assert.Equal(t, []int{10, 11, 12, 13, 14, 15}, HotNumbers(reversed, 1, 10))
}

func TestHotNumbers_FrequencyThenNumber(t *testing.T) {
	history := []draw.Record{
		rec(1, 40, 41, 42, 43, 44, 45),
		rec(2, 40, 41, 1, 2, 3, 4),
		rec(3, 41, 5, 6, 7, 8, 9),
	}
	hot := HotNumbers(history, 50, 5)
	assert.Equal(t, []int{41, 40, 1, 2, 3}, hot)
}

func TestColdNumbers_NeverSeenFirst(t *testing.T) {
	// 0..35 appear in old draws, 36..45 never; then a recent draw reuses
	// low numbers. Never-seen numbers must outrank the oldest seen ones.
	var history []draw.Record
	id := 1
	for base := 0; base+6 <= 36; base += 6 {
		history = append(history, rec(id, base, base+1, base+2, base+3, base+4, base+5))
		id++
	}
	history = append(history, rec(100, 0, 1, 2, 3, 4, 5))

	cold := ColdNumbers(history, 46)
	require.Len(t, cold, 46)
	assert.Equal(t, []int{36, 37, 38, 39, 40, 41, 42, 43, 44, 45}, cold[:10])
	// Oldest seen appearance after the never-seen block: draw 2 (6..11).
	assert.Equal(t, []int{6, 7, 8, 9, 10, 11}, cold[10:16])
	// The numbers seen at draw 100 are the warmest.
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, cold[40:])
	assert.Len(t, ColdNumbers(history, 0), DefaultTopCount)
}

func TestHeatmap_DelayAndStatus(t *testing.T) {
	var history []draw.Record
	// Number 7 drawn in each of 12 draws, number 30 only in the first.
	for id := 1; id <= 12; id++ {
		history = append(history, rec(id, 7, 1, 2, 3, 4, 5))
	}
	history[0].Numbers[1] = 30

	rows := Heatmap(history, DefaultThresholds())
	require.Len(t, rows, 46)

	assert.Equal(t, 12, rows[7].Frequency)
	assert.Equal(t, 0, rows[7].Delay)
	assert.Equal(t, StatusHot, rows[7].Status)

	assert.Equal(t, 1, rows[30].LastDrawID)
	assert.Equal(t, 11, rows[30].Delay)
	assert.Equal(t, StatusNormal, rows[30].Status)

	strict := Thresholds{HotFrequency: 50, ColdDelay: 5, NeverSeenDelay: 500}
	rows = Heatmap(history, strict)
	assert.Equal(t, StatusNormal, rows[7].Status)
	assert.Equal(t, StatusCold, rows[30].Status)
	assert.Equal(t, 500, rows[44].Delay)
}

func TestHeatmap_ZeroThresholdsAreKept(t *testing.T) {
	history := []draw.Record{
		rec(1, 2, 3, 4, 5, 6, 7),
		rec(2, 2, 3, 4, 5, 6, 8),
	}
	rows := Heatmap(history, Thresholds{NeverSeenDelay: 999, HotFrequency: 0, ColdDelay: 20})
	assert.Equal(t, StatusHot, rows[2].Status, "any appearance is hot at hot_frequency 0")
	assert.Equal(t, StatusHot, rows[8].Status)
	assert.Equal(t, StatusCold, rows[44].Status)

	rows = Heatmap(history, Thresholds{NeverSeenDelay: 999, HotFrequency: 10, ColdDelay: 0})
	assert.Equal(t, StatusCold, rows[7].Status, "delay 1 is cold at cold_delay 0")
	assert.Equal(t, StatusNormal, rows[8].Status)
	assert.Equal(t, StatusNormal, rows[2].Status)

	rows = Heatmap(history, Thresholds{HotFrequency: -1, ColdDelay: 0, NeverSeenDelay: 5})
	assert.Equal(t, StatusNormal, rows[2].Status, "negative selects the default")
	assert.Equal(t, 5, rows[44].Delay)

	assert.Equal(t, Heatmap(history, DefaultThresholds()), Heatmap(history, Thresholds{}))
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.Defaults()
	assert.Equal(t, DefaultHotWindow, c.HotWindow)
	assert.Equal(t, DefaultTopCount, c.HotCount)
	assert.Equal(t, DefaultTopCount, c.ColdCount)
	assert.Equal(t, DefaultThresholds(), c.Thresholds)
}

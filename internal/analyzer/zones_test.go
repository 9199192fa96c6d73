package analyzer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZoneBounds(t *testing.T) {
	want := [][2]int{
		{0, 25}, {25, 51}, {51, 76}, {76, 102}, {102, 127},
		{127, 153}, {153, 178}, {178, 204}, {204, 229}, {229, 256},
	}
	for i, w := range want {
		start, end := ZoneBounds(i)
		assert.Equal(t, w[0], start, "zone %d start", i)
		assert.Equal(t, w[1], end, "zone %d end", i)
	}
}

func TestSegmentZones_Partition(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 50; n++ {
		var hist Histogram
		for i := range hist {
			if rng.Intn(3) == 0 {
				hist[i] = rng.Intn(1000)
			}
		}
		hist[rng.Intn(HistogramBins)]++

		profile := SegmentZones(hist)
		assert.InDelta(t, 1.0, profile.Low+profile.Mid+profile.High, 1e-6)

		sum := 0.0
		for _, r := range profile.Ratios {
			sum += r
		}
		assert.InDelta(t, 1.0, sum, 1e-6)
	}
}

func TestSegmentZones_Groups(t *testing.T) {
	var hist Histogram
	hist[24] = 1  // zone 0
	hist[75] = 1  // zone 2
	hist[76] = 1  // zone 3
	hist[177] = 1 // zone 6
	hist[178] = 1 // zone 7
	hist[255] = 3 // zone 9

	profile := SegmentZones(hist)
	assert.InDelta(t, 0.25, profile.Low, 1e-9)
	assert.InDelta(t, 0.25, profile.Mid, 1e-9)
	assert.InDelta(t, 0.5, profile.High, 1e-9)
	assert.InDelta(t, 0.375, profile.Ratios[9], 1e-9)
	assert.Equal(t, ZonePercentages{Low: 25, Mid: 25, High: 50}, profile.Percentages())
}

func TestSegmentZones_BoundaryLevels(t *testing.T) {
	tests := []struct {
		level int
		zone  int
	}{
		{126, 4},
		{127, 5},
		{177, 6},
		{178, 7},
		{228, 8},
		{229, 9},
		{255, 9},
	}

	for _, tt := range tests {
		var hist Histogram
		hist[tt.level] = 10
		profile := SegmentZones(hist)
		assert.InDelta(t, 1.0, profile.Ratios[tt.zone], 1e-9, "level %d", tt.level)
	}
}

func TestClassify_UniformLevel178IsHighKey(t *testing.T) {
	var hist Histogram
	hist[178] = 400

	tone := NewToneClassifier(DefaultThresholds()).Classify(hist, 178, 178)
	assert.Equal(t, ToneHighKeyShort, tone.Type)
	assert.Equal(t, "3,9", tone.Notation)
	assert.Equal(t, ZonePercentages{Low: 0, Mid: 0, High: 100}, tone.Zones)
}

func TestSegmentZones_Empty(t *testing.T) {
	assert.Equal(t, ZoneProfile{}, SegmentZones(Histogram{}))
}

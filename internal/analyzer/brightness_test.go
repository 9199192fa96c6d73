package analyzer

import (
	"testing"

	"go-tone-inspector/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeBrightness(t *testing.T) {
	tests := []struct {
		name   string
		levels map[int]int
		want   BrightnessStats
	}{
		{"single level", map[int]int{77: 10}, BrightnessStats{Average: 77, Min: 77, Max: 77}},
		{"black and white", map[int]int{0: 5, 255: 5}, BrightnessStats{Average: 128, Min: 0, Max: 255}},
		{"weighted", map[int]int{10: 3, 50: 1}, BrightnessStats{Average: 20, Min: 10, Max: 50}},
	}

	calc := NewBrightnessCalculator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hist Histogram
			for level, count := range tt.levels {
				hist[level] = count
			}

			stats, err := calc.SummarizeBrightness(hist)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stats)
			assert.LessOrEqual(t, stats.Min, stats.Average)
			assert.LessOrEqual(t, stats.Average, stats.Max)
		})
	}
}

func TestSummarizeBrightness_Empty(t *testing.T) {
	_, err := NewBrightnessCalculator().SummarizeBrightness(Histogram{})
	assert.ErrorIs(t, err, validation.ErrEmptyImage)
}

func TestComputeBandRatios(t *testing.T) {
	var hist Histogram
	hist[84] = 1
	hist[85] = 1
	hist[169] = 1
	hist[170] = 1

	bands := NewBrightnessCalculator().ComputeBandRatios(hist)
	assert.InDelta(t, 0.25, bands.Shadow, 1e-9)
	assert.InDelta(t, 0.5, bands.Midtone, 1e-9)
	assert.InDelta(t, 0.25, bands.Highlight, 1e-9)
	assert.InDelta(t, 1.0, bands.Shadow+bands.Midtone+bands.Highlight, 1e-9)
}

func TestComputeBandRatios_Empty(t *testing.T) {
	assert.Equal(t, BandRatios{}, NewBrightnessCalculator().ComputeBandRatios(Histogram{}))
}

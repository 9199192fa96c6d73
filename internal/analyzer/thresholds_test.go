package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseThresholds_Empty(t *testing.T) {
	thresholds, err := ParseThresholds(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultThresholds(), thresholds)
}

func TestParseThresholds_PartialOverride(t *testing.T) {
	data := []byte(`
long_range_min: 180
full_range:
  contrast_min: 0.75
`)
	thresholds, err := ParseThresholds(data)
	require.NoError(t, err)

	want := DefaultThresholds()
	want.LongRangeMin = 180
	want.FullRange.ContrastMin = 0.75
	assert.Equal(t, want, thresholds)
}

func TestParseThresholds_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown field", "long_range: 10\n"},
		{"malformed yaml", "long_range_min: [\n"},
		{"ratio out of range", "dominant_zone_min: 1.5\n"},
		{"short above long", "short_range_max: 220\n"},
		{"negative range", "long_range_min: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseThresholds([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestValidate_ReportsFirstInvalidRatio(t *testing.T) {
	thresholds := DefaultThresholds()
	thresholds.ShortContrastMax = 2
	thresholds.DominantZoneMin = -1
	thresholds.FullRange.MidMax = 3

	for i := 0; i < 20; i++ {
		err := thresholds.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "short_contrast_max")
	}
}

func TestLoadThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dominant_zone_min: 0.55\n"), 0o600))

	thresholds, err := LoadThresholds(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.55, thresholds.DominantZoneMin, 1e-9)

	_, err = LoadThresholds(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

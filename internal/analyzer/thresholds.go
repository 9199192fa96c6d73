package analyzer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// FullRangeThresholds gate the U-shaped full long tone override
type FullRangeThresholds struct {
	LowMin      float64 `yaml:"low_min"`
	HighMin     float64 `yaml:"high_min"`
	MidMax      float64 `yaml:"mid_max"`
	ContrastMin float64 `yaml:"contrast_min"`
}

// ClassifierThresholds holds every tunable cut-off of the tone classifier
type ClassifierThresholds struct {
	LongRangeMin     int                 `yaml:"long_range_min"`
	LongContrastMin  float64             `yaml:"long_contrast_min"`
	ShortRangeMax    int                 `yaml:"short_range_max"`
	ShortContrastMax float64             `yaml:"short_contrast_max"`
	DominantZoneMin  float64             `yaml:"dominant_zone_min"`
	FullRange        FullRangeThresholds `yaml:"full_range"`
}

// DefaultThresholds returns the standard classification cut-offs
func DefaultThresholds() ClassifierThresholds {
	return ClassifierThresholds{
		LongRangeMin:     200,
		LongContrastMin:  0.7,
		ShortRangeMax:    100,
		ShortContrastMax: 0.3,
		DominantZoneMin:  0.6,
		FullRange: FullRangeThresholds{
			LowMin:      0.25,
			HighMin:     0.25,
			MidMax:      0.3,
			ContrastMin: 0.8,
		},
	}
}

// Validate checks that the thresholds describe a consistent rule set
func (t ClassifierThresholds) Validate() error {
	if t.LongRangeMin < 0 || t.LongRangeMin > 255 {
		return fmt.Errorf("long_range_min must be within 0-255, got %d", t.LongRangeMin)
	}
	if t.ShortRangeMax < 0 || t.ShortRangeMax > 255 {
		return fmt.Errorf("short_range_max must be within 0-255, got %d", t.ShortRangeMax)
	}
	if t.ShortRangeMax > t.LongRangeMin {
		return fmt.Errorf("short_range_max (%d) must not exceed long_range_min (%d)", t.ShortRangeMax, t.LongRangeMin)
	}

	ratios := []struct {
		name  string
		value float64
	}{
		{"long_contrast_min", t.LongContrastMin},
		{"short_contrast_max", t.ShortContrastMax},
		{"dominant_zone_min", t.DominantZoneMin},
		{"full_range.low_min", t.FullRange.LowMin},
		{"full_range.high_min", t.FullRange.HighMin},
		{"full_range.mid_max", t.FullRange.MidMax},
		{"full_range.contrast_min", t.FullRange.ContrastMin},
	}
	for _, r := range ratios {
		if r.value < 0 || r.value > 1 {
			return fmt.Errorf("%s must be within 0-1, got %g", r.name, r.value)
		}
	}
	return nil
}

// ParseThresholds decodes YAML over the defaults; fields left out keep their default value
func ParseThresholds(data []byte) (ClassifierThresholds, error) {
	thresholds := DefaultThresholds()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&thresholds); err != nil && !errors.Is(err, io.EOF) {
		return ClassifierThresholds{}, fmt.Errorf("failed to parse thresholds: %w", err)
	}

	if err := thresholds.Validate(); err != nil {
		return ClassifierThresholds{}, fmt.Errorf("invalid thresholds: %w", err)
	}
	return thresholds, nil
}

// LoadThresholds reads a YAML rules file
func LoadThresholds(path string) (ClassifierThresholds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ClassifierThresholds{}, fmt.Errorf("failed to read thresholds file: %w", err)
	}
	return ParseThresholds(data)
}

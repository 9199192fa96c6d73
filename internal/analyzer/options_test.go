package analyzer

import (
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Thresholds != DefaultThresholds() {
		t.Errorf("Expected default thresholds, got %+v", opts.Thresholds)
	}
	if opts.MaxPixels != 600*600 {
		t.Errorf("Expected MaxPixels to be %d, got %d", 600*600, opts.MaxPixels)
	}
	if opts.MaxWorkers != 0 {
		t.Errorf("Expected MaxWorkers to be 0, got %d", opts.MaxWorkers)
	}
}

func TestWithMaxEdge(t *testing.T) {
	tests := []struct {
		edge int
		want int
	}{
		{600, 360000},
		{64, 4096},
		{0, 0},
		{-5, 0},
	}

	for _, tt := range tests {
		if got := DefaultOptions().WithMaxEdge(tt.edge).MaxPixels; got != tt.want {
			t.Errorf("WithMaxEdge(%d): expected MaxPixels %d, got %d", tt.edge, tt.want, got)
		}
	}
}

func TestOptionsChaining(t *testing.T) {
	custom := DefaultThresholds()
	custom.DominantZoneMin = 0.5

	base := DefaultOptions()
	opts := base.WithThresholds(custom).WithWorkers(3)

	if opts.Thresholds.DominantZoneMin != 0.5 {
		t.Errorf("Expected DominantZoneMin 0.5, got %f", opts.Thresholds.DominantZoneMin)
	}
	if opts.MaxWorkers != 3 {
		t.Errorf("Expected 3 workers, got %d", opts.MaxWorkers)
	}
	if base.MaxWorkers != 0 || base.Thresholds.DominantZoneMin != 0.6 {
		t.Error("Expected builders to leave the receiver unchanged")
	}
}

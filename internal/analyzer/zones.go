package analyzer

import "math"

// ZoneCount is the number of tonal zones the histogram is divided into
const ZoneCount = 10

// zoneWidth is 255/10; bin 255 is folded into zone 9 by the closing bound
const zoneWidth = 25.5

// zoneBounds[i] is the first bin of zone i; the last entry closes zone 9 at 256.
var zoneBounds = func() [ZoneCount + 1]int {
	var bounds [ZoneCount + 1]int
	for i := 0; i < ZoneCount; i++ {
		bounds[i] = int(math.Floor(float64(i) * zoneWidth))
	}
	bounds[ZoneCount] = HistogramBins
	return bounds
}()

// Zone groups: 0-2 dark, 3-6 middle, 7-9 bright
const (
	lowZoneEnd = 3
	midZoneEnd = 7
)

// ZoneProfile is the share of pixels falling in each of the ten zones,
// plus the grouped low, middle and high shares
type ZoneProfile struct {
	Ratios [ZoneCount]float64
	Low    float64
	Mid    float64
	High   float64
}

// ZonePercentages are the grouped shares rounded to whole percents
type ZonePercentages struct {
	Low  int
	Mid  int
	High int
}

// ZoneBounds returns the half-open [start, end) bin range of zone i
func ZoneBounds(i int) (int, int) {
	return zoneBounds[i], zoneBounds[i+1]
}

// SegmentZones divides the histogram into ten zones
func SegmentZones(hist Histogram) ZoneProfile {
	var profile ZoneProfile
	total := hist.Total()
	if total == 0 {
		return profile
	}

	var counts [ZoneCount]int
	var low, mid, high int
	for i := 0; i < ZoneCount; i++ {
		for level := zoneBounds[i]; level < zoneBounds[i+1]; level++ {
			counts[i] += hist[level]
		}
		switch {
		case i < lowZoneEnd:
			low += counts[i]
		case i < midZoneEnd:
			mid += counts[i]
		default:
			high += counts[i]
		}
	}

	n := float64(total)
	for i, c := range counts {
		profile.Ratios[i] = float64(c) / n
	}
	profile.Low = float64(low) / n
	profile.Mid = float64(mid) / n
	profile.High = float64(high) / n
	return profile
}

// Percentages returns the grouped shares as rounded percents
func (p ZoneProfile) Percentages() ZonePercentages {
	return ZonePercentages{
		Low:  int(math.Round(p.Low * 100)),
		Mid:  int(math.Round(p.Mid * 100)),
		High: int(math.Round(p.High * 100)),
	}
}

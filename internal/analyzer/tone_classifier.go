package analyzer

import (
	"fmt"
	"strconv"
)

// RangeClass is the tonal range of an image
type RangeClass int

const (
	RangeLong RangeClass = iota
	RangeMedium
	RangeShort
)

// Score returns the numeric range score used in notation
func (r RangeClass) Score() int {
	switch r {
	case RangeLong:
		return 10
	case RangeMedium:
		return 6
	default:
		return 3
	}
}

func (r RangeClass) String() string {
	switch r {
	case RangeLong:
		return "long"
	case RangeMedium:
		return "medium"
	default:
		return "short"
	}
}

// ZoneClass is where most of the pixel mass sits
type ZoneClass int

const (
	ZoneHigh ZoneClass = iota
	ZoneMid
	ZoneLow
)

// Score returns the numeric zone score used in notation
func (z ZoneClass) Score() int {
	switch z {
	case ZoneHigh:
		return 9
	case ZoneMid:
		return 5
	default:
		return 1
	}
}

func (z ZoneClass) String() string {
	switch z {
	case ZoneHigh:
		return "high-key"
	case ZoneMid:
		return "mid-key"
	default:
		return "low-key"
	}
}

// ToneClassification is the immutable outcome of classifying one histogram
type ToneClassification struct {
	Type       ToneType
	Range      RangeClass
	Zone       ZoneClass
	FullRange  bool
	Contrast   float64
	Confidence float64
	Factors    []string
	Notation   string
	Zones      ZonePercentages
	Profile    ZoneProfile
}

type toneEntry struct {
	toneType   ToneType
	confidence float64
}

// toneTable is indexed [ZoneClass][RangeClass]
var toneTable = [3][3]toneEntry{
	ZoneHigh: {
		RangeLong:   {ToneHighKeyLong, 0.90},
		RangeMedium: {ToneHighKeyMedium, 0.85},
		RangeShort:  {ToneHighKeyShort, 0.85},
	},
	ZoneMid: {
		RangeLong:   {ToneMidKeyLong, 0.80},
		RangeMedium: {ToneMidKeyMedium, 0.75},
		RangeShort:  {ToneMidKeyShort, 0.75},
	},
	ZoneLow: {
		RangeLong:   {ToneLowKeyLong, 0.90},
		RangeMedium: {ToneLowKeyMedium, 0.85},
		RangeShort:  {ToneLowKeyShort, 0.85},
	},
}

var zoneFactors = [3]string{
	ZoneHigh: "bright tones dominate",
	ZoneMid:  "midtones dominate",
	ZoneLow:  "dark tones dominate",
}

var rangeFactors = [3][]string{
	RangeLong:   {"strong contrast", "wide brightness range"},
	RangeMedium: {"moderate contrast"},
	RangeShort:  {"soft contrast", "narrow brightness range"},
}

var fullRangeFactors = []string{"high contrast", "U-shaped histogram", "extremely wide brightness range"}

const fullRangeConfidence = 0.9

// toneClassifier implements ToneClassifier
type toneClassifier struct {
	thresholds ClassifierThresholds
}

// NewToneClassifier creates a classifier with the given thresholds
func NewToneClassifier(thresholds ClassifierThresholds) ToneClassifier {
	return &toneClassifier{thresholds: thresholds}
}

// Classify assigns a tone category from the histogram and its min and max levels
func (tc *toneClassifier) Classify(hist Histogram, minLevel, maxLevel int) ToneClassification {
	profile := SegmentZones(hist)
	tonalRange := maxLevel - minLevel
	contrast := float64(tonalRange) / 255

	rangeClass := tc.classifyRange(tonalRange, contrast)
	zoneClass := tc.classifyZone(profile)

	result := ToneClassification{
		Range:    rangeClass,
		Zone:     zoneClass,
		Contrast: contrast,
		Zones:    profile.Percentages(),
		Profile:  profile,
	}

	if tc.isFullRange(profile, contrast) {
		result.Type = ToneFullLong
		result.FullRange = true
		result.Confidence = fullRangeConfidence
		result.Notation = fullRangeNotation
		result.Factors = append([]string(nil), fullRangeFactors...)
		return result
	}

	entry := toneTable[zoneClass][rangeClass]
	result.Type = entry.toneType
	result.Confidence = entry.confidence
	result.Notation = notationFor(rangeClass, zoneClass)

	factors := make([]string, 0, 4)
	factors = append(factors, zoneFactors[zoneClass])
	factors = append(factors, rangeFactors[rangeClass]...)
	factors = append(factors, fmt.Sprintf("tonal notation: %s", result.Notation))
	result.Factors = factors
	return result
}

func (tc *toneClassifier) classifyRange(tonalRange int, contrast float64) RangeClass {
	t := tc.thresholds
	switch {
	case tonalRange > t.LongRangeMin && contrast > t.LongContrastMin:
		return RangeLong
	case tonalRange < t.ShortRangeMax && contrast < t.ShortContrastMax:
		return RangeShort
	default:
		return RangeMedium
	}
}

func (tc *toneClassifier) classifyZone(profile ZoneProfile) ZoneClass {
	switch {
	case profile.High > tc.thresholds.DominantZoneMin:
		return ZoneHigh
	case profile.Low > tc.thresholds.DominantZoneMin:
		return ZoneLow
	default:
		return ZoneMid
	}
}

func (tc *toneClassifier) isFullRange(profile ZoneProfile, contrast float64) bool {
	fr := tc.thresholds.FullRange
	return profile.Low > fr.LowMin &&
		profile.High > fr.HighMin &&
		profile.Mid < fr.MidMax &&
		contrast > fr.ContrastMin
}

func notationFor(r RangeClass, z ZoneClass) string {
	return strconv.Itoa(r.Score()) + "," + strconv.Itoa(z.Score())
}

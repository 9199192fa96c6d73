package analyzer

import (
	"fmt"
	"strings"

	"github.com/arbovm/levenshtein"
)

// ToneType names one of the ten tonal categories
type ToneType string

const (
	ToneHighKeyLong   ToneType = "high-key long tone"
	ToneHighKeyMedium ToneType = "high-key medium tone"
	ToneHighKeyShort  ToneType = "high-key short tone"
	ToneMidKeyLong    ToneType = "mid-key long tone"
	ToneMidKeyMedium  ToneType = "mid-key medium tone"
	ToneMidKeyShort   ToneType = "mid-key short tone"
	ToneLowKeyLong    ToneType = "low-key long tone"
	ToneLowKeyMedium  ToneType = "low-key medium tone"
	ToneLowKeyShort   ToneType = "low-key short tone"
	ToneFullLong      ToneType = "full long tone"
)

const (
	fullRangeNotation  = "10"
	maxSuggestDistance = 6
)

var allToneTypes = []ToneType{
	ToneHighKeyLong, ToneHighKeyMedium, ToneHighKeyShort,
	ToneMidKeyLong, ToneMidKeyMedium, ToneMidKeyShort,
	ToneLowKeyLong, ToneLowKeyMedium, ToneLowKeyShort,
	ToneFullLong,
}

// ToneTypes returns the ten categories in table order
func ToneTypes() []ToneType {
	out := make([]ToneType, len(allToneTypes))
	copy(out, allToneTypes)
	return out
}

// Notation returns the fixed notation string of a tone type
func (t ToneType) Notation() string {
	if t == ToneFullLong {
		return fullRangeNotation
	}
	for z := ZoneHigh; z <= ZoneLow; z++ {
		for r := RangeLong; r <= RangeShort; r++ {
			if toneTable[z][r].toneType == t {
				return notationFor(r, z)
			}
		}
	}
	return ""
}

// UnknownToneTypeError reports a tone name outside the taxonomy with the closest valid name
type UnknownToneTypeError struct {
	Name       string
	Suggestion ToneType
}

func (e *UnknownToneTypeError) Error() string {
	if e.Suggestion == "" {
		return fmt.Sprintf("unknown tone type %q", e.Name)
	}
	return fmt.Sprintf("unknown tone type %q, did you mean %q?", e.Name, e.Suggestion)
}

// ParseToneType resolves a user-supplied name, tolerating case, underscores and a missing " tone" suffix
func ParseToneType(name string) (ToneType, error) {
	normalized := normalizeToneName(name)
	for _, t := range allToneTypes {
		if string(t) == normalized {
			return t, nil
		}
	}
	return "", &UnknownToneTypeError{Name: name, Suggestion: suggestToneType(normalized)}
}

func normalizeToneName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "_", " ")
	n = strings.Join(strings.Fields(n), " ")
	if n != "" && !strings.HasSuffix(n, " tone") {
		n += " tone"
	}
	return n
}

func suggestToneType(name string) ToneType {
	var best ToneType
	bestDist := maxSuggestDistance + 1
	for _, t := range allToneTypes {
		if d := levenshtein.Distance(name, string(t)); d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}

package detectors

import "strings"

type adjustment struct {
	factor  float64
	applies func(id string) bool
}

func idContainsAny(parts ...string) func(string) bool {
	return func(id string) bool {
		for _, p := range parts {
			if strings.Contains(id, p) {
				return true
			}
		}
		return false
	}
}

func idIn(ids ...string) func(string) bool {
	return func(id string) bool {
		for _, x := range ids {
			if id == x {
				return true
			}
		}
		return false
	}
}

var (
	scriptBoost = adjustment{factor: 1.2, applies: idContainsAny("API_KEY", "PASSWORD")}
	configBoost = adjustment{factor: 1.3, applies: idContainsAny("API_KEY", "SECRET", "PASSWORD")}
)

// adjustments is keyed by lower-cased file type.
var adjustments = map[string]adjustment{
	"js":         scriptBoost,
	"javascript": scriptBoost,
	"ts":         scriptBoost,
	"typescript": scriptBoost,
	"json":       configBoost,
	"config":     configBoost,
	"html":       {factor: 0.8, applies: idIn("IP_ADDRESS", "INTERNAL_URL")},
	"sql":        {factor: 1.2, applies: idContainsAny("SSN", "CREDIT_CARD")},
}

// Adjust applies the file-type multiplier for rule id and clamps the result
// to [0, 1].
func Adjust(score float64, fileType, id string) float64 {
	if a, ok := adjustments[strings.ToLower(fileType)]; ok && a.applies(id) {
		score *= a.factor
	}
	return clamp(score)
}

func clamp(s float64) float64 {
	if s > 1 {
		return 1
	}
	if s < 0 {
		return 0
	}
	return s
}

package types

// Severity is a coarse-grained risk level for a finding, derived from its score.
type Severity string

const (
	SevLow      Severity = "Low"
	SevMed      Severity = "Medium"
	SevHigh     Severity = "High"
	SevCritical Severity = "Critical"
)

// Severities lists every level from most to least severe.
var Severities = []Severity{SevCritical, SevHigh, SevMed, SevLow}

// SeverityFromScore maps a confidence score in [0,1] to a severity level.
func SeverityFromScore(score float64) Severity {
	switch {
	case score >= 0.9:
		return SevCritical
	case score >= 0.75:
		return SevHigh
	case score >= 0.5:
		return SevMed
	default:
		return SevLow
	}
}

// Rank orders severities so callers can compare thresholds (Low=1 .. Critical=4).
// Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SevLow:
		return 1
	case SevMed:
		return 2
	case SevHigh:
		return 3
	case SevCritical:
		return 4
	}
	return 0
}

// Finding categories.
const (
	CatPII         = "PII"
	CatFinancial   = "Financial"
	CatCredentials = "Credentials"
	CatHealthcare  = "Healthcare"
	CatNetwork     = "Network"
	CatToken       = "Token"
	CatEncoded     = "Encoded"
	CatHash        = "Hash"
	CatCustom      = "Custom"
)

// Location is a 1-based line and column of a match start.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Finding describes one piece of shadow data detected in a scanned text. Value and
// Context are already masked for display.
type Finding struct {
	Type     string   `json:"type"`
	Pattern  string   `json:"pattern"`
	Value    string   `json:"value"`
	Location Location `json:"location"`
	Context  string   `json:"context"`
	Score    float64  `json:"score"`
	Category string   `json:"category"`
	Severity Severity `json:"severity"`
	// Path is set when the text came from a file or commit; empty for raw text.
	Path string `json:"path,omitempty"`
	// RecordID is set by callers that persist the finding (e.g. a report ID).
	RecordID string `json:"recordId,omitempty"`
}

// Metadata summarizes a scan. It is derived from Findings and recomputed per scan.
type Metadata struct {
	TotalPatterns  int            `json:"totalPatterns"`
	CategoryCounts map[string]int `json:"categoryCounts"`
	HighestScore   float64        `json:"highestScore"`
	AverageScore   float64        `json:"averageScore"`
}

// Result is the output of a single scan: findings ordered by descending score.
type Result struct {
	Findings []Finding `json:"findings"`
	Metadata Metadata  `json:"metadata"`
}

// EmptyResult returns a result with no findings whose collections are non-nil, so
// it serializes as {"findings":[],"metadata":{"categoryCounts":{},...}}.
func EmptyResult() Result {
	return Result{
		Findings: []Finding{},
		Metadata: Metadata{CategoryCounts: map[string]int{}},
	}
}

package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/redactyl/shadowscan/internal/types"
)

// Baseline records findings that are known and accepted. Keys hold masked
// values only.
type Baseline struct {
	Items map[string]bool `json:"items"`
}

// LoadBaseline reads a baseline file. A missing file yields an empty baseline
// and the read error.
func LoadBaseline(path string) (Baseline, error) {
	b := Baseline{Items: map[string]bool{}}
	f, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(f, &b); err != nil {
		return Baseline{Items: map[string]bool{}}, fmt.Errorf("parse baseline %s: %w", path, err)
	}
	if b.Items == nil {
		b.Items = map[string]bool{}
	}
	return b, nil
}

func SaveBaseline(path string, findings []types.Finding) error {
	b := Baseline{Items: map[string]bool{}}
	for _, f := range findings {
		b.Items[key(f)] = true
	}
	buf, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

// FilterNewFindings drops findings already recorded in base.
func FilterNewFindings(findings []types.Finding, base Baseline) []types.Finding {
	out := []types.Finding{}
	for _, f := range findings {
		if !base.Items[key(f)] {
			out = append(out, f)
		}
	}
	return out
}

func key(f types.Finding) string {
	return fmt.Sprintf("%s|%s|%d|%s", f.Path, f.Type, f.Location.Line, f.Value)
}

// ShouldFail reports whether any finding is at or above the failOn severity
// (low, medium, high or critical; unknown values mean medium).
func ShouldFail(findings []types.Finding, failOn string) bool {
	th := ParseSeverity(failOn).Rank()
	if th == 0 {
		th = types.SevMed.Rank()
	}
	for _, f := range findings {
		if f.Severity.Rank() >= th {
			return true
		}
	}
	return false
}

// ParseSeverity maps a case-insensitive name to a Severity. Unknown names
// return the empty Severity.
func ParseSeverity(s string) types.Severity {
	for _, sev := range types.Severities {
		if strings.EqualFold(s, string(sev)) {
			return sev
		}
	}
	return ""
}

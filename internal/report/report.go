// Package report turns engine findings into persisted reports, human
// summaries and rendered output (table, text, SARIF), and manages baselines.
package report

import (
	"fmt"
	"time"

	"github.com/redactyl/shadowscan/internal/types"
)

// ScanType tags reports produced by the shadow data scanner.
const ScanType = "shadow"

// Finding is the persisted, display-oriented shape of an engine finding.
type Finding struct {
	Type        string         `json:"type"`
	Severity    types.Severity `json:"severity"`
	Description string         `json:"description"`
	Location    string         `json:"location"`
	Context     string         `json:"context,omitempty"`
}

// Report is one stored scan result for a tenant.
type Report struct {
	ID             string         `json:"id"`
	Tenant         string         `json:"tenant"`
	Title          string         `json:"title"`
	ScanType       string         `json:"scanType"`
	Summary        string         `json:"summary"`
	RiskLevel      string         `json:"riskLevel"`
	SeverityCounts map[string]int `json:"severityCounts"`
	Findings       []Finding      `json:"findings"`
	Source         Source         `json:"source"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// Source records where the scanned text came from, best-effort.
type Source struct {
	Root   string `json:"root,omitempty"`
	Repo   string `json:"repo,omitempty"`
	Commit string `json:"commit,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// New builds a report for tenant from engine findings. The ID is assigned by
// the store on save.
func New(tenant string, findings []types.Finding, src Source, now time.Time) Report {
	return Report{
		Tenant:         tenant,
		Title:          "Shadow Data Scan",
		ScanType:       ScanType,
		Summary:        Summary(findings),
		RiskLevel:      RiskLevel(findings),
		SeverityCounts: SeverityCounts(findings),
		Findings:       FromFindings(findings),
		Source:         src,
		CreatedAt:      now.UTC(),
	}
}

// FromFindings maps engine findings into report findings.
func FromFindings(findings []types.Finding) []Finding {
	out := make([]Finding, 0, len(findings))
	for _, f := range findings {
		out = append(out, Finding{
			Type:        f.Type,
			Severity:    f.Severity,
			Description: fmt.Sprintf("%s detected: %s", f.Pattern, f.Value),
			Location:    Location(f),
			Context:     f.Context,
		})
	}
	return out
}

// Location formats a finding position as "Line L, Column C", prefixed by the
// file path when there is one.
func Location(f types.Finding) string {
	loc := fmt.Sprintf("Line %d, Column %d", f.Location.Line, f.Location.Column)
	if f.Path != "" {
		return f.Path + ": " + loc
	}
	return loc
}

// SeverityCounts counts findings per severity. Every level is present.
func SeverityCounts(findings []types.Finding) map[string]int {
	counts := make(map[string]int, len(types.Severities))
	for _, s := range types.Severities {
		counts[string(s)] = 0
	}
	for _, f := range findings {
		counts[string(f.Severity)]++
	}
	return counts
}

// RiskLevel rolls findings up into low, medium, high or critical.
func RiskLevel(findings []types.Finding) string {
	c := SeverityCounts(findings)
	switch {
	case c[string(types.SevCritical)] > 0:
		return "critical"
	case c[string(types.SevHigh)] > 0:
		return "high"
	case len(findings) > 3:
		return "medium"
	default:
		return "low"
	}
}

// Summary is the one-paragraph human summary stored with a report.
func Summary(findings []types.Finding) string {
	if len(findings) == 0 {
		return "No shadow data detected in the provided code."
	}
	c := SeverityCounts(findings)
	s := fmt.Sprintf("Detected %d instances of potential shadow data (Critical: %d, High: %d, Medium: %d, Low: %d). Overall risk level: %s.",
		len(findings), c[string(types.SevCritical)], c[string(types.SevHigh)], c[string(types.SevMed)], c[string(types.SevLow)], RiskLevel(findings))
	if n := c[string(types.SevCritical)]; n > 0 {
		s += fmt.Sprintf(" Found %d critical issues that require immediate attention.", n)
	}
	return s
}

package report

import (
	"encoding/json"
	"io"

	"github.com/redactyl/shadowscan/internal/detectors"
	"github.com/redactyl/shadowscan/internal/types"
)

const sarifSchema = "https://json.schemastore.org/sarif-2.1.0.json"

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool       sarifTool      `json:"tool"`
	Results    []sarifResult  `json:"results"`
	Properties map[string]any `json:"properties,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
	Properties       sarifProps   `json:"properties"`
}

type sarifProps struct {
	Category string  `json:"category,omitempty"`
	Score    float64 `json:"score"`
}

type sarifResult struct {
	RuleID     string       `json:"ruleId"`
	RuleIndex  int          `json:"ruleIndex"`
	Level      string       `json:"level"`
	Message    sarifMessage `json:"message"`
	Locations  []sarifLoc   `json:"locations"`
	Properties sarifProps   `json:"properties"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt    `json:"artifactLocation"`
	Region           sarifRegion `json:"region"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
}

func sevToLevel(s types.Severity) string {
	switch s {
	case types.SevCritical, types.SevHigh:
		return "error"
	case types.SevMed:
		return "warning"
	default:
		return "note"
	}
}

// WriteSARIF writes findings as SARIF 2.1.0 to the provided writer.
func WriteSARIF(w io.Writer, findings []types.Finding, toolVersion string) error {
	return WriteSARIFWithProperties(w, findings, toolVersion, nil)
}

// WriteSARIFWithProperties is WriteSARIF with run-level properties attached
// (for example files scanned or the scan root).
func WriteSARIFWithProperties(w io.Writer, findings []types.Finding, toolVersion string, props map[string]any) error {
	run := sarifRun{
		Tool:       sarifTool{Driver: sarifDriver{Name: "shadowscan", Version: toolVersion}},
		Results:    []sarifResult{},
		Properties: props,
	}
	ruleIndex := map[string]int{}
	for _, f := range findings {
		idx, ok := ruleIndex[f.Type]
		if !ok {
			idx = len(run.Tool.Driver.Rules)
			ruleIndex[f.Type] = idx
			rule := sarifRule{ID: f.Type, ShortDescription: sarifMessage{Text: f.Pattern}}
			if in, ok := detectors.Lookup(f.Type); ok {
				rule.ShortDescription.Text = in.Description
				rule.Properties = sarifProps{Category: in.Category, Score: in.Score}
			}
			run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, rule)
		}
		uri := f.Path
		if uri == "" {
			uri = "stdin"
		}
		run.Results = append(run.Results, sarifResult{
			RuleID:    f.Type,
			RuleIndex: idx,
			Level:     sevToLevel(f.Severity),
			Message:   sarifMessage{Text: f.Pattern + " detected: " + f.Value},
			Locations: []sarifLoc{{
				PhysicalLocation: sarifPhys{
					ArtifactLocation: sarifArt{URI: uri},
					Region:           sarifRegion{StartLine: f.Location.Line, StartColumn: f.Location.Column},
				},
			}},
			Properties: sarifProps{Category: f.Category, Score: f.Score},
		})
	}
	doc := sarif{Schema: sarifSchema, Version: "2.1.0", Runs: []sarifRun{run}}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

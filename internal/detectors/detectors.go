package detectors

import (
	"fmt"

	"github.com/redactyl/shadowscan/internal/types"
)

// CustomKeyword is the rule ID reported for caller-supplied keyword matches.
const CustomKeyword = "CUSTOM_KEYWORD"

// CustomKeywordScore is the fixed confidence of a custom keyword finding.
const CustomKeywordScore = 0.7

// Rule kinds reported by List.
const (
	KindPattern = "pattern"
	KindContext = "context"
	KindKeyword = "keyword"
)

// Info describes one rule for listings and help output.
type Info struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
	Extended    bool    `json:"extended,omitempty"`
}

func init() {
	if err := validateRegistry(); err != nil {
		panic(err)
	}
}

// validateRegistry rejects duplicate IDs, scores outside (0,1] and rules
// without a regex or category.
func validateRegistry() error {
	seen := map[string]bool{CustomKeyword: true}
	check := func(id string, hasRegex bool, score float64, category string) error {
		if id == "" {
			return fmt.Errorf("detectors: rule with empty id")
		}
		if seen[id] {
			return fmt.Errorf("detectors: duplicate rule id %q", id)
		}
		seen[id] = true
		if !hasRegex {
			return fmt.Errorf("detectors: rule %s has no regex", id)
		}
		if score <= 0 || score > 1 {
			return fmt.Errorf("detectors: rule %s score %v out of range", id, score)
		}
		if category == "" {
			return fmt.Errorf("detectors: rule %s has no category", id)
		}
		return nil
	}
	for _, r := range Patterns(true) {
		if err := check(r.Name, r.Regex != nil, r.Score, r.Category); err != nil {
			return err
		}
	}
	for _, r := range contextRules {
		if err := check(r.Name, r.Regex != nil, r.Score, r.Category); err != nil {
			return err
		}
		if len(r.Keywords) == 0 {
			return fmt.Errorf("detectors: context rule %s has no keywords", r.Name)
		}
	}
	return nil
}

// List returns every rule in discovery order: patterns, extended patterns,
// context rules, then the custom keyword rule.
func List() []Info {
	var out []Info
	for _, r := range basePatterns {
		out = append(out, Info{ID: r.Name, Kind: KindPattern, Category: r.Category, Description: r.Description, Score: r.Score})
	}
	for _, r := range extendedPatterns {
		out = append(out, Info{ID: r.Name, Kind: KindPattern, Category: r.Category, Description: r.Description, Score: r.Score, Extended: true})
	}
	for _, r := range contextRules {
		out = append(out, Info{ID: r.Name, Kind: KindContext, Category: r.Category, Description: r.Description, Score: r.Score})
	}
	out = append(out, Info{ID: CustomKeyword, Kind: KindKeyword, Category: types.CatCustom, Description: "Custom keyword", Score: CustomKeywordScore})
	return out
}

// IDs returns all rule identifiers in discovery order.
func IDs() []string {
	infos := List()
	out := make([]string, 0, len(infos))
	for _, in := range infos {
		out = append(out, in.ID)
	}
	return out
}

// Lookup returns the Info for id.
func Lookup(id string) (Info, bool) {
	for _, in := range List() {
		if in.ID == id {
			return in, true
		}
	}
	return Info{}, false
}

// IsExtended reports whether id names an opt-in rule.
func IsExtended(id string) bool {
	for _, r := range extendedPatterns {
		if r.Name == id {
			return true
		}
	}
	return false
}

package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/redactyl/shadowscan/internal/comments"
	"github.com/redactyl/shadowscan/internal/detectors"
	"github.com/redactyl/shadowscan/internal/redact"
	"github.com/redactyl/shadowscan/internal/types"
)

var (
	// ErrInputTooLarge is returned when text exceeds Options.MaxInputBytes and
	// truncation is off.
	ErrInputTooLarge = errors.New("engine: input too large")
	// ErrInternal wraps a recovered failure inside a scan. No partial result is
	// returned with it.
	ErrInternal = errors.New("engine: internal error")
)

const (
	DefaultContextWindow   = 20
	DefaultProximityWindow = 50
	DefaultMaxInputBytes   = 1 << 20
)

// commentDampening scales the score of matches found inside comments.
const commentDampening = 0.7

// lowRiskTypes are file types that are never scanned.
var lowRiskTypes = map[string]bool{
	"css": true, "svg": true, "png": true, "jpg": true, "jpeg": true, "gif": true, "ico": true,
}

// Options tune a single Scan call. The zero value uses the defaults above.
type Options struct {
	// ContextWindow is the number of characters (runes) shown on each side of a match.
	ContextWindow int
	// ProximityWindow is how far, in characters (runes), a context rule keyword
	// may be from its match.
	ProximityWindow int
	// MaxInputBytes bounds the input size. Negative disables the limit.
	MaxInputBytes int
	// Truncate cuts oversized input instead of failing.
	Truncate bool
	// Keywords are caller-supplied terms flagged on every line that contains them.
	Keywords []string
	// Extended enables the opt-in token, blob and hash rules.
	Extended bool
	// StrictCards drops card numbers failing the Luhn check.
	StrictCards bool
}

// DefaultOptions returns Options with every window and limit set explicitly.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.ContextWindow <= 0 {
		o.ContextWindow = DefaultContextWindow
	}
	if o.ProximityWindow <= 0 {
		o.ProximityWindow = DefaultProximityWindow
	}
	if o.MaxInputBytes == 0 {
		o.MaxInputBytes = DefaultMaxInputBytes
	}
	return o
}

// IsLowRisk reports whether fileType is skipped without scanning.
func IsLowRisk(fileType string) bool {
	return lowRiskTypes[strings.ToLower(fileType)]
}

// Scan runs every rule against text and returns findings sorted by descending
// score. It is safe for concurrent use. On error the returned Result is zero.
func Scan(text, fileType string, opts Options) (res types.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = types.Result{}
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()
	if IsLowRisk(fileType) {
		return types.EmptyResult(), nil
	}
	opts = opts.withDefaults()
	if opts.MaxInputBytes > 0 && len(text) > opts.MaxInputBytes {
		if !opts.Truncate {
			return types.Result{}, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrInputTooLarge, len(text), opts.MaxInputBytes)
		}
		text = truncate(text, opts.MaxInputBytes)
	}

	s := &scan{
		text:     text,
		fileType: fileType,
		opts:     opts,
		comments: comments.Build(text, fileType),
		lines:    lineStarts(text),
		findings: []types.Finding{},
	}
	s.patterns()
	s.contextRules()
	s.keywords()

	sort.SliceStable(s.findings, func(i, j int) bool { return s.findings[i].Score > s.findings[j].Score })
	return types.Result{Findings: s.findings, Metadata: Summarize(s.findings)}, nil
}

// Summarize computes scan metadata for findings.
func Summarize(findings []types.Finding) types.Metadata {
	md := types.Metadata{CategoryCounts: map[string]int{}}
	if len(findings) == 0 {
		return md
	}
	sum := 0.0
	for _, f := range findings {
		md.TotalPatterns++
		md.CategoryCounts[f.Category]++
		if f.Score > md.HighestScore {
			md.HighestScore = f.Score
		}
		sum += f.Score
	}
	md.AverageScore = sum / float64(len(findings))
	return md
}

type scan struct {
	text     string
	fileType string
	opts     Options
	comments *comments.Index
	lines    []int
	findings []types.Finding
}

func (s *scan) patterns() {
	fo := detectors.FilterOptions{StrictCards: s.opts.StrictCards}
	for _, rule := range detectors.Patterns(s.opts.Extended) {
		for _, loc := range rule.Regex.FindAllStringIndex(s.text, -1) {
			start, end := loc[0], loc[1]
			match := s.text[start:end]
			snippet := s.window(start, end, s.opts.ContextWindow)
			score := s.dampen(rule.Score, start)
			score = detectors.Adjust(score, s.fileType, rule.Name)
			if detectors.FalsePositive(rule.Name, match, snippet, fo) {
				continue
			}
			s.emit(rule.Name, rule.Description, rule.Category, rule.Mask, match, snippet, start, score)
		}
	}
}

func (s *scan) contextRules() {
	lower := strings.ToLower(s.text)
	for _, rule := range detectors.ContextRules() {
		if !containsAny(lower, rule.Keywords) {
			continue
		}
		for _, loc := range rule.Regex.FindAllStringIndex(s.text, -1) {
			start, end := loc[0], loc[1]
			near := strings.ToLower(s.window(start, end, s.opts.ProximityWindow))
			if !containsAny(near, rule.Keywords) {
				continue
			}
			snippet := s.window(start, end, s.opts.ContextWindow)
			score := s.dampen(rule.Score, start)
			score = detectors.Adjust(score, s.fileType, rule.Name)
			s.emit(rule.Name, rule.Description, rule.Category, rule.Mask, s.text[start:end], snippet, start, score)
		}
	}
}

// keywords flags each caller-supplied keyword once per line that contains it,
// case-insensitively. Blank and repeated keywords are ignored.
func (s *scan) keywords() {
	kws := normalizeKeywords(s.opts.Keywords)
	if len(kws) == 0 {
		return
	}
	for i, line := range strings.Split(s.text, "\n") {
		lowerLine := strings.ToLower(line)
		for _, kw := range kws {
			idx := strings.Index(lowerLine, strings.ToLower(kw))
			if idx < 0 {
				continue
			}
			score := detectors.CustomKeywordScore
			s.findings = append(s.findings, types.Finding{
				Type:     detectors.CustomKeyword,
				Pattern:  fmt.Sprintf("Custom keyword %q", kw),
				Value:    kw,
				Location: types.Location{Line: i + 1, Column: utf8.RuneCountInString(lowerLine[:idx]) + 1},
				Context:  strings.TrimSpace(line),
				Score:    score,
				Category: types.CatCustom,
				Severity: types.SeverityFromScore(score),
			})
		}
	}
}

func (s *scan) emit(id, description, category string, mask redact.Kind, match, snippet string, start int, score float64) {
	s.findings = append(s.findings, types.Finding{
		Type:     id,
		Pattern:  description,
		Value:    redact.Mask(match, mask),
		Location: s.locate(start),
		Context:  redact.Mask(snippet, mask),
		Score:    score,
		Category: category,
		Severity: types.SeverityFromScore(score),
	})
}

func (s *scan) dampen(score float64, start int) float64 {
	if s.comments.Contains(start) {
		return score * commentDampening
	}
	return score
}

// window returns the match plus up to w runes on each side.
func (s *scan) window(start, end, w int) string {
	a := start
	for i := 0; i < w && a > 0; i++ {
		_, n := utf8.DecodeLastRuneInString(s.text[:a])
		a -= n
	}
	b := end
	for i := 0; i < w && b < len(s.text); i++ {
		_, n := utf8.DecodeRuneInString(s.text[b:])
		b += n
	}
	return s.text[a:b]
}

// locate converts a byte offset into a 1-based line and rune column.
func (s *scan) locate(offset int) types.Location {
	i := sort.Search(len(s.lines), func(i int) bool { return s.lines[i] > offset }) - 1
	return types.Location{
		Line:   i + 1,
		Column: utf8.RuneCountInString(s.text[s.lines[i]:offset]) + 1,
	}
}

// lineStarts returns the byte offset at which each line begins.
func lineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func normalizeKeywords(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, kw := range in {
		kw = strings.TrimSpace(kw)
		key := strings.ToLower(kw)
		if kw == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
	}
	return out
}

// truncate cuts text to at most n bytes without splitting a rune.
func truncate(text string, n int) string {
	if len(text) <= n {
		return text
	}
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n]
}

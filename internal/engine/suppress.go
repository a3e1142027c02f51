package engine

import (
	"strings"

	"github.com/redactyl/shadowscan/internal/types"
)

// Inline suppression markers, usually placed in a comment.
const (
	markerIgnore   = "shadowscan:ignore"
	markerNextLine = "shadowscan:ignore-next-line"
	markerStart    = "shadowscan:ignore-start"
	markerEnd      = "shadowscan:ignore-end"
)

// suppressedLines returns the 1-based line numbers silenced by inline markers.
// Marker lines themselves are always suppressed.
func suppressedLines(text string) map[int]bool {
	if !strings.Contains(text, markerIgnore) {
		return nil
	}
	out := map[int]bool{}
	region := false
	skipNext := false
	for i, t := range strings.Split(text, "\n") {
		line := i + 1
		switch {
		case strings.Contains(t, markerStart):
			region = true
			out[line] = true
			continue
		case strings.Contains(t, markerEnd):
			region = false
			out[line] = true
			continue
		}
		if region {
			out[line] = true
			continue
		}
		if skipNext {
			skipNext = false
			out[line] = true
		}
		if strings.Contains(t, markerNextLine) {
			skipNext = true
			out[line] = true
			continue
		}
		if strings.Contains(t, markerIgnore) {
			out[line] = true
		}
	}
	return out
}

// dropSuppressed removes findings located on suppressed lines.
func dropSuppressed(findings []types.Finding, lines map[int]bool) []types.Finding {
	if len(lines) == 0 {
		return findings
	}
	out := findings[:0]
	for _, f := range findings {
		if !lines[f.Location.Line] {
			out = append(out, f)
		}
	}
	return out
}

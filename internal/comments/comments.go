// Package comments locates comment regions in source text so that matches
// inside them can be scored lower. Spans are computed once per text and looked
// up by binary search.
package comments

import (
	"sort"
	"strings"
)

type syntax struct {
	line  string // line comment marker, empty when unsupported
	open  string // block comment opener, empty when unsupported
	close string
}

var (
	cLike  = syntax{line: "//", open: "/*", close: "*/"}
	markup = syntax{open: "<!--", close: "-->"}
	python = syntax{line: "#"}
)

var syntaxByType = map[string]syntax{
	"js":         cLike,
	"javascript": cLike,
	"ts":         cLike,
	"typescript": cLike,
	"java":       cLike,
	"c":          cLike,
	"cpp":        cLike,
	"csharp":     cLike,
	"php":        cLike,
	"html":       markup,
	"xml":        markup,
	"python":     python,
}

// Supported reports whether fileType has comment syntax known to this package.
func Supported(fileType string) bool {
	_, ok := syntaxByType[strings.ToLower(fileType)]
	return ok
}

type span struct{ start, end int } // [start, end)

// Index answers whether a byte offset lies inside a comment.
type Index struct {
	spans []span
}

// Build scans text once and returns the comment index for fileType. Unknown
// file types yield an index that never reports a comment.
//
// A line comment covers from the first marker on a line to the end of that
// line. Block comments toggle: an opener seen while already open is consumed
// but changes nothing, a closer only counts while open, and an unterminated
// opener runs to the end of text. An offset equal to the opener position is
// not inside the block; an offset equal to the closer position still is.
// Delimiters inside string literals are not special-cased.
func Build(text, fileType string) *Index {
	sx, ok := syntaxByType[strings.ToLower(fileType)]
	if !ok {
		return &Index{}
	}
	var spans []span
	if sx.line != "" {
		spans = append(spans, lineSpans(text, sx.line)...)
	}
	if sx.open != "" {
		spans = append(spans, blockSpans(text, sx.open, sx.close)...)
	}
	return &Index{spans: merge(spans)}
}

// Contains reports whether offset falls inside a comment span.
func (ix *Index) Contains(offset int) bool {
	if ix == nil || len(ix.spans) == 0 {
		return false
	}
	i := sort.Search(len(ix.spans), func(i int) bool { return ix.spans[i].end > offset })
	return i < len(ix.spans) && ix.spans[i].start <= offset
}

func lineSpans(text, marker string) []span {
	var out []span
	start := 0
	for start <= len(text) {
		end := strings.IndexByte(text[start:], '\n')
		if end < 0 {
			end = len(text)
		} else {
			end += start
		}
		if p := strings.Index(text[start:end], marker); p >= 0 {
			out = append(out, span{start: start + p, end: end})
		}
		start = end + 1
	}
	return out
}

func blockSpans(text, open, close string) []span {
	var out []span
	openAt := -1
	for i := 0; i < len(text); i++ {
		switch {
		case strings.HasPrefix(text[i:], open):
			if openAt < 0 {
				openAt = i
			}
			i += len(open) - 1
		case openAt >= 0 && strings.HasPrefix(text[i:], close):
			out = append(out, span{start: openAt + 1, end: i + 1})
			openAt = -1
			i += len(close) - 1
		}
	}
	if openAt >= 0 {
		out = append(out, span{start: openAt + 1, end: len(text) + 1})
	}
	return out
}

func merge(spans []span) []span {
	if len(spans) < 2 {
		return spans
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	out := spans[:1]
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if s.start <= last.end {
			if s.end > last.end {
				last.end = s.end
			}
			continue
		}
		out = append(out, s)
	}
	return out
}

// Package ignore implements gitignore-style path exclusion backed by
// doublestar glob matching.
package ignore

import (
	"bufio"
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// FileName is the ignore file looked up in a scan root.
const FileName = ".shadowscanignore"

type rule struct {
	pattern string
	negate  bool
}

// Matcher holds compiled ignore rules. The zero value matches nothing.
type Matcher struct {
	rules []rule
}

// Load reads an ignore file. A missing file yields an empty Matcher and no error.
func Load(p string) (Matcher, error) {
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Matcher{}, nil
		}
		return Matcher{}, err
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return Matcher{}, err
	}
	return Parse(lines), nil
}

// Parse compiles ignore rules from lines. Blank lines and lines starting
// with '#' are skipped; a leading '!' re-includes a previously ignored path.
func Parse(lines []string) Matcher {
	var m Matcher
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		r := rule{}
		if strings.HasPrefix(l, "!") {
			r.negate = true
			l = l[1:]
		}
		anchored := strings.HasPrefix(l, "/")
		l = strings.TrimPrefix(l, "/")
		if strings.HasSuffix(l, "/") {
			l += "**"
		}
		if !anchored && !strings.HasPrefix(l, "**/") {
			l = "**/" + l
		}
		r.pattern = l
		m.rules = append(m.rules, r)
	}
	return m
}

// Match reports whether the slash-separated relative path p is ignored. Later
// rules win over earlier ones.
func (m Matcher) Match(p string) bool {
	p = path.Clean(strings.ReplaceAll(p, "\\", "/"))
	ignored := false
	for _, r := range m.rules {
		if ok, _ := doublestar.Match(r.pattern, p); ok {
			ignored = !r.negate
		}
	}
	return ignored
}

// Append adds pattern to the ignore file in root unless an identical line is
// already there. The file is created when missing.
func Append(root, pattern string) error {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return errors.New("ignore: empty pattern")
	}
	p := filepath.Join(root, FileName)
	b, err := os.ReadFile(p)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	for _, l := range strings.Split(string(b), "\n") {
		if strings.TrimSpace(l) == pattern {
			return nil
		}
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if len(b) > 0 && !bytes.HasSuffix(b, []byte("\n")) {
		pattern = "\n" + pattern
	}
	_, err = f.WriteString(pattern + "\n")
	return err
}

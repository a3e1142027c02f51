package engine

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/redactyl/shadowscan/internal/cache"
	"github.com/redactyl/shadowscan/internal/git"
	"github.com/redactyl/shadowscan/internal/ignore"
)

// ignoreFileMarker skips a whole file when present anywhere in it.
const ignoreFileMarker = "shadowscan:ignore-file"

// Walk traverses the working tree and invokes handle for each eligible file.
// It stops early when ctx is cancelled.
func Walk(ctx context.Context, cfg Config, ign ignore.Matcher, handle func(path string, data []byte)) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return filepath.WalkDir(cfg.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != cfg.Root && skipDir(cfg, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, ok := eligible(cfg, ign, p, d)
		if !ok {
			return nil
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return nil
		}
		if strings.Contains(string(b), ignoreFileMarker) {
			return nil
		}
		if looksBinary(b) {
			return nil
		}
		handle(rel, b)
		return nil
	})
}

func skipDir(cfg Config, name string) bool {
	return name == ".git" || (cfg.DefaultExcludes && isDefaultDirExcluded(name))
}

// eligible applies the cheap, metadata-only selection rules shared by Walk and
// CountTargets.
func eligible(cfg Config, ign ignore.Matcher, p string, d fs.DirEntry) (string, bool) {
	rel, err := filepath.Rel(cfg.Root, p)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if cache.IsCacheFile(rel) {
		return "", false
	}
	if !allowedByGlobs(rel, cfg) || ign.Match(rel) {
		return "", false
	}
	if cfg.MaxBytes > 0 {
		if info, _ := d.Info(); info != nil && info.Size() > cfg.MaxBytes {
			return "", false
		}
	}
	if cfg.DefaultExcludes && isDefaultFileExcluded(strings.ToLower(rel)) {
		return "", false
	}
	return rel, true
}

// looksBinary reports whether b is not text: a NUL byte in the first 800
// bytes, or a sniffed MIME type that does not descend from text/plain.
func looksBinary(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	const sniff = 800
	n := sniff
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if b[i] == 0 {
			return true
		}
	}
	for m := mimetype.Detect(b); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return false
		}
	}
	return true
}

// CountTargets estimates the number of files to process based on cfg.
// It mirrors the selection logic of ScanFiles but avoids reading file bodies
// in the working tree.
func CountTargets(cfg Config) (int, error) {
	ign, _ := ignore.Load(filepath.Join(cfg.Root, ignore.FileName))
	if cfg.HistoryCommits > 0 {
		entries, err := git.LastNCommits(cfg.Root, cfg.HistoryCommits)
		if err != nil {
			return 0, err
		}
		n := 0
		for _, e := range entries {
			for path, blob := range e.Files {
				if !allowedByGlobs(path, cfg) || ign.Match(path) {
					continue
				}
				if cfg.MaxBytes > 0 && int64(len(blob)) > cfg.MaxBytes {
					continue
				}
				n++
			}
		}
		return n, nil
	}
	count := 0
	err := filepath.WalkDir(cfg.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != cfg.Root && skipDir(cfg, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := eligible(cfg, ign, p, d); ok {
			count++
		}
		return nil
	})
	return count, err
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	doublestar "github.com/bmatcuk/doublestar/v4"
	"github.com/redactyl/shadowscan/internal/cache"
	"github.com/redactyl/shadowscan/internal/detectors"
	"github.com/redactyl/shadowscan/internal/git"
	"github.com/redactyl/shadowscan/internal/ignore"
	"github.com/redactyl/shadowscan/internal/keywords"
	"github.com/redactyl/shadowscan/internal/logging"
	"github.com/redactyl/shadowscan/internal/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Config controls multi-file scanning: scope, performance and filters.
type Config struct {
	Root            string
	IncludeGlobs    string
	ExcludeGlobs    string
	MaxBytes        int64
	HistoryCommits  int
	Threads         int
	Enable          string
	Disable         string
	MinScore        float64
	DefaultExcludes bool
	// Incremental skips files whose content hash is unchanged since the last
	// run with the same rules and options.
	Incremental bool
	Options     Options
	// KeywordSource, when set, supplies Tenant's keywords for every file on top
	// of Options.Keywords. Wrap it in keywords.Cached to read it once per TTL.
	KeywordSource keywords.Source
	Tenant        string
	Logger        *logrus.Entry
	Progress      func()
}

// FileResult contains findings and basic scan statistics.
type FileResult struct {
	Findings     []types.Finding
	FilesScanned int
	Duration     time.Duration
}

type job struct {
	path     string
	fileType string
	data     []byte
	hash     string
}

// ScanFiles scans the working tree under cfg.Root, or the last
// cfg.HistoryCommits commits when set, and returns findings sorted by path,
// line and descending score.
func ScanFiles(ctx context.Context, cfg Config) (FileResult, error) {
	var res FileResult
	started := time.Now()
	if cfg.Threads <= 0 {
		cfg.Threads = runtime.GOMAXPROCS(0)
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Nop()
	}
	ign, err := ignore.Load(filepath.Join(cfg.Root, ignore.FileName))
	if err != nil {
		log.WithError(err).Warn("ignore file unreadable")
	}

	opts, err := cfg.ResolveOptions(ctx)
	if err != nil {
		return res, err
	}
	fp := fingerprint(opts)
	db := cache.DB{Fingerprint: fp, Entries: map[string]string{}}
	if cfg.Incremental && cfg.HistoryCommits == 0 {
		db, _ = cache.Load(cfg.Root, fp)
	}

	jobs, err := collect(ctx, cfg, ign)
	if err != nil {
		return res, err
	}

	var (
		mu      sync.Mutex
		out     []types.Finding
		updated = map[string]string{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Threads)
	for _, j := range jobs {
		if cfg.Incremental && db.Entries[j.path] == j.hash {
			continue
		}
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fs, err := scanFile(gctx, cfg, j)
			if errors.Is(err, ErrInputTooLarge) {
				log.WithField("path", j.path).Warn("skipping file over input limit")
				err = nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			out = append(out, fs...)
			res.FilesScanned++
			updated[j.path] = j.hash
			mu.Unlock()
			if cfg.Progress != nil {
				cfg.Progress()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	out = FilterFindings(out, cfg.Enable, cfg.Disable, cfg.MinScore)
	SortFindings(out)
	res.Findings = out
	res.Duration = time.Since(started)

	if cfg.Incremental && cfg.HistoryCommits == 0 && len(updated) > 0 {
		for k, v := range updated {
			db.Entries[k] = v
		}
		if err := cache.Save(cfg.Root, db); err != nil {
			log.WithError(err).Warn("cache not saved")
		}
	}
	log.WithFields(logrus.Fields{"files": res.FilesScanned, "findings": len(out), "duration": res.Duration}).Debug("scan complete")
	return res, nil
}

// collect gathers the files to scan, from history or the working tree.
func collect(ctx context.Context, cfg Config, ign ignore.Matcher) ([]job, error) {
	var jobs []job
	if cfg.HistoryCommits > 0 {
		entries, err := git.LastNCommits(cfg.Root, cfg.HistoryCommits)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			paths := make([]string, 0, len(e.Files))
			for p := range e.Files {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			for _, p := range paths {
				blob := e.Files[p]
				if !allowedByGlobs(p, cfg) || ign.Match(p) {
					continue
				}
				if cfg.MaxBytes > 0 && int64(len(blob)) > cfg.MaxBytes {
					continue
				}
				if strings.Contains(string(blob), ignoreFileMarker) {
					continue
				}
				jobs = append(jobs, job{path: historyPath(e.Hash, p), fileType: FileTypeFor(p), data: blob, hash: cache.Hash(blob)})
			}
		}
		return jobs, nil
	}
	err := Walk(ctx, cfg, ign, func(p string, data []byte) {
		jobs = append(jobs, job{path: p, fileType: FileTypeFor(p), data: data, hash: cache.Hash(data)})
	})
	return jobs, err
}

// historyPath tags a path with the short commit it was read from.
// SortFindings orders findings by path, line and descending score, keeping
// the engine order for ties.
func SortFindings(fs []types.Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Location.Line != b.Location.Line {
			return a.Location.Line < b.Location.Line
		}
		return a.Score > b.Score
	})
}

func historyPath(hash, p string) string {
	if len(hash) > 7 {
		hash = hash[:7]
	}
	return hash + ":" + p
}

func scanFile(ctx context.Context, cfg Config, j job) ([]types.Finding, error) {
	opts, err := cfg.ResolveOptions(ctx)
	if err != nil {
		return nil, err
	}
	return ScanBytes(j.path, j.data, j.fileType, opts)
}

// ResolveOptions returns cfg.Options with the keyword source's tenant keywords
// merged in.
func (cfg Config) ResolveOptions(ctx context.Context) (Options, error) {
	o := cfg.Options
	if cfg.KeywordSource == nil {
		return o, nil
	}
	kws, err := cfg.KeywordSource.Keywords(ctx, cfg.Tenant)
	if err != nil {
		return o, fmt.Errorf("load keywords: %w", err)
	}
	o.Keywords = append(append([]string(nil), o.Keywords...), kws...)
	return o, nil
}

// ScanBytes scans the content of one file, drops findings silenced by inline
// markers and tags the rest with path.
func ScanBytes(path string, data []byte, fileType string, opts Options) ([]types.Finding, error) {
	text := string(data)
	res, err := Scan(text, fileType, opts)
	if err != nil {
		return nil, err
	}
	fs := dropSuppressed(res.Findings, suppressedLines(text))
	for i := range fs {
		fs[i].Path = path
	}
	return fs, nil
}

// fingerprint identifies the rule set and the options that change findings.
func fingerprint(opts Options) string {
	o := opts.withDefaults()
	kws := normalizeKeywords(o.Keywords)
	sort.Strings(kws)
	return cache.Fingerprint(
		strings.Join(detectors.IDs(), ","),
		strconv.Itoa(o.ContextWindow),
		strconv.Itoa(o.ProximityWindow),
		strconv.Itoa(o.MaxInputBytes),
		strconv.FormatBool(o.Truncate),
		strconv.FormatBool(o.Extended),
		strconv.FormatBool(o.StrictCards),
		strings.Join(kws, "\x00"),
	)
}

// FilterFindings applies the rule allow and deny lists (comma-separated IDs)
// and the minimum score.
func FilterFindings(fs []types.Finding, enable, disable string, minScore float64) []types.Finding {
	return filterByIDs(filterByMinScore(fs, minScore), enable, disable)
}

func filterByMinScore(fs []types.Finding, min float64) []types.Finding {
	if min <= 0 {
		return fs
	}
	var out []types.Finding
	for _, f := range fs {
		if f.Score >= min {
			out = append(out, f)
		}
	}
	return out
}

// filterByIDs keeps findings whose type is in the comma-separated enable list
// (when set) and not in the disable list.
func filterByIDs(fs []types.Finding, enable, disable string) []types.Finding {
	if enable == "" && disable == "" {
		return fs
	}
	allowed := parseIDs(enable)
	blocked := parseIDs(disable)
	var out []types.Finding
	for _, f := range fs {
		if enable != "" && !allowed[f.Type] {
			continue
		}
		if blocked[f.Type] {
			continue
		}
		out = append(out, f)
	}
	return out
}

func parseIDs(s string) map[string]bool {
	out := map[string]bool{}
	for _, id := range strings.Split(s, ",") {
		if id = strings.ToUpper(strings.TrimSpace(id)); id != "" {
			out[id] = true
		}
	}
	return out
}

// allowedByGlobs returns true if the given path is allowed by the include/exclude
// glob configuration. Include globs are comma-separated and, if provided, act as
// a positive filter. Exclude globs are subtracted last.
func allowedByGlobs(relPath string, cfg Config) bool {
	rp := strings.ReplaceAll(relPath, "\\", "/")
	includes := parseGlobsList(cfg.IncludeGlobs)
	excludes := parseGlobsList(cfg.ExcludeGlobs)
	if len(includes) > 0 && !matchAnyGlob(rp, includes) {
		return false
	}
	if len(excludes) > 0 && matchAnyGlob(rp, excludes) {
		return false
	}
	return true
}

func parseGlobsList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p, trimGlobPrefix(p))
		}
	}
	return out
}

func matchAnyGlob(pathToMatch string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, pathToMatch); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, filepath.Base(pathToMatch)); ok {
			return true
		}
	}
	return false
}

func trimGlobPrefix(g string) string {
	s := strings.TrimPrefix(g, "./")
	for strings.HasPrefix(s, "**/") {
		s = strings.TrimPrefix(s, "**/")
	}
	return s
}

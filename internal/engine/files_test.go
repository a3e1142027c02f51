package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/redactyl/shadowscan/internal/ignore"
	"github.com/redactyl/shadowscan/internal/keywords"
	"github.com/redactyl/shadowscan/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func TestScanFiles_Basic(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt":    "contact alice@corp.io\n",
		"b.txt":    "// shadowscan:ignore-file\nbob@corp.io\n",
		"c.txt":    "carol@corp.io # shadowscan:ignore\n",
		"logo.png": "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR",
	})

	res, err := ScanFiles(context.Background(), Config{Root: dir, Threads: 2, MaxBytes: 1 << 20})
	require.NoError(t, err)
	assert.Equal(t, 2, res.FilesScanned)
	require.Len(t, res.Findings, 1)
	f := res.Findings[0]
	assert.Equal(t, "EMAIL", f.Type)
	assert.Equal(t, "a.txt", f.Path)
	assert.Equal(t, types.Location{Line: 1, Column: 9}, f.Location)
	assert.Positive(t, res.Duration)
}

func TestScanFiles_FileTypeScoring(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"db.sql":  "-- seed\ninsert into users values ('123-45-6789');\n",
		"web.css": "a { color: red } /* 123-45-6789 */\n",
	})
	res, err := ScanFiles(context.Background(), Config{Root: dir, Enable: "ssn"})
	require.NoError(t, err)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, "db.sql", res.Findings[0].Path)
	assert.Equal(t, 1.0, res.Findings[0].Score)
	assert.Equal(t, "***-**-6789", res.Findings[0].Value)
}

func TestScanFiles_IgnoreFileAndGlobs(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"private/x.txt":     "x@corp.io\n",
		"src/app.go":        "// owner: dev@corp.io\n",
		"docs/readme.md":    "mail docs@corp.io\n",
		ignore.FileName:     "private/\n",
		"node_modules/m.js": "m@corp.io\n",
	})

	res, err := ScanFiles(context.Background(), Config{Root: dir, DefaultExcludes: true, ExcludeGlobs: "**/*.md"})
	require.NoError(t, err)
	var paths []string
	for _, f := range res.Findings {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"src/app.go"}, paths)
}

func TestScanFiles_Filters(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt": "alice@corp.io 10.1.2.3\n",
	})
	ctx := context.Background()

	res, err := ScanFiles(ctx, Config{Root: dir})
	require.NoError(t, err)
	assert.Len(t, res.Findings, 2)

	res, err = ScanFiles(ctx, Config{Root: dir, Disable: "EMAIL"})
	require.NoError(t, err)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, "IP_ADDRESS", res.Findings[0].Type)

	res, err = ScanFiles(ctx, Config{Root: dir, MinScore: 0.75})
	require.NoError(t, err)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, "EMAIL", res.Findings[0].Type)
}

func TestScanFiles_Keywords(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"notes.txt": "ok\nProject Falcon launch\n"})
	res, err := ScanFiles(context.Background(), Config{Root: dir, Options: Options{Keywords: []string{"falcon"}}})
	require.NoError(t, err)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, "CUSTOM_KEYWORD", res.Findings[0].Type)
	assert.Equal(t, types.Location{Line: 2, Column: 9}, res.Findings[0].Location)
}

func TestScanFiles_Incremental(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "alice@corp.io\n", "b.txt": "plain\n"})
	ctx := context.Background()
	cfg := Config{Root: dir, Incremental: true}

	res, err := ScanFiles(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, res.FilesScanned)
	assert.Len(t, res.Findings, 1)

	res, err = ScanFiles(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, res.FilesScanned)
	assert.Empty(t, res.Findings)

	writeFiles(t, dir, map[string]string{"b.txt": "bob@corp.io\n"})
	res, err = ScanFiles(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, res.FilesScanned)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, "b.txt", res.Findings[0].Path)

	// different options invalidate the cache
	cfg.Options.Extended = true
	res, err = ScanFiles(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, res.FilesScanned)
}

func TestScanFiles_SkipsOversizedInput(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"big.txt": "alice@corp.io and more text\n", "small.txt": "a@b.io\n"})
	res, err := ScanFiles(context.Background(), Config{Root: dir, Options: Options{MaxInputBytes: 10}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.FilesScanned)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, "small.txt", res.Findings[0].Path)
}

func TestScanFiles_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "alice@corp.io\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ScanFiles(ctx, Config{Root: dir})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanFiles_History(t *testing.T) {
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	commit := func(name, content string) string {
		writeFiles(t, dir, map[string]string{name: content})
		_, err := wt.Add(name)
		require.NoError(t, err)
		h, err := wt.Commit("add "+name, &gogit.CommitOptions{
			Author: &object.Signature{Name: "tester", Email: "test@example.com", When: time.Now()},
		})
		require.NoError(t, err)
		return h.String()
	}
	commit("a.txt", "plain\n")
	h := commit("hist.txt", "owner alice@corp.io\n")

	res, err := ScanFiles(context.Background(), Config{Root: dir, HistoryCommits: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, res.FilesScanned)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, h[:7]+":hist.txt", res.Findings[0].Path)

	n, err := CountTargets(Config{Root: dir, HistoryCommits: 2, IncludeGlobs: "hist.*"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWalk_WithIncludeExcludeGlobs(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "hello", "b.go": "package main\n", "c.md": "doc"})
	ign, _ := ignore.Load(filepath.Join(dir, ignore.FileName))

	var got []string
	err := Walk(context.Background(), Config{Root: dir, IncludeGlobs: "**/*.go"}, ign, func(path string, _ []byte) { got = append(got, path) })
	require.NoError(t, err)
	assert.Equal(t, []string{"b.go"}, got)

	got = nil
	err = Walk(context.Background(), Config{Root: dir, ExcludeGlobs: "**/*.md"}, ign, func(path string, _ []byte) { got = append(got, path) })
	require.NoError(t, err)
	sort.Strings(got)
	assert.Equal(t, []string{"a.txt", "b.go"}, got)
}

func TestCountTargets_IgnoreAndMaxBytes(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt":         "ok",
		"big.txt":       string(make([]byte, 2048)),
		"ignored.txt":   "secret",
		ignore.FileName: "ignored.txt\n",
	})
	n, err := CountTargets(Config{Root: dir, MaxBytes: 1024})
	require.NoError(t, err)
	// a.txt and the ignore file itself
	assert.Equal(t, 2, n)
}

func TestLooksBinary(t *testing.T) {
	assert.False(t, looksBinary([]byte("plain text\n")))
	assert.False(t, looksBinary([]byte(`{"a": 1}`)))
	assert.False(t, looksBinary(nil))
	assert.False(t, looksBinary([]byte("héllo wörld")))
	assert.True(t, looksBinary([]byte("a\x00b")))
	assert.True(t, looksBinary([]byte("\x89PNG\r\n\x1a\n0000")))
}

func TestFilterByIDs(t *testing.T) {
	fs := []types.Finding{{Type: "EMAIL"}, {Type: "SSN"}, {Type: "IP_ADDRESS"}}
	assert.Len(t, filterByIDs(fs, "", ""), 3)
	assert.Equal(t, []types.Finding{{Type: "EMAIL"}, {Type: "SSN"}}, filterByIDs(fs, "email, ssn", ""))
	assert.Equal(t, []types.Finding{{Type: "EMAIL"}}, filterByIDs(fs, "EMAIL,SSN", "ssn"))
}

func TestScanBytes(t *testing.T) {
	fs, err := ScanBytes("app.js", []byte("// shadowscan:ignore-next-line\nconst a = 'x@corp.io';\nconst b = 'y@corp.io';\n"), "js", Options{})
	require.NoError(t, err)
	require.Len(t, fs, 1)
	assert.Equal(t, "app.js", fs[0].Path)
	assert.Equal(t, 3, fs[0].Location.Line)
}

func TestFilterFindings(t *testing.T) {
	fs := []types.Finding{{Type: "EMAIL", Score: 0.8}, {Type: "IP_ADDRESS", Score: 0.7}, {Type: "SSN", Score: 0.9}}
	got := FilterFindings(fs, "", "ssn", 0.75)
	assert.Equal(t, []types.Finding{{Type: "EMAIL", Score: 0.8}}, got)
}

type countingKeywords struct {
	calls atomic.Int32
	kws   map[string][]string
	err   error
}

func (c *countingKeywords) Keywords(_ context.Context, tenant string) ([]string, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.kws[tenant], nil
}

func TestScanFiles_KeywordSourceReadThroughCache(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt": "falcon launch\n",
		"b.txt": "nothing here\n",
		"c.txt": "the Falcon team\n",
		"d.txt": "falcon again\n",
	})
	src := &countingKeywords{kws: map[string][]string{"acme": {"falcon"}}}
	cfg := Config{Root: dir, Threads: 4, KeywordSource: keywords.NewCached(src, time.Minute), Tenant: "acme"}

	res, err := ScanFiles(context.Background(), cfg)
	require.NoError(t, err)
	var paths []string
	for _, f := range res.Findings {
		if f.Type == "CUSTOM_KEYWORD" {
			paths = append(paths, f.Path)
		}
	}
	assert.Equal(t, []string{"a.txt", "c.txt", "d.txt"}, paths)
	assert.EqualValues(t, 1, src.calls.Load(), "every file after the first read hits the cache")

	_, err = ScanFiles(context.Background(), Config{Root: dir, Tenant: "other", KeywordSource: keywords.NewCached(src, time.Minute)})
	require.NoError(t, err)
	assert.EqualValues(t, 2, src.calls.Load())
}

func TestScanFiles_KeywordSourceError(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "hello\n"})
	boom := errors.New("boom")

	_, err := ScanFiles(context.Background(), Config{Root: dir, KeywordSource: &countingKeywords{err: boom}})
	assert.ErrorIs(t, err, boom)
}

func TestSortFindings_PathLineThenScore(t *testing.T) {
	fs := []types.Finding{
		{Path: "b.txt", Location: types.Location{Line: 1}, Score: 0.9, Type: "b1"},
		{Path: "a.txt", Location: types.Location{Line: 3}, Score: 0.5, Type: "a3"},
		{Path: "a.txt", Location: types.Location{Line: 1}, Score: 0.4, Type: "a1-low"},
		{Path: "a.txt", Location: types.Location{Line: 1}, Score: 0.8, Type: "a1-high"},
		{Path: "a.txt", Location: types.Location{Line: 1}, Score: 0.4, Type: "a1-low-2"},
	}
	SortFindings(fs)
	var got []string
	for _, f := range fs {
		got = append(got, f.Type)
	}
	assert.Equal(t, []string{"a1-high", "a1-low", "a1-low-2", "a3", "b1"}, got)
}

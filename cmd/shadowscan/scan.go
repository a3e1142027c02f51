package shadowscan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/redactyl/shadowscan/internal/engine"
	"github.com/redactyl/shadowscan/internal/keywords"
	"github.com/redactyl/shadowscan/internal/git"
	"github.com/redactyl/shadowscan/internal/logging"
	"github.com/redactyl/shadowscan/internal/report"
	"github.com/redactyl/shadowscan/internal/store"
	"github.com/redactyl/shadowscan/internal/types"
	"github.com/redactyl/shadowscan/pkg/core"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	defaultBaselineFile = "shadowscan.baseline.json"
	defaultMaxBytes     = 1 << 20
)

var (
	flagType            string
	flagHistory         int
	flagInclude         string
	flagExclude         string
	flagMaxBytes        int64
	flagEnable          string
	flagDisable         string
	flagDryRun          bool
	flagIncremental     bool
	flagSave            bool
	flagBaseline        string
	flagExtended        bool
	flagStrictCards     bool
	flagTruncate        bool
	flagMaxInputBytes   int
	flagContextWindow   int
	flagProximityWindow int
	flagKeywords        []string
	flagKeywordsFile    string
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Scan files, directories or stdin for shadow data",
		Long: "Scan the given files and directories (default: the current directory). " +
			"When no path is given and stdin is piped, stdin is scanned and --type is required.",
		RunE: runScan,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVar(&flagType, "type", "", "file type of stdin or a forced type for files (js, python, sql, ...)")
	cmd.Flags().IntVar(&flagHistory, "history", 0, "scan files changed in the last N commits (0=off)")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	cmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", 0, "skip files larger than this (0 = 1 MiB)")
	cmd.Flags().StringVar(&flagEnable, "enable", "", "only report these rules (comma-separated IDs)")
	cmd.Flags().StringVar(&flagDisable, "disable", "", "never report these rules (comma-separated IDs)")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "count the files that would be scanned without reading them")
	cmd.Flags().BoolVar(&flagIncremental, "incremental", false, "skip files unchanged since the last incremental scan")
	cmd.Flags().BoolVar(&flagSave, "save", false, "store the scan as a report for the tenant")
	cmd.Flags().StringVar(&flagBaseline, "baseline", defaultBaselineFile, "baseline file of accepted findings")
	cmd.Flags().BoolVar(&flagExtended, "extended", false, "enable token, encoded blob and hash rules")
	cmd.Flags().BoolVar(&flagStrictCards, "strict-cards", false, "drop card numbers that fail the Luhn check")
	cmd.Flags().BoolVar(&flagTruncate, "truncate", false, "truncate oversized input instead of skipping it")
	cmd.Flags().IntVar(&flagMaxInputBytes, "max-input-bytes", 0, "largest text handed to the engine (0 = 1 MiB, -1 = unlimited)")
	cmd.Flags().IntVar(&flagContextWindow, "context-window", 0, "characters of context around a match (0 = 20)")
	cmd.Flags().IntVar(&flagProximityWindow, "proximity-window", 0, "distance for context rule keywords (0 = 50)")
	cmd.Flags().StringSliceVar(&flagKeywords, "keyword", nil, "custom keyword to flag (repeatable)")
	cmd.Flags().StringVar(&flagKeywordsFile, "keywords-file", "", "file with one custom keyword per line")
}

// scanOutcome is what every scan mode hands to the renderers.
type scanOutcome struct {
	findings     []types.Finding
	filesScanned int
	duration     time.Duration
	root         string
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	log := logging.Component(logger, "scan")

	stdinMode := len(args) == 0 && flagHistory == 0 && stdinPiped()
	if len(args) == 0 {
		args = []string{"."}
	}
	root, _ := filepath.Abs(args[0])
	if st, err := os.Stat(root); err == nil && !st.IsDir() {
		root = filepath.Dir(root)
	}
	cfgs := loadConfigs(root)
	lcfg, gcfg := cfgs.local, cfgs.global

	opts := engine.Options{
		ContextWindow:   pickInt(flagContextWindow, lcfg.ContextWindow, gcfg.ContextWindow),
		ProximityWindow: pickInt(flagProximityWindow, lcfg.ProximityWindow, gcfg.ProximityWindow),
		MaxInputBytes:   pickInt(flagMaxInputBytes, lcfg.MaxInputBytes, gcfg.MaxInputBytes),
		Truncate:        pickBool(cmd, "truncate", flagTruncate, lcfg.Truncate, gcfg.Truncate),
		Extended:        pickBool(cmd, "extended", flagExtended, lcfg.Extended, gcfg.Extended),
		StrictCards:     pickBool(cmd, "strict-cards", flagStrictCards, lcfg.StrictCards, gcfg.StrictCards),
	}
	tenant := cfgs.tenant()
	kc, closeKeywords := keywordSource(cfgs, log)
	defer closeKeywords()
	kws, err := kc.Keywords(ctx, tenant)
	if err != nil {
		return fmt.Errorf("load keywords: %w", err)
	}
	if len(kws) > 0 {
		log.WithField("keywords", len(kws)).Debug("custom keywords loaded")
	}

	enable := pickString(flagEnable, lcfg.Enable, gcfg.Enable)
	disable := pickString(flagDisable, lcfg.Disable, gcfg.Disable)
	minScore := pickFloat(flagMinScore, lcfg.MinScore, gcfg.MinScore)

	var out scanOutcome
	if stdinMode {
		opts.Keywords = kws
		out, err = scanStdin(opts, enable, disable, minScore)
		if err != nil {
			return err
		}
		out.root = "stdin"
	} else {
		maxBytes := pickInt64(flagMaxBytes, lcfg.MaxBytes, gcfg.MaxBytes)
		if maxBytes == 0 {
			maxBytes = defaultMaxBytes
		}
		cfg := engine.Config{
			IncludeGlobs:    pickString(flagInclude, lcfg.Include, gcfg.Include),
			ExcludeGlobs:    pickString(flagExclude, lcfg.Exclude, gcfg.Exclude),
			MaxBytes:        maxBytes,
			HistoryCommits:  flagHistory,
			Threads:         pickInt(flagThreads, lcfg.Threads, gcfg.Threads),
			Enable:          enable,
			Disable:         disable,
			MinScore:        minScore,
			DefaultExcludes: pickBool(cmd, "default-excludes", flagDefaultExcludes, lcfg.DefaultExcludes, gcfg.DefaultExcludes),
			Incremental:     flagIncremental,
			Options:         opts,
			KeywordSource:   kc,
			Tenant:          tenant,
			Logger:          logging.Component(logger, "engine"),
		}
		if flagDryRun {
			return dryRun(cfg, args)
		}
		out, err = scanPaths(ctx, cfg, args)
		if err != nil {
			return fmt.Errorf("scan error: %w", err)
		}
		out.root = root
	}
	// The keyword store and the report store may be the same bbolt file.
	closeKeywords()

	if base, err := report.LoadBaseline(flagBaseline); err == nil {
		out.findings = report.FilterNewFindings(out.findings, base)
	} else if cmd.Flags().Changed("baseline") {
		return fmt.Errorf("load baseline: %w", err)
	}
	if out.findings == nil {
		out.findings = []types.Finding{}
	}

	if flagSave {
		if err := saveReport(cfgs, out); err != nil {
			return err
		}
	}

	if err := render(out, colorDisabled(lcfg.NoColor != nil && *lcfg.NoColor)); err != nil {
		return err
	}
	failOn := flagFailOn
	if !cmd.Flags().Changed("fail-on") {
		if v := pickString("", lcfg.FailOn, gcfg.FailOn); v != "" {
			failOn = v
		}
	}
	if report.ShouldFail(out.findings, failOn) {
		os.Exit(1)
	}
	return nil
}

// stdinPiped reports whether stdin is a pipe or a redirected file rather than
// a terminal or /dev/null.
func stdinPiped() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice == 0
}

func scanStdin(opts engine.Options, enable, disable string, minScore float64) (scanOutcome, error) {
	started := time.Now()
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return scanOutcome{}, fmt.Errorf("read stdin: %w", err)
	}
	res, err := core.Scan(core.Request{Text: string(data), FileType: flagType, Options: opts})
	if errors.Is(err, core.ErrInvalidInput) {
		return scanOutcome{}, fmt.Errorf("%w (use --type with stdin)", err)
	}
	if err != nil {
		return scanOutcome{}, err
	}
	return scanOutcome{
		findings:     engine.FilterFindings(res.Findings, enable, disable, minScore),
		filesScanned: 1,
		duration:     time.Since(started),
	}, nil
}

// scanPaths scans each argument: directories through the file scanner, single
// files directly. Findings across arguments are ordered like ScanFiles orders
// them.
func scanPaths(ctx context.Context, cfg engine.Config, paths []string) (scanOutcome, error) {
	var out scanOutcome
	started := time.Now()
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return out, err
		}
		st, err := os.Stat(abs)
		if err != nil {
			return out, err
		}
		if !st.IsDir() {
			fs, err := scanSingleFile(ctx, cfg, p, abs)
			if err != nil {
				return out, err
			}
			out.findings = append(out.findings, fs...)
			out.filesScanned++
			continue
		}
		c := cfg
		c.Root = abs
		total, _ := engine.CountTargets(c)
		done := func() {}
		if total > 0 && !flagJSON && !flagSARIF && term.IsTerminal(int(os.Stderr.Fd())) {
			c.Progress, done = progressBar(os.Stderr, total)
		}
		res, err := engine.ScanFiles(ctx, c)
		done()
		if err != nil {
			return out, err
		}
		out.findings = append(out.findings, res.Findings...)
		out.filesScanned += res.FilesScanned
	}
	engine.SortFindings(out.findings)
	out.duration = time.Since(started)
	return out, nil
}

func scanSingleFile(ctx context.Context, cfg engine.Config, display, abs string) ([]types.Finding, error) {
	opts, err := cfg.ResolveOptions(ctx)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	ft := flagType
	if ft == "" {
		ft = engine.FileTypeFor(abs)
	}
	fs, err := engine.ScanBytes(filepath.ToSlash(display), data, ft, opts)
	if errors.Is(err, engine.ErrInputTooLarge) {
		cfg.Logger.WithField("path", display).Warn("skipping file over input limit")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return engine.FilterFindings(fs, cfg.Enable, cfg.Disable, cfg.MinScore), nil
}

// progressBar returns a progress callback for ScanFiles, which calls it from
// several workers, and a done func that drains the pending ticks, ends the
// line and stops the printer.
func progressBar(w io.Writer, total int) (tick func(), done func()) {
	ch := make(chan struct{}, 64)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		progressed := 0
		for range ch {
			progressed++
			if progressed%10 == 0 || progressed == total {
				pct := float64(progressed) / float64(total) * 100
				_, _ = fmt.Fprintf(w, "\r[%d/%d] %.0f%%", progressed, total, pct)
			}
		}
		_, _ = fmt.Fprintln(w)
	}()
	var once sync.Once
	tick = func() { ch <- struct{}{} }
	done = func() {
		once.Do(func() {
			close(ch)
			<-stopped
		})
	}
	return tick, done
}

func dryRun(cfg engine.Config, paths []string) error {
	total := 0
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		if st, err := os.Stat(abs); err == nil && !st.IsDir() {
			total++
			continue
		}
		c := cfg
		c.Root = abs
		n, err := engine.CountTargets(c)
		if err != nil {
			return err
		}
		total += n
	}
	fmt.Fprintf(os.Stdout, "Would scan %d files.\n", total)
	return nil
}

// keywordSource merges keywords from flags, config, a keywords file and the
// tenant's stored list behind a cache, so a scan reads them once per TTL. The
// returned func closes the keyword store.
func keywordSource(cfgs fileConfigs, log *logrus.Entry) (*keywords.Cached, func()) {
	sources := keywords.Multi{
		keywords.Static(flagKeywords),
		keywords.Static(cfgs.local.Keywords),
		keywords.Static(cfgs.global.Keywords),
	}
	if p := pickString(flagKeywordsFile, cfgs.local.KeywordsFile, cfgs.global.KeywordsFile); p != "" {
		sources = append(sources, keywords.File{Path: p})
	}
	closeStore := func() {}
	sp := cfgs.storePath()
	if _, err := os.Stat(sp); err == nil && isBoltPath(sp) {
		s, err := store.OpenBolt(sp, logging.Component(logger, "store"))
		if err != nil {
			log.WithError(err).Warn("keyword store unavailable")
		} else {
			var once sync.Once
			closeStore = func() { once.Do(func() { _ = s.Close() }) }
			sources = append(sources, s)
		}
	}
	return keywords.NewCached(sources, time.Minute), closeStore
}

func saveReport(cfgs fileConfigs, out scanOutcome) error {
	s, err := store.Open(cfgs.storePath(), logging.Component(logger, "store"))
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	src := report.Source{Root: out.root}
	if out.root != "stdin" {
		src.Repo, src.Commit, src.Branch = git.RepoMetadata(out.root)
	}
	r := report.New(cfgs.tenant(), out.findings, src, time.Now())
	if err := s.SaveReport(&r); err != nil {
		return err
	}
	for i := range out.findings {
		out.findings[i].RecordID = r.ID
	}
	fmt.Fprintf(os.Stderr, "Report saved: %s\n", r.ID)
	return nil
}

func render(out scanOutcome, noColor bool) error {
	switch {
	case flagSARIF:
		props := map[string]any{"filesScanned": out.filesScanned, "root": out.root}
		if err := report.WriteSARIFWithProperties(os.Stdout, out.findings, version, props); err != nil {
			return fmt.Errorf("sarif error: %w", err)
		}
	case flagJSON:
		res := types.Result{Findings: out.findings, Metadata: engine.Summarize(out.findings)}
		return core.MarshalResult(os.Stdout, res)
	case flagText:
		report.PrintText(os.Stdout, out.findings, report.PrintOptions{NoColor: noColor, Duration: out.duration, FilesScanned: out.filesScanned})
	default:
		report.PrintTable(os.Stdout, out.findings, report.PrintOptions{NoColor: noColor, Duration: out.duration, FilesScanned: out.filesScanned})
	}
	return nil
}

// Package engine contains the core detection logic for shadowscan. Scan runs
// the pattern, context and keyword passes over a single text; ScanFiles walks a
// directory or git history and fans Scan out over a worker pool. This package
// is internal; external consumers should use the stable facade in pkg/core.
package engine

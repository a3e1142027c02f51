// Package core provides a small, stable facade over shadowscan's internal
// engine for external integrations. It re-exports a narrow API surface so
// other programs can depend on a stable import path without importing the
// internal packages.
//
// Example:
//
//	res, err := core.Scan(core.Request{Text: src, FileType: "js"})
//	if err != nil { /* handle */ }
//	_ = core.MarshalResult(os.Stdout, res)
package core

// Package detectors holds the rule tables used by the shadow data engine: the
// pattern registry, the context rule registry, per-file-type score
// adjustments and per-rule false-positive filters. All tables are immutable
// after package initialization and safe for concurrent use.
package detectors

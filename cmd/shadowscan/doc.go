// Package shadowscan provides the command-line interface for the shadowscan
// tool. It configures subcommands (scan, patterns, keywords, reports, etc.),
// parses flags, and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/redactyl/shadowscan/cmd/shadowscan"
//	func main() { shadowscan.Execute() }
package shadowscan

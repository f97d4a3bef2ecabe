// Package tfcprobe provides the command-line interface for tfcprobe. It wires
// subcommands (scan, find, config, history), resolves flags against local and
// global configuration files, and runs the probe.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/redactyl/tfcprobe/cmd/tfcprobe"
//	func main() { tfcprobe.Execute() }
package tfcprobe

// Package cli contains the command line interface for jarg.
//
// # Usage
//
// Without a subcommand, arguments are treated as tokens of the encode
// command:
//
//	jarg msg=hi data:number=42
//
// # Configuration
//
// Flag defaults may be set in a YAML configuration file in the user's
// configuration directory (typically ~/.config/jarg/config.yaml):
//
//	log-level: debug
//	strict: true
//
// Preset definitions are read from presets.yaml in the same directory, and
// from any files named with --presets.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text output on interactive terminals
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o jarg ./cmd/jarg
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/jarg/pprof)
package cli

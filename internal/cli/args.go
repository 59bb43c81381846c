// args.go - Argument parsing for the workerctl command line and console.
//
// The same parser splits process arguments and console input lines, so
// flags and positional arguments behave identically in both places.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser splits arguments into flags and positionals.
// It handles multiple flag formats consistently:
//   - Long flags: --flag value or --flag=value
//   - Short flags: -f value
//   - Boolean flags: --flag (no value needed)
//   - Positional arguments: arguments without flags
//
// A value that looks like a negative number is taken as a flag value, so
// "-t -3" reads as t=-3 and can be rejected with a proper message.
type ArgParser struct {
	flags      map[string]string // String flags (--key=value)
	boolFlags  map[string]bool   // Boolean flags (--help)
	positional []string          // Positional arguments, command first
	raw        []string          // Original raw arguments
}

// NewArgParser creates a new argument parser from raw arguments.
//
// Example:
//
//	args := NewArgParser([]string{"--threads", "4", "--config=/tmp/w.toml", "--version"})
//	args.Flag("threads")      // "4"
//	args.Flag("config")       // "/tmp/w.toml"
//	args.BoolFlag("version")  // true
func NewArgParser(raw []string) *ArgParser {
	parser := &ArgParser{
		flags:      make(map[string]string),
		boolFlags:  make(map[string]bool),
		positional: make([]string, 0),
		raw:        raw,
	}

	i := 0
	for i < len(raw) {
		arg := raw[i]

		if !isFlag(arg) {
			parser.positional = append(parser.positional, arg)
			i++
			continue
		}

		// --flag=value
		if name, value, ok := strings.Cut(arg, "="); ok {
			name = strings.TrimLeft(name, "-")
			if value == "true" || value == "false" {
				parser.boolFlags[name] = value == "true"
			} else {
				parser.flags[name] = value
			}
			i++
			continue
		}

		name := strings.TrimLeft(arg, "-")
		if i+1 < len(raw) && !isFlag(raw[i+1]) {
			parser.flags[name] = raw[i+1]
			i += 2
		} else {
			parser.boolFlags[name] = true
			i++
		}
	}

	return parser
}

// isFlag reports whether arg starts a flag. Negative numbers and a lone "-"
// are values.
func isFlag(arg string) bool {
	if len(arg) < 2 || arg[0] != '-' {
		return false
	}
	if _, err := strconv.Atoi(arg); err == nil {
		return false
	}
	return true
}

// Flag returns the value of the first string flag found among names, so a
// long and short spelling can be looked up together. Returns "" if absent.
func (p *ArgParser) Flag(names ...string) string {
	for _, name := range names {
		if val, ok := p.flags[strings.TrimLeft(name, "-")]; ok {
			return val
		}
	}
	return ""
}

// BoolFlag reports whether any of names was given as a boolean flag.
func (p *ArgParser) BoolFlag(names ...string) bool {
	for _, name := range names {
		if p.boolFlags[strings.TrimLeft(name, "-")] {
			return true
		}
	}
	return false
}

// HasFlag returns true if any of names exists, either as string or bool flag.
func (p *ArgParser) HasFlag(names ...string) bool {
	for _, name := range names {
		name = strings.TrimLeft(name, "-")
		_, hasString := p.flags[name]
		_, hasBool := p.boolFlags[name]
		if hasString || hasBool {
			return true
		}
	}
	return false
}

// Flags returns the names of every flag that was given.
func (p *ArgParser) Flags() []string {
	names := make([]string, 0, len(p.flags)+len(p.boolFlags))
	for name := range p.flags {
		names = append(names, name)
	}
	for name := range p.boolFlags {
		names = append(names, name)
	}
	return names
}

// Positional returns the positional argument at the given index.
// Returns empty string if index out of bounds.
func (p *ArgParser) Positional(index int) string {
	if index < 0 || index >= len(p.positional) {
		return ""
	}
	return p.positional[index]
}

// PositionalCount returns the number of positional arguments.
func (p *ArgParser) PositionalCount() int {
	return len(p.positional)
}

// Raw returns the original raw arguments.
func (p *ArgParser) Raw() []string {
	return p.raw
}

// =============================================================================
// PROCESS OPTIONS
// =============================================================================

// Options are the parsed process arguments.
type Options struct {
	Threads    int    // 0 when not given
	ConfigPath string // "" for the default location
	Help       bool
	Version    bool
	InitConfig bool
}

var knownFlags = map[string]bool{
	"threads":     true,
	"t":           true,
	"config":      true,
	"c":           true,
	"help":        true,
	"h":           true,
	"version":     true,
	"init-config": true,
}

// ParseOptions parses process arguments. Unknown flags, stray positionals and
// a non-positive thread count are usage errors.
func ParseOptions(raw []string) (*Options, error) {
	args := NewArgParser(raw)

	for _, name := range args.Flags() {
		if !knownFlags[name] {
			return nil, NewUsageError(fmt.Sprintf("unknown option '%s'", name))
		}
	}
	if args.PositionalCount() > 0 {
		return nil, NewUsageError(fmt.Sprintf("unexpected argument '%s'", args.Positional(0)))
	}

	opts := &Options{
		ConfigPath: args.Flag("config", "c"),
		Help:       args.BoolFlag("help", "h"),
		Version:    args.BoolFlag("version"),
		InitConfig: args.BoolFlag("init-config"),
	}
	if opts.Help || opts.Version {
		return opts, nil
	}

	if args.BoolFlag("threads", "t") {
		return nil, NewUsageError("option '--threads' requires a value")
	}
	if args.HasFlag("config", "c") && opts.ConfigPath == "" {
		return nil, NewUsageError("option '--config' requires a value")
	}

	if args.HasFlag("threads", "t") {
		n, err := ParseIntWithValidation(args.Flag("threads", "t"), "number of threads")
		if err != nil {
			return nil, NewUsageError(err.Error())
		}
		opts.Threads = n
	}

	return opts, nil
}

// =============================================================================
// HELPER FUNCTIONS FOR COMMON ARG PATTERNS
// =============================================================================

// ParseIntWithValidation parses an integer from a string and validates it's positive.
// Returns the integer and nil error if valid, or 0 and error if invalid.
func ParseIntWithValidation(s string, fieldName string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%s is required", fieldName)
	}

	val, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer (is '%s')", fieldName, s)
	}

	if val <= 0 {
		return 0, fmt.Errorf("%s should be a positive integer (is %d)", fieldName, val)
	}

	return val, nil
}

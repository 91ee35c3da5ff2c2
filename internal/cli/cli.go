// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing for confdiff.
package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdDiff
	CmdSummary
	CmdShell
	CmdDevices
	CmdConfig
	CmdVersion
	CmdHelp
)

var commandNames = map[string]Command{
	"tui":     CmdTUI,
	"view":    CmdTUI,
	"diff":    CmdDiff,
	"summary": CmdSummary,
	"shell":   CmdShell,
	"devices": CmdDevices,
	"config":  CmdConfig,
	"version": CmdVersion,
	"help":    CmdHelp,
}

// Output formats for diff and summary.
const (
	FormatSide    = "side"
	FormatUnified = "unified"
	FormatJSON    = "json"
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath  string
	CatalogPath string
	LogLevel    string
	NoColor     bool
	Quiet       bool

	// Output flags
	Format  string
	Context int // -1 means use the configured value
	Width   int // 0 means detect

	// Positional arguments after the command name
	Positional []string
}

const usageText = `confdiff - compare configuration documents line by line

Usage:
  confdiff LEFT RIGHT                 Open the side-by-side viewer
  confdiff tui LEFT RIGHT             Same as above
  confdiff diff LEFT RIGHT            Print the differences and exit
  confdiff summary LEFT RIGHT         Print added/removed/unchanged counts
  confdiff shell [LEFT [RIGHT]]       Interactive compare shell
  confdiff devices [DEVICE]           List catalog devices or a device's snapshots
  confdiff config [show|get|set|path] Configuration
  confdiff version                    Show version
  confdiff help                       Show this help

Documents:
  A document is a file path, or DEVICE@WHEN when a catalog is configured.
  WHEN is "latest", "previous" or an RFC 3339 timestamp.

    confdiff F5-LTM-PROD-01@previous F5-LTM-PROD-01@latest
    confdiff diff -f unified running.conf candidate.conf

Global Flags:
  -c, --config PATH     Config file (default ~/.confdiff/config.toml)
      --catalog PATH    Device catalog YAML
      --log-level LEVEL debug, info, warn, error
      --no-color        Disable colors (NO_COLOR is also honored)
  -q, --quiet           Only report errors

Output Flags:
  -f, --format FORMAT   side, unified or json (default side)
  -U, --context N       Unchanged lines around each unified hunk
  -w, --width N         Output width for side-by-side (default: terminal)

Exit Status:
  diff and summary exit 0 when the documents are identical, 1 when they
  differ and 2 on error.
`

// PrintUsage prints the usage text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "confdiff %s\n", Version)
	fmt.Fprintf(w, "  Commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Built:  %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Parse parses command-line arguments (without the program name).
func Parse(argv []string) (Command, Args, error) {
	var a Args

	fs := pflag.NewFlagSet("confdiff", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(true)

	fs.StringVarP(&a.ConfigPath, "config", "c", "", "config file")
	fs.StringVar(&a.CatalogPath, "catalog", "", "device catalog")
	fs.StringVar(&a.LogLevel, "log-level", "", "log level")
	fs.BoolVar(&a.NoColor, "no-color", false, "disable colors")
	fs.BoolVarP(&a.Quiet, "quiet", "q", false, "only report errors")
	fs.StringVarP(&a.Format, "format", "f", FormatSide, "output format")
	fs.IntVarP(&a.Context, "context", "U", -1, "context lines")
	fs.IntVarP(&a.Width, "width", "w", 0, "output width")
	help := fs.BoolP("help", "h", false, "show help")
	version := fs.Bool("version", false, "show version")

	if err := fs.Parse(argv); err != nil {
		return CmdHelp, a, NewUsageError(err.Error())
	}

	switch {
	case *help:
		return CmdHelp, a, nil
	case *version:
		return CmdVersion, a, nil
	}

	a.Format = strings.ToLower(a.Format)
	switch a.Format {
	case FormatSide, FormatUnified, FormatJSON:
	default:
		return CmdHelp, a, NewUsageError(fmt.Sprintf("unknown format %q (want side, unified or json)", a.Format))
	}
	if fs.Changed("context") && a.Context < 0 {
		return CmdHelp, a, NewUsageError("--context must not be negative")
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return CmdHelp, a, nil
	}

	cmd, ok := commandNames[rest[0]]
	if ok {
		rest = rest[1:]
	} else {
		cmd = CmdTUI
	}
	a.Positional = rest

	if err := checkArity(cmd, rest); err != nil {
		return cmd, a, err
	}
	return cmd, a, nil
}

func checkArity(cmd Command, rest []string) error {
	switch cmd {
	case CmdTUI, CmdDiff, CmdSummary:
		if len(rest) != 2 {
			return NewUsageError("expected two documents: LEFT RIGHT")
		}
	case CmdShell:
		if len(rest) > 2 {
			return NewUsageError("shell takes at most two documents")
		}
	case CmdDevices:
		if len(rest) > 1 {
			return NewUsageError("devices takes at most one device")
		}
	case CmdConfig:
		sub := ""
		if len(rest) > 0 {
			sub = rest[0]
		}
		want := map[string]int{"": 0, "show": 1, "path": 1, "get": 2, "set": 3}
		n, known := want[sub]
		if !known {
			return NewUsageError(fmt.Sprintf("unknown config subcommand %q", sub))
		}
		if len(rest) != n {
			return NewUsageError("usage: confdiff config [show|get KEY|set KEY VALUE|path]")
		}
	}
	return nil
}

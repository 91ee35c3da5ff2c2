// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/confdiff/internal/config"
	"github.com/jeranaias/confdiff/internal/source"
)

const catalogYAML = `
devices:
  - id: "1"
    name: F5-LTM-PROD-01
    ip_address: 192.168.1.10
    model: BIG-IP 12000
    sync_status: IN_SYNC
  - id: "3"
    name: F5-LTM-DR-01
    sync_status: OUT_OF_SYNC
snapshots:
  - device_id: "1"
    timestamp: 2025-01-01T10:00:00Z
    content: "pool a\nmonitor http"
  - device_id: "1"
    timestamp: 2025-01-02T10:00:00Z
    content: "pool a\nmonitor https"
`

func init() {
	ForceColorsEnabled(false)
	lipgloss.SetColorProfile(termenv.Ascii)
}

// isolate gives the test its own home directory and a clean environment.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, k := range []string{"CONFDIFF_LOG_LEVEL", "CONFDIFF_LOG_FILE", "CONFDIFF_CATALOG", "CONFDIFF_THEME", "CONFDIFF_CONTEXT", "CONFDIFF_NO_HIGHLIGHT"} {
		t.Setenv(k, "")
	}
	config.ResetGlobalForTesting()
	t.Cleanup(config.ResetGlobalForTesting)
	return home
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func newTestEnv(t *testing.T, args Args) (*Env, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	env, err := NewEnv(args, &out, &out, CmdDiff)
	if err != nil {
		t.Fatalf("NewEnv: %v", err)
	}
	t.Cleanup(func() { env.Close() })
	return env, &out
}

// =============================================================================
// PARSE TESTS
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantCmd Command
		wantPos []string
		wantErr bool
		check   func(*testing.T, Args)
	}{
		{name: "no args", args: nil, wantCmd: CmdHelp},
		{name: "bare pair opens viewer", args: []string{"a.conf", "b.conf"}, wantCmd: CmdTUI, wantPos: []string{"a.conf", "b.conf"}},
		{name: "tui", args: []string{"tui", "a", "b"}, wantCmd: CmdTUI, wantPos: []string{"a", "b"}},
		{name: "diff defaults", args: []string{"diff", "a", "b"}, wantCmd: CmdDiff, wantPos: []string{"a", "b"},
			check: func(t *testing.T, a Args) {
				if a.Format != FormatSide || a.Context != -1 || a.Width != 0 {
					t.Errorf("defaults = %q %d %d", a.Format, a.Context, a.Width)
				}
			}},
		{name: "diff flags", args: []string{"diff", "-f", "UNIFIED", "-U", "0", "a", "b", "--no-color", "-q"}, wantCmd: CmdDiff, wantPos: []string{"a", "b"},
			check: func(t *testing.T, a Args) {
				if a.Format != FormatUnified || a.Context != 0 || !a.NoColor || !a.Quiet {
					t.Errorf("got %+v", a)
				}
			}},
		{name: "global flags", args: []string{"--config", "/x.toml", "--catalog", "/c.yaml", "--log-level", "debug", "devices"}, wantCmd: CmdDevices,
			check: func(t *testing.T, a Args) {
				if a.ConfigPath != "/x.toml" || a.CatalogPath != "/c.yaml" || a.LogLevel != "debug" {
					t.Errorf("got %+v", a)
				}
			}},
		{name: "summary", args: []string{"summary", "a", "b"}, wantCmd: CmdSummary, wantPos: []string{"a", "b"}},
		{name: "shell without documents", args: []string{"shell"}, wantCmd: CmdShell},
		{name: "shell with one document", args: []string{"shell", "a"}, wantCmd: CmdShell, wantPos: []string{"a"}},
		{name: "devices with device", args: []string{"devices", "F5"}, wantCmd: CmdDevices, wantPos: []string{"F5"}},
		{name: "config set", args: []string{"config", "set", "ui.theme", "dark"}, wantCmd: CmdConfig, wantPos: []string{"set", "ui.theme", "dark"}},
		{name: "version flag", args: []string{"--version"}, wantCmd: CmdVersion},
		{name: "help flag", args: []string{"diff", "-h"}, wantCmd: CmdHelp},
		{name: "version command", args: []string{"version"}, wantCmd: CmdVersion},

		{name: "one document", args: []string{"diff", "a"}, wantErr: true},
		{name: "three documents", args: []string{"a", "b", "c"}, wantErr: true},
		{name: "bad format", args: []string{"diff", "-f", "html", "a", "b"}, wantErr: true},
		{name: "negative context", args: []string{"diff", "-U", "-2", "a", "b"}, wantErr: true},
		{name: "unknown flag", args: []string{"--frobnicate"}, wantErr: true},
		{name: "config get without key", args: []string{"config", "get"}, wantErr: true},
		{name: "config unknown", args: []string{"config", "reset"}, wantErr: true},
		{name: "devices too many", args: []string{"devices", "a", "b"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args, err := Parse(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%v) succeeded, want error", tt.args)
				}
				if !IsUsageError(err) {
					t.Errorf("error %v is not a UsageError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%v): %v", tt.args, err)
			}
			if cmd != tt.wantCmd {
				t.Errorf("cmd = %v, want %v", cmd, tt.wantCmd)
			}
			if strings.Join(args.Positional, " ") != strings.Join(tt.wantPos, " ") {
				t.Errorf("positional = %v, want %v", args.Positional, tt.wantPos)
			}
			if tt.check != nil {
				tt.check(t, args)
			}
		})
	}
}

// =============================================================================
// RUN TESTS
// =============================================================================

func TestRun_HelpAndVersion(t *testing.T) {
	code, out, _ := run("help")
	if code != ExitSuccess || !strings.Contains(out, "Usage:") {
		t.Errorf("help: code %d, output %q", code, out)
	}

	code, out, _ = run("version")
	if code != ExitSuccess || !strings.Contains(out, "confdiff "+Version) {
		t.Errorf("version: code %d, output %q", code, out)
	}

	code, _, errOut := run("diff", "only-one")
	if code != ExitError || !strings.Contains(errOut, "expected two documents") {
		t.Errorf("usage error: code %d, stderr %q", code, errOut)
	}
}

func TestRun_DiffExitCodes(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.conf", "hostname r1\ninterface eth0\n")
	b := writeFile(t, dir, "b.conf", "hostname r2\ninterface eth0\n")
	same := writeFile(t, dir, "same.conf", "hostname r1\ninterface eth0\n")

	code, out, _ := run("diff", "--no-color", "-w", "80", a, b)
	if code != ExitDifferent {
		t.Errorf("differing documents: code %d, want %d", code, ExitDifferent)
	}
	for _, want := range []string{"a.conf", "b.conf", "hostname r1", "hostname r2", "+1", "-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("side-by-side output missing %q:\n%s", want, out)
		}
	}

	code, out, _ = run("diff", "--no-color", a, same)
	if code != ExitSuccess {
		t.Errorf("identical documents: code %d, want %d", code, ExitSuccess)
	}
	if !strings.Contains(out, "identical") {
		t.Errorf("identical output = %q", out)
	}

	code, _, errOut := run("diff", a, filepath.Join(dir, "missing.conf"))
	if code != ExitError {
		t.Errorf("missing document: code %d, want %d", code, ExitError)
	}
	if !strings.Contains(errOut, "diff: right") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestRun_DiffUnified(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.conf", "1\n2\n3\n4\n5\n6\n7\n8")
	b := writeFile(t, dir, "b.conf", "1\n2\n3\n4\nfive\n6\n7\n8")

	code, out, _ := run("diff", "-f", "unified", "-U", "1", a, b)
	if code != ExitDifferent {
		t.Fatalf("code = %d", code)
	}
	want := "--- a.conf\n+++ b.conf\n@@ -4,3 +4,3 @@\n 4\n-5\n+five\n 6\n"
	if out != want {
		t.Errorf("unified output:\n%s\nwant:\n%s", out, want)
	}
}

func TestRun_DiffJSON(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.conf", "x\ny")
	b := writeFile(t, dir, "b.conf", "x\nz")

	code, out, _ := run("diff", "--format", "json", a, b)
	if code != ExitDifferent {
		t.Fatalf("code = %d", code)
	}

	var got struct {
		Left    string `json:"left"`
		Right   string `json:"right"`
		Summary struct {
			Added, Removed, Unchanged, Total int
		} `json:"summary"`
		Lines []struct {
			Kind    string `json:"kind"`
			Content string `json:"content"`
		} `json:"lines"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.Left != "a.conf" || got.Right != "b.conf" {
		t.Errorf("labels = %q %q", got.Left, got.Right)
	}
	if got.Summary.Added != 1 || got.Summary.Removed != 1 || got.Summary.Unchanged != 1 || got.Summary.Total != 3 {
		t.Errorf("summary = %+v", got.Summary)
	}
	if len(got.Lines) != 3 || got.Lines[1].Content != "y" || got.Lines[2].Content != "z" {
		t.Errorf("lines = %+v", got.Lines)
	}
}

func TestRun_Summary(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.conf", "a\nb\nc")
	b := writeFile(t, dir, "b.conf", "a\nc\nd")

	code, out, _ := run("summary", "--no-color", a, b)
	if code != ExitDifferent {
		t.Errorf("code = %d", code)
	}
	for _, want := range []string{"Added", "Removed", "Unchanged", "a.conf"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRun_CatalogRefs(t *testing.T) {
	isolate(t)
	catalog := writeFile(t, t.TempDir(), "catalog.yaml", catalogYAML)

	code, out, errOut := run("diff", "--catalog", catalog, "-f", "unified", "F5-LTM-PROD-01@previous", "1@latest")
	if code != ExitDifferent {
		t.Fatalf("code = %d, stderr %q", code, errOut)
	}
	if !strings.Contains(out, "-monitor http\n+monitor https\n") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "--- F5-LTM-PROD-01 @ ") {
		t.Errorf("catalog label missing: %q", out)
	}
}

func TestRun_BadConfigFile(t *testing.T) {
	isolate(t)
	path := writeFile(t, t.TempDir(), "bad.toml", "[ui]\ntheme = \"neon\"\n")

	code, _, errOut := run("--config", path, "devices")
	if code != ExitError || !strings.Contains(errOut, "ui.theme") {
		t.Errorf("code %d, stderr %q", code, errOut)
	}
}

// =============================================================================
// SHELL TESTS
// =============================================================================

func TestShell_Session(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.conf", "1\n2\n3\n4\n5")
	writeFile(t, dir, "b.conf", "1\nx\n3\n4\ny")

	env, out := newTestEnv(t, Args{Context: -1, Width: 80, NoColor: true})
	env.Source.Files.Root = dir
	sh := NewShell(env)
	ctx := context.Background()

	exec := func(line string) error {
		t.Helper()
		quit, err := sh.Execute(ctx, line)
		if quit {
			t.Fatalf("%q quit the shell", line)
		}
		return err
	}

	if err := exec("next"); !errors.Is(err, ErrNotCompared) {
		t.Errorf("next before compare: %v", err)
	}
	if err := exec("compare"); err == nil {
		t.Error("compare with nothing selected should fail")
	}

	for _, line := range []string{"left a.conf", "right b.conf"} {
		if err := exec(line); err != nil {
			t.Fatalf("%s: %v", line, err)
		}
	}
	if !strings.Contains(out.String(), "Type compare") {
		t.Errorf("missing ready hint:\n%s", out.String())
	}

	out.Reset()
	if err := exec("compare"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if !strings.Contains(out.String(), "change 1/4") {
		t.Errorf("compare output:\n%s", out.String())
	}

	out.Reset()
	exec("prev")
	if !strings.Contains(out.String(), "No earlier differences") {
		t.Errorf("prev at first change:\n%s", out.String())
	}

	for i := 0; i < 3; i++ {
		exec("n")
	}
	out.Reset()
	exec("next")
	if !strings.Contains(out.String(), "No further differences") {
		t.Errorf("next at last change:\n%s", out.String())
	}
	if i, _ := sh.Comparison().Cursor(); i != 6 {
		t.Errorf("cursor = %d, want 6", i)
	}

	out.Reset()
	exec("status")
	for _, want := range []string{"compared", "a.conf", "b.conf", "4/4", "0s ago"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("status missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := exec("show"); err != nil {
		t.Fatalf("show: %v", err)
	}
	if lines := strings.Count(out.String(), "\n"); lines != 8 {
		t.Errorf("show printed %d lines, want header plus 7 rows:\n%s", lines, out.String())
	}

	// Selecting again discards the comparison.
	if err := exec("right a.conf"); err != nil {
		t.Fatal(err)
	}
	if err := exec("summary"); !errors.Is(err, ErrNotCompared) {
		t.Errorf("summary after reselect: %v", err)
	}

	if err := exec("left"); err == nil {
		t.Error("left without a ref should fail")
	}
	if err := exec("left missing.conf"); !errors.Is(err, source.ErrNotFound) {
		t.Errorf("missing document: %v", err)
	}
	if err := exec("frobnicate"); err == nil {
		t.Error("unknown command should fail")
	}

	quit, err := sh.Execute(ctx, "quit")
	if !quit || err != nil {
		t.Errorf("quit = %v, %v", quit, err)
	}
}

func TestShell_Identical(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.conf", "same")

	env, out := newTestEnv(t, Args{Context: -1})
	env.Source.Files.Root = dir
	sh := NewShell(env)
	ctx := context.Background()

	if err := sh.preload(ctx, []string{"a.conf", "a.conf"}); err != nil {
		t.Fatal(err)
	}
	sh.Execute(ctx, "compare")
	out.Reset()
	sh.Execute(ctx, "next")
	if !strings.Contains(out.String(), "identical") {
		t.Errorf("next on identical documents:\n%s", out.String())
	}
}

func TestShell_Complete(t *testing.T) {
	isolate(t)
	catalog := writeFile(t, t.TempDir(), "catalog.yaml", catalogYAML)
	env, _ := newTestEnv(t, Args{Context: -1, CatalogPath: catalog})
	sh := NewShell(env)

	if got := sh.complete("sh"); len(got) != 1 || got[0] != "show" {
		t.Errorf("complete(sh) = %v", got)
	}
	got := sh.complete("left f5-ltm-prod")
	if len(got) != 2 || got[0] != "left F5-LTM-PROD-01@latest" {
		t.Errorf("complete(left f5-ltm-prod) = %v", got)
	}
	if got := sh.complete("compare x"); got != nil {
		t.Errorf("complete(compare x) = %v", got)
	}
}

// =============================================================================
// DEVICES AND CONFIG TESTS
// =============================================================================

func TestDevices(t *testing.T) {
	isolate(t)
	catalog := writeFile(t, t.TempDir(), "catalog.yaml", catalogYAML)
	env, out := newTestEnv(t, Args{Context: -1, CatalogPath: catalog})

	if err := HandleDevices(env, ""); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"F5-LTM-PROD-01", "192.168.1.10", "In sync", "Out of sync", "2 devices"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("device list missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := HandleDevices(env, "f5-ltm-prod-01"); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"1@2025-01-02T10:00:00Z", "latest", "previous"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("snapshot list missing %q:\n%s", want, out.String())
		}
	}

	if err := HandleDevices(env, "nope"); !errors.Is(err, source.ErrNotFound) {
		t.Errorf("unknown device: %v", err)
	}

	plain, _ := newTestEnv(t, Args{Context: -1})
	if err := HandleDevices(plain, ""); !errors.Is(err, ErrNoCatalog) {
		t.Errorf("no catalog: %v", err)
	}
}

func TestConfigCommand(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	code, out, errOut := run("--config", path, "config", "path")
	if code != ExitSuccess {
		t.Fatalf("config path: %d %s", code, errOut)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("config path = %q", out)
	}

	// A missing --config file means defaults until "config set" writes it.
	code, out, errOut = run("--config", path, "config", "show")
	if code != ExitSuccess {
		t.Fatalf("config show: %d %s", code, errOut)
	}
	for _, want := range []string{"diff.context_lines = 3", "ui.theme = auto", "catalog.path = "} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}

	code, out, _ = run("--config", path, "-f", "json", "config", "show")
	var shown config.Config
	if code != ExitSuccess || json.Unmarshal([]byte(out), &shown) != nil {
		t.Fatalf("config show json: %d %q", code, out)
	}
	if shown.Diff.ContextLines != 3 {
		t.Errorf("json context_lines = %d", shown.Diff.ContextLines)
	}

	code, _, errOut = run("--config", path, "config", "set", "diff.context_lines", "5")
	if code != ExitSuccess {
		t.Fatalf("config set on new file: %d %s", code, errOut)
	}
	cfg, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Diff.ContextLines != 5 {
		t.Errorf("saved context_lines = %d", cfg.Diff.ContextLines)
	}
}

func TestConfigSetDefaultPath(t *testing.T) {
	home := isolate(t)

	code, _, errOut := run("config", "set", "ui.theme", "light")
	if code != ExitSuccess {
		t.Fatalf("config set: %d %s", code, errOut)
	}
	cfg, err := config.LoadFromPath(filepath.Join(home, ".confdiff", "config.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("saved theme %q", cfg.UI.Theme)
	}
}

func TestConfigCommandSkipsLogFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	logDir := filepath.Join(dir, "logs")
	path := writeFile(t, dir, "config.toml", "[log]\nfile = \""+filepath.ToSlash(filepath.Join(logDir, "confdiff.log"))+"\"\n")

	if code, _, errOut := run("--config", path, "config", "get", "ui.theme"); code != ExitSuccess {
		t.Fatalf("config get: %d %s", code, errOut)
	}
	if _, err := os.Stat(logDir); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("config command opened the log: %v", err)
	}

	a := writeFile(t, dir, "a.conf", "x")
	if code, _, errOut := run("--config", path, "summary", a, a); code != ExitSuccess {
		t.Fatalf("summary: %d %s", code, errOut)
	}
	if _, err := os.Stat(logDir); err != nil {
		t.Errorf("summary did not open the log: %v", err)
	}
}

func TestConfigSetGet(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", "[diff]\ncontext_lines = 2\n")

	// The --context override must not be written back.
	code, _, errOut := run("--config", path, "-U", "9", "config", "set", "ui.theme", "light")
	if code != ExitSuccess {
		t.Fatalf("config set: %d %s", code, errOut)
	}

	cfg, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UI.Theme != "light" || cfg.Diff.ContextLines != 2 {
		t.Errorf("saved theme %q, context %d", cfg.UI.Theme, cfg.Diff.ContextLines)
	}

	code, out, _ := run("--config", path, "config", "get", "ui.theme")
	if code != ExitSuccess || strings.TrimSpace(out) != "light" {
		t.Errorf("config get: %d %q", code, out)
	}

	code, _, _ = run("--config", path, "config", "set", "ui.theme", "neon")
	if code != ExitError {
		t.Errorf("invalid value accepted: %d", code)
	}
	code, _, _ = run("--config", path, "config", "get", "nope")
	if code != ExitError {
		t.Errorf("unknown key: %d", code)
	}
}

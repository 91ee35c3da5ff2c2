// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the home directory at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, k := range []string{"CONFDIFF_LOG_LEVEL", "CONFDIFF_LOG_FILE", "CONFDIFF_CATALOG", "CONFDIFF_THEME", "CONFDIFF_CONTEXT", "CONFDIFF_NO_HIGHLIGHT"} {
		t.Setenv(k, "")
	}
	return home
}

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_NoFiles(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_TOMLOverridesDefaults(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".confdiff")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
[diff]
context_lines = 0

[ui]
theme = "light"
highlight = false

[catalog]
path = "/srv/catalog.yaml"
`), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Diff.ContextLines)
	assert.Equal(t, 20000, cfg.Diff.MaxLines)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.False(t, cfg.UI.Highlight)
	assert.True(t, cfg.UI.LineNumbers)
	assert.Equal(t, "/srv/catalog.yaml", cfg.Catalog.Path)
}

func TestLoad_JSONFallback(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".confdiff")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"log":{"level":"debug"}}`), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_BrokenFileFallsBackToDefaults(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".confdiff")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[diff\n"), 0600))

	cfg, err := Load()
	assert.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, Default().Diff, cfg.Diff)
}

func TestLoadFromPath_Invalid(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"neon\"\n[diff]\ncontext_lines = -1\n"), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)
	assert.Contains(t, err.Error(), "ui.theme")
	assert.Contains(t, err.Error(), "diff.context_lines")
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("CONFDIFF_LOG_LEVEL", "warn")
	t.Setenv("CONFDIFF_CATALOG", "/tmp/devices.yaml")
	t.Setenv("CONFDIFF_CONTEXT", "7")
	t.Setenv("CONFDIFF_NO_HIGHLIGHT", "true")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/tmp/devices.yaml", cfg.Catalog.Path)
	assert.Equal(t, 7, cfg.Diff.ContextLines)
	assert.False(t, cfg.UI.Highlight)
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.UI.Theme = "dark"
	cfg.Diff.MaxLines = 0
	cfg.Log.File = "/var/log/confdiff.log"
	require.NoError(t, SaveTOML(cfg, path))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	loaded := Default()
	require.NoError(t, LoadTOML(loaded, path))
	assert.Equal(t, cfg, loaded)
}

func TestSaveJSON_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.Watch.Enabled = false
	require.NoError(t, SaveJSON(cfg, path))

	loaded := &Config{}
	require.NoError(t, LoadJSON(loaded, path))
	assert.Equal(t, cfg, loaded)
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	tests := []struct {
		key   string
		value interface{}
		want  interface{}
	}{
		{"diff.context_lines", "5", 5},
		{"diff.max_lines", 100, 100},
		{"ui.theme", "light", "light"},
		{"ui.line_numbers", "off", false},
		{"ui.highlight", "true", true},
		{"watch.debounce_ms", "50", 50},
		{"log.max_size_mb", "20", 20},
		{"catalog.path", "/x.yaml", "/x.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			require.NoError(t, cfg.Set(tt.key, tt.value))
			got, err := cfg.Get(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetSet_Errors(t *testing.T) {
	cfg := Default()

	_, err := cfg.Get("nope")
	assert.Error(t, err)
	_, err = cfg.Get("diff.context_lines.deeper")
	assert.Error(t, err)
	_, err = cfg.Get("")
	assert.Error(t, err)

	assert.Error(t, cfg.Set("diff", "x"))
	assert.Error(t, cfg.Set("diff.context_lines", "many"))
	assert.Error(t, cfg.Set("ui.highlight", "perhaps"))
	assert.Error(t, cfg.Set("ui.theme", 3))
}

func TestGetAllKeys_Resolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

// TestConfig_ConcurrentAccess tests that Global() and SetGlobal() can be
// called concurrently without races.
// Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	isolate(t)
	ResetGlobalForTesting()
	t.Cleanup(ResetGlobalForTesting)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c := Default()
			c.UI.Theme = "dark"
			SetGlobal(c)
		}()
		go func() {
			defer wg.Done()
			if cfg := Global(); cfg == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

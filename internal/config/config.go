// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/confdiff/internal/util"
	"github.com/rs/zerolog"
)

// CurrentVersion is written to new configuration files.
const CurrentVersion = "1"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete confdiff configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Diff    DiffConfig    `toml:"diff" json:"diff"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Watch   WatchConfig   `toml:"watch" json:"watch"`
	Log     LogConfig     `toml:"log" json:"log"`
	Catalog CatalogConfig `toml:"catalog" json:"catalog"`
}

// DiffConfig controls comparison.
type DiffConfig struct {
	// ContextLines is the number of unchanged lines around each unified hunk.
	ContextLines int `toml:"context_lines" json:"context_lines"`

	// MaxLines rejects documents longer than this many lines. 0 disables the
	// limit. The aligner needs memory proportional to the product of the two
	// line counts.
	MaxLines int `toml:"max_lines" json:"max_lines"`
}

// UIConfig controls the viewer.
type UIConfig struct {
	Theme       string `toml:"theme" json:"theme"` // auto, dark, light
	LineNumbers bool   `toml:"line_numbers" json:"line_numbers"`
	Highlight   bool   `toml:"highlight" json:"highlight"`
	SyntaxStyle string `toml:"syntax_style" json:"syntax_style"` // chroma style name
	Language    string `toml:"language" json:"language"`         // chroma lexer; empty to detect
	TabWidth    int    `toml:"tab_width" json:"tab_width"`
}

// WatchConfig controls reloading of documents that change on disk.
type WatchConfig struct {
	Enabled        bool `toml:"enabled" json:"enabled"`
	DebounceMs     int  `toml:"debounce_ms" json:"debounce_ms"`
	MinIntervalMs  int  `toml:"min_interval_ms" json:"min_interval_ms"`
	PollIntervalMs int  `toml:"poll_interval_ms" json:"poll_interval_ms"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level      string `toml:"level" json:"level"`
	Format     string `toml:"format" json:"format"` // console, json
	File       string `toml:"file" json:"file"`     // empty disables file logging
	MaxSizeMB  int    `toml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" json:"max_backups"`
}

// CatalogConfig points at the device snapshot catalog.
type CatalogConfig struct {
	Path string `toml:"path" json:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Diff: DiffConfig{
			ContextLines: 3,
			MaxLines:     20000,
		},
		UI: UIConfig{
			Theme:       "auto",
			LineNumbers: true,
			Highlight:   true,
			SyntaxStyle: "monokai",
			TabWidth:    4,
		},
		Watch: WatchConfig{
			Enabled:        true,
			DebounceMs:     200,
			MinIntervalMs:  500,
			PollIntervalMs: 1000,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the confdiff configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".confdiff"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
//
// A file that exists but cannot be decoded is reported through the returned
// error together with a usable default configuration.
func Load() (*Config, error) {
	var loadErr error

	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := pathFn()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		cfg, err := LoadFromPath(path)
		if err != nil {
			loadErr = err
			continue
		}
		return cfg, nil
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, loadErr
}

// LoadTOML decodes a TOML file over cfg. Keys absent from the file keep
// their current value.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to path with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var sb strings.Builder
	sb.WriteString("# confdiff configuration file\n")
	sb.WriteString("# Generated by confdiff - edit with care\n\n")

	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration to path as indented JSON with 0600
// permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Diff.ContextLines < 0 {
		errs = append(errs, ValidationError{"diff.context_lines", "must not be negative"})
	}
	if c.Diff.MaxLines < 0 {
		errs = append(errs, ValidationError{"diff.max_lines", "must not be negative (0 disables the limit)"})
	}

	switch c.UI.Theme {
	case "auto", "dark", "light":
	default:
		errs = append(errs, ValidationError{"ui.theme", fmt.Sprintf("unknown theme %q (want auto, dark or light)", c.UI.Theme)})
	}
	if c.UI.TabWidth < 1 || c.UI.TabWidth > 16 {
		errs = append(errs, ValidationError{"ui.tab_width", "must be between 1 and 16"})
	}

	if c.Watch.DebounceMs < 0 {
		errs = append(errs, ValidationError{"watch.debounce_ms", "must not be negative"})
	}
	if c.Watch.MinIntervalMs < 0 {
		errs = append(errs, ValidationError{"watch.min_interval_ms", "must not be negative"})
	}
	if c.Watch.PollIntervalMs < 50 {
		errs = append(errs, ValidationError{"watch.poll_interval_ms", "must be at least 50"})
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		errs = append(errs, ValidationError{"log.level", fmt.Sprintf("unknown level %q", c.Log.Level)})
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, ValidationError{"log.format", fmt.Sprintf("unknown format %q (want console or json)", c.Log.Format)})
	}
	if c.Log.MaxSizeMB <= 0 {
		errs = append(errs, ValidationError{"log.max_size_mb", "must be positive"})
	}
	if c.Log.MaxBackups < 0 {
		errs = append(errs, ValidationError{"log.max_backups", "must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills empty string fields that have no meaningful zero value.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Version == "" {
		c.Version = d.Version
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.SyntaxStyle == "" {
		c.UI.SyntaxStyle = d.UI.SyntaxStyle
	}
	if c.UI.TabWidth == 0 {
		c.UI.TabWidth = d.UI.TabWidth
	}
	if c.Watch.PollIntervalMs == 0 {
		c.Watch.PollIntervalMs = d.Watch.PollIntervalMs
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = d.Log.MaxSizeMB
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported environment variables:
//   - CONFDIFF_LOG_LEVEL: overrides log.level
//   - CONFDIFF_LOG_FILE: overrides log.file
//   - CONFDIFF_CATALOG: overrides catalog.path
//   - CONFDIFF_THEME: overrides ui.theme
//   - CONFDIFF_CONTEXT: overrides diff.context_lines
//   - CONFDIFF_NO_HIGHLIGHT: "1" or "true" disables ui.highlight
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CONFDIFF_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CONFDIFF_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("CONFDIFF_CATALOG"); v != "" {
		c.Catalog.Path = v
	}
	if v := os.Getenv("CONFDIFF_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("CONFDIFF_CONTEXT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Diff.ContextLines = n
		}
	}
	if v := os.Getenv("CONFDIFF_NO_HIGHLIGHT"); v == "1" || strings.EqualFold(v, "true") {
		c.UI.Highlight = false
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// lookup walks a dot-notation key ("ui.theme") to its struct field.
func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// Get retrieves a configuration value using dot notation (e.g., "diff.context_lines").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if field.Kind() == reflect.Struct {
		return fmt.Errorf("cannot set section %s", key)
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(strings.ToLower(part[1:]))
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %w", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strings.ToLower(strVal))
			if err != nil {
				switch strings.ToLower(strVal) {
				case "yes", "on":
					boolVal = true
				case "no", "off":
					boolVal = false
				default:
					return fmt.Errorf("invalid boolean value: %q", strVal)
				}
			}
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && field.Kind() != reflect.String && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"diff.context_lines",
		"diff.max_lines",
		"ui.theme",
		"ui.line_numbers",
		"ui.highlight",
		"ui.syntax_style",
		"ui.language",
		"ui.tab_width",
		"watch.enabled",
		"watch.debounce_ms",
		"watch.min_interval_ms",
		"watch.poll_interval_ms",
		"log.level",
		"log.format",
		"log.file",
		"log.max_size_mb",
		"log.max_backups",
		"catalog.path",
	}
}

// String returns the configuration as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// env.go - Shared command environment: configuration, logging and sources.

package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jeranaias/confdiff/internal/config"
	"github.com/jeranaias/confdiff/internal/logging"
	"github.com/jeranaias/confdiff/internal/session"
	"github.com/jeranaias/confdiff/internal/source"
)

// Env is what every command needs.
type Env struct {
	Args    Args
	Config  *config.Config
	Log     *logging.Logger
	Catalog *source.Catalog // nil without a catalog
	Source  *source.Router

	Out io.Writer
	Err io.Writer
}

// NewEnv loads configuration, builds the logger and opens the catalog for
// cmd. The viewer owns the terminal, so its logs only go to the configured
// file. The config command never opens the log file, so a bad log.file can
// still be repaired with "config set".
func NewEnv(args Args, stdout, stderr io.Writer, cmd Command) (*Env, error) {
	cfg, warning, err := loadConfig(args)
	if err != nil {
		return nil, err
	}

	log, err := buildLogger(cfg, args, stderr, cmd)
	if err != nil {
		return nil, err
	}
	if warning != nil {
		log.Warn().Err(warning).Msg("config file ignored, using defaults")
	}

	env := &Env{
		Args:   args,
		Config: cfg,
		Log:    log,
		Out:    stdout,
		Err:    stderr,
	}

	if cfg.Catalog.Path != "" {
		cat, err := source.LoadCatalog(cfg.Catalog.Path)
		if err != nil {
			log.Close()
			return nil, err
		}
		env.Catalog = cat
		log.Debug().Str("path", cfg.Catalog.Path).Int("devices", len(cat.Devices())).Msg("catalog loaded")
	}
	env.Source = source.NewRouter(env.Catalog)
	return env, nil
}

// loadConfig returns the configuration with flag overrides applied. A broken
// default config file is reported as a warning, not an error.
func loadConfig(args Args) (cfg *config.Config, warning error, err error) {
	switch {
	case args.ConfigPath != "" && !fileExists(args.ConfigPath):
		// "config set" creates it.
		cfg = config.Default()
		cfg.ApplyEnvOverrides()
		cfg.SetDefaults()
	case args.ConfigPath != "":
		cfg, err = config.LoadFromPath(args.ConfigPath)
		if err != nil {
			return nil, nil, err
		}
	default:
		cfg, warning = config.Load()
		if cfg == nil {
			return nil, nil, warning
		}
	}

	if args.CatalogPath != "" {
		cfg.Catalog.Path = args.CatalogPath
	}
	if args.LogLevel != "" {
		cfg.Log.Level = strings.ToLower(args.LogLevel)
	}
	if args.Context >= 0 {
		cfg.Diff.ContextLines = args.Context
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	config.SetGlobal(cfg)
	return cfg, warning, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

func buildLogger(cfg *config.Config, args Args, stderr io.Writer, cmd Command) (*logging.Logger, error) {
	b := logging.NewBuilder().WithConfig(cfg.Log).RedirectStdlog()
	switch cmd {
	case CmdTUI:
		return b.Build()
	case CmdConfig:
		b.WithoutFile()
	}

	// Line-mode commands keep stderr quiet unless asked.
	level := zerolog.WarnLevel
	if args.LogLevel != "" {
		if lvl, err := zerolog.ParseLevel(strings.ToLower(args.LogLevel)); err == nil {
			level = lvl
		}
	}
	if args.Quiet {
		level = zerolog.ErrorLevel
	}
	return b.WithLevel(level).WithConsole(stderr, args.NoColor || !ColorsEnabled()).Build()
}

// SessionConfig returns comparison limits from the configuration.
func (e *Env) SessionConfig() session.Config {
	return session.Config{MaxLines: e.Config.Diff.MaxLines}
}

// Close releases the log file.
func (e *Env) Close() error {
	return e.Log.Close()
}

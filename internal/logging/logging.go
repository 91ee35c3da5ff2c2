// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zerolog logger used across confdiff.
//
// Output goes to a console writer, a rotating file, both, or nowhere. When the
// interactive viewer owns the terminal the console writer is left out so log
// lines never corrupt the screen.
package logging

import (
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/confdiff/internal/config"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Format selects how records are encoded.
type Format int

const (
	FormatConsole Format = iota
	FormatJSON
)

// ParseFormat maps "console" and "json" to a Format. Anything else is console.
func ParseFormat(s string) Format {
	if strings.EqualFold(s, "json") {
		return FormatJSON
	}
	return FormatConsole
}

// Logger is a zerolog logger that owns its rotating file, if any.
type Logger struct {
	zerolog.Logger
	file *lumberjack.Logger
}

// Close releases the log file.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// =============================================================================
// BUILDER
// =============================================================================

// Builder assembles a Logger.
type Builder struct {
	level      zerolog.Level
	format     Format
	console    io.Writer
	noColor    bool
	filePath   string
	maxSizeMB  int
	maxBackups int
	redirect   bool
}

// NewBuilder returns a builder with info level and no outputs.
func NewBuilder() *Builder {
	return &Builder{
		level:     zerolog.InfoLevel,
		format:    FormatConsole,
		maxSizeMB: 10,
	}
}

// WithConfig applies level, format and file settings.
func (b *Builder) WithConfig(cfg config.LogConfig) *Builder {
	if lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.Level)); err == nil && cfg.Level != "" {
		b.level = lvl
	}
	b.format = ParseFormat(cfg.Format)
	b.filePath = cfg.File
	if cfg.MaxSizeMB > 0 {
		b.maxSizeMB = cfg.MaxSizeMB
	}
	b.maxBackups = cfg.MaxBackups
	return b
}

// WithLevel overrides the level.
func (b *Builder) WithLevel(level zerolog.Level) *Builder {
	b.level = level
	return b
}

// WithConsole writes records to w. A nil w disables console output.
func (b *Builder) WithConsole(w io.Writer, noColor bool) *Builder {
	b.console = w
	b.noColor = noColor
	return b
}

// WithoutFile disables the file writer even if the config names one.
func (b *Builder) WithoutFile() *Builder {
	b.filePath = ""
	return b
}

// RedirectStdlog sends the standard library logger through the result.
func (b *Builder) RedirectStdlog() *Builder {
	b.redirect = true
	return b
}

// Build creates the logger. With no writers configured it returns a logger
// that discards everything.
func (b *Builder) Build() (*Logger, error) {
	var writers []io.Writer
	out := &Logger{}

	if b.console != nil {
		writers = append(writers, b.encoder(b.console, b.noColor))
	}

	if b.filePath != "" {
		if b.maxSizeMB <= 0 {
			return nil, errors.New("max size must be positive")
		}
		if err := os.MkdirAll(filepath.Dir(b.filePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		out.file = &lumberjack.Logger{
			Filename:   b.filePath,
			MaxSize:    b.maxSizeMB,
			MaxBackups: b.maxBackups,
			LocalTime:  true,
		}
		writers = append(writers, b.encoder(out.file, true))
	}

	if len(writers) == 0 {
		out.Logger = zerolog.Nop()
		return out, nil
	}

	out.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(b.level).
		With().
		Timestamp().
		Logger()

	if b.redirect {
		stdlog.SetOutput(out.Logger)
		stdlog.SetFlags(0)
	}
	return out, nil
}

func (b *Builder) encoder(w io.Writer, noColor bool) io.Writer {
	if b.format == FormatJSON {
		return w
	}
	return zerolog.ConsoleWriter{Out: w, NoColor: noColor, TimeFormat: time.TimeOnly}
}

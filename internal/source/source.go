// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package source fetches the documents that get compared.
//
// A reference (ref) names one document. Plain refs are file paths; refs of
// the form DEVICE@WHEN name a configuration snapshot in a device catalog,
// where WHEN is an RFC 3339 timestamp, "latest" or "previous".
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a ref names nothing.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidRef is returned for refs that cannot be parsed.
	ErrInvalidRef = errors.New("invalid document reference")
)

// Document is a fetched text blob.
type Document struct {
	Ref       string
	Label     string
	Text      string
	Timestamp time.Time
}

// Source fetches documents by ref.
type Source interface {
	Fetch(ctx context.Context, ref string) (Document, error)
}

// Locator is implemented by sources whose documents live in local files.
type Locator interface {
	// Path returns the file backing ref, if any.
	Path(ref string) (string, bool)
}

// =============================================================================
// FILES
// =============================================================================

// FileSource reads documents from the local filesystem.
type FileSource struct {
	// Root resolves relative refs. Empty means the working directory.
	Root string
}

// Path implements Locator. The result is always absolute so that it matches
// the paths a watcher reports.
func (s *FileSource) Path(ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	path := ref
	if !filepath.IsAbs(ref) && s.Root != "" {
		path = filepath.Join(s.Root, ref)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	return abs, true
}

// Fetch reads the file named by ref.
func (s *FileSource) Fetch(ctx context.Context, ref string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	path, ok := s.Path(ref)
	if !ok {
		return Document{}, fmt.Errorf("%w: empty path", ErrInvalidRef)
	}
	return readFile(ref, path, filepath.Base(path))
}

func readFile(ref, path, label string) (Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Document{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Document{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Document{}, fmt.Errorf("%w: %s is a directory", ErrInvalidRef, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Document{
		Ref:       ref,
		Label:     label,
		Text:      string(data),
		Timestamp: info.ModTime(),
	}, nil
}

// =============================================================================
// ROUTER
// =============================================================================

// Router sends snapshot refs to a catalog and everything else to files.
type Router struct {
	Files   *FileSource
	Catalog *Catalog // may be nil
}

// NewRouter returns a router over the working directory and an optional
// catalog.
func NewRouter(catalog *Catalog) *Router {
	return &Router{Files: &FileSource{}, Catalog: catalog}
}

func (r *Router) isSnapshot(ref string) bool {
	return r.Catalog != nil && strings.Contains(ref, "@")
}

// Fetch implements Source.
func (r *Router) Fetch(ctx context.Context, ref string) (Document, error) {
	if r.isSnapshot(ref) {
		return r.Catalog.Fetch(ctx, ref)
	}
	return r.Files.Fetch(ctx, ref)
}

// Path implements Locator.
func (r *Router) Path(ref string) (string, bool) {
	if r.isSnapshot(ref) {
		return r.Catalog.Path(ref)
	}
	return r.Files.Path(ref)
}
